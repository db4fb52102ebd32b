package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/WhatDanDoes/mediashare/cmd/mediashare/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// OperatorKey is the context key for the authenticated operator
	OperatorKey ContextKey = "operator"
)

// ExtractOperator is a middleware that reads the identity the login
// collaborator forwards in the X-Agent-ID and X-Agent-Email headers and
// stores it in the request context. Requests without both headers are
// anonymous, which is a valid state: published resources are viewable
// without an identity.
//
// Usage:
//
//	e := echo.New()
//	e.Use(middleware.ExtractOperator())
func ExtractOperator() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rawID := c.Request().Header.Get("X-Agent-ID")
			email := c.Request().Header.Get("X-Agent-Email")

			if rawID != "" && email != "" {
				if id, err := uuid.Parse(rawID); err == nil {
					c.Set(string(OperatorKey), &service.Operator{
						ID:    id,
						Email: email,
					})
				}
			}

			return next(c)
		}
	}
}

// GetOperator retrieves the operator from the request context.
// Returns nil for anonymous requests.
func GetOperator(c echo.Context) *service.Operator {
	op := c.Get(string(OperatorKey))
	if op == nil {
		return nil
	}
	return op.(*service.Operator)
}

// RequireOperator ensures an operator exists in context.
// Returns a 401 error if the request is anonymous.
func RequireOperator(c echo.Context) (*service.Operator, error) {
	op := GetOperator(c)
	if op == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return op, nil
}
