package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/WhatDanDoes/mediashare/cmd/mediashare/service"
)

// respondError maps core failure kinds to HTTP responses. Every failure
// is scoped to the request; nothing here is fatal.
func respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		return reply(c, http.StatusUnauthorized, service.ReasonUnauthenticated, "authentication required")

	case errors.Is(err, service.ErrFlagged):
		// The caller is expected to redirect to the owner's listing;
		// the resource is effectively invisible
		return reply(c, http.StatusForbidden, service.ReasonFlagged, "resource is not available")

	case errors.Is(err, service.ErrAdministrativelyApproved):
		return reply(c, http.StatusConflict, service.ReasonAdministrativelyApproved, "a moderator has already ruled on this resource")

	case errors.Is(err, service.ErrForbidden):
		return reply(c, http.StatusForbidden, service.ReasonForbidden, "operation not permitted")

	case errors.Is(err, service.ErrEmptyNote):
		return reply(c, http.StatusBadRequest, service.ReasonEmptyNote, "note text is empty")

	case errors.Is(err, service.ErrTextTooLong):
		return reply(c, http.StatusBadRequest, service.ReasonTextTooLong, "note text too long")

	case errors.Is(err, service.ErrInvalidMetadata):
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid metadata patch",
		})

	case errors.Is(err, service.ErrNotFound):
		return reply(c, http.StatusNotFound, service.ReasonNotFound, "not found")

	default:
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"error": "internal error",
		})
	}
}

func reply(c echo.Context, status int, reason service.Reason, message string) error {
	return c.JSON(status, map[string]interface{}{
		"error":  message,
		"reason": string(reason),
	})
}
