package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/WhatDanDoes/mediashare/cmd/mediashare/middleware"
	"github.com/WhatDanDoes/mediashare/cmd/mediashare/models"
	"github.com/WhatDanDoes/mediashare/cmd/mediashare/service"
	"github.com/WhatDanDoes/mediashare/common/bootstrap"
)

// ModerationHandler handles flag/deflag/publish/unpublish requests
type ModerationHandler struct {
	components *bootstrap.Components
	resources  *service.ResourceService
}

// NewModerationHandler creates a new moderation handler
func NewModerationHandler(components *bootstrap.Components, resources *service.ResourceService) *ModerationHandler {
	return &ModerationHandler{
		components: components,
		resources:  resources,
	}
}

// FlagResource flags a resource for moderation review
// POST /api/v1/resources/:id/flag
func (h *ModerationHandler) FlagResource(c echo.Context) error {
	return h.transition(c, h.resources.Flag)
}

// DeflagResource clears all flags from a resource
// POST /api/v1/resources/:id/deflag
func (h *ModerationHandler) DeflagResource(c echo.Context) error {
	return h.transition(c, h.resources.Deflag)
}

// PublishResource makes a resource globally viewable
// POST /api/v1/resources/:id/publish
func (h *ModerationHandler) PublishResource(c echo.Context) error {
	return h.transition(c, h.resources.Publish)
}

// UnpublishResource withdraws a resource from global view
// POST /api/v1/resources/:id/unpublish
func (h *ModerationHandler) UnpublishResource(c echo.Context) error {
	return h.transition(c, h.resources.Unpublish)
}

// ListFlagged returns every flagged resource (super-agent only)
// GET /api/v1/moderation/flagged
func (h *ModerationHandler) ListFlagged(c echo.Context) error {
	ctx := c.Request().Context()

	list, err := h.resources.ListFlagged(ctx, middleware.GetOperator(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"resources": list,
		"count":     len(list),
	})
}

// transition runs one moderation state change and returns the updated
// resource
func (h *ModerationHandler) transition(
	c echo.Context,
	fn func(context.Context, *service.Operator, uuid.UUID) (*models.Resource, error),
) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid resource id",
		})
	}

	res, err := fn(c.Request().Context(), middleware.GetOperator(c), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, resourceBody(res, false))
}
