package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/WhatDanDoes/mediashare/cmd/mediashare/middleware"
	"github.com/WhatDanDoes/mediashare/cmd/mediashare/models"
	"github.com/WhatDanDoes/mediashare/cmd/mediashare/service"
	"github.com/WhatDanDoes/mediashare/common/bootstrap"
)

// ResourceHandler handles resource CRUD and engagement requests
type ResourceHandler struct {
	components *bootstrap.Components
	resources  *service.ResourceService
}

// NewResourceHandler creates a new resource handler
func NewResourceHandler(components *bootstrap.Components, resources *service.ResourceService) *ResourceHandler {
	return &ResourceHandler{
		components: components,
		resources:  resources,
	}
}

// CreateResource registers an uploaded resource
// POST /api/v1/resources
func (h *ResourceHandler) CreateResource(c echo.Context) error {
	ctx := c.Request().Context()

	op, err := middleware.RequireOperator(c)
	if err != nil {
		return err
	}

	var req struct {
		Kind      string          `json:"kind"`
		MediaPath string          `json:"media_path"`
		Metadata  map[string]any  `json:"metadata"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid request body",
		})
	}

	kind := models.Kind(req.Kind)
	if kind != models.KindImage && kind != models.KindTrack {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "kind must be 'image' or 'track'",
		})
	}
	if req.MediaPath == "" {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "media_path is required",
		})
	}

	createReq := &service.CreateResourceRequest{
		Kind:      kind,
		MediaPath: req.MediaPath,
	}
	if req.Metadata != nil {
		raw, err := encodeMetadata(req.Metadata)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"error": "invalid metadata",
			})
		}
		createReq.Metadata = raw
	}

	res, err := h.resources.Create(ctx, op, createReq)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, resourceBody(res, false))
}

// GetResource returns a resource if the operator may view it
// GET /api/v1/resources/:id
func (h *ResourceHandler) GetResource(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid resource id",
		})
	}

	res, dec, err := h.resources.Get(ctx, middleware.GetOperator(c), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, resourceBody(res, dec.FlaggedAdvisory))
}

// ListByOwner returns the owner's resources visible to the operator
// GET /api/v1/agents/:id/resources
func (h *ResourceHandler) ListByOwner(c echo.Context) error {
	ctx := c.Request().Context()

	ownerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid agent id",
		})
	}

	list, err := h.resources.ListByOwner(ctx, middleware.GetOperator(c), ownerID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"resources": list,
		"count":     len(list),
	})
}

// ToggleLike flips the operator's like
// POST /api/v1/resources/:id/like
func (h *ResourceHandler) ToggleLike(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid resource id",
		})
	}

	res, liked, err := h.resources.ToggleLike(ctx, middleware.GetOperator(c), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"liked":      liked,
		"engagement": res.EngagementCount(),
	})
}

// EditMetadata applies a JSON merge patch to the resource metadata
// PATCH /api/v1/resources/:id/metadata
func (h *ResourceHandler) EditMetadata(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid resource id",
		})
	}

	patch, err := readBody(c)
	if err != nil || len(patch) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "request body must be a JSON merge patch",
		})
	}

	res, err := h.resources.EditMetadata(ctx, middleware.GetOperator(c), id, patch)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, resourceBody(res, false))
}

// DeleteResource deletes a resource, cascading to its notes.
// The media file itself is unlinked by the storage collaborator.
// DELETE /api/v1/resources/:id
func (h *ResourceHandler) DeleteResource(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid resource id",
		})
	}

	mediaPath, err := h.resources.Delete(ctx, middleware.GetOperator(c), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"deleted":    true,
		"media_path": mediaPath,
	})
}

// resourceBody is the standard resource response shape
func resourceBody(res *models.Resource, flaggedAdvisory bool) map[string]interface{} {
	body := map[string]interface{}{
		"resource":   res,
		"engagement": res.EngagementCount(),
	}
	if flaggedAdvisory {
		body["advisory"] = "flagged"
	}
	return body
}
