package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/WhatDanDoes/mediashare/cmd/mediashare/middleware"
	"github.com/WhatDanDoes/mediashare/cmd/mediashare/service"
	"github.com/WhatDanDoes/mediashare/common/bootstrap"
)

// NoteHandler handles note requests on resources
type NoteHandler struct {
	components *bootstrap.Components
	resources  *service.ResourceService
}

// NewNoteHandler creates a new note handler
func NewNoteHandler(components *bootstrap.Components, resources *service.ResourceService) *NoteHandler {
	return &NoteHandler{
		components: components,
		resources:  resources,
	}
}

type addNoteRequest struct {
	Text string `json:"text"`
}

// AddNote attaches a text note to a resource
// POST /api/v1/resources/:id/notes
func (h *NoteHandler) AddNote(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid resource id",
		})
	}

	var req addNoteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid request body",
		})
	}

	res, err := h.resources.AddNote(c.Request().Context(), middleware.GetOperator(c), id, req.Text)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, resourceBody(res, false))
}

// DeleteNote removes a note from a resource
// DELETE /api/v1/resources/:id/notes/:noteID
func (h *NoteHandler) DeleteNote(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid resource id",
		})
	}

	noteID, err := uuid.Parse(c.Param("noteID"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid note id",
		})
	}

	res, err := h.resources.DeleteNote(c.Request().Context(), middleware.GetOperator(c), id, noteID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, resourceBody(res, false))
}
