package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/WhatDanDoes/mediashare/cmd/mediashare/container"
	"github.com/WhatDanDoes/mediashare/cmd/mediashare/handlers"
	"github.com/WhatDanDoes/mediashare/cmd/mediashare/middleware"
)

// RegisterNoteRoutes registers note routes on resources
func RegisterNoteRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewNoteHandler(c.Components, c.ResourceService)

	resources := e.Group("/api/v1/resources")
	resources.Use(middleware.ExtractOperator())
	{
		resources.POST("/:id/notes", h.AddNote)              // POST /api/v1/resources/{id}/notes
		resources.DELETE("/:id/notes/:noteID", h.DeleteNote) // DELETE /api/v1/resources/{id}/notes/{noteID}
	}
}
