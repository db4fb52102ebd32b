package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/WhatDanDoes/mediashare/cmd/mediashare/container"
	"github.com/WhatDanDoes/mediashare/cmd/mediashare/handlers"
	"github.com/WhatDanDoes/mediashare/cmd/mediashare/middleware"
)

// RegisterModerationRoutes registers flag lifecycle and review routes
func RegisterModerationRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewModerationHandler(c.Components, c.ResourceService)

	resources := e.Group("/api/v1/resources")
	resources.Use(middleware.ExtractOperator())
	{
		resources.POST("/:id/flag", h.FlagResource)         // POST /api/v1/resources/{id}/flag
		resources.POST("/:id/deflag", h.DeflagResource)     // POST /api/v1/resources/{id}/deflag
		resources.POST("/:id/publish", h.PublishResource)   // POST /api/v1/resources/{id}/publish
		resources.POST("/:id/unpublish", h.UnpublishResource) // POST /api/v1/resources/{id}/unpublish
	}

	moderation := e.Group("/api/v1/moderation")
	moderation.Use(middleware.ExtractOperator())
	{
		moderation.GET("/flagged", h.ListFlagged) // GET /api/v1/moderation/flagged
	}
}
