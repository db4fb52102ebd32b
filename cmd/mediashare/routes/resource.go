package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/WhatDanDoes/mediashare/cmd/mediashare/container"
	"github.com/WhatDanDoes/mediashare/cmd/mediashare/handlers"
	"github.com/WhatDanDoes/mediashare/cmd/mediashare/middleware"
)

// RegisterResourceRoutes registers all resource-related routes
func RegisterResourceRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewResourceHandler(c.Components, c.ResourceService)

	// Resource routes with operator extraction middleware
	resources := e.Group("/api/v1/resources")
	resources.Use(middleware.ExtractOperator()) // Extract X-Agent-ID / X-Agent-Email into context
	{
		resources.POST("", h.CreateResource)          // POST /api/v1/resources
		resources.GET("/:id", h.GetResource)          // GET /api/v1/resources/{id}
		resources.DELETE("/:id", h.DeleteResource)    // DELETE /api/v1/resources/{id}
		resources.POST("/:id/like", h.ToggleLike)     // POST /api/v1/resources/{id}/like
		resources.PATCH("/:id/metadata", h.EditMetadata) // PATCH /api/v1/resources/{id}/metadata
	}

	// Owner listing
	agents := e.Group("/api/v1/agents")
	agents.Use(middleware.ExtractOperator())
	{
		agents.GET("/:id/resources", h.ListByOwner) // GET /api/v1/agents/{id}/resources
	}
}
