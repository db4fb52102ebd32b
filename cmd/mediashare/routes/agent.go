package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/WhatDanDoes/mediashare/cmd/mediashare/container"
	"github.com/WhatDanDoes/mediashare/cmd/mediashare/handlers"
	"github.com/WhatDanDoes/mediashare/cmd/mediashare/middleware"
)

// RegisterAgentRoutes registers agent registration and grant routes
func RegisterAgentRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewAgentHandler(c.Components, c.AgentService)

	agents := e.Group("/api/v1/agents")
	agents.Use(middleware.ExtractOperator())
	{
		agents.POST("", h.Register)                         // POST /api/v1/agents
		agents.GET("/:id", h.GetAgent)                      // GET /api/v1/agents/{id}
		agents.PUT("/grants/:readerID", h.Grant)            // PUT /api/v1/agents/grants/{readerID}
		agents.DELETE("/grants/:readerID", h.Revoke)        // DELETE /api/v1/agents/grants/{readerID}
	}
}
