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

// AgentHandler handles agent registration and grant management
type AgentHandler struct {
	components *bootstrap.Components
	agents     *service.AgentService
}

// NewAgentHandler creates a new agent handler
func NewAgentHandler(components *bootstrap.Components, agents *service.AgentService) *AgentHandler {
	return &AgentHandler{
		components: components,
		agents:     agents,
	}
}

type registerAgentRequest struct {
	Email string `json:"email"`
}

// Register creates an agent record, or returns the existing one for
// the email
// POST /api/v1/agents
func (h *AgentHandler) Register(c echo.Context) error {
	var req registerAgentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid request body",
		})
	}
	if req.Email == "" {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "email is required",
		})
	}

	agent, err := h.agents.Register(c.Request().Context(), req.Email)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, agentBody(agent))
}

// GetAgent returns a single agent record
// GET /api/v1/agents/:id
func (h *AgentHandler) GetAgent(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid agent id",
		})
	}

	agent, err := h.agents.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, agentBody(agent))
}

// Grant adds a reader to the caller's grant list
// PUT /api/v1/agents/grants/:readerID
func (h *AgentHandler) Grant(c echo.Context) error {
	return h.updateGrant(c, true)
}

// Revoke removes a reader from the caller's grant list
// DELETE /api/v1/agents/grants/:readerID
func (h *AgentHandler) Revoke(c echo.Context) error {
	return h.updateGrant(c, false)
}

func (h *AgentHandler) updateGrant(c echo.Context, grant bool) error {
	reader, err := uuid.Parse(c.Param("readerID"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid reader id",
		})
	}

	op := middleware.GetOperator(c)

	var agent *models.Agent
	if grant {
		agent, err = h.agents.Grant(c.Request().Context(), op, reader)
	} else {
		agent, err = h.agents.Revoke(c.Request().Context(), op, reader)
	}
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, agentBody(agent))
}

func agentBody(agent *models.Agent) map[string]interface{} {
	return map[string]interface{}{
		"id":       agent.ID,
		"email":    agent.Email,
		"can_read": agent.CanRead,
	}
}
