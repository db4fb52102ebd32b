package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/WhatDanDoes/mediashare/cmd/mediashare/models"
	"github.com/WhatDanDoes/mediashare/cmd/mediashare/repository"
	"github.com/WhatDanDoes/mediashare/common/logger"
)

// AgentService handles business logic for agents and the readability
// grant graph
type AgentService struct {
	agents AgentStore
	clock  func() time.Time
	log    *logger.Logger
}

// NewAgentService creates a new agent service
func NewAgentService(agents AgentStore, log *logger.Logger) *AgentService {
	return &AgentService{
		agents: agents,
		clock:  time.Now,
		log:    log,
	}
}

// Register creates an agent record for an identity-provider email,
// returning the existing record when the email is already known.
func (s *AgentService) Register(ctx context.Context, email string) (*models.Agent, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, errors.New("email is required")
	}

	existing, err := s.agents.GetByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, storageErr("load agent", err)
	}

	now := s.clock()
	agent := &models.Agent{
		ID:        uuid.New(),
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.agents.Create(ctx, agent); err != nil {
		return nil, storageErr("create agent", err)
	}

	s.log.Info("agent registered", "agent_id", agent.ID, "email", agent.Email)

	return agent, nil
}

// Get loads an agent by id
func (s *AgentService) Get(ctx context.Context, id uuid.UUID) (*models.Agent, error) {
	agent, err := s.agents.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageErr("load agent", err)
	}
	return agent, nil
}

// Grant lets the operator name another agent as a permitted reader of
// the operator's own resources. The grant is stored on the operator's
// record: it says "reader may view my resources", nothing about what the
// operator may view.
func (s *AgentService) Grant(ctx context.Context, op *Operator, reader uuid.UUID) (*models.Agent, error) {
	return s.updateGrants(ctx, op, reader, true)
}

// Revoke withdraws a previously granted read permission
func (s *AgentService) Revoke(ctx context.Context, op *Operator, reader uuid.UUID) (*models.Agent, error) {
	return s.updateGrants(ctx, op, reader, false)
}

func (s *AgentService) updateGrants(ctx context.Context, op *Operator, reader uuid.UUID, grant bool) (*models.Agent, error) {
	if op == nil {
		return nil, ErrUnauthenticated
	}

	agent, err := s.Get(ctx, op.ID)
	if err != nil {
		return nil, err
	}

	// The reader must exist; a dangling grant would never resolve
	if _, err := s.Get(ctx, reader); err != nil {
		return nil, err
	}

	var changed bool
	if grant {
		changed = agent.Grant(reader)
	} else {
		changed = agent.Revoke(reader)
	}

	if !changed {
		return agent, nil
	}

	agent.UpdatedAt = s.clock()
	if err := s.agents.Save(ctx, agent); err != nil {
		return nil, storageErr("save agent", err)
	}

	s.log.Info("grants updated",
		"agent_id", agent.ID,
		"reader_id", reader,
		"granted", grant)

	return agent, nil
}
