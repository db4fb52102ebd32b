package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/WhatDanDoes/mediashare/cmd/mediashare/models"
)

// ResourceStore is the persistence collaborator for resources. The core
// treats it as an abstract repository: load and save are fallible and
// never retried here.
type ResourceStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Resource, error)
	Create(ctx context.Context, res *models.Resource) error
	Save(ctx context.Context, res *models.Resource) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByOwner(ctx context.Context, owner uuid.UUID) ([]*models.Resource, error)
	ListFlagged(ctx context.Context) ([]*models.Resource, error)
}

// AgentStore is the persistence collaborator for agents
type AgentStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Agent, error)
	GetByEmail(ctx context.Context, email string) (*models.Agent, error)
	Create(ctx context.Context, agent *models.Agent) error
	Save(ctx context.Context, agent *models.Agent) error
}

// SudoResolver returns the super-agent email currently configured by the
// hosting environment. It is consulted fresh on every authorization so a
// runtime change applies to the next request.
type SudoResolver func() string
