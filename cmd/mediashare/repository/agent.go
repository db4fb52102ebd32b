package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/WhatDanDoes/mediashare/cmd/mediashare/models"
	"github.com/WhatDanDoes/mediashare/common/db"
)

// AgentRepository handles database operations for agents
type AgentRepository struct {
	db *db.DB
}

// NewAgentRepository creates a new agent repository
func NewAgentRepository(db *db.DB) *AgentRepository {
	return &AgentRepository{db: db}
}

// Create inserts a new agent
func (r *AgentRepository) Create(ctx context.Context, agent *models.Agent) error {
	query := `
		INSERT INTO agent (id, email, can_read, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Exec(ctx, query,
		agent.ID,
		agent.Email,
		canReadJSON(agent.CanRead),
		agent.CreatedAt,
		agent.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create agent: %w", err)
	}

	return nil
}

// GetByID retrieves an agent by id
func (r *AgentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Agent, error) {
	query := `
		SELECT id, email, can_read, created_at, updated_at
		FROM agent
		WHERE id = $1
	`

	return r.scanAgent(r.db.QueryRow(ctx, query, id))
}

// GetByEmail retrieves an agent by its unique email
func (r *AgentRepository) GetByEmail(ctx context.Context, email string) (*models.Agent, error) {
	query := `
		SELECT id, email, can_read, created_at, updated_at
		FROM agent
		WHERE email = $1
	`

	return r.scanAgent(r.db.QueryRow(ctx, query, email))
}

// Save updates an agent's grant list
func (r *AgentRepository) Save(ctx context.Context, agent *models.Agent) error {
	query := `
		UPDATE agent
		SET can_read = $2, updated_at = $3
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query,
		agent.ID,
		canReadJSON(agent.CanRead),
		agent.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to save agent: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("agent %s: %w", agent.ID, ErrNotFound)
	}

	return nil
}

func (r *AgentRepository) scanAgent(row pgx.Row) (*models.Agent, error) {
	agent := &models.Agent{}
	err := row.Scan(
		&agent.ID,
		&agent.Email,
		&agent.CanRead,
		&agent.CreatedAt,
		&agent.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan agent: %w", err)
	}

	return agent, nil
}

// canReadJSON keeps empty grant lists as '[]' in jsonb, never NULL
func canReadJSON(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return []uuid.UUID{}
	}
	return ids
}
