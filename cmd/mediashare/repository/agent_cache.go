package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/WhatDanDoes/mediashare/cmd/mediashare/models"
	rediscommon "github.com/WhatDanDoes/mediashare/common/redis"
)

// CachedAgentRepository fronts an AgentRepository with a Redis cache of
// agent records. Grant lists are read on every authorization of a
// non-owner view, so they are the hottest lookup in the system. Entries
// are invalidated on save; the TTL bounds staleness if invalidation is
// missed.
type CachedAgentRepository struct {
	repo  *AgentRepository
	redis *rediscommon.Client
	ttl   time.Duration
}

// NewCachedAgentRepository creates a cached agent repository
func NewCachedAgentRepository(repo *AgentRepository, redis *rediscommon.Client, ttl time.Duration) *CachedAgentRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedAgentRepository{
		repo:  repo,
		redis: redis,
		ttl:   ttl,
	}
}

func agentKey(id uuid.UUID) string {
	return "agent:" + id.String()
}

// GetByID retrieves an agent, preferring the cache
func (r *CachedAgentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Agent, error) {
	if cached, err := r.redis.Get(ctx, agentKey(id)); err == nil {
		agent := &models.Agent{}
		if err := json.Unmarshal([]byte(cached), agent); err == nil {
			return agent, nil
		}
		// Corrupt entry, fall through to the database
	} else if !errors.Is(err, rediscommon.ErrKeyNotFound) {
		// Redis being down must not take authorization down with it
		return r.repo.GetByID(ctx, id)
	}

	agent, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(agent); err == nil {
		// Best effort: a failed cache fill only costs the next lookup
		_ = r.redis.SetWithExpiry(ctx, agentKey(agent.ID), string(payload), r.ttl)
	}

	return agent, nil
}

// GetByEmail retrieves an agent by email, always from the database
// (email lookups happen once per login, not worth caching)
func (r *CachedAgentRepository) GetByEmail(ctx context.Context, email string) (*models.Agent, error) {
	return r.repo.GetByEmail(ctx, email)
}

// Create inserts a new agent
func (r *CachedAgentRepository) Create(ctx context.Context, agent *models.Agent) error {
	return r.repo.Create(ctx, agent)
}

// Save updates an agent and invalidates its cache entry
func (r *CachedAgentRepository) Save(ctx context.Context, agent *models.Agent) error {
	if err := r.repo.Save(ctx, agent); err != nil {
		return err
	}

	if err := r.redis.Delete(ctx, agentKey(agent.ID)); err != nil {
		return fmt.Errorf("saved agent but failed to invalidate cache: %w", err)
	}

	return nil
}
