package container

import (
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/WhatDanDoes/mediashare/cmd/mediashare/repository"
	"github.com/WhatDanDoes/mediashare/cmd/mediashare/service"
	"github.com/WhatDanDoes/mediashare/common/bootstrap"
	rediscommon "github.com/WhatDanDoes/mediashare/common/redis"
)

// Container holds all initialized services and repositories (singleton pattern)
type Container struct {
	// Components
	Components *bootstrap.Components
	Redis      *rediscommon.Client

	// Repositories
	AgentRepo    *repository.CachedAgentRepository
	ResourceRepo *repository.ResourceRepository

	// Services
	Screener        *service.Screener
	AgentService    *service.AgentService
	ResourceService *service.ResourceService
}

// NewContainer initializes all services and repositories once
func NewContainer(components *bootstrap.Components) (*Container, error) {
	cfg := components.Config

	redisRaw := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	redisClient := rediscommon.NewClient(redisRaw, components.Logger)

	// Initialize repositories
	agentRepo := repository.NewCachedAgentRepository(
		repository.NewAgentRepository(components.DB),
		redisClient,
		cfg.Redis.GrantTTL,
	)
	resourceRepo := repository.NewResourceRepository(components.DB)

	// Initialize services (bottom-up: dependencies first)
	screener := service.NewScreener(cfg.Media.ScreeningRules, components.Logger)
	agentService := service.NewAgentService(agentRepo, components.Logger)
	resourceService := service.NewResourceService(&service.ResourceServiceOpts{
		Resources: resourceRepo,
		Agents:    agentRepo,
		Events:    components.Queue,
		Screener:  screener,
		Sudo:      sudoResolver(cfg.Sudo.Email),
		MaxNote:   cfg.Media.MaxNoteLength,
		Logger:    components.Logger,
	})

	return &Container{
		Components:      components,
		Redis:           redisClient,
		AgentRepo:       agentRepo,
		ResourceRepo:    resourceRepo,
		Screener:        screener,
		AgentService:    agentService,
		ResourceService: resourceService,
	}, nil
}

// sudoResolver reads the super-agent email on every call, so a changed
// SUDO variable takes effect without a restart.
func sudoResolver(fallback string) service.SudoResolver {
	return func() string {
		if v := os.Getenv("SUDO"); v != "" {
			return v
		}
		return fallback
	}
}
