package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/WhatDanDoes/mediashare/common/db"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("record not found")

// ErrVersionConflict is returned when an optimistic-concurrency save
// loses against a concurrent writer
var ErrVersionConflict = errors.New("version conflict")

const schema = `
CREATE TABLE IF NOT EXISTS agent (
	id UUID PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	can_read JSONB NOT NULL DEFAULT '[]',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS resource (
	id UUID PRIMARY KEY,
	kind TEXT NOT NULL,
	owner_id UUID NOT NULL REFERENCES agent(id) ON DELETE CASCADE,
	media_path TEXT NOT NULL,
	metadata JSONB,
	flaggers JSONB NOT NULL DEFAULT '[]',
	barred_flaggers JSONB NOT NULL DEFAULT '[]',
	approved_at TIMESTAMPTZ,
	published_at TIMESTAMPTZ,
	likes JSONB NOT NULL DEFAULT '[]',
	notes JSONB NOT NULL DEFAULT '[]',
	version BIGINT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS resource_owner_idx ON resource (owner_id);
`

// InitSchema creates the tables if they do not exist.
// Wired into bootstrap via WithDBInitHook.
func InitSchema(database *db.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := database.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}
