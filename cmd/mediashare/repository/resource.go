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

// ResourceRepository handles database operations for resources.
// Every resource is one row; the list fields live in jsonb columns so a
// mutation is always a single-row read-modify-write.
type ResourceRepository struct {
	db *db.DB
}

// NewResourceRepository creates a new resource repository
func NewResourceRepository(db *db.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

const resourceColumns = `
	id, kind, owner_id, media_path, metadata,
	flaggers, barred_flaggers, approved_at, published_at,
	likes, notes, version, created_at, updated_at
`

// Create inserts a new resource
func (r *ResourceRepository) Create(ctx context.Context, res *models.Resource) error {
	query := `
		INSERT INTO resource (` + resourceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.Exec(ctx, query,
		res.ID,
		res.Kind,
		res.Owner,
		res.MediaPath,
		res.Metadata,
		idsJSON(res.Flaggers),
		idsJSON(res.BarredFlaggers),
		res.ApprovedAt,
		res.PublishedAt,
		idsJSON(res.Likes),
		notesJSON(res.Notes),
		res.Version,
		res.CreatedAt,
		res.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	return nil
}

// GetByID retrieves a resource by id
func (r *ResourceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Resource, error) {
	query := `SELECT ` + resourceColumns + ` FROM resource WHERE id = $1`

	res, err := scanResource(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get resource: %w", err)
	}

	return res, nil
}

// Save persists a mutated resource with an optimistic-concurrency check:
// the update only applies when the stored version still matches the one
// the resource was loaded with.
func (r *ResourceRepository) Save(ctx context.Context, res *models.Resource) error {
	query := `
		UPDATE resource
		SET metadata = $3, flaggers = $4, barred_flaggers = $5,
		    approved_at = $6, published_at = $7, likes = $8, notes = $9,
		    version = version + 1, updated_at = $10
		WHERE id = $1 AND version = $2
		RETURNING version
	`

	err := r.db.QueryRow(ctx, query,
		res.ID,
		res.Version,
		res.Metadata,
		idsJSON(res.Flaggers),
		idsJSON(res.BarredFlaggers),
		res.ApprovedAt,
		res.PublishedAt,
		idsJSON(res.Likes),
		notesJSON(res.Notes),
		res.UpdatedAt,
	).Scan(&res.Version)

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("resource %s: %w", res.ID, ErrVersionConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to save resource: %w", err)
	}

	return nil
}

// Delete removes a resource. Notes are stored inline so they go with it.
func (r *ResourceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM resource WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete resource: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("resource %s: %w", id, ErrNotFound)
	}

	return nil
}

// ListByOwner retrieves all resources owned by an agent, newest first
func (r *ResourceRepository) ListByOwner(ctx context.Context, owner uuid.UUID) ([]*models.Resource, error) {
	query := `
		SELECT ` + resourceColumns + `
		FROM resource
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`

	return r.list(ctx, query, owner)
}

// ListFlagged retrieves every resource currently under moderation review
func (r *ResourceRepository) ListFlagged(ctx context.Context) ([]*models.Resource, error) {
	query := `
		SELECT ` + resourceColumns + `
		FROM resource
		WHERE jsonb_array_length(flaggers) > 0
		ORDER BY updated_at DESC
	`

	return r.list(ctx, query)
}

func (r *ResourceRepository) list(ctx context.Context, query string, args ...any) ([]*models.Resource, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list resources: %w", err)
	}
	defer rows.Close()

	var resources []*models.Resource
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan resource: %w", err)
		}
		resources = append(resources, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating resources: %w", err)
	}

	return resources, nil
}

func scanResource(row pgx.Row) (*models.Resource, error) {
	res := &models.Resource{}
	err := row.Scan(
		&res.ID,
		&res.Kind,
		&res.Owner,
		&res.MediaPath,
		&res.Metadata,
		&res.Flaggers,
		&res.BarredFlaggers,
		&res.ApprovedAt,
		&res.PublishedAt,
		&res.Likes,
		&res.Notes,
		&res.Version,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// idsJSON keeps empty lists as '[]' in jsonb, never NULL
func idsJSON(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return []uuid.UUID{}
	}
	return ids
}

// notesJSON keeps empty note lists as '[]' in jsonb, never NULL
func notesJSON(notes []models.Note) []models.Note {
	if notes == nil {
		return []models.Note{}
	}
	return notes
}
