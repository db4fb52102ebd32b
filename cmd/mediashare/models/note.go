package models

import (
	"time"

	"github.com/google/uuid"
)

// Note is an annotation attached to a resource. Notes belong to exactly
// one resource and are deleted with it.
// Stored inline in the resource document (notes jsonb column).
type Note struct {
	ID uuid.UUID `json:"id"`

	// Agent who wrote the note
	Author uuid.UUID `json:"author"`

	// Trimmed, non-empty text
	Text string `json:"text"`

	CreatedAt time.Time `json:"created_at"`
}
