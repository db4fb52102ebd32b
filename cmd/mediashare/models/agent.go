package models

import (
	"time"

	"github.com/google/uuid"
)

// Agent represents an authenticated identity that owns resources and
// grants read access to others.
// Maps to: agent table
type Agent struct {
	ID uuid.UUID `db:"id" json:"id"`

	// Globally unique email, the natural key supplied by the identity provider
	Email string `db:"email" json:"email"`

	// CanRead lists the agents permitted to view this agent's resources.
	// The grant lives on the resource owner, not the viewer: an entry B in
	// A.CanRead means B may view A's resources, never the reverse.
	CanRead []uuid.UUID `db:"can_read" json:"can_read"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// HasReader reports whether viewer has been granted read access to this
// agent's resources. It resolves the grant literally, one hop, and does
// not consider the viewer's own CanRead list.
func (a *Agent) HasReader(viewer uuid.UUID) bool {
	for _, id := range a.CanRead {
		if id == viewer {
			return true
		}
	}
	return false
}

// Grant adds reader to the agent's grant list.
// Returns false if the grant already existed or reader is the agent itself.
func (a *Agent) Grant(reader uuid.UUID) bool {
	if reader == a.ID || a.HasReader(reader) {
		return false
	}
	a.CanRead = append(a.CanRead, reader)
	return true
}

// Revoke removes reader from the agent's grant list.
// Returns false if no grant existed.
func (a *Agent) Revoke(reader uuid.UUID) bool {
	kept := a.CanRead[:0]
	found := false
	for _, id := range a.CanRead {
		if id == reader {
			found = true
			continue
		}
		kept = append(kept, id)
	}
	a.CanRead = kept
	return found
}
