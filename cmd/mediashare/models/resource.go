package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Kind discriminates the two media types sharing one moderation lifecycle
type Kind string

// Resource kinds
const (
	KindImage Kind = "image"
	KindTrack Kind = "track"
)

// Resource is an uploaded media item (image or audio track).
// Maps to: resource table, document style: one row per resource, list
// fields stored as jsonb so every operation is a single-row
// read-modify-write.
type Resource struct {
	ID uuid.UUID `db:"id" json:"id"`

	Kind Kind `db:"kind" json:"kind"`

	// Agent who uploaded the resource (photographer/recordist)
	Owner uuid.UUID `db:"owner_id" json:"owner"`

	// Path of the backing media file, owned by the storage collaborator
	MediaPath string `db:"media_path" json:"media_path"`

	// Caption/title/etc. Free-form document edited via merge patch.
	Metadata json.RawMessage `db:"metadata" json:"metadata,omitempty"`

	// Agents who flagged the resource. Membership unique. The resource is
	// flagged iff this is non-empty; there is no separately stored flag.
	Flaggers []uuid.UUID `db:"flaggers" json:"flaggers"`

	// Agents barred from re-flagging because a super-agent deflag cleared
	// their earlier flag
	BarredFlaggers []uuid.UUID `db:"barred_flaggers" json:"barred_flaggers"`

	// Time of the most recent super-agent deflag. While set, the owner may
	// no longer deflag the resource themselves.
	ApprovedAt *time.Time `db:"approved_at" json:"approved_at,omitempty"`

	// Publish time. Nil means unpublished; presence is the sole
	// publication signal.
	PublishedAt *time.Time `db:"published_at" json:"published_at,omitempty"`

	// Agents who liked the resource, no duplicates
	Likes []uuid.UUID `db:"likes" json:"likes"`

	Notes []Note `db:"notes" json:"notes"`

	// Optimistic locking version (for CAS saves)
	Version int64 `db:"version" json:"version"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Flagged reports whether the resource is under moderation review.
// Always derived from the flagger list, never stored.
func (r *Resource) Flagged() bool {
	return len(r.Flaggers) > 0
}

// Published reports whether the resource is globally viewable
func (r *Resource) Published() bool {
	return r.PublishedAt != nil
}

// Approved reports whether a super-agent has deflagged the resource
func (r *Resource) Approved() bool {
	return r.ApprovedAt != nil
}

// HasFlagged reports whether agent is among the current flaggers
func (r *Resource) HasFlagged(agent uuid.UUID) bool {
	return contains(r.Flaggers, agent)
}

// IsBarred reports whether agent's flag was cleared by a super-agent
// deflag, blocking any re-flag from the same agent
func (r *Resource) IsBarred(agent uuid.UUID) bool {
	return contains(r.BarredFlaggers, agent)
}

// HasLiked reports whether agent currently likes the resource
func (r *Resource) HasLiked(agent uuid.UUID) bool {
	return contains(r.Likes, agent)
}

// NoteByID returns the note with the given id, or nil
func (r *Resource) NoteByID(id uuid.UUID) *Note {
	for i := range r.Notes {
		if r.Notes[i].ID == id {
			return &r.Notes[i]
		}
	}
	return nil
}

// EngagementCount is the combined like + note count driving the
// "N notes" display
func (r *Resource) EngagementCount() int {
	return len(r.Likes) + len(r.Notes)
}

func contains(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
