package service

import (
	"github.com/google/uuid"

	"github.com/WhatDanDoes/mediashare/cmd/mediashare/models"
)

// Action is an operation an operator requests on a resource
type Action string

// Actions gated by the policy
const (
	ActionView         Action = "view"
	ActionLike         Action = "like"
	ActionAnnotate     Action = "annotate"
	ActionFlag         Action = "flag"
	ActionDeflag       Action = "deflag"
	ActionPublish      Action = "publish"
	ActionUnpublish    Action = "unpublish"
	ActionDelete       Action = "delete"
	ActionEditMetadata Action = "edit_metadata"
)

// Operator is the identity acting on a request, supplied by the identity
// collaborator. A nil *Operator is an anonymous request.
type Operator struct {
	ID    uuid.UUID
	Email string
}

// Decision is the outcome of an authorization check
type Decision struct {
	Allowed bool

	// Reason is set when denied
	Reason Reason

	// FlaggedAdvisory is set when a view is allowed on a flagged resource
	// (owner or super-agent); the caller should surface a warning.
	FlaggedAdvisory bool
}

// Err returns nil when allowed, otherwise the sentinel error for the
// denial reason
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return d.Reason.Err()
}

func allow() Decision {
	return Decision{Allowed: true}
}

func allowAdvisory() Decision {
	return Decision{Allowed: true, FlaggedAdvisory: true}
}

func deny(r Reason) Decision {
	return Decision{Reason: r}
}

// CanView resolves the identity graph for one viewer/owner pair: true if
// the viewer is the owner, or the owner's grant list names the viewer.
// The grant direction is deliberate and must not be inverted: the
// viewer's own CanRead list plays no part in this decision.
func CanView(viewer uuid.UUID, owner *models.Agent) bool {
	if owner == nil {
		return false
	}
	if viewer == owner.ID {
		return true
	}
	return owner.HasReader(viewer)
}

// Policy decides whether an operator may perform an action on a resource.
// A Policy value is built per request with the super-agent email resolved
// at that moment, so a runtime change to the override identity takes
// effect on the next request without shared mutable state in the core.
type Policy struct {
	sudoEmail string
}

// NewPolicy creates a policy with the currently configured super-agent
// email. Empty means no super-agent exists and the override never matches.
func NewPolicy(sudoEmail string) Policy {
	return Policy{sudoEmail: sudoEmail}
}

// IsSudo reports whether the operator is the super-agent
func (p Policy) IsSudo(op *Operator) bool {
	return op != nil && p.sudoEmail != "" && op.Email == p.sudoEmail
}

// Authorize evaluates the policy rules in order, first match wins.
// owner is the resource owner's agent record and may be nil when the
// grant list could not be resolved; only the grantee rule depends on it.
// Note deletion is a distinct sub-decision, see AuthorizeNoteDelete.
func (p Policy) Authorize(op *Operator, owner *models.Agent, res *models.Resource, action Action) Decision {
	// 1. Anonymous operators may only view published resources
	if op == nil {
		if action == ActionView && res.Published() {
			return allow()
		}
		return deny(ReasonUnauthenticated)
	}

	// 2. The super-agent may do anything, with a warning when viewing
	// flagged content
	if p.IsSudo(op) {
		if action == ActionView && res.Flagged() {
			return allowAdvisory()
		}
		return allow()
	}

	// 3. The owner may do anything to their own resource, except deflag
	// after a super-agent has ruled
	if op.ID == res.Owner {
		if action == ActionDeflag && res.Approved() {
			return deny(ReasonAdministrativelyApproved)
		}
		if action == ActionView && res.Flagged() {
			return allowAdvisory()
		}
		return allow()
	}

	// 4. A granted reader may view and engage while the resource is not
	// flagged, nothing more
	if CanView(op.ID, owner) && !res.Flagged() {
		switch action {
		case ActionView, ActionLike, ActionAnnotate, ActionFlag:
			return allow()
		}
		return deny(ReasonForbidden)
	}

	// 5. Flagged resources are invisible to everyone else
	if res.Flagged() && action == ActionView {
		return deny(ReasonFlagged)
	}

	// 6. Published resources are globally readable and open to engagement
	if res.Published() {
		switch action {
		case ActionView, ActionLike, ActionAnnotate, ActionFlag:
			return allow()
		}
		return deny(ReasonForbidden)
	}

	// 7. Everything else is forbidden
	return deny(ReasonForbidden)
}

// AuthorizeNoteDelete decides who may delete a note: the super-agent,
// the note's author, or the owner of the parent resource.
func (p Policy) AuthorizeNoteDelete(op *Operator, res *models.Resource, note *models.Note) Decision {
	if op == nil {
		return deny(ReasonUnauthenticated)
	}
	if p.IsSudo(op) || op.ID == note.Author || op.ID == res.Owner {
		return allow()
	}
	return deny(ReasonForbidden)
}

// AuthorizeListFlagged gates the privileged "all flagged resources"
// listing to the super-agent
func (p Policy) AuthorizeListFlagged(op *Operator) Decision {
	if op == nil {
		return deny(ReasonUnauthenticated)
	}
	if p.IsSudo(op) {
		return allow()
	}
	return deny(ReasonForbidden)
}
