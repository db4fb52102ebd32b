package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/google/uuid"

	"github.com/WhatDanDoes/mediashare/cmd/mediashare/models"
	"github.com/WhatDanDoes/mediashare/cmd/mediashare/repository"
	"github.com/WhatDanDoes/mediashare/common/logger"
)

// ResourceService handles business logic for resources: every operation
// is a single-resource load, authorize, transition, save sequence.
type ResourceService struct {
	resources ResourceStore
	agents    AgentStore
	events    EventPublisher
	screener  *Screener
	sudo      SudoResolver
	clock     func() time.Time
	maxNote   int
	log       *logger.Logger
}

// ResourceServiceOpts contains options for creating a ResourceService
type ResourceServiceOpts struct {
	Resources ResourceStore
	Agents    AgentStore
	Events    EventPublisher
	Screener  *Screener
	Sudo      SudoResolver
	Clock     func() time.Time
	MaxNote   int
	Logger    *logger.Logger
}

// NewResourceService creates a new resource service with options pattern
func NewResourceService(opts *ResourceServiceOpts) *ResourceService {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	sudo := opts.Sudo
	if sudo == nil {
		sudo = func() string { return "" }
	}
	maxNote := opts.MaxNote
	if maxNote <= 0 {
		maxNote = DefaultMaxNoteLength
	}

	return &ResourceService{
		resources: opts.Resources,
		agents:    opts.Agents,
		events:    opts.Events,
		screener:  opts.Screener,
		sudo:      sudo,
		clock:     clock,
		maxNote:   maxNote,
		log:       opts.Logger,
	}
}

// policy builds the per-request policy with the super-agent email
// resolved now, never cached across requests
func (s *ResourceService) policy() Policy {
	return NewPolicy(s.sudo())
}

func (s *ResourceService) loadResource(ctx context.Context, id uuid.UUID) (*models.Resource, error) {
	res, err := s.resources.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageErr("load resource", err)
	}
	return res, nil
}

// ownerOf resolves the resource owner's agent record for grant checks.
// A missing owner record degrades to "no grants", not a failure.
func (s *ResourceService) ownerOf(ctx context.Context, res *models.Resource) (*models.Agent, error) {
	owner, err := s.agents.GetByID(ctx, res.Owner)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, storageErr("load owner", err)
	}
	return owner, nil
}

func (s *ResourceService) save(ctx context.Context, res *models.Resource) error {
	res.UpdatedAt = s.clock()
	if err := s.resources.Save(ctx, res); err != nil {
		return storageErr("save resource", err)
	}
	return nil
}

// CreateResourceRequest carries the fields the upload collaborator
// provides after it has stored the media file
type CreateResourceRequest struct {
	Kind      models.Kind
	MediaPath string
	Metadata  []byte
}

// Create registers a freshly uploaded resource owned by the operator
func (s *ResourceService) Create(ctx context.Context, op *Operator, req *CreateResourceRequest) (*models.Resource, error) {
	if op == nil {
		return nil, ErrUnauthenticated
	}
	if req.Kind != models.KindImage && req.Kind != models.KindTrack {
		return nil, fmt.Errorf("unknown resource kind: %s", req.Kind)
	}

	now := s.clock()
	res := &models.Resource{
		ID:        uuid.New(),
		Kind:      req.Kind,
		Owner:     op.ID,
		MediaPath: req.MediaPath,
		Metadata:  req.Metadata,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.resources.Create(ctx, res); err != nil {
		return nil, storageErr("create resource", err)
	}

	s.log.Info("resource created",
		"resource_id", res.ID,
		"kind", res.Kind,
		"owner", res.Owner)

	return res, nil
}

// Get returns the resource if the operator may view it. The decision
// carries the flagged advisory for owner/super-agent views of flagged
// content.
func (s *ResourceService) Get(ctx context.Context, op *Operator, id uuid.UUID) (*models.Resource, Decision, error) {
	res, err := s.loadResource(ctx, id)
	if err != nil {
		return nil, Decision{}, err
	}

	owner, err := s.ownerOf(ctx, res)
	if err != nil {
		return nil, Decision{}, err
	}

	dec := s.policy().Authorize(op, owner, res, ActionView)
	if !dec.Allowed {
		return nil, dec, dec.Err()
	}

	return res, dec, nil
}

// ToggleLike flips the operator's like on the resource.
// Returns the updated resource and whether it is now liked.
func (s *ResourceService) ToggleLike(ctx context.Context, op *Operator, id uuid.UUID) (*models.Resource, bool, error) {
	res, err := s.loadResource(ctx, id)
	if err != nil {
		return nil, false, err
	}

	owner, err := s.ownerOf(ctx, res)
	if err != nil {
		return nil, false, err
	}

	if dec := s.policy().Authorize(op, owner, res, ActionLike); !dec.Allowed {
		return nil, false, dec.Err()
	}

	liked := ToggleLike(res, op.ID)
	if err := s.save(ctx, res); err != nil {
		return nil, false, err
	}

	return res, liked, nil
}

// Flag records the operator as a flagger of the resource
func (s *ResourceService) Flag(ctx context.Context, op *Operator, id uuid.UUID) (*models.Resource, error) {
	res, err := s.loadResource(ctx, id)
	if err != nil {
		return nil, err
	}

	owner, err := s.ownerOf(ctx, res)
	if err != nil {
		return nil, err
	}

	if dec := s.policy().Authorize(op, owner, res, ActionFlag); !dec.Allowed {
		return nil, dec.Err()
	}

	if err := Flag(res, op.ID); err != nil {
		return nil, err
	}

	if err := s.save(ctx, res); err != nil {
		return nil, err
	}

	s.log.Info("resource flagged", "resource_id", res.ID, "agent_id", op.ID)
	s.publishEvent(ctx, res.ID, "flagged", op)

	return res, nil
}

// Deflag clears all flags from the resource. The super-agent's deflag is
// the stronger ruling: it bars the cleared flaggers from re-flagging and
// blocks later owner deflags.
func (s *ResourceService) Deflag(ctx context.Context, op *Operator, id uuid.UUID) (*models.Resource, error) {
	res, err := s.loadResource(ctx, id)
	if err != nil {
		return nil, err
	}

	owner, err := s.ownerOf(ctx, res)
	if err != nil {
		return nil, err
	}

	pol := s.policy()
	if dec := pol.Authorize(op, owner, res, ActionDeflag); !dec.Allowed {
		return nil, dec.Err()
	}

	Deflag(res, pol.IsSudo(op), s.clock())

	if err := s.save(ctx, res); err != nil {
		return nil, err
	}

	s.log.Info("resource deflagged", "resource_id", res.ID, "agent_id", op.ID, "sudo", pol.IsSudo(op))
	s.publishEvent(ctx, res.ID, "deflagged", op)

	return res, nil
}

// Publish makes the resource globally viewable. Flagged resources cannot
// be published regardless of who asks.
func (s *ResourceService) Publish(ctx context.Context, op *Operator, id uuid.UUID) (*models.Resource, error) {
	res, err := s.loadResource(ctx, id)
	if err != nil {
		return nil, err
	}

	owner, err := s.ownerOf(ctx, res)
	if err != nil {
		return nil, err
	}

	if dec := s.policy().Authorize(op, owner, res, ActionPublish); !dec.Allowed {
		return nil, dec.Err()
	}

	if err := Publish(res, s.clock()); err != nil {
		return nil, err
	}

	if err := s.save(ctx, res); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, res.ID, "published", op)

	return res, nil
}

// Unpublish withdraws the resource from global view
func (s *ResourceService) Unpublish(ctx context.Context, op *Operator, id uuid.UUID) (*models.Resource, error) {
	res, err := s.loadResource(ctx, id)
	if err != nil {
		return nil, err
	}

	owner, err := s.ownerOf(ctx, res)
	if err != nil {
		return nil, err
	}

	if dec := s.policy().Authorize(op, owner, res, ActionUnpublish); !dec.Allowed {
		return nil, dec.Err()
	}

	Unpublish(res)

	if err := s.save(ctx, res); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, res.ID, "unpublished", op)

	return res, nil
}

// Delete removes the resource and its notes. Returns the media path so
// the storage collaborator can unlink the backing file.
func (s *ResourceService) Delete(ctx context.Context, op *Operator, id uuid.UUID) (string, error) {
	res, err := s.loadResource(ctx, id)
	if err != nil {
		return "", err
	}

	owner, err := s.ownerOf(ctx, res)
	if err != nil {
		return "", err
	}

	if dec := s.policy().Authorize(op, owner, res, ActionDelete); !dec.Allowed {
		return "", dec.Err()
	}

	if err := s.resources.Delete(ctx, id); err != nil {
		return "", storageErr("delete resource", err)
	}

	s.log.Info("resource deleted", "resource_id", id, "agent_id", op.ID)

	return res.MediaPath, nil
}

// EditMetadata applies an RFC 7386 merge patch to the resource metadata
func (s *ResourceService) EditMetadata(ctx context.Context, op *Operator, id uuid.UUID, patch []byte) (*models.Resource, error) {
	res, err := s.loadResource(ctx, id)
	if err != nil {
		return nil, err
	}

	owner, err := s.ownerOf(ctx, res)
	if err != nil {
		return nil, err
	}

	if dec := s.policy().Authorize(op, owner, res, ActionEditMetadata); !dec.Allowed {
		return nil, dec.Err()
	}

	original := res.Metadata
	if len(original) == 0 {
		original = []byte(`{}`)
	}

	merged, err := jsonpatch.MergePatch(original, patch)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMetadata, err)
	}
	res.Metadata = merged

	if err := s.save(ctx, res); err != nil {
		return nil, err
	}

	return res, nil
}

// AddNote appends a note by the operator, then runs the screening rules
// over the text: a match flags the resource under the reserved screener
// identity.
func (s *ResourceService) AddNote(ctx context.Context, op *Operator, id uuid.UUID, text string) (*models.Resource, error) {
	res, err := s.loadResource(ctx, id)
	if err != nil {
		return nil, err
	}

	owner, err := s.ownerOf(ctx, res)
	if err != nil {
		return nil, err
	}

	if dec := s.policy().Authorize(op, owner, res, ActionAnnotate); !dec.Allowed {
		return nil, dec.Err()
	}

	note, err := AddNote(res, op.ID, text, s.maxNote, s.clock())
	if err != nil {
		return nil, err
	}

	if s.screener.Match(note.Text, res) {
		// Screener re-flags are blocked like any other barred flagger
		if err := Flag(res, ScreenerAgentID); err == nil {
			s.log.Warn("screening rule flagged resource",
				"resource_id", res.ID,
				"note_id", note.ID)
			s.publishEvent(ctx, res.ID, "flagged", nil)
		}
	}

	if err := s.save(ctx, res); err != nil {
		return nil, err
	}

	return res, nil
}

// DeleteNote removes one note. Allowed for the note's author, the
// resource owner, or the super-agent.
func (s *ResourceService) DeleteNote(ctx context.Context, op *Operator, id, noteID uuid.UUID) (*models.Resource, error) {
	res, err := s.loadResource(ctx, id)
	if err != nil {
		return nil, err
	}

	note := res.NoteByID(noteID)
	if note == nil {
		return nil, ErrNotFound
	}

	if dec := s.policy().AuthorizeNoteDelete(op, res, note); !dec.Allowed {
		return nil, dec.Err()
	}

	if err := RemoveNote(res, noteID); err != nil {
		return nil, err
	}

	if err := s.save(ctx, res); err != nil {
		return nil, err
	}

	return res, nil
}

// ListFlagged returns every flagged resource. Super-agent only.
func (s *ResourceService) ListFlagged(ctx context.Context, op *Operator) ([]*models.Resource, error) {
	if dec := s.policy().AuthorizeListFlagged(op); !dec.Allowed {
		return nil, dec.Err()
	}

	list, err := s.resources.ListFlagged(ctx)
	if err != nil {
		return nil, storageErr("list flagged", err)
	}
	return list, nil
}

// ListByOwner returns the owner's resources the operator may view:
// everything for the owner and the super-agent, unflagged granted or
// published items for everyone else.
func (s *ResourceService) ListByOwner(ctx context.Context, op *Operator, ownerID uuid.UUID) ([]*models.Resource, error) {
	owner, err := s.agents.GetByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, storageErr("load owner", err)
	}

	list, err := s.resources.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, storageErr("list resources", err)
	}

	pol := s.policy()
	visible := make([]*models.Resource, 0, len(list))
	for _, res := range list {
		if dec := pol.Authorize(op, owner, res, ActionView); dec.Allowed {
			visible = append(visible, res)
		}
	}
	return visible, nil
}
