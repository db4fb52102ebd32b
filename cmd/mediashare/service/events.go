package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ModerationTopic is the queue topic carrying moderation state changes
const ModerationTopic = "moderation-events"

// ModerationEvent is published after every successful moderation
// transition, for downstream consumers (audit trail, admin UI).
type ModerationEvent struct {
	ResourceID uuid.UUID  `json:"resource_id"`
	Action     string     `json:"action"`
	AgentID    *uuid.UUID `json:"agent_id,omitempty"`
	At         time.Time  `json:"at"`
}

// EventPublisher is the queue collaborator; may be absent
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key string, message []byte) error
}

func (s *ResourceService) publishEvent(ctx context.Context, resourceID uuid.UUID, action string, op *Operator) {
	if s.events == nil {
		return
	}

	event := ModerationEvent{
		ResourceID: resourceID,
		Action:     action,
		At:         s.clock(),
	}
	if op != nil {
		id := op.ID
		event.AgentID = &id
	}

	payload, err := json.Marshal(event)
	if err != nil {
		s.log.Error("failed to marshal moderation event", "error", err)
		return
	}

	if err := s.events.Publish(ctx, ModerationTopic, resourceID.String(), payload); err != nil {
		s.log.Error("failed to publish moderation event",
			"resource_id", resourceID,
			"action", action,
			"error", err)
	}
}
