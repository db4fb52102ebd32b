package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/WhatDanDoes/mediashare/cmd/mediashare/models"
)

// Pure moderation transitions. Authorization has already been decided by
// Policy when these run; they enforce only state-machine invariants.

// Flag records agent as a flagger. Flagging twice by the same agent is a
// no-op that still succeeds. An agent whose earlier flag was cleared by a
// super-agent deflag is rejected with ErrAdministrativelyApproved.
func Flag(res *models.Resource, agent uuid.UUID) error {
	if res.IsBarred(agent) {
		return ErrAdministrativelyApproved
	}
	if res.HasFlagged(agent) {
		return nil
	}
	res.Flaggers = append(res.Flaggers, agent)
	return nil
}

// Deflag clears all flaggers, not just the acting agent's entry. A
// super-agent deflag is the stronger ruling: it bars the cleared flaggers
// from re-flagging and stamps the approval time, which blocks any later
// owner deflag.
func Deflag(res *models.Resource, sudo bool, now time.Time) {
	if sudo {
		for _, f := range res.Flaggers {
			if !res.IsBarred(f) {
				res.BarredFlaggers = append(res.BarredFlaggers, f)
			}
		}
		at := now
		res.ApprovedAt = &at
	}
	res.Flaggers = nil
}

// Publish stamps the publish time. Flagged content cannot be published;
// this holds even for operators the policy would otherwise allow.
// Publishing an already-published resource keeps the original time.
func Publish(res *models.Resource, now time.Time) error {
	if res.Flagged() {
		return ErrFlagged
	}
	if res.PublishedAt == nil {
		at := now
		res.PublishedAt = &at
	}
	return nil
}

// Unpublish clears the publish time
func Unpublish(res *models.Resource) {
	res.PublishedAt = nil
}
