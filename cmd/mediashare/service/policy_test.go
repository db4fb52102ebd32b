package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/WhatDanDoes/mediashare/cmd/mediashare/models"
)

const sudoEmail = "root@example.com"

func newTestAgent(email string) *models.Agent {
	return &models.Agent{ID: uuid.New(), Email: email}
}

func ownedResource(owner *models.Agent) *models.Resource {
	return &models.Resource{
		ID:        uuid.New(),
		Kind:      models.KindImage,
		Owner:     owner.ID,
		MediaPath: "uploads/test.jpg",
	}
}

func asOperator(a *models.Agent) *Operator {
	return &Operator{ID: a.ID, Email: a.Email}
}

func TestAuthorize_AnonymousSeesOnlyPublished(t *testing.T) {
	owner := newTestAgent("daniel@example.com")
	res := ownedResource(owner)
	pol := NewPolicy(sudoEmail)

	dec := pol.Authorize(nil, owner, res, ActionView)
	assert.False(t, dec.Allowed)
	assert.Equal(t, ReasonUnauthenticated, dec.Reason)

	now := time.Now()
	res.PublishedAt = &now
	dec = pol.Authorize(nil, owner, res, ActionView)
	assert.True(t, dec.Allowed)

	// Anonymous engagement is rejected even on published resources
	for _, action := range []Action{ActionLike, ActionFlag, ActionAnnotate, ActionDelete} {
		dec = pol.Authorize(nil, owner, res, action)
		assert.False(t, dec.Allowed, "action %s", action)
		assert.Equal(t, ReasonUnauthenticated, dec.Reason)
	}
}

func TestAuthorize_SudoMayDoAnything(t *testing.T) {
	owner := newTestAgent("daniel@example.com")
	res := ownedResource(owner)
	sudo := &Operator{ID: uuid.New(), Email: sudoEmail}
	pol := NewPolicy(sudoEmail)

	for _, action := range []Action{ActionView, ActionFlag, ActionDeflag, ActionPublish, ActionDelete, ActionEditMetadata} {
		dec := pol.Authorize(sudo, owner, res, action)
		assert.True(t, dec.Allowed, "action %s", action)
	}

	// Viewing flagged content succeeds with the advisory set
	res.Flaggers = []uuid.UUID{uuid.New()}
	dec := pol.Authorize(sudo, owner, res, ActionView)
	assert.True(t, dec.Allowed)
	assert.True(t, dec.FlaggedAdvisory)
}

func TestAuthorize_NoSudoConfiguredNeverMatches(t *testing.T) {
	owner := newTestAgent("daniel@example.com")
	res := ownedResource(owner)

	// Empty sudo email must not grant anonymous-email operators anything
	pol := NewPolicy("")
	op := &Operator{ID: uuid.New(), Email: ""}

	dec := pol.Authorize(op, owner, res, ActionView)
	assert.False(t, dec.Allowed)
	assert.Equal(t, ReasonForbidden, dec.Reason)
}

func TestAuthorize_OwnerFullControl(t *testing.T) {
	owner := newTestAgent("daniel@example.com")
	res := ownedResource(owner)
	pol := NewPolicy(sudoEmail)
	op := asOperator(owner)

	for _, action := range []Action{ActionView, ActionPublish, ActionUnpublish, ActionDelete, ActionEditMetadata, ActionDeflag} {
		dec := pol.Authorize(op, owner, res, action)
		assert.True(t, dec.Allowed, "action %s", action)
	}

	// Owner still sees their own flagged resource, with the advisory
	res.Flaggers = []uuid.UUID{uuid.New()}
	dec := pol.Authorize(op, owner, res, ActionView)
	assert.True(t, dec.Allowed)
	assert.True(t, dec.FlaggedAdvisory)
}

func TestAuthorize_OwnerDeflagBlockedAfterApproval(t *testing.T) {
	owner := newTestAgent("daniel@example.com")
	res := ownedResource(owner)
	now := time.Now()
	res.ApprovedAt = &now

	pol := NewPolicy(sudoEmail)
	dec := pol.Authorize(asOperator(owner), owner, res, ActionDeflag)
	assert.False(t, dec.Allowed)
	assert.Equal(t, ReasonAdministrativelyApproved, dec.Reason)

	// The super-agent may still deflag
	sudo := &Operator{ID: uuid.New(), Email: sudoEmail}
	dec = pol.Authorize(sudo, owner, res, ActionDeflag)
	assert.True(t, dec.Allowed)
}

// The grant lives on the owner: daniel granting lanny means lanny may
// view daniel's resources, and nothing about daniel viewing lanny's.
func TestAuthorize_GrantDirection(t *testing.T) {
	daniel := newTestAgent("daniel@example.com")
	lanny := newTestAgent("lanny@example.com")
	daniel.Grant(lanny.ID)

	danielsPhoto := ownedResource(daniel)
	lannysPhoto := ownedResource(lanny)
	pol := NewPolicy(sudoEmail)

	dec := pol.Authorize(asOperator(lanny), daniel, danielsPhoto, ActionView)
	assert.True(t, dec.Allowed, "lanny should view daniel's photo")

	dec = pol.Authorize(asOperator(daniel), lanny, lannysPhoto, ActionView)
	assert.False(t, dec.Allowed, "daniel must not view lanny's photo")
	assert.Equal(t, ReasonForbidden, dec.Reason)
}

func TestAuthorize_GranteeEngagementOnly(t *testing.T) {
	daniel := newTestAgent("daniel@example.com")
	lanny := newTestAgent("lanny@example.com")
	daniel.Grant(lanny.ID)

	res := ownedResource(daniel)
	pol := NewPolicy(sudoEmail)
	op := asOperator(lanny)

	for _, action := range []Action{ActionView, ActionLike, ActionAnnotate, ActionFlag} {
		dec := pol.Authorize(op, daniel, res, action)
		assert.True(t, dec.Allowed, "action %s", action)
	}
	for _, action := range []Action{ActionDeflag, ActionPublish, ActionDelete, ActionEditMetadata} {
		dec := pol.Authorize(op, daniel, res, action)
		assert.False(t, dec.Allowed, "action %s", action)
		assert.Equal(t, ReasonForbidden, dec.Reason)
	}
}

func TestAuthorize_FlaggedHiddenFromGrantee(t *testing.T) {
	daniel := newTestAgent("daniel@example.com")
	lanny := newTestAgent("lanny@example.com")
	daniel.Grant(lanny.ID)

	res := ownedResource(daniel)
	res.Flaggers = []uuid.UUID{uuid.New()}
	pol := NewPolicy(sudoEmail)

	dec := pol.Authorize(asOperator(lanny), daniel, res, ActionView)
	assert.False(t, dec.Allowed)
	assert.Equal(t, ReasonFlagged, dec.Reason)
}

func TestAuthorize_PublishedGloballyReadable(t *testing.T) {
	owner := newTestAgent("daniel@example.com")
	res := ownedResource(owner)
	now := time.Now()
	res.PublishedAt = &now

	stranger := &Operator{ID: uuid.New(), Email: "stranger@example.com"}
	pol := NewPolicy(sudoEmail)

	for _, action := range []Action{ActionView, ActionLike, ActionAnnotate, ActionFlag} {
		dec := pol.Authorize(stranger, owner, res, action)
		assert.True(t, dec.Allowed, "action %s", action)
	}
	dec := pol.Authorize(stranger, owner, res, ActionDelete)
	assert.False(t, dec.Allowed)
	assert.Equal(t, ReasonForbidden, dec.Reason)
}

func TestAuthorize_UnpublishedHiddenFromStranger(t *testing.T) {
	owner := newTestAgent("daniel@example.com")
	res := ownedResource(owner)
	stranger := &Operator{ID: uuid.New(), Email: "stranger@example.com"}

	dec := NewPolicy(sudoEmail).Authorize(stranger, owner, res, ActionView)
	assert.False(t, dec.Allowed)
	assert.Equal(t, ReasonForbidden, dec.Reason)
}

func TestAuthorizeNoteDelete(t *testing.T) {
	owner := newTestAgent("daniel@example.com")
	author := newTestAgent("lanny@example.com")
	res := ownedResource(owner)
	note := &models.Note{ID: uuid.New(), Author: author.ID, Text: "nice one"}
	pol := NewPolicy(sudoEmail)

	assert.True(t, pol.AuthorizeNoteDelete(asOperator(author), res, note).Allowed)
	assert.True(t, pol.AuthorizeNoteDelete(asOperator(owner), res, note).Allowed)

	sudo := &Operator{ID: uuid.New(), Email: sudoEmail}
	assert.True(t, pol.AuthorizeNoteDelete(sudo, res, note).Allowed)

	stranger := &Operator{ID: uuid.New(), Email: "stranger@example.com"}
	dec := pol.AuthorizeNoteDelete(stranger, res, note)
	assert.False(t, dec.Allowed)
	assert.Equal(t, ReasonForbidden, dec.Reason)

	dec = pol.AuthorizeNoteDelete(nil, res, note)
	assert.False(t, dec.Allowed)
	assert.Equal(t, ReasonUnauthenticated, dec.Reason)
}

func TestAuthorizeListFlagged(t *testing.T) {
	pol := NewPolicy(sudoEmail)

	sudo := &Operator{ID: uuid.New(), Email: sudoEmail}
	assert.True(t, pol.AuthorizeListFlagged(sudo).Allowed)

	other := &Operator{ID: uuid.New(), Email: "daniel@example.com"}
	dec := pol.AuthorizeListFlagged(other)
	assert.False(t, dec.Allowed)
	assert.Equal(t, ReasonForbidden, dec.Reason)

	dec = pol.AuthorizeListFlagged(nil)
	assert.False(t, dec.Allowed)
	assert.Equal(t, ReasonUnauthenticated, dec.Reason)
}

func TestDecisionErr(t *testing.T) {
	assert.NoError(t, allow().Err())
	assert.ErrorIs(t, deny(ReasonFlagged).Err(), ErrFlagged)
	assert.ErrorIs(t, deny(ReasonForbidden).Err(), ErrForbidden)
}
