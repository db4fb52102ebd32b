package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WhatDanDoes/mediashare/cmd/mediashare/models"
)

func TestFlag_DerivedFromFlaggers(t *testing.T) {
	res := &models.Resource{ID: uuid.New()}
	assert.False(t, res.Flagged())

	agent := uuid.New()
	require.NoError(t, Flag(res, agent))
	assert.True(t, res.Flagged())
	assert.Equal(t, []uuid.UUID{agent}, res.Flaggers)
}

func TestFlag_Idempotent(t *testing.T) {
	res := &models.Resource{ID: uuid.New()}
	agent := uuid.New()

	require.NoError(t, Flag(res, agent))
	require.NoError(t, Flag(res, agent))
	assert.Len(t, res.Flaggers, 1)
}

func TestFlag_BarredAgentRejected(t *testing.T) {
	res := &models.Resource{ID: uuid.New()}
	agent := uuid.New()
	res.BarredFlaggers = []uuid.UUID{agent}

	err := Flag(res, agent)
	assert.ErrorIs(t, err, ErrAdministrativelyApproved)
	assert.False(t, res.Flagged())
}

func TestDeflag_OwnerClearsWithoutBarring(t *testing.T) {
	res := &models.Resource{ID: uuid.New()}
	x := uuid.New()
	require.NoError(t, Flag(res, x))

	Deflag(res, false, time.Now())

	assert.False(t, res.Flagged())
	assert.Empty(t, res.BarredFlaggers)
	assert.Nil(t, res.ApprovedAt)

	// X may flag again after an owner deflag
	require.NoError(t, Flag(res, x))
	assert.True(t, res.Flagged())
}

func TestDeflag_SudoBarsOnlyCurrentFlaggers(t *testing.T) {
	res := &models.Resource{ID: uuid.New()}
	x := uuid.New()
	y := uuid.New()
	require.NoError(t, Flag(res, x))

	Deflag(res, true, time.Now())

	assert.False(t, res.Flagged())
	require.NotNil(t, res.ApprovedAt)

	// X is barred, Y never flagged and remains free to
	assert.ErrorIs(t, Flag(res, x), ErrAdministrativelyApproved)
	require.NoError(t, Flag(res, y))
	assert.True(t, res.Flagged())
}

func TestDeflag_SudoTwiceDoesNotDuplicateBars(t *testing.T) {
	res := &models.Resource{ID: uuid.New()}
	x := uuid.New()

	require.NoError(t, Flag(res, x))
	Deflag(res, true, time.Now())

	// x cannot re-flag, but a second sudo deflag over a different flagger
	// must not duplicate x's bar entry
	y := uuid.New()
	require.NoError(t, Flag(res, y))
	res.Flaggers = append(res.Flaggers, x) // simulate stale state
	Deflag(res, true, time.Now())

	count := 0
	for _, id := range res.BarredFlaggers {
		if id == x {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestPublish_RejectedWhileFlagged(t *testing.T) {
	res := &models.Resource{ID: uuid.New()}
	require.NoError(t, Flag(res, uuid.New()))

	err := Publish(res, time.Now())
	assert.ErrorIs(t, err, ErrFlagged)
	assert.False(t, res.Published())
}

func TestPublish_KeepsOriginalTimestamp(t *testing.T) {
	res := &models.Resource{ID: uuid.New()}
	first := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	later := first.Add(48 * time.Hour)

	require.NoError(t, Publish(res, first))
	require.NoError(t, Publish(res, later))

	require.NotNil(t, res.PublishedAt)
	assert.Equal(t, first, *res.PublishedAt)
}

func TestUnpublishThenRepublish(t *testing.T) {
	res := &models.Resource{ID: uuid.New()}
	first := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	require.NoError(t, Publish(res, first))
	Unpublish(res)
	assert.False(t, res.Published())

	require.NoError(t, Publish(res, second))
	require.NotNil(t, res.PublishedAt)
	assert.Equal(t, second, *res.PublishedAt)
}
