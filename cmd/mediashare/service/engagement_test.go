package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/WhatDanDoes/mediashare/cmd/mediashare/models"
)

func TestToggleLike_FlipsExactlyOnce(t *testing.T) {
	res := &models.Resource{ID: uuid.New()}
	agent := uuid.New()

	assert.True(t, ToggleLike(res, agent))
	assert.True(t, res.HasLiked(agent))
	assert.Len(t, res.Likes, 1)

	assert.False(t, ToggleLike(res, agent))
	assert.False(t, res.HasLiked(agent))
	assert.Empty(t, res.Likes)
}

func TestToggleLike_PreservesOrderOfOthers(t *testing.T) {
	res := &models.Resource{ID: uuid.New()}
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	ToggleLike(res, a)
	ToggleLike(res, b)
	ToggleLike(res, c)

	ToggleLike(res, b)

	assert.Equal(t, []uuid.UUID{a, c}, res.Likes)
}

func TestEngagementCount(t *testing.T) {
	res := &models.Resource{ID: uuid.New()}
	ToggleLike(res, uuid.New())
	ToggleLike(res, uuid.New())
	res.Notes = append(res.Notes, models.Note{ID: uuid.New(), Author: uuid.New(), Text: "hi"})

	assert.Equal(t, 3, res.EngagementCount())
}
