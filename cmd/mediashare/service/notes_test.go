package service

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WhatDanDoes/mediashare/cmd/mediashare/models"
)

func TestAddNote_TrimsText(t *testing.T) {
	res := &models.Resource{ID: uuid.New()}
	author := uuid.New()
	now := time.Now()

	note, err := AddNote(res, author, "  a fine shot \n", DefaultMaxNoteLength, now)
	require.NoError(t, err)
	assert.Equal(t, "a fine shot", note.Text)
	assert.Equal(t, author, note.Author)
	assert.Equal(t, now, note.CreatedAt)
	assert.Len(t, res.Notes, 1)
}

func TestAddNote_RejectsEmptyAndWhitespace(t *testing.T) {
	res := &models.Resource{ID: uuid.New()}

	for _, text := range []string{"", "   ", "\t\n"} {
		_, err := AddNote(res, uuid.New(), text, DefaultMaxNoteLength, time.Now())
		assert.ErrorIs(t, err, ErrEmptyNote, "text %q", text)
	}
	assert.Empty(t, res.Notes)
}

func TestAddNote_LengthLimitCountsRunes(t *testing.T) {
	res := &models.Resource{ID: uuid.New()}

	// 10 multi-byte runes fit a limit of 10 even though the byte count
	// is larger
	text := strings.Repeat("é", 10)
	_, err := AddNote(res, uuid.New(), text, 10, time.Now())
	require.NoError(t, err)

	_, err = AddNote(res, uuid.New(), text+"é", 10, time.Now())
	assert.ErrorIs(t, err, ErrTextTooLong)
	assert.Len(t, res.Notes, 1)
}

func TestRemoveNote_PreservesOrder(t *testing.T) {
	res := &models.Resource{ID: uuid.New()}
	var ids []uuid.UUID
	for _, text := range []string{"one", "two", "three"} {
		note, err := AddNote(res, uuid.New(), text, DefaultMaxNoteLength, time.Now())
		require.NoError(t, err)
		ids = append(ids, note.ID)
	}

	require.NoError(t, RemoveNote(res, ids[1]))

	require.Len(t, res.Notes, 2)
	assert.Equal(t, "one", res.Notes[0].Text)
	assert.Equal(t, "three", res.Notes[1].Text)
}

func TestRemoveNote_NotFound(t *testing.T) {
	res := &models.Resource{ID: uuid.New()}
	_, err := AddNote(res, uuid.New(), "keep me", DefaultMaxNoteLength, time.Now())
	require.NoError(t, err)

	err = RemoveNote(res, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Len(t, res.Notes, 1)
}
