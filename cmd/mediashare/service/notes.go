package service

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/WhatDanDoes/mediashare/cmd/mediashare/models"
)

// DefaultMaxNoteLength bounds note text (in runes) when no limit is
// configured
const DefaultMaxNoteLength = 500

// AddNote appends a note with trimmed text to the resource. Empty or
// whitespace-only text fails with ErrEmptyNote; text over maxLen runes
// fails with ErrTextTooLong. The resource is unchanged on failure.
func AddNote(res *models.Resource, author uuid.UUID, text string, maxLen int, now time.Time) (*models.Note, error) {
	if maxLen <= 0 {
		maxLen = DefaultMaxNoteLength
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, ErrEmptyNote
	}
	if len([]rune(trimmed)) > maxLen {
		return nil, ErrTextTooLong
	}

	note := models.Note{
		ID:        uuid.New(),
		Author:    author,
		Text:      trimmed,
		CreatedAt: now,
	}
	res.Notes = append(res.Notes, note)
	return &res.Notes[len(res.Notes)-1], nil
}

// RemoveNote removes exactly the note matching noteID, preserving the
// order of the remaining notes. ErrNotFound if no note matches.
func RemoveNote(res *models.Resource, noteID uuid.UUID) error {
	kept := res.Notes[:0]
	found := false
	for _, n := range res.Notes {
		if n.ID == noteID {
			found = true
			continue
		}
		kept = append(kept, n)
	}
	if !found {
		return ErrNotFound
	}
	res.Notes = kept
	return nil
}
