package service

import (
	"github.com/google/uuid"

	"github.com/WhatDanDoes/mediashare/cmd/mediashare/models"
)

// ToggleLike flips agent's like on the resource: present is removed,
// absent is appended. Exactly one flip per call. Removal is by value so
// the relative order of the surviving likes never changes.
// Returns true if the resource is liked by the agent after the call.
func ToggleLike(res *models.Resource, agent uuid.UUID) bool {
	if res.HasLiked(agent) {
		kept := res.Likes[:0]
		for _, id := range res.Likes {
			if id != agent {
				kept = append(kept, id)
			}
		}
		res.Likes = kept
		return false
	}
	res.Likes = append(res.Likes, agent)
	return true
}
