package repository

import (
	"context"

	"learnfeed/internal/domain/entity"
)

// VoteRepository provides read access to user feedback. Votes are created outside the worker;
// the Profile Builder and Recommendation Engine only ever read them.
type VoteRepository interface {
	// GetByUser returns every vote the user has cast, joined with the resource it targets so
	// callers never need a second lookup per vote.
	GetByUser(ctx context.Context, userID int64) ([]entity.VoteWithResource, error)
}
