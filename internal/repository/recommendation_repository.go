package repository

import (
	"context"
	"time"

	"learnfeed/internal/domain/entity"
)

// RecommendationRepository persists and retrieves generated feed entries.
type RecommendationRepository interface {
	Add(ctx context.Context, recs []entity.Recommendation) error

	GetByUserDateType(ctx context.Context, userID int64, date time.Time, feedType entity.FeedType) ([]entity.Recommendation, error)

	// GetRecentByUser returns resource IDs recommended to the user across any feed type within
	// [start, end], used to avoid re-recommending something seen recently.
	GetRecentByUser(ctx context.Context, userID int64, start, end time.Time) ([]int64, error)

	// ExistsFor reports whether a feed already exists for (userID, date, feedType), making feed
	// generation idempotent per day.
	ExistsFor(ctx context.Context, userID int64, date time.Time, feedType entity.FeedType) (bool, error)
}
