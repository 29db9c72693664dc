// Package feedgen turns Recommendation Engine output into persisted per-user, per-day feeds.
package feedgen

import (
	"context"
	"fmt"
	"time"

	"learnfeed/internal/domain/entity"
	"learnfeed/internal/repository"
	"learnfeed/internal/usecase/engine"
	"learnfeed/internal/usecase/profile"
)

// recentWindowDays bounds how far back "recently recommended" looks when excluding candidates,
// per spec.md §4.9 step 3.
const recentWindowDays = 7

// Generator implements spec.md §4.9: build a profile, retrieve and score candidates through
// the Recommendation Engine, and persist the result idempotently per (user, date, feed type).
type Generator struct {
	profiles        *profile.Builder
	engine          *engine.Engine
	votes           repository.VoteRepository
	recommendations repository.RecommendationRepository
}

func NewGenerator(profiles *profile.Builder, eng *engine.Engine, votes repository.VoteRepository, recommendations repository.RecommendationRepository) *Generator {
	return &Generator{profiles: profiles, engine: eng, votes: votes, recommendations: recommendations}
}

// Generate implements spec.md §4.9 steps 1-5 for a single (user, feed type, date). Returns the
// existing feed unchanged if one was already generated today (idempotency).
func (g *Generator) Generate(ctx context.Context, userID int64, feedType entity.FeedType, date time.Time, n int) ([]entity.Recommendation, error) {
	existing, err := g.recommendations.ExistsFor(ctx, userID, date, feedType)
	if err != nil {
		return nil, fmt.Errorf("feedgen: check existing feed: %w", err)
	}
	if existing {
		return g.recommendations.GetByUserDateType(ctx, userID, date, feedType)
	}

	userProfile, err := g.profiles.Build(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("feedgen: build profile: %w", err)
	}

	votes, err := g.votes.GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("feedgen: fetch votes: %w", err)
	}
	seenIDs := make([]int64, 0, len(votes))
	for _, v := range votes {
		seenIDs = append(seenIDs, v.Vote.ResourceID)
	}

	recentlyRecommended, err := g.recommendations.GetRecentByUser(ctx, userID, date.AddDate(0, 0, -recentWindowDays), date)
	if err != nil {
		return nil, fmt.Errorf("feedgen: fetch recently recommended: %w", err)
	}

	scored, err := g.engine.Recommend(ctx, engine.RecommendRequest{
		FeedType:               entity.Kind(feedType),
		Date:                   date,
		Count:                  n,
		Profile:                userProfile,
		Votes:                  votes,
		SeenIDs:                seenIDs,
		RecentlyRecommendedIDs: recentlyRecommended,
	})
	if err != nil {
		return nil, fmt.Errorf("feedgen: recommend: %w", err)
	}
	if len(scored) == 0 {
		return nil, nil
	}

	now := time.Now()
	recs := make([]entity.Recommendation, len(scored))
	for i, s := range scored {
		recs[i] = entity.Recommendation{
			UserID:     userID,
			ResourceID: s.ResourceID,
			FeedType:   feedType,
			Date:       date,
			Score:      s.Score,
			Position:   i + 1,
			CreatedAt:  now,
		}
	}
	if err := g.recommendations.Add(ctx, recs); err != nil {
		return nil, fmt.Errorf("feedgen: persist recommendations: %w", err)
	}
	return recs, nil
}

// GenerateAll runs Generate for every feed type, isolating per-feed-type failures: one failing
// type is logged by the caller and does not prevent the others from running.
func (g *Generator) GenerateAll(ctx context.Context, userID int64, date time.Time, n int) (map[entity.FeedType][]entity.Recommendation, map[entity.FeedType]error) {
	results := make(map[entity.FeedType][]entity.Recommendation, len(entity.FeedTypes))
	errs := make(map[entity.FeedType]error)
	for _, ft := range entity.FeedTypes {
		recs, err := g.Generate(ctx, userID, ft, date, n)
		if err != nil {
			errs[ft] = err
			continue
		}
		results[ft] = recs
	}
	return results, errs
}
