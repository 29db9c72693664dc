package feedgen

import (
	"context"
	"log/slog"
	"time"

	"learnfeed/internal/domain/entity"
	"learnfeed/internal/repository"
)

// perUserTarget is the per-feed-type recommendation count spec.md §4.12 calls for.
const perUserTarget = 10

// FeedGenStats summarizes one run of the Feed Generation Job.
type FeedGenStats struct {
	UsersProcessed int
	FeedsGenerated int
	Failures       int
}

// Job runs the Generator over every user and feed type once per day, isolating per-(user,
// feed type) failures so one bad profile never blocks the rest of the run.
type Job struct {
	users     repository.UserRepository
	generator *Generator
}

func NewJob(users repository.UserRepository, generator *Generator) *Job {
	return &Job{users: users, generator: generator}
}

func (j *Job) Run(ctx context.Context) (FeedGenStats, error) {
	date := time.Now().UTC().Truncate(24 * time.Hour)

	userIDs, err := j.users.ListIDs(ctx)
	if err != nil {
		return FeedGenStats{}, err
	}

	var stats FeedGenStats
	for _, userID := range userIDs {
		if ctx.Err() != nil {
			break
		}
		stats.UsersProcessed++

		_, errs := j.generator.GenerateAll(ctx, userID, date, perUserTarget)
		for feedType, err := range errs {
			stats.Failures++
			slog.WarnContext(ctx, "feed generation failed for user/feed type, continuing",
				slog.Int64("user_id", userID), slog.String("feed_type", string(feedType)), slog.Any("error", err))
		}
		stats.FeedsGenerated += len(entity.FeedTypes) - len(errs)
	}

	slog.InfoContext(ctx, "feed generation job completed",
		slog.Int("users_processed", stats.UsersProcessed),
		slog.Int("feeds_generated", stats.FeedsGenerated),
		slog.Int("failures", stats.Failures))
	return stats, nil
}
