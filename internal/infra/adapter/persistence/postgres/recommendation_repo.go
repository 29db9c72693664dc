package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"learnfeed/internal/domain/entity"
	"learnfeed/internal/repository"
)

type RecommendationRepo struct{ db *sql.DB }

func NewRecommendationRepo(db *sql.DB) repository.RecommendationRepository {
	return &RecommendationRepo{db: db}
}

func (repo *RecommendationRepo) Add(ctx context.Context, recs []entity.Recommendation) error {
	if len(recs) == 0 {
		return nil
	}

	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("Add: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const query = `
INSERT INTO recommendations (user_id, resource_id, feed_type, date, score, position, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for _, rec := range recs {
		if _, err := tx.ExecContext(ctx, query,
			rec.UserID, rec.ResourceID, rec.FeedType, rec.Date, rec.Score, rec.Position, rec.CreatedAt,
		); err != nil {
			return fmt.Errorf("Add: insert: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("Add: commit: %w", err)
	}
	return nil
}

func (repo *RecommendationRepo) GetByUserDateType(ctx context.Context, userID int64, date time.Time, feedType entity.FeedType) ([]entity.Recommendation, error) {
	const query = `
SELECT id, user_id, resource_id, feed_type, date, score, position, created_at
FROM recommendations
WHERE user_id = $1 AND date = $2 AND feed_type = $3
ORDER BY position ASC`

	rows, err := repo.db.QueryContext(ctx, query, userID, date, feedType)
	if err != nil {
		return nil, fmt.Errorf("GetByUserDateType: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make([]entity.Recommendation, 0, 10)
	for rows.Next() {
		var rec entity.Recommendation
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.ResourceID, &rec.FeedType,
			&rec.Date, &rec.Score, &rec.Position, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("GetByUserDateType: Scan: %w", err)
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

func (repo *RecommendationRepo) GetRecentByUser(ctx context.Context, userID int64, start, end time.Time) ([]int64, error) {
	const query = `
SELECT DISTINCT resource_id
FROM recommendations
WHERE user_id = $1 AND date >= $2 AND date <= $3`

	rows, err := repo.db.QueryContext(ctx, query, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("GetRecentByUser: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("GetRecentByUser: Scan: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (repo *RecommendationRepo) ExistsFor(ctx context.Context, userID int64, date time.Time, feedType entity.FeedType) (bool, error) {
	const query = `
SELECT EXISTS (
	SELECT 1 FROM recommendations WHERE user_id = $1 AND date = $2 AND feed_type = $3
)`
	var exists bool
	err := repo.db.QueryRowContext(ctx, query, userID, date, feedType).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ExistsFor: %w", err)
	}
	return exists, nil
}
