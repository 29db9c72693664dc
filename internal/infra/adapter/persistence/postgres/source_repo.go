package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"learnfeed/internal/domain/entity"
	"learnfeed/internal/repository"
)

type SourceRepo struct{ db *sql.DB }

func NewSourceRepo(db *sql.DB) repository.SourceRepository {
	return &SourceRepo{db: db}
}

func scanSource(row scannable) (*entity.Source, error) {
	var s entity.Source
	if err := row.Scan(&s.ID, &s.Name, &s.URL, &s.Category, &s.SourceType, &s.Active, &s.LastFetchedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (repo *SourceRepo) Get(ctx context.Context, id int64) (*entity.Source, error) {
	const query = `
SELECT id, name, url, category, source_type, active, last_fetched_at
FROM sources
WHERE id = $1
LIMIT 1`
	s, err := scanSource(repo.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return s, nil
}

func (repo *SourceRepo) ListActive(ctx context.Context) ([]*entity.Source, error) {
	const query = `
SELECT id, name, url, category, source_type, active, last_fetched_at
FROM sources
WHERE active = TRUE
ORDER BY id ASC`
	rows, err := repo.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ListActive: %w", err)
	}
	defer func() { _ = rows.Close() }()

	sources := make([]*entity.Source, 0, 50)
	for rows.Next() {
		s, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("ListActive: Scan: %w", err)
		}
		sources = append(sources, s)
	}
	return sources, rows.Err()
}

func (repo *SourceRepo) TouchFetchedAt(ctx context.Context, id int64, t time.Time) error {
	const query = `UPDATE sources SET last_fetched_at = $1 WHERE id = $2`
	_, err := repo.db.ExecContext(ctx, query, t, id)
	if err != nil {
		return fmt.Errorf("TouchFetchedAt: %w", err)
	}
	return nil
}
