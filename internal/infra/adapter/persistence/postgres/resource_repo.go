// Package postgres implements the repository interfaces against a Postgres database reached
// through the pgx stdlib driver.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"learnfeed/internal/domain/entity"
	"learnfeed/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolationCode = "23505"

type ResourceRepo struct{ db *sql.DB }

func NewResourceRepo(db *sql.DB) repository.ResourceRepository {
	return &ResourceRepo{db: db}
}

func scanResource(row scannable) (*entity.Resource, error) {
	var r entity.Resource
	var metadataJSON []byte
	if err := row.Scan(&r.ID, &r.SourceID, &r.Kind, &r.Title, &r.URL, &r.Description,
		&r.PublishedAt, &r.CreatedAt, &metadataJSON); err != nil {
		return nil, err
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &r.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	return &r, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func (repo *ResourceRepo) Get(ctx context.Context, id int64) (*entity.Resource, error) {
	const query = `
SELECT id, source_id, kind, title, url, description, published_at, created_at, metadata
FROM resources
WHERE id = $1
LIMIT 1`
	r, err := scanResource(repo.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return r, nil
}

func (repo *ResourceRepo) GetMany(ctx context.Context, ids []int64) ([]*entity.Resource, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const query = `
SELECT id, source_id, kind, title, url, description, published_at, created_at, metadata
FROM resources
WHERE id = ANY($1)`
	rows, err := repo.db.QueryContext(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("GetMany: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make([]*entity.Resource, 0, len(ids))
	for rows.Next() {
		r, err := scanResource(rows)
		if err != nil {
			return nil, fmt.Errorf("GetMany: Scan: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func (repo *ResourceRepo) List(ctx context.Context, filters repository.ResourceFilters) ([]*entity.Resource, error) {
	query := `
SELECT id, source_id, kind, title, url, description, published_at, created_at, metadata
FROM resources
WHERE 1=1`
	var args []any
	idx := 1

	if filters.Kind != nil {
		query += fmt.Sprintf(" AND kind = $%d", idx)
		args = append(args, *filters.Kind)
		idx++
	}
	if filters.SourceID != nil {
		query += fmt.Sprintf(" AND source_id = $%d", idx)
		args = append(args, *filters.SourceID)
		idx++
	}
	if filters.Since != nil {
		query += fmt.Sprintf(" AND published_at >= $%d", idx)
		args = append(args, *filters.Since)
		idx++
	}
	if filters.Until != nil {
		query += fmt.Sprintf(" AND published_at <= $%d", idx)
		args = append(args, *filters.Until)
		idx++
	}
	if len(filters.Excluded) > 0 {
		query += fmt.Sprintf(" AND id != ALL($%d)", idx)
		args = append(args, filters.Excluded)
		idx++
	}
	query += " ORDER BY published_at DESC"

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make([]*entity.Resource, 0, 100)
	for rows.Next() {
		r, err := scanResource(rows)
		if err != nil {
			return nil, fmt.Errorf("List: Scan: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func (repo *ResourceRepo) Add(ctx context.Context, resource *entity.Resource) error {
	metadataJSON, err := json.Marshal(resource.Metadata)
	if err != nil {
		return fmt.Errorf("Add: marshal metadata: %w", err)
	}

	const query = `
INSERT INTO resources
       (source_id, kind, title, url, description, published_at, created_at, metadata)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id`
	err = repo.db.QueryRowContext(ctx, query,
		resource.SourceID, resource.Kind, resource.Title, resource.URL,
		resource.Description, resource.PublishedAt, resource.CreatedAt, metadataJSON,
	).Scan(&resource.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return fmt.Errorf("Add: %w", entity.ErrDuplicateURL)
		}
		return fmt.Errorf("Add: %w", err)
	}
	return nil
}

func (repo *ResourceRepo) Update(ctx context.Context, resource *entity.Resource) error {
	metadataJSON, err := json.Marshal(resource.Metadata)
	if err != nil {
		return fmt.Errorf("Update: marshal metadata: %w", err)
	}

	const query = `
UPDATE resources SET
       source_id    = $1,
       kind         = $2,
       title        = $3,
       url          = $4,
       description  = $5,
       published_at = $6,
       metadata     = $7
WHERE id = $8`
	res, err := repo.db.ExecContext(ctx, query,
		resource.SourceID, resource.Kind, resource.Title, resource.URL,
		resource.Description, resource.PublishedAt, metadataJSON, resource.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Update: %w", entity.ErrNotFound)
	}
	return nil
}

func (repo *ResourceRepo) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM resources WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Delete: %w", entity.ErrNotFound)
	}
	return nil
}

func (repo *ResourceRepo) ExistsByURL(ctx context.Context, url string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM resources WHERE url = $1)`
	var exists bool
	if err := repo.db.QueryRowContext(ctx, query, url).Scan(&exists); err != nil {
		return false, fmt.Errorf("ExistsByURL: %w", err)
	}
	return exists, nil
}

// ExistsByURLBatch checks many URLs in one round trip. The pgx stdlib driver encodes a Go
// []string directly as a Postgres text[] argument, so no array-literal helper library is
// needed here.
func (repo *ResourceRepo) ExistsByURLBatch(ctx context.Context, urls []string) (map[string]bool, error) {
	if len(urls) == 0 {
		return make(map[string]bool), nil
	}

	const query = `SELECT url FROM resources WHERE url = ANY($1)`
	rows, err := repo.db.QueryContext(ctx, query, urls)
	if err != nil {
		return nil, fmt.Errorf("ExistsByURLBatch: QueryContext: %w", err)
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]bool, len(urls))
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("ExistsByURLBatch: Scan: %w", err)
		}
		result[url] = true
	}
	return result, rows.Err()
}

func (repo *ResourceRepo) Count(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM resources`
	var count int64
	if err := repo.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return count, nil
}
