package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"learnfeed/internal/domain/entity"
	"learnfeed/internal/repository"

	"github.com/pgvector/pgvector-go"
)

// DefaultSearchTimeout bounds a single similarity search query.
const DefaultSearchTimeout = 5 * time.Second

// maxSearchK caps the k passed to the underlying similarity query regardless of what the caller
// requests, bounding worst-case query cost against the HNSW index.
const maxSearchK = 200

// PgVectorIndex implements repository.VectorIndex on top of a pgvector column.
type PgVectorIndex struct {
	db  *sql.DB
	dim int
}

// NewPgVectorIndex creates a VectorIndex backed by the resource_embeddings table. dim is the
// embedding dimensionality used to create the vector column and its HNSW index.
func NewPgVectorIndex(db *sql.DB, dim int) repository.VectorIndex {
	return &PgVectorIndex{db: db, dim: dim}
}

func (idx *PgVectorIndex) Initialize(ctx context.Context) error {
	createTable := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS resource_embeddings (
	resource_id  BIGINT PRIMARY KEY REFERENCES resources(id) ON DELETE CASCADE,
	kind         TEXT NOT NULL,
	source_id    BIGINT NOT NULL,
	published_at TIMESTAMPTZ NOT NULL,
	embedding    vector(%d) NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`, idx.dim)
	if _, err := idx.db.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("Initialize: create table: %w", err)
	}

	const createIndex = `
CREATE INDEX IF NOT EXISTS resource_embeddings_hnsw_idx
ON resource_embeddings USING hnsw (embedding vector_cosine_ops)`
	if _, err := idx.db.ExecContext(ctx, createIndex); err != nil {
		return fmt.Errorf("Initialize: create index: %w", err)
	}
	return nil
}

func (idx *PgVectorIndex) Upsert(ctx context.Context, docs []entity.VectorDocument) []repository.UpsertResult {
	const query = `
INSERT INTO resource_embeddings (resource_id, kind, source_id, published_at, embedding, updated_at)
VALUES ($1, $2, $3, to_timestamp($4), $5, NOW())
ON CONFLICT (resource_id)
DO UPDATE SET
	kind         = EXCLUDED.kind,
	source_id    = EXCLUDED.source_id,
	published_at = EXCLUDED.published_at,
	embedding    = EXCLUDED.embedding,
	updated_at   = NOW()`

	results := make([]repository.UpsertResult, len(docs))
	for i, doc := range docs {
		vector := pgvector.NewVector(doc.Embedding)
		_, err := idx.db.ExecContext(ctx, query,
			doc.ResourceID, string(doc.Kind), doc.SourceID, doc.PublishedAt, vector,
		)
		if err != nil {
			err = fmt.Errorf("Upsert: resource %d: %w", doc.ResourceID, err)
		}
		results[i] = repository.UpsertResult{ResourceID: doc.ResourceID, Err: err}
	}
	return results
}

func (idx *PgVectorIndex) Delete(ctx context.Context, resourceID int64) error {
	const query = `DELETE FROM resource_embeddings WHERE resource_id = $1`
	if _, err := idx.db.ExecContext(ctx, query, resourceID); err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	return nil
}

func (idx *PgVectorIndex) Search(ctx context.Context, query []float32, k int, filters repository.VectorSearchFilters) ([]entity.ScoredID, error) {
	searchCtx, cancel := context.WithTimeout(ctx, DefaultSearchTimeout)
	defer cancel()

	if k <= 0 {
		k = 10
	}
	if k > maxSearchK {
		slog.WarnContext(ctx, "search k exceeds hard upper bound, clamping",
			slog.Int("requested_k", k), slog.Int("clamped_k", maxSearchK))
		k = maxSearchK
	}

	vector := pgvector.NewVector(query)

	sqlQuery := `
SELECT resource_id, 1 - (embedding <=> $1) AS similarity
FROM resource_embeddings
WHERE 1=1`
	args := []any{vector}
	idxParam := 2

	if filters.Kind != "" {
		sqlQuery += fmt.Sprintf(" AND kind = $%d", idxParam)
		args = append(args, string(filters.Kind))
		idxParam++
	}
	if !filters.Since.IsZero() {
		sqlQuery += fmt.Sprintf(" AND published_at >= $%d", idxParam)
		args = append(args, filters.Since)
		idxParam++
	}
	if len(filters.Excluded) > 0 {
		sqlQuery += fmt.Sprintf(" AND resource_id != ALL($%d)", idxParam)
		args = append(args, filters.Excluded)
		idxParam++
	}
	sqlQuery += fmt.Sprintf(" ORDER BY embedding <=> $1 LIMIT $%d", idxParam)
	args = append(args, k)

	rows, err := idx.db.QueryContext(searchCtx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("Search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := make([]entity.ScoredID, 0, k)
	for rows.Next() {
		var hit entity.ScoredID
		if err := rows.Scan(&hit.ResourceID, &hit.Similarity); err != nil {
			return nil, fmt.Errorf("Search: Scan: %w", err)
		}
		results = append(results, hit)
	}
	return results, rows.Err()
}

func (idx *PgVectorIndex) Count(ctx context.Context) (int64, error) {
	const query = `SELECT COUNT(*) FROM resource_embeddings`
	var count int64
	if err := idx.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return count, nil
}
