package repository

import (
	"context"
	"time"

	"learnfeed/internal/domain/entity"
)

// VectorSearchFilters narrows a Vector Index search to candidates the Recommendation Engine
// is allowed to surface. A nil/zero field means "no filter on this dimension".
type VectorSearchFilters struct {
	Kind     entity.Kind
	Excluded []int64
	Since    time.Time
}

// UpsertResult reports the outcome of indexing a single document within an Upsert batch.
type UpsertResult struct {
	ResourceID int64
	Err        error
}

// VectorIndex stores resource embeddings and serves nearest-neighbor search by cosine
// similarity. Backed by a pgvector column in this implementation (§4.4), but the interface
// makes no assumption about the storage engine.
type VectorIndex interface {
	// Initialize is idempotent: safe to call on every worker start.
	Initialize(ctx context.Context) error

	Upsert(ctx context.Context, docs []entity.VectorDocument) []UpsertResult

	Delete(ctx context.Context, resourceID int64) error

	// Search returns up to k resource IDs most similar to query, ordered by descending
	// similarity, subject to filters.
	Search(ctx context.Context, query []float32, k int, filters VectorSearchFilters) ([]entity.ScoredID, error)

	Count(ctx context.Context) (int64, error)
}
