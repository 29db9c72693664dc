// Package repository defines the storage-facing interfaces the usecase layer depends on.
// Implementations live under internal/infra/adapter/persistence.
package repository

import (
	"context"
	"time"

	"learnfeed/internal/domain/entity"
)

// ResourceFilters narrows a resource listing. A nil field means "no filter on this dimension".
type ResourceFilters struct {
	Kind      *entity.Kind
	SourceID  *int64
	Excluded  []int64 // resource IDs to omit
	Since     *time.Time
	Until     *time.Time
}

// ResourceRepository persists and retrieves Resource entities.
type ResourceRepository interface {
	Get(ctx context.Context, id int64) (*entity.Resource, error)
	GetMany(ctx context.Context, ids []int64) ([]*entity.Resource, error)
	List(ctx context.Context, filters ResourceFilters) ([]*entity.Resource, error)

	// Add inserts a new resource. Returns entity.ErrDuplicateURL, wrapped, if a resource with
	// the same URL already exists — callers ingesting a batch treat this as a benign skip.
	Add(ctx context.Context, resource *entity.Resource) error

	Update(ctx context.Context, resource *entity.Resource) error
	Delete(ctx context.Context, id int64) error

	ExistsByURL(ctx context.Context, url string) (bool, error)
	// ExistsByURLBatch checks many URLs in one round trip, avoiding an N+1 pre-check per
	// ingestion candidate.
	ExistsByURLBatch(ctx context.Context, urls []string) (map[string]bool, error)

	Count(ctx context.Context) (int64, error)
}
