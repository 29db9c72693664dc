package repository

import (
	"context"
	"time"

	"learnfeed/internal/domain/entity"
)

// SourceRepository provides read access to configured sources. Sources are created and
// managed outside the worker; this interface only exposes what the Ingestion Job needs.
type SourceRepository interface {
	Get(ctx context.Context, id int64) (*entity.Source, error)
	ListActive(ctx context.Context) ([]*entity.Source, error)
	TouchFetchedAt(ctx context.Context, id int64, t time.Time) error
}
