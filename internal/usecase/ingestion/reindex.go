package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"learnfeed/internal/domain/entity"
	"learnfeed/internal/infra/embedding"
	"learnfeed/internal/observability/metrics"
	"learnfeed/internal/repository"
)

// ReindexStats summarizes one run of the Reindex job.
type ReindexStats struct {
	ResourcesProcessed int
	ResourcesIndexed   int64
	Errors             int64
	Duration           time.Duration
}

// ReindexJob re-embeds every resource in the Resource Store and upserts the vectors into the
// Vector Index, without re-fetching or re-extracting anything. Used to backfill the index
// after a schema change or an embedding model swap.
type ReindexJob struct {
	resources   repository.ResourceRepository
	embedder    embedding.Embedder
	vectorIndex repository.VectorIndex
	config      Config
}

func NewReindexJob(
	resources repository.ResourceRepository,
	embedder embedding.Embedder,
	vectorIndex repository.VectorIndex,
	config Config,
) *ReindexJob {
	return &ReindexJob{
		resources:   resources,
		embedder:    embedder,
		vectorIndex: vectorIndex,
		config:      config,
	}
}

func (j *ReindexJob) Run(ctx context.Context) (ReindexStats, error) {
	start := time.Now()
	var stats ReindexStats

	all, err := j.resources.List(ctx, repository.ResourceFilters{})
	if err != nil {
		return stats, fmt.Errorf("list resources: %w", err)
	}

	chunkSize := j.config.ReindexChunkSize
	for i := 0; i < len(all); i += chunkSize {
		if ctx.Err() != nil {
			break
		}
		end := i + chunkSize
		if end > len(all) {
			end = len(all)
		}
		j.reindexChunk(ctx, all[i:end], &stats)
	}

	stats.Duration = time.Since(start)
	slog.InfoContext(ctx, "reindex job completed",
		slog.Int("resources_processed", stats.ResourcesProcessed),
		slog.Int64("resources_indexed", stats.ResourcesIndexed),
		slog.Int64("errors", stats.Errors),
		slog.Duration("duration", stats.Duration))
	return stats, nil
}

// reindexChunk embeds and upserts one chunk. Failures are logged and counted, never aborting
// the run: one bad chunk should not block the rest of the resource store from being reindexed.
func (j *ReindexJob) reindexChunk(ctx context.Context, chunk []*entity.Resource, stats *ReindexStats) {
	stats.ResourcesProcessed += len(chunk)

	texts := make([]string, len(chunk))
	for i, r := range chunk {
		texts[i] = r.EmbeddingText()
	}

	embedStart := time.Now()
	vectors, err := j.embedder.Embed(ctx, texts)
	metrics.RecordEmbeddingBatch(time.Since(embedStart))
	if err != nil {
		stats.Errors += int64(len(chunk))
		slog.WarnContext(ctx, "failed to embed resource chunk, skipping", slog.Any("error", err))
		return
	}

	docs := make([]entity.VectorDocument, len(chunk))
	for i, r := range chunk {
		docs[i] = entity.VectorDocument{
			ResourceID:  r.ID,
			Embedding:   vectors[i],
			Kind:        r.Kind,
			SourceID:    r.SourceID,
			PublishedAt: r.PublishedAt.Unix(),
		}
	}

	for _, res := range j.vectorIndex.Upsert(ctx, docs) {
		if res.Err != nil {
			stats.Errors++
			slog.WarnContext(ctx, "failed to index resource embedding during reindex",
				slog.Int64("resource_id", res.ResourceID), slog.Any("error", res.Err))
			continue
		}
		stats.ResourcesIndexed++
	}
}
