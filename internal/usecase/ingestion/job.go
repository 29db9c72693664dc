// Package ingestion drives the Source Ingestion Pipeline: fetch a source's content, extract
// candidate resources with an LLM, deduplicate and persist them, then embed and index the
// ones that land. Job runs this over every active source; ReindexJob (reindex.go)
// re-embeds the existing Resource Store without re-fetching anything.
package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"learnfeed/internal/domain/entity"
	"learnfeed/internal/infra/embedding"
	"learnfeed/internal/infra/extractor"
	"learnfeed/internal/infra/fetcher"
	"learnfeed/internal/observability/metrics"
	"learnfeed/internal/repository"

	"golang.org/x/sync/errgroup"
)

// IngestionStats summarizes one run of the Ingestion Job. When IngestParallelism > 1, every
// field except Duration is mutated concurrently from runBatch's errgroup goroutines, so every
// counter is updated exclusively through sync/atomic, mirroring the teacher's CrawlStats.
type IngestionStats struct {
	SourcesProcessed   int64
	CandidatesFound    int64
	ResourcesAdded     int64
	ResourcesDuplicate int64
	ResourcesInvalid   int64
	Errors             int64
	Duration           time.Duration
}

// Job orchestrates the fetch -> extract -> dedupe -> persist -> embed -> index pipeline over
// every active source.
type Job struct {
	sources     repository.SourceRepository
	resources   repository.ResourceRepository
	fetcher     fetcher.Fetcher
	extractor   extractor.Extractor
	embedder    embedding.Embedder
	vectorIndex repository.VectorIndex
	config      Config
}

func NewJob(
	sources repository.SourceRepository,
	resources repository.ResourceRepository,
	f fetcher.Fetcher,
	ex extractor.Extractor,
	em embedding.Embedder,
	vectorIndex repository.VectorIndex,
	config Config,
) *Job {
	return &Job{
		sources:     sources,
		resources:   resources,
		fetcher:     f,
		extractor:   ex,
		embedder:    em,
		vectorIndex: vectorIndex,
		config:      config,
	}
}

// Run ingests every active source in batches of config.BatchSize. A source-level error is
// logged and skipped; an authentication error from the Extraction Client aborts the run, since
// every remaining source would fail identically.
func (j *Job) Run(ctx context.Context) (IngestionStats, error) {
	start := time.Now()
	var stats IngestionStats

	srcs, err := j.sources.ListActive(ctx)
	if err != nil {
		return stats, fmt.Errorf("list active sources: %w", err)
	}

	for batchStart := 0; batchStart < len(srcs); batchStart += j.config.BatchSize {
		if ctx.Err() != nil {
			break
		}
		end := batchStart + j.config.BatchSize
		if end > len(srcs) {
			end = len(srcs)
		}
		batch := srcs[batchStart:end]

		if err := j.runBatch(ctx, batch, &stats); err != nil {
			stats.Duration = time.Since(start)
			return stats, err
		}
	}

	stats.Duration = time.Since(start)
	slog.InfoContext(ctx, "ingestion job completed",
		slog.Int64("sources_processed", stats.SourcesProcessed),
		slog.Int64("candidates_found", stats.CandidatesFound),
		slog.Int64("resources_added", stats.ResourcesAdded),
		slog.Int64("resources_duplicate", stats.ResourcesDuplicate),
		slog.Int64("errors", stats.Errors),
		slog.Duration("duration", stats.Duration))
	return stats, nil
}

// runBatch processes one batch of sources, either serially (IngestParallelism <= 1, the
// default) or with a bounded errgroup, matching the teacher's two-tier concurrency pattern.
// An *entity.ErrAuth-class error from any source aborts the whole batch and propagates.
func (j *Job) runBatch(ctx context.Context, batch []*entity.Source, stats *IngestionStats) error {
	if j.config.IngestParallelism <= 1 {
		for _, src := range batch {
			if err := j.processSource(ctx, src, stats); err != nil {
				return err
			}
		}
		return nil
	}

	sem := make(chan struct{}, j.config.IngestParallelism)
	eg, egCtx := errgroup.WithContext(ctx)
	for _, src := range batch {
		src := src
		eg.Go(func() error {
			sem <- struct{}{}
			defer func() { <-sem }()
			return j.processSource(egCtx, src, stats)
		})
	}
	return eg.Wait()
}

// processSource fetches, extracts, deduplicates, persists, embeds, and indexes candidates for
// a single source. Returns a non-nil error only when extraction failed with ErrAuth; every
// other failure is logged, counted, and swallowed so the run continues.
func (j *Job) processSource(ctx context.Context, src *entity.Source, stats *IngestionStats) error {
	sourceStart := time.Now()
	sourceCtx, cancel := context.WithTimeout(ctx, j.config.SourceTimeout)
	defer cancel()

	atomic.AddInt64(&stats.SourcesProcessed, 1)

	content, err := j.fetcher.Fetch(sourceCtx, src.URL)
	if err != nil {
		atomic.AddInt64(&stats.Errors, 1)
		metrics.RecordIngestionSourceError(src.ID, "fetch_failed")
		slog.WarnContext(ctx, "failed to fetch source content, skipping",
			slog.Int64("source_id", src.ID), slog.String("url", src.URL), slog.Any("error", err))
		return nil
	}

	result, err := j.extractor.Extract(sourceCtx, extractor.ExtractRequest{
		SourceURL:      src.URL,
		Content:        content.Text,
		SourceCategory: src.Category,
	})
	if err != nil {
		if errors.Is(err, entity.ErrAuth) {
			slog.ErrorContext(ctx, "extraction client authentication failed, aborting ingestion run",
				slog.Int64("source_id", src.ID), slog.Any("error", err))
			return fmt.Errorf("source %d: %w", src.ID, err)
		}
		atomic.AddInt64(&stats.Errors, 1)
		metrics.RecordIngestionSourceError(src.ID, "extract_failed")
		slog.WarnContext(ctx, "extraction failed, skipping source",
			slog.Int64("source_id", src.ID), slog.Any("error", err))
		return nil
	}
	if result.ParseErr != nil {
		slog.WarnContext(ctx, "extraction response could not be parsed",
			slog.Int64("source_id", src.ID), slog.Any("error", result.ParseErr))
	}
	atomic.AddInt64(&stats.CandidatesFound, int64(len(result.Candidates)))

	added := j.persistCandidates(ctx, src, result.Candidates, stats)
	j.embedAndIndex(ctx, added, stats)

	safeCtx := context.WithoutCancel(ctx)
	if err := j.sources.TouchFetchedAt(safeCtx, src.ID, time.Now()); err != nil {
		slog.WarnContext(ctx, "failed to update source fetched timestamp",
			slog.Int64("source_id", src.ID), slog.Any("error", err))
	}

	metrics.RecordIngestionSource(src.ID, time.Since(sourceStart))
	return nil
}

// persistCandidates deduplicates candidates against the Resource Store in one batch round
// trip, then adds the survivors. Returns the resources that were actually inserted.
func (j *Job) persistCandidates(ctx context.Context, src *entity.Source, candidates []extractor.Candidate, stats *IngestionStats) []*entity.Resource {
	urls := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c.URL != "" {
			urls = append(urls, c.URL)
		}
	}
	existing, err := j.resources.ExistsByURLBatch(ctx, urls)
	if err != nil {
		atomic.AddInt64(&stats.Errors, 1)
		metrics.RecordIngestionSourceError(src.ID, "batch_check_failed")
		slog.WarnContext(ctx, "failed to batch check candidate urls, skipping source",
			slog.Int64("source_id", src.ID), slog.Any("error", err))
		return nil
	}

	added := make([]*entity.Resource, 0, len(candidates))
	for _, c := range candidates {
		if c.URL == "" {
			atomic.AddInt64(&stats.ResourcesInvalid, 1)
			continue
		}
		if existing[c.URL] {
			atomic.AddInt64(&stats.ResourcesDuplicate, 1)
			continue
		}

		kind := c.Kind
		if !kind.Valid() {
			kind = src.Category
		}
		res := &entity.Resource{
			SourceID:    src.ID,
			Kind:        kind,
			Title:       c.Title,
			URL:         c.URL,
			Description: c.Description,
			PublishedAt: time.Now(),
			CreatedAt:   time.Now(),
		}
		if err := res.Validate(); err != nil {
			atomic.AddInt64(&stats.ResourcesInvalid, 1)
			continue
		}

		if err := j.resources.Add(ctx, res); err != nil {
			if errors.Is(err, entity.ErrDuplicateURL) {
				atomic.AddInt64(&stats.ResourcesDuplicate, 1)
				continue
			}
			atomic.AddInt64(&stats.Errors, 1)
			metrics.RecordIngestionSourceError(src.ID, "add_failed")
			slog.WarnContext(ctx, "failed to add resource, skipping candidate",
				slog.String("url", res.URL), slog.Any("error", err))
			continue
		}
		atomic.AddInt64(&stats.ResourcesAdded, 1)
		added = append(added, res)
	}
	return added
}

// embedAndIndex embeds the newly added resources and upserts them into the Vector Index. A
// failure here is logged and swallowed: the resource is already persisted and will be picked
// up by the next Reindex run.
func (j *Job) embedAndIndex(ctx context.Context, added []*entity.Resource, stats *IngestionStats) {
	if len(added) == 0 {
		return
	}

	texts := make([]string, len(added))
	for i, r := range added {
		texts[i] = r.EmbeddingText()
	}

	embedStart := time.Now()
	vectors, err := j.embedder.Embed(ctx, texts)
	metrics.RecordEmbeddingBatch(time.Since(embedStart))
	if err != nil {
		atomic.AddInt64(&stats.Errors, 1)
		slog.WarnContext(ctx, "failed to embed newly added resources", slog.Any("error", err))
		return
	}

	docs := make([]entity.VectorDocument, len(added))
	for i, r := range added {
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
			atomic.AddInt64(&stats.Errors, 1)
			slog.WarnContext(ctx, "failed to index resource embedding",
				slog.Int64("resource_id", res.ResourceID), slog.Any("error", res.Err))
		}
	}
}
