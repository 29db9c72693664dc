// Package metrics provides centralized Prometheus metrics for the application.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Business metrics track ingestion and feed generation activity.
var (
	// ResourcesTotal tracks total number of resources in the database.
	ResourcesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "resources_total",
			Help: "Total number of resources in the database",
		},
	)

	// SourcesTotal tracks total number of sources in the database.
	SourcesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sources_total",
			Help: "Total number of sources in the database",
		},
	)

	// ResourcesIngestedTotal counts resources persisted per source.
	ResourcesIngestedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resources_ingested_total",
			Help: "Total number of resources ingested from sources",
		},
		[]string{"source_id"},
	)

	// ExtractionsTotal counts LLM extraction calls by outcome.
	ExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "extractions_total",
			Help: "Total number of LLM extraction calls",
		},
		[]string{"status"}, // status: success, parse_error, failure
	)

	// ExtractionDuration measures time to extract candidates from one source's content.
	ExtractionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "extraction_duration_seconds",
			Help:    "Time taken to extract candidates from fetched content",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)

	// IngestionSourceDuration measures time to process a single source in the Ingestion Job.
	IngestionSourceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ingestion_source_duration_seconds",
			Help:    "Time taken to ingest a single source",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"source_id"},
	)

	// IngestionSourceErrors counts errors during source ingestion.
	IngestionSourceErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingestion_source_errors_total",
			Help: "Total number of source ingestion errors",
		},
		[]string{"source_id", "error_type"},
	)

	// ContentFetchAttemptsTotal counts content fetch attempts by result.
	ContentFetchAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_fetch_attempts_total",
			Help: "Total number of content fetch attempts",
		},
		[]string{"result"}, // result: success, failure
	)

	// ContentFetchDuration measures time to fetch a source's content.
	ContentFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "content_fetch_duration_seconds",
			Help:    "Time taken to fetch source content",
			Buckets: []float64{0.1, 0.2, 0.4, 0.8, 1.6, 3.2, 6.4, 12.8},
		},
	)

	// EmbeddingBatchDuration measures time to embed one batch of resource text.
	EmbeddingBatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "embedding_batch_duration_seconds",
			Help:    "Time taken to embed one batch of resource text",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
	)

	// FeedsGeneratedTotal counts feeds generated per feed type.
	FeedsGeneratedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feeds_generated_total",
			Help: "Total number of feeds generated",
		},
		[]string{"feed_type"},
	)

	// FeedGenerationErrors counts errors during feed generation.
	FeedGenerationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_generation_errors_total",
			Help: "Total number of feed generation errors",
		},
		[]string{"feed_type"},
	)
)

// Database metrics track database performance.
var (
	// DBQueryDuration measures database query duration.
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)

	// DBConnectionsActive tracks active database connections.
	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	// DBConnectionsIdle tracks idle database connections.
	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)

// RecordOperationDuration records the duration of a named operation.
func RecordOperationDuration(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
