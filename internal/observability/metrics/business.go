package metrics

import (
	"fmt"
	"time"
)

// RecordResourcesIngested records the number of resources persisted from a source.
func RecordResourcesIngested(sourceID int64, count int) {
	if count <= 0 {
		return
	}
	ResourcesIngestedTotal.WithLabelValues(fmt.Sprintf("%d", sourceID)).Add(float64(count))
}

// RecordExtraction records the outcome of one LLM extraction call and its duration.
// Status should be one of "success", "parse_error", "failure".
func RecordExtraction(status string, duration time.Duration) {
	ExtractionsTotal.WithLabelValues(status).Inc()
	ExtractionDuration.Observe(duration.Seconds())
}

// RecordIngestionSource records the duration of ingesting a single source.
func RecordIngestionSource(sourceID int64, duration time.Duration) {
	IngestionSourceDuration.WithLabelValues(fmt.Sprintf("%d", sourceID)).Observe(duration.Seconds())
}

// RecordIngestionSourceError records an error encountered while ingesting a source.
func RecordIngestionSourceError(sourceID int64, errorType string) {
	IngestionSourceErrors.WithLabelValues(fmt.Sprintf("%d", sourceID), errorType).Inc()
}

// RecordContentFetchSuccess records a successful content fetch and its duration.
func RecordContentFetchSuccess(duration time.Duration) {
	ContentFetchAttemptsTotal.WithLabelValues("success").Inc()
	ContentFetchDuration.Observe(duration.Seconds())
}

// RecordContentFetchFailed records a failed content fetch and the time spent before failing.
func RecordContentFetchFailed(duration time.Duration) {
	ContentFetchAttemptsTotal.WithLabelValues("failure").Inc()
	ContentFetchDuration.Observe(duration.Seconds())
}

// RecordEmbeddingBatch records the duration of one embedding batch call.
func RecordEmbeddingBatch(duration time.Duration) {
	EmbeddingBatchDuration.Observe(duration.Seconds())
}

// RecordFeedGenerated records a successfully generated feed for a feed type.
func RecordFeedGenerated(feedType string) {
	FeedsGeneratedTotal.WithLabelValues(feedType).Inc()
}

// RecordFeedGenerationError records a feed generation failure for a feed type.
func RecordFeedGenerationError(feedType string) {
	FeedGenerationErrors.WithLabelValues(feedType).Inc()
}

// UpdateResourcesTotal updates the gauge tracking total resources in the database.
func UpdateResourcesTotal(count int) {
	ResourcesTotal.Set(float64(count))
}

// UpdateSourcesTotal updates the gauge tracking total sources in the database.
func UpdateSourcesTotal(count int) {
	SourcesTotal.Set(float64(count))
}

// RecordDBQuery records the duration of a database query operation.
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDBConnectionStats updates database connection pool statistics.
func UpdateDBConnectionStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
