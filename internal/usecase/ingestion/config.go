package ingestion

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Config controls the Ingestion Job's batching and per-source timeout behavior.
// LoadConfigFromEnv never fails: an invalid environment value falls back to the default and
// is logged, matching the fail-open convention used for the rest of the worker's configuration.
type Config struct {
	BatchSize         int           // sources processed per batch
	SourceTimeout     time.Duration // per-source deadline
	IngestParallelism int           // sources processed concurrently within a batch; 1 = serial
	ReindexChunkSize  int           // resources embedded per Reindex batch
}

func DefaultConfig() Config {
	return Config{
		BatchSize:         5,
		SourceTimeout:     120 * time.Second,
		IngestParallelism: 1,
		ReindexChunkSize:  50,
	}
}

func LoadConfigFromEnv() Config {
	cfg := DefaultConfig()

	if val := os.Getenv("INGEST_BATCH_SIZE"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			cfg.BatchSize = parsed
		} else {
			slog.Warn("invalid INGEST_BATCH_SIZE, using default", slog.String("value", val))
		}
	}
	if val := os.Getenv("INGEST_SOURCE_TIMEOUT"); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil && parsed > 0 {
			cfg.SourceTimeout = parsed
		} else {
			slog.Warn("invalid INGEST_SOURCE_TIMEOUT, using default", slog.String("value", val))
		}
	}
	if val := os.Getenv("INGEST_PARALLELISM"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			cfg.IngestParallelism = parsed
		} else {
			slog.Warn("invalid INGEST_PARALLELISM, using default", slog.String("value", val))
		}
	}
	if val := os.Getenv("REINDEX_CHUNK_SIZE"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			cfg.ReindexChunkSize = parsed
		} else {
			slog.Warn("invalid REINDEX_CHUNK_SIZE, using default", slog.String("value", val))
		}
	}

	return cfg
}
