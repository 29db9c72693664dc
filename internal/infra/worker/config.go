package worker

import (
	"log/slog"
	"time"

	"learnfeed/internal/pkg/config"
)

// SchedulerConfig controls the minute-tick dispatch loop: how often the Ingestion Job
// re-runs, the earliest UTC hour the Feed Generation Job is allowed to run each day, and
// the health check server it exposes.
type SchedulerConfig struct {
	// IngestionInterval is the minimum time between two successful Ingestion Job triggers.
	IngestionInterval time.Duration

	// FeedGenerationMinHourUTC is the earliest UTC hour of the day the Feed Generation Job is
	// allowed to fire; it still runs at most once per civil UTC day.
	FeedGenerationMinHourUTC int

	// HealthPort is the port the health check HTTP server listens on.
	HealthPort int

	// RunOnStartup runs both jobs once in sequence before falling back to the normal
	// schedule, useful for a fresh deployment with an empty Vector Index.
	RunOnStartup bool

	// StartupIndexSettleDelay is the pause between the startup Ingestion run and the startup
	// Feed Generation run, giving the Vector Index time to become visible to search.
	StartupIndexSettleDelay time.Duration
}

func DefaultConfig() SchedulerConfig {
	return SchedulerConfig{
		IngestionInterval:        24 * time.Hour,
		FeedGenerationMinHourUTC: 2,
		HealthPort:               9091,
		RunOnStartup:             false,
		StartupIndexSettleDelay:  5 * time.Second,
	}
}

// LoadConfigFromEnv loads the scheduler configuration from the environment, never failing:
// an invalid value falls back to the default and is logged, matching the fail-open strategy
// used throughout the worker's configuration layer.
func LoadConfigFromEnv(logger *slog.Logger, metrics *WorkerMetrics) *SchedulerConfig {
	cfg := DefaultConfig()

	result := config.LoadEnvDuration("INGESTION_INTERVAL", cfg.IngestionInterval, func(d time.Duration) error {
		return config.ValidateDuration(d, 1*time.Minute, 7*24*time.Hour)
	})
	cfg.IngestionInterval = result.Value.(time.Duration)
	recordFallback(logger, metrics, "ingestion_interval", result)

	hourResult := config.LoadEnvInt("FEED_GEN_MIN_HOUR_UTC", cfg.FeedGenerationMinHourUTC, func(v int) error {
		return config.ValidateIntRange(v, 0, 23)
	})
	cfg.FeedGenerationMinHourUTC = hourResult.Value.(int)
	recordFallback(logger, metrics, "feed_gen_min_hour_utc", hourResult)

	portResult := config.LoadEnvInt("WORKER_HEALTH_PORT", cfg.HealthPort, func(v int) error {
		return config.ValidateIntRange(v, 1024, 65535)
	})
	cfg.HealthPort = portResult.Value.(int)
	recordFallback(logger, metrics, "health_port", portResult)

	startupResult := config.LoadEnvBool("RUN_ON_STARTUP", cfg.RunOnStartup)
	cfg.RunOnStartup = startupResult.Value.(bool)

	delayResult := config.LoadEnvDuration("STARTUP_INDEX_SETTLE_DELAY", cfg.StartupIndexSettleDelay, func(d time.Duration) error {
		return config.ValidateDuration(d, 0, 5*time.Minute)
	})
	cfg.StartupIndexSettleDelay = delayResult.Value.(time.Duration)
	recordFallback(logger, metrics, "startup_index_settle_delay", delayResult)

	metrics.RecordLoadTimestamp()
	return &cfg
}

func recordFallback(logger *slog.Logger, metrics *WorkerMetrics, field string, result config.ConfigLoadResult) {
	if !result.FallbackApplied {
		return
	}
	metrics.RecordValidationError(field)
	metrics.RecordFallback(field, "default")
	for _, warning := range result.Warnings {
		logger.Warn("configuration fallback applied", slog.String("field", field), slog.String("warning", warning))
	}
}
