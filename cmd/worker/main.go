package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	pgRepo "learnfeed/internal/infra/adapter/persistence/postgres"
	"learnfeed/internal/infra/db"
	"learnfeed/internal/infra/embedding"
	"learnfeed/internal/infra/extractor"
	"learnfeed/internal/infra/fetcher"
	"learnfeed/internal/infra/notifier"
	workerPkg "learnfeed/internal/infra/worker"
	"learnfeed/internal/observability/logging"
	"learnfeed/internal/usecase/engine"
	"learnfeed/internal/usecase/feedgen"
	"learnfeed/internal/usecase/ingestion"
	"learnfeed/internal/usecase/profile"
)

// embeddingDimension is fixed by the OpenAI text-embedding-3-small model the embedder
// defaults to; the resource_embeddings column is sized to match.
const embeddingDimension = 1536

func waitForMigrations(logger *slog.Logger, database *sql.DB) {
	const probe = "SELECT 1 FROM sources LIMIT 1"
	for i := 0; i < 10; i++ {
		if _, err := database.Exec(probe); err == nil {
			return
		}
		logger.Info("waiting for migrations, retrying in 3s", slog.Int("attempt", i+1))
		time.Sleep(3 * time.Second)
	}
	logger.Error("migrations did not complete in time")
	os.Exit(1)
}

func main() {
	logger := initLogger()
	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	workerMetrics := workerPkg.NewWorkerMetrics()
	workerMetrics.MustRegister()
	schedulerConfig := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	logger.Info("scheduler configuration loaded",
		slog.Duration("ingestion_interval", schedulerConfig.IngestionInterval),
		slog.Int("feed_gen_min_hour_utc", schedulerConfig.FeedGenerationMinHourUTC),
		slog.Int("health_port", schedulerConfig.HealthPort),
		slog.Bool("run_on_startup", schedulerConfig.RunOnStartup))

	notif := setupNotifier(logger)

	startMetricsServer(ctx, logger)

	healthAddr := fmt.Sprintf(":%d", schedulerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()
	logger.Info("health check server started", slog.String("addr", healthAddr))

	ingestionJob, reindexJob, feedGenJob := setupJobs(logger, database)

	scheduler := workerPkg.NewScheduler(logger, workerMetrics, *schedulerConfig, notif, ingestionJob, feedGenJob)

	if len(os.Args) > 1 {
		runOneShot(ctx, logger, os.Args[1], ingestionJob, feedGenJob, reindexJob)
		return
	}

	if err := scheduler.Run(ctx, healthServer); err != nil && err != context.Canceled {
		logger.Error("scheduler exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

// runOneShot runs a single job to completion and exits, bypassing the scheduler loop. Useful
// for manual backfills and for driving the ingestion/feed-generation/reindex pipelines from a
// one-off job runner instead of the long-lived worker process.
func runOneShot(ctx context.Context, logger *slog.Logger, command string, ingestionJob *ingestion.Job, feedGenJob *feedgen.Job, reindexJob *ingestion.ReindexJob) {
	switch command {
	case "ingestion":
		stats, err := ingestionJob.Run(ctx)
		if err != nil {
			logger.Error("ingestion job failed", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("ingestion job completed", slog.Any("stats", stats))
	case "feed":
		stats, err := feedGenJob.Run(ctx)
		if err != nil {
			logger.Error("feed generation job failed", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("feed generation job completed", slog.Any("stats", stats))
	case "reindex":
		stats, err := reindexJob.Run(ctx)
		if err != nil {
			logger.Error("reindex job failed", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("reindex job completed", slog.Any("stats", stats))
	default:
		logger.Error("unrecognized command, expected ingestion, feed, or reindex", slog.String("command", command))
		os.Exit(1)
	}
}

// initLogger initializes and returns a structured logger based on environment configuration.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// initDatabase opens the database connection and waits for migrations to complete.
func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	waitForMigrations(logger, database)
	return database
}

// setupJobs wires the Postgres repositories, fetcher, extractor, embedder, and vector index
// into the Ingestion, Reindex, and Feed Generation jobs.
func setupJobs(logger *slog.Logger, database *sql.DB) (*ingestion.Job, *ingestion.ReindexJob, *feedgen.Job) {
	sourceRepo := pgRepo.NewSourceRepo(database)
	resourceRepo := pgRepo.NewResourceRepo(database)
	userRepo := pgRepo.NewUserRepo(database)
	voteRepo := pgRepo.NewVoteRepo(database)
	recommendationRepo := pgRepo.NewRecommendationRepo(database)
	vectorIndex := pgRepo.NewPgVectorIndex(database, embeddingDimension)

	contentFetcher := fetcher.NewHTTPFetcher(fetcher.LoadConfigFromEnv())

	ex, err := extractor.New(os.Getenv("ANTHROPIC_API_KEY"), os.Getenv("OPENAI_API_KEY"))
	if err != nil {
		logger.Error("failed to create extractor", slog.Any("error", err))
		os.Exit(1)
	}

	embedKey := os.Getenv("OPENAI_API_KEY")
	if embedKey == "" {
		logger.Error("OPENAI_API_KEY is required for embedding")
		os.Exit(1)
	}
	embedder := embedding.NewOpenAIEmbedder(embedKey, embedding.DefaultConfig())

	ingestionConfig := ingestion.LoadConfigFromEnv()
	ingestionJob := ingestion.NewJob(sourceRepo, resourceRepo, contentFetcher, ex, embedder, vectorIndex, ingestionConfig)
	reindexJob := ingestion.NewReindexJob(resourceRepo, embedder, vectorIndex, ingestionConfig)

	profileBuilder := profile.NewBuilder(voteRepo, embedder)
	eng := engine.New(vectorIndex, resourceRepo, engine.DefaultConfig())
	generator := feedgen.NewGenerator(profileBuilder, eng, voteRepo, recommendationRepo)
	feedGenJob := feedgen.NewJob(userRepo, generator)

	return ingestionJob, reindexJob, feedGenJob
}

// setupNotifier builds the job-failure alerting channel: Discord if enabled, else Slack if
// enabled, else a no-op. Only one channel is active at a time, matching the single-destination
// alerting most small batch workers actually run with.
func setupNotifier(logger *slog.Logger) notifier.Notifier {
	discordConfig := loadDiscordConfig(logger)
	if discordConfig.Enabled {
		logger.Info("Discord job-failure alerting enabled")
		return notifier.NewDiscordNotifier(discordConfig)
	}

	slackConfig := loadSlackConfig(logger)
	if slackConfig.Enabled {
		logger.Info("Slack job-failure alerting enabled")
		return notifier.NewSlackNotifier(slackConfig)
	}

	logger.Info("job-failure alerting disabled, using no-op notifier")
	return notifier.NewNoOpNotifier()
}

// loadDiscordConfig loads Discord configuration from environment variables.
//
// Environment variables:
//   - DISCORD_ENABLED: Boolean flag to enable Discord notifications (default: false)
//   - DISCORD_WEBHOOK_URL: Discord webhook URL (required if enabled)
func loadDiscordConfig(logger *slog.Logger) notifier.DiscordConfig {
	enabled := os.Getenv("DISCORD_ENABLED") == "true"
	webhookURL := os.Getenv("DISCORD_WEBHOOK_URL")

	if !enabled {
		return notifier.DiscordConfig{Enabled: false}
	}

	if webhookURL == "" {
		logger.Warn("Discord webhook URL is empty, disabling alerting")
		return notifier.DiscordConfig{Enabled: false}
	}

	u, err := url.Parse(webhookURL)
	if err != nil {
		logger.Warn("Invalid Discord webhook URL format, disabling alerting", slog.Any("error", err))
		return notifier.DiscordConfig{Enabled: false}
	}

	if u.Scheme != "https" {
		logger.Warn("Discord webhook URL must use HTTPS, disabling alerting")
		return notifier.DiscordConfig{Enabled: false}
	}

	if u.Host != "discord.com" {
		logger.Warn("Invalid Discord webhook host, disabling alerting", slog.String("host", u.Host))
		return notifier.DiscordConfig{Enabled: false}
	}

	if !strings.HasPrefix(u.Path, "/api/webhooks/") {
		logger.Warn("Invalid Discord webhook path, disabling alerting", slog.String("path", u.Path))
		return notifier.DiscordConfig{Enabled: false}
	}

	return notifier.DiscordConfig{
		Enabled:    true,
		WebhookURL: webhookURL,
		Timeout:    30 * time.Second,
	}
}

// loadSlackConfig loads Slack configuration from environment variables.
//
// Environment variables:
//   - SLACK_ENABLED: Boolean flag to enable Slack notifications (default: false)
//   - SLACK_WEBHOOK_URL: Slack webhook URL (required if enabled)
func loadSlackConfig(logger *slog.Logger) notifier.SlackConfig {
	enabled := os.Getenv("SLACK_ENABLED") == "true"
	webhookURL := os.Getenv("SLACK_WEBHOOK_URL")

	if !enabled {
		return notifier.SlackConfig{Enabled: false}
	}

	if webhookURL == "" {
		logger.Warn("Slack webhook URL is empty, disabling alerting")
		return notifier.SlackConfig{Enabled: false}
	}

	u, err := url.Parse(webhookURL)
	if err != nil {
		logger.Warn("Invalid Slack webhook URL format, disabling alerting", slog.Any("error", err))
		return notifier.SlackConfig{Enabled: false}
	}

	if u.Scheme != "https" {
		logger.Warn("Slack webhook URL must use HTTPS, disabling alerting")
		return notifier.SlackConfig{Enabled: false}
	}

	if u.Host != "hooks.slack.com" {
		logger.Warn("Invalid Slack webhook host, disabling alerting", slog.String("host", u.Host))
		return notifier.SlackConfig{Enabled: false}
	}

	if !strings.HasPrefix(u.Path, "/services/") {
		logger.Warn("Invalid Slack webhook path, disabling alerting", slog.String("path", u.Path))
		return notifier.SlackConfig{Enabled: false}
	}

	return notifier.SlackConfig{
		Enabled:    true,
		WebhookURL: webhookURL,
		Timeout:    30 * time.Second,
	}
}
