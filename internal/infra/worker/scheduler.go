package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"learnfeed/internal/infra/notifier"
	"learnfeed/internal/observability/logging"
	"learnfeed/internal/observability/tracing"
	"learnfeed/internal/usecase/feedgen"
	"learnfeed/internal/usecase/ingestion"
)

// tickSchedule fires once a minute; the handler decides independently whether the Ingestion
// Job or the Feed Generation Job is actually due, since the two jobs run on unrelated
// schedules (a fixed interval vs. a once-per-civil-UTC-day gate).
const tickSchedule = "* * * * *"

// Scheduler dispatches the Ingestion Job and the Feed Generation Job on independent
// schedules from a single minute-tick cron loop, mirroring the single-cron-entry worker loop
// the fetch service used, generalized to two jobs instead of one.
type Scheduler struct {
	logger   *slog.Logger
	metrics  *WorkerMetrics
	config   SchedulerConfig
	notifier notifier.Notifier

	ingestionJob *ingestion.Job
	feedGenJob   *feedgen.Job

	ingestionMu      sync.Mutex
	ingestionRunning bool
	lastIngestionRun time.Time

	feedGenMu      sync.Mutex
	feedGenRunning bool
	lastFeedGenDay string // civil UTC day (YYYY-MM-DD) the Feed Generation Job last ran successfully
}

func NewScheduler(logger *slog.Logger, metrics *WorkerMetrics, cfg SchedulerConfig, notif notifier.Notifier, ingestionJob *ingestion.Job, feedGenJob *feedgen.Job) *Scheduler {
	return &Scheduler{
		logger:       logger,
		metrics:      metrics,
		config:       cfg,
		notifier:     notif,
		ingestionJob: ingestionJob,
		feedGenJob:   feedGenJob,
	}
}

// Run starts the scheduler loop. If RunOnStartup is set, both jobs run once in sequence,
// separated by StartupIndexSettleDelay, before the cron loop takes over. Run blocks until ctx
// is cancelled.
func (s *Scheduler) Run(ctx context.Context, healthServer *HealthServer) error {
	if s.config.RunOnStartup {
		s.logger.Info("running startup jobs before entering normal schedule")
		s.triggerIngestion(ctx)
		select {
		case <-time.After(s.config.StartupIndexSettleDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
		s.triggerFeedGeneration(ctx)
	}

	c := cron.New()
	if _, err := c.AddFunc(tickSchedule, func() {
		s.tick(ctx)
	}); err != nil {
		return err
	}
	c.Start()
	defer c.Stop()

	if healthServer != nil {
		healthServer.SetReady(true)
	}
	s.logger.Info("scheduler started",
		slog.Duration("ingestion_interval", s.config.IngestionInterval),
		slog.Int("feed_gen_min_hour_utc", s.config.FeedGenerationMinHourUTC))

	<-ctx.Done()
	return ctx.Err()
}

// tick evaluates both jobs' due conditions independently; either, both, or neither may fire.
func (s *Scheduler) tick(ctx context.Context) {
	now := time.Now().UTC()

	if s.ingestionDue(now) {
		s.triggerIngestion(ctx)
	}
	if s.feedGenDue(now) {
		s.triggerFeedGeneration(ctx)
	}
}

func (s *Scheduler) ingestionDue(now time.Time) bool {
	s.ingestionMu.Lock()
	defer s.ingestionMu.Unlock()

	if s.ingestionRunning {
		return false
	}
	return s.lastIngestionRun.IsZero() || now.Sub(s.lastIngestionRun) >= s.config.IngestionInterval
}

func (s *Scheduler) feedGenDue(now time.Time) bool {
	s.feedGenMu.Lock()
	defer s.feedGenMu.Unlock()

	if s.feedGenRunning {
		return false
	}
	if now.Hour() < s.config.FeedGenerationMinHourUTC {
		return false
	}
	today := now.Format("2006-01-02")
	return s.lastFeedGenDay != today
}

func (s *Scheduler) triggerIngestion(ctx context.Context) {
	s.ingestionMu.Lock()
	if s.ingestionRunning {
		s.ingestionMu.Unlock()
		return
	}
	s.ingestionRunning = true
	s.ingestionMu.Unlock()

	defer func() {
		s.ingestionMu.Lock()
		s.ingestionRunning = false
		s.ingestionMu.Unlock()
	}()

	ctx, span := tracing.GetTracer().Start(ctx, "ingestion-job")
	defer span.End()

	ctx = logging.ContextWithJobID(ctx, "ingestion-"+uuid.New().String())
	logger := logging.WithJobID(ctx, s.logger)

	start := time.Now()
	logger.Info("ingestion job starting")

	stats, err := s.ingestionJob.Run(ctx)
	duration := time.Since(start)
	s.metrics.RecordJobDuration("ingestion", duration.Seconds())

	if err != nil {
		s.metrics.RecordJobRun("ingestion", "failure")
		logger.Error("ingestion job failed", slog.Any("error", err), slog.Duration("duration", duration))
		s.alert(ctx, "ingestion", err, duration)
		return
	}

	s.metrics.RecordJobRun("ingestion", "success")
	s.metrics.RecordLastSuccess("ingestion")
	s.ingestionMu.Lock()
	s.lastIngestionRun = time.Now().UTC()
	s.ingestionMu.Unlock()

	logger.Info("ingestion job completed",
		slog.Int64("sources_processed", stats.SourcesProcessed),
		slog.Int64("candidates_found", stats.CandidatesFound),
		slog.Int64("resources_added", stats.ResourcesAdded),
		slog.Int64("resources_duplicate", stats.ResourcesDuplicate),
		slog.Int64("errors", stats.Errors),
		slog.Duration("duration", duration),
	)
}

func (s *Scheduler) triggerFeedGeneration(ctx context.Context) {
	s.feedGenMu.Lock()
	if s.feedGenRunning {
		s.feedGenMu.Unlock()
		return
	}
	s.feedGenRunning = true
	s.feedGenMu.Unlock()

	defer func() {
		s.feedGenMu.Lock()
		s.feedGenRunning = false
		s.feedGenMu.Unlock()
	}()

	ctx, span := tracing.GetTracer().Start(ctx, "feed-generation-job")
	defer span.End()

	ctx = logging.ContextWithJobID(ctx, "feed_generation-"+uuid.New().String())
	logger := logging.WithJobID(ctx, s.logger)

	start := time.Now()
	logger.Info("feed generation job starting")

	stats, err := s.feedGenJob.Run(ctx)
	duration := time.Since(start)
	s.metrics.RecordJobDuration("feed_generation", duration.Seconds())

	if err != nil {
		s.metrics.RecordJobRun("feed_generation", "failure")
		logger.Error("feed generation job failed", slog.Any("error", err), slog.Duration("duration", duration))
		s.alert(ctx, "feed_generation", err, duration)
		return
	}

	s.metrics.RecordJobRun("feed_generation", "success")
	s.metrics.RecordLastSuccess("feed_generation")
	s.feedGenMu.Lock()
	s.lastFeedGenDay = time.Now().UTC().Format("2006-01-02")
	s.feedGenMu.Unlock()

	logger.Info("feed generation job completed",
		slog.Int("users_processed", stats.UsersProcessed),
		slog.Int("feeds_generated", stats.FeedsGenerated),
		slog.Int("failures", stats.Failures),
		slog.Duration("duration", duration),
	)
}

// alert notifies the configured channel of a job failure using a context detached from the
// one the job ran under, so a canceled/expired job context never suppresses the alert itself.
func (s *Scheduler) alert(ctx context.Context, job string, jobErr error, duration time.Duration) {
	if s.notifier == nil {
		return
	}
	alertCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()

	if err := s.notifier.NotifyJobFailure(alertCtx, job, jobErr, duration); err != nil {
		s.logger.Error("failed to send job-failure alert", slog.String("job", job), slog.Any("error", err))
	}
}
