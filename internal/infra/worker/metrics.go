package worker

import (
	"learnfeed/internal/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// WorkerMetrics provides Prometheus metrics for the scheduler. It embeds the standard
// ConfigMetrics for configuration monitoring and adds scheduler-specific metrics, labeled by
// job ("ingestion" or "feed_generation") so both dispatched jobs share one metric family.
type WorkerMetrics struct {
	*config.ConfigMetrics

	// JobRunsTotal counts job dispatches by job name and outcome (success/failure).
	JobRunsTotal *prometheus.CounterVec

	// JobDurationSeconds measures job execution duration, labeled by job name.
	JobDurationSeconds *prometheus.HistogramVec

	// JobLastSuccessTimestamp records the Unix timestamp of each job's last successful run.
	JobLastSuccessTimestamp *prometheus.GaugeVec
}

func NewWorkerMetrics() *WorkerMetrics {
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetrics("worker"),

		JobRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_job_runs_total",
			Help: "Total number of scheduled job runs by job and outcome (success/failure)",
		}, []string{"job", "status"}),

		JobDurationSeconds: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "worker_job_duration_seconds",
			Help:    "Duration of a scheduled job run in seconds",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800},
		}, []string{"job"}),

		JobLastSuccessTimestamp: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "worker_job_last_success_timestamp",
			Help: "Unix timestamp of the last successful run of a scheduled job",
		}, []string{"job"}),
	}
}

// MustRegister is a no-op retained for construction-site symmetry with NewWorkerMetrics;
// metrics are auto-registered via promauto when created.
func (m *WorkerMetrics) MustRegister() {}

func (m *WorkerMetrics) RecordJobRun(job, status string) {
	m.JobRunsTotal.WithLabelValues(job, status).Inc()
}

func (m *WorkerMetrics) RecordJobDuration(job string, seconds float64) {
	m.JobDurationSeconds.WithLabelValues(job).Observe(seconds)
}

func (m *WorkerMetrics) RecordLastSuccess(job string) {
	m.JobLastSuccessTimestamp.WithLabelValues(job).SetToCurrentTime()
}
