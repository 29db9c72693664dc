// Package notifier sends operational alerts about failed scheduled jobs. It defines the
// Notifier interface which allows different alerting mechanisms (Discord, Slack, a no-op) to
// be used interchangeably through dependency injection.
//
// The package includes implementations for Discord and Slack webhooks and a no-op notifier
// for when alerting is disabled.
package notifier

import (
	"context"
	"time"
)

// Notifier sends an alert about a failed scheduled job run.
// Implementations should handle rate limiting, retries, and error logging internally.
type Notifier interface {
	// NotifyJobFailure sends an alert that job failed with jobErr. duration is how long the job
	// ran before failing.
	NotifyJobFailure(ctx context.Context, job string, jobErr error, duration time.Duration) error
}
