package notifier

import (
	"context"
	"time"
)

// NoOpNotifier is a no-operation implementation of the Notifier interface.
// It is used when alerting is disabled to avoid nil checks in the scheduler.
// This follows the Null Object pattern.
type NoOpNotifier struct{}

// NewNoOpNotifier creates a new NoOpNotifier instance.
func NewNoOpNotifier() *NoOpNotifier {
	return &NoOpNotifier{}
}

// NotifyJobFailure does nothing and returns nil immediately.
func (n *NoOpNotifier) NotifyJobFailure(ctx context.Context, job string, jobErr error, duration time.Duration) error {
	return nil
}
