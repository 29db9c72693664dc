package notifier

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoOpNotifier_NotifyJobFailure(t *testing.T) {
	t.Run("returns nil without error", func(t *testing.T) {
		notifier := NewNoOpNotifier()
		err := notifier.NotifyJobFailure(context.Background(), "ingestion", errors.New("boom"), time.Second)
		if err != nil {
			t.Errorf("expected nil error, got %v", err)
		}
	})

	t.Run("completes immediately", func(t *testing.T) {
		notifier := NewNoOpNotifier()
		start := time.Now()
		err := notifier.NotifyJobFailure(context.Background(), "feed_generation", errors.New("boom"), time.Second)
		elapsed := time.Since(start)

		if err != nil {
			t.Errorf("expected nil error, got %v", err)
		}
		if elapsed > time.Millisecond {
			t.Errorf("expected no-op to complete immediately, but took %v", elapsed)
		}
	})

	t.Run("works with canceled context", func(t *testing.T) {
		notifier := NewNoOpNotifier()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := notifier.NotifyJobFailure(ctx, "ingestion", errors.New("boom"), time.Second)
		if err != nil {
			t.Errorf("expected nil error even with canceled context, got %v", err)
		}
	})
}

func TestNewNoOpNotifier(t *testing.T) {
	if NewNoOpNotifier() == nil {
		t.Fatal("expected non-nil notifier")
	}
}
