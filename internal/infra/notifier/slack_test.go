package notifier

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSlackNotifier_buildBlockKitPayload(t *testing.T) {
	s := NewSlackNotifier(SlackConfig{Enabled: true, WebhookURL: "https://hooks.slack.com/x", Timeout: time.Second})

	payload := s.buildBlockKitPayload("feed_generation", errors.New("profile build failed"), 9*time.Second)

	if !strings.Contains(payload.Text, "feed_generation job failed") {
		t.Errorf("unexpected fallback text: %q", payload.Text)
	}
	if len(payload.Blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(payload.Blocks))
	}
	if payload.Blocks[0].Type != "section" || payload.Blocks[1].Type != "context" {
		t.Errorf("unexpected block types: %+v", payload.Blocks)
	}
	if !strings.Contains(payload.Blocks[0].Text.Text, "profile build failed") {
		t.Errorf("expected section text to contain the error, got %q", payload.Blocks[0].Text.Text)
	}
}

func TestSlackNotifier_buildBlockKitPayload_TruncatesFallback(t *testing.T) {
	s := NewSlackNotifier(SlackConfig{Enabled: true, WebhookURL: "https://hooks.slack.com/x", Timeout: time.Second})

	longJob := strings.Repeat("x", maxFallbackLength+50)
	payload := s.buildBlockKitPayload(longJob, errors.New("boom"), time.Second)

	if len(payload.Text) > maxFallbackLength {
		t.Errorf("expected fallback text truncated to %d chars, got %d", maxFallbackLength, len(payload.Text))
	}
}

func TestSlackNotifier_sendWebhookRequest_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	s := NewSlackNotifier(SlackConfig{Enabled: true, WebhookURL: server.URL, Timeout: time.Second})
	err := s.sendWebhookRequest(context.Background(), "ingestion", errors.New("boom"), time.Second)
	if err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

func TestSlackNotifier_sendWebhookRequest_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "1")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	s := NewSlackNotifier(SlackConfig{Enabled: true, WebhookURL: server.URL, Timeout: time.Second})
	err := s.sendWebhookRequest(context.Background(), "ingestion", errors.New("boom"), time.Second)

	var rateLimitErr *RateLimitError
	if !errors.As(err, &rateLimitErr) {
		t.Fatalf("expected RateLimitError, got %v", err)
	}
}

func TestSlackNotifier_sendWebhookRequest_ClientError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"error":"invalid_payload"}`))
	}))
	defer server.Close()

	s := NewSlackNotifier(SlackConfig{Enabled: true, WebhookURL: server.URL, Timeout: time.Second})
	err := s.sendWebhookRequest(context.Background(), "ingestion", errors.New("boom"), time.Second)

	var clientErr *ClientError
	if !errors.As(err, &clientErr) {
		t.Fatalf("expected ClientError, got %v", err)
	}
}

func TestSlackNotifier_sendWebhookRequest_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	s := NewSlackNotifier(SlackConfig{Enabled: true, WebhookURL: server.URL, Timeout: time.Second})
	err := s.sendWebhookRequest(context.Background(), "ingestion", errors.New("boom"), time.Second)

	var serverErr *ServerError
	if !errors.As(err, &serverErr) {
		t.Fatalf("expected ServerError, got %v", err)
	}
}

func TestSlackNotifier_sendWebhookRequestWithRetry_SucceedsAfterServerError(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	s := NewSlackNotifier(SlackConfig{Enabled: true, WebhookURL: server.URL, Timeout: time.Second})
	s.rateLimiter = NewRateLimiter(1000, 1000)

	err := s.sendWebhookRequestWithRetry(context.Background(), "ingestion", errors.New("boom"), time.Second)
	if err != nil {
		t.Errorf("expected eventual success, got %v", err)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
}

func TestSlackNotifier_sendWebhookRequestWithRetry_NoRetryOnClientError(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	s := NewSlackNotifier(SlackConfig{Enabled: true, WebhookURL: server.URL, Timeout: time.Second})
	err := s.sendWebhookRequestWithRetry(context.Background(), "ingestion", errors.New("boom"), time.Second)

	if err == nil {
		t.Fatal("expected an error")
	}
	if attempts != 1 {
		t.Errorf("expected exactly 1 attempt for a non-retryable error, got %d", attempts)
	}
}

func TestSlackNotifier_NotifyJobFailure_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	s := NewSlackNotifier(SlackConfig{Enabled: true, WebhookURL: server.URL, Timeout: time.Second})
	err := s.NotifyJobFailure(context.Background(), "ingestion", errors.New("source timeout"), 5*time.Second)
	if err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

func TestNewSlackNotifier(t *testing.T) {
	s := NewSlackNotifier(SlackConfig{Enabled: true, WebhookURL: "https://hooks.slack.com/x", Timeout: 5 * time.Second})
	if s == nil {
		t.Fatal("expected non-nil notifier")
	}
	if s.httpClient.Timeout != 5*time.Second {
		t.Errorf("expected timeout propagated to http client")
	}
}
