package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestDiscordNotifier_buildEmbedPayload(t *testing.T) {
	d := NewDiscordNotifier(DiscordConfig{Enabled: true, WebhookURL: "https://discord.com/x", Timeout: time.Second})

	payload := d.buildEmbedPayload("ingestion", errors.New("source timeout"), 42*time.Second)

	if len(payload.Embeds) != 1 {
		t.Fatalf("expected 1 embed, got %d", len(payload.Embeds))
	}
	embed := payload.Embeds[0]
	if embed.Title != "ingestion job failed" {
		t.Errorf("unexpected title: %q", embed.Title)
	}
	if embed.Description != "source timeout" {
		t.Errorf("unexpected description: %q", embed.Description)
	}
	if embed.Color != discordRedColor {
		t.Errorf("expected red color, got %d", embed.Color)
	}
}

func TestDiscordNotifier_buildEmbedPayload_TruncatesLongError(t *testing.T) {
	d := NewDiscordNotifier(DiscordConfig{Enabled: true, WebhookURL: "https://discord.com/x", Timeout: time.Second})

	longMsg := strings.Repeat("x", maxDescriptionLength+500)
	payload := d.buildEmbedPayload("ingestion", errors.New(longMsg), time.Second)

	if len(payload.Embeds[0].Description) > maxDescriptionLength {
		t.Errorf("expected description truncated to %d chars, got %d", maxDescriptionLength, len(payload.Embeds[0].Description))
	}
}

func TestDiscordNotifier_sendWebhookRequest_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	d := NewDiscordNotifier(DiscordConfig{Enabled: true, WebhookURL: server.URL, Timeout: time.Second})
	err := d.sendWebhookRequest(context.Background(), "ingestion", errors.New("boom"), time.Second)
	if err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

func TestDiscordNotifier_sendWebhookRequest_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := json.Marshal(DiscordErrorResponse{Message: "rate limited", RetryAfter: 0.2})
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write(body)
	}))
	defer server.Close()

	d := NewDiscordNotifier(DiscordConfig{Enabled: true, WebhookURL: server.URL, Timeout: time.Second})
	err := d.sendWebhookRequest(context.Background(), "ingestion", errors.New("boom"), time.Second)

	var rateLimitErr *RateLimitError
	if !errors.As(err, &rateLimitErr) {
		t.Fatalf("expected RateLimitError, got %v", err)
	}
	if rateLimitErr.RetryAfter != 200*time.Millisecond {
		t.Errorf("expected retry after 200ms, got %v", rateLimitErr.RetryAfter)
	}
}

func TestDiscordNotifier_sendWebhookRequest_ClientError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("bad request"))
	}))
	defer server.Close()

	d := NewDiscordNotifier(DiscordConfig{Enabled: true, WebhookURL: server.URL, Timeout: time.Second})
	err := d.sendWebhookRequest(context.Background(), "ingestion", errors.New("boom"), time.Second)

	var clientErr *ClientError
	if !errors.As(err, &clientErr) {
		t.Fatalf("expected ClientError, got %v", err)
	}
}

func TestDiscordNotifier_sendWebhookRequest_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	d := NewDiscordNotifier(DiscordConfig{Enabled: true, WebhookURL: server.URL, Timeout: time.Second})
	err := d.sendWebhookRequest(context.Background(), "ingestion", errors.New("boom"), time.Second)

	var serverErr *ServerError
	if !errors.As(err, &serverErr) {
		t.Fatalf("expected ServerError, got %v", err)
	}
}

func TestDiscordNotifier_sendWebhookRequestWithRetry_SucceedsAfterServerError(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	d := NewDiscordNotifier(DiscordConfig{Enabled: true, WebhookURL: server.URL, Timeout: time.Second})
	d.rateLimiter = NewRateLimiter(1000, 1000) // avoid slowing the test down

	err := d.sendWebhookRequestWithRetry(context.Background(), "ingestion", errors.New("boom"), time.Second)
	if err != nil {
		t.Errorf("expected eventual success, got %v", err)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
}

func TestDiscordNotifier_sendWebhookRequestWithRetry_NoRetryOnClientError(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	d := NewDiscordNotifier(DiscordConfig{Enabled: true, WebhookURL: server.URL, Timeout: time.Second})
	err := d.sendWebhookRequestWithRetry(context.Background(), "ingestion", errors.New("boom"), time.Second)

	if err == nil {
		t.Fatal("expected an error")
	}
	if attempts != 1 {
		t.Errorf("expected exactly 1 attempt for a non-retryable error, got %d", attempts)
	}
}

func TestDiscordNotifier_NotifyJobFailure_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	d := NewDiscordNotifier(DiscordConfig{Enabled: true, WebhookURL: server.URL, Timeout: time.Second})
	err := d.NotifyJobFailure(context.Background(), "ingestion", errors.New("source timeout"), 5*time.Second)
	if err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

func TestNewDiscordNotifier(t *testing.T) {
	d := NewDiscordNotifier(DiscordConfig{Enabled: true, WebhookURL: "https://discord.com/x", Timeout: 5 * time.Second})
	if d == nil {
		t.Fatal("expected non-nil notifier")
	}
	if d.httpClient.Timeout != 5*time.Second {
		t.Errorf("expected timeout propagated to http client")
	}
}

func TestExtractRetryAfter_FallsBackToHeader(t *testing.T) {
	resp := &http.Response{Header: http.Header{"Retry-After": []string{"3"}}}
	d := extractRetryAfter(resp, []byte("not json"))
	if d != 3*time.Second {
		t.Errorf("expected 3s from header, got %v", d)
	}
}

func TestExtractRetryAfter_DefaultsWhenMissing(t *testing.T) {
	resp := &http.Response{Header: http.Header{}}
	d := extractRetryAfter(resp, []byte("not json"))
	if d != 5*time.Second {
		t.Errorf("expected default 5s, got %v", d)
	}
}
