package extractor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"learnfeed/internal/resilience/circuitbreaker"
	"learnfeed/internal/resilience/retry"
)

// ClaudeExtractor extracts candidate resources using Anthropic's Claude API. It carries the
// same circuit breaker and retry wiring as the teacher's Claude summarizer, plus an outbound
// rate limiter since extraction runs against many sources per ingestion pass.
type ClaudeExtractor struct {
	client         anthropic.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	limiter        *rate.Limiter
	config         Config
}

func NewClaudeExtractor(apiKey string, config Config) *ClaudeExtractor {
	return &ClaudeExtractor{
		client:         anthropic.NewClient(option.WithAPIKey(apiKey)),
		circuitBreaker: circuitbreaker.New(circuitbreaker.ClaudeAPIConfig()),
		retryConfig:    retry.AIAPIConfig(),
		limiter:        newLimiter(config),
		config:         config,
	}
}

func (c *ClaudeExtractor) Extract(ctx context.Context, req ExtractRequest) (ExtractResult, error) {
	if req.Content == "" {
		return ExtractResult{}, ErrEmptyContent
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return ExtractResult{}, fmt.Errorf("extractor: rate limiter: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	var raw string
	retryErr := retry.WithBackoff(ctx, c.retryConfig, func() error {
		result, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			return c.doExtract(ctx, req)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("claude extractor circuit breaker open, request rejected",
					slog.String("service", "claude-api"),
					slog.String("state", c.circuitBreaker.State().String()))
				return fmt.Errorf("claude api unavailable: circuit breaker open")
			}
			return err
		}
		raw = result.(string)
		return nil
	})
	if retryErr != nil {
		if errors.Is(retryErr, ErrAuth) {
			return ExtractResult{}, retryErr
		}
		return ExtractResult{}, fmt.Errorf("claude extract failed after retries: %w", retryErr)
	}

	candidates, parseErr := parseCandidates(raw, req.SourceCategory)
	if parseErr != nil {
		slog.Warn("claude extractor: malformed response, treating as empty",
			slog.String("source_url", req.SourceURL), slog.Any("error", parseErr))
		return ExtractResult{ParseErr: parseErr}, nil
	}
	return ExtractResult{Candidates: candidates}, nil
}

func (c *ClaudeExtractor) doExtract(ctx context.Context, req ExtractRequest) (string, error) {
	content := req.Content
	if len(content) > maxChars {
		content = content[:maxChars]
	}
	prompt := buildPrompt(ExtractRequest{SourceURL: req.SourceURL, Content: content})

	start := time.Now()
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.config.Model),
		MaxTokens: int64(c.config.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	duration := time.Since(start)

	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) && (apiErr.StatusCode == 401 || apiErr.StatusCode == 403) {
			return "", fmt.Errorf("%w: %v", ErrAuth, err)
		}
		slog.ErrorContext(ctx, "claude extraction failed",
			slog.String("source_url", req.SourceURL), slog.Duration("duration", duration), slog.Any("error", err))
		return "", fmt.Errorf("claude api error: %w", err)
	}
	if len(message.Content) == 0 {
		return "", fmt.Errorf("claude api returned empty response")
	}
	textBlock, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		return "", fmt.Errorf("claude api returned unexpected response type")
	}

	slog.InfoContext(ctx, "extraction completed",
		slog.String("source_url", req.SourceURL), slog.Duration("duration", duration))
	return textBlock.Text, nil
}
