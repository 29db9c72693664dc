package extractor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"learnfeed/internal/resilience/circuitbreaker"
	"learnfeed/internal/resilience/retry"
)

// OpenAIExtractor is the alternate Extractor implementation, used when EXTRACTOR_TYPE=openai.
type OpenAIExtractor struct {
	client         *openai.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	limiter        *rate.Limiter
	config         Config
}

func NewOpenAIExtractor(apiKey string, config Config) *OpenAIExtractor {
	return &OpenAIExtractor{
		client:         openai.NewClient(apiKey),
		circuitBreaker: circuitbreaker.New(circuitbreaker.OpenAIAPIConfig()),
		retryConfig:    retry.AIAPIConfig(),
		limiter:        newLimiter(config),
		config:         config,
	}
}

func (o *OpenAIExtractor) Extract(ctx context.Context, req ExtractRequest) (ExtractResult, error) {
	if req.Content == "" {
		return ExtractResult{}, ErrEmptyContent
	}
	if err := o.limiter.Wait(ctx); err != nil {
		return ExtractResult{}, fmt.Errorf("extractor: rate limiter: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, o.config.Timeout)
	defer cancel()

	var raw string
	retryErr := retry.WithBackoff(ctx, o.retryConfig, func() error {
		result, err := o.circuitBreaker.Execute(func() (interface{}, error) {
			return o.doExtract(ctx, req)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("openai extractor circuit breaker open, request rejected",
					slog.String("service", "openai-api"),
					slog.String("state", o.circuitBreaker.State().String()))
				return fmt.Errorf("openai api unavailable: circuit breaker open")
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
		return ExtractResult{}, fmt.Errorf("openai extract failed after retries: %w", retryErr)
	}

	candidates, parseErr := parseCandidates(raw, req.SourceCategory)
	if parseErr != nil {
		slog.Warn("openai extractor: malformed response, treating as empty",
			slog.String("source_url", req.SourceURL), slog.Any("error", parseErr))
		return ExtractResult{ParseErr: parseErr}, nil
	}
	return ExtractResult{Candidates: candidates}, nil
}

func (o *OpenAIExtractor) doExtract(ctx context.Context, req ExtractRequest) (string, error) {
	content := req.Content
	if len(content) > maxChars {
		content = content[:maxChars]
	}
	prompt := buildPrompt(ExtractRequest{SourceURL: req.SourceURL, Content: content})

	start := time.Now()
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.config.Model,
		Messages: []openai.ChatCompletionMessage{{
			Role:    "user",
			Content: prompt,
		}},
	})
	duration := time.Since(start)

	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && (apiErr.HTTPStatusCode == 401 || apiErr.HTTPStatusCode == 403) {
			return "", fmt.Errorf("%w: %v", ErrAuth, err)
		}
		slog.ErrorContext(ctx, "openai extraction failed",
			slog.String("source_url", req.SourceURL), slog.Duration("duration", duration), slog.Any("error", err))
		return "", fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai api returned empty response")
	}

	slog.InfoContext(ctx, "extraction completed",
		slog.String("source_url", req.SourceURL), slog.Duration("duration", duration))
	return resp.Choices[0].Message.Content, nil
}
