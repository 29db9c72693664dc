package embedding

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

// OpenAIEmbedder embeds text in batches using the OpenAI embeddings endpoint, carrying the
// same circuit breaker / retry / rate limiter triad used by the extraction client, under a
// distinct breaker name so the two dependencies fail independently.
type OpenAIEmbedder struct {
	client         *openai.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	limiter        *rate.Limiter
	config         Config
}

func NewOpenAIEmbedder(apiKey string, config Config) *OpenAIEmbedder {
	return &OpenAIEmbedder{
		client: openai.NewClient(apiKey),
		circuitBreaker: circuitbreaker.New(circuitbreaker.Config{
			Name:             "embedding-api",
			MaxRequests:      5,
			Interval:         60 * time.Second,
			Timeout:          60 * time.Second,
			FailureThreshold: 0.6,
			MinRequests:      5,
		}),
		retryConfig: retry.AIAPIConfig(),
		limiter:     newLimiter(config),
		config:      config,
	}
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	inputs := make([]string, len(texts))
	anyNonEmpty := false
	for i, t := range texts {
		inputs[i] = t
		if t != "" {
			anyNonEmpty = true
		}
	}
	if !anyNonEmpty {
		return nil, ErrInvalidInput
	}

	vectors := make([][]float32, 0, len(inputs))
	for start := 0; start < len(inputs); start += e.config.MaxBatchSize {
		end := start + e.config.MaxBatchSize
		if end > len(inputs) {
			end = len(inputs)
		}
		batch, err := e.embedBatch(ctx, inputs[start:end])
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, batch...)
	}
	return vectors, nil
}

func (e *OpenAIEmbedder) embedBatch(ctx context.Context, batch []string) ([][]float32, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("embedding: rate limiter: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, e.config.Timeout)
	defer cancel()

	var vectors [][]float32
	retryErr := retry.WithBackoff(ctx, e.retryConfig, func() error {
		result, err := e.circuitBreaker.Execute(func() (interface{}, error) {
			return e.doEmbed(ctx, batch)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("embedding circuit breaker open, request rejected",
					slog.String("service", "embedding-api"),
					slog.String("state", e.circuitBreaker.State().String()))
				return fmt.Errorf("embedding api unavailable: circuit breaker open")
			}
			return err
		}
		vectors = result.([][]float32)
		return nil
	})
	if retryErr != nil {
		if errors.Is(retryErr, ErrAuth) {
			return nil, retryErr
		}
		return nil, fmt.Errorf("embedding batch failed after retries: %w", retryErr)
	}
	return vectors, nil
}

func (e *OpenAIEmbedder) doEmbed(ctx context.Context, batch []string) ([][]float32, error) {
	start := time.Now()
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: batch,
		Model: openai.EmbeddingModel(e.config.Model),
	})
	duration := time.Since(start)

	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && (apiErr.HTTPStatusCode == 401 || apiErr.HTTPStatusCode == 403) {
			return nil, fmt.Errorf("%w: %v", ErrAuth, err)
		}
		slog.ErrorContext(ctx, "embedding request failed",
			slog.Int("batch_size", len(batch)), slog.Duration("duration", duration), slog.Any("error", err))
		return nil, fmt.Errorf("embedding api error: %w", err)
	}
	if len(resp.Data) != len(batch) {
		return nil, fmt.Errorf("embedding api returned %d vectors for %d inputs", len(resp.Data), len(batch))
	}

	vectors := make([][]float32, len(resp.Data))
	for _, d := range resp.Data {
		vectors[d.Index] = d.Embedding
	}
	for _, v := range vectors {
		normalize(v)
	}

	slog.InfoContext(ctx, "embedding batch completed",
		slog.Int("batch_size", len(batch)), slog.Duration("duration", duration))
	return vectors, nil
}
