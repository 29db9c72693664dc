package embedding

import (
	"time"

	"golang.org/x/time/rate"
)

// Config tunes OpenAIEmbedder's batching and outbound throttling.
type Config struct {
	Model             string
	MaxBatchSize      int
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

func DefaultConfig() Config {
	return Config{
		Model:             "text-embedding-3-small",
		MaxBatchSize:      100,
		Timeout:           60 * time.Second,
		RequestsPerSecond: 3,
		Burst:             5,
	}
}

func newLimiter(cfg Config) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)
}
