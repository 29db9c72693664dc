package extractor

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/anthropics/anthropic-sdk-go"
)

// maxChars bounds how much content is handed to the model in one call, matching the teacher's
// summarizer truncation safeguard.
const maxChars = 10000

// Config holds provider-agnostic tuning shared by ClaudeExtractor and OpenAIExtractor.
type Config struct {
	Model             string
	MaxTokens         int
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

func defaultClaudeConfig() Config {
	return Config{
		Model:             string(anthropic.ModelClaudeSonnet4_5_20250929),
		MaxTokens:         2048,
		Timeout:           60 * time.Second,
		RequestsPerSecond: 2,
		Burst:             5,
	}
}

func defaultOpenAIConfig() Config {
	return Config{
		Model:             "gpt-4o-mini",
		MaxTokens:         2048,
		Timeout:           60 * time.Second,
		RequestsPerSecond: 2,
		Burst:             5,
	}
}

// New builds the Extractor selected by the EXTRACTOR_TYPE environment variable ("claude" by
// default, "openai" as the alternate), mirroring the teacher's createSummarizer switch.
func New(claudeAPIKey, openAIAPIKey string) (Extractor, error) {
	switch os.Getenv("EXTRACTOR_TYPE") {
	case "openai":
		if openAIAPIKey == "" {
			return nil, fmt.Errorf("extractor: EXTRACTOR_TYPE=openai requires an OpenAI API key")
		}
		slog.Info("initialized openai extractor")
		return NewOpenAIExtractor(openAIAPIKey, defaultOpenAIConfig()), nil
	case "", "claude":
		if claudeAPIKey == "" {
			return nil, fmt.Errorf("extractor: claude extractor requires an Anthropic API key")
		}
		slog.Info("initialized claude extractor")
		return NewClaudeExtractor(claudeAPIKey, defaultClaudeConfig()), nil
	default:
		return nil, fmt.Errorf("extractor: unknown EXTRACTOR_TYPE %q", os.Getenv("EXTRACTOR_TYPE"))
	}
}

func newLimiter(cfg Config) *rate.Limiter {
	return rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)
}
