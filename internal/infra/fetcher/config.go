package fetcher

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Config controls HTTPFetcher's security and performance behavior. LoadConfigFromEnv never
// fails: an invalid environment value falls back to the default and is logged, matching the
// fail-open convention used for the rest of the worker's configuration.
type Config struct {
	Timeout        time.Duration
	MaxBodySize    int64
	MaxRedirects   int
	DenyPrivateIPs bool
}

func DefaultConfig() Config {
	return Config{
		Timeout:        10 * time.Second,
		MaxBodySize:    10 * 1024 * 1024,
		MaxRedirects:   5,
		DenyPrivateIPs: true,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	if c.MaxBodySize < 1024 || c.MaxBodySize > 100*1024*1024 {
		return fmt.Errorf("max body size must be between 1KB and 100MB, got %d", c.MaxBodySize)
	}
	if c.MaxRedirects < 0 || c.MaxRedirects > 10 {
		return fmt.Errorf("max redirects must be between 0 and 10, got %d", c.MaxRedirects)
	}
	return nil
}

func LoadConfigFromEnv() Config {
	cfg := DefaultConfig()

	if val := os.Getenv("FETCH_TIMEOUT"); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			cfg.Timeout = parsed
		} else {
			slog.Warn("invalid FETCH_TIMEOUT, using default", slog.Any("error", err))
		}
	}
	if val := os.Getenv("FETCH_MAX_BODY_SIZE"); val != "" {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.MaxBodySize = parsed
		} else {
			slog.Warn("invalid FETCH_MAX_BODY_SIZE, using default", slog.Any("error", err))
		}
	}
	if val := os.Getenv("FETCH_MAX_REDIRECTS"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			cfg.MaxRedirects = parsed
		} else {
			slog.Warn("invalid FETCH_MAX_REDIRECTS, using default", slog.Any("error", err))
		}
	}
	if val := os.Getenv("FETCH_DENY_PRIVATE_IPS"); val != "" {
		cfg.DenyPrivateIPs = val != "false"
	}

	if err := cfg.Validate(); err != nil {
		slog.Warn("fetch config validation failed after env load, reverting to default", slog.Any("error", err))
		return DefaultConfig()
	}
	return cfg
}
