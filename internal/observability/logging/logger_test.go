package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name     string
		logLevel string
	}{
		{name: "default log level (info)", logLevel: ""},
		{name: "debug log level", logLevel: "debug"},
		{name: "invalid log level defaults to info", logLevel: "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.logLevel != "" {
				os.Setenv("LOG_LEVEL", tt.logLevel)
				defer os.Unsetenv("LOG_LEVEL")
			}

			logger := NewLogger()
			assert.NotNil(t, logger, "logger should not be nil")
		})
	}
}

func TestNewTextLogger(t *testing.T) {
	tests := []struct {
		name     string
		logLevel string
	}{
		{name: "default log level", logLevel: ""},
		{name: "debug log level", logLevel: "debug"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.logLevel != "" {
				os.Setenv("LOG_LEVEL", tt.logLevel)
				defer os.Unsetenv("LOG_LEVEL")
			}

			logger := NewTextLogger()
			assert.NotNil(t, logger, "logger should not be nil")
		})
	}
}

func TestLogger_LogLevels(t *testing.T) {
	tests := []struct {
		name    string
		logFunc func(*slog.Logger, string)
		message string
		level   string
	}{
		{name: "info level logging", logFunc: func(l *slog.Logger, m string) { l.Info(m) }, message: "test info message", level: "INFO"},
		{name: "debug level logging when enabled", logFunc: func(l *slog.Logger, m string) { l.Debug(m) }, message: "test debug message", level: "DEBUG"},
		{name: "warn level logging", logFunc: func(l *slog.Logger, m string) { l.Warn(m) }, message: "test warn message", level: "WARN"},
		{name: "error level logging", logFunc: func(l *slog.Logger, m string) { l.Error(m) }, message: "test error message", level: "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
			logger := slog.New(handler)

			tt.logFunc(logger, tt.message)

			output := buf.String()
			assert.Contains(t, output, tt.message)
			assert.Contains(t, output, tt.level)

			var logEntry map[string]interface{}
			require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
			assert.Equal(t, tt.message, logEntry["msg"])
			assert.Equal(t, tt.level, logEntry["level"])
			assert.NotEmpty(t, logEntry["time"])
		})
	}
}

func TestLogger_DebugLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	logger := slog.New(handler)

	logger.Debug("this should not appear")
	logger.Info("this should appear")

	output := buf.String()
	assert.NotContains(t, output, "this should not appear")
	assert.Contains(t, output, "this should appear")
}

func TestWithJobID(t *testing.T) {
	tests := []struct {
		name     string
		jobID    string
		expected string
	}{
		{name: "with valid job run ID", jobID: "ingestion-20260730T020000Z", expected: "ingestion-20260730T020000Z"},
		{name: "with UUID job run ID", jobID: "550e8400-e29b-41d4-a716-446655440000", expected: "550e8400-e29b-41d4-a716-446655440000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
			baseLogger := slog.New(handler)

			ctx := ContextWithJobID(context.Background(), tt.jobID)

			logger := WithJobID(ctx, baseLogger)
			logger.Info("test message")

			output := buf.String()
			assert.Contains(t, output, tt.expected)
			assert.Contains(t, output, "job_run_id")

			var logEntry map[string]interface{}
			require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
			assert.Equal(t, tt.expected, logEntry["job_run_id"])
		})
	}
}

func TestWithJobID_NoJobIDInContext(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	baseLogger := slog.New(handler)

	ctx := context.Background()

	logger := WithJobID(ctx, baseLogger)
	logger.Info("test message")

	output := buf.String()
	assert.Contains(t, output, "test message")
	assert.NotContains(t, output, "job_run_id")
}

func TestJobIDFromContext(t *testing.T) {
	ctx := ContextWithJobID(context.Background(), "run-123")
	assert.Equal(t, "run-123", JobIDFromContext(ctx))
	assert.Equal(t, "", JobIDFromContext(context.Background()))
}

func TestWithFields(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]interface{}
	}{
		{name: "single string field", fields: map[string]interface{}{"user_id": "user-123"}},
		{name: "multiple mixed fields", fields: map[string]interface{}{"user_id": "user-456", "action": "login", "attempts": 3, "success": true}},
		{name: "numeric fields", fields: map[string]interface{}{"count": 42, "duration": 123.45}},
		{name: "boolean fields", fields: map[string]interface{}{"is_admin": true, "verified": false}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
			baseLogger := slog.New(handler)

			logger := WithFields(baseLogger, tt.fields)
			logger.Info("test message")

			output := buf.String()
			assert.Contains(t, output, "test message")

			var logEntry map[string]interface{}
			require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))

			for key, expectedValue := range tt.fields {
				assert.Contains(t, logEntry, key)
				switch v := expectedValue.(type) {
				case int:
					assert.Equal(t, float64(v), logEntry[key])
				case float64:
					assert.Equal(t, v, logEntry[key])
				default:
					assert.Equal(t, expectedValue, logEntry[key])
				}
			}
		})
	}
}

func TestWithFields_EmptyFields(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	baseLogger := slog.New(handler)

	logger := WithFields(baseLogger, map[string]interface{}{})
	logger.Info("test message")

	output := buf.String()
	assert.Contains(t, output, "test message")

	var logEntry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
	assert.Equal(t, "test message", logEntry["msg"])
}

func TestFromContext(t *testing.T) {
	tests := []struct {
		name     string
		setupCtx func() context.Context
		check    func(*testing.T, *slog.Logger)
	}{
		{
			name: "with logger in context",
			setupCtx: func() context.Context {
				var buf bytes.Buffer
				handler := slog.NewJSONHandler(&buf, nil)
				logger := slog.New(handler)
				return WithLogger(context.Background(), logger)
			},
			check: func(t *testing.T, logger *slog.Logger) {
				assert.NotNil(t, logger)
			},
		},
		{
			name:     "without logger in context",
			setupCtx: func() context.Context { return context.Background() },
			check: func(t *testing.T, logger *slog.Logger) {
				assert.Equal(t, slog.Default(), logger)
			},
		},
		{
			name: "with invalid value in context",
			setupCtx: func() context.Context {
				return context.WithValue(context.Background(), loggerContextKey, "not a logger")
			},
			check: func(t *testing.T, logger *slog.Logger) {
				assert.Equal(t, slog.Default(), logger)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := tt.setupCtx()
			logger := FromContext(ctx)
			tt.check(t, logger)
		})
	}
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, nil)
	logger := slog.New(handler)
	ctx := context.Background()

	newCtx := WithLogger(ctx, logger)

	retrievedLogger := FromContext(newCtx)
	assert.NotNil(t, retrievedLogger)

	retrievedLogger.Info("test message")
	assert.Contains(t, buf.String(), "test message")
}

func TestLogger_JSONStructure(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	logger := slog.New(handler)

	logger.Info("test message", "user_id", "user-123", "action", "login", "count", 42)

	output := buf.String()
	assert.NotEmpty(t, output)

	var logEntry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))

	assert.Equal(t, "test message", logEntry["msg"])
	assert.Equal(t, "INFO", logEntry["level"])
	assert.NotEmpty(t, logEntry["time"])
	assert.Equal(t, "user-123", logEntry["user_id"])
	assert.Equal(t, "login", logEntry["action"])
	assert.Equal(t, float64(42), logEntry["count"])
}

func TestLogger_Integration(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	baseLogger := slog.New(handler)

	ctx := ContextWithJobID(context.Background(), "job-integration-test")
	fields := map[string]interface{}{"user_id": "user-999", "action": "test_action"}

	logger := WithJobID(ctx, baseLogger)
	logger = WithFields(logger, fields)
	logger.Info("integration test message")

	output := buf.String()
	assert.Contains(t, output, "integration test message")
	assert.Contains(t, output, "job-integration-test")
	assert.Contains(t, output, "user-999")
	assert.Contains(t, output, "test_action")

	var logEntry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))

	assert.Equal(t, "integration test message", logEntry["msg"])
	assert.Equal(t, "INFO", logEntry["level"])
	assert.Equal(t, "job-integration-test", logEntry["job_run_id"])
	assert.Equal(t, "user-999", logEntry["user_id"])
	assert.Equal(t, "test_action", logEntry["action"])
	assert.NotEmpty(t, logEntry["time"])
}

func TestLogger_MultipleLogEntries(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	logger := slog.New(handler)

	logger.Info("first message")
	logger.Warn("second message")
	logger.Error("third message")

	output := buf.String()
	lines := strings.Split(strings.TrimSpace(output), "\n")
	assert.Equal(t, 3, len(lines))

	for i, line := range lines {
		var logEntry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &logEntry), "line %d should be valid JSON", i+1)
		assert.NotEmpty(t, logEntry["msg"])
		assert.NotEmpty(t, logEntry["level"])
	}
}

func TestLogger_ContextPropagation(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	logger := slog.New(handler)

	ctx := context.Background()
	ctx = WithLogger(ctx, logger)
	ctx = ContextWithJobID(ctx, "propagation-test")

	retrievedLogger := FromContext(ctx)
	loggerWithJobID := WithJobID(ctx, retrievedLogger)
	loggerWithJobID.Info("propagation test")

	output := buf.String()
	assert.Contains(t, output, "propagation test")
	assert.Contains(t, output, "propagation-test")
}

func TestContextKey_Type(t *testing.T) {
	var key = loggerContextKey
	assert.NotNil(t, key)
	assert.IsType(t, contextKey(""), key)
}

func BenchmarkLogger_Info(b *testing.B) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	logger := slog.New(handler)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("benchmark message")
	}
}

func BenchmarkLogger_WithFields(b *testing.B) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	baseLogger := slog.New(handler)

	fields := map[string]interface{}{"user_id": "user-123", "action": "benchmark", "count": 100}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger := WithFields(baseLogger, fields)
		logger.Info("benchmark message")
	}
}

func BenchmarkLogger_WithJobID(b *testing.B) {
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})
	baseLogger := slog.New(handler)

	ctx := ContextWithJobID(context.Background(), "benchmark-job-id")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger := WithJobID(ctx, baseLogger)
		logger.Info("benchmark message")
	}
}
