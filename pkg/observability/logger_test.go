package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSONIncludesServiceAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{
		Level:          LogLevelInfo,
		Format:         LogFormatJSON,
		Output:         &buf,
		ServiceName:    "taskpilot",
		ServiceVersion: "test",
	})

	logger.Info("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "taskpilot", entry["service"])
	assert.Equal(t, "test", entry["version"])
	assert.Equal(t, "hello", entry["msg"])
}

func TestLogger_AddsContextIdentifiers(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{
		Format: LogFormatJSON,
		Output: &buf,
	})

	ctx := WithCorrelationID(context.Background(), "corr-123")
	ctx = WithUserID(ctx, "user-456")
	logger.InfoContext(ctx, "scored")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "corr-123", entry[CorrelationIDKey])
	assert.Equal(t, "user-456", entry[UserIDKey])
}

func TestWithCorrelationID_GeneratesWhenEmpty(t *testing.T) {
	ctx := WithCorrelationID(context.Background(), "")
	assert.NotEmpty(t, CorrelationIDFromContext(ctx))
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{
		Level:  LogLevelWarn,
		Format: LogFormatText,
		Output: &buf,
	})

	logger.Debug("hidden")
	logger.Info("hidden too")
	assert.Zero(t, buf.Len())

	logger.Warn("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestVerboseLoggerFromEnv_ForcesDebug(t *testing.T) {
	t.Setenv("TASKPILOT_LOG_LEVEL", "warn")

	logger := VerboseLoggerFromEnv()
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))

	logger = LoggerFromEnv()
	assert.False(t, logger.Enabled(context.Background(), slog.LevelDebug))
}

func TestLogOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Format: LogFormatJSON, Output: &buf})

	LogOperation(logger, "score", "task_id", "t-1").Info("done")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "score", entry["operation"])
	assert.Equal(t, "t-1", entry["task_id"])
}

func TestLogDuration(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{
		Level:  LogLevelDebug,
		Format: LogFormatJSON,
		Output: &buf,
	})

	LogDuration(logger, "batch", time.Now().Add(-time.Second))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "batch", entry["operation"])
	assert.GreaterOrEqual(t, entry["duration_ms"], 1000.0)
}
