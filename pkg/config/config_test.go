package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.HasInference())
	assert.Equal(t, 2, cfg.BatchSize)
	assert.Equal(t, time.Second, cfg.TaskDelay)
	assert.Equal(t, 2*time.Second, cfg.BatchDelay)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.NotEmpty(t, cfg.PatternDBPath)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("INFERENCE_API_KEY", "sk-test")
	t.Setenv("TASKPILOT_BATCH_SIZE", "4")
	t.Setenv("TASKPILOT_TASK_DELAY", "250ms")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.HasInference())
	assert.Equal(t, 4, cfg.BatchSize)
	assert.Equal(t, 250*time.Millisecond, cfg.TaskDelay)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("TASKPILOT_BATCH_SIZE", "many")
	t.Setenv("TASKPILOT_BACKOFF_BASE", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.BatchSize)
	assert.Equal(t, 2*time.Second, cfg.BackoffBase)
}
