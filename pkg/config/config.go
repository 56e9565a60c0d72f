// Package config loads application configuration from the environment.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv   string
	LogLevel string
	UserID   string

	// Database (score persistence)
	DatabaseURL string

	// Redis (score cache)
	RedisURL string

	// RabbitMQ (domain events)
	RabbitMQURL string

	// SQLite (historical patterns)
	PatternDBPath string

	// Inference provider
	InferenceAPIKey string
	InferenceURL    string
	InferenceModel  string

	// Batch scoring
	BatchSize  int
	TaskDelay  time.Duration
	BatchDelay time.Duration

	// Rate limit retries
	MaxAttempts int
	BackoffBase time.Duration
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("TASKPILOT_LOG_LEVEL", "info"),
		UserID:   getEnv("TASKPILOT_USER_ID", "00000000-0000-0000-0000-000000000001"),

		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisURL:      getEnv("REDIS_URL", ""),
		RabbitMQURL:   getEnv("RABBITMQ_URL", ""),
		PatternDBPath: getEnv("TASKPILOT_PATTERN_DB", defaultPatternDBPath()),

		InferenceAPIKey: getEnv("INFERENCE_API_KEY", ""),
		InferenceURL:    getEnv("INFERENCE_URL", ""),
		InferenceModel:  getEnv("INFERENCE_MODEL", ""),

		BatchSize:  getIntEnv("TASKPILOT_BATCH_SIZE", 2),
		TaskDelay:  getDurationEnv("TASKPILOT_TASK_DELAY", time.Second),
		BatchDelay: getDurationEnv("TASKPILOT_BATCH_DELAY", 2*time.Second),

		MaxAttempts: getIntEnv("TASKPILOT_MAX_ATTEMPTS", 3),
		BackoffBase: getDurationEnv("TASKPILOT_BACKOFF_BASE", 2*time.Second),
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// HasInference reports whether an inference provider is configured. Without
// credentials the engine runs in heuristics-only mode.
func (c *Config) HasInference() bool {
	return c.InferenceAPIKey != ""
}

func defaultPatternDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".taskpilot/patterns.db"
	}
	return filepath.Join(home, ".taskpilot", "patterns.db")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
