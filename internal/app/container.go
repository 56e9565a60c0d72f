// Package app wires the scoring context's dependencies for the CLI.
//
// Two modes exist. Local mode (the default) runs everything in-process:
// in-memory score cache and repository, SQLite pattern store, synchronous
// event bus. Production mode switches to Redis, PostgreSQL and RabbitMQ as
// the corresponding URLs are configured.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/felixgeelhaar/taskpilot/internal/scoring/application/services"
	"github.com/felixgeelhaar/taskpilot/internal/scoring/application/subscribers"
	"github.com/felixgeelhaar/taskpilot/internal/scoring/domain"
	"github.com/felixgeelhaar/taskpilot/internal/scoring/infrastructure/cache"
	"github.com/felixgeelhaar/taskpilot/internal/scoring/infrastructure/history"
	"github.com/felixgeelhaar/taskpilot/internal/scoring/infrastructure/inference"
	"github.com/felixgeelhaar/taskpilot/internal/scoring/infrastructure/persistence"
	"github.com/felixgeelhaar/taskpilot/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/taskpilot/pkg/config"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Infrastructure clients (nil in local mode)
	DB          *pgxpool.Pool
	RedisClient *redis.Client

	// Scoring collaborators
	ScoreCache   domain.ScoreCache
	PatternStore domain.PatternStore
	ScoreRepo    domain.ScoreRepository
	Publisher    eventbus.Publisher
	Engine       *services.Engine

	closers []func() error
}

// NewContainer builds the dependency graph from configuration.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Container{Config: cfg, Logger: logger}

	if err := c.initCache(ctx); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.initPatternStore(); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.initScoreRepo(ctx); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.initEventBus(); err != nil {
		c.Close()
		return nil, err
	}

	c.Engine = services.NewEngine(
		c.ScoreCache,
		c.PatternStore,
		c.inferenceScorer(),
		c.Publisher,
		logger,
		services.Config{
			BatchSize:   cfg.BatchSize,
			TaskDelay:   cfg.TaskDelay,
			BatchDelay:  cfg.BatchDelay,
			MaxAttempts: cfg.MaxAttempts,
			BackoffBase: cfg.BackoffBase,
		},
	)

	return c, nil
}

func (c *Container) initCache(ctx context.Context) error {
	if c.Config.RedisURL == "" {
		c.ScoreCache = cache.NewMemoryScoreCache()
		return nil
	}

	opt, err := redis.ParseURL(c.Config.RedisURL)
	if err != nil {
		return fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	c.RedisClient = client
	c.ScoreCache = cache.NewRedisScoreCache(client)
	c.closers = append(c.closers, client.Close)
	c.Logger.Info("score cache connected", "backend", "redis")
	return nil
}

func (c *Container) initPatternStore() error {
	path := c.Config.PatternDBPath
	if path == "" {
		c.PatternStore = history.NewMemoryPatternStore()
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create pattern database directory: %w", err)
	}
	store, err := history.OpenSQLitePatternStore(path)
	if err != nil {
		return err
	}

	c.PatternStore = store
	c.closers = append(c.closers, store.Close)
	return nil
}

func (c *Container) initScoreRepo(ctx context.Context) error {
	if c.Config.DatabaseURL == "" {
		c.ScoreRepo = persistence.NewMemoryScoreRepository()
		return nil
	}

	pool, err := pgxpool.New(ctx, c.Config.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	c.DB = pool
	c.ScoreRepo = persistence.NewPostgresScoreRepository(pool)
	c.closers = append(c.closers, func() error { pool.Close(); return nil })
	c.Logger.Info("score repository connected", "backend", "postgres")
	return nil
}

func (c *Container) initEventBus() error {
	if c.Config.RabbitMQURL == "" {
		// Local mode: synchronous in-process bus, with the completion
		// subscriber wired so completing a task immediately updates the
		// owner's history.
		bus := eventbus.NewInProcessEventBus(c.Logger)
		bus.RegisterConsumer(subscribers.NewCompletionSubscriber(c.PatternStore, c.Logger))
		c.Publisher = bus
		return nil
	}

	publisher, err := eventbus.NewRabbitMQPublisher(c.Config.RabbitMQURL, c.Logger)
	if err != nil {
		return err
	}
	c.Publisher = publisher
	c.closers = append(c.closers, publisher.Close)
	return nil
}

// inferenceScorer returns the provider-backed scorer, or nil when no
// credentials are configured so the engine runs heuristics-only.
func (c *Container) inferenceScorer() services.InferenceScorer {
	if !c.Config.HasInference() {
		c.Logger.Info("no inference credentials, scoring with heuristics only")
		return nil
	}

	provider := inference.NewAnthropicProvider(
		c.Config.InferenceAPIKey,
		c.Config.InferenceModel,
		c.Config.InferenceURL,
	)
	return inference.NewClient(provider, c.Logger)
}

// Close releases all resources in reverse construction order.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			c.Logger.Warn("error closing resource", "error", err)
		}
	}
	c.closers = nil
}
