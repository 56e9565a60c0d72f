// Package services contains the priority scoring engine: the application
// service that turns a task plus its owner's context into a PriorityScore.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/felixgeelhaar/taskpilot/internal/scoring/domain"
	"github.com/felixgeelhaar/taskpilot/internal/scoring/infrastructure/inference"
	"github.com/felixgeelhaar/taskpilot/internal/shared/infrastructure/eventbus"
	"github.com/google/uuid"
)

// Component weights. They must sum to 1.0; effort contributes inverted since
// cheaper tasks rank higher.
const (
	weightImpact     = 0.30
	weightEffort     = 0.20
	weightUrgency    = 0.25
	weightDependency = 0.15
	weightWorkload   = 0.10
)

// InferenceScorer produces AI impact and effort judgments. A nil scorer puts
// the engine in heuristics-only mode: no network calls are ever made.
type InferenceScorer interface {
	ImpactScore(ctx context.Context, task *domain.Task) (int, error)
	EffortScore(ctx context.Context, task *domain.Task, pattern domain.HistoricalPattern) (int, error)
}

// ProgressFunc is invoked after every task in a batch with the number of
// tasks finished so far and the batch total.
type ProgressFunc func(completed, total int)

// Config holds the engine's batching and retry tunables.
type Config struct {
	// BatchSize is the number of tasks scored per group.
	BatchSize int

	// TaskDelay is the pause between tasks inside a group.
	TaskDelay time.Duration

	// BatchDelay is the pause between groups.
	BatchDelay time.Duration

	// MaxAttempts is the number of tries per task when the provider is
	// rate limiting.
	MaxAttempts int

	// BackoffBase scales the exponential backoff between attempts.
	BackoffBase time.Duration
}

// DefaultConfig returns the production tunables.
func DefaultConfig() Config {
	return Config{
		BatchSize:   2,
		TaskDelay:   time.Second,
		BatchDelay:  2 * time.Second,
		MaxAttempts: 3,
		BackoffBase: 2 * time.Second,
	}
}

// Engine computes multi-factor priority scores. Calculate never fails: any
// internal error degrades to a deterministic heuristic score instead.
type Engine struct {
	cache     domain.ScoreCache
	patterns  domain.PatternStore
	inference InferenceScorer
	publisher eventbus.Publisher
	logger    *slog.Logger
	cfg       Config
	now       func() time.Time
}

// NewEngine creates a scoring engine. inference may be nil (heuristics-only
// mode); a nil publisher is replaced with a no-op bus, so events are dropped.
func NewEngine(
	cache domain.ScoreCache,
	patterns domain.PatternStore,
	inference InferenceScorer,
	publisher eventbus.Publisher,
	logger *slog.Logger,
	cfg Config,
) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if publisher == nil {
		publisher = eventbus.NewNoopPublisher(logger)
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultConfig().BatchSize
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultConfig().MaxAttempts
	}
	return &Engine{
		cache:     cache,
		patterns:  patterns,
		inference: inference,
		publisher: publisher,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
	}
}

// WithClock overrides the engine's clock. Used by tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Calculate returns the task's priority score. A fresh cached score is
// returned as-is without touching the provider. On any failure the degraded
// fallback score is returned; fallback scores are not cached so the next call
// retries the full computation.
func (e *Engine) Calculate(ctx context.Context, task *domain.Task, allTasks []*domain.Task) domain.PriorityScore {
	if score, ok, err := e.cache.Get(ctx, task.ID()); err == nil && ok {
		return score
	} else if err != nil {
		e.logger.Debug("score cache lookup failed", "task_id", task.ID(), "error", err)
	}

	score, err := e.compute(ctx, task, allTasks)
	if err != nil {
		e.logger.Warn("score computation degraded to fallback",
			"task_id", task.ID(),
			"error", err,
		)
		return e.fallback(task)
	}

	e.store(ctx, task, score)
	return score
}

// CalculateBatch scores tasks in groups, pacing calls to stay under provider
// rate limits. Cached tasks are served first; the rest are computed in groups
// of cfg.BatchSize with delays between tasks and groups. Rate-limited tasks
// are retried with exponential backoff before falling back. The computed
// score is attached to each task. Returns ctx.Err() if cancelled; every task
// processed before cancellation keeps its score.
func (e *Engine) CalculateBatch(ctx context.Context, tasks []*domain.Task, onProgress ProgressFunc) error {
	total := len(tasks)
	completed := 0
	report := func() {
		if onProgress != nil {
			onProgress(completed, total)
		}
	}

	var pending []*domain.Task
	for _, task := range tasks {
		score, ok, err := e.cache.Get(ctx, task.ID())
		if err == nil && ok {
			task.AttachScore(score)
			completed++
			report()
			continue
		}
		if err != nil {
			e.logger.Debug("score cache lookup failed", "task_id", task.ID(), "error", err)
		}
		pending = append(pending, task)
	}

	for start := 0; start < len(pending); start += e.cfg.BatchSize {
		if start > 0 {
			if err := sleepCtx(ctx, e.cfg.BatchDelay); err != nil {
				return err
			}
		}

		end := min(start+e.cfg.BatchSize, len(pending))
		for i, task := range pending[start:end] {
			if err := ctx.Err(); err != nil {
				return err
			}
			if i > 0 {
				if err := sleepCtx(ctx, e.cfg.TaskDelay); err != nil {
					return err
				}
			}

			task.AttachScore(e.calculateWithRetry(ctx, task, tasks))
			completed++
			report()
		}
	}
	return nil
}

// ClearExpiredCache evicts stale entries from the score cache.
func (e *Engine) ClearExpiredCache(ctx context.Context) error {
	return e.cache.ClearExpired(ctx)
}

// RecordCompletion folds a finished task's actual duration into the owner's
// historical pattern.
func (e *Engine) RecordCompletion(ctx context.Context, userID uuid.UUID, actualHours float64) error {
	return e.patterns.RecordCompletion(ctx, userID, actualHours)
}

// calculateWithRetry retries rate-limited computations with exponential
// backoff (4s, 8s at the default base) before degrading to the fallback.
// Non-rate-limit errors are not retried.
func (e *Engine) calculateWithRetry(ctx context.Context, task *domain.Task, allTasks []*domain.Task) domain.PriorityScore {
	for attempt := 1; attempt <= e.cfg.MaxAttempts; attempt++ {
		score, err := e.compute(ctx, task, allTasks)
		if err == nil {
			e.store(ctx, task, score)
			return score
		}

		if !inference.IsRateLimited(err) {
			e.logger.Warn("score computation degraded to fallback",
				"task_id", task.ID(),
				"error", err,
			)
			break
		}

		if attempt == e.cfg.MaxAttempts {
			e.logger.Warn("rate limit retries exhausted, using fallback",
				"task_id", task.ID(),
				"attempts", attempt,
			)
			break
		}

		backoff := time.Duration(1<<attempt) * e.cfg.BackoffBase
		e.logger.Info("provider rate limited, backing off",
			"task_id", task.ID(),
			"attempt", attempt,
			"backoff", backoff,
		)
		if err := sleepCtx(ctx, backoff); err != nil {
			break
		}
	}
	return e.fallback(task)
}

// compute runs the full five-component scoring pipeline. It returns an error
// when the provider fails; panics in the pure computation are recovered and
// surfaced as errors so callers degrade instead of crashing.
func (e *Engine) compute(ctx context.Context, task *domain.Task, allTasks []*domain.Task) (score domain.PriorityScore, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("score computation panicked: %v", r)
		}
	}()

	now := e.now().UTC()

	pattern, patternErr := e.patterns.Get(ctx, task.UserID())
	if patternErr != nil {
		e.logger.Debug("pattern lookup failed, using defaults",
			"user_id", task.UserID(),
			"error", patternErr,
		)
		pattern = domain.DefaultPattern(task.UserID(), now)
	}

	estimatedHours := domain.ParseEstimatedTime(task.Estimate())
	urgency := domain.UrgencyScore(task.DueDate(), estimatedHours, now)

	impact := heuristicImpact(task)
	effort := heuristicEffort(task)
	if e.inference != nil {
		impact, err = e.scoreWithFallback(impact, func() (int, error) {
			return e.inference.ImpactScore(ctx, task)
		})
		if err != nil {
			return domain.PriorityScore{}, err
		}
		effort, err = e.scoreWithFallback(effort, func() (int, error) {
			return e.inference.EffortScore(ctx, task, pattern)
		})
		if err != nil {
			return domain.PriorityScore{}, err
		}
	}

	dependency := dependencyScore(task, allTasks)
	workload := workloadScore(task.UserID(), allTasks)

	score = domain.PriorityScore{
		Impact:     impact,
		Effort:     effort,
		Urgency:    urgency,
		Dependency: dependency,
		Workload:   workload,
		Overall:    overallScore(impact, effort, urgency, dependency, workload),
		Confidence: confidenceScore(task, pattern),
		UpdatedAt:  now,
	}
	return score, nil
}

// scoreWithFallback runs one provider judgment. Rate limits propagate so the
// batch retry loop can handle them; any other provider error falls back to
// the supplied heuristic value.
func (e *Engine) scoreWithFallback(heuristic int, call func() (int, error)) (int, error) {
	value, err := call()
	if err == nil {
		return value, nil
	}
	if inference.IsRateLimited(err) {
		return 0, err
	}
	e.logger.Debug("provider judgment failed, using heuristic", "error", err)
	return heuristic, nil
}

// fallback is the degraded score used when computation fails: heuristic
// impact/effort blended equally with urgency, neutral dependency and
// workload, low confidence. Fallback scores are never cached.
func (e *Engine) fallback(task *domain.Task) domain.PriorityScore {
	now := e.now().UTC()
	impact := heuristicImpact(task)
	effort := heuristicEffort(task)
	urgency := domain.UrgencyScore(task.DueDate(), domain.ParseEstimatedTime(task.Estimate()), now)

	return domain.PriorityScore{
		Impact:     impact,
		Effort:     effort,
		Urgency:    urgency,
		Dependency: 50,
		Workload:   50,
		Overall:    int(math.Round(float64(impact+(100-effort)+urgency) / 3)),
		Confidence: 30,
		UpdatedAt:  now,
	}
}

// store caches the score and announces it. Neither failure affects the
// returned score.
func (e *Engine) store(ctx context.Context, task *domain.Task, score domain.PriorityScore) {
	if err := e.cache.Set(ctx, task.ID(), score); err != nil {
		e.logger.Warn("failed to cache score", "task_id", task.ID(), "error", err)
	}

	event := domain.NewScoreComputed(task.ID(), task.UserID(), score)
	payload, err := eventbus.EncodeDomainEvent(event)
	if err != nil {
		e.logger.Warn("failed to encode score event", "task_id", task.ID(), "error", err)
		return
	}
	if err := e.publisher.Publish(ctx, event.RoutingKey(), payload); err != nil {
		e.logger.Warn("failed to publish score event", "task_id", task.ID(), "error", err)
	}
}

func overallScore(impact, effort, urgency, dependency, workload int) int {
	weighted := float64(impact)*weightImpact +
		float64(100-effort)*weightEffort +
		float64(urgency)*weightUrgency +
		float64(dependency)*weightDependency +
		float64(workload)*weightWorkload
	return clampScore(int(math.Round(weighted)))
}

// confidenceScore reflects how much signal the computation had to work with:
// more task metadata and more history mean a more trustworthy score.
func confidenceScore(task *domain.Task, pattern domain.HistoricalPattern) int {
	confidence := 50
	if task.Analysis() != "" {
		confidence += 20
	}
	if task.Estimate() != "" {
		confidence += 15
	}
	if task.DueDate() != nil {
		confidence += 10
	}
	if pattern.SimilarCompleted >= 1 {
		confidence += 20
	}
	if len(task.Dependencies()) > 0 {
		confidence += 10
	}
	return clampScore(confidence)
}

var priorityImpact = map[domain.Priority]int{
	domain.PriorityHigh:   75,
	domain.PriorityMedium: 50,
	domain.PriorityLow:    25,
}

var impactHintScores = map[domain.ImpactHint]int{
	domain.ImpactHintCritical: 90,
	domain.ImpactHintHigh:     70,
	domain.ImpactHintMedium:   50,
	domain.ImpactHintLow:      30,
}

var effortHintScores = map[domain.EffortHint]int{
	domain.EffortHintVeryHigh: 85,
	domain.EffortHintHigh:     65,
	domain.EffortHintMedium:   45,
	domain.EffortHintLow:      25,
}

// heuristicImpact derives impact from the task's priority, averaged with the
// user's explicit impact hint when one is set.
func heuristicImpact(task *domain.Task) int {
	base, ok := priorityImpact[task.Priority()]
	if !ok {
		base = 50
	}
	hint, ok := impactHintScores[task.ImpactHint()]
	if !ok {
		return base
	}
	return int(math.Round(float64(base+hint) / 2))
}

// heuristicEffort prefers the explicit effort hint, then the difficulty
// label of a prior analysis, then a neutral 50.
func heuristicEffort(task *domain.Task) int {
	if score, ok := effortHintScores[task.EffortHint()]; ok {
		return score
	}
	switch domain.AnalysisDifficulty(task.Analysis()) {
	case "Hard":
		return 75
	case "Medium":
		return 50
	case "Easy":
		return 25
	}
	return 50
}

// dependencyScore starts neutral at 50. Tasks that block others gain 15 per
// blocked task; tasks waiting on incomplete work lose 20 per blocker; related
// tasks add 5 each, capped at 15 total.
func dependencyScore(task *domain.Task, allTasks []*domain.Task) int {
	byID := make(map[uuid.UUID]*domain.Task, len(allTasks))
	for _, t := range allTasks {
		byID[t.ID()] = t
	}

	score := 50
	relatedBonus := 0
	for _, dep := range task.Dependencies() {
		switch dep.Kind {
		case domain.DependencyBlocks:
			score += 15
		case domain.DependencyBlockedBy:
			if target, ok := byID[dep.TaskID]; ok && !target.IsCompleted() {
				score -= 20
			}
		case domain.DependencyRelatedTo:
			relatedBonus = min(relatedBonus+5, 15)
		}
	}
	return clampScore(score + relatedBonus)
}

// workloadScore rates how loaded the owner already is: the summed estimates
// of their incomplete tasks as a fraction of a 40-hour week. A busier owner
// pushes every task's priority up.
func workloadScore(userID uuid.UUID, allTasks []*domain.Task) int {
	var totalHours float64
	for _, t := range allTasks {
		if t.UserID() == userID && !t.IsCompleted() {
			totalHours += domain.ParseEstimatedTime(t.Estimate())
		}
	}

	weeks := totalHours / 40
	switch {
	case weeks > 2:
		return 80
	case weeks > 1.5:
		return 65
	case weeks > 1:
		return 50
	case weeks > 0.5:
		return 35
	default:
		return 20
	}
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// sleepCtx sleeps for d or until ctx is cancelled, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
