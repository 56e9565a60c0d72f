package inference

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/taskpilot/internal/scoring/domain"
	"github.com/sony/gobreaker/v2"
)

const scoreSystem = "You are a prioritization assistant for a personal task manager. " +
	"Respond with a single integer between 0 and 100 and nothing else."

var firstInteger = regexp.MustCompile(`\d+`)

// Client scores tasks through an AI provider. Calls run behind a circuit
// breaker: after repeated consecutive failures the breaker opens and calls
// fail fast until the provider recovers. Rate-limit errors pass through
// unchanged so callers can retry them; they do not count against the breaker.
type Client struct {
	provider Provider
	breaker  *gobreaker.CircuitBreaker[*Response]
	logger   *slog.Logger
}

// NewClient creates a scoring client around the given provider.
func NewClient(provider Provider, logger *slog.Logger) *Client {
	settings := gobreaker.Settings{
		Name:        "inference",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// Rate limits are transient and handled by the caller's retry
			// loop; only hard failures should trip the breaker.
			return err == nil || IsRateLimited(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("inference breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	}

	return &Client{
		provider: provider,
		breaker:  gobreaker.NewCircuitBreaker[*Response](settings),
		logger:   logger,
	}
}

// ImpactScore asks the provider to judge the impact of completing the task
// on a 0-100 scale.
func (c *Client) ImpactScore(ctx context.Context, task *domain.Task) (int, error) {
	return c.score(ctx, impactPrompt(task))
}

// EffortScore asks the provider to judge the effort the task requires on a
// 0-100 scale, informed by the user's historical completion pattern.
func (c *Client) EffortScore(ctx context.Context, task *domain.Task, pattern domain.HistoricalPattern) (int, error) {
	return c.score(ctx, effortPrompt(task, pattern))
}

func (c *Client) score(ctx context.Context, prompt string) (int, error) {
	resp, err := c.breaker.Execute(func() (*Response, error) {
		return c.provider.Complete(ctx, &Request{
			Prompt:    prompt,
			System:    scoreSystem,
			MaxTokens: 16,
		})
	})
	if err != nil {
		return 0, err
	}
	return parseScore(resp.Content)
}

// parseScore extracts the first integer from the model's reply and clamps it
// to the 0-100 range.
func parseScore(content string) (int, error) {
	match := firstInteger.FindString(content)
	if match == "" {
		return 0, fmt.Errorf("no score in response %q", content)
	}
	score, err := strconv.Atoi(match)
	if err != nil {
		return 0, fmt.Errorf("invalid score in response %q: %w", content, err)
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, nil
}

func impactPrompt(task *domain.Task) string {
	var b strings.Builder
	b.WriteString("Rate how much impact completing this task would have for its owner.\n\n")
	writeTaskDetails(&b, task)
	b.WriteString("\nScale:\n")
	b.WriteString("90-100: transformational, unblocks major goals\n")
	b.WriteString("70-89: major progress on important work\n")
	b.WriteString("40-69: moderate, useful but not pivotal\n")
	b.WriteString("20-39: minor improvement\n")
	b.WriteString("0-19: negligible\n")
	return b.String()
}

func effortPrompt(task *domain.Task, pattern domain.HistoricalPattern) string {
	var b strings.Builder
	b.WriteString("Rate how much effort this task will take for its owner.\n\n")
	writeTaskDetails(&b, task)
	fmt.Fprintf(&b, "Owner's average completion time: %.1f hours\n", pattern.AvgCompletionHours)
	fmt.Fprintf(&b, "Owner's on-time completion rate: %.0f%%\n", pattern.SuccessRate*100)
	b.WriteString("\nScale:\n")
	b.WriteString("90-100: extremely heavy, multi-day focused work\n")
	b.WriteString("70-89: heavy, a full day or more\n")
	b.WriteString("40-69: moderate, a few hours\n")
	b.WriteString("20-39: light, under an hour\n")
	b.WriteString("0-19: trivial\n")
	return b.String()
}

func writeTaskDetails(b *strings.Builder, task *domain.Task) {
	fmt.Fprintf(b, "Task: %s\n", task.Title())
	fmt.Fprintf(b, "Priority: %s\n", task.Priority())
	if due := task.DueDate(); due != nil {
		fmt.Fprintf(b, "Due: %s\n", due.Format("2006-01-02"))
	}
	if est := task.Estimate(); est != "" {
		fmt.Fprintf(b, "Estimated time: %s\n", est)
	}
	if hint := task.ImpactHint(); hint != "" {
		fmt.Fprintf(b, "Impact hint: %s\n", hint)
	}
	if hint := task.EffortHint(); hint != "" {
		fmt.Fprintf(b, "Effort hint: %s\n", hint)
	}
	if analysis := task.Analysis(); analysis != "" {
		fmt.Fprintf(b, "Analysis: %s\n", analysis)
	}
}
