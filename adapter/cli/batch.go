package cli

import (
	"fmt"
	"sort"

	"github.com/felixgeelhaar/taskpilot/internal/scoring/domain"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	batchTasksFile string
	batchAll       bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Score all tasks in a task export file",
	Long: `Score every incomplete task in a task export file and print them in
priority order. Tasks with fresh cached scores are served immediately;
the rest are scored in paced groups to respect provider rate limits.

Examples:
  taskpilot batch --tasks tasks.json
  taskpilot batch --tasks tasks.json --all`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}
		ctx := cmd.Context()

		tasks, err := loadTasks(batchTasksFile, app.CurrentUserID)
		if err != nil {
			return err
		}

		targets := tasks
		if !batchAll {
			targets = make([]*domain.Task, 0, len(tasks))
			for _, t := range tasks {
				if !t.IsCompleted() {
					targets = append(targets, t)
				}
			}
		}
		if len(targets) == 0 {
			fmt.Println("Nothing to score.")
			return nil
		}

		err = app.Engine.CalculateBatch(ctx, targets, func(completed, total int) {
			fmt.Printf("\rScoring %d/%d", completed, total)
		})
		fmt.Println()
		if err != nil {
			return fmt.Errorf("batch scoring interrupted: %w", err)
		}

		for _, t := range targets {
			if t.Score() == nil {
				continue
			}
			rec := domain.ScoreRecord{
				ID:     uuid.New(),
				UserID: app.CurrentUserID,
				TaskID: t.ID(),
				Score:  *t.Score(),
			}
			if err := app.ScoreRepo.Save(ctx, rec); err != nil {
				logger.Warn("failed to persist score", "task_id", t.ID(), "error", err)
			}
		}

		sorted := append([]*domain.Task(nil), targets...)
		sort.SliceStable(sorted, func(i, j int) bool {
			return overallOf(sorted[i]) > overallOf(sorted[j])
		})

		fmt.Printf("\n%-38s %-30s %s\n", "ID", "TITLE", "SCORE")
		for _, t := range sorted {
			fmt.Printf("%-38s %-30s %5d\n", t.ID(), truncateTitle(t.Title(), 28), overallOf(t))
		}
		return nil
	},
}

// truncateTitle shortens a title to at most max display characters,
// counting runes so multi-byte titles are never split mid-character.
func truncateTitle(title string, max int) string {
	runes := []rune(title)
	if len(runes) <= max {
		return title
	}
	return string(runes[:max-3]) + "..."
}

func overallOf(t *domain.Task) int {
	if t.Score() == nil {
		return 0
	}
	return t.Score().Overall
}

func init() {
	batchCmd.Flags().StringVarP(&batchTasksFile, "tasks", "t", "", "path to the task export file")
	_ = batchCmd.MarkFlagRequired("tasks")
	batchCmd.Flags().BoolVar(&batchAll, "all", false, "also score completed tasks")
}
