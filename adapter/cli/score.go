package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	scoreTasksFile string
	scoreAsJSON    bool
)

var scoreCmd = &cobra.Command{
	Use:   "score [task-id]",
	Short: "Compute the priority score for a single task",
	Long: `Compute the priority score for a single task from a task export file.

A fresh cached score is returned without recomputation. Task ids may be
given as a full UUID or a unique prefix of at least 4 characters.

Examples:
  taskpilot score 550e8400-e29b-41d4-a716-446655440000 --tasks tasks.json
  taskpilot score 550e --tasks tasks.json --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		tasks, err := loadTasks(scoreTasksFile, app.CurrentUserID)
		if err != nil {
			return err
		}
		task, err := findTask(tasks, args[0])
		if err != nil {
			return err
		}

		score := app.Engine.Calculate(cmd.Context(), task, tasks)

		if scoreAsJSON {
			out, err := json.MarshalIndent(score, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		}

		fmt.Printf("Task: %s\n\n", task.Title())
		fmt.Printf("  Impact      %3d\n", score.Impact)
		fmt.Printf("  Effort      %3d\n", score.Effort)
		fmt.Printf("  Urgency     %3d\n", score.Urgency)
		fmt.Printf("  Dependency  %3d\n", score.Dependency)
		fmt.Printf("  Workload    %3d\n", score.Workload)
		fmt.Printf("\n  Overall     %3d  (confidence %d)\n", score.Overall, score.Confidence)
		return nil
	},
}

func init() {
	scoreCmd.Flags().StringVarP(&scoreTasksFile, "tasks", "t", "", "path to the task export file")
	_ = scoreCmd.MarkFlagRequired("tasks")
	scoreCmd.Flags().BoolVar(&scoreAsJSON, "json", false, "print the score as JSON")
}
