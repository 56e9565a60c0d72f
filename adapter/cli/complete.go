package cli

import (
	"fmt"

	"github.com/felixgeelhaar/taskpilot/internal/shared/infrastructure/eventbus"
	"github.com/spf13/cobra"
)

var (
	completeTasksFile   string
	completeActualHours float64
)

var completeCmd = &cobra.Command{
	Use:   "complete [task-id]",
	Short: "Mark a task as complete",
	Long: `Mark a task as complete and feed its duration into your history,
which sharpens future effort judgments.

Without --actual-hours the task's estimate stands in for the measured
duration.

Examples:
  taskpilot complete 550e8400 --tasks tasks.json
  taskpilot complete 550e8400 --tasks tasks.json --actual-hours 3.5`,
	Aliases: []string{"done"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}
		ctx := cmd.Context()

		tasks, err := loadTasks(completeTasksFile, app.CurrentUserID)
		if err != nil {
			return err
		}
		task, err := findTask(tasks, args[0])
		if err != nil {
			return err
		}

		if completeActualHours > 0 {
			err = task.CompleteWithActual(completeActualHours)
		} else {
			err = task.Complete()
		}
		if err != nil {
			return fmt.Errorf("failed to complete task: %w", err)
		}

		for _, event := range task.DomainEvents() {
			payload, err := eventbus.EncodeDomainEvent(event)
			if err != nil {
				return fmt.Errorf("failed to encode event: %w", err)
			}
			if err := app.Publisher.Publish(ctx, event.RoutingKey(), payload); err != nil {
				return fmt.Errorf("failed to publish event: %w", err)
			}
		}
		task.ClearDomainEvents()

		fmt.Printf("Task completed: %s\n", task.Title())
		return nil
	},
}

func init() {
	completeCmd.Flags().StringVarP(&completeTasksFile, "tasks", "t", "", "path to the task export file")
	_ = completeCmd.MarkFlagRequired("tasks")
	completeCmd.Flags().Float64Var(&completeActualHours, "actual-hours", 0, "hours the task actually took")
}
