package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/hostelhub/pkg/core/model"
	"github.com/jakechorley/hostelhub/pkg/core/services"
)

// AddTaskCmd creates the addTask command
func AddTaskCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "addTask <created_by> <title>",
		Short: "Add a card to a task board",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			board, _ := cmd.Flags().GetString("board")
			description, _ := cmd.Flags().GetString("description")
			assignee, _ := cmd.Flags().GetString("assignee")
			due, _ := cmd.Flags().GetString("due")

			task, err := services.CreateTask(app.Ctx, app.Database, app.Logger, services.TaskInput{
				Board:       board,
				Title:       args[1],
				Description: description,
				AssigneeID:  assignee,
				DueDate:     due,
				CreatedBy:   args[0],
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Task %s added to %s\n", task.ID, task.Board)
			return nil
		},
	}

	cmd.Flags().String("board", services.DefaultBoard, "Board to add the task to")
	cmd.Flags().String("description", "", "Longer description")
	cmd.Flags().String("assignee", "", "User to assign the task to")
	cmd.Flags().String("due", "", "Due date (YYYY-MM-DD)")

	return cmd
}

// ListTasksCmd creates the listTasks command
func ListTasksCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listTasks",
		Short: "List tasks, optionally filtered by board, status or assignee",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			board, _ := cmd.Flags().GetString("board")
			status, _ := cmd.Flags().GetString("status")
			assignee, _ := cmd.Flags().GetString("assignee")

			tasks, err := services.ListTasks(app.Ctx, app.Database, services.TaskFilter{
				Board:      board,
				Status:     model.TaskStatus(status),
				AssigneeID: assignee,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(tasks) == 0 {
				fmt.Fprintln(out, "No tasks found.")
				return nil
			}
			for _, task := range tasks {
				assigned := task.AssigneeID
				if assigned == "" {
					assigned = "-"
				}
				fmt.Fprintf(out, "%s  [%-11s] %-10s %-12s %s", task.ID, task.Status, task.Board, assigned, task.Title)
				if task.DueDate != "" {
					fmt.Fprintf(out, "  (due %s)", task.DueDate)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().String("board", "", "Only tasks on this board")
	cmd.Flags().String("status", "", "Only tasks with this status (todo, inProgress, done)")
	cmd.Flags().String("assignee", "", "Only tasks assigned to this user")

	return cmd
}

// SetTaskStatusCmd creates the setTaskStatus command
func SetTaskStatusCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "setTaskStatus <task_id> <status>",
		Short: "Move a task to another column",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := services.UpdateTaskStatus(app.Ctx, app.Database, app.Logger, args[0], model.TaskStatus(args[1]))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is now %s\n", task.Title, task.Status)
			return nil
		},
	}
}

// AssignTaskCmd creates the assignTask command
func AssignTaskCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "assignTask <task_id> <assignee_id>",
		Short: "Assign a task to a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := services.AssignTask(app.Ctx, app.Database, app.Logger, args[0], args[1])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s assigned to %s\n", task.Title, task.AssigneeID)
			return nil
		},
	}
}

// DeleteTaskCmd creates the deleteTask command
func DeleteTaskCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deleteTask <task_id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := services.DeleteTask(app.Ctx, app.Database, app.Logger, args[0]); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ Task %s deleted\n", args[0])
			return nil
		},
	}
}
