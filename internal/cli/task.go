package cli

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"campustask-sync-server/internal/domain"
	"campustask-sync-server/internal/reconciler"
)

func TaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}

	cmd.AddCommand(taskAddCmd())
	cmd.AddCommand(taskListCmd())
	cmd.AddCommand(taskDoneCmd())
	cmd.AddCommand(taskEditCmd())
	cmd.AddCommand(taskRemoveCmd())

	return cmd
}

func taskAddCmd() *cobra.Command {
	var description, category, due string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := OpenApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			task := domain.Task{
				ID:          reconciler.NewTempID(),
				Title:       args[0],
				Description: description,
				Category:    category,
				CreatedAt:   time.Now(),
				UpdatedAt:   time.Now(),
			}
			if due != "" {
				dueDate, err := time.Parse("2006-01-02", due)
				if err != nil {
					return fmt.Errorf("invalid --due date, want YYYY-MM-DD: %w", err)
				}
				task.DueDate = &dueDate
			}

			tasks, err := app.Store.LoadTasks(ctx)
			if err != nil {
				return err
			}
			tasks = append(tasks, &reconciler.TaskRecord{
				State: reconciler.StatePendingCreate,
				Task:  task,
			})
			if err := app.Store.SaveTasks(ctx, tasks); err != nil {
				return err
			}

			fmt.Printf("Added %q\n", task.Title)
			return app.TrySync(ctx)
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "task description")
	cmd.Flags().StringVar(&category, "category", "", "task category")
	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD)")

	return cmd
}

func taskListCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := OpenApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			tasks, err := app.Store.LoadTasks(ctx)
			if err != nil {
				return err
			}

			if len(tasks) == 0 {
				fmt.Println("No tasks")
				return nil
			}

			for _, record := range tasks {
				if record.Task.Completed && !all {
					continue
				}
				printTask(record)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include completed tasks")

	return cmd
}

func printTask(record *reconciler.TaskRecord) {
	mark := "[ ]"
	if record.Task.Completed {
		mark = color.New(color.FgGreen).Sprint("[x]")
	}

	line := fmt.Sprintf("%s %s  %s", mark, record.Task.ID, record.Task.Title)
	if record.Task.Category != "" {
		line += color.New(color.FgCyan).Sprintf(" (%s)", record.Task.Category)
	}
	if record.Task.DueDate != nil {
		line += fmt.Sprintf(" due %s", record.Task.DueDate.Format("2006-01-02"))
	}
	fmt.Println(line + stateMarker(record.State))
}

func taskDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a task completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateTask(cmd, args[0], func(record *reconciler.TaskRecord) {
				record.Task.Completed = true
			})
		},
	}
}

func taskEditCmd() *cobra.Command {
	var title, description, category string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateTask(cmd, args[0], func(record *reconciler.TaskRecord) {
				if title != "" {
					record.Task.Title = title
				}
				if description != "" {
					record.Task.Description = description
				}
				if category != "" {
					record.Task.Category = category
				}
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	cmd.Flags().StringVar(&category, "category", "", "new category")

	return cmd
}

// mutateTask applies fn to the matching task and tags it for the next
// reconciliation pass. Records the server has never seen stay pending
// creates; a delete of one simply drops it locally.
func mutateTask(cmd *cobra.Command, id string, fn func(*reconciler.TaskRecord)) error {
	ctx := cmd.Context()

	app, err := OpenApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	tasks, err := app.Store.LoadTasks(ctx)
	if err != nil {
		return err
	}

	found := false
	for _, record := range tasks {
		if record.Task.ID != id {
			continue
		}
		found = true
		fn(record)
		record.Task.UpdatedAt = time.Now()
		if record.State == reconciler.StateSynced {
			record.State = reconciler.StatePendingUpdate
		}
	}
	if !found {
		return fmt.Errorf("no task with id %s", id)
	}

	if err := app.Store.SaveTasks(ctx, tasks); err != nil {
		return err
	}

	fmt.Println("Updated")
	return app.TrySync(ctx)
}

func taskRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := OpenApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			tasks, err := app.Store.LoadTasks(ctx)
			if err != nil {
				return err
			}

			found := false
			kept := tasks[:0]
			for _, record := range tasks {
				if record.Task.ID != args[0] {
					kept = append(kept, record)
					continue
				}
				found = true
				if record.State == reconciler.StatePendingCreate {
					// Never reached the server; nothing to replay.
					continue
				}
				record.State = reconciler.StatePendingDelete
				kept = append(kept, record)
			}
			if !found {
				return fmt.Errorf("no task with id %s", args[0])
			}

			if err := app.Store.SaveTasks(ctx, kept); err != nil {
				return err
			}

			fmt.Println("Deleted")
			return app.TrySync(ctx)
		},
	}
}
