package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"campustask-sync-server/internal/domain"
	"campustask-sync-server/internal/localstore"
	"campustask-sync-server/internal/reconciler"
)

func SyncCmd() *cobra.Command {
	var pushOnly bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Push pending changes and pull server-side updates",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := OpenApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			if !app.Client.Online(ctx) {
				fmt.Println("Server unreachable; changes stay queued locally")
				return nil
			}

			report, err := app.Reconciler.Run(ctx)
			if err != nil {
				return err
			}
			if report.Skipped {
				fmt.Println("A sync pass is already running")
				return nil
			}
			printReport(report)

			if pushOnly {
				return nil
			}
			return pullChanges(ctx, app)
		},
	}

	cmd.Flags().BoolVar(&pushOnly, "push-only", false, "skip pulling server-side changes")

	return cmd
}

// pullChanges applies the server's change feed to the local database.
// Records with pending local mutations are left alone so a pull never
// clobbers work that has not been pushed yet.
func pullChanges(ctx context.Context, app *App) error {
	var since time.Time
	if raw, err := app.Store.GetValue(ctx, localstore.KeyLastSync); err != nil {
		return err
	} else if raw != "" {
		since, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return fmt.Errorf("corrupt last_sync value %q: %w", raw, err)
		}
	}

	resp, err := app.Client.Changes(ctx, since)
	if err != nil {
		return err
	}

	if len(resp.Changes) > 0 {
		tasks, err := app.Store.LoadTasks(ctx)
		if err != nil {
			return err
		}
		routines, err := app.Store.LoadRoutines(ctx)
		if err != nil {
			return err
		}

		for _, change := range resp.Changes {
			switch change.Kind {
			case domain.ChangeKindTask:
				tasks = applyTaskChange(tasks, change)
			case domain.ChangeKindRoutine:
				routines = applyRoutineChange(routines, change)
			}
		}

		if err := app.Store.SaveTasks(ctx, tasks); err != nil {
			return err
		}
		if err := app.Store.SaveRoutines(ctx, routines); err != nil {
			return err
		}

		fmt.Printf("Pulled %d change(s)\n", len(resp.Changes))
	}

	return app.Store.SetValue(ctx, localstore.KeyLastSync, resp.SyncTime.Format(time.RFC3339))
}

func applyTaskChange(tasks []*reconciler.TaskRecord, change *domain.Change) []*reconciler.TaskRecord {
	for i, record := range tasks {
		if record.Task.ID != change.ID {
			continue
		}
		if record.State != reconciler.StateSynced {
			return tasks
		}
		if change.Operation == "delete" {
			return append(tasks[:i], tasks[i+1:]...)
		}
		if change.Task != nil {
			record.Task = *change.Task
		}
		return tasks
	}

	if change.Operation != "delete" && change.Task != nil {
		tasks = append(tasks, &reconciler.TaskRecord{
			State: reconciler.StateSynced,
			Task:  *change.Task,
		})
	}
	return tasks
}

func applyRoutineChange(routines []*reconciler.RoutineRecord, change *domain.Change) []*reconciler.RoutineRecord {
	for i, record := range routines {
		if record.Routine.ID != change.ID {
			continue
		}
		if record.State != reconciler.StateSynced || hasPendingSlots(record) {
			return routines
		}
		if change.Operation == "delete" {
			return append(routines[:i], routines[i+1:]...)
		}
		if change.Routine != nil {
			record.FromServer(change.Routine)
		}
		return routines
	}

	if change.Operation != "delete" && change.Routine != nil {
		record := &reconciler.RoutineRecord{}
		record.FromServer(change.Routine)
		routines = append(routines, record)
	}
	return routines
}

func hasPendingSlots(record *reconciler.RoutineRecord) bool {
	for _, slot := range record.Slots {
		if slot.State != reconciler.StateSynced {
			return true
		}
	}
	return false
}
