package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"campustask-sync-server/internal/reconciler"
)

// RootCmd assembles the campustask command tree.
func RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "campustask",
		Short: "CampusTask - offline-first task and class routine manager",
		Long: `CampusTask manages your tasks and class routines from the terminal.

All writes land in a local database first, so every command works
offline. Pending changes are pushed to the sync server whenever it is
reachable, or explicitly with 'campustask sync'.`,
	}

	cmd.AddCommand(RegisterCmd())
	cmd.AddCommand(LoginCmd())
	cmd.AddCommand(LogoutCmd())
	cmd.AddCommand(TaskCmd())
	cmd.AddCommand(RoutineCmd())
	cmd.AddCommand(SyncCmd())

	return cmd
}

func printReport(report *reconciler.Report) {
	if report.Applied == 0 && report.Failed == 0 {
		fmt.Println("Already in sync")
		return
	}

	fmt.Printf("%s %d change(s) pushed\n", color.New(color.FgGreen).Sprint("✓"), report.Applied)
	if report.Failed > 0 {
		fmt.Printf("%s %d change(s) failed and will be retried\n", color.New(color.FgYellow).Sprint("!"), report.Failed)
	}
}

func stateMarker(state reconciler.SyncState) string {
	switch state {
	case reconciler.StateSynced:
		return ""
	case reconciler.StatePendingDelete:
		return color.New(color.FgRed).Sprint(" [pending delete]")
	default:
		return color.New(color.FgYellow).Sprint(" [pending]")
	}
}
