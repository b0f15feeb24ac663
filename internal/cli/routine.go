package cli

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"campustask-sync-server/internal/domain"
	"campustask-sync-server/internal/reconciler"
)

func RoutineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routine",
		Short: "Manage class routines",
	}

	cmd.AddCommand(routineAddCmd())
	cmd.AddCommand(routineListCmd())
	cmd.AddCommand(routineEditCmd())
	cmd.AddCommand(routineRemoveCmd())
	cmd.AddCommand(routineActivateCmd())
	cmd.AddCommand(routineDeactivateCmd())
	cmd.AddCommand(slotCmd())

	return cmd
}

func routineAddCmd() *cobra.Command {
	var semester string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a routine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := OpenApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			routines, err := app.Store.LoadRoutines(ctx)
			if err != nil {
				return err
			}
			routines = append(routines, &reconciler.RoutineRecord{
				State: reconciler.StatePendingCreate,
				Routine: domain.Routine{
					ID:        reconciler.NewTempID(),
					Title:     args[0],
					Semester:  semester,
					CreatedAt: time.Now(),
					UpdatedAt: time.Now(),
				},
			})
			if err := app.Store.SaveRoutines(ctx, routines); err != nil {
				return err
			}

			fmt.Printf("Added routine %q\n", args[0])
			return app.TrySync(ctx)
		},
	}

	cmd.Flags().StringVar(&semester, "semester", "", "semester label, e.g. 'Fall 2026'")

	return cmd
}

func routineListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List routines and their slots",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := OpenApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			routines, err := app.Store.LoadRoutines(ctx)
			if err != nil {
				return err
			}

			if len(routines) == 0 {
				fmt.Println("No routines")
				return nil
			}

			for _, record := range routines {
				active := ""
				if record.Routine.IsActive {
					active = color.New(color.FgGreen).Sprint(" [active]")
				}
				title := record.Routine.Title
				if record.Routine.Semester != "" {
					title += " (" + record.Routine.Semester + ")"
				}
				fmt.Printf("%s  %s%s%s\n", record.Routine.ID, title, active, stateMarker(record.State))

				for _, slot := range record.Slots {
					fmt.Printf("    %s  %s %s-%s  %s%s\n",
						slot.Slot.ID, slot.Slot.DayOfWeek, slot.Slot.StartTime, slot.Slot.EndTime,
						slot.Slot.CourseTitle, stateMarker(slot.State))
				}
			}
			return nil
		},
	}
}

func routineEditCmd() *cobra.Command {
	var title, semester string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a routine's title or semester",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateRoutine(cmd, args[0], func(record *reconciler.RoutineRecord) {
				if title != "" {
					record.Routine.Title = title
				}
				if semester != "" {
					record.Routine.Semester = semester
				}
				record.State = reconciler.StatePendingUpdate
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&semester, "semester", "", "new semester label")

	return cmd
}

func routineRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a routine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := OpenApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			routines, err := app.Store.LoadRoutines(ctx)
			if err != nil {
				return err
			}

			found := false
			kept := routines[:0]
			for _, record := range routines {
				if record.Routine.ID != args[0] {
					kept = append(kept, record)
					continue
				}
				found = true
				if record.State == reconciler.StatePendingCreate {
					continue
				}
				record.State = reconciler.StatePendingDelete
				kept = append(kept, record)
			}
			if !found {
				return fmt.Errorf("no routine with id %s", args[0])
			}

			if err := app.Store.SaveRoutines(ctx, kept); err != nil {
				return err
			}

			fmt.Println("Deleted")
			return app.TrySync(ctx)
		},
	}
}

func routineActivateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "activate <id>",
		Short: "Make a routine the active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateRoutine(cmd, args[0], func(record *reconciler.RoutineRecord) {
				record.Routine.IsActive = true
				record.State = reconciler.StatePendingActivation
			})
		},
	}
}

func routineDeactivateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate <id>",
		Short: "Deactivate a routine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateRoutine(cmd, args[0], func(record *reconciler.RoutineRecord) {
				record.Routine.IsActive = false
				record.State = reconciler.StatePendingDeactivation
			})
		},
	}
}

// mutateRoutine applies fn to the matching routine. Unlike task edits the
// caller sets the pending state itself since activation and deactivation
// replay through dedicated calls. Routines the server has never seen keep
// their pending-create tag; the whole record ships on create anyway.
func mutateRoutine(cmd *cobra.Command, routineID string, fn func(*reconciler.RoutineRecord)) error {
	ctx := cmd.Context()

	app, err := OpenApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	routines, err := app.Store.LoadRoutines(ctx)
	if err != nil {
		return err
	}

	found := false
	for _, record := range routines {
		if record.Routine.ID != routineID {
			continue
		}
		found = true
		wasPendingCreate := record.State == reconciler.StatePendingCreate
		fn(record)
		record.Routine.UpdatedAt = time.Now()
		if wasPendingCreate {
			record.State = reconciler.StatePendingCreate
		}
	}
	if !found {
		return fmt.Errorf("no routine with id %s", routineID)
	}

	if err := app.Store.SaveRoutines(ctx, routines); err != nil {
		return err
	}

	fmt.Println("Updated")
	return app.TrySync(ctx)
}

func slotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slot",
		Short: "Manage slots within a routine",
	}

	cmd.AddCommand(slotAddCmd())
	cmd.AddCommand(slotRemoveCmd())

	return cmd
}

func slotAddCmd() *cobra.Command {
	var day, start, end, course, teacher, room string

	cmd := &cobra.Command{
		Use:   "add <routine-id>",
		Short: "Add a class slot to a routine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateRoutine(cmd, args[0], func(record *reconciler.RoutineRecord) {
				record.Slots = append(record.Slots, &reconciler.SlotRecord{
					State: reconciler.StatePendingCreate,
					Slot: domain.RoutineSlot{
						ID:          reconciler.NewTempID(),
						DayOfWeek:   day,
						StartTime:   start,
						EndTime:     end,
						CourseTitle: course,
						TeacherName: teacher,
						RoomNumber:  room,
					},
				})
			})
		},
	}

	cmd.Flags().StringVar(&day, "day", "", "day of week (Sun..Sat)")
	cmd.Flags().StringVar(&start, "start", "", "start time, e.g. 09:00")
	cmd.Flags().StringVar(&end, "end", "", "end time, e.g. 10:30")
	cmd.Flags().StringVar(&course, "course", "", "course title")
	cmd.Flags().StringVar(&teacher, "teacher", "", "teacher name")
	cmd.Flags().StringVar(&room, "room", "", "room number")
	cmd.MarkFlagRequired("day")
	cmd.MarkFlagRequired("start")
	cmd.MarkFlagRequired("end")
	cmd.MarkFlagRequired("course")

	return cmd
}

func slotRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <routine-id> <slot-id>",
		Short: "Remove a class slot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateRoutine(cmd, args[0], func(record *reconciler.RoutineRecord) {
				kept := record.Slots[:0]
				for _, slot := range record.Slots {
					if slot.Slot.ID != args[1] {
						kept = append(kept, slot)
						continue
					}
					if slot.State == reconciler.StatePendingCreate {
						continue
					}
					slot.State = reconciler.StatePendingDelete
					kept = append(kept, slot)
				}
				record.Slots = kept
			})
		},
	}
}
