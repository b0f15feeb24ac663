package reconciler

import (
	"context"
	"fmt"
	"log"

	"campustask-sync-server/internal/domain"
)

// Remote is the server-side counterpart of the local collections. Creates
// return the stored record with its server-assigned identifier.
type Remote interface {
	CreateTask(ctx context.Context, task *domain.Task) (*domain.Task, error)
	UpdateTask(ctx context.Context, task *domain.Task) (*domain.Task, error)
	DeleteTask(ctx context.Context, id string) error

	CreateRoutine(ctx context.Context, routine *domain.Routine) (*domain.Routine, error)
	UpdateRoutine(ctx context.Context, routine *domain.Routine) (*domain.Routine, error)
	DeleteRoutine(ctx context.Context, id string) error
	ActivateRoutine(ctx context.Context, id string) error
	DeactivateRoutine(ctx context.Context, id string) error

	CreateSlot(ctx context.Context, routineID string, slot *domain.RoutineSlot) (*domain.RoutineSlot, error)
	UpdateSlot(ctx context.Context, routineID string, slot *domain.RoutineSlot) (*domain.RoutineSlot, error)
	DeleteSlot(ctx context.Context, routineID, slotID string) error
}

// Store is the device-local copy of the collections. Saves replace the
// whole collection.
type Store interface {
	LoadTasks(ctx context.Context) ([]*TaskRecord, error)
	SaveTasks(ctx context.Context, tasks []*TaskRecord) error
	LoadRoutines(ctx context.Context) ([]*RoutineRecord, error)
	SaveRoutines(ctx context.Context, routines []*RoutineRecord) error
}

type Connectivity interface {
	Online(ctx context.Context) bool
}

// Report summarizes a pass. Per-record failures are counted here and
// logged, never returned; the failing records keep their pending state so
// the next pass retries them.
type Report struct {
	Skipped bool
	Applied int
	Failed  int
}

type Reconciler struct {
	remote Remote
	store  Store
	conn   Connectivity
	gate   gate
}

func New(remote Remote, store Store, conn Connectivity) *Reconciler {
	return &Reconciler{
		remote: remote,
		store:  store,
		conn:   conn,
	}
}

// Run replays every pending local mutation against the remote service and
// persists the reconciled collections. When the device is offline or a
// pass is already running the call is a no-op with Report.Skipped set.
//
// The returned error covers only loading and persisting the local
// collections; remote progress made before a persistence failure is kept
// in memory and a rerun will not repeat it.
func (r *Reconciler) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	if !r.conn.Online(ctx) {
		report.Skipped = true
		return report, nil
	}

	if !r.gate.TryAcquire() {
		report.Skipped = true
		return report, nil
	}
	defer r.gate.Release()

	tasks, err := r.store.LoadTasks(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to load tasks: %w", err)
	}

	routines, err := r.store.LoadRoutines(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to load routines: %w", err)
	}

	changed := false
	tasks = r.reconcileTasks(ctx, tasks, report, &changed)
	routines = r.reconcileRoutines(ctx, routines, report, &changed)

	if !changed {
		return report, nil
	}

	if err := r.store.SaveTasks(ctx, tasks); err != nil {
		return report, fmt.Errorf("failed to persist tasks: %w", err)
	}
	if err := r.store.SaveRoutines(ctx, routines); err != nil {
		return report, fmt.Errorf("failed to persist routines: %w", err)
	}

	return report, nil
}

func (r *Reconciler) reconcileTasks(ctx context.Context, tasks []*TaskRecord, report *Report, changed *bool) []*TaskRecord {
	kept := make([]*TaskRecord, 0, len(tasks))

	for _, record := range tasks {
		switch record.State {
		case StateSynced:
			kept = append(kept, record)

		case StatePendingDelete:
			if err := r.remote.DeleteTask(ctx, record.Task.ID); err != nil {
				log.Printf("reconcile: delete task %s failed: %v", record.Task.ID, err)
				report.Failed++
				kept = append(kept, record)
				continue
			}
			report.Applied++
			*changed = true

		case StatePendingCreate:
			payload := record.Task
			payload.ID = ""
			created, err := r.remote.CreateTask(ctx, &payload)
			if err != nil {
				log.Printf("reconcile: create task %q failed: %v", record.Task.Title, err)
				report.Failed++
				kept = append(kept, record)
				continue
			}
			record.Task = *created
			record.State = StateSynced
			report.Applied++
			*changed = true
			kept = append(kept, record)

		case StatePendingUpdate:
			updated, err := r.remote.UpdateTask(ctx, &record.Task)
			if err != nil {
				log.Printf("reconcile: update task %s failed: %v", record.Task.ID, err)
				report.Failed++
				kept = append(kept, record)
				continue
			}
			record.Task = *updated
			record.State = StateSynced
			report.Applied++
			*changed = true
			kept = append(kept, record)

		default:
			log.Printf("reconcile: task %s has unexpected state %q, leaving untouched", record.Task.ID, record.State)
			kept = append(kept, record)
		}
	}

	return kept
}

func (r *Reconciler) reconcileRoutines(ctx context.Context, routines []*RoutineRecord, report *Report, changed *bool) []*RoutineRecord {
	kept := make([]*RoutineRecord, 0, len(routines))

	for _, record := range routines {
		switch record.State {
		case StatePendingDelete:
			// Deleting the routine takes its slots with it.
			if err := r.remote.DeleteRoutine(ctx, record.Routine.ID); err != nil {
				log.Printf("reconcile: delete routine %s failed: %v", record.Routine.ID, err)
				report.Failed++
				kept = append(kept, record)
			} else {
				report.Applied++
				*changed = true
			}
			continue

		case StatePendingCreate:
			created, err := r.remote.CreateRoutine(ctx, record.serverPayload())
			if err != nil {
				log.Printf("reconcile: create routine %q failed: %v", record.Routine.Title, err)
				report.Failed++
				kept = append(kept, record)
				continue
			}
			record.FromServer(created)
			report.Applied++
			*changed = true
			kept = append(kept, record)
			// A freshly created routine already carries the server's view
			// of its slots; nothing further to replay.
			continue

		case StatePendingActivation:
			if err := r.remote.ActivateRoutine(ctx, record.Routine.ID); err != nil {
				log.Printf("reconcile: activate routine %s failed: %v", record.Routine.ID, err)
				report.Failed++
			} else {
				record.Routine.IsActive = true
				record.State = StateSynced
				report.Applied++
				*changed = true
			}

		case StatePendingDeactivation:
			if err := r.remote.DeactivateRoutine(ctx, record.Routine.ID); err != nil {
				log.Printf("reconcile: deactivate routine %s failed: %v", record.Routine.ID, err)
				report.Failed++
			} else {
				record.Routine.IsActive = false
				record.State = StateSynced
				report.Applied++
				*changed = true
			}

		case StatePendingUpdate:
			// Slot mutations replay individually below; the routine update
			// only carries the routine's own fields.
			updated, err := r.remote.UpdateRoutine(ctx, &record.Routine)
			if err != nil {
				log.Printf("reconcile: update routine %s failed: %v", record.Routine.ID, err)
				report.Failed++
			} else {
				slots := record.Slots
				record.Routine = *updated
				record.Routine.Slots = nil
				record.Slots = slots
				record.State = StateSynced
				report.Applied++
				*changed = true
			}
		}

		record.Slots = r.reconcileSlots(ctx, record.Routine.ID, record.Slots, report, changed)
		kept = append(kept, record)
	}

	return kept
}

func (r *Reconciler) reconcileSlots(ctx context.Context, routineID string, slots []*SlotRecord, report *Report, changed *bool) []*SlotRecord {
	kept := make([]*SlotRecord, 0, len(slots))

	for _, record := range slots {
		switch record.State {
		case StateSynced:
			kept = append(kept, record)

		case StatePendingDelete:
			if err := r.remote.DeleteSlot(ctx, routineID, record.Slot.ID); err != nil {
				log.Printf("reconcile: delete slot %s failed: %v", record.Slot.ID, err)
				report.Failed++
				kept = append(kept, record)
				continue
			}
			report.Applied++
			*changed = true

		case StatePendingCreate:
			payload := record.Slot
			payload.ID = ""
			created, err := r.remote.CreateSlot(ctx, routineID, &payload)
			if err != nil {
				log.Printf("reconcile: create slot in routine %s failed: %v", routineID, err)
				report.Failed++
				kept = append(kept, record)
				continue
			}
			record.Slot = *created
			record.State = StateSynced
			report.Applied++
			*changed = true
			kept = append(kept, record)

		case StatePendingUpdate:
			updated, err := r.remote.UpdateSlot(ctx, routineID, &record.Slot)
			if err != nil {
				log.Printf("reconcile: update slot %s failed: %v", record.Slot.ID, err)
				report.Failed++
				kept = append(kept, record)
				continue
			}
			record.Slot = *updated
			record.State = StateSynced
			report.Applied++
			*changed = true
			kept = append(kept, record)

		default:
			kept = append(kept, record)
		}
	}

	return kept
}
