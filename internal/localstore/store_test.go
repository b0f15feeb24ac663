package localstore

import (
	"context"
	"testing"

	"campustask-sync-server/internal/domain"
	"campustask-sync-server/internal/reconciler"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_TasksRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	records := []*reconciler.TaskRecord{
		{State: reconciler.StateSynced, Task: domain.Task{ID: "task-1", Title: "Algebra homework", Version: 2}},
		{State: reconciler.StatePendingCreate, Task: domain.Task{ID: reconciler.NewTempID(), Title: "Lab report"}},
	}

	if err := store.SaveTasks(ctx, records); err != nil {
		t.Fatalf("SaveTasks() error = %v", err)
	}

	loaded, err := store.LoadTasks(ctx)
	if err != nil {
		t.Fatalf("LoadTasks() error = %v", err)
	}

	if len(loaded) != 2 {
		t.Fatalf("expected 2 records, got %d", len(loaded))
	}

	byID := make(map[string]*reconciler.TaskRecord)
	for _, r := range loaded {
		byID[r.Task.ID] = r
	}

	got, ok := byID["task-1"]
	if !ok {
		t.Fatal("task-1 missing after round trip")
	}
	if got.State != reconciler.StateSynced || got.Task.Title != "Algebra homework" || got.Task.Version != 2 {
		t.Errorf("task-1 mangled: %+v", got)
	}
}

func TestStore_SaveReplacesCollection(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := []*reconciler.TaskRecord{
		{State: reconciler.StateSynced, Task: domain.Task{ID: "task-1", Title: "Old"}},
		{State: reconciler.StateSynced, Task: domain.Task{ID: "task-2", Title: "Gone"}},
	}
	if err := store.SaveTasks(ctx, first); err != nil {
		t.Fatalf("SaveTasks() error = %v", err)
	}

	second := []*reconciler.TaskRecord{
		{State: reconciler.StateSynced, Task: domain.Task{ID: "task-1", Title: "New"}},
	}
	if err := store.SaveTasks(ctx, second); err != nil {
		t.Fatalf("SaveTasks() error = %v", err)
	}

	loaded, err := store.LoadTasks(ctx)
	if err != nil {
		t.Fatalf("LoadTasks() error = %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("expected stale records to be replaced, got %d records", len(loaded))
	}
	if loaded[0].Task.Title != "New" {
		t.Errorf("expected replacement record, got %+v", loaded[0].Task)
	}
}

func TestStore_RoutinesKeepSlotRecords(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	records := []*reconciler.RoutineRecord{
		{
			State:   reconciler.StateSynced,
			Routine: domain.Routine{ID: "routine-1", Title: "Fall", Version: 3},
			Slots: []*reconciler.SlotRecord{
				{State: reconciler.StatePendingUpdate, Slot: domain.RoutineSlot{ID: "slot-1", DayOfWeek: "Mon", CourseTitle: "Algebra", RoomNumber: "B204"}},
			},
		},
	}

	if err := store.SaveRoutines(ctx, records); err != nil {
		t.Fatalf("SaveRoutines() error = %v", err)
	}

	loaded, err := store.LoadRoutines(ctx)
	if err != nil {
		t.Fatalf("LoadRoutines() error = %v", err)
	}
	if len(loaded) != 1 || len(loaded[0].Slots) != 1 {
		t.Fatalf("slot records lost: %+v", loaded)
	}

	slot := loaded[0].Slots[0]
	if slot.State != reconciler.StatePendingUpdate || slot.Slot.RoomNumber != "B204" {
		t.Errorf("slot record mangled: %+v", slot)
	}
}

func TestStore_SessionValues(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	got, err := store.GetValue(ctx, KeyAccessToken)
	if err != nil {
		t.Fatalf("GetValue() error = %v", err)
	}
	if got != "" {
		t.Errorf("expected empty value for unset key, got %q", got)
	}

	if err := store.SetValue(ctx, KeyAccessToken, "token-1"); err != nil {
		t.Fatalf("SetValue() error = %v", err)
	}
	if err := store.SetValue(ctx, KeyAccessToken, "token-2"); err != nil {
		t.Fatalf("SetValue() overwrite error = %v", err)
	}

	got, err = store.GetValue(ctx, KeyAccessToken)
	if err != nil {
		t.Fatalf("GetValue() error = %v", err)
	}
	if got != "token-2" {
		t.Errorf("expected overwritten value, got %q", got)
	}

	if err := store.DeleteValue(ctx, KeyAccessToken); err != nil {
		t.Fatalf("DeleteValue() error = %v", err)
	}
	got, _ = store.GetValue(ctx, KeyAccessToken)
	if got != "" {
		t.Errorf("expected value removed, got %q", got)
	}
}
