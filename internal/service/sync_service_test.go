package service

import (
	"testing"
	"time"

	"campustask-sync-server/internal/domain"
)

func TestSyncService_GetChangesSince(t *testing.T) {
	taskRepo := newMockTaskRepository()
	routineRepo := newMockRoutineRepository()
	service := NewSyncService(taskRepo, routineRepo, nil, nil)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	taskRepo.Create(&domain.Task{ID: "t1", UserID: "user-1", Title: "Old", UpdatedAt: base.Add(-time.Hour), Version: 1})
	taskRepo.Create(&domain.Task{ID: "t2", UserID: "user-1", Title: "Fresh", UpdatedAt: base.Add(time.Hour), Version: 2})
	taskRepo.Create(&domain.Task{ID: "t3", UserID: "user-1", Title: "Tombstone", UpdatedAt: base.Add(time.Hour), IsDeleted: true, Version: 3})
	routineRepo.Create(&domain.Routine{ID: "r1", UserID: "user-1", Title: "Fall", UpdatedAt: base.Add(2 * time.Hour), Version: 5})

	resp, err := service.GetChangesSince("user-1", "device-1", base)
	if err != nil {
		t.Fatalf("GetChangesSince() error = %v", err)
	}

	if len(resp.Changes) != 3 {
		t.Fatalf("expected 3 changes, got %d", len(resp.Changes))
	}

	ops := make(map[string]string)
	for _, change := range resp.Changes {
		ops[change.ID] = change.Operation
	}

	if ops["t2"] != "update" {
		t.Errorf("t2 operation = %q, want update", ops["t2"])
	}
	if ops["t3"] != "delete" {
		t.Errorf("tombstone t3 operation = %q, want delete", ops["t3"])
	}
	if ops["r1"] != "update" {
		t.Errorf("r1 operation = %q, want update", ops["r1"])
	}
	if _, ok := ops["t1"]; ok {
		t.Error("t1 predates since and should not appear")
	}

	if resp.SyncTime.IsZero() {
		t.Error("SyncTime not set")
	}
}
