package service

import (
	"errors"
	"testing"

	"campustask-sync-server/internal/domain"
)

type mockRoutineRepository struct {
	routines map[string]*domain.Routine
}

func newMockRoutineRepository() *mockRoutineRepository {
	return &mockRoutineRepository{routines: make(map[string]*domain.Routine)}
}

func (m *mockRoutineRepository) Create(routine *domain.Routine) error {
	m.routines[routine.ID] = routine
	return nil
}

func (m *mockRoutineRepository) FindByID(id string) (*domain.Routine, error) {
	if routine, ok := m.routines[id]; ok {
		copied := *routine
		copied.Slots = append([]domain.RoutineSlot(nil), routine.Slots...)
		return &copied, nil
	}
	return nil, errors.New("routine not found")
}

func (m *mockRoutineRepository) List(userID string) ([]*domain.Routine, error) {
	var out []*domain.Routine
	for _, routine := range m.routines {
		if routine.UserID == userID {
			copied := *routine
			copied.Slots = append([]domain.RoutineSlot(nil), routine.Slots...)
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockRoutineRepository) Update(routine *domain.Routine) error {
	if _, ok := m.routines[routine.ID]; !ok {
		return errors.New("routine not found")
	}
	m.routines[routine.ID] = routine
	return nil
}

func (m *mockRoutineRepository) Delete(id string) error {
	routine, ok := m.routines[id]
	if !ok {
		return errors.New("routine not found")
	}
	routine.IsDeleted = true
	routine.Version++
	return nil
}

func TestRoutineService_CreateAssignsSlotIDs(t *testing.T) {
	repo := newMockRoutineRepository()
	service := NewRoutineService(repo, nil)

	routine, err := service.Create("user-1", "device-1", &domain.CreateRoutineRequest{
		Title:    "Fall 2026",
		Semester: "Fall",
		Slots: []domain.CreateSlotRequest{
			{DayOfWeek: "Mon", StartTime: "09:00", EndTime: "10:30", CourseTitle: "Algebra"},
			{DayOfWeek: "Wed", StartTime: "11:00", EndTime: "12:30", CourseTitle: "Physics"},
		},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if routine.IsActive {
		t.Error("Create() new routine should start inactive")
	}
	if len(routine.Slots) != 2 {
		t.Fatalf("Create() slots = %d, want 2", len(routine.Slots))
	}
	for _, slot := range routine.Slots {
		if slot.ID == "" {
			t.Errorf("Create() slot %q has no ID", slot.CourseTitle)
		}
	}
}

func TestRoutineService_ActivateDeactivatesOthers(t *testing.T) {
	repo := newMockRoutineRepository()
	service := NewRoutineService(repo, nil)

	repo.Create(&domain.Routine{ID: "r1", UserID: "user-1", Title: "Old", IsActive: true, Version: 1})
	repo.Create(&domain.Routine{ID: "r2", UserID: "user-1", Title: "New", Version: 1})
	repo.Create(&domain.Routine{ID: "r3", UserID: "user-2", Title: "Other user", IsActive: true, Version: 1})

	routine, err := service.Activate("user-1", "r2", "device-1")
	if err != nil {
		t.Fatalf("Activate() error = %v", err)
	}

	if !routine.IsActive {
		t.Error("Activate() target not active")
	}
	if repo.routines["r1"].IsActive {
		t.Error("Activate() left another routine active for the same user")
	}
	if !repo.routines["r3"].IsActive {
		t.Error("Activate() touched another user's routine")
	}
	if repo.routines["r1"].Version != 2 {
		t.Errorf("Activate() did not bump the deactivated routine's version, got %d", repo.routines["r1"].Version)
	}
}

func TestRoutineService_SlotLifecycle(t *testing.T) {
	repo := newMockRoutineRepository()
	service := NewRoutineService(repo, nil)

	repo.Create(&domain.Routine{ID: "r1", UserID: "user-1", Title: "Fall", Version: 1})

	slot, err := service.AddSlot("user-1", "r1", "device-1", &domain.CreateSlotRequest{
		DayOfWeek:   "Thu",
		StartTime:   "14:00",
		EndTime:     "15:30",
		CourseTitle: "Chemistry",
	})
	if err != nil {
		t.Fatalf("AddSlot() error = %v", err)
	}
	if slot.ID == "" {
		t.Fatal("AddSlot() did not assign a slot ID")
	}
	if repo.routines["r1"].Version != 2 {
		t.Errorf("AddSlot() routine version = %d, want 2", repo.routines["r1"].Version)
	}

	newRoom := "C310"
	updated, err := service.UpdateSlot("user-1", "r1", slot.ID, "device-1", &domain.UpdateSlotRequest{
		RoomNumber: &newRoom,
	})
	if err != nil {
		t.Fatalf("UpdateSlot() error = %v", err)
	}
	if updated.RoomNumber != "C310" {
		t.Errorf("UpdateSlot() room = %q, want C310", updated.RoomNumber)
	}
	if updated.CourseTitle != "Chemistry" {
		t.Errorf("UpdateSlot() clobbered other fields: %+v", updated)
	}

	if err := service.DeleteSlot("user-1", "r1", slot.ID, "device-1"); err != nil {
		t.Fatalf("DeleteSlot() error = %v", err)
	}
	if len(repo.routines["r1"].Slots) != 0 {
		t.Errorf("DeleteSlot() slots remain: %+v", repo.routines["r1"].Slots)
	}

	if err := service.DeleteSlot("user-1", "r1", "missing", "device-1"); err == nil {
		t.Error("DeleteSlot() expected error for missing slot")
	}
}

func TestRoutineService_OwnershipEnforced(t *testing.T) {
	repo := newMockRoutineRepository()
	service := NewRoutineService(repo, nil)

	repo.Create(&domain.Routine{ID: "r1", UserID: "user-1", Title: "Mine"})

	if _, err := service.Activate("user-2", "r1", "device-1"); !errors.Is(err, ErrNotOwner) {
		t.Errorf("Activate() error = %v, want ErrNotOwner", err)
	}
	if err := service.Delete("user-2", "r1", "device-1"); !errors.Is(err, ErrNotOwner) {
		t.Errorf("Delete() error = %v, want ErrNotOwner", err)
	}
}
