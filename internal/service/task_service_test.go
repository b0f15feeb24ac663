package service

import (
	"errors"
	"testing"

	"campustask-sync-server/internal/domain"
)

type mockTaskRepository struct {
	tasks map[string]*domain.Task
}

func newMockTaskRepository() *mockTaskRepository {
	return &mockTaskRepository{tasks: make(map[string]*domain.Task)}
}

func (m *mockTaskRepository) Create(task *domain.Task) error {
	m.tasks[task.ID] = task
	return nil
}

func (m *mockTaskRepository) FindByID(id string) (*domain.Task, error) {
	if task, ok := m.tasks[id]; ok {
		copied := *task
		return &copied, nil
	}
	return nil, errors.New("task not found")
}

func (m *mockTaskRepository) List(userID string) ([]*domain.Task, error) {
	var out []*domain.Task
	for _, task := range m.tasks {
		if task.UserID == userID {
			copied := *task
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockTaskRepository) Update(task *domain.Task) error {
	if _, ok := m.tasks[task.ID]; !ok {
		return errors.New("task not found")
	}
	m.tasks[task.ID] = task
	return nil
}

func (m *mockTaskRepository) Delete(id string) error {
	task, ok := m.tasks[id]
	if !ok {
		return errors.New("task not found")
	}
	task.IsDeleted = true
	task.Version++
	return nil
}

func TestTaskService_Create(t *testing.T) {
	repo := newMockTaskRepository()
	service := NewTaskService(repo, nil)

	task, err := service.Create("user-1", "device-1", &domain.CreateTaskRequest{
		Title:    "Algebra homework",
		Category: "math",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if task.ID == "" {
		t.Error("Create() did not assign an ID")
	}
	if task.Version != 1 {
		t.Errorf("Create() version = %d, want 1", task.Version)
	}
	if task.UserID != "user-1" {
		t.Errorf("Create() userID = %s, want user-1", task.UserID)
	}
	if _, ok := repo.tasks[task.ID]; !ok {
		t.Error("Create() task not stored")
	}
}

func TestTaskService_ListHidesDeleted(t *testing.T) {
	repo := newMockTaskRepository()
	service := NewTaskService(repo, nil)

	repo.Create(&domain.Task{ID: "t1", UserID: "user-1", Title: "Visible"})
	repo.Create(&domain.Task{ID: "t2", UserID: "user-1", Title: "Tombstone", IsDeleted: true})
	repo.Create(&domain.Task{ID: "t3", UserID: "user-2", Title: "Someone else's"})

	tasks, err := service.List("user-1")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != "t1" {
		t.Errorf("List() = %+v, want only t1", tasks)
	}
}

func TestTaskService_UpdateBumpsVersion(t *testing.T) {
	repo := newMockTaskRepository()
	service := NewTaskService(repo, nil)

	repo.Create(&domain.Task{ID: "t1", UserID: "user-1", Title: "Old title", Version: 3})

	newTitle := "New title"
	done := true
	task, err := service.Update("user-1", "t1", "device-1", &domain.UpdateTaskRequest{
		Title:     &newTitle,
		Completed: &done,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if task.Title != "New title" || !task.Completed {
		t.Errorf("Update() did not apply fields: %+v", task)
	}
	if task.Version != 4 {
		t.Errorf("Update() version = %d, want 4", task.Version)
	}
}

func TestTaskService_OwnershipEnforced(t *testing.T) {
	repo := newMockTaskRepository()
	service := NewTaskService(repo, nil)

	repo.Create(&domain.Task{ID: "t1", UserID: "user-1", Title: "Mine"})

	if _, err := service.GetByID("user-2", "t1"); !errors.Is(err, ErrNotOwner) {
		t.Errorf("GetByID() error = %v, want ErrNotOwner", err)
	}
	if _, err := service.Update("user-2", "t1", "device-1", &domain.UpdateTaskRequest{}); !errors.Is(err, ErrNotOwner) {
		t.Errorf("Update() error = %v, want ErrNotOwner", err)
	}
	if err := service.Delete("user-2", "t1", "device-1"); !errors.Is(err, ErrNotOwner) {
		t.Errorf("Delete() error = %v, want ErrNotOwner", err)
	}
}

func TestTaskService_DeleteLeavesTombstone(t *testing.T) {
	repo := newMockTaskRepository()
	service := NewTaskService(repo, nil)

	repo.Create(&domain.Task{ID: "t1", UserID: "user-1", Title: "Doomed", Version: 1})

	if err := service.Delete("user-1", "t1", "device-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	stored := repo.tasks["t1"]
	if stored == nil {
		t.Fatal("Delete() removed the document instead of tombstoning it")
	}
	if !stored.IsDeleted {
		t.Error("Delete() did not mark the task deleted")
	}
	if stored.Version != 2 {
		t.Errorf("Delete() version = %d, want 2", stored.Version)
	}
}
