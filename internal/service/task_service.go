package service

import (
	"time"

	"campustask-sync-server/internal/domain"
	"campustask-sync-server/internal/repository"

	"github.com/google/uuid"
)

type TaskService struct {
	repo        repository.TaskRepository
	syncService *SyncService
}

func NewTaskService(repo repository.TaskRepository, syncService *SyncService) *TaskService {
	return &TaskService{
		repo:        repo,
		syncService: syncService,
	}
}

func (s *TaskService) Create(userID, deviceID string, req *domain.CreateTaskRequest) (*domain.Task, error) {
	now := time.Now()

	task := &domain.Task{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		DueDate:     req.DueDate,
		Completed:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
		IsDeleted:   false,
		Version:     1,
	}

	if err := s.repo.Create(task); err != nil {
		return nil, err
	}

	if s.syncService != nil {
		s.syncService.BroadcastTaskUpdate(userID, deviceID, task)
	}

	return task, nil
}

func (s *TaskService) List(userID string) ([]*domain.Task, error) {
	tasks, err := s.repo.List(userID)
	if err != nil {
		return nil, err
	}

	visible := make([]*domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if !t.IsDeleted {
			visible = append(visible, t)
		}
	}

	return visible, nil
}

func (s *TaskService) GetByID(userID, taskID string) (*domain.Task, error) {
	task, err := s.repo.FindByID(taskID)
	if err != nil {
		return nil, err
	}

	if task.UserID != userID {
		return nil, ErrNotOwner
	}

	return task, nil
}

func (s *TaskService) Update(userID, taskID, deviceID string, req *domain.UpdateTaskRequest) (*domain.Task, error) {
	task, err := s.repo.FindByID(taskID)
	if err != nil {
		return nil, err
	}

	if task.UserID != userID {
		return nil, ErrNotOwner
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Category != nil {
		task.Category = *req.Category
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.Completed != nil {
		task.Completed = *req.Completed
	}

	task.UpdatedAt = time.Now()
	task.Version++

	if err := s.repo.Update(task); err != nil {
		return nil, err
	}

	if s.syncService != nil {
		s.syncService.BroadcastTaskUpdate(userID, deviceID, task)
	}

	return task, nil
}

func (s *TaskService) Delete(userID, taskID, deviceID string) error {
	task, err := s.repo.FindByID(taskID)
	if err != nil {
		return err
	}

	if task.UserID != userID {
		return ErrNotOwner
	}

	if err := s.repo.Delete(taskID); err != nil {
		return err
	}

	if s.syncService != nil {
		s.syncService.BroadcastTaskDelete(userID, deviceID, taskID, task.Version+1)
	}

	return nil
}
