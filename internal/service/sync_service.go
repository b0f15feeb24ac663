package service

import (
	"log"
	"time"

	"campustask-sync-server/internal/domain"
	"campustask-sync-server/internal/repository"
	"campustask-sync-server/internal/websocket"
)

type SyncService struct {
	taskRepo      repository.TaskRepository
	routineRepo   repository.RoutineRepository
	syncStateRepo repository.SyncStateRepository
	wsManager     *websocket.Manager
}

func NewSyncService(
	taskRepo repository.TaskRepository,
	routineRepo repository.RoutineRepository,
	syncStateRepo repository.SyncStateRepository,
	wsManager *websocket.Manager,
) *SyncService {
	return &SyncService{
		taskRepo:      taskRepo,
		routineRepo:   routineRepo,
		syncStateRepo: syncStateRepo,
		wsManager:     wsManager,
	}
}

// GetChangesSince returns every task and routine touched after the given
// time, tombstones included, so a device can catch up in one round trip.
func (s *SyncService) GetChangesSince(userID, deviceID string, since time.Time) (*domain.ChangesResponse, error) {
	tasks, err := s.taskRepo.List(userID)
	if err != nil {
		return nil, err
	}

	routines, err := s.routineRepo.List(userID)
	if err != nil {
		return nil, err
	}

	var changes []*domain.Change

	for _, task := range tasks {
		if !task.UpdatedAt.After(since) {
			continue
		}

		operation := "update"
		if task.IsDeleted {
			operation = "delete"
		}

		changes = append(changes, &domain.Change{
			Kind:      domain.ChangeKindTask,
			ID:        task.ID,
			Operation: operation,
			Version:   task.Version,
			Task:      task,
		})
	}

	for _, routine := range routines {
		if !routine.UpdatedAt.After(since) {
			continue
		}

		operation := "update"
		if routine.IsDeleted {
			operation = "delete"
		}

		changes = append(changes, &domain.Change{
			Kind:      domain.ChangeKindRoutine,
			ID:        routine.ID,
			Operation: operation,
			Version:   routine.Version,
			Routine:   routine,
		})
	}

	syncTime := time.Now()
	if deviceID != "" && s.syncStateRepo != nil {
		// Device bookkeeping is best-effort; the change feed itself is
		// driven by the caller's since parameter.
		if err := s.syncStateRepo.UpdateLastSync(userID, deviceID, syncTime); err != nil {
			log.Printf("failed to update sync state for device %s: %v", deviceID, err)
		}
	}

	return &domain.ChangesResponse{
		Changes:  changes,
		SyncTime: syncTime,
	}, nil
}

func (s *SyncService) BroadcastTaskUpdate(userID, deviceID string, task *domain.Task) error {
	msg, err := websocket.NewMessage(websocket.TypeTaskUpdate, &websocket.TaskUpdatePayload{
		TaskID:    task.ID,
		Version:   task.Version,
		Title:     task.Title,
		Completed: task.Completed,
		UpdatedAt: task.UpdatedAt,
		DeviceID:  deviceID,
	})
	if err != nil {
		return err
	}

	return s.wsManager.BroadcastToUser(userID, msg, deviceID)
}

func (s *SyncService) BroadcastTaskDelete(userID, deviceID, taskID string, version int64) error {
	msg, err := websocket.NewMessage(websocket.TypeTaskDelete, &websocket.TaskDeletePayload{
		TaskID:   taskID,
		Version:  version,
		DeviceID: deviceID,
	})
	if err != nil {
		return err
	}

	return s.wsManager.BroadcastToUser(userID, msg, deviceID)
}

func (s *SyncService) BroadcastRoutineUpdate(userID, deviceID string, routine *domain.Routine) error {
	msg, err := websocket.NewMessage(websocket.TypeRoutineUpdate, &websocket.RoutineUpdatePayload{
		RoutineID: routine.ID,
		Version:   routine.Version,
		Title:     routine.Title,
		IsActive:  routine.IsActive,
		SlotCount: len(routine.Slots),
		UpdatedAt: routine.UpdatedAt,
		DeviceID:  deviceID,
	})
	if err != nil {
		return err
	}

	return s.wsManager.BroadcastToUser(userID, msg, deviceID)
}

func (s *SyncService) BroadcastRoutineDelete(userID, deviceID, routineID string, version int64) error {
	msg, err := websocket.NewMessage(websocket.TypeRoutineDelete, &websocket.RoutineDeletePayload{
		RoutineID: routineID,
		Version:   version,
		DeviceID:  deviceID,
	})
	if err != nil {
		return err
	}

	return s.wsManager.BroadcastToUser(userID, msg, deviceID)
}
