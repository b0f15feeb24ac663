package service

import (
	"errors"
	"time"

	"campustask-sync-server/internal/domain"
	"campustask-sync-server/internal/repository"

	"github.com/google/uuid"
)

type RoutineService struct {
	repo        repository.RoutineRepository
	syncService *SyncService
}

func NewRoutineService(repo repository.RoutineRepository, syncService *SyncService) *RoutineService {
	return &RoutineService{
		repo:        repo,
		syncService: syncService,
	}
}

func (s *RoutineService) Create(userID, deviceID string, req *domain.CreateRoutineRequest) (*domain.Routine, error) {
	now := time.Now()

	slots := make([]domain.RoutineSlot, 0, len(req.Slots))
	for _, sr := range req.Slots {
		slots = append(slots, domain.RoutineSlot{
			ID:          uuid.New().String(),
			DayOfWeek:   sr.DayOfWeek,
			StartTime:   sr.StartTime,
			EndTime:     sr.EndTime,
			CourseTitle: sr.CourseTitle,
			TeacherName: sr.TeacherName,
			RoomNumber:  sr.RoomNumber,
		})
	}

	routine := &domain.Routine{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     req.Title,
		Semester:  req.Semester,
		IsActive:  false,
		Slots:     slots,
		CreatedAt: now,
		UpdatedAt: now,
		IsDeleted: false,
		Version:   1,
	}

	if err := s.repo.Create(routine); err != nil {
		return nil, err
	}

	if s.syncService != nil {
		s.syncService.BroadcastRoutineUpdate(userID, deviceID, routine)
	}

	return routine, nil
}

func (s *RoutineService) List(userID string) ([]*domain.Routine, error) {
	routines, err := s.repo.List(userID)
	if err != nil {
		return nil, err
	}

	visible := make([]*domain.Routine, 0, len(routines))
	for _, r := range routines {
		if !r.IsDeleted {
			visible = append(visible, r)
		}
	}

	return visible, nil
}

func (s *RoutineService) GetByID(userID, routineID string) (*domain.Routine, error) {
	routine, err := s.repo.FindByID(routineID)
	if err != nil {
		return nil, err
	}

	if routine.UserID != userID {
		return nil, ErrNotOwner
	}

	return routine, nil
}

func (s *RoutineService) Update(userID, routineID, deviceID string, req *domain.UpdateRoutineRequest) (*domain.Routine, error) {
	routine, err := s.getOwned(userID, routineID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		routine.Title = *req.Title
	}
	if req.Semester != nil {
		routine.Semester = *req.Semester
	}

	return s.saveAndBroadcast(userID, deviceID, routine)
}

func (s *RoutineService) Delete(userID, routineID, deviceID string) error {
	routine, err := s.getOwned(userID, routineID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(routineID); err != nil {
		return err
	}

	if s.syncService != nil {
		s.syncService.BroadcastRoutineDelete(userID, deviceID, routineID, routine.Version+1)
	}

	return nil
}

// Activate marks the routine active and deactivates every other routine
// owned by the user. At most one routine is active per user.
func (s *RoutineService) Activate(userID, routineID, deviceID string) (*domain.Routine, error) {
	routine, err := s.getOwned(userID, routineID)
	if err != nil {
		return nil, err
	}

	others, err := s.repo.List(userID)
	if err != nil {
		return nil, err
	}

	for _, other := range others {
		if other.ID == routineID || !other.IsActive || other.IsDeleted {
			continue
		}
		other.IsActive = false
		other.UpdatedAt = time.Now()
		other.Version++
		if err := s.repo.Update(other); err != nil {
			return nil, err
		}
		if s.syncService != nil {
			s.syncService.BroadcastRoutineUpdate(userID, deviceID, other)
		}
	}

	routine.IsActive = true
	return s.saveAndBroadcast(userID, deviceID, routine)
}

func (s *RoutineService) Deactivate(userID, routineID, deviceID string) (*domain.Routine, error) {
	routine, err := s.getOwned(userID, routineID)
	if err != nil {
		return nil, err
	}

	routine.IsActive = false
	return s.saveAndBroadcast(userID, deviceID, routine)
}

// AddSlot appends a slot to the routine and returns the stored slot with
// its assigned identifier.
func (s *RoutineService) AddSlot(userID, routineID, deviceID string, req *domain.CreateSlotRequest) (*domain.RoutineSlot, error) {
	routine, err := s.getOwned(userID, routineID)
	if err != nil {
		return nil, err
	}

	slot := domain.RoutineSlot{
		ID:          uuid.New().String(),
		DayOfWeek:   req.DayOfWeek,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		CourseTitle: req.CourseTitle,
		TeacherName: req.TeacherName,
		RoomNumber:  req.RoomNumber,
	}
	routine.Slots = append(routine.Slots, slot)

	if _, err := s.saveAndBroadcast(userID, deviceID, routine); err != nil {
		return nil, err
	}
	return &slot, nil
}

func (s *RoutineService) UpdateSlot(userID, routineID, slotID, deviceID string, req *domain.UpdateSlotRequest) (*domain.RoutineSlot, error) {
	routine, err := s.getOwned(userID, routineID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range routine.Slots {
		if routine.Slots[i].ID == slotID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, errors.New("slot not found")
	}

	slot := &routine.Slots[idx]
	if req.DayOfWeek != nil {
		slot.DayOfWeek = *req.DayOfWeek
	}
	if req.StartTime != nil {
		slot.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		slot.EndTime = *req.EndTime
	}
	if req.CourseTitle != nil {
		slot.CourseTitle = *req.CourseTitle
	}
	if req.TeacherName != nil {
		slot.TeacherName = *req.TeacherName
	}
	if req.RoomNumber != nil {
		slot.RoomNumber = *req.RoomNumber
	}

	if _, err := s.saveAndBroadcast(userID, deviceID, routine); err != nil {
		return nil, err
	}
	updated := *slot
	return &updated, nil
}

func (s *RoutineService) DeleteSlot(userID, routineID, slotID, deviceID string) error {
	routine, err := s.getOwned(userID, routineID)
	if err != nil {
		return err
	}

	kept := routine.Slots[:0]
	found := false
	for _, slot := range routine.Slots {
		if slot.ID == slotID {
			found = true
			continue
		}
		kept = append(kept, slot)
	}
	if !found {
		return errors.New("slot not found")
	}
	routine.Slots = kept

	_, err = s.saveAndBroadcast(userID, deviceID, routine)
	return err
}

func (s *RoutineService) getOwned(userID, routineID string) (*domain.Routine, error) {
	routine, err := s.repo.FindByID(routineID)
	if err != nil {
		return nil, err
	}

	if routine.UserID != userID {
		return nil, ErrNotOwner
	}

	return routine, nil
}

func (s *RoutineService) saveAndBroadcast(userID, deviceID string, routine *domain.Routine) (*domain.Routine, error) {
	routine.UpdatedAt = time.Now()
	routine.Version++

	if err := s.repo.Update(routine); err != nil {
		return nil, err
	}

	if s.syncService != nil {
		s.syncService.BroadcastRoutineUpdate(userID, deviceID, routine)
	}

	return routine, nil
}
