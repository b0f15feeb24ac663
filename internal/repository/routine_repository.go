package repository

import (
	"context"
	"fmt"
	"time"

	"campustask-sync-server/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

type RoutineRepository interface {
	Create(routine *domain.Routine) error
	FindByID(id string) (*domain.Routine, error)
	List(userID string) ([]*domain.Routine, error)
	Update(routine *domain.Routine) error
	Delete(id string) error
}

type routineRepository struct {
	client *kivik.Client
	dbName string
}

func NewRoutineRepository(client *kivik.Client, dbName string) RoutineRepository {
	return &routineRepository{
		client: client,
		dbName: dbName,
	}
}

func (r *routineRepository) Create(routine *domain.Routine) error {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("routine:%s", routine.ID)
	_, err := db.Put(context.Background(), docID, routine)
	if err != nil {
		return fmt.Errorf("failed to create routine: %w", err)
	}

	return nil
}

func (r *routineRepository) FindByID(id string) (*domain.Routine, error) {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("routine:%s", id)
	row := db.Get(context.Background(), docID)

	var routine domain.Routine
	if err := row.ScanDoc(&routine); err != nil {
		return nil, fmt.Errorf("failed to find routine: %w", err)
	}

	return &routine, nil
}

func (r *routineRepository) List(userID string) ([]*domain.Routine, error) {
	db := r.client.DB(r.dbName)

	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"user_id": userID,
			"slots":   map[string]interface{}{"$exists": true},
		},
	}

	rows := db.Find(context.Background(), query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list routines: %w", err)
	}
	defer rows.Close()

	var routines []*domain.Routine
	for rows.Next() {
		var routine domain.Routine
		if err := rows.ScanDoc(&routine); err != nil {
			continue
		}
		routines = append(routines, &routine)
	}

	return routines, nil
}

// Update replaces the mutable portion of the routine document, slots
// included. Slot-level operations go through here as whole-routine writes.
func (r *routineRepository) Update(routine *domain.Routine) error {
	db := r.client.DB(r.dbName)
	docID := fmt.Sprintf("routine:%s", routine.ID)

	var existingDoc map[string]interface{}
	row := db.Get(context.Background(), docID)
	if err := row.ScanDoc(&existingDoc); err != nil {
		return fmt.Errorf("failed to fetch existing routine for update: %w", err)
	}

	existingDoc["title"] = routine.Title
	existingDoc["semester"] = routine.Semester
	existingDoc["is_active"] = routine.IsActive
	existingDoc["slots"] = routine.Slots
	existingDoc["updated_at"] = time.Now()
	existingDoc["version"] = routine.Version // Service should increment this
	existingDoc["is_deleted"] = routine.IsDeleted

	_, err := db.Put(context.Background(), docID, existingDoc)
	if err != nil {
		return fmt.Errorf("failed to update routine: %w", err)
	}

	return nil
}

func (r *routineRepository) Delete(id string) error {
	db := r.client.DB(r.dbName)
	docID := fmt.Sprintf("routine:%s", id)

	var existingDoc map[string]interface{}
	row := db.Get(context.Background(), docID)
	if err := row.ScanDoc(&existingDoc); err != nil {
		return err
	}

	existingDoc["is_deleted"] = true
	existingDoc["updated_at"] = time.Now()

	if v, ok := existingDoc["version"].(float64); ok {
		existingDoc["version"] = int64(v) + 1
	}

	_, err := db.Put(context.Background(), docID, existingDoc)
	if err != nil {
		return fmt.Errorf("failed to delete routine: %w", err)
	}

	return nil
}
