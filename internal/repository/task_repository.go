package repository

import (
	"context"
	"fmt"
	"time"

	"campustask-sync-server/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

type TaskRepository interface {
	Create(task *domain.Task) error
	FindByID(id string) (*domain.Task, error)
	List(userID string) ([]*domain.Task, error)
	Update(task *domain.Task) error
	Delete(id string) error
}

type taskRepository struct {
	client *kivik.Client
	dbName string
}

func NewTaskRepository(client *kivik.Client, dbName string) TaskRepository {
	return &taskRepository{
		client: client,
		dbName: dbName,
	}
}

func (r *taskRepository) Create(task *domain.Task) error {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("task:%s", task.ID)
	_, err := db.Put(context.Background(), docID, task)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

func (r *taskRepository) FindByID(id string) (*domain.Task, error) {
	db := r.client.DB(r.dbName)

	docID := fmt.Sprintf("task:%s", id)
	row := db.Get(context.Background(), docID)

	var task domain.Task
	if err := row.ScanDoc(&task); err != nil {
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return &task, nil
}

func (r *taskRepository) List(userID string) ([]*domain.Task, error) {
	db := r.client.DB(r.dbName)

	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"user_id": userID,
			"title":   map[string]interface{}{"$exists": true},
		},
	}

	rows := db.Find(context.Background(), query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		var task domain.Task
		if err := rows.ScanDoc(&task); err != nil {
			continue
		}
		tasks = append(tasks, &task)
	}

	return tasks, nil
}

func (r *taskRepository) Update(task *domain.Task) error {
	db := r.client.DB(r.dbName)
	docID := fmt.Sprintf("task:%s", task.ID)

	var existingDoc map[string]interface{}
	row := db.Get(context.Background(), docID)
	if err := row.ScanDoc(&existingDoc); err != nil {
		return fmt.Errorf("failed to fetch existing task for update: %w", err)
	}

	existingDoc["title"] = task.Title
	existingDoc["description"] = task.Description
	existingDoc["category"] = task.Category
	existingDoc["completed"] = task.Completed
	existingDoc["updated_at"] = time.Now()
	existingDoc["version"] = task.Version // Service should increment this
	existingDoc["is_deleted"] = task.IsDeleted

	if task.DueDate != nil {
		existingDoc["due_date"] = *task.DueDate
	} else {
		existingDoc["due_date"] = nil
	}

	_, err := db.Put(context.Background(), docID, existingDoc)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	return nil
}

func (r *taskRepository) Delete(id string) error {
	db := r.client.DB(r.dbName)
	docID := fmt.Sprintf("task:%s", id)

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
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}
