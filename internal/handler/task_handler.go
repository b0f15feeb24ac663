package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"campustask-sync-server/internal/domain"
	"campustask-sync-server/internal/middleware"
	"campustask-sync-server/internal/service"
	"campustask-sync-server/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type TaskHandler struct {
	service  *service.TaskService
	validate *validator.Validate
}

func NewTaskHandler(service *service.TaskService) *TaskHandler {
	return &TaskHandler{
		service:  service,
		validate: validator.New(),
	}
}

// deviceID identifies the originating device so realtime broadcasts can
// exclude it. Absent header means "default".
func deviceID(r *http.Request) string {
	if id := r.Header.Get("X-Device-ID"); id != "" {
		return id
	}
	return "default"
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	userID := middleware.GetUserID(r)

	task, err := h.service.Create(userID, deviceID(r), &req)
	if err != nil {
		response.InternalError(w, "Failed to create task")
		return
	}

	response.Created(w, task)
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	tasks, err := h.service.List(userID)
	if err != nil {
		response.InternalError(w, "Failed to list tasks")
		return
	}

	response.Success(w, tasks)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	taskID := vars["id"]
	if taskID == "" {
		response.BadRequest(w, "Task ID is required")
		return
	}

	userID := middleware.GetUserID(r)

	task, err := h.service.GetByID(userID, taskID)
	if err != nil {
		if errors.Is(err, service.ErrNotOwner) {
			response.Forbidden(w, err.Error())
			return
		}
		response.NotFound(w, "Task not found")
		return
	}

	response.Success(w, task)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	taskID := vars["id"]
	if taskID == "" {
		response.BadRequest(w, "Task ID is required")
		return
	}

	var req domain.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	userID := middleware.GetUserID(r)

	task, err := h.service.Update(userID, taskID, deviceID(r), &req)
	if err != nil {
		if errors.Is(err, service.ErrNotOwner) {
			response.Forbidden(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to update task")
		return
	}

	response.Success(w, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	taskID := vars["id"]
	if taskID == "" {
		response.BadRequest(w, "Task ID is required")
		return
	}

	userID := middleware.GetUserID(r)

	if err := h.service.Delete(userID, taskID, deviceID(r)); err != nil {
		if errors.Is(err, service.ErrNotOwner) {
			response.Forbidden(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to delete task")
		return
	}

	response.Success(w, map[string]string{"message": "Task deleted successfully"})
}
