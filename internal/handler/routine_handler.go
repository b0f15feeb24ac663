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

type RoutineHandler struct {
	service  *service.RoutineService
	validate *validator.Validate
}

func NewRoutineHandler(service *service.RoutineService) *RoutineHandler {
	return &RoutineHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *RoutineHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateRoutineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	userID := middleware.GetUserID(r)

	routine, err := h.service.Create(userID, deviceID(r), &req)
	if err != nil {
		response.InternalError(w, "Failed to create routine")
		return
	}

	response.Created(w, routine)
}

func (h *RoutineHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	routines, err := h.service.List(userID)
	if err != nil {
		response.InternalError(w, "Failed to list routines")
		return
	}

	response.Success(w, routines)
}

func (h *RoutineHandler) Get(w http.ResponseWriter, r *http.Request) {
	routineID := mux.Vars(r)["id"]
	if routineID == "" {
		response.BadRequest(w, "Routine ID is required")
		return
	}

	userID := middleware.GetUserID(r)

	routine, err := h.service.GetByID(userID, routineID)
	if err != nil {
		if errors.Is(err, service.ErrNotOwner) {
			response.Forbidden(w, err.Error())
			return
		}
		response.NotFound(w, "Routine not found")
		return
	}

	response.Success(w, routine)
}

func (h *RoutineHandler) Update(w http.ResponseWriter, r *http.Request) {
	routineID := mux.Vars(r)["id"]
	if routineID == "" {
		response.BadRequest(w, "Routine ID is required")
		return
	}

	var req domain.UpdateRoutineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	userID := middleware.GetUserID(r)

	routine, err := h.service.Update(userID, routineID, deviceID(r), &req)
	if err != nil {
		if errors.Is(err, service.ErrNotOwner) {
			response.Forbidden(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to update routine")
		return
	}

	response.Success(w, routine)
}

func (h *RoutineHandler) Delete(w http.ResponseWriter, r *http.Request) {
	routineID := mux.Vars(r)["id"]
	if routineID == "" {
		response.BadRequest(w, "Routine ID is required")
		return
	}

	userID := middleware.GetUserID(r)

	if err := h.service.Delete(userID, routineID, deviceID(r)); err != nil {
		if errors.Is(err, service.ErrNotOwner) {
			response.Forbidden(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to delete routine")
		return
	}

	response.Success(w, map[string]string{"message": "Routine deleted successfully"})
}

func (h *RoutineHandler) Activate(w http.ResponseWriter, r *http.Request) {
	routineID := mux.Vars(r)["id"]
	userID := middleware.GetUserID(r)

	routine, err := h.service.Activate(userID, routineID, deviceID(r))
	if err != nil {
		if errors.Is(err, service.ErrNotOwner) {
			response.Forbidden(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to activate routine")
		return
	}

	response.Success(w, routine)
}

func (h *RoutineHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	routineID := mux.Vars(r)["id"]
	userID := middleware.GetUserID(r)

	routine, err := h.service.Deactivate(userID, routineID, deviceID(r))
	if err != nil {
		if errors.Is(err, service.ErrNotOwner) {
			response.Forbidden(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to deactivate routine")
		return
	}

	response.Success(w, routine)
}

func (h *RoutineHandler) AddSlot(w http.ResponseWriter, r *http.Request) {
	routineID := mux.Vars(r)["id"]

	var req domain.CreateSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	userID := middleware.GetUserID(r)

	slot, err := h.service.AddSlot(userID, routineID, deviceID(r), &req)
	if err != nil {
		if errors.Is(err, service.ErrNotOwner) {
			response.Forbidden(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to add slot")
		return
	}

	response.Created(w, slot)
}

func (h *RoutineHandler) UpdateSlot(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	routineID := vars["id"]
	slotID := vars["slotID"]

	var req domain.UpdateSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	userID := middleware.GetUserID(r)

	slot, err := h.service.UpdateSlot(userID, routineID, slotID, deviceID(r), &req)
	if err != nil {
		if errors.Is(err, service.ErrNotOwner) {
			response.Forbidden(w, err.Error())
			return
		}
		if err.Error() == "slot not found" {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to update slot")
		return
	}

	response.Success(w, slot)
}

func (h *RoutineHandler) DeleteSlot(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	routineID := vars["id"]
	slotID := vars["slotID"]

	userID := middleware.GetUserID(r)

	if err := h.service.DeleteSlot(userID, routineID, slotID, deviceID(r)); err != nil {
		if errors.Is(err, service.ErrNotOwner) {
			response.Forbidden(w, err.Error())
			return
		}
		if err.Error() == "slot not found" {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to delete slot")
		return
	}

	response.Success(w, map[string]string{"message": "Slot deleted successfully"})
}
