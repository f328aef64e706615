package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/collabboard/board-api/internal/middleware"
	"github.com/collabboard/board-api/internal/model"
	"github.com/collabboard/board-api/internal/repo"
	"github.com/collabboard/board-api/internal/service"
	"github.com/collabboard/board-api/pkg/respond"
)

type TaskHandler struct {
	service *service.TaskService
	logger  *zap.Logger
}

func NewTaskHandler(srv *service.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		service: srv,
		logger:  logger,
	}
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength == 0 {
		respond.Error(w, r, http.StatusBadRequest, "empty request body")
		return
	}

	var req model.Task
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode json", zap.Error(err))
		respond.Error(w, r, http.StatusBadRequest, fmt.Sprintf("invalid json: %v", err))
		return
	}

	task, err := h.service.Create(r.Context(), middleware.UserID(r.Context()), req)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/tasks/%s", task.ID))
	respond.JSON(w, r, http.StatusCreated, task)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	task, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	var filter model.TaskFilter
	if title := r.URL.Query().Get("title"); title != "" {
		filter.Title = &title
	}

	tasks, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, tasks)
}

// updateRequest is a TaskPatch plus the expected version; fields absent from
// the body stay nil and are left unchanged.
type updateRequest struct {
	model.TaskPatch
	Version *int `json:"version"`
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	task, err := h.service.Update(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id"), req.TaskPatch, req.Version)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.Delete(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.handleErrors(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, map[string]string{"message": "Task deleted."})
}

func (h *TaskHandler) SmartAssign(w http.ResponseWriter, r *http.Request) {
	task, err := h.service.SmartAssign(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) handleErrors(w http.ResponseWriter, r *http.Request, err error) {
	var conflict *repo.ConflictError
	switch {
	case errors.As(err, &conflict):
		respond.JSON(w, r, http.StatusConflict, map[string]interface{}{
			"message":    "Task version conflict.",
			"serverTask": conflict.Server,
		})
	case errors.Is(err, repo.ErrNotFound):
		respond.Error(w, r, http.StatusNotFound, "Task not found.")
	case errors.Is(err, service.ErrInvalidTitle):
		respond.Error(w, r, http.StatusBadRequest, "Invalid or forbidden task title.")
	case errors.Is(err, service.ErrDuplicateTitle):
		respond.Error(w, r, http.StatusBadRequest, "Task title must be unique.")
	case errors.Is(err, service.ErrInvalidField):
		respond.Error(w, r, http.StatusBadRequest, "Invalid field value.")
	case errors.Is(err, service.ErrNoEligibleUsers):
		respond.Error(w, r, http.StatusBadRequest, "No users available for assignment.")
	default:
		h.logger.Error("internal error", zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "Server error")
	}
}
