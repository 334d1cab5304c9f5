package handler

import (
	"net/http"
	"strings"

	"github.com/msomdec/taskboard/internal/domain"
)

// TaskHandler serves the /tasks routes of the mock API. The bearer token is
// passed through to the backend untouched; the backend decides whose tasks
// it refers to.
type TaskHandler struct {
	backend domain.Backend
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(backend domain.Backend) *TaskHandler {
	return &TaskHandler{backend: backend}
}

// HandleList returns the caller's tasks.
// GET /tasks
func (h *TaskHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.backend.ListTasks(r.Context(), bearerToken(r))
	if err != nil {
		writeBackendError(w, r, "list tasks", err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// HandleCreate stores a new task for the caller.
// POST /tasks
func (h *TaskHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidInput, "Invalid request body.")
		return
	}

	task, err := h.backend.CreateTask(r.Context(), bearerToken(r), req.toInput())
	if err != nil {
		writeBackendError(w, r, "create task", err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// HandleUpdate merges a partial body into a task.
// PATCH /tasks/{id}
func (h *TaskHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch domain.TaskPatch
	if err := readJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidInput, "Invalid request body.")
		return
	}

	task, err := h.backend.UpdateTask(r.Context(), bearerToken(r), r.PathValue("id"), patch)
	if err != nil {
		writeBackendError(w, r, "update task", err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// HandleDelete removes a task. Unknown ids still get a 204.
// DELETE /tasks/{id}
func (h *TaskHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.backend.DeleteTask(r.Context(), bearerToken(r), r.PathValue("id")); err != nil {
		writeBackendError(w, r, "delete task", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// bearerToken returns the second half of an "Authorization: Bearer <token>"
// header, or "" unless the header splits into exactly two parts.
func bearerToken(r *http.Request) string {
	parts := strings.Split(r.Header.Get("Authorization"), " ")
	if len(parts) != 2 {
		return ""
	}
	return parts[1]
}
