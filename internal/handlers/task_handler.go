package handlers

import (
	"net/http"
	"time"

	"familycircle/internal/service"
)

// TaskHandler serves the circle to-do list.
type TaskHandler struct {
	tasks *service.TaskService
}

func NewTaskHandler(tasks *service.TaskService) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// CreateTask adds a task to the caller's circle.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var body struct {
		Title      string     `json:"title"`
		AssignedTo *int64     `json:"assignedTo"`
		DueDate    *time.Time `json:"dueDate"`
	}
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	task, err := h.tasks.CreateTask(user, body.Title, body.AssignedTo, body.DueDate)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, task)
}

// GetTasks lists the circle's tasks, open ones first.
func (h *TaskHandler) GetTasks(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	tasks, err := h.tasks.GetTasks(user)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tasks)
}

// SetTaskDone toggles a task's done flag.
func (h *TaskHandler) SetTaskDone(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	taskID, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid task id")
		return
	}

	var body struct {
		Done bool `json:"done"`
	}
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.tasks.SetDone(user, taskID, body.Done); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "task updated"})
}

// DeleteTask removes a task.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	taskID, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "Invalid task id")
		return
	}

	if err := h.tasks.DeleteTask(user, taskID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "task deleted"})
}
