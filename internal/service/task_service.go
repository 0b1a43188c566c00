package service

import (
	"errors"
	"time"

	"familycircle/internal/models"
	"familycircle/internal/repository"
	"familycircle/internal/validation"
)

var ErrTaskNotFound = errors.New("task not found")

// TaskService handles the circle to-do list.
type TaskService struct {
	tasks *repository.TaskRepository
}

func NewTaskService(tasks *repository.TaskRepository) *TaskService {
	return &TaskService{tasks: tasks}
}

// CreateTask adds a task to the caller's circle, optionally assigned to a
// member and optionally with a due date.
func (s *TaskService) CreateTask(user *models.User, title string, assignedTo *int64, dueDate *time.Time) (*models.Task, error) {
	if user.CircleID == nil {
		return nil, ErrNoCircle
	}
	if title == "" {
		return nil, validation.Error{Field: "title", Message: "Title is required"}
	}
	return s.tasks.CreateTask(*user.CircleID, user.ID, assignedTo, title, dueDate)
}

// GetTasks lists the caller's circle tasks, open ones first.
func (s *TaskService) GetTasks(user *models.User) ([]models.Task, error) {
	if user.CircleID == nil {
		return nil, ErrNoCircle
	}
	return s.tasks.GetCircleTasks(*user.CircleID)
}

// SetDone marks a task done or not done. Any circle member may toggle.
func (s *TaskService) SetDone(user *models.User, taskID int64, done bool) error {
	if _, err := s.requireTask(user, taskID); err != nil {
		return err
	}
	return s.tasks.SetTaskDone(taskID, done)
}

// DeleteTask removes a task. The creator or a circle admin may delete.
func (s *TaskService) DeleteTask(user *models.User, taskID int64) error {
	task, err := s.requireTask(user, taskID)
	if err != nil {
		return err
	}
	if task.CreatedBy != user.ID && user.CircleRole != models.RoleAdmin {
		return ErrNotAdmin
	}
	return s.tasks.DeleteTask(taskID)
}

func (s *TaskService) requireTask(user *models.User, taskID int64) (*models.Task, error) {
	if user.CircleID == nil {
		return nil, ErrNoCircle
	}
	task, err := s.tasks.GetTask(taskID)
	if err != nil {
		return nil, err
	}
	if task == nil || task.CircleID != *user.CircleID {
		return nil, ErrTaskNotFound
	}
	return task, nil
}
