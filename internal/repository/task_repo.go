package repository

import (
	"database/sql"
	"fmt"
	"time"

	"familycircle/internal/database"
	"familycircle/internal/models"
)

// TaskRepository handles database operations for tasks
type TaskRepository struct {
	db *database.DB
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *database.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// CreateTask inserts a new task
func (r *TaskRepository) CreateTask(circleID, createdBy int64, assignedTo *int64, title string, dueDate *time.Time) (*models.Task, error) {
	query := "INSERT INTO tasks (circle_id, created_by, assigned_to, title, due_date) VALUES (?, ?, ?, ?, ?)"
	id, err := r.db.ExecReturningID(query, circleID, createdBy, assignedTo, title, dueDate)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return &models.Task{
		ID:         id,
		CircleID:   circleID,
		CreatedBy:  createdBy,
		AssignedTo: assignedTo,
		Title:      title,
		DueDate:    dueDate,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}, nil
}

const taskSelect = `
	SELECT t.id, t.circle_id, t.created_by, t.assigned_to, t.title, t.due_date, t.done,
	       t.created_at, t.updated_at, COALESCE(u.display_name, '')
	FROM tasks t
	LEFT JOIN users u ON t.assigned_to = u.id
`

func scanTask(row interface{ Scan(...interface{}) error }) (*models.Task, error) {
	task := &models.Task{}
	var assignedTo sql.NullInt64
	var dueDate sql.NullTime
	err := row.Scan(
		&task.ID, &task.CircleID, &task.CreatedBy, &assignedTo, &task.Title, &dueDate, &task.Done,
		&task.CreatedAt, &task.UpdatedAt, &task.AssigneeName,
	)
	if err != nil {
		return nil, err
	}
	if assignedTo.Valid {
		task.AssignedTo = &assignedTo.Int64
	}
	if dueDate.Valid {
		task.DueDate = &dueDate.Time
	}
	return task, nil
}

// GetCircleTasks retrieves all tasks in a circle, soonest due first
func (r *TaskRepository) GetCircleTasks(circleID int64) ([]models.Task, error) {
	query := taskSelect + " WHERE t.circle_id = ? ORDER BY t.done ASC, t.due_date ASC, t.created_at DESC"
	rows, err := r.db.Query(query, circleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	return tasks, nil
}

// GetTask retrieves a task by ID. Returns nil when no task matches.
func (r *TaskRepository) GetTask(taskID int64) (*models.Task, error) {
	task, err := scanTask(r.db.QueryRow(taskSelect+" WHERE t.id = ?", taskID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

// SetTaskDone marks a task done or not done
func (r *TaskRepository) SetTaskDone(taskID int64, done bool) error {
	query := "UPDATE tasks SET done = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.db.Exec(query, done, taskID); err != nil {
		return fmt.Errorf("failed to set task done: %w", err)
	}
	return nil
}

// DeleteTask removes a task
func (r *TaskRepository) DeleteTask(taskID int64) error {
	if _, err := r.db.Exec("DELETE FROM tasks WHERE id = ?", taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// ClearUserTasks removes tasks created by a user and unassigns tasks
// assigned to them
func (r *TaskRepository) ClearUserTasks(userID int64) error {
	if _, err := r.db.Exec("DELETE FROM tasks WHERE created_by = ?", userID); err != nil {
		return fmt.Errorf("failed to delete user tasks: %w", err)
	}
	if _, err := r.db.Exec("UPDATE tasks SET assigned_to = NULL, updated_at = CURRENT_TIMESTAMP WHERE assigned_to = ?", userID); err != nil {
		return fmt.Errorf("failed to unassign user tasks: %w", err)
	}
	return nil
}
