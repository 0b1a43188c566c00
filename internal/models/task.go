package models

import "time"

// Task is a to-do item scoped to a circle, optionally assigned to a member.
type Task struct {
	ID         int64      `json:"id"`
	CircleID   int64      `json:"circleId"`
	CreatedBy  int64      `json:"createdBy"`
	AssignedTo *int64     `json:"assignedTo,omitempty"`
	Title      string     `json:"title"`
	DueDate    *time.Time `json:"dueDate,omitempty"`
	Done       bool       `json:"done"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"-"`

	AssigneeName string `json:"assigneeName,omitempty"`
}

// IsOverdue reports whether the task has a due date in the past and is not
// done yet.
func (t *Task) IsOverdue() bool {
	return !t.Done && t.DueDate != nil && time.Now().After(*t.DueDate)
}
