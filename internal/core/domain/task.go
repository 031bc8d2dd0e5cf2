package domain

import "time"

// TaskStatus is the progress state of a task. Any status may follow any other.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
	TaskStatusCancelled  TaskStatus = "CANCELLED"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone, TaskStatusCancelled:
		return true
	}
	return false
}

// TaskPriority ranks a task. It is optional; the server applies no default.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "LOW"
	PriorityMedium TaskPriority = "MEDIUM"
	PriorityHigh   TaskPriority = "HIGH"
)

func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is a flat to-do record owned by exactly one user.
//
// DeletedAt is a soft-delete marker: rows with a non-nil value are invisible to
// every read and update. No operation sets it yet.
type Task struct {
	ID          string        `json:"id" bson:"_id"`
	Title       string        `json:"title" bson:"title"`
	Description *string       `json:"description" bson:"description"`
	Status      TaskStatus    `json:"status" bson:"status"`
	Priority    *TaskPriority `json:"priority" bson:"priority"`
	DueDate     *time.Time    `json:"dueDate" bson:"due_date"`
	UserID      string        `json:"userId" bson:"user_id"`
	CreatedAt   time.Time     `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time     `json:"updatedAt" bson:"updated_at"`
	DeletedAt   *time.Time    `json:"deletedAt" bson:"deleted_at"`
}

// Visible reports whether the task is readable by its owner.
func (t *Task) Visible() bool {
	return t.DeletedAt == nil
}
