package ports

import (
	"context"
	"time"

	"github.com/nadscarim/task-management/internal/core/domain"
)

// TaskFields carries the client-writable part of a task. Nil pointers mean
// "absent"; on update they clear the stored value.
type TaskFields struct {
	Title       string
	Description *string
	Status      domain.TaskStatus
	Priority    *domain.TaskPriority
	DueDate     *time.Time
}

// CreateTaskInput carries everything needed to create a task.
type CreateTaskInput struct {
	OwnerID string
	TaskFields
	// IdempotencyKey, when set, makes retries of the same create return the
	// task produced by the first attempt. The guarantee is best effort: the
	// key is recorded after the insert, so creates racing with the same key
	// may each insert a task. The first one recorded is what later retries
	// get back.
	IdempotencyKey string
}

// UpdateTaskInput replaces every field of TaskFields on the task (full
// replace, not a patch).
type UpdateTaskInput struct {
	ID      string
	OwnerID string
	TaskFields
}

// TaskResult is returned by Create.
type TaskResult struct {
	Task *domain.Task
	// AlreadyExisted is true when the Idempotency-Key matched an earlier create.
	AlreadyExisted bool
}

// TaskService defines the owner-scoped task use cases.
type TaskService interface {
	List(ctx context.Context, ownerID string) ([]*domain.Task, error)
	Get(ctx context.Context, id, ownerID string) (*domain.Task, error)
	Create(ctx context.Context, in CreateTaskInput) (*TaskResult, error)
	Update(ctx context.Context, in UpdateTaskInput) (*domain.Task, error)
}
