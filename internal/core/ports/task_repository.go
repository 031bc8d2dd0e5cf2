package ports

import (
	"context"

	"github.com/nadscarim/task-management/internal/core/domain"
)

// TaskRepository persists tasks. Every method is scoped to ownerID and ignores
// soft-deleted rows.
type TaskRepository interface {
	// List returns the owner's tasks, newest first.
	List(ctx context.Context, ownerID string) ([]*domain.Task, error)
	// FindByID returns domain.ErrTaskNotFound when no visible task matches.
	FindByID(ctx context.Context, id, ownerID string) (*domain.Task, error)
	Create(ctx context.Context, task *domain.Task) error
	// Update overwrites the mutable fields of the visible task (task.ID,
	// task.UserID) and returns the stored row, or domain.ErrTaskNotFound.
	Update(ctx context.Context, task *domain.Task) (*domain.Task, error)
}
