package ports

import (
	"context"

	"github.com/nadscarim/task-management/internal/core/domain"
)

// UserRepository persists accounts.
type UserRepository interface {
	// Create inserts a user. A duplicate email yields domain.ErrUserExists.
	Create(ctx context.Context, user *domain.User) error
	// FindByEmail returns domain.ErrUserNotFound when no account matches.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindByID returns domain.ErrUserNotFound when no account matches.
	FindByID(ctx context.Context, id string) (*domain.User, error)
}
