package ports

import (
	"context"

	"github.com/nadscarim/task-management/internal/core/domain"
)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

// AuthService drives the session lifecycle.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, *domain.TokenPair, error)
	Login(ctx context.Context, in LoginInput) (*domain.User, *domain.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (domain.IssuedToken, error)
	Logout(ctx context.Context, refreshToken string) error
	Me(ctx context.Context, accessToken string) (*domain.User, error)
}

// TokenVerifier validates access tokens without touching storage.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*domain.Identity, error)
}
