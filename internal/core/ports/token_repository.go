package ports

import (
	"context"
	"time"

	"github.com/nadscarim/task-management/internal/core/domain"
)

// RefreshTokenRepository persists session grants. Revocation is deletion.
type RefreshTokenRepository interface {
	Store(ctx context.Context, token *domain.RefreshToken) error

	// FindActive looks up the grant matching token and userID whose expiry is
	// at or after now, together with its owner. Any miss, including a deleted
	// owner, yields domain.ErrRefreshTokenInvalid.
	FindActive(ctx context.Context, token, userID string, now time.Time) (*domain.RefreshToken, *domain.User, error)

	// DeleteByToken removes every grant carrying token and reports how many.
	DeleteByToken(ctx context.Context, token string) (int64, error)

	// DeleteExpired removes grants whose expiry is before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)

	// TrimUser keeps only the newest keep grants of userID.
	TrimUser(ctx context.Context, userID string, keep int) (int64, error)
}
