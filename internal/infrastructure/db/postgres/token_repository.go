package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/nadscarim/task-management/internal/core/domain"
)

type RefreshTokenRepository struct {
	db DBTX
}

func NewRefreshTokenRepository(db DBTX) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

func (r *RefreshTokenRepository) Store(ctx context.Context, t *domain.RefreshToken) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.db.Exec(ctx, `
		INSERT INTO refresh_tokens (id, token, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		t.ID, t.Token, t.UserID, t.ExpiresAt, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert refresh token: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepository) FindActive(ctx context.Context, token, userID string, now time.Time) (*domain.RefreshToken, *domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var (
		rt   domain.RefreshToken
		u    domain.User
		role string
	)
	err := r.db.QueryRow(ctx, `
		SELECT rt.id, rt.token, rt.user_id, rt.expires_at, rt.created_at,
		       u.id, u.name, u.email, u.password_hash, u.role, u.created_at, u.updated_at
		FROM refresh_tokens rt
		JOIN users u ON u.id = rt.user_id
		WHERE rt.token = $1 AND rt.user_id = $2 AND rt.expires_at >= $3
		LIMIT 1`,
		token, userID, now,
	).Scan(
		&rt.ID, &rt.Token, &rt.UserID, &rt.ExpiresAt, &rt.CreatedAt,
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, domain.ErrRefreshTokenInvalid
		}
		return nil, nil, fmt.Errorf("find refresh token: %w", err)
	}
	u.Role = domain.Role(role)
	return &rt, &u, nil
}

func (r *RefreshTokenRepository) DeleteByToken(ctx context.Context, token string) (int64, error) {
	return r.exec(ctx, "delete refresh token", `DELETE FROM refresh_tokens WHERE token = $1`, token)
}

func (r *RefreshTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return r.exec(ctx, "delete expired refresh tokens", `DELETE FROM refresh_tokens WHERE expires_at < $1`, now)
}

func (r *RefreshTokenRepository) TrimUser(ctx context.Context, userID string, keep int) (int64, error) {
	return r.exec(ctx, "trim refresh tokens", `
		DELETE FROM refresh_tokens
		WHERE user_id = $1
		  AND id NOT IN (
		      SELECT id FROM refresh_tokens
		      WHERE user_id = $1
		      ORDER BY created_at DESC
		      LIMIT $2
		  )`, userID, keep)
}

func (r *RefreshTokenRepository) exec(ctx context.Context, op, query string, args ...any) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return tag.RowsAffected(), nil
}
