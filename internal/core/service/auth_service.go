package service

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/nadscarim/task-management/internal/core/domain"
	"github.com/nadscarim/task-management/internal/core/ports"
)

const DefaultBcryptCost = 10

// AuthOptions tunes AuthService. Zero values fall back to defaults.
type AuthOptions struct {
	BcryptCost int
	// MaxSessionsPerUser bounds stored refresh tokens per user; 0 means unbounded.
	MaxSessionsPerUser int
}

// AuthService implements registration, login, refresh, logout and identity lookup.
type AuthService struct {
	users  ports.UserRepository
	tokens ports.RefreshTokenRepository
	issuer *TokenService
	opts   AuthOptions
	log    zerolog.Logger
	now    func() time.Time
}

func NewAuthService(
	users ports.UserRepository,
	tokens ports.RefreshTokenRepository,
	issuer *TokenService,
	opts AuthOptions,
	log zerolog.Logger,
) *AuthService {
	if opts.BcryptCost < bcrypt.MinCost || opts.BcryptCost > bcrypt.MaxCost {
		opts.BcryptCost = DefaultBcryptCost
	}
	if opts.MaxSessionsPerUser < 0 {
		opts.MaxSessionsPerUser = 0
	}
	return &AuthService{
		users:  users,
		tokens: tokens,
		issuer: issuer,
		opts:   opts,
		log:    log,
		now:    time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, *domain.TokenPair, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, nil, domain.ErrMissingFields
	}

	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, nil, domain.ErrUserExists
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, nil, fmt.Errorf("register: lookup email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword(bcryptInput(in.Password), s.opts.BcryptCost)
	if err != nil {
		return nil, nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := s.now().UTC()
	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	// The unique index on email still guards the window between lookup and insert.
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, nil, domain.ErrUserExists
		}
		return nil, nil, fmt.Errorf("register: create user: %w", err)
	}

	pair, err := s.startSession(ctx, user)
	if err != nil {
		return nil, nil, fmt.Errorf("register: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("user registered")
	return user, pair, nil
}

func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (*domain.User, *domain.TokenPair, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, nil, domain.ErrMissingFields
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil, domain.ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("login: lookup email: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), bcryptInput(in.Password)) != nil {
		return nil, nil, domain.ErrInvalidCredentials
	}

	pair, err := s.startSession(ctx, user)
	if err != nil {
		return nil, nil, fmt.Errorf("login: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("user logged in")
	return user, pair, nil
}

// Refresh exchanges a stored, unexpired refresh token for a new access token.
// The refresh token itself is not rotated.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (domain.IssuedToken, error) {
	if refreshToken == "" {
		return domain.IssuedToken{}, domain.ErrUnauthenticated
	}

	userID, err := s.issuer.VerifyRefreshToken(refreshToken)
	if err != nil {
		return domain.IssuedToken{}, fmt.Errorf("%w: %v", domain.ErrRefreshTokenInvalid, err)
	}

	_, user, err := s.tokens.FindActive(ctx, refreshToken, userID, s.now().UTC())
	if err != nil {
		if errors.Is(err, domain.ErrRefreshTokenInvalid) {
			return domain.IssuedToken{}, domain.ErrRefreshTokenInvalid
		}
		return domain.IssuedToken{}, fmt.Errorf("refresh: lookup token: %w", err)
	}

	access, err := s.issuer.IssueAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		return domain.IssuedToken{}, fmt.Errorf("refresh: %w", err)
	}
	return access, nil
}

// Logout revokes the presented refresh token. Unknown or empty tokens are not
// an error.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	n, err := s.tokens.DeleteByToken(ctx, refreshToken)
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.log.Debug().Int64("revoked", n).Msg("refresh token revoked")
	return nil
}

// Me resolves the account behind an access token.
func (s *AuthService) Me(ctx context.Context, accessToken string) (*domain.User, error) {
	if accessToken == "" {
		return nil, domain.ErrUnauthenticated
	}
	identity, err := s.issuer.VerifyAccessToken(accessToken)
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, identity.ID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("me: %w", err)
	}
	return user, nil
}

// startSession issues a token pair and persists the refresh half. The three
// writes of a register (user, token, trim) are not transactional.
func (s *AuthService) startSession(ctx context.Context, user *domain.User) (*domain.TokenPair, error) {
	pair, err := s.issuer.IssueTokenPair(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	rt := &domain.RefreshToken{
		ID:        uuid.NewString(),
		Token:     pair.Refresh.Value,
		UserID:    user.ID,
		ExpiresAt: pair.Refresh.ExpiresAt.UTC(),
		CreatedAt: s.now().UTC(),
	}
	if err := s.tokens.Store(ctx, rt); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	if s.opts.MaxSessionsPerUser > 0 {
		if n, err := s.tokens.TrimUser(ctx, user.ID, s.opts.MaxSessionsPerUser); err != nil {
			s.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to trim sessions")
		} else if n > 0 {
			s.log.Debug().Str("user_id", user.ID).Int64("trimmed", n).Msg("old sessions trimmed")
		}
	}
	return pair, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// bcryptMaxInput is the longest password bcrypt accepts.
const bcryptMaxInput = 72

// bcryptInput returns the bytes fed to bcrypt for password. Longer passwords
// are reduced to the base64 of their SHA-256 so every byte still counts.
func bcryptInput(password string) []byte {
	if len(password) <= bcryptMaxInput {
		return []byte(password)
	}
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}
