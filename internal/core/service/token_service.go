package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/nadscarim/task-management/internal/core/domain"
)

const (
	AccessTokenTTL  = 15 * time.Minute
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// AccessClaims is the payload of an access token.
type AccessClaims struct {
	UserID string      `json:"userId"`
	Email  string      `json:"email"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// RefreshClaims is the payload of a refresh token. The registered ID (jti)
// is random so that two grants minted in the same second still differ.
type RefreshClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// TokenService mints and verifies HS256 tokens. It never touches storage.
type TokenService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewTokenService(accessSecret, refreshSecret string) (*TokenService, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, errors.New("token service: signing secrets must not be empty")
	}
	return &TokenService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     AccessTokenTTL,
		refreshTTL:    RefreshTokenTTL,
		now:           time.Now,
	}, nil
}

func (s *TokenService) AccessTTL() time.Duration  { return s.accessTTL }
func (s *TokenService) RefreshTTL() time.Duration { return s.refreshTTL }

// IssueTokenPair mints an access token and a refresh token for the user.
// Persisting the refresh token is the caller's job.
func (s *TokenService) IssueTokenPair(userID, email string, role domain.Role) (*domain.TokenPair, error) {
	access, err := s.IssueAccessToken(userID, email, role)
	if err != nil {
		return nil, err
	}

	now := s.now()
	exp := now.Add(s.refreshTTL)
	claims := RefreshClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	refresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.refreshSecret)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	return &domain.TokenPair{
		Access:  access,
		Refresh: domain.IssuedToken{Value: refresh, ExpiresAt: exp},
	}, nil
}

// IssueAccessToken mints a short-lived access token.
func (s *TokenService) IssueAccessToken(userID, email string, role domain.Role) (domain.IssuedToken, error) {
	now := s.now()
	exp := now.Add(s.accessTTL)
	claims := AccessClaims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.accessSecret)
	if err != nil {
		return domain.IssuedToken{}, fmt.Errorf("sign access token: %w", err)
	}
	return domain.IssuedToken{Value: signed, ExpiresAt: exp}, nil
}

// VerifyAccessToken returns the identity embedded in a valid access token.
// An expired token yields domain.ErrTokenExpired; every other failure yields
// domain.ErrTokenInvalid.
func (s *TokenService) VerifyAccessToken(token string) (*domain.Identity, error) {
	claims := &AccessClaims{}
	if err := s.parse(token, claims, s.accessSecret); err != nil {
		return nil, err
	}
	if claims.UserID == "" || !claims.Role.Valid() {
		return nil, domain.ErrTokenInvalid
	}
	return &domain.Identity{ID: claims.UserID, Email: claims.Email, Role: claims.Role}, nil
}

// VerifyRefreshToken returns the user id embedded in a valid refresh token.
func (s *TokenService) VerifyRefreshToken(token string) (string, error) {
	claims := &RefreshClaims{}
	if err := s.parse(token, claims, s.refreshSecret); err != nil {
		return "", err
	}
	if claims.UserID == "" {
		return "", domain.ErrTokenInvalid
	}
	return claims.UserID, nil
}

func (s *TokenService) parse(token string, claims jwt.Claims, secret []byte) error {
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return domain.ErrTokenExpired
	default:
		return fmt.Errorf("%w: %v", domain.ErrTokenInvalid, err)
	}
}
