package domain

import "errors"

// Validation.
var (
	ErrMissingFields = errors.New("missing required fields")
	ErrInvalidTask   = errors.New("invalid task")
)

// Conflict.
var ErrUserExists = errors.New("user already exists")

// Authentication.
var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUnauthenticated     = errors.New("not authenticated")
	ErrTokenExpired        = errors.New("token expired")
	ErrTokenInvalid        = errors.New("invalid token")
	ErrRefreshTokenInvalid = errors.New("invalid refresh token")
	ErrUserNotFound        = errors.New("user not found")
)

// Not found.
var ErrTaskNotFound = errors.New("task not found")
