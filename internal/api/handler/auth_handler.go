package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/nadscarim/task-management/internal/api/metrics"
	"github.com/nadscarim/task-management/internal/api/middleware"
	"github.com/nadscarim/task-management/internal/core/domain"
	"github.com/nadscarim/task-management/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	cookies     CookieConfig
	log         zerolog.Logger
}

func NewAuthHandler(authService ports.AuthService, cookies CookieConfig, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, cookies: cookies, log: log}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user,omitempty"`
}

// messageResponse is the envelope of register/login validation failures and
// plain acknowledgements.
type messageResponse struct {
	Message string `json:"message"`
}

// Register creates a new user account and starts a session.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}

	user, pair, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMissingFields):
			metrics.AuthEventsTotal.WithLabelValues("register", metrics.ResultRejected).Inc()
			return c.JSON(http.StatusBadRequest, messageResponse{Message: "Please provide all required fields"})
		case errors.Is(err, domain.ErrUserExists):
			metrics.AuthEventsTotal.WithLabelValues("register", metrics.ResultRejected).Inc()
			return echo.NewHTTPError(http.StatusBadRequest, "User already exists")
		}
		metrics.AuthEventsTotal.WithLabelValues("register", metrics.ResultError).Inc()
		return echo.NewHTTPError(http.StatusInternalServerError, "Registration failed").SetInternal(err)
	}

	metrics.AuthEventsTotal.WithLabelValues("register", metrics.ResultSuccess).Inc()
	h.cookies.setSession(c, pair)
	return c.JSON(http.StatusCreated, authResponse{Message: "User registered successfully", User: user})
}

// Login authenticates a user and starts a session.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}

	user, pair, err := h.authService.Login(c.Request().Context(), ports.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMissingFields):
			metrics.AuthEventsTotal.WithLabelValues("login", metrics.ResultRejected).Inc()
			return c.JSON(http.StatusBadRequest, messageResponse{Message: "Email and password required"})
		case errors.Is(err, domain.ErrInvalidCredentials):
			metrics.AuthEventsTotal.WithLabelValues("login", metrics.ResultRejected).Inc()
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
		}
		metrics.AuthEventsTotal.WithLabelValues("login", metrics.ResultError).Inc()
		return echo.NewHTTPError(http.StatusInternalServerError, "Login failed").SetInternal(err)
	}

	metrics.AuthEventsTotal.WithLabelValues("login", metrics.ResultSuccess).Inc()
	h.cookies.setSession(c, pair)
	return c.JSON(http.StatusOK, authResponse{Message: "Login successful", User: user})
}

// Me returns the account behind the access token cookie.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  domain.User
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	user, err := h.authService.Me(c.Request().Context(), cookieValue(c, middleware.AccessTokenCookie))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
		}
		if !isAuthError(err) {
			h.log.Error().Err(err).Msg("me: user lookup failed")
		}
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}
	return c.JSON(http.StatusOK, user)
}

// Refresh exchanges the refresh token cookie for a new access token cookie.
//
// @Summary      Refresh the access token
// @Tags         auth
// @Produce      json
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/auth/refresh [get]
func (h *AuthHandler) Refresh(c echo.Context) error {
	access, err := h.authService.Refresh(c.Request().Context(), cookieValue(c, RefreshTokenCookie))
	if err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			metrics.AuthEventsTotal.WithLabelValues("refresh", metrics.ResultRejected).Inc()
			return echo.NewHTTPError(http.StatusUnauthorized, "Refresh token required")
		}
		result := metrics.ResultRejected
		if !isAuthError(err) {
			result = metrics.ResultError
			h.log.Error().Err(err).Msg("refresh: token lookup failed")
		}
		metrics.AuthEventsTotal.WithLabelValues("refresh", result).Inc()
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid refresh token")
	}

	metrics.AuthEventsTotal.WithLabelValues("refresh", metrics.ResultSuccess).Inc()
	h.cookies.setAccess(c, access)
	return c.JSON(http.StatusOK, messageResponse{Message: "Token refreshed successfully"})
}

// Logout revokes the refresh token and clears both session cookies.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  messageResponse
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.authService.Logout(c.Request().Context(), cookieValue(c, RefreshTokenCookie)); err != nil {
		metrics.AuthEventsTotal.WithLabelValues("logout", metrics.ResultError).Inc()
		return echo.NewHTTPError(http.StatusInternalServerError, "Logout failed").SetInternal(err)
	}

	metrics.AuthEventsTotal.WithLabelValues("logout", metrics.ResultSuccess).Inc()
	h.cookies.clearSession(c)
	return c.JSON(http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

// isAuthError reports whether err is an ordinary credential failure rather
// than an infrastructure fault.
func isAuthError(err error) bool {
	return errors.Is(err, domain.ErrUnauthenticated) ||
		errors.Is(err, domain.ErrTokenExpired) ||
		errors.Is(err, domain.ErrTokenInvalid) ||
		errors.Is(err, domain.ErrRefreshTokenInvalid)
}
