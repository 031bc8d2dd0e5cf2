package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nadscarim/task-management/internal/api/metrics"
	"github.com/nadscarim/task-management/internal/core/domain"
	"github.com/nadscarim/task-management/internal/core/ports"
)

// Authenticate verifies the access token cookie and injects the caller's
// identity into the context. The identity comes from the signed claims only;
// the user store is not consulted.
func Authenticate(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(AccessTokenCookie)
			if err != nil || cookie.Value == "" {
				metrics.TokenRejectionsTotal.WithLabelValues("missing").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "Access token required")
			}

			identity, err := verifier.VerifyAccessToken(cookie.Value)
			switch {
			case err == nil:
			case errors.Is(err, domain.ErrTokenExpired):
				metrics.TokenRejectionsTotal.WithLabelValues("expired").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "Token expired")
			case errors.Is(err, domain.ErrTokenInvalid):
				metrics.TokenRejectionsTotal.WithLabelValues("invalid").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			default:
				return echo.NewHTTPError(http.StatusInternalServerError, "Authentication failed").SetInternal(err)
			}

			SetIdentity(c, identity)
			return next(c)
		}
	}
}
