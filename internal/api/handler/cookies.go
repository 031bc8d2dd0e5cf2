package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/nadscarim/task-management/internal/api/middleware"
	"github.com/nadscarim/task-management/internal/core/domain"
)

// RefreshTokenCookie carries the long-lived refresh token.
const RefreshTokenCookie = "refreshToken"

// CookieConfig controls the session cookies.
type CookieConfig struct {
	// Secure marks cookies HTTPS-only; enabled in production.
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func (cc CookieConfig) setSession(c echo.Context, pair *domain.TokenPair) {
	cc.setAccess(c, pair.Access)
	c.SetCookie(cc.cookie(RefreshTokenCookie, pair.Refresh.Value, cc.RefreshTTL))
}

func (cc CookieConfig) setAccess(c echo.Context, tok domain.IssuedToken) {
	c.SetCookie(cc.cookie(middleware.AccessTokenCookie, tok.Value, cc.AccessTTL))
}

func (cc CookieConfig) clearSession(c echo.Context) {
	for _, name := range []string{middleware.AccessTokenCookie, RefreshTokenCookie} {
		ck := cc.cookie(name, "", 0)
		ck.MaxAge = -1
		ck.Expires = time.Unix(0, 0)
		c.SetCookie(ck)
	}
}

func (cc CookieConfig) cookie(name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl / time.Second),
		HttpOnly: true,
		Secure:   cc.Secure,
		SameSite: http.SameSiteStrictMode,
	}
}

func cookieValue(c echo.Context, name string) string {
	ck, err := c.Cookie(name)
	if err != nil {
		return ""
	}
	return ck.Value
}
