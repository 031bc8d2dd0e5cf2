package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/nadscarim/task-management/internal/core/domain"
)

// AccessTokenCookie carries the short-lived access token.
const AccessTokenCookie = "accessToken"

const identityKey = "identity"

// SetIdentity stores the authenticated caller on the request context.
func SetIdentity(c echo.Context, id *domain.Identity) {
	c.Set(identityKey, id)
}

// IdentityFrom returns the caller stored by Authenticate, if any.
func IdentityFrom(c echo.Context) (*domain.Identity, bool) {
	id, ok := c.Get(identityKey).(*domain.Identity)
	if !ok || id == nil || id.ID == "" {
		return nil, false
	}
	return id, true
}
