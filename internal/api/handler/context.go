package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nadscarim/task-management/internal/api/middleware"
)

// callerID returns the id of the authenticated caller. A route reached
// without Authenticate having run yields 401.
func callerID(c echo.Context) (string, error) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}
	return id.ID, nil
}
