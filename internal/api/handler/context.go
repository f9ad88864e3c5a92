package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/edgechat/backend/internal/api/middleware"
	"github.com/edgechat/backend/internal/core/domain"
)

// currentUser extracts the account injected by the Auth guard and performs
// a fast-fail check before any service call: a missing user means the
// route was registered without the guard, which is a wiring bug surfaced
// as 401 rather than a panic.
func currentUser(c echo.Context) (*domain.User, error) {
	user, _ := c.Get(middleware.ContextUserKey).(*domain.User)
	if user == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}
	return user, nil
}
