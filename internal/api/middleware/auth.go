package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/edgechat/backend/internal/core/domain"
	"github.com/edgechat/backend/internal/core/ports"
	"github.com/edgechat/backend/internal/core/token"
)

// Context keys set by the Auth guard.
const (
	ContextUserKey   = "user"
	ContextUserIDKey = "user_id"
)

// unauthorized produces the single 401 used for every auth failure. The
// message is deliberately uniform so callers cannot probe which check
// failed, and the response carries a bearer challenge.
func unauthorized(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
}

// Auth protects a route: it extracts the bearer token, verifies it,
// requires the access kind, and resolves the subject against the user
// store — a token for a deleted account does not pass. The resolved user
// is stored in the request context.
func Auth(codec *token.Codec, auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			scheme, raw, found := strings.Cut(header, " ")
			if !found || !strings.EqualFold(scheme, "bearer") {
				return unauthorized(c)
			}

			claims, ok := codec.Verify(strings.TrimSpace(raw))
			if !ok || claims.Kind != token.KindAccess {
				return unauthorized(c)
			}

			user, err := auth.ResolveUser(c.Request().Context(), claims.UserID)
			if errors.Is(err, domain.ErrUserNotFound) {
				return unauthorized(c)
			}
			if err != nil {
				return err
			}

			c.Set(ContextUserKey, user)
			c.Set(ContextUserIDKey, user.ID)

			return next(c)
		}
	}
}
