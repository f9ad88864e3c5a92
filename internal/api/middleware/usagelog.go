package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/edgechat/backend/internal/core/domain"
	"github.com/edgechat/backend/internal/core/ports"
	"github.com/edgechat/backend/internal/core/token"
)

// UsageLog meters API calls for authenticated users. The Authorization
// header is inspected tolerantly before dispatch; after the handler
// returns — success or handled failure — one usage record is enqueued for
// the decoded subject. Enqueueing never blocks and never alters the
// response: accounting is best-effort by contract.
//
// Rejected requests never reach this middleware's next, so they accrue no
// usage. The subject is not resolved against the user store here; that is
// the auth guard's job.
func UsageLog(codec *token.Codec, recorder ports.UsageRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, authenticated := subjectFromHeader(c.Request().Header.Get("Authorization"), codec)

			err := next(c)

			if authenticated {
				recorder.Record(domain.UsageRecord{
					UserID: userID,
					Path:   c.Request().URL.Path,
					Method: c.Request().Method,
				})
			}
			return err
		}
	}
}

// subjectFromHeader decodes the subject of a well-formed access-kind
// bearer token. Anything else — absent header, wrong scheme, invalid or
// refresh-kind token — yields (0, false) without error.
func subjectFromHeader(header string, codec *token.Codec) (int64, bool) {
	scheme, raw, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return 0, false
	}
	claims, ok := codec.Verify(strings.TrimSpace(raw))
	if !ok || claims.Kind != token.KindAccess {
		return 0, false
	}
	return claims.UserID, true
}
