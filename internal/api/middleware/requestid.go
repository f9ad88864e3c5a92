package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

// RequestID tags every request for tracing. An inbound X-Request-ID is
// honoured; otherwise a fresh UUID is generated. The id is set on the
// response header before the rest of the chain runs, so it is present on
// every exit path — short-circuits and failures included.
func RequestID() echo.MiddlewareFunc {
	return echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	})
}

// GetRequestID returns the id assigned to the current request, or "" when
// the RequestID middleware did not run.
func GetRequestID(c echo.Context) string {
	return c.Response().Header().Get(echo.HeaderXRequestID)
}
