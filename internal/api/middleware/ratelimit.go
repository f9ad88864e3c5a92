package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/edgechat/backend/internal/api/metrics"
	"github.com/edgechat/backend/internal/core/ports"
)

// rateLimitKeyPrefix namespaces limiter counters in the shared store.
const rateLimitKeyPrefix = "ratelimit:ip:"

// RateLimitConfig configures the fixed-window admission middleware.
type RateLimitConfig struct {
	Store    ports.CounterStore
	Requests int
	Window   time.Duration
	Logger   zerolog.Logger
}

// RateLimit admits at most Requests per client IP per Window. The counter
// is a fixed window, so a client can burst up to 2× the limit across a
// window boundary; inherited behaviour, kept deliberately.
//
// When the counter store is unreachable the request is admitted (fail
// open): availability is preferred over strict enforcement.
func RateLimit(cfg RateLimitConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := rateLimitKeyPrefix + clientIP(c)

			count, err := cfg.Store.Increment(c.Request().Context(), key, cfg.Window)
			if err != nil {
				metrics.RateLimitDecisionsTotal.WithLabelValues("fail_open").Inc()
				cfg.Logger.Warn().Err(err).Str("key", key).Msg("counter store error, admitting request")
				return next(c)
			}

			if count > int64(cfg.Requests) {
				metrics.RateLimitDecisionsTotal.WithLabelValues("rejected").Inc()
				windowSeconds := int(cfg.Window / time.Second)
				c.Response().Header().Set("Retry-After", strconv.Itoa(windowSeconds))
				body := map[string]string{"detail": "Too many requests"}
				if rid := GetRequestID(c); rid != "" {
					body["request_id"] = rid
				}
				return c.JSON(http.StatusTooManyRequests, body)
			}

			metrics.RateLimitDecisionsTotal.WithLabelValues("allowed").Inc()
			return next(c)
		}
	}
}

// clientIP derives the client identity: first X-Forwarded-For entry when
// behind a proxy, else the transport peer address, else a fallback
// constant.
func clientIP(c echo.Context) string {
	if forwarded := c.Request().Header.Get(echo.HeaderXForwardedFor); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if host, _, err := net.SplitHostPort(c.Request().RemoteAddr); err == nil && host != "" {
		return host
	}
	if addr := strings.TrimSpace(c.Request().RemoteAddr); addr != "" {
		return addr
	}
	return "unknown"
}
