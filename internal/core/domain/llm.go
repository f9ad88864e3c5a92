package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrLLMNotConfigured is returned when no upstream API key is set.
var ErrLLMNotConfigured = errors.New("llm provider is not configured")

// ErrLLMUnavailable wraps upstream failures that are not the caller's
// fault: network errors, unknown models, provider 5xx.
var ErrLLMUnavailable = errors.New("llm provider unavailable")

// QuotaExceededError signals the upstream provider rejected the call for
// rate-limit or quota reasons. RetryAfter is zero when the provider gave
// no hint.
type QuotaExceededError struct {
	RetryAfter time.Duration
}

func (e *QuotaExceededError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("llm quota exceeded, retry in %s", e.RetryAfter)
	}
	return "llm quota exceeded"
}
