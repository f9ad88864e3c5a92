package ports

import (
	"context"

	"github.com/edgechat/backend/internal/core/domain"
)

// UsageRepository persists the append-only API usage log.
type UsageRepository interface {
	// Append inserts one usage row. Callers on the hot path ignore the
	// returned error; it exists for logging and tests.
	Append(ctx context.Context, record domain.UsageRecord) error
	Stats(ctx context.Context, userID int64) (*domain.UsageStats, error)
}
