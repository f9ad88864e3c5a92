package ports

import (
	"context"

	"github.com/edgechat/backend/internal/core/domain"
)

// UsageRecorder accepts usage records for asynchronous, best-effort
// persistence. Record must never block the caller.
type UsageRecorder interface {
	Record(record domain.UsageRecord)
}

type UsageService interface {
	StatsFor(ctx context.Context, userID int64) (*domain.UsageStats, error)
}
