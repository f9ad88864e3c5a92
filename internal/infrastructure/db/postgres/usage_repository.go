package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/edgechat/backend/internal/core/domain"
)

type UsageRepository struct {
	db *sql.DB
}

func NewUsageRepository(db *sql.DB) *UsageRepository {
	return &UsageRepository{db: db}
}

// Append inserts one usage row. Inserts are independent; an append that is
// abandoned mid-flight is simply absent, which the best-effort contract of
// the usage pipeline allows.
func (r *UsageRepository) Append(ctx context.Context, record domain.UsageRecord) error {
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO api_usage (user_id, path, method, created_at)
		VALUES ($1, $2, $3, $4)
	`, record.UserID, record.Path, record.Method, createdAt)
	if err != nil {
		return fmt.Errorf("insert usage record: %w", err)
	}
	return nil
}

func (r *UsageRepository) Stats(ctx context.Context, userID int64) (*domain.UsageStats, error) {
	now := time.Now().UTC()
	var stats domain.UsageStats

	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE created_at >= $2),
			COUNT(*) FILTER (WHERE created_at >= $3)
		FROM api_usage
		WHERE user_id = $1
	`, userID, now.Add(-24*time.Hour), now.Add(-7*24*time.Hour)).
		Scan(&stats.TotalRequests, &stats.RequestsLast24h, &stats.RequestsLast7d)
	if err != nil {
		return nil, fmt.Errorf("query usage stats: %w", err)
	}
	return &stats, nil
}
