package domain

import "time"

// UsageRecord is one row in api_usage: a single authenticated API call.
// Records are append-only; nothing updates or deletes them.
type UsageRecord struct {
	UserID    int64
	Path      string
	Method    string
	CreatedAt time.Time
}

// UsageStats aggregates a user's request counts for /usage/me.
type UsageStats struct {
	TotalRequests   int64 `json:"total_requests"`
	RequestsLast24h int64 `json:"requests_last_24h"`
	RequestsLast7d  int64 `json:"requests_last_7d"`
}
