package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CounterStore provides atomic fixed-window counters backed by Redis.
// Key format: ratelimit:ip:<client identity>
type CounterStore struct {
	client *redis.Client
}

// NewCounterStore creates a CounterStore wrapping the given Redis client.
func NewCounterStore(client *redis.Client) *CounterStore {
	return &CounterStore{client: client}
}

// Increment bumps the counter and returns the new value. The expiry is set
// only when the key has none yet (EXPIRE NX), so the first caller in a
// window starts it and later increments never extend it. Both commands run
// in one pipeline, so a key can never be left without an expiry.
func (s *CounterStore) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := s.client.TxPipeline()
	count := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("counter increment: %w", err)
	}
	return count.Val(), nil
}
