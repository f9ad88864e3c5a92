package ports

import (
	"context"
	"time"
)

// CounterStore provides atomic increment-with-expiry counters for rate
// limiting. Increment must set the window expiry exactly when the key has
// no prior entry, without a race that leaves a key unexpiring.
type CounterStore interface {
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
}
