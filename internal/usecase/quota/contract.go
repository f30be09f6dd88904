package quota

import (
	"context"
	"time"
)

// Counter is the windowed-counter storage contract (Redis INCR/EXPIRE).
type Counter interface {
	IncrBy(ctx context.Context, key string, val int64) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// Tally persists the lifetime per-user request count.
type Tally interface {
	IncrementRequestCount(ctx context.Context, userID string) error
}
