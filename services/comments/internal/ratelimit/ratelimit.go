// Package ratelimit enforces fixed-window request budgets per caller.
//
// Primary backend: Redis INCR with a window TTL (env REDIS_DSN).
// Fallback: an in-memory counter (development only).
package ratelimit

import (
	"context"
	"errors"
	"time"
)

// Request buckets. Each endpoint class draws from its own budget.
const (
	BucketRead   = "read"
	BucketWrite  = "write"
	BucketSearch = "search"
)

// Result is the outcome of one budget check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	// Reset is when the current window ends and the budget refills.
	Reset time.Time
}

// Limiter counts a request against (identity, bucket) and reports whether it
// fits the budget. The count is taken even when the request is rejected.
type Limiter interface {
	Check(ctx context.Context, identity, bucket string, limit int, window time.Duration) (Result, error)
}

// New creates the best available limiter backend: Redis > in-memory.
// When isProd is true the in-memory fallback is not allowed, since its
// counters are per-instance.
func New(redisDSN string, isProd bool) (Limiter, error) {
	if redisDSN != "" {
		return newRedisLimiter(redisDSN), nil
	}
	if isProd {
		return nil, errors.New("production requires REDIS_DSN for rate limiting; in-memory limiter is not allowed")
	}
	return NewMemoryLimiter(), nil
}
