package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter is a development-only in-memory limiter.
// WARNING: counters are per-process; replicas each grant a full budget.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	// now is replaceable in tests.
	now func() time.Time
}

type window struct {
	count int
	reset time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{windows: make(map[string]*window), now: time.Now}
}

func (l *MemoryLimiter) Check(_ context.Context, identity, bucket string, limit int, windowSize time.Duration) (Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	key := identity + ":" + bucket
	w, ok := l.windows[key]
	if !ok || !now.Before(w.reset) {
		w = &window{reset: now.Add(windowSize)}
		l.windows[key] = w
	}
	w.count++

	res := Result{Limit: limit, Reset: w.reset}
	if w.count <= limit {
		res.Allowed = true
		res.Remaining = limit - w.count
	}
	return res, nil
}
