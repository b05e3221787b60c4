// Package cache holds search responses for their short TTL so repeated
// identical queries skip ranking. Entries can be invalidated cluster-wide
// over NATS when moderation changes the underlying comments.
package cache

import (
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// Cache is the minimal read/write interface for cached search responses.
// Implementations must be safe for concurrent use.
type Cache interface {
	Get(key string) (any, bool)
	Set(key string, v any)
}

type item struct {
	val       any
	expiresAt time.Time
}

// TTLCache is an in-memory Cache with per-entry expiry and optional NATS
// key-level invalidation.
type TTLCache struct {
	mu    sync.RWMutex
	items map[string]item
	ttl   time.Duration
}

// NewTTLCache creates a TTLCache and subscribes for invalidation when nc is
// non-nil. A message carrying a user id drops that user's entries; an empty
// or "ALL" payload flushes everything.
func NewTTLCache(ttl time.Duration, nc *nats.Conn, subj string) *TTLCache {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	c := &TTLCache{items: make(map[string]item), ttl: ttl}
	if nc != nil && subj != "" {
		_, _ = nc.Subscribe(subj, func(m *nats.Msg) {
			c.Invalidate(string(m.Data))
		})
	}
	return c
}

// Invalidate drops every entry whose key is prefixed by scope (keys are built
// as "<user-id>|<request-hash>"). Empty or "ALL" flushes the whole cache.
func (c *TTLCache) Invalidate(scope string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if scope == "" || strings.EqualFold(scope, "ALL") {
		c.items = make(map[string]item)
		return
	}
	prefix := scope + "|"
	for k := range c.items {
		if strings.HasPrefix(k, prefix) {
			delete(c.items, k)
		}
	}
}

func (c *TTLCache) Get(key string) (any, bool) {
	c.mu.RLock()
	it, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(it.expiresAt) {
		c.mu.Lock()
		if cur, ok2 := c.items[key]; ok2 && time.Now().After(cur.expiresAt) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return it.val, true
}

func (c *TTLCache) Set(key string, v any) {
	c.mu.Lock()
	c.items[key] = item{val: v, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

// Key builds a cache key scoped to one user so invalidation after moderation
// can target just that user's cached searches.
func Key(userID string, parts ...string) string {
	return userID + "|" + strings.Join(parts, "|")
}
