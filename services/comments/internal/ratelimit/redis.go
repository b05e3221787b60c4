package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisLimiter struct {
	client *redis.Client
}

func newRedisLimiter(dsn string) *redisLimiter {
	opts, err := redis.ParseURL(dsn)
	if err != nil {
		opts = &redis.Options{Addr: dsn}
	}
	return &redisLimiter{client: redis.NewClient(opts)}
}

func (l *redisLimiter) Check(ctx context.Context, identity, bucket string, limit int, window time.Duration) (Result, error) {
	key := "comments:ratelimit:" + bucket + ":" + identity

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	// NX keeps the original window TTL; only the first hit sets it.
	pipe.ExpireNX(ctx, key, window)
	ttl := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, err
	}

	count := int(incr.Val())
	remaining := ttl.Val()
	if remaining < 0 {
		remaining = window
	}

	res := Result{Limit: limit, Reset: time.Now().Add(remaining)}
	if count <= limit {
		res.Allowed = true
		res.Remaining = limit - count
	}
	return res, nil
}
