package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/Drayarch/genlayer-intelligent-contracts/internal/adapter/http/middleware"
	"github.com/redis/go-redis/v9"
)

// RedisRateLimiter is a fixed-window counter: INCR on rl:<key>:<window>,
// EXPIRE on the first hit of the window. Shared across replicas, unlike the
// in-process bucket.
type RedisRateLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
}

func NewRedisRateLimiter(rdb *redis.Client, limit int, window time.Duration) *RedisRateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &RedisRateLimiter{rdb: rdb, limit: limit, window: window}
}

func (l *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	now := time.Now()
	slot := now.UnixNano() / int64(l.window)
	rk := fmt.Sprintf("rl:%s:%d", key, slot)

	n, err := l.rdb.Incr(ctx, rk).Result()
	if err != nil {
		return false, 0, fmt.Errorf("rate limit incr: %w", err)
	}
	if n == 1 {
		// first hit opens the window; expiry is best-effort, the slot in the
		// key bounds the window regardless
		_ = l.rdb.Expire(ctx, rk, l.window+time.Second).Err()
	}
	if n > int64(l.limit) {
		elapsed := time.Duration(now.UnixNano() % int64(l.window))
		return false, l.window - elapsed, nil
	}
	return true, 0, nil
}

var _ middleware.Limiter = (*RedisRateLimiter)(nil)
