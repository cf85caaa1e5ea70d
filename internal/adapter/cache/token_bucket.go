package cache

import (
	"context"
	"sync"
	"time"

	"github.com/Drayarch/genlayer-intelligent-contracts/internal/adapter/http/middleware"
)

// TokenBucket is the in-process fallback limiter used when Redis is not
// configured. One bucket per key, refilled at rate/min up to burst. Only
// limits within a single replica.
type TokenBucket struct {
	mu      sync.Mutex
	buckets map[string]*bucket

	ratePerMin float64
	burst      float64
	now        func() time.Time
}

type bucket struct {
	tokens float64
	last   time.Time
}

func NewTokenBucket(ratePerMin, burst int) *TokenBucket {
	if burst < 1 {
		burst = 1
	}
	return &TokenBucket{
		buckets:    make(map[string]*bucket),
		ratePerMin: float64(ratePerMin),
		burst:      float64(burst),
		now:        time.Now,
	}
}

func (t *TokenBucket) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	b, ok := t.buckets[key]
	if !ok {
		b = &bucket{tokens: t.burst, last: now}
		t.buckets[key] = b
	}

	refill := now.Sub(b.last).Minutes() * t.ratePerMin
	b.tokens += refill
	if b.tokens > t.burst {
		b.tokens = t.burst
	}
	b.last = now

	if b.tokens < 1 {
		deficit := 1 - b.tokens
		wait := time.Duration(deficit / t.ratePerMin * float64(time.Minute))
		return false, wait, nil
	}
	b.tokens--
	return true, 0, nil
}

var _ middleware.Limiter = (*TokenBucket)(nil)
