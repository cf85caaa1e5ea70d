package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/Drayarch/genlayer-intelligent-contracts/internal/logging"
	"github.com/gin-gonic/gin"
)

// Limiter decides whether one more request from key may proceed. retryAfter
// is only meaningful when ok is false.
type Limiter interface {
	Allow(ctx context.Context, key string) (ok bool, retryAfter time.Duration, err error)
}

// RateLimit gates a route group on the limiter. Keys by authenticated client
// id, falling back to the remote address for unauthenticated calls. Limiter
// backend errors fail open: a broken Redis must not take key lookups down
// with it.
func RateLimit(l Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := ClientID(c)
		if key == "" {
			key = c.ClientIP()
		}

		ok, retryAfter, err := l.Allow(c.Request.Context(), key)
		if err != nil {
			logging.From(c).Warn("rate limiter unavailable", "error", err)
			c.Next()
			return
		}
		if !ok {
			rateLimited.Inc()
			secs := int(retryAfter / time.Second)
			if secs < 1 {
				secs = 1
			}
			c.Header("Retry-After", strconv.Itoa(secs))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate_limited"})
			return
		}
		c.Next()
	}
}
