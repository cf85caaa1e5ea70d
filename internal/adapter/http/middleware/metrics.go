package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_ms",
			Help:    "Duration of HTTP requests in ms",
			Buckets: []float64{5, 10, 25, 50, 100, 200, 400, 800, 1600},
		},
		[]string{"method", "path"},
	)

	keyLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "key_lookups_total",
			Help: "Key registry lookups by service and outcome",
		},
		[]string{"service", "outcome"},
	)

	registrySize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "registry_services",
			Help: "Number of services seeded into the key registry",
		},
	)

	rateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rate_limited_total",
			Help: "Requests rejected by the rate limiter",
		},
	)
)

// ObserveLookup records one registry lookup. Misses are folded into a single
// label value to keep cardinality bounded by the seed set.
func ObserveLookup(service string, hit bool) {
	if hit {
		keyLookups.WithLabelValues(service, "hit").Inc()
		return
	}
	keyLookups.WithLabelValues("_unknown", "miss").Inc()
}

// SetRegistrySize publishes the seed count once at startup; the registry is
// immutable so the gauge never moves afterwards.
func SetRegistrySize(n int) { registrySize.Set(float64(n)) }

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := float64(time.Since(start).Milliseconds())
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		httpRequests.WithLabelValues(c.Request.Method, path,
			http.StatusText(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, path).Observe(duration)
	}
}
