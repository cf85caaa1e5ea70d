package http

import (
	"log/slog"

	"github.com/Drayarch/genlayer-intelligent-contracts/internal/adapter/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter assembles the key-service routes. limit and seal are optional:
// nil means the corresponding collaborator is not configured.
func NewRouter(kh *KeyHandler, th *TokenHandler, authz *middleware.Authz, httpLog *slog.Logger, limit, seal gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.MetricsMiddleware())
	r.Use(middleware.Logging(httpLog))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})
	// Prometheus endpoint (scraped by Prometheus)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/v1/token", th.IssueToken)

	v1 := r.Group("/v1")
	{
		keys := v1.Group("/keys", authz.Require("keys.read"))
		if limit != nil {
			keys.Use(limit)
		}
		getKey := []gin.HandlerFunc{kh.GetKey}
		if seal != nil {
			getKey = []gin.HandlerFunc{seal, kh.GetKey}
		}
		keys.GET("/:service", getKey...)

		v1.GET("/services", authz.Require("services.read"), kh.ListServices)
		v1.GET("/services/:service", authz.Require("services.read"), kh.GetServiceInfo)
	}

	return r
}
