// Package httpapi serves the catalog, health and metrics endpoints over HTTP.
package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kalyxon/progress-server/internal/catalog"
	"github.com/kalyxon/progress-server/internal/logger"
)

// NewRouter builds the HTTP engine. origins lists the browser origins allowed
// by CORS.
func NewRouter(catalog *catalog.Catalog, health *HealthHandler, origins []string, logger *logger.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	config := cors.DefaultConfig()
	config.AllowOrigins = origins
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	config.AllowMethods = []string{"GET", "OPTIONS"}
	r.Use(cors.New(config))

	r.GET("/healthz", health.Check)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	tutorials := NewTutorialHandler(catalog)
	api := r.Group("/api/v1")
	{
		api.GET("/tutorials", tutorials.List)
		api.GET("/tutorials/:id", tutorials.Get)
		api.GET("/categories", tutorials.Categories)
	}

	return r
}

func requestLogger(logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("HTTP request completed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds())
	}
}
