package config

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

func PerformanceLogger(logger *slog.Logger, slow time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		// Process request
		c.Next()

		latency := time.Since(start)

		logger.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", latency.Milliseconds(),
		)

		// Alert for slow requests
		if slow > 0 && latency > slow {
			logger.Warn("slow request",
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"duration_ms", latency.Milliseconds(),
			)
		}
	}
}
