package router

import (
	"time"

	"github.com/gin-gonic/gin"
	glog "github.com/goliatone/go-logger/glog"
)

// Logger logs method, path, status and latency.
func Logger(logger glog.Logger) gin.HandlerFunc {
	logger = glog.Ensure(logger)
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
