package httpapi

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/matheusmosca/workout-gear-server/pkg/metrics"
)

// observe records request counts and latency per route, and emits one
// structured log line per request.
func observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		handler := c.FullPath()
		if handler == "" {
			handler = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)

		metrics.HTTPRequests.WithLabelValues(handler, strconv.Itoa(status)).Inc()
		metrics.HTTPLatencyMS.WithLabelValues(handler).Observe(float64(elapsed.Milliseconds()))

		slog.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"handler", handler,
			"status", status,
			"duration_ms", elapsed.Milliseconds(),
		)
	}
}
