package middleware

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bytetide-io/bytetide-backend/internal/telemetry"
)

// MetricsMiddleware records request count and duration for every request.
//
// The path label is set from c.FullPath(), the matched route template (e.g.
// /api/projects/:id/custom-files) rather than the raw URL, so project and
// organization IDs do not inflate label cardinality. Requests that match no
// registered route use the literal string "<no-route>".
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "<no-route>"
		}

		duration := time.Since(start).Seconds()
		method := c.Request.Method
		status := fmt.Sprintf("%d", c.Writer.Status())

		telemetry.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		telemetry.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
	}
}
