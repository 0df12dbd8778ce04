package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clearpath/auth-service/internal/utils/metrics"
)

// Metrics records request counts and latencies.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		metrics.RequestsTotal.Inc()

		c.Next()

		elapsed := time.Since(start).Seconds()
		metrics.RequestDuration.Observe(elapsed)

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RequestDurationByPath.WithLabelValues(c.Request.Method, path).Observe(elapsed)
		metrics.ResponsesTotal.WithLabelValues(strconv.Itoa(c.Writer.Status())).Inc()
	}
}
