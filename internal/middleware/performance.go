package middleware

import (
	"strconv"
	"time"

	"github.com/vineetkumarg8/crypto-chat-app/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// PerformanceMiddleware adds response-time headers to every request
func PerformanceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		c.Next()

		duration := time.Since(startTime)
		c.Header("X-Response-Time", duration.String())
		c.Header("X-Response-Time-Ms", strconv.FormatInt(duration.Milliseconds(), 10))
	}
}

// ConcurrencyMiddleware exposes the active request count as a header
func ConcurrencyMiddleware(collector *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		activeRequests := collector.GetMetrics().ActiveRequests
		c.Header("X-Active-Requests", strconv.FormatInt(activeRequests, 10))

		c.Next()
	}
}
