package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"signoff-api/internal/metrics"
)

// Metrics records request counts and latency per route pattern. Using
// c.FullPath() instead of the raw URL keeps token-bearing paths out of
// the label set.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics.ShouldSkipEndpoint(c.Request.URL.Path) {
			c.Next()
			return
		}

		start := time.Now()
		defer func() {
			m.RecordHTTPRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
		}()

		c.Next()
	}
}
