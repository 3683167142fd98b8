package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tckdb/tckdb-go/internal/infrastructure/monitoring/prometheus"
)

// Metrics returns middleware that records per-request counters, latency
// histograms, and the in-flight gauge.  The route template (not the raw URL)
// is used as the path label to keep cardinality bounded.
func Metrics(metrics *prometheus.AppMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		path := c.FullPath()
		if path == "" {
			// Unmatched route; a single bucket avoids label explosion from
			// scanners probing random URLs.
			path = "unmatched"
		}
		method := c.Request.Method

		active := metrics.HTTPActiveRequests.WithLabelValues(method, path)
		active.Inc()
		defer active.Dec()

		c.Next()

		prometheus.RecordHTTPRequest(metrics,
			method, path,
			c.Writer.Status(),
			time.Since(start),
			c.Request.ContentLength,
			int64(c.Writer.Size()))
	}
}
