package metrics

import (
	"strconv"
	"time"
)

// Operational endpoints stay out of the request metrics so the scraper
// does not inflate its own numbers.
var uninstrumentedPaths = map[string]struct{}{
	"/metrics": {},
	"/health":  {},
	"/ready":   {},
}

// RecordHTTPRequest observes one completed request.
func (m *Metrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	m.safeExecute("RecordHTTPRequest", func() {
		m.HTTPRequestsTotal.WithLabelValues(method, endpoint, statusClass(statusCode)).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	})
}

// statusClass collapses a status code into its class ("2xx".."5xx") to
// keep label cardinality low.
func statusClass(code int) string {
	if code < 100 || code > 599 {
		return "unknown"
	}
	return strconv.Itoa(code/100) + "xx"
}

// ShouldSkipEndpoint reports whether a path is excluded from HTTP metrics.
func ShouldSkipEndpoint(path string) bool {
	_, skip := uninstrumentedPaths[path]
	return skip
}
