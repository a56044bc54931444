package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const namespace = "signoff_api"

// Metrics holds every instrument the service exposes on /metrics.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBPoolOpen        prometheus.Gauge
	DBPoolInUse       prometheus.Gauge
	DBPoolIdle        prometheus.Gauge
	DBPoolMax         prometheus.Gauge
	DBPoolWaitCount   prometheus.Counter
	DBPoolWaitSeconds prometheus.Counter
	DBQueryDuration   *prometheus.HistogramVec
	DBQueryErrors     *prometheus.CounterVec

	ProjectsTotal        prometheus.Gauge
	PendingProjectsTotal prometheus.Gauge
	ProjectsCreatedTotal prometheus.Counter
	DecisionsTotal       *prometheus.CounterVec
	UploadsTotal         prometheus.Counter
	ClientViewsTotal     prometheus.Counter
	OrphanCleanupsTotal  *prometheus.CounterVec

	logger *zap.Logger
}

// New registers all metrics with the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer, nil)
}

// NewWithLogger is New with a logger for instrument panics.
func NewWithLogger(logger *zap.Logger) *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer, logger)
}

// NewWithRegistry registers all metrics with the given registerer. Tests
// pass a fresh registry to avoid duplicate-registration panics.
func NewWithRegistry(registerer prometheus.Registerer, logger *zap.Logger) *Metrics {
	f := promauto.With(registerer)

	if logger == nil {
		logger, _ = zap.NewProduction()
	}

	counter := func(name, help string) prometheus.Counter {
		return f.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help})
	}
	counterVec := func(name, help string, labels ...string) *prometheus.CounterVec {
		return f.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help}, labels)
	}
	gauge := func(name, help string) prometheus.Gauge {
		return f.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help})
	}
	histogramVec := func(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
		return f.NewHistogramVec(prometheus.HistogramOpts{Namespace: namespace, Name: name, Help: help, Buckets: buckets}, labels)
	}

	return &Metrics{
		HTTPRequestsTotal: counterVec("http_requests_total",
			"Total number of HTTP requests", "method", "endpoint", "status"),
		HTTPRequestDuration: histogramVec("http_request_duration_seconds",
			"HTTP request duration in seconds",
			[]float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			"method", "endpoint"),

		DBPoolOpen:  gauge("db_connections_open", "Open database connections"),
		DBPoolInUse: gauge("db_connections_in_use", "Database connections currently in use"),
		DBPoolIdle:  gauge("db_connections_idle", "Idle database connections"),
		DBPoolMax:   gauge("db_connections_max", "Configured connection pool ceiling"),
		DBPoolWaitCount: counter("db_connection_wait_total",
			"Times a request waited for a pooled connection"),
		DBPoolWaitSeconds: counter("db_connection_wait_duration_seconds_total",
			"Cumulative time spent waiting for pooled connections"),
		DBQueryDuration: histogramVec("db_query_duration_seconds",
			"Database query duration in seconds",
			[]float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			"operation", "table"),
		DBQueryErrors: counterVec("db_query_errors_total",
			"Database query errors", "operation", "table"),

		ProjectsTotal:        gauge("projects_total", "Projects currently in the system"),
		PendingProjectsTotal: gauge("pending_projects_total", "Projects awaiting a client decision"),
		ProjectsCreatedTotal: counter("projects_created_total", "Project creation events"),
		DecisionsTotal: counterVec("decisions_total",
			"Client decisions by type", "type"),
		UploadsTotal:     counter("uploads_total", "Confirmed file uploads"),
		ClientViewsTotal: counter("client_views_total", "Client review page views"),
		OrphanCleanupsTotal: counterVec("orphan_cleanups_total",
			"Orphaned object cleanup attempts by result", "result"),

		logger: logger,
	}
}

// safeExecute keeps a broken instrument from taking down a request path.
func (m *Metrics) safeExecute(operation string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			if m.logger != nil {
				m.logger.Error("Panic in metrics operation",
					zap.String("operation", operation),
					zap.Any("panic", r),
				)
			}
		}
	}()
	fn()
}
