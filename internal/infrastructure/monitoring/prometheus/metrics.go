package prometheus

import (
	"fmt"
	"time"
)

// AppMetrics holds all application metrics.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPRequestSize     HistogramVec
	HTTPResponseSize    HistogramVec
	HTTPActiveRequests  GaugeVec

	// Species submission pipeline
	SubmissionsTotal          CounterVec
	SubmissionDuration        HistogramVec
	ValidationViolationsTotal CounterVec
	SpeciesTotalCount         GaugeVec
	RetractionsTotal          CounterVec

	// Descriptor resolution
	ResolutionsTotal   CounterVec
	ResolutionDuration HistogramVec

	// Conversion oracle
	OracleCallsTotal       CounterVec
	OracleCallDuration     HistogramVec
	OracleCacheHitsTotal   CounterVec
	OracleCacheMissesTotal CounterVec

	// Infrastructure
	DBConnectionPoolSize     GaugeVec
	DBConnectionPoolActive   GaugeVec
	DBQueryDuration          HistogramVec
	CacheHitsTotal           CounterVec
	CacheMissesTotal         CounterVec
	EventsPublishedTotal     CounterVec
	EventPublishDuration     HistogramVec
	ArchiveOperationsTotal   CounterVec
	ArchiveOperationDuration HistogramVec

	// System health
	ServiceUptime     GaugeVec
	HealthCheckStatus GaugeVec
	ErrorsTotal       CounterVec
}

// Default buckets
var (
	DefaultHTTPDurationBuckets   = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultOracleDurationBuckets = []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}
	DefaultSizeBuckets           = []float64{100, 1000, 10000, 100000, 1000000, 10000000}
	DefaultDBDurationBuckets     = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5}
)

// NewAppMetrics registers all metrics and returns AppMetrics struct.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	// HTTP
	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPRequestSize = collector.RegisterHistogram("http_request_size_bytes", "HTTP request size", DefaultSizeBuckets, "method", "path")
	m.HTTPResponseSize = collector.RegisterHistogram("http_response_size_bytes", "HTTP response size", DefaultSizeBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests", "method", "path")

	// Submission pipeline
	m.SubmissionsTotal = collector.RegisterCounter("species_submissions_total", "Species submissions", "mode", "outcome")
	m.SubmissionDuration = collector.RegisterHistogram("species_submission_duration_seconds", "Species submission duration", DefaultHTTPDurationBuckets, "mode")
	m.ValidationViolationsTotal = collector.RegisterCounter("species_validation_violations_total", "Validation violations by field", "field")
	m.SpeciesTotalCount = collector.RegisterGauge("species_total_count", "Total stored species", "status")
	m.RetractionsTotal = collector.RegisterCounter("species_retractions_total", "Species retractions")

	// Resolution
	m.ResolutionsTotal = collector.RegisterCounter("descriptor_resolutions_total", "Descriptor resolutions", "outcome")
	m.ResolutionDuration = collector.RegisterHistogram("descriptor_resolution_duration_seconds", "Descriptor resolution duration", DefaultOracleDurationBuckets)

	// Oracle
	m.OracleCallsTotal = collector.RegisterCounter("oracle_calls_total", "Conversion oracle calls", "operation", "outcome")
	m.OracleCallDuration = collector.RegisterHistogram("oracle_call_duration_seconds", "Conversion oracle call duration", DefaultOracleDurationBuckets, "operation")
	m.OracleCacheHitsTotal = collector.RegisterCounter("oracle_cache_hits_total", "Oracle cache hits", "operation")
	m.OracleCacheMissesTotal = collector.RegisterCounter("oracle_cache_misses_total", "Oracle cache misses", "operation")

	// Infrastructure
	m.DBConnectionPoolSize = collector.RegisterGauge("db_pool_size", "Database connection pool size", "db")
	m.DBConnectionPoolActive = collector.RegisterGauge("db_pool_active", "Database active connections", "db")
	m.DBQueryDuration = collector.RegisterHistogram("db_query_duration_seconds", "Database query duration", DefaultDBDurationBuckets, "db", "operation")
	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")
	m.EventsPublishedTotal = collector.RegisterCounter("events_published_total", "Domain events published", "topic", "status")
	m.EventPublishDuration = collector.RegisterHistogram("event_publish_duration_seconds", "Event publish duration", DefaultHTTPDurationBuckets, "topic")
	m.ArchiveOperationsTotal = collector.RegisterCounter("archive_operations_total", "Log archive operations", "operation", "status")
	m.ArchiveOperationDuration = collector.RegisterHistogram("archive_operation_duration_seconds", "Log archive operation duration", DefaultHTTPDurationBuckets, "operation")

	// System health
	m.ServiceUptime = collector.RegisterGauge("service_uptime_seconds", "Service uptime", "service")
	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Total errors", "component", "error_type", "severity")

	return m
}

// Helpers

func RecordHTTPRequest(metrics *AppMetrics, method, path string, statusCode int, duration time.Duration, reqSize, respSize int64) {
	status := fmt.Sprintf("%d", statusCode)
	metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	metrics.HTTPRequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	metrics.HTTPResponseSize.WithLabelValues(method, path).Observe(float64(respSize))
}

func RecordSubmission(metrics *AppMetrics, mode, outcome string, duration time.Duration) {
	metrics.SubmissionsTotal.WithLabelValues(mode, outcome).Inc()
	metrics.SubmissionDuration.WithLabelValues(mode).Observe(duration.Seconds())
}

func RecordViolations(metrics *AppMetrics, fields []string) {
	for _, field := range fields {
		metrics.ValidationViolationsTotal.WithLabelValues(field).Inc()
	}
}

func RecordOracleCall(metrics *AppMetrics, operation string, ok bool, err error, duration time.Duration) {
	outcome := "hit"
	switch {
	case err != nil:
		outcome = "error"
	case !ok:
		outcome = "miss"
	}
	metrics.OracleCallsTotal.WithLabelValues(operation, outcome).Inc()
	metrics.OracleCallDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func RecordDBQuery(metrics *AppMetrics, db, operation string, duration time.Duration, err error) {
	metrics.DBQueryDuration.WithLabelValues(db, operation).Observe(duration.Seconds())
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues(db, "query_error", "error").Inc()
	}
}

func RecordCacheAccess(metrics *AppMetrics, cache string, hit bool) {
	if hit {
		metrics.CacheHitsTotal.WithLabelValues(cache).Inc()
	} else {
		metrics.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
}

func RecordEventPublish(metrics *AppMetrics, topic string, err error, duration time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.EventsPublishedTotal.WithLabelValues(topic, status).Inc()
	metrics.EventPublishDuration.WithLabelValues(topic).Observe(duration.Seconds())
}

func RecordError(metrics *AppMetrics, component, errorType, severity string) {
	metrics.ErrorsTotal.WithLabelValues(component, errorType, severity).Inc()
}
