package metrics

import (
	"regexp"
	"strconv"
	"time"

	"github.com/fixora/taskhub/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the audit trail and HTTP layer.
type Metrics struct {
	AuditRecorded      *prometheus.CounterVec
	AuditSkipped       *prometheus.CounterVec
	AuditWriteFailures *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
	RequestTotal       *prometheus.CounterVec
	LoginAttempts      *prometheus.CounterVec
}

var idPathSegment = regexp.MustCompile(`/([0-9]+|[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12})(/|$)`)

// New registers all collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AuditRecorded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "taskhub_audit_entries_recorded_total",
			Help: "Total number of audit entries appended",
		}, []string{"action", "resource_type"}),
		AuditSkipped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "taskhub_audit_entries_skipped_total",
			Help: "Total number of audit requests dropped before writing",
		}, []string{"reason"}),
		AuditWriteFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "taskhub_audit_write_failures_total",
			Help: "Total number of audit entries the store failed to append",
		}, []string{"resource_type"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "taskhub_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		RequestTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "taskhub_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		LoginAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "taskhub_login_attempts_total",
			Help: "Login attempts by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) Recorded(action domain.AuditAction, resourceType string) {
	m.AuditRecorded.WithLabelValues(string(action), resourceType).Inc()
}

func (m *Metrics) Skipped(reason string) {
	m.AuditSkipped.WithLabelValues(reason).Inc()
}

func (m *Metrics) Failed(resourceType string) {
	m.AuditWriteFailures.WithLabelValues(resourceType).Inc()
}

// RecordRequest records duration and count for an HTTP request.
func (m *Metrics) RecordRequest(method, path string, statusCode int, duration time.Duration) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	m.RequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
	m.RequestTotal.WithLabelValues(method, path, status).Inc()
}

func (m *Metrics) Login(success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	m.LoginAttempts.WithLabelValues(outcome).Inc()
}

// NormalizePath replaces numeric and uuid path segments with {id}.
func NormalizePath(path string) string {
	for {
		next := idPathSegment.ReplaceAllString(path, "/{id}$2")
		if next == path {
			return next
		}
		path = next
	}
}
