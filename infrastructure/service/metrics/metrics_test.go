package metrics

import (
	"testing"
	"time"

	"github.com/fixora/taskhub/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestAuditCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Recorded(domain.AuditActionUpdate, "Task")
	m.Recorded(domain.AuditActionUpdate, "Task")
	m.Skipped("missing_fields")
	m.Failed("Event")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.AuditRecorded.WithLabelValues("update", "Task")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.AuditSkipped.WithLabelValues("missing_fields")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.AuditWriteFailures.WithLabelValues("Event")))
}

func TestRecordRequest(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordRequest("GET", "/api/v1/tasks/0b7c5a52-3f0e-4e55-9f7c-2d5f1f9a8e11/audit-logs", 200, 10*time.Millisecond)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RequestTotal.WithLabelValues("GET", "/api/v1/tasks/{id}/audit-logs", "200")))
}

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "/api/v1/events/{id}/posters", NormalizePath("/api/v1/events/42/posters"))
	assert.Equal(t, "/a/{id}/{id}", NormalizePath("/a/1/2"))
	assert.Equal(t, "/health", NormalizePath("/health"))
}

func TestLogin(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.Login(false)
	m.Login(true)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.LoginAttempts.WithLabelValues("failure")))
}
