package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordUpstreamCall(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("test", reg)

	m.RecordUpstreamCall("dexscreener", "pairs", "success", 120*time.Millisecond, 0, false)
	m.RecordUpstreamCall("markets", "top-holders", "success", time.Second, 50, true)
	m.RecordUpstreamCall("markets", "top-holders", "error", time.Second, 50, false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamCalls.WithLabelValues("dexscreener", "pairs", "success")))
	assert.Equal(t, 100.0, testutil.ToFloat64(m.UpstreamCredits.WithLabelValues("markets")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHits.WithLabelValues("markets")))
}

func TestMetrics_RecordReport(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("test", reg)

	m.RecordReport("success", 2*time.Second, 120, "B")
	m.RecordReport("ledger_exhausted", time.Second, 0, "")
	m.RecordSourceDegraded("insiders")
	m.RecordDBQuery("postgres", "insert", time.Millisecond, errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReportsTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HealthGrades.WithLabelValues("B")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SourceDegraded.WithLabelValues("insiders")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DBQueryErrors.WithLabelValues("postgres", "insert")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordUpstreamCall("a", "b", "c", time.Second, 1, true)
		m.RecordReport("success", time.Second, 1, "A")
		m.RecordSourceDegraded("x")
		m.RecordDBQuery("d", "o", time.Second, nil)
	})
}

func TestHandlerFor(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("test", reg)
	m.RecordSourceDegraded("price")

	rec := httptest.NewRecorder()
	HandlerFor(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "test_report_source_degraded_total"))
}
