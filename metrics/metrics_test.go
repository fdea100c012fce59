package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordFetch(t *testing.T) {
	m := New()
	m.RecordFetch(true, 10*time.Millisecond)
	m.RecordFetch(true, 20*time.Millisecond)
	m.RecordFetch(false, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.fetchesTotal.WithLabelValues(ResultSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetchesTotal.WithLabelValues(ResultFailure)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.fetchDuration))
}

func TestRecordReport(t *testing.T) {
	m := New()
	m.RecordReport(5, 1, 2, 0)
	m.RecordReport(6, 0, 1, 3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.reportsLoaded))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.testsByStatus.WithLabelValues("passed")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.testsByStatus.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.testsByStatus.WithLabelValues("pending")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.testsByStatus.WithLabelValues("todo")))
}

func TestInstancesAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.RecordServed("jsonp")

	assert.Equal(t, 1.0, testutil.ToFloat64(a.scriptsServed.WithLabelValues("jsonp")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.scriptsServed.WithLabelValues("jsonp")))
}

func TestHandler(t *testing.T) {
	m := New()
	m.RecordServed("json")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `tangview_served_total{format="json"} 1`)
}
