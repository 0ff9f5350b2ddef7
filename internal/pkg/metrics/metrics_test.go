package metrics_test

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/ammerola/analytics-reports/internal/pkg/metrics"
)

func TestRecordHTTPRequest(t *testing.T) {
	counter := metrics.HTTPRequestsTotal.WithLabelValues("GET", "/api/v1/analytics/{id}", "200")
	before := testutil.ToFloat64(counter)

	metrics.RecordHTTPRequest("GET", "/api/v1/analytics/{id}", 200, 15*time.Millisecond)

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestRecordItineraryFetch(t *testing.T) {
	counter := metrics.ItineraryFetchTotal.WithLabelValues("empty")
	before := testutil.ToFloat64(counter)

	metrics.RecordItineraryFetch("empty", time.Millisecond)
	metrics.RecordItineraryFetch("empty", time.Millisecond)

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}

func TestRecordTask(t *testing.T) {
	ok := metrics.TasksProcessedTotal.WithLabelValues("analytics:snapshot", "ok")
	failed := metrics.TasksProcessedTotal.WithLabelValues("analytics:snapshot", "error")
	okBefore, failedBefore := testutil.ToFloat64(ok), testutil.ToFloat64(failed)

	metrics.RecordTask("analytics:snapshot", nil, time.Second)
	metrics.RecordTask("analytics:snapshot", errors.New("upload failed"), time.Second)

	assert.Equal(t, okBefore+1, testutil.ToFloat64(ok))
	assert.Equal(t, failedBefore+1, testutil.ToFloat64(failed))
}
