package prompush

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itemimport/internal/metrics"
)

func TestNewBackend(t *testing.T) {
	t.Parallel()

	_, err := NewBackend("job", "")
	require.Error(t, err)

	b, err := NewBackend("", "http://pushgateway:9091")
	require.NoError(t, err)
	assert.Equal(t, "itemimport", b.jobName)

	b, err = NewBackend("nightly-import", "http://pushgateway:9091")
	require.NoError(t, err)
	assert.Equal(t, "nightly-import", b.jobName)
}

func TestBackend_Counters(t *testing.T) {
	t.Parallel()

	b, err := NewBackend("itemimport", "http://pushgateway:9091")
	require.NoError(t, err)

	b.IncCounter(metrics.RecordsTotal, 5, metrics.Labels{"job": "itemimport", "kind": "parsed"})
	b.IncCounter(metrics.RecordsTotal, 2, metrics.Labels{"job": "itemimport", "kind": "parsed"})
	b.IncCounter(metrics.StepTotal, 1, metrics.Labels{"step": "submit", "status": "success"})
	b.IncCounter(metrics.CallsTotal, 3, metrics.Labels{"status": "failed"})
	b.IncCounter("unknown_metric", 1, nil)

	assert.Equal(t, 7.0, testutil.ToFloat64(b.recordCounter.WithLabelValues("parsed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(b.stepCounter.WithLabelValues("submit", "success")))
	assert.Equal(t, 3.0, testutil.ToFloat64(b.callCounter.WithLabelValues("failed")))
}

func TestBackend_Observations(t *testing.T) {
	t.Parallel()

	b, err := NewBackend("itemimport", "http://pushgateway:9091")
	require.NoError(t, err)

	b.ObserveHistogram(metrics.CallDurationSeconds, 0.3, metrics.Labels{"status": "success"})
	b.ObserveHistogram(metrics.CallDurationSeconds, 0.7, metrics.Labels{"status": "success"})
	b.ObserveHistogram(metrics.StepDurationSeconds, 2, metrics.Labels{"step": "mapping", "status": "success"})
	b.ObserveHistogram("unknown", 1, nil)

	assert.Equal(t, 1, testutil.CollectAndCount(b.callDuration))
	assert.Equal(t, 1, testutil.CollectAndCount(b.stepDuration))

	b.ObserveHistogram(metrics.CallDurationSeconds, 1, metrics.Labels{"status": "failed"})
	assert.Equal(t, 2, testutil.CollectAndCount(b.callDuration, metrics.CallDurationSeconds))
}

func TestBackend_FlushPushesToGateway(t *testing.T) {
	t.Parallel()

	var hits int32
	var body atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/metrics/job/itemimport", r.URL.Path)
		b, _ := io.ReadAll(r.Body)
		body.Store(len(b))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	b, err := NewBackend("itemimport", srv.URL)
	require.NoError(t, err)
	b.IncCounter(metrics.RecordsTotal, 1, metrics.Labels{"kind": "succeeded"})

	require.NoError(t, b.Flush())
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	assert.Greater(t, body.Load().(int), 0)
}

func TestBackend_FlushError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	b, err := NewBackend("itemimport", srv.URL)
	require.NoError(t, err)
	assert.Error(t, b.Flush())
}
