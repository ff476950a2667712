package metrics

import (
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

func TestMetrics_Record(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveRun("DONE")
	m.ObserveRun("DONE")
	m.ObserveRun("FAILED")
	m.PredictorFailed()
	m.SetProbability("AAPL", 0.61)
	m.ObserveSignal("RSI", "BUY")
	m.ObserveIngest("AAPL", 250)
	m.RecorderFailed("redis")
	m.ObserveStage("CLASSIFY", 50*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AnalysesTotal.WithLabelValues("DONE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AnalysesTotal.WithLabelValues("FAILED")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PredictorFailures))
	assert.Equal(t, 0.61, testutil.ToFloat64(m.Probability.WithLabelValues("AAPL")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SignalsTotal.WithLabelValues("RSI", "BUY")))
	assert.Equal(t, 250.0, testutil.ToFloat64(m.IngestedBars.WithLabelValues("AAPL")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RecorderErrors.WithLabelValues("redis")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.StageDuration))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRun("DONE")
		m.ObserveStage("EMIT", time.Second)
		m.PredictorFailed()
		m.SetProbability("X", 1)
		m.ObserveSignal("SMA", "SELL")
		m.ObserveIngest("X", 1)
		m.RecorderFailed("sqlite")
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveRun("DONE")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `signalsentinel_analyses_total{state="DONE"} 1`))
}
