// Package metrics exposes Prometheus instrumentation for analysis runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "signalsentinel"

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	AnalysesTotal     *prometheus.CounterVec   // labels: state
	StageDuration     *prometheus.HistogramVec // labels: stage
	PredictorFailures prometheus.Counter
	Probability       *prometheus.GaugeVec   // labels: symbol
	SignalsTotal      *prometheus.CounterVec // labels: indicator, signal
	IngestedBars      *prometheus.CounterVec // labels: symbol
	RecorderErrors    *prometheus.CounterVec // labels: sink

	gatherer prometheus.Gatherer
}

// New registers every collector on reg and returns them.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		AnalysesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Analysis runs by terminal state",
		}, []string{"state"}),
		StageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
		PredictorFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictor_failures_total",
			Help:      "Failed calls to the direction classifier",
		}),
		Probability: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_probability",
			Help:      "Latest upward-move probability per symbol",
		}, []string{"symbol"}),
		SignalsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signals_total",
			Help:      "Signals emitted by indicator and signal",
		}, []string{"indicator", "signal"}),
		IngestedBars: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingested_bars_total",
			Help:      "Bars fetched and stored per symbol",
		}, []string{"symbol"}),
		RecorderErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recorder_errors_total",
			Help:      "Failed report writes by sink",
		}, []string{"sink"}),
		gatherer: reg,
	}
}

func (m *Metrics) ObserveRun(state string) {
	if m == nil {
		return
	}
	m.AnalysesTotal.WithLabelValues(state).Inc()
}

func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (m *Metrics) PredictorFailed() {
	if m == nil {
		return
	}
	m.PredictorFailures.Inc()
}

func (m *Metrics) SetProbability(symbol string, p float64) {
	if m == nil {
		return
	}
	m.Probability.WithLabelValues(symbol).Set(p)
}

func (m *Metrics) ObserveSignal(indicator, signal string) {
	if m == nil {
		return
	}
	m.SignalsTotal.WithLabelValues(indicator, signal).Inc()
}

func (m *Metrics) ObserveIngest(symbol string, bars int) {
	if m == nil {
		return
	}
	m.IngestedBars.WithLabelValues(symbol).Add(float64(bars))
}

func (m *Metrics) RecorderFailed(sink string) {
	if m == nil {
		return
	}
	m.RecorderErrors.WithLabelValues(sink).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
