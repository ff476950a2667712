package model

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Signal is the discrete trading call derived from an indicator.
type Signal string

const (
	SignalBuy     Signal = "BUY"
	SignalNeutral Signal = "NEUTRAL"
	SignalSell    Signal = "SELL"
	SignalError   Signal = "ERROR"
)

// Label returns the human readable form used in reports.
func (s Signal) Label() string {
	switch s {
	case SignalBuy:
		return "Buy"
	case SignalNeutral:
		return "Neutral"
	case SignalSell:
		return "Sell"
	default:
		return "Error"
	}
}

// ReadingStatus tells a classifier whether a value can be trusted.
type ReadingStatus int

const (
	ReadingMissing ReadingStatus = iota
	ReadingOK
	// ReadingInsufficient marks a degenerate zero produced by a short history.
	ReadingInsufficient
)

// Reading is the latest value of an indicator as seen by a classifier.
type Reading struct {
	Value  float64
	Status ReadingStatus
}

// Some wraps a valid value.
func Some(v float64) Reading { return Reading{Value: v, Status: ReadingOK} }

// Missing is a reading with no upstream value.
func Missing() Reading { return Reading{Status: ReadingMissing} }

// Insufficient is the degenerate zero emitted when history is shorter than the lookback.
func Insufficient() Reading { return Reading{Status: ReadingInsufficient} }

// Last returns the latest element of series, or Missing when it is empty.
func Last(series []float64) Reading {
	if len(series) == 0 {
		return Missing()
	}
	return Some(series[len(series)-1])
}

// ValueKind selects how a value is rendered.
type ValueKind int

const (
	KindReal ValueKind = iota
	KindCount
)

// IndicatorResult is one named indicator value with its signal.
type IndicatorResult struct {
	Name   string
	Value  Reading
	Kind   ValueKind
	Extra  map[string]float64 // secondary outputs such as the MACD signal line or lower band
	Signal Signal
}

// FormattedValue renders reals with two decimals and counts as plain integers.
// Missing and non-finite values render as N/A.
func (r IndicatorResult) FormattedValue() string {
	v := r.Value.Value
	if r.Value.Status == ReadingMissing || math.IsNaN(v) || math.IsInf(v, 0) {
		return "N/A"
	}
	d := decimal.NewFromFloat(v)
	if r.Kind == KindCount {
		return d.Round(0).StringFixed(0)
	}
	return d.StringFixed(2)
}

// Triple is the (name, value, signal) row handed to display collaborators.
type Triple struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Signal Signal `json:"signal"`
}

// Triple returns the display row for r.
func (r IndicatorResult) Triple() Triple {
	return Triple{Name: r.Name, Value: r.FormattedValue(), Signal: r.Signal}
}

// Prediction is the outcome of the external classifier branch.
type Prediction struct {
	Probability float64
	Signal      Signal
	Err         error
}

// Text renders the prediction the way reports show it.
func (p Prediction) Text() string {
	if p.Err != nil || p.Signal == SignalError {
		return "prediction error"
	}
	return p.Signal.Label() + "(" + decimal.NewFromFloat(p.Probability).StringFixed(2) + ")"
}

// RunState is a state of the per-ticker analysis state machine.
type RunState string

const (
	StateFetchHistory       RunState = "FETCH_HISTORY"
	StateFilterColumns      RunState = "FILTER_COLUMNS"
	StateBuildFeatures      RunState = "BUILD_FEATURES"
	StateClassify           RunState = "CLASSIFY"
	StateComputeIndicators  RunState = "COMPUTE_INDICATORS"
	StateClassifyIndicators RunState = "CLASSIFY_INDICATORS"
	StateEmit               RunState = "EMIT"
	StateDone               RunState = "DONE"
	StateFailed             RunState = "FAILED"
)

// Report is everything one analysis run produced for a ticker.
type Report struct {
	RunID       string
	Symbol      string
	State       RunState
	Bars        int
	AsOf        time.Time // date of the latest bar
	Indicators  []IndicatorResult
	Prediction  Prediction
	Err         error
	GeneratedAt time.Time
}

// Triples returns the display rows for every indicator in order.
func (r *Report) Triples() []Triple {
	out := make([]Triple, len(r.Indicators))
	for i, ind := range r.Indicators {
		out[i] = ind.Triple()
	}
	return out
}
