// Package filter smooths OHLCV columns with a one-dimensional Kalman filter.
//
// Each column gets its own filter state. Nothing persists between calls.
package filter

import (
	"SignalSentinel/internal/model"
)

// Default noise parameters.
const (
	DefaultInitialVariance  = 1.0
	DefaultProcessNoise     = 0.01
	DefaultMeasurementNoise = 0.01
)

// Params configures a single smoothing pass.
type Params struct {
	InitialVariance  float64
	ProcessNoise     float64
	MeasurementNoise float64
	// InitialEstimate overrides the series mean as the starting estimate.
	InitialEstimate *float64
}

// DefaultParams returns the fixed per-call parameters.
func DefaultParams() Params {
	return Params{
		InitialVariance:  DefaultInitialVariance,
		ProcessNoise:     DefaultProcessNoise,
		MeasurementNoise: DefaultMeasurementNoise,
	}
}

// State is the estimator state for one column.
type State struct {
	Estimate         float64
	Variance         float64
	ProcessNoise     float64
	MeasurementNoise float64
}

// Predict applies the identity transition: only the uncertainty grows.
func (s *State) Predict() {
	s.Variance += s.ProcessNoise
}

// Correct folds measurement v into the estimate.
func (s *State) Correct(v float64) {
	innovation := v - s.Estimate
	gain := s.Variance / (s.Variance + s.MeasurementNoise)
	s.Estimate += gain * innovation
	s.Variance = (1 - gain) * s.Variance
}

// Smooth runs predict/correct over series and returns the estimate after each sample.
// An empty series returns an empty series.
func Smooth(series []float64, p Params) []float64 {
	out := make([]float64, len(series))
	if len(series) == 0 {
		return out
	}

	st := State{
		Estimate:         mean(series),
		Variance:         p.InitialVariance,
		ProcessNoise:     p.ProcessNoise,
		MeasurementNoise: p.MeasurementNoise,
	}
	if p.InitialEstimate != nil {
		st.Estimate = *p.InitialEstimate
	}

	for i, v := range series {
		st.Predict()
		st.Correct(v)
		out[i] = st.Estimate
	}
	return out
}

// Frame smooths the five numeric columns of f independently.
func Frame(f model.Frame, p Params) model.Frame {
	return model.Frame{
		Dates:  append(f.Dates[:0:0], f.Dates...),
		Close:  Smooth(f.Close, p),
		High:   Smooth(f.High, p),
		Low:    Smooth(f.Low, p),
		Open:   Smooth(f.Open, p),
		Volume: Smooth(f.Volume, p),
	}
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
