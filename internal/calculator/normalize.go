package calculator

import (
	"fmt"
	"math"
	"time"

	"SignalSentinel/internal/model"
)

// MinMax scans series and returns its lowest and highest value.
func MinMax(series []float64) (lo, hi float64, err error) {
	if len(series) == 0 {
		return 0, 0, fmt.Errorf("min-max of empty series: %w", model.ErrInvalidInput)
	}
	lo = math.Inf(1)
	hi = math.Inf(-1)
	for _, v := range series {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi, nil
}

// Normalize rescales series to [0,1]. A constant series maps to all 1.0.
func Normalize(series []float64) ([]float64, error) {
	lo, hi, err := MinMax(series)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	out := make([]float64, len(series))
	rng := hi - lo
	for i, v := range series {
		if rng == 0 {
			out[i] = 1.0
			continue
		}
		out[i] = (v - lo) / rng
	}
	return out, nil
}

// NormalizeFrame rescales every price and volume column of f independently.
func NormalizeFrame(f model.Frame) (model.Frame, error) {
	out := model.Frame{Dates: append([]time.Time(nil), f.Dates...)}
	cols := []struct {
		name string
		in   []float64
		out  *[]float64
	}{
		{"close", f.Close, &out.Close},
		{"high", f.High, &out.High},
		{"low", f.Low, &out.Low},
		{"open", f.Open, &out.Open},
		{"volume", f.Volume, &out.Volume},
	}
	for _, c := range cols {
		scaled, err := Normalize(c.in)
		if err != nil {
			return model.Frame{}, fmt.Errorf("column %s: %w", c.name, err)
		}
		*c.out = scaled
	}
	return out, nil
}
