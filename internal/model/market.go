package model

import (
	"sort"
	"time"
)

// Bar is one trading day for one ticker.
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// Frame is a column view of a run of bars. Index i of every column refers to Dates[i].
type Frame struct {
	Dates  []time.Time
	Close  []float64
	High   []float64
	Low    []float64
	Open   []float64
	Volume []float64
}

// NewFrame splits bars (oldest first) into independent columns.
func NewFrame(bars []Bar) Frame {
	f := Frame{
		Dates:  make([]time.Time, len(bars)),
		Close:  make([]float64, len(bars)),
		High:   make([]float64, len(bars)),
		Low:    make([]float64, len(bars)),
		Open:   make([]float64, len(bars)),
		Volume: make([]float64, len(bars)),
	}
	for i, b := range bars {
		f.Dates[i] = b.Date
		f.Close[i] = b.Close
		f.High[i] = b.High
		f.Low[i] = b.Low
		f.Open[i] = b.Open
		f.Volume[i] = float64(b.Volume)
	}
	return f
}

// Len returns the number of rows.
func (f Frame) Len() int { return len(f.Close) }

// Tail returns the most recent n rows. The result shares no memory with f.
func (f Frame) Tail(n int) Frame {
	start := f.Len() - n
	if start < 0 {
		start = 0
	}
	return Frame{
		Dates:  append([]time.Time(nil), f.Dates[start:]...),
		Close:  append([]float64(nil), f.Close[start:]...),
		High:   append([]float64(nil), f.High[start:]...),
		Low:    append([]float64(nil), f.Low[start:]...),
		Open:   append([]float64(nil), f.Open[start:]...),
		Volume: append([]float64(nil), f.Volume[start:]...),
	}
}

// ReverseBars returns a reversed copy of bars.
func ReverseBars(bars []Bar) []Bar {
	out := make([]Bar, len(bars))
	for i, b := range bars {
		out[len(bars)-1-i] = b
	}
	return out
}

// SortBars orders bars by date ascending in place.
func SortBars(bars []Bar) {
	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
}
