// Package forecast builds the fixed-layout input for the external direction classifier
// and talks to it.
package forecast

import (
	"encoding/binary"
	"fmt"
	"math"

	"SignalSentinel/internal/model"
)

const (
	// DefaultWindowSize is the number of most recent bars fed to the classifier.
	DefaultWindowSize = 60
	// FeatureCount is the number of values per row: close, high, low, open, volume.
	FeatureCount = 5
)

// Tensor is a row-major [rows x FeatureCount] float32 buffer, oldest row first.
type Tensor struct {
	Rows int
	Data []float32
}

// Shape returns the tensor dimensions.
func (t *Tensor) Shape() [2]int { return [2]int{t.Rows, FeatureCount} }

// Bytes encodes the tensor as packed 4-byte floats in native byte order.
func (t *Tensor) Bytes() []byte {
	buf := make([]byte, 4*len(t.Data))
	for i, v := range t.Data {
		binary.NativeEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

// Build lays out the most recent window rows of f, which must be oldest first.
func Build(f model.Frame, window int) (*Tensor, error) {
	if f.Len() == 0 {
		return nil, fmt.Errorf("build features: %w", model.ErrInsufficientData)
	}
	if window <= 0 {
		window = DefaultWindowSize
	}
	w := f.Tail(window)
	rows := w.Len()

	t := &Tensor{Rows: rows, Data: make([]float32, 0, rows*FeatureCount)}
	for i := 0; i < rows; i++ {
		t.Data = append(t.Data,
			float32(w.Close[i]),
			float32(w.High[i]),
			float32(w.Low[i]),
			float32(w.Open[i]),
			float32(w.Volume[i]),
		)
	}
	return t, nil
}

// BuildNewestFirst reverses bars delivered newest first, then builds the tensor.
func BuildNewestFirst(bars []model.Bar, window int) (*Tensor, error) {
	return Build(model.NewFrame(model.ReverseBars(bars)), window)
}
