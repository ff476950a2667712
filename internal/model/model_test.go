package model

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(i int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
}

func TestNewFrame_ColumnsAlignWithBars(t *testing.T) {
	bars := []Bar{
		{Date: day(0), Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 100},
		{Date: day(1), Open: 1.5, High: 2.5, Low: 1, Close: 2, Volume: 200},
	}
	f := NewFrame(bars)
	require.Equal(t, 2, f.Len())
	assert.Equal(t, []float64{1.5, 2}, f.Close)
	assert.Equal(t, []float64{2, 2.5}, f.High)
	assert.Equal(t, []float64{0.5, 1}, f.Low)
	assert.Equal(t, []float64{1, 1.5}, f.Open)
	assert.Equal(t, []float64{100, 200}, f.Volume)
	assert.Equal(t, day(1), f.Dates[1])
}

func TestFrameTail(t *testing.T) {
	bars := make([]Bar, 5)
	for i := range bars {
		bars[i] = Bar{Date: day(i), Close: float64(i)}
	}
	f := NewFrame(bars)

	tail := f.Tail(2)
	assert.Equal(t, []float64{3, 4}, tail.Close)

	tail.Close[0] = 99
	assert.Equal(t, 3.0, f.Close[3], "tail must not alias the source frame")

	assert.Equal(t, 5, f.Tail(60).Len())
}

func TestReverseBars(t *testing.T) {
	bars := []Bar{{Date: day(2)}, {Date: day(1)}, {Date: day(0)}}
	rev := ReverseBars(bars)
	assert.Equal(t, day(0), rev[0].Date)
	assert.Equal(t, day(2), rev[2].Date)
	assert.Equal(t, day(2), bars[0].Date)
}

func TestLast(t *testing.T) {
	assert.Equal(t, ReadingMissing, Last(nil).Status)
	r := Last([]float64{1, 2, 3})
	assert.Equal(t, ReadingOK, r.Status)
	assert.Equal(t, 3.0, r.Value)
}

func TestFormattedValue(t *testing.T) {
	tests := []struct {
		name string
		res  IndicatorResult
		want string
	}{
		{"real", IndicatorResult{Value: Some(12.345), Kind: KindReal}, "12.35"},
		{"negative real", IndicatorResult{Value: Some(-0.5), Kind: KindReal}, "-0.50"},
		{"count", IndicatorResult{Value: Some(1500000), Kind: KindCount}, "1500000"},
		{"count rounds", IndicatorResult{Value: Some(-99.6), Kind: KindCount}, "-100"},
		{"missing", IndicatorResult{Value: Missing()}, "N/A"},
		{"nan", IndicatorResult{Value: Some(math.NaN())}, "N/A"},
		{"insufficient", IndicatorResult{Value: Insufficient()}, "0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.res.FormattedValue())
		})
	}
}

func TestPredictionText(t *testing.T) {
	assert.Equal(t, "Buy(0.61)", Prediction{Probability: 0.6123, Signal: SignalBuy}.Text())
	assert.Equal(t, "Neutral(0.50)", Prediction{Probability: 0.5, Signal: SignalNeutral}.Text())
	assert.Equal(t, "prediction error", Prediction{Signal: SignalError}.Text())
	assert.Equal(t, "prediction error", Prediction{Probability: 0.9, Signal: SignalBuy, Err: ErrExternalFailure}.Text())
}

func TestReportTriples(t *testing.T) {
	r := &Report{Indicators: []IndicatorResult{
		{Name: "SMA", Value: Some(42), Signal: SignalNeutral},
		{Name: "OBV", Value: Some(2e6), Kind: KindCount, Signal: SignalBuy},
	}}
	assert.Equal(t, []Triple{
		{Name: "SMA", Value: "42.00", Signal: SignalNeutral},
		{Name: "OBV", Value: "2000000", Signal: SignalBuy},
	}, r.Triples())
}
