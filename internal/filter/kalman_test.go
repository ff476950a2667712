package filter

import (
	"math"
	"testing"

	"SignalSentinel/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmooth_LengthPreserved(t *testing.T) {
	for _, n := range []int{0, 1, 2, 17, 250} {
		series := make([]float64, n)
		for i := range series {
			series[i] = float64(i*i%13) + 100
		}
		assert.Len(t, Smooth(series, DefaultParams()), n)
	}
}

func TestSmooth_Empty(t *testing.T) {
	out := Smooth(nil, DefaultParams())
	require.NotNil(t, out)
	assert.Empty(t, out)
}

func TestSmooth_FirstStep(t *testing.T) {
	// mean = 15; predict -> P = 1.01; gain = 1.01/1.02
	series := []float64{10, 20}
	out := Smooth(series, DefaultParams())

	gain := 1.01 / 1.02
	want := 15 + gain*(10-15)
	assert.InDelta(t, want, out[0], 1e-12)

	p := (1 - gain) * 1.01
	p += 0.01
	gain2 := p / (p + 0.01)
	assert.InDelta(t, want+gain2*(20-want), out[1], 1e-12)
}

func TestSmooth_ConstantSeriesIsFixedPoint(t *testing.T) {
	out := Smooth([]float64{42, 42, 42, 42}, DefaultParams())
	for _, v := range out {
		assert.InDelta(t, 42.0, v, 1e-12)
	}
}

func TestSmooth_InitialEstimateOverride(t *testing.T) {
	start := 0.0
	p := DefaultParams()
	p.InitialEstimate = &start

	out := Smooth([]float64{10}, p)
	assert.InDelta(t, 1.01/1.02*10, out[0], 1e-12)
}

func TestSmooth_TracksSignal(t *testing.T) {
	series := make([]float64, 200)
	for i := range series {
		series[i] = 100 + 10*math.Sin(float64(i)/20)
	}
	out := Smooth(series, DefaultParams())
	for i := 50; i < len(series); i++ {
		assert.InDelta(t, series[i], out[i], 1.0)
	}
}

func TestState_PredictCorrect(t *testing.T) {
	st := State{Estimate: 0, Variance: 1, ProcessNoise: 0.01, MeasurementNoise: 0.01}
	st.Predict()
	assert.InDelta(t, 1.01, st.Variance, 1e-12)
	assert.Equal(t, 0.0, st.Estimate)

	st.Correct(1)
	assert.Less(t, st.Variance, 1.01)
	assert.InDelta(t, 1.01/1.02, st.Estimate, 1e-12)
}

func TestFrame_ColumnsIndependent(t *testing.T) {
	f := model.Frame{
		Close:  []float64{1, 2, 3},
		High:   []float64{1, 2, 3},
		Low:    []float64{3, 2, 1},
		Open:   []float64{5, 5, 5},
		Volume: []float64{1e6, 2e6, 3e6},
	}
	out := Frame(f, DefaultParams())

	assert.Equal(t, Smooth(f.Close, DefaultParams()), out.Close)
	assert.Equal(t, out.Close, out.High)
	assert.Equal(t, Smooth(f.Low, DefaultParams()), out.Low)
	assert.Equal(t, Smooth(f.Volume, DefaultParams()), out.Volume)
	assert.Len(t, out.Open, 3)
	assert.Equal(t, []float64{1, 2, 3}, f.Close, "input must not be mutated")
}
