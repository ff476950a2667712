package calculator

// Default Bollinger parameters.
const (
	BollingerPeriod     = 20
	BollingerMultiplier = 2.0
)

// Bands holds the Bollinger series aligned with the input closes.
type Bands struct {
	Middle []float64
	Upper  []float64
	Lower  []float64
}

// BollingerBands computes SMA +/- k population standard deviations over a trailing window.
// Indices without a full window are 0.0 in all three series.
func BollingerBands(closes []float64, period int, k float64) Bands {
	n := len(closes)
	b := Bands{
		Middle: make([]float64, n),
		Upper:  make([]float64, n),
		Lower:  make([]float64, n),
	}
	if period <= 0 {
		return b
	}
	for i := period - 1; i < n; i++ {
		window := closes[i+1-period : i+1]
		mean := Mean(window)
		sd := StdDev(window, mean)
		b.Middle[i] = mean
		b.Upper[i] = mean + k*sd
		b.Lower[i] = mean - k*sd
	}
	return b
}
