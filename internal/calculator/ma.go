package calculator

// SMA returns the arithmetic mean of the last period samples.
// A short series yields 0.0 rather than an error so callers can map it to a neutral call.
func SMA(series []float64, period int) float64 {
	if period <= 0 || len(series) < period {
		return 0
	}
	sum := 0.0
	for i := len(series) - period; i < len(series); i++ {
		sum += series[i]
	}
	return sum / float64(period)
}

// EMAList returns the exponential moving average at every index.
// The recursion is seeded with series[0] instead of an SMA warm-up, so ema[0] == series[0].
func EMAList(series []float64, period int) []float64 {
	if len(series) == 0 {
		return []float64{}
	}
	if period < 1 {
		period = 1
	}
	multiplier := 2.0 / float64(period+1)
	ema := make([]float64, len(series))
	ema[0] = series[0]
	for i := 1; i < len(series); i++ {
		ema[i] = (series[i]-ema[i-1])*multiplier + ema[i-1]
	}
	return ema
}
