package calculator

// RSI computes a simple-average relative strength index over the most recent period+1 closes.
// Returns 0.0 when fewer than period+1 samples exist.
//
// Unlike Wilder's RSI, gains and losses are plain sums over one window, and a window with
// no losses forces RS to 0, which yields RSI 0 rather than 100.
func RSI(series []float64, period int) float64 {
	if period <= 0 || len(series) < period+1 {
		return 0
	}
	window := series[len(series)-period-1:]

	var gain, loss float64
	for i := 1; i < len(window); i++ {
		change := window[i] - window[i-1]
		if change > 0 {
			gain += change
		} else {
			loss -= change
		}
	}
	gain /= float64(period)
	loss /= float64(period)

	rs := 0.0
	if loss != 0 {
		rs = gain / loss
	}
	return 100.0 - 100.0/(1.0+rs)
}
