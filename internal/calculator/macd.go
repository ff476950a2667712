package calculator

// Default MACD periods.
const (
	MACDShortPeriod  = 12
	MACDLongPeriod   = 26
	MACDSignalPeriod = 9
)

// MACD returns the MACD line and its signal line, both as long as closes.
// Both EMAs run over the full series from the first sample, so early values
// are not warmed up the way charting packages usually do it.
func MACD(closes []float64, shortPeriod, longPeriod, signalPeriod int) (macd, signal []float64) {
	shortEMA := EMAList(closes, shortPeriod)
	longEMA := EMAList(closes, longPeriod)

	macd = make([]float64, len(closes))
	for i := range macd {
		macd[i] = shortEMA[i] - longEMA[i]
	}
	return macd, EMAList(macd, signalPeriod)
}
