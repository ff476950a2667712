package calculator

// OBV returns the running on-balance volume. obv[0] is always 0.
// When the inputs differ in length the shorter one bounds the result.
func OBV(closes, volumes []float64) []float64 {
	n := len(closes)
	if len(volumes) < n {
		n = len(volumes)
	}
	obv := make([]float64, n)
	for i := 1; i < n; i++ {
		obv[i] = obv[i-1]
		switch {
		case closes[i] > closes[i-1]:
			obv[i] += volumes[i]
		case closes[i] < closes[i-1]:
			obv[i] -= volumes[i]
		}
	}
	return obv
}
