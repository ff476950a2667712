package calculator

// DaysToCoverLookback is the default number of recent sessions averaged.
const DaysToCoverLookback = 30

// VolumePoint pairs a raw volume with its z-score over the whole series.
type VolumePoint struct {
	Volume float64
	ZScore float64
}

// VolumeDeviation returns, per sample, the volume and its population z-score.
// A series with zero deviation gets z-scores of 0.
func VolumeDeviation(volumes []float64) []VolumePoint {
	out := make([]VolumePoint, len(volumes))
	if len(volumes) == 0 {
		return out
	}
	mean := Mean(volumes)
	sd := StdDev(volumes, mean)
	for i, v := range volumes {
		z := 0.0
		if sd != 0 {
			z = (v - mean) / sd
		}
		out[i] = VolumePoint{Volume: v, ZScore: z}
	}
	return out
}

// DaysToCover divides the short position by the average of the most recent lookback volumes.
// Empty input or a zero average yields 0.0.
func DaysToCover(volumes []float64, totalShortPositions float64, lookback int) float64 {
	if len(volumes) == 0 {
		return 0
	}
	if lookback <= 0 || lookback > len(volumes) {
		lookback = len(volumes)
	}
	avg := Mean(volumes[len(volumes)-lookback:])
	if avg == 0 {
		return 0
	}
	return totalShortPositions / avg
}
