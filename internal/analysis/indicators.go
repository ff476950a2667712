package analysis

import (
	"SignalSentinel/internal/calculator"
	"SignalSentinel/internal/model"
)

// ComputeIndicators derives the latest value of every indicator from f.
// An empty frame leaves every reading missing. Indicators whose lookback exceeds
// the available history are marked insufficient instead of reporting their zero.
func ComputeIndicators(f model.Frame, p Params) *model.IndicatorSet {
	set := &model.IndicatorSet{}
	n := f.Len()
	if n == 0 {
		return set
	}

	if n < p.SMAPeriod {
		set.SMA = model.Insufficient()
	} else {
		set.SMA = model.Some(calculator.SMA(f.Close, p.SMAPeriod))
	}

	if n < p.RSIPeriod+1 {
		set.RSI = model.Insufficient()
	} else {
		set.RSI = model.Some(calculator.RSI(f.Close, p.RSIPeriod))
	}

	set.OBV = model.Last(calculator.OBV(f.Close, f.Volume))

	macd, signal := calculator.MACD(f.Close, p.MACDShort, p.MACDLong, p.MACDSignal)
	set.MACD = model.Last(macd)
	set.MACDSignal = model.Last(signal)

	if n < p.BollingerPeriod {
		set.BollingerMiddle = model.Insufficient()
		set.BollingerUpper = model.Insufficient()
		set.BollingerLower = model.Insufficient()
	} else {
		bands := calculator.BollingerBands(f.Close, p.BollingerPeriod, p.BollingerK)
		set.BollingerMiddle = model.Last(bands.Middle)
		set.BollingerUpper = model.Last(bands.Upper)
		set.BollingerLower = model.Last(bands.Lower)
	}

	dev := calculator.VolumeDeviation(f.Volume)
	latest := dev[len(dev)-1]
	set.Volume = model.Some(latest.Volume)
	set.VolumeZScore = model.Some(latest.ZScore)

	dtc := calculator.DaysToCover(f.Volume, p.TotalShortPositions, p.DaysToCoverLookback)
	if dtc == 0 && p.TotalShortPositions != 0 {
		// zero average volume
		set.DaysToCover = model.Insufficient()
	} else {
		set.DaysToCover = model.Some(dtc)
	}
	return set
}
