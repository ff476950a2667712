package strategy

import (
	"math"

	"SignalSentinel/internal/model"
)

// Thresholds are the fixed cut-offs used to turn indicator values into signals.
type Thresholds struct {
	SMABuy  float64 // buy above
	SMASell float64 // sell below

	RSIBuy  float64 // buy below
	RSISell float64 // sell above

	OBVBuy  float64 // buy above
	OBVSell float64 // sell below

	BollingerLevel float64 // buy when upper < level, sell when lower > level

	VolumeBuy  float64 // buy above
	VolumeSell float64 // sell below

	DaysToCoverBuy  float64 // buy below
	DaysToCoverSell float64 // sell above

	ProbabilityBuy  float64 // buy above
	ProbabilitySell float64 // sell below
}

// DefaultThresholds returns the standard cut-offs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		SMABuy:          50,
		SMASell:         30,
		RSIBuy:          30,
		RSISell:         70,
		OBVBuy:          1_000_000,
		OBVSell:         -1_000_000,
		BollingerLevel:  100,
		VolumeBuy:       1_000_000,
		VolumeSell:      100_000,
		DaysToCoverBuy:  2,
		DaysToCoverSell: 5,
		ProbabilityBuy:  0.55,
		ProbabilitySell: 0.45,
	}
}

// guard resolves readings that never reach a threshold comparison.
func guard(readings ...model.Reading) (model.Signal, bool) {
	for _, r := range readings {
		if r.Status == model.ReadingMissing {
			return model.SignalError, true
		}
	}
	for _, r := range readings {
		if r.Status == model.ReadingInsufficient {
			return model.SignalNeutral, true
		}
	}
	return "", false
}

// SMA: buy above SMABuy, sell below SMASell.
func (t Thresholds) SMA(r model.Reading) model.Signal {
	if s, ok := guard(r); ok {
		return s
	}
	switch {
	case r.Value > t.SMABuy:
		return model.SignalBuy
	case r.Value < t.SMASell:
		return model.SignalSell
	default:
		return model.SignalNeutral
	}
}

// RSI: oversold is a buy, overbought a sell.
func (t Thresholds) RSI(r model.Reading) model.Signal {
	if s, ok := guard(r); ok {
		return s
	}
	switch {
	case r.Value < t.RSIBuy:
		return model.SignalBuy
	case r.Value > t.RSISell:
		return model.SignalSell
	default:
		return model.SignalNeutral
	}
}

func (t Thresholds) OBV(r model.Reading) model.Signal {
	if s, ok := guard(r); ok {
		return s
	}
	switch {
	case r.Value > t.OBVBuy:
		return model.SignalBuy
	case r.Value < t.OBVSell:
		return model.SignalSell
	default:
		return model.SignalNeutral
	}
}

// MACD compares the MACD line against its signal line.
func (t Thresholds) MACD(macd, signal model.Reading) model.Signal {
	if s, ok := guard(macd, signal); ok {
		return s
	}
	switch {
	case macd.Value > signal.Value:
		return model.SignalBuy
	case macd.Value < signal.Value:
		return model.SignalSell
	default:
		return model.SignalNeutral
	}
}

// Bollinger compares the latest bands against an absolute price level.
func (t Thresholds) Bollinger(upper, lower model.Reading) model.Signal {
	if s, ok := guard(upper, lower); ok {
		return s
	}
	switch {
	case upper.Value < t.BollingerLevel:
		return model.SignalBuy
	case lower.Value > t.BollingerLevel:
		return model.SignalSell
	default:
		return model.SignalNeutral
	}
}

func (t Thresholds) Volume(r model.Reading) model.Signal {
	if s, ok := guard(r); ok {
		return s
	}
	switch {
	case r.Value > t.VolumeBuy:
		return model.SignalBuy
	case r.Value < t.VolumeSell:
		return model.SignalSell
	default:
		return model.SignalNeutral
	}
}

// DaysToCover: a short interest that covers quickly is a buy.
func (t Thresholds) DaysToCover(r model.Reading) model.Signal {
	if s, ok := guard(r); ok {
		return s
	}
	switch {
	case r.Value < t.DaysToCoverBuy:
		return model.SignalBuy
	case r.Value > t.DaysToCoverSell:
		return model.SignalSell
	default:
		return model.SignalNeutral
	}
}

// Probability maps the classifier output to a signal. Values outside [0,1] are errors.
func (t Thresholds) Probability(p float64) model.Signal {
	switch {
	case math.IsNaN(p) || p < 0 || p > 1:
		return model.SignalError
	case p > t.ProbabilityBuy:
		return model.SignalBuy
	case p >= t.ProbabilitySell:
		return model.SignalNeutral
	default:
		return model.SignalSell
	}
}
