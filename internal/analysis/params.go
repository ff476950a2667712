package analysis

import (
	"SignalSentinel/internal/calculator"
	"SignalSentinel/internal/filter"
	"SignalSentinel/internal/forecast"
)

// Default analysis parameters.
const (
	DefaultSMAPeriod           = 30
	DefaultRSIPeriod           = 14
	DefaultTotalShortPositions = 1_000_000
)

// Params are the periods and sizes used by one run.
type Params struct {
	HistoryLimit int // bars requested from the source, 0 for all

	WindowSize int

	SMAPeriod           int
	RSIPeriod           int
	MACDShort           int
	MACDLong            int
	MACDSignal          int
	BollingerPeriod     int
	BollingerK          float64
	DaysToCoverLookback int
	TotalShortPositions float64

	Filter filter.Params
}

// DefaultParams returns the standard periods.
func DefaultParams() Params {
	return Params{
		WindowSize:          forecast.DefaultWindowSize,
		SMAPeriod:           DefaultSMAPeriod,
		RSIPeriod:           DefaultRSIPeriod,
		MACDShort:           calculator.MACDShortPeriod,
		MACDLong:            calculator.MACDLongPeriod,
		MACDSignal:          calculator.MACDSignalPeriod,
		BollingerPeriod:     calculator.BollingerPeriod,
		BollingerK:          calculator.BollingerMultiplier,
		DaysToCoverLookback: calculator.DaysToCoverLookback,
		TotalShortPositions: DefaultTotalShortPositions,
		Filter:              filter.DefaultParams(),
	}
}
