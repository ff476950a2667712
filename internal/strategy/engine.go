package strategy

import "SignalSentinel/internal/model"

// Indicator display names, in report order.
const (
	NameSMA         = "SMA"
	NameRSI         = "RSI"
	NameOBV         = "OBV"
	NameMACD        = "MACD"
	NameBollinger   = "Bollinger Bands"
	NameVolume      = "Trading Volume"
	NameDaysToCover = "Days to Cover"
)

// Evaluate classifies every indicator in set and returns the results in report order.
func Evaluate(set *model.IndicatorSet, t Thresholds) []model.IndicatorResult {
	return []model.IndicatorResult{
		{
			Name:   NameSMA,
			Value:  set.SMA,
			Signal: t.SMA(set.SMA),
		},
		{
			Name:   NameRSI,
			Value:  set.RSI,
			Signal: t.RSI(set.RSI),
		},
		{
			Name:   NameOBV,
			Value:  set.OBV,
			Kind:   model.KindCount,
			Signal: t.OBV(set.OBV),
		},
		{
			Name:   NameMACD,
			Value:  set.MACD,
			Extra:  extra(field{"signal", set.MACDSignal}),
			Signal: t.MACD(set.MACD, set.MACDSignal),
		},
		{
			Name:   NameBollinger,
			Value:  set.BollingerUpper,
			Extra:  extra(field{"middle", set.BollingerMiddle}, field{"lower", set.BollingerLower}),
			Signal: t.Bollinger(set.BollingerUpper, set.BollingerLower),
		},
		{
			Name:   NameVolume,
			Value:  set.Volume,
			Kind:   model.KindCount,
			Extra:  extra(field{"zscore", set.VolumeZScore}),
			Signal: t.Volume(set.Volume),
		},
		{
			Name:   NameDaysToCover,
			Value:  set.DaysToCover,
			Signal: t.DaysToCover(set.DaysToCover),
		},
	}
}

type field struct {
	name    string
	reading model.Reading
}

// extra builds the secondary output map, skipping missing readings.
func extra(fields ...field) map[string]float64 {
	m := make(map[string]float64, len(fields))
	for _, f := range fields {
		if f.reading.Status == model.ReadingMissing {
			continue
		}
		m[f.name] = f.reading.Value
	}
	return m
}
