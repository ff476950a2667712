package model

// IndicatorSet holds the latest value of every computed indicator for one ticker.
type IndicatorSet struct {
	SMA             Reading
	RSI             Reading
	OBV             Reading
	MACD            Reading
	MACDSignal      Reading
	BollingerMiddle Reading
	BollingerUpper  Reading
	BollingerLower  Reading
	Volume          Reading
	VolumeZScore    Reading
	DaysToCover     Reading
}
