package model

import "errors"

var (
	// ErrInvalidInput is returned when an empty series reaches a stage that needs data.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInsufficientHistory marks fewer samples than an indicator lookback.
	ErrInsufficientHistory = errors.New("insufficient history")
	// ErrMissingValue marks an absent upstream value.
	ErrMissingValue = errors.New("missing value")
	// ErrExternalFailure wraps predictor and data fetch failures.
	ErrExternalFailure = errors.New("external failure")
	// ErrInsufficientData is returned by the feature builder for an empty window.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrUnknownSymbol is returned when a symbol has no stored history.
	ErrUnknownSymbol = errors.New("unknown symbol")
)
