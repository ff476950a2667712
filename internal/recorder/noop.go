package recorder

import (
	"context"

	"SignalSentinel/internal/model"
)

// NoopRecorder is used when no sink is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordReport(context.Context, *model.Report) error { return nil }
func (n *NoopRecorder) Close() error                                      { return nil }
