// Package recorder persists finished analysis reports.
package recorder

import (
	"context"
	"errors"
	"fmt"

	"SignalSentinel/internal/metrics"
	"SignalSentinel/internal/model"
)

// Recorder persists analysis reports.
type Recorder interface {
	RecordReport(ctx context.Context, r *model.Report) error
	Close() error
}

// Multi fans a report out to every sink and joins their errors.
type Multi []Recorder

func (m Multi) RecordReport(ctx context.Context, r *model.Report) error {
	var errs []error
	for _, rec := range m {
		if err := rec.RecordReport(ctx, r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, rec := range m {
		if err := rec.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// probability returns the stored probability, nil when the prediction failed.
func probability(p model.Prediction) any {
	if p.Err != nil || p.Signal == model.SignalError {
		return nil
	}
	return p.Probability
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// Instrumented counts failed writes of the wrapped sink.
type Instrumented struct {
	Name     string
	Recorder Recorder
	Metrics  *metrics.Metrics
}

func (i Instrumented) RecordReport(ctx context.Context, r *model.Report) error {
	err := i.Recorder.RecordReport(ctx, r)
	if err != nil {
		i.Metrics.RecorderFailed(i.Name)
		return fmt.Errorf("%s: %w", i.Name, err)
	}
	return nil
}

func (i Instrumented) Close() error { return i.Recorder.Close() }
