// Package analysis runs the per-ticker state machine: fetch history, smooth it,
// then classify direction and compute indicator signals side by side.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"SignalSentinel/internal/calculator"
	"SignalSentinel/internal/filter"
	"SignalSentinel/internal/forecast"
	"SignalSentinel/internal/metrics"
	"SignalSentinel/internal/model"
	"SignalSentinel/internal/strategy"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// BarSource supplies stored history, oldest first.
type BarSource interface {
	GetBars(ctx context.Context, symbol string, limit int) ([]model.Bar, error)
}

// Recorder receives every finished report.
type Recorder interface {
	RecordReport(ctx context.Context, r *model.Report) error
}

// Pipeline analyzes one ticker at a time. It holds no per-run state and is safe for concurrent use.
type Pipeline struct {
	source     BarSource
	predictor  forecast.Predictor
	recorder   Recorder
	thresholds strategy.Thresholds
	params     Params
	metrics    *metrics.Metrics
	now        func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithPredictor sets the direction classifier.
func WithPredictor(p forecast.Predictor) Option {
	return func(pl *Pipeline) { pl.predictor = p }
}

// WithRecorder sets the report sink.
func WithRecorder(r Recorder) Option {
	return func(pl *Pipeline) { pl.recorder = r }
}

// WithThresholds overrides the signal thresholds.
func WithThresholds(t strategy.Thresholds) Option {
	return func(pl *Pipeline) { pl.thresholds = t }
}

// WithParams overrides periods, window size and filter noise.
func WithParams(p Params) Option {
	return func(pl *Pipeline) { pl.params = p }
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(pl *Pipeline) { pl.metrics = m }
}

// NewPipeline creates a pipeline reading from source. Without a predictor every
// prediction is an error; without a recorder reports are only returned.
func NewPipeline(source BarSource, opts ...Option) *Pipeline {
	p := &Pipeline{
		source:     source,
		predictor:  forecast.Unavailable{},
		thresholds: strategy.DefaultThresholds(),
		params:     DefaultParams(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run analyzes symbol. The returned report is never nil. The error is non-nil only
// when the history fetch failed, in which case the report is in the FAILED state.
func (p *Pipeline) Run(ctx context.Context, symbol string) (*model.Report, error) {
	rep := &model.Report{
		RunID:  uuid.NewString(),
		Symbol: strings.ToUpper(strings.TrimSpace(symbol)),
	}
	logger := log.With().Str("symbol", rep.Symbol).Str("run_id", rep.RunID).Logger()

	p.enter(rep, &logger, model.StateFetchHistory)
	start := time.Now()
	bars, err := p.source.GetBars(ctx, rep.Symbol, p.params.HistoryLimit)
	p.metrics.ObserveStage(string(model.StateFetchHistory), time.Since(start))
	if err != nil {
		rep.Err = fmt.Errorf("fetch history for %s: %w", rep.Symbol, err)
		p.enter(rep, &logger, model.StateFailed)
		logger.Error().Err(rep.Err).Msg("analysis failed")
		p.finish(ctx, rep, &logger)
		return rep, rep.Err
	}
	rep.Bars = len(bars)
	if len(bars) > 0 {
		rep.AsOf = bars[len(bars)-1].Date
	}

	p.enter(rep, &logger, model.StateFilterColumns)
	start = time.Now()
	filtered := filter.Frame(model.NewFrame(bars), p.params.Filter)
	p.metrics.ObserveStage(string(model.StateFilterColumns), time.Since(start))

	// Both branches only read filtered and write disjoint report fields.
	var (
		prediction model.Prediction
		results    []model.IndicatorResult
		g          errgroup.Group
	)
	g.Go(func() error {
		if err := guard(func() { prediction = p.classify(ctx, filtered, &logger) }); err != nil {
			p.metrics.PredictorFailed()
			logger.Error().Err(err).Msg("prediction branch panicked")
			prediction = model.Prediction{
				Signal: model.SignalError,
				Err:    fmt.Errorf("%w: predictor %w", model.ErrExternalFailure, err),
			}
		}
		return nil
	})
	g.Go(func() error {
		if err := guard(func() { results = p.indicators(filtered, &logger) }); err != nil {
			logger.Error().Err(err).Msg("indicator branch panicked")
			results = strategy.Evaluate(&model.IndicatorSet{}, p.thresholds)
		}
		return nil
	})
	_ = g.Wait()
	rep.Prediction = prediction
	rep.Indicators = results

	p.enter(rep, &logger, model.StateEmit)
	p.enter(rep, &logger, model.StateDone)
	p.finish(ctx, rep, &logger)
	return rep, nil
}

// guard runs fn and converts a panic into an error.
func guard(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	fn()
	return nil
}

func (p *Pipeline) enter(rep *model.Report, logger *zerolog.Logger, s model.RunState) {
	rep.State = s
	logger.Debug().Str("state", string(s)).Msg("state transition")
}

func (p *Pipeline) classify(ctx context.Context, f model.Frame, logger *zerolog.Logger) model.Prediction {
	fail := func(err error) model.Prediction {
		logger.Warn().Err(err).Msg("prediction branch failed")
		return model.Prediction{Signal: model.SignalError, Err: err}
	}

	logger.Debug().Str("state", string(model.StateBuildFeatures)).Msg("branch state")
	start := time.Now()
	window := f.Tail(p.params.WindowSize)
	if window.Len() == 0 {
		return fail(fmt.Errorf("build features: %w", model.ErrInsufficientData))
	}
	scaled, err := calculator.NormalizeFrame(window)
	if err != nil {
		return fail(fmt.Errorf("normalize window: %w", err))
	}
	tensor, err := forecast.Build(scaled, p.params.WindowSize)
	if err != nil {
		return fail(err)
	}
	p.metrics.ObserveStage(string(model.StateBuildFeatures), time.Since(start))

	logger.Debug().Str("state", string(model.StateClassify)).Int("rows", tensor.Rows).Msg("branch state")
	start = time.Now()
	prob, err := p.predictor.Predict(ctx, tensor)
	p.metrics.ObserveStage(string(model.StateClassify), time.Since(start))
	if err != nil {
		p.metrics.PredictorFailed()
		if !errors.Is(err, model.ErrExternalFailure) {
			err = fmt.Errorf("%w: %w", model.ErrExternalFailure, err)
		}
		return fail(err)
	}

	sig := p.thresholds.Probability(prob)
	if sig == model.SignalError {
		return fail(fmt.Errorf("probability %v outside [0,1]: %w", prob, model.ErrExternalFailure))
	}
	return model.Prediction{Probability: prob, Signal: sig}
}

func (p *Pipeline) indicators(f model.Frame, logger *zerolog.Logger) []model.IndicatorResult {
	logger.Debug().Str("state", string(model.StateComputeIndicators)).Msg("branch state")
	start := time.Now()
	set := ComputeIndicators(f, p.params)
	p.metrics.ObserveStage(string(model.StateComputeIndicators), time.Since(start))

	logger.Debug().Str("state", string(model.StateClassifyIndicators)).Msg("branch state")
	return strategy.Evaluate(set, p.thresholds)
}

// finish stamps the report, updates metrics and hands it to the recorder.
// Recorder failures are logged and do not change the outcome.
func (p *Pipeline) finish(ctx context.Context, rep *model.Report, logger *zerolog.Logger) {
	rep.GeneratedAt = p.now().UTC()

	p.metrics.ObserveRun(string(rep.State))
	for _, ind := range rep.Indicators {
		p.metrics.ObserveSignal(ind.Name, string(ind.Signal))
	}
	if rep.State == model.StateDone {
		if rep.Prediction.Err == nil {
			p.metrics.SetProbability(rep.Symbol, rep.Prediction.Probability)
		}
		logger.Info().
			Int("bars", rep.Bars).
			Str("prediction", rep.Prediction.Text()).
			Msg("analysis done")
	}

	if p.recorder == nil {
		return
	}
	if err := p.recorder.RecordReport(ctx, rep); err != nil {
		logger.Warn().Err(err).Msg("record report failed")
	}
}
