package main

import (
	"context"
	"fmt"
	"io"

	"SignalSentinel/internal/analysis"
	"SignalSentinel/internal/collector"
	"SignalSentinel/internal/config"
	"SignalSentinel/internal/forecast"
	"SignalSentinel/internal/logger"
	"SignalSentinel/internal/metrics"
	"SignalSentinel/internal/recorder"
	"SignalSentinel/internal/store"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
)

// app holds the components shared by every subcommand.
type app struct {
	cfg       *config.Config
	store     *store.Store
	metrics   *metrics.Metrics
	recorder  recorder.Recorder
	pipeline  *analysis.Pipeline
	collector *collector.Collector
	logCloser io.Closer
}

func loadConfig() (*config.Config, error) {
	path := *configPath
	if path == "" {
		path = config.PathFromEnv()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return buildApp(ctx, cfg)
}

func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	closer, err := logger.Setup(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("setup logger: %w", err)
	}
	a := &app{cfg: cfg, logCloser: closer}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.metrics = metrics.New(reg)

	a.store, err = store.Open(cfg.Database.SQLitePath)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}

	a.recorder = newRecorder(ctx, cfg, a.metrics)

	fetcher := newFetcher(cfg)
	log.Info().Str("source", fetcher.Name()).Msg("data source ready")
	a.collector = collector.NewCollector(fetcher, a.store, cfg.DataSource.HistoryDays)
	a.collector.Metrics = a.metrics

	a.pipeline = analysis.NewPipeline(a.store,
		analysis.WithPredictor(newPredictor(cfg)),
		analysis.WithRecorder(a.recorder),
		analysis.WithParams(cfg.Analysis.Params()),
		analysis.WithMetrics(a.metrics),
	)
	return a, nil
}

func newFetcher(cfg *config.Config) collector.Fetcher {
	switch cfg.DataSource.Provider {
	case "fmp":
		return collector.NewFMPFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy)
	case "mock":
		return &collector.MockFetcher{Price: 100}
	default:
		f := collector.NewYahooFetcher(cfg.Proxy)
		if cfg.DataSource.BaseURL != "" {
			f.BaseURL = cfg.DataSource.BaseURL
		}
		return f
	}
}

func newPredictor(cfg *config.Config) forecast.Predictor {
	if cfg.Predictor.URL == "" {
		log.Warn().Msg("no predictor url configured, forecasts will show as errors")
		return forecast.Unavailable{}
	}
	return forecast.NewHTTPPredictor(cfg.Predictor.URL, cfg.Predictor.Timeout, cfg.Predictor.Retries, cfg.Proxy)
}

// newRecorder builds the report sinks. A sink that cannot be opened is skipped.
func newRecorder(ctx context.Context, cfg *config.Config, m *metrics.Metrics) recorder.Recorder {
	var sinks recorder.Multi

	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, skipping")
		} else {
			sinks = append(sinks, recorder.Instrumented{Name: "sqlite", Recorder: sr, Metrics: m})
		}
	}

	if cfg.Redis.Enabled {
		rr, err := recorder.NewRedisRecorder(ctx, recorder.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
			TTL:      cfg.Redis.TTL,
		})
		if err != nil {
			log.Warn().Err(err).Msg("init redis recorder failed, skipping")
		} else {
			sinks = append(sinks, recorder.Instrumented{Name: "redis", Recorder: rr, Metrics: m})
		}
	}

	if len(sinks) == 0 {
		return recorder.NewNoopRecorder()
	}
	return sinks
}

// symbols returns explicit symbols, or the configured plus stored watchlist.
func (a *app) symbols(ctx context.Context, explicit string) ([]string, error) {
	if explicit != "" {
		return config.SplitSymbols(explicit), nil
	}
	stored, err := a.store.Symbols(ctx)
	if err != nil {
		return nil, err
	}
	return config.NormalizeSymbols(append(append([]string{}, a.cfg.Watchlist...), stored...)), nil
}

func (a *app) Close() {
	if a.recorder != nil {
		if err := a.recorder.Close(); err != nil {
			log.Warn().Err(err).Msg("close recorder")
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			log.Warn().Err(err).Msg("close store")
		}
	}
	if a.logCloser != nil {
		a.logCloser.Close()
	}
}
