package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"SignalSentinel/internal/notifier"
	"SignalSentinel/internal/scheduler"

	"github.com/google/subcommands"
	"github.com/rs/zerolog/log"
)

type serveCmd struct {
	runOnStart bool
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "runs the scheduler, the chat bot and the metrics endpoint" }
func (*serveCmd) Usage() string {
	return `sentinel serve [-run-on-start]

Runs until interrupted:
  - ingest_cron syncs the history of every watched symbol
  - analyze_cron analyzes every watched symbol and sends the reports
  - Telegram commands /analyze, /watchlist, /add and /remove are answered
  - /metrics is served when metrics.enabled is set
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.runOnStart, "run-on-start", os.Getenv("RUN_ON_START") == "true",
		"Ingest and analyze once immediately after start.")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()
	log.Info().Msg("SignalSentinel starting")

	var (
		tn     *notifier.TelegramNotifier
		sender notifier.Sender
	)
	if err := a.cfg.ValidateTelegram(); err != nil {
		log.Warn().Err(err).Msg("telegram disabled")
	} else {
		tn = notifier.NewTelegramNotifier(a.cfg.Telegram.BotToken, a.cfg.Telegram.ChatID, a.cfg.Proxy)
		sender = tn
	}

	sched := scheduler.NewScheduler(ctx, a.pipeline, a.collector, a.store, sender, a.cfg.Analysis.Workers)
	sched.Static = a.cfg.Watchlist
	if err := sched.RegisterAll(a.cfg.Schedule.IngestCron, a.cfg.Schedule.AnalyzeCron); err != nil {
		log.Error().Err(err).Msg("register cron tasks")
		return subcommands.ExitFailure
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")
	}

	var srv *http.Server
	if a.cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", a.metrics.Handler())
		srv = &http.Server{Addr: a.cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("metrics server")
			}
		}()
		log.Info().Str("addr", a.cfg.Metrics.Addr).Msg("metrics endpoint listening")
	}

	if c.runOnStart {
		log.Info().Msg("run-on-start enabled, ingesting and analyzing now")
		go func() {
			sched.RunIngestNow()
			sched.RunAnalyzeNow()
		}()
	}

	log.Info().Msg("SignalSentinel is running, press Ctrl+C to stop")
	<-ctx.Done()

	log.Info().Msg("shutdown signal received, stopping")
	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("metrics server shutdown")
		}
	}
	return subcommands.ExitSuccess
}
