package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"SignalSentinel/internal/model"
	"SignalSentinel/internal/notifier"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Analyzer runs the per-ticker pipeline.
type Analyzer interface {
	Run(ctx context.Context, symbol string) (*model.Report, error)
	RunAll(ctx context.Context, symbols []string, workers int) []*model.Report
}

// Syncer ingests history.
type Syncer interface {
	Sync(ctx context.Context, symbol string) (int, error)
	SyncAll(ctx context.Context, symbols []string) map[string]error
}

// Watchlist stores the user's symbols.
type Watchlist interface {
	AddSymbol(ctx context.Context, symbol string, count int) (bool, error)
	DeleteSymbol(ctx context.Context, symbol string) error
	Symbols(ctx context.Context) ([]string, error)
}

// Scheduler manages all cron tasks.
type Scheduler struct {
	Cron      *cron.Cron
	Analyzer  Analyzer
	Syncer    Syncer
	Watchlist Watchlist
	Notifier  notifier.Sender
	// Static symbols from configuration, merged with the stored watchlist.
	Static  []string
	Workers int
	Ctx     context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, an Analyzer, sy Syncer, wl Watchlist, sender notifier.Sender, workers int) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		Analyzer:  an,
		Syncer:    sy,
		Watchlist: wl,
		Notifier:  sender,
		Workers:   workers,
		Ctx:       ctx,
	}
}

// RegisterAll registers the ingest and analyze tasks.
func (s *Scheduler) RegisterAll(ingestCron, analyzeCron string) error {
	if _, err := s.Cron.AddFunc(ingestCron, s.ingestTask); err != nil {
		return fmt.Errorf("register ingest task: %w", err)
	}
	if _, err := s.Cron.AddFunc(analyzeCron, s.analyzeTask); err != nil {
		return fmt.Errorf("register analyze task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Int("jobs", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// RunAnalyzeNow executes the analyze task immediately (for manual trigger / RUN_ON_START).
func (s *Scheduler) RunAnalyzeNow() { s.analyzeTask() }

// RunIngestNow executes the ingest task immediately.
func (s *Scheduler) RunIngestNow() { s.ingestTask() }

// symbols returns the configured and stored symbols without duplicates.
func (s *Scheduler) symbols(ctx context.Context) []string {
	seen := map[string]bool{}
	var out []string
	add := func(list []string) {
		for _, sym := range list {
			if !seen[sym] {
				seen[sym] = true
				out = append(out, sym)
			}
		}
	}
	add(s.Static)
	if s.Watchlist != nil {
		stored, err := s.Watchlist.Symbols(ctx)
		if err != nil {
			log.Error().Err(err).Msg("load watchlist")
		}
		add(stored)
	}
	return out
}

func (s *Scheduler) ingestTask() {
	syms := s.symbols(s.Ctx)
	log.Info().Int("symbols", len(syms)).Msg("running ingest task")
	failed := s.Syncer.SyncAll(s.Ctx, syms)
	if len(failed) == 0 {
		return
	}
	var b strings.Builder
	b.WriteString("❌ history sync failed:\n")
	for _, sym := range syms {
		if err, ok := failed[sym]; ok {
			b.WriteString(fmt.Sprintf("  %s: %v\n", sym, err))
		}
	}
	s.trySend(b.String())
}

func (s *Scheduler) analyzeTask() {
	syms := s.symbols(s.Ctx)
	log.Info().Int("symbols", len(syms)).Msg("running analyze task")
	reports := s.Analyzer.RunAll(s.Ctx, syms, s.Workers)
	s.trySend(notifier.FormatBatch(reports))
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	verb := strings.ToLower(fields[0])
	if i := strings.Index(verb, "@"); i > 0 {
		verb = verb[:i] // /analyze@SentinelBot
	}
	arg := ""
	if len(fields) > 1 {
		arg = strings.ToUpper(fields[1])
	}

	switch verb {
	case "/analyze":
		if arg == "" {
			return "usage: /analyze SYMBOL"
		}
		rep, _ := s.Analyzer.Run(ctx, arg)
		return notifier.FormatReport(rep)
	case "/watchlist":
		return notifier.FormatWatchlist(s.symbols(ctx))
	case "/add":
		if arg == "" {
			return "usage: /add SYMBOL"
		}
		return s.addSymbol(ctx, arg)
	case "/remove":
		if arg == "" {
			return "usage: /remove SYMBOL"
		}
		err := s.Watchlist.DeleteSymbol(ctx, arg)
		switch {
		case errors.Is(err, model.ErrUnknownSymbol):
			return fmt.Sprintf("%s is not on the watchlist", arg)
		case err != nil:
			log.Error().Err(err).Str("symbol", arg).Msg("remove symbol")
			return fmt.Sprintf("❌ could not remove %s", arg)
		}
		return fmt.Sprintf("🗑 removed %s and its stored history", arg)
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) addSymbol(ctx context.Context, symbol string) string {
	added, err := s.Watchlist.AddSymbol(ctx, symbol, 0)
	if err != nil {
		log.Error().Err(err).Str("symbol", symbol).Msg("add symbol")
		return fmt.Sprintf("❌ could not add %s", symbol)
	}
	if !added {
		return fmt.Sprintf("%s is already on the watchlist", symbol)
	}
	n, err := s.Syncer.Sync(ctx, symbol)
	if err != nil {
		log.Warn().Err(err).Str("symbol", symbol).Msg("initial sync failed")
		return fmt.Sprintf("👀 watching %s, history sync failed: %v", symbol, err)
	}
	return fmt.Sprintf("👀 watching %s, stored %d bars", symbol, n)
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		log.Error().Err(err).Msg("send notification")
	}
}
