package scheduler

import (
	"context"
	"errors"
	"sort"
	"testing"

	"SignalSentinel/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnalyzer struct {
	runs []string
}

func (f *fakeAnalyzer) Run(_ context.Context, symbol string) (*model.Report, error) {
	f.runs = append(f.runs, symbol)
	return &model.Report{Symbol: symbol, State: model.StateDone,
		Prediction: model.Prediction{Probability: 0.6, Signal: model.SignalBuy}}, nil
}

func (f *fakeAnalyzer) RunAll(ctx context.Context, symbols []string, _ int) []*model.Report {
	out := make([]*model.Report, len(symbols))
	for i, s := range symbols {
		out[i], _ = f.Run(ctx, s)
	}
	return out
}

type fakeSyncer struct {
	synced []string
	err    error
}

func (f *fakeSyncer) Sync(_ context.Context, symbol string) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.synced = append(f.synced, symbol)
	return 120, nil
}

func (f *fakeSyncer) SyncAll(ctx context.Context, symbols []string) map[string]error {
	failed := map[string]error{}
	for _, s := range symbols {
		if _, err := f.Sync(ctx, s); err != nil {
			failed[s] = err
		}
	}
	return failed
}

type fakeWatchlist struct {
	symbols map[string]bool
}

func (w *fakeWatchlist) AddSymbol(_ context.Context, symbol string, _ int) (bool, error) {
	if w.symbols[symbol] {
		return false, nil
	}
	w.symbols[symbol] = true
	return true, nil
}

func (w *fakeWatchlist) DeleteSymbol(_ context.Context, symbol string) error {
	if !w.symbols[symbol] {
		return model.ErrUnknownSymbol
	}
	delete(w.symbols, symbol)
	return nil
}

func (w *fakeWatchlist) Symbols(context.Context) ([]string, error) {
	var out []string
	for s := range w.symbols {
		out = append(out, s)
	}
	sort.Strings(out)
	return out, nil
}

type fakeSender struct {
	messages []string
}

func (f *fakeSender) SendWithRetry(_ context.Context, text string, _ int) error {
	f.messages = append(f.messages, text)
	return nil
}

func newTestScheduler() (*Scheduler, *fakeAnalyzer, *fakeSyncer, *fakeWatchlist, *fakeSender) {
	an := &fakeAnalyzer{}
	sy := &fakeSyncer{}
	wl := &fakeWatchlist{symbols: map[string]bool{"MSFT": true}}
	snd := &fakeSender{}
	s := NewScheduler(context.Background(), an, sy, wl, snd, 2)
	s.Static = []string{"AAPL", "MSFT"}
	return s, an, sy, wl, snd
}

func TestRegisterAll(t *testing.T) {
	s, _, _, _, _ := newTestScheduler()
	require.NoError(t, s.RegisterAll("0 30 21 * * 1-5", "0 0 22 * * 1-5"))
	assert.Len(t, s.Cron.Entries(), 2)

	s, _, _, _, _ = newTestScheduler()
	assert.ErrorContains(t, s.RegisterAll("not a cron", "0 0 22 * * 1-5"), "register ingest task")
}

func TestAnalyzeTask_MergesSymbols(t *testing.T) {
	s, an, _, wl, snd := newTestScheduler()
	wl.symbols["TSLA"] = true

	s.RunAnalyzeNow()
	assert.Equal(t, []string{"AAPL", "MSFT", "TSLA"}, an.runs)
	require.Len(t, snd.messages, 1)
	assert.Contains(t, snd.messages[0], "<b>TSLA</b>")
	assert.Contains(t, snd.messages[0], "Buy(0.60)")
}

func TestIngestTask(t *testing.T) {
	s, _, sy, _, snd := newTestScheduler()
	s.RunIngestNow()
	assert.Equal(t, []string{"AAPL", "MSFT"}, sy.synced)
	assert.Empty(t, snd.messages)

	sy.err = errors.New("rate limited")
	s.RunIngestNow()
	require.Len(t, snd.messages, 1)
	assert.Contains(t, snd.messages[0], "AAPL: rate limited")
}

func TestHandleCommand(t *testing.T) {
	s, an, sy, wl, _ := newTestScheduler()
	ctx := context.Background()

	out := s.HandleCommand(ctx, "/analyze@SentinelBot nvda")
	assert.Equal(t, []string{"NVDA"}, an.runs)
	assert.Contains(t, out, "<b>NVDA</b>")

	assert.Equal(t, "usage: /analyze SYMBOL", s.HandleCommand(ctx, "/analyze"))

	assert.Equal(t, "👀 watching AMD, stored 120 bars", s.HandleCommand(ctx, "/add amd"))
	assert.True(t, wl.symbols["AMD"])
	assert.Equal(t, []string{"AMD"}, sy.synced)
	assert.Equal(t, "AMD is already on the watchlist", s.HandleCommand(ctx, "/add AMD"))

	list := s.HandleCommand(ctx, "/watchlist")
	assert.Contains(t, list, "AAPL")
	assert.Contains(t, list, "AMD")

	assert.Equal(t, "🗑 removed AMD and its stored history", s.HandleCommand(ctx, "/remove amd"))
	assert.Equal(t, "AMD is not on the watchlist", s.HandleCommand(ctx, "/remove AMD"))

	assert.Contains(t, s.HandleCommand(ctx, "hello"), "/analyze SYMBOL")
	assert.Contains(t, s.HandleCommand(ctx, "  "), "/watchlist")
}

func TestHandleCommand_AddSyncFailure(t *testing.T) {
	s, _, sy, _, _ := newTestScheduler()
	sy.err = errors.New("timeout")
	out := s.HandleCommand(context.Background(), "/add ibm")
	assert.Equal(t, "👀 watching IBM, history sync failed: timeout", out)
}
