package collector

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"SignalSentinel/internal/metrics"
	"SignalSentinel/internal/model"

	"github.com/rs/zerolog/log"
)

// DefaultHistoryDays is roughly four years of calendar days.
const DefaultHistoryDays = 4 * 365

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price float64
	Data  []model.Bar
	End   time.Time // last generated bar date, defaults to today
	Err   error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(_ context.Context, _ string, days int) ([]model.Bar, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Data != nil {
		return m.Data, nil
	}
	end := m.End
	if end.IsZero() {
		end = time.Now()
	}
	return generateMockBars(m.Price, days, midnightUTC(end)), nil
}

// generateMockBars produces a gentle sine wave around basePrice, one bar per day ending at end.
func generateMockBars(basePrice float64, count int, end time.Time) []model.Bar {
	if basePrice <= 0 {
		basePrice = 100
	}
	bars := make([]model.Bar, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + 0.05*math.Sin(float64(i)/10) + float64(i-count/2)*0.001)
		bars[i] = model.Bar{
			Date:   end.AddDate(0, 0, -(count - 1 - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: int64(1_000_000 + 50_000*math.Cos(float64(i)/7)),
		}
	}
	return bars
}

// BarWriter stores fetched bars.
type BarWriter interface {
	SaveBars(ctx context.Context, symbol string, bars []model.Bar) (int, error)
}

// Collector pulls history from a Fetcher into a BarWriter.
type Collector struct {
	Fetcher     Fetcher
	Store       BarWriter
	HistoryDays int
	Metrics     *metrics.Metrics
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, store BarWriter, historyDays int) *Collector {
	if historyDays <= 0 {
		historyDays = DefaultHistoryDays
	}
	return &Collector{Fetcher: fetcher, Store: store, HistoryDays: historyDays}
}

// Sync fetches the configured history for symbol and stores it. It returns the number of bars saved.
func (c *Collector) Sync(ctx context.Context, symbol string) (int, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return 0, fmt.Errorf("sync: empty symbol: %w", model.ErrInvalidInput)
	}

	bars, err := c.Fetcher.FetchDailyBars(ctx, symbol, c.HistoryDays)
	if err != nil {
		return 0, fmt.Errorf("fetch %s from %s: %w", symbol, c.Fetcher.Name(), err)
	}
	bars = sanitize(bars)

	n, err := c.Store.SaveBars(ctx, symbol, bars)
	if err != nil {
		return 0, fmt.Errorf("save %s: %w", symbol, err)
	}
	c.Metrics.ObserveIngest(symbol, n)
	log.Info().Str("symbol", symbol).Str("source", c.Fetcher.Name()).Int("bars", n).Msg("history synced")
	return n, nil
}

// SyncAll syncs every symbol and keeps going past failures. Failed symbols map to their error.
func (c *Collector) SyncAll(ctx context.Context, symbols []string) map[string]error {
	failed := make(map[string]error)
	for _, s := range symbols {
		if ctx.Err() != nil {
			failed[s] = ctx.Err()
			continue
		}
		if _, err := c.Sync(ctx, s); err != nil {
			log.Warn().Err(err).Str("symbol", s).Msg("history sync failed")
			failed[s] = err
		}
	}
	return failed
}
