package collector

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"SignalSentinel/internal/model"
)

// Fetcher defines the interface for fetching market data.
// FetchDailyBars returns up to days calendar days of history, oldest first.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.Bar, error)
	Name() string
}

func newHTTPClient(proxyURL string) *http.Client {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &http.Client{
		Timeout:   30 * time.Second,
		Transport: transport,
	}
}

// sanitize drops empty bars, clamps negative volume and sorts by date.
func sanitize(bars []model.Bar) []model.Bar {
	out := make([]model.Bar, 0, len(bars))
	for _, b := range bars {
		if b.Open == 0 && b.High == 0 && b.Low == 0 && b.Close == 0 {
			continue // null bars (holidays etc.)
		}
		if b.Volume < 0 {
			b.Volume = 0
		}
		out = append(out, b)
	}
	model.SortBars(out)
	return out
}

// since keeps bars on or after cutoff.
func since(bars []model.Bar, cutoff time.Time) []model.Bar {
	for i, b := range bars {
		if !b.Date.Before(cutoff) {
			return bars[i:]
		}
	}
	return nil
}

func midnightUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
