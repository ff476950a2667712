package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"SignalSentinel/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = func() time.Time { return time.Date(2024, 6, 10, 15, 0, 0, 0, time.UTC) }

type memStore struct {
	saved map[string][]model.Bar
	err   error
}

func (m *memStore) SaveBars(_ context.Context, symbol string, bars []model.Bar) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	if m.saved == nil {
		m.saved = map[string][]model.Bar{}
	}
	m.saved[symbol] = bars
	return len(bars), nil
}

func TestYahooFetcher(t *testing.T) {
	d1 := time.Date(2024, 6, 6, 13, 30, 0, 0, time.UTC).Unix()
	d2 := time.Date(2024, 6, 7, 13, 30, 0, 0, time.UTC).Unix()
	d3 := time.Date(2024, 6, 10, 13, 30, 0, 0, time.UTC).Unix()

	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.EscapedPath() + "?" + r.URL.RawQuery
		w.Write([]byte(`{"chart":{"result":[{"timestamp":[` +
			strconv.FormatInt(d3, 10) + `,` + strconv.FormatInt(d1, 10) + `,` + strconv.FormatInt(d2, 10) + `],
			"indicators":{"quote":[{
				"open":[3,1,null],"high":[3.5,1.5,null],"low":[2.5,0.5,null],
				"close":[3.2,1.2,null],"volume":[300,-5,null]}]}}],"error":null}}`))
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL
	f.Now = fixedNow

	bars, err := f.FetchDailyBars(context.Background(), "SPX", 30)
	require.NoError(t, err)
	assert.Equal(t, "/v8/finance/chart/%5EGSPC?interval=1d&range=1mo", path)
	require.Len(t, bars, 2, "null bar skipped")
	assert.Equal(t, time.Date(2024, 6, 6, 0, 0, 0, 0, time.UTC), bars[0].Date)
	assert.Equal(t, int64(0), bars[0].Volume, "negative volume clamped")
	assert.Equal(t, 3.2, bars[1].Close)
}

func TestYahooFetcher_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`))
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL
	_, err := f.FetchDailyBars(context.Background(), "NOPE", 30)
	assert.ErrorContains(t, err, "No data found")
}

func TestYahooRange(t *testing.T) {
	assert.Equal(t, "1mo", yahooRange(30))
	assert.Equal(t, "1y", yahooRange(365))
	assert.Equal(t, "2y", yahooRange(700))
	assert.Equal(t, "5y", yahooRange(DefaultHistoryDays))
}

func TestFMPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/historical-price-full/AAPL", r.URL.Path)
		assert.Equal(t, "2024-05-31", r.URL.Query().Get("from"))
		assert.Equal(t, "2024-06-10", r.URL.Query().Get("to"))
		assert.Equal(t, "secret", r.URL.Query().Get("apikey"))
		w.Write([]byte(`{"symbol":"AAPL","historical":[
			{"date":"2024-06-07","open":194.6,"high":196.9,"low":194.1,"close":196.89,"volume":53103912},
			{"date":"2024-06-06","open":195.7,"high":196.5,"low":194.2,"close":194.48,"volume":41181753}]}`))
	}))
	defer srv.Close()

	f := NewFMPFetcher(srv.URL, "secret", "")
	f.Now = fixedNow
	bars, err := f.FetchDailyBars(context.Background(), "AAPL", 10)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, time.Date(2024, 6, 6, 0, 0, 0, 0, time.UTC), bars[0].Date, "sorted oldest first")
	assert.Equal(t, 196.89, bars[1].Close)
	assert.Equal(t, int64(53103912), bars[1].Volume)
}

func TestFMPFetcher_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("apikey") == "" {
			w.Write([]byte(`{"Error Message":"Invalid API KEY."}`))
			return
		}
		http.Error(w, "limit reached", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewFMPFetcher(srv.URL, "", "").FetchDailyBars(context.Background(), "AAPL", 10)
	assert.ErrorContains(t, err, "Invalid API KEY")

	_, err = NewFMPFetcher(srv.URL, "k", "").FetchDailyBars(context.Background(), "AAPL", 10)
	assert.ErrorContains(t, err, "status 429")
}

func TestMockFetcher_Deterministic(t *testing.T) {
	end := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	m := &MockFetcher{Price: 50, End: end}

	a, err := m.FetchDailyBars(context.Background(), "X", 90)
	require.NoError(t, err)
	b, _ := m.FetchDailyBars(context.Background(), "X", 90)
	assert.Equal(t, a, b)
	require.Len(t, a, 90)
	assert.Equal(t, end, a[89].Date)
	assert.True(t, a[0].Date.Before(a[1].Date))
}

func TestCollector_Sync(t *testing.T) {
	st := &memStore{}
	c := NewCollector(&MockFetcher{Price: 10, End: fixedNow()}, st, 50)

	n, err := c.Sync(context.Background(), " msft ")
	require.NoError(t, err)
	assert.Equal(t, 50, n)
	assert.Len(t, st.saved["MSFT"], 50)

	_, err = c.Sync(context.Background(), "")
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestCollector_SyncAll(t *testing.T) {
	boom := errors.New("rate limited")
	c := NewCollector(&MockFetcher{Err: boom}, &memStore{}, 0)
	assert.Equal(t, DefaultHistoryDays, c.HistoryDays)

	failed := c.SyncAll(context.Background(), []string{"A", "B"})
	require.Len(t, failed, 2)
	assert.ErrorIs(t, failed["A"], boom)

	saveErr := errors.New("disk full")
	c = NewCollector(&MockFetcher{Price: 5}, &memStore{err: saveErr}, 5)
	failed = c.SyncAll(context.Background(), []string{"C"})
	assert.ErrorIs(t, failed["C"], saveErr)
}
