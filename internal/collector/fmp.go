package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"SignalSentinel/internal/model"
)

const fmpBaseURL = "https://financialmodelingprep.com"

// FMPFetcher implements Fetcher using the Financial Modeling Prep historical price API.
type FMPFetcher struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
	Now     func() time.Time
}

// NewFMPFetcher creates a new fetcher with optional proxy support.
func NewFMPFetcher(baseURL, apiKey, proxyURL string) *FMPFetcher {
	if baseURL == "" {
		baseURL = fmpBaseURL
	}
	return &FMPFetcher{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client:  newHTTPClient(proxyURL),
		Now:     time.Now,
	}
}

func (f *FMPFetcher) Name() string { return "fmp" }

// fmpHistory is the JSON shape of historical-price-full. Rows come newest first.
type fmpHistory struct {
	Symbol     string `json:"symbol"`
	Historical []struct {
		Date   string   `json:"date"`
		Open   float64  `json:"open"`
		High   float64  `json:"high"`
		Low    float64  `json:"low"`
		Close  float64  `json:"close"`
		Volume *float64 `json:"volume"`
	} `json:"historical"`
	ErrorMessage string `json:"Error Message"`
}

func (f *FMPFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.Bar, error) {
	to := f.Now().UTC()
	from := to.AddDate(0, 0, -days)

	q := url.Values{}
	q.Set("from", from.Format("2006-01-02"))
	q.Set("to", to.Format("2006-01-02"))
	q.Set("apikey", f.APIKey)
	endpoint := fmt.Sprintf("%s/api/v3/historical-price-full/%s?%s", f.BaseURL, url.PathEscape(symbol), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fmp fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fmp read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fmp: status %d, body: %s", resp.StatusCode, string(body))
	}

	var hist fmpHistory
	if err := json.Unmarshal(body, &hist); err != nil {
		return nil, fmt.Errorf("fmp decode: %w", err)
	}
	if hist.ErrorMessage != "" {
		return nil, fmt.Errorf("fmp api error: %s", hist.ErrorMessage)
	}

	bars := make([]model.Bar, 0, len(hist.Historical))
	for _, h := range hist.Historical {
		d, err := time.Parse("2006-01-02", h.Date)
		if err != nil {
			return nil, fmt.Errorf("fmp: bad date %q: %w", h.Date, err)
		}
		var vol int64
		if h.Volume != nil {
			vol = int64(*h.Volume)
		}
		bars = append(bars, model.Bar{Date: d, Open: h.Open, High: h.High, Low: h.Low, Close: h.Close, Volume: vol})
	}
	return sanitize(bars), nil
}
