package forecast

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"SignalSentinel/internal/model"

	"github.com/rs/zerolog/log"
)

// Predictor maps a feature tensor to the probability of an upward move.
type Predictor interface {
	Predict(ctx context.Context, t *Tensor) (float64, error)
}

// PredictorFunc adapts a function to Predictor.
type PredictorFunc func(ctx context.Context, t *Tensor) (float64, error)

func (f PredictorFunc) Predict(ctx context.Context, t *Tensor) (float64, error) { return f(ctx, t) }

// Unavailable is used when no model service is configured.
type Unavailable struct{}

func (Unavailable) Predict(context.Context, *Tensor) (float64, error) {
	return 0, fmt.Errorf("no predictor configured: %w", model.ErrExternalFailure)
}

// HTTPPredictor posts tensors to a model-serving endpoint.
type HTTPPredictor struct {
	URL     string
	Retries int
	Client  *http.Client
}

// NewHTTPPredictor creates a predictor client with optional proxy support.
func NewHTTPPredictor(endpoint string, timeout time.Duration, retries int, proxyURL string) *HTTPPredictor {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPPredictor{
		URL:     endpoint,
		Retries: retries,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

type predictRequest struct {
	Shape  [2]int    `json:"shape"`
	Inputs []float32 `json:"inputs"`
}

type predictResponse struct {
	Probability *float64 `json:"probability"`
	Error       string   `json:"error,omitempty"`
}

// Predict sends the tensor and returns the probability, retrying transient failures with backoff.
// Every failure is wrapped with model.ErrExternalFailure.
func (p *HTTPPredictor) Predict(ctx context.Context, t *Tensor) (float64, error) {
	body, err := json.Marshal(predictRequest{Shape: t.Shape(), Inputs: t.Data})
	if err != nil {
		return 0, fmt.Errorf("marshal tensor: %w", err)
	}

	var lastErr error
	for i := 0; i <= p.Retries; i++ {
		prob, err := p.post(ctx, body)
		if err == nil {
			return prob, nil
		}
		lastErr = err
		if i == p.Retries {
			break
		}
		backoff := time.Duration(i+1) * 200 * time.Millisecond
		log.Warn().Err(err).Int("attempt", i+1).Dur("backoff", backoff).Msg("predict request failed")
		select {
		case <-ctx.Done():
			return 0, fmt.Errorf("predict: %w: %w", model.ErrExternalFailure, ctx.Err())
		case <-time.After(backoff):
		}
	}
	return 0, fmt.Errorf("predict after %d attempts: %w: %w", p.Retries+1, model.ErrExternalFailure, lastErr)
}

func (p *HTTPPredictor) post(ctx context.Context, body []byte) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.URL, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("status %d, body: %s", resp.StatusCode, string(b))
	}
	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	if out.Error != "" {
		return 0, fmt.Errorf("model error: %s", out.Error)
	}
	if out.Probability == nil {
		return 0, fmt.Errorf("response has no probability")
	}
	return *out.Probability, nil
}
