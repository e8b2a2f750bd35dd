// Package mlservice provides direct access to the settlement prediction
// service. Responses are returned raw because the service has shipped
// several response shapes; internal/predict owns the probing.
package mlservice

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/claims-cli/internal/resilience"
)

const defaultPredictPath = "/api/v1/predict"

// Client performs predictions against the ML service.
type Client interface {
	Predict(ctx context.Context, req PredictRequest) ([]byte, error)
}

// PredictRequest is the request body for the prediction endpoint. The
// request id is fresh per call so the service never serves a stale cached
// figure for a resubmission.
type PredictRequest struct {
	InputData map[string]any `json:"input_data"`
	RequestID string         `json:"request_id"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default service base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithPredictPath overrides the prediction endpoint path.
func WithPredictPath(path string) Option {
	return func(c *httpClient) {
		c.predictPath = path
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiKey      string
	baseURL     string
	predictPath string
	http        *http.Client
}

// NewClient creates an ML service client.
func NewClient(baseURL, apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:      apiKey,
		baseURL:     baseURL,
		predictPath: defaultPredictPath,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) Predict(ctx context.Context, req PredictRequest) ([]byte, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "mlservice: marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.predictPath, bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "mlservice: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, eris.Wrap(err, "mlservice: send request")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "mlservice: read response")
	}

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("mlservice: unexpected status %d: %s", resp.StatusCode, string(respBody))
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	return respBody, nil
}
