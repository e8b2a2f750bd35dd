// Package backend provides bearer-authenticated REST access to the claims
// backend. On the first 401 of a request it attempts exactly one token
// refresh and retries the original request once; all other errors
// propagate.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/claims-cli/internal/model"
	"github.com/sells-group/claims-cli/internal/normalize"
	"github.com/sells-group/claims-cli/internal/resilience"
)

// Client defines the backend API operations used by the CLI and wizard.
type Client interface {
	Login(ctx context.Context, username, password string) (*Tokens, error)
	Register(ctx context.Context, req RegisterRequest) (*model.User, error)
	CurrentUser(ctx context.Context) (*model.User, error)

	CreateClaim(ctx context.Context, payload *model.ClaimPayload) (*model.Claim, error)
	CreateFinanceClaim(ctx context.Context, payload *model.ClaimPayload) (*model.Claim, error)
	GetClaim(ctx context.Context, id string) (*model.Claim, error)
	ListClaims(ctx context.Context, opts ListOptions) ([]model.Claim, error)

	ListActivityLogs(ctx context.Context, userID string, limit int) ([]model.ActivityLog, error)

	// ProxyPredict posts a prediction request to one of the backend-proxied
	// ML endpoints and returns the raw response body.
	ProxyPredict(ctx context.Context, path string, body any) ([]byte, error)
}

// Tokens is the access/refresh token pair issued by the backend.
type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// RegisterRequest is the request body for account registration.
type RegisterRequest struct {
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Password  string     `json:"password"`
	FirstName string     `json:"first_name,omitempty"`
	LastName  string     `json:"last_name,omitempty"`
	Role      model.Role `json:"role,omitempty"`
}

// ListOptions filters claim listings.
type ListOptions struct {
	Status model.ClaimStatus
	Limit  int
	Offset int
}

// APIError carries the backend's status code and its most specific error
// detail, for user-facing surfacing.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return e.Detail
}

// Option configures the client.
type Option func(*httpClient)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithTokens seeds an existing token pair.
func WithTokens(tokens Tokens) Option {
	return func(c *httpClient) {
		c.tokens = tokens
	}
}

// WithRateLimit sets a per-second rate limit for backend calls.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *httpClient) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), max(burst, 1))
		}
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter

	mu     sync.Mutex
	tokens Tokens
}

// NewClient creates a backend API client.
func NewClient(baseURL string, opts ...Option) Client {
	c := &httpClient{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *httpClient) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

func (c *httpClient) accessToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tokens.Access
}

func (c *httpClient) setTokens(t Tokens) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t.Refresh == "" {
		t.Refresh = c.tokens.Refresh
	}
	c.tokens = t
}

// do sends one authenticated request. The body is marshalled up front so
// the request can be rebuilt for the single post-refresh retry.
func (c *httpClient) do(ctx context.Context, method, path string, body any, out any) error {
	if err := c.wait(ctx); err != nil {
		return eris.Wrap(err, "backend: rate limit")
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return eris.Wrap(err, "backend: marshal request")
		}
	}

	raw, err := c.send(ctx, method, path, payload, true)
	if err != nil {
		return err
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return eris.Wrapf(err, "backend: unmarshal %s response", path)
		}
	}
	return nil
}

func (c *httpClient) send(ctx context.Context, method, path string, payload []byte, allowRefresh bool) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, eris.Wrap(err, "backend: create request")
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.accessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "backend: %s %s", method, path)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "backend: read response")
	}

	if resp.StatusCode == http.StatusUnauthorized && allowRefresh {
		if refreshErr := c.refresh(ctx); refreshErr == nil {
			return c.send(ctx, method, path, payload, false)
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Detail:     errorDetail(raw, resp.StatusCode),
		}
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(apiErr, resp.StatusCode)
		}
		return nil, apiErr
	}

	return raw, nil
}

// refresh exchanges the refresh token for a new access token. Called at
// most once per request.
func (c *httpClient) refresh(ctx context.Context) error {
	c.mu.Lock()
	refreshToken := c.tokens.Refresh
	c.mu.Unlock()
	if refreshToken == "" {
		return eris.New("backend: no refresh token")
	}

	payload, err := json.Marshal(map[string]string{"refresh": refreshToken})
	if err != nil {
		return eris.Wrap(err, "backend: marshal refresh request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/account/token/refresh", bytes.NewReader(payload))
	if err != nil {
		return eris.Wrap(err, "backend: create refresh request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "backend: refresh token")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "backend: read refresh response")
	}
	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("backend: refresh rejected with status %d", resp.StatusCode)
	}

	var tokens Tokens
	if err := json.Unmarshal(raw, &tokens); err != nil {
		return eris.Wrap(err, "backend: unmarshal refresh response")
	}
	c.setTokens(tokens)
	return nil
}

// errorDetail digs the most specific message out of a backend error body.
func errorDetail(raw []byte, status int) string {
	for _, path := range []string{"detail", "error", "message"} {
		if v, ok := normalize.Field(raw, path, nil).(string); ok && v != "" {
			return v
		}
	}
	return http.StatusText(status)
}
