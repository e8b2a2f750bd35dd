package backend

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rotisserie/eris"
)

// ProxyPredict posts a prediction request to a backend-proxied ML endpoint
// and returns the raw body; the orchestrator owns shape probing.
func (c *httpClient) ProxyPredict(ctx context.Context, path string, body any) ([]byte, error) {
	if err := c.wait(ctx); err != nil {
		return nil, eris.Wrap(err, "backend: rate limit")
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, eris.Wrap(err, "backend: marshal predict request")
	}
	raw, err := c.send(ctx, http.MethodPost, path, payload, true)
	if err != nil {
		return nil, eris.Wrapf(err, "backend: proxy predict %s", path)
	}
	return raw, nil
}
