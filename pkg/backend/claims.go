package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/claims-cli/internal/model"
	"github.com/sells-group/claims-cli/internal/normalize"
)

func (c *httpClient) CreateClaim(ctx context.Context, payload *model.ClaimPayload) (*model.Claim, error) {
	var claim model.Claim
	if err := c.do(ctx, http.MethodPost, "/claims/", payload, &claim); err != nil {
		return nil, eris.Wrap(err, "backend: create claim")
	}
	return &claim, nil
}

// CreateFinanceClaim posts to the finance-specific claim path. The wizard
// uses it only when the primary path rejected the payload.
func (c *httpClient) CreateFinanceClaim(ctx context.Context, payload *model.ClaimPayload) (*model.Claim, error) {
	var claim model.Claim
	if err := c.do(ctx, http.MethodPost, "/claims/finance/", payload, &claim); err != nil {
		return nil, eris.Wrap(err, "backend: create finance claim")
	}
	return &claim, nil
}

func (c *httpClient) GetClaim(ctx context.Context, id string) (*model.Claim, error) {
	var claim model.Claim
	if err := c.do(ctx, http.MethodGet, "/claims/"+id, nil, &claim); err != nil {
		return nil, eris.Wrap(err, "backend: get claim")
	}
	return &claim, nil
}

func (c *httpClient) ListClaims(ctx context.Context, opts ListOptions) ([]model.Claim, error) {
	q := url.Values{}
	if opts.Status != "" {
		q.Set("status", string(opts.Status))
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		q.Set("offset", strconv.Itoa(opts.Offset))
	}
	path := "/claims/"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	raw, err := c.send(ctx, http.MethodGet, path, nil, true)
	if err != nil {
		return nil, eris.Wrap(err, "backend: list claims")
	}
	return decodeList[model.Claim](raw)
}

// decodeList handles the backend's two list shapes: paginated under
// "results" (older deployments used "data") or a bare top-level array.
func decodeList[T any](raw []byte) ([]T, error) {
	var items []json.RawMessage
	for _, path := range []string{"results", "data", ""} {
		found, err := normalize.Array(raw, path)
		if err == nil {
			items = found
			break
		}
	}
	if items == nil {
		return nil, eris.New("backend: response is not a list in any known shape")
	}

	out := make([]T, 0, len(items))
	for _, item := range items {
		var v T
		if err := json.Unmarshal(item, &v); err != nil {
			return nil, eris.Wrap(err, "backend: decode list item")
		}
		out = append(out, v)
	}
	return out, nil
}
