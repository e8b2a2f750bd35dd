package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rotisserie/eris"

	"github.com/sells-group/claims-cli/internal/model"
)

func (c *httpClient) Login(ctx context.Context, username, password string) (*Tokens, error) {
	body := map[string]string{"username": username, "password": password}
	var tokens Tokens
	if err := c.do(ctx, http.MethodPost, "/account/login", body, &tokens); err != nil {
		return nil, eris.Wrap(err, "backend: login")
	}
	c.setTokens(tokens)
	return &tokens, nil
}

func (c *httpClient) Register(ctx context.Context, req RegisterRequest) (*model.User, error) {
	if req.Role == "" {
		req.Role = model.RoleClaimant
	}
	var user model.User
	if err := c.do(ctx, http.MethodPost, "/account/register", req, &user); err != nil {
		return nil, eris.Wrap(err, "backend: register")
	}
	return &user, nil
}

func (c *httpClient) CurrentUser(ctx context.Context) (*model.User, error) {
	var user model.User
	if err := c.do(ctx, http.MethodGet, "/account/users/me", nil, &user); err != nil {
		return nil, eris.Wrap(err, "backend: current user")
	}
	return &user, nil
}

func (c *httpClient) ListActivityLogs(ctx context.Context, userID string, limit int) ([]model.ActivityLog, error) {
	path := fmt.Sprintf("/account/activity-logs/%s", userID)
	if limit > 0 {
		path = fmt.Sprintf("%s?limit=%d", path, limit)
	}
	raw, err := c.send(ctx, http.MethodGet, path, nil, true)
	if err != nil {
		return nil, eris.Wrap(err, "backend: list activity logs")
	}
	return decodeList[model.ActivityLog](raw)
}
