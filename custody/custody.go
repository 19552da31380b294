// Package custody is the facade for the custody portal's auth service. It is
// the one client that performs a refresh-token exchange; the exchange is an
// explicit caller-invoked operation, never triggered automatically from the
// transport layer.
package custody

import (
	"context"
	"log/slog"

	"github.com/cantondex/cantondex-go/api"
	"github.com/cantondex/cantondex-go/auth"
)

// TokenStore is the subset of the auth store the facade needs.
type TokenStore interface {
	Save(ctx context.Context, tok auth.Token) error
	RefreshToken(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}

// Client wraps the shared HTTP client with the custody auth endpoints.
type Client struct {
	api    *api.Client
	store  TokenStore
	logger *slog.Logger
}

func New(apiClient *api.Client, store TokenStore) *Client {
	return &Client{
		api:    apiClient,
		store:  store,
		logger: slog.Default().WithGroup("custody"),
	}
}

// Profile is the authenticated user's profile.
type Profile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a token and persists it to the store.
func (c *Client) Login(ctx context.Context, email, password string) api.Response[auth.Token] {
	resp := api.Post[auth.Token](ctx, c.api, "/auth/login", loginRequest{Email: email, Password: password})
	if !resp.Success {
		return resp
	}
	if err := c.store.Save(ctx, resp.Data); err != nil {
		c.logger.Warn("could not persist session token", slog.String("error", err.Error()))
	}
	return resp
}

// Logout clears the stored session and tells the server, best effort: a
// failed server call does not resurrect the local session.
func (c *Client) Logout(ctx context.Context) api.Response[struct{}] {
	resp := api.Post[struct{}](ctx, c.api, "/auth/logout", nil)
	if err := c.store.Clear(ctx); err != nil {
		c.logger.Warn("could not clear session token", slog.String("error", err.Error()))
	}
	return resp
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Refresh exchanges the stored refresh token for a new session and persists
// it. Fails with an unauthorized-kind error when no refresh token is stored.
func (c *Client) Refresh(ctx context.Context) api.Response[auth.Token] {
	refreshToken, err := c.store.RefreshToken(ctx)
	if err != nil {
		return api.Fail[auth.Token](&api.Error{
			Kind:    api.KindUnauthorized,
			Message: "no refresh token available",
		})
	}

	resp := api.Post[auth.Token](ctx, c.api, "/auth/refresh", refreshRequest{RefreshToken: refreshToken})
	if !resp.Success {
		return resp
	}
	if err := c.store.Save(ctx, resp.Data); err != nil {
		c.logger.Warn("could not persist refreshed token", slog.String("error", err.Error()))
	}
	return resp
}

// Me fetches the authenticated profile.
func (c *Client) Me(ctx context.Context) api.Response[Profile] {
	return api.Get[Profile](ctx, c.api, "/auth/profile")
}
