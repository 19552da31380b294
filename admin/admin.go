// Package admin is the facade for the admin-panel backend: user management,
// trading pair and fee configuration, system health and Canton topology.
package admin

import (
	"context"
	"log/slog"

	"github.com/cantondex/cantondex-go/api"
)

// Client wraps the shared HTTP client with the admin endpoint map. The
// settlement service lives on its own host, so Canton domain lookups carry a
// base URL override.
type Client struct {
	api            *api.Client
	settlementBase string
	logger         *slog.Logger
}

// New builds the facade. settlementBase may be empty when Canton domain
// lookups are not needed.
func New(apiClient *api.Client, settlementBase string) *Client {
	return &Client{
		api:            apiClient,
		settlementBase: settlementBase,
		logger:         slog.Default().WithGroup("admin"),
	}
}

// User is an exchange user as the admin backend reports it.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	KYCStatus string `json:"kycStatus"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
	LastLogin string `json:"lastLogin,omitempty"`
	PartyID   string `json:"partyId,omitempty"`
}

// TradingPair is a listed market and its order constraints.
type TradingPair struct {
	ID                string `json:"id"`
	BaseAsset         string `json:"baseAsset"`
	QuoteAsset        string `json:"quoteAsset"`
	Symbol            string `json:"symbol"`
	Status            string `json:"status"`
	MinOrderSize      string `json:"minOrderSize"`
	MaxOrderSize      string `json:"maxOrderSize"`
	PriceIncrement    string `json:"priceIncrement"`
	QuantityIncrement string `json:"quantityIncrement"`
	CreatedAt         string `json:"createdAt"`
	UpdatedAt         string `json:"updatedAt"`
}

// FeeConfig is a maker/taker fee schedule, either the default or scoped to a
// pair or role.
type FeeConfig struct {
	ID            string `json:"id"`
	TradingPairID string `json:"tradingPairId,omitempty"`
	UserRole      string `json:"userRole,omitempty"`
	MakerFee      string `json:"makerFee"`
	TakerFee      string `json:"takerFee"`
	WithdrawalFee string `json:"withdrawalFee"`
	DepositFee    string `json:"depositFee"`
	IsDefault     bool   `json:"isDefault"`
	CreatedAt     string `json:"createdAt"`
	UpdatedAt     string `json:"updatedAt"`
}

// ListUsersParams filter and page the user listing.
type ListUsersParams struct {
	Page     int
	PageSize int
	Search   string
}

// ListUsers returns one page of users.
func (c *Client) ListUsers(ctx context.Context, params ListUsersParams) api.Response[api.Paginated[User]] {
	opts := []api.RequestOption{}
	if params.Page > 0 {
		opts = append(opts, api.WithQueryInt("page", params.Page))
	}
	if params.PageSize > 0 {
		opts = append(opts, api.WithQueryInt("pageSize", params.PageSize))
	}
	if params.Search != "" {
		opts = append(opts, api.WithQuery("search", params.Search))
	}
	return api.Get[api.Paginated[User]](ctx, c.api, "/api/admin/users", opts...)
}

// GetUser fetches one user by id.
func (c *Client) GetUser(ctx context.Context, id string) api.Response[User] {
	return api.Get[User](ctx, c.api, "/api/admin/users/"+id)
}

// UpdateUser applies a partial update to a user.
func (c *Client) UpdateUser(ctx context.Context, id string, update map[string]any) api.Response[User] {
	return api.Put[User](ctx, c.api, "/api/admin/users/"+id, update)
}

// DeleteUser removes a user.
func (c *Client) DeleteUser(ctx context.Context, id string) api.Response[struct{}] {
	return api.Delete[struct{}](ctx, c.api, "/api/admin/users/"+id)
}

// TradingPairs lists all configured pairs.
func (c *Client) TradingPairs(ctx context.Context) api.Response[[]TradingPair] {
	return api.Get[[]TradingPair](ctx, c.api, "/api/admin/trading-pairs")
}

// CreateTradingPair registers a new pair.
func (c *Client) CreateTradingPair(ctx context.Context, pair TradingPair) api.Response[TradingPair] {
	return api.Post[TradingPair](ctx, c.api, "/api/admin/trading-pairs", pair)
}

// UpdateTradingPair updates an existing pair.
func (c *Client) UpdateTradingPair(ctx context.Context, id string, pair TradingPair) api.Response[TradingPair] {
	return api.Put[TradingPair](ctx, c.api, "/api/admin/trading-pairs/"+id, pair)
}

// DeleteTradingPair delists a pair.
func (c *Client) DeleteTradingPair(ctx context.Context, id string) api.Response[struct{}] {
	return api.Delete[struct{}](ctx, c.api, "/api/admin/trading-pairs/"+id)
}

// FeeConfigs lists all fee schedules.
func (c *Client) FeeConfigs(ctx context.Context) api.Response[[]FeeConfig] {
	return api.Get[[]FeeConfig](ctx, c.api, "/api/admin/fees")
}

// CreateFeeConfig adds a fee schedule.
func (c *Client) CreateFeeConfig(ctx context.Context, cfg FeeConfig) api.Response[FeeConfig] {
	return api.Post[FeeConfig](ctx, c.api, "/api/admin/fees", cfg)
}

// UpdateFeeConfig updates a fee schedule.
func (c *Client) UpdateFeeConfig(ctx context.Context, id string, cfg FeeConfig) api.Response[FeeConfig] {
	return api.Put[FeeConfig](ctx, c.api, "/api/admin/fees/"+id, cfg)
}
