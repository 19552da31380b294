// Package trading is the facade for the matching-engine service: accounts,
// balances, order entry and market data. Quantities and prices stay as the
// decimal strings the service emits; the facade passes them through
// untouched.
package trading

import (
	"context"
	"log/slog"

	"github.com/cantondex/cantondex-go/admin"
	"github.com/cantondex/cantondex-go/api"
)

// Side of an order.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// OrderType of an order.
type OrderType string

const (
	Market OrderType = "MARKET"
	Limit  OrderType = "LIMIT"
	Stop   OrderType = "STOP"
)

// Client wraps the shared HTTP client with the trading endpoint map.
type Client struct {
	api    *api.Client
	logger *slog.Logger
}

func New(apiClient *api.Client) *Client {
	return &Client{
		api:    apiClient,
		logger: slog.Default().WithGroup("trading"),
	}
}

// Account is a trading account tied to a Canton party.
type Account struct {
	AccountID        string `json:"account_id"`
	PartyID          string `json:"party_id"`
	CustodianPartyID string `json:"custodian_party_id"`
	AccountStatus    string `json:"account_status"`
	CreatedAt        string `json:"created_at"`
}

// Balance is one asset position on an account.
type Balance struct {
	AssetSymbol string `json:"asset_symbol"`
	Available   string `json:"available"`
	Locked      string `json:"locked"`
	Total       string `json:"total"`
}

// Order is an order as the matching engine reports it.
type Order struct {
	OrderID           string    `json:"order_id"`
	Pair              string    `json:"pair"`
	Side              Side      `json:"side"`
	OrderType         OrderType `json:"order_type"`
	Quantity          string    `json:"quantity"`
	Price             string    `json:"price"`
	FilledQuantity    string    `json:"filled_quantity"`
	RemainingQuantity string    `json:"remaining_quantity"`
	Status            string    `json:"status"`
	CreatedAt         string    `json:"created_at"`
}

// Trade is an executed match.
type Trade struct {
	TradeID          string `json:"trade_id"`
	Pair             string `json:"pair"`
	Quantity         string `json:"quantity"`
	Price            string `json:"price"`
	MakerSide        string `json:"maker_side"`
	MatchedAt        string `json:"matched_at"`
	SettlementStatus string `json:"settlement_status"`
}

// OrderBookLevel is one price level of the book.
type OrderBookLevel struct {
	Price      string `json:"price"`
	Quantity   string `json:"quantity"`
	OrderCount int    `json:"order_count"`
}

// OrderBook is a depth snapshot for one pair.
type OrderBook struct {
	Pair      string           `json:"pair"`
	Bids      []OrderBookLevel `json:"bids"`
	Asks      []OrderBookLevel `json:"asks"`
	UpdatedAt string           `json:"updated_at"`
}

// MarketData is the 24h ticker for one pair.
type MarketData struct {
	Pair           string `json:"pair"`
	LastPrice      string `json:"last_price"`
	BestBid        string `json:"best_bid"`
	BestAsk        string `json:"best_ask"`
	Spread         string `json:"spread"`
	PriceChange24h string `json:"price_change_24h"`
	High24h        string `json:"high_24h"`
	Low24h         string `json:"low_24h"`
	Volume24h      string `json:"volume_24h"`
}

// EngineHealth is the matching engine's health summary.
type EngineHealth struct {
	Status         string `json:"status"`
	MatchingEngine string `json:"matching_engine"`
	TradesMatched  int64  `json:"trades_matched"`
}

// Health fetches the engine health summary. Use Status for the normalized
// overall state.
func (c *Client) Health(ctx context.Context) api.Response[EngineHealth] {
	return api.Get[EngineHealth](ctx, c.api, "/health")
}

// Status returns the normalized engine health state.
func (c *Client) Status(ctx context.Context) admin.Status {
	resp := c.Health(ctx)
	if !resp.Success {
		return admin.StatusDown
	}
	return admin.NormalizeStatus(resp.Data.Status)
}

// CreateAccountRequest opens a trading account for a party.
type CreateAccountRequest struct {
	PartyID     string `json:"party_id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email,omitempty"`
}

func (c *Client) CreateAccount(ctx context.Context, req CreateAccountRequest) api.Response[Account] {
	return api.Post[Account](ctx, c.api, "/accounts", req)
}

func (c *Client) Account(ctx context.Context, partyID string) api.Response[Account] {
	return api.Get[Account](ctx, c.api, "/accounts/"+partyID)
}

func (c *Client) Balances(ctx context.Context, partyID string) api.Response[[]Balance] {
	return api.Get[[]Balance](ctx, c.api, "/accounts/"+partyID+"/balances")
}

// TransferResult acknowledges a deposit or withdrawal.
type TransferResult struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transaction_id"`
}

// DepositRequest credits an account.
type DepositRequest struct {
	AccountID   string  `json:"account_id"`
	AssetSymbol string  `json:"asset_symbol"`
	Amount      float64 `json:"amount"`
}

func (c *Client) Deposit(ctx context.Context, req DepositRequest) api.Response[TransferResult] {
	return api.Post[TransferResult](ctx, c.api, "/deposit", req)
}

// WithdrawRequest debits an account toward an external address.
type WithdrawRequest struct {
	AccountID          string  `json:"account_id"`
	AssetSymbol        string  `json:"asset_symbol"`
	Amount             float64 `json:"amount"`
	DestinationAddress string  `json:"destination_address"`
}

func (c *Client) Withdraw(ctx context.Context, req WithdrawRequest) api.Response[TransferResult] {
	return api.Post[TransferResult](ctx, c.api, "/withdraw", req)
}

// CreateOrderRequest submits a new order.
type CreateOrderRequest struct {
	AccountID string    `json:"account_id"`
	Pair      string    `json:"pair"`
	Side      Side      `json:"side"`
	OrderType OrderType `json:"order_type"`
	Quantity  float64   `json:"quantity"`
	Price     float64   `json:"price,omitempty"`
	StopPrice float64   `json:"stop_price,omitempty"`
}

func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) api.Response[Order] {
	return api.Post[Order](ctx, c.api, "/orders", req)
}

// CancelResult acknowledges a cancellation.
type CancelResult struct {
	Success bool   `json:"success"`
	OrderID string `json:"order_id"`
}

func (c *Client) CancelOrder(ctx context.Context, orderID string) api.Response[CancelResult] {
	return api.Delete[CancelResult](ctx, c.api, "/orders/"+orderID)
}

// Orders lists a party's orders, optionally filtered by status.
func (c *Client) Orders(ctx context.Context, partyID, status string) api.Response[[]Order] {
	opts := []api.RequestOption{}
	if status != "" {
		opts = append(opts, api.WithQuery("status", status))
	}
	return api.Get[[]Order](ctx, c.api, "/orders/"+partyID, opts...)
}

// OrderBook fetches a depth snapshot. depth defaults to 20 server-side when
// non-positive.
func (c *Client) OrderBook(ctx context.Context, pair string, depth int) api.Response[OrderBook] {
	opts := []api.RequestOption{}
	if depth > 0 {
		opts = append(opts, api.WithQueryInt("depth", depth))
	}
	return api.Get[OrderBook](ctx, c.api, "/orderbook/"+pair, opts...)
}

// Trades fetches recent trades, newest first. limit defaults to 50
// server-side when non-positive.
func (c *Client) Trades(ctx context.Context, pair string, limit int) api.Response[[]Trade] {
	opts := []api.RequestOption{}
	if limit > 0 {
		opts = append(opts, api.WithQueryInt("limit", limit))
	}
	return api.Get[[]Trade](ctx, c.api, "/trades/"+pair, opts...)
}

func (c *Client) MarketData(ctx context.Context, pair string) api.Response[MarketData] {
	return api.Get[MarketData](ctx, c.api, "/market/"+pair)
}

func (c *Client) Markets(ctx context.Context) api.Response[[]MarketData] {
	return api.Get[[]MarketData](ctx, c.api, "/markets")
}
