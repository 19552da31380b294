package server

// Wire types the mock backend serves. These mirror what the real services
// emit, snake_case where the trading service is concerned and camelCase for
// the admin panel's gateway.

type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	KYCStatus string `json:"kycStatus"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
	PartyID   string `json:"partyId,omitempty"`
}

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

type Account struct {
	AccountID        string `json:"account_id"`
	PartyID          string `json:"party_id"`
	CustodianPartyID string `json:"custodian_party_id"`
	AccountStatus    string `json:"account_status"`
	CreatedAt        string `json:"created_at"`
}

type Balance struct {
	AssetSymbol string `json:"asset_symbol"`
	Available   string `json:"available"`
	Locked      string `json:"locked"`
	Total       string `json:"total"`
}

type CreateOrderRequest struct {
	AccountID string  `json:"account_id"`
	Pair      string  `json:"pair"`
	Side      string  `json:"side"`
	OrderType string  `json:"order_type"`
	Quantity  float64 `json:"quantity"`
	Price     float64 `json:"price"`
	StopPrice float64 `json:"stop_price"`
}

type Order struct {
	OrderID           string `json:"order_id"`
	Pair              string `json:"pair"`
	Side              string `json:"side"`
	OrderType         string `json:"order_type"`
	Quantity          string `json:"quantity"`
	Price             string `json:"price"`
	FilledQuantity    string `json:"filled_quantity"`
	RemainingQuantity string `json:"remaining_quantity"`
	Status            string `json:"status"`
	CreatedAt         string `json:"created_at"`
}

type Trade struct {
	TradeID          string `json:"trade_id"`
	Pair             string `json:"pair"`
	Quantity         string `json:"quantity"`
	Price            string `json:"price"`
	MakerSide        string `json:"maker_side"`
	MatchedAt        string `json:"matched_at"`
	SettlementStatus string `json:"settlement_status"`
}

type BookLevel struct {
	Price      string `json:"price"`
	Quantity   string `json:"quantity"`
	OrderCount int    `json:"order_count"`
}

type OrderBook struct {
	Pair      string      `json:"pair"`
	Bids      []BookLevel `json:"bids"`
	Asks      []BookLevel `json:"asks"`
	UpdatedAt string      `json:"updated_at"`
}

type Settlement struct {
	SettlementID string `json:"settlement_id"`
	Symbol       string `json:"symbol"`
	BuyerParty   string `json:"buyer_party"`
	SellerParty  string `json:"seller_party"`
	ExecutedAt   string `json:"executed_at"`
}

type pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type paginatedUsers struct {
	Data       []User     `json:"data"`
	Pagination pagination `json:"pagination"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type tokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"`
}

type errorResponse struct {
	Message string `json:"message"`
}
