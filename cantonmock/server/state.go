package server

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// State holds the mock backend's in-memory world: users, markets, accounts
// and the session tokens it has issued.
type State struct {
	mu sync.RWMutex

	users    []User
	pairs    map[string]TradingPair
	fees     map[string]FeeConfig
	accounts map[string]Account // party id -> account
	balances map[string][]Balance
	orders   map[string]Order // order id -> order
	trades   map[string][]Trade
	books    map[string]OrderBook

	settlements []Settlement

	sessions map[string]string // access token -> email
	refresh  map[string]string // refresh token -> email

	nextID int64
}

// NewState seeds a small but plausible world.
func NewState() *State {
	s := &State{
		pairs:    make(map[string]TradingPair),
		fees:     make(map[string]FeeConfig),
		accounts: make(map[string]Account),
		balances: make(map[string][]Balance),
		orders:   make(map[string]Order),
		trades:   make(map[string][]Trade),
		books:    make(map[string]OrderBook),
		sessions: make(map[string]string),
		refresh:  make(map[string]string),
		nextID:   1000,
	}
	s.seed()
	return s
}

func (s *State) seed() {
	now := time.Now().UTC().Format(time.RFC3339)

	for i := 1; i <= 25; i++ {
		s.users = append(s.users, User{
			ID:        fmt.Sprintf("user-%03d", i),
			Email:     fmt.Sprintf("trader%02d@example.com", i),
			Username:  fmt.Sprintf("trader%02d", i),
			Role:      "TRADER",
			Status:    "ACTIVE",
			KYCStatus: "APPROVED",
			CreatedAt: now,
			UpdatedAt: now,
			PartyID:   fmt.Sprintf("Trader%02d::party", i),
		})
	}

	for _, symbol := range []string{"BTC/USDC", "ETH/USDC", "CC/USDC"} {
		parts := strings.SplitN(symbol, "/", 2)
		id := strings.ToLower(strings.ReplaceAll(symbol, "/", "-"))
		s.pairs[id] = TradingPair{
			ID:                id,
			BaseAsset:         parts[0],
			QuoteAsset:        parts[1],
			Symbol:            symbol,
			Status:            "ACTIVE",
			MinOrderSize:      "0.0001",
			MaxOrderSize:      "1000",
			PriceIncrement:    "0.01",
			QuantityIncrement: "0.0001",
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		s.books[symbol] = seedBook(symbol)
		s.trades[symbol] = seedTrades(symbol)
	}

	s.fees["default"] = FeeConfig{
		ID:            "default",
		MakerFee:      "0.001",
		TakerFee:      "0.002",
		WithdrawalFee: "0.0005",
		DepositFee:    "0",
		IsDefault:     true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	party := "Trader01::party"
	s.accounts[party] = Account{
		AccountID:     "acct-001",
		PartyID:       party,
		AccountStatus: "ACTIVE",
		CreatedAt:     now,
	}
	s.balances[party] = []Balance{
		{AssetSymbol: "USDC", Available: "100000.00", Locked: "250.00", Total: "100250.00"},
		{AssetSymbol: "BTC", Available: "1.50000000", Locked: "0", Total: "1.50000000"},
	}
}

func seedBook(pair string) OrderBook {
	book := OrderBook{Pair: pair, UpdatedAt: time.Now().UTC().Format(time.RFC3339)}
	for i := 0; i < 10; i++ {
		book.Bids = append(book.Bids, BookLevel{
			Price:      fmt.Sprintf("%.2f", 50000.0-float64(i)*25),
			Quantity:   fmt.Sprintf("%.4f", 0.25+float64(i)*0.05),
			OrderCount: 1 + i%3,
		})
		book.Asks = append(book.Asks, BookLevel{
			Price:      fmt.Sprintf("%.2f", 50025.0+float64(i)*25),
			Quantity:   fmt.Sprintf("%.4f", 0.20+float64(i)*0.05),
			OrderCount: 1 + i%4,
		})
	}
	return book
}

func seedTrades(pair string) []Trade {
	now := time.Now().UTC()
	trades := make([]Trade, 0, 20)
	for i := 0; i < 20; i++ {
		trades = append(trades, Trade{
			TradeID:          fmt.Sprintf("%s-trade-%03d", strings.ReplaceAll(pair, "/", ""), i),
			Pair:             pair,
			Quantity:         fmt.Sprintf("%.4f", 0.1+float64(i%5)*0.03),
			Price:            fmt.Sprintf("%.2f", 50000.0+float64(i%7)*12.5),
			MakerSide:        []string{"BUY", "SELL"}[i%2],
			MatchedAt:        now.Add(-time.Duration(i) * time.Minute).Format(time.RFC3339),
			SettlementStatus: "SETTLED",
		})
	}
	return trades
}

func (s *State) id(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%d", prefix, s.nextID)
}

// ListUsers pages and filters the user set.
func (s *State) ListUsers(page, pageSize int, search string) ([]User, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	filtered := make([]User, 0, len(s.users))
	needle := strings.ToLower(search)
	for _, u := range s.users {
		if needle == "" ||
			strings.Contains(strings.ToLower(u.Email), needle) ||
			strings.Contains(strings.ToLower(u.Username), needle) {
			filtered = append(filtered, u)
		}
	}

	total := len(filtered)
	start := (page - 1) * pageSize
	if start >= total {
		return []User{}, total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return filtered[start:end], total
}

func (s *State) Pairs() []TradingPair {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]TradingPair, 0, len(s.pairs))
	for _, p := range s.pairs {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

func (s *State) AddPair(p TradingPair) TradingPair {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = s.id("pair")
	}
	now := time.Now().UTC().Format(time.RFC3339)
	p.CreatedAt, p.UpdatedAt = now, now
	s.pairs[p.ID] = p
	return p
}

func (s *State) UpdatePair(id string, p TradingPair) (TradingPair, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.pairs[id]
	if !ok {
		return TradingPair{}, false
	}
	p.ID = id
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	s.pairs[id] = p
	return p, true
}

func (s *State) DeletePair(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pairs[id]; !ok {
		return false
	}
	delete(s.pairs, id)
	return true
}

func (s *State) Fees() []FeeConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]FeeConfig, 0, len(s.fees))
	for _, f := range s.fees {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *State) Account(partyID string) (Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acct, ok := s.accounts[partyID]
	return acct, ok
}

func (s *State) Balances(partyID string) ([]Balance, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	balances, ok := s.balances[partyID]
	return balances, ok
}

func (s *State) Book(pair string) (OrderBook, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	book, ok := s.books[pair]
	return book, ok
}

func (s *State) Trades(pair string, limit int) ([]Trade, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	trades, ok := s.trades[pair]
	if !ok {
		return nil, false
	}
	if limit > 0 && limit < len(trades) {
		trades = trades[:limit]
	}
	return trades, true
}

func (s *State) CreateOrder(req CreateOrderRequest) Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	order := Order{
		OrderID:           s.id("order"),
		Pair:              req.Pair,
		Side:              req.Side,
		OrderType:         req.OrderType,
		Quantity:          fmt.Sprintf("%v", req.Quantity),
		Price:             fmt.Sprintf("%v", req.Price),
		FilledQuantity:    "0",
		RemainingQuantity: fmt.Sprintf("%v", req.Quantity),
		Status:            "OPEN",
		CreatedAt:         time.Now().UTC().Format(time.RFC3339),
	}
	s.orders[order.OrderID] = order
	return order
}

// Orders lists created orders, optionally filtered by status.
func (s *State) Orders(status string) []Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Order, 0, len(s.orders))
	for _, o := range s.orders {
		if status == "" || o.Status == status {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderID < out[j].OrderID })
	return out
}

func (s *State) CancelOrder(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[id]
	if !ok {
		return false
	}
	order.Status = "CANCELLED"
	s.orders[id] = order
	return true
}

// Settlements returns the settlement history. SetSettlements lets tests
// exercise both the populated and empty upstream cases.
func (s *State) Settlements() []Settlement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Settlement{}, s.settlements...)
}

func (s *State) SetSettlements(settlements []Settlement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settlements = append([]Settlement{}, settlements...)
}

// IssueSession registers a fresh token pair for email.
func (s *State) IssueSession(email string) (access, refreshToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	access = s.id("token")
	refreshToken = s.id("refresh")
	s.sessions[access] = email
	s.refresh[refreshToken] = email
	return access, refreshToken
}

// ValidSession reports whether token identifies a live session.
func (s *State) ValidSession(token string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sessions[token]
	return ok
}

// RedeemRefresh trades a refresh token for the email it belongs to.
func (s *State) RedeemRefresh(token string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email, ok := s.refresh[token]
	if ok {
		delete(s.refresh, token)
	}
	return email, ok
}

// RevokeSession drops an access token.
func (s *State) RevokeSession(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}
