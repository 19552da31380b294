package server

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Handler serves the mock backend's REST surface.
type Handler struct {
	state *State
	hub   *Hub
	// started is used for uptime figures in /health.
	started time.Time
}

func NewHandler(state *State, hub *Hub) *Handler {
	return &Handler{state: state, hub: hub, started: time.Now()}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			log.Printf("encode response: %v", err)
		}
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}

// bearerToken extracts the Authorization bearer token, or "".
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

// requireAuth wraps admin handlers with a session check.
func (h *Handler) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.state.ValidSession(bearerToken(r)) {
			writeError(w, http.StatusUnauthorized, "invalid or expired session")
			return
		}
		next(w, r)
	}
}

// HandleHealth serves the critical-path health summary.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "healthy",
		"matching_engine": "operational",
		"trades_matched":  int64(48213),
		"services": map[string]any{
			"matching_engine": "operational",
			"settlement":      "connected",
		},
	})
}

// HandleStatus serves the auxiliary per-service status map.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"postgres": map[string]any{
			"status":        "connected",
			"uptime":        99.95,
			"response_time": 3.2,
		},
		"canton_ledger": map[string]any{
			"status": "connected",
			"uptime": 99.99,
		},
		"api_gateway": "operational",
	})
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}
	access, refreshTok := h.state.IssueSession(req.Email)
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  access,
		RefreshToken: refreshTok,
		ExpiresIn:    3600,
	})
}

func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	email, ok := h.state.RedeemRefresh(req.RefreshToken)
	if !ok {
		writeError(w, http.StatusUnauthorized, "refresh token is not valid")
		return
	}
	access, refreshTok := h.state.IssueSession(email)
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken:  access,
		RefreshToken: refreshTok,
		ExpiresIn:    3600,
	})
}

func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	h.state.RevokeSession(bearerToken(r))
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	if !h.state.ValidSession(bearerToken(r)) {
		writeError(w, http.StatusUnauthorized, "invalid or expired session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"id":    "user-001",
		"email": "trader01@example.com",
		"name":  "Trader One",
		"role":  "TRADER",
	})
}

func (h *Handler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "pageSize", 10)
	users, total := h.state.ListUsers(page, pageSize, r.URL.Query().Get("search"))

	totalPages := (total + pageSize - 1) / pageSize
	if totalPages == 0 {
		totalPages = 1
	}
	writeJSON(w, http.StatusOK, paginatedUsers{
		Data: users,
		Pagination: pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
		},
	})
}

func (h *Handler) HandlePairs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.state.Pairs())
	case http.MethodPost:
		var pair TradingPair
		if err := json.NewDecoder(r.Body).Decode(&pair); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		writeJSON(w, http.StatusCreated, h.state.AddPair(pair))
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) HandlePairByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	switch r.Method {
	case http.MethodPut:
		var pair TradingPair
		if err := json.NewDecoder(r.Body).Decode(&pair); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		updated, ok := h.state.UpdatePair(id, pair)
		if !ok {
			writeError(w, http.StatusNotFound, "trading pair not found")
			return
		}
		writeJSON(w, http.StatusOK, updated)
	case http.MethodDelete:
		if !h.state.DeletePair(id) {
			writeError(w, http.StatusNotFound, "trading pair not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) HandleFees(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.state.Fees())
}

func (h *Handler) HandleParties(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"parties": []map[string]string{
			{"party": "SecuritiesIssuer::participant"},
			{"party": "Exchange::participant"},
			{"party": "Custodian::participant"},
		},
	})
}

func (h *Handler) HandleSettlements(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"settlements": h.state.Settlements()})
}

func (h *Handler) HandleAccount(w http.ResponseWriter, r *http.Request) {
	acct, ok := h.state.Account(r.PathValue("party"))
	if !ok {
		writeError(w, http.StatusNotFound, "account not found")
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

func (h *Handler) HandleBalances(w http.ResponseWriter, r *http.Request) {
	balances, ok := h.state.Balances(r.PathValue("party"))
	if !ok {
		writeError(w, http.StatusNotFound, "account not found")
		return
	}
	writeJSON(w, http.StatusOK, balances)
}

func (h *Handler) HandleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Pair == "" || req.Side == "" || req.Quantity <= 0 {
		writeError(w, http.StatusBadRequest, "pair, side and quantity are required")
		return
	}
	order := h.state.CreateOrder(req)
	if h.hub != nil {
		h.hub.BroadcastEvent("order_created", order)
	}
	writeJSON(w, http.StatusCreated, order)
}

func (h *Handler) HandleListOrders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.state.Orders(r.URL.Query().Get("status")))
}

func (h *Handler) HandleCancelOrder(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !h.state.CancelOrder(id) {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	if h.hub != nil {
		h.hub.BroadcastEvent("order_cancelled", map[string]string{"order_id": id})
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "order_id": id})
}

func (h *Handler) HandleOrderBook(w http.ResponseWriter, r *http.Request) {
	pair := r.PathValue("pair")
	book, ok := h.state.Book(pair)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown pair")
		return
	}
	if depth := queryInt(r, "depth", 0); depth > 0 {
		if depth < len(book.Bids) {
			book.Bids = book.Bids[:depth]
		}
		if depth < len(book.Asks) {
			book.Asks = book.Asks[:depth]
		}
	}
	writeJSON(w, http.StatusOK, book)
}

func (h *Handler) HandleTrades(w http.ResponseWriter, r *http.Request) {
	pair := r.PathValue("pair")
	trades, ok := h.state.Trades(pair, queryInt(r, "limit", 50))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown pair")
		return
	}
	writeJSON(w, http.StatusOK, trades)
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
