// Package server implements an in-memory CantonDEX backend: the REST
// surface the four frontends call plus a websocket endpoint broadcasting
// typed frames. Integration tests run it through httptest; cantonmock runs
// it standalone.
package server

import (
	"log"
	"net/http"

	"github.com/rs/cors"
)

// Server bundles the state, REST handler and websocket hub.
type Server struct {
	State   *State
	Handler *Handler
	Hub     *Hub
}

func New() *Server {
	state := NewState()
	hub := NewHub(state)
	return &Server{
		State:   state,
		Handler: NewHandler(state, hub),
		Hub:     hub,
	}
}

// Routes assembles the full handler, CORS-wrapped the way the real gateway
// is fronted.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	h := s.Handler

	mux.HandleFunc("GET /health", h.HandleHealth)
	mux.HandleFunc("GET /status", h.HandleStatus)

	mux.HandleFunc("POST /auth/login", h.HandleLogin)
	mux.HandleFunc("POST /auth/refresh", h.HandleRefresh)
	mux.HandleFunc("POST /auth/logout", h.HandleLogout)
	mux.HandleFunc("GET /auth/profile", h.HandleProfile)

	mux.HandleFunc("GET /api/admin/users", h.requireAuth(h.HandleListUsers))
	mux.HandleFunc("/api/admin/trading-pairs", h.requireAuth(h.HandlePairs))
	mux.HandleFunc("/api/admin/trading-pairs/{id}", h.requireAuth(h.HandlePairByID))
	mux.HandleFunc("GET /api/admin/fees", h.requireAuth(h.HandleFees))

	mux.HandleFunc("GET /canton/parties", h.HandleParties)
	mux.HandleFunc("GET /settlements", h.HandleSettlements)

	mux.HandleFunc("GET /accounts/{party}", h.HandleAccount)
	mux.HandleFunc("GET /accounts/{party}/balances", h.HandleBalances)
	mux.HandleFunc("POST /orders", h.HandleCreateOrder)
	mux.HandleFunc("GET /orders/{party}", h.HandleListOrders)
	mux.HandleFunc("DELETE /orders/{id}", h.HandleCancelOrder)
	mux.HandleFunc("GET /orderbook/{pair...}", h.HandleOrderBook)
	mux.HandleFunc("GET /trades/{pair...}", h.HandleTrades)

	mux.HandleFunc("GET /ws", s.Hub.HandleWS)

	return cors.AllowAll().Handler(loggingMiddleware(mux))
}

// Run starts the HTTP server on addr and blocks.
func (s *Server) Run(addr string) error {
	return http.ListenAndServe(addr, s.Routes())
}

// Run starts a fresh mock backend on addr and blocks.
func Run(addr string) error {
	srv := New()
	log.Printf("Mock CantonDEX backend listening on %s", addr)
	return srv.Run(addr)
}

// loggingMiddleware logs all incoming requests.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("%s %s from %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
	})
}
