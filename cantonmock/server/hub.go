package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// frame is the wire shape of one realtime message.
type frame struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// Hub accepts websocket clients and broadcasts frames to all of them.
type Hub struct {
	state    *State
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func NewHub(state *State) *Hub {
	return &Hub{
		state: state,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// HandleWS upgrades the connection. A token query parameter, when present,
// must identify a live session; connections without a token are accepted so
// public market data can stream unauthenticated.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	if token := r.URL.Query().Get("token"); token != "" && !h.state.ValidSession(token) {
		writeError(w, http.StatusUnauthorized, "invalid or expired session")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade: %v", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()

	// Drain inbound frames; the mock ignores them but must consume to
	// notice disconnects.
	go func() {
		defer h.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	_ = conn.Close()
}

// BroadcastEvent wraps payload into a frame and sends it to every client.
func (h *Hub) BroadcastEvent(eventType string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Printf("broadcast encode: %v", err)
		return
	}
	msg := frame{Type: eventType, Payload: raw, Timestamp: time.Now().UTC()}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if err := conn.WriteJSON(msg); err != nil {
			delete(h.clients, conn)
			_ = conn.Close()
		}
	}
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
