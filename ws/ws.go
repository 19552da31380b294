// Package ws implements the realtime channel client. It authenticates the
// handshake with the stored token, wraps every inbound frame into a uniform
// Message and fans it out to per-type and wildcard subscribers, and
// reconnects with bounded attempts and capped backoff when the transport
// drops.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cantondex/cantondex-go/api"
	"github.com/cantondex/cantondex-go/metrics"
)

const (
	defaultReconnectAttempts = 5
	defaultReconnectMin      = 1 * time.Second
	defaultReconnectMax      = 5 * time.Second
	subscriberBacklog        = 16
)

// ErrNotConnected is returned by Emit when no connection is up. Emitting
// while disconnected is a no-op; frames are not queued.
var ErrNotConnected = errors.New("ws: not connected")

// Config parameterizes a channel client.
type Config struct {
	// URL of the channel endpoint, e.g. "ws://localhost:3001/ws".
	URL string
	// TokenSource supplies the handshake token. Optional.
	TokenSource api.TokenSource
	// ReconnectAttempts bounds automatic reconnection after an unexpected
	// drop. Defaults to 5; set negative to disable reconnection.
	ReconnectAttempts int
	// ReconnectMin and ReconnectMax bound the backoff between attempts.
	// Defaults: 1s and 5s. The delay doubles per attempt up to the cap.
	ReconnectMin time.Duration
	ReconnectMax time.Duration

	Dialer *websocket.Dialer
	Logger *slog.Logger
}

// Client is the realtime channel client. The zero value is not usable; use
// NewClient.
type Client struct {
	cfg    Config
	dialer *websocket.Dialer
	logger *slog.Logger

	mu        sync.Mutex
	conn      *websocket.Conn
	connGen   int
	connected atomic.Bool
	closing   bool

	topicsMu sync.RWMutex
	topics   map[string]*topic
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("ws: URL is required")
	}
	if _, err := url.Parse(cfg.URL); err != nil {
		return nil, err
	}
	if cfg.ReconnectAttempts == 0 {
		cfg.ReconnectAttempts = defaultReconnectAttempts
	}
	if cfg.ReconnectMin <= 0 {
		cfg.ReconnectMin = defaultReconnectMin
	}
	if cfg.ReconnectMax <= 0 {
		cfg.ReconnectMax = defaultReconnectMax
	}
	dialer := cfg.Dialer
	if dialer == nil {
		dialer = &websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default().WithGroup("ws")
	}
	return &Client{
		cfg:    cfg,
		dialer: dialer,
		logger: logger,
		topics: make(map[string]*topic),
	}, nil
}

// Connect establishes the channel. Calling Connect while already connected
// is a no-op; no second socket is opened.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return nil
	}
	c.closing = false

	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}

	c.conn = conn
	c.connGen++
	c.connected.Store(true)
	go c.readLoop(conn, c.connGen)

	c.logger.Info("channel connected", slog.String("url", c.cfg.URL))
	return nil
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	target, err := url.Parse(c.cfg.URL)
	if err != nil {
		return nil, err
	}
	if c.cfg.TokenSource != nil {
		token, err := c.cfg.TokenSource.Token(ctx)
		if err != nil {
			c.logger.Warn("token source failed, connecting unauthenticated", slog.String("error", err.Error()))
		} else if token != "" {
			query := target.Query()
			query.Set("token", token)
			target.RawQuery = query.Encode()
		}
	}

	conn, _, err := c.dialer.DialContext(ctx, target.String(), nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Disconnect tears the channel down and clears the handle. Subscriptions
// stay registered and resume delivery after a later Connect.
func (c *Client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closing = true
	c.connected.Store(false)
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
}

// IsConnected reports whether a connection is currently up.
func (c *Client) IsConnected() bool {
	return c.connected.Load()
}

// Emit sends a frame while connected. While disconnected it logs and
// returns ErrNotConnected; the frame is not queued.
func (c *Client) Emit(event string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	msg := Message{Type: event, Payload: raw, Timestamp: time.Now().UTC()}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil || !c.connected.Load() {
		c.logger.Warn("emit while disconnected, dropping frame", slog.String("event", event))
		return ErrNotConnected
	}
	return c.conn.WriteJSON(msg)
}

// Subscribe returns a channel receiving every frame of the given event type
// (or every frame, for Wildcard). The subscription lives until ctx is done;
// the returned channel is closed on removal. Frames are dropped for a
// subscriber whose backlog is full.
func (c *Client) Subscribe(ctx context.Context, eventType string) <-chan Message {
	t := c.ensureTopic(eventType)
	ch := make(chan Message, subscriberBacklog)
	id := t.addChan(ch)

	go func() {
		<-ctx.Done()
		t.removeChan(id)
		close(ch)
	}()

	return ch
}

// SubscribeFunc registers a callback for an event type and returns its
// cancel function. Cancelling removes only this subscriber; other listeners
// on the same event keep receiving. Calling cancel twice is safe.
func (c *Client) SubscribeFunc(eventType string, fn func(Message)) (cancel func()) {
	t := c.ensureTopic(eventType)
	id := t.addFunc(fn)
	var once sync.Once
	return func() {
		once.Do(func() { t.removeFunc(id) })
	}
}

func (c *Client) ensureTopic(eventType string) *topic {
	c.topicsMu.Lock()
	defer c.topicsMu.Unlock()
	t, ok := c.topics[eventType]
	if !ok {
		t = newTopic()
		c.topics[eventType] = t
	}
	return t
}

func (c *Client) readLoop(conn *websocket.Conn, gen int) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			c.handleReadError(conn, gen, err)
			return
		}

		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			c.logger.Warn("dropping undecodable frame", slog.String("error", err.Error()))
			continue
		}
		if msg.Timestamp.IsZero() {
			msg.Timestamp = time.Now().UTC()
		}
		c.dispatch(msg)
	}
}

func (c *Client) dispatch(msg Message) {
	c.topicsMu.RLock()
	typed := c.topics[msg.Type]
	wildcard := c.topics[Wildcard]
	c.topicsMu.RUnlock()

	if typed != nil {
		typed.broadcast(msg)
	}
	if wildcard != nil {
		wildcard.broadcast(msg)
	}
}

func (c *Client) handleReadError(conn *websocket.Conn, gen int, err error) {
	c.mu.Lock()
	// A stale read loop from a previous connection must not fight the
	// current one.
	if c.connGen != gen {
		c.mu.Unlock()
		return
	}
	c.connected.Store(false)
	c.conn = nil
	closing := c.closing
	c.mu.Unlock()

	_ = conn.Close()
	if closing {
		return
	}

	c.logger.Warn("channel dropped", slog.String("error", err.Error()))
	c.reconnect()
}

// reconnect retries the handshake with doubling backoff, capped, for a
// bounded number of attempts.
func (c *Client) reconnect() {
	if c.cfg.ReconnectAttempts < 0 {
		return
	}

	delay := c.cfg.ReconnectMin
	for attempt := 1; attempt <= c.cfg.ReconnectAttempts; attempt++ {
		time.Sleep(delay)
		delay *= 2
		if delay > c.cfg.ReconnectMax {
			delay = c.cfg.ReconnectMax
		}

		metrics.WSReconnects.Inc()

		c.mu.Lock()
		if c.closing || c.conn != nil {
			c.mu.Unlock()
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		conn, err := c.dial(ctx)
		cancel()
		if err == nil {
			c.conn = conn
			c.connGen++
			c.connected.Store(true)
			gen := c.connGen
			c.mu.Unlock()
			go c.readLoop(conn, gen)
			c.logger.Info("channel reconnected", slog.Int("attempt", attempt))
			return
		}
		c.mu.Unlock()
		c.logger.Warn("reconnect attempt failed",
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))
	}
	c.logger.Error("channel reconnect attempts exhausted")
}

// topic fans one event type out to its subscribers. Channel subscribers get
// a buffered channel and lose frames when the buffer is full; callback
// subscribers run inline on the read loop.
type topic struct {
	mu     sync.RWMutex
	chans  map[int64]chan Message
	fns    map[int64]func(Message)
	nextID atomic.Int64
}

func newTopic() *topic {
	return &topic{
		chans: make(map[int64]chan Message),
		fns:   make(map[int64]func(Message)),
	}
}

func (t *topic) addChan(ch chan Message) int64 {
	id := t.nextID.Add(1)
	t.mu.Lock()
	t.chans[id] = ch
	t.mu.Unlock()
	return id
}

func (t *topic) removeChan(id int64) {
	t.mu.Lock()
	delete(t.chans, id)
	t.mu.Unlock()
}

func (t *topic) addFunc(fn func(Message)) int64 {
	id := t.nextID.Add(1)
	t.mu.Lock()
	t.fns[id] = fn
	t.mu.Unlock()
	return id
}

func (t *topic) removeFunc(id int64) {
	t.mu.Lock()
	delete(t.fns, id)
	t.mu.Unlock()
}

func (t *topic) broadcast(msg Message) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, ch := range t.chans {
		select {
		case ch <- msg:
		default:
			metrics.WSDroppedFrames.Inc()
		}
	}
	for _, fn := range t.fns {
		fn(msg)
	}
}
