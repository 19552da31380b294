package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stubTokens struct {
	mu      sync.Mutex
	token   string
	cleared int
}

func (s *stubTokens) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *stubTokens) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.cleared++
	return nil
}

func newTestClient(t *testing.T, handler http.Handler, mutate func(*Config)) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := Config{BaseURL: srv.URL}
	if mutate != nil {
		mutate(&cfg)
	}
	c, err := New(cfg)
	require.NoError(t, err)
	return c
}

func TestNewRejectsRelativeBaseURL(t *testing.T) {
	_, err := New(Config{BaseURL: "localhost:8000"})
	require.Error(t, err)

	_, err = New(Config{})
	require.Error(t, err)
}

func TestGetDecodesBody(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/pairs", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NotEmpty(t, r.Header.Get("X-Request-Id"))
		w.Write([]byte(`{"name":"BTC/USDC"}`))
	}), nil)

	resp := Get[payload](context.Background(), c, "/pairs")
	got, err := resp.Unwrap()
	require.NoError(t, err)
	require.Equal(t, "BTC/USDC", got.Name)
}

func TestBearerTokenAttached(t *testing.T) {
	var authHeader atomic.Value

	tokens := &stubTokens{token: "tok-123"}
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader.Store(r.Header.Get("Authorization"))
		w.Write([]byte(`{}`))
	}), func(cfg *Config) { cfg.TokenSource = tokens })

	resp := Get[struct{}](context.Background(), c, "/me")
	require.True(t, resp.Success)
	require.Equal(t, "Bearer tok-123", authHeader.Load())

	// An empty token means the request goes out unauthenticated.
	tokens.token = ""
	Get[struct{}](context.Background(), c, "/me")
	require.Equal(t, "", authHeader.Load())
}

func TestUnauthorizedClearsTokenAndFiresHook(t *testing.T) {
	tokens := &stubTokens{token: "stale"}
	var hookCalls atomic.Int32

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"invalid or expired session"}`))
	}), func(cfg *Config) {
		cfg.TokenSource = tokens
		cfg.OnUnauthorized = func(ctx context.Context) { hookCalls.Add(1) }
	})

	resp := Get[struct{}](context.Background(), c, "/api/admin/users")
	_, err := resp.Unwrap()
	require.True(t, IsUnauthorized(err))

	apiErr := resp.Err
	require.Equal(t, 401, apiErr.Status)
	require.Equal(t, "invalid or expired session", apiErr.Message)

	require.Equal(t, int32(1), hookCalls.Load())
	tokens.mu.Lock()
	require.Equal(t, 1, tokens.cleared)
	require.Equal(t, "", tokens.token)
	tokens.mu.Unlock()

	// A second 401 fires the hook again; the hook is per-response, not
	// once per client lifetime.
	Get[struct{}](context.Background(), c, "/api/admin/users")
	require.Equal(t, int32(2), hookCalls.Load())
}

func TestValidationErrorCarriesFields(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"validation failed","errors":{"quantity":["must be positive"]}}`))
	}), nil)

	resp := Post[struct{}](context.Background(), c, "/orders", map[string]any{"quantity": -1})
	require.NotNil(t, resp.Err)
	require.Equal(t, KindValidation, resp.Err.Kind)
	require.Equal(t, []string{"must be positive"}, resp.Err.Fields["quantity"])
}

func TestServerErrorKind(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error":"matching engine unavailable"}`))
	}), nil)

	resp := Get[struct{}](context.Background(), c, "/health")
	require.NotNil(t, resp.Err)
	require.Equal(t, KindServer, resp.Err.Kind)
	require.Equal(t, 502, resp.Err.Status)
	require.Equal(t, "matching engine unavailable", resp.Err.Message)
}

func TestTransportErrorWhenServerUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := New(Config{BaseURL: url})
	require.NoError(t, err)

	resp := Get[struct{}](context.Background(), c, "/health")
	_, err = resp.Unwrap()
	require.True(t, IsTransport(err))
	require.Equal(t, KindTransport, resp.Err.Kind)
	require.Zero(t, resp.Err.Status)
}

func TestPerRequestTimeout(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}), nil)

	resp := Get[struct{}](context.Background(), c, "/slow", WithTimeout(50*time.Millisecond))
	require.NotNil(t, resp.Err)
	require.Equal(t, KindTimeout, resp.Err.Kind)
	require.True(t, IsTransport(resp.Err))
}

func TestEmptyBodyIsSuccess(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}), nil)

	resp := Delete[struct{}](context.Background(), c, "/orders/abc")
	require.True(t, resp.Success)
	require.Nil(t, resp.Err)
}

func TestMalformedBodyIsTransportError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name":`))
	}), nil)

	resp := Get[map[string]string](context.Background(), c, "/broken")
	require.NotNil(t, resp.Err)
	require.Equal(t, KindTransport, resp.Err.Kind)
}

func TestCoalescedGETHitsUpstreamOnce(t *testing.T) {
	var hits atomic.Int32
	gate := make(chan struct{})

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-gate
		w.Write([]byte(`{"ok":true}`))
	}), func(cfg *Config) { cfg.CoalesceGET = true })

	const callers = 8
	var wg sync.WaitGroup
	results := make([]Response[map[string]bool], callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Get[map[string]bool](context.Background(), c, "/orderbook/BTC-USDC")
		}(i)
	}

	// Let the goroutines pile onto the in-flight request before releasing it.
	require.Eventually(t, func() bool { return hits.Load() >= 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(gate)
	wg.Wait()

	require.Equal(t, int32(1), hits.Load())
	for _, r := range results {
		require.True(t, r.Success)
		require.True(t, r.Data["ok"])
	}
}

func TestQueryOptions(t *testing.T) {
	var query atomic.Value

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query.Store(r.URL.RawQuery)
		w.Write([]byte(`[]`))
	}), nil)

	resp := Get[[]string](context.Background(), c, "/trades/BTC-USDC", WithQueryInt("limit", 25), WithQuery("status", "OPEN"))
	require.True(t, resp.Success)
	require.Equal(t, "limit=25&status=OPEN", query.Load())
}

func TestWithBaseURLOverridesHost(t *testing.T) {
	other := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"settlements":[]}`))
	}))
	t.Cleanup(other.Close)

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("primary host must not be hit")
	}), nil)

	resp := Get[map[string]any](context.Background(), c, "/settlements", WithBaseURL(other.URL))
	require.True(t, resp.Success)
}
