package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	srv := New()
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return srv, ts
}

func getJSON(t *testing.T, ts *httptest.Server, path, token string, out any) int {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, ts.URL+path, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestHealthAndStatusShapes(t *testing.T) {
	_, ts := newTestServer(t)

	var health map[string]any
	require.Equal(t, http.StatusOK, getJSON(t, ts, "/health", "", &health))
	require.Equal(t, "healthy", health["status"])
	require.Contains(t, health, "services")

	var status map[string]any
	require.Equal(t, http.StatusOK, getJSON(t, ts, "/status", "", &status))
	require.Contains(t, status, "postgres")
	// api_gateway is deliberately a bare string, not an object; clients
	// must handle both shapes.
	_, isString := status["api_gateway"].(string)
	require.True(t, isString)
}

func TestAdminRoutesRequireSession(t *testing.T) {
	srv, ts := newTestServer(t)

	require.Equal(t, http.StatusUnauthorized, getJSON(t, ts, "/api/admin/users", "", nil))
	require.Equal(t, http.StatusUnauthorized, getJSON(t, ts, "/api/admin/users", "bogus", nil))

	access, _ := srv.State.IssueSession("admin@example.com")
	require.Equal(t, http.StatusOK, getJSON(t, ts, "/api/admin/users", access, nil))
}

func TestLoginRefreshLogoutFlow(t *testing.T) {
	srv, ts := newTestServer(t)

	login := func(body string) (int, tokenResponse) {
		resp, err := http.Post(ts.URL+"/auth/login", "application/json", bytes.NewBufferString(body))
		require.NoError(t, err)
		defer resp.Body.Close()
		var tok tokenResponse
		if resp.StatusCode == http.StatusOK {
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&tok))
		}
		return resp.StatusCode, tok
	}

	status, _ := login(`{"email":"","password":""}`)
	require.Equal(t, http.StatusBadRequest, status)

	status, tok := login(`{"email":"trader01@example.com","password":"pw"}`)
	require.Equal(t, http.StatusOK, status)
	require.True(t, srv.State.ValidSession(tok.AccessToken))

	// Refresh rotates and consumes the refresh token.
	resp, err := http.Post(ts.URL+"/auth/refresh", "application/json",
		bytes.NewBufferString(`{"refreshToken":"`+tok.RefreshToken+`"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp2, err := http.Post(ts.URL+"/auth/refresh", "application/json",
		bytes.NewBufferString(`{"refreshToken":"`+tok.RefreshToken+`"}`))
	require.NoError(t, err)
	resp2.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp2.StatusCode)

	// Logout revokes the access token.
	req, err := http.NewRequest(http.MethodPost, ts.URL+"/auth/logout", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	resp3, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp3.Body.Close()
	require.Equal(t, http.StatusOK, resp3.StatusCode)
	require.False(t, srv.State.ValidSession(tok.AccessToken))
}

func TestUsersPaginationWire(t *testing.T) {
	srv, ts := newTestServer(t)
	access, _ := srv.State.IssueSession("admin@example.com")

	var page paginatedUsers
	require.Equal(t, http.StatusOK, getJSON(t, ts, "/api/admin/users?page=3&pageSize=10", access, &page))
	require.Len(t, page.Data, 5)
	require.Equal(t, 3, page.Pagination.Page)
	require.Equal(t, 25, page.Pagination.Total)
	require.Equal(t, 3, page.Pagination.TotalPages)

	// Out-of-range pages return an empty data slice, not an error.
	require.Equal(t, http.StatusOK, getJSON(t, ts, "/api/admin/users?page=9&pageSize=10", access, &page))
	require.Empty(t, page.Data)
	require.Equal(t, 25, page.Pagination.Total)
}

func TestSettlementsEmptyByDefault(t *testing.T) {
	srv, ts := newTestServer(t)

	var body struct {
		Settlements []Settlement `json:"settlements"`
	}
	require.Equal(t, http.StatusOK, getJSON(t, ts, "/settlements", "", &body))
	require.Empty(t, body.Settlements)

	srv.State.SetSettlements([]Settlement{{SettlementID: "stl-1", Symbol: "BTC"}})
	require.Equal(t, http.StatusOK, getJSON(t, ts, "/settlements", "", &body))
	require.Len(t, body.Settlements, 1)
	require.Equal(t, "stl-1", body.Settlements[0].SettlementID)
}

func TestOrderBookDepthParam(t *testing.T) {
	_, ts := newTestServer(t)

	var book OrderBook
	require.Equal(t, http.StatusOK, getJSON(t, ts, "/orderbook/BTC/USDC?depth=4", "", &book))
	require.Len(t, book.Bids, 4)
	require.Len(t, book.Asks, 4)

	require.Equal(t, http.StatusNotFound, getJSON(t, ts, "/orderbook/XRP/USDC", "", nil))
}
