package admin

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cantondex/cantondex-go/api"
	"github.com/cantondex/cantondex-go/cantonmock/server"
)

type staticToken string

func (s staticToken) Token(ctx context.Context) (string, error) { return string(s), nil }

func newMockBackend(t *testing.T) (*server.Server, *Client) {
	t.Helper()
	mock := server.New()
	srv := httptest.NewServer(mock.Routes())
	t.Cleanup(srv.Close)

	access, _ := mock.State.IssueSession("admin@example.com")
	apiClient, err := api.New(api.Config{BaseURL: srv.URL, TokenSource: staticToken(access)})
	require.NoError(t, err)
	return mock, New(apiClient, srv.URL)
}

func TestListUsersPagination(t *testing.T) {
	_, c := newMockBackend(t)
	ctx := context.Background()

	page, err := c.ListUsers(ctx, ListUsersParams{Page: 2, PageSize: 10}).Unwrap()
	require.NoError(t, err)
	require.Len(t, page.Data, 10)
	require.Equal(t, 2, page.Page)
	require.Equal(t, 25, page.Total)
	require.Equal(t, 3, page.TotalPages)
	require.Equal(t, "trader11@example.com", page.Data[0].Email)
}

func TestListUsersSearch(t *testing.T) {
	_, c := newMockBackend(t)

	page, err := c.ListUsers(context.Background(), ListUsersParams{Search: "trader07"}).Unwrap()
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	require.Equal(t, 1, page.TotalPages)
	require.Equal(t, "trader07", page.Data[0].Username)
}

func TestListUsersRequiresSession(t *testing.T) {
	mock := server.New()
	srv := httptest.NewServer(mock.Routes())
	t.Cleanup(srv.Close)

	apiClient, err := api.New(api.Config{BaseURL: srv.URL})
	require.NoError(t, err)
	c := New(apiClient, "")

	_, err = c.ListUsers(context.Background(), ListUsersParams{}).Unwrap()
	require.True(t, api.IsUnauthorized(err))
}

func TestTradingPairLifecycle(t *testing.T) {
	_, c := newMockBackend(t)
	ctx := context.Background()

	pairs, err := c.TradingPairs(ctx).Unwrap()
	require.NoError(t, err)
	require.Len(t, pairs, 3)

	created, err := c.CreateTradingPair(ctx, TradingPair{
		BaseAsset:  "SOL",
		QuoteAsset: "USDC",
		Symbol:     "SOL/USDC",
		Status:     "ACTIVE",
	}).Unwrap()
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.NotEmpty(t, created.CreatedAt)

	created.Status = "SUSPENDED"
	updated, err := c.UpdateTradingPair(ctx, created.ID, created).Unwrap()
	require.NoError(t, err)
	require.Equal(t, "SUSPENDED", updated.Status)

	_, err = c.DeleteTradingPair(ctx, created.ID).Unwrap()
	require.NoError(t, err)

	_, err = c.UpdateTradingPair(ctx, created.ID, created).Unwrap()
	require.Error(t, err)
}

func TestFeeConfigs(t *testing.T) {
	_, c := newMockBackend(t)

	fees, err := c.FeeConfigs(context.Background()).Unwrap()
	require.NoError(t, err)
	require.Len(t, fees, 1)
	require.True(t, fees[0].IsDefault)
	require.Equal(t, "0.001", fees[0].MakerFee)
}
