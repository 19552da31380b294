package compliance

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cantondex/cantondex-go/api"
)

func newComplianceClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	apiClient, err := api.New(api.Config{BaseURL: srv.URL})
	require.NoError(t, err)
	return New(apiClient)
}

func TestAlertsPassesFilters(t *testing.T) {
	c := newComplianceClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/alerts", r.URL.Path)
		require.Equal(t, "2", r.URL.Query().Get("page"))
		require.Equal(t, "20", r.URL.Query().Get("pageSize"))
		require.Equal(t, "OPEN", r.URL.Query().Get("status"))
		w.Write([]byte(`{
			"data":[{"id":"alert-1","type":"wash_trading","severity":"HIGH","status":"OPEN","message":"self-cross detected"}],
			"pagination":{"page":2,"pageSize":20,"total":41,"totalPages":3}
		}`))
	}))

	page, err := c.Alerts(context.Background(), PageParams{Page: 2, PageSize: 20}, "OPEN").Unwrap()
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	require.Equal(t, "wash_trading", page.Data[0].Type)
	require.Equal(t, 3, page.TotalPages)
}

func TestResolveAlert(t *testing.T) {
	c := newComplianceClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/alerts/alert-7/resolve", r.URL.Path)

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var body map[string]string
		require.NoError(t, json.Unmarshal(raw, &body))
		require.Equal(t, "false positive", body["resolution"])

		w.Write([]byte(`{"id":"alert-7","status":"RESOLVED","resolvedAt":"2026-03-01T10:00:00Z"}`))
	}))

	alert, err := c.ResolveAlert(context.Background(), "alert-7", "false positive").Unwrap()
	require.NoError(t, err)
	require.Equal(t, "RESOLVED", alert.Status)
	require.NotEmpty(t, alert.ResolvedAt)
}

func TestAuditLogFlatEnvelope(t *testing.T) {
	// The audit service emits the flat paginated shape, not the nested one.
	c := newComplianceClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/audit-log", r.URL.Path)
		w.Write([]byte(`{
			"data":[{"id":"audit-1","actor":"admin@example.com","action":"pair.delete","resource":"trading-pair/cc-usdc","timestamp":"2026-03-01T09:00:00Z"}],
			"page":1,"pageSize":50,"total":1,"totalPages":1
		}`))
	}))

	page, err := c.AuditLog(context.Background(), PageParams{}).Unwrap()
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	require.Equal(t, "pair.delete", page.Data[0].Action)
	require.Equal(t, 1, page.TotalPages)
}

func TestReviewKYCCase(t *testing.T) {
	c := newComplianceClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/kyc/case-3/review", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "APPROVED", body["decision"])

		w.Write([]byte(`{"id":"case-3","userId":"user-009","status":"APPROVED","riskLevel":"LOW","reviewer":"compliance@example.com"}`))
	}))

	kyc, err := c.ReviewKYCCase(context.Background(), "case-3", "APPROVED", "documents verified").Unwrap()
	require.NoError(t, err)
	require.Equal(t, "APPROVED", kyc.Status)
	require.Equal(t, "compliance@example.com", kyc.Reviewer)
}

func TestFlaggedTransactions(t *testing.T) {
	c := newComplianceClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/transactions/flagged", r.URL.Path)
		require.Equal(t, "PENDING", r.URL.Query().Get("status"))
		w.Write([]byte(`{
			"data":[{"id":"txn-1","userId":"user-004","type":"WITHDRAWAL","asset":"USDC","amount":"250000.00","reason":"amount over threshold","status":"PENDING"}],
			"pagination":{"page":1,"pageSize":50,"total":1,"totalPages":1}
		}`))
	}))

	page, err := c.FlaggedTransactions(context.Background(), PageParams{}, "PENDING").Unwrap()
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	require.Equal(t, "250000.00", page.Data[0].Amount)
	require.Equal(t, "amount over threshold", page.Data[0].Reason)
}

func TestKYCCasesUpstreamError(t *testing.T) {
	c := newComplianceClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"kyc provider unreachable"}`))
	}))

	resp := c.KYCCases(context.Background(), PageParams{}, "")
	require.NotNil(t, resp.Err)
	require.Equal(t, api.KindServer, resp.Err.Kind)
	require.Equal(t, "kyc provider unreachable", resp.Err.Message)
}
