package admin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cantondex/cantondex-go/api"
)

func TestParticipantsMapsParties(t *testing.T) {
	c := newAdminClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/canton/parties", r.URL.Path)
		w.Write([]byte(`{"parties":[{"party":"Exchange::participant"},{"party":"Custodian::participant"}]}`))
	}))

	participants, err := c.Participants(context.Background()).Unwrap()
	require.NoError(t, err)
	require.Len(t, participants, 2)

	first := participants[0]
	require.Equal(t, "Exchange::participant", first.ID)
	require.Equal(t, "Exchange::participant", first.Name)
	require.Equal(t, ParticipantOnline, first.Status)
	require.NotNil(t, first.Domains)
	require.Empty(t, first.Domains)
}

func TestDomainsMapsSettlements(t *testing.T) {
	executed := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	settlementSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/settlements", r.URL.Path)
		w.Write([]byte(`{"settlements":[
			{"settlement_id":"stl-1","symbol":"BTC","buyer_party":"Custodian::participant","executed_at":"` + executed.Format(time.RFC3339) + `"},
			{"symbol":"","buyer_party":""}
		]}`))
	}))
	t.Cleanup(settlementSrv.Close)

	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("domains must hit the settlement host, not the gateway")
	}))
	t.Cleanup(primary.Close)

	apiClient, err := api.New(api.Config{BaseURL: primary.URL})
	require.NoError(t, err)
	c := New(apiClient, settlementSrv.URL)

	domains, err := c.Domains(context.Background()).Unwrap()
	require.NoError(t, err)
	require.Len(t, domains, 2)

	require.Equal(t, "stl-1", domains[0].ID)
	require.Equal(t, "BTC Domain", domains[0].Name)
	require.Equal(t, DomainActive, domains[0].Status)
	require.Equal(t, "Custodian::participant", domains[0].ParticipantID)
	require.True(t, domains[0].CreatedAt.Equal(executed))

	// Missing fields fall back to synthesized values.
	require.Equal(t, "domain-1", domains[1].ID)
	require.Equal(t, "Asset Domain", domains[1].Name)
	require.Equal(t, "unknown", domains[1].ParticipantID)
}

func TestDomainsSynthesizesDefaultWhenEmpty(t *testing.T) {
	c := newAdminClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"settlements":[]}`))
	}))

	domains, err := c.Domains(context.Background()).Unwrap()
	require.NoError(t, err)
	require.Len(t, domains, 1)
	require.Equal(t, "default-domain", domains[0].ID)
	require.Equal(t, "Settlement Domain", domains[0].Name)
	require.Equal(t, "SecuritiesIssuer::participant", domains[0].ParticipantID)
	require.Equal(t, 2, domains[0].ConnectedParticipants)
}

func TestDomainsUpstreamFailure(t *testing.T) {
	c := newAdminClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"ledger unavailable"}`))
	}))

	_, err := c.Domains(context.Background()).Unwrap()
	require.Error(t, err)
	require.False(t, api.IsUnauthorized(err))
}
