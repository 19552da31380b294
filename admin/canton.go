package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/cantondex/cantondex-go/api"
)

// ParticipantStatus mirrors the ledger's participant states.
type ParticipantStatus string

const (
	ParticipantOnline  ParticipantStatus = "ONLINE"
	ParticipantOffline ParticipantStatus = "OFFLINE"
	ParticipantSyncing ParticipantStatus = "SYNCING"
)

// DomainStatus mirrors the ledger's domain states.
type DomainStatus string

const (
	DomainActive   DomainStatus = "ACTIVE"
	DomainInactive DomainStatus = "INACTIVE"
	DomainSyncing  DomainStatus = "SYNCING"
	DomainError    DomainStatus = "ERROR"
)

// CantonParticipant is a party on the Canton ledger, as surfaced to the
// admin panel.
type CantonParticipant struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Status    ParticipantStatus `json:"status"`
	Domains   []string          `json:"domains"`
	LedgerID  string            `json:"ledgerId"`
	CreatedAt time.Time         `json:"createdAt"`
}

// CantonDomain is a synchronization domain derived from settlement records.
type CantonDomain struct {
	ID                    string       `json:"id"`
	Name                  string       `json:"name"`
	Status                DomainStatus `json:"status"`
	ParticipantID         string       `json:"participantId"`
	ConnectedParticipants int          `json:"connectedParticipants"`
	CreatedAt             time.Time    `json:"createdAt"`
	LastSyncAt            time.Time    `json:"lastSyncAt"`
}

type partyList struct {
	Parties []struct {
		Party string `json:"party"`
	} `json:"parties"`
}

// Participants lists the ledger parties known to the backend. The ledger API
// only exposes party identifiers, so the richer participant fields are
// filled with defaults.
func (c *Client) Participants(ctx context.Context) api.Response[[]CantonParticipant] {
	resp := api.Get[partyList](ctx, c.api, "/canton/parties")
	if !resp.Success {
		return api.FailFrom[[]CantonParticipant](resp)
	}

	now := time.Now().UTC()
	participants := make([]CantonParticipant, 0, len(resp.Data.Parties))
	for _, p := range resp.Data.Parties {
		participants = append(participants, CantonParticipant{
			ID:        p.Party,
			Name:      p.Party,
			Status:    ParticipantOnline,
			Domains:   []string{},
			LedgerID:  p.Party,
			CreatedAt: now,
		})
	}
	return api.OK(participants)
}

type settlementList struct {
	Settlements []struct {
		SettlementID string `json:"settlement_id"`
		Symbol       string `json:"symbol"`
		BuyerParty   string `json:"buyer_party"`
		ExecutedAt   string `json:"executed_at"`
	} `json:"settlements"`
}

// Domains derives the domain list from the settlement service's history.
// When the upstream reports zero settlements a single "default-domain"
// placeholder is returned instead of an empty list; callers that need to
// distinguish a quiet backend from a broken one must check the ledger
// directly.
func (c *Client) Domains(ctx context.Context) api.Response[[]CantonDomain] {
	opts := []api.RequestOption{}
	if c.settlementBase != "" {
		opts = append(opts, api.WithBaseURL(c.settlementBase))
	}
	resp := api.Get[settlementList](ctx, c.api, "/settlements", opts...)
	if !resp.Success {
		return api.FailFrom[[]CantonDomain](resp)
	}

	now := time.Now().UTC()
	domains := make([]CantonDomain, 0, len(resp.Data.Settlements))
	for i, settlement := range resp.Data.Settlements {
		id := settlement.SettlementID
		if id == "" {
			id = fmt.Sprintf("domain-%d", i)
		}
		symbol := settlement.Symbol
		if symbol == "" {
			symbol = "Asset"
		}
		participant := settlement.BuyerParty
		if participant == "" {
			participant = "unknown"
		}
		executedAt := now
		if ts, err := time.Parse(time.RFC3339, settlement.ExecutedAt); err == nil {
			executedAt = ts
		}
		domains = append(domains, CantonDomain{
			ID:                    id,
			Name:                  symbol + " Domain",
			Status:                DomainActive,
			ParticipantID:         participant,
			ConnectedParticipants: 2,
			CreatedAt:             executedAt,
			LastSyncAt:            executedAt,
		})
	}

	if len(domains) == 0 {
		domains = append(domains, CantonDomain{
			ID:                    "default-domain",
			Name:                  "Settlement Domain",
			Status:                DomainActive,
			ParticipantID:         "SecuritiesIssuer::participant",
			ConnectedParticipants: 2,
			CreatedAt:             now,
			LastSyncAt:            now,
		})
	}

	return api.OK(domains)
}
