// Package compliance is the facade for the compliance dashboard backend:
// alert queues, the audit log and KYC case review.
package compliance

import (
	"context"
	"log/slog"

	"github.com/cantondex/cantondex-go/api"
)

// Client wraps the shared HTTP client with the compliance endpoint map.
type Client struct {
	api    *api.Client
	logger *slog.Logger
}

func New(apiClient *api.Client) *Client {
	return &Client{
		api:    apiClient,
		logger: slog.Default().WithGroup("compliance"),
	}
}

// Alert is a triggered compliance rule.
type Alert struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Severity   string         `json:"severity"`
	Status     string         `json:"status"`
	UserID     string         `json:"userId,omitempty"`
	Message    string         `json:"message"`
	Details    map[string]any `json:"details,omitempty"`
	CreatedAt  string         `json:"createdAt"`
	ResolvedAt string         `json:"resolvedAt,omitempty"`
}

// AuditEntry is one line of the immutable audit log.
type AuditEntry struct {
	ID        string         `json:"id"`
	Actor     string         `json:"actor"`
	Action    string         `json:"action"`
	Resource  string         `json:"resource"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp string         `json:"timestamp"`
}

// KYCCase is one user's verification case.
type KYCCase struct {
	ID          string `json:"id"`
	UserID      string `json:"userId"`
	Status      string `json:"status"`
	RiskLevel   string `json:"riskLevel"`
	SubmittedAt string `json:"submittedAt"`
	ReviewedAt  string `json:"reviewedAt,omitempty"`
	Reviewer    string `json:"reviewer,omitempty"`
}

// FlaggedTransaction is a transaction held for manual review.
type FlaggedTransaction struct {
	ID        string         `json:"id"`
	UserID    string         `json:"userId"`
	Type      string         `json:"type"`
	Asset     string         `json:"asset"`
	Amount    string         `json:"amount"`
	Reason    string         `json:"reason"`
	Status    string         `json:"status"`
	Details   map[string]any `json:"details,omitempty"`
	FlaggedAt string         `json:"flaggedAt"`
}

// PageParams page a compliance listing.
type PageParams struct {
	Page     int
	PageSize int
}

func (p PageParams) options() []api.RequestOption {
	opts := []api.RequestOption{}
	if p.Page > 0 {
		opts = append(opts, api.WithQueryInt("page", p.Page))
	}
	if p.PageSize > 0 {
		opts = append(opts, api.WithQueryInt("pageSize", p.PageSize))
	}
	return opts
}

// Alerts lists open and resolved alerts, optionally filtered by status.
func (c *Client) Alerts(ctx context.Context, params PageParams, status string) api.Response[api.Paginated[Alert]] {
	opts := params.options()
	if status != "" {
		opts = append(opts, api.WithQuery("status", status))
	}
	return api.Get[api.Paginated[Alert]](ctx, c.api, "/alerts", opts...)
}

// ResolveAlert marks an alert as handled.
func (c *Client) ResolveAlert(ctx context.Context, id, resolution string) api.Response[Alert] {
	return api.Post[Alert](ctx, c.api, "/alerts/"+id+"/resolve", map[string]string{"resolution": resolution})
}

// AuditLog lists audit entries, newest first.
func (c *Client) AuditLog(ctx context.Context, params PageParams) api.Response[api.Paginated[AuditEntry]] {
	return api.Get[api.Paginated[AuditEntry]](ctx, c.api, "/audit-log", params.options()...)
}

// KYCCases lists verification cases, optionally filtered by status.
func (c *Client) KYCCases(ctx context.Context, params PageParams, status string) api.Response[api.Paginated[KYCCase]] {
	opts := params.options()
	if status != "" {
		opts = append(opts, api.WithQuery("status", status))
	}
	return api.Get[api.Paginated[KYCCase]](ctx, c.api, "/kyc", opts...)
}

// FlaggedTransactions lists transactions held for manual review.
func (c *Client) FlaggedTransactions(ctx context.Context, params PageParams, status string) api.Response[api.Paginated[FlaggedTransaction]] {
	opts := params.options()
	if status != "" {
		opts = append(opts, api.WithQuery("status", status))
	}
	return api.Get[api.Paginated[FlaggedTransaction]](ctx, c.api, "/transactions/flagged", opts...)
}

// ReviewKYCCase records a review decision on a case.
func (c *Client) ReviewKYCCase(ctx context.Context, id, decision, notes string) api.Response[KYCCase] {
	return api.Post[KYCCase](ctx, c.api, "/kyc/"+id+"/review", map[string]string{
		"decision": decision,
		"notes":    notes,
	})
}
