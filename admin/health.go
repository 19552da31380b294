package admin

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cantondex/cantondex-go/api"
)

// Status is the single health vocabulary the facade maps every backend's
// wording onto.
type Status string

const (
	StatusHealthy  Status = "HEALTHY"
	StatusDegraded Status = "DEGRADED"
	StatusDown     Status = "DOWN"
	StatusUnknown  Status = "UNKNOWN"
)

// NormalizeStatus folds the heterogeneous health vocabularies of the backend
// services into Status. Case-insensitive; anything unrecognized is Unknown.
func NormalizeStatus(value string) Status {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "healthy", "connected", "operational":
		return StatusHealthy
	case "degraded", "warning":
		return StatusDegraded
	case "down", "error", "disconnected":
		return StatusDown
	default:
		return StatusUnknown
	}
}

// ServiceHealth is one service's entry in the aggregated report.
type ServiceHealth struct {
	Name         string         `json:"name"`
	Status       Status         `json:"status"`
	Uptime       float64        `json:"uptime"`
	LastError    string         `json:"lastError,omitempty"`
	ResponseTime float64        `json:"responseTime,omitempty"`
	Details      map[string]any `json:"details,omitempty"`
}

// SystemHealth is the merged view of the /health and /status endpoints.
type SystemHealth struct {
	Status      Status          `json:"status"`
	Services    []ServiceHealth `json:"services"`
	LastChecked time.Time       `json:"lastChecked"`
}

// defaultUptime stands in when a service omits its uptime figure.
const defaultUptime = 99.99

type healthSummary struct {
	Status   string         `json:"status"`
	Services map[string]any `json:"services"`
}

// buildServiceList normalizes a service map whose values are either bare
// status strings or detail objects.
func buildServiceList(services map[string]any) []ServiceHealth {
	out := make([]ServiceHealth, 0, len(services))
	for name, details := range services {
		switch v := details.(type) {
		case string:
			out = append(out, ServiceHealth{
				Name:    name,
				Status:  NormalizeStatus(v),
				Uptime:  defaultUptime,
				Details: map[string]any{"status": v},
			})
		case map[string]any:
			entry := ServiceHealth{
				Name:    name,
				Uptime:  defaultUptime,
				Details: v,
			}
			status, _ := v["status"].(string)
			if status == "" {
				status, _ = v["state"].(string)
			}
			entry.Status = NormalizeStatus(status)
			if uptime, ok := v["uptime"].(float64); ok {
				entry.Uptime = uptime
			}
			if rt, ok := v["response_time"].(float64); ok {
				entry.ResponseTime = rt
			}
			out = append(out, entry)
		default:
			out = append(out, ServiceHealth{Name: name, Status: StatusUnknown, Uptime: defaultUptime})
		}
	}
	return out
}

// SystemHealth fetches /health and /status in parallel and merges them. The
// health summary is the critical path: its failure fails the whole call. The
// status service list is auxiliary: its failure only omits those entries.
func (c *Client) SystemHealth(ctx context.Context) api.Response[SystemHealth] {
	var (
		healthResp api.Response[healthSummary]
		statusResp api.Response[map[string]any]
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		healthResp = api.Get[healthSummary](gctx, c.api, "/health")
		return nil
	})
	g.Go(func() error {
		statusResp = api.Get[map[string]any](gctx, c.api, "/status")
		return nil
	})
	_ = g.Wait()

	if !healthResp.Success {
		return api.FailFrom[SystemHealth](healthResp)
	}

	services := []ServiceHealth{}
	if statusResp.Success {
		services = append(services, buildServiceList(statusResp.Data)...)
	} else if statusResp.Err != nil {
		c.logger.Debug("status endpoint unavailable, omitting its services",
			"error", statusResp.Err.Message)
	}
	if len(healthResp.Data.Services) > 0 {
		services = append(services, buildServiceList(healthResp.Data.Services)...)
	}

	return api.OK(SystemHealth{
		Status:      NormalizeStatus(healthResp.Data.Status),
		Services:    services,
		LastChecked: time.Now().UTC(),
	})
}
