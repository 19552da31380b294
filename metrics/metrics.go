// Package metrics exposes Prometheus collectors for the client SDK. All
// collectors are registered on the default registry so an embedding process
// only has to mount promhttp.Handler.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// APIRequests counts requests by HTTP method and outcome. Outcome is
	// one of ok, transport, timeout, unauthorized, validation, server.
	APIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cantondex_client_api_requests_total",
		Help: "API requests issued by the client, by method and outcome.",
	}, []string{"method", "outcome"})

	// APIRequestDuration observes wall time per request, by method.
	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cantondex_client_api_request_seconds",
		Help:    "API request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	// SessionExpired counts 401 responses that cleared the stored token.
	SessionExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cantondex_client_session_expired_total",
		Help: "Times a 401 response invalidated the stored session.",
	})

	// WSReconnects counts realtime channel reconnect attempts.
	WSReconnects = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cantondex_client_ws_reconnects_total",
		Help: "Realtime channel reconnect attempts.",
	})

	// WSDroppedFrames counts frames dropped because a subscriber's backlog
	// was full.
	WSDroppedFrames = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cantondex_client_ws_dropped_frames_total",
		Help: "Realtime frames dropped due to slow subscribers.",
	})

	// PollFailures counts failed poll attempts, by poller name.
	PollFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cantondex_client_poll_failures_total",
		Help: "Failed poll attempts. Polling continues after a failure.",
	}, []string{"name"})
)
