// Package poll implements the fixed-interval fetch loop views fall back to
// when they do not consume the realtime channel.
package poll

import (
	"context"
	"log/slog"
	"time"

	clog "github.com/cantondex/cantondex-go/log"
	"github.com/cantondex/cantondex-go/metrics"
)

// Poller repeatedly invokes a fetch function: once immediately, then on a
// fixed interval until its context is cancelled. A failed attempt is
// surfaced through OnError and never stops the loop; the next tick retries.
type Poller struct {
	name     string
	interval time.Duration
	fn       func(ctx context.Context) error

	// OnError observes a failed attempt. Optional.
	OnError func(err error)
	Logger  *slog.Logger
}

// New builds a poller. interval must be positive.
func New(name string, interval time.Duration, fn func(ctx context.Context) error) *Poller {
	return &Poller{
		name:     name,
		interval: interval,
		fn:       fn,
	}
}

// Run blocks until ctx is done. The first attempt fires immediately.
func (p *Poller) Run(ctx context.Context) {
	logger := p.Logger
	if logger == nil {
		logger = clog.LoggerFromContext(ctx).WithGroup("poll")
	}
	logger = logger.With(slog.String("name", p.name))

	p.attempt(ctx, logger)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.attempt(ctx, logger)
		}
	}
}

func (p *Poller) attempt(ctx context.Context, logger *slog.Logger) {
	if ctx.Err() != nil {
		return
	}
	if err := p.fn(ctx); err != nil {
		metrics.PollFailures.WithLabelValues(p.name).Inc()
		logger.Debug("poll attempt failed", slog.String("error", err.Error()))
		if p.OnError != nil {
			p.OnError(err)
		}
	}
}
