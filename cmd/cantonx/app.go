package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"golang.org/x/sync/errgroup"

	"github.com/cantondex/cantondex-go/admin"
	"github.com/cantondex/cantondex-go/api"
	"github.com/cantondex/cantondex-go/auth"
	"github.com/cantondex/cantondex-go/cmd/cantonx/internal/config"
	"github.com/cantondex/cantondex-go/compliance"
	"github.com/cantondex/cantondex-go/custody"
	"github.com/cantondex/cantondex-go/poll"
	"github.com/cantondex/cantondex-go/trading"
	"github.com/cantondex/cantondex-go/ws"
)

// App bundles the backend clients behind the cantonx verbs.
type App struct {
	Config config.AppConfig
	Logger *slog.Logger

	Tokens *auth.Store
	API    *api.Client

	Admin      *admin.Client
	Trading    *trading.Client
	Custody    *custody.Client
	Compliance *compliance.Client
	Channel    *ws.Client
}

func newApp(cfg config.AppConfig, logger *slog.Logger) (*App, error) {
	tokens, err := auth.Open(cfg.TokenStorePath)
	if err != nil {
		return nil, fmt.Errorf("open token store: %w", err)
	}

	apiClient, err := api.New(api.Config{
		BaseURL:     cfg.APIBaseURL,
		TokenSource: tokens,
		OnUnauthorized: func(ctx context.Context) {
			logger.Warn("session expired; run cantonx login again")
		},
		CoalesceGET: true,
		Logger:      logger.WithGroup("api"),
	})
	if err != nil {
		tokens.Close()
		return nil, err
	}

	channel, err := ws.NewClient(ws.Config{
		URL:         cfg.WSURL,
		TokenSource: tokens,
		Logger:      logger.WithGroup("ws"),
	})
	if err != nil {
		tokens.Close()
		return nil, err
	}

	return &App{
		Config:     cfg,
		Logger:     logger,
		Tokens:     tokens,
		API:        apiClient,
		Admin:      admin.New(apiClient, cfg.SettlementBaseURL),
		Trading:    trading.New(apiClient),
		Custody:    custody.New(apiClient, tokens),
		Compliance: compliance.New(apiClient),
		Channel:    channel,
	}, nil
}

func (a *App) Close() {
	a.Channel.Disconnect()
	if err := a.Tokens.Close(); err != nil {
		a.Logger.Warn("closing token store", slog.String("error", err.Error()))
	}
}

func (a *App) runLogin(ctx context.Context, email, password string) error {
	token, err := a.Custody.Login(ctx, email, password).Unwrap()
	if err != nil {
		return err
	}
	fmt.Printf("logged in as %s; session valid for %ds\n", email, token.ExpiresIn)
	return nil
}

func (a *App) runHealth(ctx context.Context) error {
	health, err := a.Admin.SystemHealth(ctx).Unwrap()
	if err != nil {
		return err
	}

	fmt.Printf("overall: %s\n", health.Status)
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SERVICE\tSTATUS\tUPTIME\tRESPONSE")
	for _, svc := range health.Services {
		fmt.Fprintf(tw, "%s\t%s\t%.2f%%\t%.1fms\n", svc.Name, svc.Status, svc.Uptime, svc.ResponseTime)
	}
	return tw.Flush()
}

func (a *App) runParticipants(ctx context.Context) error {
	participants, err := a.Admin.Participants(ctx).Unwrap()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PARTY\tSTATUS\tDOMAINS")
	for _, p := range participants {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", p.ID, p.Status, len(p.Domains))
	}
	return tw.Flush()
}

func (a *App) runDomains(ctx context.Context) error {
	domains, err := a.Admin.Domains(ctx).Unwrap()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tPARTICIPANTS")
	for _, d := range domains {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", d.ID, d.Name, d.Status, d.ConnectedParticipants)
	}
	return tw.Flush()
}

func (a *App) runAlerts(ctx context.Context, status string) error {
	page, err := a.Compliance.Alerts(ctx, compliance.PageParams{PageSize: 50}, status).Unwrap()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSEVERITY\tSTATUS\tMESSAGE")
	for _, alert := range page.Data {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", alert.ID, alert.Severity, alert.Status, alert.Message)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Printf("page %d of %d (%d total)\n", page.Page, page.TotalPages, page.Total)
	return nil
}

// runWatch polls the order book and recent trades for pair while streaming
// realtime frames, until interrupted.
func (a *App) runWatch(ctx context.Context, pair string) error {
	if err := a.Channel.Connect(ctx); err != nil {
		a.Logger.Warn("realtime channel unavailable, polling only", slog.String("error", err.Error()))
	}
	frames := a.Channel.Subscribe(ctx, ws.Wildcard)

	books := poll.New("orderbook", a.Config.OrderBookInterval, func(ctx context.Context) error {
		book, err := a.Trading.OrderBook(ctx, pair, 1).Unwrap()
		if err != nil {
			return err
		}
		bid, ask := "-", "-"
		if len(book.Bids) > 0 {
			bid = book.Bids[0].Price
		}
		if len(book.Asks) > 0 {
			ask = book.Asks[0].Price
		}
		fmt.Printf("book  %s  bid=%s ask=%s\n", pair, bid, ask)
		return nil
	})
	books.Logger = a.Logger.WithGroup("poll")

	trades := poll.New("trades", a.Config.TradesInterval, func(ctx context.Context) error {
		recent, err := a.Trading.Trades(ctx, pair, 1).Unwrap()
		if err != nil {
			return err
		}
		if len(recent) > 0 {
			t := recent[0]
			fmt.Printf("trade %s  %s %s @ %s\n", pair, t.MakerSide, t.Quantity, t.Price)
		}
		return nil
	})
	trades.Logger = a.Logger.WithGroup("poll")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		books.Run(ctx)
		return ctx.Err()
	})
	g.Go(func() error {
		trades.Run(ctx)
		return ctx.Err()
	})
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case msg, ok := <-frames:
				if !ok {
					return nil
				}
				fmt.Printf("event %s  %s\n", msg.Type, string(msg.Payload))
			}
		}
	})
	return g.Wait()
}
