// cantonx is a terminal client for the CantonDEX backend: it logs in,
// inspects system and ledger health, and watches a market through the
// polling and realtime paths the web frontends use.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/cantondex/cantondex-go/cmd/cantonx/internal/config"
	clog "github.com/cantondex/cantondex-go/log"
)

func fatal(msg string, err error) {
	slog.Error(msg, slog.String("error", err.Error()))
	os.Exit(1)
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: cantonx [flags] <command>

commands:
  login <email> <password>  authenticate and persist the session token
  health                    aggregated system health report
  participants              Canton ledger parties
  domains                   Canton synchronization domains
  alerts [status]           compliance alerts, optionally filtered
  watch <pair>              stream a market (order book, trades, events)

run "cantonx --help" for flags`)
	os.Exit(2)
}

func main() {
	// A .env next to the binary seeds the environment before flag handling.
	_ = godotenv.Load()

	cfg := config.DefaultConfig()
	fs := config.NewConfigFlagSet(&cfg)

	if err := fs.Parse(os.Args[1:]); err != nil {
		fatal("parsing flags failed", err)
	}
	if err := config.ApplyEnvDefaults(fs, &cfg); err != nil {
		fatal("invalid parameters", err)
	}
	if err := config.ValidateConfig(cfg); err != nil {
		fatal("invalid configuration", err)
	}

	logger := slog.New(config.GetLogHandler(cfg))
	slog.SetDefault(logger)
	log.SetOutput(slog.NewLogLogger(logger.Handler(), slog.LevelDebug).Writer())

	args := fs.Args()
	if len(args) == 0 {
		usage()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = clog.ContextWithLogger(ctx, logger)

	app, err := newApp(cfg, logger)
	if err != nil {
		fatal("startup failed", err)
	}
	defer app.Close()

	switch cmd := args[0]; cmd {
	case "login":
		if len(args) != 3 {
			usage()
		}
		err = app.runLogin(ctx, args[1], args[2])
	case "health":
		err = app.runHealth(ctx)
	case "participants":
		err = app.runParticipants(ctx)
	case "domains":
		err = app.runDomains(ctx)
	case "alerts":
		status := ""
		if len(args) > 1 {
			status = args[1]
		}
		err = app.runAlerts(ctx, status)
	case "watch":
		if len(args) != 2 {
			usage()
		}
		err = app.runWatch(ctx, args[1])
	default:
		usage()
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		fatal("command failed", err)
	}
}
