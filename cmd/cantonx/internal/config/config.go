package config

import (
	"fmt"
	"log"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	clog "github.com/cantondex/cantondex-go/log"
)

type AppConfig struct {
	APIBaseURL        string
	SettlementBaseURL string
	WSURL             string

	TokenStorePath string

	OrderBookInterval time.Duration
	TradesInterval    time.Duration

	LogLevel      string
	LogFormatJSON bool
	LogGroups     []string
	LogFile       string
}

func DefaultConfig() AppConfig {
	return AppConfig{
		APIBaseURL:        "http://localhost:8000",
		SettlementBaseURL: "http://localhost:8001",
		WSURL:             "ws://localhost:3001/ws",
		TokenStorePath:    "cantonx.sqlite3",
		OrderBookInterval: time.Second,
		TradesInterval:    2 * time.Second,
		LogLevel:          "info",
		LogFormatJSON:     false,
	}
}

// NewConfigFlagSet declares the flags against the provided struct but does not parse.
func NewConfigFlagSet(cfg *AppConfig) *pflag.FlagSet {
	fs := pflag.NewFlagSet("cantonx", pflag.ContinueOnError)
	fs.SortFlags = false

	fs.StringVar(&cfg.APIBaseURL, "api-url", cfg.APIBaseURL, "Trading gateway base URL (env: CANTONDEX_API_URL)")
	fs.StringVar(&cfg.SettlementBaseURL, "settlement-api-url", cfg.SettlementBaseURL, "Settlement service base URL (env: CANTONDEX_SETTLEMENT_API_URL)")
	fs.StringVar(&cfg.WSURL, "ws-url", cfg.WSURL, "Realtime channel endpoint (env: CANTONDEX_WS_URL)")

	fs.StringVar(&cfg.TokenStorePath, "token-store", cfg.TokenStorePath, "Session token sqlite path (env: CANTONDEX_TOKEN_STORE)")

	fs.DurationVar(&cfg.OrderBookInterval, "orderbook-interval", cfg.OrderBookInterval, "Order book poll interval for watch (env: CANTONDEX_ORDERBOOK_INTERVAL)")
	fs.DurationVar(&cfg.TradesInterval, "trades-interval", cfg.TradesInterval, "Trades poll interval for watch (env: CANTONDEX_TRADES_INTERVAL)")

	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (env: CANTONDEX_LOG_LEVEL)")
	fs.BoolVar(&cfg.LogFormatJSON, "log-json", cfg.LogFormatJSON, "Emit logs as JSON (env: CANTONDEX_LOG_JSON)")
	fs.StringSliceVar(&cfg.LogGroups, "log-groups", cfg.LogGroups, "Only emit log records from these groups (env: CANTONDEX_LOG_GROUPS)")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Also append JSON logs to this file (env: CANTONDEX_LOG_FILE)")

	return fs
}

// ApplyEnvDefaults inspects flags that were left at their default and pulls from env.
func ApplyEnvDefaults(fs *pflag.FlagSet, cfg *AppConfig) error {
	flagSet := map[string]struct{}{}
	fs.Visit(func(f *pflag.Flag) { flagSet[f.Name] = struct{}{} })

	setString := func(name, envKey string, target *string) {
		if _, ok := flagSet[name]; ok {
			return
		}
		if v, ok := os.LookupEnv(envKey); ok && v != "" {
			*target = v
		}
	}
	setBool := func(name, envKey string, target *bool) {
		if _, ok := flagSet[name]; ok {
			return
		}
		if v, ok := os.LookupEnv(envKey); ok {
			if parsed, err := strconv.ParseBool(v); err == nil {
				*target = parsed
			}
		}
	}
	setDuration := func(name, envKey string, target *time.Duration) {
		if _, ok := flagSet[name]; ok {
			return
		}
		if v, ok := os.LookupEnv(envKey); ok {
			if parsed, err := time.ParseDuration(v); err == nil {
				*target = parsed
			}
		}
	}
	setSlice := func(name, envKey string, target *[]string) {
		if _, ok := flagSet[name]; ok {
			return
		}
		if v, ok := os.LookupEnv(envKey); ok && v != "" {
			parts := strings.Split(v, ",")
			out := parts[:0]
			for _, p := range parts {
				if p = strings.TrimSpace(p); p != "" {
					out = append(out, p)
				}
			}
			*target = out
		}
	}

	setString("api-url", "CANTONDEX_API_URL", &cfg.APIBaseURL)
	setString("settlement-api-url", "CANTONDEX_SETTLEMENT_API_URL", &cfg.SettlementBaseURL)
	setString("ws-url", "CANTONDEX_WS_URL", &cfg.WSURL)

	setString("token-store", "CANTONDEX_TOKEN_STORE", &cfg.TokenStorePath)

	setDuration("orderbook-interval", "CANTONDEX_ORDERBOOK_INTERVAL", &cfg.OrderBookInterval)
	setDuration("trades-interval", "CANTONDEX_TRADES_INTERVAL", &cfg.TradesInterval)

	setString("log-level", "CANTONDEX_LOG_LEVEL", &cfg.LogLevel)
	setBool("log-json", "CANTONDEX_LOG_JSON", &cfg.LogFormatJSON)
	setSlice("log-groups", "CANTONDEX_LOG_GROUPS", &cfg.LogGroups)
	setString("log-file", "CANTONDEX_LOG_FILE", &cfg.LogFile)

	return nil
}

func ValidateConfig(cfg AppConfig) error {
	var missing []string
	if cfg.APIBaseURL == "" {
		missing = append(missing, "api-url")
	}
	if cfg.SettlementBaseURL == "" {
		missing = append(missing, "settlement-api-url")
	}
	if cfg.WSURL == "" {
		missing = append(missing, "ws-url")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}

	for name, raw := range map[string]string{
		"api-url":            cfg.APIBaseURL,
		"settlement-api-url": cfg.SettlementBaseURL,
		"ws-url":             cfg.WSURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s %q must be an absolute URL", name, raw)
		}
	}

	if cfg.OrderBookInterval <= 0 {
		return fmt.Errorf("orderbook-interval must be positive, got %s", cfg.OrderBookInterval)
	}
	if cfg.TradesInterval <= 0 {
		return fmt.Errorf("trades-interval must be positive, got %s", cfg.TradesInterval)
	}
	return nil
}

func GetLogHandler(cfg AppConfig) slog.Handler {
	var level slog.Level
	if cfg.LogLevel == "" {
		level = slog.LevelInfo
	} else if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
		log.Printf("unknown log level %q, defaulting to info", cfg.LogLevel)
	}

	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.LogFormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}

	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Printf("cannot open log file %q: %v", cfg.LogFile, err)
		} else {
			handler = clog.NewMultiHandler(handler, slog.NewJSONHandler(f, handlerOpts))
		}
	}

	if len(cfg.LogGroups) > 0 {
		handler = clog.NewGroupFilterHandler(handler, cfg.LogGroups)
	}

	return handler
}
