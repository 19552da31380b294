// Package api implements the shared CantonDEX HTTP client: the response
// envelope, the typed error taxonomy, bearer-token injection and the
// session-expired hook. Domain facades (admin, trading, custody, compliance)
// compose this client with fixed endpoint paths.
package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/sync/singleflight"

	"github.com/cantondex/cantondex-go/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultTimeout bounds every request unless overridden per call.
const DefaultTimeout = 30 * time.Second

// TokenSource supplies the bearer token attached to outgoing requests. An
// empty token with a nil error means "send unauthenticated".
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// ClearableTokenSource is a TokenSource whose credentials can be invalidated.
// The client clears it when the server answers 401.
type ClearableTokenSource interface {
	TokenSource
	Clear(ctx context.Context) error
}

// Config parameterizes a Client. One client per backend base URL.
type Config struct {
	// BaseURL is required, e.g. "http://localhost:8000".
	BaseURL string
	// Timeout defaults to DefaultTimeout.
	Timeout time.Duration
	// Headers are sent on every request in addition to Content-Type.
	Headers map[string]string
	// TokenSource is optional; without it requests go out unauthenticated.
	TokenSource TokenSource
	// OnUnauthorized is invoked once per 401 response, after the token
	// source has been cleared. The application decides what "session
	// expired" means (re-login, shutdown); the transport layer does not.
	OnUnauthorized func(ctx context.Context)
	// CoalesceGET collapses identical concurrent GETs into one upstream
	// request.
	CoalesceGET bool
	// HTTPClient overrides the tuned default, mainly for tests.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client is a thin resilient wrapper over net/http. It never surfaces a Go
// error for request failures; every outcome is folded into the envelope.
type Client struct {
	base           *url.URL
	httpc          *http.Client
	headers        map[string]string
	tokens         TokenSource
	onUnauthorized func(ctx context.Context)
	inflight       *singleflight.Group
	logger         *slog.Logger
}

// New validates cfg and builds a Client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("api: base URL is required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("api: parse base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("api: base URL %q must be absolute", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpc := cfg.HTTPClient
	if httpc == nil {
		httpc = &http.Client{Transport: newTransport(), Timeout: timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default().WithGroup("api")
	}

	c := &Client{
		base:           base,
		httpc:          httpc,
		headers:        cfg.Headers,
		tokens:         cfg.TokenSource,
		onUnauthorized: cfg.OnUnauthorized,
		logger:         logger,
	}
	if cfg.CoalesceGET {
		c.inflight = &singleflight.Group{}
	}
	return c, nil
}

// newTransport mirrors the connection pooling the trading services expect:
// keep-alive on, bounded per-host pools, explicit dial and TLS deadlines.
func newTransport() *http.Transport {
	dialer := &net.Dialer{
		Timeout:   5 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	return &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Close releases idle connections.
func (c *Client) Close() {
	if transport, ok := c.httpc.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}

type fetchResult struct {
	status int
	body   []byte
}

// fetch executes one HTTP exchange and classifies the outcome. The returned
// *Error is nil only for 2xx responses.
func (c *Client) fetch(ctx context.Context, method, path string, body any, opts *requestOptions) (fetchResult, *Error) {
	target, err := c.resolve(path, opts)
	if err != nil {
		return fetchResult{}, &Error{Kind: KindTransport, Message: err.Error(), cause: err}
	}

	if method == http.MethodGet && c.inflight != nil && opts.timeout == 0 {
		key := target.String()
		v, err, _ := c.inflight.Do(key, func() (any, error) {
			res, ferr := c.fetchOnce(ctx, method, target, body, opts)
			if ferr != nil {
				return nil, ferr
			}
			return res, nil
		})
		if err != nil {
			var apiErr *Error
			if errors.As(err, &apiErr) {
				return fetchResult{}, apiErr
			}
			return fetchResult{}, transportError(err)
		}
		return v.(fetchResult), nil
	}

	return c.fetchOnce(ctx, method, target, body, opts)
}

func (c *Client) fetchOnce(ctx context.Context, method string, target *url.URL, body any, opts *requestOptions) (fetchResult, *Error) {
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fetchResult{}, &Error{Kind: KindTransport, Message: "encode request body: " + err.Error(), cause: err}
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return fetchResult{}, transportError(err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range opts.headers {
		req.Header.Set(k, v)
	}

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			c.logger.Warn("token source failed, sending unauthenticated", slog.String("error", err.Error()))
		} else if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.httpc.Do(req)
	metrics.APIRequestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	if err != nil {
		var apiErr *Error
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			apiErr = timeoutError(err)
		} else {
			apiErr = transportError(err)
		}
		c.observe(method, apiErr)
		return fetchResult{}, apiErr
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		apiErr := transportError(fmt.Errorf("read response body: %w", err))
		c.observe(method, apiErr)
		return fetchResult{}, apiErr
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := statusError(resp.StatusCode, raw)
		if resp.StatusCode == http.StatusUnauthorized {
			c.sessionExpired(ctx)
		}
		c.observe(method, apiErr)
		return fetchResult{}, apiErr
	}

	metrics.APIRequests.WithLabelValues(method, "ok").Inc()
	return fetchResult{status: resp.StatusCode, body: raw}, nil
}

// sessionExpired clears stored credentials and notifies the application.
// Runs once per 401 response.
func (c *Client) sessionExpired(ctx context.Context) {
	metrics.SessionExpired.Inc()
	if clearable, ok := c.tokens.(ClearableTokenSource); ok {
		if err := clearable.Clear(ctx); err != nil {
			c.logger.Warn("could not clear token source", slog.String("error", err.Error()))
		}
	}
	if c.onUnauthorized != nil {
		c.onUnauthorized(ctx)
	}
}

func (c *Client) observe(method string, apiErr *Error) {
	metrics.APIRequests.WithLabelValues(method, string(apiErr.Kind)).Inc()
	c.logger.Debug("request failed",
		slog.String("method", method),
		slog.String("kind", string(apiErr.Kind)),
		slog.Int("status", apiErr.Status),
		slog.String("error", apiErr.Message))
}

func (c *Client) resolve(path string, opts *requestOptions) (*url.URL, error) {
	base := c.base
	if opts.baseURL != "" {
		parsed, err := url.Parse(opts.baseURL)
		if err != nil {
			return nil, fmt.Errorf("parse base URL override: %w", err)
		}
		base = parsed
	}

	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("parse path %q: %w", path, err)
	}

	target := *base
	target.Path = strings.TrimSuffix(base.Path, "/") + "/" + strings.TrimPrefix(ref.Path, "/")

	query := target.Query()
	for _, kv := range opts.query {
		query.Add(kv[0], kv[1])
	}
	for k, vs := range ref.Query() {
		for _, v := range vs {
			query.Add(k, v)
		}
	}
	target.RawQuery = query.Encode()
	return &target, nil
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
