package api

import (
	"context"
	"net/http"
	"strconv"
	"time"
)

type requestOptions struct {
	query   [][2]string
	headers map[string]string
	timeout time.Duration
	baseURL string
}

// RequestOption customizes a single call.
type RequestOption func(*requestOptions)

// WithQuery appends a query parameter.
func WithQuery(key, value string) RequestOption {
	return func(o *requestOptions) {
		o.query = append(o.query, [2]string{key, value})
	}
}

// WithQueryInt appends an integer query parameter.
func WithQueryInt(key string, value int) RequestOption {
	return WithQuery(key, strconv.Itoa(value))
}

// WithHeader sets a header for this call only.
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		if o.headers == nil {
			o.headers = make(map[string]string)
		}
		o.headers[key] = value
	}
}

// WithTimeout bounds this call tighter (or looser) than the client default.
// Calls with a per-request timeout bypass GET coalescing.
func WithTimeout(d time.Duration) RequestOption {
	return func(o *requestOptions) {
		o.timeout = d
	}
}

// WithBaseURL targets a different host for this call, e.g. the settlement
// service.
func WithBaseURL(raw string) RequestOption {
	return func(o *requestOptions) {
		o.baseURL = raw
	}
}

func collect(opts []RequestOption) *requestOptions {
	o := &requestOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Get issues a GET and decodes the response body into T.
func Get[T any](ctx context.Context, c *Client, path string, opts ...RequestOption) Response[T] {
	return exchange[T](ctx, c, http.MethodGet, path, nil, opts)
}

// Post issues a POST with a JSON body.
func Post[T any](ctx context.Context, c *Client, path string, body any, opts ...RequestOption) Response[T] {
	return exchange[T](ctx, c, http.MethodPost, path, body, opts)
}

// Put issues a PUT with a JSON body.
func Put[T any](ctx context.Context, c *Client, path string, body any, opts ...RequestOption) Response[T] {
	return exchange[T](ctx, c, http.MethodPut, path, body, opts)
}

// Patch issues a PATCH with a JSON body.
func Patch[T any](ctx context.Context, c *Client, path string, body any, opts ...RequestOption) Response[T] {
	return exchange[T](ctx, c, http.MethodPatch, path, body, opts)
}

// Delete issues a DELETE.
func Delete[T any](ctx context.Context, c *Client, path string, opts ...RequestOption) Response[T] {
	return exchange[T](ctx, c, http.MethodDelete, path, nil, opts)
}

func exchange[T any](ctx context.Context, c *Client, method, path string, body any, opts []RequestOption) Response[T] {
	res, apiErr := c.fetch(ctx, method, path, body, collect(opts))
	if apiErr != nil {
		return Fail[T](apiErr)
	}
	return decode[T](res)
}

func decode[T any](res fetchResult) Response[T] {
	var out Response[T]
	out.Success = true
	if len(res.body) == 0 || res.status == http.StatusNoContent {
		return out
	}
	if err := json.Unmarshal(res.body, &out.Data); err != nil {
		return Fail[T](&Error{
			Kind:    KindTransport,
			Status:  res.status,
			Message: "decode response body: " + err.Error(),
			cause:   err,
		})
	}
	return out
}
