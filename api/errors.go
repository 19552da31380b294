package api

import (
	"errors"
	"fmt"
)

// Kind discriminates failure classes so callers can branch on the class of a
// failure instead of parsing message strings.
type Kind string

const (
	// KindTransport covers connection failures, DNS errors and malformed
	// response bodies. The server was never reached, or what it sent back
	// could not be decoded.
	KindTransport Kind = "transport"
	// KindTimeout is a deadline hit before the server answered.
	KindTimeout Kind = "timeout"
	// KindUnauthorized is an HTTP 401. The client has already cleared the
	// token source and fired the session-expired hook by the time a caller
	// sees this.
	KindUnauthorized Kind = "unauthorized"
	// KindValidation is an HTTP 400 or 422 carrying field errors.
	KindValidation Kind = "validation"
	// KindServer is any other non-2xx status.
	KindServer Kind = "server"
)

// Error is the failure half of the response envelope.
type Error struct {
	Kind    Kind
	Status  int // HTTP status, zero when the server never answered
	Message string
	// Fields holds per-field validation messages when the server provided
	// them, keyed by field name.
	Fields map[string][]string

	cause error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// IsUnauthorized reports whether err is an API error with KindUnauthorized.
func IsUnauthorized(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == KindUnauthorized
}

// IsTransport reports whether err is a transport or timeout failure, i.e. the
// request may never have reached the server.
func IsTransport(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && (apiErr.Kind == KindTransport || apiErr.Kind == KindTimeout)
}

func transportError(cause error) *Error {
	return &Error{Kind: KindTransport, Message: cause.Error(), cause: cause}
}

func timeoutError(cause error) *Error {
	return &Error{Kind: KindTimeout, Message: "request timed out", cause: cause}
}

// errorBody is the error payload shape shared by the CantonDEX backends. Not
// every service fills every field.
type errorBody struct {
	Message string              `json:"message"`
	Error   string              `json:"error"`
	Code    string              `json:"code"`
	Errors  map[string][]string `json:"errors"`
}

func statusError(status int, body []byte) *Error {
	var parsed errorBody
	_ = json.Unmarshal(body, &parsed)

	message := parsed.Message
	if message == "" {
		message = parsed.Error
	}
	if message == "" {
		message = fmt.Sprintf("request failed with status %d", status)
	}

	e := &Error{Status: status, Message: message, Fields: parsed.Errors}
	switch {
	case status == 401:
		e.Kind = KindUnauthorized
	case status == 400 || status == 422:
		e.Kind = KindValidation
	default:
		e.Kind = KindServer
	}
	return e
}
