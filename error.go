// Copyright 2025 The payx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package payx

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gogama/payx/fault"
	"github.com/tidwall/gjson"
)

// An Error is the error type for every failure a Client surfaces:
// error responses from the payment API, transport failures, and
// client-side validation failures. Callers can unwrap any error
// returned from this package into *Error with errors.As.
//
// The Kind field carries the failure classification that retry
// decisions and callers branch on. For API error responses, the
// remaining fields carry the processor's error envelope; for transport
// failures, Err carries the underlying cause.
type Error struct {
	// Kind is the failure classification.
	Kind fault.Kind
	// StatusCode is the HTTP status of the error response, or zero if
	// the failure happened without one.
	StatusCode int
	// Code is the processor's machine-readable error code, such as
	// "CARD_DECLINED", when the error envelope supplied one.
	Code string
	// Message is a human-readable description of the failure.
	Message string
	// Details lists any supplementary messages from the error
	// envelope.
	Details []string
	// RetryAfter is the server-requested backoff parsed from the
	// Retry-After header of a rate limited response, or zero.
	RetryAfter time.Duration
	// Body is the raw response body, when there was a response.
	Body []byte
	// Header is the response header, when there was a response.
	Header http.Header
	// Err is the underlying cause, when the failure wraps one.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("payx: ")
	if e.Message != "" {
		b.WriteString(e.Message)
	} else {
		b.WriteString("request failed")
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, " (status %d", e.StatusCode)
		if e.Code != "" {
			fmt.Fprintf(&b, ", code %s", e.Code)
		}
		b.WriteByte(')')
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// Classification returns the failure kind. It is consulted by
// fault.Classify, which trusts errors that know their own class.
func (e *Error) Classification() fault.Kind {
	return e.Kind
}

// HTTPStatus returns the HTTP status of the error response, or zero.
func (e *Error) HTTPStatus() int {
	return e.StatusCode
}

// Timeout reports whether the failure was caused by a timeout, in the
// manner of net.Error.
func (e *Error) Timeout() bool {
	var t interface{ Timeout() bool }
	if errors.As(e.Err, &t) {
		return t.Timeout()
	}
	return false
}

// newAPIError builds an *Error from a non-2xx API response. The
// processor's envelope has the shape
//
//	{"error": {"code": "...", "message": "...", "details": [...]}}
//
// and malformed or empty bodies degrade to a status-derived message.
func newAPIError(resp *http.Response, body []byte) *Error {
	e := &Error{
		Kind:       fault.StatusKind(resp.StatusCode),
		StatusCode: resp.StatusCode,
		Body:       body,
		Header:     resp.Header,
	}
	e.Code = gjson.GetBytes(body, "error.code").String()
	e.Message = gjson.GetBytes(body, "error.message").String()
	if e.Message == "" {
		e.Message = statusMessage(resp.StatusCode)
	}
	for _, d := range gjson.GetBytes(body, "error.details").Array() {
		e.Details = append(e.Details, d.String())
	}
	if e.Kind == fault.RateLimited {
		e.RetryAfter = retryAfter(resp.Header)
	}
	return e
}

// newTransportError wraps a failure from the HTTPDoer, classifying it
// so the retry policy sees timeouts and connection trouble as network
// failures while cancellations stay non-retryable.
func newTransportError(err error) *Error {
	kind := fault.KindOf(err)
	msg := "request failed"
	if kind == fault.Network {
		msg = "network error"
	}
	return &Error{Kind: kind, Message: msg, Err: err}
}

// newValidationError reports a request rejected client-side, before
// anything was sent on the wire.
func newValidationError(msg string) *Error {
	return &Error{Kind: fault.Client, Message: msg}
}

func statusMessage(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return "authentication error: invalid API key provided"
	case http.StatusTooManyRequests:
		return "rate limit exceeded"
	default:
		text := http.StatusText(status)
		if text == "" {
			return "unknown error"
		}
		return strings.ToLower(text)
	}
}

func retryAfter(h http.Header) time.Duration {
	v := h.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
