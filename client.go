// Copyright 2025 The payx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package payx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gogama/payx/fault"
	"github.com/gogama/payx/retry"
)

// DefaultTimeout is the per attempt timeout used when the Client's
// Timeout field is zero.
const DefaultTimeout = 60 * time.Second

// An Environment selects which payment API deployment the Client
// talks to when no explicit BaseURL is set.
type Environment int

const (
	// Production is the live payment API. Calls move real money.
	Production Environment = iota
	// Sandbox is the processor's shared test deployment. Calls are
	// simulated and no money moves.
	Sandbox
)

const (
	productionBaseURL = "https://api.paysafe.com/v1"
	sandboxBaseURL    = "https://api.test.paysafe.com/v1"
)

var environmentNames = []string{"production", "sandbox"}

// String returns the environment name.
func (env Environment) String() string {
	if 0 <= int(env) && int(env) < len(environmentNames) {
		return environmentNames[env]
	}
	return "environment(" + strconv.Itoa(int(env)) + ")"
}

// Client is a payment API client. The zero value is usable and talks
// to the production environment with the default retry policy, but
// without an API key the server will reject every call, so set at
// least APIKey, or construct the client with NewClient.
//
// Client is safe for concurrent use by multiple goroutines once
// configured, as long as its fields and its Handlers group are not
// modified after the first call.
type Client struct {
	// APIKey authenticates the merchant. It is sent verbatim in the
	// Authorization header of every request.
	APIKey string
	// Environment selects the API deployment when BaseURL is empty.
	Environment Environment
	// BaseURL overrides the environment's base URL. It is mainly
	// useful for pointing the client at a local sandbox server.
	BaseURL string
	// HTTPDoer is the underlying HTTP transport. If nil, the client
	// uses http.DefaultClient.
	HTTPDoer HTTPDoer
	// RetryPolicy decides which failed attempts are retried and how
	// long to back off between them. If nil, the client uses
	// retry.DefaultPolicy.
	RetryPolicy *retry.Policy
	// Timeout bounds each individual attempt, not the call as a
	// whole. If zero, the client uses DefaultTimeout. Use the
	// context passed to Call to bound the whole call.
	Timeout time.Duration
	// Logger receives a debug line for every attempt and a warning
	// line for every retry. Request and response bodies are never
	// logged. If nil, the client uses slog.Default.
	Logger *slog.Logger
	// Handlers holds callbacks for call lifecycle events. If nil, no
	// callbacks run.
	Handlers *HandlerGroup
}

// A Call records the state of one logical API call as it progresses
// through attempts. The same Call value is passed to every handler
// the call triggers.
type Call struct {
	// Method and Path identify the API operation.
	Method string
	Path   string
	// Query is the query string sent with every attempt, if any.
	Query url.Values
	// Header holds extra headers sent with every attempt, if any.
	Header http.Header
	// RequestBody is the encoded request body, if any.
	RequestBody []byte
	// Attempt is the zero based index of the current attempt.
	Attempt int
	// Wait is the backoff wait before the next attempt. It is only
	// meaningful during the BeforeRetryWait event.
	Wait time.Duration
	// Request is the current attempt's HTTP request.
	Request *http.Request
	// StatusCode is the current attempt's HTTP status, or zero if no
	// response was received.
	StatusCode int
	// Body is the current attempt's response body.
	Body []byte
	// Err is the current attempt's error, or nil if it succeeded.
	Err error
	// Start and End bracket the whole call, including backoff waits.
	// End is zero until the call finishes.
	Start time.Time
	End   time.Time
}

// NewClient builds a Client configured from the environment. The API
// key is read from PAYSAFE_API_KEY, or failing that from the
// credentials file named by PAYSAFE_CREDENTIALS_FILE. NewClient
// returns an error if neither variable yields a key.
func NewClient() (*Client, error) {
	key := os.Getenv("PAYSAFE_API_KEY")
	if key == "" {
		if file := os.Getenv("PAYSAFE_CREDENTIALS_FILE"); file != "" {
			creds, err := LoadCredentials(file)
			if err != nil {
				return nil, err
			}
			key = creds.APIKey
		}
	}
	if key == "" {
		return nil, errors.New("payx: no API key: set PAYSAFE_API_KEY or PAYSAFE_CREDENTIALS_FILE")
	}
	return &Client{APIKey: key}, nil
}

// WithRetryPolicy returns a copy of the client that uses p for retry
// decisions. The receiver is unchanged, so the copy can serve a
// single call without affecting concurrent users of the original:
//
//	err := client.WithRetryPolicy(retry.Never).Payments().Cancel(ctx, id)
func (c *Client) WithRetryPolicy(p *retry.Policy) *Client {
	d := *c
	d.RetryPolicy = p
	return &d
}

// WithLogger returns a copy of the client that logs retries to
// logger. The receiver is unchanged.
func (c *Client) WithLogger(logger *slog.Logger) *Client {
	d := *c
	d.Logger = logger
	return &d
}

// Payments returns the service for the payments resource.
func (c *Client) Payments() *PaymentService { return &PaymentService{caller: c} }

// Customers returns the service for the customers resource.
func (c *Client) Customers() *CustomerService { return &CustomerService{caller: c} }

// Cards returns the service for the cards nested under a customer.
func (c *Client) Cards() *CardService { return &CardService{caller: c} }

// Refunds returns the service for the refunds nested under a payment.
func (c *Client) Refunds() *RefundService { return &RefundService{caller: c} }

// Webhooks returns the service for the webhooks resource.
func (c *Client) Webhooks() *WebhookService { return &WebhookService{caller: c} }

// Call performs one logical API call: it sends the request, retries
// failed attempts as the retry policy dictates, and decodes the final
// response body into v. A nil v discards the response body.
//
// The body value, if not nil, is encoded as JSON once, before the
// first attempt. The context bounds the whole call including backoff
// waits, while the client's Timeout bounds each individual attempt.
//
// Every error returned from Call unwraps to *Error with errors.As.
func (c *Client) Call(ctx context.Context, method, path string, query url.Values, header http.Header, body, v any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var reqBody []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &Error{Kind: fault.Client, Message: "encode request body", Err: err}
		}
		reqBody = b
	}
	call := &Call{
		Method:      method,
		Path:        path,
		Query:       query,
		Header:      header,
		RequestBody: reqBody,
		Start:       time.Now(),
	}
	c.Handlers.run(BeforeCall, call)
	x := retry.Executor{
		Policy: c.RetryPolicy,
		Logger: c.Logger,
		OnRetry: func(_ int, delay time.Duration, _ fault.Outcome) {
			call.Wait = delay
			c.Handlers.run(BeforeRetryWait, call)
		},
	}
	n := 0
	respBody, err := retry.DoValue(ctx, &x, method, path, func(ctx context.Context) ([]byte, error) {
		call.Attempt = n
		n++
		return c.attempt(ctx, call)
	})
	call.End = time.Now()
	c.Handlers.run(AfterCall, call)
	if err != nil {
		return err
	}
	if v == nil || len(respBody) == 0 {
		return nil
	}
	if err = json.Unmarshal(respBody, v); err != nil {
		return &Error{Kind: fault.Unknown, Message: "decode response body", Body: respBody, Err: err}
	}
	return nil
}

// CloseIdleConnections closes idle connections on the underlying
// HTTP transport, if it supports doing so.
func (c *Client) CloseIdleConnections() {
	if ic, ok := c.doer().(IdleCloser); ok {
		ic.CloseIdleConnections()
	}
}

// attempt runs one attempt end to end. The attempt timeout starts
// before the request is built so that it covers the entire attempt.
func (c *Client) attempt(ctx context.Context, call *Call) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()
	req, err := c.newRequest(ctx, call)
	if err != nil {
		return nil, err
	}
	call.Request = req
	call.StatusCode = 0
	call.Body = nil
	call.Err = nil
	c.Handlers.run(BeforeAttempt, call)
	body, err := c.sendAndReceive(req, call)
	call.Err = err
	c.logger().Debug("api request",
		slog.String("method", call.Method),
		slog.String("path", call.Path),
		slog.Int("status", call.StatusCode),
		slog.Int("attempt", call.Attempt))
	c.Handlers.run(AfterAttempt, call)
	return body, err
}

func (c *Client) sendAndReceive(req *http.Request, call *Call) ([]byte, error) {
	resp, err := c.doer().Do(req)
	if err != nil {
		return nil, newTransportError(err)
	}
	defer resp.Body.Close()
	call.StatusCode = resp.StatusCode
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newTransportError(err)
	}
	call.Body = body
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, newAPIError(resp, body)
	}
	return body, nil
}

func (c *Client) newRequest(ctx context.Context, call *Call) (*http.Request, error) {
	u := c.baseURL() + normalizePath(call.Path)
	if len(call.Query) > 0 {
		u += "?" + call.Query.Encode()
	}
	var r io.Reader
	if call.RequestBody != nil {
		r = bytes.NewReader(call.RequestBody)
	}
	req, err := http.NewRequestWithContext(ctx, call.Method, u, r)
	if err != nil {
		return nil, &Error{Kind: fault.Client, Message: "build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if call.RequestBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Basic "+c.APIKey)
	}
	for k, vs := range call.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	return req, nil
}

func (c *Client) baseURL() string {
	if c.BaseURL != "" {
		return strings.TrimSuffix(c.BaseURL, "/")
	}
	if c.Environment == Sandbox {
		return sandboxBaseURL
	}
	return productionBaseURL
}

func (c *Client) doer() HTTPDoer {
	if c.HTTPDoer == nil {
		return http.DefaultClient
	}
	return c.HTTPDoer
}

func (c *Client) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

func (c *Client) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

func normalizePath(path string) string {
	if path == "" || path[0] != '/' {
		return "/" + path
	}
	return path
}
