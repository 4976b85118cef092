// Copyright 2025 The payx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gogama/payx/fault"
)

// A Strategy selects the delay-growth model a Policy uses between
// retry attempts.
type Strategy int

const (
	// None inserts no delay between attempts.
	None Strategy = iota
	// Fixed waits exactly Policy.InitialDelay before every retry. The
	// MaxDelay ceiling does not apply to Fixed.
	Fixed
	// Exponential waits InitialDelay * BackoffFactor^attempt, capped
	// at MaxDelay.
	Exponential
	// ExponentialJitter computes the Exponential delay and then
	// multiplies it by (1 + U), where U is drawn uniformly from the
	// interval [-JitterFactor, +JitterFactor]. The jittered delay is
	// clamped to the range [0, MaxDelay]. Symmetric jitter spreads
	// simultaneous retry storms both earlier and later than the raw
	// exponential schedule.
	ExponentialJitter
)

var strategyNames = []string{"none", "fixed", "exponential", "exponential_jitter"}

// String returns the name of the strategy, suitable for log output.
func (s Strategy) String() string {
	if s < 0 || int(s) >= len(strategyNames) {
		return "strategy(" + strconv.Itoa(int(s)) + ")"
	}
	return strategyNames[s]
}

// A Condition is a bitmask of failure classes a Policy treats as
// retryable. Combine conditions with the | operator.
type Condition uint

const (
	// NetworkError retries failures classified as fault.Network:
	// timeouts, refused or reset connections, and similar
	// connectivity trouble.
	NetworkError Condition = 1 << iota
	// RateLimit retries failures classified as fault.RateLimited, as
	// well as any failure carrying HTTP status 429.
	RateLimit
	// ServerError retries failures classified as fault.Server, as
	// well as any failure carrying an HTTP status in [500, 600).
	ServerError
	// AnyError retries every failure except authentication failures,
	// which are never retried.
	AnyError
)

// DefaultConditions is the condition set used by the default policy:
// network errors, rate limits, and server errors are retryable,
// everything else is not.
const DefaultConditions = NetworkError | RateLimit | ServerError

var conditionNames = []struct {
	c    Condition
	name string
}{
	{NetworkError, "network_error"},
	{RateLimit, "rate_limit"},
	{ServerError, "server_error"},
	{AnyError, "any_error"},
}

// String returns the names of the set conditions joined by "|", or
// "none" for an empty condition set.
func (c Condition) String() string {
	if c == 0 {
		return "none"
	}
	var b strings.Builder
	for _, cn := range conditionNames {
		if c&cn.c != 0 {
			if b.Len() > 0 {
				b.WriteByte('|')
			}
			b.WriteString(cn.name)
		}
	}
	if b.Len() == 0 {
		return "condition(" + strconv.FormatUint(uint64(c), 10) + ")"
	}
	return b.String()
}

// Default values used by DefaultPolicy and NewPolicy.
const (
	DefaultMaxRetries    = 3
	DefaultInitialDelay  = 500 * time.Millisecond
	DefaultMaxDelay      = 8 * time.Second
	DefaultJitterFactor  = 0.25
	DefaultBackoffFactor = 2.0
)

// DefaultStatusCodes is the default set of HTTP status codes retried
// regardless of the failure's classification.
var DefaultStatusCodes = []int{429, 500, 502, 503, 504}

// DefaultMethods is the default set of HTTP methods eligible for
// retry. POST is included because the client attaches idempotency keys
// to unsafe writes, making repetition harmless on the processor side.
// DELETE is excluded: a replayed delete can race a concurrent
// re-create and remove a resource the original call never observed.
var DefaultMethods = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodOptions,
	http.MethodPut,
	http.MethodPatch,
	http.MethodPost,
}

// A Policy controls if and how failed payment API requests are
// retried. In particular, after every failed attempt, the Policy
// decides whether a retry should be done (ShouldRetry) and how long
// the wait period before the retry should be (Delay).
//
// A Policy is a plain value object. Construct one with NewPolicy or
// with a struct literal, adjust its fields, and do not modify it after
// first use: an unmodified Policy is safe for concurrent use by
// multiple goroutines. The package-level policies DefaultPolicy and
// Never must never be modified.
//
// The zero value Policy never retries, because its MaxRetries budget
// is zero.
//
// Out-of-range field values are clamped when decisions are made, never
// written back: a negative MaxRetries acts as 0, a JitterFactor
// outside [0, 1] acts as the nearer bound, a BackoffFactor below 1
// acts as 1, and negative delays act as 0.
type Policy struct {
	// MaxRetries is the retry budget: the maximum number of retries
	// after the initial attempt. An operation is therefore tried at
	// most MaxRetries+1 times.
	MaxRetries int
	// Strategy selects the delay-growth model.
	Strategy Strategy
	// Conditions is the set of failure classes eligible for retry.
	Conditions Condition
	// InitialDelay is the base delay. Fixed uses it verbatim; the
	// exponential strategies grow it by BackoffFactor per attempt.
	InitialDelay time.Duration
	// MaxDelay caps the computed delay for the exponential strategies.
	// Zero means DefaultMaxDelay; Fixed and None ignore the cap.
	MaxDelay time.Duration
	// JitterFactor is the randomness amplitude for ExponentialJitter,
	// in [0, 1]. Zero means no jitter.
	JitterFactor float64
	// BackoffFactor is the per-attempt delay multiplier for the
	// exponential strategies, at least 1.
	BackoffFactor float64
	// RetryableStatusCodes lists HTTP status codes retried regardless
	// of how the failure was classified, except authentication
	// failures, which always win. Nil means DefaultStatusCodes; an
	// empty non-nil slice whitelists nothing.
	RetryableStatusCodes []int
	// RetryableMethods lists the HTTP methods eligible for retry at
	// all, compared case-insensitively. Nil means DefaultMethods; an
	// empty non-nil slice makes every method ineligible.
	RetryableMethods []string
	// ExcludedPathPrefixes lists request path prefixes that are never
	// retried, regardless of every other rule. A path matches when it
	// begins with a listed prefix after both are normalized to a
	// leading slash, so "/payments/settlements" excludes
	// "/payments/settlements/123".
	ExcludedPathPrefixes []string
}

// DefaultPolicy is a general-purpose retry policy suitable for common
// payment API use: up to 3 retries of network errors, rate limits, and
// server errors, on a jittered exponential backoff starting at 500ms
// and capped at 8s.
var DefaultPolicy = &Policy{
	MaxRetries:           DefaultMaxRetries,
	Strategy:             ExponentialJitter,
	Conditions:           DefaultConditions,
	InitialDelay:         DefaultInitialDelay,
	MaxDelay:             DefaultMaxDelay,
	JitterFactor:         DefaultJitterFactor,
	BackoffFactor:        DefaultBackoffFactor,
	RetryableStatusCodes: DefaultStatusCodes,
	RetryableMethods:     DefaultMethods,
}

// Never is a policy that never retries. It is useful if you want to
// use the other features of payx.Client but do not want retries.
var Never = &Policy{}

// NewPolicy returns a fresh Policy populated with the package
// defaults. The returned policy shares no state with DefaultPolicy, so
// the caller may adjust any field before first use.
func NewPolicy() *Policy {
	p := *DefaultPolicy
	p.RetryableStatusCodes = append([]int(nil), DefaultStatusCodes...)
	p.RetryableMethods = append([]string(nil), DefaultMethods...)
	return &p
}

// ShouldRetry reports whether a failed attempt should be retried. The
// attempt index is zero-based and counts the retries already
// performed: pass 0 after the initial attempt fails, 1 after the
// first retry fails, and so on. The outcome o is the classified
// failure of the attempt, or nil if there is no failure to inspect.
//
// The rules are evaluated in a fixed order, and the first applicable
// rule wins: the retry budget, the method allowlist, and the path
// exclusion list all gate before the failure itself is considered;
// authentication failures are never retried; then the Conditions
// bitmask and finally the RetryableStatusCodes whitelist decide.
func (p *Policy) ShouldRetry(method, path string, attempt int, o *fault.Outcome) bool {
	if attempt >= p.maxRetries() {
		return false
	}
	if !p.methodRetryable(method) {
		return false
	}
	if p.pathExcluded(path) {
		return false
	}
	if o == nil {
		return false
	}
	if o.Kind == fault.Authentication {
		return false
	}
	if p.Conditions&AnyError != 0 {
		return true
	}
	if o.Kind == fault.Network && p.Conditions&NetworkError != 0 {
		return true
	}
	if (o.Kind == fault.RateLimited || o.StatusCode == http.StatusTooManyRequests) && p.Conditions&RateLimit != 0 {
		return true
	}
	if (o.Kind == fault.Server || (o.StatusCode >= 500 && o.StatusCode < 600)) && p.Conditions&ServerError != 0 {
		return true
	}
	return p.statusRetryable(o.StatusCode)
}

// Delay returns the wait period to insert before the retry with the
// given zero-based attempt index. Delay is a pure function of the
// policy and the attempt index, except that ExponentialJitter samples
// a fresh jitter draw on every call, so two calls with the same index
// may legitimately differ.
//
// The result is never negative. For the exponential strategies it
// never exceeds the MaxDelay ceiling, jitter included; Fixed returns
// InitialDelay exactly, and None returns 0.
func (p *Policy) Delay(attempt int) time.Duration {
	switch p.Strategy {
	case Fixed:
		if p.InitialDelay < 0 {
			return 0
		}
		return p.InitialDelay
	case Exponential:
		return p.exponential(attempt)
	case ExponentialJitter:
		return p.jitter(p.exponential(attempt))
	default:
		return 0
	}
}

func (p *Policy) maxRetries() int {
	if p.MaxRetries < 0 {
		return 0
	}
	return p.MaxRetries
}

func (p *Policy) maxDelay() time.Duration {
	if p.MaxDelay <= 0 {
		return DefaultMaxDelay
	}
	return p.MaxDelay
}

func (p *Policy) methodRetryable(method string) bool {
	methods := p.RetryableMethods
	if methods == nil {
		methods = DefaultMethods
	}
	for _, m := range methods {
		if strings.EqualFold(m, method) {
			return true
		}
	}
	return false
}

func (p *Policy) pathExcluded(path string) bool {
	if len(p.ExcludedPathPrefixes) == 0 {
		return false
	}
	path = normalizePath(path)
	for _, prefix := range p.ExcludedPathPrefixes {
		if strings.HasPrefix(path, normalizePath(prefix)) {
			return true
		}
	}
	return false
}

func (p *Policy) statusRetryable(status int) bool {
	if status == 0 {
		return false
	}
	codes := p.RetryableStatusCodes
	if codes == nil {
		codes = DefaultStatusCodes
	}
	for _, code := range codes {
		if code == status {
			return true
		}
	}
	return false
}

func (p *Policy) exponential(attempt int) time.Duration {
	if p.InitialDelay <= 0 {
		return 0
	}
	if attempt < 0 {
		attempt = 0
	}
	backoff := p.BackoffFactor
	if backoff < 1 {
		backoff = 1
	}
	max := p.maxDelay()
	d := float64(p.InitialDelay) * math.Pow(backoff, float64(attempt))
	if d > float64(max) {
		return max
	}
	return time.Duration(d)
}

func (p *Policy) jitter(d time.Duration) time.Duration {
	j := p.JitterFactor
	if j <= 0 || d <= 0 {
		return d
	}
	if j > 1 {
		j = 1
	}
	u := (2*rand.Float64() - 1) * j
	f := float64(d) * (1 + u)
	if f < 0 {
		return 0
	}
	if max := p.maxDelay(); f > float64(max) {
		return max
	}
	return time.Duration(f)
}

func normalizePath(path string) string {
	if path == "" || path[0] != '/' {
		return "/" + path
	}
	return path
}
