// Copyright 2025 The payx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package fault

import (
	"context"
	"errors"
	"strconv"
	"syscall"
)

// A Kind is the failure classification of a particular error, as
// reported by function Classify().
//
// The kind Unknown means the error could not be mapped to any of the
// closed classifications below. Unknown failures are treated
// conservatively: retry policies do not retry them unless explicitly
// configured to retry any error.
type Kind int

const (
	// Unknown indicates an error that none of the other kinds cover.
	Unknown Kind = iota
	// Network indicates a connectivity problem: a timeout, a refused
	// or reset connection, DNS trouble, or an expired deadline. The
	// request may never have reached the remote API, so a retry has a
	// reasonable prospect of success.
	//
	// Function Classify() will return Network if the error or any of
	// its wrapped causes has a Timeout() function that reports true,
	// is equal to syscall.ECONNREFUSED or syscall.ECONNRESET, or is
	// context.DeadlineExceeded.
	Network
	// RateLimited indicates the remote API refused the request because
	// the caller exceeded its request quota (HTTP status 429). Retrying
	// after a backoff delay is the expected recovery path.
	RateLimited
	// Server indicates the remote API failed to process the request
	// (HTTP status 5xx). Server faults are frequently transient.
	Server
	// Authentication indicates the remote API rejected the caller's
	// credentials (HTTP status 401). Authentication failures are never
	// cured by repetition and are never retried.
	Authentication
	// Client indicates the request itself was unacceptable (any other
	// HTTP status 4xx), or that it failed client-side validation
	// before being sent. Repeating the same request yields the same
	// rejection, so client faults are not retried unless a status code
	// is explicitly whitelisted.
	Client
)

var kindNames = []string{"unknown", "network", "rate_limited", "server", "authentication", "client"}

// String returns the name of the kind, suitable for log output.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// An Outcome is the classified result of one failed request attempt.
// It carries the failure kind, the HTTP status code when one was
// received (zero otherwise), and the original error so callers can
// surface it unchanged.
//
// An Outcome is created and discarded within a single pass of a retry
// loop. It never outlives the call that produced it.
type Outcome struct {
	Kind       Kind
	StatusCode int
	Err        error
}

// Classify returns the classified outcome of the given error. A nil
// error produces the zero Outcome.
//
// In assessing the failure, Classify looks at wrapped cause errors
// contained within err, not just err itself. Errors that know their
// own classification (in particular *payx.Error) are trusted via the
// Classification() and HTTPStatus() functions. However, Classify never
// checks if an error has a Temporary() function that returns true, as
// the semantics of Temporary() aren't entirely clear.
func Classify(err error) Outcome {
	if err == nil {
		return Outcome{}
	}

	o := Outcome{Kind: Unknown, Err: err}

	var hasStatus hasHTTPStatus
	if errors.As(err, &hasStatus) {
		o.StatusCode = hasStatus.HTTPStatus()
	}

	var hasKind hasClassification
	if errors.As(err, &hasKind) {
		o.Kind = hasKind.Classification()
		return o
	}

	if o.StatusCode != 0 {
		o.Kind = StatusKind(o.StatusCode)
		return o
	}

	var timeout hasTimeout
	if errors.As(err, &timeout) && timeout.Timeout() {
		o.Kind = Network
		return o
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		if errno == syscall.ECONNRESET || errno == syscall.ECONNREFUSED {
			o.Kind = Network
			return o
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		o.Kind = Network
		return o
	}

	return o
}

// KindOf is shorthand for Classify(err).Kind.
func KindOf(err error) Kind {
	return Classify(err).Kind
}

// StatusKind maps an HTTP status code to a failure kind: 401 to
// Authentication, 429 to RateLimited, other 4xx to Client, 5xx to
// Server, and everything else to Unknown.
func StatusKind(status int) Kind {
	switch {
	case status == 401:
		return Authentication
	case status == 429:
		return RateLimited
	case status >= 500 && status < 600:
		return Server
	case status >= 400 && status < 500:
		return Client
	default:
		return Unknown
	}
}

type hasClassification interface {
	Classification() Kind
}

type hasHTTPStatus interface {
	HTTPStatus() int
}

type hasTimeout interface {
	Timeout() bool
}
