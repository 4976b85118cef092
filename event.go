// Copyright 2025 The payx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package payx

// An Event is a notable occurrence in the lifecycle of an API call,
// and may be used to register a Handler taking some action when the
// event occurs. Use the Client's Handlers group to register handlers.
type Event int

const (
	// BeforeCall occurs once per call, before the first attempt is
	// sent. The Call's Method, Path, and RequestBody are set.
	BeforeCall Event = iota
	// BeforeAttempt occurs before each attempt, including the first,
	// after the attempt's request has been built. The Call's Request
	// and Attempt are set.
	BeforeAttempt
	// AfterAttempt occurs after each attempt, whether it succeeded or
	// failed. The Call's StatusCode, Body, and Err reflect the
	// attempt's outcome.
	AfterAttempt
	// BeforeRetryWait occurs after a failed attempt the retry policy
	// has decided to retry, before the backoff wait begins. The Call's
	// Wait is the backoff duration about to be slept.
	BeforeRetryWait
	// AfterCall occurs once per call, after the final attempt, whether
	// the call succeeded or failed.
	AfterCall

	eventSentinel
)

const numEvents = int(eventSentinel)

var eventNames = [numEvents]string{
	"BeforeCall",
	"BeforeAttempt",
	"AfterAttempt",
	"BeforeRetryWait",
	"AfterCall",
}

// Events returns a new slice containing all events, in the order they
// occur within a call.
func Events() []Event {
	events := make([]Event, numEvents)
	for i := range events {
		events[i] = Event(i)
	}
	return events
}

// Name returns the event name.
//
// Name panics if e is not a valid event.
func (e Event) Name() string {
	return eventNames[e]
}

// String returns the event name.
//
// String panics if e is not a valid event.
func (e Event) String() string {
	return e.Name()
}
