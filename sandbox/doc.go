// Copyright 2025 The payx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package sandbox simulates the payment API for local development and
testing, so applications built on payx can exercise full payment
workflows without credentials, network access, or real money.

The centerpiece is Server, an http.Handler implementing the API
surface the payx client speaks: customers, payments, cards, refunds,
and webhook subscriptions, with the production error envelope, magic
test card numbers, idempotency replay, and injectable latency and
failures. Serve it over HTTP with httptest:

	srv := &sandbox.Server{APIKey: "test_key"}
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := &payx.Client{APIKey: "test_key", BaseURL: ts.URL}

or skip the network entirely and dispatch straight into the handler:

	srv := &sandbox.Server{APIKey: "test_key"}
	client := srv.Client()

Magic card numbers produce deterministic outcomes: CardDeclined is
declined for insufficient funds, CardExpired is rejected as expired,
and CardInvalidCVV fails CVV verification. Amounts over the pending
threshold leave the payment in the PENDING state until captured.

Failure injection drives retry testing. FailRate sets the probability
that any request is rejected with a random transient failure before it
reaches a handler, MinLatency and MaxLatency add uniform random delay,
and Limiter imposes a hard request rate with 429 responses beyond it.

Agent runs scripted payment workflows against the sandbox through a
real payx.Client, covering the lifecycle, decline, refund, idempotent
replay, failure recovery, and concurrent load scenarios.
*/
package sandbox
