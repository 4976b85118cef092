// Copyright 2025 The payx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package payx provides a robust client for the Paysafe payments REST
API, with classified errors, configurable retries, and typed resource
services, within a simple and familiar interface.

Create a Client to begin making requests. NewClient reads the API key
from the PAYSAFE_API_KEY environment variable, or from the credentials
file named by PAYSAFE_CREDENTIALS_FILE:

	client, err := payx.NewClient()
	...
	payment, err := client.Payments().Create(ctx, &payx.PaymentCreateParams{
		Amount:        2500,
		CurrencyCode:  "USD",
		PaymentMethod: payx.CardPayment("4111111111111111", payx.CardExpiry{Month: 12, Year: 28}),
	})
	...
	customer, err := client.Customers().Retrieve(ctx, "cust_123")

A Client configured by struct literal talks to production; point it at
the processor's test environment with Environment, or at any base URL
with BaseURL:

	client := &payx.Client{
		APIKey:      key,
		Environment: payx.Sandbox,
	}

For control over how the client sends HTTP requests and receives HTTP
responses, use a custom HTTPDoer, for example a GoLang standard HTTP
client:

	client := &payx.Client{
		APIKey:   key,
		HTTPDoer: &http.Client{}, // see package "net/http"
	}

For control over the client's retry decisions and timing, set a custom
policy from package retry:

	policy := retry.NewPolicy()
	policy.MaxRetries = 5
	policy.Conditions = retry.NetworkError | retry.RateLimit
	client := &payx.Client{
		APIKey:      key,
		RetryPolicy: policy,
	}

All API failures surface as *payx.Error. Inspect them with errors.As,
or classify any error with package fault:

	_, err := client.Payments().Retrieve(ctx, "pmt_404")
	var apiErr *payx.Error
	if errors.As(err, &apiErr) && apiErr.Kind == fault.Client {
		...
	}

To hook into the fine-grained details of the client's attempt/retry
loop, install a handler into the appropriate handler chain:

	handlers := &payx.HandlerGroup{}
	handlers.PushBack(payx.AfterAttempt, payx.HandlerFunc(
		func(_ payx.Event, c *payx.Call) {
			log.Printf("attempt %d of %s %s: status %d", c.Attempt, c.Method, c.Path, c.StatusCode)
		}))
	client := &payx.Client{
		APIKey:   key,
		Handlers: handlers,
	}

Package sandbox runs a local in-memory simulation of the API for tests
and demos, and package ai layers natural-language risk and insight
reporting over payment data.
*/
package payx
