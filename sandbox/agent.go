// Copyright 2025 The payx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package sandbox

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/gogama/payx"
	"github.com/gogama/payx/retry"
)

// A Scenario names one scripted end to end flow an Agent can drive
// against the sandbox.
type Scenario string

const (
	ScenarioSuccessfulPayment Scenario = "successful_payment"
	ScenarioDeclinedPayment   Scenario = "declined_payment"
	ScenarioExpiredCard       Scenario = "expired_card"
	ScenarioInvalidCVV        Scenario = "invalid_cvv"
	ScenarioPartialRefund     Scenario = "partial_refund"
	ScenarioFullRefund        Scenario = "full_refund"
	ScenarioExcessiveRefund   Scenario = "excessive_refund"
	ScenarioHighValuePayment  Scenario = "high_value_payment"
	ScenarioIdempotentRequest Scenario = "idempotent_request"
	ScenarioNetworkRecovery   Scenario = "network_recovery"
	ScenarioConcurrentLoad    Scenario = "concurrent_load"
)

// Scenarios lists every scenario in the order RunAll drives them.
func Scenarios() []Scenario {
	return []Scenario{
		ScenarioSuccessfulPayment,
		ScenarioDeclinedPayment,
		ScenarioExpiredCard,
		ScenarioInvalidCVV,
		ScenarioPartialRefund,
		ScenarioFullRefund,
		ScenarioExcessiveRefund,
		ScenarioHighValuePayment,
		ScenarioIdempotentRequest,
		ScenarioNetworkRecovery,
		ScenarioConcurrentLoad,
	}
}

// A Result reports the outcome of one scenario run. Details carries
// scenario specific facts, like the payment ID created or the number
// of retries a recovery took.
type Result struct {
	Scenario Scenario
	OK       bool
	Elapsed  time.Duration
	Err      error
	Details  map[string]any
}

// An Agent drives scripted payment flows through a real payx.Client
// against a sandbox Server, exercising the whole client request path
// end to end. Construct one with NewAgent.
//
// Run and RunAll are not safe for concurrent use; the concurrent load
// scenario manages its own parallelism internally.
type Agent struct {
	// Server is the sandbox under test. The network recovery scenario
	// adjusts its FailRate for the duration of the scenario.
	Server *Server
	// Client issues the API calls. NewAgent wires it to Server.
	Client *payx.Client
	// Logger, when set, receives one line per scenario outcome.
	Logger *slog.Logger
}

// NewAgent returns an Agent driving srv through an in-process client.
func NewAgent(srv *Server) *Agent {
	return &Agent{Server: srv, Client: srv.Client()}
}

// Run drives one scenario to completion and reports the outcome. For
// the decline scenarios, hitting the expected API rejection counts as
// passing; anything else, including unexpected acceptance, fails.
func (a *Agent) Run(ctx context.Context, scenario Scenario) Result {
	start := time.Now()
	var (
		details map[string]any
		err     error
	)
	switch scenario {
	case ScenarioSuccessfulPayment:
		details, err = a.successfulPayment(ctx)
	case ScenarioDeclinedPayment:
		details, err = a.declinedPayment(ctx)
	case ScenarioExpiredCard:
		details, err = a.expiredCard(ctx)
	case ScenarioInvalidCVV:
		details, err = a.invalidCVV(ctx)
	case ScenarioPartialRefund:
		details, err = a.partialRefund(ctx)
	case ScenarioFullRefund:
		details, err = a.fullRefund(ctx)
	case ScenarioExcessiveRefund:
		details, err = a.excessiveRefund(ctx)
	case ScenarioHighValuePayment:
		details, err = a.highValuePayment(ctx)
	case ScenarioIdempotentRequest:
		details, err = a.idempotentRequest(ctx)
	case ScenarioNetworkRecovery:
		details, err = a.networkRecovery(ctx)
	case ScenarioConcurrentLoad:
		details, err = a.concurrentLoad(ctx, 10)
	default:
		err = fmt.Errorf("sandbox: unknown scenario %q", scenario)
	}
	r := Result{
		Scenario: scenario,
		OK:       err == nil,
		Elapsed:  time.Since(start),
		Err:      err,
		Details:  details,
	}
	a.log(r)
	return r
}

// RunAll drives every scenario in order, stopping early only if ctx
// is done.
func (a *Agent) RunAll(ctx context.Context) []Result {
	scenarios := Scenarios()
	results := make([]Result, 0, len(scenarios))
	for _, s := range scenarios {
		if ctx.Err() != nil {
			break
		}
		results = append(results, a.Run(ctx, s))
	}
	return results
}

// Stress runs the concurrent load scenario with n parallel payments
// instead of the default 10.
func (a *Agent) Stress(ctx context.Context, n int) Result {
	start := time.Now()
	details, err := a.concurrentLoad(ctx, n)
	r := Result{
		Scenario: ScenarioConcurrentLoad,
		OK:       err == nil,
		Elapsed:  time.Since(start),
		Err:      err,
		Details:  details,
	}
	a.log(r)
	return r
}

func (a *Agent) log(r Result) {
	if a.Logger == nil {
		return
	}
	if r.OK {
		a.Logger.Info("scenario passed",
			slog.String("scenario", string(r.Scenario)),
			slog.Duration("elapsed", r.Elapsed))
	} else {
		a.Logger.Error("scenario failed",
			slog.String("scenario", string(r.Scenario)),
			slog.Duration("elapsed", r.Elapsed),
			slog.Any("error", r.Err))
	}
}

func (a *Agent) pay(ctx context.Context, amount int64, number string) (*payx.Payment, error) {
	return a.Client.Payments().Create(ctx, &payx.PaymentCreateParams{
		Amount:        amount,
		CurrencyCode:  "USD",
		PaymentMethod: payx.CardPayment(number, payx.CardExpiry{Month: 12, Year: 25}),
	})
}

func (a *Agent) successfulPayment(ctx context.Context) (map[string]any, error) {
	p, err := a.pay(ctx, 1000, CardApproved)
	if err != nil {
		return nil, err
	}
	if p.Status != payx.PaymentStatusCompleted {
		return nil, fmt.Errorf("payment %s finished %s, want %s", p.ID, p.Status, payx.PaymentStatusCompleted)
	}
	return map[string]any{"paymentId": p.ID, "status": string(p.Status)}, nil
}

func (a *Agent) declinedPayment(ctx context.Context) (map[string]any, error) {
	_, err := a.pay(ctx, 1000, CardDeclined)
	return expectRejection(err, "declined")
}

func (a *Agent) expiredCard(ctx context.Context) (map[string]any, error) {
	_, err := a.pay(ctx, 1000, CardExpired)
	return expectRejection(err, "expired")
}

func (a *Agent) invalidCVV(ctx context.Context) (map[string]any, error) {
	_, err := a.pay(ctx, 1000, CardInvalidCVV)
	return expectRejection(err, "cvv")
}

// expectRejection passes when err is the API rejection the scenario
// set out to provoke. Unexpected acceptance and unrelated errors both
// fail the scenario.
func expectRejection(err error, fragment string) (map[string]any, error) {
	if err == nil {
		return nil, errors.New("request was accepted, want a rejection")
	}
	var apiErr *payx.Error
	if errors.As(err, &apiErr) && strings.Contains(strings.ToLower(apiErr.Message), fragment) {
		return map[string]any{"code": apiErr.Code, "message": apiErr.Message}, nil
	}
	return nil, err
}

func (a *Agent) partialRefund(ctx context.Context) (map[string]any, error) {
	p, err := a.pay(ctx, 5000, CardApproved)
	if err != nil {
		return nil, err
	}
	ref, err := a.Client.Refunds().Create(ctx, p.ID, &payx.RefundCreateParams{
		Amount: 2500,
		Reason: "requested by customer",
	})
	if err != nil {
		return nil, err
	}
	p, err = a.Client.Payments().Retrieve(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if p.AvailableToRefund != 2500 {
		return nil, fmt.Errorf("payment %s has %d available to refund, want 2500", p.ID, p.AvailableToRefund)
	}
	return map[string]any{
		"paymentId":         p.ID,
		"refundId":          ref.ID,
		"availableToRefund": p.AvailableToRefund,
	}, nil
}

func (a *Agent) fullRefund(ctx context.Context) (map[string]any, error) {
	p, err := a.pay(ctx, 2000, CardApproved)
	if err != nil {
		return nil, err
	}
	ref, err := a.Client.Refunds().Create(ctx, p.ID, &payx.RefundCreateParams{
		Amount: p.Amount,
		Reason: "requested by customer",
	})
	if err != nil {
		return nil, err
	}
	if ref.Status != payx.RefundStatusCompleted {
		return nil, fmt.Errorf("refund %s finished %s, want %s", ref.ID, ref.Status, payx.RefundStatusCompleted)
	}
	p, err = a.Client.Payments().Retrieve(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if p.AvailableToRefund != 0 {
		return nil, fmt.Errorf("payment %s has %d available to refund after full refund", p.ID, p.AvailableToRefund)
	}
	return map[string]any{"paymentId": p.ID, "refundId": ref.ID}, nil
}

func (a *Agent) excessiveRefund(ctx context.Context) (map[string]any, error) {
	p, err := a.pay(ctx, 1000, CardApproved)
	if err != nil {
		return nil, err
	}
	_, err = a.Client.Refunds().Create(ctx, p.ID, &payx.RefundCreateParams{Amount: 2000})
	return expectRejection(err, "exceed")
}

func (a *Agent) highValuePayment(ctx context.Context) (map[string]any, error) {
	p, err := a.pay(ctx, 50000, CardApproved)
	if err != nil {
		return nil, err
	}
	if p.Status != payx.PaymentStatusPending {
		return nil, fmt.Errorf("high value payment %s finished %s, want %s", p.ID, p.Status, payx.PaymentStatusPending)
	}
	return map[string]any{"paymentId": p.ID, "amount": p.Amount, "status": string(p.Status)}, nil
}

func (a *Agent) idempotentRequest(ctx context.Context) (map[string]any, error) {
	params := &payx.PaymentCreateParams{
		Amount:         1000,
		CurrencyCode:   "USD",
		PaymentMethod:  payx.CardPayment(CardApproved, payx.CardExpiry{Month: 12, Year: 25}),
		IdempotencyKey: uuid.NewString(),
	}
	first, err := a.Client.Payments().Create(ctx, params)
	if err != nil {
		return nil, err
	}
	second, err := a.Client.Payments().Create(ctx, params)
	if err != nil {
		return nil, err
	}
	if second.ID != first.ID {
		return nil, fmt.Errorf("replayed create returned payment %s, want %s", second.ID, first.ID)
	}
	return map[string]any{"paymentId": first.ID}, nil
}

// networkRecovery checks that a payment lands despite a 50% transient
// failure rate, given a patient retry policy. The generated
// idempotency key keeps the retries from double charging.
func (a *Agent) networkRecovery(ctx context.Context) (map[string]any, error) {
	if a.Server != nil {
		prev := a.Server.FailRate
		a.Server.FailRate = 0.5
		defer func() { a.Server.FailRate = prev }()
	}
	policy := retry.NewPolicy()
	policy.MaxRetries = 20
	policy.Strategy = retry.Fixed
	policy.InitialDelay = time.Millisecond
	client := a.Client.WithRetryPolicy(policy)
	retries := 0
	client.Handlers = &payx.HandlerGroup{}
	client.Handlers.PushBack(payx.BeforeRetryWait, payx.HandlerFunc(func(payx.Event, *payx.Call) {
		retries++
	}))
	p, err := client.Payments().Create(ctx, &payx.PaymentCreateParams{
		Amount:        1000,
		CurrencyCode:  "USD",
		PaymentMethod: payx.CardPayment(CardApproved, payx.CardExpiry{Month: 12, Year: 25}),
	})
	if err != nil {
		return map[string]any{"retries": retries}, err
	}
	return map[string]any{"paymentId": p.ID, "retries": retries}, nil
}

func (a *Agent) concurrentLoad(ctx context.Context, n int) (map[string]any, error) {
	if n <= 0 {
		n = 10
	}
	var succeeded, failed atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			amount := int64(500 + rand.Intn(4501))
			if _, err := a.pay(ctx, amount, CardApproved); err != nil {
				failed.Add(1)
				return nil
			}
			succeeded.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	details := map[string]any{
		"requests":  n,
		"succeeded": succeeded.Load(),
		"failed":    failed.Load(),
	}
	if succeeded.Load() == 0 {
		return details, errors.New("no concurrent payment succeeded")
	}
	return details, nil
}
