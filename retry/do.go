// Copyright 2025 The payx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry

import (
	"context"
	"log/slog"
	"time"

	"github.com/gogama/payx/fault"
)

// An Executor runs operations under a retry policy. It classifies each
// failure, consults the policy, waits out the computed backoff delay
// on a context-cancellable timer, and logs one structured record per
// retry.
//
// The zero value Executor is ready to use: a nil Policy means
// DefaultPolicy and a nil Logger means slog.Default(). An Executor is
// safe for concurrent use by multiple goroutines; every invocation
// owns its own attempt counter and shares nothing.
type Executor struct {
	// Policy decides whether and when to retry. Nil means
	// DefaultPolicy.
	Policy *Policy
	// Logger receives one Warn record per retry, carrying the method,
	// path, attempt number, computed delay, and failure kind. Nil
	// means slog.Default().
	Logger *slog.Logger
	// OnRetry, if non-nil, is invoked once per retry, after the
	// decision and before the backoff sleep. The attempt index is
	// zero-based and identifies the attempt that just failed.
	OnRetry func(attempt int, delay time.Duration, o fault.Outcome)
}

// Do runs op until it succeeds, the policy declines a retry, or ctx is
// done. The method and path describe the request op performs and feed
// the policy's method and path gates.
//
// On give-up, Do returns the last attempt's error unchanged, so the
// caller can inspect it with errors.As exactly as if there had been no
// retry loop. If ctx expires during a backoff sleep, Do returns
// ctx.Err() instead; an operation failure with ctx already done is
// returned as-is without consulting the policy.
func (x *Executor) Do(ctx context.Context, method, path string, op func(context.Context) error) error {
	_, err := DoValue(ctx, x, method, path, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// DoValue is Do for operations that produce a value. It is a
// package-level function because methods cannot introduce type
// parameters.
func DoValue[T any](ctx context.Context, x *Executor, method, path string, op func(context.Context) (T, error)) (T, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	policy := x.policy()
	logger := x.logger()
	var onRetry func(int, time.Duration, fault.Outcome)
	if x != nil {
		onRetry = x.OnRetry
	}
	attempt := 0
	for {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		o := fault.Classify(err)
		if ctx.Err() != nil {
			return v, err
		}
		if !policy.ShouldRetry(method, path, attempt, &o) {
			return v, err
		}
		delay := policy.Delay(attempt)
		logger.Warn("retrying request",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("attempt", attempt+1),
			slog.Int("max_attempts", policy.maxRetries()+1),
			slog.Duration("delay", delay),
			slog.String("kind", o.Kind.String()),
			slog.Any("error", err))
		if onRetry != nil {
			onRetry(attempt, delay, o)
		}
		if serr := sleep(ctx, delay); serr != nil {
			return v, serr
		}
		attempt++
	}
}

// Do runs op under policy p with a default Executor. A nil p means
// DefaultPolicy.
func Do(ctx context.Context, p *Policy, method, path string, op func(context.Context) error) error {
	x := Executor{Policy: p}
	return x.Do(ctx, method, path, op)
}

func (x *Executor) policy() *Policy {
	if x == nil || x.Policy == nil {
		return DefaultPolicy
	}
	return x.Policy
}

func (x *Executor) logger() *slog.Logger {
	if x == nil || x.Logger == nil {
		return slog.Default()
	}
	return x.Logger
}

// sleep waits out d or returns early with ctx.Err() if ctx is done
// first. A non-positive d only checks the context.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
