// Copyright 2025 The payx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package retry decides whether failed payment API requests should be
// retried, how long to wait between attempts, and runs the retry loop
// itself.
//
// The struct Policy is a pure value object describing a retry policy:
// a retry budget, the failure classes eligible for retry, the HTTP
// methods and paths eligible for retry, and a delay-growth strategy.
// A Policy makes decisions through two side-effect-free methods,
// ShouldRetry and Delay, so it can be unit-tested and shared freely:
//
//	policy := retry.NewPolicy()
//	policy.MaxRetries = 5
//	policy.Strategy = retry.ExponentialJitter
//	policy.Conditions = retry.NetworkError | retry.RateLimit
//
// The struct Executor owns the loop: it runs an operation, classifies
// its failure with package fault, consults the Policy, sleeps on a
// context-cancellable timer, and hands the caller back the original
// error unchanged once the policy declines. The package-level Do and
// DoValue functions cover the common cases:
//
//	err := retry.Do(ctx, policy, http.MethodPost, "/payments", func(ctx context.Context) error {
//		return send(ctx)
//	})
//
// If the built-in behavior is insufficient, an Executor accepts a
// custom Policy, a custom logger, and an OnRetry hook for
// instrumentation.
package retry
