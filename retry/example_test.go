// Copyright 2025 The payx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package retry_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gogama/payx/retry"
)

func ExamplePolicy_Delay() {
	policy := retry.Policy{
		Strategy:      retry.Exponential,
		InitialDelay:  1 * time.Second,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 2.0,
	}
	for attempt := 0; attempt <= 3; attempt++ {
		fmt.Println(policy.Delay(attempt))
	}
	// Output:
	// 1s
	// 2s
	// 4s
	// 5s
}

func ExampleExecutor_Do() {
	policy := retry.NewPolicy()
	policy.Strategy = retry.Fixed
	policy.InitialDelay = time.Millisecond
	policy.Conditions = retry.AnyError
	x := retry.Executor{
		Policy: policy,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	attempts := 0
	err := x.Do(context.Background(), http.MethodGet, "/payments/pmt_1", func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("transient glitch")
		}
		return nil
	})
	fmt.Println(attempts, err)
	// Output: 3 <nil>
}
