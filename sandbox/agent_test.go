// Copyright 2025 The payx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package sandbox

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogama/payx"
	"github.com/gogama/payx/fault"
)

func testAgent(srv *Server) *Agent {
	a := NewAgent(srv)
	a.Client.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	a.Logger = a.Client.Logger
	return a
}

func TestScenarios(t *testing.T) {
	scenarios := Scenarios()
	require.Len(t, scenarios, 11)
	assert.Equal(t, ScenarioSuccessfulPayment, scenarios[0])
	assert.Equal(t, ScenarioConcurrentLoad, scenarios[len(scenarios)-1])
	seen := make(map[Scenario]bool)
	for _, s := range scenarios {
		assert.False(t, seen[s], "duplicate scenario %s", s)
		seen[s] = true
	}
}

func TestAgent_RunAll(t *testing.T) {
	srv := &Server{APIKey: "sk_test"}
	a := testAgent(srv)

	results := a.RunAll(context.Background())
	require.Len(t, results, len(Scenarios()))
	for _, r := range results {
		assert.True(t, r.OK, "scenario %s failed: %v", r.Scenario, r.Err)
		assert.NoError(t, r.Err, "scenario %s", r.Scenario)
	}

	// The network recovery scenario must put the failure rate back.
	assert.Zero(t, srv.FailRate)
}

func TestAgent_RunAllStopsOnDoneContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a := testAgent(&Server{})
	assert.Empty(t, a.RunAll(ctx))
}

func TestAgent_Run(t *testing.T) {
	srv := &Server{}
	a := testAgent(srv)
	ctx := context.Background()

	t.Run("SuccessfulPayment", func(t *testing.T) {
		r := a.Run(ctx, ScenarioSuccessfulPayment)
		require.True(t, r.OK, "err: %v", r.Err)
		assert.Equal(t, ScenarioSuccessfulPayment, r.Scenario)
		id, _ := r.Details["paymentId"].(string)
		assert.True(t, strings.HasPrefix(id, "pmt_"))
		assert.Equal(t, "COMPLETED", r.Details["status"])
	})

	t.Run("DeclinedPayment", func(t *testing.T) {
		r := a.Run(ctx, ScenarioDeclinedPayment)
		require.True(t, r.OK, "err: %v", r.Err)
		assert.Equal(t, "CARD_DECLINED", r.Details["code"])
	})

	t.Run("HighValuePayment", func(t *testing.T) {
		r := a.Run(ctx, ScenarioHighValuePayment)
		require.True(t, r.OK, "err: %v", r.Err)
		assert.Equal(t, "PENDING", r.Details["status"])
	})

	t.Run("NetworkRecovery", func(t *testing.T) {
		r := a.Run(ctx, ScenarioNetworkRecovery)
		require.True(t, r.OK, "err: %v", r.Err)
		assert.Contains(t, r.Details, "retries")
		assert.Zero(t, srv.FailRate)
	})

	t.Run("Unknown", func(t *testing.T) {
		r := a.Run(ctx, Scenario("time_travel"))
		assert.False(t, r.OK)
		assert.ErrorContains(t, r.Err, `unknown scenario "time_travel"`)
	})
}

func TestAgent_Stress(t *testing.T) {
	srv := &Server{}
	a := testAgent(srv)

	r := a.Stress(context.Background(), 25)
	require.True(t, r.OK, "err: %v", r.Err)
	assert.Equal(t, ScenarioConcurrentLoad, r.Scenario)
	assert.Equal(t, 25, r.Details["requests"])
	assert.Equal(t, int64(25), r.Details["succeeded"])
	assert.Equal(t, int64(0), r.Details["failed"])

	list, err := a.Client.Payments().List(context.Background(), &payx.PaymentListParams{Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, 25, list.Pagination.TotalItems)
}

func TestExpectRejection(t *testing.T) {
	t.Run("AcceptedFails", func(t *testing.T) {
		details, err := expectRejection(nil, "declined")
		assert.Nil(t, details)
		assert.ErrorContains(t, err, "accepted")
	})

	t.Run("MatchingRejectionPasses", func(t *testing.T) {
		apiErr := &payx.Error{
			Kind:       fault.Client,
			StatusCode: 400,
			Code:       "CARD_DECLINED",
			Message:    "Card declined: insufficient funds",
		}
		details, err := expectRejection(apiErr, "declined")
		require.NoError(t, err)
		assert.Equal(t, "CARD_DECLINED", details["code"])
		assert.Equal(t, "Card declined: insufficient funds", details["message"])
	})

	t.Run("UnrelatedErrorFails", func(t *testing.T) {
		cause := errors.New("connection reset")
		details, err := expectRejection(cause, "declined")
		assert.Nil(t, details)
		assert.Same(t, cause, err)
	})
}
