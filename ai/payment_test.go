// Copyright 2025 The payx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package ai

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogama/payx"
)

func quiet() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestPaymentAgent(t *testing.T, f *fakeChat) *PaymentAgent {
	t.Helper()
	a, err := NewPaymentAgent(Config{Chat: f, Logger: quiet()})
	require.NoError(t, err)
	return a
}

func TestNewPaymentAgent(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := NewPaymentAgent(Config{})
	assert.ErrorIs(t, err, ErrUnavailable)

	a, err := NewPaymentAgent(Config{Chat: &fakeChat{}})
	require.NoError(t, err)
	assert.NotNil(t, a)
}

func TestPaymentAgent_AnalyzeTransactionRisk(t *testing.T) {
	payment := &payx.Payment{
		ID:           "pmt_1",
		Amount:       250000,
		CurrencyCode: "USD",
		Status:       payx.PaymentStatusPending,
	}

	t.Run("NilPayment", func(t *testing.T) {
		f := &fakeChat{}
		a := newTestPaymentAgent(t, f)
		_, err := a.AnalyzeTransactionRisk(context.Background(), nil, nil)
		assert.ErrorContains(t, err, "payment is required")
		assert.Zero(t, f.calls)
	})

	t.Run("Assessment", func(t *testing.T) {
		f := &fakeChat{resp: `{
			"riskLevel": "high",
			"riskScore": 82,
			"riskFactors": ["amount far above customer average"],
			"recommendations": ["hold for manual review"]
		}`}
		a := newTestPaymentAgent(t, f)
		history := []payx.Payment{{ID: "pmt_0", Amount: 1200, CurrencyCode: "USD"}}

		ra, err := a.AnalyzeTransactionRisk(context.Background(), payment, history)
		require.NoError(t, err)
		assert.Equal(t, RiskHigh, ra.Level)
		assert.Equal(t, 82, ra.Score)
		assert.Equal(t, []string{"amount far above customer average"}, ra.Factors)
		assert.Equal(t, []string{"hold for manual review"}, ra.Recommendations)

		assert.True(t, f.req.JSON)
		assert.Equal(t, riskSystem, f.req.System)
		assert.Contains(t, f.req.User, `"pmt_1"`)
		assert.Contains(t, f.req.User, `"pmt_0"`)
	})

	t.Run("EmptyHistory", func(t *testing.T) {
		f := &fakeChat{resp: `{"riskLevel":"low","riskScore":5,"riskFactors":[],"recommendations":[]}`}
		a := newTestPaymentAgent(t, f)

		ra, err := a.AnalyzeTransactionRisk(context.Background(), payment, nil)
		require.NoError(t, err)
		assert.Equal(t, RiskLow, ra.Level)
		assert.Contains(t, f.req.User, "(none)")
	})

	t.Run("BadModelOutput", func(t *testing.T) {
		f := &fakeChat{resp: "I think this looks risky."}
		a := newTestPaymentAgent(t, f)
		_, err := a.AnalyzeTransactionRisk(context.Background(), payment, nil)
		assert.ErrorContains(t, err, "not valid JSON")
	})
}

func TestPaymentAgent_SuggestPaymentOptimization(t *testing.T) {
	t.Run("EmptyHistory", func(t *testing.T) {
		f := &fakeChat{}
		a := newTestPaymentAgent(t, f)
		_, err := a.SuggestPaymentOptimization(context.Background(), nil)
		assert.ErrorContains(t, err, "payment history is required")
		assert.Zero(t, f.calls)
	})

	t.Run("Report", func(t *testing.T) {
		f := &fakeChat{resp: `{
			"paymentMethods": ["offer stored cards"],
			"routingStrategies": ["route amex via processor B"],
			"costSavings": ["batch small refunds"],
			"conversionTips": ["retry soft declines once"],
			"recurringOpportunities": ["monthly plan for repeat buyers"]
		}`}
		a := newTestPaymentAgent(t, f)
		history := []payx.Payment{
			{ID: "pmt_1", Amount: 1500, CurrencyCode: "USD"},
			{ID: "pmt_2", Amount: 1500, CurrencyCode: "USD"},
		}

		report, err := a.SuggestPaymentOptimization(context.Background(), history)
		require.NoError(t, err)
		assert.Equal(t, []string{"offer stored cards"}, report.PaymentMethods)
		assert.Equal(t, []string{"route amex via processor B"}, report.RoutingStrategies)
		assert.Equal(t, []string{"batch small refunds"}, report.CostSavings)
		assert.Equal(t, []string{"retry soft declines once"}, report.ConversionTips)
		assert.Equal(t, []string{"monthly plan for repeat buyers"}, report.RecurringOpportunities)

		assert.True(t, f.req.JSON)
		assert.Equal(t, optimizationSystem, f.req.System)
		assert.Contains(t, f.req.User, `"pmt_1"`)
		assert.Contains(t, f.req.User, `"pmt_2"`)
	})
}
