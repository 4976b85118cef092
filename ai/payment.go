// Copyright 2025 The payx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogama/payx"
)

// RiskLevel grades the overall risk of a transaction.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// A RiskAssessment is the model's judgment of one transaction.
type RiskAssessment struct {
	// Level is the overall risk grade.
	Level RiskLevel `json:"riskLevel"`
	// Score refines the grade on a 0 to 100 scale, higher is riskier.
	Score int `json:"riskScore"`
	// Factors names the specific risk signals identified.
	Factors []string `json:"riskFactors"`
	// Recommendations suggests how to handle the transaction.
	Recommendations []string `json:"recommendations"`
}

// An OptimizationReport suggests payment processing improvements
// derived from transaction history.
type OptimizationReport struct {
	PaymentMethods         []string `json:"paymentMethods"`
	RoutingStrategies      []string `json:"routingStrategies"`
	CostSavings            []string `json:"costSavings"`
	ConversionTips         []string `json:"conversionTips"`
	RecurringOpportunities []string `json:"recurringOpportunities"`
}

// A PaymentAgent analyzes payments with a chat completion model.
// Construct one with NewPaymentAgent.
type PaymentAgent struct {
	chat    ChatClient
	counter tokenCounter
	logger  *slog.Logger
}

// NewPaymentAgent returns a PaymentAgent, or ErrUnavailable when cfg
// carries no API key and no substitute ChatClient.
func NewPaymentAgent(cfg Config) (*PaymentAgent, error) {
	chat, err := cfg.chat()
	if err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	return &PaymentAgent{chat: chat, counter: newCounter(cfg.Model), logger: cfg.logger()}, nil
}

const riskSystem = `You are an expert risk assessment system for payment transactions.
Analyze the transaction details and provide a comprehensive risk assessment,
considering the transaction amount, payment method, customer history, and timing.
Respond with a JSON object holding exactly these keys:
"riskLevel" (one of "low", "medium", "high"),
"riskScore" (integer from 0 to 100, higher is riskier),
"riskFactors" (array of strings),
"recommendations" (array of strings).`

// AnalyzeTransactionRisk asks the model to grade the risk of one
// payment, optionally in the light of the customer's recent payment
// history, oldest first. Long histories are trimmed to a token budget,
// keeping the newest records.
func (a *PaymentAgent) AnalyzeTransactionRisk(ctx context.Context, payment *payx.Payment, history []payx.Payment) (*RiskAssessment, error) {
	if payment == nil {
		return nil, errors.New("ai: payment is required")
	}
	doc, err := json.Marshal(payment)
	if err != nil {
		return nil, fmt.Errorf("ai: marshal payment: %w", err)
	}
	user := fmt.Sprintf(`Analyze the following payment transaction for risk.
Amounts are in minor currency units.

Transaction:
%s

Recent payments by the same customer, oldest first:
%s`, doc, renderHistory(a.counter, history, historyTokenBudget))
	a.logger.Debug("analyzing transaction risk",
		slog.String("payment_id", payment.ID),
		slog.Int("history", len(history)))
	var ra RiskAssessment
	if err := completeJSON(ctx, a.chat, riskSystem, user, &ra); err != nil {
		return nil, err
	}
	return &ra, nil
}

const optimizationSystem = `You are a payment optimization expert. Analyze the payment history and
provide actionable suggestions to improve acceptance rates, reduce costs, and
enhance the payment experience.
Respond with a JSON object holding exactly these keys, each an array of strings:
"paymentMethods", "routingStrategies", "costSavings", "conversionTips",
"recurringOpportunities".`

// SuggestPaymentOptimization asks the model for processing
// improvements based on a payment history, oldest first.
func (a *PaymentAgent) SuggestPaymentOptimization(ctx context.Context, history []payx.Payment) (*OptimizationReport, error) {
	if len(history) == 0 {
		return nil, errors.New("ai: payment history is required")
	}
	user := fmt.Sprintf(`Based on the following payment history, suggest optimizations for
payment processing. Amounts are in minor currency units.

Payment history, oldest first:
%s`, renderHistory(a.counter, history, historyTokenBudget))
	a.logger.Debug("suggesting payment optimization", slog.Int("history", len(history)))
	var report OptimizationReport
	if err := completeJSON(ctx, a.chat, optimizationSystem, user, &report); err != nil {
		return nil, err
	}
	return &report, nil
}
