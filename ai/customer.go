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

// A Segmentation places a customer into a business segment based on
// their profile and transaction history.
type Segmentation struct {
	// Segment is the primary segment, like "high-value" or "new".
	Segment string `json:"segment"`
	// ValueTier is "low", "medium", or "high".
	ValueTier string `json:"valueTier"`
	// Behaviors describes the spending patterns identified.
	Behaviors []string `json:"behaviors"`
	// PreferredMethods lists the payment methods the customer favors.
	PreferredMethods []string `json:"preferredMethods"`
	// Personalization recommends how to tailor the experience.
	Personalization []string `json:"personalization"`
}

// A LifetimeValue projects the total value a customer brings over
// time. Monetary fields are in minor currency units.
type LifetimeValue struct {
	CurrentValue   int64    `json:"currentValue"`
	ProjectedValue int64    `json:"projectedValue"`
	MonthlyValue   int64    `json:"monthlyValue"`
	Factors        []string `json:"factors"`
	Strategies     []string `json:"strategies"`
	// Confidence is the model's confidence in the projection, as a
	// percentage.
	Confidence int `json:"confidence"`
}

// A CustomerAgent analyzes customers with a chat completion model.
// Construct one with NewCustomerAgent.
type CustomerAgent struct {
	chat    ChatClient
	counter tokenCounter
	logger  *slog.Logger
}

// NewCustomerAgent returns a CustomerAgent, or ErrUnavailable when cfg
// carries no API key and no substitute ChatClient.
func NewCustomerAgent(cfg Config) (*CustomerAgent, error) {
	chat, err := cfg.chat()
	if err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	return &CustomerAgent{chat: chat, counter: newCounter(cfg.Model), logger: cfg.logger()}, nil
}

const segmentSystem = `You are a customer segmentation expert. Analyze the customer profile and
transaction history to place the customer in a meaningful business segment,
focusing on spending behavior, payment preferences, and transaction frequency.
Respond with a JSON object holding exactly these keys:
"segment" (string), "valueTier" (one of "low", "medium", "high"),
"behaviors" (array of strings), "preferredMethods" (array of strings),
"personalization" (array of strings).`

// SegmentCustomer asks the model to segment a customer given their
// profile and payment history, oldest first.
func (a *CustomerAgent) SegmentCustomer(ctx context.Context, customer *payx.Customer, history []payx.Payment) (*Segmentation, error) {
	if customer == nil {
		return nil, errors.New("ai: customer is required")
	}
	doc, err := json.Marshal(customer)
	if err != nil {
		return nil, fmt.Errorf("ai: marshal customer: %w", err)
	}
	user := fmt.Sprintf(`Segment the following customer based on their profile and transaction
history. Amounts are in minor currency units.

Customer profile:
%s

Transaction history, oldest first:
%s`, doc, renderHistory(a.counter, history, historyTokenBudget))
	a.logger.Debug("segmenting customer",
		slog.String("customer_id", customer.ID),
		slog.Int("history", len(history)))
	var seg Segmentation
	if err := completeJSON(ctx, a.chat, segmentSystem, user, &seg); err != nil {
		return nil, err
	}
	return &seg, nil
}

const lifetimeSystem = `You are a customer lifetime value analysis expert. Calculate and project
the total value a customer will bring to the business, based on historical
transaction patterns and customer characteristics. Consider purchase frequency,
average order value, and retention likelihood. All monetary values are integers
in minor currency units.
Respond with a JSON object holding exactly these keys:
"currentValue" (integer), "projectedValue" (integer), "monthlyValue" (integer),
"factors" (array of strings), "strategies" (array of strings),
"confidence" (integer percentage from 0 to 100).`

// AnalyzeCustomerLifetime asks the model to project a customer's
// lifetime value over the next months months, given their profile and
// payment history, oldest first.
func (a *CustomerAgent) AnalyzeCustomerLifetime(ctx context.Context, customer *payx.Customer, history []payx.Payment, months int) (*LifetimeValue, error) {
	if customer == nil {
		return nil, errors.New("ai: customer is required")
	}
	if months <= 0 {
		months = 24
	}
	doc, err := json.Marshal(customer)
	if err != nil {
		return nil, fmt.Errorf("ai: marshal customer: %w", err)
	}
	user := fmt.Sprintf(`Analyze the lifetime value of the following customer, projecting %d
months ahead. Amounts are in minor currency units.

Customer profile:
%s

Transaction history, oldest first:
%s`, months, doc, renderHistory(a.counter, history, historyTokenBudget))
	a.logger.Debug("analyzing customer lifetime value",
		slog.String("customer_id", customer.ID),
		slog.Int("months", months),
		slog.Int("history", len(history)))
	var lv LifetimeValue
	if err := completeJSON(ctx, a.chat, lifetimeSystem, user, &lv); err != nil {
		return nil, err
	}
	return &lv, nil
}
