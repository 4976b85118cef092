// Copyright 2025 The payx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package ai layers natural-language risk and insight reporting over
// payment data, using a chat completion model to turn raw payments and
// customers into typed assessments.
//
// The layer is optional and degrades gracefully. Constructing an agent
// without an OpenAI API key, in the OPENAI_API_KEY environment
// variable or Config.APIKey, fails with ErrUnavailable rather than
// panicking, and nothing else in the module depends on this package.
//
// Agents speak to the model through the ChatClient interface, so tests
// substitute a fake and never touch the network:
//
//	agent, err := ai.NewPaymentAgent(ai.Config{})
//	if errors.Is(err, ai.ErrUnavailable) {
//		// No key configured. Skip the AI features.
//	}
//	assessment, err := agent.AnalyzeTransactionRisk(ctx, payment, history)
//
// Reports come back as structs, not free text. The prompts pin the
// exact JSON keys the model must emit, and a response that is not
// valid JSON surfaces as an error.
package ai
