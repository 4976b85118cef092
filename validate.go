// Copyright 2025 The payx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package payx

import "strings"

func validateID(id, what string) error {
	if strings.TrimSpace(id) == "" {
		return newValidationError(what + " is required")
	}
	return nil
}

func validateCurrency(code string) error {
	if len(code) != 3 {
		return newValidationError("currency code must be a 3-letter ISO 4217 code")
	}
	for _, r := range code {
		if !('A' <= r && r <= 'Z' || 'a' <= r && r <= 'z') {
			return newValidationError("currency code must be a 3-letter ISO 4217 code")
		}
	}
	return nil
}

func validateAmount(amount int64) error {
	if amount <= 0 {
		return newValidationError("amount must be a positive number of minor currency units")
	}
	return nil
}
