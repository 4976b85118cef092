// Copyright 2025 The payx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package payx

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RefundStatus is the lifecycle state of a refund.
type RefundStatus string

const (
	RefundStatusPending   RefundStatus = "PENDING"
	RefundStatusCompleted RefundStatus = "COMPLETED"
	RefundStatusFailed    RefundStatus = "FAILED"
	RefundStatusCancelled RefundStatus = "CANCELLED"
)

// A Refund returns some or all of a completed payment's amount to the
// payer.
type Refund struct {
	ID              string         `json:"id,omitempty"`
	PaymentID       string         `json:"paymentId,omitempty"`
	MerchantRefNum  string         `json:"merchantReferenceNumber,omitempty"`
	Amount          int64          `json:"amount"`
	CurrencyCode    string         `json:"currencyCode,omitempty"`
	Status          RefundStatus   `json:"status,omitempty"`
	Reason          string         `json:"reason,omitempty"`
	GatewayResponse map[string]any `json:"gatewayResponse,omitempty"`
	CreatedAt       time.Time      `json:"createdAt,omitempty"`
	UpdatedAt       time.Time      `json:"updatedAt,omitempty"`
}

// RefundCreateParams are the parameters for RefundService.Create.
// Amount is required and must not exceed the payment's remaining
// refundable amount.
type RefundCreateParams struct {
	Amount         int64  `json:"amount"`
	CurrencyCode   string `json:"currencyCode,omitempty"`
	Reason         string `json:"reason,omitempty"`
	MerchantRefNum string `json:"merchantReferenceNumber,omitempty"`
}

// RefundListParams are the optional filters for RefundService.List.
type RefundListParams struct {
	Limit  int
	Offset int
	Status RefundStatus
}

// A RefundList is one page of refunds.
type RefundList struct {
	Refunds    []Refund   `json:"refunds"`
	Pagination Pagination `json:"pagination"`
}

// RefundService creates and manages refunds under a payment. Obtain
// one from Client.Refunds.
type RefundService struct {
	caller Caller
}

// NewRefundService returns a RefundService speaking through c.
func NewRefundService(c Caller) *RefundService {
	return &RefundService{caller: c}
}

// Create refunds some or all of a payment. The server rejects
// amounts over the payment's remaining refundable balance.
func (s *RefundService) Create(ctx context.Context, paymentID string, params *RefundCreateParams) (*Refund, error) {
	if err := validateID(paymentID, "payment id"); err != nil {
		return nil, err
	}
	if params == nil {
		return nil, newValidationError("refund params are required")
	}
	if err := validateAmount(params.Amount); err != nil {
		return nil, err
	}
	body := *params
	if body.CurrencyCode != "" {
		if err := validateCurrency(body.CurrencyCode); err != nil {
			return nil, err
		}
		body.CurrencyCode = strings.ToUpper(body.CurrencyCode)
	}
	var r Refund
	if err := s.caller.Call(ctx, http.MethodPost, refundPath(paymentID, ""), nil, nil, &body, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Retrieve fetches one of a payment's refunds by ID.
func (s *RefundService) Retrieve(ctx context.Context, paymentID, refundID string) (*Refund, error) {
	if err := validateRefundIDs(paymentID, refundID); err != nil {
		return nil, err
	}
	var r Refund
	if err := s.caller.Call(ctx, http.MethodGet, refundPath(paymentID, refundID), nil, nil, nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// List fetches one page of a payment's refunds.
func (s *RefundService) List(ctx context.Context, paymentID string, params *RefundListParams) (*RefundList, error) {
	if err := validateID(paymentID, "payment id"); err != nil {
		return nil, err
	}
	q := url.Values{}
	if params != nil {
		addPageParams(q, params.Limit, params.Offset)
		if params.Status != "" {
			q.Set("status", string(params.Status))
		}
	}
	var list RefundList
	if err := s.caller.Call(ctx, http.MethodGet, refundPath(paymentID, ""), q, nil, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// Cancel cancels a refund that is still pending.
func (s *RefundService) Cancel(ctx context.Context, paymentID, refundID string) (*Refund, error) {
	if err := validateRefundIDs(paymentID, refundID); err != nil {
		return nil, err
	}
	var r Refund
	if err := s.caller.Call(ctx, http.MethodPost, refundPath(paymentID, refundID)+"/cancel", nil, nil, nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func refundPath(paymentID, refundID string) string {
	p := "/payments/" + url.PathEscape(paymentID) + "/refunds"
	if refundID != "" {
		p += "/" + url.PathEscape(refundID)
	}
	return p
}

func validateRefundIDs(paymentID, refundID string) error {
	if err := validateID(paymentID, "payment id"); err != nil {
		return err
	}
	return validateID(refundID, "refund id")
}
