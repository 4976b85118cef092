// Copyright 2025 The payx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package payx

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PaymentStatus is the lifecycle state of a payment.
type PaymentStatus string

const (
	PaymentStatusCreated    PaymentStatus = "CREATED"
	PaymentStatusPending    PaymentStatus = "PENDING"
	PaymentStatusCompleted  PaymentStatus = "COMPLETED"
	PaymentStatusFailed     PaymentStatus = "FAILED"
	PaymentStatusCancelled  PaymentStatus = "CANCELLED"
	PaymentStatusAuthorized PaymentStatus = "AUTHORIZED"
	PaymentStatusSettling   PaymentStatus = "SETTLING"
	PaymentStatusSettled    PaymentStatus = "SETTLED"
	PaymentStatusDeclined   PaymentStatus = "DECLINED"
	PaymentStatusExpired    PaymentStatus = "EXPIRED"
)

// Payment method types.
const (
	MethodCard        = "CARD"
	MethodBankAccount = "BANK_ACCOUNT"
)

// An Address is a postal address attached to a payment.
type Address struct {
	Street  string `json:"street,omitempty"`
	Street2 string `json:"street2,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
	Zip     string `json:"zip,omitempty"`
}

// A PaymentMethod describes how a payment is funded. Type selects the
// method and decides which of the remaining fields apply: the Card
// fields for MethodCard, the Account fields for MethodBankAccount.
// The CardPayment and StoredCardPayment constructors cover the common
// card cases.
type PaymentMethod struct {
	Type string `json:"type"`

	// Card fields. Either CardID names a card stored against the
	// customer, or CardNumber and CardExpiry carry raw card details.
	CardID         string      `json:"cardId,omitempty"`
	CardNumber     string      `json:"cardNumber,omitempty"`
	CardExpiry     *CardExpiry `json:"cardExpiry,omitempty"`
	CardHolderName string      `json:"cardHolderName,omitempty"`
	CardCVV        string      `json:"cardCvv,omitempty"`
	CardType       CardType    `json:"cardType,omitempty"`

	// Bank account fields.
	AccountID         string `json:"accountId,omitempty"`
	AccountNumber     string `json:"accountNumber,omitempty"`
	RoutingNumber     string `json:"routingNumber,omitempty"`
	AccountType       string `json:"accountType,omitempty"`
	AccountHolderName string `json:"accountHolderName,omitempty"`
}

// CardPayment returns a PaymentMethod funding a payment with raw card
// details.
func CardPayment(number string, expiry CardExpiry) PaymentMethod {
	return PaymentMethod{Type: MethodCard, CardNumber: number, CardExpiry: &expiry}
}

// StoredCardPayment returns a PaymentMethod funding a payment with a
// card already stored against the customer.
func StoredCardPayment(cardID string) PaymentMethod {
	return PaymentMethod{Type: MethodCard, CardID: cardID}
}

// A Payment is a charge against a payment method. Amounts are in
// minor currency units, so 1099 with currency code USD is $10.99.
type Payment struct {
	ID                string         `json:"id,omitempty"`
	MerchantRefNum    string         `json:"merchantReferenceNumber,omitempty"`
	Amount            int64          `json:"amount"`
	CurrencyCode      string         `json:"currencyCode"`
	Description       string         `json:"description,omitempty"`
	CustomerID        string         `json:"customerId,omitempty"`
	PaymentMethod     PaymentMethod  `json:"paymentMethod"`
	Status            PaymentStatus  `json:"status,omitempty"`
	GatewayResponse   map[string]any `json:"gatewayResponse,omitempty"`
	ShippingAddress   *Address       `json:"shippingAddress,omitempty"`
	BillingAddress    *Address       `json:"billingAddress,omitempty"`
	AvailableToRefund int64          `json:"availableToRefund,omitempty"`
	CreatedAt         time.Time      `json:"createdAt,omitempty"`
	UpdatedAt         time.Time      `json:"updatedAt,omitempty"`
}

// PaymentCreateParams are the parameters for PaymentService.Create.
// Amount, CurrencyCode, and PaymentMethod are required.
type PaymentCreateParams struct {
	Amount          int64         `json:"amount"`
	CurrencyCode    string        `json:"currencyCode"`
	PaymentMethod   PaymentMethod `json:"paymentMethod"`
	CustomerID      string        `json:"customerId,omitempty"`
	Description     string        `json:"description,omitempty"`
	MerchantRefNum  string        `json:"merchantReferenceNumber,omitempty"`
	BillingAddress  *Address      `json:"billingAddress,omitempty"`
	ShippingAddress *Address      `json:"shippingAddress,omitempty"`

	// IdempotencyKey deduplicates the create on the server, so a
	// retried attempt can never charge twice. If empty, Create
	// generates a random key.
	IdempotencyKey string `json:"-"`
}

// PaymentListParams are the optional filters for PaymentService.List.
type PaymentListParams struct {
	// Limit and Offset page through results. The server defaults the
	// limit when zero.
	Limit  int
	Offset int
	// CustomerID restricts results to one customer's payments.
	CustomerID string
	// Status restricts results to payments in one lifecycle state.
	Status PaymentStatus
	// FromDate and ToDate restrict results by creation time.
	FromDate time.Time
	ToDate   time.Time
}

// A PaymentList is one page of payments.
type PaymentList struct {
	Payments   []Payment  `json:"payments"`
	Pagination Pagination `json:"pagination"`
}

// Pagination describes the page window of a list response.
type Pagination struct {
	TotalItems int `json:"totalItems"`
	Limit      int `json:"limit"`
	Offset     int `json:"offset"`
}

// PaymentCaptureParams are the parameters for PaymentService.Capture.
type PaymentCaptureParams struct {
	// Amount to capture in minor currency units. Zero captures the
	// full authorized amount.
	Amount int64 `json:"amount,omitempty"`
}

// PaymentService creates, retrieves, and manages payments. Obtain one
// from Client.Payments.
type PaymentService struct {
	caller Caller
}

// NewPaymentService returns a PaymentService speaking through c. Most
// code obtains the service from Client.Payments instead; the
// constructor exists for tests that substitute a fake Caller.
func NewPaymentService(c Caller) *PaymentService {
	return &PaymentService{caller: c}
}

// Create submits a new payment.
//
// If params.IdempotencyKey is empty, Create generates a random key,
// so a create that is retried after a network failure or server error
// can never charge the cardholder twice.
func (s *PaymentService) Create(ctx context.Context, params *PaymentCreateParams) (*Payment, error) {
	if params == nil {
		return nil, newValidationError("payment params are required")
	}
	if err := validateAmount(params.Amount); err != nil {
		return nil, err
	}
	if err := validateCurrency(params.CurrencyCode); err != nil {
		return nil, err
	}
	if params.PaymentMethod.Type == "" {
		return nil, newValidationError("payment method is required")
	}
	key := params.IdempotencyKey
	if key == "" {
		key = uuid.NewString()
	}
	header := http.Header{"Idempotency-Key": []string{key}}
	body := *params
	body.CurrencyCode = strings.ToUpper(body.CurrencyCode)
	var p Payment
	if err := s.caller.Call(ctx, http.MethodPost, "/payments", nil, header, &body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Retrieve fetches a payment by ID.
func (s *PaymentService) Retrieve(ctx context.Context, id string) (*Payment, error) {
	if err := validateID(id, "payment id"); err != nil {
		return nil, err
	}
	var p Payment
	if err := s.caller.Call(ctx, http.MethodGet, "/payments/"+url.PathEscape(id), nil, nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// List fetches one page of payments. A nil params lists the first
// page with the server's default page size.
func (s *PaymentService) List(ctx context.Context, params *PaymentListParams) (*PaymentList, error) {
	q := url.Values{}
	if params != nil {
		addPageParams(q, params.Limit, params.Offset)
		if params.CustomerID != "" {
			q.Set("customerId", params.CustomerID)
		}
		if params.Status != "" {
			q.Set("status", string(params.Status))
		}
		if !params.FromDate.IsZero() {
			q.Set("fromDate", params.FromDate.Format(time.RFC3339))
		}
		if !params.ToDate.IsZero() {
			q.Set("toDate", params.ToDate.Format(time.RFC3339))
		}
	}
	var list PaymentList
	if err := s.caller.Call(ctx, http.MethodGet, "/payments", q, nil, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// Cancel cancels a payment that has not settled yet.
func (s *PaymentService) Cancel(ctx context.Context, id string) (*Payment, error) {
	if err := validateID(id, "payment id"); err != nil {
		return nil, err
	}
	var p Payment
	if err := s.caller.Call(ctx, http.MethodPost, "/payments/"+url.PathEscape(id)+"/cancel", nil, nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Capture captures an authorized payment. A nil params, or a zero
// params.Amount, captures the full authorized amount.
func (s *PaymentService) Capture(ctx context.Context, id string, params *PaymentCaptureParams) (*Payment, error) {
	if err := validateID(id, "payment id"); err != nil {
		return nil, err
	}
	var body any
	if params != nil && params.Amount != 0 {
		if err := validateAmount(params.Amount); err != nil {
			return nil, err
		}
		body = params
	}
	var p Payment
	if err := s.caller.Call(ctx, http.MethodPost, "/payments/"+url.PathEscape(id)+"/capture", nil, nil, body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func addPageParams(q url.Values, limit, offset int) {
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
}
