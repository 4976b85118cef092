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

// CardType is the card network a card belongs to.
type CardType string

const (
	CardTypeVisa       CardType = "VISA"
	CardTypeMastercard CardType = "MASTERCARD"
	CardTypeAmex       CardType = "AMEX"
	CardTypeDiscover   CardType = "DISCOVER"
	CardTypeJCB        CardType = "JCB"
	CardTypeDiners     CardType = "DINERS"
	CardTypeUnknown    CardType = "UNKNOWN"
)

// CardStatus is the usability state of a stored card.
type CardStatus string

const (
	CardStatusActive   CardStatus = "ACTIVE"
	CardStatusInactive CardStatus = "INACTIVE"
	CardStatusExpired  CardStatus = "EXPIRED"
	CardStatusBlocked  CardStatus = "BLOCKED"
)

// A CardExpiry is a card expiry date. Month runs 1 through 12 and
// Year is the two-digit year; four-digit years are accepted and
// reduced modulo 100.
type CardExpiry struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

func (e CardExpiry) normalize() CardExpiry {
	if e.Year > 99 {
		e.Year %= 100
	}
	return e
}

func (e CardExpiry) validate() error {
	if e.Month < 1 || e.Month > 12 {
		return newValidationError("card expiry month must be between 1 and 12")
	}
	if e.Year < 0 {
		return newValidationError("card expiry year must not be negative")
	}
	return nil
}

// A Card is a payment card stored against a customer. The server
// never returns the full card number; CardNumber is masked to the
// last four digits.
type Card struct {
	ID               string      `json:"id,omitempty"`
	CustomerID       string      `json:"customerId,omitempty"`
	CardType         CardType    `json:"cardType,omitempty"`
	CardNumber       string      `json:"cardNumber,omitempty"`
	CardBin          string      `json:"cardBin,omitempty"`
	LastDigits       string      `json:"lastDigits,omitempty"`
	HolderName       string      `json:"holderName,omitempty"`
	Expiry           *CardExpiry `json:"cardExpiry,omitempty"`
	Status           CardStatus  `json:"status,omitempty"`
	BillingAddressID string      `json:"billingAddressId,omitempty"`
	NickName         string      `json:"nickName,omitempty"`
	Default          bool        `json:"default,omitempty"`
	PaymentToken     string      `json:"paymentToken,omitempty"`
	CreatedAt        time.Time   `json:"createdAt,omitempty"`
	UpdatedAt        time.Time   `json:"updatedAt,omitempty"`
}

// MaskCardNumber replaces all but the last four digits of a card
// number with asterisks. Numbers of four or fewer digits are returned
// unchanged.
func MaskCardNumber(number string) string {
	if len(number) <= 4 {
		return number
	}
	return strings.Repeat("*", len(number)-4) + number[len(number)-4:]
}

// CardCreateParams are the parameters for CardService.Create.
// CardNumber and Expiry are required.
type CardCreateParams struct {
	CardNumber       string      `json:"cardNumber"`
	Expiry           *CardExpiry `json:"cardExpiry"`
	HolderName       string      `json:"holderName,omitempty"`
	CVV              string      `json:"cvv,omitempty"`
	NickName         string      `json:"nickName,omitempty"`
	BillingAddressID string      `json:"billingAddressId,omitempty"`
	Default          bool        `json:"default,omitempty"`
}

// CardUpdateParams are the parameters for CardService.Update. Only
// the fields that are set are changed.
type CardUpdateParams struct {
	HolderName       string      `json:"holderName,omitempty"`
	Expiry           *CardExpiry `json:"cardExpiry,omitempty"`
	NickName         string      `json:"nickName,omitempty"`
	BillingAddressID string      `json:"billingAddressId,omitempty"`
	Default          bool        `json:"default,omitempty"`
	Status           CardStatus  `json:"status,omitempty"`
}

// CardListParams are the optional filters for CardService.List.
type CardListParams struct {
	Limit  int
	Offset int
	Status CardStatus
}

// A CardList is one page of cards.
type CardList struct {
	Cards      []Card     `json:"cards"`
	Pagination Pagination `json:"pagination"`
}

// CardService stores and manages cards under a customer. Obtain one
// from Client.Cards.
type CardService struct {
	caller Caller
}

// NewCardService returns a CardService speaking through c.
func NewCardService(c Caller) *CardService {
	return &CardService{caller: c}
}

// Create stores a new card against a customer.
func (s *CardService) Create(ctx context.Context, customerID string, params *CardCreateParams) (*Card, error) {
	if err := validateID(customerID, "customer id"); err != nil {
		return nil, err
	}
	if params == nil {
		return nil, newValidationError("card params are required")
	}
	if strings.TrimSpace(params.CardNumber) == "" {
		return nil, newValidationError("card number is required")
	}
	if params.Expiry == nil {
		return nil, newValidationError("card expiry is required")
	}
	if err := params.Expiry.validate(); err != nil {
		return nil, err
	}
	body := *params
	expiry := params.Expiry.normalize()
	body.Expiry = &expiry
	var card Card
	if err := s.caller.Call(ctx, http.MethodPost, cardPath(customerID, ""), nil, nil, &body, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// Retrieve fetches one of a customer's cards by ID.
func (s *CardService) Retrieve(ctx context.Context, customerID, cardID string) (*Card, error) {
	if err := validateCardIDs(customerID, cardID); err != nil {
		return nil, err
	}
	var card Card
	if err := s.caller.Call(ctx, http.MethodGet, cardPath(customerID, cardID), nil, nil, nil, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// Update changes a stored card's details.
func (s *CardService) Update(ctx context.Context, customerID, cardID string, params *CardUpdateParams) (*Card, error) {
	if err := validateCardIDs(customerID, cardID); err != nil {
		return nil, err
	}
	if params == nil {
		return nil, newValidationError("card params are required")
	}
	body := *params
	if body.Expiry != nil {
		if err := body.Expiry.validate(); err != nil {
			return nil, err
		}
		expiry := body.Expiry.normalize()
		body.Expiry = &expiry
	}
	var card Card
	if err := s.caller.Call(ctx, http.MethodPut, cardPath(customerID, cardID), nil, nil, &body, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// Delete removes a stored card.
func (s *CardService) Delete(ctx context.Context, customerID, cardID string) error {
	if err := validateCardIDs(customerID, cardID); err != nil {
		return err
	}
	return s.caller.Call(ctx, http.MethodDelete, cardPath(customerID, cardID), nil, nil, nil, nil)
}

// List fetches one page of a customer's cards.
func (s *CardService) List(ctx context.Context, customerID string, params *CardListParams) (*CardList, error) {
	if err := validateID(customerID, "customer id"); err != nil {
		return nil, err
	}
	q := url.Values{}
	if params != nil {
		addPageParams(q, params.Limit, params.Offset)
		if params.Status != "" {
			q.Set("status", string(params.Status))
		}
	}
	var list CardList
	if err := s.caller.Call(ctx, http.MethodGet, cardPath(customerID, ""), q, nil, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func cardPath(customerID, cardID string) string {
	p := "/customers/" + url.PathEscape(customerID) + "/cards"
	if cardID != "" {
		p += "/" + url.PathEscape(cardID)
	}
	return p
}

func validateCardIDs(customerID, cardID string) error {
	if err := validateID(customerID, "customer id"); err != nil {
		return err
	}
	return validateID(cardID, "card id")
}
