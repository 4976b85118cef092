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

// CustomerStatus is the account state of a customer.
type CustomerStatus string

const (
	CustomerStatusActive   CustomerStatus = "ACTIVE"
	CustomerStatusInactive CustomerStatus = "INACTIVE"
	CustomerStatusBlocked  CustomerStatus = "BLOCKED"
)

// BillingDetails are the billing address and phone on file for a
// customer.
type BillingDetails struct {
	Street  string `json:"street,omitempty"`
	Street2 string `json:"street2,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
	Zip     string `json:"zip,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// A Customer is a payer profile that payments and stored cards hang
// off.
type Customer struct {
	ID                 string            `json:"id,omitempty"`
	MerchantCustomerID string            `json:"merchantCustomerId,omitempty"`
	FirstName          string            `json:"firstName,omitempty"`
	LastName           string            `json:"lastName,omitempty"`
	Email              string            `json:"email,omitempty"`
	Phone              string            `json:"phone,omitempty"`
	BillingDetails     *BillingDetails   `json:"billingDetails,omitempty"`
	Status             CustomerStatus    `json:"status,omitempty"`
	Locale             string            `json:"locale,omitempty"`
	IPAddress          string            `json:"ipAddress,omitempty"`
	Metadata           map[string]string `json:"metadata,omitempty"`
	CreatedAt          time.Time         `json:"createdAt,omitempty"`
	UpdatedAt          time.Time         `json:"updatedAt,omitempty"`
}

// FullName returns the customer's full name, or the empty string if
// no name is on file.
func (c *Customer) FullName() string {
	switch {
	case c.FirstName != "" && c.LastName != "":
		return c.FirstName + " " + c.LastName
	case c.FirstName != "":
		return c.FirstName
	default:
		return c.LastName
	}
}

// CustomerCreateParams are the parameters for CustomerService.Create.
// FirstName and LastName are required.
type CustomerCreateParams struct {
	FirstName          string            `json:"firstName"`
	LastName           string            `json:"lastName"`
	Email              string            `json:"email,omitempty"`
	Phone              string            `json:"phone,omitempty"`
	MerchantCustomerID string            `json:"merchantCustomerId,omitempty"`
	BillingDetails     *BillingDetails   `json:"billingDetails,omitempty"`
	Locale             string            `json:"locale,omitempty"`
	IPAddress          string            `json:"ipAddress,omitempty"`
	Metadata           map[string]string `json:"metadata,omitempty"`
}

// CustomerUpdateParams are the parameters for CustomerService.Update.
// Only the fields that are set are changed.
type CustomerUpdateParams struct {
	FirstName          string            `json:"firstName,omitempty"`
	LastName           string            `json:"lastName,omitempty"`
	Email              string            `json:"email,omitempty"`
	Phone              string            `json:"phone,omitempty"`
	MerchantCustomerID string            `json:"merchantCustomerId,omitempty"`
	BillingDetails     *BillingDetails   `json:"billingDetails,omitempty"`
	Locale             string            `json:"locale,omitempty"`
	Status             CustomerStatus    `json:"status,omitempty"`
	Metadata           map[string]string `json:"metadata,omitempty"`
}

// CustomerListParams are the optional filters for
// CustomerService.List.
type CustomerListParams struct {
	Limit              int
	Offset             int
	Email              string
	MerchantCustomerID string
	Status             CustomerStatus
}

// A CustomerList is one page of customers.
type CustomerList struct {
	Customers  []Customer `json:"customers"`
	Pagination Pagination `json:"pagination"`
}

// CustomerService creates, retrieves, and manages customers. Obtain
// one from Client.Customers.
type CustomerService struct {
	caller Caller
}

// NewCustomerService returns a CustomerService speaking through c.
func NewCustomerService(c Caller) *CustomerService {
	return &CustomerService{caller: c}
}

// Create registers a new customer.
func (s *CustomerService) Create(ctx context.Context, params *CustomerCreateParams) (*Customer, error) {
	if params == nil {
		return nil, newValidationError("customer params are required")
	}
	if strings.TrimSpace(params.FirstName) == "" || strings.TrimSpace(params.LastName) == "" {
		return nil, newValidationError("customer first and last name are required")
	}
	var cust Customer
	if err := s.caller.Call(ctx, http.MethodPost, "/customers", nil, nil, params, &cust); err != nil {
		return nil, err
	}
	return &cust, nil
}

// Retrieve fetches a customer by ID.
func (s *CustomerService) Retrieve(ctx context.Context, id string) (*Customer, error) {
	if err := validateID(id, "customer id"); err != nil {
		return nil, err
	}
	var cust Customer
	if err := s.caller.Call(ctx, http.MethodGet, "/customers/"+url.PathEscape(id), nil, nil, nil, &cust); err != nil {
		return nil, err
	}
	return &cust, nil
}

// Update changes a customer's details.
func (s *CustomerService) Update(ctx context.Context, id string, params *CustomerUpdateParams) (*Customer, error) {
	if err := validateID(id, "customer id"); err != nil {
		return nil, err
	}
	if params == nil {
		return nil, newValidationError("customer params are required")
	}
	var cust Customer
	if err := s.caller.Call(ctx, http.MethodPut, "/customers/"+url.PathEscape(id), nil, nil, params, &cust); err != nil {
		return nil, err
	}
	return &cust, nil
}

// Delete removes a customer and the cards stored against it.
func (s *CustomerService) Delete(ctx context.Context, id string) error {
	if err := validateID(id, "customer id"); err != nil {
		return err
	}
	return s.caller.Call(ctx, http.MethodDelete, "/customers/"+url.PathEscape(id), nil, nil, nil, nil)
}

// List fetches one page of customers. A nil params lists the first
// page with the server's default page size.
func (s *CustomerService) List(ctx context.Context, params *CustomerListParams) (*CustomerList, error) {
	q := url.Values{}
	if params != nil {
		addPageParams(q, params.Limit, params.Offset)
		if params.Email != "" {
			q.Set("email", params.Email)
		}
		if params.MerchantCustomerID != "" {
			q.Set("merchantCustomerId", params.MerchantCustomerID)
		}
		if params.Status != "" {
			q.Set("status", string(params.Status))
		}
	}
	var list CustomerList
	if err := s.caller.Call(ctx, http.MethodGet, "/customers", q, nil, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}
