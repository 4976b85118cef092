// Copyright 2025 The payx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package payx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"github.com/gogama/payx/fault"
)

// A WebhookEvent names a resource lifecycle event that a webhook
// subscription can deliver.
type WebhookEvent string

const (
	WebhookPaymentCreated   WebhookEvent = "payment.created"
	WebhookPaymentPending   WebhookEvent = "payment.pending"
	WebhookPaymentCompleted WebhookEvent = "payment.completed"
	WebhookPaymentFailed    WebhookEvent = "payment.failed"
	WebhookPaymentCancelled WebhookEvent = "payment.cancelled"
	WebhookPaymentRefunded  WebhookEvent = "payment.refunded"

	WebhookCustomerCreated WebhookEvent = "customer.created"
	WebhookCustomerUpdated WebhookEvent = "customer.updated"
	WebhookCustomerDeleted WebhookEvent = "customer.deleted"

	WebhookCardCreated WebhookEvent = "card.created"
	WebhookCardUpdated WebhookEvent = "card.updated"
	WebhookCardDeleted WebhookEvent = "card.deleted"

	WebhookRefundCreated   WebhookEvent = "refund.created"
	WebhookRefundCompleted WebhookEvent = "refund.completed"
	WebhookRefundFailed    WebhookEvent = "refund.failed"
)

// A Webhook is a subscription delivering resource lifecycle events to
// a merchant URL.
type Webhook struct {
	ID          string         `json:"id,omitempty"`
	URL         string         `json:"url"`
	Events      []WebhookEvent `json:"events"`
	Description string         `json:"description,omitempty"`
	Active      bool           `json:"active"`
	Secret      string         `json:"secret,omitempty"`
	CreatedAt   time.Time      `json:"createdAt,omitempty"`
	UpdatedAt   time.Time      `json:"updatedAt,omitempty"`
}

// A WebhookPayload is the body of one webhook delivery.
type WebhookPayload struct {
	ID        string         `json:"id"`
	Event     WebhookEvent   `json:"event"`
	CreatedAt time.Time      `json:"createdAt"`
	Data      map[string]any `json:"data"`
}

// ParseWebhookPayload decodes the body of a webhook delivery.
func ParseWebhookPayload(body []byte) (*WebhookPayload, error) {
	var p WebhookPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, &Error{Kind: fault.Client, Message: "decode webhook payload", Err: err}
	}
	if p.ID == "" || p.Event == "" {
		return nil, newValidationError("webhook payload must carry an id and an event")
	}
	return &p, nil
}

// WebhookCreateParams are the parameters for WebhookService.Create.
// URL and Events are required.
type WebhookCreateParams struct {
	URL         string         `json:"url"`
	Events      []WebhookEvent `json:"events"`
	Description string         `json:"description,omitempty"`
	// Active controls whether the subscription starts delivering
	// immediately. Nil means active.
	Active *bool  `json:"active,omitempty"`
	Secret string `json:"secret,omitempty"`
}

// WebhookUpdateParams are the parameters for WebhookService.Update.
// Only the fields that are set are changed.
type WebhookUpdateParams struct {
	URL         string         `json:"url,omitempty"`
	Events      []WebhookEvent `json:"events,omitempty"`
	Description string         `json:"description,omitempty"`
	Active      *bool          `json:"active,omitempty"`
	Secret      string         `json:"secret,omitempty"`
}

// WebhookListParams are the paging parameters for
// WebhookService.List.
type WebhookListParams struct {
	Limit  int
	Offset int
}

// A WebhookList is one page of webhook subscriptions.
type WebhookList struct {
	Webhooks   []Webhook  `json:"webhooks"`
	Pagination Pagination `json:"pagination"`
}

// WebhookService manages webhook subscriptions. Obtain one from
// Client.Webhooks.
type WebhookService struct {
	caller Caller
}

// NewWebhookService returns a WebhookService speaking through c.
func NewWebhookService(c Caller) *WebhookService {
	return &WebhookService{caller: c}
}

// Create registers a new webhook subscription.
func (s *WebhookService) Create(ctx context.Context, params *WebhookCreateParams) (*Webhook, error) {
	if params == nil {
		return nil, newValidationError("webhook params are required")
	}
	if err := validateWebhookURL(params.URL); err != nil {
		return nil, err
	}
	if len(params.Events) == 0 {
		return nil, newValidationError("webhook events are required")
	}
	var w Webhook
	if err := s.caller.Call(ctx, http.MethodPost, "/webhooks", nil, nil, params, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// Retrieve fetches a webhook subscription by ID.
func (s *WebhookService) Retrieve(ctx context.Context, id string) (*Webhook, error) {
	if err := validateID(id, "webhook id"); err != nil {
		return nil, err
	}
	var w Webhook
	if err := s.caller.Call(ctx, http.MethodGet, "/webhooks/"+url.PathEscape(id), nil, nil, nil, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// Update changes a webhook subscription.
func (s *WebhookService) Update(ctx context.Context, id string, params *WebhookUpdateParams) (*Webhook, error) {
	if err := validateID(id, "webhook id"); err != nil {
		return nil, err
	}
	if params == nil {
		return nil, newValidationError("webhook params are required")
	}
	if params.URL != "" {
		if err := validateWebhookURL(params.URL); err != nil {
			return nil, err
		}
	}
	var w Webhook
	if err := s.caller.Call(ctx, http.MethodPut, "/webhooks/"+url.PathEscape(id), nil, nil, params, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// Delete removes a webhook subscription.
func (s *WebhookService) Delete(ctx context.Context, id string) error {
	if err := validateID(id, "webhook id"); err != nil {
		return err
	}
	return s.caller.Call(ctx, http.MethodDelete, "/webhooks/"+url.PathEscape(id), nil, nil, nil, nil)
}

// List fetches one page of webhook subscriptions.
func (s *WebhookService) List(ctx context.Context, params *WebhookListParams) (*WebhookList, error) {
	q := url.Values{}
	if params != nil {
		addPageParams(q, params.Limit, params.Offset)
	}
	var list WebhookList
	if err := s.caller.Call(ctx, http.MethodGet, "/webhooks", q, nil, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func validateWebhookURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return newValidationError("webhook url must be an absolute http or https URL")
	}
	return nil
}
