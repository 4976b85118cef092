// Copyright 2025 The payx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package sandbox

import (
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/gogama/payx"
)

func filterDocs(docs [][]byte, keep func([]byte) bool) [][]byte {
	kept := make([][]byte, 0, len(docs))
	for _, doc := range docs {
		if keep(doc) {
			kept = append(kept, doc)
		}
	}
	return kept
}

// Customer handlers.

func (s *Server) createCustomer(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	if !s.require(w, body, "firstName", "lastName") {
		return
	}
	id := newID("cust")
	doc := set(body, "id", id)
	doc = set(doc, "status", "ACTIVE")
	doc = stamp(doc)
	s.mu.Lock()
	s.customers.put(id, doc)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) getCustomer(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.mu.Lock()
	doc, ok := s.customers.get(id)
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Customer not found: "+id)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) listCustomers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset := pageParams(r)
	s.mu.Lock()
	docs := s.customers.all()
	s.mu.Unlock()
	docs = filterDocs(docs, func(doc []byte) bool {
		if email := q.Get("email"); email != "" && !strings.Contains(gjson.GetBytes(doc, "email").String(), email) {
			return false
		}
		if mcid := q.Get("merchantCustomerId"); mcid != "" && gjson.GetBytes(doc, "merchantCustomerId").String() != mcid {
			return false
		}
		if status := q.Get("status"); status != "" && gjson.GetBytes(doc, "status").String() != status {
			return false
		}
		return true
	})
	writeJSON(w, http.StatusOK, listEnvelope("customers", page(docs, limit, offset), len(docs), limit, offset))
}

func (s *Server) updateCustomer(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.customers.get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Customer not found: "+id)
		return
	}
	updated := mergeDocs(doc, body)
	updated = set(updated, "id", id)
	updated = set(updated, "createdAt", gjson.GetBytes(doc, "createdAt").String())
	updated = touch(updated)
	s.customers.put(id, updated)
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.mu.Lock()
	ok := s.customers.delete(id)
	delete(s.cards, id)
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Customer not found: "+id)
		return
	}
	writeJSON(w, http.StatusOK, []byte(`{"deleted":true}`))
}

// Payment handlers.

func (s *Server) createPayment(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	if !s.require(w, body, "amount", "currencyCode", "paymentMethod") {
		return
	}
	switch number := gjson.GetBytes(body, "paymentMethod.cardNumber").String(); number {
	case CardDeclined:
		writeError(w, http.StatusBadRequest, "CARD_DECLINED", "Card declined: insufficient funds")
		return
	case CardExpired:
		writeError(w, http.StatusBadRequest, "CARD_EXPIRED", "Card declined: expired card")
		return
	case CardInvalidCVV:
		writeError(w, http.StatusBadRequest, "INVALID_CVV", "Invalid CVV")
		return
	default:
		if number != "" {
			body = set(body, "paymentMethod.cardNumber", payx.MaskCardNumber(number))
		}
	}
	amount := gjson.GetBytes(body, "amount").Int()
	status := "COMPLETED"
	if amount > PendingThreshold {
		status = "PENDING"
	}
	id := newID("pmt")
	doc := set(body, "id", id)
	doc = set(doc, "status", status)
	doc = set(doc, "availableToRefund", amount)
	doc = stamp(doc)
	s.mu.Lock()
	s.payments.put(id, doc)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) getPayment(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.mu.Lock()
	doc, ok := s.payments.get(id)
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Payment not found: "+id)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) listPayments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset := pageParams(r)
	s.mu.Lock()
	docs := s.payments.all()
	s.mu.Unlock()
	docs = filterDocs(docs, func(doc []byte) bool {
		if status := q.Get("status"); status != "" && gjson.GetBytes(doc, "status").String() != status {
			return false
		}
		if cid := q.Get("customerId"); cid != "" && gjson.GetBytes(doc, "customerId").String() != cid {
			return false
		}
		return true
	})
	writeJSON(w, http.StatusOK, listEnvelope("payments", page(docs, limit, offset), len(docs), limit, offset))
}

func (s *Server) cancelPayment(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.payments.get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Payment not found: "+id)
		return
	}
	status := gjson.GetBytes(doc, "status").String()
	if status == "CANCELLED" || status == "SETTLED" {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Payment cannot be cancelled in status "+status)
		return
	}
	doc = set(doc, "status", "CANCELLED")
	doc = set(doc, "availableToRefund", 0)
	doc = touch(doc)
	s.payments.put(id, doc)
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) capturePayment(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.payments.get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Payment not found: "+id)
		return
	}
	status := gjson.GetBytes(doc, "status").String()
	if status != "PENDING" && status != "AUTHORIZED" {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Payment is not awaiting capture")
		return
	}
	amount := gjson.GetBytes(doc, "amount").Int()
	if capture := gjson.GetBytes(body, "amount").Int(); capture > 0 {
		if capture > amount {
			writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Capture amount exceeds authorized amount")
			return
		}
		amount = capture
		doc = set(doc, "amount", amount)
	}
	doc = set(doc, "status", "COMPLETED")
	doc = set(doc, "availableToRefund", amount)
	doc = touch(doc)
	s.payments.put(id, doc)
	writeJSON(w, http.StatusOK, doc)
}

// Card handlers.

func (s *Server) createCard(w http.ResponseWriter, r *http.Request) {
	customerID := r.PathValue("id")
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	if !s.require(w, body, "cardNumber", "cardExpiry") {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.customers.get(customerID); !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Customer not found: "+customerID)
		return
	}
	id := newID("card")
	number := gjson.GetBytes(body, "cardNumber").String()
	doc := set(body, "id", id)
	doc = set(doc, "customerId", customerID)
	doc = set(doc, "status", "ACTIVE")
	doc = cardMeta(doc, number)
	doc = stamp(doc)
	cards := s.cards[customerID]
	if cards == nil {
		cards = newStore()
		s.cards[customerID] = cards
	}
	cards.put(id, doc)
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) getCard(w http.ResponseWriter, r *http.Request) {
	customerID, cardID := r.PathValue("id"), r.PathValue("cardID")
	s.mu.Lock()
	var doc []byte
	ok := false
	if cards := s.cards[customerID]; cards != nil {
		doc, ok = cards.get(cardID)
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Card not found: "+cardID)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) listCards(w http.ResponseWriter, r *http.Request) {
	customerID := r.PathValue("id")
	limit, offset := pageParams(r)
	s.mu.Lock()
	_, exists := s.customers.get(customerID)
	var docs [][]byte
	if cards := s.cards[customerID]; cards != nil {
		docs = cards.all()
	}
	s.mu.Unlock()
	if !exists {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Customer not found: "+customerID)
		return
	}
	if status := r.URL.Query().Get("status"); status != "" {
		docs = filterDocs(docs, func(doc []byte) bool {
			return gjson.GetBytes(doc, "status").String() == status
		})
	}
	writeJSON(w, http.StatusOK, listEnvelope("cards", page(docs, limit, offset), len(docs), limit, offset))
}

func (s *Server) updateCard(w http.ResponseWriter, r *http.Request) {
	customerID, cardID := r.PathValue("id"), r.PathValue("cardID")
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cards := s.cards[customerID]
	if cards == nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Card not found: "+cardID)
		return
	}
	doc, ok := cards.get(cardID)
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Card not found: "+cardID)
		return
	}
	updated := mergeDocs(doc, body)
	if number := gjson.GetBytes(body, "cardNumber").String(); number != "" {
		updated = cardMeta(updated, number)
	}
	updated = set(updated, "id", cardID)
	updated = set(updated, "customerId", customerID)
	updated = set(updated, "createdAt", gjson.GetBytes(doc, "createdAt").String())
	updated = touch(updated)
	cards.put(cardID, updated)
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteCard(w http.ResponseWriter, r *http.Request) {
	customerID, cardID := r.PathValue("id"), r.PathValue("cardID")
	s.mu.Lock()
	ok := false
	if cards := s.cards[customerID]; cards != nil {
		ok = cards.delete(cardID)
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Card not found: "+cardID)
		return
	}
	writeJSON(w, http.StatusOK, []byte(`{"deleted":true}`))
}

// cardMeta masks the card number and fills in the derived card
// fields: BIN, last digits, and detected network.
func cardMeta(doc []byte, number string) []byte {
	doc = set(doc, "cardNumber", payx.MaskCardNumber(number))
	if len(number) >= 4 {
		doc = set(doc, "lastDigits", number[len(number)-4:])
	}
	if len(number) >= 6 {
		doc = set(doc, "cardBin", number[:6])
	}
	return set(doc, "cardType", string(detectCardType(number)))
}

func detectCardType(number string) payx.CardType {
	switch {
	case strings.HasPrefix(number, "34"), strings.HasPrefix(number, "37"):
		return payx.CardTypeAmex
	case strings.HasPrefix(number, "35"):
		return payx.CardTypeJCB
	case strings.HasPrefix(number, "30"), strings.HasPrefix(number, "36"), strings.HasPrefix(number, "38"):
		return payx.CardTypeDiners
	case strings.HasPrefix(number, "4"):
		return payx.CardTypeVisa
	case strings.HasPrefix(number, "5"):
		return payx.CardTypeMastercard
	case strings.HasPrefix(number, "6"):
		return payx.CardTypeDiscover
	default:
		return payx.CardTypeUnknown
	}
}

// Refund handlers.

func (s *Server) createRefund(w http.ResponseWriter, r *http.Request) {
	paymentID := r.PathValue("id")
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	if !s.require(w, body, "amount") {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	payment, ok := s.payments.get(paymentID)
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Payment not found: "+paymentID)
		return
	}
	amount := gjson.GetBytes(body, "amount").Int()
	available := gjson.GetBytes(payment, "availableToRefund").Int()
	if amount > available {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Refund amount exceeds available amount")
		return
	}
	status := "COMPLETED"
	if amount > PendingThreshold {
		status = "PENDING"
	}
	id := newID("rfnd")
	doc := set(body, "id", id)
	doc = set(doc, "paymentId", paymentID)
	doc = set(doc, "status", status)
	if !gjson.GetBytes(body, "currencyCode").Exists() {
		doc = set(doc, "currencyCode", gjson.GetBytes(payment, "currencyCode").String())
	}
	doc = stamp(doc)
	refunds := s.refunds[paymentID]
	if refunds == nil {
		refunds = newStore()
		s.refunds[paymentID] = refunds
	}
	refunds.put(id, doc)
	s.payments.put(paymentID, touch(set(payment, "availableToRefund", available-amount)))
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) getRefund(w http.ResponseWriter, r *http.Request) {
	paymentID, refundID := r.PathValue("id"), r.PathValue("refundID")
	s.mu.Lock()
	var doc []byte
	ok := false
	if refunds := s.refunds[paymentID]; refunds != nil {
		doc, ok = refunds.get(refundID)
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Refund not found: "+refundID)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) listRefunds(w http.ResponseWriter, r *http.Request) {
	paymentID := r.PathValue("id")
	limit, offset := pageParams(r)
	s.mu.Lock()
	_, exists := s.payments.get(paymentID)
	var docs [][]byte
	if refunds := s.refunds[paymentID]; refunds != nil {
		docs = refunds.all()
	}
	s.mu.Unlock()
	if !exists {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Payment not found: "+paymentID)
		return
	}
	if status := r.URL.Query().Get("status"); status != "" {
		docs = filterDocs(docs, func(doc []byte) bool {
			return gjson.GetBytes(doc, "status").String() == status
		})
	}
	writeJSON(w, http.StatusOK, listEnvelope("refunds", page(docs, limit, offset), len(docs), limit, offset))
}

func (s *Server) cancelRefund(w http.ResponseWriter, r *http.Request) {
	paymentID, refundID := r.PathValue("id"), r.PathValue("refundID")
	s.mu.Lock()
	defer s.mu.Unlock()
	refunds := s.refunds[paymentID]
	if refunds == nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Refund not found: "+refundID)
		return
	}
	doc, ok := refunds.get(refundID)
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Refund not found: "+refundID)
		return
	}
	if gjson.GetBytes(doc, "status").String() != "PENDING" {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Only pending refunds can be cancelled")
		return
	}
	doc = set(doc, "status", "CANCELLED")
	doc = touch(doc)
	refunds.put(refundID, doc)
	if payment, ok := s.payments.get(paymentID); ok {
		available := gjson.GetBytes(payment, "availableToRefund").Int()
		amount := gjson.GetBytes(doc, "amount").Int()
		s.payments.put(paymentID, touch(set(payment, "availableToRefund", available+amount)))
	}
	writeJSON(w, http.StatusOK, doc)
}

// Webhook handlers.

func (s *Server) createWebhook(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	if !s.require(w, body, "url", "events") {
		return
	}
	id := newID("whk")
	doc := set(body, "id", id)
	if !gjson.GetBytes(body, "active").Exists() {
		doc = set(doc, "active", true)
	}
	doc = stamp(doc)
	s.mu.Lock()
	s.webhooks.put(id, doc)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) getWebhook(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.mu.Lock()
	doc, ok := s.webhooks.get(id)
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Webhook not found: "+id)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) listWebhooks(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	s.mu.Lock()
	docs := s.webhooks.all()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, listEnvelope("webhooks", page(docs, limit, offset), len(docs), limit, offset))
}

func (s *Server) updateWebhook(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.webhooks.get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Webhook not found: "+id)
		return
	}
	updated := mergeDocs(doc, body)
	updated = set(updated, "id", id)
	updated = set(updated, "createdAt", gjson.GetBytes(doc, "createdAt").String())
	updated = touch(updated)
	s.webhooks.put(id, updated)
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteWebhook(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	s.mu.Lock()
	ok := s.webhooks.delete(id)
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Webhook not found: "+id)
		return
	}
	writeJSON(w, http.StatusOK, []byte(`{"deleted":true}`))
}
