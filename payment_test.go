// Copyright 2025 The payx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package payx

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentService_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := &fakeCaller{resp: `{"id":"pmt_1","amount":1000,"currencyCode":"USD","status":"COMPLETED","availableToRefund":1000}`}
		s := NewPaymentService(f)

		p, err := s.Create(context.Background(), &PaymentCreateParams{
			Amount:        1000,
			CurrencyCode:  "usd",
			PaymentMethod: CardPayment("4111111111111111", CardExpiry{Month: 12, Year: 25}),
		})

		require.NoError(t, err)
		assert.Equal(t, "pmt_1", p.ID)
		assert.Equal(t, PaymentStatusCompleted, p.Status)
		assert.Equal(t, http.MethodPost, f.method)
		assert.Equal(t, "/payments", f.path)
		body := f.body.(*PaymentCreateParams)
		assert.Equal(t, "USD", body.CurrencyCode)
		assert.Equal(t, MethodCard, body.PaymentMethod.Type)
	})
	t.Run("generated idempotency key", func(t *testing.T) {
		f := &fakeCaller{resp: `{"id":"pmt_1"}`}
		s := NewPaymentService(f)

		_, err := s.Create(context.Background(), &PaymentCreateParams{
			Amount:        1000,
			CurrencyCode:  "USD",
			PaymentMethod: StoredCardPayment("card_1"),
		})

		require.NoError(t, err)
		assert.Len(t, f.header.Get("Idempotency-Key"), 36)
	})
	t.Run("explicit idempotency key", func(t *testing.T) {
		f := &fakeCaller{resp: `{"id":"pmt_1"}`}
		s := NewPaymentService(f)

		_, err := s.Create(context.Background(), &PaymentCreateParams{
			Amount:         1000,
			CurrencyCode:   "USD",
			PaymentMethod:  StoredCardPayment("card_1"),
			IdempotencyKey: "my-key",
		})

		require.NoError(t, err)
		assert.Equal(t, "my-key", f.header.Get("Idempotency-Key"))
	})
	t.Run("validation", func(t *testing.T) {
		f := &fakeCaller{}
		s := NewPaymentService(f)
		method := StoredCardPayment("card_1")

		testCases := []struct {
			name   string
			params *PaymentCreateParams
		}{
			{"nil params", nil},
			{"zero amount", &PaymentCreateParams{CurrencyCode: "USD", PaymentMethod: method}},
			{"negative amount", &PaymentCreateParams{Amount: -5, CurrencyCode: "USD", PaymentMethod: method}},
			{"bad currency", &PaymentCreateParams{Amount: 1, CurrencyCode: "dollars", PaymentMethod: method}},
			{"numeric currency", &PaymentCreateParams{Amount: 1, CurrencyCode: "U5D", PaymentMethod: method}},
			{"no method", &PaymentCreateParams{Amount: 1, CurrencyCode: "USD"}},
		}
		for _, testCase := range testCases {
			t.Run(testCase.name, func(t *testing.T) {
				_, err := s.Create(context.Background(), testCase.params)
				var apiErr *Error
				require.ErrorAs(t, err, &apiErr)
				assert.Zero(t, apiErr.StatusCode)
			})
		}
		assert.Zero(t, f.calls)
	})
}

func TestPaymentService_Retrieve(t *testing.T) {
	f := &fakeCaller{resp: `{"id":"pmt_1","status":"PENDING"}`}
	s := NewPaymentService(f)

	p, err := s.Retrieve(context.Background(), "pmt_1")

	require.NoError(t, err)
	assert.Equal(t, PaymentStatusPending, p.Status)
	assert.Equal(t, http.MethodGet, f.method)
	assert.Equal(t, "/payments/pmt_1", f.path)

	_, err = s.Retrieve(context.Background(), " ")
	assert.Error(t, err)
}

func TestPaymentService_List(t *testing.T) {
	t.Run("nil params", func(t *testing.T) {
		f := &fakeCaller{resp: `{"payments":[{"id":"pmt_1"}],"pagination":{"totalItems":1,"limit":10,"offset":0}}`}
		s := NewPaymentService(f)

		list, err := s.List(context.Background(), nil)

		require.NoError(t, err)
		assert.Len(t, list.Payments, 1)
		assert.Equal(t, 1, list.Pagination.TotalItems)
		assert.Empty(t, f.query)
	})
	t.Run("filters", func(t *testing.T) {
		f := &fakeCaller{resp: `{"payments":[],"pagination":{}}`}
		s := NewPaymentService(f)
		from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

		_, err := s.List(context.Background(), &PaymentListParams{
			Limit:      25,
			Offset:     50,
			CustomerID: "cust_1",
			Status:     PaymentStatusCompleted,
			FromDate:   from,
		})

		require.NoError(t, err)
		assert.Equal(t, "25", f.query.Get("limit"))
		assert.Equal(t, "50", f.query.Get("offset"))
		assert.Equal(t, "cust_1", f.query.Get("customerId"))
		assert.Equal(t, "COMPLETED", f.query.Get("status"))
		assert.Equal(t, "2025-06-01T00:00:00Z", f.query.Get("fromDate"))
		assert.Empty(t, f.query.Get("toDate"))
	})
}

func TestPaymentService_Cancel(t *testing.T) {
	f := &fakeCaller{resp: `{"id":"pmt_1","status":"CANCELLED"}`}
	s := NewPaymentService(f)

	p, err := s.Cancel(context.Background(), "pmt_1")

	require.NoError(t, err)
	assert.Equal(t, PaymentStatusCancelled, p.Status)
	assert.Equal(t, http.MethodPost, f.method)
	assert.Equal(t, "/payments/pmt_1/cancel", f.path)
}

func TestPaymentService_Capture(t *testing.T) {
	t.Run("full", func(t *testing.T) {
		f := &fakeCaller{resp: `{"id":"pmt_1","status":"COMPLETED"}`}
		s := NewPaymentService(f)

		p, err := s.Capture(context.Background(), "pmt_1", nil)

		require.NoError(t, err)
		assert.Equal(t, PaymentStatusCompleted, p.Status)
		assert.Equal(t, "/payments/pmt_1/capture", f.path)
		assert.Nil(t, f.body)
	})
	t.Run("partial", func(t *testing.T) {
		f := &fakeCaller{resp: `{"id":"pmt_1"}`}
		s := NewPaymentService(f)

		_, err := s.Capture(context.Background(), "pmt_1", &PaymentCaptureParams{Amount: 500})

		require.NoError(t, err)
		require.IsType(t, &PaymentCaptureParams{}, f.body)
		assert.EqualValues(t, 500, f.body.(*PaymentCaptureParams).Amount)
	})
	t.Run("negative amount", func(t *testing.T) {
		f := &fakeCaller{}
		s := NewPaymentService(f)

		_, err := s.Capture(context.Background(), "pmt_1", &PaymentCaptureParams{Amount: -1})

		assert.Error(t, err)
		assert.Zero(t, f.calls)
	})
}

func TestCardPayment(t *testing.T) {
	m := CardPayment("4111111111111111", CardExpiry{Month: 12, Year: 2025})
	assert.Equal(t, MethodCard, m.Type)
	assert.Equal(t, "4111111111111111", m.CardNumber)
	require.NotNil(t, m.CardExpiry)
	assert.Equal(t, 2025, m.CardExpiry.Year)

	stored := StoredCardPayment("card_1")
	assert.Equal(t, MethodCard, stored.Type)
	assert.Equal(t, "card_1", stored.CardID)
	assert.Nil(t, stored.CardExpiry)
}
