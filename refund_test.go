// Copyright 2025 The payx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package payx

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefundService_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := &fakeCaller{resp: `{"id":"rfnd_1","paymentId":"pmt_1","amount":500,"status":"COMPLETED"}`}
		s := NewRefundService(f)

		r, err := s.Create(context.Background(), "pmt_1", &RefundCreateParams{
			Amount:       500,
			CurrencyCode: "usd",
			Reason:       "requested by customer",
		})

		require.NoError(t, err)
		assert.Equal(t, "rfnd_1", r.ID)
		assert.Equal(t, RefundStatusCompleted, r.Status)
		assert.Equal(t, http.MethodPost, f.method)
		assert.Equal(t, "/payments/pmt_1/refunds", f.path)
		assert.Equal(t, "USD", f.body.(*RefundCreateParams).CurrencyCode)
	})
	t.Run("currency optional", func(t *testing.T) {
		f := &fakeCaller{resp: `{"id":"rfnd_1"}`}
		s := NewRefundService(f)

		_, err := s.Create(context.Background(), "pmt_1", &RefundCreateParams{Amount: 500})

		require.NoError(t, err)
		assert.Empty(t, f.body.(*RefundCreateParams).CurrencyCode)
	})
	t.Run("validation", func(t *testing.T) {
		f := &fakeCaller{}
		s := NewRefundService(f)

		_, err := s.Create(context.Background(), "", &RefundCreateParams{Amount: 500})
		assert.Error(t, err)
		_, err = s.Create(context.Background(), "pmt_1", nil)
		assert.Error(t, err)
		_, err = s.Create(context.Background(), "pmt_1", &RefundCreateParams{})
		assert.Error(t, err)
		_, err = s.Create(context.Background(), "pmt_1", &RefundCreateParams{Amount: 500, CurrencyCode: "x"})
		assert.Error(t, err)
		assert.Zero(t, f.calls)
	})
}

func TestRefundService_Retrieve(t *testing.T) {
	f := &fakeCaller{resp: `{"id":"rfnd_1","amount":500}`}
	s := NewRefundService(f)

	r, err := s.Retrieve(context.Background(), "pmt_1", "rfnd_1")

	require.NoError(t, err)
	assert.EqualValues(t, 500, r.Amount)
	assert.Equal(t, "/payments/pmt_1/refunds/rfnd_1", f.path)

	_, err = s.Retrieve(context.Background(), "pmt_1", "")
	assert.Error(t, err)
}

func TestRefundService_List(t *testing.T) {
	f := &fakeCaller{resp: `{"refunds":[{"id":"rfnd_1"}],"pagination":{"totalItems":1,"limit":10,"offset":0}}`}
	s := NewRefundService(f)

	list, err := s.List(context.Background(), "pmt_1", &RefundListParams{Status: RefundStatusPending, Limit: 5})

	require.NoError(t, err)
	assert.Len(t, list.Refunds, 1)
	assert.Equal(t, "/payments/pmt_1/refunds", f.path)
	assert.Equal(t, "PENDING", f.query.Get("status"))
	assert.Equal(t, "5", f.query.Get("limit"))
}

func TestRefundService_Cancel(t *testing.T) {
	f := &fakeCaller{resp: `{"id":"rfnd_1","status":"CANCELLED"}`}
	s := NewRefundService(f)

	r, err := s.Cancel(context.Background(), "pmt_1", "rfnd_1")

	require.NoError(t, err)
	assert.Equal(t, RefundStatusCancelled, r.Status)
	assert.Equal(t, http.MethodPost, f.method)
	assert.Equal(t, "/payments/pmt_1/refunds/rfnd_1/cancel", f.path)
}
