// Copyright 2025 The payx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package payx_test

import (
	"context"
	"fmt"

	"github.com/gogama/payx"
	"github.com/gogama/payx/sandbox"
)

func ExampleClient() {
	srv := &sandbox.Server{APIKey: "sk_test_example"}
	client := srv.Client()

	payment, err := client.Payments().Create(context.Background(), &payx.PaymentCreateParams{
		Amount:        2500,
		CurrencyCode:  "USD",
		PaymentMethod: payx.CardPayment(sandbox.CardApproved, payx.CardExpiry{Month: 12, Year: 27}),
	})
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(payment.Status, payment.Amount)
	// Output: COMPLETED 2500
}

func ExampleMaskCardNumber() {
	fmt.Println(payx.MaskCardNumber("4111111111111111"))
	fmt.Println(payx.MaskCardNumber("371449635398431"))
	// Output:
	// ************1111
	// ***********8431
}

func ExampleParseWebhookPayload() {
	body := []byte(`{"id":"evt_42","event":"payment.completed","data":{"paymentId":"pmt_1"}}`)
	payload, err := payx.ParseWebhookPayload(body)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(payload.Event, payload.Data["paymentId"])
	// Output: payment.completed pmt_1
}
