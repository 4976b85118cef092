// Copyright 2025 The payx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package payx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvents(t *testing.T) {
	assert.Len(t, eventNames, numEvents)
	assert.Len(t, Events(), numEvents)
	events := Events()
	assert.Equal(t, BeforeCall, events[BeforeCall])
	assert.Equal(t, BeforeAttempt, events[BeforeAttempt])
	assert.Equal(t, AfterAttempt, events[AfterAttempt])
	assert.Equal(t, BeforeRetryWait, events[BeforeRetryWait])
	assert.Equal(t, AfterCall, events[AfterCall])
}

func TestEvent_Name(t *testing.T) {
	assert.Equal(t, "BeforeCall", BeforeCall.Name())
	assert.Equal(t, "BeforeAttempt", BeforeAttempt.Name())
	assert.Equal(t, "AfterAttempt", AfterAttempt.Name())
	assert.Equal(t, "BeforeRetryWait", BeforeRetryWait.Name())
	assert.Equal(t, "AfterCall", AfterCall.Name())
	assert.Panics(t, func() { Event(99).Name() })
}

func TestEvent_String(t *testing.T) {
	assert.Equal(t, "BeforeRetryWait", BeforeRetryWait.String())
}
