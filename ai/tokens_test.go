// Copyright 2025 The payx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApproxCounter(t *testing.T) {
	c := approxCounter{}
	assert.Equal(t, 0, c.count(""))
	assert.Equal(t, 1, c.count("abcd"))
	assert.Equal(t, 2, c.count("abcde"))
	assert.Equal(t, 3, c.count(strings.Repeat("x", 12)))
}

func TestNewCounter(t *testing.T) {
	// Depending on the environment, this is a real BPE counter or the
	// byte approximation; either way it must count something.
	for _, model := range []string{DefaultModel, "no-such-model"} {
		c := newCounter(model)
		require.NotNil(t, c)
		assert.Positive(t, c.count("hello, world"))
		assert.Zero(t, c.count(""))
	}
}

func TestTrimToBudget(t *testing.T) {
	c := approxCounter{}
	docs := []string{
		strings.Repeat("a", 4),
		strings.Repeat("b", 8),
		strings.Repeat("c", 4),
	}

	assert.Equal(t, docs, trimToBudget(c, docs, 100))
	assert.Equal(t, docs, trimToBudget(c, docs, 4))

	// Budget for three tokens keeps only the two newest documents.
	assert.Equal(t, docs[1:], trimToBudget(c, docs, 3))
	assert.Equal(t, docs[2:], trimToBudget(c, docs, 1))
	assert.Empty(t, trimToBudget(c, docs, 0))
	assert.Empty(t, trimToBudget(c, nil, 100))
}

func TestRenderHistory(t *testing.T) {
	type record struct {
		N int `json:"n"`
	}
	c := approxCounter{}

	assert.Equal(t, "(none)", renderHistory(c, []record{}, 100))
	assert.Equal(t, "(none)", renderHistory[record](c, nil, 100))

	out := renderHistory(c, []record{{N: 1}, {N: 2}}, 100)
	assert.Equal(t, "{\"n\":1}\n{\"n\":2}", out)

	// A budget for one document keeps the newest.
	out = renderHistory(c, []record{{N: 1}, {N: 2}}, 2)
	assert.Equal(t, `{"n":2}`, out)

	// Records that cannot be marshalled are skipped.
	out = renderHistory(c, []any{1, make(chan int), 3}, 100)
	assert.Equal(t, "1\n3", out)
}
