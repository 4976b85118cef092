// Copyright 2025 The payx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package ai

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_WithDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	assert.Equal(t, DefaultModel, cfg.Model)
	assert.Equal(t, DefaultTemperature, cfg.Temperature)
	assert.Equal(t, int64(DefaultMaxTokens), cfg.MaxTokens)

	cfg = Config{Model: "gpt-4o-mini", Temperature: 0.7, MaxTokens: -1}.withDefaults()
	assert.Equal(t, "gpt-4o-mini", cfg.Model)
	assert.Equal(t, 0.7, cfg.Temperature)
	assert.Equal(t, int64(-1), cfg.MaxTokens)
}

func TestConfig_Chat(t *testing.T) {
	t.Run("Override", func(t *testing.T) {
		f := &fakeChat{}
		chat, err := Config{Chat: f}.chat()
		require.NoError(t, err)
		assert.Same(t, f, chat)
	})

	t.Run("NoKey", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")
		_, err := Config{}.chat()
		assert.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("BlankKey", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")
		_, err := Config{APIKey: "   "}.chat()
		assert.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("ConfigKey", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")
		chat, err := Config{APIKey: "sk-test"}.chat()
		require.NoError(t, err)
		assert.IsType(t, &openAIChat{}, chat)
	})

	t.Run("EnvKey", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "sk-env")
		chat, err := Config{}.chat()
		require.NoError(t, err)
		assert.IsType(t, &openAIChat{}, chat)
	})
}

func TestConfig_Logger(t *testing.T) {
	assert.Same(t, slog.Default(), Config{}.logger())
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	assert.Same(t, quiet, Config{Logger: quiet}.logger())
}
