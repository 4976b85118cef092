// Copyright 2025 The payx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package ai

import (
	"errors"
	"log/slog"
	"os"
	"strings"
)

// Defaults applied by Config for fields left zero.
const (
	DefaultModel       = "gpt-4o"
	DefaultTemperature = 0.2
	DefaultMaxTokens   = 1000
)

// ErrUnavailable is returned by the agent constructors when no OpenAI
// API key is configured, in Config.APIKey or the OPENAI_API_KEY
// environment variable.
var ErrUnavailable = errors.New("ai: not configured: set OPENAI_API_KEY or Config.APIKey")

// Config configures an agent. The zero value works whenever the
// OPENAI_API_KEY environment variable is set.
type Config struct {
	// APIKey authenticates with the OpenAI API. When empty, the
	// OPENAI_API_KEY environment variable is consulted.
	APIKey string
	// Model names the chat completion model. Empty means DefaultModel.
	Model string
	// Temperature controls sampling randomness. Zero means
	// DefaultTemperature; the insight prompts want the model nearly
	// deterministic.
	Temperature float64
	// MaxTokens caps the completion length. Zero means
	// DefaultMaxTokens; negative means no cap.
	MaxTokens int64
	// Logger receives a debug record per model round trip. A nil
	// Logger means slog.Default().
	Logger *slog.Logger
	// Chat overrides the completion client. When nil, a client backed
	// by the OpenAI API and APIKey is used. Tests substitute a fake
	// here.
	Chat ChatClient
}

func (cfg Config) withDefaults() Config {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}
	return cfg
}

func (cfg Config) chat() (ChatClient, error) {
	if cfg.Chat != nil {
		return cfg.Chat, nil
	}
	key := cfg.APIKey
	if key == "" {
		key = os.Getenv("OPENAI_API_KEY")
	}
	if strings.TrimSpace(key) == "" {
		return nil, ErrUnavailable
	}
	return newOpenAIChat(key, cfg.withDefaults()), nil
}

func (cfg Config) logger() *slog.Logger {
	if cfg.Logger == nil {
		return slog.Default()
	}
	return cfg.Logger
}
