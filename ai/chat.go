// Copyright 2025 The payx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// A Request is one chat completion round trip. System sets the model's
// role, User carries the data under analysis, and JSON asks the model
// for a JSON object response.
type Request struct {
	System string
	User   string
	JSON   bool
}

// ChatClient issues chat completion requests. The production
// implementation speaks to the OpenAI API; tests substitute a fake
// through Config.Chat.
type ChatClient interface {
	Complete(ctx context.Context, req Request) (string, error)
}

type openAIChat struct {
	client openai.Client
	cfg    Config
}

func newOpenAIChat(key string, cfg Config) *openAIChat {
	return &openAIChat{
		client: openai.NewClient(option.WithAPIKey(key)),
		cfg:    cfg,
	}
}

func (c *openAIChat) Complete(ctx context.Context, req Request) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.cfg.Model),
		Temperature: openai.Float(c.cfg.Temperature),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.User),
		},
	}
	if c.cfg.MaxTokens > 0 {
		params.MaxTokens = openai.Int(c.cfg.MaxTokens)
	}
	if req.JSON {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		}
	}
	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("ai: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("ai: chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// completeJSON runs one completion in JSON mode and unmarshals the
// response into v.
func completeJSON(ctx context.Context, chat ChatClient, system, user string, v any) error {
	out, err := chat.Complete(ctx, Request{System: system, User: user, JSON: true})
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(out), v); err != nil {
		return fmt.Errorf("ai: model response is not valid JSON: %w", err)
	}
	return nil
}
