// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package openai

import (
	"context"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/teradata-labs/vizflow/pkg/llm"
)

const (
	// DefaultModel is the default OpenAI model.
	DefaultModel = "gpt-4o-mini"
	// DefaultMaxTokens is the default response cap.
	DefaultMaxTokens = 4096
)

// Client implements the llm.Provider interface for OpenAI's chat API
// via the sashabaranov/go-openai SDK.
type Client struct {
	client *goopenai.Client
	model  string
	pacer  *llm.Pacer
}

// Config holds configuration for the OpenAI client.
type Config struct {
	APIKey      string
	Model       string // Default: gpt-4o-mini
	BaseURL     string // Optional override for compatible endpoints
	PacerConfig llm.PacerConfig
}

// NewClient creates a new OpenAI client.
func NewClient(config Config) *Client {
	if config.Model == "" {
		config.Model = DefaultModel
	}

	cfg := goopenai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		cfg.BaseURL = config.BaseURL
	}

	return &Client{
		client: goopenai.NewClientWithConfig(cfg),
		model:  config.Model,
		pacer:  llm.NewPacer(config.PacerConfig),
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return "openai"
}

// Model returns the model identifier.
func (c *Client) Model() string {
	return c.model
}

// Complete sends a prompt to OpenAI and returns the text response.
func (c *Client) Complete(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = DefaultMaxTokens
	}

	var messages []goopenai.ChatCompletionMessage
	if req.System != "" {
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    goopenai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, goopenai.ChatCompletionMessage{
		Role:    goopenai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	chatReq := goopenai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: float32(req.Temperature),
	}
	// Reasoning models (o1/o3/o4/gpt-5*) take MaxCompletionTokens instead of MaxTokens.
	if isReasoningModel(c.model) {
		chatReq.MaxCompletionTokens = maxTokens
	} else {
		chatReq.MaxTokens = maxTokens
	}

	return c.pacer.Do(ctx, func(ctx context.Context) (*llm.Response, error) {
		resp, err := c.client.CreateChatCompletion(ctx, chatReq)
		if err != nil {
			if apiErr, ok := err.(*goopenai.APIError); ok {
				return nil, &llm.NetworkError{
					Provider:   "openai",
					StatusCode: apiErr.HTTPStatusCode,
					Err:        err,
				}
			}
			return nil, &llm.NetworkError{Provider: "openai", Err: err}
		}
		if len(resp.Choices) == 0 {
			return nil, &llm.NetworkError{Provider: "openai", Err: errNoChoices}
		}

		choice := resp.Choices[0]
		return &llm.Response{
			Text:       choice.Message.Content,
			StopReason: string(choice.FinishReason),
			Usage: llm.Usage{
				InputTokens:  resp.Usage.PromptTokens,
				OutputTokens: resp.Usage.CompletionTokens,
				TotalTokens:  resp.Usage.TotalTokens,
			},
		}, nil
	})
}

func isReasoningModel(model string) bool {
	return strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") ||
		strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5")
}

var errNoChoices = &emptyResponseError{}

type emptyResponseError struct{}

func (*emptyResponseError) Error() string { return "response contained no choices" }

// Ensure Client implements the Provider interface.
var _ llm.Provider = (*Client)(nil)
