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
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/teradata-labs/vizflow/pkg/llm"
)

const (
	// DefaultModel is the default Gemini model.
	DefaultModel = "gemini-2.5-flash"
	// DefaultEndpoint is the Generative Language API base URL.
	DefaultEndpoint = "https://generativelanguage.googleapis.com/v1beta"
	// DefaultMaxTokens is the default response cap.
	DefaultMaxTokens = 8192
	// DefaultTimeout is the default per-call HTTP timeout.
	DefaultTimeout = 60 * time.Second
)

// Client implements the llm.Provider interface for Google Gemini.
type Client struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
	pacer      *llm.Pacer
}

// Config holds configuration for the Gemini client.
type Config struct {
	// Required: Gemini API key from https://aistudio.google.com/
	APIKey string

	// Model to use (default: gemini-2.5-flash).
	Model string

	// Endpoint overrides the API base URL (tests).
	Endpoint string

	// Timeout bounds each HTTP call (default: 60s).
	Timeout time.Duration

	// PacerConfig configures request pacing.
	PacerConfig llm.PacerConfig
}

// NewClient creates a new Google Gemini client.
func NewClient(config Config) *Client {
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.Endpoint == "" {
		config.Endpoint = DefaultEndpoint
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}

	return &Client{
		apiKey:   config.APIKey,
		model:    config.Model,
		endpoint: config.Endpoint,
		pacer:    llm.NewPacer(config.PacerConfig),
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return "gemini"
}

// Model returns the model identifier.
func (c *Client) Model() string {
	return c.model
}

// Complete sends a prompt to Gemini and returns the text response.
func (c *Client) Complete(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	body := &GenerateContentRequest{
		Contents: []Content{
			{
				Role:  "user",
				Parts: []Part{{Text: req.Prompt}},
			},
		},
		GenerationConfig: GenerationConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: maxTokensOrDefault(req.MaxTokens),
		},
	}
	if req.System != "" {
		body.SystemInstruction = &Content{
			Parts: []Part{{Text: req.System}},
		}
	}

	return c.pacer.Do(ctx, func(ctx context.Context) (*llm.Response, error) {
		resp, err := c.callAPI(ctx, body)
		if err != nil {
			return nil, err
		}
		return c.convertResponse(resp), nil
	})
}

// callAPI makes the HTTP request to the generateContent endpoint.
func (c *Client) callAPI(ctx context.Context, req *GenerateContentRequest) (*GenerateContentResponse, error) {
	apiURL := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.endpoint, c.model, c.apiKey)

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &llm.NetworkError{Provider: "gemini", Err: err}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &llm.NetworkError{Provider: "gemini", Err: err}
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, &llm.NetworkError{
			Provider:   "gemini",
			StatusCode: httpResp.StatusCode,
			Err:        fmt.Errorf("%s", string(respBody)),
		}
	}

	var resp GenerateContentResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if resp.Error != nil {
		return nil, &llm.NetworkError{
			Provider:   "gemini",
			StatusCode: resp.Error.Code,
			Err:        fmt.Errorf("%s", resp.Error.Message),
		}
	}

	return &resp, nil
}

// convertResponse maps the Gemini payload to the provider-neutral form.
func (c *Client) convertResponse(resp *GenerateContentResponse) *llm.Response {
	out := &llm.Response{
		Usage: llm.Usage{
			InputTokens:  resp.UsageMetadata.PromptTokenCount,
			OutputTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:  resp.UsageMetadata.TotalTokenCount,
		},
	}

	if len(resp.Candidates) > 0 {
		candidate := resp.Candidates[0]

		switch candidate.FinishReason {
		case "STOP":
			out.StopReason = "end_turn"
		case "MAX_TOKENS":
			out.StopReason = "max_tokens"
		case "SAFETY", "RECITATION":
			out.StopReason = "content_filter"
		default:
			out.StopReason = candidate.FinishReason
		}

		for _, part := range candidate.Content.Parts {
			out.Text += part.Text
		}
	}

	return out
}

func maxTokensOrDefault(n int) int {
	if n == 0 {
		return DefaultMaxTokens
	}
	return n
}

// Ensure Client implements the Provider interface.
var _ llm.Provider = (*Client)(nil)
