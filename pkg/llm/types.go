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

// Package llm defines the provider abstraction for hosted text-generation
// APIs. Concrete clients live in the per-provider subpackages (gemini,
// anthropic, openai); callers construct one through pkg/llm/factory.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// Request is a single completion request. The prompt chain is text-in,
// text-out: no tool use, no multi-turn state.
type Request struct {
	// System is an optional system instruction prepended by providers
	// that support a distinct system role.
	System string

	// Prompt is the user prompt text.
	Prompt string

	// Temperature controls sampling randomness (provider default if 0).
	Temperature float64

	// MaxTokens caps the response length (provider default if 0).
	MaxTokens int
}

// Usage tracks token consumption for a single call.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Add accumulates usage from another call.
func (u *Usage) Add(other Usage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.TotalTokens += other.TotalTokens
}

// Response is the provider's reply to a Request.
type Response struct {
	// Text is the raw model output. Callers parse structure out of it.
	Text string

	// StopReason indicates why generation stopped (end_turn, max_tokens,
	// content_filter, or a provider-specific value).
	StopReason string

	// Usage tracks token consumption.
	Usage Usage
}

// Provider is the interface implemented by all LLM backends.
type Provider interface {
	// Complete sends a prompt and returns the model's text response.
	Complete(ctx context.Context, req *Request) (*Response, error)

	// Name returns the provider name (gemini, anthropic, openai).
	Name() string

	// Model returns the model identifier.
	Model() string
}

// NetworkError wraps transport-level failures: timeouts, connection
// errors, and non-2xx API status codes. Parse failures of well-received
// responses are NOT network errors; those belong to pkg/pipeline.
type NetworkError struct {
	Provider   string
	StatusCode int // 0 when the request never completed
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s API error (status %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsNetworkError reports whether err is (or wraps) a NetworkError.
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}
