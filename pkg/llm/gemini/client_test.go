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
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teradata-labs/vizflow/pkg/llm"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return NewClient(Config{
		APIKey:   "test-key",
		Endpoint: ts.URL,
	})
}

func TestComplete(t *testing.T) {
	var captured GenerateContentRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "models/"+DefaultModel)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		resp := GenerateContentResponse{
			Candidates: []Candidate{{
				Content:      Content{Parts: []Part{{Text: `{"relevant_columns": ["a"]}`}}},
				FinishReason: "STOP",
			}},
			UsageMetadata: UsageMetadata{
				PromptTokenCount:     120,
				CandidatesTokenCount: 30,
				TotalTokenCount:      150,
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	})

	resp, err := client.Complete(context.Background(), &llm.Request{
		System:      "Respond with JSON only.",
		Prompt:      "Pick the relevant columns.",
		Temperature: 0.2,
		MaxTokens:   1024,
	})
	require.NoError(t, err)

	assert.Equal(t, `{"relevant_columns": ["a"]}`, resp.Text)
	assert.Equal(t, "end_turn", resp.StopReason)
	assert.Equal(t, 150, resp.Usage.TotalTokens)

	require.Len(t, captured.Contents, 1)
	assert.Equal(t, "user", captured.Contents[0].Role)
	assert.Equal(t, "Pick the relevant columns.", captured.Contents[0].Parts[0].Text)
	require.NotNil(t, captured.SystemInstruction)
	assert.Equal(t, "Respond with JSON only.", captured.SystemInstruction.Parts[0].Text)
	assert.Equal(t, 1024, captured.GenerationConfig.MaxOutputTokens)
}

func TestCompleteAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": {"code": 403, "message": "API key not valid"}}`))
	})

	_, err := client.Complete(context.Background(), &llm.Request{Prompt: "hi"})
	require.Error(t, err)
	require.True(t, llm.IsNetworkError(err))

	var ne *llm.NetworkError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, http.StatusForbidden, ne.StatusCode)
	assert.Equal(t, "gemini", ne.Provider)
}

func TestCompleteRetriesThrottling(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error": {"code": 429, "message": "quota exceeded"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(GenerateContentResponse{
			Candidates: []Candidate{{
				Content:      Content{Parts: []Part{{Text: "ok"}}},
				FinishReason: "STOP",
			}},
		})
	}))
	t.Cleanup(ts.Close)

	client := NewClient(Config{
		APIKey:   "test-key",
		Endpoint: ts.URL,
		PacerConfig: llm.PacerConfig{
			Enabled:      true,
			MinDelay:     1,
			MaxRetries:   2,
			RetryBackoff: 1,
		},
	})

	resp, err := client.Complete(context.Background(), &llm.Request{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Text)
	assert.Equal(t, 2, calls)
}

func TestCompleteMaxTokensFinish(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(GenerateContentResponse{
			Candidates: []Candidate{{
				Content:      Content{Parts: []Part{{Text: "truncat"}}},
				FinishReason: "MAX_TOKENS",
			}},
		})
	})

	resp, err := client.Complete(context.Background(), &llm.Request{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "max_tokens", resp.StopReason)
}
