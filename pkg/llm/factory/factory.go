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

// Package factory constructs LLM providers from configuration.
package factory

import (
	"fmt"
	"time"

	"github.com/teradata-labs/vizflow/pkg/llm"
	"github.com/teradata-labs/vizflow/pkg/llm/anthropic"
	"github.com/teradata-labs/vizflow/pkg/llm/gemini"
	"github.com/teradata-labs/vizflow/pkg/llm/openai"
)

// Config selects and configures a provider.
type Config struct {
	// Provider is one of: gemini, anthropic, openai.
	Provider string

	// APIKey is the credential for the selected provider.
	APIKey string

	// Model overrides the provider's default model.
	Model string

	// Timeout bounds each LLM call.
	Timeout time.Duration

	// Pacer configures request pacing (zero value = pacing disabled).
	Pacer llm.PacerConfig
}

// New creates an LLM provider from config.
func New(cfg Config) (llm.Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("provider %q requires an API key", cfg.Provider)
	}

	switch cfg.Provider {
	case "gemini", "":
		return gemini.NewClient(gemini.Config{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			Timeout:     cfg.Timeout,
			PacerConfig: cfg.Pacer,
		}), nil

	case "anthropic":
		return anthropic.NewClient(anthropic.Config{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			Timeout:     cfg.Timeout,
			PacerConfig: cfg.Pacer,
		}), nil

	case "openai":
		return openai.NewClient(openai.Config{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			PacerConfig: cfg.Pacer,
		}), nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %q (supported: gemini, anthropic, openai)", cfg.Provider)
	}
}
