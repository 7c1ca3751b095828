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

package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/teradata-labs/vizflow/internal/log"
	"github.com/teradata-labs/vizflow/pkg/llm"
	"github.com/teradata-labs/vizflow/pkg/llm/factory"
	"github.com/teradata-labs/vizflow/pkg/pipeline"
)

// buildPipeline assembles the provider and chain from flags and env.
func buildPipeline() (*pipeline.Pipeline, error) {
	fcfg, err := providerConfig()
	if err != nil {
		return nil, err
	}
	p, err := factory.New(fcfg)
	if err != nil {
		return nil, err
	}
	return pipeline.New(pipelineConfig(p))
}

// providerConfig resolves the provider selection, credentials, call
// timeout, and pacing from flags and env.
func providerConfig() (factory.Config, error) {
	provider := strings.ToLower(viper.GetString("provider"))
	apiKey := viper.GetString("api-key")
	if apiKey == "" {
		apiKey = providerKeyFromEnv(provider)
	}
	if apiKey == "" {
		return factory.Config{}, fmt.Errorf("no API key: pass --api-key or set %s", keyEnvName(provider))
	}

	pacer := llm.PacerConfig{}
	if viper.GetBool("pace") {
		pacer = llm.DefaultPacerConfig()
		pacer.Logger = log.Logger()
	}

	return factory.Config{
		Provider: provider,
		APIKey:   apiKey,
		Model:    viper.GetString("model"),
		Timeout:  time.Duration(viper.GetInt("timeout")) * time.Second,
		Pacer:    pacer,
	}, nil
}

// pipelineConfig maps the chain flags onto the orchestrator config. The
// orchestrator reads MaxRetries 0 as "use the default", so an explicit
// --max-retries=0 is passed through as a negative value.
func pipelineConfig(p llm.Provider) pipeline.Config {
	retries := viper.GetInt("max-retries")
	if retries <= 0 {
		retries = -1
	}
	return pipeline.Config{
		Provider:    p,
		MaxRetries:  retries,
		Temperature: viper.GetFloat64("temperature"),
		MaxTokens:   viper.GetInt("max-tokens"),
		Logger:      log.Logger(),
	}
}

// providerKeyFromEnv falls back to the conventional per-provider
// variable names so existing shells keep working.
func providerKeyFromEnv(provider string) string {
	if key := os.Getenv(keyEnvName(provider)); key != "" {
		return key
	}
	return os.Getenv("VIZFLOW_API_KEY")
}

func keyEnvName(provider string) string {
	switch provider {
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	case "openai":
		return "OPENAI_API_KEY"
	default:
		return "GEMINI_API_KEY"
	}
}
