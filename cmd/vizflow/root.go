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
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/teradata-labs/vizflow/internal/log"
	"github.com/teradata-labs/vizflow/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "vizflow",
	Short: "LLM-assisted chart recommendations for tabular data",
	Long: `vizflow analyzes a CSV or Excel dataset against a natural-language
question using a three-step LLM chain (relevant columns, chart types,
chart specs) and renders the recommended charts as SVG and PNG.

Credentials come from flags, VIZFLOW_* environment variables, or a
.env file in the working directory.`,
	Version:       version.Get(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Missing .env is fine; explicit env vars still apply.
		_ = godotenv.Load()
		if err := viper.BindPFlags(cmd.Flags()); err != nil {
			return err
		}
		return log.Setup(viper.GetString("log-level"), viper.GetString("log-format"))
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("provider", "gemini", "LLM provider (gemini, anthropic, openai)")
	pf.String("api-key", "", "API key for the selected provider")
	pf.String("model", "", "model override (provider default if empty)")
	pf.Float64("temperature", 0.2, "sampling temperature for chain calls")
	pf.Int("max-tokens", 4096, "max tokens per model response")
	pf.Int("timeout", 60, "per-call provider timeout in seconds")
	pf.Int("max-retries", 1, "corrective re-prompts per chain step (0 disables)")
	pf.Bool("pace", true, "pace provider calls for free-tier rate limits")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("log-format", "text", "log format (text, json)")

	viper.SetEnvPrefix("VIZFLOW")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(serveCmd)
}
