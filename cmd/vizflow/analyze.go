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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/teradata-labs/vizflow/internal/log"
	"github.com/teradata-labs/vizflow/pkg/dataset"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <dataset.csv|xlsx> <question>",
	Short: "Run one analysis and write the charts to disk",
	Example: `  vizflow analyze sales.csv "How does revenue vary by region?"
  vizflow analyze sales.xlsx "Which products sell best?" --out ./charts --format svg`,
	Args: cobra.ExactArgs(2),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().String("out", ".", "output directory for chart files")
	analyzeCmd.Flags().String("format", "png", "output format (png, svg, both)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	path, question := args[0], args[1]
	outDir := viper.GetString("out")
	format := strings.ToLower(viper.GetString("format"))
	switch format {
	case "png", "svg", "both":
	default:
		return fmt.Errorf("unknown format %q (png, svg, both)", format)
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	ds, err := dataset.Load(filepath.Base(path), f)
	if err != nil {
		return err
	}

	p, err := buildPipeline()
	if err != nil {
		return err
	}

	result, err := p.Run(cmd.Context(), ds, question)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	fmt.Printf("Question: %s\n", result.Question)
	if result.Selection != nil {
		fmt.Printf("Relevant columns: %s\n", strings.Join(result.Selection.RelevantColumns, ", "))
	}
	fmt.Println()

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	for i, c := range result.Charts {
		if c == nil {
			fmt.Printf("Chart %d: FAILED: %v\n", i+1, result.ChartErrors[i])
			continue
		}
		name := fmt.Sprintf("%s_chart_%d_%s", base, i+1, c.Spec.Type)
		if format == "svg" || format == "both" {
			out := filepath.Join(outDir, name+".svg")
			if err := os.WriteFile(out, []byte(c.SVG), 0o644); err != nil {
				return err
			}
			fmt.Printf("Chart %d (%s): %s\n", i+1, c.Spec.Title, out)
		}
		if format == "png" || format == "both" {
			data, err := c.PNG()
			if err != nil {
				log.Warn("png export failed, keeping svg only", zap.Int("chart", i+1), zap.Error(err))
				continue
			}
			out := filepath.Join(outDir, name+".png")
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			fmt.Printf("Chart %d (%s): %s\n", i+1, c.Spec.Title, out)
		}
	}
	summary, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	summaryPath := filepath.Join(outDir, base+"_analysis.json")
	if err := os.WriteFile(summaryPath, summary, 0o644); err != nil {
		return err
	}
	fmt.Printf("Summary: %s\n", summaryPath)

	fmt.Printf("\nTokens used: %d (input %d, output %d)\n",
		result.Usage.TotalTokens, result.Usage.InputTokens, result.Usage.OutputTokens)
	return nil
}
