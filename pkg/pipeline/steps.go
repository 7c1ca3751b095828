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

package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/teradata-labs/vizflow/pkg/chart"
	"github.com/teradata-labs/vizflow/pkg/dataset"
	"github.com/teradata-labs/vizflow/pkg/llm"
	"github.com/teradata-labs/vizflow/pkg/prompts"
)

const systemInstruction = "You are a data visualization expert. Respond only with the JSON the task asks for, no prose, no markdown fences."

// retryInstruction is appended to a step's prompt on the corrective
// re-prompt after an unparseable response.
const retryInstruction = "\n\nIMPORTANT: your previous response could not be parsed (%s). Respond with ONLY the requested JSON object, nothing else."

// completeStep runs one step with up to maxRetries corrective
// re-prompts on parse failures. parse decodes the response text.
func (p *Pipeline) completeStep(ctx context.Context, step, prompt string, result *Result, parse func(text string) error) error {
	var lastErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		text := prompt
		if attempt > 0 {
			text = prompt + fmt.Sprintf(retryInstruction, lastErr)
		}
		resp, err := p.complete(ctx, &llm.Request{
			System:      systemInstruction,
			Prompt:      text,
			Temperature: p.temp,
			MaxTokens:   p.maxTokens,
		}, result)
		if err != nil {
			// Network failures are not fixed by re-prompting; the
			// provider's pacer already retried throttling.
			return fmt.Errorf("%s: %w", step, err)
		}

		if err := parse(resp.Text); err != nil {
			if !IsParseError(err) {
				return err
			}
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}

// selectColumns is step 1: ask which columns matter for the question.
// Columns the model names that are not in the dataset make the response
// unparseable, which triggers the corrective re-prompt.
func (p *Pipeline) selectColumns(ctx context.Context, ds *dataset.Dataset, schema, question string, result *Result) (*ColumnSelection, error) {
	prompt := prompts.Interpolate(prompts.ColumnAnalysis, map[string]interface{}{
		"schema":   schema,
		"question": question,
	})

	var selection ColumnSelection
	err := p.completeStep(ctx, "column selection", prompt, result, func(text string) error {
		var s ColumnSelection
		if err := decodeResponse("column selection", text, columnSelectionSchema, &s); err != nil {
			return err
		}
		if unknown := unknownColumns(ds, s.RelevantColumns); len(unknown) > 0 {
			return &ParseError{
				Step: "column selection",
				Raw:  text,
				Err:  fmt.Errorf("columns not in dataset: %s", strings.Join(unknown, ", ")),
			}
		}
		selection = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &selection, nil
}

// proposeCharts is step 2: ask for exactly chartCount distinct chart
// types. A wrong count or an unrenderable type label is treated as a
// parse failure so the model gets one corrective re-prompt.
func (p *Pipeline) proposeCharts(ctx context.Context, schema, question string, selection *ColumnSelection, result *Result) ([]ChartProposal, error) {
	prompt := prompts.Interpolate(prompts.ChartTypeSelection, map[string]interface{}{
		"schema":   schema,
		"question": question,
		"columns":  selection.RelevantColumns,
		"count":    p.chartCount,
	})

	var proposals []ChartProposal
	err := p.completeStep(ctx, "chart proposal", prompt, result, func(text string) error {
		var list proposalList
		if err := decodeResponse("chart proposal", text, chartProposalsSchema, &list); err != nil {
			return err
		}
		if len(list.Proposals) != p.chartCount {
			return &ParseError{
				Step: "chart proposal",
				Raw:  text,
				Err:  fmt.Errorf("got %d proposals, need exactly %d", len(list.Proposals), p.chartCount),
			}
		}
		for _, proposal := range list.Proposals {
			if _, err := chart.ParseType(proposal.ChartType); err != nil {
				return &ParseError{Step: "chart proposal", Raw: text, Err: err}
			}
		}
		proposals = list.Proposals
		return nil
	})
	if err != nil {
		return nil, err
	}
	return proposals, nil
}

// generateSpec is step 3, run once per proposal: ask for the
// declarative spec that realizes it. The spec's type is pinned to the
// proposal's type regardless of what the model answers.
func (p *Pipeline) generateSpec(ctx context.Context, schema, question string, proposal ChartProposal, result *Result) (*chart.Spec, error) {
	prompt := prompts.Interpolate(prompts.SpecGeneration, map[string]interface{}{
		"chart_type": proposal.ChartType,
		"columns":    proposal.Columns,
		"schema":     schema,
		"question":   question,
	})

	pinned, err := chart.ParseType(proposal.ChartType)
	if err != nil {
		return nil, err
	}

	var spec chart.Spec
	err = p.completeStep(ctx, "spec generation", prompt, result, func(text string) error {
		var s chart.Spec
		if err := decodeResponse("spec generation", text, chartSpecSchema, &s); err != nil {
			return err
		}
		spec = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	spec.Type = pinned
	return &spec, nil
}

// unknownColumns returns names not present in the dataset.
func unknownColumns(ds *dataset.Dataset, names []string) []string {
	var unknown []string
	for _, name := range names {
		if !ds.HasColumn(name) {
			unknown = append(unknown, name)
		}
	}
	return unknown
}
