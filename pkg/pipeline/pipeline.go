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

// Package pipeline runs the three-step chart recommendation chain:
// column selection, chart-type proposal, and per-proposal spec
// generation, followed by rendering. Each step sends one prompt to the
// configured provider and parses a structured JSON response.
package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/teradata-labs/vizflow/pkg/chart"
	"github.com/teradata-labs/vizflow/pkg/dataset"
	"github.com/teradata-labs/vizflow/pkg/llm"
)

// DefaultChartCount is how many chart proposals a run asks for and
// renders.
const DefaultChartCount = 3

// Config configures a Pipeline.
type Config struct {
	// Provider executes the chain's completion calls. Request pacing
	// lives inside the provider clients, not here.
	Provider llm.Provider

	// Renderer draws the generated specs. Nil uses the default style.
	Renderer *chart.Renderer

	// ChartCount is how many proposals to request. Default: 3.
	ChartCount int

	// MaxRetries is how many corrective re-prompts a step gets after an
	// unparseable response. Default: 1.
	MaxRetries int

	// Temperature for all chain calls.
	Temperature float64

	// MaxTokens caps each response (provider default if 0).
	MaxTokens int

	// SchemaTokenBudget bounds the schema text in prompts.
	SchemaTokenBudget int

	Logger *zap.Logger
}

// Pipeline orchestrates one analysis: dataset + question in, three
// rendered charts out.
type Pipeline struct {
	provider   llm.Provider
	renderer   *chart.Renderer
	chartCount int
	maxRetries int
	temp       float64
	maxTokens  int
	budget     int
	logger     *zap.Logger
}

// New creates a pipeline. Config.Provider is required.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Provider == nil {
		return nil, fmt.Errorf("pipeline requires an LLM provider")
	}
	if cfg.ChartCount <= 0 {
		cfg.ChartCount = DefaultChartCount
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	} else if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 1
	}
	if cfg.Renderer == nil {
		cfg.Renderer = chart.NewRenderer(nil)
	}
	if cfg.SchemaTokenBudget <= 0 {
		cfg.SchemaTokenBudget = dataset.DefaultSummaryTokenBudget
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Pipeline{
		provider:   cfg.Provider,
		renderer:   cfg.Renderer,
		chartCount: cfg.ChartCount,
		maxRetries: cfg.MaxRetries,
		temp:       cfg.Temperature,
		maxTokens:  cfg.MaxTokens,
		budget:     cfg.SchemaTokenBudget,
		logger:     cfg.Logger,
	}, nil
}

// Run executes the full chain against a dataset and question. The
// returned Result always reflects how far the run got; a non-nil error
// means the chain stopped before rendering.
func (p *Pipeline) Run(ctx context.Context, ds *dataset.Dataset, question string) (*Result, error) {
	result := &Result{
		Question: question,
		Dataset:  ds.Name,
		State:    StateIdle,
	}

	schema := dataset.Summarize(ds).Text(p.budget)
	p.logger.Info("starting analysis",
		zap.String("dataset", ds.Name),
		zap.String("provider", p.provider.Name()),
		zap.String("model", p.provider.Model()),
		zap.Int("rows", ds.RowCount))

	selection, err := p.selectColumns(ctx, ds, schema, question, result)
	if err != nil {
		return result, err
	}
	result.Selection = selection
	result.State = StateColumnsChosen
	p.logger.Info("columns selected", zap.Strings("columns", selection.RelevantColumns))

	proposals, err := p.proposeCharts(ctx, schema, question, selection, result)
	if err != nil {
		return result, err
	}
	result.Proposals = proposals
	result.State = StateChartsProposed

	specs := make([]*chart.Spec, len(proposals))
	specErrs := make([]error, len(proposals))
	for i, proposal := range proposals {
		specs[i], specErrs[i] = p.generateSpec(ctx, schema, question, proposal, result)
		if specErrs[i] != nil {
			p.logger.Warn("spec generation failed",
				zap.Int("slot", i),
				zap.String("chart_type", proposal.ChartType),
				zap.Error(specErrs[i]))
		}
	}
	result.Specs = specs
	result.State = StateSpecsGenerated

	result.Charts = make([]*chart.Rendered, len(specs))
	result.ChartErrors = make([]error, len(specs))
	for i, spec := range specs {
		if specErrs[i] != nil {
			result.ChartErrors[i] = specErrs[i]
			continue
		}
		result.Charts[i], result.ChartErrors[i] = p.renderer.Render(ds, spec)
		if result.ChartErrors[i] != nil {
			p.logger.Warn("render failed", zap.Int("slot", i), zap.Error(result.ChartErrors[i]))
		}
	}
	result.State = StateRendered

	if result.RenderedCount() == 0 {
		return result, fmt.Errorf("all %d charts failed; first error: %w", len(specs), firstError(result.ChartErrors))
	}
	p.logger.Info("analysis complete",
		zap.Int("rendered", result.RenderedCount()),
		zap.Int("requested", len(specs)),
		zap.Int("tokens", result.Usage.TotalTokens))
	return result, nil
}

// complete issues one provider call and accumulates token usage on the
// result.
func (p *Pipeline) complete(ctx context.Context, req *llm.Request, result *Result) (*llm.Response, error) {
	resp, err := p.provider.Complete(ctx, req)
	if err != nil {
		return nil, err
	}
	result.Usage.Add(resp.Usage)
	return resp, nil
}

func firstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return fmt.Errorf("unknown failure")
}
