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
	"github.com/teradata-labs/vizflow/pkg/chart"
	"github.com/teradata-labs/vizflow/pkg/llm"
)

// State tracks how far an analysis has progressed through the chain.
type State string

const (
	StateIdle           State = "idle"
	StateColumnsChosen  State = "columns_chosen"
	StateChartsProposed State = "charts_proposed"
	StateSpecsGenerated State = "specs_generated"
	StateRendered       State = "rendered"
)

// ColumnSelection is the step 1 output: the dataset columns the model
// judged relevant to the question, with its reasoning.
type ColumnSelection struct {
	RelevantColumns []string `json:"relevant_columns"`
	Reasoning       string   `json:"reasoning,omitempty"`
}

// ChartProposal is one step 2 recommendation.
type ChartProposal struct {
	ChartType     string   `json:"chart_type"`
	Justification string   `json:"justification,omitempty"`
	Columns       []string `json:"columns,omitempty"`
}

// proposalList is the envelope step 2 responds with.
type proposalList struct {
	Proposals []ChartProposal `json:"proposals"`
}

// Result is the full outcome of one analysis run. Charts and
// ChartErrors are positional over Specs: a failed slot has a nil chart
// and a non-nil error, and never aborts its siblings.
type Result struct {
	Question  string           `json:"question"`
	Dataset   string           `json:"dataset"`
	State     State            `json:"state"`
	Selection *ColumnSelection `json:"selection,omitempty"`
	Proposals []ChartProposal  `json:"proposals,omitempty"`
	Specs     []*chart.Spec    `json:"specs,omitempty"`

	Charts      []*chart.Rendered `json:"-"`
	ChartErrors []error           `json:"-"`

	Usage llm.Usage `json:"usage"`
}

// RenderedCount returns how many chart slots rendered successfully.
func (r *Result) RenderedCount() int {
	n := 0
	for _, c := range r.Charts {
		if c != nil {
			n++
		}
	}
	return n
}
