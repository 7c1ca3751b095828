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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teradata-labs/vizflow/pkg/dataset"
	"github.com/teradata-labs/vizflow/pkg/llm"
)

const salesCSV = `region,product,unit_sales,revenue
North,Widget,120,2400.50
South,Widget,85,1700.00
East,Gadget,200,5000.25
West,Gadget,150,3750.75
North,Gizmo,95,2375.00
South,Gizmo,60,900.00
`

// mockProvider plays back scripted responses in order.
type mockProvider struct {
	responses []string
	requests  []*llm.Request
}

func (m *mockProvider) Complete(_ context.Context, req *llm.Request) (*llm.Response, error) {
	m.requests = append(m.requests, req)
	if len(m.requests) > len(m.responses) {
		return nil, fmt.Errorf("mock exhausted after %d calls", len(m.responses))
	}
	return &llm.Response{
		Text:       m.responses[len(m.requests)-1],
		StopReason: "end_turn",
		Usage:      llm.Usage{InputTokens: 100, OutputTokens: 50, TotalTokens: 150},
	}, nil
}

func (m *mockProvider) Name() string  { return "mock" }
func (m *mockProvider) Model() string { return "mock-model" }

func loadSales(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.Load("sales.csv", strings.NewReader(salesCSV))
	require.NoError(t, err)
	return ds
}

const goodSelection = `{"relevant_columns": ["region", "revenue"], "reasoning": "revenue by region"}`

const goodProposals = `{"proposals": [
	{"chart_type": "bar", "justification": "comparison across categories", "columns": ["region", "revenue"]},
	{"chart_type": "pie", "justification": "share of whole", "columns": ["region", "revenue"]},
	{"chart_type": "box", "justification": "distribution per category", "columns": ["region", "revenue"]}
]}`

var goodSpecs = []string{
	`{"type": "bar", "x": "region", "y": "revenue", "aggregate": "sum", "title": "Total Revenue by Region", "sort": "descending"}`,
	`{"type": "pie", "x": "region", "y": "revenue", "aggregate": "sum", "title": "Revenue Share by Region"}`,
	`{"type": "box", "x": "region", "y": "revenue", "title": "Revenue Distribution by Region"}`,
}

func newTestPipeline(t *testing.T, responses []string) (*Pipeline, *mockProvider) {
	t.Helper()
	mock := &mockProvider{responses: responses}
	p, err := New(Config{Provider: mock})
	require.NoError(t, err)
	return p, mock
}

func TestRunHappyPath(t *testing.T) {
	p, mock := newTestPipeline(t, append([]string{goodSelection, goodProposals}, goodSpecs...))
	ds := loadSales(t)

	result, err := p.Run(context.Background(), ds, "How does revenue vary by region?")
	require.NoError(t, err)

	assert.Equal(t, StateRendered, result.State)
	assert.Equal(t, []string{"region", "revenue"}, result.Selection.RelevantColumns)
	assert.Len(t, result.Proposals, 3)
	assert.Equal(t, 3, result.RenderedCount())
	for i, chartErr := range result.ChartErrors {
		assert.NoError(t, chartErr, "chart %d", i)
	}

	// 1 column call + 1 proposal call + 3 spec calls.
	assert.Len(t, mock.requests, 5)
	assert.Equal(t, 5*150, result.Usage.TotalTokens)

	// The schema and question reach the first prompt.
	assert.Contains(t, mock.requests[0].Prompt, "region")
	assert.Contains(t, mock.requests[0].Prompt, "How does revenue vary by region?")
}

func TestRunExtractsFencedJSON(t *testing.T) {
	fenced := "Here is my analysis:\n```json\n" + goodSelection + "\n```"
	p, _ := newTestPipeline(t, append([]string{fenced, goodProposals}, goodSpecs...))

	result, err := p.Run(context.Background(), loadSales(t), "revenue by region")
	require.NoError(t, err)
	assert.Equal(t, []string{"region", "revenue"}, result.Selection.RelevantColumns)
}

func TestRunRepairsAlmostJSON(t *testing.T) {
	// Trailing comma: invalid JSON that the repair pass fixes.
	broken := `{"relevant_columns": ["region", "revenue",], "reasoning": "r"}`
	p, _ := newTestPipeline(t, append([]string{broken, goodProposals}, goodSpecs...))

	result, err := p.Run(context.Background(), loadSales(t), "revenue by region")
	require.NoError(t, err)
	assert.Equal(t, []string{"region", "revenue"}, result.Selection.RelevantColumns)
}

func TestRunRetriesUnparseableResponse(t *testing.T) {
	responses := append([]string{
		"I think the relevant columns are region and revenue.", // no JSON at all
		goodSelection, // corrective re-prompt succeeds
		goodProposals,
	}, goodSpecs...)
	p, mock := newTestPipeline(t, responses)

	result, err := p.Run(context.Background(), loadSales(t), "revenue by region")
	require.NoError(t, err)
	assert.Equal(t, 3, result.RenderedCount())

	// The second call carries the corrective instruction.
	require.GreaterOrEqual(t, len(mock.requests), 2)
	assert.Contains(t, mock.requests[1].Prompt, "could not be parsed")
}

func TestRunFailsAfterRetryBudget(t *testing.T) {
	p, _ := newTestPipeline(t, []string{"not json", "still not json"})

	result, err := p.Run(context.Background(), loadSales(t), "revenue by region")
	require.Error(t, err)
	assert.True(t, IsParseError(err), "want ParseError, got %v", err)
	assert.Equal(t, StateIdle, result.State)
}

func TestRunNoRetriesWhenDisabled(t *testing.T) {
	mock := &mockProvider{responses: []string{"not json", goodSelection}}
	p, err := New(Config{Provider: mock, MaxRetries: -1})
	require.NoError(t, err)

	_, err = p.Run(context.Background(), loadSales(t), "revenue by region")
	require.Error(t, err)
	assert.True(t, IsParseError(err))
	assert.Len(t, mock.requests, 1, "no corrective re-prompt expected")
}

func TestRunRejectsUnknownColumns(t *testing.T) {
	hallucinated := `{"relevant_columns": ["profit_margin"], "reasoning": "made up"}`
	p, _ := newTestPipeline(t, []string{hallucinated, hallucinated})

	_, err := p.Run(context.Background(), loadSales(t), "profit by region")
	require.Error(t, err)
	assert.True(t, IsParseError(err))
	assert.Contains(t, err.Error(), "profit_margin")
}

func TestRunRejectsWrongProposalCount(t *testing.T) {
	twoProposals := `{"proposals": [
		{"chart_type": "bar", "columns": ["region"]},
		{"chart_type": "pie", "columns": ["region"]}
	]}`
	p, _ := newTestPipeline(t, []string{goodSelection, twoProposals, twoProposals})

	result, err := p.Run(context.Background(), loadSales(t), "revenue by region")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "need exactly 3")
	assert.Equal(t, StateColumnsChosen, result.State)
}

func TestRunIsolatesSpecFailures(t *testing.T) {
	// A schema-valid but unrenderable spec is not a parse failure; it is
	// accepted by the chain and surfaces per-slot at render time.
	responses := []string{
		goodSelection,
		goodProposals,
		goodSpecs[0],
		`{"type": "pie", "x": "nonexistent_column"}`,
		goodSpecs[2],
	}
	p, _ := newTestPipeline(t, responses)

	result, err := p.Run(context.Background(), loadSales(t), "revenue by region")
	require.NoError(t, err)
	assert.Equal(t, 2, result.RenderedCount())
	assert.Error(t, result.ChartErrors[1])
	assert.NoError(t, result.ChartErrors[0])
	assert.NoError(t, result.ChartErrors[2])
}

func TestRunPropagatesNetworkErrors(t *testing.T) {
	mock := &failingProvider{}
	p, err := New(Config{Provider: mock})
	require.NoError(t, err)

	_, err = p.Run(context.Background(), loadSales(t), "anything")
	require.Error(t, err)
	assert.True(t, llm.IsNetworkError(err))
	assert.False(t, IsParseError(err))
}

type failingProvider struct{}

func (f *failingProvider) Complete(context.Context, *llm.Request) (*llm.Response, error) {
	return nil, &llm.NetworkError{Provider: "mock", StatusCode: 500, Err: fmt.Errorf("boom")}
}
func (f *failingProvider) Name() string  { return "mock" }
func (f *failingProvider) Model() string { return "mock-model" }

func TestSalesByRegionScenario(t *testing.T) {
	salesData := `region,month,sales
North,Jan,1200
South,Jan,900
East,Jan,1500
North,Feb,1350
South,Feb,950
East,Feb,1600
North,Mar,1100
South,Mar,1000
East,Mar,1700
`
	ds, err := dataset.Load("sales_data.csv", strings.NewReader(salesData))
	require.NoError(t, err)

	responses := []string{
		`{"relevant_columns": ["region", "sales"], "reasoning": "sales grouped by region answers the question"}`,
		`{"proposals": [
			{"chart_type": "bar", "justification": "compares totals across regions", "columns": ["region", "sales"]},
			{"chart_type": "box", "justification": "shows the monthly spread per region", "columns": ["region", "sales"]},
			{"chart_type": "line", "justification": "shows the trend over months", "columns": ["month", "sales"]}
		]}`,
		`{"type": "bar", "x": "region", "y": "sales", "aggregate": "sum", "title": "Total Sales by Region", "sort": "descending"}`,
		`{"type": "box", "x": "region", "y": "sales", "title": "Sales Distribution by Region"}`,
		`{"type": "line", "x": "month", "y": "sales", "title": "Sales Trend by Month"}`,
	}
	p, _ := newTestPipeline(t, responses)

	result, err := p.Run(context.Background(), ds, "How do sales vary by region?")
	require.NoError(t, err)

	assert.Equal(t, []string{"region", "sales"}, result.Selection.RelevantColumns)
	require.Len(t, result.Charts, 3)
	assert.Equal(t, 3, result.RenderedCount())
	for i, c := range result.Charts {
		require.NotNil(t, c, "chart %d", i)
		data, err := c.PNG()
		require.NoError(t, err, "chart %d png", i)
		assert.NotEmpty(t, data)
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"bare object", `{"a": 1}`, `{"a": 1}`, false},
		{"fenced", "```json\n{\"a\": 1}\n```", `{"a": 1}`, false},
		{"prose around", `Sure! {"a": 1} Hope that helps.`, `{"a": 1}`, false},
		{"nested braces", `{"a": {"b": 2}}`, `{"a": {"b": 2}}`, false},
		{"no object", "there is nothing here", "", true},
		{"reversed braces", "} {", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractJSON(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
