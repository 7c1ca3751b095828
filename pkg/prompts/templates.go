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
package prompts

// ColumnAnalysis is the step 1 template: pick the columns relevant to
// the user's question. Variables: schema, question.
const ColumnAnalysis = `Analyze a dataset schema and a business question to identify which columns are relevant for visualization.

Dataset Schema:
{{.schema}}

User Question: "{{.question}}"

Task: Identify which columns from the dataset are most relevant to answer this question. Use ONLY column names that appear in the schema, spelled exactly as shown.

Respond with EXACTLY this JSON and nothing else:
{
    "relevant_columns": ["column1", "column2"],
    "reasoning": "Brief explanation of why these columns are relevant"
}`

// ChartTypeSelection is the step 2 template: propose exactly three
// distinct chart types. Variables: schema, question, columns, count.
const ChartTypeSelection = `Recommend chart types for a dataset, following visualization best practices (Tufte, Cleveland, Few).

User Question: "{{.question}}"
Relevant Columns: {{.columns}}

Dataset Schema:
{{.schema}}

Task: Recommend EXACTLY {{.count}} DIFFERENT visualization types that best answer the question.

Considerations:
1. Choose the right chart type for the data (categorical vs continuous, relationships vs distributions vs comparisons)
2. Maximize the data-ink ratio; avoid unnecessary decoration
3. Avoid chartjunk (no 3D effects, minimal grid lines)
4. Each recommendation must use a DIFFERENT chart type

Available chart types: bar, line, scatter, histogram, box, violin, heatmap, pie

Respond with EXACTLY this JSON and nothing else:
{
    "proposals": [
        {
            "chart_type": "one of the available types",
            "justification": "Why this chart type is appropriate, referencing best practices",
            "columns": ["col1", "col2"]
        }
    ]
}
The proposals array must contain exactly {{.count}} entries.`

// SpecGeneration is the step 3 template: emit one declarative chart
// specification for a proposal. Variables: chart_type, columns, schema,
// question.
const SpecGeneration = `Produce a declarative chart specification as JSON. The specification is interpreted by a renderer; it is NOT code.

Visualization Type: {{.chart_type}}
Columns to Use: {{.columns}}
User Question: "{{.question}}"

Dataset Schema:
{{.schema}}

Specification fields:
- "type": the chart type (bar, line, scatter, histogram, box, pie, heatmap)
- "x": column for the x axis / categories (omit when not applicable)
- "y": column for the y axis / values (omit when not applicable)
- "aggregate": "sum", "mean", or "count" when y must be aggregated per x category, otherwise omit
- "title": clear, descriptive chart title (not just column names)
- "x_label", "y_label": readable axis labels, properly capitalized
- "sort": "descending" to order categories by value, otherwise omit
- "limit": maximum number of categories to show (use 15 for categorical axes)

Use ONLY column names that appear in the schema, spelled exactly as shown.

Respond with EXACTLY one JSON object and nothing else.`
