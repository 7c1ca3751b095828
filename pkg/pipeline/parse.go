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
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	"github.com/xeipuuv/gojsonschema"
)

// ParseError reports a model response that could not be turned into the
// structured output a chain step expects. Raw carries the offending
// response for logging and re-prompting.
type ParseError struct {
	Step string
	Raw  string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: unparseable model response: %v", e.Step, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsParseError reports whether err is (or wraps) a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// extractJSON pulls a JSON object out of a model response that may wrap
// it in prose or markdown fences. Returns the substring from the first
// '{' to the last '}'.
func extractJSON(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("no JSON object found in response")
	}
	return text[start : end+1], nil
}

// jsonSchemas are compiled once; a schema that fails to compile is a
// programming error.
func mustSchema(doc string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(doc))
	if err != nil {
		panic(fmt.Sprintf("invalid embedded schema: %v", err))
	}
	return s
}

var (
	columnSelectionSchema = mustSchema(`{
		"type": "object",
		"required": ["relevant_columns"],
		"properties": {
			"relevant_columns": {
				"type": "array",
				"items": {"type": "string"},
				"minItems": 1
			},
			"reasoning": {"type": "string"}
		}
	}`)

	chartProposalsSchema = mustSchema(`{
		"type": "object",
		"required": ["proposals"],
		"properties": {
			"proposals": {
				"type": "array",
				"items": {
					"type": "object",
					"required": ["chart_type"],
					"properties": {
						"chart_type": {"type": "string"},
						"justification": {"type": "string"},
						"columns": {"type": "array", "items": {"type": "string"}}
					}
				}
			}
		}
	}`)

	chartSpecSchema = mustSchema(`{
		"type": "object",
		"required": ["type"],
		"properties": {
			"type": {"type": "string"},
			"x": {"type": "string"},
			"y": {"type": "string"},
			"aggregate": {"type": "string"},
			"title": {"type": "string"},
			"x_label": {"type": "string"},
			"y_label": {"type": "string"},
			"sort": {"type": "string"},
			"limit": {"type": "integer"}
		}
	}`)
)

// decodeResponse extracts, repairs if needed, schema-validates, and
// unmarshals a model response into out. Every failure mode comes back
// as a ParseError tagged with the step name.
func decodeResponse(step, text string, schema *gojsonschema.Schema, out interface{}) error {
	fail := func(err error) error {
		return &ParseError{Step: step, Raw: text, Err: err}
	}

	raw, err := extractJSON(text)
	if err != nil {
		return fail(err)
	}

	// Models sometimes emit almost-JSON (trailing commas, single
	// quotes). Try strict first, then repair.
	if !json.Valid([]byte(raw)) {
		repaired, err := jsonrepair.RepairJSON(raw)
		if err != nil {
			return fail(fmt.Errorf("repairing JSON: %w", err))
		}
		raw = repaired
	}

	result, err := schema.Validate(gojsonschema.NewStringLoader(raw))
	if err != nil {
		return fail(fmt.Errorf("validating JSON: %w", err))
	}
	if !result.Valid() {
		issues := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			issues = append(issues, e.String())
		}
		return fail(fmt.Errorf("response does not match expected shape: %s", strings.Join(issues, "; ")))
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fail(fmt.Errorf("unmarshaling response: %w", err))
	}
	return nil
}
