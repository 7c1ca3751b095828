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

// Package prompts holds the prompt templates for the three-step chart
// recommendation chain and the interpolation helper that fills them in.
package prompts

import (
	"fmt"
	"regexp"
	"strings"
)

var placeholderRe = regexp.MustCompile(`\{\{\.(\w+)\}\}`)

// Interpolate performs variable substitution in a prompt template.
//
// Uses {{.variable_name}} syntax (like Go templates but simpler).
// Values are sanitized so user-supplied text cannot smuggle new
// placeholders into the template.
//
// Example:
//
//	Interpolate("Question: {{.question}}", map[string]interface{}{
//	    "question": "How do sales vary by region?",
//	})
func Interpolate(template string, vars map[string]interface{}) string {
	if vars == nil {
		return template
	}

	return placeholderRe.ReplaceAllStringFunc(template, func(match string) string {
		name := strings.TrimSuffix(strings.TrimPrefix(match, "{{."), "}}")
		value, ok := vars[name]
		if !ok {
			// Keep placeholder if variable not provided.
			return match
		}
		return sanitizeValue(value)
	})
}

// sanitizeValue converts a value to string and neutralizes template
// syntax inside it.
func sanitizeValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return sanitizeString(v)
	case []string:
		sanitized := make([]string, len(v))
		for i, s := range v {
			sanitized[i] = sanitizeString(s)
		}
		return strings.Join(sanitized, ", ")
	case int, int64, int32, float64, float32, bool:
		return fmt.Sprintf("%v", v)
	default:
		return sanitizeString(fmt.Sprintf("%v", v))
	}
}

func sanitizeString(s string) string {
	s = strings.ReplaceAll(s, "{{", "{ {")
	s = strings.ReplaceAll(s, "}}", "} }")
	return s
}
