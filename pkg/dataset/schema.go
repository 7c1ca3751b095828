// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package dataset

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultSummaryTokenBudget bounds how much of the prompt window the
// schema description may consume.
const DefaultSummaryTokenBudget = 1200

// SchemaSummary is a compact description of a Dataset used as LLM
// context. Derived once per Dataset.
type SchemaSummary struct {
	DatasetName string
	RowCount    int
	Columns     []ColumnSummary
}

// ColumnSummary is the per-column slice of a SchemaSummary.
type ColumnSummary struct {
	Name     string
	Type     ColumnType
	Distinct int
	Samples  []string
	Stats    *NumericStats
}

// Summarize derives the schema summary from a dataset.
func Summarize(ds *Dataset) *SchemaSummary {
	s := &SchemaSummary{
		DatasetName: ds.Name,
		RowCount:    ds.RowCount,
	}
	for _, col := range ds.Columns {
		s.Columns = append(s.Columns, ColumnSummary{
			Name:     col.Name,
			Type:     col.Type,
			Distinct: col.Distinct,
			Samples:  col.Samples,
			Stats:    col.Stats,
		})
	}
	return s
}

// Text renders the summary for prompt interpolation, trimming sample
// values until the rendering fits the token budget.
func (s *SchemaSummary) Text(tokenBudget int) string {
	if tokenBudget <= 0 {
		tokenBudget = DefaultSummaryTokenBudget
	}

	samplesPerColumn := maxSamples
	for {
		text := s.render(samplesPerColumn)
		if CountTokens(text) <= tokenBudget || samplesPerColumn == 0 {
			return text
		}
		samplesPerColumn--
	}
}

func (s *SchemaSummary) render(samplesPerColumn int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Dataset %q: %d rows, %d columns\n", s.DatasetName, s.RowCount, len(s.Columns))
	for _, col := range s.Columns {
		fmt.Fprintf(&sb, "- %s (%s, %d distinct)", col.Name, col.Type, col.Distinct)
		if col.Stats != nil {
			fmt.Fprintf(&sb, " range %.4g..%.4g mean %.4g", col.Stats.Min, col.Stats.Max, col.Stats.Mean)
		}
		if samplesPerColumn > 0 && len(col.Samples) > 0 {
			samples := col.Samples
			if len(samples) > samplesPerColumn {
				samples = samples[:samplesPerColumn]
			}
			fmt.Fprintf(&sb, " e.g. %s", strings.Join(samples, ", "))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

var (
	encodingOnce sync.Once
	encoding     *tiktoken.Tiktoken
)

// CountTokens estimates the token count of text with the cl100k_base
// encoding. When the encoder cannot be loaded (offline hosts), it falls
// back to the usual len/4 heuristic.
func CountTokens(text string) int {
	encodingOnce.Do(func() {
		enc, err := tiktoken.GetEncoding(tiktoken.MODEL_CL100K_BASE)
		if err == nil {
			encoding = enc
		}
	})
	if encoding == nil {
		return (len(text) + 3) / 4
	}
	return len(encoding.Encode(text, nil, nil))
}
