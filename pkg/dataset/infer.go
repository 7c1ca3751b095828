// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package dataset

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	// inferSampleSize caps how many cells are examined per column.
	inferSampleSize = 500

	// parseRateThreshold is the fraction of non-blank cells that must
	// parse for a column to be judged numeric or datetime.
	parseRateThreshold = 0.9

	// categoricalMaxDistinct bounds the distinct-value count of a
	// categorical column; above it string columns are plain text.
	categoricalMaxDistinct = 50

	// maxSamples is how many example values a column summary carries.
	maxSamples = 5

	// maxTopValues is how many frequent values are kept per categorical.
	maxTopValues = 5
)

var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"02/01/2006",
	"2006/01/02",
	"Jan 2, 2006",
	"January 2006",
	"Jan-06",
	"2006-01",
}

// inferColumn determines column i's type from parse-success rates and
// fills in its statistics.
func inferColumn(ds *Dataset, i int) {
	col := &ds.Columns[i]
	values := ds.Values(col.Name)
	if len(values) > inferSampleSize {
		values = values[:inferSampleSize]
	}

	var nonBlank, numericHits, datetimeHits int
	distinct := make(map[string]int)
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		nonBlank++
		distinct[v]++
		if _, err := strconv.ParseFloat(trimNumeric(v), 64); err == nil {
			numericHits++
		} else if parsesAsTime(v) {
			datetimeHits++
		}
	}

	col.Distinct = len(distinct)
	col.Samples = sampleValues(values, maxSamples)

	switch {
	case nonBlank == 0:
		col.Type = ColumnText
	case float64(numericHits)/float64(nonBlank) >= parseRateThreshold:
		col.Type = ColumnNumeric
		col.Stats = numericStats(ds.Floats(col.Name))
	case float64(datetimeHits)/float64(nonBlank) >= parseRateThreshold:
		col.Type = ColumnDatetime
	case len(distinct) <= categoricalMaxDistinct:
		col.Type = ColumnCategorical
		col.TopValues = topValues(distinct, maxTopValues)
	default:
		col.Type = ColumnText
	}
}

// trimNumeric strips formatting commonly found in numeric CSV cells.
func trimNumeric(v string) string {
	v = strings.TrimSpace(v)
	v = strings.ReplaceAll(v, ",", "")
	v = strings.TrimPrefix(v, "$")
	v = strings.TrimSuffix(v, "%")
	return v
}

func parsesAsTime(v string) bool {
	for _, layout := range datetimeLayouts {
		if _, err := time.Parse(layout, v); err == nil {
			return true
		}
	}
	return false
}

func numericStats(values []float64) *NumericStats {
	if len(values) == 0 {
		return nil
	}
	stats := &NumericStats{
		Count: len(values),
		Min:   values[0],
		Max:   values[0],
	}
	var sum float64
	for _, v := range values {
		if v < stats.Min {
			stats.Min = v
		}
		if v > stats.Max {
			stats.Max = v
		}
		sum += v
	}
	stats.Mean = sum / float64(len(values))
	return stats
}

// sampleValues returns up to n distinct non-blank example values in
// first-seen order.
func sampleValues(values []string, n int) []string {
	seen := make(map[string]bool)
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
		if len(out) == n {
			break
		}
	}
	return out
}

func topValues(counts map[string]int, n int) []ValueCount {
	out := make([]ValueCount, 0, len(counts))
	for v, c := range counts {
		out = append(out, ValueCount{Value: v, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
