// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package chart

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/teradata-labs/vizflow/pkg/dataset"
)

// point is one x/y pair for scatter and line charts.
type point struct {
	X float64
	Y float64
}

// category is one labeled value for bar and pie charts.
type category struct {
	Label string
	Value float64
}

// categoricalSeries groups rows by the x column and aggregates the y
// column per group. With no y column (or aggregate "count") each group's
// row count is used. Result order follows first appearance unless the
// spec asks for a descending sort; the series is truncated to limit.
func categoricalSeries(ds *dataset.Dataset, spec *Spec) ([]category, error) {
	xs := ds.Values(spec.X)
	if xs == nil {
		return nil, fmt.Errorf("column %q not present in dataset", spec.X)
	}

	counting := spec.Y == "" || spec.Aggregate == "count"
	var ys []string
	if !counting {
		ys = ds.Values(spec.Y)
	}

	type bucket struct {
		sum   float64
		count int
	}
	order := []string{}
	buckets := map[string]*bucket{}
	for i, raw := range xs {
		label := strings.TrimSpace(raw)
		if label == "" {
			continue
		}
		b, ok := buckets[label]
		if !ok {
			b = &bucket{}
			buckets[label] = b
			order = append(order, label)
		}
		if counting {
			b.count++
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(ys[i]), 64)
		if err != nil {
			continue
		}
		b.sum += v
		b.count++
	}

	out := make([]category, 0, len(order))
	for _, label := range order {
		b := buckets[label]
		if b.count == 0 {
			continue
		}
		var v float64
		switch {
		case counting:
			v = float64(b.count)
		case spec.Aggregate == "mean":
			v = b.sum / float64(b.count)
		default: // sum
			v = b.sum
		}
		out = append(out, category{Label: label, Value: v})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no plottable values in column %q", spec.X)
	}

	// Pie slices and sorted bars are ordered by magnitude. Truncation to
	// the category limit always keeps the largest values.
	if spec.Sort == "descending" || spec.Type == TypePie || len(out) > spec.Limit {
		byValue := make([]category, len(out))
		copy(byValue, out)
		sort.SliceStable(byValue, func(i, j int) bool { return byValue[i].Value > byValue[j].Value })
		if len(byValue) > spec.Limit {
			byValue = byValue[:spec.Limit]
		}
		if spec.Sort == "descending" || spec.Type == TypePie {
			return byValue, nil
		}
		// Keep original order but drop categories cut by the limit.
		keep := make(map[string]bool, len(byValue))
		for _, c := range byValue {
			keep[c.Label] = true
		}
		kept := out[:0]
		for _, c := range out {
			if keep[c.Label] {
				kept = append(kept, c)
			}
		}
		return kept, nil
	}
	return out, nil
}

// numericPairs returns rows where both columns parse as numbers,
// evenly sampled down to MaxPlotPoints.
func numericPairs(ds *dataset.Dataset, xCol, yCol string) ([]point, error) {
	xs := ds.Values(xCol)
	ys := ds.Values(yCol)
	var pts []point
	for i := range xs {
		x, errX := strconv.ParseFloat(strings.TrimSpace(xs[i]), 64)
		y, errY := strconv.ParseFloat(strings.TrimSpace(ys[i]), 64)
		if errX != nil || errY != nil {
			continue
		}
		pts = append(pts, point{X: x, Y: y})
	}
	if len(pts) == 0 {
		return nil, fmt.Errorf("no rows with numeric %q and %q", xCol, yCol)
	}
	return samplePoints(pts, MaxPlotPoints), nil
}

// lineSeries builds an ordered series for line charts. A numeric or
// datetime x column orders the series by x; otherwise row order is used
// with synthetic indices.
func lineSeries(ds *dataset.Dataset, spec *Spec) ([]point, []string, error) {
	ys := ds.Values(spec.Y)

	if spec.X != "" {
		xCol, _ := ds.Column(spec.X)
		if xCol != nil && xCol.Type == dataset.ColumnNumeric {
			pts, err := numericPairs(ds, spec.X, spec.Y)
			if err != nil {
				return nil, nil, err
			}
			sort.Slice(pts, func(i, j int) bool { return pts[i].X < pts[j].X })
			return pts, nil, nil
		}
		// Categorical/datetime x: keep row order, label ticks with x values.
		xs := ds.Values(spec.X)
		var pts []point
		var labels []string
		for i := range ys {
			y, err := strconv.ParseFloat(strings.TrimSpace(ys[i]), 64)
			if err != nil {
				continue
			}
			pts = append(pts, point{X: float64(len(pts)), Y: y})
			labels = append(labels, strings.TrimSpace(xs[i]))
		}
		if len(pts) == 0 {
			return nil, nil, fmt.Errorf("no plottable values in column %q", spec.Y)
		}
		pts, labels = sampleLabeledPoints(pts, labels, MaxPlotPoints)
		return pts, labels, nil
	}

	var pts []point
	for i := range ys {
		y, err := strconv.ParseFloat(strings.TrimSpace(ys[i]), 64)
		if err != nil {
			continue
		}
		pts = append(pts, point{X: float64(i), Y: y})
	}
	if len(pts) == 0 {
		return nil, nil, fmt.Errorf("no plottable values in column %q", spec.Y)
	}
	return samplePoints(pts, MaxPlotPoints), nil, nil
}

// histogramBin is one bin of a histogram.
type histogramBin struct {
	Low   float64
	High  float64
	Count int
}

const histogramBinCount = 20

// histogramBins computes equal-width bins over the column's values.
func histogramBins(values []float64) ([]histogramBin, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("no numeric values to bin")
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo == hi {
		return []histogramBin{{Low: lo, High: hi, Count: len(values)}}, nil
	}

	width := (hi - lo) / histogramBinCount
	bins := make([]histogramBin, histogramBinCount)
	for i := range bins {
		bins[i].Low = lo + float64(i)*width
		bins[i].High = bins[i].Low + width
	}
	for _, v := range values {
		idx := int((v - lo) / width)
		if idx >= histogramBinCount {
			idx = histogramBinCount - 1
		}
		bins[idx].Count++
	}
	return bins, nil
}

// boxStats is a five-number summary for box plots.
type boxStats struct {
	Label  string
	Min    float64
	Q1     float64
	Median float64
	Q3     float64
	Max    float64
}

// computeBoxStats builds five-number summaries, one per x-category when
// the spec has an x column, otherwise a single summary over y.
func computeBoxStats(ds *dataset.Dataset, spec *Spec) ([]boxStats, error) {
	if spec.X == "" {
		values := ds.Floats(spec.Y)
		if len(values) == 0 {
			return nil, fmt.Errorf("no numeric values in column %q", spec.Y)
		}
		return []boxStats{fiveNumber(titleize(spec.Y), values)}, nil
	}

	xs := ds.Values(spec.X)
	ys := ds.Values(spec.Y)
	order := []string{}
	groups := map[string][]float64{}
	for i := range xs {
		label := strings.TrimSpace(xs[i])
		if label == "" {
			continue
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(ys[i]), 64)
		if err != nil {
			continue
		}
		if _, ok := groups[label]; !ok {
			order = append(order, label)
		}
		groups[label] = append(groups[label], y)
	}
	if len(order) == 0 {
		return nil, fmt.Errorf("no numeric values in column %q", spec.Y)
	}
	if len(order) > spec.Limit {
		order = order[:spec.Limit]
	}

	out := make([]boxStats, 0, len(order))
	for _, label := range order {
		out = append(out, fiveNumber(label, groups[label]))
	}
	return out, nil
}

func fiveNumber(label string, values []float64) boxStats {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return boxStats{
		Label:  label,
		Min:    sorted[0],
		Q1:     quantile(sorted, 0.25),
		Median: quantile(sorted, 0.5),
		Q3:     quantile(sorted, 0.75),
		Max:    sorted[len(sorted)-1],
	}
}

// quantile interpolates linearly between closest ranks.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// correlationMatrix computes pairwise Pearson correlations over the
// dataset's numeric columns.
func correlationMatrix(ds *dataset.Dataset) ([]string, [][]float64, error) {
	var names []string
	var series [][]float64
	for _, col := range ds.Columns {
		if col.Type != dataset.ColumnNumeric {
			continue
		}
		names = append(names, col.Name)
		series = append(series, columnAsFloats(ds, col.Name))
	}
	if len(names) < 2 {
		return nil, nil, fmt.Errorf("need at least two numeric columns, have %d", len(names))
	}

	n := len(names)
	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
		for j := range matrix[i] {
			matrix[i][j] = pearson(series[i], series[j])
		}
	}
	return names, matrix, nil
}

// columnAsFloats parses a column positionally; unparseable cells become
// NaN so the pairwise correlation can skip them row by row.
func columnAsFloats(ds *dataset.Dataset, name string) []float64 {
	raw := ds.Values(name)
	out := make([]float64, len(raw))
	for i, v := range raw {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = f
	}
	return out
}

func pearson(a, b []float64) float64 {
	var n int
	var sumA, sumB float64
	for i := range a {
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			continue
		}
		n++
		sumA += a[i]
		sumB += b[i]
	}
	if n < 2 {
		return 0
	}
	meanA := sumA / float64(n)
	meanB := sumB / float64(n)

	var cov, varA, varB float64
	for i := range a {
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			continue
		}
		da := a[i] - meanA
		db := b[i] - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		return 0
	}
	return cov / math.Sqrt(varA*varB)
}

// samplePoints evenly samples pts down to max entries.
func samplePoints(pts []point, max int) []point {
	if len(pts) <= max {
		return pts
	}
	out := make([]point, 0, max)
	step := float64(len(pts)) / float64(max)
	for i := 0; i < max; i++ {
		out = append(out, pts[int(float64(i)*step)])
	}
	return out
}

// sampleLabeledPoints evenly samples an index-based series together with
// its tick labels. Kept points are re-indexed so each pts[i].X stays i,
// which is what the tick placement assumes.
func sampleLabeledPoints(pts []point, labels []string, max int) ([]point, []string) {
	if len(pts) <= max {
		return pts, labels
	}
	outPts := make([]point, 0, max)
	outLabels := make([]string, 0, max)
	step := float64(len(pts)) / float64(max)
	for i := 0; i < max; i++ {
		idx := int(float64(i) * step)
		outPts = append(outPts, point{X: float64(i), Y: pts[idx].Y})
		outLabels = append(outLabels, labels[idx])
	}
	return outPts, outLabels
}
