// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package chart

import (
	"bytes"
	"fmt"
	"image/png"
	"strings"
	"testing"

	"github.com/teradata-labs/vizflow/pkg/dataset"
)

const salesCSV = `region,product,unit_sales,revenue,discount
North,Widget,120,2400.50,0.1
South,Widget,85,1700.00,0.0
East,Gadget,200,5000.25,0.2
West,Gadget,150,3750.75,0.1
North,Gadget,95,2375.00,0.0
South,Gizmo,60,900.00,0.3
East,Widget,110,2200.00,0.1
West,Widget,75,1500.50,0.0
`

func loadSales(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.Load("sales.csv", strings.NewReader(salesCSV))
	if err != nil {
		t.Fatalf("loading sales dataset: %v", err)
	}
	return ds
}

func TestParseType(t *testing.T) {
	tests := []struct {
		label   string
		want    Type
		wantErr bool
	}{
		{"bar", TypeBar, false},
		{"BAR", TypeBar, false},
		{" line ", TypeLine, false},
		{"timeseries", TypeLine, false},
		{"violin", TypeBox, false},
		{"boxplot", TypeBox, false},
		{"heatmap", TypeHeatmap, false},
		{"pie", TypePie, false},
		{"treemap", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseType(tt.label)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseType(%q): expected error, got %q", tt.label, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseType(%q): unexpected error: %v", tt.label, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseType(%q) = %q, want %q", tt.label, got, tt.want)
		}
	}
}

func TestSpecNormalizeDefaults(t *testing.T) {
	spec := &Spec{Type: "Violin", X: "region", Y: "revenue"}
	if err := spec.Normalize(); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if spec.Type != TypeBox {
		t.Errorf("type = %q, want %q", spec.Type, TypeBox)
	}
	if spec.Limit != DefaultCategoryLimit {
		t.Errorf("limit = %d, want %d", spec.Limit, DefaultCategoryLimit)
	}
	if spec.Title == "" {
		t.Error("expected a default title")
	}
}

func TestSpecValidate(t *testing.T) {
	ds := loadSales(t)

	tests := []struct {
		name    string
		spec    Spec
		wantErr string
	}{
		{"valid bar", Spec{Type: TypeBar, X: "region", Y: "revenue", Aggregate: "sum"}, ""},
		{"valid heatmap", Spec{Type: TypeHeatmap}, ""},
		{"unknown column", Spec{Type: TypeBar, X: "territory"}, "not present"},
		{"bar without x", Spec{Type: TypeBar, Y: "revenue"}, "requires an x column"},
		{"scatter non-numeric", Spec{Type: TypeScatter, X: "region", Y: "revenue"}, "numeric required"},
		{"histogram on text", Spec{Type: TypeHistogram, X: "product"}, "numeric required"},
		{"bad aggregate", Spec{Type: TypeBar, X: "region", Y: "revenue", Aggregate: "median"}, "unsupported aggregate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := tt.spec
			if spec.Limit == 0 {
				spec.Limit = DefaultCategoryLimit
			}
			err := spec.Validate(ds)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestCategoricalSeriesAggregates(t *testing.T) {
	ds := loadSales(t)

	tests := []struct {
		name      string
		aggregate string
		wantNorth float64
	}{
		{"sum", "sum", 2400.50 + 2375.00},
		{"mean", "mean", (2400.50 + 2375.00) / 2},
		{"count", "count", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := &Spec{Type: TypeBar, X: "region", Y: "revenue", Aggregate: tt.aggregate, Limit: DefaultCategoryLimit}
			cats, err := categoricalSeries(ds, spec)
			if err != nil {
				t.Fatalf("categoricalSeries: %v", err)
			}
			if len(cats) != 4 {
				t.Fatalf("got %d categories, want 4", len(cats))
			}
			// First appearance order preserved without a sort.
			if cats[0].Label != "North" {
				t.Fatalf("first category = %q, want North", cats[0].Label)
			}
			if cats[0].Value != tt.wantNorth {
				t.Errorf("North %s = %v, want %v", tt.aggregate, cats[0].Value, tt.wantNorth)
			}
		})
	}
}

func TestCategoricalSeriesSortAndLimit(t *testing.T) {
	ds := loadSales(t)
	spec := &Spec{Type: TypeBar, X: "region", Y: "revenue", Aggregate: "sum", Sort: "descending", Limit: 2}
	cats, err := categoricalSeries(ds, spec)
	if err != nil {
		t.Fatalf("categoricalSeries: %v", err)
	}
	if len(cats) != 2 {
		t.Fatalf("got %d categories, want 2 after limit", len(cats))
	}
	if cats[0].Value < cats[1].Value {
		t.Errorf("not sorted descending: %v then %v", cats[0].Value, cats[1].Value)
	}
	// East has the highest revenue sum.
	if cats[0].Label != "East" {
		t.Errorf("top category = %q, want East", cats[0].Label)
	}
}

func TestHistogramBins(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = float64(i)
	}
	bins, err := histogramBins(values)
	if err != nil {
		t.Fatalf("histogramBins: %v", err)
	}
	if len(bins) != histogramBinCount {
		t.Fatalf("got %d bins, want %d", len(bins), histogramBinCount)
	}
	total := 0
	for _, b := range bins {
		total += b.Count
	}
	if total != len(values) {
		t.Errorf("bins cover %d values, want %d", total, len(values))
	}
}

func TestHistogramBinsConstantColumn(t *testing.T) {
	bins, err := histogramBins([]float64{5, 5, 5})
	if err != nil {
		t.Fatalf("histogramBins: %v", err)
	}
	if len(bins) != 1 || bins[0].Count != 3 {
		t.Fatalf("got %+v, want single bin of 3", bins)
	}
}

func TestQuantile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5}
	tests := []struct {
		q    float64
		want float64
	}{
		{0.0, 1},
		{0.25, 2},
		{0.5, 3},
		{0.75, 4},
		{1.0, 5},
	}
	for _, tt := range tests {
		if got := quantile(sorted, tt.q); got != tt.want {
			t.Errorf("quantile(%v) = %v, want %v", tt.q, got, tt.want)
		}
	}
}

func TestPearsonPerfectCorrelation(t *testing.T) {
	a := []float64{1, 2, 3, 4}
	b := []float64{2, 4, 6, 8}
	if got := pearson(a, b); got < 0.999 {
		t.Errorf("pearson = %v, want ~1", got)
	}
	c := []float64{8, 6, 4, 2}
	if got := pearson(a, c); got > -0.999 {
		t.Errorf("pearson = %v, want ~-1", got)
	}
}

func TestSamplePoints(t *testing.T) {
	pts := make([]point, 5000)
	for i := range pts {
		pts[i] = point{X: float64(i)}
	}
	out := samplePoints(pts, MaxPlotPoints)
	if len(out) != MaxPlotPoints {
		t.Fatalf("got %d points, want %d", len(out), MaxPlotPoints)
	}
	if out[0].X != 0 {
		t.Errorf("first sample = %v, want 0", out[0].X)
	}
	if out[len(out)-1].X < float64(len(pts))*0.9 {
		t.Errorf("sampling dropped the tail: last = %v", out[len(out)-1].X)
	}
}

func TestLineSeriesCapsCategoricalX(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("day,value\n")
	for i := 0; i < 2500; i++ {
		fmt.Fprintf(&sb, "d%04d,%d\n", i, i)
	}
	ds, err := dataset.Load("daily.csv", strings.NewReader(sb.String()))
	if err != nil {
		t.Fatalf("loading dataset: %v", err)
	}

	pts, labels, err := lineSeries(ds, &Spec{Type: TypeLine, X: "day", Y: "value"})
	if err != nil {
		t.Fatalf("lineSeries: %v", err)
	}
	if len(pts) != MaxPlotPoints {
		t.Fatalf("got %d points, want %d", len(pts), MaxPlotPoints)
	}
	if len(labels) != len(pts) {
		t.Fatalf("got %d labels for %d points", len(labels), len(pts))
	}
	if labels[0] != "d0000" {
		t.Errorf("first label = %q, want d0000", labels[0])
	}
	// Each kept label must still name the row its point came from, and
	// points stay index-based so tick placement lines up.
	for i, p := range pts {
		if p.X != float64(i) {
			t.Fatalf("point %d has x %v, want %d", i, p.X, i)
		}
		if want := fmt.Sprintf("d%04d", int(p.Y)); labels[i] != want {
			t.Fatalf("label %d = %q, want %q", i, labels[i], want)
		}
	}
}

func TestRenderEachType(t *testing.T) {
	ds := loadSales(t)
	r := NewRenderer(nil)

	specs := []*Spec{
		{Type: TypeBar, X: "region", Y: "revenue", Aggregate: "sum"},
		{Type: TypeLine, X: "region", Y: "unit_sales"},
		{Type: TypeScatter, X: "unit_sales", Y: "revenue"},
		{Type: TypeHistogram, X: "revenue"},
		{Type: TypeBox, X: "product", Y: "revenue"},
		{Type: TypePie, X: "product"},
		{Type: TypeHeatmap},
	}

	for _, spec := range specs {
		t.Run(string(spec.Type), func(t *testing.T) {
			out, err := r.Render(ds, spec)
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			if !strings.HasPrefix(out.SVG, "<svg") || !strings.HasSuffix(out.SVG, "</svg>") {
				t.Error("output is not a complete SVG document")
			}
			if !strings.Contains(out.SVG, escapeXML(out.Spec.Title)) {
				t.Errorf("SVG missing title %q", out.Spec.Title)
			}
		})
	}
}

func TestRenderAllIsolatesFailures(t *testing.T) {
	ds := loadSales(t)
	r := NewRenderer(nil)

	specs := []*Spec{
		{Type: TypeBar, X: "region", Y: "revenue", Aggregate: "sum"},
		{Type: TypeScatter, X: "no_such_column", Y: "revenue"},
		{Type: TypePie, X: "product"},
	}
	results, errs := r.RenderAll(ds, specs)

	if results[0] == nil || errs[0] != nil {
		t.Errorf("chart 0 should succeed, err = %v", errs[0])
	}
	if results[1] != nil || errs[1] == nil {
		t.Error("chart 1 should fail")
	}
	if !IsRenderError(errs[1]) {
		t.Errorf("chart 1 error is not a RenderError: %v", errs[1])
	}
	if results[2] == nil || errs[2] != nil {
		t.Errorf("chart 2 should succeed despite chart 1 failing, err = %v", errs[2])
	}
}

func TestPNGExport(t *testing.T) {
	ds := loadSales(t)
	r := NewRenderer(nil)

	out, err := r.Render(ds, &Spec{Type: TypeBar, X: "region", Y: "revenue", Aggregate: "sum"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	data, err := out.PNG()
	if err != nil {
		t.Fatalf("PNG: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decoding png output: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != out.Width || bounds.Dy() != out.Height {
		t.Errorf("png is %dx%d, want %dx%d", bounds.Dx(), bounds.Dy(), out.Width, out.Height)
	}
}

func TestTitleize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"unit_sales", "Unit Sales"},
		{"revenue", "Revenue"},
		{"order-date", "Order Date"},
	}
	for _, tt := range tests {
		if got := titleize(tt.in); got != tt.want {
			t.Errorf("titleize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
