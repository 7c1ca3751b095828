// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package chart

import (
	"errors"
	"fmt"

	"github.com/teradata-labs/vizflow/pkg/dataset"
)

// RenderError wraps a failure to interpret or draw one chart spec. A
// failing chart never aborts its siblings; callers collect RenderErrors
// per slot.
type RenderError struct {
	ChartType Type
	Title     string
	Err       error
}

func (e *RenderError) Error() string {
	if e.Title != "" {
		return fmt.Sprintf("render %s chart %q: %v", e.ChartType, e.Title, e.Err)
	}
	return fmt.Sprintf("render %s chart: %v", e.ChartType, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// IsRenderError reports whether err is (or wraps) a RenderError.
func IsRenderError(err error) bool {
	var re *RenderError
	return errors.As(err, &re)
}

// Rendered is one successfully rendered chart.
type Rendered struct {
	Spec   *Spec
	SVG    string
	Width  int
	Height int
}

// Renderer interprets chart specs against datasets.
type Renderer struct {
	style *StyleConfig
}

// NewRenderer returns a renderer with the given style, or the default
// style when nil.
func NewRenderer(style *StyleConfig) *Renderer {
	if style == nil {
		style = DefaultStyleConfig()
	}
	return &Renderer{style: style}
}

// Render interprets one spec against the dataset and produces an SVG
// document. The spec is normalized and validated first; any failure is
// returned as a RenderError.
func (r *Renderer) Render(ds *dataset.Dataset, spec *Spec) (*Rendered, error) {
	fail := func(err error) (*Rendered, error) {
		return nil, &RenderError{ChartType: spec.Type, Title: spec.Title, Err: err}
	}

	if err := spec.Normalize(); err != nil {
		return fail(err)
	}
	if err := spec.Validate(ds); err != nil {
		return fail(err)
	}

	doc := newSVGDoc(r.style)
	switch spec.Type {
	case TypeBar:
		cats, err := categoricalSeries(ds, spec)
		if err != nil {
			return fail(err)
		}
		drawBar(doc, spec, cats)
	case TypePie:
		cats, err := categoricalSeries(ds, spec)
		if err != nil {
			return fail(err)
		}
		drawPie(doc, spec, cats)
	case TypeLine:
		pts, labels, err := lineSeries(ds, spec)
		if err != nil {
			return fail(err)
		}
		drawLine(doc, spec, pts, labels)
	case TypeScatter:
		pts, err := numericPairs(ds, spec.X, spec.Y)
		if err != nil {
			return fail(err)
		}
		drawScatter(doc, spec, pts)
	case TypeHistogram:
		col := spec.X
		if col == "" {
			col = spec.Y
		}
		bins, err := histogramBins(ds.Floats(col))
		if err != nil {
			return fail(err)
		}
		drawHistogram(doc, spec, bins)
	case TypeBox:
		stats, err := computeBoxStats(ds, spec)
		if err != nil {
			return fail(err)
		}
		drawBox(doc, spec, stats)
	case TypeHeatmap:
		names, matrix, err := correlationMatrix(ds)
		if err != nil {
			return fail(err)
		}
		drawHeatmap(doc, spec, names, matrix)
	default:
		return fail(fmt.Errorf("unsupported chart type: %q", spec.Type))
	}

	return &Rendered{
		Spec:   spec,
		SVG:    doc.String(),
		Width:  r.style.Width,
		Height: r.style.Height,
	}, nil
}

// RenderAll renders each spec independently. Results and errors are
// positional: exactly one of results[i], errs[i] is set for each input.
func (r *Renderer) RenderAll(ds *dataset.Dataset, specs []*Spec) (results []*Rendered, errs []error) {
	results = make([]*Rendered, len(specs))
	errs = make([]error, len(specs))
	for i, spec := range specs {
		results[i], errs[i] = r.Render(ds, spec)
	}
	return results, errs
}
