// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

// Package chart interprets declarative chart specifications against a
// dataset and renders them as SVG with PNG export. A specification is
// plain data (chart type + column mappings + options); there is no code
// execution path, so a hostile spec can at worst fail validation.
package chart

import (
	"fmt"
	"strings"

	"github.com/teradata-labs/vizflow/pkg/dataset"
)

// Type is a renderable chart type.
type Type string

const (
	TypeBar       Type = "bar"
	TypeLine      Type = "line"
	TypeScatter   Type = "scatter"
	TypeHistogram Type = "histogram"
	TypeBox       Type = "box"
	TypePie       Type = "pie"
	TypeHeatmap   Type = "heatmap"
)

// DefaultCategoryLimit caps how many categories a categorical axis shows.
const DefaultCategoryLimit = 15

// MaxPlotPoints caps how many raw points a scatter or line chart draws;
// larger datasets are sampled evenly.
const MaxPlotPoints = 1000

// Spec is a declarative chart specification, typically produced by the
// spec-generation step of the prompt chain.
type Spec struct {
	Type      Type   `json:"type"`
	X         string `json:"x,omitempty"`
	Y         string `json:"y,omitempty"`
	Aggregate string `json:"aggregate,omitempty"`
	Title     string `json:"title,omitempty"`
	XLabel    string `json:"x_label,omitempty"`
	YLabel    string `json:"y_label,omitempty"`
	Sort      string `json:"sort,omitempty"`
	Limit     int    `json:"limit,omitempty"`
}

// ParseType maps a chart-type label to a renderable Type. Labels the
// upstream model may emit but the renderer does not draw natively are
// normalized: violin becomes box, timeseries becomes line.
func ParseType(label string) (Type, error) {
	switch Type(strings.ToLower(strings.TrimSpace(label))) {
	case TypeBar:
		return TypeBar, nil
	case TypeLine, "timeseries":
		return TypeLine, nil
	case TypeScatter:
		return TypeScatter, nil
	case TypeHistogram:
		return TypeHistogram, nil
	case TypeBox, "boxplot", "violin":
		return TypeBox, nil
	case TypePie:
		return TypePie, nil
	case TypeHeatmap:
		return TypeHeatmap, nil
	default:
		return "", fmt.Errorf("unsupported chart type: %q", label)
	}
}

// Normalize fills in defaults and canonicalizes the type label.
func (s *Spec) Normalize() error {
	t, err := ParseType(string(s.Type))
	if err != nil {
		return err
	}
	s.Type = t

	s.Aggregate = strings.ToLower(strings.TrimSpace(s.Aggregate))
	s.Sort = strings.ToLower(strings.TrimSpace(s.Sort))
	if s.Limit <= 0 {
		s.Limit = DefaultCategoryLimit
	}
	if s.Title == "" {
		s.Title = defaultTitle(s)
	}
	return nil
}

// Validate checks the spec's column mappings against the dataset. All
// referenced columns must exist; each chart type has its own mapping
// requirements.
func (s *Spec) Validate(ds *dataset.Dataset) error {
	for _, col := range []string{s.X, s.Y} {
		if col != "" && !ds.HasColumn(col) {
			return fmt.Errorf("column %q not present in dataset", col)
		}
	}

	switch s.Aggregate {
	case "", "sum", "mean", "count":
	default:
		return fmt.Errorf("unsupported aggregate: %q", s.Aggregate)
	}

	switch s.Type {
	case TypeBar, TypePie:
		if s.X == "" {
			return fmt.Errorf("%s chart requires an x column", s.Type)
		}
	case TypeLine:
		if s.Y == "" {
			return fmt.Errorf("line chart requires a y column")
		}
	case TypeScatter:
		if s.X == "" || s.Y == "" {
			return fmt.Errorf("scatter chart requires x and y columns")
		}
		if err := requireNumeric(ds, s.X); err != nil {
			return err
		}
		if err := requireNumeric(ds, s.Y); err != nil {
			return err
		}
	case TypeHistogram:
		col := s.X
		if col == "" {
			col = s.Y
		}
		if col == "" {
			return fmt.Errorf("histogram requires a column")
		}
		if err := requireNumeric(ds, col); err != nil {
			return err
		}
	case TypeBox:
		if s.Y == "" {
			return fmt.Errorf("box chart requires a y column")
		}
		if err := requireNumeric(ds, s.Y); err != nil {
			return err
		}
	case TypeHeatmap:
		// Correlation heatmap over all numeric columns; needs two or more.
		if numericColumnCount(ds) < 2 {
			return fmt.Errorf("heatmap requires at least two numeric columns")
		}
	default:
		return fmt.Errorf("unsupported chart type: %q", s.Type)
	}
	return nil
}

func requireNumeric(ds *dataset.Dataset, name string) error {
	col, ok := ds.Column(name)
	if !ok {
		return fmt.Errorf("column %q not present in dataset", name)
	}
	if col.Type != dataset.ColumnNumeric {
		return fmt.Errorf("column %q is %s, numeric required", name, col.Type)
	}
	return nil
}

func numericColumnCount(ds *dataset.Dataset) int {
	n := 0
	for _, col := range ds.Columns {
		if col.Type == dataset.ColumnNumeric {
			n++
		}
	}
	return n
}

func defaultTitle(s *Spec) string {
	switch s.Type {
	case TypeHistogram:
		col := s.X
		if col == "" {
			col = s.Y
		}
		return fmt.Sprintf("Distribution of %s", titleize(col))
	case TypeScatter:
		return fmt.Sprintf("%s vs %s", titleize(s.X), titleize(s.Y))
	case TypeHeatmap:
		return "Correlation Heatmap"
	case TypePie:
		return fmt.Sprintf("Distribution of %s", titleize(s.X))
	default:
		if s.X != "" && s.Y != "" {
			return fmt.Sprintf("%s by %s", titleize(s.Y), titleize(s.X))
		}
		if s.Y != "" {
			return fmt.Sprintf("Trend of %s", titleize(s.Y))
		}
		return titleize(s.X)
	}
}

// titleize turns a column name like unit_sales into "Unit Sales".
func titleize(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
