// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package chart

// StyleConfig holds the design tokens applied to every rendered chart.
type StyleConfig struct {
	Width  int
	Height int

	MarginTop    int
	MarginRight  int
	MarginBottom int
	MarginLeft   int

	ColorBackground string
	ColorText       string
	ColorTextMuted  string
	ColorAxis       string
	ColorGrid       string

	// SeriesColors maps chart types to their primary color.
	SeriesColors map[Type]string

	// Palette colors multi-series charts (pie slices, grouped boxes).
	Palette []string

	FontFamily    string
	FontSizeTitle int
	FontSizeLabel int
	FontSizeTick  int
}

// DefaultStyleConfig returns a clean, high data-ink style: white
// background, horizontal gridlines only, one saturated color per chart
// type.
func DefaultStyleConfig() *StyleConfig {
	return &StyleConfig{
		Width:  800,
		Height: 500,

		MarginTop:    60,
		MarginRight:  30,
		MarginBottom: 70,
		MarginLeft:   70,

		ColorBackground: "#ffffff",
		ColorText:       "#2c3e50",
		ColorTextMuted:  "#7f8c8d",
		ColorAxis:       "#cccccc",
		ColorGrid:       "#e8e8e8",

		SeriesColors: map[Type]string{
			TypeBar:       "#3498db", // blue
			TypeLine:      "#e74c3c", // red
			TypeScatter:   "#2ecc71", // green
			TypeHistogram: "#9b59b6", // purple
			TypeBox:       "#e67e22", // orange
			TypePie:       "#3498db",
			TypeHeatmap:   "#3498db",
		},
		Palette: []string{
			"#3498db",
			"#e74c3c",
			"#2ecc71",
			"#9b59b6",
			"#e67e22",
			"#1abc9c",
			"#f1c40f",
			"#34495e",
			"#e91e63",
			"#95a5a6",
		},

		FontFamily:    "Arial, sans-serif",
		FontSizeTitle: 18,
		FontSizeLabel: 13,
		FontSizeTick:  11,
	}
}

// seriesColor returns the primary color for a chart type.
func (s *StyleConfig) seriesColor(t Type) string {
	if c, ok := s.SeriesColors[t]; ok {
		return c
	}
	return s.Palette[0]
}

// paletteColor returns the i-th palette color, wrapping around.
func (s *StyleConfig) paletteColor(i int) string {
	return s.Palette[i%len(s.Palette)]
}

// plotArea returns the usable drawing area.
func (s *StyleConfig) plotArea() (x, y, w, h int) {
	return s.MarginLeft, s.MarginTop,
		s.Width - s.MarginLeft - s.MarginRight,
		s.Height - s.MarginTop - s.MarginBottom
}
