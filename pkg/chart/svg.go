// Copyright © 2026 Teradata Corporation - All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.

package chart

import (
	"fmt"
	"math"
	"strings"
)

// svgDoc accumulates SVG elements for one chart.
type svgDoc struct {
	style *StyleConfig
	buf   strings.Builder
}

func newSVGDoc(style *StyleConfig) *svgDoc {
	d := &svgDoc{style: style}
	fmt.Fprintf(&d.buf,
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		style.Width, style.Height, style.Width, style.Height)
	d.rect(0, 0, float64(style.Width), float64(style.Height), style.ColorBackground, "", 0)
	return d
}

func (d *svgDoc) String() string {
	return d.buf.String() + "</svg>"
}

func (d *svgDoc) rect(x, y, w, h float64, fill, stroke string, strokeWidth float64) {
	fmt.Fprintf(&d.buf, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"`, x, y, w, h, fill)
	if stroke != "" {
		fmt.Fprintf(&d.buf, ` stroke="%s" stroke-width="%.1f"`, stroke, strokeWidth)
	}
	d.buf.WriteString("/>")
}

func (d *svgDoc) line(x1, y1, x2, y2 float64, stroke string, width float64) {
	fmt.Fprintf(&d.buf,
		`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="%.1f"/>`,
		x1, y1, x2, y2, stroke, width)
}

func (d *svgDoc) circle(cx, cy, r float64, fill string, opacity float64) {
	fmt.Fprintf(&d.buf,
		`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s" fill-opacity="%.2f"/>`,
		cx, cy, r, fill, opacity)
}

func (d *svgDoc) polyline(pts []point, stroke string, width float64) {
	var b strings.Builder
	for i, p := range pts {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%.1f,%.1f", p.X, p.Y)
	}
	fmt.Fprintf(&d.buf, `<polyline points="%s" fill="none" stroke="%s" stroke-width="%.1f"/>`,
		b.String(), stroke, width)
}

func (d *svgDoc) path(def, fill string) {
	fmt.Fprintf(&d.buf, `<path d="%s" fill="%s" stroke="%s" stroke-width="1"/>`,
		def, fill, d.style.ColorBackground)
}

// text draws a string with the given anchor ("start", "middle", "end")
// and optional rotation around the anchor point.
func (d *svgDoc) text(x, y float64, s string, size int, fill, anchor string, rotate float64) {
	fmt.Fprintf(&d.buf,
		`<text x="%.1f" y="%.1f" font-family="%s" font-size="%d" fill="%s" text-anchor="%s"`,
		x, y, d.style.FontFamily, size, fill, anchor)
	if rotate != 0 {
		fmt.Fprintf(&d.buf, ` transform="rotate(%.1f %.1f %.1f)"`, rotate, x, y)
	}
	fmt.Fprintf(&d.buf, `>%s</text>`, escapeXML(s))
}

func escapeXML(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}

// truncateLabel shortens a label for tick rendering.
func truncateLabel(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 1 {
		return s[:max]
	}
	return s[:max-1] + "…"
}

// formatNumber renders an axis value compactly.
func formatNumber(v float64) string {
	av := math.Abs(v)
	switch {
	case av >= 1e9:
		return fmt.Sprintf("%.1fB", v/1e9)
	case av >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case av >= 1e4:
		return fmt.Sprintf("%.1fK", v/1e3)
	case av >= 100 || av == math.Trunc(av):
		return fmt.Sprintf("%.0f", v)
	case av >= 1:
		return fmt.Sprintf("%.1f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

// niceRange expands [lo, hi] to rounded bounds and picks a tick step.
func niceRange(lo, hi float64) (min, max, step float64) {
	if lo > 0 && lo < hi/3 {
		lo = 0 // bars and counts read better from a zero baseline
	}
	if hi < 0 && hi > lo/3 {
		hi = 0
	}
	if lo == hi {
		if lo == 0 {
			return 0, 1, 0.25
		}
		pad := math.Abs(lo) * 0.1
		lo, hi = lo-pad, hi+pad
	}

	span := hi - lo
	raw := span / 5
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	norm := raw / mag
	switch {
	case norm < 1.5:
		step = mag
	case norm < 3:
		step = 2 * mag
	case norm < 7:
		step = 5 * mag
	default:
		step = 10 * mag
	}
	min = math.Floor(lo/step) * step
	max = math.Ceil(hi/step) * step
	return min, max, step
}

// drawTitle places the chart title centered above the plot area.
func (d *svgDoc) drawTitle(title string) {
	d.text(float64(d.style.Width)/2, float64(d.style.MarginTop)-25,
		title, d.style.FontSizeTitle, d.style.ColorText, "middle", 0)
}

// drawYAxis draws the y axis line, tick labels, and horizontal
// gridlines for the given nice range. Returns a scale func mapping a
// value to a pixel y coordinate.
func (d *svgDoc) drawYAxis(min, max, step float64, label string) func(float64) float64 {
	px, py, pw, ph := d.style.plotArea()
	scale := func(v float64) float64 {
		return float64(py+ph) - (v-min)/(max-min)*float64(ph)
	}

	d.line(float64(px), float64(py), float64(px), float64(py+ph), d.style.ColorAxis, 1)
	for v := min; v <= max+step/2; v += step {
		y := scale(v)
		if v > min {
			d.line(float64(px), y, float64(px+pw), y, d.style.ColorGrid, 1)
		}
		d.text(float64(px)-8, y+4, formatNumber(v), d.style.FontSizeTick, d.style.ColorTextMuted, "end", 0)
	}
	if label != "" {
		d.text(18, float64(py)+float64(ph)/2, label, d.style.FontSizeLabel, d.style.ColorText, "middle", -90)
	}
	return scale
}

// drawXAxisLine draws the bottom axis line and the x axis label.
func (d *svgDoc) drawXAxisLine(label string) {
	px, py, pw, ph := d.style.plotArea()
	d.line(float64(px), float64(py+ph), float64(px+pw), float64(py+ph), d.style.ColorAxis, 1)
	if label != "" {
		d.text(float64(px)+float64(pw)/2, float64(d.style.Height)-12,
			label, d.style.FontSizeLabel, d.style.ColorText, "middle", 0)
	}
}

// drawCategoryTicks labels evenly spaced category slots along the x
// axis, rotating labels when they would collide.
func (d *svgDoc) drawCategoryTicks(labels []string) {
	px, py, pw, ph := d.style.plotArea()
	slot := float64(pw) / float64(len(labels))
	rotate := slot < 60
	for i, label := range labels {
		cx := float64(px) + slot*(float64(i)+0.5)
		ty := float64(py+ph) + 18
		label = truncateLabel(label, 14)
		if rotate {
			d.text(cx, ty, label, d.style.FontSizeTick, d.style.ColorTextMuted, "end", -40)
		} else {
			d.text(cx, ty, label, d.style.FontSizeTick, d.style.ColorTextMuted, "middle", 0)
		}
	}
}

// drawBar renders a vertical bar chart from an aggregated series.
func drawBar(d *svgDoc, spec *Spec, cats []category) {
	px, _, pw, _ := d.style.plotArea()

	lo, hi := 0.0, cats[0].Value
	for _, c := range cats {
		if c.Value < lo {
			lo = c.Value
		}
		if c.Value > hi {
			hi = c.Value
		}
	}
	min, max, step := niceRange(lo, hi)
	scale := d.drawYAxis(min, max, step, spec.YLabel)
	d.drawXAxisLine(spec.XLabel)

	slot := float64(pw) / float64(len(cats))
	barW := slot * 0.7
	zero := scale(math.Max(min, 0))
	color := d.style.seriesColor(TypeBar)
	for i, c := range cats {
		x := float64(px) + slot*float64(i) + (slot-barW)/2
		y := scale(c.Value)
		top, h := y, zero-y
		if h < 0 {
			top, h = zero, -h
		}
		d.rect(x, top, barW, h, color, "", 0)
	}

	labels := make([]string, len(cats))
	for i, c := range cats {
		labels[i] = c.Label
	}
	d.drawCategoryTicks(labels)
	d.drawTitle(spec.Title)
}

// drawLine renders an ordered series as a polyline with point markers.
func drawLine(d *svgDoc, spec *Spec, pts []point, tickLabels []string) {
	px, py, pw, ph := d.style.plotArea()

	loY, hiY := pts[0].Y, pts[0].Y
	loX, hiX := pts[0].X, pts[0].X
	for _, p := range pts {
		loY = math.Min(loY, p.Y)
		hiY = math.Max(hiY, p.Y)
		loX = math.Min(loX, p.X)
		hiX = math.Max(hiX, p.X)
	}
	min, max, step := niceRange(loY, hiY)
	scaleY := d.drawYAxis(min, max, step, spec.YLabel)
	d.drawXAxisLine(spec.XLabel)

	if hiX == loX {
		hiX = loX + 1
	}
	scaleX := func(v float64) float64 {
		return float64(px) + (v-loX)/(hiX-loX)*float64(pw)
	}

	scaled := make([]point, len(pts))
	for i, p := range pts {
		scaled[i] = point{X: scaleX(p.X), Y: scaleY(p.Y)}
	}
	color := d.style.seriesColor(TypeLine)
	d.polyline(scaled, color, 2)
	if len(scaled) <= 60 {
		for _, p := range scaled {
			d.circle(p.X, p.Y, 3, color, 1)
		}
	}

	if tickLabels != nil {
		// Label a subset of the categorical ticks to avoid collisions.
		every := (len(tickLabels) + 11) / 12
		for i, label := range tickLabels {
			if i%every != 0 {
				continue
			}
			d.text(scaleX(float64(i)), float64(py+ph)+18, truncateLabel(label, 12),
				d.style.FontSizeTick, d.style.ColorTextMuted, "middle", 0)
		}
	} else {
		for v := loX; v <= hiX; v += (hiX - loX) / 5 {
			d.text(scaleX(v), float64(py+ph)+18, formatNumber(v),
				d.style.FontSizeTick, d.style.ColorTextMuted, "middle", 0)
		}
	}
	d.drawTitle(spec.Title)
}

// drawScatter renders numeric x/y pairs as translucent dots.
func drawScatter(d *svgDoc, spec *Spec, pts []point) {
	px, py, pw, ph := d.style.plotArea()

	loY, hiY := pts[0].Y, pts[0].Y
	loX, hiX := pts[0].X, pts[0].X
	for _, p := range pts {
		loY = math.Min(loY, p.Y)
		hiY = math.Max(hiY, p.Y)
		loX = math.Min(loX, p.X)
		hiX = math.Max(hiX, p.X)
	}
	minY, maxY, stepY := niceRange(loY, hiY)
	scaleY := d.drawYAxis(minY, maxY, stepY, spec.YLabel)
	d.drawXAxisLine(spec.XLabel)

	minX, maxX, stepX := niceRange(loX, hiX)
	scaleX := func(v float64) float64 {
		return float64(px) + (v-minX)/(maxX-minX)*float64(pw)
	}
	for v := minX; v <= maxX+stepX/2; v += stepX {
		d.text(scaleX(v), float64(py+ph)+18, formatNumber(v),
			d.style.FontSizeTick, d.style.ColorTextMuted, "middle", 0)
	}

	color := d.style.seriesColor(TypeScatter)
	for _, p := range pts {
		d.circle(scaleX(p.X), scaleY(p.Y), 3.5, color, 0.6)
	}
	d.drawTitle(spec.Title)
}

// drawHistogram renders equal-width bins as adjoining bars.
func drawHistogram(d *svgDoc, spec *Spec, bins []histogramBin) {
	px, py, pw, ph := d.style.plotArea()

	hi := 0.0
	for _, b := range bins {
		hi = math.Max(hi, float64(b.Count))
	}
	min, max, step := niceRange(0, hi)
	scale := d.drawYAxis(min, max, step, orDefault(spec.YLabel, "Frequency"))
	d.drawXAxisLine(spec.XLabel)

	slot := float64(pw) / float64(len(bins))
	zero := scale(0)
	color := d.style.seriesColor(TypeHistogram)
	for i, b := range bins {
		x := float64(px) + slot*float64(i)
		y := scale(float64(b.Count))
		d.rect(x+0.5, y, slot-1, zero-y, color, "", 0)
	}

	// Bin edge labels on a subset of edges.
	every := (len(bins) + 7) / 8
	for i, b := range bins {
		if i%every != 0 {
			continue
		}
		d.text(float64(px)+slot*float64(i), float64(py+ph)+18, formatNumber(b.Low),
			d.style.FontSizeTick, d.style.ColorTextMuted, "middle", 0)
	}
	d.drawTitle(spec.Title)
}

// drawBox renders one box-and-whisker glyph per five-number summary.
func drawBox(d *svgDoc, spec *Spec, stats []boxStats) {
	px, _, pw, _ := d.style.plotArea()

	lo, hi := stats[0].Min, stats[0].Max
	for _, s := range stats {
		lo = math.Min(lo, s.Min)
		hi = math.Max(hi, s.Max)
	}
	min, max, step := niceRange(lo, hi)
	scale := d.drawYAxis(min, max, step, spec.YLabel)
	d.drawXAxisLine(spec.XLabel)

	slot := float64(pw) / float64(len(stats))
	boxW := math.Min(slot*0.5, 80)
	color := d.style.seriesColor(TypeBox)
	for i, s := range stats {
		cx := float64(px) + slot*(float64(i)+0.5)
		yMin, yQ1, yMed, yQ3, yMax := scale(s.Min), scale(s.Q1), scale(s.Median), scale(s.Q3), scale(s.Max)

		d.line(cx, yMax, cx, yQ3, d.style.ColorTextMuted, 1)
		d.line(cx, yQ1, cx, yMin, d.style.ColorTextMuted, 1)
		d.line(cx-boxW/4, yMax, cx+boxW/4, yMax, d.style.ColorTextMuted, 1)
		d.line(cx-boxW/4, yMin, cx+boxW/4, yMin, d.style.ColorTextMuted, 1)
		d.rect(cx-boxW/2, yQ3, boxW, yQ1-yQ3, color, d.style.ColorText, 1)
		d.line(cx-boxW/2, yMed, cx+boxW/2, yMed, d.style.ColorText, 2)
	}

	labels := make([]string, len(stats))
	for i, s := range stats {
		labels[i] = s.Label
	}
	d.drawCategoryTicks(labels)
	d.drawTitle(spec.Title)
}

// drawPie renders proportional slices with a legend on the right.
func drawPie(d *svgDoc, spec *Spec, cats []category) {
	total := 0.0
	for _, c := range cats {
		total += math.Max(c.Value, 0)
	}
	if total == 0 {
		total = 1
	}

	_, py, _, ph := d.style.plotArea()
	cx := float64(d.style.Width) * 0.38
	cy := float64(py) + float64(ph)/2
	r := math.Min(float64(ph)/2, float64(d.style.Width)*0.22)

	angle := -math.Pi / 2
	for i, c := range cats {
		frac := math.Max(c.Value, 0) / total
		end := angle + frac*2*math.Pi
		if frac >= 0.999 {
			d.circle(cx, cy, r, d.style.paletteColor(i), 1)
		} else if frac > 0 {
			large := 0
			if frac > 0.5 {
				large = 1
			}
			x1, y1 := cx+r*math.Cos(angle), cy+r*math.Sin(angle)
			x2, y2 := cx+r*math.Cos(end), cy+r*math.Sin(end)
			d.path(fmt.Sprintf("M%.1f,%.1f L%.1f,%.1f A%.1f,%.1f 0 %d 1 %.1f,%.1f Z",
				cx, cy, x1, y1, r, r, large, x2, y2), d.style.paletteColor(i))
		}
		angle = end
	}

	// Legend.
	lx := float64(d.style.Width) * 0.68
	ly := cy - float64(len(cats))*9
	for i, c := range cats {
		y := ly + float64(i)*18
		d.rect(lx, y-9, 11, 11, d.style.paletteColor(i), "", 0)
		pct := math.Max(c.Value, 0) / total * 100
		d.text(lx+17, y, fmt.Sprintf("%s (%.1f%%)", truncateLabel(c.Label, 18), pct),
			d.style.FontSizeTick, d.style.ColorText, "start", 0)
	}
	d.drawTitle(spec.Title)
}

// drawHeatmap renders a correlation matrix with a blue–white–red scale.
func drawHeatmap(d *svgDoc, spec *Spec, names []string, matrix [][]float64) {
	px, py, pw, ph := d.style.plotArea()
	n := len(names)
	cw := float64(pw) / float64(n)
	ch := float64(ph) / float64(n)

	for i := range matrix {
		for j := range matrix[i] {
			x := float64(px) + float64(j)*cw
			y := float64(py) + float64(i)*ch
			d.rect(x, y, cw, ch, correlationColor(matrix[i][j]), d.style.ColorBackground, 1)
			if cw > 44 {
				d.text(x+cw/2, y+ch/2+4, fmt.Sprintf("%.2f", matrix[i][j]),
					d.style.FontSizeTick, d.style.ColorText, "middle", 0)
			}
		}
	}

	for j, name := range names {
		d.text(float64(px)+float64(j)*cw+cw/2, float64(py+ph)+18,
			truncateLabel(name, 12), d.style.FontSizeTick, d.style.ColorTextMuted, "end", -40)
	}
	for i, name := range names {
		d.text(float64(px)-8, float64(py)+float64(i)*ch+ch/2+4,
			truncateLabel(name, 12), d.style.FontSizeTick, d.style.ColorTextMuted, "end", 0)
	}
	d.drawTitle(spec.Title)
}

// correlationColor maps [-1, 1] to blue (negative) through white (zero)
// to red (positive).
func correlationColor(v float64) string {
	v = math.Max(-1, math.Min(1, v))
	if v >= 0 {
		f := 1 - v
		return fmt.Sprintf("#%02x%02x%02x", 0xd9, int(0x30+f*(0xff-0x30)), int(0x2b+f*(0xff-0x2b)))
	}
	f := 1 + v
	return fmt.Sprintf("#%02x%02x%02x", int(0x2b+f*(0xff-0x2b)), int(0x5b+f*(0xff-0x5b)), 0xd9)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
