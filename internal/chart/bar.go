package chart

import (
	"fmt"
	"math"
	"strconv"

	"github.com/pkg/errors"
)

// ════════════════════════════════════════════════════════════════════
// Bar Chart (Vertical, sorted)
// ════════════════════════════════════════════════════════════════════

// BarConfig holds rendering parameters for the bar chart.
type BarConfig struct {
	Width          int     `json:"width" mapstructure:"width"`     // canvas width (default: 720)
	Height         int     `json:"height" mapstructure:"height"`   // canvas height (default: 260)
	Padding        float64 `json:"padding" mapstructure:"padding"` // outer padding on every side (default: 36)
	Gap            float64 `json:"gap" mapstructure:"gap"`         // space between bars (default: 12)
	HighlightColor string  `json:"highlightColor" mapstructure:"highlight_color"`
	AxisColor      string  `json:"axisColor" mapstructure:"axis_color"`
	FontSize       int     `json:"fontSize" mapstructure:"font_size"`
}

// DefaultBarConfig returns the standard bar chart geometry.
func DefaultBarConfig() BarConfig {
	return BarConfig{
		Width:          720,
		Height:         260,
		Padding:        36,
		Gap:            12,
		HighlightColor: "#486de5ff",
		AxisColor:      "black",
		FontSize:       12,
	}
}

func (c BarConfig) withDefaults() BarConfig {
	d := DefaultBarConfig()
	if c.Width <= 0 {
		c.Width = d.Width
	}
	if c.Height <= 0 {
		c.Height = d.Height
	}
	if c.Padding <= 0 {
		c.Padding = d.Padding
	}
	if c.Gap < 0 {
		c.Gap = d.Gap
	}
	if c.HighlightColor == "" {
		c.HighlightColor = d.HighlightColor
	}
	if c.AxisColor == "" {
		c.AxisColor = d.AxisColor
	}
	if c.FontSize <= 0 {
		c.FontSize = d.FontSize
	}
	return c
}

// ErrNoDrawableArea is returned by CheckFit when padding and gaps leave no
// room for the bars.
var ErrNoDrawableArea = errors.New("bar chart has no drawable area")

// CheckFit reports whether n bars fit on the canvas once defaults apply.
func (c BarConfig) CheckFit(n int) error {
	c = c.withDefaults()
	if float64(c.Height)-2*c.Padding <= 0 {
		return errors.Wrapf(ErrNoDrawableArea, "height %d with padding %g", c.Height, c.Padding)
	}
	if n > 0 && c.rawBarWidth(n) <= 0 {
		return errors.Wrapf(ErrNoDrawableArea, "width %d with padding %g and gap %g for %d bars",
			c.Width, c.Padding, c.Gap, n)
	}
	return nil
}

// chartHeight is the drawable height between top padding and the axis.
// It never goes below zero.
func (c BarConfig) chartHeight() float64 {
	return math.Max(0, float64(c.Height)-2*c.Padding)
}

func (c BarConfig) rawBarWidth(n int) float64 {
	inner := float64(c.Width) - 2*c.Padding
	return (inner - c.Gap*float64(n-1)) / float64(n)
}

// baseline is the y coordinate of the axis line.
func (c BarConfig) baseline() float64 {
	return float64(c.Height) - c.Padding
}

// Bar is one laid-out bar.
type Bar struct {
	ID      string  `json:"id"`
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Percent int     `json:"percent"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Color   string  `json:"color"`
}

// Center returns the x coordinate of the bar's vertical center line.
func (b Bar) Center() float64 {
	return b.X + b.Width/2
}

// Line is a straight segment.
type Line struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// BarPlan is the complete, host-independent layout of a bar chart.
type BarPlan struct {
	Title    string    `json:"title,omitempty"`
	Config   BarConfig `json:"config"`
	Total    float64   `json:"total"`
	MaxValue float64   `json:"maxValue"`
	BarWidth float64   `json:"barWidth"`
	Axis     Line      `json:"axis"`
	Bars     []Bar     `json:"bars"`
}

// LayoutBars sorts the input by value and lays the bars out left to right.
func LayoutBars(in Input, cfg BarConfig) BarPlan {
	cfg = cfg.withDefaults()
	points := SortDescending(in.Points)

	plan := BarPlan{
		Title:    in.Title,
		Config:   cfg,
		Total:    Total(points),
		MaxValue: MaxValue(points),
		Axis: Line{
			X1: cfg.Padding, Y1: cfg.baseline(),
			X2: float64(cfg.Width) - cfg.Padding, Y2: cfg.baseline(),
		},
	}

	n := len(points)
	if n == 0 {
		return plan
	}
	plan.BarWidth = math.Max(0, cfg.rawBarWidth(n))

	plan.Bars = make([]Bar, n)
	for i, p := range points {
		var h float64
		if plan.MaxValue > 0 {
			h = p.Value / plan.MaxValue * cfg.chartHeight()
		}
		plan.Bars[i] = Bar{
			ID:      shapeID("bar", i),
			Label:   p.Label,
			Value:   p.Value,
			Percent: Percent(p.Value, plan.Total),
			X:       cfg.Padding + float64(i)*(plan.BarWidth+cfg.Gap),
			Y:       cfg.baseline() - h,
			Width:   plan.BarWidth,
			Height:  h,
			Color:   p.Color,
		}
	}
	return plan
}

// TooltipText is the hover text for a bar.
func (b Bar) TooltipText() string {
	return fmt.Sprintf("%s: %d%% of my life", b.Label, b.Percent)
}

// Bindings returns the hover behaviour of every bar keyed by shape id.
func (p BarPlan) Bindings() map[string]Binding {
	out := make(map[string]Binding, len(p.Bars))
	for _, b := range p.Bars {
		out[b.ID] = Binding{
			BaseColor:   b.Color,
			HoverColor:  p.Config.HighlightColor,
			TooltipText: b.TooltipText(),
		}
	}
	return out
}

// Draw emits the chart into b and returns the root svg shape.
func (p BarPlan) Draw(b SceneBuilder) ShapeHandle {
	cfg := p.Config
	svg := NewCanvas(b, cfg.Width, cfg.Height)
	if p.Title != "" {
		b.SetAttribute(svg, "aria-label", p.Title)
	}
	fontSize := strconv.Itoa(cfg.FontSize)

	axis := b.CreateShape(KindLine,
		A("x1", num(p.Axis.X1)), A("y1", num(p.Axis.Y1)),
		A("x2", num(p.Axis.X2)), A("y2", num(p.Axis.Y2)),
		A("stroke", cfg.AxisColor), A("stroke-width", "1"),
	)
	b.AppendChild(svg, axis)

	bindings := p.Bindings()
	for _, bar := range p.Bars {
		rect := b.CreateShape(KindRect,
			A("x", num(bar.X)), A("y", num(bar.Y)),
			A("width", num(bar.Width)), A("height", num(bar.Height)),
			A("fill", bar.Color),
			A("style", "cursor: pointer"),
		)
		bindAttrs(b, rect, bar.ID, bindings[bar.ID])
		b.AppendChild(svg, rect)

		pct := b.CreateShape(KindText,
			A("x", num(bar.Center())), A("y", num(bar.Y-8)),
			A("text-anchor", "middle"), A("font-size", fontSize),
		)
		b.SetText(pct, fmt.Sprintf("%d%%", bar.Percent))
		b.AppendChild(svg, pct)

		label := b.CreateShape(KindText,
			A("x", num(bar.Center())), A("y", num(cfg.baseline()+18)),
			A("text-anchor", "middle"), A("font-size", fontSize),
		)
		b.SetText(label, bar.Label)
		b.AppendChild(svg, label)
	}
	return svg
}

// bindAttrs records a shape's hover binding as data attributes so the page
// script can reproduce the behaviour offline.
func bindAttrs(b SceneBuilder, h ShapeHandle, id string, bind Binding) {
	b.SetAttribute(h, "data-shape", id)
	b.SetAttribute(h, "data-base-color", bind.BaseColor)
	b.SetAttribute(h, "data-hover-color", bind.HoverColor)
	b.SetAttribute(h, "data-tooltip", bind.TooltipText)
}

// RenderBar lays out and serializes a bar chart in one step.
func RenderBar(in Input, cfg BarConfig) string {
	doc := NewDocument()
	root := LayoutBars(in, cfg).Draw(doc)
	return doc.SVG(root)
}
