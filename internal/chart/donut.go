package chart

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ════════════════════════════════════════════════════════════════════
// Donut Chart
// ════════════════════════════════════════════════════════════════════

// DonutConfig holds rendering parameters for the donut chart.
type DonutConfig struct {
	Width        int       `json:"width" mapstructure:"width"`   // canvas width (default: 720)
	Height       int       `json:"height" mapstructure:"height"` // canvas height (default: 320)
	CenterX      float64   `json:"centerX" mapstructure:"center_x"`
	CenterY      float64   `json:"centerY" mapstructure:"center_y"`
	OuterRadius  float64   `json:"outerRadius" mapstructure:"outer_radius"`
	InnerRadius  float64   `json:"innerRadius" mapstructure:"inner_radius"`
	LegendX      float64   `json:"legendX" mapstructure:"legend_x"`
	LegendY      float64   `json:"legendY" mapstructure:"legend_y"`
	LegendGap    float64   `json:"legendGap" mapstructure:"legend_gap"` // vertical distance between legend rows
	StrokeColor  string    `json:"strokeColor" mapstructure:"stroke_color"`
	DarkenFactor float64   `json:"darkenFactor" mapstructure:"darken_factor"`
	Captions     [2]string `json:"captions" mapstructure:"captions"`
}

// DefaultDonutConfig returns the standard donut geometry.
func DefaultDonutConfig() DonutConfig {
	return DonutConfig{
		Width:        720,
		Height:       320,
		CenterX:      240,
		CenterY:      170,
		OuterRadius:  110,
		InnerRadius:  62,
		LegendX:      420,
		LegendY:      90,
		LegendGap:    34,
		StrokeColor:  "#fff",
		DarkenFactor: DarkenFactor,
		Captions:     [2]string{"Study", "positions"},
	}
}

func (c DonutConfig) withDefaults() DonutConfig {
	d := DefaultDonutConfig()
	if c.Width <= 0 {
		c.Width = d.Width
	}
	if c.Height <= 0 {
		c.Height = d.Height
	}
	if c.CenterX <= 0 && c.CenterY <= 0 {
		c.CenterX, c.CenterY = d.CenterX, d.CenterY
	}
	if c.OuterRadius <= 0 {
		c.OuterRadius = d.OuterRadius
	}
	if c.InnerRadius <= 0 || c.InnerRadius >= c.OuterRadius {
		c.InnerRadius = c.OuterRadius * d.InnerRadius / d.OuterRadius
	}
	if c.LegendX <= 0 && c.LegendY <= 0 {
		c.LegendX, c.LegendY = d.LegendX, d.LegendY
	}
	if c.LegendGap <= 0 {
		c.LegendGap = d.LegendGap
	}
	if c.StrokeColor == "" {
		c.StrokeColor = d.StrokeColor
	}
	if c.DarkenFactor <= 0 || c.DarkenFactor > 1 {
		c.DarkenFactor = d.DarkenFactor
	}
	if c.Captions == ([2]string{}) {
		c.Captions = d.Captions
	}
	return c
}

// Slice is one laid-out annulus wedge. Angles are in degrees, clockwise from
// 12 o'clock.
type Slice struct {
	ID         string  `json:"id"`
	Label      string  `json:"label"`
	Value      float64 `json:"value"`
	Percent    int     `json:"percent"`
	StartAngle float64 `json:"startAngle"`
	EndAngle   float64 `json:"endAngle"`
	Sweep      float64 `json:"sweep"`
	Path       string  `json:"path"`
	Color      string  `json:"color"`
	HoverColor string  `json:"hoverColor"`
}

// TooltipText is the hover text for a slice.
func (s Slice) TooltipText() string {
	return fmt.Sprintf("%s: %d%%", s.Label, s.Percent)
}

// LegendRow is one swatch plus label to the right of the donut.
type LegendRow struct {
	SwatchX float64 `json:"swatchX"`
	SwatchY float64 `json:"swatchY"`
	TextX   float64 `json:"textX"`
	TextY   float64 `json:"textY"`
	Text    string  `json:"text"`
	Color   string  `json:"color"`
}

// Caption is a line of text centered in the donut hole.
type Caption struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Text     string  `json:"text"`
	FontSize int     `json:"fontSize"`
	Fill     string  `json:"fill"`
}

// DonutPlan is the complete, host-independent layout of a donut chart.
type DonutPlan struct {
	Title    string      `json:"title,omitempty"`
	Config   DonutConfig `json:"config"`
	Total    float64     `json:"total"`
	Slices   []Slice     `json:"slices"`
	Legend   []LegendRow `json:"legend"`
	Captions []Caption   `json:"captions"`
}

const swatchSize = 14

// LayoutDonut places the slices consecutively around the ring, keeping the
// input order.
func LayoutDonut(in Input, cfg DonutConfig) DonutPlan {
	cfg = cfg.withDefaults()
	plan := DonutPlan{
		Title:  in.Title,
		Config: cfg,
		Total:  Total(in.Points),
	}

	plan.Captions = []Caption{
		{X: cfg.CenterX, Y: cfg.CenterY - 2, Text: cfg.Captions[0], FontSize: 14, Fill: "rgba(31,31,29,0.75)"},
		{X: cfg.CenterX, Y: cfg.CenterY + 18, Text: cfg.Captions[1], FontSize: 12, Fill: "rgba(31,31,29,0.55)"},
	}

	// End angles come from the running sum so the last slice closes at
	// exactly 360 and every start equals the previous end.
	var cum, angle float64
	for i, p := range in.Points {
		cum += p.Value
		end := 0.0
		switch {
		case plan.Total <= 0:
		case cum >= plan.Total:
			end = 360
		default:
			end = cum * 360 / plan.Total
		}
		hover, err := Darken(p.Color, cfg.DarkenFactor)
		if err != nil {
			hover = p.Color
		}
		s := Slice{
			ID:         shapeID("slice", i),
			Label:      p.Label,
			Value:      p.Value,
			Percent:    Percent(p.Value, plan.Total),
			StartAngle: angle,
			EndAngle:   end,
			Sweep:      end - angle,
			Color:      p.Color,
			HoverColor: hover,
		}
		s.Path = ArcPath(cfg.CenterX, cfg.CenterY, cfg.OuterRadius, cfg.InnerRadius, s.StartAngle, s.EndAngle)
		plan.Slices = append(plan.Slices, s)

		rowY := cfg.LegendY + float64(i)*cfg.LegendGap
		plan.Legend = append(plan.Legend, LegendRow{
			SwatchX: cfg.LegendX,
			SwatchY: rowY - 10,
			TextX:   cfg.LegendX + 22,
			TextY:   rowY,
			Text:    fmt.Sprintf("%s — %d%%", p.Label, s.Percent),
			Color:   p.Color,
		})
		angle = end
	}
	return plan
}

// Bindings returns the hover behaviour of every slice keyed by shape id.
func (p DonutPlan) Bindings() map[string]Binding {
	out := make(map[string]Binding, len(p.Slices))
	for _, s := range p.Slices {
		out[s.ID] = Binding{
			BaseColor:   s.Color,
			HoverColor:  s.HoverColor,
			TooltipText: s.TooltipText(),
		}
	}
	return out
}

// Draw emits the chart into b and returns the root svg shape.
func (p DonutPlan) Draw(b SceneBuilder) ShapeHandle {
	cfg := p.Config
	svg := NewCanvas(b, cfg.Width, cfg.Height)
	if p.Title != "" {
		b.SetAttribute(svg, "aria-label", p.Title)
	}

	for _, c := range p.Captions {
		t := b.CreateShape(KindText,
			A("x", num(c.X)), A("y", num(c.Y)),
			A("text-anchor", "middle"),
			A("font-size", strconv.Itoa(c.FontSize)),
			A("fill", c.Fill),
		)
		b.SetText(t, c.Text)
		b.AppendChild(svg, t)
	}

	bindings := p.Bindings()
	for i, s := range p.Slices {
		path := b.CreateShape(KindPath,
			A("d", s.Path),
			A("fill", s.Color),
			A("stroke", cfg.StrokeColor),
			A("stroke-width", "2"),
			A("style", "cursor: pointer"),
		)
		bindAttrs(b, path, s.ID, bindings[s.ID])
		b.AppendChild(svg, path)

		row := p.Legend[i]
		dot := b.CreateShape(KindRect,
			A("x", num(row.SwatchX)), A("y", num(row.SwatchY)),
			A("width", strconv.Itoa(swatchSize)), A("height", strconv.Itoa(swatchSize)),
			A("rx", "4"), A("fill", row.Color),
		)
		b.AppendChild(svg, dot)

		text := b.CreateShape(KindText,
			A("x", num(row.TextX)), A("y", num(row.TextY)),
			A("font-size", "14"), A("fill", "rgba(31,31,29,0.8)"),
		)
		b.SetText(text, row.Text)
		b.AppendChild(svg, text)
	}
	return svg
}

// RenderDonut lays out and serializes a donut chart in one step.
func RenderDonut(in Input, cfg DonutConfig) string {
	doc := NewDocument()
	root := LayoutDonut(in, cfg).Draw(doc)
	return doc.SVG(root)
}

// ════════════════════════════════════════════════════════════════════
// Arc Geometry
// ════════════════════════════════════════════════════════════════════

// PolarToXY converts an angle in degrees (0 at 12 o'clock, clockwise) and a
// radius into canvas coordinates.
func PolarToXY(cx, cy, r, angleDeg float64) Point {
	a := (angleDeg - 90) * math.Pi / 180
	return Point{X: cx + r*math.Cos(a), Y: cy + r*math.Sin(a)}
}

// ArcPath returns the path of an annulus wedge: outer arc from start to end,
// a line to the inner radius, the inner arc back to start, closed. A full
// ring is split at its midpoint, since an arc whose endpoints coincide draws
// nothing.
func ArcPath(cx, cy, rOuter, rInner, start, end float64) string {
	sweep := end - start
	if sweep >= 360 {
		mid := start + sweep/2
		return joinPath(
			moveTo(PolarToXY(cx, cy, rOuter, start)),
			arcTo(rOuter, false, true, PolarToXY(cx, cy, rOuter, mid)),
			arcTo(rOuter, false, true, PolarToXY(cx, cy, rOuter, end)),
			lineTo(PolarToXY(cx, cy, rInner, end)),
			arcTo(rInner, false, false, PolarToXY(cx, cy, rInner, mid)),
			arcTo(rInner, false, false, PolarToXY(cx, cy, rInner, start)),
			"Z",
		)
	}
	large := sweep > 180
	return joinPath(
		moveTo(PolarToXY(cx, cy, rOuter, start)),
		arcTo(rOuter, large, true, PolarToXY(cx, cy, rOuter, end)),
		lineTo(PolarToXY(cx, cy, rInner, end)),
		arcTo(rInner, large, false, PolarToXY(cx, cy, rInner, start)),
		"Z",
	)
}

func moveTo(p Point) string { return "M " + num(p.X) + " " + num(p.Y) }
func lineTo(p Point) string { return "L " + num(p.X) + " " + num(p.Y) }

func arcTo(r float64, large, clockwise bool, p Point) string {
	return fmt.Sprintf("A %s %s 0 %d %d %s %s", num(r), num(r), flag(large), flag(clockwise), num(p.X), num(p.Y))
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}

func joinPath(parts ...string) string {
	return strings.Join(parts, " ")
}
