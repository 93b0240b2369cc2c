package chart

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutDonutLearningPositions(t *testing.T) {
	plan := LayoutDonut(LearningPositions(), DefaultDonutConfig())
	require.Len(t, plan.Slices, 3)

	wantStart := []float64{0, 216, 324}
	wantSweep := []float64{216, 108, 36}
	wantPct := []int{60, 30, 10}
	for i, s := range plan.Slices {
		assert.InDelta(t, wantStart[i], s.StartAngle, 1e-9, s.Label)
		assert.InDelta(t, wantSweep[i], s.Sweep, 1e-9, s.Label)
		assert.Equal(t, wantPct[i], s.Percent, s.Label)
	}
	assert.Equal(t, 360.0, plan.Slices[2].EndAngle)

	assert.Equal(t, "Sitting — 60%", plan.Legend[0].Text)
	assert.Equal(t, "Standing — 10%", plan.Legend[2].Text)
	assert.Equal(t, 90.0, plan.Legend[0].TextY)
	assert.Equal(t, 124.0, plan.Legend[1].TextY)
	assert.Equal(t, 80.0, plan.Legend[0].SwatchY)
	assert.Equal(t, 442.0, plan.Legend[0].TextX)

	require.Len(t, plan.Captions, 2)
	assert.Equal(t, "Study", plan.Captions[0].Text)
	assert.Equal(t, "positions", plan.Captions[1].Text)
}

func TestLayoutDonutSweepsCloseTheRing(t *testing.T) {
	datasets := [][]float64{
		{1, 1, 1},
		{0.1, 0.2, 0.3, 0.4},
		{7, 13, 29, 51, 3, 2},
		{5, 0, 5},
		{42},
	}
	for _, values := range datasets {
		plan := LayoutDonut(Input{Points: points(values...)}, DefaultDonutConfig())

		var sum float64
		for i, s := range plan.Slices {
			sum += s.Sweep
			if i > 0 {
				assert.Equal(t, plan.Slices[i-1].EndAngle, s.StartAngle, "values %v slice %d", values, i)
			}
		}
		assert.Equal(t, 0.0, plan.Slices[0].StartAngle)
		assert.Equal(t, 360.0, plan.Slices[len(plan.Slices)-1].EndAngle, "values %v", values)
		assert.InDelta(t, 360.0, sum, 1e-9, "values %v", values)
	}
}

func TestLayoutDonutZeroTotal(t *testing.T) {
	plan := LayoutDonut(Input{Points: points(0, 0)}, DefaultDonutConfig())
	for _, s := range plan.Slices {
		assert.Zero(t, s.Sweep)
		assert.Zero(t, s.Percent)
		assert.Zero(t, s.EndAngle)
		assert.NotContains(t, s.Path, "NaN")
	}

	svg := RenderDonut(Input{Points: points(0, 0)}, DefaultDonutConfig())
	assert.NotContains(t, svg, "NaN")
	assert.NotContains(t, svg, "Inf")
}

func TestArcPathLargeArcFlag(t *testing.T) {
	small := ArcPath(240, 170, 110, 62, 216, 324)
	assert.True(t, strings.HasPrefix(small, "M "))
	assert.True(t, strings.HasSuffix(small, " Z"))
	assert.Contains(t, small, "A 110 110 0 0 1 ")
	assert.Contains(t, small, "A 62 62 0 0 0 ")

	large := ArcPath(240, 170, 110, 62, 0, 216)
	assert.Contains(t, large, "A 110 110 0 1 1 ")
	assert.Contains(t, large, "A 62 62 0 1 0 ")

	// Exactly 180 is not a large arc.
	half := ArcPath(240, 170, 110, 62, 0, 180)
	assert.Contains(t, half, "A 110 110 0 0 1 ")
}

func TestArcPathStartsAtTwelveOClock(t *testing.T) {
	p := PolarToXY(240, 170, 110, 0)
	assert.InDelta(t, 240.0, p.X, 1e-9)
	assert.InDelta(t, 60.0, p.Y, 1e-9)

	q := PolarToXY(240, 170, 110, 90)
	assert.InDelta(t, 350.0, q.X, 1e-9, "90 degrees is 3 o'clock")
	assert.InDelta(t, 170.0, q.Y, 1e-9)
}

func TestArcPathFullRing(t *testing.T) {
	path := ArcPath(240, 170, 110, 62, 0, 360)
	assert.Equal(t, 4, strings.Count(path, "A "), "a full ring is drawn as two half arcs per radius")

	plan := LayoutDonut(Input{Points: points(42)}, DefaultDonutConfig())
	assert.Equal(t, path, plan.Slices[0].Path)
}

func TestDonutBindings(t *testing.T) {
	plan := LayoutDonut(LearningPositions(), DefaultDonutConfig())
	b := plan.Bindings()
	assert.Equal(t, Binding{
		BaseColor:   "#3b82f6",
		HoverColor:  "rgb(44, 97, 184)",
		TooltipText: "Sitting: 60%",
	}, b["slice-0"])
}

func TestDonutNamedColorPassesThrough(t *testing.T) {
	in := Input{Points: []DataPoint{{Label: "x", Value: 1, Color: "tomato"}}}
	plan := LayoutDonut(in, DefaultDonutConfig())
	assert.Equal(t, "tomato", plan.Slices[0].HoverColor)
}

func TestRenderDonutMarkup(t *testing.T) {
	doc := parseSVG(t, RenderDonut(LearningPositions(), DefaultDonutConfig()))

	assert.Equal(t, 3, doc.Find("path").Length())
	assert.Equal(t, 3, doc.Find("rect").Length(), "one legend swatch per slice")
	assert.Equal(t, 5, doc.Find("text").Length(), "two captions plus three legend labels")

	texts := doc.Find("text")
	assert.Equal(t, "Study", texts.Eq(0).Text())
	assert.Equal(t, "positions", texts.Eq(1).Text())

	slice := doc.Find("path").First()
	hover, _ := slice.Attr("data-hover-color")
	tip, _ := slice.Attr("data-tooltip")
	assert.Equal(t, "rgb(44, 97, 184)", hover)
	assert.Equal(t, "Sitting: 60%", tip)
}
