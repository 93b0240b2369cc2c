package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTooltipPositioning(t *testing.T) {
	tip := NewTooltip(func() Rect { return Rect{Left: 20, Top: 30} })

	tip.Show("hello", 100, 200)
	assert.Equal(t, TooltipState{Text: "hello", Left: 92, Top: 182, Visible: true}, tip.State())

	tip.Move(150, 210)
	assert.Equal(t, TooltipState{Text: "hello", Left: 142, Top: 192, Visible: true}, tip.State())

	tip.Hide()
	st := tip.State()
	assert.False(t, st.Visible)
	assert.Equal(t, "hello", st.Text, "text stays until the next show")
}

func TestTooltipNilBounds(t *testing.T) {
	tip := NewTooltip(nil)
	tip.Show("x", 10, 10)
	assert.Equal(t, 22.0, tip.State().Left)
	assert.Equal(t, 22.0, tip.State().Top)
}

func TestHoverControllerBar(t *testing.T) {
	plan := LayoutBars(LifeBalance(), DefaultBarConfig())
	bounds := Rect{Left: 5, Top: 5}
	h := NewHoverController(BindingMap(plan.Bindings()), NewTooltip(func() Rect { return bounds }))

	before := map[string]string{}
	for _, b := range plan.Bars {
		before[b.ID] = h.Fill(b.ID)
	}

	u, ok := h.OnEnter("bar-0", Point{X: 50, Y: 60})
	require.True(t, ok)
	assert.Equal(t, "#486de5ff", u.Fill)
	assert.Equal(t, TooltipState{Text: "School 🏫: 35% of my life", Left: 57, Top: 67, Visible: true}, u.Tooltip)

	for _, b := range plan.Bars[1:] {
		assert.Equal(t, before[b.ID], h.Fill(b.ID), "entering bar-0 must not touch %s", b.ID)
	}

	u, ok = h.OnMove("bar-0", Point{X: 70, Y: 80})
	require.True(t, ok)
	assert.Empty(t, u.Fill, "move changes position only")
	assert.Equal(t, 77.0, u.Tooltip.Left)
	assert.Equal(t, "School 🏫: 35% of my life", u.Tooltip.Text)

	u, ok = h.OnLeave("bar-0")
	require.True(t, ok)
	assert.Equal(t, "#dc2626", u.Fill)
	assert.Equal(t, "#dc2626", h.Fill("bar-0"))
	assert.False(t, h.Tooltip().Visible)
	assert.Empty(t, h.Active())
}

func TestHoverControllerDonut(t *testing.T) {
	plan := LayoutDonut(LearningPositions(), DefaultDonutConfig())
	h := NewHoverController(BindingMap(plan.Bindings()), nil)

	u, ok := h.OnEnter("slice-1", Point{})
	require.True(t, ok)
	assert.Equal(t, "rgb(183, 118, 8)", u.Fill)
	assert.Equal(t, "Lying down: 30%", u.Tooltip.Text)

	_, _ = h.OnLeave("slice-1")
	assert.Equal(t, "#f59e0b", h.Fill("slice-1"))
}

func TestHoverControllerIgnoresUnknownAndStaleShapes(t *testing.T) {
	plan := LayoutBars(LifeBalance(), DefaultBarConfig())
	h := NewHoverController(BindingMap(plan.Bindings()), nil)

	_, ok := h.OnEnter("bar-99", Point{})
	assert.False(t, ok)
	_, ok = h.OnLeave("nope")
	assert.False(t, ok)

	_, ok = h.OnMove("bar-1", Point{X: 1, Y: 1})
	assert.False(t, ok, "moving over a shape that was never entered is ignored")

	h.OnEnter("bar-2", Point{})
	_, ok = h.OnMove("bar-1", Point{})
	assert.False(t, ok)
	assert.Equal(t, "bar-2", h.Active())
}

func TestHoverControllerEnterWithoutLeave(t *testing.T) {
	plan := LayoutBars(LifeBalance(), DefaultBarConfig())
	bind := plan.Bindings()
	h := NewHoverController(BindingMap(bind), nil)

	u, ok := h.OnEnter("bar-2", Point{})
	require.True(t, ok)
	assert.Nil(t, u.Restore)

	u, ok = h.OnEnter("bar-0", Point{X: 10, Y: 10})
	require.True(t, ok)
	require.NotNil(t, u.Restore)
	assert.Equal(t, ShapeFill{ShapeID: "bar-2", Fill: bind["bar-2"].BaseColor}, *u.Restore)
	assert.Equal(t, bind["bar-2"].BaseColor, h.Fill("bar-2"))
	assert.Equal(t, "#486de5ff", h.Fill("bar-0"))
	assert.Equal(t, "bar-0", h.Active())

	// The stale leave for bar-2 arrives late and must not hide bar-0's tooltip.
	_, ok = h.OnLeave("bar-2")
	require.True(t, ok)
	assert.True(t, h.Tooltip().Visible)
	assert.Equal(t, bind["bar-0"].TooltipText, h.Tooltip().Text)
	assert.Equal(t, "bar-0", h.Active())

	u, ok = h.OnEnter("bar-0", Point{})
	require.True(t, ok)
	assert.Nil(t, u.Restore, "re-entering the active shape restores nothing")
}
