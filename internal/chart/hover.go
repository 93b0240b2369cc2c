package chart

// Binding describes how a shape reacts to the pointer.
type Binding struct {
	BaseColor   string `json:"baseColor"`
	HoverColor  string `json:"hoverColor"`
	TooltipText string `json:"tooltip"`
}

// Update is the visible result of one hover event.
type Update struct {
	ShapeID string       `json:"shape"`
	Fill    string       `json:"fill,omitempty"`
	Tooltip TooltipState `json:"tooltip"`

	// Restore is set when entering a shape un-highlights another that never
	// saw its leave event.
	Restore *ShapeFill `json:"restore,omitempty"`
}

// ShapeFill sets the fill of one shape.
type ShapeFill struct {
	ShapeID string `json:"shape"`
	Fill    string `json:"fill"`
}

// HoverController tracks fills and the shared tooltip for one chart. It is
// not safe for concurrent use; each chart instance or live session owns one.
type HoverController struct {
	lookup  func(shapeID string) (Binding, bool)
	tooltip *Tooltip
	fills   map[string]string
	active  string
}

// NewHoverController wires bindings to a tooltip.
func NewHoverController(lookup func(shapeID string) (Binding, bool), tooltip *Tooltip) *HoverController {
	if tooltip == nil {
		tooltip = NewTooltip(nil)
	}
	return &HoverController{
		lookup:  lookup,
		tooltip: tooltip,
		fills:   make(map[string]string),
	}
}

// BindingMap adapts a map to the lookup function NewHoverController expects.
func BindingMap(m map[string]Binding) func(string) (Binding, bool) {
	return func(id string) (Binding, bool) {
		b, ok := m[id]
		return b, ok
	}
}

// OnEnter highlights the shape and shows its tooltip at p.
func (h *HoverController) OnEnter(id string, p Point) (Update, bool) {
	b, ok := h.lookup(id)
	if !ok {
		return Update{}, false
	}
	var restore *ShapeFill
	if prev := h.active; prev != "" && prev != id {
		if pb, ok := h.lookup(prev); ok {
			h.fills[prev] = pb.BaseColor
			restore = &ShapeFill{ShapeID: prev, Fill: pb.BaseColor}
		}
	}
	h.active = id
	h.fills[id] = b.HoverColor
	h.tooltip.Show(b.TooltipText, p.X, p.Y)
	return Update{ShapeID: id, Fill: b.HoverColor, Tooltip: h.tooltip.State(), Restore: restore}, true
}

// OnMove follows the pointer while id is hovered.
func (h *HoverController) OnMove(id string, p Point) (Update, bool) {
	if id == "" || id != h.active {
		return Update{}, false
	}
	h.tooltip.Move(p.X, p.Y)
	return Update{ShapeID: id, Tooltip: h.tooltip.State()}, true
}

// OnLeave restores the base color of id and hides the tooltip. A late leave
// for a shape that is no longer active leaves the tooltip alone.
func (h *HoverController) OnLeave(id string) (Update, bool) {
	b, ok := h.lookup(id)
	if !ok {
		return Update{}, false
	}
	h.fills[id] = b.BaseColor
	switch h.active {
	case id:
		h.active = ""
		h.tooltip.Hide()
	case "":
		h.tooltip.Hide()
	}
	return Update{ShapeID: id, Fill: b.BaseColor, Tooltip: h.tooltip.State()}, true
}

// Fill returns the rendered fill of id: the last color set by a hover event,
// or its base color.
func (h *HoverController) Fill(id string) string {
	if f, ok := h.fills[id]; ok {
		return f
	}
	b, _ := h.lookup(id)
	return b.BaseColor
}

// Active returns the currently hovered shape, if any.
func (h *HoverController) Active() string {
	return h.active
}

// Tooltip exposes the controller's tooltip state.
func (h *HoverController) Tooltip() TooltipState {
	return h.tooltip.State()
}
