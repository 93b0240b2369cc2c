package chart

// TooltipOffset is the distance in pixels between the pointer and the
// tooltip's top-left corner on both axes.
const TooltipOffset = 12

// Point is a pointer position in client coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is a bounding box in client coordinates.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// TooltipState is what the tooltip element should currently look like.
type TooltipState struct {
	Text    string  `json:"text"`
	Left    float64 `json:"left"`
	Top     float64 `json:"top"`
	Visible bool    `json:"visible"`
}

// Tooltip positions a single floating label inside a chart's mount. The
// mount must have non-static positioning for Left/Top to apply.
type Tooltip struct {
	bounds func() Rect
	state  TooltipState
}

// NewTooltip creates a tooltip whose mount box is read from bounds on every
// show or move. A nil bounds means the mount sits at the origin.
func NewTooltip(bounds func() Rect) *Tooltip {
	if bounds == nil {
		bounds = func() Rect { return Rect{} }
	}
	return &Tooltip{bounds: bounds}
}

// Show sets the text, positions the tooltip next to the pointer and makes it visible.
func (t *Tooltip) Show(text string, x, y float64) {
	t.state.Text = text
	t.place(x, y)
	t.state.Visible = true
}

// Move repositions the tooltip without touching its text.
func (t *Tooltip) Move(x, y float64) {
	t.place(x, y)
}

// Hide makes the tooltip invisible. The text is left as is.
func (t *Tooltip) Hide() {
	t.state.Visible = false
}

// State returns the current tooltip state.
func (t *Tooltip) State() TooltipState {
	return t.state
}

func (t *Tooltip) place(x, y float64) {
	box := t.bounds()
	t.state.Left = x - box.Left + TooltipOffset
	t.state.Top = y - box.Top + TooltipOffset
}
