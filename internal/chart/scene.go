package chart

import (
	"strconv"
	"strings"
)

// ════════════════════════════════════════════════════════════════════
// Scene Graph
// ════════════════════════════════════════════════════════════════════

// ShapeKind names an SVG element.
type ShapeKind string

const (
	KindSVG  ShapeKind = "svg"
	KindLine ShapeKind = "line"
	KindRect ShapeKind = "rect"
	KindText ShapeKind = "text"
	KindPath ShapeKind = "path"
)

// ShapeHandle identifies a shape created by a SceneBuilder.
type ShapeHandle int

// Attr is a single attribute. Attributes keep insertion order.
type Attr struct {
	Key   string
	Value string
}

// A is shorthand for building an Attr.
func A(key, value string) Attr { return Attr{Key: key, Value: value} }

// SceneBuilder is the surface renderers draw into.
type SceneBuilder interface {
	CreateShape(kind ShapeKind, attrs ...Attr) ShapeHandle
	SetAttribute(h ShapeHandle, key, value string)
	SetText(h ShapeHandle, text string)
	AppendChild(parent, child ShapeHandle)
}

// Node is one shape in a Document.
type Node struct {
	Kind     ShapeKind
	Attrs    []Attr
	Text     string
	Children []ShapeHandle
}

// Attr returns the value of key and whether it is set.
func (n *Node) Attr(key string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// Document is an in-memory SceneBuilder that serializes to SVG markup.
type Document struct {
	nodes []*Node
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{}
}

func (d *Document) CreateShape(kind ShapeKind, attrs ...Attr) ShapeHandle {
	n := &Node{Kind: kind, Attrs: append([]Attr(nil), attrs...)}
	d.nodes = append(d.nodes, n)
	return ShapeHandle(len(d.nodes) - 1)
}

func (d *Document) SetAttribute(h ShapeHandle, key, value string) {
	n := d.Node(h)
	if n == nil {
		return
	}
	for i := range n.Attrs {
		if n.Attrs[i].Key == key {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Key: key, Value: value})
}

func (d *Document) SetText(h ShapeHandle, text string) {
	if n := d.Node(h); n != nil {
		n.Text = text
	}
}

func (d *Document) AppendChild(parent, child ShapeHandle) {
	if n := d.Node(parent); n != nil && d.Node(child) != nil {
		n.Children = append(n.Children, child)
	}
}

// Node returns the shape for h, or nil if h is unknown.
func (d *Document) Node(h ShapeHandle) *Node {
	if h < 0 || int(h) >= len(d.nodes) {
		return nil
	}
	return d.nodes[h]
}

// Children returns the nodes directly under h with the given kind.
func (d *Document) Children(h ShapeHandle, kind ShapeKind) []*Node {
	parent := d.Node(h)
	if parent == nil {
		return nil
	}
	var out []*Node
	for _, c := range parent.Children {
		if n := d.Node(c); n != nil && n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

// SVG serializes the subtree rooted at h.
func (d *Document) SVG(h ShapeHandle) string {
	var sb strings.Builder
	d.write(&sb, h)
	return sb.String()
}

func (d *Document) write(sb *strings.Builder, h ShapeHandle) {
	n := d.Node(h)
	if n == nil {
		return
	}
	sb.WriteByte('<')
	sb.WriteString(string(n.Kind))
	for _, a := range n.Attrs {
		sb.WriteByte(' ')
		sb.WriteString(a.Key)
		sb.WriteString(`="`)
		sb.WriteString(escapeXML(a.Value))
		sb.WriteByte('"')
	}
	if n.Text == "" && len(n.Children) == 0 {
		sb.WriteString("/>")
		return
	}
	sb.WriteByte('>')
	sb.WriteString(escapeXML(n.Text))
	for _, c := range n.Children {
		d.write(sb, c)
	}
	sb.WriteString("</")
	sb.WriteString(string(n.Kind))
	sb.WriteByte('>')
}

// ════════════════════════════════════════════════════════════════════
// Canvas Setup
// ════════════════════════════════════════════════════════════════════

const svgNamespace = "http://www.w3.org/2000/svg"

// NewCanvas creates a responsive drawing surface of the given pixel size.
func NewCanvas(b SceneBuilder, width, height int) ShapeHandle {
	w, h := strconv.Itoa(width), strconv.Itoa(height)
	return b.CreateShape(KindSVG,
		A("xmlns", svgNamespace),
		A("width", w),
		A("height", h),
		A("viewBox", "0 0 "+w+" "+h),
		A("style", "max-width: 100%; display: block"),
		A("font-family", "sans-serif"),
	)
}

// ════════════════════════════════════════════════════════════════════
// Helpers
// ════════════════════════════════════════════════════════════════════

// num formats a coordinate with the shortest exact representation.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	return s
}
