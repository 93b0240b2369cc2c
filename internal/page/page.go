// Package page assembles the portfolio page: it executes the page template
// and mounts the rendered charts into it.
package page

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"

	"github.com/seenimoa/chartfolio/internal/views"
)

// Mount ids of the hand-drawn charts.
const (
	MountBar   = "chartArea"
	MountDonut = "artArea"
)

// EChartsURL is where the page loads the echarts runtime from.
const EChartsURL = "https://go-echarts.github.io/go-echarts-assets/assets/echarts.min.js"

// ════════════════════════════════════════════════════════════════════
// Options
// ════════════════════════════════════════════════════════════════════

// Chart is one pre-rendered SVG chart.
type Chart struct {
	Name  string // "bar" or "donut", used for the tooltip and live hover
	Title string
	SVG   string
}

// NavItem is a link in the page navigation.
type NavItem struct {
	Href    string
	Label   string
	Current bool
}

// Options controls page generation.
type Options struct {
	Title         string
	Author        string
	ActivePath    string // nav href to mark as current, default "/"
	Year          int    // footer year, default current year
	StaticPrefix  string // default "/static/"
	LiveHover     bool
	HoverSocket   string // default "/ws/hover"
	DatasetSource string
	Bar           Chart
	Donut         Chart
	Views         []views.View
}

func (o Options) withDefaults() Options {
	if o.Title == "" {
		o.Title = "My Data Portfolio"
	}
	if o.ActivePath == "" {
		o.ActivePath = "/"
	}
	if o.Year == 0 {
		o.Year = time.Now().Year()
	}
	if o.StaticPrefix == "" {
		o.StaticPrefix = "/static/"
	}
	if o.HoverSocket == "" {
		o.HoverSocket = "/ws/hover"
	}
	if o.Views == nil {
		o.Views = views.Failed(errors.New("views not built"))
	}
	return o
}

// Nav returns the navigation links with active marked as current. An
// unknown path marks nothing.
func Nav(active string) []NavItem {
	items := []NavItem{
		{Href: "/", Label: "Home"},
		{Href: "/#charts", Label: "Charts"},
		{Href: "/#views", Label: "Views"},
	}
	for i := range items {
		items[i].Current = items[i].Href == active
	}
	return items
}

// ════════════════════════════════════════════════════════════════════
// Build
// ════════════════════════════════════════════════════════════════════

type templateData struct {
	Title         string
	Author        string
	Year          int
	StaticPrefix  string
	EChartsURL    string
	LiveHover     bool
	HoverSocket   string
	DatasetSource string
	BarTitle      string
	DonutTitle    string
	Nav           []NavItem
	Views         []views.View
}

var pageTmpl = template.Must(template.New("page").Parse(PageTemplate))

// Build renders the page and mounts every chart and view.
func Build(opts Options) (string, error) {
	opts = opts.withDefaults()

	data := templateData{
		Title:         opts.Title,
		Author:        opts.Author,
		Year:          opts.Year,
		StaticPrefix:  opts.StaticPrefix,
		EChartsURL:    EChartsURL,
		LiveHover:     opts.LiveHover,
		HoverSocket:   opts.HoverSocket,
		DatasetSource: opts.DatasetSource,
		BarTitle:      opts.Bar.Title,
		DonutTitle:    opts.Donut.Title,
		Nav:           Nav(opts.ActivePath),
		Views:         opts.Views,
	}
	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, data); err != nil {
		return "", errors.Wrap(err, "executing template")
	}

	doc, err := goquery.NewDocumentFromReader(&buf)
	if err != nil {
		return "", errors.Wrap(err, "parsing page")
	}
	Mount(doc, MountBar, opts.Bar.SVG, opts.Bar.Name)
	Mount(doc, MountDonut, opts.Donut.SVG, opts.Donut.Name)
	for _, v := range opts.Views {
		Mount(doc, v.ID, v.Markup(), "")
	}

	out, err := goquery.OuterHtml(doc.Selection)
	if err != nil {
		return "", errors.Wrap(err, "rendering page")
	}
	return out, nil
}

// Mount replaces the content of the element with the given id by markup.
// The element becomes the positioning context for the chart tooltip, which
// is appended after the markup when chart is non-empty. A missing element
// is a silent no-op and returns false.
func Mount(doc *goquery.Document, id, markup, chart string) bool {
	sel := doc.Find("#" + id)
	if sel.Length() == 0 {
		return false
	}
	sel = sel.First()
	sel.Empty()
	markRelative(sel)
	sel.AppendHtml(markup)
	if chart != "" {
		sel.AppendHtml(fmt.Sprintf(`<div class="tooltip" data-chart="%s"></div>`, html.EscapeString(chart)))
	}
	return true
}

func markRelative(sel *goquery.Selection) {
	style, _ := sel.Attr("style")
	var decls []string
	for _, d := range strings.Split(style, ";") {
		d = strings.TrimSpace(d)
		if d == "" || strings.HasPrefix(strings.ToLower(d), "position") {
			continue
		}
		decls = append(decls, d)
	}
	decls = append(decls, "position: relative")
	sel.SetAttr("style", strings.Join(decls, "; "))
}
