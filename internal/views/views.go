// Package views builds the declarative sales views (bar, heatmap, line and
// multi-line) from a loaded dataset table using go-echarts.
package views

import (
	"context"
	"fmt"
	"html"

	"github.com/go-echarts/go-echarts/v2/render"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/chartfolio/internal/dataset"
)

// ErrEmptyTable is returned when a view is built from a table with no rows.
var ErrEmptyTable = errors.New("dataset has no rows")

// ErrNoYears is returned by the time views when no row has a known year.
var ErrNoYears = errors.New("dataset has no rows with a known year")

// Mount ids for the four views, in page order.
const (
	MountPlatformSales = "view"
	MountGenreHeatmap  = "view2"
	MountSalesOverTime = "view3"
	MountPlatformTrend = "view4"
)

const (
	titlePlatformSales = "Which platforms have the highest total global sales?"
	titleGenreHeatmap  = "For the top platforms, which genres contribute most to sales?"
	titleSalesOverTime = "How have total global sales changed over time?"
	titlePlatformTrend = "How do trends differ across top platforms over time?"
)

// Number of platforms shown by the heatmap and the trend view.
const (
	HeatmapPlatforms = 12
	TrendPlatforms   = 6
)

// Definition describes one view: where it mounts and how it is built.
type Definition struct {
	ID    string
	Title string
	Build func(t *dataset.Table) (render.ChartSnippet, error)
}

// Definitions returns the four views in page order.
func Definitions() []Definition {
	return []Definition{
		{ID: MountPlatformSales, Title: titlePlatformSales, Build: PlatformSales},
		{ID: MountGenreHeatmap, Title: titleGenreHeatmap, Build: GenrePlatformHeatmap},
		{ID: MountSalesOverTime, Title: titleSalesOverTime, Build: SalesOverTime},
		{ID: MountPlatformTrend, Title: titlePlatformTrend, Build: PlatformTrends},
	}
}

// View is a built view ready to mount. Err is set when the build failed, in
// which case Markup renders a diagnostic instead of the chart.
type View struct {
	ID      string
	Title   string
	Element string
	Script  string
	Err     error
}

// Status is the JSON summary of a view.
type Status struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Markup returns the HTML to place in the view's mount.
func (v View) Markup() string {
	if v.Err != nil {
		return Diagnostic(v.Err)
	}
	return v.Element + v.Script
}

// Status summarizes the view.
func (v View) Status() Status {
	s := Status{ID: v.ID, Title: v.Title, OK: v.Err == nil}
	if v.Err != nil {
		s.Error = v.Err.Error()
	}
	return s
}

// Diagnostic renders err as a visible, escaped error block.
func Diagnostic(err error) string {
	return fmt.Sprintf(`<pre class="chart-error">%s</pre>`, html.EscapeString(err.Error()))
}

// ════════════════════════════════════════════════════════════════════
// Building
// ════════════════════════════════════════════════════════════════════

// BuildAll builds every view concurrently. A failing view never affects the
// others: its error is logged and kept on the returned View.
func BuildAll(ctx context.Context, t *dataset.Table, logger *zap.Logger) []View {
	if logger == nil {
		logger = zap.NewNop()
	}
	defs := Definitions()
	out := make([]View, len(defs))

	g, ctx := errgroup.WithContext(ctx)
	for i, def := range defs {
		i, def := i, def
		g.Go(func() error {
			out[i] = build(ctx, def, t)
			if out[i].Err != nil {
				logger.Warn("view build failed",
					zap.String("view", def.ID),
					zap.Error(out[i].Err),
				)
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Failed returns a diagnostic view for every mount, used when the dataset
// itself could not be loaded.
func Failed(err error) []View {
	defs := Definitions()
	out := make([]View, len(defs))
	for i, def := range defs {
		out[i] = View{ID: def.ID, Title: def.Title, Err: err}
	}
	return out
}

// Statuses summarizes a list of views.
func Statuses(vs []View) []Status {
	out := make([]Status, len(vs))
	for i, v := range vs {
		out[i] = v.Status()
	}
	return out
}

func build(ctx context.Context, def Definition, t *dataset.Table) (v View) {
	v = View{ID: def.ID, Title: def.Title}
	defer func() {
		if r := recover(); r != nil {
			v.Err = errors.Errorf("%s: panic: %v", def.ID, r)
		}
	}()

	if err := ctx.Err(); err != nil {
		v.Err = err
		return v
	}
	if t.Len() == 0 {
		v.Err = errors.Wrap(ErrEmptyTable, def.ID)
		return v
	}
	snippet, err := def.Build(t)
	if err != nil {
		v.Err = errors.Wrap(err, def.ID)
		return v
	}
	v.Element = snippet.Element
	v.Script = snippet.Script
	return v
}
