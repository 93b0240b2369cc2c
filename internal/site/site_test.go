package site

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/seenimoa/chartfolio/internal/chart"
	"github.com/seenimoa/chartfolio/internal/config"
	"github.com/seenimoa/chartfolio/internal/views"
)

const csvBody = `Name,Platform,Year,Genre,Global_Sales
Wii Sports,Wii,2006,Sports,82.74
Mario Kart DS,DS,2005,Racing,23.42
Tetris,GB,1989,Puzzle,30.26
`

func newBuilder(t *testing.T, source string) *Builder {
	t.Helper()
	cfg := config.Default()
	cfg.Dataset.Source = source
	return New(cfg, zaptest.NewLogger(t))
}

func writeCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte(csvBody), 0644))
	return path
}

// ════════════════════════════════════════════════════════════════════
// Charts
// ════════════════════════════════════════════════════════════════════

func TestSVG(t *testing.T) {
	b := newBuilder(t, "")

	bar, err := b.SVG(ChartBar)
	require.NoError(t, err)
	assert.Equal(t, 5, strings.Count(bar, "<rect"))
	assert.Contains(t, bar, `aria-label="How I spend my life"`)

	donut, err := b.SVG(ChartDonut)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(donut, "<path"))

	_, err = b.SVG("pie")
	assert.True(t, errors.Is(err, ErrUnknownChart), "got %v", err)
}

func TestPlanAndBindings(t *testing.T) {
	b := newBuilder(t, "")

	p, err := b.Plan(ChartBar)
	require.NoError(t, err)
	plan, ok := p.(chart.BarPlan)
	require.True(t, ok)
	assert.Equal(t, "School 🏫", plan.Bars[0].Label)

	bind, err := b.Bindings(ChartDonut)
	require.NoError(t, err)
	assert.Len(t, bind, 3)

	_, err = b.Plan("line")
	assert.True(t, errors.Is(err, ErrUnknownChart))
	_, err = b.Bindings("line")
	assert.True(t, errors.Is(err, ErrUnknownChart))
}

func TestConfiguredPointsReplaceBuiltIns(t *testing.T) {
	b := newBuilder(t, "")
	b.Config().Charts.Bar.Points = []chart.DataPoint{
		{Label: "Code", Value: 3, Color: "#112233"},
		{Label: "Read", Value: 1, Color: "#445566"},
	}
	bind, err := b.Bindings(ChartBar)
	require.NoError(t, err)
	assert.Len(t, bind, 2)
	assert.Equal(t, "Code: 75% of my life", bind["bar-0"].TooltipText)
}

// ════════════════════════════════════════════════════════════════════
// Dataset and views
// ════════════════════════════════════════════════════════════════════

func TestTableIsCachedUntilReload(t *testing.T) {
	path := writeCSV(t)
	b := newBuilder(t, path)
	ctx := context.Background()

	tbl, err := b.Table(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.Len())

	require.NoError(t, os.Remove(path))
	again, err := b.Table(ctx)
	require.NoError(t, err)
	assert.Same(t, tbl, again)

	b.Reload()
	_, err = b.Table(ctx)
	assert.Error(t, err)
}

func TestViewsOnMissingDataset(t *testing.T) {
	b := newBuilder(t, filepath.Join(t.TempDir(), "missing.csv"))
	vs := b.Views(context.Background())
	require.Len(t, vs, 4)
	for _, v := range vs {
		assert.Error(t, v.Err, v.ID)
		assert.Contains(t, v.Markup(), "chart-error")
	}
}

func TestViewsFromEmbeddedSample(t *testing.T) {
	b := newBuilder(t, "")
	vs := b.Views(context.Background())
	require.Len(t, vs, 4)
	ids := make([]string, len(vs))
	for i, v := range vs {
		ids[i] = v.ID
		assert.NoError(t, v.Err, v.ID)
	}
	assert.Equal(t, []string{views.MountPlatformSales, views.MountGenreHeatmap, views.MountSalesOverTime, views.MountPlatformTrend}, ids)
}

func TestViewsSurviveCancelledRequest(t *testing.T) {
	b := newBuilder(t, writeCSV(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, v := range b.Views(ctx) {
		assert.NoError(t, v.Err, v.ID)
	}
	for _, v := range b.Views(context.Background()) {
		assert.NoError(t, v.Err, v.ID)
	}
}

func TestInterrupted(t *testing.T) {
	assert.True(t, interrupted(context.Canceled))
	assert.True(t, interrupted(errors.Wrap(context.DeadlineExceeded, "view3")))
	assert.False(t, interrupted(views.ErrEmptyTable))
	assert.False(t, interrupted(nil))
}

// ════════════════════════════════════════════════════════════════════
// Page
// ════════════════════════════════════════════════════════════════════

func TestPage(t *testing.T) {
	b := newBuilder(t, "")
	out, err := b.Page(context.Background(), PageOptions{ActivePath: "/"})
	require.NoError(t, err)

	assert.Contains(t, out, `id="chartArea"`)
	assert.Contains(t, out, `href="/static/styles.css"`)
	assert.Contains(t, out, "videogames_wide.csv")
	assert.NotContains(t, out, "chart-error")
	assert.NotContains(t, out, "data-live")
}

func TestSiteUsesRelativeAssets(t *testing.T) {
	b := newBuilder(t, writeCSV(t))
	s, err := b.Site(context.Background())
	require.NoError(t, err)

	assert.Contains(t, s.Index, `href="static/styles.css"`)
	assert.Contains(t, s.Index, `src="static/hover.js"`)
	assert.True(t, strings.HasPrefix(s.Bar, "<svg"))
	assert.True(t, strings.HasPrefix(s.Donut, "<svg"))
}

func TestPageIsCached(t *testing.T) {
	path := writeCSV(t)
	b := newBuilder(t, path)
	ctx := context.Background()

	first, err := b.Page(ctx, PageOptions{ActivePath: "/"})
	require.NoError(t, err)
	require.NotContains(t, first, "chart-error")

	require.NoError(t, os.Remove(path))
	again, err := b.Page(ctx, PageOptions{ActivePath: "/"})
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

func TestPageRecoversWhenDatasetAppears(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.csv")
	b := newBuilder(t, path)
	ctx := context.Background()

	out, err := b.Page(ctx, PageOptions{ActivePath: "/"})
	require.NoError(t, err)
	assert.Contains(t, out, "chart-error")

	require.NoError(t, os.WriteFile(path, []byte(csvBody), 0644))
	out, err = b.Page(ctx, PageOptions{ActivePath: "/"})
	require.NoError(t, err)
	assert.NotContains(t, out, "chart-error")
	assert.Contains(t, out, "echarts_view")
}
