// Package site ties the pieces together: it renders the two SVG charts
// from config, loads the dataset once, builds the views and assembles the
// page. Results are cached until the TTL expires or Reload is called.
package site

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/seenimoa/chartfolio/internal/chart"
	"github.com/seenimoa/chartfolio/internal/config"
	"github.com/seenimoa/chartfolio/internal/dataset"
	"github.com/seenimoa/chartfolio/internal/infra"
	"github.com/seenimoa/chartfolio/internal/page"
	"github.com/seenimoa/chartfolio/internal/views"
)

// Chart names accepted by SVG, Plan and Bindings.
const (
	ChartBar   = "bar"
	ChartDonut = "donut"
)

// ErrUnknownChart is returned for a chart name other than bar or donut.
var ErrUnknownChart = errors.New("unknown chart")

const (
	keyTable = "table"
	keyViews = "views"
)

// Builder renders and caches everything the page needs.
type Builder struct {
	cfg    *config.Config
	logger *zap.Logger
	cache  *infra.Cache
}

// New creates a builder. A nil logger discards output.
func New(cfg *config.Config, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		cfg:    cfg,
		logger: logger,
		cache:  infra.NewCache(cfg.Dataset.TTL()),
	}
}

// Config returns the configuration the builder renders from.
func (b *Builder) Config() *config.Config { return b.cfg }

// Reload drops every cached table, view and page.
func (b *Builder) Reload() {
	b.cache.Flush()
	b.logger.Info("caches flushed")
}

// ════════════════════════════════════════════════════════════════════
// Charts
// ════════════════════════════════════════════════════════════════════

// BarPlan lays out the configured bar chart.
func (b *Builder) BarPlan() chart.BarPlan {
	return chart.LayoutBars(b.cfg.Charts.Bar.Input(), b.cfg.Charts.Bar.BarConfig)
}

// DonutPlan lays out the configured donut chart.
func (b *Builder) DonutPlan() chart.DonutPlan {
	return chart.LayoutDonut(b.cfg.Charts.Donut.Input(), b.cfg.Charts.Donut.DonutConfig)
}

// Plan returns the layout of the named chart.
func (b *Builder) Plan(name string) (interface{}, error) {
	switch name {
	case ChartBar:
		return b.BarPlan(), nil
	case ChartDonut:
		return b.DonutPlan(), nil
	}
	return nil, errors.Wrapf(ErrUnknownChart, "%q", name)
}

// SVG renders the named chart.
func (b *Builder) SVG(name string) (string, error) {
	v, err := b.cache.GetOrBuild("svg:"+name, func() (any, error) {
		doc := chart.NewDocument()
		switch name {
		case ChartBar:
			return doc.SVG(b.BarPlan().Draw(doc)), nil
		case ChartDonut:
			return doc.SVG(b.DonutPlan().Draw(doc)), nil
		}
		return nil, errors.Wrapf(ErrUnknownChart, "%q", name)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Bindings returns the hover bindings of the named chart.
func (b *Builder) Bindings(name string) (map[string]chart.Binding, error) {
	switch name {
	case ChartBar:
		return b.BarPlan().Bindings(), nil
	case ChartDonut:
		return b.DonutPlan().Bindings(), nil
	}
	return nil, errors.Wrapf(ErrUnknownChart, "%q", name)
}

// ════════════════════════════════════════════════════════════════════
// Dataset and views
// ════════════════════════════════════════════════════════════════════

// Table loads the dataset once per cache lifetime. Failures are not cached.
// The load is shared by concurrent callers, so it does not stop when one of
// them goes away.
func (b *Builder) Table(ctx context.Context) (*dataset.Table, error) {
	v, err := b.cache.GetOrBuild(keyTable, func() (any, error) {
		t, err := dataset.Load(context.WithoutCancel(ctx), b.cfg.Dataset.Source)
		if err != nil {
			return nil, err
		}
		b.logger.Info("dataset loaded",
			zap.String("source", t.Source),
			zap.Int("rows", t.Len()),
		)
		return t, nil
	})
	if err != nil {
		b.logger.Error("dataset load failed", zap.Error(err))
		return nil, err
	}
	return v.(*dataset.Table), nil
}

// Views builds the four declarative views. A dataset failure yields a
// diagnostic for every view.
func (b *Builder) Views(ctx context.Context) []views.View {
	vs, err := b.loadViews(ctx)
	if err != nil {
		return views.Failed(err)
	}
	return vs
}

// loadViews returns the cached views. It fails, caching nothing, when the
// dataset cannot be loaded or a build was interrupted.
func (b *Builder) loadViews(ctx context.Context) ([]views.View, error) {
	t, err := b.Table(ctx)
	if err != nil {
		return nil, err
	}
	v, err := b.cache.GetOrBuild(keyViews, func() (any, error) {
		vs := views.BuildAll(context.WithoutCancel(ctx), t, b.logger)
		for _, view := range vs {
			if interrupted(view.Err) {
				return nil, view.Err
			}
		}
		return vs, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]views.View), nil
}

func interrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ════════════════════════════════════════════════════════════════════
// Page
// ════════════════════════════════════════════════════════════════════

// PageOptions selects the variant of the page to render.
type PageOptions struct {
	ActivePath   string
	StaticPrefix string
}

// Page renders the full page. When the views cannot be built the page still
// renders, with a diagnostic in every mount, but is not cached.
func (b *Builder) Page(ctx context.Context, po PageOptions) (string, error) {
	vs, err := b.loadViews(ctx)
	if err != nil {
		return b.buildPage(po, views.Failed(err))
	}
	key := "page:" + po.ActivePath + "|" + po.StaticPrefix
	v, err := b.cache.GetOrBuild(key, func() (any, error) {
		return b.buildPage(po, vs)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (b *Builder) buildPage(po PageOptions, vs []views.View) (string, error) {
	barSVG, err := b.SVG(ChartBar)
	if err != nil {
		return "", err
	}
	donutSVG, err := b.SVG(ChartDonut)
	if err != nil {
		return "", err
	}

	source := b.cfg.Dataset.Source
	if source == "" {
		source = dataset.SampleSource
	}
	return page.Build(page.Options{
		Title:         b.cfg.Page.Title,
		Author:        b.cfg.Page.Author,
		ActivePath:    po.ActivePath,
		StaticPrefix:  po.StaticPrefix,
		LiveHover:     b.cfg.Server.LiveHover,
		DatasetSource: strings.TrimPrefix(source, "embedded:"),
		Bar:           page.Chart{Name: ChartBar, Title: b.cfg.Charts.Bar.Input().Title, SVG: barSVG},
		Donut:         page.Chart{Name: ChartDonut, Title: b.cfg.Charts.Donut.Input().Title, SVG: donutSVG},
		Views:         vs,
	})
}

// Site renders everything the static export writes. Asset links are
// relative so the output works from the filesystem.
func (b *Builder) Site(ctx context.Context) (page.Site, error) {
	index, err := b.Page(ctx, PageOptions{ActivePath: "/", StaticPrefix: "static/"})
	if err != nil {
		return page.Site{}, err
	}
	barSVG, err := b.SVG(ChartBar)
	if err != nil {
		return page.Site{}, err
	}
	donutSVG, err := b.SVG(ChartDonut)
	if err != nil {
		return page.Site{}, err
	}
	return page.Site{Index: index, Bar: barSVG, Donut: donutSVG}, nil
}
