package views

import (
	"encoding/json"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/render"
	"github.com/shopspring/decimal"

	"github.com/seenimoa/chartfolio/internal/dataset"
)

const salesAxis = "Total Global Sales (M)"

// heatmap palette, light to dark
var heatColors = []string{"#eff3ff", "#bdd7e7", "#6baed6", "#3182bd", "#08519c"}

func initOpts(id, height string) charts.GlobalOpts {
	return charts.WithInitializationOpts(opts.Initialization{
		ChartID: "echarts_" + id,
		Width:   "100%",
		Height:  height,
	})
}

// Opacity of the marks that are not under the pointer.
const (
	dimPlatform = 0.6
	dimCell     = 0.45
	dimTrend    = 0.25
)

// dimOthers returns a script that fades every mark except the hovered one
// (focus "self") or the hovered line (focus "series"). The series options of
// go-echarts carry no focus or blur state, so it is merged in after the
// chart's own setOption call.
func dimOthers(focus string, opacity float32, series int) string {
	type style struct {
		Opacity float32 `json:"opacity"`
	}
	type state struct {
		Emphasis struct {
			Focus string `json:"focus"`
		} `json:"emphasis"`
		Blur struct {
			ItemStyle style `json:"itemStyle"`
			LineStyle style `json:"lineStyle"`
		} `json:"blur"`
	}
	var st state
	st.Emphasis.Focus = focus
	st.Blur.ItemStyle.Opacity = opacity
	st.Blur.LineStyle.Opacity = opacity

	all := make([]state, series)
	for i := range all {
		all[i] = st
	}
	data, _ := json.Marshal(map[string][]state{"series": all})
	return "%MY_ECHARTS%.setOption(" + string(data) + ");"
}

func sales(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// PlatformSales is a horizontal bar of total sales per platform with the
// best seller on top.
func PlatformSales(t *dataset.Table) (render.ChartSnippet, error) {
	totals := dataset.SalesByPlatform(t)

	// echarts draws the first category at the bottom.
	names := make([]string, len(totals))
	data := make([]opts.BarData, len(totals))
	for i, tot := range totals {
		j := len(totals) - 1 - i
		names[j] = tot.Key
		data[j] = opts.BarData{Name: tot.Key, Value: sales(tot.Sales)}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		initOpts(MountPlatformSales, "400px"),
		charts.WithTitleOpts(opts.Title{Title: titlePlatformSales, Subtitle: "V1 (Q1)"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Total Global Sales (millions)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Platform"}),
	)
	bar.SetXAxis(names).AddSeries("Global sales", data)
	bar.XYReversal()
	bar.AddJSFuncs(dimOthers("self", dimPlatform, 1))
	return bar.RenderSnippet(), nil
}

// GenrePlatformHeatmap plots summed sales for every genre of the top
// platforms.
func GenrePlatformHeatmap(t *dataset.Table) (render.ChartSnippet, error) {
	platforms := dataset.TopPlatforms(t, HeatmapPlatforms)
	top := dataset.FilterPlatforms(t, platforms)
	genres := dataset.Genres(top)

	px := make(map[string]int, len(platforms))
	for i, p := range platforms {
		px[p] = i
	}
	gy := make(map[string]int, len(genres))
	for i, g := range genres {
		gy[g] = i
	}

	var peak float64
	cells := dataset.SalesByGenrePlatform(top)
	data := make([]opts.HeatMapData, 0, len(cells))
	for _, c := range cells {
		v := sales(c.Sales)
		if v > peak {
			peak = v
		}
		data = append(data, opts.HeatMapData{
			Name:  c.Genre + " / " + c.Platform,
			Value: [3]interface{}{px[c.Platform], gy[c.Genre], v},
		})
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		initOpts(MountGenreHeatmap, "420px"),
		charts.WithTitleOpts(opts.Title{Title: titleGenreHeatmap, Subtitle: "V1 (Q2)"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Platform (Top 12)", Type: "category", Data: platforms}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Genre", Type: "category", Data: genres}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(peak),
			InRange:    &opts.VisualMapInRange{Color: heatColors},
		}),
	)
	hm.SetXAxis(platforms).AddSeries(salesAxis, data,
		charts.WithEmphasisOpts(opts.Emphasis{
			ItemStyle: &opts.ItemStyle{BorderColor: "#111827", BorderWidth: 1},
		}),
	)
	hm.AddJSFuncs(dimOthers("self", dimCell, 1))
	return hm.RenderSnippet(), nil
}

// SalesOverTime is a line with points of total sales per known year.
func SalesOverTime(t *dataset.Table) (render.ChartSnippet, error) {
	years := dataset.SalesByYear(t)
	if len(years) == 0 {
		return render.ChartSnippet{}, ErrNoYears
	}
	xs := make([]string, len(years))
	data := make([]opts.LineData, len(years))
	for i, y := range years {
		xs[i] = strconv.Itoa(y.Year)
		data[i] = opts.LineData{Value: sales(y.Sales)}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		initOpts(MountSalesOverTime, "360px"),
		charts.WithTitleOpts(opts.Title{Title: titleSalesOverTime, Subtitle: "V2 (Q1)"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Year"}),
		charts.WithYAxisOpts(opts.YAxis{Name: salesAxis}),
	)
	line.SetXAxis(xs).AddSeries("Global sales", data,
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true)}),
	)
	return line.RenderSnippet(), nil
}

// PlatformTrends draws one line per top platform over the shared year axis.
// Years a platform has no sales in are left as gaps.
func PlatformTrends(t *dataset.Table) (render.ChartSnippet, error) {
	platforms := dataset.TopPlatforms(t, TrendPlatforms)
	top := dataset.FilterPlatforms(t, platforms)
	years := dataset.Years(top)
	if len(years) == 0 {
		return render.ChartSnippet{}, ErrNoYears
	}
	xs := make([]string, len(years))
	for i, y := range years {
		xs[i] = strconv.Itoa(y)
	}
	byPlatform := dataset.SalesByPlatformYear(top)

	line := charts.NewLine()
	line.SetGlobalOptions(
		initOpts(MountPlatformTrend, "420px"),
		charts.WithTitleOpts(opts.Title{Title: titlePlatformTrend, Subtitle: "V2 (Q2)"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Year"}),
		charts.WithYAxisOpts(opts.YAxis{Name: salesAxis}),
	)
	line.SetXAxis(xs)
	for _, p := range platforms {
		line.AddSeries(p, trendSeries(years, byPlatform[p]),
			charts.WithEmphasisOpts(opts.Emphasis{
				ItemStyle: &opts.ItemStyle{BorderWidth: 2},
			}),
		)
	}
	line.AddJSFuncs(dimOthers("series", dimTrend, len(platforms)))
	return line.RenderSnippet(), nil
}

func trendSeries(years []int, totals []dataset.YearTotal) []opts.LineData {
	byYear := make(map[int]decimal.Decimal, len(totals))
	for _, yt := range totals {
		byYear[yt.Year] = yt.Sales
	}
	out := make([]opts.LineData, len(years))
	for i, y := range years {
		if s, ok := byYear[y]; ok {
			out[i] = opts.LineData{Value: sales(s)}
		} else {
			out[i] = opts.LineData{Value: "-"}
		}
	}
	return out
}
