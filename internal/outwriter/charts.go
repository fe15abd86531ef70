package outwriter

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/huangsam/hubstats/schema"
)

const (
	chartWidth  = "100%"
	chartHeight = "420px"
)

// seriesLabels returns the window's day keys, oldest first.
func seriesLabels(rs schema.RenderedSeries) []string {
	days := rs.Days()
	labels := make([]string, len(days))
	for i, d := range days {
		labels[i] = schema.DayKey(d)
	}
	return labels
}

// lineData picks values for labels from a day-keyed map.
func lineData(labels []string, values map[string]int64) []opts.LineData {
	data := make([]opts.LineData, len(labels))
	for i, key := range labels {
		data[i] = opts.LineData{Value: values[key]}
	}
	return data
}

// newLineChart creates a line chart with the shared global options.
func newLineChart(title, subtitle, yAxis string, labels []string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: chartWidth, Height: chartHeight}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Day"}),
		charts.WithYAxisOpts(opts.YAxis{Name: yAxis}),
	)
	line.SetXAxis(labels)
	return line
}

// buildKindCharts renders the cumulative and daily charts for one metric kind.
// It returns nil when no series of that kind exist.
func buildKindCharts(series []schema.RenderedSeries, kind schema.MetricKind, title string) []components.Charter {
	var selected []schema.RenderedSeries
	for _, rs := range series {
		m, err := schema.ParseMetricID(rs.Metric)
		if err != nil || m.Kind != kind {
			continue
		}
		selected = append(selected, rs)
	}
	if len(selected) == 0 {
		return nil
	}

	labels := seriesLabels(selected[0])
	subtitle := fmt.Sprintf("%d days ending %s", selected[0].WindowDays, schema.DayKey(selected[0].AsOf))
	accumulated := newLineChart(title+" (total)", subtitle, "Total", labels)
	unique := newLineChart(title+" (per day)", subtitle, "Per day", labels)

	for _, rs := range selected {
		name := rs.Metric
		if m, err := schema.ParseMetricID(rs.Metric); err == nil {
			name = m.Label()
		}
		accumulated.AddSeries(name, lineData(labels, rs.Accumulated),
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
		)
		unique.AddSeries(name, lineData(labels, rs.Unique),
			charts.WithLineChartOpts(opts.LineChart{Step: "middle"}),
		)
	}
	return []components.Charter{accumulated, unique}
}

// writeDashboardHTML renders the dashboard charts as a standalone HTML page.
func writeDashboardHTML(w io.Writer, d schema.Dashboard) error {
	page := components.NewPage()
	page.PageTitle = "hubstats"
	page.AddCharts(buildKindCharts(d.Series, schema.PullsKind, "Docker pulls")...)
	page.AddCharts(buildKindCharts(d.Series, schema.StarsKind, "GitHub stars")...)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render HTML charts: %w", err)
	}
	return nil
}

// writeSeriesHTML renders one metric's window as a standalone HTML page.
func writeSeriesHTML(w io.Writer, rs schema.RenderedSeries) error {
	labels := seriesLabels(rs)
	subtitle := fmt.Sprintf("%d days ending %s", rs.WindowDays, schema.DayKey(rs.AsOf))
	line := newLineChart(rs.Metric, subtitle, "Count", labels)
	line.AddSeries("Total", lineData(labels, rs.Accumulated),
		charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
	)
	line.AddSeries("Per day", lineData(labels, rs.Unique),
		charts.WithLineChartOpts(opts.LineChart{Step: "middle"}),
	)

	page := components.NewPage()
	page.PageTitle = "hubstats " + rs.Metric
	page.AddCharts(line)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("failed to render HTML chart: %w", err)
	}
	return nil
}
