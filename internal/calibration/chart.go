package calibration

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// RenderChart writes an HTML page with the duration and the speedup of
// every successful measurement against the thread count.
func RenderChart(w io.Writer, ms []Measurement) error {
	var (
		labels    []string
		durations []opts.LineData
		speedups  []opts.LineData
		ideal     []opts.LineData
	)
	for _, m := range ms {
		if m.Err != nil {
			continue
		}
		labels = append(labels, strconv.Itoa(m.Threads))
		durations = append(durations, opts.LineData{Value: float64(m.Duration.Microseconds()) / 1000})
		speedups = append(speedups, opts.LineData{Value: m.Speedup})
		ideal = append(ideal, opts.LineData{Value: m.Threads})
	}
	if len(labels) == 0 {
		return fmt.Errorf("no successful measurement to plot")
	}

	duration := charts.NewLine()
	duration.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Multiplication time", Subtitle: "best of repeated runs"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "threads"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "ms"}),
	)
	duration.SetXAxis(labels).AddSeries("duration", durations)

	speedup := charts.NewLine()
	speedup.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Speedup"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "threads"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "× single thread"}),
	)
	speedup.SetXAxis(labels).
		AddSeries("measured", speedups).
		AddSeries("linear", ideal, charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed"}))

	page := components.NewPage().SetPageTitle("mpolymul calibration")
	page.AddCharts(duration, speedup)
	return page.Render(w)
}

// WriteChart renders the chart to path.
func WriteChart(path string, ms []Measurement) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create chart file: %w", err)
	}
	defer f.Close()
	if err := RenderChart(f, ms); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return f.Close()
}
