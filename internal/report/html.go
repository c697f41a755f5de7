package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/trackstitch/internal/replay"
	"github.com/banshee-data/trackstitch/internal/stitch"
)

// WriteHTML renders an interactive continuity page for sum.
func WriteHTML(w io.Writer, sum *replay.Summary, p stitch.Params) error {
	page := components.NewPage()
	page.PageTitle = "Track continuity: " + sum.Name
	page.AddCharts(continuityChart(sum, p), stitchChart(sum))
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

func continuityChart(sum *replay.Summary, p stitch.Params) *charts.Line {
	x := make([]string, 0, len(sum.Continuity))
	tracked := make([]opts.LineData, 0, len(sum.Continuity))
	threshold := make([]opts.LineData, 0, len(sum.Continuity))
	for _, tr := range sum.Continuity {
		x = append(x, fmt.Sprintf("%d→%d", tr.Frame-1, tr.Frame))
		tracked = append(tracked, opts.LineData{Value: tr.Percentage})
		threshold = append(threshold, opts.LineData{Value: p.PercentMatchReq})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Percentage tracked",
			Subtitle: fmt.Sprintf("sequence=%s frames=%d stitches=%d", sum.Name, sum.Frames, len(sum.Stitches)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: 1, Name: "tracked"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "transition"}),
	)
	line.SetXAxis(x).
		AddSeries("percentage tracked", tracked).
		AddSeries("bf_detection_percent_match_req", threshold,
			charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed"}),
		)
	return line
}

func stitchChart(sum *replay.Summary) *charts.Bar {
	x := make([]string, 0, len(sum.Stitches))
	matches := make([]opts.BarData, 0, len(sum.Stitches))
	merged := make([]opts.BarData, 0, len(sum.Stitches))
	for _, st := range sum.Stitches {
		x = append(x, "frame "+strconv.FormatInt(int64(st.ShotStart), 10)+" ← "+strconv.FormatInt(int64(st.MatchedFrame), 10))
		matches = append(matches, opts.BarData{Value: st.MatchCount})
		merged = append(merged, opts.BarData{Value: len(st.Retired)})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "360px"}),
		charts.WithTitleOpts(opts.Title{Title: "Stitches", Subtitle: "shot start ← matched frame"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(x).
		AddSeries("matches", matches,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		).
		AddSeries("tracks merged", merged,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)
	return bar
}
