package charts

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/stride.report/internal/gait"
)

const assetsHost = "https://go-echarts.github.io/go-echarts-assets/assets/"

// ReplayPage describes the HTML replay chart.
type ReplayPage struct {
	Title   string
	Metrics []gait.FrameMetrics
	// Stride keeps every Stride-th frame; the final frame is always kept.
	Stride int
}

func (rp ReplayPage) sampled() []gait.FrameMetrics {
	stride := max(rp.Stride, 1)
	n := len(rp.Metrics)
	out := make([]gait.FrameMetrics, 0, n/stride+1)
	for i := 0; i < n; i += stride {
		out = append(out, rp.Metrics[i])
	}
	if n > 0 && (n-1)%stride != 0 {
		out = append(out, rp.Metrics[n-1])
	}
	return out
}

func (rp ReplayPage) cadenceChart(frames []gait.FrameMetrics) *charts.Line {
	x := make([]string, len(frames))
	cadence := make([]opts.LineData, len(frames))
	steps := make([]opts.LineData, len(frames))
	for i, m := range frames {
		x[i] = fmt.Sprintf("%.2f", m.ElapsedSeconds)
		cadence[i] = opts.LineData{Value: m.Cadence}
		steps[i] = opts.LineData{Value: m.StepCount}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: rp.Title, Width: "100%", Height: "480px", AssetsHost: assetsHost}),
		charts.WithTitleOpts(opts.Title{Title: rp.Title, Subtitle: fmt.Sprintf("frames=%d shown=%d", len(rp.Metrics), len(frames))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Elapsed (s)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Steps / min"}),
	)
	line.SetXAxis(x).
		AddSeries("cadence", cadence).
		AddSeries("steps", steps)
	return line
}

func (rp ReplayPage) postureChart() *charts.Pie {
	var pct map[gait.PostureCategory]float64
	if n := len(rp.Metrics); n > 0 {
		pct = rp.Metrics[n-1].PosturePercentages
	}
	data := make([]opts.PieData, 0, len(gait.PostureCategories))
	for _, c := range gait.PostureCategories {
		data = append(data, opts.PieData{Name: c.Label(), Value: pct[c]})
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "360px", AssetsHost: assetsHost}),
		charts.WithTitleOpts(opts.Title{Title: "Posture", Subtitle: "share of detected frames (%)"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	pie.AddSeries("posture", data, charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Formatter: "{b}: {c}%"}))
	return pie
}

// Render writes the replay page as a standalone HTML document.
func (rp ReplayPage) Render(w io.Writer) error {
	page := components.NewPage()
	page.SetAssetsHost(assetsHost)
	page.AddCharts(rp.cadenceChart(rp.sampled()), rp.postureChart())
	return page.Render(w)
}

// RenderHTML is Render into a byte slice.
func (rp ReplayPage) RenderHTML() ([]byte, error) {
	var buf bytes.Buffer
	if err := rp.Render(&buf); err != nil {
		return nil, fmt.Errorf("render replay chart: %w", err)
	}
	return buf.Bytes(), nil
}
