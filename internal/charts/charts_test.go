package charts

import (
	"bytes"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/stride.report/internal/gait"
	"github.com/banshee-data/stride.report/internal/testutil"
)

func detection(t *testing.T) *gait.Detection {
	t.Helper()
	testutil.QuietLogs(t)
	a, err := gait.NewAnalyzer(gait.DefaultParams())
	require.NoError(t, err)
	det, err := a.Analyze(testutil.StrideSequence())
	require.NoError(t, err)
	require.Len(t, det.Events, testutil.StrideStrikes)
	return det
}

func TestAnklePlot(t *testing.T) {
	det := detection(t)

	p, err := AnklePlot(det, "run")
	require.NoError(t, err)
	assert.Equal(t, "run", p.Title.Text)
	assert.InDelta(t, 0.7, p.Y.Min, 0.01)
	assert.Greater(t, p.Y.Max, 0.7)
	assert.Equal(t, 59.0, p.X.Max)

	assert.Len(t, strikeXYs(det.Events, gait.Left, det.Left), 2)
	assert.Len(t, strikeXYs(det.Events, gait.Right, det.Right), 1)
}

func TestWriteAnklePNG(t *testing.T) {
	det := detection(t)

	var buf bytes.Buffer
	require.NoError(t, WriteAnklePNG(&buf, det, "run"))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Greater(t, img.Bounds().Dx(), img.Bounds().Dy())
}

func TestAnklePlot_NoSignal(t *testing.T) {
	det := &gait.Detection{Left: gait.Series{gait.None[float64]()}, Right: gait.Series{}}
	_, err := AnklePlot(det, "empty")
	assert.ErrorIs(t, err, ErrNoSignal)
}

func TestSeriesXYsSkipsGaps(t *testing.T) {
	s := gait.Series{gait.Some(0.5), gait.None[float64](), gait.Some(0.7)}
	pts := seriesXYs(s)
	require.Len(t, pts, 2)
	assert.Equal(t, 2.0, pts[1].X)
	assert.Equal(t, 0.7, pts[1].Y)
}

func TestReplayPageSampling(t *testing.T) {
	metrics := make([]gait.FrameMetrics, 10)
	for i := range metrics {
		metrics[i].Frame = i
	}

	frames := func(ms []gait.FrameMetrics) []int {
		out := make([]int, len(ms))
		for i, m := range ms {
			out[i] = m.Frame
		}
		return out
	}

	assert.Equal(t, []int{0, 4, 8, 9}, frames(ReplayPage{Metrics: metrics, Stride: 4}.sampled()))
	assert.Equal(t, []int{0, 3, 6, 9}, frames(ReplayPage{Metrics: metrics, Stride: 3}.sampled()))
	assert.Len(t, ReplayPage{Metrics: metrics}.sampled(), 10)
	assert.Empty(t, ReplayPage{}.sampled())
}

func TestReplayPageRender(t *testing.T) {
	det := detection(t)
	page := ReplayPage{Title: "Cadence replay", Metrics: det.Replay().Collect(), Stride: 5}

	html, err := page.RenderHTML()
	require.NoError(t, err)
	body := string(html)
	assert.True(t, strings.Contains(body, "<html"), "expected an HTML document")
	assert.Contains(t, body, "Cadence replay")
	assert.Contains(t, body, "cadence")
	assert.Contains(t, body, "Excessive Forward Lean")
}
