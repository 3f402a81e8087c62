// Package charts renders diagnostic plots of an analysis: a static PNG of
// the ankle signals with detected strikes, and an interactive HTML page of
// the causal replay.
package charts

import (
	"errors"
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/stride.report/internal/gait"
)

var (
	leftColor  = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	rightColor = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

// ErrNoSignal is returned when neither ankle series has a defined sample.
var ErrNoSignal = errors.New("no ankle samples to plot")

// seriesXYs returns the defined samples of s as frame/value points.
func seriesXYs(s gait.Series) plotter.XYs {
	pts := make(plotter.XYs, 0, len(s))
	for i, v := range s {
		if y, ok := v.Get(); ok {
			pts = append(pts, plotter.XY{X: float64(i), Y: y})
		}
	}
	return pts
}

func strikeXYs(events []gait.StrikeEvent, side gait.Side, s gait.Series) plotter.XYs {
	pts := make(plotter.XYs, 0, len(events))
	for _, e := range events {
		if e.Side != side || e.Frame >= len(s) {
			continue
		}
		if y, ok := s[e.Frame].Get(); ok {
			pts = append(pts, plotter.XY{X: float64(e.Frame), Y: y})
		}
	}
	return pts
}

// AnklePlot draws both ankle signals against frame number and marks every
// detected strike, which sits on a local minimum of its side's curve.
func AnklePlot(det *gait.Detection, title string) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Frame"
	p.Y.Label.Text = "Ankle y (normalised, down is positive)"
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	var all []float64
	sides := []struct {
		name   string
		side   gait.Side
		series gait.Series
		color  color.Color
		glyph  draw.GlyphDrawer
	}{
		{"left", gait.Left, det.Left, leftColor, draw.TriangleGlyph{}},
		{"right", gait.Right, det.Right, rightColor, draw.CircleGlyph{}},
	}
	for _, sd := range sides {
		pts := seriesXYs(sd.series)
		if len(pts) == 0 {
			continue
		}
		for _, pt := range pts {
			all = append(all, pt.Y)
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("%s ankle line: %w", sd.name, err)
		}
		line.Color = sd.color
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(sd.name+" ankle", line)

		strikes := strikeXYs(det.Events, sd.side, sd.series)
		if len(strikes) == 0 {
			continue
		}
		marks, err := plotter.NewScatter(strikes)
		if err != nil {
			return nil, fmt.Errorf("%s strike markers: %w", sd.name, err)
		}
		marks.GlyphStyle.Color = sd.color
		marks.GlyphStyle.Shape = sd.glyph
		marks.GlyphStyle.Radius = vg.Points(4)
		p.Add(marks)
		p.Legend.Add(fmt.Sprintf("%s strikes (%d)", sd.name, len(strikes)), marks)
	}
	if len(all) == 0 {
		return nil, ErrNoSignal
	}

	lo, hi := floats.Min(all), floats.Max(all)
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 0.01
	}
	p.Y.Min, p.Y.Max = lo-pad, hi+pad
	p.X.Min, p.X.Max = 0, float64(max(det.FrameCount()-1, 1))
	p.Add(plotter.NewGrid())
	return p, nil
}

// WriteAnklePNG renders AnklePlot as a 14x6 inch PNG.
func WriteAnklePNG(w io.Writer, det *gait.Detection, title string) error {
	p, err := AnklePlot(det, title)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(14*vg.Inch, 6*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("failed to render ankle plot: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write ankle plot: %w", err)
	}
	return nil
}
