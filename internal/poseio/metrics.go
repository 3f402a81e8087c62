package poseio

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/banshee-data/stride.report/internal/gait"
)

// MetricsLine is one JSON Lines record of the per-frame overlay feed.
type MetricsLine struct {
	Frame           int                `json:"frame"`
	ElapsedSeconds  float64            `json:"elapsed_seconds"`
	StepCount       int                `json:"step_count"`
	Cadence         float64            `json:"cadence_spm"`
	Pattern         string             `json:"pattern"`
	NewStrikes      []string           `json:"new_strikes,omitempty"`
	PostureAngleDeg *float64           `json:"posture_angle_deg"`
	Posture         string             `json:"posture,omitempty"`
	PosturePct      map[string]float64 `json:"posture_pct"`
}

// NewMetricsLine flattens frame metrics for the overlay feed.
func NewMetricsLine(m gait.FrameMetrics) MetricsLine {
	line := MetricsLine{
		Frame:          m.Frame,
		ElapsedSeconds: m.ElapsedSeconds,
		StepCount:      m.StepCount,
		Cadence:        m.Cadence,
		Pattern:        m.PredominantPattern.Label(),
		PosturePct:     make(map[string]float64, len(m.PosturePercentages)),
	}
	for _, e := range m.NewStrikes {
		line.NewStrikes = append(line.NewStrikes, e.String())
	}
	if a, ok := m.PostureAngleDeg.Get(); ok {
		line.PostureAngleDeg = &a
	}
	if c, ok := m.PostureCategory.Get(); ok {
		line.Posture = c.Label()
	}
	for c, pct := range m.PosturePercentages {
		line.PosturePct[string(c)] = pct
	}
	return line
}

// WriteFrameMetrics drains the replay into w as JSON Lines and returns the
// number of lines written.
func WriteFrameMetrics(w io.Writer, r *gait.Replay) (int, error) {
	enc := json.NewEncoder(w)
	n := 0
	for m := range r.All() {
		if err := enc.Encode(NewMetricsLine(m)); err != nil {
			return n, fmt.Errorf("write metrics for frame %d: %w", m.Frame, err)
		}
		n++
	}
	return n, nil
}
