package gait

import (
	"fmt"
	"strings"
)

// Report is the final summary of one analysed sequence.
type Report struct {
	DurationSeconds    float64                     `json:"duration_seconds"`
	FPS                float64                     `json:"fps"`
	FrameCount         int                         `json:"frame_count"`
	ValidFrames        int                         `json:"valid_frames"`
	TotalStrikes       int                         `json:"total_strikes"`
	LeftStrikes        int                         `json:"left_strikes"`
	RightStrikes       int                         `json:"right_strikes"`
	Cadence            float64                     `json:"cadence_spm"`
	PredominantPattern StrikePattern               `json:"predominant_pattern"`
	PatternCounts      map[StrikePattern]int       `json:"pattern_counts"`
	Posture            PostureCategory             `json:"posture"`
	MeanTorsoAngleDeg  float64                     `json:"mean_torso_angle_deg"`
	PosturePercentages map[PostureCategory]float64 `json:"posture_percentages"`
}

// Fields flattens the report into a single level key/value record for
// notification payloads and storage.
func (r Report) Fields() map[string]any {
	f := map[string]any{
		"duration_seconds":     r.DurationSeconds,
		"fps":                  r.FPS,
		"frame_count":          r.FrameCount,
		"valid_frames":         r.ValidFrames,
		"total_strikes":        r.TotalStrikes,
		"left_strikes":         r.LeftStrikes,
		"right_strikes":        r.RightStrikes,
		"cadence_spm":          r.Cadence,
		"predominant_pattern":  string(r.PredominantPattern),
		"posture":              string(r.Posture),
		"mean_torso_angle_deg": r.MeanTorsoAngleDeg,
	}
	for _, c := range PostureCategories {
		f[postureFieldKey(c)] = r.PosturePercentages[c]
	}
	for _, p := range []StrikePattern{PatternHeel, PatternMidfoot, PatternForefoot} {
		f["strikes_"+string(p)] = r.PatternCounts[p]
	}
	return f
}

func postureFieldKey(c PostureCategory) string {
	return "posture_" + strings.ReplaceAll(string(c), "-", "_") + "_pct"
}

// Format renders the report as plain text.
func (r Report) Format() string {
	var b strings.Builder
	b.WriteString("Running Form Analysis:\n")
	fmt.Fprintf(&b, "- Video Duration: %.2f seconds\n", r.DurationSeconds)
	fmt.Fprintf(&b, "- Total Foot Strikes: %d (left %d, right %d)\n", r.TotalStrikes, r.LeftStrikes, r.RightStrikes)
	fmt.Fprintf(&b, "- Cadence: %.2f steps per minute\n", r.Cadence)
	fmt.Fprintf(&b, "- Predominant Foot Strike Pattern: %s\n", r.PredominantPattern)
	fmt.Fprintf(&b, "- Posture: %s (mean torso angle %.1f°)\n", r.Posture.Label(), r.MeanTorsoAngleDeg)
	for _, c := range PostureCategories {
		fmt.Fprintf(&b, "  - %s: %.1f%%\n", c.Label(), r.PosturePercentages[c])
	}
	return b.String()
}
