package gait

import (
	"gonum.org/v1/gonum/stat"
)

// Cadence is steps per minute over the given number of seconds.
func Cadence(steps int, seconds float64) float64 {
	if seconds <= 0 {
		return 0
	}
	return float64(steps) * 60 / seconds
}

// PatternTally counts strike patterns and remembers the order in which each
// pattern was first seen.
type PatternTally struct {
	counts map[StrikePattern]int
	order  []StrikePattern
	total  int
}

// Add records one strike pattern.
func (t *PatternTally) Add(p StrikePattern) {
	if t.counts == nil {
		t.counts = make(map[StrikePattern]int, 3)
	}
	if _, seen := t.counts[p]; !seen {
		t.order = append(t.order, p)
	}
	t.counts[p]++
	t.total++
}

// Total is the number of patterns recorded.
func (t *PatternTally) Total() int {
	return t.total
}

// Predominant is the most frequent pattern. Among equal counts the pattern
// seen first wins. With nothing recorded it is PatternUnknown.
func (t *PatternTally) Predominant() StrikePattern {
	best := PatternUnknown
	bestCount := 0
	for _, p := range t.order {
		if c := t.counts[p]; c > bestCount {
			best, bestCount = p, c
		}
	}
	return best
}

// Counts returns a copy of the per-pattern counts.
func (t *PatternTally) Counts() map[StrikePattern]int {
	out := make(map[StrikePattern]int, len(t.counts))
	for p, c := range t.counts {
		out[p] = c
	}
	return out
}

// PostureTally counts posture samples per category.
type PostureTally struct {
	counts map[PostureCategory]int
	total  int
}

// Add records one sample category.
func (t *PostureTally) Add(c PostureCategory) {
	if t.counts == nil {
		t.counts = make(map[PostureCategory]int, len(PostureCategories))
	}
	t.counts[c]++
	t.total++
}

// Total is the number of samples recorded.
func (t *PostureTally) Total() int {
	return t.total
}

// Percentages returns the share of each category in percent. Every category
// is present; all are 0 when nothing was recorded.
func (t *PostureTally) Percentages() map[PostureCategory]float64 {
	out := make(map[PostureCategory]float64, len(PostureCategories))
	for _, c := range PostureCategories {
		if t.total == 0 {
			out[c] = 0
			continue
		}
		out[c] = float64(t.counts[c]) / float64(t.total) * 100
	}
	return out
}

// Summarize builds the batch report from the complete event and sample
// lists. events must already be in chronological order.
func Summarize(events []StrikeEvent, samples []PostureSample, frameCount int, fps float64, p Params) Report {
	duration := durationSeconds(frameCount, fps)

	var patterns PatternTally
	left, right := 0, 0
	for _, e := range events {
		patterns.Add(e.Pattern)
		if e.Side == Right {
			right++
		} else {
			left++
		}
	}

	var postures PostureTally
	angles := make([]float64, 0, len(samples))
	for _, s := range samples {
		postures.Add(s.Category)
		angles = append(angles, s.AngleDeg)
	}

	posture := PostureUnknown
	meanAngle := 0.0
	if len(angles) > 0 {
		meanAngle = stat.Mean(angles, nil)
		posture = p.postureCategory(meanAngle)
	}

	return Report{
		DurationSeconds:    duration,
		FPS:                fps,
		FrameCount:         frameCount,
		ValidFrames:        len(samples),
		TotalStrikes:       len(events),
		LeftStrikes:        left,
		RightStrikes:       right,
		Cadence:            Cadence(len(events), duration),
		PredominantPattern: patterns.Predominant(),
		PatternCounts:      patterns.Counts(),
		Posture:            posture,
		MeanTorsoAngleDeg:  meanAngle,
		PosturePercentages: postures.Percentages(),
	}
}
