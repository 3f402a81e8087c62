package gait

import (
	"iter"
	"slices"
)

// FrameMetrics are the cumulative values known at one frame during causal
// replay. Only strikes and posture samples at or before Frame contribute.
type FrameMetrics struct {
	Frame              int                         `json:"frame"`
	ElapsedSeconds     float64                     `json:"elapsed_seconds"`
	StepCount          int                         `json:"step_count"`
	Cadence            float64                     `json:"cadence_spm"`
	PredominantPattern StrikePattern               `json:"predominant_pattern"`
	NewStrikes         []StrikeEvent               `json:"new_strikes,omitempty"`
	PostureAngleDeg    Optional[float64]           `json:"posture_angle_deg"`
	PostureCategory    Optional[PostureCategory]   `json:"posture_category"`
	PosturePercentages map[PostureCategory]float64 `json:"posture_percentages"`
}

// Replay walks frames in order and yields cumulative metrics. It consumes
// the globally detected events, so its final frame agrees with the batch
// report.
type Replay struct {
	events     []StrikeEvent
	samples    []PostureSample
	frameCount int
	fps        float64

	frame    int
	ei, si   int
	patterns PatternTally
	postures PostureTally
}

// NewReplay prepares a replay over frameCount frames.
func NewReplay(events []StrikeEvent, samples []PostureSample, frameCount int, fps float64) *Replay {
	ev := slices.Clone(events)
	slices.SortStableFunc(ev, func(a, b StrikeEvent) int { return a.Frame - b.Frame })
	ps := slices.Clone(samples)
	slices.SortStableFunc(ps, func(a, b PostureSample) int { return a.Frame - b.Frame })
	return &Replay{
		events:     ev,
		samples:    ps,
		frameCount: frameCount,
		fps:        fps,
	}
}

// Next advances one frame. It returns false once every frame was emitted.
func (r *Replay) Next() (FrameMetrics, bool) {
	if r.frame >= r.frameCount {
		return FrameMetrics{}, false
	}
	i := r.frame
	r.frame++

	m := FrameMetrics{Frame: i}
	for r.ei < len(r.events) && r.events[r.ei].Frame <= i {
		e := r.events[r.ei]
		r.patterns.Add(e.Pattern)
		m.NewStrikes = append(m.NewStrikes, e)
		r.ei++
	}
	for r.si < len(r.samples) && r.samples[r.si].Frame <= i {
		s := r.samples[r.si]
		r.postures.Add(s.Category)
		if s.Frame == i {
			m.PostureAngleDeg = Some(s.AngleDeg)
			m.PostureCategory = Some(s.Category)
		}
		r.si++
	}

	m.ElapsedSeconds = durationSeconds(i+1, r.fps)
	m.StepCount = r.patterns.Total()
	m.Cadence = Cadence(m.StepCount, m.ElapsedSeconds)
	m.PredominantPattern = r.patterns.Predominant()
	m.PosturePercentages = r.postures.Percentages()
	return m, true
}

// All yields the remaining frames.
func (r *Replay) All() iter.Seq[FrameMetrics] {
	return func(yield func(FrameMetrics) bool) {
		for {
			m, ok := r.Next()
			if !ok || !yield(m) {
				return
			}
		}
	}
}

// Collect drains the replay into a slice.
func (r *Replay) Collect() []FrameMetrics {
	out := make([]FrameMetrics, 0, r.frameCount-r.frame)
	for m := range r.All() {
		out = append(out, m)
	}
	return out
}
