package gait

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eventsFrom(candidates []StrikeCandidate, patterns ...StrikePattern) []StrikeEvent {
	out := make([]StrikeEvent, len(candidates))
	for i, c := range candidates {
		p := PatternMidfoot
		if i < len(patterns) {
			p = patterns[i]
		}
		out[i] = StrikeEvent{Frame: c.Frame, Side: c.Side, Pattern: p}
	}
	return out
}

func samplesFrom(angles ...float64) []PostureSample {
	out := make([]PostureSample, len(angles))
	for i, a := range angles {
		out[i] = PostureSample{Frame: i, AngleDeg: a, Category: ClassifyPostureAngle(a)}
	}
	return out
}

func TestCadence(t *testing.T) {
	assert.InDelta(t, 108.0, Cadence(6, 100.0/30.0), 1e-9)
	assert.Equal(t, 0.0, Cadence(6, 0))
	assert.Equal(t, 0.0, Cadence(0, 10))
}

func TestSummarize_MergedScenario(t *testing.T) {
	merged := MergeStrikes([]int{20, 50, 80}, []int{35, 65, 95})
	var order []string
	for _, c := range merged {
		order = append(order, fmt.Sprintf("%d%s", c.Frame, sideInitial(c.Side)))
	}
	assert.Equal(t, []string{"20L", "35R", "50L", "65R", "80L", "95R"}, order)

	r := Summarize(eventsFrom(merged), samplesFrom(0, 1, 2), 100, 30, DefaultParams())
	assert.Equal(t, 6, r.TotalStrikes)
	assert.Equal(t, 3, r.LeftStrikes)
	assert.Equal(t, 3, r.RightStrikes)
	assert.InDelta(t, 3.3333, r.DurationSeconds, 1e-3)
	assert.InDelta(t, 108.0, r.Cadence, 1e-9)
	assert.Equal(t, PatternMidfoot, r.PredominantPattern)
}

func TestPatternTally_FirstEncounteredWinsTies(t *testing.T) {
	var a PatternTally
	for _, p := range []StrikePattern{PatternMidfoot, PatternHeel, PatternHeel, PatternMidfoot} {
		a.Add(p)
	}
	assert.Equal(t, PatternMidfoot, a.Predominant())

	var b PatternTally
	for _, p := range []StrikePattern{PatternForefoot, PatternHeel, PatternMidfoot, PatternMidfoot, PatternHeel} {
		b.Add(p)
	}
	assert.Equal(t, PatternHeel, b.Predominant())
	assert.Equal(t, 5, b.Total())
	assert.Equal(t, map[StrikePattern]int{PatternForefoot: 1, PatternHeel: 2, PatternMidfoot: 2}, b.Counts())

	var empty PatternTally
	assert.Equal(t, PatternUnknown, empty.Predominant())
}

func TestSummarize_ZeroEvents(t *testing.T) {
	r := Summarize(nil, samplesFrom(0, 3, 12, -2), 40, 20, DefaultParams())
	assert.Equal(t, PatternUnknown, r.PredominantPattern)
	assert.Equal(t, 0, r.TotalStrikes)
	assert.Equal(t, 0.0, r.Cadence)
	assert.InDelta(t, 75.0, r.PosturePercentages[PostureGood], 1e-9)
	assert.InDelta(t, 25.0, r.PosturePercentages[PostureForwardLean], 1e-9)
	assert.InDelta(t, 0.0, r.PosturePercentages[PostureBackwardLean], 1e-9)
}

func TestSummarize_NoPostureSamples(t *testing.T) {
	r := Summarize(nil, nil, 40, 20, DefaultParams())
	require.Len(t, r.PosturePercentages, 3)
	for _, c := range PostureCategories {
		assert.Equal(t, 0.0, r.PosturePercentages[c])
	}
	assert.Equal(t, PostureUnknown, r.Posture)
}

func TestSummarize_MeanPostureDiffersFromCounts(t *testing.T) {
	// Two of three frames lean forward, but the mean angle is inside the
	// good band.
	r := Summarize(nil, samplesFrom(11, 11, -6), 3, 30, DefaultParams())
	assert.InDelta(t, 200.0/3, r.PosturePercentages[PostureForwardLean], 1e-9)
	assert.InDelta(t, 100.0/3, r.PosturePercentages[PostureBackwardLean], 1e-9)
	assert.InDelta(t, 16.0/3, r.MeanTorsoAngleDeg, 1e-9)
	assert.Equal(t, PostureGood, r.Posture)
}
