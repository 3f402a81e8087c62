package gait

import (
	"fmt"
	"math"

	"github.com/banshee-data/stride.report/internal/monitoring"
)

var logf = monitoring.Component("gait")

// Analyzer runs the buffer, detect and replay phases with one set of
// thresholds.
type Analyzer struct {
	params Params
}

// NewAnalyzer validates p and returns an Analyzer.
func NewAnalyzer(p Params) (*Analyzer, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid analysis params: %w", err)
	}
	return &Analyzer{params: p}, nil
}

// Params returns the thresholds in use.
func (a *Analyzer) Params() Params {
	return a.params
}

// Buffered is a sequence whose ankle signals are fully materialised.
type Buffered struct {
	params Params
	seq    Sequence
	left   Series
	right  Series
	valid  int
}

// Buffer checks the sequence and extracts both ankle signals. It fails with
// ErrInputUnavailable for a malformed sequence and with an
// InsufficientFramesError when too few frames were detected.
func (a *Analyzer) Buffer(seq Sequence) (*Buffered, error) {
	if seq.FPS <= 0 || math.IsNaN(seq.FPS) || math.IsInf(seq.FPS, 0) {
		return nil, fmt.Errorf("%w: frame rate must be positive, got %v", ErrInputUnavailable, seq.FPS)
	}
	for i, f := range seq.Frames {
		if f.Index != i {
			return nil, fmt.Errorf("%w: frame at position %d has index %d", ErrInputUnavailable, i, f.Index)
		}
	}
	valid := seq.ValidFrames()
	if valid < a.params.MinValidFrames {
		return nil, &InsufficientFramesError{Valid: valid, Required: a.params.MinValidFrames}
	}
	logf("buffered %d frames (%d with keypoints) at %.2f fps", seq.FrameCount(), valid, seq.FPS)
	return &Buffered{
		params: a.params,
		seq:    seq,
		left:   AnkleSeries(seq.Frames, Left),
		right:  AnkleSeries(seq.Frames, Right),
		valid:  valid,
	}, nil
}

// Series returns the ankle height signal for one side.
func (b *Buffered) Series(side Side) Series {
	if side == Right {
		return b.right
	}
	return b.left
}

// ValidFrames is the number of frames with keypoints.
func (b *Buffered) ValidFrames() int {
	return b.valid
}

// Detection holds the final strike events and posture samples.
type Detection struct {
	params     Params
	frameCount int
	fps        float64

	Left     Series
	Right    Series
	Events   []StrikeEvent
	Postures []PostureSample
}

// Detect finds and classifies strikes on both sides and samples posture on
// every detected frame.
func (b *Buffered) Detect() *Detection {
	frames := b.seq.Frames
	candidates := MergeStrikes(
		FindLocalMinima(b.left, b.params.Window),
		FindLocalMinima(b.right, b.params.Window),
	)

	events := make([]StrikeEvent, 0, len(candidates))
	for _, c := range candidates {
		kp, ok := frames[c.Frame].Keypoints.Get()
		if !ok {
			continue
		}
		pattern, angle := b.params.ClassifyStrike(kp, c.Side)
		events = append(events, StrikeEvent{Frame: c.Frame, Side: c.Side, Pattern: pattern, AngleDeg: angle})
	}

	postures := make([]PostureSample, 0, b.valid)
	for _, f := range frames {
		kp, ok := f.Keypoints.Get()
		if !ok {
			continue
		}
		category, angle := b.params.ClassifyPosture(kp)
		postures = append(postures, PostureSample{Frame: f.Index, AngleDeg: angle, Category: category})
	}

	logf("detected %d strikes, %d posture samples", len(events), len(postures))
	return &Detection{
		params:     b.params,
		frameCount: len(frames),
		fps:        b.seq.FPS,
		Left:       b.left,
		Right:      b.right,
		Events:     events,
		Postures:   postures,
	}
}

// FrameCount is the number of frames in the analysed sequence.
func (d *Detection) FrameCount() int {
	return d.frameCount
}

// FPS is the frame rate of the analysed sequence.
func (d *Detection) FPS() float64 {
	return d.fps
}

// Report summarises the whole sequence.
func (d *Detection) Report() Report {
	return Summarize(d.Events, d.Postures, d.frameCount, d.fps, d.params)
}

// Replay starts a causal per-frame replay over the detection.
func (d *Detection) Replay() *Replay {
	return NewReplay(d.Events, d.Postures, d.frameCount, d.fps)
}

// Analyze runs the buffer and detect phases.
func (a *Analyzer) Analyze(seq Sequence) (*Detection, error) {
	b, err := a.Buffer(seq)
	if err != nil {
		return nil, err
	}
	return b.Detect(), nil
}
