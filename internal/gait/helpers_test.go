package gait

import (
	"math"
	"testing"
)

// standingPose returns a keypoint set with both feet flat, an upright torso
// and ankles at the given heights.
func standingPose(leftAnkleY, rightAnkleY float64) KeypointSet {
	var kp KeypointSet
	kp.Set(LeftAnkle, Point{X: 0.45, Y: leftAnkleY})
	kp.Set(RightAnkle, Point{X: 0.55, Y: rightAnkleY})
	kp.Set(LeftHeel, Point{X: 0.43, Y: leftAnkleY + 0.02})
	kp.Set(RightHeel, Point{X: 0.53, Y: rightAnkleY + 0.02})
	kp.Set(LeftFootIndex, Point{X: 0.50, Y: leftAnkleY + 0.02})
	kp.Set(RightFootIndex, Point{X: 0.60, Y: rightAnkleY + 0.02})
	kp.Set(LeftHip, Point{X: 0.45, Y: 0.55})
	kp.Set(RightHip, Point{X: 0.55, Y: 0.55})
	kp.Set(LeftShoulder, Point{X: 0.45, Y: 0.25})
	kp.Set(RightShoulder, Point{X: 0.55, Y: 0.25})
	return kp
}

// tiltFoot places the foot index at the given heel->toe angle.
func tiltFoot(kp *KeypointSet, side Side, angleDeg float64) {
	heel := kp.At(side.heel())
	rad := angleDeg * math.Pi / 180
	kp.Set(side.footIndex(), Point{X: heel.X + 0.08*math.Cos(rad), Y: heel.Y + 0.08*math.Sin(rad)})
}

// leanTorso moves both shoulders so the torso angle equals angleDeg.
func leanTorso(kp *KeypointSet, angleDeg float64) {
	hip := HipMidpoint(*kp)
	rad := angleDeg * math.Pi / 180
	mid := Point{X: hip.X + 0.3*math.Sin(rad), Y: hip.Y - 0.3*math.Cos(rad)}
	kp.Set(LeftShoulder, Point{X: mid.X - 0.05, Y: mid.Y})
	kp.Set(RightShoulder, Point{X: mid.X + 0.05, Y: mid.Y})
}

// vSignal is a V-shaped height profile with strict minima at the given
// frames.
func vSignal(frame int, minima []int) float64 {
	best := math.MaxFloat64
	for _, m := range minima {
		d := math.Abs(float64(frame - m))
		if d < best {
			best = d
		}
	}
	return 0.7 + 0.005*best
}

// syntheticSequence builds n detected frames whose ankles dip at the given
// minima.
func syntheticSequence(t *testing.T, n int, fps float64, leftMinima, rightMinima []int) Sequence {
	t.Helper()
	seq := NewSequence(fps, n)
	for i := range seq.Frames {
		seq.Frames[i].Keypoints = Some(standingPose(vSignal(i, leftMinima), vSignal(i, rightMinima)))
	}
	return seq
}

// dropFrames removes the keypoints from the given frames.
func dropFrames(seq Sequence, frames ...int) {
	for _, f := range frames {
		seq.Frames[f].Keypoints = None[KeypointSet]()
	}
}

// updatePose edits the keypoints of a detected frame in place.
func updatePose(t *testing.T, seq Sequence, frame int, fn func(kp *KeypointSet)) {
	t.Helper()
	kp, ok := seq.Frames[frame].Keypoints.Get()
	if !ok {
		t.Fatalf("frame %d has no keypoints", frame)
	}
	fn(&kp)
	seq.Frames[frame].Keypoints = Some(kp)
}

func seriesOf(values ...float64) Series {
	s := make(Series, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		s[i] = Some(v)
	}
	return s
}
