package gait

// Series is a per-frame scalar signal. Index i belongs to frame i; frames
// without a detection hold an absent value.
type Series []Optional[float64]

// Defined counts the present samples.
func (s Series) Defined() int {
	n := 0
	for _, v := range s {
		if v.Present() {
			n++
		}
	}
	return n
}

// Values returns the present samples and their frame indices.
func (s Series) Values() (frames []int, values []float64) {
	for i, v := range s {
		if x, ok := v.Get(); ok {
			frames = append(frames, i)
			values = append(values, x)
		}
	}
	return frames, values
}

// AnkleHeight is the vertical image coordinate of the ankle on the given
// side. Larger values are lower in the frame.
func AnkleHeight(f Frame, side Side) Optional[float64] {
	kp, ok := f.Keypoints.Get()
	if !ok {
		return None[float64]()
	}
	return Some(kp[side.ankle()].Y)
}

// HeelToe returns the heel to foot-index vector for one foot.
func HeelToe(kp KeypointSet, side Side) Point {
	return kp[side.footIndex()].Sub(kp[side.heel()])
}

// HipMidpoint is the midpoint of the two hips.
func HipMidpoint(kp KeypointSet) Point {
	return Midpoint(kp[LeftHip], kp[RightHip])
}

// ShoulderMidpoint is the midpoint of the two shoulders.
func ShoulderMidpoint(kp KeypointSet) Point {
	return Midpoint(kp[LeftShoulder], kp[RightShoulder])
}

// ExtractSeries projects every frame through fn, keeping index alignment.
func ExtractSeries(frames []Frame, fn func(Frame) Optional[float64]) Series {
	out := make(Series, len(frames))
	for i, f := range frames {
		out[i] = fn(f)
	}
	return out
}

// AnkleSeries extracts the ankle height signal for one side.
func AnkleSeries(frames []Frame, side Side) Series {
	return ExtractSeries(frames, func(f Frame) Optional[float64] {
		return AnkleHeight(f, side)
	})
}
