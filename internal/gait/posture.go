package gait

import (
	"math"
)

// PostureCategory buckets the torso lean.
type PostureCategory string

const (
	PostureGood         PostureCategory = "good"
	PostureForwardLean  PostureCategory = "forward-lean"
	PostureBackwardLean PostureCategory = "backward-lean"
	// PostureUnknown is reported when there are no posture samples.
	PostureUnknown PostureCategory = "unknown"
)

// PostureCategories lists the sample categories in report order.
var PostureCategories = []PostureCategory{PostureGood, PostureForwardLean, PostureBackwardLean}

// PostureSample is the torso angle of one detected frame.
type PostureSample struct {
	Frame    int             `json:"frame"`
	AngleDeg float64         `json:"angle_deg"`
	Category PostureCategory `json:"category"`
}

// TorsoAngle is the lean of the hip->shoulder vector from vertical in
// degrees, atan2(dx, -dy). Positive values lean toward +x.
func TorsoAngle(kp KeypointSet) float64 {
	v := ShoulderMidpoint(kp).Sub(HipMidpoint(kp))
	return degrees(math.Atan2(v.X, -v.Y))
}

// ClassifyPostureAngle buckets a torso angle with the default limits.
func ClassifyPostureAngle(angleDeg float64) PostureCategory {
	return classifyPosture(angleDeg, DefaultPostureBackwardDeg, DefaultPostureForwardDeg)
}

// ClassifyPosture computes and buckets the torso angle of one frame.
func (p Params) ClassifyPosture(kp KeypointSet) (PostureCategory, float64) {
	angle := TorsoAngle(kp)
	return p.postureCategory(angle), angle
}

func (p Params) postureCategory(angleDeg float64) PostureCategory {
	return classifyPosture(angleDeg, p.PostureBackwardDeg, p.PostureForwardDeg)
}

// Both limits belong to the good band.
func classifyPosture(angleDeg, backward, forward float64) PostureCategory {
	switch {
	case angleDeg > forward:
		return PostureForwardLean
	case angleDeg < backward:
		return PostureBackwardLean
	default:
		return PostureGood
	}
}

// Label is the human readable category name.
func (c PostureCategory) Label() string {
	switch c {
	case PostureGood:
		return "Good"
	case PostureForwardLean:
		return "Excessive Forward Lean"
	case PostureBackwardLean:
		return "Leaning Back"
	}
	return "Unknown"
}
