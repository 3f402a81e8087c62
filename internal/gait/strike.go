package gait

import (
	"encoding/json"
	"fmt"
	"math"
)

// StrikePattern is the part of the foot that lands first.
type StrikePattern string

const (
	PatternHeel     StrikePattern = "heel"
	PatternMidfoot  StrikePattern = "midfoot"
	PatternForefoot StrikePattern = "forefoot"
	// PatternUnknown is reported when no strikes were detected.
	PatternUnknown StrikePattern = "unknown"
)

// StrikeEvent is one classified foot strike.
type StrikeEvent struct {
	Frame    int           `json:"frame"`
	Side     Side          `json:"side"`
	Pattern  StrikePattern `json:"pattern"`
	AngleDeg float64       `json:"angle_deg"`
}

func (e StrikeEvent) String() string {
	return fmt.Sprintf("%d%s(%s)", e.Frame, sideInitial(e.Side), e.Pattern)
}

func sideInitial(s Side) string {
	if s == Right {
		return "R"
	}
	return "L"
}

// StrikeAngle is the heel->toe angle in degrees, atan2(dy, dx) in image
// coordinates. A toe below the heel gives a positive angle.
func StrikeAngle(kp KeypointSet, side Side) float64 {
	v := HeelToe(kp, side)
	return degrees(math.Atan2(v.Y, v.X))
}

// ClassifyStrikeAngle buckets a heel->toe angle with the default dead zone.
func ClassifyStrikeAngle(angleDeg float64) StrikePattern {
	return classifyStrike(angleDeg, DefaultStrikeDeadZoneDeg)
}

// ClassifyStrike computes and buckets the strike angle for one foot.
func (p Params) ClassifyStrike(kp KeypointSet, side Side) (StrikePattern, float64) {
	angle := StrikeAngle(kp, side)
	return classifyStrike(angle, p.StrikeDeadZoneDeg), angle
}

// The dead zone is inclusive at both ends: exactly ±dz is midfoot.
func classifyStrike(angleDeg, deadZone float64) StrikePattern {
	switch {
	case angleDeg < -deadZone:
		return PatternHeel
	case angleDeg > deadZone:
		return PatternForefoot
	default:
		return PatternMidfoot
	}
}

// Label is the human readable pattern name.
func (p StrikePattern) Label() string {
	switch p {
	case PatternHeel:
		return "Heel"
	case PatternMidfoot:
		return "Midfoot"
	case PatternForefoot:
		return "Forefoot"
	}
	return "Unknown"
}

// UnmarshalJSON rejects unrecognised pattern names.
func (p *StrikePattern) UnmarshalJSON(b []byte) error {
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch StrikePattern(v) {
	case PatternHeel, PatternMidfoot, PatternForefoot, PatternUnknown:
		*p = StrikePattern(v)
		return nil
	}
	return fmt.Errorf("unknown strike pattern %q", v)
}

func degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}
