package gait

import "fmt"

// Defaults used when no configuration overrides them.
const (
	DefaultWindow             = 5
	DefaultMinValidFrames     = 10
	DefaultStrikeDeadZoneDeg  = 5.0
	DefaultPostureForwardDeg  = 10.0
	DefaultPostureBackwardDeg = -5.0
)

// Params holds the analysis thresholds.
type Params struct {
	// Window is the half-width of the minimum search neighbourhood.
	Window int `json:"window"`
	// MinValidFrames is the fewest detected frames a report needs.
	MinValidFrames int `json:"min_valid_frames"`
	// StrikeDeadZoneDeg bounds the midfoot band [-dz, +dz] of the heel->toe angle.
	StrikeDeadZoneDeg float64 `json:"strike_dead_zone_deg"`
	// PostureForwardDeg is the largest torso angle still classified good.
	PostureForwardDeg float64 `json:"posture_forward_limit_deg"`
	// PostureBackwardDeg is the smallest torso angle still classified good.
	PostureBackwardDeg float64 `json:"posture_backward_limit_deg"`
}

// DefaultParams returns the stock thresholds.
func DefaultParams() Params {
	return Params{
		Window:             DefaultWindow,
		MinValidFrames:     DefaultMinValidFrames,
		StrikeDeadZoneDeg:  DefaultStrikeDeadZoneDeg,
		PostureForwardDeg:  DefaultPostureForwardDeg,
		PostureBackwardDeg: DefaultPostureBackwardDeg,
	}
}

// Validate rejects thresholds the analysis cannot run with.
func (p Params) Validate() error {
	if p.Window < 1 {
		return fmt.Errorf("window must be at least 1, got %d", p.Window)
	}
	if p.MinValidFrames < 1 {
		return fmt.Errorf("min valid frames must be at least 1, got %d", p.MinValidFrames)
	}
	if p.StrikeDeadZoneDeg < 0 {
		return fmt.Errorf("strike dead zone must be non-negative, got %f", p.StrikeDeadZoneDeg)
	}
	if p.PostureBackwardDeg > p.PostureForwardDeg {
		return fmt.Errorf("posture backward limit %f exceeds forward limit %f", p.PostureBackwardDeg, p.PostureForwardDeg)
	}
	return nil
}
