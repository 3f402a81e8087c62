package gait

import (
	"errors"
	"fmt"
)

var (
	// ErrInputUnavailable means the frame source could not be opened or read.
	ErrInputUnavailable = errors.New("input unavailable")
	// ErrInsufficientValidFrames means too few frames carried keypoints.
	ErrInsufficientValidFrames = errors.New("insufficient valid frames")
)

// InsufficientFramesError reports how many detected frames were found
// against the required floor.
type InsufficientFramesError struct {
	Valid    int
	Required int
}

func (e *InsufficientFramesError) Error() string {
	return fmt.Sprintf("insufficient valid frames for analysis: %d of %d required", e.Valid, e.Required)
}

// Is matches ErrInsufficientValidFrames.
func (e *InsufficientFramesError) Is(target error) bool {
	return target == ErrInsufficientValidFrames
}
