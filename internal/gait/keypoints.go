package gait

import (
	"encoding/json"
	"fmt"
)

// Joint identifies one of the body landmarks used for gait analysis.
type Joint uint8

const (
	LeftAnkle Joint = iota
	RightAnkle
	LeftHeel
	RightHeel
	LeftFootIndex
	RightFootIndex
	LeftHip
	RightHip
	LeftShoulder
	RightShoulder

	// NumJoints is the size of a KeypointSet.
	NumJoints = 10
)

var jointNames = [NumJoints]string{
	LeftAnkle:      "left_ankle",
	RightAnkle:     "right_ankle",
	LeftHeel:       "left_heel",
	RightHeel:      "right_heel",
	LeftFootIndex:  "left_foot_index",
	RightFootIndex: "right_foot_index",
	LeftHip:        "left_hip",
	RightHip:       "right_hip",
	LeftShoulder:   "left_shoulder",
	RightShoulder:  "right_shoulder",
}

func (j Joint) String() string {
	if int(j) < NumJoints {
		return jointNames[j]
	}
	return fmt.Sprintf("joint(%d)", uint8(j))
}

// Joints returns every joint in declaration order.
func Joints() []Joint {
	out := make([]Joint, NumJoints)
	for i := range out {
		out[i] = Joint(i)
	}
	return out
}

// ParseJoint maps a wire name such as "left_heel" to its Joint.
func ParseJoint(name string) (Joint, error) {
	for i, n := range jointNames {
		if n == name {
			return Joint(i), nil
		}
	}
	return 0, fmt.Errorf("unknown joint %q", name)
}

// Side is the foot (or body half) an observation belongs to.
type Side uint8

const (
	Left Side = iota
	Right
)

func (s Side) String() string {
	if s == Right {
		return "right"
	}
	return "left"
}

// MarshalJSON encodes the side as "left" or "right".
func (s Side) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts "left" or "right".
func (s *Side) UnmarshalJSON(b []byte) error {
	var v string
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	side, err := ParseSide(v)
	if err != nil {
		return err
	}
	*s = side
	return nil
}

// ParseSide maps "left"/"right" to a Side.
func ParseSide(v string) (Side, error) {
	switch v {
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	}
	return Left, fmt.Errorf("unknown side %q", v)
}

func (s Side) ankle() Joint {
	if s == Right {
		return RightAnkle
	}
	return LeftAnkle
}

func (s Side) heel() Joint {
	if s == Right {
		return RightHeel
	}
	return LeftHeel
}

func (s Side) footIndex() Joint {
	if s == Right {
		return RightFootIndex
	}
	return LeftFootIndex
}

// Point is a normalised image-plane coordinate. X and Y lie in [0,1] and Y
// grows downward.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns p - q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Midpoint returns the point halfway between p and q.
func Midpoint(p, q Point) Point {
	return Point{X: (p.X + q.X) / 2, Y: (p.Y + q.Y) / 2}
}

// KeypointSet holds one position per Joint for a single detected person.
type KeypointSet [NumJoints]Point

// At returns the position of joint j.
func (k KeypointSet) At(j Joint) Point {
	return k[j]
}

// Set stores the position of joint j.
func (k *KeypointSet) Set(j Joint, p Point) {
	k[j] = p
}

// MarshalJSON encodes the set as an object keyed by joint wire name.
func (k KeypointSet) MarshalJSON() ([]byte, error) {
	m := make(map[string]Point, NumJoints)
	for i, p := range k {
		m[jointNames[i]] = p
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes an object keyed by joint wire name. All ten joints
// must be present; a partial set is rejected rather than zero-filled.
func (k *KeypointSet) UnmarshalJSON(b []byte) error {
	var m map[string]Point
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	var out KeypointSet
	seen := 0
	for name, p := range m {
		j, err := ParseJoint(name)
		if err != nil {
			continue
		}
		out[j] = p
		seen++
	}
	if seen != NumJoints {
		return fmt.Errorf("keypoint set has %d of %d joints", seen, NumJoints)
	}
	*k = out
	return nil
}

// Frame is one video frame and, when pose estimation succeeded, its
// keypoints.
type Frame struct {
	Index     int                   `json:"index"`
	Keypoints Optional[KeypointSet] `json:"keypoints"`
}

// Detected reports whether the frame carries a keypoint set.
func (f Frame) Detected() bool {
	return f.Keypoints.Present()
}

// Sequence is the full output of the pose estimator for one video.
// Frames is dense: len(Frames) is the total frame count and Frames[i].Index
// equals i.
type Sequence struct {
	FPS    float64 `json:"fps"`
	Frames []Frame `json:"frames"`
}

// NewSequence allocates a sequence of frameCount frames, all without
// detections.
func NewSequence(fps float64, frameCount int) Sequence {
	frames := make([]Frame, frameCount)
	for i := range frames {
		frames[i].Index = i
	}
	return Sequence{FPS: fps, Frames: frames}
}

// FrameCount is the total number of frames, detected or not.
func (s Sequence) FrameCount() int {
	return len(s.Frames)
}

// DurationSeconds is FrameCount / FPS, or 0 for a non-positive FPS.
func (s Sequence) DurationSeconds() float64 {
	return durationSeconds(len(s.Frames), s.FPS)
}

// ValidFrames counts the frames that carry a keypoint set.
func (s Sequence) ValidFrames() int {
	n := 0
	for _, f := range s.Frames {
		if f.Detected() {
			n++
		}
	}
	return n
}

func durationSeconds(frames int, fps float64) float64 {
	if fps <= 0 {
		return 0
	}
	return float64(frames) / fps
}
