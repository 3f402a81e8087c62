// Package testutil provides shared test fixtures for keypoint sequences.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/banshee-data/stride.report/internal/gait"
	"github.com/banshee-data/stride.report/internal/monitoring"
	"github.com/banshee-data/stride.report/internal/poseio"
)

// QuietLogs mutes the diagnostic logger for the rest of the test.
func QuietLogs(t testing.TB) {
	t.Helper()
	old := monitoring.Logf
	monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.SetLogger(old) })
}

// Pose is an upright runner with every joint at the frame centre except the
// ankles, which sit at the given heights. Feet are flat and the torso is
// vertical, so strikes classify as midfoot and posture as good.
func Pose(leftY, rightY float64) gait.KeypointSet {
	var kp gait.KeypointSet
	for _, j := range gait.Joints() {
		kp.Set(j, gait.Point{X: 0.5, Y: 0.5})
	}
	kp.Set(gait.LeftShoulder, gait.Point{X: 0.5, Y: 0.3})
	kp.Set(gait.RightShoulder, gait.Point{X: 0.5, Y: 0.3})
	kp.Set(gait.LeftAnkle, gait.Point{X: 0.45, Y: leftY})
	kp.Set(gait.RightAnkle, gait.Point{X: 0.55, Y: rightY})
	return kp
}

func absDiff(a, b int) float64 {
	if a > b {
		return float64(a - b)
	}
	return float64(b - a)
}

// Stride frame layout: two seconds at 30 fps, strikes at 15L, 30R and 45L.
const (
	StrideFPS        = 30
	StrideFrames     = 60
	StrideStrikes    = 3
	StrideCadenceSPM = 90.0
)

// StrideSequence returns the fixed three-strike run described above. Ankle
// heights are V shaped around each strike frame.
func StrideSequence() gait.Sequence {
	seq := gait.NewSequence(StrideFPS, StrideFrames)
	for i := range seq.Frames {
		left := 0.7 + 0.005*min(absDiff(i, 15), absDiff(i, 45))
		right := 0.7 + 0.005*absDiff(i, 30)
		seq.Frames[i].Keypoints = gait.Some(Pose(left, right))
	}
	return seq
}

// EncodeJSON returns seq as a keypoint JSON document.
func EncodeJSON(t testing.TB, seq gait.Sequence) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := poseio.EncodeJSON(&buf, seq); err != nil {
		t.Fatalf("encode keypoint document: %v", err)
	}
	return buf.Bytes()
}

// WriteKeypointFile writes seq under dir, as CSV when name ends in .csv and
// JSON otherwise, and returns the file path.
func WriteKeypointFile(t testing.TB, dir, name string, seq gait.Sequence) string {
	t.Helper()
	var data []byte
	if filepath.Ext(name) == ".csv" {
		var buf bytes.Buffer
		if err := poseio.EncodeCSV(&buf, seq); err != nil {
			t.Fatalf("encode keypoint csv: %v", err)
		}
		data = buf.Bytes()
	} else {
		data = EncodeJSON(t, seq)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
