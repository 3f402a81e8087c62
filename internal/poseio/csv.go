package poseio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/banshee-data/stride.report/internal/gait"
)

// DecodeOptions supplies what a CSV file cannot carry itself and bounds
// the sequence either format may describe.
type DecodeOptions struct {
	// FPS is the frame rate of a CSV source video. Required for CSV.
	FPS float64
	// FrameCount overrides the total frame count of a CSV. When zero the
	// count is one past the highest frame number in the file.
	FrameCount int
	// MaxFrameCount rejects longer sequences. Zero means
	// DefaultMaxFrameCount.
	MaxFrameCount int
}

// CSVHeader returns the canonical column order written by EncodeCSV.
func CSVHeader() []string {
	header := []string{"frame"}
	for _, j := range gait.Joints() {
		header = append(header, j.String()+"_x", j.String()+"_y")
	}
	return header
}

type csvColumns struct {
	frame int
	x, y  [gait.NumJoints]int
}

func parseCSVHeader(header []string) (csvColumns, error) {
	cols := csvColumns{frame: -1}
	for i := range cols.x {
		cols.x[i], cols.y[i] = -1, -1
	}
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "frame" {
			cols.frame = i
			continue
		}
		base, axis, ok := cutAxis(name)
		if !ok {
			continue
		}
		j, err := gait.ParseJoint(base)
		if err != nil {
			continue
		}
		if axis == "x" {
			cols.x[j] = i
		} else {
			cols.y[j] = i
		}
	}
	if cols.frame < 0 {
		return cols, errors.New("missing frame column")
	}
	for _, j := range gait.Joints() {
		if cols.x[j] < 0 || cols.y[j] < 0 {
			return cols, fmt.Errorf("missing columns for %s", j)
		}
	}
	return cols, nil
}

func cutAxis(name string) (base, axis string, ok bool) {
	switch {
	case strings.HasSuffix(name, "_x"):
		return strings.TrimSuffix(name, "_x"), "x", true
	case strings.HasSuffix(name, "_y"):
		return strings.TrimSuffix(name, "_y"), "y", true
	}
	return "", "", false
}

// DecodeCSV reads a keypoint CSV. Rows may appear in any order; frame
// numbers not present in the file are frames without a detection.
func DecodeCSV(r io.Reader, opts DecodeOptions) (gait.Sequence, error) {
	if opts.FPS <= 0 {
		return gait.Sequence{}, fmt.Errorf("%w: fps must be positive, got %v", gait.ErrInputUnavailable, opts.FPS)
	}

	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return gait.Sequence{}, fmt.Errorf("%w: read keypoint CSV: %v", gait.ErrInputUnavailable, err)
	}
	if len(records) == 0 {
		return gait.Sequence{}, fmt.Errorf("%w: empty keypoint CSV", gait.ErrInputUnavailable)
	}
	cols, err := parseCSVHeader(records[0])
	if err != nil {
		return gait.Sequence{}, fmt.Errorf("%w: invalid CSV header: %v", gait.ErrInputUnavailable, err)
	}

	frames := make([]DocumentFrame, 0, len(records)-1)
	maxIndex := -1
	for i, record := range records[1:] {
		line := i + 2
		idx, err := strconv.Atoi(strings.TrimSpace(record[cols.frame]))
		if err != nil {
			return gait.Sequence{}, fmt.Errorf("%w: invalid frame number at line %d: %v", gait.ErrInputUnavailable, line, err)
		}
		kp, err := parseCSVKeypoints(record, cols)
		if err != nil {
			return gait.Sequence{}, fmt.Errorf("%w: line %d: %v", gait.ErrInputUnavailable, line, err)
		}
		frames = append(frames, DocumentFrame{Index: idx, Keypoints: kp})
		maxIndex = max(maxIndex, idx)
	}

	frameCount := opts.FrameCount
	if frameCount == 0 {
		frameCount = maxIndex + 1
	}
	return Document{FPS: opts.FPS, FrameCount: frameCount, Frames: frames}.SequenceWithin(opts.MaxFrameCount)
}

// parseCSVKeypoints returns None when every coordinate cell is empty and an
// error when only some are.
func parseCSVKeypoints(record []string, cols csvColumns) (gait.Optional[gait.KeypointSet], error) {
	var kp gait.KeypointSet
	empty := 0
	for _, j := range gait.Joints() {
		xs := strings.TrimSpace(record[cols.x[j]])
		ys := strings.TrimSpace(record[cols.y[j]])
		if xs == "" && ys == "" {
			empty++
			continue
		}
		x, err := strconv.ParseFloat(xs, 64)
		if err != nil {
			return gait.None[gait.KeypointSet](), fmt.Errorf("invalid %s_x: %v", j, err)
		}
		y, err := strconv.ParseFloat(ys, 64)
		if err != nil {
			return gait.None[gait.KeypointSet](), fmt.Errorf("invalid %s_y: %v", j, err)
		}
		kp.Set(j, gait.Point{X: x, Y: y})
	}
	switch empty {
	case 0:
		return gait.Some(kp), nil
	case gait.NumJoints:
		return gait.None[gait.KeypointSet](), nil
	}
	return gait.None[gait.KeypointSet](), fmt.Errorf("%d of %d joints missing", empty, gait.NumJoints)
}

// EncodeCSV writes seq in the column order of CSVHeader. Frames without
// keypoints are written with empty coordinate cells.
func EncodeCSV(w io.Writer, seq gait.Sequence) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader()); err != nil {
		return err
	}
	row := make([]string, 1+2*gait.NumJoints)
	for _, f := range seq.Frames {
		row[0] = strconv.Itoa(f.Index)
		kp, ok := f.Keypoints.Get()
		for _, j := range gait.Joints() {
			if !ok {
				row[1+2*int(j)], row[2+2*int(j)] = "", ""
				continue
			}
			p := kp.At(j)
			row[1+2*int(j)] = strconv.FormatFloat(p.X, 'f', -1, 64)
			row[2+2*int(j)] = strconv.FormatFloat(p.Y, 'f', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
