package poseio

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/banshee-data/stride.report/internal/gait"
)

// DefaultMaxFrameCount bounds a decoded sequence when no limit is given:
// a little over an hour of video at 240 fps.
const DefaultMaxFrameCount = 1 << 20

// Document is the JSON form of a keypoint sequence.
type Document struct {
	FPS        float64         `json:"fps"`
	FrameCount int             `json:"frame_count"`
	Frames     []DocumentFrame `json:"frames"`
}

// DocumentFrame is one entry of Document.Frames.
type DocumentFrame struct {
	Index     int                             `json:"index"`
	Keypoints gait.Optional[gait.KeypointSet] `json:"keypoints"`
}

// DecodeJSON reads a Document from r and expands it into a dense sequence
// of at most DefaultMaxFrameCount frames.
func DecodeJSON(r io.Reader) (gait.Sequence, error) {
	return decodeJSON(r, DefaultMaxFrameCount)
}

func decodeJSON(r io.Reader, maxFrames int) (gait.Sequence, error) {
	var doc Document
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return gait.Sequence{}, fmt.Errorf("%w: decode keypoint document: %v", gait.ErrInputUnavailable, err)
	}
	return doc.SequenceWithin(maxFrames)
}

// Sequence validates the document and returns the dense sequence it
// describes, limited to DefaultMaxFrameCount frames.
func (d Document) Sequence() (gait.Sequence, error) {
	return d.SequenceWithin(DefaultMaxFrameCount)
}

// SequenceWithin is Sequence with a frame limit. A non-positive maxFrames
// means DefaultMaxFrameCount. The limit is checked before anything is
// allocated.
func (d Document) SequenceWithin(maxFrames int) (gait.Sequence, error) {
	if maxFrames <= 0 {
		maxFrames = DefaultMaxFrameCount
	}
	if d.FPS <= 0 {
		return gait.Sequence{}, fmt.Errorf("%w: fps must be positive, got %v", gait.ErrInputUnavailable, d.FPS)
	}
	if d.FrameCount <= 0 {
		return gait.Sequence{}, fmt.Errorf("%w: frame_count must be positive, got %d", gait.ErrInputUnavailable, d.FrameCount)
	}
	if d.FrameCount > maxFrames {
		return gait.Sequence{}, fmt.Errorf("%w: frame_count %d exceeds limit of %d", gait.ErrInputUnavailable, d.FrameCount, maxFrames)
	}

	seq := gait.NewSequence(d.FPS, d.FrameCount)
	seen := make([]bool, d.FrameCount)
	for _, f := range d.Frames {
		if f.Index < 0 || f.Index >= d.FrameCount {
			return gait.Sequence{}, fmt.Errorf("%w: frame index %d outside [0,%d)", gait.ErrInputUnavailable, f.Index, d.FrameCount)
		}
		if seen[f.Index] {
			return gait.Sequence{}, fmt.Errorf("%w: duplicate frame index %d", gait.ErrInputUnavailable, f.Index)
		}
		seen[f.Index] = true
		seq.Frames[f.Index].Keypoints = f.Keypoints
	}
	return seq, nil
}

// NewDocument converts a sequence into its JSON form. Frames without
// keypoints are written with a null keypoint set.
func NewDocument(seq gait.Sequence) Document {
	doc := Document{
		FPS:        seq.FPS,
		FrameCount: seq.FrameCount(),
		Frames:     make([]DocumentFrame, len(seq.Frames)),
	}
	for i, f := range seq.Frames {
		doc.Frames[i] = DocumentFrame{Index: f.Index, Keypoints: f.Keypoints}
	}
	return doc
}

// EncodeJSON writes seq to w as a Document.
func EncodeJSON(w io.Writer, seq gait.Sequence) error {
	return json.NewEncoder(w).Encode(NewDocument(seq))
}
