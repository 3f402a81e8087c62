package poseio

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/banshee-data/stride.report/internal/gait"
)

// Format is a keypoint file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// FormatFromPath picks the encoding from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".csv":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%w: unsupported keypoint file extension %q", gait.ErrInputUnavailable, filepath.Ext(path))
}

// Decode reads a sequence in the given format. Only MaxFrameCount applies
// to JSON input.
func Decode(r io.Reader, format Format, opts DecodeOptions) (gait.Sequence, error) {
	switch format {
	case FormatJSON:
		return decodeJSON(r, opts.MaxFrameCount)
	case FormatCSV:
		return DecodeCSV(r, opts)
	}
	return gait.Sequence{}, fmt.Errorf("%w: unknown format %q", gait.ErrInputUnavailable, format)
}
