// Package poseio reads keypoint sequences produced by a pose estimator and
// writes per-frame replay metrics.
//
// Two input encodings are accepted. The JSON document carries its own frame
// rate and frame count:
//
//	{"fps": 30, "frame_count": 300, "frames": [{"index": 0, "keypoints": {...}}, ...]}
//
// Frames missing from the list, or whose keypoints are null, are treated as
// frames without a detection. The CSV encoding has a "frame" column followed
// by an "<joint>_x" and "<joint>_y" column per joint; a row whose coordinate
// cells are all empty is a frame without a detection.
//
// Every decoding failure wraps gait.ErrInputUnavailable.
package poseio
