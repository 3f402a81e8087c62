// Package gait turns per-frame body keypoints into running-form metrics.
//
// Responsibilities: ankle-height signal extraction, foot-strike detection
// (local minima over a symmetric window), strike pattern and torso posture
// classification, cadence, and the batch report together with the causal
// per-frame replay used by overlay renderers.
//
// The work is split into three phases with explicit types so the
// look-ahead requirement of strike detection stays visible:
//
//	Analyzer.Buffer  -> *Buffered   (whole signal materialised)
//	Buffered.Detect  -> *Detection  (events and posture samples final)
//	Detection.Report / Detection.Replay
//
// No I/O, persistence or rendering happens in this package.
package gait
