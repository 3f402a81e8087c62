package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultConfigPath is the path to the canonical analysis defaults file.
const DefaultConfigPath = "config/analysis.defaults.json"

// AnalysisConfig is the root configuration for gait analysis and the
// surrounding service. Every field is optional; the Get* accessors fall
// back to the built-in defaults.
type AnalysisConfig struct {
	// Detection
	Window         *int `json:"window,omitempty"`
	MinValidFrames *int `json:"min_valid_frames,omitempty"`

	// Classification thresholds (degrees)
	StrikeDeadZoneDeg       *float64 `json:"strike_dead_zone_deg,omitempty"`
	PostureForwardLimitDeg  *float64 `json:"posture_forward_limit_deg,omitempty"`
	PostureBackwardLimitDeg *float64 `json:"posture_backward_limit_deg,omitempty"`

	// Outputs
	PlotsDir          *string `json:"plots_dir,omitempty"`
	ReplayChartStride *int    `json:"replay_chart_stride,omitempty"`

	// Input
	CSVFPS        *float64 `json:"csv_fps,omitempty"` // frame rate assumed for CSV keypoint files
	MaxFrameCount *int     `json:"max_frame_count,omitempty"`

	// Service limits
	ProcessTimeout *string `json:"process_timeout,omitempty"` // duration string like "2m"
	MaxUploadBytes *int64  `json:"max_upload_bytes,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }
func ptrInt64(v int64) *int64       { return &v }

// EmptyAnalysisConfig returns a config with every field unset.
func EmptyAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{}
}

// DefaultAnalysisConfig returns a config with every field set to its
// default value.
func DefaultAnalysisConfig() *AnalysisConfig {
	c := EmptyAnalysisConfig()
	return &AnalysisConfig{
		Window:                  ptrInt(c.GetWindow()),
		MinValidFrames:          ptrInt(c.GetMinValidFrames()),
		StrikeDeadZoneDeg:       ptrFloat64(c.GetStrikeDeadZoneDeg()),
		PostureForwardLimitDeg:  ptrFloat64(c.GetPostureForwardLimitDeg()),
		PostureBackwardLimitDeg: ptrFloat64(c.GetPostureBackwardLimitDeg()),
		PlotsDir:                ptrString(c.GetPlotsDir()),
		ReplayChartStride:       ptrInt(c.GetReplayChartStride()),
		CSVFPS:                  ptrFloat64(c.GetCSVFPS()),
		MaxFrameCount:           ptrInt(c.GetMaxFrameCount()),
		ProcessTimeout:          ptrString(c.GetProcessTimeout().String()),
		MaxUploadBytes:          ptrInt64(c.GetMaxUploadBytes()),
	}
}

// LoadAnalysisConfig loads an AnalysisConfig from a JSON file.
// The file must have a .json extension and be at most 1MB. Fields omitted
// from the file keep their defaults, so partial configs are safe.
func LoadAnalysisConfig(path string) (*AnalysisConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyAnalysisConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching the current
// directory and its parents. Panics if the file cannot be loaded; intended
// for test setup.
func MustLoadDefaultConfig() *AnalysisConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadAnalysisConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configured values are usable.
func (c *AnalysisConfig) Validate() error {
	if c.Window != nil && *c.Window < 1 {
		return fmt.Errorf("window must be at least 1, got %d", *c.Window)
	}
	if c.MinValidFrames != nil && *c.MinValidFrames < 1 {
		return fmt.Errorf("min_valid_frames must be at least 1, got %d", *c.MinValidFrames)
	}
	if c.StrikeDeadZoneDeg != nil && (*c.StrikeDeadZoneDeg < 0 || *c.StrikeDeadZoneDeg > 90) {
		return fmt.Errorf("strike_dead_zone_deg must be between 0 and 90, got %f", *c.StrikeDeadZoneDeg)
	}
	if c.GetPostureBackwardLimitDeg() > c.GetPostureForwardLimitDeg() {
		return fmt.Errorf("posture_backward_limit_deg (%f) must not exceed posture_forward_limit_deg (%f)",
			c.GetPostureBackwardLimitDeg(), c.GetPostureForwardLimitDeg())
	}
	if c.ReplayChartStride != nil && *c.ReplayChartStride < 1 {
		return fmt.Errorf("replay_chart_stride must be at least 1, got %d", *c.ReplayChartStride)
	}
	if c.CSVFPS != nil && *c.CSVFPS <= 0 {
		return fmt.Errorf("csv_fps must be positive, got %f", *c.CSVFPS)
	}
	if c.MaxFrameCount != nil && *c.MaxFrameCount < 1 {
		return fmt.Errorf("max_frame_count must be at least 1, got %d", *c.MaxFrameCount)
	}
	if c.ProcessTimeout != nil && *c.ProcessTimeout != "" {
		if _, err := time.ParseDuration(*c.ProcessTimeout); err != nil {
			return fmt.Errorf("invalid process_timeout '%s': %w", *c.ProcessTimeout, err)
		}
	}
	if c.MaxUploadBytes != nil && *c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive, got %d", *c.MaxUploadBytes)
	}
	return nil
}

// GetWindow returns the minimum search half-width or the default.
func (c *AnalysisConfig) GetWindow() int {
	if c.Window == nil {
		return 5
	}
	return *c.Window
}

// GetMinValidFrames returns the min_valid_frames value or the default.
func (c *AnalysisConfig) GetMinValidFrames() int {
	if c.MinValidFrames == nil {
		return 10
	}
	return *c.MinValidFrames
}

// GetStrikeDeadZoneDeg returns the strike_dead_zone_deg value or the default.
func (c *AnalysisConfig) GetStrikeDeadZoneDeg() float64 {
	if c.StrikeDeadZoneDeg == nil {
		return 5.0
	}
	return *c.StrikeDeadZoneDeg
}

// GetPostureForwardLimitDeg returns the posture_forward_limit_deg value or the default.
func (c *AnalysisConfig) GetPostureForwardLimitDeg() float64 {
	if c.PostureForwardLimitDeg == nil {
		return 10.0
	}
	return *c.PostureForwardLimitDeg
}

// GetPostureBackwardLimitDeg returns the posture_backward_limit_deg value or the default.
func (c *AnalysisConfig) GetPostureBackwardLimitDeg() float64 {
	if c.PostureBackwardLimitDeg == nil {
		return -5.0
	}
	return *c.PostureBackwardLimitDeg
}

// GetPlotsDir returns the plot output directory. Empty disables plots.
func (c *AnalysisConfig) GetPlotsDir() string {
	if c.PlotsDir == nil {
		return ""
	}
	return *c.PlotsDir
}

// GetReplayChartStride returns the frame stride used when charting replays.
func (c *AnalysisConfig) GetReplayChartStride() int {
	if c.ReplayChartStride == nil {
		return 1
	}
	return *c.ReplayChartStride
}

// GetCSVFPS returns the frame rate applied to CSV keypoint files, which
// carry none of their own.
func (c *AnalysisConfig) GetCSVFPS() float64 {
	if c.CSVFPS == nil {
		return 30
	}
	return *c.CSVFPS
}

// GetMaxFrameCount returns the longest keypoint sequence accepted.
func (c *AnalysisConfig) GetMaxFrameCount() int {
	if c.MaxFrameCount == nil {
		return 1 << 20
	}
	return *c.MaxFrameCount
}

// GetProcessTimeout parses and returns the ProcessTimeout as a time.Duration.
func (c *AnalysisConfig) GetProcessTimeout() time.Duration {
	if c.ProcessTimeout == nil || *c.ProcessTimeout == "" {
		return 2 * time.Minute
	}
	d, err := time.ParseDuration(*c.ProcessTimeout)
	if err != nil {
		return 2 * time.Minute
	}
	return d
}

// GetMaxUploadBytes returns the largest accepted keypoint upload.
func (c *AnalysisConfig) GetMaxUploadBytes() int64 {
	if c.MaxUploadBytes == nil {
		return 64 * 1024 * 1024
	}
	return *c.MaxUploadBytes
}
