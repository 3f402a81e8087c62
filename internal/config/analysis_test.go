package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultAnalysisConfig(t *testing.T) {
	cfg := DefaultAnalysisConfig()

	if cfg.Window == nil || *cfg.Window != 5 {
		t.Errorf("Expected Window 5, got %v", cfg.Window)
	}
	if cfg.MinValidFrames == nil || *cfg.MinValidFrames != 10 {
		t.Errorf("Expected MinValidFrames 10, got %v", cfg.MinValidFrames)
	}
	if cfg.ProcessTimeout == nil || *cfg.ProcessTimeout != "2m0s" {
		t.Errorf("Expected ProcessTimeout '2m0s', got %v", cfg.ProcessTimeout)
	}

	if cfg.GetStrikeDeadZoneDeg() != 5.0 {
		t.Errorf("GetStrikeDeadZoneDeg() = %f, want 5.0", cfg.GetStrikeDeadZoneDeg())
	}
	if cfg.GetPostureForwardLimitDeg() != 10.0 {
		t.Errorf("GetPostureForwardLimitDeg() = %f, want 10.0", cfg.GetPostureForwardLimitDeg())
	}
	if cfg.GetPostureBackwardLimitDeg() != -5.0 {
		t.Errorf("GetPostureBackwardLimitDeg() = %f, want -5.0", cfg.GetPostureBackwardLimitDeg())
	}
	if cfg.GetReplayChartStride() != 1 {
		t.Errorf("GetReplayChartStride() = %d, want 1", cfg.GetReplayChartStride())
	}
	if cfg.CSVFPS == nil || *cfg.CSVFPS != 30 {
		t.Errorf("Expected CSVFPS 30, got %v", cfg.CSVFPS)
	}
	if cfg.GetMaxFrameCount() != 1<<20 {
		t.Errorf("GetMaxFrameCount() = %d, want %d", cfg.GetMaxFrameCount(), 1<<20)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadAnalysisConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.json")

	testJSON := `{
  "window": 4,
  "min_valid_frames": 20,
  "strike_dead_zone_deg": 3.5,
  "plots_dir": "/tmp/plots",
  "csv_fps": 59.94,
  "process_timeout": "30s"
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadAnalysisConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.GetWindow() != 4 {
		t.Errorf("GetWindow() = %d, want 4", cfg.GetWindow())
	}
	if cfg.GetMinValidFrames() != 20 {
		t.Errorf("GetMinValidFrames() = %d, want 20", cfg.GetMinValidFrames())
	}
	if cfg.GetStrikeDeadZoneDeg() != 3.5 {
		t.Errorf("GetStrikeDeadZoneDeg() = %f, want 3.5", cfg.GetStrikeDeadZoneDeg())
	}
	if cfg.GetPlotsDir() != "/tmp/plots" {
		t.Errorf("GetPlotsDir() = %q, want /tmp/plots", cfg.GetPlotsDir())
	}
	if cfg.GetProcessTimeout() != 30*time.Second {
		t.Errorf("GetProcessTimeout() = %v, want 30s", cfg.GetProcessTimeout())
	}
	if cfg.GetCSVFPS() != 59.94 {
		t.Errorf("GetCSVFPS() = %f, want 59.94", cfg.GetCSVFPS())
	}

	// Omitted fields keep defaults.
	if cfg.PostureForwardLimitDeg != nil {
		t.Errorf("Expected PostureForwardLimitDeg unset, got %v", *cfg.PostureForwardLimitDeg)
	}
	if cfg.GetPostureForwardLimitDeg() != 10.0 {
		t.Errorf("GetPostureForwardLimitDeg() = %f, want 10.0", cfg.GetPostureForwardLimitDeg())
	}
	if cfg.GetMaxUploadBytes() != 64*1024*1024 {
		t.Errorf("GetMaxUploadBytes() = %d, want 64MiB", cfg.GetMaxUploadBytes())
	}
}

func TestLoadAnalysisConfig_Errors(t *testing.T) {
	tmpDir := t.TempDir()

	write := func(name, body string) string {
		p := filepath.Join(tmpDir, name)
		if err := os.WriteFile(p, []byte(body), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		return p
	}

	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{"wrong extension", write("cfg.yaml", `{}`), ".json extension"},
		{"missing file", filepath.Join(tmpDir, "absent.json"), "failed to stat"},
		{"bad json", write("bad.json", `{"window":`), "failed to parse"},
		{"zero window", write("zero.json", `{"window": 0}`), "window must be at least 1"},
		{"inverted posture limits", write("inv.json", `{"posture_forward_limit_deg": -10}`), "must not exceed"},
		{"bad timeout", write("timeout.json", `{"process_timeout": "soon"}`), "invalid process_timeout"},
		{"negative dead zone", write("dz.json", `{"strike_dead_zone_deg": -1}`), "strike_dead_zone_deg"},
		{"zero stride", write("stride.json", `{"replay_chart_stride": 0}`), "replay_chart_stride"},
		{"zero csv fps", write("fps.json", `{"csv_fps": 0}`), "csv_fps must be positive"},
		{"zero max frames", write("frames.json", `{"max_frame_count": 0}`), "max_frame_count must be at least 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadAnalysisConfig(tt.path)
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoadAnalysisConfig_TooLarge(t *testing.T) {
	p := filepath.Join(t.TempDir(), "big.json")
	big := make([]byte, 1024*1024+1)
	for i := range big {
		big[i] = ' '
	}
	if err := os.WriteFile(p, big, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadAnalysisConfig(p); err == nil || !strings.Contains(err.Error(), "too large") {
		t.Errorf("expected too large error, got %v", err)
	}
}

func TestMustLoadDefaultConfig(t *testing.T) {
	cfg := MustLoadDefaultConfig()
	want := DefaultAnalysisConfig()
	if cfg.GetWindow() != want.GetWindow() {
		t.Errorf("defaults file window = %d, want %d", cfg.GetWindow(), want.GetWindow())
	}
	if cfg.GetMinValidFrames() != want.GetMinValidFrames() {
		t.Errorf("defaults file min_valid_frames = %d, want %d", cfg.GetMinValidFrames(), want.GetMinValidFrames())
	}
	if cfg.GetProcessTimeout() != want.GetProcessTimeout() {
		t.Errorf("defaults file process_timeout = %v, want %v", cfg.GetProcessTimeout(), want.GetProcessTimeout())
	}
	if cfg.GetCSVFPS() != want.GetCSVFPS() {
		t.Errorf("defaults file csv_fps = %f, want %f", cfg.GetCSVFPS(), want.GetCSVFPS())
	}
	if cfg.GetMaxFrameCount() != want.GetMaxFrameCount() {
		t.Errorf("defaults file max_frame_count = %d, want %d", cfg.GetMaxFrameCount(), want.GetMaxFrameCount())
	}
}

func TestGetProcessTimeout_InvalidFallsBack(t *testing.T) {
	s := "nonsense"
	cfg := &AnalysisConfig{ProcessTimeout: &s}
	if got := cfg.GetProcessTimeout(); got != 2*time.Minute {
		t.Errorf("GetProcessTimeout() = %v, want 2m", got)
	}
}
