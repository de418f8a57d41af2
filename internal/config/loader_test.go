package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
global:
  timezone: UTC
timeline:
  px_per_minute: 2.0
  gap_threshold_minutes: 45
drag:
  snap_minutes: 5
tui:
  swipe_threshold: 0.4
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}

	if cfg.Global.Timezone != "UTC" {
		t.Errorf("timezone = %q", cfg.Global.Timezone)
	}
	if cfg.Timeline.PxPerMinute != 2.0 {
		t.Errorf("px per minute = %v", cfg.Timeline.PxPerMinute)
	}
	if cfg.Timeline.GapThresholdMinutes != 45 {
		t.Errorf("gap threshold = %d", cfg.Timeline.GapThresholdMinutes)
	}
	if cfg.Drag.SnapMinutes != 5 {
		t.Errorf("snap minutes = %d", cfg.Drag.SnapMinutes)
	}
	// Untouched keys keep their defaults.
	if cfg.Timeline.MaxLanes != MaxLanes {
		t.Errorf("max lanes = %d, want default", cfg.Timeline.MaxLanes)
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("missing explicit config file accepted")
	}
}

func TestLoadFromFileInvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("timeline:\n  max_lanes: 9\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := LoadFromFile(path); err == nil {
		t.Error("out-of-range max_lanes accepted")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CALAI_TIMELINE_PX_PER_MINUTE", "3.5")
	t.Setenv("CALAI_GLOBAL_TIMEZONE", "UTC")

	cfg, err := LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault: %v", err)
	}
	if cfg.Timeline.PxPerMinute != 3.5 {
		t.Errorf("px per minute = %v, want env override 3.5", cfg.Timeline.PxPerMinute)
	}
	if cfg.Global.Timezone != "UTC" {
		t.Errorf("timezone = %q, want env override", cfg.Global.Timezone)
	}
}
