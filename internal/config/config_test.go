package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	if cfg.Timeline.MaxLanes != MaxLanes {
		t.Errorf("max lanes = %d, want %d", cfg.Timeline.MaxLanes, MaxLanes)
	}
	if cfg.Drag.SnapMinutes != 15 {
		t.Errorf("snap minutes = %d, want 15", cfg.Drag.SnapMinutes)
	}
	if cfg.Drag.ArmDelay != time.Second {
		t.Errorf("arm delay = %v, want 1s", cfg.Drag.ArmDelay)
	}
	if cfg.Timeline.GapThresholdMinutes != 30 {
		t.Errorf("gap threshold = %d, want 30", cfg.Timeline.GapThresholdMinutes)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero px per minute", func(c *Config) { c.Timeline.PxPerMinute = 0 }},
		{"zero gap threshold", func(c *Config) { c.Timeline.GapThresholdMinutes = 0 }},
		{"too many lanes", func(c *Config) { c.Timeline.MaxLanes = MaxLanes + 1 }},
		{"zero lanes", func(c *Config) { c.Timeline.MaxLanes = 0 }},
		{"tiny arm delay", func(c *Config) { c.Drag.ArmDelay = time.Millisecond }},
		{"zero snap", func(c *Config) { c.Drag.SnapMinutes = 0 }},
		{"swipe threshold above one", func(c *Config) { c.TUI.SwipeThreshold = 1.5 }},
		{"source without path", func(c *Config) { c.Sources = []SourceConfig{{Name: "x"}} }},
		{"source with bad tag", func(c *Config) { c.Sources = []SourceConfig{{Path: "a.ics", Source: "icloud"}} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("invalid config accepted")
			}
		})
	}
}

func TestLocationResolution(t *testing.T) {
	cfg := DefaultConfig()

	loc, err := cfg.Location()
	if err != nil || loc != time.Local {
		t.Errorf("empty timezone = %v, %v, want local", loc, err)
	}

	cfg.Global.Timezone = "UTC"
	loc, err = cfg.Location()
	if err != nil || loc != time.UTC {
		t.Errorf("UTC timezone = %v, %v", loc, err)
	}

	cfg.Global.Timezone = "Not/AZone"
	if _, err = cfg.Location(); err == nil {
		t.Error("bogus timezone accepted")
	}
}

func TestDatabasePath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Global.DataDir = "/data"

	if got := cfg.DatabasePath(); got != filepath.Join("/data", "calai.db") {
		t.Errorf("default db path = %s", got)
	}

	cfg.Database.Path = "/elsewhere/events.db"
	if got := cfg.DatabasePath(); got != "/elsewhere/events.db" {
		t.Errorf("explicit db path = %s", got)
	}
}

func TestExpandTilde(t *testing.T) {
	if got := expandTilde(""); got != "" {
		t.Errorf("empty path = %q", got)
	}
	if got := expandTilde("/abs/path"); got != "/abs/path" {
		t.Errorf("absolute path = %q", got)
	}
	got := expandTilde("~/calai")
	if got == "~/calai" || got == "" {
		t.Errorf("tilde not expanded: %q", got)
	}
}
