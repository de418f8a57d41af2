// Package config handles CalAI configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// MaxLanes is the hard cap on parallel event lanes. Overflowing events
// stack in the last lane rather than widening the layout.
const MaxLanes = 3

// Config is the root configuration structure for CalAI.
type Config struct {
	// Global settings
	Global GlobalConfig `yaml:"global" mapstructure:"global"`

	// Database settings
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`

	// Logging settings
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`

	// Timeline layout settings
	Timeline TimelineConfig `yaml:"timeline" mapstructure:"timeline"`

	// Drag reposition settings
	Drag DragConfig `yaml:"drag" mapstructure:"drag"`

	// Sources lists configured ICS feeds to import from.
	Sources []SourceConfig `yaml:"sources" mapstructure:"sources"`

	// TUI settings
	TUI TUIConfig `yaml:"tui" mapstructure:"tui"`
}

// GlobalConfig contains global CalAI settings.
type GlobalConfig struct {
	// DataDir is where CalAI stores its data (default: ~/.local/share/calai).
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`

	// ConfigDir is where config files are stored (default: ~/.config/calai).
	ConfigDir string `yaml:"config_dir" mapstructure:"config_dir"`

	// Timezone is the IANA name of the display timezone. Empty means the
	// system local zone.
	Timezone string `yaml:"timezone" mapstructure:"timezone"`
}

// DatabaseConfig contains database settings.
type DatabaseConfig struct {
	// Path is the SQLite database file path.
	Path string `yaml:"path" mapstructure:"path"`

	// BusyTimeout is how long to wait for a locked database (milliseconds).
	BusyTimeoutMs int `yaml:"busy_timeout_ms" mapstructure:"busy_timeout_ms"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `yaml:"level" mapstructure:"level"`

	// Format is the output format (json, console).
	Format string `yaml:"format" mapstructure:"format"`

	// EnableCaller adds caller information to logs.
	EnableCaller bool `yaml:"enable_caller" mapstructure:"enable_caller"`
}

// TimelineConfig contains day-timeline layout settings.
type TimelineConfig struct {
	// PxPerMinute is the vertical scale of the timeline in abstract units.
	PxPerMinute float64 `yaml:"px_per_minute" mapstructure:"px_per_minute"`

	// GapThresholdMinutes is the minimum gap length that renders as a
	// collapsible chip instead of proportional height.
	GapThresholdMinutes int `yaml:"gap_threshold_minutes" mapstructure:"gap_threshold_minutes"`

	// CollapsedGapHeight is the fixed height of a collapsed gap.
	CollapsedGapHeight float64 `yaml:"collapsed_gap_height" mapstructure:"collapsed_gap_height"`

	// MaxLanes caps side-by-side lanes for overlapping events (1..3).
	MaxLanes int `yaml:"max_lanes" mapstructure:"max_lanes"`
}

// DragConfig contains drag reposition settings.
type DragConfig struct {
	// ArmDelay is how long a press must be held before a drag arms.
	ArmDelay time.Duration `yaml:"arm_delay" mapstructure:"arm_delay"`

	// LockThreshold is the pointer travel (units) that locks a direction.
	LockThreshold float64 `yaml:"lock_threshold" mapstructure:"lock_threshold"`

	// SnapMinutes is the time grid vertical drags snap to.
	SnapMinutes int `yaml:"snap_minutes" mapstructure:"snap_minutes"`

	// DayColumnWidth is the width of one day column in week context.
	DayColumnWidth float64 `yaml:"day_column_width" mapstructure:"day_column_width"`
}

// SourceConfig describes one ICS feed to import.
type SourceConfig struct {
	// Name is a human-friendly label for the feed.
	Name string `yaml:"name" mapstructure:"name"`

	// Path is a local file path or URL to the ICS data.
	Path string `yaml:"path" mapstructure:"path"`

	// Source tags imported events (native, google, outlook).
	Source string `yaml:"source" mapstructure:"source"`
}

// TUIConfig contains TUI settings.
type TUIConfig struct {
	// RefreshInterval is how often to refresh the display.
	RefreshInterval time.Duration `yaml:"refresh_interval" mapstructure:"refresh_interval"`

	// Theme is the color theme (default, dark, light).
	Theme string `yaml:"theme" mapstructure:"theme"`

	// SwipeThreshold is the minimum travel (fraction of screen width)
	// that commits a week-carousel day change.
	SwipeThreshold float64 `yaml:"swipe_threshold" mapstructure:"swipe_threshold"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Global: GlobalConfig{
			DataDir:   filepath.Join(homeDir, ".local", "share", "calai"),
			ConfigDir: filepath.Join(homeDir, ".config", "calai"),
		},
		Database: DatabaseConfig{
			Path:          "", // Will be set to DataDir/calai.db
			BusyTimeoutMs: 5000,
		},
		Logging: LoggingConfig{
			Level:        "info",
			Format:       "console",
			EnableCaller: false,
		},
		Timeline: TimelineConfig{
			PxPerMinute:         1.0,
			GapThresholdMinutes: 30,
			CollapsedGapHeight:  48,
			MaxLanes:            MaxLanes,
		},
		Drag: DragConfig{
			ArmDelay:       1 * time.Second,
			LockThreshold:  10,
			SnapMinutes:    15,
			DayColumnWidth: 120,
		},
		Sources: []SourceConfig{},
		TUI: TUIConfig{
			RefreshInterval: 500 * time.Millisecond,
			Theme:           "default",
			SwipeThreshold:  0.5,
		},
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Timeline.PxPerMinute <= 0 {
		return fmt.Errorf("timeline.px_per_minute must be positive")
	}
	if c.Timeline.GapThresholdMinutes < 1 {
		return fmt.Errorf("timeline.gap_threshold_minutes must be at least 1")
	}
	if c.Timeline.MaxLanes < 1 || c.Timeline.MaxLanes > MaxLanes {
		return fmt.Errorf("timeline.max_lanes must be between 1 and %d", MaxLanes)
	}
	if c.Drag.ArmDelay < 100*time.Millisecond {
		return fmt.Errorf("drag.arm_delay must be at least 100ms")
	}
	if c.Drag.SnapMinutes < 1 {
		return fmt.Errorf("drag.snap_minutes must be at least 1")
	}
	if c.TUI.SwipeThreshold <= 0 || c.TUI.SwipeThreshold > 1 {
		return fmt.Errorf("tui.swipe_threshold must be in (0, 1]")
	}
	for i, src := range c.Sources {
		if src.Path == "" {
			return fmt.Errorf("sources[%d].path is required", i)
		}
		switch src.Source {
		case "", "native", "google", "outlook":
			// ok
		default:
			return fmt.Errorf("sources[%d].source must be one of native, google, outlook", i)
		}
	}
	return nil
}

// Location resolves the configured display timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Global.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Global.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Global.Timezone, err)
	}
	return loc, nil
}

// EnsureDirectories creates required directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Global.DataDir,
		c.Global.ConfigDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// DatabasePath returns the full database path.
func (c *Config) DatabasePath() string {
	if c.Database.Path != "" {
		return c.Database.Path
	}
	return filepath.Join(c.Global.DataDir, "calai.db")
}
