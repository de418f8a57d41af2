package drag

import (
	"errors"
	"testing"
	"time"

	"github.com/rasheuristics/CalAI-sub003/internal/models"
)

func TestBeginRejectsInvalidEvent(t *testing.T) {
	engine := NewEngine(testConfig(false))

	if _, err := engine.Begin(models.CalendarEvent{Source: models.SourceNative}); !errors.Is(err, models.ErrMissingEventID) {
		t.Errorf("missing id: err = %v, want ErrMissingEventID", err)
	}
	if _, err := engine.Begin(models.CalendarEvent{ID: "x", Source: models.SourceNative}); !errors.Is(err, models.ErrMissingEventTime) {
		t.Errorf("missing time: err = %v, want ErrMissingEventTime", err)
	}
}

func TestBeginOneSessionPerEvent(t *testing.T) {
	engine := NewEngine(testConfig(false))

	s, err := engine.Begin(testEvent())
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if _, err := engine.Begin(testEvent()); !errors.Is(err, ErrSessionActive) {
		t.Errorf("second Begin err = %v, want ErrSessionActive", err)
	}

	// A different event is independent.
	other := testEvent()
	other.ID = "ev-2"
	if _, err := engine.Begin(other); err != nil {
		t.Errorf("Begin on other event: %v", err)
	}

	s.Cancel()
	if _, err := engine.Begin(testEvent()); err != nil {
		t.Errorf("Begin after cancel: %v", err)
	}
}

func TestNormalizedConfigDefaults(t *testing.T) {
	engine := NewEngine(Config{})
	cfg := engine.Config()

	def := DefaultConfig()
	if cfg.ArmDelay != def.ArmDelay || cfg.SnapMinutes != def.SnapMinutes || cfg.PxPerMinute != def.PxPerMinute {
		t.Errorf("zero config not normalized: %+v", cfg)
	}
	if cfg.ArmDelay != time.Second {
		t.Errorf("default arm delay = %v, want 1s", cfg.ArmDelay)
	}
}

func TestClearParked(t *testing.T) {
	engine := NewEngine(testConfig(false))
	engine.park("ev-1", 30)

	if off, ok := engine.ParkedOffset("ev-1"); !ok || off != 30 {
		t.Fatalf("parked = %v (%v), want 30", off, ok)
	}
	engine.ClearParked("ev-1")
	if _, ok := engine.ParkedOffset("ev-1"); ok {
		t.Error("offset survived ClearParked")
	}
}
