package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadReportDefaultsEmbedded(t *testing.T) {
	defaults, err := LoadReportDefaults("")
	if err != nil {
		t.Fatalf("load embedded defaults: %v", err)
	}

	if defaults.TimeframeMonths != 1 {
		t.Errorf("TimeframeMonths = %d, want 1", defaults.TimeframeMonths)
	}
	if len(defaults.SelectedCalendars) == 0 {
		t.Error("SelectedCalendars must not be empty")
	}
	if _, ok := defaults.RoleServiceIDs["predigt"]; !ok {
		t.Error("RoleServiceIDs must carry the predigt role")
	}
	if len(defaults.LocationRenames) == 0 {
		t.Error("LocationRenames must not be empty")
	}

	found := false
	for _, id := range defaults.SelectedResources {
		if id == -1 {
			found = true
		}
	}
	if !found {
		t.Error("SelectedResources must include the -1 pseudo-resource by default")
	}
}

func TestLoadReportDefaultsOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.yaml")
	override := []byte("timeframe_months: 3\nselected_calendars: [5, 7]\n")
	if err := os.WriteFile(path, override, 0o600); err != nil {
		t.Fatalf("write override: %v", err)
	}

	defaults, err := LoadReportDefaults(path)
	if err != nil {
		t.Fatalf("load override: %v", err)
	}

	if defaults.TimeframeMonths != 3 {
		t.Errorf("TimeframeMonths = %d, want override value 3", defaults.TimeframeMonths)
	}
	if len(defaults.SelectedCalendars) != 2 || defaults.SelectedCalendars[0] != 5 {
		t.Errorf("SelectedCalendars = %v, want [5 7]", defaults.SelectedCalendars)
	}
	// Keys absent from the override keep their embedded values.
	if len(defaults.RoleServiceIDs) == 0 {
		t.Error("RoleServiceIDs must survive a partial override")
	}
}

func TestLoadReportDefaultsMissingFile(t *testing.T) {
	if _, err := LoadReportDefaults(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing override file")
	}
}
