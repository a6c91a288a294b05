package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if !cfg.View.ShowSubtasks {
		t.Error("expected show_subtasks on by default")
	}
	if cfg.View.FitWidth {
		t.Error("expected fit_width off by default")
	}
	if cfg.Aging.WarnAfter != 7*24*time.Hour {
		t.Errorf("expected warn_after 168h, got %v", cfg.Aging.WarnAfter)
	}
	if cfg.Aging.LateAfter != 30*24*time.Hour {
		t.Errorf("expected late_after 720h, got %v", cfg.Aging.LateAfter)
	}
}

func TestLoadFrom_NonExistent(t *testing.T) {
	cfg, err := LoadFrom("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if !cfg.View.ShowSubtasks {
		t.Error("expected default config for missing file")
	}
}

func TestLoadFrom_ValidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `
sources:
  - name: sprint
    path: ~/boards/sprint.json
  - name: backlog
    path: /absolute/backlog.db

view:
  fit_width: true
  show_subtasks: false

metrics:
  column_width: 260
  drag_threshold: 6

theme:
  accent: "#336699"
  categories:
    Bug: "#ffdddd"

aging:
  adaptive: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(cfg.Sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(cfg.Sources))
	}
	if cfg.Sources[0].Name != "sprint" {
		t.Errorf("expected source name 'sprint', got %q", cfg.Sources[0].Name)
	}
	// Path should have ~ expanded
	home, _ := os.UserHomeDir()
	expectedPath := filepath.Join(home, "boards/sprint.json")
	if cfg.Sources[0].Path != expectedPath {
		t.Errorf("expected expanded path %q, got %q", expectedPath, cfg.Sources[0].Path)
	}
	if cfg.Sources[1].Path != "/absolute/backlog.db" {
		t.Errorf("expected absolute path preserved, got %q", cfg.Sources[1].Path)
	}

	if !cfg.View.FitWidth {
		t.Error("expected fit_width true")
	}
	if cfg.View.ShowSubtasks {
		t.Error("expected show_subtasks false")
	}
	if cfg.Metrics.ColumnWidth != 260 {
		t.Errorf("expected column_width 260, got %f", cfg.Metrics.ColumnWidth)
	}
	if cfg.Metrics.DragThreshold != 6 {
		t.Errorf("expected drag_threshold 6, got %f", cfg.Metrics.DragThreshold)
	}
	if cfg.Theme.Accent != "#336699" {
		t.Errorf("expected accent '#336699', got %q", cfg.Theme.Accent)
	}
	if cfg.Theme.Categories["Bug"] != "#ffdddd" {
		t.Errorf("expected Bug category color, got %q", cfg.Theme.Categories["Bug"])
	}
	if !cfg.Aging.Adaptive {
		t.Error("expected adaptive aging enabled")
	}
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(path, []byte("{{invalid yaml"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFrom(path)
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := Config{
		Sources: []Source{
			{Name: "one", Path: "/path/to/one.json"},
			{Name: "two", Path: "/path/to/two.db"},
		},
		View: ViewConfig{
			FitWidth: true,
		},
		Aging: AgingConfig{
			WarnAfter: 48 * time.Hour,
		},
	}

	if err := SaveTo(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load after save failed: %v", err)
	}

	if len(loaded.Sources) != 2 {
		t.Errorf("expected 2 sources, got %d", len(loaded.Sources))
	}
	if loaded.Sources[0].Name != "one" {
		t.Errorf("expected 'one', got %q", loaded.Sources[0].Name)
	}
	if !loaded.View.FitWidth {
		t.Error("expected fit_width true after round trip")
	}
	if loaded.Aging.WarnAfter != 48*time.Hour {
		t.Errorf("expected warn_after 48h, got %v", loaded.Aging.WarnAfter)
	}
}

func TestFindSource(t *testing.T) {
	cfg := Config{
		Sources: []Source{
			{Name: "alpha", Path: "/a"},
			{Name: "Beta", Path: "/b"},
		},
	}

	s := cfg.FindSource("alpha")
	if s == nil || s.Name != "alpha" {
		t.Error("expected to find 'alpha'")
	}

	// Case-insensitive
	s = cfg.FindSource("BETA")
	if s == nil || s.Name != "Beta" {
		t.Error("expected to find 'Beta' case-insensitively")
	}

	s = cfg.FindSource("nonexistent")
	if s != nil {
		t.Error("expected nil for nonexistent source")
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home dir")
	}

	tests := []struct {
		input    string
		expected string
	}{
		{"~/foo", filepath.Join(home, "foo")},
		{"~/", filepath.Join(home, "")},
		{"/absolute", "/absolute"},
		{"relative", "relative"},
	}

	for _, tt := range tests {
		got := expandHome(tt.input)
		if got != tt.expected {
			t.Errorf("expandHome(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestConfigDir_XDGOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	got := ConfigDir()
	expected := filepath.Join(dir, "flowboard")
	if got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

func TestDataDir_XDGOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)

	got := DataDir()
	expected := filepath.Join(dir, "flowboard")
	if got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

func TestStateDir_XDGOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", dir)

	got := StateDir()
	expected := filepath.Join(dir, "flowboard")
	if got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}
