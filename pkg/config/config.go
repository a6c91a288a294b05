// Package config handles loading and saving flowboard configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/flowboard/config.yaml
//   - Data:    ~/.local/share/flowboard/ (themes)
//   - State:   ~/.local/state/flowboard/ (view state cache)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Source represents a registered snapshot source in the config.
type Source struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// ViewConfig holds default view settings.
type ViewConfig struct {
	FitWidth     bool `yaml:"fit_width,omitempty"`     // Scale the board to the viewport width
	ShowSubtasks bool `yaml:"show_subtasks,omitempty"` // Expand sub-item rows on cards
}

// MetricsConfig overrides individual layout dimensions. Zero values keep
// the built-in defaults.
type MetricsConfig struct {
	ColumnWidth    float64 `yaml:"column_width,omitempty"`
	CardBaseHeight float64 `yaml:"card_base_height,omitempty"`
	LaneLabelWidth float64 `yaml:"lane_label_width,omitempty"`
	DragThreshold  float64 `yaml:"drag_threshold,omitempty"`
}

// ThemeConfig overrides theme colors with "#rrggbb" hex values.
type ThemeConfig struct {
	Background string            `yaml:"background,omitempty"`
	CardFill   string            `yaml:"card_fill,omitempty"`
	Accent     string            `yaml:"accent,omitempty"`
	WIPOver    string            `yaml:"wip_over,omitempty"`
	Categories map[string]string `yaml:"categories,omitempty"` // Category name -> card fill
}

// AgingConfig controls the stale-card badge thresholds.
type AgingConfig struct {
	Adaptive  bool          `yaml:"adaptive,omitempty"`   // Derive tiers from the board's age distribution
	WarnAfter time.Duration `yaml:"warn_after,omitempty"` // Fixed warn threshold (default 168h)
	LateAfter time.Duration `yaml:"late_after,omitempty"` // Fixed late threshold (default 720h)
}

// Config is the top-level configuration for flowboard.
type Config struct {
	Sources []Source      `yaml:"sources,omitempty"`
	View    ViewConfig    `yaml:"view,omitempty"`
	Metrics MetricsConfig `yaml:"metrics,omitempty"`
	Theme   ThemeConfig   `yaml:"theme,omitempty"`
	Aging   AgingConfig   `yaml:"aging,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		View: ViewConfig{
			ShowSubtasks: true,
		},
		Aging: AgingConfig{
			WarnAfter: 7 * 24 * time.Hour,
			LateAfter: 30 * 24 * time.Hour,
		},
	}
}

// ConfigDir returns the XDG config directory for flowboard.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "flowboard")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "flowboard")
}

// DataDir returns the XDG data directory for flowboard.
func DataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "flowboard")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "flowboard")
}

// StateDir returns the XDG state directory for flowboard.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "flowboard")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "flowboard")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	// Expand ~ in source paths
	for i := range cfg.Sources {
		cfg.Sources[i].Path = expandHome(cfg.Sources[i].Path)
	}

	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// FindSource returns the source with the given name, or nil.
func (c Config) FindSource(name string) *Source {
	for i := range c.Sources {
		if strings.EqualFold(c.Sources[i].Name, name) {
			return &c.Sources[i]
		}
	}
	return nil
}

// ResolvedPath returns the source path with ~ expanded.
func (s Source) ResolvedPath() string {
	return expandHome(s.Path)
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
