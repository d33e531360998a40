package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Settings is the content of a depc.yaml file.
//
// Example:
//
//	search:
//	  max_depth: 6
//	  max_steps: 50000
//	diagnostics:
//	  color: never
type Settings struct {
	Search      SearchSettings      `yaml:"search"`
	Diagnostics DiagnosticsSettings `yaml:"diagnostics"`
}

// SearchSettings bounds proof search.
type SearchSettings struct {
	// MaxDepth is how many nested sub-searches one goal may spawn.
	MaxDepth int `yaml:"max_depth,omitempty"`
	// MaxSteps bounds the number of task steps of a single search.
	MaxSteps int `yaml:"max_steps,omitempty"`
}

type DiagnosticsSettings struct {
	// Color is one of auto, always or never. Defaults to auto.
	Color string `yaml:"color,omitempty"`
}

// DefaultSettings returns the settings used when no depc.yaml is found.
func DefaultSettings() Settings {
	var s Settings
	s.setDefaults()
	return s
}

// WithDefaults fills every unset field of s with its default.
func (s Settings) WithDefaults() Settings {
	s.setDefaults()
	return s
}

// LoadSettings reads and parses a depc.yaml file.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("reading settings %s: %w", path, err)
	}
	return ParseSettings(data, path)
}

// ParseSettings parses depc.yaml content from bytes.
// The path argument is used only for error messages.
func ParseSettings(data []byte, path string) (Settings, error) {
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := s.validate(path); err != nil {
		return Settings{}, err
	}
	s.setDefaults()
	return s, nil
}

// FindSettings looks for depc.yaml in dir and its parents. It returns the
// empty string and a nil error when there is none.
func FindSettings(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, SettingsFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func (s *Settings) validate(path string) error {
	if s.Search.MaxDepth < 0 {
		return fmt.Errorf("%s: search.max_depth must not be negative", path)
	}
	if s.Search.MaxSteps < 0 {
		return fmt.Errorf("%s: search.max_steps must not be negative", path)
	}
	switch s.Diagnostics.Color {
	case "", ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("%s: diagnostics.color must be one of %s, %s or %s, got %q",
			path, ColorAuto, ColorAlways, ColorNever, s.Diagnostics.Color)
	}
	return nil
}

func (s *Settings) setDefaults() {
	if s.Search.MaxDepth == 0 {
		s.Search.MaxDepth = DefaultMaxSearchDepth
	}
	if s.Search.MaxSteps == 0 {
		s.Search.MaxSteps = DefaultMaxSearchSteps
	}
	if s.Diagnostics.Color == "" {
		s.Diagnostics.Color = ColorAuto
	}
}
