// Package config holds runtime constants and the user-facing shell
// configuration loaded from nush.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level nush.yaml configuration.
type Config struct {
	// Prompt is the interactive prompt string.
	Prompt string `yaml:"prompt,omitempty"`

	// HistoryFile is the path of the sqlite history database. A leading ~
	// is expanded to the user's home directory.
	HistoryFile string `yaml:"history_file,omitempty"`

	// MaxHistory limits how many entries `history` shows by default.
	MaxHistory int `yaml:"max_history,omitempty"`

	// NoColor disables ANSI colors in diagnostics regardless of terminal
	// detection.
	NoColor bool `yaml:"no_color,omitempty"`
}

// Default returns the configuration used when no nush.yaml exists.
func Default() *Config {
	return &Config{
		Prompt:      "> ",
		HistoryFile: "~/.nush_history.db",
		MaxHistory:  100,
	}
}

// Load reads a config file, filling unset fields from Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if cfg.MaxHistory <= 0 {
		cfg.MaxHistory = Default().MaxHistory
	}
	return cfg, nil
}

// LoadDefault looks for nush.yaml in the user's config directory and falls
// back to Default when it is absent.
func LoadDefault() *Config {
	dir, err := os.UserConfigDir()
	if err != nil {
		return Default()
	}
	path := filepath.Join(dir, "nush", "nush.yaml")
	if _, err := os.Stat(path); err != nil {
		return Default()
	}
	cfg, err := Load(path)
	if err != nil {
		return Default()
	}
	return cfg
}

// ExpandHome expands a leading ~ in a path.
func ExpandHome(path string) string {
	if len(path) >= 2 && path[0] == '~' && path[1] == '/' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
