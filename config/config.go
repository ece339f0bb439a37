// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// Package config loads texelprettify configuration from a YAML file.
//
// Config file search order:
//  1. .texelprettify.yaml in the current directory
//  2. ~/.config/texelprettify/config.yaml
//
// A missing file falls back to built-in defaults; a malformed file is an
// error. Invalid user rule patterns are dropped later, at registry build
// time, so one bad regex never breaks startup.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all texelprettify configuration.
type Config struct {
	// Enabled is the master switch for the prettifier.
	Enabled bool `yaml:"enabled"`
	// RespectAlternateScreen pauses detection while a full-screen app runs.
	RespectAlternateScreen bool `yaml:"respect_alternate_screen"`

	Detection DetectionConfig `yaml:"detection"`

	// Formats toggles and prioritizes individual format detectors.
	Formats map[string]FormatConfig `yaml:"formats"`

	// DetectionRules customizes rules per format: overrides patch built-in
	// rules, additional appends user-defined ones.
	DetectionRules map[string]FormatRulesConfig `yaml:"detection_rules"`

	Renderer RendererSettings `yaml:"renderer"`
	History  HistoryConfig    `yaml:"history"`

	// ConfigFile is the path the config was loaded from (empty if defaults).
	ConfigFile string `yaml:"-"`
}

// DetectionConfig tunes the boundary and detection stages.
type DetectionConfig struct {
	// Scope is one of "command_output", "all", "manual_only".
	Scope string `yaml:"scope"`
	// ConfidenceThreshold is the global minimum detection confidence.
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
	// MaxScanLines caps block accumulation.
	MaxScanLines int `yaml:"max_scan_lines"`
	// DebounceMS is the boundary inactivity window in milliseconds.
	DebounceMS int `yaml:"debounce_ms"`
}

// FormatConfig toggles one format. Nil fields keep the built-in default.
type FormatConfig struct {
	Enabled  *bool `yaml:"enabled"`
	Priority *int  `yaml:"priority"`
}

// FormatRulesConfig customizes one format's rule set.
type FormatRulesConfig struct {
	Overrides  []RuleOverrideConfig `yaml:"overrides"`
	Additional []UserRuleConfig     `yaml:"additional"`
}

// RuleOverrideConfig patches a built-in rule. Nil fields keep the built-in
// value; unknown IDs are ignored.
type RuleOverrideConfig struct {
	ID      string   `yaml:"id"`
	Enabled *bool    `yaml:"enabled"`
	Weight  *float64 `yaml:"weight"`
}

// UserRuleConfig defines a user detection rule. Scope is one of "any_line",
// "first_lines:N", "last_lines:N", "full_block", "preceding_command".
type UserRuleConfig struct {
	ID          string  `yaml:"id"`
	Pattern     string  `yaml:"pattern"`
	Weight      float64 `yaml:"weight"`
	Scope       string  `yaml:"scope"`
	Enabled     bool    `yaml:"enabled"`
	Description string  `yaml:"description"`
}

// RendererSettings tunes renderer output.
type RendererSettings struct {
	// ChromaStyle names the syntax highlighting style.
	ChromaStyle string `yaml:"chroma_style"`
	// CacheEntries bounds the render cache. Zero keeps the default.
	CacheEntries int `yaml:"cache_entries"`
}

// HistoryConfig controls the session block archive.
type HistoryConfig struct {
	// Enabled turns on sqlite archival of detected blocks.
	Enabled bool `yaml:"enabled"`
	// Path is the database file; empty uses the default under ~/.local/share.
	Path string `yaml:"path"`
	// MaxBlocks caps retention for both the archive and the live pipeline.
	MaxBlocks int `yaml:"max_blocks"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Enabled:                true,
		RespectAlternateScreen: true,
		Detection: DetectionConfig{
			Scope:               "command_output",
			ConfidenceThreshold: 0.6,
			MaxScanLines:        500,
			DebounceMS:          100,
		},
		Renderer: RendererSettings{
			ChromaStyle: "catppuccin-mocha",
		},
		History: HistoryConfig{
			Enabled:   false,
			MaxBlocks: 128,
		},
	}
}

// Load reads configuration from the given path, or from the search paths
// when path is empty. A missing file in the search paths returns defaults.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	var data []byte
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else {
		path, data = findConfigFile()
		if data == nil {
			return cfg, nil
		}
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.ConfigFile = path
	return cfg, nil
}

// findConfigFile searches the standard locations.
func findConfigFile() (string, []byte) {
	if data, err := os.ReadFile(".texelprettify.yaml"); err == nil {
		return ".texelprettify.yaml", data
	}
	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, ".config", "texelprettify", "config.yaml")
		if data, err := os.ReadFile(p); err == nil {
			return p, data
		}
	}
	return "", nil
}

// DefaultHistoryPath returns the standard history database location.
func DefaultHistoryPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home dir: %w", err)
	}
	return filepath.Join(home, ".local", "share", "texelprettify", "history.db"), nil
}
