// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if !cfg.Enabled || !cfg.RespectAlternateScreen {
		t.Error("prettifier and alt-screen respect should default on")
	}
	if cfg.Detection.Scope != "command_output" {
		t.Errorf("Scope = %q", cfg.Detection.Scope)
	}
	if cfg.Detection.ConfidenceThreshold != 0.6 {
		t.Errorf("ConfidenceThreshold = %v", cfg.Detection.ConfidenceThreshold)
	}
	if cfg.Detection.MaxScanLines != 500 || cfg.Detection.DebounceMS != 100 {
		t.Errorf("Detection = %+v", cfg.Detection)
	}
	if cfg.Renderer.ChromaStyle != "catppuccin-mocha" {
		t.Errorf("ChromaStyle = %q", cfg.Renderer.ChromaStyle)
	}
	if cfg.History.Enabled || cfg.History.MaxBlocks != 128 {
		t.Errorf("History = %+v", cfg.History)
	}
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
enabled: false
respect_alternate_screen: false
detection:
  scope: all
  confidence_threshold: 0.75
  max_scan_lines: 200
  debounce_ms: 250
formats:
  json:
    enabled: false
  markdown:
    priority: 99
detection_rules:
  json:
    overrides:
      - id: json_open_brace
        enabled: false
      - id: json_key_value
        weight: 0.5
    additional:
      - id: my_rule
        pattern: '^BEGIN'
        weight: 0.4
        scope: "first_lines:2"
        enabled: true
        description: custom marker
renderer:
  chroma_style: dracula
  cache_entries: 16
history:
  enabled: true
  path: /tmp/test-history.db
  max_blocks: 32
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Enabled || cfg.RespectAlternateScreen {
		t.Error("top-level switches not parsed")
	}
	if cfg.Detection.Scope != "all" || cfg.Detection.ConfidenceThreshold != 0.75 {
		t.Errorf("Detection = %+v", cfg.Detection)
	}
	if cfg.Detection.MaxScanLines != 200 || cfg.Detection.DebounceMS != 250 {
		t.Errorf("Detection = %+v", cfg.Detection)
	}

	jsonFmt := cfg.Formats["json"]
	if jsonFmt.Enabled == nil || *jsonFmt.Enabled {
		t.Errorf("json format = %+v", jsonFmt)
	}
	mdFmt := cfg.Formats["markdown"]
	if mdFmt.Priority == nil || *mdFmt.Priority != 99 {
		t.Errorf("markdown format = %+v", mdFmt)
	}
	if mdFmt.Enabled != nil {
		t.Error("unset fields must stay nil")
	}

	rules := cfg.DetectionRules["json"]
	if len(rules.Overrides) != 2 || len(rules.Additional) != 1 {
		t.Fatalf("rules = %+v", rules)
	}
	if rules.Overrides[0].ID != "json_open_brace" || rules.Overrides[0].Enabled == nil || *rules.Overrides[0].Enabled {
		t.Errorf("override = %+v", rules.Overrides[0])
	}
	if rules.Overrides[1].Weight == nil || *rules.Overrides[1].Weight != 0.5 {
		t.Errorf("override = %+v", rules.Overrides[1])
	}
	add := rules.Additional[0]
	if add.ID != "my_rule" || add.Pattern != "^BEGIN" || add.Scope != "first_lines:2" || !add.Enabled {
		t.Errorf("additional = %+v", add)
	}

	if cfg.Renderer.ChromaStyle != "dracula" || cfg.Renderer.CacheEntries != 16 {
		t.Errorf("Renderer = %+v", cfg.Renderer)
	}
	if !cfg.History.Enabled || cfg.History.Path != "/tmp/test-history.db" || cfg.History.MaxBlocks != 32 {
		t.Errorf("History = %+v", cfg.History)
	}
	if cfg.ConfigFile != path {
		t.Errorf("ConfigFile = %q", cfg.ConfigFile)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "detection:\n  scope: manual_only\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Detection.Scope != "manual_only" {
		t.Errorf("Scope = %q", cfg.Detection.Scope)
	}
	// Everything else stays at defaults.
	if !cfg.Enabled || cfg.Detection.ConfidenceThreshold != 0.6 || cfg.Detection.MaxScanLines != 500 {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestLoadMissingExplicitPath(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("explicit missing path should error")
	}
}

func TestLoadMalformed(t *testing.T) {
	path := writeConfig(t, "enabled: [not a bool")
	if _, err := Load(path); err == nil {
		t.Fatal("malformed yaml should error")
	}
}
