// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// Package texelprettify wires configuration to the runtime pipeline: it
// parses config scope strings, builds a registry populated with the built-in
// formats and renderers, and applies user rule customization.
package texelprettify

import (
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/framegrace/texelprettify/config"
	"github.com/framegrace/texelprettify/formats"
	"github.com/framegrace/texelprettify/prettifier"
	"github.com/framegrace/texelprettify/renderers"
)

// ToPipelineConfig converts file configuration into the runtime pipeline
// configuration.
func ToPipelineConfig(cfg *config.Config) prettifier.PipelineConfig {
	return prettifier.PipelineConfig{
		Enabled:             cfg.Enabled,
		ConfidenceThreshold: cfg.Detection.ConfidenceThreshold,
		DetectionScope:      ParseDetectionScope(cfg.Detection.Scope),
		MaxScanLines:        cfg.Detection.MaxScanLines,
		Debounce:            time.Duration(cfg.Detection.DebounceMS) * time.Millisecond,
		CacheEntries:        cfg.Renderer.CacheEntries,
	}
}

// ParseDetectionScope parses a config scope string. Unknown strings fall
// back to command-output scope, the conservative default.
func ParseDetectionScope(scope string) prettifier.DetectionScope {
	switch scope {
	case "all":
		return prettifier.ScopeAll
	case "manual_only":
		return prettifier.ScopeManualOnly
	default:
		return prettifier.ScopeCommandOutput
	}
}

// ParseRuleScope parses a config rule scope string. Unknown strings fall
// back to any-line scope.
func ParseRuleScope(scope string) prettifier.RuleScope {
	if n, ok := scopeCount(scope, "first_lines:", 5); ok {
		return prettifier.FirstLines(n)
	}
	if n, ok := scopeCount(scope, "last_lines:", 3); ok {
		return prettifier.LastLines(n)
	}
	switch scope {
	case "full_block":
		return prettifier.FullBlock()
	case "preceding_command":
		return prettifier.PrecedingCommand()
	default:
		return prettifier.AnyLine()
	}
}

// scopeCount parses "prefix:N" style scope strings. A missing or malformed
// count falls back to def.
func scopeCount(scope, prefix string, def int) (int, bool) {
	rest, ok := strings.CutPrefix(scope, prefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n <= 0 {
		return def, true
	}
	return n, true
}

// BuildRegistry builds a registry populated with all built-in detectors and
// renderers, configured from cfg: per-format enable/priority settings, rule
// overrides, and additional user rules.
func BuildRegistry(cfg *config.Config) *prettifier.Registry {
	reg := prettifier.NewRegistry(cfg.Detection.ConfidenceThreshold)

	formats.RegisterAll(reg, formatSettings(cfg))
	renderers.RegisterAll(reg)

	for formatID, rules := range cfg.DetectionRules {
		overrides := convertOverrides(rules.Overrides)
		additional := parseUserRules(rules.Additional)
		reg.ApplyRulesForFormat(formatID, overrides, additional)
	}

	return reg
}

// NewPipelineFromConfig builds a ready pipeline, or nil when the prettifier
// is disabled.
func NewPipelineFromConfig(cfg *config.Config, terminalWidth int) *prettifier.Pipeline {
	if !cfg.Enabled {
		return nil
	}
	rendererCfg := prettifier.DefaultRendererConfig()
	if terminalWidth > 0 {
		rendererCfg.TerminalWidth = terminalWidth
	}
	if cfg.Renderer.ChromaStyle != "" {
		rendererCfg.ChromaStyle = cfg.Renderer.ChromaStyle
	}
	return prettifier.NewPipeline(ToPipelineConfig(cfg), BuildRegistry(cfg), *rendererCfg)
}

// formatSettings merges config format toggles onto the defaults.
func formatSettings(cfg *config.Config) formats.Settings {
	s := formats.DefaultSettings()
	for name, fc := range cfg.Formats {
		var target *formats.FormatSettings
		switch name {
		case "markdown":
			target = &s.Markdown
		case "json":
			target = &s.JSON
		case "yaml":
			target = &s.YAML
		case "diff":
			target = &s.Diff
		case "log":
			target = &s.Log
		case "stack_trace":
			target = &s.StackTrace
		default:
			log.Printf("[BRIDGE] unknown format %q in config, ignoring", name)
			continue
		}
		if fc.Enabled != nil {
			target.Enabled = *fc.Enabled
		}
		if fc.Priority != nil {
			target.Priority = *fc.Priority
		}
	}
	return s
}

func convertOverrides(in []config.RuleOverrideConfig) []prettifier.RuleOverride {
	out := make([]prettifier.RuleOverride, 0, len(in))
	for _, ov := range in {
		out = append(out, prettifier.RuleOverride{
			ID:      ov.ID,
			Enabled: ov.Enabled,
			Weight:  ov.Weight,
		})
	}
	return out
}

// parseUserRules compiles user rules. A rule with an invalid pattern is
// dropped with a log line rather than failing the whole load.
func parseUserRules(in []config.UserRuleConfig) []prettifier.DetectionRule {
	var out []prettifier.DetectionRule
	for _, ur := range in {
		pattern, err := regexp.Compile(ur.Pattern)
		if err != nil {
			log.Printf("[BRIDGE] dropping user rule %q: invalid pattern: %v", ur.ID, err)
			continue
		}
		out = append(out, prettifier.DetectionRule{
			ID:          ur.ID,
			Pattern:     pattern,
			Weight:      ur.Weight,
			Scope:       ParseRuleScope(ur.Scope),
			Strength:    prettifier.Supporting,
			Source:      prettifier.UserDefined,
			Description: ur.Description,
			Enabled:     ur.Enabled,
		})
	}
	return out
}
