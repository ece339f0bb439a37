// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
package formats

import (
	"regexp"

	"github.com/framegrace/texelprettify/prettifier"
)

// NewYAMLDetector builds the YAML rule set.
//
// Requires two matching rules so that a lone `---` (which also opens
// markdown front matter and unified diffs) cannot trigger a detection;
// short-circuiting is off for the same reason.
func NewYAMLDetector() *prettifier.RuleDetector {
	return prettifier.NewRuleDetector("yaml", "YAML").
		ConfidenceThreshold(0.6).
		MinMatchingRules(2).
		DefinitiveShortCircuit(false).
		Rule(prettifier.DetectionRule{
			ID:          "yaml_doc_start",
			Pattern:     regexp.MustCompile(`^---\s*$`),
			Weight:      0.5,
			Scope:       prettifier.FirstLines(3),
			Strength:    prettifier.Definitive,
			Source:      prettifier.BuiltIn,
			Description: "YAML document start marker ---",
			Enabled:     true,
		}).
		Rule(prettifier.DetectionRule{
			ID:          "yaml_key_value",
			Pattern:     regexp.MustCompile(`^[a-zA-Z_][\w.\-]*:(\s|$)`),
			Weight:      0.4,
			Scope:       prettifier.AnyLine(),
			Strength:    prettifier.Strong,
			Source:      prettifier.BuiltIn,
			Description: "Top-level key: value",
			Enabled:     true,
		}).
		Rule(prettifier.DetectionRule{
			ID:          "yaml_nested",
			Pattern:     regexp.MustCompile(`^\s{2,}[a-zA-Z_][\w.\-]*:(\s|$)`),
			Weight:      0.25,
			Scope:       prettifier.AnyLine(),
			Strength:    prettifier.Supporting,
			Source:      prettifier.BuiltIn,
			Description: "Indented nested key",
			Enabled:     true,
		}).
		Rule(prettifier.DetectionRule{
			ID:          "yaml_list",
			Pattern:     regexp.MustCompile(`^\s*-\s+\S`),
			Weight:      0.2,
			Scope:       prettifier.AnyLine(),
			Strength:    prettifier.Supporting,
			Source:      prettifier.BuiltIn,
			Description: "List item",
			Enabled:     true,
		}).
		Build()
}

// RegisterYAML registers the YAML detector when enabled.
func RegisterYAML(reg *prettifier.Registry, cfg FormatSettings) {
	if cfg.Enabled {
		reg.RegisterDetector(cfg.Priority, NewYAMLDetector())
	}
}
