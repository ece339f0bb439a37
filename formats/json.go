// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
package formats

import (
	"regexp"

	"github.com/framegrace/texelprettify/prettifier"
)

// NewJSONDetector builds the JSON rule set.
//
// No single line is definitive JSON, so short-circuiting is off and
// confidence accumulates from opening/closing delimiters, key-value lines,
// and the preceding command (curl, jq and friends).
func NewJSONDetector() *prettifier.RuleDetector {
	return prettifier.NewRuleDetector("json", "JSON").
		ConfidenceThreshold(0.6).
		MinMatchingRules(1).
		DefinitiveShortCircuit(false).
		Rule(prettifier.DetectionRule{
			ID:          "json_open_brace",
			Pattern:     regexp.MustCompile(`^\s*\{\s*$`),
			Weight:      0.4,
			Scope:       prettifier.FirstLines(3),
			Strength:    prettifier.Strong,
			Source:      prettifier.BuiltIn,
			Description: "Line containing only an opening brace {",
			Enabled:     true,
		}).
		Rule(prettifier.DetectionRule{
			ID:          "json_open_bracket",
			Pattern:     regexp.MustCompile(`^\s*\[\s*$`),
			Weight:      0.35,
			Scope:       prettifier.FirstLines(3),
			Strength:    prettifier.Strong,
			Source:      prettifier.BuiltIn,
			Description: "Line containing only an opening bracket [",
			Enabled:     true,
		}).
		Rule(prettifier.DetectionRule{
			ID:          "json_key_value",
			Pattern:     regexp.MustCompile(`^\s*"[^"]+"\s*:\s*`),
			Weight:      0.3,
			Scope:       prettifier.AnyLine(),
			Strength:    prettifier.Strong,
			Source:      prettifier.BuiltIn,
			Description: `JSON key-value pattern ("key": value)`,
			Enabled:     true,
		}).
		Rule(prettifier.DetectionRule{
			ID:          "json_close_brace",
			Pattern:     regexp.MustCompile(`^\s*\}\s*,?\s*$`),
			Weight:      0.2,
			Scope:       prettifier.LastLines(3),
			Strength:    prettifier.Supporting,
			Source:      prettifier.BuiltIn,
			Description: "Line containing only a closing brace }",
			Enabled:     true,
		}).
		Rule(prettifier.DetectionRule{
			ID:          "json_curl_context",
			Pattern:     regexp.MustCompile(`^(curl|http|httpie|wget)\s+`),
			Weight:      0.3,
			Scope:       prettifier.PrecedingCommand(),
			Strength:    prettifier.Supporting,
			Source:      prettifier.BuiltIn,
			Description: "Preceding command is curl, http, httpie, or wget",
			Enabled:     true,
		}).
		Rule(prettifier.DetectionRule{
			ID:          "json_jq_context",
			Pattern:     regexp.MustCompile(`^(jq|gron|fx)\s+`),
			Weight:      0.3,
			Scope:       prettifier.PrecedingCommand(),
			Strength:    prettifier.Supporting,
			Source:      prettifier.BuiltIn,
			Description: "Preceding command is jq, gron, or fx",
			Enabled:     true,
		}).
		Build()
}

// RegisterJSON registers the JSON detector when enabled.
func RegisterJSON(reg *prettifier.Registry, cfg FormatSettings) {
	if cfg.Enabled {
		reg.RegisterDetector(cfg.Priority, NewJSONDetector())
	}
}
