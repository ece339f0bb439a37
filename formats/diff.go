// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
package formats

import (
	"regexp"

	"github.com/framegrace/texelprettify/prettifier"
)

// NewDiffDetector builds the diff rule set.
//
// Git headers, unified headers, and hunk markers are definitive; bare +/-
// lines alone are far too common to carry a detection.
func NewDiffDetector() *prettifier.RuleDetector {
	return prettifier.NewRuleDetector("diff", "Diff").
		ConfidenceThreshold(0.6).
		MinMatchingRules(1).
		DefinitiveShortCircuit(true).
		Rule(prettifier.DetectionRule{
			ID:          "diff_git_header",
			Pattern:     regexp.MustCompile(`^diff --git\s+`),
			Weight:      0.9,
			Scope:       prettifier.FirstLines(5),
			Strength:    prettifier.Definitive,
			Source:      prettifier.BuiltIn,
			Description: "git diff header",
			Enabled:     true,
		}).
		Rule(prettifier.DetectionRule{
			ID:          "diff_unified_header",
			Pattern:     regexp.MustCompile(`^---\s+\S+.*\n\+\+\+\s+\S+`),
			Weight:      0.9,
			Scope:       prettifier.FullBlock(),
			Strength:    prettifier.Definitive,
			Source:      prettifier.BuiltIn,
			Description: "Unified diff ---/+++ file header pair",
			Enabled:     true,
		}).
		Rule(prettifier.DetectionRule{
			ID:          "diff_hunk",
			Pattern:     regexp.MustCompile(`^@@\s+-\d+,?\d*\s+\+\d+,?\d*\s+@@`),
			Weight:      0.8,
			Scope:       prettifier.AnyLine(),
			Strength:    prettifier.Definitive,
			Source:      prettifier.BuiltIn,
			Description: "Hunk header @@ -a,b +c,d @@",
			Enabled:     true,
		}).
		Rule(prettifier.DetectionRule{
			ID:          "diff_add_line",
			Pattern:     regexp.MustCompile(`^\+[^+]`),
			Weight:      0.1,
			Scope:       prettifier.AnyLine(),
			Strength:    prettifier.Supporting,
			Source:      prettifier.BuiltIn,
			Description: "Added line",
			Enabled:     true,
		}).
		Rule(prettifier.DetectionRule{
			ID:          "diff_remove_line",
			Pattern:     regexp.MustCompile(`^-[^-]`),
			Weight:      0.1,
			Scope:       prettifier.AnyLine(),
			Strength:    prettifier.Supporting,
			Source:      prettifier.BuiltIn,
			Description: "Removed line",
			Enabled:     true,
		}).
		Rule(prettifier.DetectionRule{
			ID:          "diff_git_context",
			Pattern:     regexp.MustCompile(`^git\s+(diff|log|show)`),
			Weight:      0.3,
			Scope:       prettifier.PrecedingCommand(),
			Strength:    prettifier.Supporting,
			Source:      prettifier.BuiltIn,
			Description: "Preceding command is git diff/log/show",
			Enabled:     true,
		}).
		Build()
}

// RegisterDiff registers the diff detector when enabled.
func RegisterDiff(reg *prettifier.Registry, cfg FormatSettings) {
	if cfg.Enabled {
		reg.RegisterDetector(cfg.Priority, NewDiffDetector())
	}
}
