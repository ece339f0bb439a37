// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
package formats

import (
	"regexp"

	"github.com/framegrace/texelprettify/prettifier"
)

// NewLogDetector builds the log-output rule set.
//
// Log lines have no definitive shape, so detection needs two independent
// signals (timestamp plus level, syslog plus level, and so on) and a lower
// threshold than the structured formats.
func NewLogDetector() *prettifier.RuleDetector {
	return prettifier.NewRuleDetector("log", "Log Output").
		ConfidenceThreshold(0.5).
		MinMatchingRules(2).
		DefinitiveShortCircuit(false).
		Rule(prettifier.DetectionRule{
			ID:          "log_timestamp_level",
			Pattern:     regexp.MustCompile(`^\d{4}[-/]\d{2}[-/]\d{2}[T ]\d{2}:\d{2}:\d{2}.*?(TRACE|DEBUG|INFO|WARN|ERROR|FATAL)`),
			Weight:      0.7,
			Scope:       prettifier.AnyLine(),
			Strength:    prettifier.Strong,
			Source:      prettifier.BuiltIn,
			Description: "Timestamp followed by log level keyword",
			Enabled:     true,
		}).
		Rule(prettifier.DetectionRule{
			ID:          "log_level_prefix",
			Pattern:     regexp.MustCompile(`^\s*\[?(TRACE|DEBUG|INFO|WARN|ERROR|FATAL)\]?\s`),
			Weight:      0.5,
			Scope:       prettifier.AnyLine(),
			Strength:    prettifier.Strong,
			Source:      prettifier.BuiltIn,
			Description: "Log level at start of line",
			Enabled:     true,
		}).
		Rule(prettifier.DetectionRule{
			ID:          "log_iso_timestamp",
			Pattern:     regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}`),
			Weight:      0.3,
			Scope:       prettifier.AnyLine(),
			Strength:    prettifier.Supporting,
			Source:      prettifier.BuiltIn,
			Description: "ISO 8601 timestamp at start of line",
			Enabled:     true,
		}).
		Rule(prettifier.DetectionRule{
			ID:          "log_syslog",
			Pattern:     regexp.MustCompile(`^(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s+\d+\s+\d{2}:\d{2}:\d{2}`),
			Weight:      0.4,
			Scope:       prettifier.AnyLine(),
			Strength:    prettifier.Strong,
			Source:      prettifier.BuiltIn,
			Description: "Syslog month day time prefix",
			Enabled:     true,
		}).
		Rule(prettifier.DetectionRule{
			ID:          "log_json_line",
			Pattern:     regexp.MustCompile(`^\{"(timestamp|time|ts|level|msg|message)":`),
			Weight:      0.6,
			Scope:       prettifier.AnyLine(),
			Strength:    prettifier.Strong,
			Source:      prettifier.BuiltIn,
			Description: "Structured JSON log line",
			Enabled:     true,
		}).
		Build()
}

// RegisterLog registers the log detector when enabled.
func RegisterLog(reg *prettifier.Registry, cfg FormatSettings) {
	if cfg.Enabled {
		reg.RegisterDetector(cfg.Priority, NewLogDetector())
	}
}
