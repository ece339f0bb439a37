// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
package formats

import (
	"regexp"

	"github.com/framegrace/texelprettify/prettifier"
)

// NewStackTraceDetector builds the stack-trace rule set.
//
// Language-specific frames (Java, Python, Rust panics, Go goroutine dumps)
// are definitive. Generic "SomethingError:" headers need a second signal,
// hence the two-rule minimum.
func NewStackTraceDetector() *prettifier.RuleDetector {
	return prettifier.NewRuleDetector("stack_trace", "Stack Trace").
		ConfidenceThreshold(0.6).
		MinMatchingRules(2).
		DefinitiveShortCircuit(true).
		Rule(prettifier.DetectionRule{
			ID:          "stacktrace_java",
			Pattern:     regexp.MustCompile(`^\s+at\s+[\w.$]+\([\w.]+:\d+\)`),
			Weight:      0.7,
			Scope:       prettifier.AnyLine(),
			Strength:    prettifier.Definitive,
			Source:      prettifier.BuiltIn,
			Description: "Java stack frame",
			Enabled:     true,
		}).
		Rule(prettifier.DetectionRule{
			ID:          "stacktrace_python_header",
			Pattern:     regexp.MustCompile(`^Traceback \(most recent call last\):`),
			Weight:      0.9,
			Scope:       prettifier.AnyLine(),
			Strength:    prettifier.Definitive,
			Source:      prettifier.BuiltIn,
			Description: "Python traceback header",
			Enabled:     true,
		}).
		Rule(prettifier.DetectionRule{
			ID:          "stacktrace_python_frame",
			Pattern:     regexp.MustCompile(`^\s+File ".*", line \d+`),
			Weight:      0.6,
			Scope:       prettifier.AnyLine(),
			Strength:    prettifier.Strong,
			Source:      prettifier.BuiltIn,
			Description: "Python stack frame",
			Enabled:     true,
		}).
		Rule(prettifier.DetectionRule{
			ID:          "stacktrace_rust_panic",
			Pattern:     regexp.MustCompile(`^thread '.*' panicked at`),
			Weight:      0.9,
			Scope:       prettifier.AnyLine(),
			Strength:    prettifier.Definitive,
			Source:      prettifier.BuiltIn,
			Description: "Rust panic header",
			Enabled:     true,
		}).
		Rule(prettifier.DetectionRule{
			ID:          "stacktrace_js",
			Pattern:     regexp.MustCompile(`^\s+at\s+\S+\s+\(.*:\d+:\d+\)`),
			Weight:      0.6,
			Scope:       prettifier.AnyLine(),
			Strength:    prettifier.Strong,
			Source:      prettifier.BuiltIn,
			Description: "JavaScript stack frame",
			Enabled:     true,
		}).
		Rule(prettifier.DetectionRule{
			ID:          "stacktrace_generic_error",
			Pattern:     regexp.MustCompile(`^(\w+Error|Exception|Caused by):`),
			Weight:      0.4,
			Scope:       prettifier.AnyLine(),
			Strength:    prettifier.Strong,
			Source:      prettifier.BuiltIn,
			Description: "Generic error or exception header",
			Enabled:     true,
		}).
		Rule(prettifier.DetectionRule{
			ID:          "stacktrace_go_panic",
			Pattern:     regexp.MustCompile(`^goroutine \d+ \[`),
			Weight:      0.8,
			Scope:       prettifier.AnyLine(),
			Strength:    prettifier.Definitive,
			Source:      prettifier.BuiltIn,
			Description: "Go goroutine dump header",
			Enabled:     true,
		}).
		Build()
}

// RegisterStackTrace registers the stack-trace detector when enabled.
func RegisterStackTrace(reg *prettifier.Registry, cfg FormatSettings) {
	if cfg.Enabled {
		reg.RegisterDetector(cfg.Priority, NewStackTraceDetector())
	}
}
