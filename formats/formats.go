// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// Package formats ships the built-in detection rule sets: markdown, json,
// yaml, diff, log, and stack traces. Each format is a RuleDetector built
// from weighted regex rules, registered at a priority that orders detection
// by specificity.
package formats

import "github.com/framegrace/texelprettify/prettifier"

// FormatSettings gates one format's registration.
type FormatSettings struct {
	Enabled  bool
	Priority int
}

// Settings holds per-format registration settings.
type Settings struct {
	Markdown   FormatSettings
	JSON       FormatSettings
	YAML       FormatSettings
	Diff       FormatSettings
	Log        FormatSettings
	StackTrace FormatSettings
}

// DefaultSettings enables every format. Priorities put the most
// unambiguous formats first: diff and stack traces carry definitive
// signatures, logs are the weakest and go last.
func DefaultSettings() Settings {
	return Settings{
		Diff:       FormatSettings{Enabled: true, Priority: 50},
		StackTrace: FormatSettings{Enabled: true, Priority: 45},
		JSON:       FormatSettings{Enabled: true, Priority: 40},
		YAML:       FormatSettings{Enabled: true, Priority: 30},
		Markdown:   FormatSettings{Enabled: true, Priority: 20},
		Log:        FormatSettings{Enabled: true, Priority: 10},
	}
}

// RegisterAll registers every enabled format's detector.
func RegisterAll(reg *prettifier.Registry, s Settings) {
	RegisterMarkdown(reg, s.Markdown)
	RegisterJSON(reg, s.JSON)
	RegisterYAML(reg, s.YAML)
	RegisterDiff(reg, s.Diff)
	RegisterLog(reg, s.Log)
	RegisterStackTrace(reg, s.StackTrace)
}
