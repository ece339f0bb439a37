// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
package prettifier

import "errors"

// ErrNoRenderer is returned when a format was detected but no renderer is
// registered for it.
var ErrNoRenderer = errors.New("no renderer registered for format")

// Detector classifies a content block as some structured format.
//
// Implementations must be safe for concurrent Detect/QuickMatch calls; the
// pipeline never mutates a detector after registration.
type Detector interface {
	// FormatID returns the stable format identifier ("markdown", "json", ...).
	FormatID() string
	// DisplayName returns a human-readable format name.
	DisplayName() string
	// Detect classifies the block. A nil result means no detection.
	Detect(block *ContentBlock) *DetectionResult
	// QuickMatch is a cheap pre-filter: false means Detect cannot possibly
	// succeed, true means it might.
	QuickMatch(block *ContentBlock) bool
	// Rules exposes the detector's rule list for settings UIs. The returned
	// slice must not be mutated.
	Rules() []DetectionRule
}

// Renderer turns a detected block into styled terminal output.
type Renderer interface {
	// FormatID returns the format this renderer handles.
	FormatID() string
	// DisplayName returns a human-readable renderer name.
	DisplayName() string
	// Capabilities declares what the renderer needs to function.
	Capabilities() []RendererCapability
	// Render produces styled output for the block. An error means the block
	// stays in source view.
	Render(block *ContentBlock, cfg *RendererConfig) (*RenderedContent, error)
	// Badge returns a short gutter badge (at most two cells wide).
	Badge() string
}

// ConfigurableDetector is an optional interface for detectors that accept
// user rule customization. Discovered via type assertion during bridge
// configuration.
type ConfigurableDetector interface {
	Detector
	// MergeUserRules replaces rules with matching IDs wholesale and appends
	// the rest as user-defined rules.
	MergeUserRules(rules []DetectionRule)
	// ApplyOverrides patches enabled/weight/scope on existing rules by ID.
	// Unknown IDs are ignored.
	ApplyOverrides(overrides []RuleOverride)
}

// RuleOverride is a partial patch for one built-in rule.
type RuleOverride struct {
	ID      string
	Enabled *bool
	Weight  *float64
	Scope   *RuleScope
}
