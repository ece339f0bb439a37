// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
package prettifier

import (
	"log"
	"regexp"
)

// quickMatchLines caps how many leading lines QuickMatch samples. Some
// content has preamble before the structured part begins, so a handful of
// lines is not enough.
const quickMatchLines = 30

// RuleDetector is the weighted-scoring Detector all built-in formats use.
// It evaluates DetectionRules against a block, accumulates matched weights,
// and reports a result once its thresholds are met.
//
// Detect and QuickMatch are read-only and safe to call concurrently;
// MergeUserRules and ApplyOverrides are configuration-time only.
type RuleDetector struct {
	formatID     string
	displayName  string
	rules        []DetectionRule
	threshold    float64
	minMatching  int
	shortCircuit bool
}

var _ ConfigurableDetector = (*RuleDetector)(nil)

// FormatID returns the detector's format identifier.
func (d *RuleDetector) FormatID() string { return d.formatID }

// DisplayName returns the detector's human-readable name.
func (d *RuleDetector) DisplayName() string { return d.displayName }

// Rules exposes the rule list for settings UIs.
func (d *RuleDetector) Rules() []DetectionRule { return d.rules }

// Detect scores the block against the rule set.
//
// Rules run in order. Disabled rules and rules whose command-context gate
// fails are skipped. When short-circuiting is enabled, the first matching
// Definitive rule resolves immediately at confidence 1.0 with only that rule
// reported. Otherwise matched weights are summed, clamped to 1.0, and gated
// on the min-matching-rules count and the confidence threshold.
func (d *RuleDetector) Detect(block *ContentBlock) *DetectionResult {
	var totalWeight float64
	matchCount := 0
	var matchedRules []string

	// Joined once for all FullBlock rules.
	fullText := block.FullText()

	for i := range d.rules {
		rule := &d.rules[i]
		if !rule.Enabled {
			continue
		}

		if rule.CommandContext != nil {
			if block.PrecedingCommand == "" || !rule.CommandContext.MatchString(block.PrecedingCommand) {
				continue
			}
		}

		if !ruleMatches(rule, block, fullText) {
			continue
		}

		totalWeight += rule.Weight
		matchCount++
		matchedRules = append(matchedRules, rule.ID)

		if d.shortCircuit && rule.Strength == Definitive {
			return &DetectionResult{
				FormatID:     d.formatID,
				Confidence:   1.0,
				MatchedRules: []string{rule.ID},
				Source:       AutoDetected,
			}
		}
	}

	if matchCount < d.minMatching {
		return nil
	}

	confidence := totalWeight
	if confidence > 1.0 {
		confidence = 1.0
	}
	if confidence < d.threshold {
		log.Printf("[DETECT] %s: conf=%.2f below threshold %.2f (matched %v)",
			d.formatID, confidence, d.threshold, matchedRules)
		return nil
	}

	return &DetectionResult{
		FormatID:     d.formatID,
		Confidence:   confidence,
		MatchedRules: matchedRules,
		Source:       AutoDetected,
	}
}

// QuickMatch tests Strong and Definitive rules with AnyLine or FirstLines
// scope against the block's first lines. A false return means Detect cannot
// meet its thresholds via those rules cheaply; the registry uses this to
// skip full detection.
func (d *RuleDetector) QuickMatch(block *ContentBlock) bool {
	lines := block.FirstLines(quickMatchLines)

	for i := range d.rules {
		rule := &d.rules[i]
		if !rule.Enabled {
			continue
		}
		if rule.Strength == Supporting {
			continue
		}
		switch rule.Scope.Kind {
		case ScopeAnyLine, ScopeFirstLines:
		default:
			continue
		}
		for _, line := range lines {
			if rule.Pattern.MatchString(line) {
				return true
			}
		}
	}

	return false
}

// MergeUserRules merges user-defined rules. A rule whose ID matches an
// existing rule replaces that rule's fields wholesale; new IDs are appended.
func (d *RuleDetector) MergeUserRules(userRules []DetectionRule) {
	for _, ur := range userRules {
		replaced := false
		for i := range d.rules {
			if d.rules[i].ID == ur.ID {
				d.rules[i].Pattern = ur.Pattern
				d.rules[i].Weight = ur.Weight
				d.rules[i].Scope = ur.Scope
				d.rules[i].Strength = ur.Strength
				d.rules[i].CommandContext = ur.CommandContext
				d.rules[i].Description = ur.Description
				d.rules[i].Enabled = ur.Enabled
				d.rules[i].Source = ur.Source
				replaced = true
				break
			}
		}
		if !replaced {
			d.rules = append(d.rules, ur)
		}
	}
}

// ApplyOverrides patches enabled/weight/scope on existing rules. Unknown
// rule IDs are silently ignored.
func (d *RuleDetector) ApplyOverrides(overrides []RuleOverride) {
	for _, ov := range overrides {
		for i := range d.rules {
			if d.rules[i].ID != ov.ID {
				continue
			}
			if ov.Enabled != nil {
				d.rules[i].Enabled = *ov.Enabled
			}
			if ov.Weight != nil {
				d.rules[i].Weight = *ov.Weight
			}
			if ov.Scope != nil {
				d.rules[i].Scope = *ov.Scope
			}
			break
		}
	}
}

func ruleMatches(rule *DetectionRule, block *ContentBlock, fullText string) bool {
	switch rule.Scope.Kind {
	case ScopeFullBlock:
		return rule.Pattern.MatchString(fullText)
	case ScopePrecedingCommand:
		if block.PrecedingCommand == "" {
			return false
		}
		return rule.Pattern.MatchString(block.PrecedingCommand)
	case ScopeFirstLines:
		return anyLineMatches(rule.Pattern, block.FirstLines(rule.Scope.N))
	case ScopeLastLines:
		return anyLineMatches(rule.Pattern, block.LastLines(rule.Scope.N))
	default:
		return anyLineMatches(rule.Pattern, block.Lines)
	}
}

func anyLineMatches(p *regexp.Regexp, lines []string) bool {
	for _, line := range lines {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}

// RuleDetectorBuilder constructs RuleDetectors with stock defaults:
// threshold 0.6, one matching rule minimum, short-circuit enabled.
type RuleDetectorBuilder struct {
	d RuleDetector
}

// NewRuleDetector starts a builder for the given format.
func NewRuleDetector(formatID, displayName string) *RuleDetectorBuilder {
	return &RuleDetectorBuilder{d: RuleDetector{
		formatID:     formatID,
		displayName:  displayName,
		threshold:    0.6,
		minMatching:  1,
		shortCircuit: true,
	}}
}

// Rule adds one detection rule.
func (b *RuleDetectorBuilder) Rule(rule DetectionRule) *RuleDetectorBuilder {
	b.d.rules = append(b.d.rules, rule)
	return b
}

// Rules adds multiple detection rules.
func (b *RuleDetectorBuilder) Rules(rules ...DetectionRule) *RuleDetectorBuilder {
	b.d.rules = append(b.d.rules, rules...)
	return b
}

// ConfidenceThreshold sets the minimum confidence (default 0.6).
func (b *RuleDetectorBuilder) ConfidenceThreshold(t float64) *RuleDetectorBuilder {
	b.d.threshold = t
	return b
}

// MinMatchingRules sets the minimum matched-rule count (default 1).
func (b *RuleDetectorBuilder) MinMatchingRules(n int) *RuleDetectorBuilder {
	b.d.minMatching = n
	return b
}

// DefinitiveShortCircuit toggles Definitive short-circuiting (default on).
func (b *RuleDetectorBuilder) DefinitiveShortCircuit(enabled bool) *RuleDetectorBuilder {
	b.d.shortCircuit = enabled
	return b
}

// Build finalizes the detector.
func (b *RuleDetectorBuilder) Build() *RuleDetector {
	d := b.d
	return &d
}
