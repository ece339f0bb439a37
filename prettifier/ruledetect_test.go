// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
package prettifier

import (
	"math"
	"regexp"
	"testing"
	"time"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func testBlock(command string, lines ...string) *ContentBlock {
	return &ContentBlock{
		Lines:            lines,
		PrecedingCommand: command,
		StartRow:         0,
		EndRow:           len(lines),
		Timestamp:        time.Now(),
	}
}

func rule(id, pattern string, weight float64, scope RuleScope, strength RuleStrength) DetectionRule {
	return DetectionRule{
		ID:       id,
		Pattern:  regexp.MustCompile(pattern),
		Weight:   weight,
		Scope:    scope,
		Strength: strength,
		Source:   BuiltIn,
		Enabled:  true,
	}
}

func TestWeightedScoring(t *testing.T) {
	d := NewRuleDetector("test", "Test").
		Rules(
			rule("header", `^#\s`, 0.4, AnyLine(), Strong),
			rule("bullet", `^- `, 0.3, AnyLine(), Supporting),
			rule("never", `zzz`, 0.9, AnyLine(), Supporting),
		).
		ConfidenceThreshold(0.6).
		Build()

	result := d.Detect(testBlock("", "# Title", "- item"))
	if result == nil {
		t.Fatal("expected detection")
	}
	if !almostEqual(result.Confidence, 0.7) {
		t.Errorf("Confidence = %v, want 0.7", result.Confidence)
	}
	if len(result.MatchedRules) != 2 {
		t.Errorf("MatchedRules = %v", result.MatchedRules)
	}
	if result.Source != AutoDetected {
		t.Errorf("Source = %v", result.Source)
	}
}

func TestConfidenceThresholdGate(t *testing.T) {
	d := NewRuleDetector("test", "Test").
		Rule(rule("weak", `^x`, 0.3, AnyLine(), Supporting)).
		ConfidenceThreshold(0.6).
		Build()

	if result := d.Detect(testBlock("", "x marks the spot")); result != nil {
		t.Fatalf("confidence 0.3 should not clear threshold 0.6, got %+v", result)
	}
}

func TestConfidenceClamp(t *testing.T) {
	d := NewRuleDetector("test", "Test").
		Rules(
			rule("a", `a`, 0.8, AnyLine(), Supporting),
			rule("b", `b`, 0.8, AnyLine(), Supporting),
		).
		Build()

	result := d.Detect(testBlock("", "ab"))
	if result == nil || result.Confidence != 1.0 {
		t.Fatalf("summed weights must clamp to 1.0, got %+v", result)
	}
}

func TestDefinitiveShortCircuit(t *testing.T) {
	d := NewRuleDetector("test", "Test").
		Rules(
			rule("support", `text`, 0.2, AnyLine(), Supporting),
			rule("definitive", "^```", 0.8, AnyLine(), Definitive),
		).
		Build()

	result := d.Detect(testBlock("", "text", "```go"))
	if result == nil {
		t.Fatal("expected detection")
	}
	if result.Confidence != 1.0 {
		t.Errorf("Confidence = %v, want exactly 1.0", result.Confidence)
	}
	if len(result.MatchedRules) != 1 || result.MatchedRules[0] != "definitive" {
		t.Errorf("short-circuit should report only the definitive rule, got %v", result.MatchedRules)
	}
}

func TestDefinitiveShortCircuitDisabled(t *testing.T) {
	d := NewRuleDetector("test", "Test").
		Rules(
			rule("support", `text`, 0.3, AnyLine(), Supporting),
			rule("definitive", "^```", 0.5, AnyLine(), Definitive),
		).
		DefinitiveShortCircuit(false).
		Build()

	result := d.Detect(testBlock("", "text", "```go"))
	if result == nil {
		t.Fatal("expected detection")
	}
	if !almostEqual(result.Confidence, 0.8) {
		t.Errorf("Confidence = %v, want summed 0.8", result.Confidence)
	}
	if len(result.MatchedRules) != 2 {
		t.Errorf("MatchedRules = %v", result.MatchedRules)
	}
}

func TestMinMatchingRules(t *testing.T) {
	d := NewRuleDetector("test", "Test").
		Rule(rule("strong", `^key:`, 0.9, AnyLine(), Strong)).
		MinMatchingRules(2).
		Build()

	if result := d.Detect(testBlock("", "key: value")); result != nil {
		t.Fatalf("one match should not satisfy min 2, got %+v", result)
	}
}

func TestDisabledRuleSkipped(t *testing.T) {
	r := rule("off", `.`, 1.0, AnyLine(), Definitive)
	r.Enabled = false
	d := NewRuleDetector("test", "Test").Rule(r).Build()

	if result := d.Detect(testBlock("", "anything")); result != nil {
		t.Fatalf("disabled rule matched: %+v", result)
	}
}

func TestCommandContextGate(t *testing.T) {
	r := rule("gated", `\{`, 0.9, AnyLine(), Strong)
	r.CommandContext = regexp.MustCompile(`^curl`)
	d := NewRuleDetector("test", "Test").Rule(r).Build()

	if result := d.Detect(testBlock("", `{"a": 1}`)); result != nil {
		t.Fatal("gated rule should be skipped without a command")
	}
	if result := d.Detect(testBlock("ls -la", `{"a": 1}`)); result != nil {
		t.Fatal("gated rule should be skipped when the command does not match")
	}
	if result := d.Detect(testBlock("curl api.example.com", `{"a": 1}`)); result == nil {
		t.Fatal("gated rule should apply when the command matches")
	}
}

func TestRuleScopes(t *testing.T) {
	tests := []struct {
		name  string
		rule  DetectionRule
		block *ContentBlock
		want  bool
	}{
		{
			name:  "first lines hit",
			rule:  rule("r", `^\{`, 0.9, FirstLines(2), Strong),
			block: testBlock("", "{", `"a": 1`, "}"),
			want:  true,
		},
		{
			name:  "first lines miss beyond window",
			rule:  rule("r", `^\{`, 0.9, FirstLines(2), Strong),
			block: testBlock("", "x", "y", "{"),
			want:  false,
		},
		{
			name:  "last lines hit",
			rule:  rule("r", `^\}`, 0.9, LastLines(2), Strong),
			block: testBlock("", "{", `"a": 1`, "}"),
			want:  true,
		},
		{
			name:  "full block spans lines",
			rule:  rule("r", `(?s)^---.*\n\+\+\+`, 0.9, FullBlock(), Strong),
			block: testBlock("", "--- a/file", "+++ b/file"),
			want:  true,
		},
		{
			name:  "preceding command hit",
			rule:  rule("r", `^git diff`, 0.9, PrecedingCommand(), Strong),
			block: testBlock("git diff HEAD~1", "whatever"),
			want:  true,
		},
		{
			name:  "preceding command without command never matches",
			rule:  rule("r", `.*`, 0.9, PrecedingCommand(), Strong),
			block: testBlock("", "whatever"),
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewRuleDetector("test", "Test").Rule(tt.rule).Build()
			got := d.Detect(tt.block) != nil
			if got != tt.want {
				t.Errorf("detected = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQuickMatch(t *testing.T) {
	d := NewRuleDetector("test", "Test").
		Rules(
			rule("strong", `^#\s`, 0.5, AnyLine(), Strong),
			rule("support", `bullet`, 0.5, AnyLine(), Supporting),
		).
		Build()

	if !d.QuickMatch(testBlock("", "# header")) {
		t.Error("strong any-line rule should quick-match")
	}
	// Supporting rules never participate.
	if d.QuickMatch(testBlock("", "bullet")) {
		t.Error("supporting rule must not quick-match")
	}

	// Beyond the sampled prefix: no match.
	lines := make([]string, 40)
	for i := range lines {
		lines[i] = "filler"
	}
	lines[39] = "# header"
	if d.QuickMatch(testBlock("", lines...)) {
		t.Error("match beyond the sampled prefix should not quick-match")
	}
}

func TestMergeUserRules(t *testing.T) {
	d := NewRuleDetector("test", "Test").
		Rule(rule("existing", `old`, 0.5, AnyLine(), Strong)).
		Build()

	d.MergeUserRules([]DetectionRule{
		rule("existing", `new`, 0.8, FirstLines(1), Supporting),
		rule("added", `extra`, 0.2, AnyLine(), Supporting),
	})

	rules := d.Rules()
	if len(rules) != 2 {
		t.Fatalf("len(rules) = %d", len(rules))
	}
	if rules[0].ID != "existing" || rules[0].Pattern.String() != `new` || rules[0].Weight != 0.8 {
		t.Errorf("replacement not wholesale: %+v", rules[0])
	}
	if rules[1].ID != "added" {
		t.Errorf("new rule not appended: %+v", rules[1])
	}
}

func TestApplyOverrides(t *testing.T) {
	d := NewRuleDetector("test", "Test").
		Rule(rule("target", `x`, 0.5, AnyLine(), Strong)).
		Build()

	off := false
	weight := 0.9
	scope := FirstLines(3)
	d.ApplyOverrides([]RuleOverride{
		{ID: "target", Enabled: &off, Weight: &weight, Scope: &scope},
		{ID: "missing", Enabled: &off},
	})

	r := d.Rules()[0]
	if r.Enabled || r.Weight != 0.9 || r.Scope.Kind != ScopeFirstLines {
		t.Errorf("override not applied: %+v", r)
	}
	// Pattern untouched.
	if r.Pattern.String() != `x` {
		t.Errorf("override must not touch the pattern: %q", r.Pattern)
	}
}
