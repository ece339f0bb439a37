// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
package formats

import (
	"regexp"

	"github.com/framegrace/texelprettify/prettifier"
)

// NewMarkdownDetector builds the markdown rule set.
//
// Fenced code blocks are definitive. Headers and tables are strong signals;
// inline emphasis, links, lists, and blockquotes only support a detection.
func NewMarkdownDetector() *prettifier.RuleDetector {
	return prettifier.NewRuleDetector("markdown", "Markdown").
		ConfidenceThreshold(0.6).
		MinMatchingRules(1).
		DefinitiveShortCircuit(true).
		Rule(prettifier.DetectionRule{
			ID:          "md_fenced_code",
			Pattern:     regexp.MustCompile(`^` + "```" + `\w*\s*$`),
			Weight:      0.8,
			Scope:       prettifier.AnyLine(),
			Strength:    prettifier.Definitive,
			Source:      prettifier.BuiltIn,
			Description: "Backtick fenced code block opening",
			Enabled:     true,
		}).
		Rule(prettifier.DetectionRule{
			ID:          "md_fenced_tilde",
			Pattern:     regexp.MustCompile(`^~~~\w*\s*$`),
			Weight:      0.8,
			Scope:       prettifier.AnyLine(),
			Strength:    prettifier.Definitive,
			Source:      prettifier.BuiltIn,
			Description: "Tilde fenced code block opening",
			Enabled:     true,
		}).
		Rule(prettifier.DetectionRule{
			ID:          "md_atx_header",
			Pattern:     regexp.MustCompile(`^#{1,6}\s+\S`),
			Weight:      0.5,
			Scope:       prettifier.AnyLine(),
			Strength:    prettifier.Strong,
			Source:      prettifier.BuiltIn,
			Description: "ATX header (# through ######)",
			Enabled:     true,
		}).
		Rule(prettifier.DetectionRule{
			ID:          "md_table",
			Pattern:     regexp.MustCompile(`^\|.*\|.*\|`),
			Weight:      0.4,
			Scope:       prettifier.AnyLine(),
			Strength:    prettifier.Strong,
			Source:      prettifier.BuiltIn,
			Description: "Table row with at least three pipes",
			Enabled:     true,
		}).
		Rule(prettifier.DetectionRule{
			ID:          "md_table_separator",
			Pattern:     regexp.MustCompile(`^\|[\s\-:|]+\|`),
			Weight:      0.3,
			Scope:       prettifier.AnyLine(),
			Strength:    prettifier.Supporting,
			Source:      prettifier.BuiltIn,
			Description: "Table header separator row",
			Enabled:     true,
		}).
		Rule(prettifier.DetectionRule{
			ID:          "md_bold",
			Pattern:     regexp.MustCompile(`\*\*[^*]+\*\*`),
			Weight:      0.2,
			Scope:       prettifier.AnyLine(),
			Strength:    prettifier.Supporting,
			Source:      prettifier.BuiltIn,
			Description: "Bold emphasis",
			Enabled:     true,
		}).
		Rule(prettifier.DetectionRule{
			ID:          "md_italic",
			Pattern:     regexp.MustCompile(`(?:^|[^*])\*[^*]+\*(?:[^*]|$)`),
			Weight:      0.15,
			Scope:       prettifier.AnyLine(),
			Strength:    prettifier.Supporting,
			Source:      prettifier.BuiltIn,
			Description: "Italic emphasis",
			Enabled:     true,
		}).
		Rule(prettifier.DetectionRule{
			ID:          "md_link",
			Pattern:     regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`),
			Weight:      0.2,
			Scope:       prettifier.AnyLine(),
			Strength:    prettifier.Supporting,
			Source:      prettifier.BuiltIn,
			Description: "Inline link [text](url)",
			Enabled:     true,
		}).
		Rule(prettifier.DetectionRule{
			ID:          "md_list_bullet",
			Pattern:     regexp.MustCompile(`^\s*[-*+]\s+\S`),
			Weight:      0.15,
			Scope:       prettifier.AnyLine(),
			Strength:    prettifier.Supporting,
			Source:      prettifier.BuiltIn,
			Description: "Bullet list item",
			Enabled:     true,
		}).
		Rule(prettifier.DetectionRule{
			ID:          "md_list_ordered",
			Pattern:     regexp.MustCompile(`^\s*\d+[.)]\s+\S`),
			Weight:      0.15,
			Scope:       prettifier.AnyLine(),
			Strength:    prettifier.Supporting,
			Source:      prettifier.BuiltIn,
			Description: "Ordered list item",
			Enabled:     true,
		}).
		Rule(prettifier.DetectionRule{
			ID:          "md_blockquote",
			Pattern:     regexp.MustCompile(`^>\s+`),
			Weight:      0.15,
			Scope:       prettifier.AnyLine(),
			Strength:    prettifier.Supporting,
			Source:      prettifier.BuiltIn,
			Description: "Blockquote",
			Enabled:     true,
		}).
		Rule(prettifier.DetectionRule{
			ID:          "md_inline_code",
			Pattern:     regexp.MustCompile("`[^`]+`"),
			Weight:      0.1,
			Scope:       prettifier.AnyLine(),
			Strength:    prettifier.Supporting,
			Source:      prettifier.BuiltIn,
			Description: "Inline code span",
			Enabled:     true,
		}).
		Rule(prettifier.DetectionRule{
			ID:          "md_horizontal_rule",
			Pattern:     regexp.MustCompile(`^[-*_]\s*[-*_]\s*[-*_][\s*_-]*$`),
			Weight:      0.15,
			Scope:       prettifier.AnyLine(),
			Strength:    prettifier.Supporting,
			Source:      prettifier.BuiltIn,
			Description: "Horizontal rule",
			Enabled:     true,
		}).
		Rule(prettifier.DetectionRule{
			ID:          "md_assistant_context",
			Pattern:     regexp.MustCompile(`\b(claude|claude-code|aichat|llm)\b`),
			Weight:      0.2,
			Scope:       prettifier.PrecedingCommand(),
			Strength:    prettifier.Supporting,
			Source:      prettifier.BuiltIn,
			Description: "Output follows an assistant CLI command",
			Enabled:     true,
		}).
		Build()
}

// RegisterMarkdown registers the markdown detector when enabled.
func RegisterMarkdown(reg *prettifier.Registry, cfg FormatSettings) {
	if cfg.Enabled {
		reg.RegisterDetector(cfg.Priority, NewMarkdownDetector())
	}
}
