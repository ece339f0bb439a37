// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// Package prettifier is the content prettification core for texelprettify.
// It watches a terminal output stream, segments it into content blocks,
// classifies each block's structured format with weighted regex rules, and
// dispatches matched blocks to pluggable renderers. Presentation (how a
// format is drawn) lives behind the Renderer interface; this package only
// decides that a block exists, what format it most likely is, and whether a
// renderer produced output for it.
package prettifier

import (
	"regexp"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// ContentBlock is an immutable snapshot of accumulated terminal output:
// an ordered run of lines, the shell command that preceded it (empty if
// unknown), and the half-open absolute row range [StartRow, EndRow).
//
// Invariant at emission: EndRow-StartRow == len(Lines) and at least one line
// is non-blank (the boundary detector trims trailing blanks and discards
// all-blank accumulations).
type ContentBlock struct {
	Lines            []string
	PrecedingCommand string
	StartRow         int
	EndRow           int
	Timestamp        time.Time
}

// LineCount returns the number of lines in the block.
func (b *ContentBlock) LineCount() int {
	return len(b.Lines)
}

// FirstLines returns up to the first n lines.
func (b *ContentBlock) FirstLines(n int) []string {
	if n > len(b.Lines) {
		n = len(b.Lines)
	}
	return b.Lines[:n]
}

// LastLines returns up to the last n lines.
func (b *ContentBlock) LastLines(n int) []string {
	if n > len(b.Lines) {
		n = len(b.Lines)
	}
	return b.Lines[len(b.Lines)-n:]
}

// FullText returns the lines joined with newlines.
func (b *ContentBlock) FullText() string {
	return strings.Join(b.Lines, "\n")
}

// RowRange reports the half-open absolute row range covered by the block.
func (b *ContentBlock) RowRange() (start, end int) {
	return b.StartRow, b.EndRow
}

// ScopeKind selects which part of a block a rule's pattern is tested against.
type ScopeKind int

const (
	// ScopeAnyLine tests the pattern against every line individually.
	ScopeAnyLine ScopeKind = iota
	// ScopeFirstLines tests against the first N lines.
	ScopeFirstLines
	// ScopeLastLines tests against the last N lines.
	ScopeLastLines
	// ScopeFullBlock tests against the newline-joined block text.
	ScopeFullBlock
	// ScopePrecedingCommand tests against the preceding shell command only.
	// Never matches when the block has no command.
	ScopePrecedingCommand
)

// RuleScope bounds where within a block a rule applies. Distinct from
// DetectionScope, which controls when the boundary detector emits blocks.
type RuleScope struct {
	Kind ScopeKind
	N    int // line count for ScopeFirstLines / ScopeLastLines
}

// AnyLine scope: the pattern is tested against each line.
func AnyLine() RuleScope { return RuleScope{Kind: ScopeAnyLine} }

// FirstLines scope: the pattern is tested against the first n lines.
func FirstLines(n int) RuleScope { return RuleScope{Kind: ScopeFirstLines, N: n} }

// LastLines scope: the pattern is tested against the last n lines.
func LastLines(n int) RuleScope { return RuleScope{Kind: ScopeLastLines, N: n} }

// FullBlock scope: the pattern is tested against the joined block text.
func FullBlock() RuleScope { return RuleScope{Kind: ScopeFullBlock} }

// PrecedingCommand scope: the pattern is tested against the command string.
func PrecedingCommand() RuleScope { return RuleScope{Kind: ScopePrecedingCommand} }

// RuleStrength governs whether a match can short-circuit scoring.
type RuleStrength int

const (
	// Supporting rules only contribute their weight.
	Supporting RuleStrength = iota
	// Strong rules contribute weight and qualify for QuickMatch.
	Strong
	// Definitive rules immediately resolve detection at confidence 1.0 when
	// short-circuiting is enabled on the detector.
	Definitive
)

// RuleSource tags where a rule came from.
type RuleSource int

const (
	// BuiltIn rules ship with a format's default rule set.
	BuiltIn RuleSource = iota
	// UserDefined rules come from user configuration.
	UserDefined
)

// DetectionRule is one weighted pattern test. Rules are owned by a single
// RuleDetector and are only mutated through MergeUserRules / ApplyOverrides,
// never mid-detection.
type DetectionRule struct {
	// ID is a stable identifier, unique within one detector.
	ID string
	// Pattern is the compiled regex tested per Scope.
	Pattern *regexp.Regexp
	// Weight in [0,1]; matched weights are summed and clamped to 1.0.
	Weight float64
	// Scope bounds which text the pattern sees.
	Scope RuleScope
	// Strength tiers the rule for short-circuit and QuickMatch.
	Strength RuleStrength
	// Source tags built-in vs user-defined.
	Source RuleSource
	// CommandContext, when non-nil, gates the rule: it is skipped unless the
	// block's preceding command matches this pattern.
	CommandContext *regexp.Regexp
	// Description for settings UIs.
	Description string
	// Enabled rules participate in detection.
	Enabled bool
}

// DetectionSource tags how a detection result was produced.
type DetectionSource int

const (
	// AutoDetected results come from the rule-scoring pipeline.
	AutoDetected DetectionSource = iota
	// TriggerInvoked results come from an explicit prettify bypass.
	TriggerInvoked
)

// DetectionResult is the outcome of classifying one block. Produced fresh
// per detection call and never mutated.
type DetectionResult struct {
	FormatID     string
	Confidence   float64
	MatchedRules []string
	Source       DetectionSource
}

// ViewMode selects which side of a prettified block is displayed.
type ViewMode int

const (
	// ViewRendered shows the renderer's output.
	ViewRendered ViewMode = iota
	// ViewSource shows the original source lines.
	ViewSource
)

// StyledSegment is a run of text with a uniform terminal style.
type StyledSegment struct {
	Text  string
	Style tcell.Style
}

// StyledLine is one rendered output line.
type StyledLine struct {
	Segments []StyledSegment
}

// PlainLine wraps text in a single default-styled segment.
func PlainLine(text string) StyledLine {
	return StyledLine{Segments: []StyledSegment{{Text: text, Style: tcell.StyleDefault}}}
}

// StyledText wraps text in a single segment with the given style.
func StyledText(text string, style tcell.Style) StyledLine {
	return StyledLine{Segments: []StyledSegment{{Text: text, Style: style}}}
}

// Text returns the line's plain text with styling stripped.
func (l StyledLine) Text() string {
	var b strings.Builder
	for _, seg := range l.Segments {
		b.WriteString(seg.Text)
	}
	return b.String()
}

// Width returns the display width of the line in terminal cells.
func (l StyledLine) Width() int {
	w := 0
	for _, seg := range l.Segments {
		w += runewidth.StringWidth(seg.Text)
	}
	return w
}

// SourceLineMapping maps one rendered line back to the source line it came
// from, if any (separator/decoration lines map to nothing).
type SourceLineMapping struct {
	RenderedLine int
	SourceLine   int // -1 when the rendered line has no source counterpart
}

// RenderedContent is a renderer's output for one block.
type RenderedContent struct {
	Lines       []StyledLine
	LineMapping []SourceLineMapping
	FormatBadge string
}

// Text returns the rendered output as plain text, one line per styled line.
func (r *RenderedContent) Text() string {
	lines := make([]string, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = l.Text()
	}
	return strings.Join(lines, "\n")
}

// RendererCapability declares what a renderer needs to function.
type RendererCapability int

const (
	// CapTextStyling renderers emit styled text only.
	CapTextStyling RendererCapability = iota
	// CapInlineGraphics renderers emit image output (requires graphics protocol).
	CapInlineGraphics
)

// Theme is the color palette renderers style output with.
type Theme struct {
	Fg      tcell.Color
	Bg      tcell.Color
	Dim     tcell.Color // tree guides, separators, comments
	String  tcell.Color // string values
	Key     tcell.Color // keys and identifiers
	Error   tcell.Color // errors and deletions
	Number  tcell.Color
	Accent  tcell.Color
	Added   tcell.Color // diff additions
	Removed tcell.Color // diff removals
}

// DefaultTheme returns a Catppuccin-Mocha-inspired palette.
func DefaultTheme() Theme {
	return Theme{
		Fg:      tcell.NewRGBColor(205, 214, 244),
		Bg:      tcell.NewRGBColor(30, 30, 46),
		Dim:     tcell.NewRGBColor(108, 112, 134),
		String:  tcell.NewRGBColor(166, 227, 161),
		Key:     tcell.NewRGBColor(148, 226, 213),
		Error:   tcell.NewRGBColor(243, 139, 168),
		Number:  tcell.NewRGBColor(249, 226, 175),
		Accent:  tcell.NewRGBColor(137, 220, 235),
		Added:   tcell.NewRGBColor(166, 227, 161),
		Removed: tcell.NewRGBColor(243, 139, 168),
	}
}

// RendererConfig describes the terminal environment renderers draw for.
type RendererConfig struct {
	// TerminalWidth in columns.
	TerminalWidth int
	// Theme colors for styled output.
	Theme Theme
	// ChromaStyle names the chroma style used by syntax-highlighting renderers.
	ChromaStyle string
}

// DefaultRendererConfig returns an 80-column config with the default theme.
func DefaultRendererConfig() *RendererConfig {
	return &RendererConfig{
		TerminalWidth: 80,
		Theme:         DefaultTheme(),
		ChromaStyle:   "catppuccin-mocha",
	}
}
