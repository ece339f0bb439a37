// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
package renderers

import (
	"strings"

	"github.com/framegrace/texelprettify/prettifier"
)

// MarkdownRenderer styles markdown text with chroma's markdown lexer and
// highlights fenced code blocks with the fence's language. Untagged fences
// go through language inference.
type MarkdownRenderer struct{}

var _ prettifier.Renderer = (*MarkdownRenderer)(nil)

func (r *MarkdownRenderer) FormatID() string    { return "markdown" }
func (r *MarkdownRenderer) DisplayName() string { return "Markdown" }
func (r *MarkdownRenderer) Badge() string       { return prettifier.BadgeForFormat("markdown") }

func (r *MarkdownRenderer) Capabilities() []prettifier.RendererCapability {
	return []prettifier.RendererCapability{prettifier.CapTextStyling}
}

// mdRegion is a run of lines highlighted with one lexer.
type mdRegion struct {
	lexer string
	start int
	end   int // exclusive
}

func (r *MarkdownRenderer) Render(block *prettifier.ContentBlock, cfg *prettifier.RendererConfig) (*prettifier.RenderedContent, error) {
	style := chromaStyle(cfg.ChromaStyle)
	out := make([]prettifier.StyledLine, 0, len(block.Lines))

	for _, region := range splitFenceRegions(block.Lines) {
		lines := block.Lines[region.start:region.end]
		lexer := region.lexer
		if lexer == "" {
			// Untagged fence content: infer the language.
			if res := inferLanguage(lines); res.method != "none" {
				lexer = res.name
			}
		}
		out = append(out, highlightLines(lines, lexer, style)...)
	}

	return &prettifier.RenderedContent{
		Lines:       out,
		LineMapping: identityMapping(len(out)),
		FormatBadge: r.Badge(),
	}, nil
}

// splitFenceRegions partitions lines into markdown prose and fenced code
// regions. Fence marker lines stay in the prose regions so the markdown
// lexer styles them.
func splitFenceRegions(lines []string) []mdRegion {
	var regions []mdRegion
	proseStart := 0
	inFence := false
	fenceChar := byte(0)
	fenceLang := ""
	fenceStart := 0

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if inFence {
			run := markerRunLen(trimmed, fenceChar)
			if run >= 3 && strings.TrimSpace(trimmed[run:]) == "" {
				if fenceStart < i {
					regions = append(regions, mdRegion{lexer: fenceLang, start: fenceStart, end: i})
				}
				inFence = false
				proseStart = i
			}
			continue
		}

		var ch byte
		switch {
		case strings.HasPrefix(trimmed, "```"):
			ch = '`'
		case strings.HasPrefix(trimmed, "~~~"):
			ch = '~'
		default:
			continue
		}
		run := markerRunLen(trimmed, ch)
		lang := strings.TrimSpace(trimmed[run:])

		if proseStart <= i {
			regions = append(regions, mdRegion{lexer: "markdown", start: proseStart, end: i + 1})
		}
		inFence = true
		fenceChar = ch
		fenceLang = lang
		fenceStart = i + 1
	}

	if inFence {
		if fenceStart < len(lines) {
			regions = append(regions, mdRegion{lexer: fenceLang, start: fenceStart, end: len(lines)})
		}
	} else if proseStart < len(lines) {
		regions = append(regions, mdRegion{lexer: "markdown", start: proseStart, end: len(lines)})
	}

	return regions
}

func markerRunLen(s string, ch byte) int {
	n := 0
	for n < len(s) && s[n] == ch {
		n++
	}
	return n
}
