// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
package renderers

import (
	"regexp"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/texelprettify/prettifier"
)

var reDiffHunk = regexp.MustCompile(`^@@\s+-\d+,?\d*\s+\+\d+,?\d*\s+@@`)

// DiffRenderer colors unified diff output: additions green, removals red,
// hunk headers accented, file headers bold.
type DiffRenderer struct{}

var _ prettifier.Renderer = (*DiffRenderer)(nil)

func (r *DiffRenderer) FormatID() string    { return "diff" }
func (r *DiffRenderer) DisplayName() string { return "Diff" }
func (r *DiffRenderer) Badge() string       { return prettifier.BadgeForFormat("diff") }

func (r *DiffRenderer) Capabilities() []prettifier.RendererCapability {
	return []prettifier.RendererCapability{prettifier.CapTextStyling}
}

func (r *DiffRenderer) Render(block *prettifier.ContentBlock, cfg *prettifier.RendererConfig) (*prettifier.RenderedContent, error) {
	theme := cfg.Theme
	out := make([]prettifier.StyledLine, len(block.Lines))

	for i, line := range block.Lines {
		out[i] = prettifier.StyledText(line, diffLineStyle(line, theme))
	}

	return &prettifier.RenderedContent{
		Lines:       out,
		LineMapping: identityMapping(len(out)),
		FormatBadge: r.Badge(),
	}, nil
}

func diffLineStyle(line string, theme prettifier.Theme) tcell.Style {
	switch {
	case strings.HasPrefix(line, "diff --git"),
		strings.HasPrefix(line, "index "),
		strings.HasPrefix(line, "--- "),
		strings.HasPrefix(line, "+++ "):
		return tcell.StyleDefault.Foreground(theme.Fg).Bold(true)
	case reDiffHunk.MatchString(line):
		return tcell.StyleDefault.Foreground(theme.Accent)
	case strings.HasPrefix(line, "+"):
		return tcell.StyleDefault.Foreground(theme.Added)
	case strings.HasPrefix(line, "-"):
		return tcell.StyleDefault.Foreground(theme.Removed)
	default:
		return tcell.StyleDefault
	}
}
