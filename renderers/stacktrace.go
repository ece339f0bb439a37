// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
package renderers

import (
	"regexp"

	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/texelprettify/prettifier"
)

var (
	reTraceHeader = regexp.MustCompile(`^(Traceback \(most recent call last\):|thread '.*' panicked at.*|goroutine \d+ \[.*\]:|(\w+Error|Exception|Caused by):.*)`)
	reTraceFrame  = regexp.MustCompile(`^\s+(at\s+\S+|File ".*", line \d+.*|\S+\(.*\))`)
	reTraceLoc    = regexp.MustCompile(`[\w./$-]+:\d+(:\d+)?`)
)

// StackTraceRenderer emphasizes what people scan traces for: the error
// header and the file:line locations. Frame noise is dimmed.
type StackTraceRenderer struct{}

var _ prettifier.Renderer = (*StackTraceRenderer)(nil)

func (r *StackTraceRenderer) FormatID() string    { return "stack_trace" }
func (r *StackTraceRenderer) DisplayName() string { return "Stack Trace" }
func (r *StackTraceRenderer) Badge() string       { return prettifier.BadgeForFormat("stack_trace") }

func (r *StackTraceRenderer) Capabilities() []prettifier.RendererCapability {
	return []prettifier.RendererCapability{prettifier.CapTextStyling}
}

func (r *StackTraceRenderer) Render(block *prettifier.ContentBlock, cfg *prettifier.RendererConfig) (*prettifier.RenderedContent, error) {
	theme := cfg.Theme
	out := make([]prettifier.StyledLine, len(block.Lines))

	for i, line := range block.Lines {
		switch {
		case reTraceHeader.MatchString(line):
			out[i] = prettifier.StyledText(line, tcell.StyleDefault.Foreground(theme.Error).Bold(true))
		case reTraceFrame.MatchString(line):
			var spans []span
			for _, m := range reTraceLoc.FindAllStringIndex(line, -1) {
				spans = append(spans, span{m[0], m[1], tcell.StyleDefault.Foreground(theme.Accent).Underline(true)})
			}
			out[i] = segmentLine(line, spans)
		default:
			out[i] = prettifier.PlainLine(line)
		}
	}

	return &prettifier.RenderedContent{
		Lines:       out,
		LineMapping: identityMapping(len(out)),
		FormatBadge: r.Badge(),
	}, nil
}
