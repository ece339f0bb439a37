// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
package renderers

import (
	"regexp"
	"sort"

	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/texelprettify/prettifier"
)

var (
	reLogTime   = regexp.MustCompile(`\b\d{4}[-/]\d{2}[-/]\d{2}[T ]\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})?\b`)
	reLogSyslog = regexp.MustCompile(`\b(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)\s+\d{1,2}\s+\d{2}:\d{2}:\d{2}\b`)
	reLogLevel  = regexp.MustCompile(`\b(TRACE|DEBUG|INFO|WARN|WARNING|ERROR|ERR|FATAL)\b`)
	reLogKV     = regexp.MustCompile(`\b[a-zA-Z_][a-zA-Z0-9_]*=\S+`)
)

// LogRenderer colorizes log lines in place: timestamps dimmed, levels
// colored by severity, key=value pairs keyed. Layout is untouched.
type LogRenderer struct{}

var _ prettifier.Renderer = (*LogRenderer)(nil)

func (r *LogRenderer) FormatID() string    { return "log" }
func (r *LogRenderer) DisplayName() string { return "Log Output" }
func (r *LogRenderer) Badge() string       { return prettifier.BadgeForFormat("log") }

func (r *LogRenderer) Capabilities() []prettifier.RendererCapability {
	return []prettifier.RendererCapability{prettifier.CapTextStyling}
}

func (r *LogRenderer) Render(block *prettifier.ContentBlock, cfg *prettifier.RendererConfig) (*prettifier.RenderedContent, error) {
	theme := cfg.Theme
	out := make([]prettifier.StyledLine, len(block.Lines))
	for i, line := range block.Lines {
		out[i] = colorizeLogLine(line, theme)
	}
	return &prettifier.RenderedContent{
		Lines:       out,
		LineMapping: identityMapping(len(out)),
		FormatBadge: r.Badge(),
	}, nil
}

type span struct {
	start, end int
	style      tcell.Style
}

func colorizeLogLine(line string, theme prettifier.Theme) prettifier.StyledLine {
	var spans []span

	dim := tcell.StyleDefault.Foreground(theme.Dim)
	for _, m := range reLogTime.FindAllStringIndex(line, -1) {
		spans = append(spans, span{m[0], m[1], dim})
	}
	for _, m := range reLogSyslog.FindAllStringIndex(line, -1) {
		spans = append(spans, span{m[0], m[1], dim})
	}
	for _, m := range reLogLevel.FindAllStringIndex(line, -1) {
		spans = append(spans, span{m[0], m[1], levelStyle(line[m[0]:m[1]], theme)})
	}
	key := tcell.StyleDefault.Foreground(theme.Key)
	for _, m := range reLogKV.FindAllStringIndex(line, -1) {
		spans = append(spans, span{m[0], m[1], key})
	}

	return segmentLine(line, spans)
}

func levelStyle(level string, theme prettifier.Theme) tcell.Style {
	switch level {
	case "ERROR", "ERR", "FATAL":
		return tcell.StyleDefault.Foreground(theme.Error).Bold(true)
	case "WARN", "WARNING":
		return tcell.StyleDefault.Foreground(theme.Number).Bold(true)
	case "INFO":
		return tcell.StyleDefault.Foreground(theme.String)
	default: // TRACE, DEBUG
		return tcell.StyleDefault.Foreground(theme.Dim)
	}
}

// segmentLine splits a line into styled segments from possibly-overlapping
// spans; earlier spans win overlaps.
func segmentLine(line string, spans []span) prettifier.StyledLine {
	if len(spans) == 0 {
		return prettifier.PlainLine(line)
	}

	sort.SliceStable(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	var segs []prettifier.StyledSegment
	pos := 0
	for _, s := range spans {
		if s.start < pos {
			continue // overlapped by an earlier span
		}
		if s.start > pos {
			segs = append(segs, prettifier.StyledSegment{Text: line[pos:s.start], Style: tcell.StyleDefault})
		}
		segs = append(segs, prettifier.StyledSegment{Text: line[s.start:s.end], Style: s.style})
		pos = s.end
	}
	if pos < len(line) {
		segs = append(segs, prettifier.StyledSegment{Text: line[pos:], Style: tcell.StyleDefault})
	}
	return prettifier.StyledLine{Segments: segs}
}
