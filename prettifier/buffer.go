// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
package prettifier

import "hash/fnv"

// virtualRenderThreshold is the line count above which a buffer is treated
// as virtual: callers should use DisplayLinesRange and only materialize the
// visible portion.
const virtualRenderThreshold = 10_000

// DualViewBuffer holds the source text and (lazily computed) rendered output
// for one content block and supports toggling between the two views without
// re-rendering.
type DualViewBuffer struct {
	source        ContentBlock
	rendered      *RenderedContent
	viewMode      ViewMode
	contentHash   uint64
	renderedWidth int // 0 means never rendered
}

// NewDualViewBuffer wraps a source block. The initial view mode is
// ViewRendered; until SetRendered is called, display falls back to source.
func NewDualViewBuffer(source ContentBlock) *DualViewBuffer {
	return &DualViewBuffer{
		source:      source,
		viewMode:    ViewRendered,
		contentHash: ContentHash(source.Lines),
	}
}

// DisplayLines returns the lines for the current view mode. In rendered mode
// without rendered content it falls back to plain source lines.
func (b *DualViewBuffer) DisplayLines() []StyledLine {
	if b.viewMode == ViewRendered && b.rendered != nil {
		return b.rendered.Lines
	}
	return b.sourceStyled()
}

// DisplayLinesRange returns up to count display lines starting at start.
// Large blocks are expected to be read this way rather than all at once.
func (b *DualViewBuffer) DisplayLinesRange(start, count int) []StyledLine {
	if b.viewMode == ViewRendered && b.rendered != nil {
		if start >= len(b.rendered.Lines) {
			return nil
		}
		end := min(start+count, len(b.rendered.Lines))
		return b.rendered.Lines[start:end]
	}
	if start >= len(b.source.Lines) {
		return nil
	}
	end := min(start+count, len(b.source.Lines))
	out := make([]StyledLine, 0, end-start)
	for _, l := range b.source.Lines[start:end] {
		out = append(out, PlainLine(l))
	}
	return out
}

// SetRendered stores rendered output along with the width it was rendered at.
func (b *DualViewBuffer) SetRendered(rendered *RenderedContent, terminalWidth int) {
	b.rendered = rendered
	b.renderedWidth = terminalWidth
}

// NeedsRender reports whether the block must be (re-)rendered for the given
// width: no cached render yet, or the width changed.
func (b *DualViewBuffer) NeedsRender(terminalWidth int) bool {
	return b.renderedWidth == 0 || b.renderedWidth != terminalWidth
}

// ToggleView flips between source and rendered view.
func (b *DualViewBuffer) ToggleView() {
	if b.viewMode == ViewRendered {
		b.viewMode = ViewSource
	} else {
		b.viewMode = ViewRendered
	}
}

// ViewMode reports the current view mode.
func (b *DualViewBuffer) ViewMode() ViewMode {
	return b.viewMode
}

// SourceText returns the original text for copy operations.
func (b *DualViewBuffer) SourceText() string {
	return b.source.FullText()
}

// RenderedText returns the rendered output as plain text, or "" and false
// when no render exists.
func (b *DualViewBuffer) RenderedText() (string, bool) {
	if b.rendered == nil {
		return "", false
	}
	return b.rendered.Text(), true
}

// RenderedToSourceLine maps a rendered line number to its source line.
// Returns -1 and false for decoration lines and unknown line numbers.
func (b *DualViewBuffer) RenderedToSourceLine(renderedLine int) (int, bool) {
	if b.rendered == nil {
		return -1, false
	}
	for _, m := range b.rendered.LineMapping {
		if m.RenderedLine == renderedLine {
			if m.SourceLine < 0 {
				return -1, false
			}
			return m.SourceLine, true
		}
	}
	return -1, false
}

// SourceToRenderedLines maps a source line number to the rendered lines it
// produced (a source line may expand to several rendered lines).
func (b *DualViewBuffer) SourceToRenderedLines(sourceLine int) []int {
	if b.rendered == nil {
		return nil
	}
	var out []int
	for _, m := range b.rendered.LineMapping {
		if m.SourceLine == sourceLine {
			out = append(out, m.RenderedLine)
		}
	}
	return out
}

// ContentHash returns the hash used for render-cache keying.
func (b *DualViewBuffer) ContentHash() uint64 {
	return b.contentHash
}

// DisplayLineCount returns the line count of the current view.
func (b *DualViewBuffer) DisplayLineCount() int {
	if b.viewMode == ViewRendered && b.rendered != nil {
		return len(b.rendered.Lines)
	}
	return b.source.LineCount()
}

// IsVirtual reports whether the block is large enough that only the visible
// portion should be rendered.
func (b *DualViewBuffer) IsVirtual() bool {
	return b.source.LineCount() > virtualRenderThreshold
}

// Source returns the underlying source block.
func (b *DualViewBuffer) Source() *ContentBlock {
	return &b.source
}

// Rendered returns the rendered content, or nil if none exists.
func (b *DualViewBuffer) Rendered() *RenderedContent {
	return b.rendered
}

func (b *DualViewBuffer) sourceStyled() []StyledLine {
	out := make([]StyledLine, len(b.source.Lines))
	for i, l := range b.source.Lines {
		out[i] = PlainLine(l)
	}
	return out
}

// ContentHash computes a fast FNV-1a hash over the block's lines for cache
// keying. Line boundaries are included so reordered content hashes
// differently from joined content.
func ContentHash(lines []string) uint64 {
	h := fnv.New64a()
	for _, line := range lines {
		h.Write([]byte(line))
		h.Write([]byte{'\n'})
	}
	return h.Sum64()
}
