// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
package prettifier

// gutterWidth is the gutter area width in terminal columns.
const gutterWidth = 2

// GutterIndicator marks one visible prettified block in the gutter.
type GutterIndicator struct {
	// Row is the screen-relative row where the visible part starts.
	Row int
	// Height is the visible height in screen rows.
	Height int
	// Badge is the display glyph (emoji or short text, at most two cells).
	Badge string
	// ViewMode is the block's current view mode.
	ViewMode ViewMode
	// Hovered marks mouse hover; the projection always starts false.
	Hovered bool
	// BlockID identifies the block for toggle operations.
	BlockID uint64
}

// GutterManager projects the pipeline's active blocks onto gutter
// indicators for a viewport and hit-tests gutter clicks.
type GutterManager struct {
	// GutterWidth in terminal columns.
	GutterWidth int
}

// NewGutterManager returns a manager with the default two-column gutter.
func NewGutterManager() *GutterManager {
	return &GutterManager{GutterWidth: gutterWidth}
}

// BadgeForFormat maps a format ID to its gutter badge.
func BadgeForFormat(formatID string) string {
	switch formatID {
	case "markdown":
		return "\U0001F4DD"
	case "json":
		return "{}"
	case "mermaid", "diagram":
		return "\U0001F4CA"
	case "yaml", "toml":
		return "\U0001F4CB"
	case "xml":
		return "\U0001F4C4"
	case "csv":
		return "\U0001F4C9"
	case "diff":
		return "±"
	case "log":
		return "\U0001F4DC"
	case "stack_trace":
		return "⚠️"
	default:
		return "✦"
	}
}

// IndicatorsForViewport builds indicators for every block overlapping the
// viewport [viewportStartRow, viewportStartRow+viewportHeight). Block rows
// are clamped to the viewport and converted to screen-relative rows.
func (g *GutterManager) IndicatorsForViewport(p *Pipeline, viewportStartRow, viewportHeight int) []GutterIndicator {
	viewportEnd := viewportStartRow + viewportHeight
	var indicators []GutterIndicator

	for _, block := range p.ActiveBlocks() {
		content := block.Content()
		if content.EndRow <= viewportStartRow || content.StartRow >= viewportEnd {
			continue
		}

		visibleStart := max(content.StartRow, viewportStartRow)
		visibleEnd := min(content.EndRow, viewportEnd)

		indicators = append(indicators, GutterIndicator{
			Row:      visibleStart - viewportStartRow,
			Height:   visibleEnd - visibleStart,
			Badge:    BadgeForFormat(block.Detection.FormatID),
			ViewMode: block.Buffer.ViewMode(),
			BlockID:  block.ID,
		})
	}

	return indicators
}

// HitTest resolves a cell click to a block ID. Returns (0, false) unless
// the column is inside the gutter and the row falls within an indicator.
func (g *GutterManager) HitTest(col, row int, indicators []GutterIndicator) (uint64, bool) {
	if col >= g.GutterWidth {
		return 0, false
	}
	for _, ind := range indicators {
		if row >= ind.Row && row < ind.Row+ind.Height {
			return ind.BlockID, true
		}
	}
	return 0, false
}
