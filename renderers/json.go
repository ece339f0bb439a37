// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
package renderers

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/framegrace/texelprettify/prettifier"
)

// jsonIndent is the re-indentation unit for pretty-printed output.
const jsonIndent = "  "

// JSONRenderer re-indents valid JSON and syntax-highlights it. Content that
// does not parse as JSON (jq fragments, JSON-lines) is highlighted as-is.
type JSONRenderer struct{}

var _ prettifier.Renderer = (*JSONRenderer)(nil)

func (r *JSONRenderer) FormatID() string    { return "json" }
func (r *JSONRenderer) DisplayName() string { return "JSON" }
func (r *JSONRenderer) Badge() string       { return prettifier.BadgeForFormat("json") }

func (r *JSONRenderer) Capabilities() []prettifier.RendererCapability {
	return []prettifier.RendererCapability{prettifier.CapTextStyling}
}

func (r *JSONRenderer) Render(block *prettifier.ContentBlock, cfg *prettifier.RendererConfig) (*prettifier.RenderedContent, error) {
	style := chromaStyle(cfg.ChromaStyle)
	source := block.FullText()

	lines := block.Lines
	reformatted := false
	if pretty, ok := reindentJSON(source); ok && pretty != source {
		lines = strings.Split(pretty, "\n")
		reformatted = true
	}

	styled := highlightLines(lines, "json", style)

	// Re-indented output has no stable line correspondence to the source.
	var mapping []prettifier.SourceLineMapping
	if reformatted {
		mapping = make([]prettifier.SourceLineMapping, len(styled))
		for i := range mapping {
			mapping[i] = prettifier.SourceLineMapping{RenderedLine: i, SourceLine: -1}
		}
	} else {
		mapping = identityMapping(len(styled))
	}

	return &prettifier.RenderedContent{
		Lines:       styled,
		LineMapping: mapping,
		FormatBadge: r.Badge(),
	}, nil
}

// reindentJSON pretty-prints text when it is a single valid JSON document.
func reindentJSON(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if !json.Valid([]byte(trimmed)) {
		return "", false
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(trimmed), "", jsonIndent); err != nil {
		return "", false
	}
	return buf.String(), true
}
