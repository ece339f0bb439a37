// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
package renderers

import "github.com/framegrace/texelprettify/prettifier"

// YAMLRenderer syntax-highlights YAML without reformatting it; indentation
// is significant and must survive untouched.
type YAMLRenderer struct{}

var _ prettifier.Renderer = (*YAMLRenderer)(nil)

func (r *YAMLRenderer) FormatID() string    { return "yaml" }
func (r *YAMLRenderer) DisplayName() string { return "YAML" }
func (r *YAMLRenderer) Badge() string       { return prettifier.BadgeForFormat("yaml") }

func (r *YAMLRenderer) Capabilities() []prettifier.RendererCapability {
	return []prettifier.RendererCapability{prettifier.CapTextStyling}
}

func (r *YAMLRenderer) Render(block *prettifier.ContentBlock, cfg *prettifier.RendererConfig) (*prettifier.RenderedContent, error) {
	styled := highlightLines(block.Lines, "yaml", chromaStyle(cfg.ChromaStyle))
	return &prettifier.RenderedContent{
		Lines:       styled,
		LineMapping: identityMapping(len(styled)),
		FormatBadge: r.Badge(),
	}, nil
}
