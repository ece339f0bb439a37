// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// Package renderers ships the built-in renderers: markdown, json, yaml,
// diff, log, and stack traces. All of them emit styled lines for terminal
// cells; none of them require graphics support.
package renderers

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/gdamore/tcell/v2"
	enry "github.com/go-enry/go-enry/v2"

	"github.com/framegrace/texelprettify/prettifier"
)

// chromaStyle resolves a style name, falling back to the config default.
func chromaStyle(name string) *chroma.Style {
	if name == "" {
		name = "catppuccin-mocha"
	}
	return styles.Get(name)
}

// langResult is an inferred source language and how it was found.
type langResult struct {
	name   string
	method string // "shebang", "classifier", or "none"
}

// inferLanguage guesses the language of untagged code content. Shebangs win;
// otherwise enry's Bayesian classifier decides. Chroma's own Analyse is a
// poor fit here because it leans on filename matching we never have.
func inferLanguage(lines []string) langResult {
	content := []byte(strings.Join(lines, "\n"))

	if lang, ok := enry.GetLanguageByShebang(content); ok {
		return langResult{name: strings.ToLower(lang), method: "shebang"}
	}
	if lang, ok := enry.GetLanguageByClassifier(content, nil); ok {
		return langResult{name: strings.ToLower(lang), method: "classifier"}
	}
	return langResult{method: "none"}
}

// getLexer returns a chroma lexer by name, or the fallback lexer.
func getLexer(name string) chroma.Lexer {
	if name != "" {
		if l := lexers.Get(name); l != nil {
			return l
		}
	}
	return lexers.Fallback
}

// highlightLines tokenizes the joined lines with the named lexer and splits
// the styled tokens back into per-line segments. Multi-line tokenization
// gives the lexer full context (package/import/func structure, heading
// context in markdown). The result always has exactly len(lines) entries.
func highlightLines(lines []string, lexerName string, style *chroma.Style) []prettifier.StyledLine {
	text := strings.Join(lines, "\n")
	lexer := chroma.Coalesce(getLexer(lexerName))

	tokens, err := chroma.Tokenise(lexer, nil, text)
	if err != nil {
		out := make([]prettifier.StyledLine, len(lines))
		for i, l := range lines {
			out[i] = prettifier.PlainLine(l)
		}
		return out
	}

	baseColour := style.Get(chroma.Text).Colour
	out := make([]prettifier.StyledLine, 1, len(lines))

	appendSegment := func(text string, st tcell.Style) {
		if text == "" {
			return
		}
		cur := &out[len(out)-1]
		cur.Segments = append(cur.Segments, prettifier.StyledSegment{Text: text, Style: st})
	}

	for _, tok := range tokens {
		if tok.Type == chroma.EOFType {
			break
		}
		st := tokenStyle(style.Get(tok.Type), baseColour)
		parts := strings.Split(tok.Value, "\n")
		for i, part := range parts {
			if i > 0 {
				out = append(out, prettifier.StyledLine{})
			}
			appendSegment(part, st)
		}
	}

	for len(out) < len(lines) {
		out = append(out, prettifier.StyledLine{})
	}
	return out[:len(lines)]
}

// tokenStyle converts a chroma style entry into a tcell style. Colors equal
// to the base text color stay on the terminal default so theme overrides
// keep working.
func tokenStyle(entry chroma.StyleEntry, baseColour chroma.Colour) tcell.Style {
	st := tcell.StyleDefault
	if entry.Colour.IsSet() && entry.Colour != baseColour {
		st = st.Foreground(tcell.NewRGBColor(
			int32(entry.Colour.Red()),
			int32(entry.Colour.Green()),
			int32(entry.Colour.Blue()),
		))
	}
	if entry.Bold == chroma.Yes {
		st = st.Bold(true)
	}
	if entry.Italic == chroma.Yes {
		st = st.Italic(true)
	}
	if entry.Underline == chroma.Yes {
		st = st.Underline(true)
	}
	return st
}

// identityMapping maps n rendered lines straight back to their source lines.
func identityMapping(n int) []prettifier.SourceLineMapping {
	out := make([]prettifier.SourceLineMapping, n)
	for i := range out {
		out[i] = prettifier.SourceLineMapping{RenderedLine: i, SourceLine: i}
	}
	return out
}
