// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
package renderers

import (
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/texelprettify/prettifier"
)

func block(lines ...string) *prettifier.ContentBlock {
	return &prettifier.ContentBlock{
		Lines:     lines,
		StartRow:  0,
		EndRow:    len(lines),
		Timestamp: time.Now(),
	}
}

func renderedText(r *prettifier.RenderedContent) []string {
	out := make([]string, len(r.Lines))
	for i, l := range r.Lines {
		out[i] = l.Text()
	}
	return out
}

func TestHighlightPreservesText(t *testing.T) {
	lines := []string{
		"package main",
		"",
		"func main() {",
		"\tprintln(\"hi\")",
		"}",
	}
	styled := highlightLines(lines, "go", chromaStyle(""))
	if len(styled) != len(lines) {
		t.Fatalf("len = %d, want %d", len(styled), len(lines))
	}
	for i, l := range styled {
		if l.Text() != lines[i] {
			t.Errorf("line %d = %q, want %q", i, l.Text(), lines[i])
		}
	}
}

func TestHighlightUnknownLexerFallsBack(t *testing.T) {
	lines := []string{"some text", "more text"}
	styled := highlightLines(lines, "no-such-language", chromaStyle(""))
	if len(styled) != 2 {
		t.Fatalf("len = %d", len(styled))
	}
	for i, l := range styled {
		if l.Text() != lines[i] {
			t.Errorf("line %d = %q", i, l.Text())
		}
	}
}

func TestInferLanguageShebang(t *testing.T) {
	res := inferLanguage([]string{"#!/usr/bin/env python3", "print(1)"})
	if res.method != "shebang" {
		t.Fatalf("method = %s", res.method)
	}
	if res.name != "python" {
		t.Errorf("name = %s", res.name)
	}
}

func TestInferLanguageNone(t *testing.T) {
	// The classifier always has an opinion; only empty content yields none.
	res := inferLanguage(nil)
	if res.method == "shebang" {
		t.Errorf("empty content inferred via shebang: %+v", res)
	}
}

func TestSplitFenceRegions(t *testing.T) {
	lines := []string{
		"# Title",     // 0 prose
		"```go",       // 1 prose (marker)
		"x := 1",      // 2 fence body
		"```",         // 3 prose (marker)
		"trailing",    // 4 prose
	}
	regions := splitFenceRegions(lines)
	want := []mdRegion{
		{lexer: "markdown", start: 0, end: 2},
		{lexer: "go", start: 2, end: 3},
		{lexer: "markdown", start: 3, end: 5},
	}
	if len(regions) != len(want) {
		t.Fatalf("regions = %+v", regions)
	}
	for i, w := range want {
		if regions[i] != w {
			t.Errorf("regions[%d] = %+v, want %+v", i, regions[i], w)
		}
	}
}

func TestSplitFenceRegionsUnclosed(t *testing.T) {
	regions := splitFenceRegions([]string{"```python", "x = 1", "y = 2"})
	want := []mdRegion{
		{lexer: "markdown", start: 0, end: 1},
		{lexer: "python", start: 1, end: 3},
	}
	if len(regions) != len(want) {
		t.Fatalf("regions = %+v", regions)
	}
	for i, w := range want {
		if regions[i] != w {
			t.Errorf("regions[%d] = %+v, want %+v", i, regions[i], w)
		}
	}
}

func TestSplitFenceRegionsNoFence(t *testing.T) {
	regions := splitFenceRegions([]string{"just", "prose"})
	if len(regions) != 1 || regions[0] != (mdRegion{lexer: "markdown", start: 0, end: 2}) {
		t.Fatalf("regions = %+v", regions)
	}
}

func TestMarkdownRenderPreservesLineCount(t *testing.T) {
	b := block("# Title", "", "```go", "x := 1", "```", "done")
	r := &MarkdownRenderer{}
	rendered, err := r.Render(b, prettifier.DefaultRendererConfig())
	if err != nil {
		t.Fatal(err)
	}
	if len(rendered.Lines) != len(b.Lines) {
		t.Fatalf("lines = %d, want %d", len(rendered.Lines), len(b.Lines))
	}
	got := renderedText(rendered)
	for i := range b.Lines {
		if got[i] != b.Lines[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], b.Lines[i])
		}
	}
	if rendered.FormatBadge != prettifier.BadgeForFormat("markdown") {
		t.Errorf("badge = %q", rendered.FormatBadge)
	}
}

func TestReindentJSON(t *testing.T) {
	pretty, ok := reindentJSON(`{"a":1,"b":[2,3]}`)
	if !ok {
		t.Fatal("valid json should reindent")
	}
	want := "{\n  \"a\": 1,\n  \"b\": [\n    2,\n    3\n  ]\n}"
	if pretty != want {
		t.Errorf("pretty = %q, want %q", pretty, want)
	}

	if _, ok := reindentJSON(`{"broken":`); ok {
		t.Error("invalid json must not reindent")
	}
	if _, ok := reindentJSON(`{"a":1}` + "\n" + `{"b":2}`); ok {
		t.Error("json-lines must not reindent as one document")
	}
}

func TestJSONRenderReformats(t *testing.T) {
	r := &JSONRenderer{}
	rendered, err := r.Render(block(`{"compact":true}`), prettifier.DefaultRendererConfig())
	if err != nil {
		t.Fatal(err)
	}
	if len(rendered.Lines) != 3 {
		t.Fatalf("lines = %v", renderedText(rendered))
	}
	// Reformatted output maps to no source lines.
	for _, m := range rendered.LineMapping {
		if m.SourceLine != -1 {
			t.Errorf("mapping = %+v, want source -1", m)
		}
	}
}

func TestJSONRenderInvalidKeepsLayout(t *testing.T) {
	lines := []string{`{"a": 1,`, `"b":`}
	r := &JSONRenderer{}
	rendered, err := r.Render(block(lines...), prettifier.DefaultRendererConfig())
	if err != nil {
		t.Fatal(err)
	}
	got := renderedText(rendered)
	for i := range lines {
		if got[i] != lines[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], lines[i])
		}
	}
	for i, m := range rendered.LineMapping {
		if m.SourceLine != i {
			t.Errorf("mapping[%d] = %+v, want identity", i, m)
		}
	}
}

func TestDiffLineStyles(t *testing.T) {
	theme := prettifier.DefaultTheme()
	tests := []struct {
		line string
		want tcell.Style
	}{
		{"diff --git a/x b/x", tcell.StyleDefault.Foreground(theme.Fg).Bold(true)},
		{"--- a/x", tcell.StyleDefault.Foreground(theme.Fg).Bold(true)},
		{"+++ b/x", tcell.StyleDefault.Foreground(theme.Fg).Bold(true)},
		{"@@ -1,3 +1,4 @@", tcell.StyleDefault.Foreground(theme.Accent)},
		{"+added line", tcell.StyleDefault.Foreground(theme.Added)},
		{"-removed line", tcell.StyleDefault.Foreground(theme.Removed)},
		{" context line", tcell.StyleDefault},
	}
	for _, tt := range tests {
		if got := diffLineStyle(tt.line, theme); got != tt.want {
			t.Errorf("diffLineStyle(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestDiffRenderRoundTrip(t *testing.T) {
	lines := []string{"--- a/f", "+++ b/f", "@@ -1 +1 @@", "-old", "+new"}
	r := &DiffRenderer{}
	rendered, err := r.Render(block(lines...), prettifier.DefaultRendererConfig())
	if err != nil {
		t.Fatal(err)
	}
	got := renderedText(rendered)
	for i := range lines {
		if got[i] != lines[i] {
			t.Errorf("line %d = %q", i, got[i])
		}
	}
}

func TestSegmentLine(t *testing.T) {
	red := tcell.StyleDefault.Foreground(tcell.ColorRed)
	blue := tcell.StyleDefault.Foreground(tcell.ColorBlue)

	line := "abcdefgh"
	got := segmentLine(line, []span{
		{2, 4, red},
		{3, 6, blue}, // overlaps; first span wins
	})

	if got.Text() != line {
		t.Fatalf("Text = %q", got.Text())
	}
	segs := got.Segments
	if len(segs) != 3 {
		t.Fatalf("segments = %+v", segs)
	}
	if segs[0].Text != "ab" || segs[1].Text != "cd" || segs[2].Text != "efgh" {
		t.Errorf("segments = %+v", segs)
	}
	if segs[1].Style != red {
		t.Error("overlapped span should keep the earlier style")
	}
}

func TestSegmentLineNoSpans(t *testing.T) {
	got := segmentLine("plain", nil)
	if got.Text() != "plain" || len(got.Segments) != 1 {
		t.Errorf("got = %+v", got)
	}
}

func TestColorizeLogLine(t *testing.T) {
	theme := prettifier.DefaultTheme()
	line := "2025-01-15T10:00:01Z ERROR request failed host=db1"
	got := colorizeLogLine(line, theme)

	if got.Text() != line {
		t.Fatalf("Text = %q", got.Text())
	}

	errStyle := tcell.StyleDefault.Foreground(theme.Error).Bold(true)
	kvStyle := tcell.StyleDefault.Foreground(theme.Key)
	dimStyle := tcell.StyleDefault.Foreground(theme.Dim)
	var sawLevel, sawKV, sawTime bool
	for _, seg := range got.Segments {
		switch {
		case seg.Text == "ERROR" && seg.Style == errStyle:
			sawLevel = true
		case seg.Text == "host=db1" && seg.Style == kvStyle:
			sawKV = true
		case strings.HasPrefix(seg.Text, "2025-01-15T") && seg.Style == dimStyle:
			sawTime = true
		}
	}
	if !sawLevel || !sawKV || !sawTime {
		t.Errorf("segments = %+v (level=%v kv=%v time=%v)", got.Segments, sawLevel, sawKV, sawTime)
	}
}

func TestLevelStyles(t *testing.T) {
	theme := prettifier.DefaultTheme()
	if levelStyle("FATAL", theme) != tcell.StyleDefault.Foreground(theme.Error).Bold(true) {
		t.Error("FATAL style")
	}
	if levelStyle("WARNING", theme) != tcell.StyleDefault.Foreground(theme.Number).Bold(true) {
		t.Error("WARNING style")
	}
	if levelStyle("DEBUG", theme) != tcell.StyleDefault.Foreground(theme.Dim) {
		t.Error("DEBUG style")
	}
}

func TestStackTraceRender(t *testing.T) {
	theme := prettifier.DefaultTheme()
	lines := []string{
		"Traceback (most recent call last):",
		"    at handler (/srv/app/index.js:10:15)",
		"ValueError: invalid literal",
	}
	r := &StackTraceRenderer{}
	rendered, err := r.Render(block(lines...), prettifier.DefaultRendererConfig())
	if err != nil {
		t.Fatal(err)
	}
	got := renderedText(rendered)
	for i := range lines {
		if got[i] != lines[i] {
			t.Errorf("line %d = %q", i, got[i])
		}
	}

	headerStyle := tcell.StyleDefault.Foreground(theme.Error).Bold(true)
	if rendered.Lines[0].Segments[0].Style != headerStyle {
		t.Error("traceback header should use the error style")
	}
	if rendered.Lines[2].Segments[0].Style != headerStyle {
		t.Error("exception line should use the error style")
	}

	// The frame's file location is emphasized.
	locStyle := tcell.StyleDefault.Foreground(theme.Accent).Underline(true)
	var sawLoc bool
	for _, seg := range rendered.Lines[1].Segments {
		if seg.Style == locStyle {
			sawLoc = true
		}
	}
	if !sawLoc {
		t.Errorf("frame segments = %+v", rendered.Lines[1].Segments)
	}
}

func TestYAMLRenderRoundTrip(t *testing.T) {
	lines := []string{"key: value", "nested:", "  child: 1"}
	r := &YAMLRenderer{}
	rendered, err := r.Render(block(lines...), prettifier.DefaultRendererConfig())
	if err != nil {
		t.Fatal(err)
	}
	got := renderedText(rendered)
	for i := range lines {
		if got[i] != lines[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], lines[i])
		}
	}
}

func TestRegisterAll(t *testing.T) {
	reg := prettifier.NewRegistry(0.6)
	RegisterAll(reg)

	for _, id := range []string{"markdown", "json", "yaml", "diff", "log", "stack_trace"} {
		if reg.Renderer(id) == nil {
			t.Errorf("no renderer registered for %s", id)
		}
	}
	if reg.RendererCount() != 6 {
		t.Errorf("RendererCount = %d", reg.RendererCount())
	}
}
