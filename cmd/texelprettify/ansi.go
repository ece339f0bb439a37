// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/texelprettify/prettifier"
)

// reANSI matches CSI and OSC escape sequences plus stray control bytes so
// pipeline input is plain text.
var reANSI = regexp.MustCompile(`\x1b\[[0-9;?]*[a-zA-Z]|\x1b\][^\x07\x1b]*(\x07|\x1b\\)|\x1b[()][0-9A-B]|[\x00-\x08\x0b\x0c\x0e-\x1f]`)

// stripANSI removes escape sequences and control bytes from a line.
func stripANSI(s string) string {
	return reANSI.ReplaceAllString(s, "")
}

// ansiLine converts a styled line to a truecolor ANSI string.
func ansiLine(line prettifier.StyledLine) string {
	var b strings.Builder
	for _, seg := range line.Segments {
		b.WriteString(ansiStyle(seg.Style))
		b.WriteString(seg.Text)
	}
	b.WriteString("\x1b[0m")
	return b.String()
}

// ansiStyle converts a tcell style to its ANSI escape prefix.
func ansiStyle(style tcell.Style) string {
	fg, bg, attrs := style.Decompose()

	var b strings.Builder
	b.WriteString("\x1b[0m")
	if fg.Valid() {
		r, g, bl := fg.TrueColor().RGB()
		fmt.Fprintf(&b, "\x1b[38;2;%d;%d;%dm", r, g, bl)
	}
	if bg.Valid() {
		r, g, bl := bg.TrueColor().RGB()
		fmt.Fprintf(&b, "\x1b[48;2;%d;%d;%dm", r, g, bl)
	}
	if attrs&tcell.AttrBold != 0 {
		b.WriteString("\x1b[1m")
	}
	if attrs&tcell.AttrDim != 0 {
		b.WriteString("\x1b[2m")
	}
	if attrs&tcell.AttrItalic != 0 {
		b.WriteString("\x1b[3m")
	}
	if attrs&tcell.AttrUnderline != 0 {
		b.WriteString("\x1b[4m")
	}
	return b.String()
}
