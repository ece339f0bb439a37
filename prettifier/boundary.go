// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
package prettifier

import (
	"log"
	"strings"
	"time"
)

// DetectionScope controls when the boundary detector emits blocks.
//
// Distinct from RuleScope, which controls where a rule's regex applies
// within a block.
type DetectionScope int

const (
	// ScopeCommandOutput accumulates only between command start/end markers
	// (requires shell integration, e.g. OSC 133).
	ScopeCommandOutput DetectionScope = iota
	// ScopeAll accumulates all output; blank-line runs and debounce act as
	// boundaries.
	ScopeAll
	// ScopeManualOnly never auto-emits; only Flush produces blocks.
	ScopeManualOnly
)

func (s DetectionScope) String() string {
	switch s {
	case ScopeCommandOutput:
		return "command_output"
	case ScopeAll:
		return "all"
	case ScopeManualOnly:
		return "manual_only"
	default:
		return "unknown"
	}
}

// BoundaryConfig configures a BoundaryDetector.
type BoundaryConfig struct {
	// Scope selects when boundaries are detected.
	Scope DetectionScope
	// MaxScanLines forces emission once this many lines accumulate.
	MaxScanLines int
	// Debounce is the inactivity window after which CheckDebounce emits.
	Debounce time.Duration
	// BlankLineThreshold is the consecutive blank-line count that triggers a
	// boundary in ScopeAll.
	BlankLineThreshold int
}

// DefaultBoundaryConfig returns the stock configuration: ScopeAll, 500-line
// cap, 100ms debounce, two-blank-line boundary.
func DefaultBoundaryConfig() BoundaryConfig {
	return BoundaryConfig{
		Scope:              ScopeAll,
		MaxScanLines:       500,
		Debounce:           100 * time.Millisecond,
		BlankLineThreshold: 2,
	}
}

// BoundaryDetector accumulates terminal output lines and emits ContentBlocks
// at natural boundaries: command end markers, blank-line runs, the max-line
// cap, or debounce timeouts. Not safe for concurrent use; the owning
// pipeline serializes calls.
type BoundaryDetector struct {
	lines          []string
	currentCommand string
	blockStartRow  int
	cfg            BoundaryConfig
	lastOutputTime time.Time
	inCommand      bool
	blankRun       int
	inFence        bool
	fenceChar      byte

	now func() time.Time // injectable for debounce tests
}

// NewBoundaryDetector creates a detector with the given configuration.
func NewBoundaryDetector(cfg BoundaryConfig) *BoundaryDetector {
	return &BoundaryDetector{
		cfg:            cfg,
		lastOutputTime: time.Now(),
		now:            time.Now,
	}
}

// PushLine accumulates one line of terminal output at the given absolute row.
//
// May emit a block when MaxScanLines is reached or, in ScopeAll, when the
// blank-line heuristic triggers. In ScopeCommandOutput, lines outside the
// command window are ignored. In ScopeManualOnly, never auto-emits.
func (d *BoundaryDetector) PushLine(line string, row int) *ContentBlock {
	switch d.cfg.Scope {
	case ScopeCommandOutput:
		if !d.inCommand {
			return nil
		}
	case ScopeManualOnly:
		d.lastOutputTime = d.now()
		if len(d.lines) == 0 {
			d.blockStartRow = row
		}
		d.lines = append(d.lines, line)
		d.blankRun = 0
		return nil
	}

	d.lastOutputTime = d.now()

	if len(d.lines) == 0 {
		d.blockStartRow = row
	}

	// Fence tracking suppresses blank-line boundaries inside fenced code so
	// markdown content stays in one block.
	d.updateFenceState(line)

	if d.cfg.Scope == ScopeAll && strings.TrimSpace(line) == "" && !d.inFence {
		d.blankRun++
		if d.blankRun >= d.cfg.BlankLineThreshold {
			log.Printf("[BOUNDARY] blank-line boundary at row=%d (run=%d)", row, d.blankRun)
			block := d.emitBlock()
			d.blankRun = 0
			return block
		}
		// Below threshold: keep the blank, it may be interior whitespace.
		d.lines = append(d.lines, line)
		return nil
	}

	if !d.inFence {
		d.blankRun = 0
	}
	d.lines = append(d.lines, line)

	if len(d.lines) >= d.cfg.MaxScanLines {
		log.Printf("[BOUNDARY] max-scan boundary at row=%d (lines=%d)", row, len(d.lines))
		return d.emitBlock()
	}

	return nil
}

// OnCommandStart records a command start marker. Sets command context,
// opens the command window, and drops any pre-command noise.
func (d *BoundaryDetector) OnCommandStart(command string) {
	d.currentCommand = command
	d.inCommand = true
	d.lines = d.lines[:0]
	d.blankRun = 0
}

// OnCommandEnd records a command end marker and emits the accumulated block.
// Returns nil in ScopeManualOnly.
func (d *BoundaryDetector) OnCommandEnd() *ContentBlock {
	d.inCommand = false
	if d.cfg.Scope == ScopeManualOnly {
		return nil
	}
	return d.emitBlock()
}

// OnAltScreenChange emits the current block on entry to or exit from the
// alternate screen. Returns nil in ScopeManualOnly.
func (d *BoundaryDetector) OnAltScreenChange(entering bool) *ContentBlock {
	if d.cfg.Scope == ScopeManualOnly {
		return nil
	}
	return d.emitBlock()
}

// OnProcessChange emits the current block when the foreground process
// changes. Returns nil in ScopeManualOnly.
func (d *BoundaryDetector) OnProcessChange() *ContentBlock {
	if d.cfg.Scope == ScopeManualOnly {
		return nil
	}
	return d.emitBlock()
}

// CheckDebounce emits the pending block if the inactivity window has
// elapsed. The owner polls this; no timer runs inside the detector.
// Returns nil in ScopeManualOnly or when nothing is pending.
func (d *BoundaryDetector) CheckDebounce() *ContentBlock {
	if d.cfg.Scope == ScopeManualOnly {
		return nil
	}
	if len(d.lines) == 0 {
		return nil
	}
	if d.now().Sub(d.lastOutputTime) >= d.cfg.Debounce {
		return d.emitBlock()
	}
	return nil
}

// Flush force-emits the current block. Works in every scope, including
// ScopeManualOnly.
func (d *BoundaryDetector) Flush() *ContentBlock {
	return d.emitBlock()
}

// Scope reports the configured detection scope.
func (d *BoundaryDetector) Scope() DetectionScope {
	return d.cfg.Scope
}

// HasPendingLines reports whether lines are waiting to be emitted.
func (d *BoundaryDetector) HasPendingLines() bool {
	return len(d.lines) > 0
}

// PendingLineCount returns the number of accumulated lines.
func (d *BoundaryDetector) PendingLineCount() int {
	return len(d.lines)
}

// Reset clears all accumulated state.
func (d *BoundaryDetector) Reset() {
	d.lines = nil
	d.currentCommand = ""
	d.blockStartRow = 0
	d.inCommand = false
	d.blankRun = 0
	d.inFence = false
	d.fenceChar = 0
}

// updateFenceState tracks fenced code block boundaries (``` or ~~~).
//
// An opening fence is 3+ fence characters optionally followed by a language
// tag (alphanumerics, hyphens, underscores, plus signs). A closing fence is
// 3+ of the same character with nothing but whitespace after.
func (d *BoundaryDetector) updateFenceState(line string) {
	trimmed := strings.TrimSpace(line)

	if d.inFence {
		runLen := fenceRunLen(trimmed, d.fenceChar)
		if runLen >= 3 && strings.TrimSpace(trimmed[runLen:]) == "" {
			d.inFence = false
			d.fenceChar = 0
		}
		return
	}

	var ch byte
	switch {
	case strings.HasPrefix(trimmed, "```"):
		ch = '`'
	case strings.HasPrefix(trimmed, "~~~"):
		ch = '~'
	default:
		return
	}

	runLen := fenceRunLen(trimmed, ch)
	rest := strings.TrimSpace(trimmed[runLen:])
	if rest == "" || isLanguageTag(rest) {
		d.inFence = true
		d.fenceChar = ch
	}
}

func fenceRunLen(s string, ch byte) int {
	n := 0
	for n < len(s) && s[n] == ch {
		n++
	}
	return n
}

func isLanguageTag(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '+':
		default:
			return false
		}
	}
	return true
}

// emitBlock builds a ContentBlock from accumulated state and resets the
// accumulator. Trims trailing blank lines; returns nil if no non-blank
// content remains. The pending command is consumed either way.
func (d *BoundaryDetector) emitBlock() *ContentBlock {
	lines := d.lines
	d.lines = nil
	command := d.currentCommand
	d.currentCommand = ""
	startRow := d.blockStartRow

	if len(lines) == 0 {
		d.blockStartRow = 0
		d.blankRun = 0
		return nil
	}

	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}

	d.blockStartRow = 0
	d.blankRun = 0

	if len(lines) == 0 {
		return nil
	}

	return &ContentBlock{
		Lines:            lines,
		PrecedingCommand: command,
		StartRow:         startRow,
		EndRow:           startRow + len(lines),
		Timestamp:        time.Now(),
	}
}
