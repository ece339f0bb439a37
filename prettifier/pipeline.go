// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
package prettifier

import (
	"log"
	"time"
)

// defaultCacheSize bounds the render cache.
const defaultCacheSize = 64

// RowRange is a half-open absolute row interval [Start, End).
type RowRange struct {
	Start int
	End   int
}

// Contains reports whether r fully contains other.
func (r RowRange) Contains(other RowRange) bool {
	return r.Start <= other.Start && r.End >= other.End
}

// Overlaps reports whether the two ranges share any row.
func (r RowRange) Overlaps(other RowRange) bool {
	return r.Start < other.End && r.End > other.Start
}

// PrettifiedBlock is a detected block joined with its detection result and
// dual-view buffer.
type PrettifiedBlock struct {
	// Buffer holds source and rendered content.
	Buffer *DualViewBuffer
	// Detection is the result that created this block.
	Detection DetectionResult
	// ID is unique and monotonically increasing within one pipeline.
	ID uint64
}

// Content returns the block's source content.
func (b *PrettifiedBlock) Content() *ContentBlock {
	return b.Buffer.Source()
}

// PipelineConfig configures a Pipeline.
type PipelineConfig struct {
	// Enabled is the base enabled state; sessions can override it.
	Enabled bool
	// ConfidenceThreshold is the global detection threshold.
	ConfidenceThreshold float64
	// DetectionScope selects when the boundary detector emits blocks.
	DetectionScope DetectionScope
	// MaxScanLines caps boundary accumulation.
	MaxScanLines int
	// Debounce is the boundary inactivity window.
	Debounce time.Duration
	// CacheEntries bounds the render cache. Zero or negative uses the
	// default.
	CacheEntries int
}

// DefaultPipelineConfig returns the stock pipeline configuration.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Enabled:             true,
		ConfidenceThreshold: 0.6,
		DetectionScope:      ScopeAll,
		MaxScanLines:        500,
		Debounce:            100 * time.Millisecond,
	}
}

// Pipeline orchestrates boundary detection, format detection, and rendering
// for one terminal session. Not safe for concurrent use; the owning session
// serializes calls the same way it serializes terminal output.
//
// The pipeline never prunes its own block list. Retention is the owner's
// policy, applied via TrimBlocks.
type Pipeline struct {
	boundary        *BoundaryDetector
	registry        *Registry
	activeBlocks    []*PrettifiedBlock
	enabled         bool
	sessionOverride *bool
	nextBlockID     uint64
	rendererConfig  RendererConfig
	cache           *RenderCache
	suppressed      []RowRange
}

// NewPipeline builds a pipeline from its config, a populated registry, and
// the renderer environment. The config's confidence threshold overrides the
// registry's.
func NewPipeline(cfg PipelineConfig, registry *Registry, rendererCfg RendererConfig) *Pipeline {
	registry.SetConfidenceThreshold(cfg.ConfidenceThreshold)

	boundaryCfg := BoundaryConfig{
		Scope:              cfg.DetectionScope,
		MaxScanLines:       cfg.MaxScanLines,
		Debounce:           cfg.Debounce,
		BlankLineThreshold: 2,
	}

	cacheEntries := cfg.CacheEntries
	if cacheEntries <= 0 {
		cacheEntries = defaultCacheSize
	}

	return &Pipeline{
		boundary:       NewBoundaryDetector(boundaryCfg),
		registry:       registry,
		enabled:        cfg.Enabled,
		rendererConfig: rendererCfg,
		cache:          NewRenderCache(cacheEntries),
	}
}

// ProcessOutput feeds one line of terminal output. May emit a block, run
// detection, and render. A no-op while the pipeline is disabled.
func (p *Pipeline) ProcessOutput(line string, row int) {
	if !p.IsEnabled() {
		return
	}
	if block := p.boundary.PushLine(line, row); block != nil {
		p.handleBlock(block)
	}
}

// OnCommandStart forwards a command start marker to the boundary detector.
func (p *Pipeline) OnCommandStart(command string) {
	p.boundary.OnCommandStart(command)
}

// OnCommandEnd forwards a command end marker; the emitted block, if any,
// goes through detection.
func (p *Pipeline) OnCommandEnd() {
	if block := p.boundary.OnCommandEnd(); block != nil {
		p.handleBlock(block)
	}
}

// OnAltScreenChange forwards an alternate-screen transition.
func (p *Pipeline) OnAltScreenChange(entering bool) {
	if block := p.boundary.OnAltScreenChange(entering); block != nil {
		p.handleBlock(block)
	}
}

// OnProcessChange forwards a foreground process change.
func (p *Pipeline) OnProcessChange() {
	if block := p.boundary.OnProcessChange(); block != nil {
		p.handleBlock(block)
	}
}

// CheckDebounce polls the boundary debounce timer; the owner calls this
// periodically since no timer runs inside the pipeline.
func (p *Pipeline) CheckDebounce() {
	if block := p.boundary.CheckDebounce(); block != nil {
		p.handleBlock(block)
	}
}

// Flush force-emits any pending boundary accumulation through detection.
func (p *Pipeline) Flush() {
	if block := p.boundary.Flush(); block != nil {
		p.handleBlock(block)
	}
}

// SubmitCommandOutput bypasses line-by-line accumulation and submits
// complete command output read from scrollback. Each entry pairs a line
// with its absolute row; rows are assumed contiguous. Resets the boundary
// detector so the same output is not accumulated twice.
func (p *Pipeline) SubmitCommandOutput(lines []string, startRow int, command string) {
	p.boundary.Reset()
	if len(lines) == 0 {
		return
	}

	block := &ContentBlock{
		Lines:            lines,
		PrecedingCommand: command,
		StartRow:         startRow,
		EndRow:           startRow + len(lines),
		Timestamp:        time.Now(),
	}
	p.handleBlock(block)
}

// TriggerPrettify bypasses detection and force-renders content as the given
// format at confidence 1.0.
func (p *Pipeline) TriggerPrettify(formatID string, content ContentBlock) {
	detection := DetectionResult{
		FormatID:     formatID,
		Confidence:   1.0,
		MatchedRules: nil,
		Source:       TriggerInvoked,
	}

	buffer := NewDualViewBuffer(content)
	p.renderIntoBuffer(buffer, formatID)
	p.storeBlock(buffer, detection)
}

// ToggleGlobal flips the effective enabled state for this session without
// touching the configured base state.
func (p *Pipeline) ToggleGlobal() {
	next := !p.IsEnabled()
	p.sessionOverride = &next
}

// IsEnabled reports the effective enabled state: the session override when
// set, otherwise the configured base state.
func (p *Pipeline) IsEnabled() bool {
	if p.sessionOverride != nil {
		return *p.sessionOverride
	}
	return p.enabled
}

// ToggleBlock flips the view mode of the block with the given ID. Unknown
// IDs are ignored.
func (p *Pipeline) ToggleBlock(blockID uint64) {
	for _, b := range p.activeBlocks {
		if b.ID == blockID {
			b.Buffer.ToggleView()
			return
		}
	}
}

// ActiveBlocks returns the live block list, ordered by start row. Callers
// must not mutate it.
func (p *Pipeline) ActiveBlocks() []*PrettifiedBlock {
	return p.activeBlocks
}

// BlockAtRow finds the block covering the given absolute row, or nil.
// Blocks are sorted by start row, so a binary search finds the candidate.
func (p *Pipeline) BlockAtRow(row int) *PrettifiedBlock {
	lo, hi := 0, len(p.activeBlocks)
	for lo < hi {
		mid := (lo + hi) / 2
		if p.activeBlocks[mid].Content().StartRow <= row {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo == 0 {
		return nil
	}
	block := p.activeBlocks[lo-1]
	if row < block.Content().EndRow {
		return block
	}
	return nil
}

// SuppressDetection marks a row range as off-limits for auto-detection.
func (p *Pipeline) SuppressDetection(rng RowRange) {
	for _, existing := range p.suppressed {
		if existing == rng {
			return
		}
	}
	p.suppressed = append(p.suppressed, rng)
}

// IsSuppressed reports whether any suppressed range fully contains rng.
func (p *Pipeline) IsSuppressed(rng RowRange) bool {
	for _, s := range p.suppressed {
		if s.Contains(rng) {
			return true
		}
	}
	return false
}

// DetectionScope reports the boundary detector's scope.
func (p *Pipeline) DetectionScope() DetectionScope {
	return p.boundary.Scope()
}

// ResetBoundary discards any accumulated boundary state. Used by callers
// that re-feed a fresh content snapshot per frame.
func (p *Pipeline) ResetBoundary() {
	p.boundary.Reset()
}

// ClearBlocks drops all active blocks.
func (p *Pipeline) ClearBlocks() {
	p.activeBlocks = nil
}

// TrimBlocks drops the oldest blocks until at most max remain, and prunes
// suppressed ranges that fall entirely below the oldest survivor. Retention
// policy lives with the owner; the pipeline never calls this itself.
func (p *Pipeline) TrimBlocks(max int) {
	if len(p.activeBlocks) <= max {
		return
	}
	if max < 0 {
		max = 0
	}
	dropped := len(p.activeBlocks) - max
	p.activeBlocks = append([]*PrettifiedBlock(nil), p.activeBlocks[dropped:]...)
	log.Printf("[PIPELINE] trimmed %d blocks, %d remain", dropped, len(p.activeBlocks))

	if len(p.activeBlocks) > 0 {
		minRow := p.activeBlocks[0].Content().StartRow
		kept := p.suppressed[:0]
		for _, r := range p.suppressed {
			if r.End > minRow {
				kept = append(kept, r)
			}
		}
		p.suppressed = kept
	}
}

// UpdateRendererConfig replaces the renderer environment, e.g. on resize or
// theme change. Blocks rendered at the old width report NeedsRender until
// ReRenderIfNeeded runs.
func (p *Pipeline) UpdateRendererConfig(cfg RendererConfig) {
	p.rendererConfig = cfg
}

// ReRenderIfNeeded re-renders every block whose cached render no longer
// matches the current terminal width.
func (p *Pipeline) ReRenderIfNeeded() {
	for _, block := range p.activeBlocks {
		if block.Buffer.NeedsRender(p.rendererConfig.TerminalWidth) {
			p.renderIntoBuffer(block.Buffer, block.Detection.FormatID)
		}
	}
}

// CacheStats exposes render-cache counters for diagnostics.
func (p *Pipeline) CacheStats() CacheStats {
	return p.cache.Stats()
}

// handleBlock runs suppression, detection, dedup, and rendering for one
// emitted block.
func (p *Pipeline) handleBlock(content *ContentBlock) {
	rng := RowRange{Start: content.StartRow, End: content.EndRow}
	if p.IsSuppressed(rng) {
		return
	}

	detection := p.registry.Detect(content)
	if detection == nil {
		// An overlapping block whose content changed is stale (the output
		// under it was replaced by something undetectable) and must not keep
		// covering the new content.
		hash := ContentHash(content.Lines)
		for i, b := range p.activeBlocks {
			c := b.Content()
			if (RowRange{Start: c.StartRow, End: c.EndRow}).Overlaps(rng) && b.Buffer.ContentHash() != hash {
				log.Printf("[PIPELINE] removing stale block rows=%d..%d", c.StartRow, c.EndRow)
				p.activeBlocks = append(p.activeBlocks[:i], p.activeBlocks[i+1:]...)
				break
			}
		}
		return
	}

	buffer := NewDualViewBuffer(*content)

	// Dedup against overlapping blocks: identical content on the same rows
	// is skipped, changed content replaces the old block.
	for i, b := range p.activeBlocks {
		c := b.Content()
		if !(RowRange{Start: c.StartRow, End: c.EndRow}).Overlaps(rng) {
			continue
		}
		if b.Buffer.ContentHash() == buffer.ContentHash() {
			return
		}
		p.activeBlocks = append(p.activeBlocks[:i], p.activeBlocks[i+1:]...)
		break
	}

	log.Printf("[PIPELINE] block detected: format=%s confidence=%.2f rows=%d..%d lines=%d",
		detection.FormatID, detection.Confidence, content.StartRow, content.EndRow, len(content.Lines))

	p.renderIntoBuffer(buffer, detection.FormatID)
	p.storeBlock(buffer, *detection)
}

// storeBlock assigns the next block ID and appends, keeping start-row order
// for BlockAtRow's binary search.
func (p *Pipeline) storeBlock(buffer *DualViewBuffer, detection DetectionResult) {
	block := &PrettifiedBlock{
		Buffer:    buffer,
		Detection: detection,
		ID:        p.nextBlockID,
	}
	p.nextBlockID++

	startRow := buffer.Source().StartRow
	idx := len(p.activeBlocks)
	for idx > 0 && p.activeBlocks[idx-1].Content().StartRow > startRow {
		idx--
	}
	p.activeBlocks = append(p.activeBlocks, nil)
	copy(p.activeBlocks[idx+1:], p.activeBlocks[idx:])
	p.activeBlocks[idx] = block
}

// renderIntoBuffer renders via the cache when possible. A render failure or
// missing renderer leaves the buffer unrendered; display falls back to the
// source view.
func (p *Pipeline) renderIntoBuffer(buffer *DualViewBuffer, formatID string) {
	width := p.rendererConfig.TerminalWidth
	hash := buffer.ContentHash()

	if cached := p.cache.Get(hash, width); cached != nil {
		buffer.SetRendered(cached, width)
		return
	}

	renderer := p.registry.Renderer(formatID)
	if renderer == nil {
		log.Printf("[PIPELINE] no renderer for format=%s", formatID)
		return
	}

	rendered, err := renderer.Render(buffer.Source(), &p.rendererConfig)
	if err != nil {
		log.Printf("[PIPELINE] render failed format=%s: %v", formatID, err)
		return
	}

	p.cache.Put(hash, width, formatID, rendered)
	buffer.SetRendered(rendered, width)
}
