// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
package prettifier

import (
	"log"
	"sort"
)

type detectorEntry struct {
	priority int
	detector Detector
}

// Registry holds the registered detectors and renderers and runs the
// detection pipeline for the owning Pipeline.
//
// Detectors are kept in priority-descending order. Detection runs each
// detector in order and keeps the highest-confidence result; priority is the
// tiebreaker, because a higher-priority detector is evaluated first and a
// later result only replaces the current best on strictly greater
// confidence.
type Registry struct {
	detectors []detectorEntry
	renderers map[string]Renderer
	threshold float64
}

// NewRegistry creates an empty registry with the given global confidence
// threshold.
func NewRegistry(confidenceThreshold float64) *Registry {
	return &Registry{
		renderers: make(map[string]Renderer),
		threshold: confidenceThreshold,
	}
}

// RegisterDetector adds a detector at the given priority (higher is checked
// first). Within one priority, detectors run in registration order, so
// earlier registrations win ties.
func (r *Registry) RegisterDetector(priority int, d Detector) {
	idx := sort.Search(len(r.detectors), func(i int) bool {
		return r.detectors[i].priority < priority
	})
	r.detectors = append(r.detectors, detectorEntry{})
	copy(r.detectors[idx+1:], r.detectors[idx:])
	r.detectors[idx] = detectorEntry{priority: priority, detector: d}
}

// RegisterRenderer adds a renderer for a format ID, replacing any previous
// renderer for that format.
func (r *Registry) RegisterRenderer(formatID string, renderer Renderer) {
	r.renderers[formatID] = renderer
}

// Renderer looks up the renderer for a format ID. Returns nil if none is
// registered.
func (r *Registry) Renderer(formatID string) Renderer {
	return r.renderers[formatID]
}

// RegisteredFormats returns (formatID, displayName) pairs for all registered
// renderers, sorted by format ID.
func (r *Registry) RegisteredFormats() [][2]string {
	out := make([][2]string, 0, len(r.renderers))
	for id, renderer := range r.renderers {
		out = append(out, [2]string{id, renderer.DisplayName()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}

// Detectors returns the registered detectors in priority order.
func (r *Registry) Detectors() []Detector {
	out := make([]Detector, len(r.detectors))
	for i, e := range r.detectors {
		out[i] = e.detector
	}
	return out
}

// Detect runs the detection pipeline against a block: QuickMatch filters
// each detector, full detection runs on survivors, the highest-confidence
// result wins, and the winner must still clear the global threshold.
// Returns nil when no format qualifies.
func (r *Registry) Detect(block *ContentBlock) *DetectionResult {
	var best *DetectionResult

	for _, e := range r.detectors {
		if !e.detector.QuickMatch(block) {
			continue
		}
		result := e.detector.Detect(block)
		if result == nil {
			continue
		}
		if best == nil || result.Confidence > best.Confidence {
			best = result
		}
	}

	if best == nil || best.Confidence < r.threshold {
		return nil
	}
	log.Printf("[REGISTRY] detect winner format=%s confidence=%.3f", best.FormatID, best.Confidence)
	return best
}

// SetConfidenceThreshold updates the global threshold.
func (r *Registry) SetConfidenceThreshold(t float64) {
	r.threshold = t
}

// ConfidenceThreshold reports the current global threshold.
func (r *Registry) ConfidenceThreshold() float64 {
	return r.threshold
}

// DetectorCount returns the number of registered detectors.
func (r *Registry) DetectorCount() int {
	return len(r.detectors)
}

// RendererCount returns the number of registered renderers.
func (r *Registry) RendererCount() int {
	return len(r.renderers)
}

// ApplyRulesForFormat applies config overrides and extra user rules to the
// named format's detector, if that detector is configurable. A missing
// format is a no-op.
func (r *Registry) ApplyRulesForFormat(formatID string, overrides []RuleOverride, additional []DetectionRule) {
	for _, e := range r.detectors {
		if e.detector.FormatID() != formatID {
			continue
		}
		cd, ok := e.detector.(ConfigurableDetector)
		if !ok {
			log.Printf("[REGISTRY] detector %s does not accept rule configuration", formatID)
			return
		}
		if len(overrides) > 0 {
			cd.ApplyOverrides(overrides)
		}
		if len(additional) > 0 {
			cd.MergeUserRules(additional)
		}
		return
	}
}
