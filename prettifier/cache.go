// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
package prettifier

import "container/list"

// RenderCache stores rendered content keyed by (content hash, terminal
// width) so unchanged blocks are never re-rendered. Evicts least recently
// used entries when full. Not safe for concurrent use; the pipeline holds
// its own lock.
type RenderCache struct {
	entries    map[cacheKey]*list.Element
	order      *list.List // front = least recently used
	maxEntries int
	hits       uint64
	misses     uint64
}

type cacheKey struct {
	hash  uint64
	width int
}

type cacheEntry struct {
	key      cacheKey
	rendered *RenderedContent
	formatID string
}

// CacheStats is a snapshot of cache effectiveness for diagnostics.
type CacheStats struct {
	EntryCount int
	MaxEntries int
	Hits       uint64
	Misses     uint64
}

// NewRenderCache creates a cache holding at most maxEntries renders.
func NewRenderCache(maxEntries int) *RenderCache {
	return &RenderCache{
		entries:    make(map[cacheKey]*list.Element),
		order:      list.New(),
		maxEntries: maxEntries,
	}
}

// Get looks up a cached render and marks it recently used.
func (c *RenderCache) Get(contentHash uint64, terminalWidth int) *RenderedContent {
	key := cacheKey{hash: contentHash, width: terminalWidth}
	el, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil
	}
	c.hits++
	c.order.MoveToBack(el)
	return el.Value.(*cacheEntry).rendered
}

// Put stores a render result, evicting the least recently used entry when
// the cache is full.
func (c *RenderCache) Put(contentHash uint64, terminalWidth int, formatID string, rendered *RenderedContent) {
	key := cacheKey{hash: contentHash, width: terminalWidth}
	if el, ok := c.entries[key]; ok {
		entry := el.Value.(*cacheEntry)
		entry.rendered = rendered
		entry.formatID = formatID
		c.order.MoveToBack(el)
		return
	}
	if len(c.entries) >= c.maxEntries {
		c.evictLRU()
	}
	el := c.order.PushBack(&cacheEntry{key: key, rendered: rendered, formatID: formatID})
	c.entries[key] = el
}

// Invalidate removes all entries for a content hash, at any width.
func (c *RenderCache) Invalidate(contentHash uint64) {
	for key, el := range c.entries {
		if key.hash == contentHash {
			c.order.Remove(el)
			delete(c.entries, key)
		}
	}
}

// Clear drops every entry and resets the counters.
func (c *RenderCache) Clear() {
	c.entries = make(map[cacheKey]*list.Element)
	c.order.Init()
	c.hits = 0
	c.misses = 0
}

// Stats returns a snapshot of cache counters.
func (c *RenderCache) Stats() CacheStats {
	return CacheStats{
		EntryCount: len(c.entries),
		MaxEntries: c.maxEntries,
		Hits:       c.hits,
		Misses:     c.misses,
	}
}

func (c *RenderCache) evictLRU() {
	front := c.order.Front()
	if front == nil {
		return
	}
	entry := front.Value.(*cacheEntry)
	c.order.Remove(front)
	delete(c.entries, entry.key)
}
