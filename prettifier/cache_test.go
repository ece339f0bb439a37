// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
package prettifier

import "testing"

func TestCacheHitAndMiss(t *testing.T) {
	c := NewRenderCache(4)
	r := renderedFor("x")

	if c.Get(1, 80) != nil {
		t.Fatal("empty cache should miss")
	}
	c.Put(1, 80, "json", r)
	if c.Get(1, 80) != r {
		t.Fatal("expected hit")
	}
	// Same hash, different width is a distinct entry.
	if c.Get(1, 120) != nil {
		t.Fatal("width is part of the key")
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 2 || stats.EntryCount != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestCacheLRUEviction(t *testing.T) {
	c := NewRenderCache(2)
	c.Put(1, 80, "a", renderedFor("a"))
	c.Put(2, 80, "b", renderedFor("b"))

	// Touch 1 so 2 becomes least recently used.
	c.Get(1, 80)
	c.Put(3, 80, "c", renderedFor("c"))

	if c.Get(2, 80) != nil {
		t.Error("LRU entry should have been evicted")
	}
	if c.Get(1, 80) == nil || c.Get(3, 80) == nil {
		t.Error("recently used entries should survive")
	}
}

func TestCachePutReplaces(t *testing.T) {
	c := NewRenderCache(2)
	c.Put(1, 80, "a", renderedFor("old"))
	updated := renderedFor("new")
	c.Put(1, 80, "a", updated)

	if c.Get(1, 80) != updated {
		t.Error("put with an existing key should replace the value")
	}
	if c.Stats().EntryCount != 1 {
		t.Error("replacement must not grow the cache")
	}
}

func TestCacheInvalidate(t *testing.T) {
	c := NewRenderCache(4)
	c.Put(1, 80, "a", renderedFor("a"))
	c.Put(1, 120, "a", renderedFor("a"))
	c.Put(2, 80, "b", renderedFor("b"))

	c.Invalidate(1)
	if c.Get(1, 80) != nil || c.Get(1, 120) != nil {
		t.Error("invalidate should drop the hash at every width")
	}
	if c.Get(2, 80) == nil {
		t.Error("other hashes must survive")
	}
}

func TestCacheClear(t *testing.T) {
	c := NewRenderCache(4)
	c.Put(1, 80, "a", renderedFor("a"))
	c.Get(1, 80)
	c.Clear()

	stats := c.Stats()
	if stats.EntryCount != 0 || stats.Hits != 0 || stats.Misses != 0 {
		t.Errorf("stats after clear = %+v", stats)
	}
}
