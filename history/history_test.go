// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
package history

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/framegrace/texelprettify/prettifier"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func saveBlock(t *testing.T, s *SQLiteStore, formatID, command string, ts time.Time, lines ...string) {
	t.Helper()
	block := &prettifier.ContentBlock{
		Lines:            lines,
		PrecedingCommand: command,
		StartRow:         0,
		EndRow:           len(lines),
		Timestamp:        ts,
	}
	det := &prettifier.DetectionResult{
		FormatID:   formatID,
		Confidence: 0.9,
		Source:     prettifier.AutoDetected,
	}
	if err := s.SaveBlock(block, det); err != nil {
		t.Fatal(err)
	}
}

func TestSaveAndRecent(t *testing.T) {
	s := openTestStore(t)
	base := time.Now().Add(-time.Hour)

	saveBlock(t, s, "json", "curl api", base, "{", "}")
	saveBlock(t, s, "yaml", "", base.Add(time.Minute), "key: value")

	blocks, err := s.RecentBlocks(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 2 {
		t.Fatalf("blocks = %d", len(blocks))
	}
	// Newest first.
	if blocks[0].FormatID != "yaml" || blocks[1].FormatID != "json" {
		t.Errorf("order = %s, %s", blocks[0].FormatID, blocks[1].FormatID)
	}
	if blocks[1].Command != "curl api" || blocks[1].Confidence != 0.9 {
		t.Errorf("block = %+v", blocks[1])
	}
	if got := blocks[1].Lines(); len(got) != 2 || got[0] != "{" {
		t.Errorf("Lines = %v", got)
	}
	if !blocks[1].Timestamp.Equal(base) {
		t.Errorf("Timestamp = %v, want %v", blocks[1].Timestamp, base)
	}
}

func TestBlocksByFormat(t *testing.T) {
	s := openTestStore(t)
	now := time.Now()

	saveBlock(t, s, "json", "", now, "{}")
	saveBlock(t, s, "diff", "", now, "+x")
	saveBlock(t, s, "json", "", now.Add(time.Second), "[]")

	blocks, err := s.BlocksByFormat("json", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 2 {
		t.Fatalf("blocks = %d", len(blocks))
	}
	for _, b := range blocks {
		if b.FormatID != "json" {
			t.Errorf("FormatID = %s", b.FormatID)
		}
	}
}

func TestSearch(t *testing.T) {
	s := openTestStore(t)
	now := time.Now()

	saveBlock(t, s, "log", "", now, "ERROR connection refused to db1")
	saveBlock(t, s, "log", "", now, "INFO all good")

	blocks, err := s.Search("connection refused", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 1 || blocks[0].Content != "ERROR connection refused to db1" {
		t.Fatalf("blocks = %+v", blocks)
	}

	// Short queries take the LIKE path.
	blocks, err = s.Search("db", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 1 {
		t.Fatalf("short query blocks = %+v", blocks)
	}

	if blocks, _ := s.Search("", 10); blocks != nil {
		t.Error("empty query should return nothing")
	}
	if blocks, _ := s.Search("no such content", 10); len(blocks) != 0 {
		t.Error("miss should return nothing")
	}
}

func TestPrune(t *testing.T) {
	s := openTestStore(t)
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 10; i++ {
		saveBlock(t, s, "json", "", base.Add(time.Duration(i)*time.Minute), fmt.Sprintf(`{"n": %d}`, i))
	}

	deleted, err := s.Prune(3)
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 7 {
		t.Errorf("deleted = %d", deleted)
	}

	blocks, err := s.RecentBlocks(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(blocks) != 3 {
		t.Fatalf("blocks = %d", len(blocks))
	}
	// The newest survive.
	if blocks[0].Content != `{"n": 9}` || blocks[2].Content != `{"n": 7}` {
		t.Errorf("survivors = %q, %q", blocks[0].Content, blocks[2].Content)
	}

	// Pruned rows leave the search index too.
	if hits, _ := s.Search(`{"n": 0}`, 10); len(hits) != 0 {
		t.Error("pruned block still searchable")
	}

	if n, err := s.Prune(0); err != nil || n != 0 {
		t.Errorf("Prune(0) = %d, %v; want no-op", n, err)
	}
}
