// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// Package history archives detected content blocks in SQLite so earlier
// sessions' prettified output can be searched and recalled. Full-text search
// uses an FTS5 trigram index, which matches arbitrary substrings of the
// archived content.
package history

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/framegrace/texelprettify/prettifier"
)

// Store is the block archive interface.
type Store interface {
	// SaveBlock archives a detected block.
	SaveBlock(block *prettifier.ContentBlock, detection *prettifier.DetectionResult) error

	// RecentBlocks returns the newest blocks, newest first.
	RecentBlocks(limit int) ([]ArchivedBlock, error)

	// BlocksByFormat returns the newest blocks of one format, newest first.
	BlocksByFormat(formatID string, limit int) ([]ArchivedBlock, error)

	// Search matches a substring of archived block content, newest first.
	Search(query string, limit int) ([]ArchivedBlock, error)

	// Prune deletes the oldest blocks beyond maxBlocks. Returns the number
	// deleted.
	Prune(maxBlocks int) (int, error)

	// Close closes the database.
	Close() error
}

// ArchivedBlock is one stored block.
type ArchivedBlock struct {
	ID         int64
	FormatID   string
	Confidence float64
	Command    string
	StartRow   int
	EndRow     int
	Timestamp  time.Time
	Content    string
}

// Lines splits the archived content back into lines.
func (b *ArchivedBlock) Lines() []string {
	if b.Content == "" {
		return nil
	}
	return strings.Split(b.Content, "\n")
}

// SQLiteStore implements Store on a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ Store = (*SQLiteStore)(nil)

const schemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS blocks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    format_id TEXT NOT NULL,
    confidence REAL NOT NULL,
    command TEXT NOT NULL DEFAULT '',
    start_row INTEGER NOT NULL,
    end_row INTEGER NOT NULL,
    timestamp INTEGER NOT NULL,       -- UnixNano
    content TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_blocks_timestamp ON blocks(timestamp);
CREATE INDEX IF NOT EXISTS idx_blocks_format ON blocks(format_id);
`

const ftsSchema = `
CREATE VIRTUAL TABLE IF NOT EXISTS blocks_fts USING fts5(
    content,
    content='blocks',
    content_rowid='id',
    tokenize='trigram'
);

CREATE TRIGGER IF NOT EXISTS blocks_ai AFTER INSERT ON blocks BEGIN
    INSERT INTO blocks_fts(rowid, content) VALUES (new.id, new.content);
END;

CREATE TRIGGER IF NOT EXISTS blocks_ad AFTER DELETE ON blocks BEGIN
    INSERT INTO blocks_fts(blocks_fts, rowid, content) VALUES ('delete', old.id, old.content);
END;
`

// Open opens (creating if needed) the archive at dbPath.
func Open(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}

	dsn := dbPath +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=temp_store(MEMORY)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to history db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history schema: %w", err)
	}
	if _, err := db.Exec(ftsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating history FTS schema: %w", err)
	}
	if _, err := db.Exec("INSERT OR REPLACE INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("recording schema version: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// SaveBlock archives a detected block.
func (s *SQLiteStore) SaveBlock(block *prettifier.ContentBlock, detection *prettifier.DetectionResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO blocks (format_id, confidence, command, start_row, end_row, timestamp, content)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		detection.FormatID,
		detection.Confidence,
		block.PrecedingCommand,
		block.StartRow,
		block.EndRow,
		block.Timestamp.UnixNano(),
		block.FullText(),
	)
	if err != nil {
		return fmt.Errorf("archiving block: %w", err)
	}
	return nil
}

// RecentBlocks returns the newest blocks, newest first.
func (s *SQLiteStore) RecentBlocks(limit int) ([]ArchivedBlock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT id, format_id, confidence, command, start_row, end_row, timestamp, content
		 FROM blocks ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()
	return scanBlocks(rows)
}

// BlocksByFormat returns the newest blocks of one format, newest first.
func (s *SQLiteStore) BlocksByFormat(formatID string, limit int) ([]ArchivedBlock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT id, format_id, confidence, command, start_row, end_row, timestamp, content
		 FROM blocks WHERE format_id = ? ORDER BY timestamp DESC, id DESC LIMIT ?`,
		formatID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()
	return scanBlocks(rows)
}

// Search matches a substring of archived content, newest first. Queries
// shorter than three characters fall back to LIKE; the trigram tokenizer
// needs at least one full trigram to match.
func (s *SQLiteStore) Search(query string, limit int) ([]ArchivedBlock, error) {
	if query == "" {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows *sql.Rows
	var err error
	if len(query) < 3 {
		pattern := "%" + strings.ReplaceAll(strings.ReplaceAll(query, "%", `\%`), "_", `\_`) + "%"
		rows, err = s.db.Query(
			`SELECT id, format_id, confidence, command, start_row, end_row, timestamp, content
			 FROM blocks WHERE content LIKE ? ESCAPE '\'
			 ORDER BY timestamp DESC, id DESC LIMIT ?`, pattern, limit)
	} else {
		quoted := `"` + strings.ReplaceAll(query, `"`, `""`) + `"`
		rows, err = s.db.Query(
			`SELECT b.id, b.format_id, b.confidence, b.command, b.start_row, b.end_row, b.timestamp, b.content
			 FROM blocks_fts
			 JOIN blocks b ON b.id = blocks_fts.rowid
			 WHERE blocks_fts MATCH ?
			 ORDER BY b.timestamp DESC, b.id DESC LIMIT ?`, quoted, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("searching history: %w", err)
	}
	defer rows.Close()
	return scanBlocks(rows)
}

// Prune deletes the oldest blocks beyond maxBlocks.
func (s *SQLiteStore) Prune(maxBlocks int) (int, error) {
	if maxBlocks <= 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(
		`DELETE FROM blocks WHERE id NOT IN (
		     SELECT id FROM blocks ORDER BY timestamp DESC, id DESC LIMIT ?
		 )`, maxBlocks)
	if err != nil {
		return 0, fmt.Errorf("pruning history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	if n > 0 {
		log.Printf("[HISTORY] pruned %d blocks beyond retention limit %d", n, maxBlocks)
	}
	return int(n), nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanBlocks(rows *sql.Rows) ([]ArchivedBlock, error) {
	var out []ArchivedBlock
	for rows.Next() {
		var b ArchivedBlock
		var tsNano int64
		if err := rows.Scan(&b.ID, &b.FormatID, &b.Confidence, &b.Command,
			&b.StartRow, &b.EndRow, &tsNano, &b.Content); err != nil {
			continue
		}
		b.Timestamp = time.Unix(0, tsNano)
		out = append(out, b)
	}
	return out, rows.Err()
}
