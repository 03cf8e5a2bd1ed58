// Package textcache persists canonical document text keyed by doc_id so
// the command-line surface can supply the orchestrator's text-resolution
// callback across process restarts, without keeping the full corpus
// resident in memory.
package textcache

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store is a small sqlite-backed key-value store mapping doc_id to
// canonical text.
type Store struct {
	db *sql.DB
}

// Open creates or opens the sqlite database at path and ensures its schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("textcache: opening %s: %w", path, err)
	}
	const schema = `CREATE TABLE IF NOT EXISTS doc_text (
		rowid_order INTEGER PRIMARY KEY AUTOINCREMENT,
		doc_id TEXT UNIQUE NOT NULL,
		text TEXT NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("textcache: creating schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Put stores (or replaces) the canonical text for doc_id.
func (s *Store) Put(ctx context.Context, docID, text string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO doc_text(doc_id, text) VALUES (?, ?)
		 ON CONFLICT(doc_id) DO UPDATE SET text = excluded.text`,
		docID, text)
	if err != nil {
		return fmt.Errorf("textcache: put %q: %w", docID, err)
	}
	return nil
}

// Get retrieves the canonical text for doc_id. It is suitable for direct
// use as an orchestrator.TextResolver.
func (s *Store) Get(ctx context.Context, docID string) (string, error) {
	var text string
	err := s.db.QueryRowContext(ctx, `SELECT text FROM doc_text WHERE doc_id = ?`, docID).Scan(&text)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("textcache: no text stored for doc_id %q", docID)
	}
	if err != nil {
		return "", fmt.Errorf("textcache: get %q: %w", docID, err)
	}
	return text, nil
}

// Entry is one (doc_id, canonical text) pair.
type Entry struct {
	DocID string
	Text  string
}

// All returns every stored entry in insertion order, which must agree with
// the vector index's row order for the same corpus.
func (s *Store) All(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT doc_id, text FROM doc_text ORDER BY rowid_order`)
	if err != nil {
		return nil, fmt.Errorf("textcache: listing entries: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.DocID, &e.Text); err != nil {
			return nil, fmt.Errorf("textcache: scanning entry: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("textcache: iterating entries: %w", err)
	}
	return out, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
