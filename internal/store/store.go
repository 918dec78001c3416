// Package store provides SQLite-backed persistence for the viewer's
// recently opened files.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// RecentFile is a file the user opened, with the time of the last open.
type RecentFile struct {
	Path     string
	Adapter  string
	OpenedAt time.Time
	// Count is how many times the file was opened.
	Count int
}

// Store wraps a SQLite database for viewer history.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore opens (or creates) a SQLite database at dbPath and ensures
// all required tables exist. Use ":memory:" for an in-memory database.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// An in-memory database lives only as long as its connection.
	db.SetMaxOpenConns(1)

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func createTables(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS recent_files (
			path       TEXT PRIMARY KEY,
			adapter    TEXT NOT NULL DEFAULT '',
			opened_at  INTEGER NOT NULL,
			open_count INTEGER NOT NULL DEFAULT 1
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// AddRecent records that path was opened now by the named adapter.
// Re-opening a file moves it to the top and bumps its count. An empty
// adapter name keeps the stored one.
func (s *Store) AddRecent(path, adapter string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO recent_files (path, adapter, opened_at, open_count)
		 VALUES (?, ?, ?, 1)
		 ON CONFLICT(path) DO UPDATE SET
			adapter    = CASE WHEN excluded.adapter = '' THEN recent_files.adapter ELSE excluded.adapter END,
			opened_at  = excluded.opened_at,
			open_count = recent_files.open_count + 1`,
		abs, adapter, s.now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("add recent file: %w", err)
	}
	return nil
}

// Recent returns up to limit files, most recently opened first. A limit
// of zero or less returns every entry.
func (s *Store) Recent(limit int) ([]RecentFile, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(
		`SELECT path, adapter, opened_at, open_count
		 FROM recent_files ORDER BY opened_at DESC, path LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list recent files: %w", err)
	}
	defer rows.Close()

	var files []RecentFile
	for rows.Next() {
		var f RecentFile
		var openedAt int64
		if err := rows.Scan(&f.Path, &f.Adapter, &openedAt, &f.Count); err != nil {
			return nil, fmt.Errorf("scan recent file: %w", err)
		}
		f.OpenedAt = time.Unix(0, openedAt)
		files = append(files, f)
	}
	return files, rows.Err()
}

// RemoveRecent forgets path.
func (s *Store) RemoveRecent(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	if _, err := s.db.Exec(`DELETE FROM recent_files WHERE path = ?`, abs); err != nil {
		return fmt.Errorf("remove recent file: %w", err)
	}
	return nil
}

// Prune keeps only the keep most recent entries.
func (s *Store) Prune(keep int) error {
	_, err := s.db.Exec(
		`DELETE FROM recent_files WHERE path NOT IN (
			SELECT path FROM recent_files ORDER BY opened_at DESC, path LIMIT ?
		)`, max(keep, 0),
	)
	if err != nil {
		return fmt.Errorf("prune recent files: %w", err)
	}
	return nil
}
