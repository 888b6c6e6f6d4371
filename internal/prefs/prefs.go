// Copyright 2026, Zenith contributors.
// SPDX-License-Identifier: Apache-2.0

// Package prefs is the small cross-run UI-preferences store (sort key,
// filter text, zoom span, last-focused section): distinct from the
// Persistence Engine's segment history (internal/history), grounded on
// pkg/filestore/blockstore_dbsetup.go's sqlx.Open("sqlite3", ...) +
// golang-migrate wiring, generalized from waveterm's full object-store
// schema down to a single key/value table.
package prefs

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/zenith-tui/zenith/db"
	"github.com/zenith-tui/zenith/internal/dbutil"
)

const dbFileName = "prefs.db"

// Keys for the well-known preference rows the UI state machine persists
// across runs.
const (
	KeySortKey       = "sort_key"
	KeySortAscending = "sort_ascending"
	KeyFilterText    = "filter_text"
	KeyZoomSpan      = "zoom_span_ticks"
	KeyFocusedSection = "focused_section"
)

// Store wraps a single-connection sqlite3 handle for the prefs table.
type Store struct {
	db *sqlx.DB
}

// Open opens (creating if necessary) the prefs database under dir and
// migrates it to the latest schema.
func Open(ctx context.Context, dir string) (*Store, error) {
	dbPath := fmt.Sprintf("%s/%s", dir, dbFileName)
	dsn := fmt.Sprintf("file:%s?mode=rwc&_journal_mode=WAL&_busy_timeout=5000", dbPath)
	sdb, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("prefs: opening db: %w", err)
	}
	// A single connection avoids sqlite3's concurrent-writer lock errors,
	// matching blockstore_dbsetup.go's MakeDB SetMaxOpenConns(1).
	sdb.DB.SetMaxOpenConns(1)

	if err := dbutil.Migrate("prefs", sdb.DB, db.PrefsMigrationFS, "migrations-prefs"); err != nil {
		sdb.Close()
		return nil, err
	}
	return &Store{db: sdb}, nil
}

// Close releases the underlying sqlite3 connection.
func (s *Store) Close() error { return s.db.Close() }

// Get returns the stored value for key, or ("", false) if unset.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.GetContext(ctx, &value, `SELECT value FROM prefs WHERE key = ?`, key)
	if err != nil {
		if err.Error() == "sql: no rows in result set" {
			return "", false, nil
		}
		return "", false, fmt.Errorf("prefs: get %q: %w", key, err)
	}
	return value, true, nil
}

// Set upserts key=value.
func (s *Store) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO prefs (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	if err != nil {
		return fmt.Errorf("prefs: set %q: %w", key, err)
	}
	return nil
}

// All returns every stored preference as a map, for bulk restore at
// startup.
func (s *Store) All(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryxContext(ctx, `SELECT key, value FROM prefs`)
	if err != nil {
		return nil, fmt.Errorf("prefs: scanning all: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("prefs: scan row: %w", err)
		}
		out[k] = v
	}
	return out, rows.Err()
}
