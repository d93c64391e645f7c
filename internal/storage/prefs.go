// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/diycursor/internal/errs"
)

// Preference keys.
const (
	KeyLastModel    = "last_model"
	KeyModelAPIKeys = "model_api_keys"
	KeyLastProject  = "lastProject"
)

const schema = `
CREATE TABLE IF NOT EXISTS prefs (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);`

// =============================================================================
// PREFERENCE STORE
// =============================================================================

// Prefs is a persistent string key/value store. It is safe for concurrent use.
type Prefs struct {
	db   *sql.DB
	path string
}

// OpenPrefs opens (creating if needed) the preference database at path.
func OpenPrefs(path string) (*Prefs, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, errs.Wrap(errs.KindStorage, "failed to create state directory", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errs.Wrap(errs.KindStorage, "failed to open state database", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, errs.Wrap(errs.KindStorage, "failed to set pragma", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errs.Wrap(errs.KindStorage, "failed to initialize schema", err)
	}

	if err := restrictFiles(path); err != nil {
		db.Close()
		return nil, err
	}

	return &Prefs{db: db, path: path}, nil
}

// restrictFiles makes the database and its WAL sidecars owner-only, since
// credentials live here. Sidecars that do not exist yet are skipped; the
// 0700 state directory covers ones created later.
func restrictFiles(path string) error {
	if err := os.Chmod(path, 0600); err != nil {
		return errs.Wrap(errs.KindStorage, "failed to restrict state database", err)
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Chmod(path+suffix, 0600); err != nil && !errors.Is(err, os.ErrNotExist) {
			return errs.Wrap(errs.KindStorage, "failed to restrict state database", err)
		}
	}
	return nil
}

// Path returns the database file path.
func (p *Prefs) Path() string {
	return p.path
}

// Get returns the value stored under key. ok is false when the key is absent.
func (p *Prefs) Get(key string) (value string, ok bool, err error) {
	row := p.db.QueryRow("SELECT value FROM prefs WHERE key = ?", key)
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, errs.Wrap(errs.KindStorage, "failed to read "+key, err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (p *Prefs) Set(key, value string) error {
	_, err := p.db.Exec(`
		INSERT INTO prefs (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().Unix())
	if err != nil {
		return errs.Wrap(errs.KindStorage, "failed to write "+key, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (p *Prefs) Delete(key string) error {
	if _, err := p.db.Exec("DELETE FROM prefs WHERE key = ?", key); err != nil {
		return errs.Wrap(errs.KindStorage, "failed to delete "+key, err)
	}
	return nil
}

// Keys returns every stored key in sorted order.
func (p *Prefs) Keys() ([]string, error) {
	rows, err := p.db.Query("SELECT key FROM prefs ORDER BY key")
	if err != nil {
		return nil, errs.Wrap(errs.KindStorage, "failed to list keys", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, errs.Wrap(errs.KindStorage, "failed to list keys", err)
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.KindStorage, "failed to list keys", err)
	}
	return keys, nil
}

// GetJSON decodes the value under key into v. ok is false when the key is
// absent; a present but malformed value is returned as an error.
func (p *Prefs) GetJSON(key string, v any) (ok bool, err error) {
	raw, ok, err := p.Get(key)
	if err != nil || !ok {
		return ok, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return true, fmt.Errorf("malformed %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func (p *Prefs) SetJSON(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errs.Wrap(errs.KindStorage, "failed to encode "+key, err)
	}
	return p.Set(key, string(data))
}

// Close closes the database.
func (p *Prefs) Close() error {
	return p.db.Close()
}
