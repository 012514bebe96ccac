/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package persist stores the journal on disk: a SQLite snapshot database for
// the local journal file and a JSON manifest format for export and import.
package persist

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/bchewy/doodledo/internal/journal"
	applog "github.com/bchewy/doodledo/internal/log"
	"github.com/bchewy/doodledo/internal/sketch"
)

const schema = `
CREATE TABLE IF NOT EXISTS entries (
	id          TEXT PRIMARY KEY,
	position    INTEGER NOT NULL,
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL,
	caption     TEXT NOT NULL DEFAULT '',
	background  BLOB,
	thumbnail   BLOB
);
CREATE TABLE IF NOT EXISTS drawings (
	entry_id    TEXT PRIMARY KEY,
	strokes     BLOB NOT NULL
);
`

// DB is a handle to the journal snapshot database.
type DB struct {
	db  *sql.DB
	log *slog.Logger
}

// Open creates or opens the snapshot database at path, creating parent
// directories as needed.
func Open(path string) (*DB, error) {
	l := applog.WithComponent("persist")
	if path == "" {
		return nil, errors.New("database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Embedded usage, single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable wal: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	l.Debug("snapshot db opened", slog.String("path", path))
	return &DB{db: db, log: l}, nil
}

func (d *DB) Close() error { return d.db.Close() }

// SaveSnapshot replaces the stored journal with the given state in one
// transaction. Entry order is preserved via the position column, so the
// newest-first ordering survives a restart.
func (d *DB) SaveSnapshot(ctx context.Context, entries []journal.Entry, drawings map[string]*sketch.Drawing) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM entries`); err != nil {
		return fmt.Errorf("clear entries: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM drawings`); err != nil {
		return fmt.Errorf("clear drawings: %w", err)
	}

	insEntry, err := tx.PrepareContext(ctx, `INSERT INTO entries(id, position, created_at, updated_at, caption, background, thumbnail) VALUES(?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare entry insert: %w", err)
	}
	defer insEntry.Close()
	for i, e := range entries {
		_, err := insEntry.ExecContext(ctx, e.ID, i,
			e.CreatedAt.UTC().Format(time.RFC3339Nano),
			e.UpdatedAt.UTC().Format(time.RFC3339Nano),
			e.Caption, e.BackgroundImageData, e.ThumbnailData)
		if err != nil {
			return fmt.Errorf("insert entry %s: %w", e.ID, err)
		}
	}

	insDrawing, err := tx.PrepareContext(ctx, `INSERT INTO drawings(entry_id, strokes) VALUES(?,?)`)
	if err != nil {
		return fmt.Errorf("prepare drawing insert: %w", err)
	}
	defer insDrawing.Close()
	for id, dr := range drawings {
		if dr.Empty() {
			continue
		}
		blob, err := json.Marshal(dr)
		if err != nil {
			return fmt.Errorf("encode drawing %s: %w", id, err)
		}
		if _, err := insDrawing.ExecContext(ctx, id, blob); err != nil {
			return fmt.Errorf("insert drawing %s: %w", id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	d.log.Debug("snapshot saved", slog.Int("entries", len(entries)))
	return nil
}

// LoadSnapshot reads the stored journal back, entries in their saved order.
func (d *DB) LoadSnapshot(ctx context.Context) ([]journal.Entry, map[string]*sketch.Drawing, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT id, created_at, updated_at, caption, background, thumbnail FROM entries ORDER BY position`)
	if err != nil {
		return nil, nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []journal.Entry
	for rows.Next() {
		var e journal.Entry
		var created, updated string
		if err := rows.Scan(&e.ID, &created, &updated, &e.Caption, &e.BackgroundImageData, &e.ThumbnailData); err != nil {
			return nil, nil, fmt.Errorf("scan entry: %w", err)
		}
		if e.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, nil, fmt.Errorf("entry %s created_at: %w", e.ID, err)
		}
		if e.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
			return nil, nil, fmt.Errorf("entry %s updated_at: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("read entries: %w", err)
	}

	drawings := make(map[string]*sketch.Drawing)
	drows, err := d.db.QueryContext(ctx, `SELECT entry_id, strokes FROM drawings`)
	if err != nil {
		return nil, nil, fmt.Errorf("query drawings: %w", err)
	}
	defer drows.Close()
	for drows.Next() {
		var id string
		var blob []byte
		if err := drows.Scan(&id, &blob); err != nil {
			return nil, nil, fmt.Errorf("scan drawing: %w", err)
		}
		var dr sketch.Drawing
		if err := json.Unmarshal(blob, &dr); err != nil {
			return nil, nil, fmt.Errorf("decode drawing %s: %w", id, err)
		}
		drawings[id] = &dr
	}
	if err := drows.Err(); err != nil {
		return nil, nil, fmt.Errorf("read drawings: %w", err)
	}
	return entries, drawings, nil
}
