/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	jsonpatch "github.com/evanphx/json-patch/v5"
)

// Save-history entry kinds. A "full" entry holds the whole document, a
// "merge" entry an RFC 7386 merge patch against the previous entry.
const (
	HistoryKindFull  = "full"
	HistoryKindMerge = "merge"
)

// language=SQL
// dialect=SQLite
const insertSnapshotSQL = `INSERT INTO snapshots(key, ts, kind, size, delta_blob) VALUES (?, ?, ?, ?, ?)`

// language=SQL
// dialect=SQLite
const listSnapshotsSQL = `SELECT id, ts, kind, size FROM snapshots WHERE key = ? ORDER BY id DESC LIMIT ?`

// language=SQL
// dialect=SQLite
const chainSnapshotsSQL = `SELECT id, kind, delta_blob FROM snapshots WHERE key = ? AND id <= ? ORDER BY id ASC`

// SaveEntry describes one recorded save.
type SaveEntry struct {
	ID   int64
	TS   time.Time
	Kind string
	// Size is the length of the saved document in bytes.
	Size int
}

// ErrNoRevision is returned when a history entry does not exist.
var ErrNoRevision = errors.New("storage: no such revision")

func appendHistory(ctx context.Context, tx *sql.Tx, key string, prev, cur []byte, ts string) error {
	kind, blob := HistoryKindFull, cur
	if prev != nil && json.Valid(prev) && json.Valid(cur) {
		if patch, err := jsonpatch.CreateMergePatch(prev, cur); err == nil {
			kind, blob = HistoryKindMerge, patch
		}
	}
	if _, err := tx.ExecContext(ctx, insertSnapshotSQL, key, ts, kind, len(cur), blob); err != nil {
		return fmt.Errorf("append history %s: %w", key, err)
	}
	return nil
}

// History returns up to limit most recent saves of key, newest first.
func (s *SQLiteStore) History(ctx context.Context, key string, limit int) ([]SaveEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, listSnapshotsSQL, key, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var out []SaveEntry
	for rows.Next() {
		var e SaveEntry
		var tsStr string
		if err := rows.Scan(&e.ID, &tsStr, &e.Kind, &e.Size); err != nil {
			return nil, err
		}
		e.TS, _ = time.Parse(tsLayout, tsStr)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Revision reconstructs the document as saved by history entry id.
func (s *SQLiteStore) Revision(ctx context.Context, key string, id int64) ([]byte, error) {
	return revision(ctx, s.db, key, id)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func revision(ctx context.Context, q querier, key string, id int64) ([]byte, error) {
	rows, err := q.QueryContext(ctx, chainSnapshotsSQL, key, id)
	if err != nil {
		return nil, err
	}
	type link struct {
		id   int64
		kind string
		blob []byte
	}
	var chain []link
	for rows.Next() {
		var l link
		if err := rows.Scan(&l.id, &l.kind, &l.blob); err != nil {
			_ = rows.Close()
			return nil, err
		}
		chain = append(chain, l)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()
	if len(chain) == 0 || chain[len(chain)-1].id != id {
		return nil, ErrNoRevision
	}
	start := -1
	for i := len(chain) - 1; i >= 0; i-- {
		if chain[i].kind == HistoryKindFull {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, fmt.Errorf("revision %d of %s has no base document", id, key)
	}
	doc := chain[start].blob
	for _, l := range chain[start+1:] {
		doc, err = jsonpatch.MergePatch(doc, l.blob)
		if err != nil {
			return nil, fmt.Errorf("apply delta %d: %w", l.id, err)
		}
	}
	return doc, nil
}

// PruneHistory keeps the newest keepLast entries of key. The oldest kept
// entry is rewritten as a full document so the chain stays resolvable.
func (s *SQLiteStore) PruneHistory(ctx context.Context, key string, keepLast int) (int64, error) {
	if keepLast <= 0 {
		return 0, nil
	}
	var oldestKept int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM snapshots WHERE key=? ORDER BY id DESC LIMIT 1 OFFSET ?`, key, keepLast-1).Scan(&oldestKept)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var older int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM snapshots WHERE key=? AND id<?`, key, oldestKept).Scan(&older); err != nil {
		return 0, err
	}
	if older == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	doc, err := revision(ctx, tx, key, oldestKept)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE snapshots SET kind=?, delta_blob=? WHERE id=?`, HistoryKindFull, doc, oldestKept); err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM snapshots WHERE key=? AND id<?`, key, oldestKept)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
