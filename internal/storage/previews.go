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
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvPreviewsMaxBytes caps the preview cache size.
const EnvPreviewsMaxBytes = "IVE_PREVIEWS_MAX_BYTES"

func ensurePreviewsTable(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS previews (
			id          INTEGER PRIMARY KEY,
			page_id     TEXT    NOT NULL,
			w           INTEGER NOT NULL,
			h           INTEGER NOT NULL,
			content_sum TEXT    NOT NULL,
			thumb_blob  BLOB    NOT NULL,
			size        INTEGER NOT NULL,
			updated_at  TEXT    NOT NULL,
			last_access TEXT
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_previews_variant ON previews(page_id, w, h);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("ensure previews table: %w", err)
		}
	}
	return nil
}

// ContentSum fingerprints the page content a preview was rendered from.
func ContentSum(content []byte) string {
	h := sha256.Sum256(content)
	return hex.EncodeToString(h[:])
}

// GetPreview returns a cached thumbnail of page at w x h when it was rendered
// from content with the given sum; otherwise nil. Hits refresh last_access.
func (s *SQLiteStore) GetPreview(ctx context.Context, pageID string, w, h int, sum string) ([]byte, error) {
	var blob []byte
	var stored string
	err := s.db.QueryRowContext(ctx, `SELECT thumb_blob, content_sum FROM previews WHERE page_id=? AND w=? AND h=?`, pageID, w, h).Scan(&blob, &stored)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query preview: %w", err)
	}
	if stored != sum {
		return nil, nil
	}
	now := time.Now().UTC().Format(tsLayout)
	_, _ = s.db.ExecContext(ctx, `UPDATE previews SET last_access=? WHERE page_id=? AND w=? AND h=?`, now, pageID, w, h)
	return blob, nil
}

// PutPreview upserts a thumbnail and enforces the cache cap via LRU eviction.
func (s *SQLiteStore) PutPreview(ctx context.Context, pageID string, w, h int, sum string, png []byte) error {
	now := time.Now().UTC().Format(tsLayout)
	_, err := s.db.ExecContext(ctx, `INSERT INTO previews(page_id,w,h,content_sum,thumb_blob,size,updated_at,last_access)
		VALUES(?,?,?,?,?,?,?,?)
		ON CONFLICT(page_id,w,h) DO UPDATE SET content_sum=excluded.content_sum, thumb_blob=excluded.thumb_blob,
			size=excluded.size, updated_at=excluded.updated_at, last_access=excluded.last_access`,
		pageID, w, h, sum, png, len(png), now, now)
	if err != nil {
		return fmt.Errorf("upsert preview: %w", err)
	}
	if capBytes := MaxPreviewsBytesFromEnv(); capBytes > 0 {
		return s.EvictPreviewsToFit(ctx, capBytes)
	}
	return nil
}

// GetOrCreatePreview fetches a preview or renders and stores it with gen.
func (s *SQLiteStore) GetOrCreatePreview(ctx context.Context, pageID string, w, h int, content []byte, gen func(context.Context) ([]byte, error)) ([]byte, error) {
	sum := ContentSum(content)
	if b, err := s.GetPreview(ctx, pageID, w, h, sum); err != nil {
		return nil, err
	} else if b != nil {
		return b, nil
	}
	data, err := gen(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.PutPreview(ctx, pageID, w, h, sum, data); err != nil {
		return nil, err
	}
	return data, nil
}

// EvictPreviewsToFit deletes least-recently-used rows until total size <= capBytes.
func (s *SQLiteStore) EvictPreviewsToFit(ctx context.Context, capBytes int64) error {
	total, err := s.TotalPreviewBytes(ctx)
	if err != nil {
		return err
	}
	if total <= capBytes {
		return nil
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, size FROM previews ORDER BY
		CASE WHEN last_access IS NULL THEN 0 ELSE 1 END ASC, last_access ASC, id ASC`)
	if err != nil {
		return fmt.Errorf("select victims: %w", err)
	}
	var victims []any
	cur := total
	for rows.Next() && cur > capBytes {
		var id, sz int64
		if err := rows.Scan(&id, &sz); err != nil {
			_ = rows.Close()
			return err
		}
		victims = append(victims, id)
		cur -= sz
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return err
	}
	// the single connection must be free before writing
	if err := rows.Close(); err != nil {
		return err
	}
	if len(victims) == 0 {
		return nil
	}
	q := `DELETE FROM previews WHERE id IN (` + strings.TrimSuffix(strings.Repeat("?,", len(victims)), ",") + `)`
	if _, err := s.db.ExecContext(ctx, q, victims...); err != nil {
		return fmt.Errorf("evict delete: %w", err)
	}
	return nil
}

// TotalPreviewBytes returns total bytes tracked by previews.size.
func (s *SQLiteStore) TotalPreviewBytes(ctx context.Context) (int64, error) {
	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(size),0) FROM previews`).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// MaxPreviewsBytesFromEnv reads IVE_PREVIEWS_MAX_BYTES, defaulting to 64MB.
func MaxPreviewsBytesFromEnv() int64 {
	const def = 64 * 1024 * 1024
	n, err := strconv.ParseInt(os.Getenv(EnvPreviewsMaxBytes), 10, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}
