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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	applog "inviteeditor/internal/log"
)

const (
	BackupsDirName = "backups"
	fileExt        = ".json"
	backupStamp    = "20060102-150405.000"
)

// FileStore keeps every key as <root>/<key>.json. Writes go to a temp file
// that is renamed over the target; the previous content is copied to a
// timestamped backup first. Reads fall back to the newest backup when the
// current file is missing or not valid JSON.
type FileStore struct {
	Root string
	// MaxBackups bounds the backups kept per key (0 keeps all).
	MaxBackups int
}

// NewFileStore creates root and its backups directory.
func NewFileStore(root string) (*FileStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("root path is required")
	}
	if err := os.MkdirAll(filepath.Join(root, BackupsDirName), 0o755); err != nil {
		return nil, fmt.Errorf("create store root: %w", err)
	}
	return &FileStore{Root: root, MaxBackups: 20}, nil
}

// Path returns the file that holds key.
func (fs *FileStore) Path(key string) string {
	return filepath.Join(fs.Root, sanitizeKey(key)+fileExt)
}

func sanitizeKey(key string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, key)
}

func (fs *FileStore) Get(key string) ([]byte, error) {
	p := fs.Path(key)
	b, err := os.ReadFile(p)
	if err == nil && json.Valid(b) {
		return b, nil
	}
	l := applog.WithOperation(applog.WithComponent("storage"), "file_get").With(slog.String("key", key))
	bak, berr := fs.latestBackup(key)
	if berr != nil {
		if err != nil && errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		if err == nil {
			err = errors.New("content is not valid JSON")
		}
		return nil, fmt.Errorf("read %s: %w; backup attempt: %v", p, err, berr)
	}
	l.Warn("current file unusable, using latest backup", slog.String("backup", bak), slog.Any("err", err))
	data, rerr := os.ReadFile(bak)
	if rerr != nil {
		return nil, fmt.Errorf("read latest backup: %w", rerr)
	}
	return data, nil
}

func (fs *FileStore) Set(key string, value []byte) error {
	p := fs.Path(key)
	bdir := filepath.Join(fs.Root, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return fmt.Errorf("ensure backups dir: %w", err)
	}
	if _, statErr := os.Stat(p); statErr == nil {
		bname := fmt.Sprintf("%s%s.%s.bak", sanitizeKey(key), fileExt, time.Now().Format(backupStamp))
		if cerr := copyFile(p, filepath.Join(bdir, bname)); cerr != nil {
			return fmt.Errorf("backup current file: %w", cerr)
		}
		fs.pruneBackups(key)
	}

	temp := filepath.Join(fs.Root, fmt.Sprintf(".%s.tmp-%d-%d", sanitizeKey(key), os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, value); werr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("write temp file: %w", werr)
	}
	// Windows refuses to rename over an existing file.
	if _, err := os.Stat(p); err == nil {
		_ = os.Remove(p)
	}
	if rerr := os.Rename(temp, p); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace %s: %w", p, rerr)
	}
	return nil
}

// Delete removes the current file; backups stay.
func (fs *FileStore) Delete(key string) error {
	if err := os.Remove(fs.Path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Backups lists backup files for key, oldest first.
func (fs *FileStore) Backups(key string) ([]string, error) {
	bdir := filepath.Join(fs.Root, BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	prefix := sanitizeKey(key) + fileExt + "."
	var out []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".bak") {
			out = append(out, filepath.Join(bdir, name))
		}
	}
	// the timestamp in the name yields lexicographic order
	sort.Strings(out)
	return out, nil
}

func (fs *FileStore) latestBackup(key string) (string, error) {
	all, err := fs.Backups(key)
	if err != nil {
		return "", err
	}
	if len(all) == 0 {
		return "", errors.New("no backups found")
	}
	return all[len(all)-1], nil
}

func (fs *FileStore) pruneBackups(key string) {
	if fs.MaxBackups <= 0 {
		return
	}
	all, err := fs.Backups(key)
	if err != nil || len(all) <= fs.MaxBackups {
		return
	}
	for _, p := range all[:len(all)-fs.MaxBackups] {
		_ = os.Remove(p)
	}
}

// writeFileSync writes data to a file and flushes it to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// copyFile copies src to dst, overwriting dst.
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}
