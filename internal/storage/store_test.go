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
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestMemoryStore(t *testing.T) {
	m := NewMemoryStore()
	if _, err := m.Get("k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	buf := []byte(`{"a":1}`)
	if err := m.Set("k", buf); err != nil {
		t.Fatalf("Set: %v", err)
	}
	buf[2] = 'x'
	got, err := m.Get("k")
	if err != nil || string(got) != `{"a":1}` {
		t.Fatalf("Get = %q, %v (stored value must be a copy)", got, err)
	}
	if keys := m.Keys(); len(keys) != 1 || keys[0] != "k" {
		t.Fatalf("Keys = %v", keys)
	}
	_ = m.Delete("k")
	if _, err := m.Get("k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestFileStoreSetGet(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if _, err := fs.Get("invitation-editor-project"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := fs.Set("invitation-editor-project", []byte(`{"pages":[]}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := fs.Get("invitation-editor-project")
	if err != nil || string(got) != `{"pages":[]}` {
		t.Fatalf("Get = %q, %v", got, err)
	}
	if _, err := os.Stat(fs.Path("invitation-editor-project")); err != nil {
		t.Fatalf("expected file on disk: %v", err)
	}
}

func TestFileStoreCreatesBackupsAndPrunes(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	fs.MaxBackups = 2
	for i := 0; i < 5; i++ {
		if err := fs.Set("p", []byte(`{"n":`+string(rune('0'+i))+`}`)); err != nil {
			t.Fatalf("Set %d: %v", i, err)
		}
		time.Sleep(2 * time.Millisecond)
	}
	baks, err := fs.Backups("p")
	if err != nil {
		t.Fatalf("Backups: %v", err)
	}
	if len(baks) != 2 {
		t.Fatalf("expected 2 backups after pruning, got %d", len(baks))
	}
	latest, _ := os.ReadFile(baks[len(baks)-1])
	if string(latest) != `{"n":3}` {
		t.Fatalf("latest backup = %q", latest)
	}
}

func TestFileStoreFallsBackToBackup(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	_ = fs.Set("p", []byte(`{"v":1}`))
	time.Sleep(2 * time.Millisecond)
	_ = fs.Set("p", []byte(`{"v":2}`))
	// corrupt the current file
	if err := os.WriteFile(fs.Path("p"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := fs.Get("p")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != `{"v":1}` {
		t.Fatalf("expected backup content, got %q", got)
	}
}

func TestFileStoreSanitizesKeys(t *testing.T) {
	root := t.TempDir()
	fs, _ := NewFileStore(root)
	p := fs.Path("../escape/key")
	if filepath.Dir(p) != root {
		t.Fatalf("key escaped the root: %s", p)
	}
	if err := fs.Delete("missing"); err != nil {
		t.Fatalf("Delete of missing key should succeed: %v", err)
	}
}
