/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package autosave

import (
	"errors"
	"testing"
	"time"

	"inviteeditor/internal/domain"
	"inviteeditor/internal/editor"
	"inviteeditor/internal/storage"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestBurstOfEditsSavesOnce(t *testing.T) {
	store := storage.NewMemoryStore()
	s := editor.New(editor.WithStore(store))
	saved := make(chan error, 4)
	a := New(s, 50*time.Millisecond, OnSave(func(err error) { saved <- err }))
	defer a.Close()

	id, err := s.AddShape(domain.ShapeRect)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	for i := range 10 {
		s.UpdateObjectSilent(id, domain.Move(float64(i), 0))
	}

	select {
	case err := <-saved:
		if err != nil {
			t.Fatalf("save: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("autosave did not run")
	}
	time.Sleep(150 * time.Millisecond)
	if n := a.Saves(); n != 1 {
		t.Fatalf("expected one save, got %d", n)
	}
	if _, err := store.Get(editor.StorageKey); err != nil {
		t.Fatalf("project not in store: %v", err)
	}

	s.AddPage()
	waitFor(t, func() bool { return a.Saves() == 2 })
}

func TestCloseFlushesPendingChanges(t *testing.T) {
	store := storage.NewMemoryStore()
	s := editor.New(editor.WithStore(store))
	a := New(s, time.Hour)

	s.AddPage()
	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if a.Saves() != 1 {
		t.Fatalf("close should save pending changes")
	}
	restored := editor.New(editor.WithStore(store))
	ok, err := restored.LoadFromLocalStorage()
	if err != nil || !ok || len(restored.Project().Pages) != 2 {
		t.Fatalf("restore: ok=%v err=%v", ok, err)
	}

	s.AddPage()
	if err := a.Flush(); err != nil || a.Saves() != 1 {
		t.Fatalf("closed autosaver must not save again")
	}
}

func TestSaveErrorIsKept(t *testing.T) {
	s := editor.New()
	a := New(s, time.Hour)
	defer a.Close()
	if err := a.Flush(); err != nil {
		t.Fatalf("nothing to flush: %v", err)
	}
	s.AddPage()
	if err := a.Flush(); !errors.Is(err, editor.ErrNoStore) {
		t.Fatalf("want ErrNoStore, got %v", err)
	}
	if !errors.Is(a.LastError(), editor.ErrNoStore) {
		t.Fatalf("last error %v", a.LastError())
	}
}
