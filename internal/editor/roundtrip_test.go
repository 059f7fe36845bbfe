/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package editor

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"inviteeditor/internal/domain"
	"inviteeditor/internal/storage"
)

// requireReimportable exports s and imports the result into a fresh
// session. Whatever the store accepted must survive the trip.
func requireReimportable(t *testing.T, s *Session, step string) {
	t.Helper()
	data, err := s.ExportProject()
	if err != nil {
		t.Fatalf("%s: export: %v", step, err)
	}
	other := New()
	if err := other.ImportProject(data); err != nil {
		t.Fatalf("%s: exported project does not import: %v", step, err)
	}
	if !reflect.DeepEqual(other.Project().Pages, s.Project().Pages) {
		t.Fatalf("%s: pages changed on the round trip", step)
	}
}

func TestEveryMutationKeepsProjectImportable(t *testing.T) {
	s := New()
	var rect, txt string
	bad := func(edit func(o *domain.EditorObject)) domain.EditorObject {
		o := domain.NewShape(domain.ShapeRect)
		edit(&o)
		return o
	}
	steps := []struct {
		name string
		run  func() error
	}{
		{"add shape", func() (err error) { rect, err = s.AddShape(domain.ShapeRect); return }},
		{"add text", func() (err error) { txt, err = s.AddText("Save the date"); return }},
		{"add icon", func() error { _, err := s.AddIcon(domain.IconSpec{Name: "heart", SVG: "<svg/>"}); return err }},
		{"add image", func() error { _, err := s.AddImage("https://example.com/a.png"); return err }},
		{"negative width", func() error {
			s.UpdateObject(rect, domain.ObjectPatch{Width: domain.Ptr(-10.0), Height: domain.Ptr(-1.0)})
			return nil
		}},
		{"negative stroke and radius", func() error {
			s.UpdateObject(rect, domain.ObjectPatch{Shape: &domain.ShapePatch{StrokeWidth: domain.Ptr(-1.0), CornerRadius: domain.Ptr(-3.0)}})
			return nil
		}},
		{"opacity above one", func() error {
			s.UpdateObjectSilent(rect, domain.ObjectPatch{Opacity: domain.Ptr(5.0)})
			return nil
		}},
		{"negative font size", func() error {
			s.UpdateObject(txt, domain.ObjectPatch{Text: &domain.TextPatch{FontSize: domain.Ptr(-2.0)}})
			return nil
		}},
		{"non-finite position", func() error {
			s.UpdateObject(rect, domain.ObjectPatch{Left: domain.Ptr(math.NaN()), Top: domain.Ptr(math.Inf(1))})
			return nil
		}},
		{"flip", func() error {
			s.UpdateObject(rect, domain.ObjectPatch{ScaleX: domain.Ptr(-1.0)})
			return nil
		}},
		{"merge", func() error { return s.MergeObjectJSON(rect, []byte(`{"left":42,"shape":{"fill":"#00ff00"}}`)) }},
		{"duplicate object", func() error { s.DuplicateObject(txt); return nil }},
		{"move object", func() error { s.MoveObjectUp(rect); s.MoveObjectDown(txt); return nil }},
		{"select", func() error { s.SelectObject(txt); return nil }},
		{"gesture", func() error {
			if err := s.BeginGesture("resize"); err != nil {
				return err
			}
			s.UpdateObjectSilent(rect, domain.ObjectPatch{Width: domain.Ptr(-3.0)})
			s.UpdateObjectSilent(rect, domain.Move(7, 8))
			s.EndGesture()
			return nil
		}},
		{"paste", func() error {
			s.SetClipboard([]domain.EditorObject{domain.NewText("RSVP")})
			_, err := s.Paste()
			return err
		}},
		{"add page", func() error { s.AddPage(); return nil }},
		{"page size", func() error {
			id := s.Project().SelectedPageID
			s.UpdatePage(id, PagePatch{Width: domain.Ptr(math.Inf(1)), Height: domain.Ptr(-5.0)})
			s.UpdatePage(id, PagePatch{Width: domain.Ptr(600.0)})
			return nil
		}},
		{"duplicate page", func() error { s.DuplicatePage(s.Project().Pages[0].ID); return nil }},
		{"move page", func() error { s.MovePage(s.Project().Pages[2].ID, 0); return nil }},
		{"delete page", func() error { s.DeletePage(s.Project().Pages[1].ID); return nil }},
		{"undo", func() error { s.Undo(); s.Undo(); return nil }},
		{"redo", func() error { s.Redo(); return nil }},
	}
	for _, st := range steps {
		if err := st.run(); err != nil {
			t.Fatalf("%s: %v", st.name, err)
		}
		requireReimportable(t, s, st.name)
	}

	rejected := []struct {
		name string
		run  func() error
	}{
		{"opacity 2", func() error { _, err := s.AddObject(bad(func(o *domain.EditorObject) { o.Opacity = 2 })); return err }},
		{"nan left", func() error { _, err := s.AddObject(bad(func(o *domain.EditorObject) { o.Left = math.NaN() })); return err }},
		{"negative height", func() error { _, err := s.AddObject(bad(func(o *domain.EditorObject) { o.Height = -1 })); return err }},
		{"merge negative width", func() error { return s.MergeObjectJSON(rect, []byte(`{"width":-5}`)) }},
		{"merge opacity", func() error { return s.MergeObjectJSON(rect, []byte(`{"opacity":3}`)) }},
		{"paste bad clipboard", func() error {
			s.SetClipboard([]domain.EditorObject{bad(func(o *domain.EditorObject) { o.Width = -1 })})
			_, err := s.Paste()
			return err
		}},
	}
	for _, r := range rejected {
		before := s.Project()
		if err := r.run(); !errors.Is(err, ErrInvalidObject) {
			t.Fatalf("%s: want ErrInvalidObject, got %v", r.name, err)
		}
		if !reflect.DeepEqual(s.Project(), before) {
			t.Fatalf("%s: rejected object changed the project", r.name)
		}
		requireReimportable(t, s, r.name)
	}

	kv := storage.NewMemoryStore()
	s.store = kv
	if err := s.SaveToLocalStorage(); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded := New(WithStore(kv))
	if ok, err := loaded.LoadFromLocalStorage(); !ok || err != nil {
		t.Fatalf("saved project does not load: ok=%v err=%v", ok, err)
	}
}

func TestUnencodableProjectFailsInsteadOfLosingHistory(t *testing.T) {
	s := New()
	mustAdd(t)(s.AddShape(domain.ShapeRect))
	s.mu.Lock()
	s.project.Pages[0].Objects[0].Left = math.NaN()
	s.mu.Unlock()
	depth := s.HistoryStats().UndoDepth

	if id := s.AddPage(); id != "" {
		t.Fatalf("AddPage reported page %q although nothing was committed", id)
	}
	if _, err := s.AddShape(domain.ShapeCircle); !errors.Is(err, ErrSnapshot) {
		t.Fatalf("want ErrSnapshot, got %v", err)
	}
	if err := s.BeginGesture("drag"); !errors.Is(err, ErrSnapshot) {
		t.Fatalf("gesture: want ErrSnapshot, got %v", err)
	}
	p := s.Project()
	if len(p.Pages) != 1 || len(p.Pages[0].Objects) != 1 {
		t.Fatalf("failed mutations were committed: %d pages, %d objects", len(p.Pages), len(p.Pages[0].Objects))
	}
	if s.HistoryStats().UndoDepth != depth {
		t.Fatalf("history depth moved from %d to %d", depth, s.HistoryStats().UndoDepth)
	}
}
