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
	"fmt"
	"reflect"
	"slices"

	"inviteeditor/internal/domain"
	"inviteeditor/internal/textlayout"
)

// AddObject appends obj to the top of the selected page and selects it. An
// empty or colliding id is replaced by a fresh one; the id actually used is
// returned.
func (s *Session) AddObject(obj domain.EditorObject) (string, error) {
	obj = obj.Clone()
	var id string
	err := s.mutate("add_object", true, func(p *domain.EditorProject) (bool, error) {
		pg := p.SelectedPage()
		if pg == nil {
			return false, ErrNoSelectedPage
		}
		if obj.ID == "" || p.Object(obj.ID) != nil {
			obj.ID = domain.NewID()
		}
		if err := obj.Validate(); err != nil {
			return false, fmt.Errorf("%w: %v", ErrInvalidObject, err)
		}
		pg.Objects = append(pg.Objects, obj)
		p.SelectedObjectID = obj.ID
		id = obj.ID
		return true, nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// AddShape adds a default shape of the given kind.
func (s *Session) AddShape(kind domain.ShapeKind) (string, error) {
	return s.AddObject(domain.NewShape(kind))
}

// AddImage adds an image object pointing at url.
func (s *Session) AddImage(url string) (string, error) {
	return s.AddObject(domain.NewImage(url))
}

// AddIcon adds an icon object from spec.
func (s *Session) AddIcon(spec domain.IconSpec) (string, error) {
	return s.AddObject(domain.NewIcon(spec))
}

// AddText adds a text object with the default font.
func (s *Session) AddText(text string) (string, error) {
	return s.AddObject(domain.NewText(text))
}

// AddTextPreset adds a text object styled by a builtin text preset. Unknown
// presets fall back to the default font.
func (s *Session) AddTextPreset(preset, text string) (string, error) {
	o := domain.NewText(text)
	if ps, ok := textlayout.GetPreset(preset); ok {
		o.Text.FontFamily = ps.FontFamily
		o.Text.FontSize = ps.FontSize
		o.Text.FontWeight = ps.FontWeight
		o.Text.FontStyle = ps.FontStyle
		o.Text.TextAlign = ps.TextAlign
		o.Text.LineHeight = ps.LineHeight
		o.Text.LetterSpacing = ps.LetterSpacing
	}
	return s.AddObject(o)
}

// UpdateObject applies patch to object id wherever it lives. Unknown ids
// and patches that change nothing are no-ops.
func (s *Session) UpdateObject(id string, patch domain.ObjectPatch) {
	_ = s.mutate("update_object", true, patchFn(id, patch))
}

// UpdateObjectSilent is UpdateObject without a history entry. It is meant
// for pointer-driven updates inside a gesture.
func (s *Session) UpdateObjectSilent(id string, patch domain.ObjectPatch) {
	_ = s.mutate("update_object_silent", false, patchFn(id, patch))
}

func patchFn(id string, patch domain.ObjectPatch) func(*domain.EditorProject) (bool, error) {
	return func(p *domain.EditorProject) (bool, error) {
		o := p.Object(id)
		if o == nil {
			return false, nil
		}
		before := o.Clone()
		patch.Apply(o)
		return !reflect.DeepEqual(before, *o), nil
	}
}

// DeleteObject removes object id and clears the selection if it pointed at it.
func (s *Session) DeleteObject(id string) {
	s.DeleteObjects([]string{id})
}

// DeleteObjects removes every listed object as one undoable step. Unknown
// ids are skipped; nothing is recorded when none matched.
func (s *Session) DeleteObjects(ids []string) {
	if len(ids) == 0 {
		return
	}
	op := "delete_objects"
	if len(ids) == 1 {
		op = "delete_object"
	}
	_ = s.mutate(op, true, func(p *domain.EditorProject) (bool, error) {
		changed := false
		for _, id := range ids {
			pi, oi, ok := p.FindObject(id)
			if !ok {
				continue
			}
			p.Pages[pi].Objects = slices.Delete(p.Pages[pi].Objects, oi, oi+1)
			if p.SelectedObjectID == id {
				p.SelectedObjectID = ""
			}
			changed = true
		}
		return changed, nil
	})
}

// DuplicateObject inserts a copy of object id right above it, shifted by
// DuplicateOffset on both axes, and selects it. It returns the new id or ""
// when id is unknown.
func (s *Session) DuplicateObject(id string) string {
	var newID string
	err := s.mutate("duplicate_object", true, func(p *domain.EditorProject) (bool, error) {
		pi, oi, ok := p.FindObject(id)
		if !ok {
			return false, nil
		}
		pg := &p.Pages[pi]
		cp := pg.Objects[oi].Clone()
		cp.ID = domain.NewID()
		cp.Left += DuplicateOffset
		cp.Top += DuplicateOffset
		pg.Objects = slices.Insert(pg.Objects, oi+1, cp)
		p.SelectedPageID = pg.ID
		p.SelectedObjectID = cp.ID
		newID = cp.ID
		return true, nil
	})
	if err != nil {
		return ""
	}
	return newID
}

// MoveObjectUp swaps object id with the object above it in z-order.
func (s *Session) MoveObjectUp(id string) {
	_ = s.mutate("move_object_up", true, func(p *domain.EditorProject) (bool, error) {
		return swapObject(p, id, 1), nil
	})
}

// MoveObjectDown swaps object id with the object below it in z-order.
func (s *Session) MoveObjectDown(id string) {
	_ = s.mutate("move_object_down", true, func(p *domain.EditorProject) (bool, error) {
		return swapObject(p, id, -1), nil
	})
}

func swapObject(p *domain.EditorProject, id string, dir int) bool {
	pi, oi, ok := p.FindObject(id)
	if !ok {
		return false
	}
	objs := p.Pages[pi].Objects
	j := oi + dir
	if j < 0 || j >= len(objs) {
		return false
	}
	objs[oi], objs[j] = objs[j], objs[oi]
	return true
}
