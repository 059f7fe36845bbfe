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
	"slices"

	"inviteeditor/internal/domain"
)

// SelectPage selects page id and clears the object selection. Unknown ids
// and the already selected page are no-ops.
func (s *Session) SelectPage(id string) {
	_ = s.mutate("select_page", s.selectionHistory, func(p *domain.EditorProject) (bool, error) {
		if p.SelectedPageID == id || p.PageIndex(id) < 0 {
			return false, nil
		}
		p.SelectedPageID = id
		p.SelectedObjectID = ""
		return true, nil
	})
}

// SelectObject selects object id, switching to its page when needed. An
// empty id clears the object selection.
func (s *Session) SelectObject(id string) {
	_ = s.mutate("select_object", s.selectionHistory, func(p *domain.EditorProject) (bool, error) {
		if id == "" {
			if p.SelectedObjectID == "" {
				return false, nil
			}
			p.SelectedObjectID = ""
			return true, nil
		}
		pi, _, ok := p.FindObject(id)
		if !ok || (p.SelectedObjectID == id && p.SelectedPageID == p.Pages[pi].ID) {
			return false, nil
		}
		p.SelectedPageID = p.Pages[pi].ID
		p.SelectedObjectID = id
		return true, nil
	})
}

// SelectedObject returns a copy of the selected object.
func (s *Session) SelectedObject() (domain.EditorObject, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := s.project.Object(s.project.SelectedObjectID)
	if o == nil {
		return domain.EditorObject{}, false
	}
	return o.Clone(), true
}

// SetMultiSelection replaces the multi-selection with the ids that exist on
// the selected page. It never records history.
func (s *Session) SetMultiSelection(ids []string) {
	s.mu.Lock()
	pg := s.project.SelectedPage()
	seen := make(map[string]bool, len(ids))
	var kept []string
	for _, id := range ids {
		if seen[id] || pg == nil || pg.IndexOf(id) < 0 {
			continue
		}
		seen[id] = true
		kept = append(kept, id)
	}
	if slices.Equal(kept, s.multi) {
		s.mu.Unlock()
		return
	}
	s.multi = kept
	n := s.withMultiLocked(notification{})
	s.mu.Unlock()
	n.fire()
}

// MultiSelection returns the current multi-selection.
func (s *Session) MultiSelection() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.multi...)
}
