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

	"inviteeditor/internal/domain"
)

// SetClipboard stores copies of objs. The clipboard is session scratch
// state and never part of the history.
func (s *Session) SetClipboard(objs []domain.EditorObject) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clipboard = cloneObjects(objs)
	s.pasteCount = 0
}

// Clipboard returns copies of the clipboard contents.
func (s *Session) Clipboard() []domain.EditorObject {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneObjects(s.clipboard)
}

func (s *Session) ClearClipboard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clipboard = nil
	s.pasteCount = 0
}

// CopySelection puts the multi-selection, or else the selected object, on
// the clipboard. It reports how many objects were copied.
func (s *Session) CopySelection() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var objs []domain.EditorObject
	if pg := s.project.SelectedPage(); pg != nil {
		for _, id := range s.multi {
			if i := pg.IndexOf(id); i >= 0 {
				objs = append(objs, pg.Objects[i])
			}
		}
	}
	if len(objs) == 0 {
		if o := s.project.Object(s.project.SelectedObjectID); o != nil {
			objs = append(objs, *o)
		}
	}
	if len(objs) == 0 {
		return 0
	}
	s.clipboard = cloneObjects(objs)
	s.pasteCount = 0
	return len(objs)
}

// Paste adds the clipboard objects to the selected page with fresh ids.
// The n-th paste since the clipboard was set is offset by n times
// DuplicateOffset. The last pasted object is selected and the clipboard is
// left as is. A clipboard object that fails validation aborts the paste
// with ErrInvalidObject.
func (s *Session) Paste() ([]string, error) {
	var ids []string
	err := s.mutate("paste", true, func(p *domain.EditorProject) (bool, error) {
		if len(s.clipboard) == 0 {
			return false, nil
		}
		pg := p.SelectedPage()
		if pg == nil {
			return false, ErrNoSelectedPage
		}
		off := DuplicateOffset * float64(s.pasteCount+1)
		for _, o := range s.clipboard {
			cp := o.Clone()
			cp.ID = domain.NewID()
			cp.Left += off
			cp.Top += off
			if err := cp.Validate(); err != nil {
				ids = nil
				return false, fmt.Errorf("%w: %v", ErrInvalidObject, err)
			}
			pg.Objects = append(pg.Objects, cp)
			ids = append(ids, cp.ID)
		}
		p.SelectedObjectID = ids[len(ids)-1]
		s.pasteCount++
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func cloneObjects(objs []domain.EditorObject) []domain.EditorObject {
	if len(objs) == 0 {
		return nil
	}
	out := make([]domain.EditorObject, len(objs))
	for i := range objs {
		out[i] = objs[i].Clone()
	}
	return out
}
