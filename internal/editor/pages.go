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
	"math"
	"slices"

	"inviteeditor/internal/domain"
)

// PagePatch changes page properties; nil fields are left alone.
type PagePatch struct {
	Name            *string
	Width           *float64
	Height          *float64
	BackgroundColor *string
}

// UpdateProject replaces the whole project. The replacement must have at
// least one page and satisfy the model invariants.
func (s *Session) UpdateProject(next domain.EditorProject) error {
	next = next.Clone()
	next.Normalize()
	if len(next.Pages) == 0 {
		return fmt.Errorf("%w: project has no pages", ErrInvalidProject)
	}
	if err := next.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProject, err)
	}
	return s.mutate("update_project", true, func(p *domain.EditorProject) (bool, error) {
		*p = next
		return true, nil
	})
}

// AddPage appends a default page, selects it and returns its id.
func (s *Session) AddPage() string {
	var id string
	err := s.mutate("add_page", true, func(p *domain.EditorProject) (bool, error) {
		pg := s.newPage(len(p.Pages) + 1)
		id = pg.ID
		p.Pages = append(p.Pages, pg)
		p.SelectedPageID = pg.ID
		p.SelectedObjectID = ""
		return true, nil
	})
	if err != nil {
		return ""
	}
	return id
}

// DuplicatePage inserts a deep copy of page id right after it and selects
// the copy. The copy and its objects get fresh ids. It returns "" when id
// is unknown.
func (s *Session) DuplicatePage(id string) string {
	var newID string
	err := s.mutate("duplicate_page", true, func(p *domain.EditorProject) (bool, error) {
		i := p.PageIndex(id)
		if i < 0 {
			return false, nil
		}
		cp := p.Pages[i].Clone()
		cp.ID = domain.NewID()
		cp.Name = p.Pages[i].Name + " (copy)"
		for j := range cp.Objects {
			cp.Objects[j].ID = domain.NewID()
		}
		p.Pages = slices.Insert(p.Pages, i+1, cp)
		p.SelectedPageID = cp.ID
		p.SelectedObjectID = ""
		newID = cp.ID
		return true, nil
	})
	if err != nil {
		return ""
	}
	return newID
}

// DeletePage removes page id. Deleting the last page leaves a fresh default
// page behind. When the selected page goes, the previous page is selected,
// or the next one when it was first.
func (s *Session) DeletePage(id string) {
	_ = s.mutate("delete_page", true, func(p *domain.EditorProject) (bool, error) {
		i := p.PageIndex(id)
		if i < 0 {
			return false, nil
		}
		wasSelected := p.SelectedPageID == id
		p.Pages = slices.Delete(p.Pages, i, i+1)
		if len(p.Pages) == 0 {
			pg := s.newPage(1)
			p.Pages = append(p.Pages, pg)
			p.SelectedPageID = pg.ID
			p.SelectedObjectID = ""
			return true, nil
		}
		if wasSelected {
			j := i - 1
			if j < 0 {
				j = 0
			}
			p.SelectedPageID = p.Pages[j].ID
			p.SelectedObjectID = ""
		}
		return true, nil
	})
}

// UpdatePage applies patch to page id. Non-positive or non-finite sizes
// are ignored.
func (s *Session) UpdatePage(id string, patch PagePatch) {
	_ = s.mutate("update_page", true, func(p *domain.EditorProject) (bool, error) {
		i := p.PageIndex(id)
		if i < 0 {
			return false, nil
		}
		pg := &p.Pages[i]
		before := *pg
		if patch.Name != nil {
			pg.Name = *patch.Name
		}
		if validSize(patch.Width) {
			pg.Width = *patch.Width
		}
		if validSize(patch.Height) {
			pg.Height = *patch.Height
		}
		if patch.BackgroundColor != nil {
			pg.BackgroundColor = *patch.BackgroundColor
		}
		return pg.Name != before.Name || pg.Width != before.Width ||
			pg.Height != before.Height || pg.BackgroundColor != before.BackgroundColor, nil
	})
}

func validSize(v *float64) bool {
	return v != nil && *v > 0 && !math.IsInf(*v, 1)
}

// MovePage moves page id to position to, clamped to the page range.
func (s *Session) MovePage(id string, to int) {
	_ = s.mutate("move_page", true, func(p *domain.EditorProject) (bool, error) {
		i := p.PageIndex(id)
		if i < 0 {
			return false, nil
		}
		if to < 0 {
			to = 0
		}
		if to >= len(p.Pages) {
			to = len(p.Pages) - 1
		}
		if to == i {
			return false, nil
		}
		pg := p.Pages[i]
		p.Pages = slices.Insert(slices.Delete(p.Pages, i, i+1), to, pg)
		return true, nil
	})
}
