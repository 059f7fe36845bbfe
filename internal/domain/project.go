/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package domain

import (
	"errors"
	"fmt"
)

// EditorPage is a fixed-size canvas. Objects are in z-order, first = bottom.
type EditorPage struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Width           float64        `json:"width"`
	Height          float64        `json:"height"`
	BackgroundColor string         `json:"backgroundColor"`
	Objects         []EditorObject `json:"objects"`
}

// EditorProject is the whole document plus its selection state.
type EditorProject struct {
	Pages            []EditorPage `json:"pages"`
	SelectedPageID   string       `json:"selectedPageId,omitempty"`
	SelectedObjectID string       `json:"selectedObjectId,omitempty"`
}

var (
	ErrDuplicateID       = errors.New("duplicate id")
	ErrDanglingSelection = errors.New("selection references a missing element")
)

// IndexOf returns the position of object id on the page or -1.
func (p *EditorPage) IndexOf(id string) int {
	for i := range p.Objects {
		if p.Objects[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone deep-copies the page. Object ids are kept.
func (p EditorPage) Clone() EditorPage {
	c := p
	if p.Objects != nil {
		c.Objects = make([]EditorObject, len(p.Objects))
		for i := range p.Objects {
			c.Objects[i] = p.Objects[i].Clone()
		}
	}
	return c
}

// Validate checks every object and the uniqueness of object ids.
func (p *EditorPage) Validate() error {
	if p.ID == "" {
		return errors.New("page id is empty")
	}
	if !finite(p.Width) || !finite(p.Height) || p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("page %s: size %gx%g: %w", p.ID, p.Width, p.Height, ErrOutOfRange)
	}
	seen := make(map[string]struct{}, len(p.Objects))
	for i := range p.Objects {
		o := &p.Objects[i]
		if err := o.Validate(); err != nil {
			return fmt.Errorf("page %s: %w", p.ID, err)
		}
		if _, dup := seen[o.ID]; dup {
			return fmt.Errorf("page %s: object %s: %w", p.ID, o.ID, ErrDuplicateID)
		}
		seen[o.ID] = struct{}{}
	}
	return nil
}

// Clone deep-copies the project.
func (pr EditorProject) Clone() EditorProject {
	c := pr
	if pr.Pages != nil {
		c.Pages = make([]EditorPage, len(pr.Pages))
		for i := range pr.Pages {
			c.Pages[i] = pr.Pages[i].Clone()
		}
	}
	return c
}

// PageIndex returns the position of page id or -1.
func (pr *EditorProject) PageIndex(id string) int {
	for i := range pr.Pages {
		if pr.Pages[i].ID == id {
			return i
		}
	}
	return -1
}

// SelectedPage returns the selected page or nil.
func (pr *EditorProject) SelectedPage() *EditorPage {
	if pr.SelectedPageID == "" {
		return nil
	}
	if i := pr.PageIndex(pr.SelectedPageID); i >= 0 {
		return &pr.Pages[i]
	}
	return nil
}

// FindObject scans all pages in order and returns the first match.
func (pr *EditorProject) FindObject(id string) (page, index int, ok bool) {
	if id == "" {
		return -1, -1, false
	}
	for pi := range pr.Pages {
		if oi := pr.Pages[pi].IndexOf(id); oi >= 0 {
			return pi, oi, true
		}
	}
	return -1, -1, false
}

// Object returns a pointer into the project for object id, or nil.
func (pr *EditorProject) Object(id string) *EditorObject {
	pi, oi, ok := pr.FindObject(id)
	if !ok {
		return nil
	}
	return &pr.Pages[pi].Objects[oi]
}

// Normalize replaces nil slices with empty ones so the JSON form always
// carries arrays.
func (pr *EditorProject) Normalize() {
	if pr.Pages == nil {
		pr.Pages = []EditorPage{}
	}
	for i := range pr.Pages {
		if pr.Pages[i].Objects == nil {
			pr.Pages[i].Objects = []EditorObject{}
		}
	}
}

// Validate checks structure and selection references.
func (pr *EditorProject) Validate() error {
	seen := make(map[string]struct{}, len(pr.Pages))
	for i := range pr.Pages {
		pg := &pr.Pages[i]
		if err := pg.Validate(); err != nil {
			return err
		}
		if _, dup := seen[pg.ID]; dup {
			return fmt.Errorf("page %s: %w", pg.ID, ErrDuplicateID)
		}
		seen[pg.ID] = struct{}{}
	}
	if pr.SelectedPageID != "" {
		pg := pr.SelectedPage()
		if pg == nil {
			return fmt.Errorf("selected page %s: %w", pr.SelectedPageID, ErrDanglingSelection)
		}
		if pr.SelectedObjectID != "" && pg.IndexOf(pr.SelectedObjectID) < 0 {
			return fmt.Errorf("selected object %s: %w", pr.SelectedObjectID, ErrDanglingSelection)
		}
	} else if pr.SelectedObjectID != "" {
		return fmt.Errorf("selected object %s without page: %w", pr.SelectedObjectID, ErrDanglingSelection)
	}
	return nil
}

// ObjectCount returns the number of objects over all pages.
func (pr *EditorProject) ObjectCount() int {
	n := 0
	for i := range pr.Pages {
		n += len(pr.Pages[i].Objects)
	}
	return n
}
