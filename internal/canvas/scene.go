/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"fmt"
	"slices"
	"sync"

	"inviteeditor/internal/domain"
	"inviteeditor/internal/textlayout"
	"inviteeditor/internal/vector"
)

// Scene is an in-memory Surface backed by vector nodes. It serves headless
// sessions, exports and tests.
type Scene struct {
	mu       sync.Mutex
	prims    map[string]Primitive
	nodes    map[string]vector.Node
	order    []string
	selected []string
	fonts    textlayout.Provider
	renders  int
}

// NewScene creates an empty scene. fonts measures text for line wrapping;
// nil uses the basic fixed face.
func NewScene(fonts textlayout.Provider) *Scene {
	if fonts == nil {
		fonts = textlayout.BasicProvider{}
	}
	return &Scene{prims: make(map[string]Primitive), nodes: make(map[string]vector.Node), fonts: fonts}
}

func (s *Scene) Add(p Primitive) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.prims[p.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicatePrimitive, p.ID)
	}
	s.prims[p.ID] = p
	s.order = append(s.order, p.ID)
	return nil
}

func (s *Scene) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.prims[id]; !ok {
		return
	}
	delete(s.prims, id)
	delete(s.nodes, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	s.selected = slices.DeleteFunc(s.selected, func(v string) bool { return v == id })
}

func (s *Scene) Get(id string) (Primitive, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.prims[id]
	return p, ok
}

func (s *Scene) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.order)
}

func (s *Scene) SetAttrs(id string, a Attrs) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.prims[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPrimitive, id)
	}
	p.Attrs = a
	s.prims[id] = p
	delete(s.nodes, id)
	return nil
}

func (s *Scene) Reorder(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[string]bool, len(ids))
	next := make([]string, 0, len(s.order))
	for _, id := range ids {
		if _, ok := s.prims[id]; ok && !seen[id] {
			seen[id] = true
			next = append(next, id)
		}
	}
	for _, id := range s.order {
		if !seen[id] {
			next = append(next, id)
		}
	}
	s.order = next
}

// HitTest returns the topmost primitive containing p.
func (s *Scene) HitTest(p vector.Pt) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.order) - 1; i >= 0; i-- {
		id := s.order[i]
		if s.nodeLocked(id).Hit(p) {
			return id, true
		}
	}
	return "", false
}

func (s *Scene) Select(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = s.selected[:0]
	for _, id := range ids {
		if _, ok := s.prims[id]; ok {
			s.selected = append(s.selected, id)
		}
	}
}

func (s *Scene) Selected() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.selected)
}

// Render rebuilds the nodes of changed primitives.
func (s *Scene) Render() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.order {
		s.nodeLocked(id)
	}
	s.renders++
	return nil
}

// Renders counts Render calls.
func (s *Scene) Renders() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renders
}

// Nodes returns the scene's nodes bottom to top.
func (s *Scene) Nodes() []vector.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]vector.Node, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.nodeLocked(id))
	}
	return out
}

func (s *Scene) nodeLocked(id string) vector.Node {
	if n, ok := s.nodes[id]; ok {
		return n
	}
	n := NodeFor(s.prims[id], s.fonts)
	s.nodes[id] = n
	return n
}

// NodeFor builds the vector node drawing p.
func NodeFor(p Primitive, fonts textlayout.Provider) vector.Node {
	a := p.Attrs
	box := vector.R(0, 0, a.Width, a.Height)
	fill := vector.Solid(vector.ColorOr(a.Fill, vector.Black).WithOpacity(a.Opacity))
	stroke := vector.Outline(vector.ColorOr(a.Stroke, vector.Transparent).WithOpacity(a.Opacity), a.StrokeWidth)
	var n vector.Node
	switch p.Kind {
	case KindRect:
		n = vector.NewRoundedRect(box, a.CornerRadius, fill, stroke)
	case KindEllipse:
		n = vector.NewEllipse(box, fill, stroke)
	case KindTriangle:
		n = vector.NewPath(vector.Triangle(box), fill, stroke)
	case KindText:
		tn := vector.NewText(box, textLines(a, fonts), fill)
		tn.Family, tn.Size = a.FontFamily, a.FontSize
		tn.Weight, tn.Style = a.FontWeight, a.FontStyle
		tn.Align, tn.LineHeight = a.TextAlign, a.LineHeight
		tn.Decoration = a.TextDecoration
		tn.Background = vector.ColorOr(a.TextBackground, vector.Transparent)
		n = tn
	case KindIcon, KindImage:
		rn := vector.NewRaster(box, a.Raster)
		rn.Source = a.ImageURL
		n = rn
	default:
		n = vector.NewRect(box,
			vector.Solid(vector.ColorOr(FallbackFill, vector.White)),
			vector.Outline(vector.ColorOr(FallbackStroke, vector.Black), 1))
	}
	n.SetTransform(vector.ObjectTransform(a.Left, a.Top, a.Angle, nonZero(a.ScaleX), nonZero(a.ScaleY)))
	return n
}

// textLines wraps a's text to its box width. A nil provider measures with
// textlayout.BasicProvider.
func textLines(a Attrs, fonts textlayout.Provider) []string {
	if fonts == nil {
		fonts = textlayout.BasicProvider{}
	}
	par := textlayout.Params{
		Font:          textlayout.SpecFor(a.FontFamily, a.FontSize, a.FontWeight, a.FontStyle),
		LetterSpacing: float32(a.LetterSpacing),
		WordSpacing:   float32(a.WordSpacing),
		LineHeight:    float32(a.LineHeight),
	}
	box := textlayout.Layout(fonts, a.Text, par, float32(a.Width))
	lines := make([]string, len(box.Lines))
	for i, l := range box.Lines {
		lines[i] = l.Text
	}
	return lines
}

// PageNodes builds the nodes of every object on pg, bottom to top, using
// fallbacks for objects that cannot be drawn.
func PageNodes(pg domain.EditorPage, icons *IconRasterizer, fonts textlayout.Provider) []vector.Node {
	out := make([]vector.Node, 0, len(pg.Objects))
	for _, o := range pg.Objects {
		p, err := BuildPrimitive(o, icons)
		if err != nil {
			p = FallbackPrimitive(o)
		}
		out = append(out, NodeFor(p, fonts))
	}
	return out
}
