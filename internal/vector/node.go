/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package vector

import "image"

// Node is one drawable item of a scene. Geometry is kept in local
// coordinates; the transform maps it onto the page.
type Node interface {
	Bounds() Rect
	Transform() Affine2D
	SetTransform(Affine2D)
	Fill() Fill
	Stroke() Stroke
	SetFill(Fill)
	SetStroke(Stroke)
	Hit(p Pt) bool
}

type baseNode struct {
	xf     Affine2D
	fill   Fill
	stroke Stroke
}

func newBase(f Fill, s Stroke) baseNode { return baseNode{xf: Identity, fill: f, stroke: s} }

func (b *baseNode) Transform() Affine2D     { return b.xf }
func (b *baseNode) SetTransform(m Affine2D) { b.xf = m }
func (b *baseNode) Fill() Fill              { return b.fill }
func (b *baseNode) Stroke() Stroke          { return b.stroke }
func (b *baseNode) SetFill(f Fill)          { b.fill = f }
func (b *baseNode) SetStroke(s Stroke)      { b.stroke = s }

// local maps a page point into the node's local space.
func (b *baseNode) local(p Pt) Pt { return b.xf.Invert().Apply(p) }

// RectNode is a rectangle, optionally with rounded corners.
type RectNode struct {
	baseNode
	Rect   Rect
	Radius float64
}

func NewRect(r Rect, f Fill, s Stroke) *RectNode {
	return &RectNode{baseNode: newBase(f, s), Rect: r}
}

func NewRoundedRect(r Rect, radius float64, f Fill, s Stroke) *RectNode {
	n := NewRect(r, f, s)
	n.Radius = min(max(radius, 0), r.W/2, r.H/2)
	return n
}

func (n *RectNode) Bounds() Rect { return TransformedBounds(n.xf, n.Rect) }

func (n *RectNode) Hit(p Pt) bool {
	q := n.local(p)
	if !n.Rect.Contains(q) {
		return false
	}
	if n.Radius <= 0 {
		return true
	}
	core := n.Rect.Inset(n.Radius, n.Radius)
	if (q.X >= core.X && q.X <= core.X+core.W) || (q.Y >= core.Y && q.Y <= core.Y+core.H) {
		return true
	}
	r2 := n.Radius * n.Radius
	for _, cx := range []float64{core.X, core.X + core.W} {
		for _, cy := range []float64{core.Y, core.Y + core.H} {
			dx, dy := q.X-cx, q.Y-cy
			if dx*dx+dy*dy <= r2 {
				return true
			}
		}
	}
	return false
}

// EllipseNode is the ellipse inscribed in Rect.
type EllipseNode struct {
	baseNode
	Rect Rect
}

func NewEllipse(r Rect, f Fill, s Stroke) *EllipseNode {
	return &EllipseNode{baseNode: newBase(f, s), Rect: r}
}

func (n *EllipseNode) Bounds() Rect { return TransformedBounds(n.xf, n.Rect) }

func (n *EllipseNode) Hit(p Pt) bool {
	q := n.local(p)
	rx, ry := n.Rect.W/2, n.Rect.H/2
	if rx == 0 || ry == 0 {
		return false
	}
	c := n.Rect.Center()
	dx, dy := (q.X-c.X)/rx, (q.Y-c.Y)/ry
	return dx*dx+dy*dy <= 1
}

// PathNode draws a path. Hit-testing treats the path as a polygon through
// its points.
type PathNode struct {
	baseNode
	Path Path
}

func NewPath(p Path, f Fill, s Stroke) *PathNode {
	return &PathNode{baseNode: newBase(f, s), Path: p}
}

func (n *PathNode) Bounds() Rect { return TransformedBounds(n.xf, n.Path.Bounds()) }

func (n *PathNode) Hit(p Pt) bool {
	q := n.local(p)
	poly := n.Path.Points()
	if len(poly) < 3 {
		return n.Path.Bounds().Contains(q)
	}
	in := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		a, b := poly[i], poly[j]
		if (a.Y > q.Y) != (b.Y > q.Y) && q.X < (b.X-a.X)*(q.Y-a.Y)/(b.Y-a.Y)+a.X {
			in = !in
		}
	}
	return in
}

// TextNode is a block of laid-out lines inside Box. Fill is the glyph colour.
type TextNode struct {
	baseNode
	Box        Rect
	Lines      []string
	Family     string
	Size       float64
	Weight     string
	Style      string
	Align      string
	LineHeight float64
	Decoration string
	Background Color
}

func NewText(box Rect, lines []string, f Fill) *TextNode {
	return &TextNode{baseNode: newBase(f, Stroke{}), Box: box, Lines: lines, Size: 16, LineHeight: 1.2}
}

func (n *TextNode) Bounds() Rect  { return TransformedBounds(n.xf, n.Box) }
func (n *TextNode) Hit(p Pt) bool { return n.Box.Contains(n.local(p)) }

// RasterNode draws Img scaled into Box. A nil Img is drawn as an empty frame.
type RasterNode struct {
	baseNode
	Box Rect
	Img image.Image
	// Source describes where the pixels came from, e.g. an image URL.
	Source string
}

func NewRaster(box Rect, img image.Image) *RasterNode {
	return &RasterNode{baseNode: newBase(Fill{}, Stroke{}), Box: box, Img: img}
}

func (n *RasterNode) Bounds() Rect  { return TransformedBounds(n.xf, n.Box) }
func (n *RasterNode) Hit(p Pt) bool { return n.Box.Contains(n.local(p)) }
