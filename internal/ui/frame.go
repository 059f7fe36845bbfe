/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"math"
	"strings"

	edcanvas "inviteeditor/internal/canvas"
	"inviteeditor/internal/vector"
)

// Selection frame geometry in surface units.
const (
	HandleSize   = 8.0
	RotateOffset = 24.0
	pageMargin   = 24.0
)

// Frame is the selection frame of one primitive in surface coordinates.
// Corners run nw, ne, se, sw.
type Frame struct {
	Corners [4]vector.Pt
	Rotate  vector.Pt
}

// FrameFor places the selection frame of a at the given zoom.
func FrameFor(a edcanvas.Attrs, zoom float64) Frame {
	sx, sy := a.ScaleX, a.ScaleY
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	m := vector.ObjectTransform(a.Left, a.Top, a.Angle, sx, sy)
	local := [4]vector.Pt{{X: 0, Y: 0}, {X: a.Width, Y: 0}, {X: a.Width, Y: a.Height}, {X: 0, Y: a.Height}}
	var f Frame
	for i, p := range local {
		q := m.Apply(p)
		f.Corners[i] = vector.Pt{X: q.X * zoom, Y: q.Y * zoom}
	}
	nw, ne, sw := f.Corners[0], f.Corners[1], f.Corners[3]
	up := vector.Pt{X: nw.X - sw.X, Y: nw.Y - sw.Y}
	if l := math.Hypot(up.X, up.Y); l > 0 {
		up = vector.Pt{X: up.X / l, Y: up.Y / l}
	} else {
		up = vector.Pt{X: 0, Y: -1}
	}
	f.Rotate = vector.Pt{
		X: (nw.X+ne.X)/2 + up.X*RotateOffset,
		Y: (nw.Y+ne.Y)/2 + up.Y*RotateOffset,
	}
	return f
}

// HandleAt reports which handle of f is under pt. Anything else is a move.
func (f Frame) HandleAt(pt vector.Pt) edcanvas.Handle {
	if near(pt, f.Rotate) {
		return edcanvas.HandleRotate
	}
	handles := [4]edcanvas.Handle{edcanvas.HandleNW, edcanvas.HandleNE, edcanvas.HandleSE, edcanvas.HandleSW}
	for i, c := range f.Corners {
		if near(pt, c) {
			return handles[i]
		}
	}
	return edcanvas.HandleMove
}

func near(a, b vector.Pt) bool {
	return math.Abs(a.X-b.X) <= HandleSize/2+1 && math.Abs(a.Y-b.Y) <= HandleSize/2+1
}

// PageOrigin is where the page's top-left corner sits in a view of the
// given size: centred when it fits, pinned to the margin otherwise.
func PageOrigin(viewW, viewH, pageW, pageH, zoom float64) vector.Pt {
	w, h := pageW*zoom, pageH*zoom
	return vector.Pt{
		X: max((viewW-w)/2, pageMargin),
		Y: max((viewH-h)/2, pageMargin),
	}
}

var namedKeys = map[string]edcanvas.Key{
	"Left":      edcanvas.KeyLeft,
	"Right":     edcanvas.KeyRight,
	"Up":        edcanvas.KeyUp,
	"Down":      edcanvas.KeyDown,
	"Delete":    edcanvas.KeyDelete,
	"BackSpace": edcanvas.KeyBackspace,
	"Escape":    edcanvas.KeyEscape,
}

// KeyFor translates a desktop key name into the editor's key names.
// Single characters are lower-cased.
func KeyFor(name string) (edcanvas.Key, bool) {
	if k, ok := namedKeys[name]; ok {
		return k, true
	}
	if len(name) == 1 {
		return edcanvas.Key(strings.ToLower(name)), true
	}
	return "", false
}
