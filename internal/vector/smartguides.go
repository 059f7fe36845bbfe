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

// Smart guides align a dragged object with the page and its siblings. They
// carry no UI state so every frontend can share them.

import "math"

type SnapOptions struct {
	// Threshold is the largest distance that still snaps. Zero means 6.
	Threshold     float64
	SnapToEdges   bool
	SnapToCenters bool
}

// Anchor is a static reference rectangle. On equal distance the higher
// Weight wins.
type Anchor struct {
	Rect   Rect
	Weight float64
}

// GuideLine is a guide to draw while snapped. Orientation is "vertical" or
// "horizontal"; Kind is "edge" or "center".
type GuideLine struct {
	Orientation string
	Kind        string
	Position    float64
	From        Pt
	To          Pt
}

// PageAnchors returns the anchors for a page of the given size plus the
// rectangles of the other objects on it. The page gets a higher weight.
func PageAnchors(w, h float64, others []Rect) []Anchor {
	out := make([]Anchor, 0, len(others)+1)
	out = append(out, Anchor{Rect: R(0, 0, w, h), Weight: 2})
	for _, r := range others {
		out = append(out, Anchor{Rect: r, Weight: 1})
	}
	return out
}

type axisBest struct {
	delta float64
	score float64
	dist  float64
	guide GuideLine
	found bool
}

func (b *axisBest) consider(delta, threshold, weight float64, g GuideLine) {
	dist := math.Abs(delta)
	if dist > threshold {
		return
	}
	score := dist / max(1, weight)
	if !b.found || score < b.score {
		*b = axisBest{delta: delta, score: score, dist: dist, guide: g, found: true}
	}
}

// ComputeSmartGuides snaps moving against anchors on each axis
// independently and returns the snapped rectangle plus the guides that
// explain it.
func ComputeSmartGuides(moving Rect, anchors []Anchor, opts SnapOptions) (Rect, []GuideLine) {
	if opts.Threshold <= 0 {
		opts.Threshold = 6
	}
	var bx, by axisBest
	mc := moving.Center()
	ml, mr, mt, mb := moving.X, moving.X+moving.W, moving.Y, moving.Y+moving.H
	for _, a := range anchors {
		ac := a.Rect.Center()
		al, ar, at, ab := a.Rect.X, a.Rect.X+a.Rect.W, a.Rect.Y, a.Rect.Y+a.Rect.H
		if opts.SnapToEdges {
			for _, c := range [][2]float64{{ml, al}, {mr, ar}, {ml, ar}, {mr, al}} {
				bx.consider(c[0]-c[1], opts.Threshold, a.Weight, vertical(c[1], moving, a.Rect, "edge"))
			}
			for _, c := range [][2]float64{{mt, at}, {mb, ab}, {mt, ab}, {mb, at}} {
				by.consider(c[0]-c[1], opts.Threshold, a.Weight, horizontal(c[1], moving, a.Rect, "edge"))
			}
		}
		if opts.SnapToCenters {
			bx.consider(mc.X-ac.X, opts.Threshold, a.Weight, vertical(ac.X, moving, a.Rect, "center"))
			by.consider(mc.Y-ac.Y, opts.Threshold, a.Weight, horizontal(ac.Y, moving, a.Rect, "center"))
		}
	}
	snapped := moving
	var guides []GuideLine
	if bx.found {
		snapped.X = Round(moving.X-bx.delta, 3)
		guides = append(guides, bx.guide)
	}
	if by.found {
		snapped.Y = Round(moving.Y-by.delta, 3)
		guides = append(guides, by.guide)
	}
	return snapped, guides
}

func vertical(x float64, a, b Rect, kind string) GuideLine {
	x = Round(x, 3)
	return GuideLine{
		Orientation: "vertical",
		Kind:        kind,
		Position:    x,
		From:        Pt{x, min(a.Y, b.Y)},
		To:          Pt{x, max(a.Y+a.H, b.Y+b.H)},
	}
}

func horizontal(y float64, a, b Rect, kind string) GuideLine {
	y = Round(y, 3)
	return GuideLine{
		Orientation: "horizontal",
		Kind:        kind,
		Position:    y,
		From:        Pt{min(a.X, b.X), y},
		To:          Pt{max(a.X+a.W, b.X+b.W), y},
	}
}
