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

import (
	"image"
	"math"
	"testing"
)

func TestRectNodeHitAndBounds(t *testing.T) {
	n := NewRect(R(0, 0, 100, 50), Solid(White), Outline(Black, 1))
	n.SetTransform(Translate(10, 20))
	if !n.Hit(Pt{60, 45}) {
		t.Fatalf("expected hit after translation")
	}
	if b := n.Bounds(); b != R(10, 20, 100, 50) {
		t.Fatalf("unexpected bounds: %+v", b)
	}
}

func TestRoundedRectCorners(t *testing.T) {
	n := NewRoundedRect(R(0, 0, 100, 100), 20, Solid(Black), Stroke{})
	if !n.Hit(Pt{10, 10}) || !n.Hit(Pt{50, 1}) {
		t.Fatalf("expected hits inside the rounded shape")
	}
	if n.Hit(Pt{1, 1}) {
		t.Fatalf("corner cut-out should miss")
	}
	if NewRoundedRect(R(0, 0, 10, 40), 99, Fill{}, Stroke{}).Radius != 5 {
		t.Fatalf("radius must be clamped to half the short side")
	}
}

func TestEllipseNodeHit(t *testing.T) {
	n := NewEllipse(R(0, 0, 100, 100), Solid(Black), Stroke{})
	if !n.Hit(Pt{50, 50}) || n.Hit(Pt{2, 2}) {
		t.Fatalf("ellipse hit test wrong")
	}
	n.SetTransform(Translate(5, -3))
	if b := n.Bounds(); b != R(5, -3, 100, 100) {
		t.Fatalf("transformed bounds: %+v", b)
	}
}

func TestTrianglePathHit(t *testing.T) {
	n := NewPath(Triangle(R(0, 0, 100, 100)), Solid(Black), Stroke{})
	if !n.Hit(Pt{50, 60}) {
		t.Fatalf("centre of triangle should hit")
	}
	if n.Hit(Pt{5, 5}) {
		t.Fatalf("top-left corner is outside the triangle")
	}
	if b := n.Bounds(); b != R(0, 0, 100, 100) {
		t.Fatalf("bounds: %+v", b)
	}
}

func TestRotatedTextAndRasterHit(t *testing.T) {
	txt := NewText(R(0, 0, 100, 20), []string{"Hello"}, Solid(Black))
	txt.SetTransform(ObjectTransform(0, 0, 90, 1, 1))
	if !txt.Hit(Pt{-10, 50}) || txt.Hit(Pt{50, 10}) {
		t.Fatalf("rotated text hit test wrong")
	}
	r := NewRaster(R(0, 0, 10, 10), image.NewRGBA(image.Rect(0, 0, 1, 1)))
	r.SetTransform(Translate(100, 100).Mul(Rotate(math.Pi)))
	if !r.Hit(Pt{95, 95}) {
		t.Fatalf("raster rotated by 180 degrees should cover the upper-left quadrant")
	}
}
