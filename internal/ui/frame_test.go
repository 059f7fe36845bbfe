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
	"testing"

	edcanvas "inviteeditor/internal/canvas"
	"inviteeditor/internal/vector"
)

func closeTo(a, b vector.Pt) bool {
	return math.Abs(a.X-b.X) < 1e-6 && math.Abs(a.Y-b.Y) < 1e-6
}

func TestFrameForScalesWithZoom(t *testing.T) {
	f := FrameFor(edcanvas.Attrs{Left: 100, Top: 50, Width: 40, Height: 20}, 2)
	want := [4]vector.Pt{{X: 200, Y: 100}, {X: 280, Y: 100}, {X: 280, Y: 140}, {X: 200, Y: 140}}
	for i := range want {
		if !closeTo(f.Corners[i], want[i]) {
			t.Fatalf("corner %d = %+v, want %+v", i, f.Corners[i], want[i])
		}
	}
	if !closeTo(f.Rotate, vector.Pt{X: 240, Y: 100 - RotateOffset}) {
		t.Fatalf("rotate handle = %+v", f.Rotate)
	}
}

func TestFrameForRotatedObject(t *testing.T) {
	f := FrameFor(edcanvas.Attrs{Left: 100, Top: 100, Width: 50, Height: 10, Angle: 90}, 1)
	if !closeTo(f.Corners[1], vector.Pt{X: 100, Y: 150}) {
		t.Fatalf("ne corner after 90deg = %+v", f.Corners[1])
	}
	// Rotated 90deg clockwise, "up" points to +X.
	if !closeTo(f.Rotate, vector.Pt{X: 100 + RotateOffset, Y: 125}) {
		t.Fatalf("rotate handle = %+v", f.Rotate)
	}
}

func TestHandleAt(t *testing.T) {
	f := FrameFor(edcanvas.Attrs{Left: 10, Top: 10, Width: 100, Height: 100}, 1)
	cases := []struct {
		pt   vector.Pt
		want edcanvas.Handle
	}{
		{vector.Pt{X: 11, Y: 9}, edcanvas.HandleNW},
		{vector.Pt{X: 110, Y: 10}, edcanvas.HandleNE},
		{vector.Pt{X: 108, Y: 112}, edcanvas.HandleSE},
		{vector.Pt{X: 10, Y: 110}, edcanvas.HandleSW},
		{vector.Pt{X: 60, Y: 10 - RotateOffset}, edcanvas.HandleRotate},
		{vector.Pt{X: 60, Y: 60}, edcanvas.HandleMove},
	}
	for _, c := range cases {
		if got := f.HandleAt(c.pt); got != c.want {
			t.Fatalf("HandleAt(%+v) = %v, want %v", c.pt, got, c.want)
		}
	}
}

func TestPageOrigin(t *testing.T) {
	if got := PageOrigin(1000, 800, 400, 300, 1); !closeTo(got, vector.Pt{X: 300, Y: 250}) {
		t.Fatalf("centred origin = %+v", got)
	}
	if got := PageOrigin(500, 500, 800, 1120, 1); !closeTo(got, vector.Pt{X: pageMargin, Y: pageMargin}) {
		t.Fatalf("oversized page origin = %+v", got)
	}
}

func TestKeyFor(t *testing.T) {
	if k, ok := KeyFor("BackSpace"); !ok || k != edcanvas.KeyBackspace {
		t.Fatalf("BackSpace -> %q %v", k, ok)
	}
	if k, ok := KeyFor("Z"); !ok || k != "z" {
		t.Fatalf("Z -> %q %v", k, ok)
	}
	if _, ok := KeyFor("F12"); ok {
		t.Fatalf("F12 should not map")
	}
}
