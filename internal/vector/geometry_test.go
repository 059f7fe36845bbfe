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
	"math"
	"testing"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestRectBasics(t *testing.T) {
	r := R(10, 20, 100, 50)
	if !r.Contains(Pt{10, 20}) || !r.Contains(Pt{110, 70}) {
		t.Fatalf("edge points must be contained")
	}
	if in := r.Inset(5, 5); in != R(15, 25, 90, 40) {
		t.Fatalf("unexpected inset: %+v", in)
	}
	if c := r.Center(); c != (Pt{60, 45}) {
		t.Fatalf("center: %+v", c)
	}
	if u := R(0, 0, 10, 10).Union(R(5, -5, 5, 10)); u != R(0, -5, 10, 15) {
		t.Fatalf("union: %+v", u)
	}
	if !R(0, 0, 10, 10).Intersects(R(9, 9, 5, 5)) || R(0, 0, 10, 10).Intersects(R(10, 0, 5, 5)) {
		t.Fatalf("intersects misbehaves on overlap or shared edge")
	}
}

func TestAffineComposeAndInvert(t *testing.T) {
	m := Translate(10, 5).Mul(Scale(2, 3))
	if p := m.Apply(Pt{1, 1}); p != (Pt{12, 8}) {
		t.Fatalf("apply: %+v", p)
	}
	q := m.Invert().Apply(Pt{12, 8})
	if !near(q.X, 1) || !near(q.Y, 1) {
		t.Fatalf("invert: %+v", q)
	}
	if (Affine2D{}).Invert() != Identity {
		t.Fatalf("singular matrix should invert to identity")
	}
}

func TestObjectTransformRotatesAboutCorner(t *testing.T) {
	m := ObjectTransform(100, 50, 90, 1, 1)
	p := m.Apply(Pt{10, 0})
	if !near(p.X, 100) || !near(p.Y, 60) {
		t.Fatalf("rotated point: %+v", p)
	}
	b := TransformedBounds(ObjectTransform(0, 0, 0, 2, 0.5), R(0, 0, 10, 10))
	if b != R(0, 0, 20, 5) {
		t.Fatalf("scaled bounds: %+v", b)
	}
}

func TestRound(t *testing.T) {
	if Round(1.23456, 2) != 1.23 {
		t.Fatalf("round")
	}
	if Round(1.23456, -1) != 1.23456 {
		t.Fatalf("negative places must be a no-op")
	}
}
