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
	"errors"
	"slices"
	"testing"

	"inviteeditor/internal/domain"
	"inviteeditor/internal/vector"
)

func rectPrim(id string, left, top, w, h float64) Primitive {
	return Primitive{ID: id, Kind: KindRect, SubType: "shape:rect", Attrs: Attrs{
		Left: left, Top: top, Width: w, Height: h, ScaleX: 1, ScaleY: 1, Opacity: 1, Fill: "#000000",
	}}
}

func TestSceneAddRemoveReorder(t *testing.T) {
	sc := NewScene(nil)
	for _, id := range []string{"a", "b", "c"} {
		if err := sc.Add(rectPrim(id, 0, 0, 10, 10)); err != nil {
			t.Fatalf("add %s: %v", id, err)
		}
	}
	if err := sc.Add(rectPrim("a", 0, 0, 1, 1)); !errors.Is(err, ErrDuplicatePrimitive) {
		t.Fatalf("duplicate add: %v", err)
	}
	if err := sc.SetAttrs("nope", Attrs{}); !errors.Is(err, ErrUnknownPrimitive) {
		t.Fatalf("unknown set: %v", err)
	}
	sc.Reorder([]string{"c", "x", "a"})
	if got := sc.IDs(); !slices.Equal(got, []string{"c", "a", "b"}) {
		t.Fatalf("order %v", got)
	}
	sc.Select([]string{"a", "ghost"})
	sc.Remove("a")
	sc.Remove("a")
	if got := sc.IDs(); !slices.Equal(got, []string{"c", "b"}) {
		t.Fatalf("after remove %v", got)
	}
	if len(sc.Selected()) != 0 {
		t.Fatalf("removed primitive still selected")
	}
}

func TestSceneHitTest(t *testing.T) {
	sc := NewScene(nil)
	_ = sc.Add(rectPrim("under", 0, 0, 100, 100))
	_ = sc.Add(rectPrim("over", 50, 50, 100, 100))
	if id, ok := sc.HitTest(vector.Pt{X: 75, Y: 75}); !ok || id != "over" {
		t.Fatalf("topmost: %q %v", id, ok)
	}
	sc.Reorder([]string{"over", "under"})
	if id, _ := sc.HitTest(vector.Pt{X: 75, Y: 75}); id != "under" {
		t.Fatalf("after reorder: %q", id)
	}
	if _, ok := sc.HitTest(vector.Pt{X: 500, Y: 500}); ok {
		t.Fatalf("miss expected")
	}

	rot := rectPrim("rot", 0, 0, 100, 10)
	rot.Attrs.Angle = 90
	sc = NewScene(nil)
	_ = sc.Add(rot)
	if _, ok := sc.HitTest(vector.Pt{X: -5, Y: 50}); !ok {
		t.Fatalf("rotated rect should cover (-5,50)")
	}
	if _, ok := sc.HitTest(vector.Pt{X: 50, Y: 5}); ok {
		t.Fatalf("rotated rect should not cover (50,5)")
	}
}

func TestSceneSetAttrsRebuildsNode(t *testing.T) {
	sc := NewScene(nil)
	_ = sc.Add(rectPrim("a", 0, 0, 10, 10))
	if err := sc.Render(); err != nil {
		t.Fatalf("render: %v", err)
	}
	p, _ := sc.Get("a")
	p.Attrs.Left = 200
	if err := sc.SetAttrs("a", p.Attrs); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, ok := sc.HitTest(vector.Pt{X: 205, Y: 5}); !ok {
		t.Fatalf("moved primitive not hit at new position")
	}
	if sc.Renders() != 1 {
		t.Fatalf("renders %d", sc.Renders())
	}
}

func TestPageNodes(t *testing.T) {
	pg := domain.NewPage(1, 0, 0, "")
	pg.Objects = []domain.EditorObject{
		domain.NewShape(domain.ShapeRect),
		domain.NewShape(domain.ShapeCircle),
		domain.NewShape(domain.ShapeTriangle),
		domain.NewText("one two three four five six seven eight nine ten eleven twelve"),
		domain.NewIcon(domain.IconSpec{Name: "bad", SVG: ""}),
	}
	nodes := PageNodes(pg, NewIconRasterizer(4), nil)
	if len(nodes) != 5 {
		t.Fatalf("nodes: %d", len(nodes))
	}
	if _, ok := nodes[0].(*vector.RectNode); !ok {
		t.Fatalf("rect: %T", nodes[0])
	}
	if _, ok := nodes[1].(*vector.EllipseNode); !ok {
		t.Fatalf("ellipse: %T", nodes[1])
	}
	if _, ok := nodes[2].(*vector.PathNode); !ok {
		t.Fatalf("triangle: %T", nodes[2])
	}
	tn, ok := nodes[3].(*vector.TextNode)
	if !ok || len(tn.Lines) < 2 {
		t.Fatalf("text should wrap to the box width: %T %+v", nodes[3], tn)
	}
	fb, ok := nodes[4].(*vector.RectNode)
	if !ok || fb.Fill().Color != vector.ColorOr(FallbackFill, vector.White) {
		t.Fatalf("icon fallback: %T", nodes[4])
	}
	if b := nodes[0].Bounds(); b.X != 100 || b.Y != 100 || b.W != 150 {
		t.Fatalf("bounds %+v", b)
	}
}
