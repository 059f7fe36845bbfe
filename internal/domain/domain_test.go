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
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"testing"
)

func sampleProject() EditorProject {
	pg := NewPage(1, 0, 0, "")
	txt := NewText("Save the date")
	txt.Text.TextShadow = &TextShadow{Color: "#333333", Blur: 2, OffsetX: 1, OffsetY: 1}
	pg.Objects = append(pg.Objects, txt, NewShape(ShapeTriangle), NewIcon(IconSpec{Name: "heart", Prefix: "fas", SVG: "<svg/>"}), NewImage("https://example.test/a.png"))
	return EditorProject{Pages: []EditorPage{pg}, SelectedPageID: pg.ID}
}

func TestProjectJSONRoundTrip(t *testing.T) {
	p := sampleProject()
	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := ValidateJSON(b); err != nil {
		t.Fatalf("exported project violates schema: %v", err)
	}
	var got EditorProject
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(got, p) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, p)
	}
	if err := got.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestCloneIsDeep(t *testing.T) {
	p := sampleProject()
	c := p.Clone()
	c.Pages[0].Objects[0].Text.Text = "changed"
	c.Pages[0].Objects[0].Text.TextShadow.Blur = 99
	c.Pages[0].Objects[1].Shape.Fill = "#000"
	c.Pages[0].Name = "other"
	if p.Pages[0].Objects[0].Text.Text != "Save the date" || p.Pages[0].Objects[0].Text.TextShadow.Blur != 2 {
		t.Fatalf("text variant shared with clone")
	}
	if p.Pages[0].Objects[1].Shape.Fill == "#000" || p.Pages[0].Name == "other" {
		t.Fatalf("clone shares state with original")
	}
}

func TestValidateRejectsVariantMismatch(t *testing.T) {
	o := NewShape(ShapeRect)
	o.Type = TypeText
	if err := o.Validate(); !errors.Is(err, ErrVariantMismatch) {
		t.Fatalf("expected ErrVariantMismatch, got %v", err)
	}
	o = NewText("x")
	o.Image = &ImageProps{}
	if err := o.Validate(); !errors.Is(err, ErrVariantMismatch) {
		t.Fatalf("two variants should be rejected, got %v", err)
	}
}

func TestValidateDuplicatesAndSelection(t *testing.T) {
	p := sampleProject()
	p.Pages[0].Objects = append(p.Pages[0].Objects, p.Pages[0].Objects[0].Clone())
	if err := p.Validate(); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}

	p = sampleProject()
	p.SelectedObjectID = "missing"
	if err := p.Validate(); !errors.Is(err, ErrDanglingSelection) {
		t.Fatalf("expected ErrDanglingSelection, got %v", err)
	}
	p.SelectedObjectID = ""
	p.SelectedPageID = "missing"
	if err := p.Validate(); !errors.Is(err, ErrDanglingSelection) {
		t.Fatalf("expected ErrDanglingSelection for page, got %v", err)
	}
}

func TestSchemaRejectsUnknownShape(t *testing.T) {
	data := []byte(`{"pages":[{"id":"p","width":10,"height":10,"objects":[
		{"id":"o","type":"shape","left":0,"top":0,"width":1,"height":1,"shape":{"shapeType":"hexagon"}}]}]}`)
	err := ValidateJSON(data)
	if !IsSchemaError(err) {
		t.Fatalf("expected schema error, got %v", err)
	}
}

func TestSchemaRejectsTypeWithoutVariant(t *testing.T) {
	data := []byte(`{"pages":[{"id":"p","width":10,"height":10,"objects":[
		{"id":"o","type":"image","left":0,"top":0,"width":1,"height":1,"text":{"text":"hi"}}]}]}`)
	if err := ValidateJSON(data); !IsSchemaError(err) {
		t.Fatalf("expected schema error, got %v", err)
	}
}

func TestPatchApply(t *testing.T) {
	o := NewText("Hello")
	id := o.ID
	p := ObjectPatch{
		Left:    Ptr(5.0),
		Opacity: Ptr(1.5),
		Text:    &TextPatch{FontWeight: Ptr("bold"), ListType: Ptr(ListNumber)},
		Shape:   &ShapePatch{Fill: Ptr("#ff0000")},
	}
	p.Apply(&o)
	if o.ID != id || o.Type != TypeText {
		t.Fatalf("id or type changed")
	}
	if o.Left != 5 || o.Top != DefaultTop {
		t.Fatalf("position: %v,%v", o.Left, o.Top)
	}
	if o.Opacity != 1 {
		t.Fatalf("opacity should clamp to 1, got %v", o.Opacity)
	}
	if o.Text.FontWeight != "bold" || o.Text.ListType != ListNumber || o.Text.Text != "Hello" {
		t.Fatalf("text patch not applied: %+v", o.Text)
	}
	if o.Shape != nil {
		t.Fatalf("mismatched sub-patch must be ignored")
	}
}

func TestPatchShapeTypeAndShadowRemoval(t *testing.T) {
	s := NewShape(ShapeRect)
	ObjectPatch{Shape: &ShapePatch{ShapeType: Ptr(ShapeCircle)}}.Apply(&s)
	if s.Shape.ShapeType != ShapeCircle || s.SubType() != "shape:circle" {
		t.Fatalf("shape type not patched: %v", s.SubType())
	}
	ObjectPatch{Shape: &ShapePatch{ShapeType: Ptr(ShapeKind("star"))}}.Apply(&s)
	if s.Shape.ShapeType != ShapeCircle {
		t.Fatalf("invalid shape type must be ignored")
	}

	txt := NewText("x")
	ObjectPatch{Text: &TextPatch{TextShadow: &TextShadow{Color: "#000", Blur: 3}}}.Apply(&txt)
	if txt.Text.TextShadow == nil || txt.Text.TextShadow.Blur != 3 {
		t.Fatalf("shadow not set")
	}
	ObjectPatch{Text: &TextPatch{RemoveTextShadow: true}}.Apply(&txt)
	if txt.Text.TextShadow != nil {
		t.Fatalf("shadow not removed")
	}
}

func TestFillPatchAppliesToAnyVariant(t *testing.T) {
	for _, o := range []EditorObject{NewText("a"), NewShape(ShapeCircle), NewIcon(IconSpec{Name: "x"})} {
		Fill("#123456").Apply(&o)
		if o.Fill() != "#123456" {
			t.Fatalf("%s: fill = %q", o.Type, o.Fill())
		}
	}
}

func TestFindObjectScansAllPages(t *testing.T) {
	p := sampleProject()
	second := NewPage(2, 0, 0, "")
	img := NewImage("u")
	second.Objects = append(second.Objects, img)
	p.Pages = append(p.Pages, second)
	pi, oi, ok := p.FindObject(img.ID)
	if !ok || pi != 1 || oi != 0 {
		t.Fatalf("FindObject = %d,%d,%v", pi, oi, ok)
	}
	if p.Object("nope") != nil {
		t.Fatalf("expected nil for unknown id")
	}
	if p.ObjectCount() != 5 {
		t.Fatalf("ObjectCount = %d", p.ObjectCount())
	}
}

func TestNewIDsAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := NewID()
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}

func TestPatchDropsNonFiniteNumbers(t *testing.T) {
	o := NewShape(ShapeRect)
	ObjectPatch{Left: Ptr(math.NaN()), Angle: Ptr(math.Inf(1)), Opacity: Ptr(math.NaN())}.Apply(&o)
	if o.Left != DefaultLeft || o.Angle != 0 || o.Opacity != 1 {
		t.Fatalf("non-finite values leaked into the object: %+v", o)
	}
	if _, err := json.Marshal(o); err != nil {
		t.Fatalf("object must stay encodable: %v", err)
	}
}

func TestPatchDropsNegativeSizes(t *testing.T) {
	s := NewShape(ShapeRect)
	ObjectPatch{
		Width:  Ptr(-10.0),
		Height: Ptr(-1.0),
		Shape:  &ShapePatch{StrokeWidth: Ptr(-1.0), CornerRadius: Ptr(-2.0)},
	}.Apply(&s)
	if s.Width != 150 || s.Height != 150 || s.Shape.StrokeWidth != 0 || s.Shape.CornerRadius != 0 {
		t.Fatalf("negative sizes leaked into the shape: %+v %+v", s, *s.Shape)
	}
	txt := NewText("x")
	ObjectPatch{Text: &TextPatch{FontSize: Ptr(-3.0), TextShadow: &TextShadow{Blur: math.NaN()}}}.Apply(&txt)
	if txt.Text.FontSize != 24 || txt.Text.TextShadow != nil {
		t.Fatalf("bad text values leaked: %+v", *txt.Text)
	}
	ObjectPatch{Width: Ptr(0.0)}.Apply(&s)
	if s.Width != 0 {
		t.Fatalf("zero width is allowed, got %v", s.Width)
	}
}

func TestValidateMatchesSchemaRanges(t *testing.T) {
	cases := []struct {
		name string
		edit func(o *EditorObject)
	}{
		{"negative width", func(o *EditorObject) { o.Width = -10 }},
		{"negative height", func(o *EditorObject) { o.Height = -1 }},
		{"opacity above one", func(o *EditorObject) { o.Opacity = 2 }},
		{"negative opacity", func(o *EditorObject) { o.Opacity = -0.1 }},
		{"nan left", func(o *EditorObject) { o.Left = math.NaN() }},
		{"infinite scale", func(o *EditorObject) { o.ScaleX = math.Inf(-1) }},
		{"negative stroke", func(o *EditorObject) { o.Shape.StrokeWidth = -1 }},
		{"negative corner radius", func(o *EditorObject) { o.Shape.CornerRadius = -1 }},
	}
	for _, c := range cases {
		o := NewShape(ShapeRect)
		c.edit(&o)
		if err := o.Validate(); !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("%s: want ErrOutOfRange, got %v", c.name, err)
		}
		if !math.IsNaN(o.Left) && !math.IsInf(o.ScaleX, 0) {
			pg := NewPage(1, 0, 0, "")
			pg.Objects = append(pg.Objects, o)
			b, err := json.Marshal(EditorProject{Pages: []EditorPage{pg}})
			if err != nil {
				t.Fatalf("%s: marshal: %v", c.name, err)
			}
			if err := ValidateJSON(b); err == nil {
				t.Fatalf("%s: schema accepts what Validate rejects", c.name)
			}
		}
	}

	txt := NewText("x")
	txt.Text.FontSize = -1
	if err := txt.Validate(); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("negative font size: want ErrOutOfRange, got %v", err)
	}
	ok := NewShape(ShapeCircle)
	ok.Width, ok.Opacity, ok.ScaleX = 0, 0, -1
	if err := ok.Validate(); err != nil {
		t.Fatalf("zero size, zero opacity and a flip are valid: %v", err)
	}
}

func TestPageValidateRejectsBadSize(t *testing.T) {
	pg := NewPage(1, 0, 0, "")
	pg.Width = 0
	if err := pg.Validate(); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("zero width: want ErrOutOfRange, got %v", err)
	}
	if got := NewPage(1, math.NaN(), math.Inf(1), ""); got.Width != DefaultPageWidth || got.Height != DefaultPageHeight {
		t.Fatalf("NewPage kept non-finite size %vx%v", got.Width, got.Height)
	}
}
