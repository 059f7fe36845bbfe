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
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"inviteeditor/internal/domain"
)

func TestDisplayTextListScenario(t *testing.T) {
	o := domain.NewText("Hello")
	domain.ObjectPatch{Text: &domain.TextPatch{ListType: domain.Ptr("number")}}.Apply(&o)
	if got := DisplayText(o.Text); got != "1. Hello" {
		t.Fatalf("numbered: %q", got)
	}
	domain.ObjectPatch{Text: &domain.TextPatch{ListType: domain.Ptr("bullet"), ListStyle: domain.Ptr("square")}}.Apply(&o)
	if got := DisplayText(o.Text); got != "■ Hello" {
		t.Fatalf("square bullet: %q", got)
	}
	if o.Text.Text != "Hello" {
		t.Fatalf("stored text must not change, got %q", o.Text.Text)
	}
}

func TestBuildPrimitiveKinds(t *testing.T) {
	cases := []struct {
		obj  domain.EditorObject
		kind Kind
	}{
		{domain.NewShape(domain.ShapeRect), KindRect},
		{domain.NewShape(domain.ShapeCircle), KindEllipse},
		{domain.NewShape(domain.ShapeTriangle), KindTriangle},
		{domain.NewText("x"), KindText},
		{domain.NewImage("https://example.com/a.png"), KindImage},
	}
	for _, c := range cases {
		p, err := BuildPrimitive(c.obj, nil)
		if err != nil {
			t.Fatalf("%s: %v", c.kind, err)
		}
		if p.Kind != c.kind || p.ID != c.obj.ID || p.SubType != c.obj.SubType() {
			t.Fatalf("unexpected primitive %+v", p)
		}
		if p.Attrs.Left != c.obj.Left || p.Attrs.Width != c.obj.Width || p.Attrs.Opacity != 1 {
			t.Fatalf("common attrs not copied: %+v", p.Attrs)
		}
	}
}

func TestBuildPrimitiveTextAttrs(t *testing.T) {
	o := domain.NewText("Anna\nBen")
	o.Text.TextShadow = &domain.TextShadow{Color: "#000000", Blur: 3}
	o.Text.ListType = "bullet"
	p, err := BuildPrimitive(o, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if p.Attrs.Text != "• Anna\n• Ben" || p.Attrs.FontFamily != "Arial" || p.Attrs.FontSize != 24 {
		t.Fatalf("text attrs: %+v", p.Attrs)
	}
	o.Text.TextShadow.Blur = 9
	if p.Attrs.Shadow.Blur != 3 {
		t.Fatalf("shadow must be copied")
	}
}

func TestBadIconFailsAndFallbackKeepsGeometry(t *testing.T) {
	o := domain.NewIcon(domain.IconSpec{Name: "broken", SVG: "<svg><path d="})
	if _, err := BuildPrimitive(o, NewIconRasterizer(4)); err == nil {
		t.Fatalf("expected an error for malformed svg")
	}
	fb := FallbackPrimitive(o)
	if fb.Kind != KindFallback || fb.Attrs.Width != o.Width || fb.Attrs.Fill != FallbackFill {
		t.Fatalf("unexpected fallback %+v", fb)
	}
}

func TestInlineImageIsDecoded(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	o := domain.NewImage("data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()))
	p, err := BuildPrimitive(o, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if p.Attrs.Raster == nil || p.Attrs.Raster.Bounds().Dx() != 2 {
		t.Fatalf("inline image not decoded")
	}
	_, err = BuildPrimitive(domain.NewImage("data:image/png,raw"), nil)
	if !errors.Is(err, errDataURL) {
		t.Fatalf("want errDataURL, got %v", err)
	}
}
