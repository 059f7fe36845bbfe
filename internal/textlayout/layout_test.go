/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"testing"

	"golang.org/x/image/font/gofont/goregular"
)

func TestLayoutWrapsWords(t *testing.T) {
	box := Layout(BasicProvider{}, "Hello world from Go", Params{}, 50)
	if len(box.Lines) < 2 {
		t.Fatalf("expected wrapping into multiple lines, got %d", len(box.Lines))
	}
	if box.Width <= 0 || box.Height <= 0 {
		t.Fatalf("expected positive box size: %+v", box)
	}
	for _, ln := range box.Lines {
		if ln.Width > 50 && len(ln.Text) > 0 && ln.Text != "Hello" && ln.Text != "world" {
			t.Fatalf("line %q exceeds width: %v", ln.Text, ln.Width)
		}
	}
}

func TestLayoutKeepsExplicitNewlines(t *testing.T) {
	box := Layout(BasicProvider{}, "a\n\nb", Params{}, 0)
	if len(box.Lines) != 3 || box.Lines[1].Text != "" {
		t.Fatalf("expected 3 lines with a blank middle, got %+v", box.Lines)
	}
}

func TestSpacingIncreasesSize(t *testing.T) {
	w0, h0 := Measure(BasicProvider{}, "AB CD", Params{})
	w1, _ := Measure(BasicProvider{}, "AB CD", Params{LetterSpacing: 1})
	w2, _ := Measure(BasicProvider{}, "AB CD", Params{WordSpacing: 5})
	if !(w1 > w0) || w2 != w0+5 {
		t.Fatalf("spacing not applied: w0=%v w1=%v w2=%v", w0, w1, w2)
	}
	_, h3 := Measure(BasicProvider{}, "AB CD", Params{LineHeight: 2})
	if h3 != 2*h0 {
		t.Fatalf("line height multiplier not applied: h0=%v h3=%v", h0, h3)
	}
}

func TestSpecFor(t *testing.T) {
	s := SpecFor("Lora", 18, "bold", "italic")
	if s.Weight != 700 || !s.Italic || s.SizePx != 18 {
		t.Fatalf("unexpected spec %+v", s)
	}
	if SpecFor("Lora", 18, "normal", "normal").Weight != 400 {
		t.Fatalf("normal weight should map to 400")
	}
}

func TestOTProviderFallback(t *testing.T) {
	otp := OTProvider{Lib: NewFontLibrary()}
	w, h := Measure(otp, "Hello", Params{Font: FontSpec{Family: "Nonexistent", SizePx: 12}})
	if w <= 0 || h <= 0 {
		t.Fatalf("expected positive measure with fallback: w=%v h=%v", w, h)
	}
}

func TestOTProviderUsesLoadedFont(t *testing.T) {
	lib := NewFontLibrary()
	if err := lib.LoadBytes("Go", 400, false, goregular.TTF); err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}
	if lib.Len() != 1 {
		t.Fatalf("expected one font, got %d", lib.Len())
	}
	otp := OTProvider{Lib: lib}
	small, _ := Measure(otp, "Hello", Params{Font: FontSpec{Family: "go", SizePx: 12}})
	large, _ := Measure(otp, "Hello", Params{Font: FontSpec{Family: "GO", SizePx: 48, Weight: 700}})
	if !(large > small*3) {
		t.Fatalf("expected size to scale width: small=%v large=%v", small, large)
	}
}

func TestBuiltinPresets(t *testing.T) {
	names := ListPresets()
	if len(names) != 3 {
		t.Fatalf("expected 3 presets, got %v", names)
	}
	for _, n := range names {
		p, ok := GetPreset(n)
		if !ok || p.FontSize <= 0 || p.Name != n {
			t.Fatalf("preset %s invalid: %+v", n, p)
		}
	}
	if _, ok := GetPreset("Missing"); ok {
		t.Fatalf("unexpected preset")
	}
}
