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

// Text measurement and line breaking for text objects, isolated behind a
// Provider so tests stay deterministic with the basic 7x13 face.

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// FontSpec describes a requested font.
type FontSpec struct {
	Family string
	SizePx float32
	Weight int // 100..900
	Italic bool
}

// SpecFor maps the CSS-like attributes of a text object to a FontSpec.
func SpecFor(family string, size float64, weight, style string) FontSpec {
	w := 400
	switch strings.ToLower(weight) {
	case "bold", "bolder", "700", "800", "900":
		w = 700
	case "lighter", "300", "200", "100":
		w = 300
	}
	return FontSpec{Family: family, SizePx: float32(size), Weight: w, Italic: strings.EqualFold(style, "italic")}
}

// Metrics provides font metrics in pixels for the resolved face.
type Metrics struct {
	Ascent, Descent, LineGap float32
}

// Provider maps FontSpec to a concrete font.Face.
type Provider interface {
	Resolve(FontSpec) (font.Face, Metrics)
}

// BasicProvider uses x/image/basicfont Face7x13 for deterministic output.
type BasicProvider struct{}

func (BasicProvider) Resolve(FontSpec) (font.Face, Metrics) {
	f := basicfont.Face7x13
	m := f.Metrics()
	return f, Metrics{
		Ascent:  float32(m.Ascent.Round()),
		Descent: float32(m.Descent.Round()),
		LineGap: float32(m.Height.Round() - m.Ascent.Round() - m.Descent.Round()),
	}
}

// Params are the spacing attributes of a text object.
type Params struct {
	Font          FontSpec
	LetterSpacing float32 // px added between glyphs
	WordSpacing   float32 // px added per space
	LineHeight    float32 // multiplier of ascent+descent; 0 means 1
}

// Line is a single laid out line.
type Line struct {
	Text  string
	Width float32
}

// TextBox is the result of laying out text into a box width.
type TextBox struct {
	Lines       []Line
	Width       float32
	Height      float32
	LineAdvance float32
	Metrics     Metrics
}

// Layout breaks text on explicit newlines and wraps words that would exceed
// maxWidth. A maxWidth <= 0 disables wrapping. Words wider than the box get
// a line of their own.
func Layout(p Provider, text string, par Params, maxWidth float32) TextBox {
	if p == nil {
		p = BasicProvider{}
	}
	face, met := p.Resolve(par.Font)
	d := &font.Drawer{Face: face}
	lh := par.LineHeight
	if lh <= 0 {
		lh = 1
	}
	box := TextBox{Metrics: met, LineAdvance: (met.Ascent + met.Descent) * lh}
	measure := func(s string) float32 { return width(d, s, par) }

	for _, para := range strings.Split(text, "\n") {
		words := strings.Split(para, " ")
		cur := ""
		for _, w := range words {
			cand := w
			if cur != "" {
				cand = cur + " " + w
			}
			if maxWidth > 0 && cur != "" && measure(cand) > maxWidth {
				box.Lines = append(box.Lines, Line{Text: cur, Width: measure(cur)})
				cur = w
				continue
			}
			cur = cand
		}
		box.Lines = append(box.Lines, Line{Text: cur, Width: measure(cur)})
	}
	for _, ln := range box.Lines {
		if ln.Width > box.Width {
			box.Width = ln.Width
		}
	}
	box.Height = box.LineAdvance * float32(len(box.Lines))
	return box
}

func width(d *font.Drawer, s string, par Params) float32 {
	if s == "" {
		return 0
	}
	w := advance(d, s)
	if n := utf8.RuneCountInString(s); n > 1 {
		w += par.LetterSpacing * float32(n-1)
	}
	w += par.WordSpacing * float32(strings.Count(s, " "))
	return w
}

func advance(d *font.Drawer, s string) float32 {
	return float32(d.MeasureString(s).Round())
}

// Measure returns the width and height of text without wrapping.
func Measure(p Provider, text string, par Params) (w, h float32) {
	box := Layout(p, text, par, 0)
	return box.Width, box.Height
}
