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
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

type Color struct{ R, G, B, A uint8 }

var (
	Black       = Color{0, 0, 0, 255}
	White       = Color{255, 255, 255, 255}
	Transparent = Color{0, 0, 0, 0}
)

// ParseHexColor parses #rgb, #rgba, #rrggbb and #rrggbbaa. The empty
// string and "transparent" yield Transparent.
func ParseHexColor(s string) (Color, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "transparent" || s == "none" {
		return Transparent, nil
	}
	h, ok := strings.CutPrefix(s, "#")
	if !ok {
		return Color{}, fmt.Errorf("color %q: missing #", s)
	}
	if len(h) == 3 || len(h) == 4 {
		var b strings.Builder
		for _, r := range h {
			b.WriteRune(r)
			b.WriteRune(r)
		}
		h = b.String()
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return Color{}, fmt.Errorf("color %q: bad length", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("color %q: %w", s, err)
	}
	return Color{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// ColorOr parses s and falls back to def when s is not a valid color.
func ColorOr(s string, def Color) Color {
	c, err := ParseHexColor(s)
	if err != nil {
		return def
	}
	return c
}

// Hex formats c as #rrggbb, or #rrggbbaa when it is not opaque.
func (c Color) Hex() string {
	if c.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

func (c Color) NRGBA() color.NRGBA { return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A} }

// WithOpacity scales the alpha channel by o in [0,1].
func (c Color) WithOpacity(o float64) Color {
	o = min(max(o, 0), 1)
	c.A = uint8(float64(c.A)*o + 0.5)
	return c
}

type Fill struct {
	Color   Color
	Enabled bool
}

type Stroke struct {
	Color   Color
	Width   float64
	Enabled bool
}

// Solid is an enabled fill of c; a fully transparent c disables it.
func Solid(c Color) Fill { return Fill{Color: c, Enabled: c.A > 0} }

// Outline is an enabled stroke when w is positive and c visible.
func Outline(c Color, w float64) Stroke { return Stroke{Color: c, Width: w, Enabled: w > 0 && c.A > 0} }
