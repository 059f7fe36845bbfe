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
	"fmt"
	"image"
	"image/color"
	"strings"
	"sync"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"inviteeditor/internal/vector"
)

var ErrEmptyIcon = errors.New("icon svg has nothing to draw")

// IconRasterizer turns icon SVG markup into tinted bitmaps and caches the
// results. Cached images are shared and must not be modified.
type IconRasterizer struct {
	mu      sync.Mutex
	cache   map[iconKey]*image.RGBA
	maxSize int
}

type iconKey struct {
	svg  string
	w, h int
	tint string
}

// NewIconRasterizer creates a rasterizer keeping at most maxEntries images.
func NewIconRasterizer(maxEntries int) *IconRasterizer {
	if maxEntries <= 0 {
		maxEntries = 256
	}
	return &IconRasterizer{cache: make(map[iconKey]*image.RGBA), maxSize: maxEntries}
}

// Rasterize draws svg into a w×h bitmap. A non-empty tint recolours every
// drawn pixel, keeping its coverage.
func (r *IconRasterizer) Rasterize(svg string, w, h int, tint string) (*image.RGBA, error) {
	k := iconKey{svg: svg, w: w, h: h, tint: tint}
	r.mu.Lock()
	if img, ok := r.cache[k]; ok {
		r.mu.Unlock()
		return img, nil
	}
	r.mu.Unlock()

	img, err := rasterizeSVG(svg, w, h, tint)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	if len(r.cache) >= r.maxSize {
		clear(r.cache)
	}
	r.cache[k] = img
	r.mu.Unlock()
	return img, nil
}

// Len reports the number of cached bitmaps.
func (r *IconRasterizer) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cache)
}

func rasterizeSVG(svg string, w, h int, tint string) (*image.RGBA, error) {
	if strings.TrimSpace(svg) == "" {
		return nil, ErrEmptyIcon
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("icon size %dx%d", w, h)
	}
	icon, err := oksvg.ReadIconStream(strings.NewReader(svg), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("parse icon svg: %w", err)
	}
	if len(icon.SVGPaths) == 0 {
		return nil, ErrEmptyIcon
	}
	icon.SetTarget(0, 0, float64(w), float64(h))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1)
	if tint != "" {
		c, err := vector.ParseHexColor(tint)
		if err != nil {
			return nil, fmt.Errorf("icon tint: %w", err)
		}
		tintImage(img, c)
	}
	return img, nil
}

// tintImage replaces the colour of every pixel with c, scaled by the pixel's alpha.
func tintImage(img *image.RGBA, c vector.Color) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			a := uint32(img.RGBAAt(x, y).A)
			if a == 0 {
				continue
			}
			a = a * uint32(c.A) / 255
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(uint32(c.R) * a / 255),
				G: uint8(uint32(c.G) * a / 255),
				B: uint8(uint32(c.B) * a / 255),
				A: uint8(a),
			})
		}
	}
}
