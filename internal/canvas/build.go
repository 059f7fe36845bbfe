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
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"strings"

	"inviteeditor/internal/domain"
	"inviteeditor/internal/textlayout"
)

// Fallback colours for objects that cannot be drawn.
const (
	FallbackFill   = "#e5e7eb"
	FallbackStroke = "#9ca3af"
)

// DisplayText is the text a text object shows: the stored text with list
// markers applied.
func DisplayText(t *domain.TextProps) string {
	if t == nil {
		return ""
	}
	return textlayout.FormatList(t.Text, t.ListType, t.ListStyle)
}

// BuildPrimitive converts o into a surface primitive. Icons are rasterized
// with icons, which may be nil to skip rasterization.
func BuildPrimitive(o domain.EditorObject, icons *IconRasterizer) (Primitive, error) {
	p := Primitive{ID: o.ID, SubType: o.SubType(), Attrs: commonAttrs(o)}
	switch o.Type {
	case domain.TypeText:
		t := o.Text
		if t == nil {
			return p, domain.ErrVariantMismatch
		}
		p.Kind = KindText
		a := &p.Attrs
		a.Text = DisplayText(t)
		a.Fill = t.Fill
		a.FontFamily, a.FontSize = t.FontFamily, t.FontSize
		a.FontWeight, a.FontStyle = t.FontWeight, t.FontStyle
		a.TextAlign, a.LineHeight = t.TextAlign, t.LineHeight
		a.LetterSpacing, a.WordSpacing = t.LetterSpacing, t.WordSpacing
		a.TextDecoration, a.TextBackground = t.TextDecoration, t.TextBackgroundColor
		if t.TextShadow != nil {
			sh := *t.TextShadow
			a.Shadow = &sh
		}
	case domain.TypeShape:
		s := o.Shape
		if s == nil {
			return p, domain.ErrVariantMismatch
		}
		switch s.ShapeType {
		case domain.ShapeCircle:
			p.Kind = KindEllipse
		case domain.ShapeTriangle:
			p.Kind = KindTriangle
		default:
			p.Kind = KindRect
		}
		p.Attrs.Fill, p.Attrs.Stroke = s.Fill, s.Stroke
		p.Attrs.StrokeWidth, p.Attrs.CornerRadius = s.StrokeWidth, s.CornerRadius
	case domain.TypeIcon:
		ic := o.Icon
		if ic == nil {
			return p, domain.ErrVariantMismatch
		}
		p.Kind = KindIcon
		p.Attrs.Fill = ic.Fill
		if icons != nil {
			img, err := icons.Rasterize(ic.IconSVG, rasterSize(o.Width), rasterSize(o.Height), ic.Fill)
			if err != nil {
				return p, fmt.Errorf("icon %s: %w", ic.IconName, err)
			}
			p.Attrs.Raster = img
		}
	case domain.TypeImage:
		im := o.Image
		if im == nil {
			return p, domain.ErrVariantMismatch
		}
		p.Kind = KindImage
		p.Attrs.ImageURL = im.ImageURL
		if strings.HasPrefix(im.ImageURL, "data:") {
			img, err := decodeDataURL(im.ImageURL)
			if err != nil {
				return p, err
			}
			p.Attrs.Raster = img
		}
	default:
		return p, fmt.Errorf("unknown object type %q", o.Type)
	}
	return p, nil
}

// FallbackPrimitive is the grey placeholder drawn for o when its own
// primitive cannot be built.
func FallbackPrimitive(o domain.EditorObject) Primitive {
	a := commonAttrs(o)
	a.Fill, a.Stroke, a.StrokeWidth = FallbackFill, FallbackStroke, 1
	return Primitive{ID: o.ID, Kind: KindFallback, SubType: o.SubType(), Attrs: a}
}

func commonAttrs(o domain.EditorObject) Attrs {
	return Attrs{
		Left: o.Left, Top: o.Top, Width: o.Width, Height: o.Height,
		Angle: o.Angle, ScaleX: o.ScaleX, ScaleY: o.ScaleY, Opacity: o.Opacity,
	}
}

func rasterSize(v float64) int {
	return max(1, int(math.Ceil(v)))
}

var errDataURL = errors.New("malformed data url")

func decodeDataURL(u string) (image.Image, error) {
	meta, data, ok := strings.Cut(strings.TrimPrefix(u, "data:"), ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, errDataURL
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errDataURL, err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode inline image: %w", err)
	}
	return img, nil
}
