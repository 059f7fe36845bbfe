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

import "math"

// ObjectPatch is a partial update of an EditorObject. Nil fields are left
// untouched. A variant sub-patch only applies to objects of that variant;
// the id and type are never patched.
type ObjectPatch struct {
	Left    *float64 `json:"left,omitempty"`
	Top     *float64 `json:"top,omitempty"`
	Width   *float64 `json:"width,omitempty"`
	Height  *float64 `json:"height,omitempty"`
	Angle   *float64 `json:"angle,omitempty"`
	ScaleX  *float64 `json:"scaleX,omitempty"`
	ScaleY  *float64 `json:"scaleY,omitempty"`
	Opacity *float64 `json:"opacity,omitempty"`

	Text  *TextPatch  `json:"text,omitempty"`
	Shape *ShapePatch `json:"shape,omitempty"`
	Icon  *IconPatch  `json:"icon,omitempty"`
	Image *ImagePatch `json:"image,omitempty"`
}

type TextPatch struct {
	Text                *string     `json:"text,omitempty"`
	FontSize            *float64    `json:"fontSize,omitempty"`
	FontFamily          *string     `json:"fontFamily,omitempty"`
	FontWeight          *string     `json:"fontWeight,omitempty"`
	FontStyle           *string     `json:"fontStyle,omitempty"`
	Fill                *string     `json:"fill,omitempty"`
	TextBackgroundColor *string     `json:"textBackgroundColor,omitempty"`
	TextAlign           *string     `json:"textAlign,omitempty"`
	LineHeight          *float64    `json:"lineHeight,omitempty"`
	LetterSpacing       *float64    `json:"letterSpacing,omitempty"`
	WordSpacing         *float64    `json:"wordSpacing,omitempty"`
	TextDecoration      *string     `json:"textDecoration,omitempty"`
	TextShadow          *TextShadow `json:"textShadow,omitempty"`
	// RemoveTextShadow clears the shadow; it wins over TextShadow.
	RemoveTextShadow bool    `json:"removeTextShadow,omitempty"`
	ListType         *string `json:"listType,omitempty"`
	ListStyle        *string `json:"listStyle,omitempty"`
}

type ShapePatch struct {
	ShapeType    *ShapeKind `json:"shapeType,omitempty"`
	Fill         *string    `json:"fill,omitempty"`
	Stroke       *string    `json:"stroke,omitempty"`
	StrokeWidth  *float64   `json:"strokeWidth,omitempty"`
	CornerRadius *float64   `json:"cornerRadius,omitempty"`
}

type IconPatch struct {
	IconSVG    *string `json:"iconSvg,omitempty"`
	IconName   *string `json:"iconName,omitempty"`
	IconPrefix *string `json:"iconPrefix,omitempty"`
	Fill       *string `json:"fill,omitempty"`
}

type ImagePatch struct {
	ImageURL *string `json:"imageUrl,omitempty"`
}

// Move is a patch that sets the position.
func Move(left, top float64) ObjectPatch {
	return ObjectPatch{Left: &left, Top: &top}
}

// Fill returns a patch setting the fill color of whatever variant it is applied to.
func Fill(color string) ObjectPatch {
	return ObjectPatch{
		Text:  &TextPatch{Fill: &color},
		Shape: &ShapePatch{Fill: &color},
		Icon:  &IconPatch{Fill: &color},
	}
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// setF is set for floats; non-finite values are dropped so a project
// always stays JSON-encodable.
func setF(dst *float64, v *float64) {
	if v != nil && finite(*v) {
		*dst = *v
	}
}

// setSize is setF for fields that must stay non-negative; negative values
// are dropped.
func setSize(dst *float64, v *float64) {
	if v != nil && finite(*v) && *v >= 0 {
		*dst = *v
	}
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// Apply merges p into o.
func (p ObjectPatch) Apply(o *EditorObject) {
	setF(&o.Left, p.Left)
	setF(&o.Top, p.Top)
	setSize(&o.Width, p.Width)
	setSize(&o.Height, p.Height)
	setF(&o.Angle, p.Angle)
	setF(&o.ScaleX, p.ScaleX)
	setF(&o.ScaleY, p.ScaleY)
	if p.Opacity != nil && finite(*p.Opacity) {
		o.Opacity = clamp01(*p.Opacity)
	}
	if p.Text != nil && o.Text != nil {
		p.Text.apply(o.Text)
	}
	if p.Shape != nil && o.Shape != nil {
		t := p.Shape
		if t.ShapeType != nil && t.ShapeType.Valid() {
			o.Shape.ShapeType = *t.ShapeType
		}
		set(&o.Shape.Fill, t.Fill)
		set(&o.Shape.Stroke, t.Stroke)
		setSize(&o.Shape.StrokeWidth, t.StrokeWidth)
		setSize(&o.Shape.CornerRadius, t.CornerRadius)
	}
	if p.Icon != nil && o.Icon != nil {
		set(&o.Icon.IconSVG, p.Icon.IconSVG)
		set(&o.Icon.IconName, p.Icon.IconName)
		set(&o.Icon.IconPrefix, p.Icon.IconPrefix)
		set(&o.Icon.Fill, p.Icon.Fill)
	}
	if p.Image != nil && o.Image != nil {
		set(&o.Image.ImageURL, p.Image.ImageURL)
	}
}

func (t *TextPatch) apply(dst *TextProps) {
	set(&dst.Text, t.Text)
	setSize(&dst.FontSize, t.FontSize)
	set(&dst.FontFamily, t.FontFamily)
	set(&dst.FontWeight, t.FontWeight)
	set(&dst.FontStyle, t.FontStyle)
	set(&dst.Fill, t.Fill)
	set(&dst.TextBackgroundColor, t.TextBackgroundColor)
	set(&dst.TextAlign, t.TextAlign)
	setF(&dst.LineHeight, t.LineHeight)
	setF(&dst.LetterSpacing, t.LetterSpacing)
	setF(&dst.WordSpacing, t.WordSpacing)
	set(&dst.TextDecoration, t.TextDecoration)
	switch {
	case t.RemoveTextShadow:
		dst.TextShadow = nil
	case t.TextShadow != nil && t.TextShadow.finite():
		s := *t.TextShadow
		dst.TextShadow = &s
	}
	set(&dst.ListType, t.ListType)
	set(&dst.ListStyle, t.ListStyle)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func (sh *TextShadow) finite() bool {
	return finite(sh.Blur) && finite(sh.OffsetX) && finite(sh.OffsetY)
}
