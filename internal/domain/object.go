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

// This file defines the drawable object model of an invitation page.
// An EditorObject carries the common geometry plus exactly one variant
// payload selected by Type.

import (
	"errors"
	"fmt"
)

// ObjectType discriminates the EditorObject variants.
type ObjectType string

const (
	TypeText  ObjectType = "text"
	TypeShape ObjectType = "shape"
	TypeIcon  ObjectType = "icon"
	TypeImage ObjectType = "image"
)

// ShapeKind is the sub-type of a shape object.
type ShapeKind string

const (
	ShapeRect     ShapeKind = "rect"
	ShapeCircle   ShapeKind = "circle"
	ShapeTriangle ShapeKind = "triangle"
)

// Valid reports whether k is one of the supported shape kinds.
func (k ShapeKind) Valid() bool {
	switch k {
	case ShapeRect, ShapeCircle, ShapeTriangle:
		return true
	}
	return false
}

// List types used by text objects. An empty ListType means plain text.
const (
	ListNone   = "none"
	ListBullet = "bullet"
	ListNumber = "number"
)

type TextShadow struct {
	Color   string  `json:"color"`
	Blur    float64 `json:"blur"`
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
}

type TextProps struct {
	Text                string      `json:"text"`
	FontSize            float64     `json:"fontSize"`
	FontFamily          string      `json:"fontFamily"`
	FontWeight          string      `json:"fontWeight"` // normal | bold
	FontStyle           string      `json:"fontStyle"`  // normal | italic
	Fill                string      `json:"fill"`
	TextBackgroundColor string      `json:"textBackgroundColor,omitempty"`
	TextAlign           string      `json:"textAlign"` // left | center | right | justify
	LineHeight          float64     `json:"lineHeight"`
	LetterSpacing       float64     `json:"letterSpacing"`
	WordSpacing         float64     `json:"wordSpacing"`
	TextDecoration      string      `json:"textDecoration,omitempty"` // underline | line-through
	TextShadow          *TextShadow `json:"textShadow,omitempty"`
	ListType            string      `json:"listType,omitempty"`
	ListStyle           string      `json:"listStyle,omitempty"`
}

type ShapeProps struct {
	ShapeType    ShapeKind `json:"shapeType"`
	Fill         string    `json:"fill"`
	Stroke       string    `json:"stroke,omitempty"`
	StrokeWidth  float64   `json:"strokeWidth"`
	CornerRadius float64   `json:"cornerRadius"`
}

type IconProps struct {
	IconSVG    string `json:"iconSvg"`
	IconName   string `json:"iconName"`
	IconPrefix string `json:"iconPrefix"`
	Fill       string `json:"fill"`
}

type ImageProps struct {
	ImageURL string `json:"imageUrl"`
}

// EditorObject is one drawable element of a page. Only the variant pointer
// matching Type is set.
type EditorObject struct {
	ID      string     `json:"id"`
	Type    ObjectType `json:"type"`
	Left    float64    `json:"left"`
	Top     float64    `json:"top"`
	Width   float64    `json:"width"`
	Height  float64    `json:"height"`
	Angle   float64    `json:"angle"`
	ScaleX  float64    `json:"scaleX"`
	ScaleY  float64    `json:"scaleY"`
	Opacity float64    `json:"opacity"`

	Text  *TextProps  `json:"text,omitempty"`
	Shape *ShapeProps `json:"shape,omitempty"`
	Icon  *IconProps  `json:"icon,omitempty"`
	Image *ImageProps `json:"image,omitempty"`
}

var (
	ErrVariantMismatch = errors.New("object variant does not match type")
	// ErrOutOfRange marks a numeric field the project schema would reject.
	ErrOutOfRange = errors.New("value out of range")
)

// Validate checks the tag/variant agreement of o and the ranges of its
// numeric fields: every number finite, sizes non-negative, opacity in [0,1].
func (o *EditorObject) Validate() error {
	if o.ID == "" {
		return errors.New("object id is empty")
	}
	set := 0
	for _, p := range []bool{o.Text != nil, o.Shape != nil, o.Icon != nil, o.Image != nil} {
		if p {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("object %s: %w", o.ID, ErrVariantMismatch)
	}
	ok := false
	switch o.Type {
	case TypeText:
		ok = o.Text != nil
	case TypeShape:
		ok = o.Shape != nil
		if ok && !o.Shape.ShapeType.Valid() {
			return fmt.Errorf("object %s: unknown shape type %q", o.ID, o.Shape.ShapeType)
		}
	case TypeIcon:
		ok = o.Icon != nil
	case TypeImage:
		ok = o.Image != nil
	default:
		return fmt.Errorf("object %s: unknown type %q", o.ID, o.Type)
	}
	if !ok {
		return fmt.Errorf("object %s: %w", o.ID, ErrVariantMismatch)
	}
	if err := o.checkRanges(); err != nil {
		return fmt.Errorf("object %s: %w", o.ID, err)
	}
	return nil
}

type numField struct {
	name   string
	v      float64
	nonNeg bool
}

func (o *EditorObject) numFields() []numField {
	fs := []numField{
		{"left", o.Left, false},
		{"top", o.Top, false},
		{"width", o.Width, true},
		{"height", o.Height, true},
		{"angle", o.Angle, false},
		{"scaleX", o.ScaleX, false},
		{"scaleY", o.ScaleY, false},
		{"opacity", o.Opacity, true},
	}
	if t := o.Text; t != nil {
		fs = append(fs,
			numField{"fontSize", t.FontSize, true},
			numField{"lineHeight", t.LineHeight, false},
			numField{"letterSpacing", t.LetterSpacing, false},
			numField{"wordSpacing", t.WordSpacing, false},
		)
		if sh := t.TextShadow; sh != nil {
			fs = append(fs,
				numField{"textShadow.blur", sh.Blur, false},
				numField{"textShadow.offsetX", sh.OffsetX, false},
				numField{"textShadow.offsetY", sh.OffsetY, false},
			)
		}
	}
	if sh := o.Shape; sh != nil {
		fs = append(fs,
			numField{"strokeWidth", sh.StrokeWidth, true},
			numField{"cornerRadius", sh.CornerRadius, true},
		)
	}
	return fs
}

func (o *EditorObject) checkRanges() error {
	for _, f := range o.numFields() {
		switch {
		case !finite(f.v):
			return fmt.Errorf("%s is %v: %w", f.name, f.v, ErrOutOfRange)
		case f.nonNeg && f.v < 0:
			return fmt.Errorf("%s is negative (%g): %w", f.name, f.v, ErrOutOfRange)
		}
	}
	if o.Opacity > 1 {
		return fmt.Errorf("opacity %g above 1: %w", o.Opacity, ErrOutOfRange)
	}
	return nil
}

// Clone returns a deep copy of o.
func (o EditorObject) Clone() EditorObject {
	c := o
	if o.Text != nil {
		t := *o.Text
		if o.Text.TextShadow != nil {
			s := *o.Text.TextShadow
			t.TextShadow = &s
		}
		c.Text = &t
	}
	if o.Shape != nil {
		s := *o.Shape
		c.Shape = &s
	}
	if o.Icon != nil {
		i := *o.Icon
		c.Icon = &i
	}
	if o.Image != nil {
		i := *o.Image
		c.Image = &i
	}
	return c
}

// SubType identifies the primitive a renderer needs for o: the type, plus
// the shape kind for shapes.
func (o *EditorObject) SubType() string {
	if o.Type == TypeShape && o.Shape != nil {
		return string(o.Type) + ":" + string(o.Shape.ShapeType)
	}
	return string(o.Type)
}

// Fill returns the fill color of the variant, or "" for images.
func (o *EditorObject) Fill() string {
	switch {
	case o.Text != nil:
		return o.Text.Fill
	case o.Shape != nil:
		return o.Shape.Fill
	case o.Icon != nil:
		return o.Icon.Fill
	}
	return ""
}

// ScaledSize returns width and height after scaling. A zero scale counts as 1.
func (o *EditorObject) ScaledSize() (float64, float64) {
	sx, sy := o.ScaleX, o.ScaleY
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	return o.Width * sx, o.Height * sy
}
