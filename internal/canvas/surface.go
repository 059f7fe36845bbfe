/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package canvas mirrors the selected page of an editor session onto a
// rendering surface and turns surface gestures back into session calls.
package canvas

import (
	"errors"
	"image"

	"inviteeditor/internal/domain"
	"inviteeditor/internal/vector"
)

// Kind is the drawable form of a primitive.
type Kind string

const (
	KindText     Kind = "text"
	KindRect     Kind = "rect"
	KindEllipse  Kind = "ellipse"
	KindTriangle Kind = "triangle"
	KindIcon     Kind = "icon"
	KindImage    Kind = "image"
	// KindFallback stands in for an object whose primitive could not be built.
	KindFallback Kind = "fallback"
)

var (
	ErrDuplicatePrimitive = errors.New("canvas: primitive already on surface")
	ErrUnknownPrimitive   = errors.New("canvas: no such primitive")
)

// Attrs are the per-primitive attributes a surface can get and set.
type Attrs struct {
	Left    float64
	Top     float64
	Width   float64
	Height  float64
	Angle   float64
	ScaleX  float64
	ScaleY  float64
	Opacity float64

	Fill         string
	Stroke       string
	StrokeWidth  float64
	CornerRadius float64

	Text           string
	FontFamily     string
	FontSize       float64
	FontWeight     string
	FontStyle      string
	TextAlign      string
	LineHeight     float64
	LetterSpacing  float64
	WordSpacing    float64
	TextDecoration string
	TextBackground string
	Shadow         *domain.TextShadow

	// Raster holds decoded pixels for icons and inline images.
	Raster   image.Image
	ImageURL string
}

// Primitive is one drawable on the surface, tagged with the id of the
// object it mirrors.
type Primitive struct {
	ID      string
	Kind    Kind
	SubType string
	Attrs   Attrs
}

// Surface is the rendering-surface binding. Implementations draw the
// primitives in IDs order, first at the bottom.
type Surface interface {
	Add(p Primitive) error
	Remove(id string)
	Get(id string) (Primitive, bool)
	IDs() []string
	SetAttrs(id string, a Attrs) error
	// Reorder sets the z-order. Unknown ids are ignored and primitives
	// missing from ids keep their relative order on top.
	Reorder(ids []string)
	HitTest(p vector.Pt) (string, bool)
	Select(ids []string)
	Selected() []string
	Render() error
}
