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
	"fmt"
	"math"
)

// Default placement for objects created by the convenience constructors.
const (
	DefaultLeft = 100.0
	DefaultTop  = 100.0

	DefaultPageWidth      = 800.0
	DefaultPageHeight     = 1120.0
	DefaultPageBackground = "#ffffff"
)

// IconSpec describes an icon picked from an icon library.
type IconSpec struct {
	Name   string
	SVG    string
	Prefix string
}

func base(t ObjectType, w, h float64) EditorObject {
	return EditorObject{
		ID:      NewID(),
		Type:    t,
		Left:    DefaultLeft,
		Top:     DefaultTop,
		Width:   w,
		Height:  h,
		ScaleX:  1,
		ScaleY:  1,
		Opacity: 1,
	}
}

// NewText returns a default-configured text object.
func NewText(text string) EditorObject {
	o := base(TypeText, 300, 40)
	o.Text = &TextProps{
		Text:       text,
		FontSize:   24,
		FontFamily: "Arial",
		FontWeight: "normal",
		FontStyle:  "normal",
		Fill:       "#000000",
		TextAlign:  "left",
		LineHeight: 1.2,
	}
	return o
}

// NewShape returns a default-configured shape of the given kind. Unknown
// kinds fall back to a rectangle.
func NewShape(kind ShapeKind) EditorObject {
	if !kind.Valid() {
		kind = ShapeRect
	}
	o := base(TypeShape, 150, 150)
	o.Shape = &ShapeProps{ShapeType: kind, Fill: "#3b82f6", Stroke: "", StrokeWidth: 0}
	return o
}

// NewIcon returns a default-configured icon object.
func NewIcon(spec IconSpec) EditorObject {
	o := base(TypeIcon, 80, 80)
	o.Icon = &IconProps{IconSVG: spec.SVG, IconName: spec.Name, IconPrefix: spec.Prefix, Fill: "#000000"}
	return o
}

// NewImage returns a default-configured image object.
func NewImage(url string) EditorObject {
	o := base(TypeImage, 300, 200)
	o.Image = &ImageProps{ImageURL: url}
	return o
}

// NewPage returns an empty page named after its 1-based position.
func NewPage(n int, width, height float64, background string) EditorPage {
	if !(width > 0) || math.IsInf(width, 1) {
		width = DefaultPageWidth
	}
	if !(height > 0) || math.IsInf(height, 1) {
		height = DefaultPageHeight
	}
	if background == "" {
		background = DefaultPageBackground
	}
	return EditorPage{
		ID:              NewID(),
		Name:            fmt.Sprintf("Page %d", n),
		Width:           width,
		Height:          height,
		BackgroundColor: background,
		Objects:         []EditorObject{},
	}
}
