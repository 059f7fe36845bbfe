/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"inviteeditor/internal/canvas"
	"inviteeditor/internal/domain"
	"inviteeditor/internal/textlayout"
)

// PresetName represents a named export preset.
type PresetName string

const (
	PresetWeb   PresetName = "web"
	PresetPrint PresetName = "print"
	PresetThumb PresetName = "thumb"
)

// BatchOptions controls batch export across formats and pages.
//
// Path semantics:
//   - If OutDir is empty it defaults to exports/<preset>.
//   - Per-page outputs are page-<n>.(png|svg) in subfolders png/ or svg/ inside OutDir.
type BatchOptions struct {
	Preset  PresetName
	Formats []string // allowed: png, svg; empty means preset defaults
	Pages   []int    // zero-based indices; empty means all pages
	Scale   float64  // when > 0 overrides the preset's raster scale
	OutDir  string
	Fonts   textlayout.Provider
	Icons   *canvas.IconRasterizer
}

// BatchExport runs exports according to the given preset.
func BatchExport(p domain.EditorProject, opt BatchOptions) error {
	if len(p.Pages) == 0 {
		return fmt.Errorf("project has no pages")
	}
	formats := opt.Formats
	if len(formats) == 0 {
		formats = presetDefaultFormats(opt.Preset)
	}
	baseOut := opt.OutDir
	if baseOut == "" {
		baseOut = filepath.Join("exports", string(opt.Preset))
	}
	scale := presetScale(opt.Preset)
	if opt.Scale > 0 {
		scale = opt.Scale
	}
	icons := opt.Icons
	if icons == nil {
		icons = canvas.NewIconRasterizer(0)
	}

	for _, f := range formats {
		switch strings.ToLower(strings.TrimSpace(f)) {
		case "png":
			po := PNGOptions{Scale: scale, Fonts: opt.Fonts, Icons: icons, Pages: opt.Pages}
			if err := ExportPNGPages(p, filepath.Join(baseOut, "png"), po); err != nil {
				return fmt.Errorf("png: %w", err)
			}
		case "svg":
			so := SVGOptions{Fonts: opt.Fonts, Icons: icons, Pages: opt.Pages}
			if err := ExportSVGPages(p, filepath.Join(baseOut, "svg"), so); err != nil {
				return fmt.Errorf("svg: %w", err)
			}
		default:
			return fmt.Errorf("unknown format: %s", f)
		}
	}
	return nil
}

func presetDefaultFormats(p PresetName) []string {
	switch p {
	case PresetWeb:
		return []string{"png", "svg"}
	default:
		return []string{"png"}
	}
}

// presetScale is the raster scale of p: print targets 300 dpi from the
// 96 dpi page units, thumbnails a quarter size.
func presetScale(p PresetName) float64 {
	switch p {
	case PresetPrint:
		return 300.0 / 96.0
	case PresetThumb:
		return 0.25
	default:
		return 1
	}
}
