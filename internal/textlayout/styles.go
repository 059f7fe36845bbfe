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

// Preset is a named text style offered by the "add text" menu.
type Preset struct {
	Name          string
	FontFamily    string
	FontSize      float64
	FontWeight    string
	FontStyle     string
	TextAlign     string
	LineHeight    float64
	LetterSpacing float64
}

var builtinPresets = map[string]Preset{
	"Heading": {
		Name: "Heading", FontFamily: "Playfair Display", FontSize: 48,
		FontWeight: "bold", FontStyle: "normal", TextAlign: "center", LineHeight: 1.1,
	},
	"Subheading": {
		Name: "Subheading", FontFamily: "Great Vibes", FontSize: 32,
		FontWeight: "normal", FontStyle: "italic", TextAlign: "center", LineHeight: 1.2,
		LetterSpacing: 1,
	},
	"Body": {
		Name: "Body", FontFamily: "Lora", FontSize: 18,
		FontWeight: "normal", FontStyle: "normal", TextAlign: "left", LineHeight: 1.4,
	},
}

// GetPreset returns a builtin preset by name.
func GetPreset(name string) (Preset, bool) { p, ok := builtinPresets[name]; return p, ok }

// ListPresets lists the builtin preset names in menu order.
func ListPresets() []string {
	return []string{"Heading", "Subheading", "Body"}
}
