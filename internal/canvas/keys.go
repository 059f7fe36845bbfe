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
	"strings"

	"inviteeditor/internal/domain"
)

// Key names a keyboard key the way browsers report KeyboardEvent.key.
type Key string

const (
	KeyLeft      Key = "ArrowLeft"
	KeyRight     Key = "ArrowRight"
	KeyUp        Key = "ArrowUp"
	KeyDown      Key = "ArrowDown"
	KeyDelete    Key = "Delete"
	KeyBackspace Key = "Backspace"
	KeyEscape    Key = "Escape"
)

// Modifier is a set of held modifier keys.
type Modifier uint8

const (
	ModCtrl Modifier = 1 << iota
	ModShift
	ModAlt
)

func (m Modifier) has(f Modifier) bool { return m&f != 0 }

// Nudge distances for arrow keys, without and with shift.
const (
	NudgeStep      = 1.0
	NudgeShiftStep = 10.0
)

// Zoom limits and step factor.
const (
	MinZoom  = 0.1
	MaxZoom  = 8.0
	zoomStep = 1.25
)

// HandleKey runs the editor shortcut bound to k and reports whether one
// was bound. Ctrl stands for the platform command key.
func (a *Adapter) HandleKey(k Key, mods Modifier) bool {
	if mods.has(ModCtrl) {
		return a.handleCtrl(Key(strings.ToLower(string(k))), mods)
	}
	s := a.session
	switch k {
	case KeyLeft, KeyRight, KeyUp, KeyDown:
		o, ok := s.SelectedObject()
		if !ok {
			return false
		}
		step := NudgeStep
		if mods.has(ModShift) {
			step = NudgeShiftStep
		}
		left, top := o.Left, o.Top
		switch k {
		case KeyLeft:
			left -= step
		case KeyRight:
			left += step
		case KeyUp:
			top -= step
		case KeyDown:
			top += step
		}
		s.UpdateObject(o.ID, domain.Move(left, top))
		return true
	case KeyDelete, KeyBackspace:
		ids := s.MultiSelection()
		if len(ids) == 0 {
			o, ok := s.SelectedObject()
			if !ok {
				return false
			}
			ids = []string{o.ID}
		}
		s.DeleteObjects(ids)
		return true
	case KeyEscape:
		if a.Dragging() {
			a.PointerCancel()
			return true
		}
		a.SurfaceSelected(nil)
		return true
	}
	return false
}

func (a *Adapter) handleCtrl(k Key, mods Modifier) bool {
	s := a.session
	switch k {
	case "z":
		if mods.has(ModShift) {
			return s.Redo()
		}
		return s.Undo()
	case "y":
		return s.Redo()
	case "c":
		return s.CopySelection() > 0
	case "x":
		if s.CopySelection() == 0 {
			return false
		}
		return a.HandleKey(KeyDelete, 0)
	case "v":
		ids, err := s.Paste()
		return err == nil && len(ids) > 0
	case "d":
		o, ok := s.SelectedObject()
		if !ok {
			return false
		}
		return s.DuplicateObject(o.ID) != ""
	case "b", "i", "u", "l", "e", "r":
		return a.toggleText(k)
	case "=", "+":
		a.zoom(zoomStep)
		return true
	case "-":
		a.zoom(1 / zoomStep)
		return true
	case "0":
		a.mu.Lock()
		a.view.Zoom = 1
		a.mu.Unlock()
		return true
	case "g":
		a.mu.Lock()
		if mods.has(ModShift) {
			a.view.ShowRulers = !a.view.ShowRulers
		} else {
			a.view.ShowGrid = !a.view.ShowGrid
		}
		a.mu.Unlock()
		return true
	}
	return false
}

// toggleText applies a text style shortcut to the selected text object.
func (a *Adapter) toggleText(k Key) bool {
	o, ok := a.session.SelectedObject()
	if !ok || o.Type != domain.TypeText {
		return false
	}
	t := o.Text
	var tp domain.TextPatch
	switch k {
	case "b":
		tp.FontWeight = domain.Ptr(toggle(t.FontWeight, "bold", "normal"))
	case "i":
		tp.FontStyle = domain.Ptr(toggle(t.FontStyle, "italic", "normal"))
	case "u":
		tp.TextDecoration = domain.Ptr(toggle(t.TextDecoration, "underline", ""))
	case "l":
		tp.TextAlign = domain.Ptr("left")
	case "e":
		tp.TextAlign = domain.Ptr("center")
	case "r":
		tp.TextAlign = domain.Ptr("right")
	}
	a.session.UpdateObject(o.ID, domain.ObjectPatch{Text: &tp})
	return true
}

func toggle(cur, on, off string) string {
	if cur == on {
		return off
	}
	return on
}

func (a *Adapter) zoom(f float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.view.Zoom = min(max(a.view.Zoom*f, MinZoom), MaxZoom)
}
