/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package editor

import "errors"

var (
	// ErrNoSelectedPage is returned by operations that add to the selected page when there is none.
	ErrNoSelectedPage = errors.New("editor: no page selected")
	// ErrInvalidProject is returned when a replacement project breaks the model invariants.
	ErrInvalidProject = errors.New("editor: invalid project")
	// ErrInvalidObject is returned when an object to add or merge is malformed.
	ErrInvalidObject = errors.New("editor: invalid object")
	// ErrNoStore is returned by the persistence operations when no host store was configured.
	ErrNoStore = errors.New("editor: no host store configured")
	// ErrGestureActive is returned by BeginGesture while another gesture is open.
	ErrGestureActive = errors.New("editor: a gesture is already in progress")
	// ErrSnapshot is returned when the project cannot be encoded for the history.
	// The mutation that needed the snapshot is not applied.
	ErrSnapshot = errors.New("editor: encode history snapshot")
)

// ParseError reports import data that could not be turned into a project.
// The session is left untouched when it is returned.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return "editor: parse project: " + e.Err.Error() }

func (e *ParseError) Unwrap() error { return e.Err }
