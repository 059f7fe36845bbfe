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

import (
	"bytes"
	"log/slog"

	"inviteeditor/internal/metrics"
	"inviteeditor/internal/undo"
)

// Undo restores the state before the most recent committed mutation. It
// reports false when there was nothing to undo.
func (s *Session) Undo() bool {
	return s.step("undo", metrics.KindUndo, s.history.Undo)
}

// Redo re-applies the most recently undone mutation.
func (s *Session) Redo() bool {
	return s.step("redo", metrics.KindRedo, s.history.Redo)
}

func (s *Session) step(op, kind string, move func(undo.Snapshot) (undo.Snapshot, bool)) bool {
	s.mu.Lock()
	s.closeGestureLocked()
	cur, err := s.snapshotLocked()
	if err != nil {
		s.mu.Unlock()
		return false
	}
	snap, ok := move(undo.Snapshot{Label: op, Blob: cur, TS: s.now()})
	if !ok || !s.restoreLocked(snap.Blob) {
		s.mu.Unlock()
		return false
	}
	n := s.notifyLocked()
	depth := s.history.Stats().UndoDepth
	s.mu.Unlock()

	s.metrics.Mutation(op, kind)
	s.metrics.HistoryDepth(depth)
	s.log.Debug(op, slog.String("label", snap.Label))
	n.fire()
	return true
}

func (s *Session) CanUndo() bool { return s.history.CanUndo() }

func (s *Session) CanRedo() bool { return s.history.CanRedo() }

// HistoryStats reports the depth and size of the history stacks.
func (s *Session) HistoryStats() undo.Stats { return s.history.Stats() }

// HistoryLabels lists the undo entries, oldest first.
func (s *Session) HistoryLabels() []string { return s.history.Labels() }

// BeginGesture opens a gesture transaction. Silent updates made until
// EndGesture collapse into a single history entry labelled label.
func (s *Session) BeginGesture(label string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gesture != nil {
		return ErrGestureActive
	}
	before, err := s.snapshotLocked()
	if err != nil {
		return err
	}
	s.gesture = &gestureState{label: label, before: before}
	return nil
}

// EndGesture closes the open gesture. It reports whether a history entry
// was recorded, which happens only when the project changed.
func (s *Session) EndGesture() bool {
	s.mu.Lock()
	pushed := s.closeGestureLocked()
	s.mu.Unlock()
	if pushed {
		s.metrics.Mutation("gesture", metrics.KindCommitted)
	}
	return pushed
}

// CancelGesture closes the open gesture and restores the state it started from.
func (s *Session) CancelGesture() {
	s.mu.Lock()
	g := s.gesture
	s.gesture = nil
	if g == nil || s.unchangedSinceLocked(g.before) || !s.restoreLocked(g.before) {
		s.mu.Unlock()
		return
	}
	n := s.notifyLocked()
	s.mu.Unlock()
	n.fire()
}

// GestureActive reports whether a gesture transaction is open.
func (s *Session) GestureActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gesture != nil
}

func (s *Session) closeGestureLocked() bool {
	g := s.gesture
	if g == nil {
		return false
	}
	s.gesture = nil
	if s.unchangedSinceLocked(g.before) {
		return false
	}
	s.pushLocked(g.label, g.before)
	return true
}

// unchangedSinceLocked reports whether the project still encodes to before.
func (s *Session) unchangedSinceLocked(before []byte) bool {
	cur, err := s.snapshotLocked()
	return err == nil && bytes.Equal(before, cur)
}
