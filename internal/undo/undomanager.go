/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package undo keeps the linear undo/redo history of an editor session as
// opaque snapshots with memory and depth caps.
package undo

import (
	"sync"
	"time"
)

// Snapshot is a reversible state blob. Blob content is opaque to the
// manager; its size is estimated as len(Blob). TS is when it was captured.
type Snapshot struct {
	Label string
	Blob  []byte
	TS    time.Time
}

// Config controls memory and depth caps and coalescing behavior.
type Config struct {
	// MaxBytes is a soft cap on the undo stack; oldest entries are pruned when exceeded.
	MaxBytes int
	// MaxDepth limits the number of undo entries (0 means unlimited).
	MaxDepth int
	// MinInterval, when positive, coalesces pushes closer together than the
	// interval: the earlier snapshot is kept since it holds the state before
	// the whole burst. Zero disables coalescing.
	MinInterval time.Duration
}

// Manager is a linear undo/redo history. It is safe for concurrent use.
type Manager struct {
	cfg        Config
	mu         sync.Mutex
	undo       []Snapshot
	redo       []Snapshot
	undoBytes  int
	pruned     int
	lastPushTS time.Time
}

func NewManager(cfg Config) *Manager {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 16 * 1024 * 1024
	}
	return &Manager{cfg: cfg}
}

// Push records the state before a committed change and clears redo.
// It reports false when the push was coalesced into the previous entry.
func (m *Manager) Push(s Snapshot) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearRedoLocked()
	if n := len(m.undo); n > 0 && m.cfg.MinInterval > 0 && s.TS.Sub(m.lastPushTS) < m.cfg.MinInterval {
		m.lastPushTS = s.TS
		return false
	}
	m.undo = append(m.undo, s)
	m.undoBytes += len(s.Blob)
	m.lastPushTS = s.TS
	m.enforceCapsLocked()
	return true
}

// Undo pops the most recent snapshot and stores current on the redo stack.
func (m *Manager) Undo(current Snapshot) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.undo)
	if n == 0 {
		return Snapshot{}, false
	}
	s := m.undo[n-1]
	m.undo = m.undo[:n-1]
	m.undoBytes -= len(s.Blob)
	m.redo = append(m.redo, current)
	m.lastPushTS = time.Time{}
	return s, true
}

// Redo pops the most recently undone snapshot and stores current on the undo stack.
func (m *Manager) Redo(current Snapshot) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.redo)
	if n == 0 {
		return Snapshot{}, false
	}
	s := m.redo[n-1]
	m.redo = m.redo[:n-1]
	m.undo = append(m.undo, current)
	m.undoBytes += len(current.Blob)
	m.lastPushTS = time.Time{}
	m.enforceCapsLocked()
	return s, true
}

func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undo) > 0
}

func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.redo) > 0
}

// Clear drops both stacks.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.undo = nil
	m.redo = nil
	m.undoBytes = 0
	m.lastPushTS = time.Time{}
}

// Stats describes the current history for diagnostics.
type Stats struct {
	UndoDepth int
	RedoDepth int
	UndoBytes int
	Pruned    int
}

func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Stats{UndoDepth: len(m.undo), RedoDepth: len(m.redo), UndoBytes: m.undoBytes, Pruned: m.pruned}
}

// Labels returns the undo entry labels, oldest first.
func (m *Manager) Labels() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.undo))
	for i, s := range m.undo {
		out[i] = s.Label
	}
	return out
}

func (m *Manager) clearRedoLocked() {
	m.redo = nil
}

func (m *Manager) enforceCapsLocked() {
	drop := 0
	if m.cfg.MaxDepth > 0 && len(m.undo) > m.cfg.MaxDepth {
		drop = len(m.undo) - m.cfg.MaxDepth
	}
	bytes := m.undoBytes
	for i := 0; i < drop; i++ {
		bytes -= len(m.undo[i].Blob)
	}
	// keep at least the newest entry even when it alone exceeds MaxBytes
	for bytes > m.cfg.MaxBytes && drop < len(m.undo)-1 {
		bytes -= len(m.undo[drop].Blob)
		drop++
	}
	if drop == 0 {
		return
	}
	m.undo = append([]Snapshot(nil), m.undo[drop:]...)
	m.undoBytes = bytes
	m.pruned += drop
}
