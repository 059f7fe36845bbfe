/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package autosave saves a session to its store once edits have paused.
package autosave

import (
	"log/slog"
	"sync"
	"time"

	"github.com/bep/debounce"

	"inviteeditor/internal/domain"
	"inviteeditor/internal/editor"
	applog "inviteeditor/internal/log"
)

// DefaultDelay is the quiet period before a save.
const DefaultDelay = 1500 * time.Millisecond

// Session is the part of an editor session the autosaver needs.
type Session interface {
	Subscribe(fn editor.Listener) (unsubscribe func())
	SaveToLocalStorage() error
}

// Autosaver saves its session after every burst of changes. Each change
// restarts the delay, so a continuous drag produces one save at the end.
type Autosaver struct {
	sess      Session
	debounced func(func())
	log       *slog.Logger
	onSave    func(error)

	mu      sync.Mutex
	dirty   bool
	closed  bool
	saves   int
	lastErr error

	unsubscribe func()
	closeOnce   sync.Once
}

type Option func(*Autosaver)

func WithLogger(l *slog.Logger) Option { return func(a *Autosaver) { a.log = l } }

// OnSave registers fn to be called after every save attempt.
func OnSave(fn func(error)) Option { return func(a *Autosaver) { a.onSave = fn } }

// New starts autosaving s after delay of inactivity. A non-positive delay
// uses DefaultDelay.
func New(s Session, delay time.Duration, opts ...Option) *Autosaver {
	if delay <= 0 {
		delay = DefaultDelay
	}
	a := &Autosaver{sess: s, debounced: debounce.New(delay)}
	for _, o := range opts {
		o(a)
	}
	if a.log == nil {
		a.log = applog.WithComponent("autosave")
	}
	a.unsubscribe = s.Subscribe(func(domain.EditorProject) { a.changed() })
	return a
}

func (a *Autosaver) changed() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.dirty = true
	a.mu.Unlock()
	a.debounced(func() { _ = a.Flush() })
}

// Flush saves now when there are unsaved changes.
func (a *Autosaver) Flush() error {
	a.mu.Lock()
	if !a.dirty {
		a.mu.Unlock()
		return nil
	}
	a.dirty = false
	a.mu.Unlock()

	err := a.sess.SaveToLocalStorage()
	a.mu.Lock()
	a.saves++
	a.lastErr = err
	a.mu.Unlock()
	if err != nil {
		a.log.Warn("autosave failed", slog.Any("err", err))
	} else {
		a.log.Debug("autosaved")
	}
	if a.onSave != nil {
		a.onSave(err)
	}
	return err
}

// Close stops following the session and saves pending changes.
func (a *Autosaver) Close() error {
	var err error
	a.closeOnce.Do(func() {
		a.unsubscribe()
		err = a.Flush()
		a.mu.Lock()
		a.closed = true
		a.mu.Unlock()
	})
	return err
}

// Saves counts save attempts.
func (a *Autosaver) Saves() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.saves
}

// LastError is the result of the latest save attempt.
func (a *Autosaver) LastError() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr
}
