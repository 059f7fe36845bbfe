/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package editor holds the authoritative state of one invitation editing
// session: the project, selection, clipboard and undo/redo history.
//
// Every mutation runs under the session mutex against a working copy; the
// copy is installed only when the operation succeeded and changed
// something. Subscribers are called after the mutex is released, in
// registration order, before the mutating call returns.
package editor

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"inviteeditor/internal/config"
	"inviteeditor/internal/domain"
	applog "inviteeditor/internal/log"
	"inviteeditor/internal/metrics"
	"inviteeditor/internal/storage"
	"inviteeditor/internal/undo"
)

// StorageKey is the well-known key the project is saved under in the host store.
const StorageKey = "invitation-editor-project"

// DuplicateOffset is the x/y shift applied to duplicated and pasted objects.
const DuplicateOffset = 20.0

// Listener receives a snapshot of the project after each mutation. The
// snapshot is the listener's own copy.
type Listener func(domain.EditorProject)

// MultiSelectListener receives the ids of the current multi-selection.
type MultiSelectListener func(ids []string)

type listenerEntry struct {
	token uint64
	fn    Listener
}

type multiListenerEntry struct {
	token uint64
	fn    MultiSelectListener
}

type gestureState struct {
	label  string
	before []byte
}

// Session is one editing session. It is safe for concurrent use.
type Session struct {
	mu sync.Mutex

	id      string
	project domain.EditorProject
	history *undo.Manager
	gesture *gestureState

	clipboard  []domain.EditorObject
	pasteCount int
	multi      []string

	listeners      []listenerEntry
	multiListeners []multiListenerEntry
	nextToken      uint64

	selectionHistory bool
	historyCfg       undo.Config
	pageWidth        float64
	pageHeight       float64
	pageBackground   string

	store      storage.KeyValueStore
	storageKey string

	log     *slog.Logger
	metrics *metrics.Recorder
	now     func() time.Time
}

// Option configures a Session.
type Option func(*Session)

// WithSelectionHistory controls whether SelectPage and SelectObject record
// undo entries. It defaults to true.
func WithSelectionHistory(on bool) Option { return func(s *Session) { s.selectionHistory = on } }

// WithHistory sets the undo history caps.
func WithHistory(cfg undo.Config) Option { return func(s *Session) { s.historyCfg = cfg } }

// WithPageDefaults sets the size and background of pages created by the session.
func WithPageDefaults(width, height float64, background string) Option {
	return func(s *Session) {
		if width > 0 {
			s.pageWidth = width
		}
		if height > 0 {
			s.pageHeight = height
		}
		if background != "" {
			s.pageBackground = background
		}
	}
}

// WithConfig applies the editor section of the user configuration.
func WithConfig(c config.EditorConfig) Option {
	return func(s *Session) {
		WithPageDefaults(c.PageWidth, c.PageHeight, c.PageBackground)(s)
		s.selectionHistory = c.SelectionHistory
		s.historyCfg.MaxBytes = c.HistoryMaxBytes
		s.historyCfg.MaxDepth = c.HistoryMaxDepth
	}
}

// WithStore sets the host store used by SaveToLocalStorage and LoadFromLocalStorage.
func WithStore(kv storage.KeyValueStore) Option { return func(s *Session) { s.store = kv } }

// WithStorageKey overrides StorageKey.
func WithStorageKey(key string) Option {
	return func(s *Session) {
		if key != "" {
			s.storageKey = key
		}
	}
}

func WithLogger(l *slog.Logger) Option { return func(s *Session) { s.log = l } }

func WithMetrics(r *metrics.Recorder) Option { return func(s *Session) { s.metrics = r } }

// WithClock replaces time.Now for history timestamps.
func WithClock(now func() time.Time) Option { return func(s *Session) { s.now = now } }

// New creates a session seeded with one default page.
func New(opts ...Option) *Session {
	s := &Session{
		id:               domain.NewID(),
		selectionHistory: true,
		pageWidth:        domain.DefaultPageWidth,
		pageHeight:       domain.DefaultPageHeight,
		pageBackground:   domain.DefaultPageBackground,
		storageKey:       StorageKey,
		now:              time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	if s.log == nil {
		s.log = applog.WithComponent("editor")
	}
	s.log = s.log.With(slog.String("session", s.id))
	s.history = undo.NewManager(s.historyCfg)
	pg := s.newPage(1)
	s.project = domain.EditorProject{Pages: []domain.EditorPage{pg}, SelectedPageID: pg.ID}
	return s
}

// NewFromJSON creates a session holding the project encoded in data. The
// loaded project starts with an empty history.
func NewFromJSON(data string, opts ...Option) (*Session, error) {
	s := New(opts...)
	p, err := s.parseProject(data)
	if err != nil {
		return nil, err
	}
	s.project = p
	return s, nil
}

// ID identifies the session in logs.
func (s *Session) ID() string { return s.id }

func (s *Session) newPage(n int) domain.EditorPage {
	return domain.NewPage(n, s.pageWidth, s.pageHeight, s.pageBackground)
}

// Project returns a deep copy of the current project.
func (s *Session) Project() domain.EditorProject {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.project.Clone()
}

// Subscribe registers fn for change notifications. The returned function
// unregisters it and may be called any number of times.
func (s *Session) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	s.nextToken++
	tok := s.nextToken
	s.listeners = append(s.listeners, listenerEntry{token: tok, fn: fn})
	s.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, e := range s.listeners {
				if e.token == tok {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// SubscribeMultiSelection registers fn for multi-selection changes.
func (s *Session) SubscribeMultiSelection(fn MultiSelectListener) (unsubscribe func()) {
	s.mu.Lock()
	s.nextToken++
	tok := s.nextToken
	s.multiListeners = append(s.multiListeners, multiListenerEntry{token: tok, fn: fn})
	s.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, e := range s.multiListeners {
				if e.token == tok {
					s.multiListeners = append(s.multiListeners[:i:i], s.multiListeners[i+1:]...)
					return
				}
			}
		})
	}
}

// notification is collected under the lock and delivered after it is released.
type notification struct {
	project   *domain.EditorProject
	listeners []Listener
	multi     []string
	multiFns  []MultiSelectListener
}

func (n notification) fire() {
	if n.project != nil {
		for _, fn := range n.listeners {
			fn(n.project.Clone())
		}
	}
	for _, fn := range n.multiFns {
		fn(append([]string(nil), n.multi...))
	}
}

// notifyLocked prepares a project notification, pruning the
// multi-selection down to objects still on the selected page.
func (s *Session) notifyLocked() notification {
	p := s.project.Clone()
	n := notification{project: &p}
	for _, e := range s.listeners {
		n.listeners = append(n.listeners, e.fn)
	}
	if s.pruneMultiLocked() {
		n = s.withMultiLocked(n)
	}
	return n
}

func (s *Session) withMultiLocked(n notification) notification {
	n.multi = append([]string(nil), s.multi...)
	for _, e := range s.multiListeners {
		n.multiFns = append(n.multiFns, e.fn)
	}
	return n
}

func (s *Session) pruneMultiLocked() bool {
	if len(s.multi) == 0 {
		return false
	}
	pg := s.project.SelectedPage()
	kept := s.multi[:0:0]
	for _, id := range s.multi {
		if pg != nil && pg.IndexOf(id) >= 0 {
			kept = append(kept, id)
		}
	}
	if len(kept) == len(s.multi) {
		return false
	}
	s.multi = kept
	return true
}

// mutate runs fn on a working copy of the project. Nothing is stored when
// fn fails or reports no change. Historied mutations close an open gesture
// first and push the pre-mutation snapshot.
func (s *Session) mutate(op string, historied bool, fn func(p *domain.EditorProject) (bool, error)) error {
	s.mu.Lock()
	if historied {
		s.closeGestureLocked()
	}
	next := s.project.Clone()
	changed, err := fn(&next)
	if err != nil || !changed {
		s.mu.Unlock()
		if err != nil {
			s.log.Debug("mutation rejected", slog.String("op", op), slog.Any("err", err))
		}
		return err
	}
	kind := metrics.KindSilent
	if historied {
		blob, err := s.snapshotLocked()
		if err != nil {
			s.mu.Unlock()
			return err
		}
		s.pushLocked(op, blob)
		kind = metrics.KindCommitted
	}
	s.project = next
	n := s.notifyLocked()
	s.mu.Unlock()

	s.metrics.Mutation(op, kind)
	if historied {
		s.log.Debug("mutation", slog.String("op", op))
	}
	n.fire()
	return nil
}

// snapshotLocked encodes the current project for the history.
func (s *Session) snapshotLocked() ([]byte, error) {
	b, err := json.Marshal(s.project)
	if err != nil {
		s.log.Error("encode history snapshot", slog.Any("err", err))
		return nil, fmt.Errorf("%w: %v", ErrSnapshot, err)
	}
	return b, nil
}

func (s *Session) pushLocked(label string, blob []byte) {
	s.history.Push(undo.Snapshot{Label: label, Blob: blob, TS: s.now()})
	s.metrics.HistoryDepth(s.history.Stats().UndoDepth)
}

func (s *Session) restoreLocked(blob []byte) bool {
	var p domain.EditorProject
	if err := json.Unmarshal(blob, &p); err != nil {
		s.log.Error("decode history snapshot", slog.Any("err", err))
		return false
	}
	p.Normalize()
	s.project = p
	return true
}
