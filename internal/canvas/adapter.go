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
	"log/slog"
	"reflect"
	"slices"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"inviteeditor/internal/config"
	"inviteeditor/internal/domain"
	"inviteeditor/internal/editor"
	applog "inviteeditor/internal/log"
	"inviteeditor/internal/metrics"
	"inviteeditor/internal/vector"
)

// DefaultDragRate bounds silent updates while dragging, per second.
const DefaultDragRate = 20.0

// SyncStats counts what one synchronization pass did.
type SyncStats struct {
	Created   int
	Updated   int
	Recreated int
	Removed   int
	Fallbacks int
}

// View is the adapter's presentation state. It is not part of the project.
type View struct {
	Zoom       float64
	ShowGrid   bool
	ShowRulers bool
}

// Adapter keeps a Surface in step with the selected page of a session.
type Adapter struct {
	mu      sync.Mutex
	session *editor.Session
	surface Surface
	icons   *IconRasterizer
	log     *slog.Logger
	metrics *metrics.Recorder
	now     func() time.Time

	// after schedules f on another goroutine and returns a stop function.
	after func(d time.Duration, f func()) (stop func() bool)

	pageID string
	page   vector.Rect
	view   View

	dragRate      float64
	limiter       *rate.Limiter
	snapping      bool
	snapThreshold float64

	// gestureMu orders pointer events and delayed drag updates. It is
	// taken before mu and never held by Sync.
	gestureMu sync.Mutex
	drag      *dragState
	guides    []vector.GuideLine

	unsubscribe func()
	closeOnce   sync.Once
}

type AdapterOption func(*Adapter)

// WithDragRate sets how many silent updates per second a drag may issue.
func WithDragRate(perSecond float64) AdapterOption {
	return func(a *Adapter) {
		if perSecond > 0 {
			a.dragRate = perSecond
		}
	}
}

// WithSnapping enables smart-guide snapping while moving objects.
func WithSnapping(on bool, threshold float64) AdapterOption {
	return func(a *Adapter) { a.snapping, a.snapThreshold = on, threshold }
}

func WithIcons(r *IconRasterizer) AdapterOption { return func(a *Adapter) { a.icons = r } }

func WithLogger(l *slog.Logger) AdapterOption { return func(a *Adapter) { a.log = l } }

func WithMetrics(r *metrics.Recorder) AdapterOption { return func(a *Adapter) { a.metrics = r } }

// WithClock replaces time.Now for throttling and timing.
func WithClock(now func() time.Time) AdapterOption { return func(a *Adapter) { a.now = now } }

// WithConfig applies the drag rate and snapping settings of the user configuration.
func WithConfig(c config.EditorConfig) AdapterOption {
	return func(a *Adapter) {
		WithDragRate(c.DragRate)(a)
		a.snapping, a.snapThreshold = c.Snapping, c.SnapThreshold
	}
}

// NewAdapter binds surf to s, draws the current page and follows every
// later change until Close.
func NewAdapter(s *editor.Session, surf Surface, opts ...AdapterOption) *Adapter {
	a := &Adapter{
		session:  s,
		surface:  surf,
		now:      time.Now,
		after:    afterFunc,
		dragRate: DefaultDragRate,
		view:     View{Zoom: 1},
	}
	for _, o := range opts {
		o(a)
	}
	if a.icons == nil {
		a.icons = NewIconRasterizer(0)
	}
	if a.log == nil {
		a.log = applog.WithComponent("canvas")
	}
	a.limiter = rate.NewLimiter(rate.Limit(a.dragRate), 1)
	a.Sync(s.Project())
	unsub := s.Subscribe(func(p domain.EditorProject) { a.Sync(p) })
	unsubMulti := s.SubscribeMultiSelection(func([]string) { a.Sync(s.Project()) })
	a.unsubscribe = func() {
		unsub()
		unsubMulti()
	}
	return a
}

func afterFunc(d time.Duration, f func()) func() bool { return time.AfterFunc(d, f).Stop }

// Close stops following the session.
func (a *Adapter) Close() {
	a.closeOnce.Do(func() {
		if a.unsubscribe != nil {
			a.unsubscribe()
		}
	})
}

// View returns the current zoom and overlay toggles.
func (a *Adapter) View() View {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.view
}

// Guides returns the smart guides of the current drag.
func (a *Adapter) Guides() []vector.GuideLine {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.guides)
}

// Sync brings the surface in line with the selected page of p. A primitive
// that cannot be built is replaced by a fallback and never stops the pass.
func (a *Adapter) Sync(p domain.EditorProject) SyncStats {
	start := a.now()
	a.mu.Lock()
	defer a.mu.Unlock()

	var objs []domain.EditorObject
	if pg := p.SelectedPage(); pg != nil {
		objs = pg.Objects
		a.pageID = pg.ID
		a.page = vector.R(0, 0, pg.Width, pg.Height)
	} else {
		a.pageID = ""
	}

	var st SyncStats
	want := make(map[string]bool, len(objs))
	order := make([]string, 0, len(objs))
	for _, o := range objs {
		want[o.ID] = true
		order = append(order, o.ID)
	}
	for _, id := range a.surface.IDs() {
		if !want[id] {
			a.surface.Remove(id)
			st.Removed++
		}
	}
	for _, o := range objs {
		next := a.build(o, &st)
		prev, ok := a.surface.Get(o.ID)
		switch {
		case !ok:
			a.add(next)
			st.Created++
		case prev.Kind != next.Kind || prev.SubType != next.SubType:
			a.surface.Remove(o.ID)
			a.add(next)
			st.Recreated++
		case !reflect.DeepEqual(prev.Attrs, next.Attrs):
			if err := a.surface.SetAttrs(o.ID, next.Attrs); err != nil {
				a.log.Warn("update primitive", slog.String("id", o.ID), slog.Any("err", err))
				continue
			}
			st.Updated++
		}
	}
	if !slices.Equal(a.surface.IDs(), order) {
		a.surface.Reorder(order)
	}
	a.mirrorSelection(p, want)
	if err := a.surface.Render(); err != nil {
		a.log.Warn("render", slog.Any("err", err))
	}
	a.metrics.SyncPass(a.now().Sub(start), st.Created, st.Updated, st.Recreated, st.Removed)
	return st
}

func (a *Adapter) build(o domain.EditorObject, st *SyncStats) Primitive {
	p, err := BuildPrimitive(o, a.icons)
	if err != nil {
		a.log.Warn("primitive fallback", slog.String("id", o.ID), slog.String("type", string(o.Type)), slog.Any("err", err))
		st.Fallbacks++
		return FallbackPrimitive(o)
	}
	return p
}

func (a *Adapter) add(p Primitive) {
	if err := a.surface.Add(p); err != nil {
		a.log.Warn("add primitive", slog.String("id", p.ID), slog.Any("err", err))
	}
}

// mirrorSelection shows the store selection on the surface: the
// multi-selection when there is one, else the selected object.
func (a *Adapter) mirrorSelection(p domain.EditorProject, onPage map[string]bool) {
	sel := a.session.MultiSelection()
	if len(sel) == 0 && onPage[p.SelectedObjectID] {
		sel = []string{p.SelectedObjectID}
	}
	if !slices.Equal(sel, a.surface.Selected()) {
		a.surface.Select(sel)
	}
}

// SurfaceSelected forwards a selection made on the surface to the session.
// One id selects that object, several become the multi-selection and none
// clears both.
func (a *Adapter) SurfaceSelected(ids []string) {
	switch len(ids) {
	case 0:
		a.session.SetMultiSelection(nil)
		a.session.SelectObject("")
	case 1:
		a.session.SetMultiSelection(nil)
		a.session.SelectObject(ids[0])
	default:
		a.session.SetMultiSelection(ids)
	}
}

// Click selects the topmost object under pt, or clears the selection.
func (a *Adapter) Click(pt vector.Pt) {
	id, ok := a.surface.HitTest(a.toPage(pt))
	if !ok {
		a.SurfaceSelected(nil)
		return
	}
	a.SurfaceSelected([]string{id})
}

// toPage converts a surface point into page coordinates.
func (a *Adapter) toPage(pt vector.Pt) vector.Pt {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.toPageLocked(pt)
}

func (a *Adapter) toPageLocked(pt vector.Pt) vector.Pt {
	z := a.view.Zoom
	if z <= 0 {
		z = 1
	}
	return vector.Pt{X: pt.X / z, Y: pt.Y / z}
}
