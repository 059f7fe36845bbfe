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
	"math"
	"time"

	"golang.org/x/time/rate"

	"inviteeditor/internal/domain"
	"inviteeditor/internal/vector"
)

// Handle is the part of the selection frame a pointer gesture started on.
type Handle int

const (
	HandleMove Handle = iota
	HandleNW
	HandleNE
	HandleSW
	HandleSE
	HandleRotate
)

// MinObjectSize is the smallest on-page width or height a resize produces.
const MinObjectSize = 4.0

func (h Handle) label() string {
	switch h {
	case HandleMove:
		return "move"
	case HandleRotate:
		return "rotate"
	default:
		return "resize"
	}
}

type dragState struct {
	id      string
	handle  Handle
	origin  vector.Pt
	start   domain.EditorObject
	anchors []vector.Anchor
	pending *domain.ObjectPatch
	// stopFlush cancels the timer that applies pending once the rate allows.
	stopFlush func() bool
}

// PointerDown starts a gesture at pt in surface coordinates. With
// HandleMove the object under the pointer is selected and dragged; the
// other handles act on the selected object. It reports whether a gesture
// started.
func (a *Adapter) PointerDown(pt vector.Pt, h Handle) bool {
	a.gestureMu.Lock()
	defer a.gestureMu.Unlock()
	pt = a.toPage(pt)
	var id string
	if h == HandleMove {
		hit, ok := a.surface.HitTest(pt)
		if !ok {
			a.SurfaceSelected(nil)
			return false
		}
		id = hit
		a.SurfaceSelected([]string{id})
	} else {
		o, ok := a.session.SelectedObject()
		if !ok {
			return false
		}
		id = o.ID
	}
	p := a.session.Project()
	pi, _, ok := p.FindObject(id)
	if !ok {
		return false
	}
	pg := p.Pages[pi]
	var others []vector.Rect
	for _, o := range pg.Objects {
		if o.ID != id {
			others = append(others, objectBounds(o))
		}
	}
	if err := a.session.BeginGesture(h.label()); err != nil {
		a.log.Debug("gesture not started", slog.Any("err", err))
		return false
	}
	a.mu.Lock()
	a.drag = &dragState{
		id:      id,
		handle:  h,
		origin:  pt,
		start:   p.Object(id).Clone(),
		anchors: vector.PageAnchors(pg.Width, pg.Height, others),
	}
	a.limiter = rate.NewLimiter(rate.Limit(a.dragRate), 1)
	a.mu.Unlock()
	return true
}

// PointerMove updates the dragged object silently. An update beyond the
// drag rate is held back and applied as soon as the rate allows, unless a
// later move or the end of the gesture supersedes it.
func (a *Adapter) PointerMove(pt vector.Pt) {
	a.gestureMu.Lock()
	defer a.gestureMu.Unlock()
	a.mu.Lock()
	d := a.drag
	if d == nil {
		a.mu.Unlock()
		return
	}
	patch, guides := a.gesturePatch(d, a.toPageLocked(pt))
	a.guides = guides
	now := a.now()
	if !a.limiter.AllowN(now, 1) {
		d.pending = &patch
		if d.stopFlush == nil {
			d.stopFlush = a.after(a.waitLocked(now), func() { a.flushPending(d) })
		}
		a.mu.Unlock()
		return
	}
	d.pending = nil
	a.mu.Unlock()
	a.session.UpdateObjectSilent(d.id, patch)
}

// waitLocked is how long until the limiter grants the next update.
func (a *Adapter) waitLocked(now time.Time) time.Duration {
	missing := 1 - a.limiter.TokensAt(now)
	if missing <= 0 {
		return 0
	}
	return time.Duration(missing / a.dragRate * float64(time.Second))
}

// flushPending applies the update held back during drag d, if d is still
// the current drag and nothing superseded it.
func (a *Adapter) flushPending(d *dragState) {
	a.gestureMu.Lock()
	defer a.gestureMu.Unlock()
	a.mu.Lock()
	d.stopFlush = nil
	if a.drag != d || d.pending == nil {
		a.mu.Unlock()
		return
	}
	patch := *d.pending
	d.pending = nil
	a.limiter.AllowN(a.now(), 1)
	a.mu.Unlock()
	a.session.UpdateObjectSilent(d.id, patch)
}

// endDragLocked clears the current drag and its flush timer.
func (a *Adapter) endDragLocked() *dragState {
	d := a.drag
	a.drag, a.guides = nil, nil
	if d != nil && d.stopFlush != nil {
		d.stopFlush()
		d.stopFlush = nil
	}
	return d
}

// PointerUp applies the final position and closes the gesture, which
// records one history entry when the object changed.
func (a *Adapter) PointerUp(pt vector.Pt) bool {
	a.gestureMu.Lock()
	defer a.gestureMu.Unlock()
	a.mu.Lock()
	if a.drag == nil {
		a.mu.Unlock()
		return false
	}
	patch, _ := a.gesturePatch(a.drag, a.toPageLocked(pt))
	d := a.endDragLocked()
	a.mu.Unlock()
	a.session.UpdateObjectSilent(d.id, patch)
	return a.session.EndGesture()
}

// PointerCancel aborts the gesture and restores the object.
func (a *Adapter) PointerCancel() {
	a.gestureMu.Lock()
	defer a.gestureMu.Unlock()
	a.mu.Lock()
	d := a.endDragLocked()
	a.mu.Unlock()
	if d != nil {
		a.session.CancelGesture()
	}
}

// Dragging reports whether a pointer gesture is in progress.
func (a *Adapter) Dragging() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.drag != nil
}

func (a *Adapter) gesturePatch(d *dragState, pt vector.Pt) (domain.ObjectPatch, []vector.GuideLine) {
	s := d.start
	dx, dy := pt.X-d.origin.X, pt.Y-d.origin.Y
	sx, sy := nonZero(s.ScaleX), nonZero(s.ScaleY)
	switch d.handle {
	case HandleMove:
		left, top := s.Left+dx, s.Top+dy
		if !a.snapping {
			return domain.Move(left, top), nil
		}
		moved := s
		moved.Left, moved.Top = left, top
		b := objectBounds(moved)
		snapped, guides := vector.ComputeSmartGuides(b, d.anchors, vector.SnapOptions{
			Threshold: a.snapThreshold, SnapToEdges: true, SnapToCenters: true,
		})
		return domain.Move(left+snapped.X-b.X, top+snapped.Y-b.Y), guides
	case HandleRotate:
		c := objectCenter(s)
		from := math.Atan2(d.origin.Y-c.Y, d.origin.X-c.X)
		to := math.Atan2(pt.Y-c.Y, pt.X-c.X)
		angle := normalizeAngle(s.Angle + (to-from)*180/math.Pi)
		r := vector.Rotate(angle * math.Pi / 180).Apply(vector.Pt{X: s.Width / 2 * sx, Y: s.Height / 2 * sy})
		return domain.ObjectPatch{
			Angle: &angle,
			Left:  domain.Ptr(vector.Round(c.X-r.X, 3)),
			Top:   domain.Ptr(vector.Round(c.Y-r.Y, 3)),
		}, nil
	default:
		// Sizes are worked out on the unsigned scale. A flipped axis points
		// the other way on the page, so the pointer delta along it is
		// mirrored and so is the shift of the origin.
		rad := s.Angle * math.Pi / 180
		l := vector.Rotate(-rad).Apply(vector.Pt{X: dx, Y: dy})
		fx, fy := math.Copysign(1, sx), math.Copysign(1, sy)
		l.X, l.Y = l.X*fx, l.Y*fy
		west := d.handle == HandleNW || d.handle == HandleSW
		north := d.handle == HandleNW || d.handle == HandleNE
		ax, ay := math.Abs(sx), math.Abs(sy)
		w, h := s.Width*ax, s.Height*ay
		nw, nh := w+l.X, h+l.Y
		if west {
			nw = w - l.X
		}
		if north {
			nh = h - l.Y
		}
		nw, nh = max(nw, MinObjectSize), max(nh, MinObjectSize)
		var off vector.Pt
		if west {
			off.X = (w - nw) * fx
		}
		if north {
			off.Y = (h - nh) * fy
		}
		shift := vector.Rotate(rad).Apply(off)
		return domain.ObjectPatch{
			Left:   domain.Ptr(vector.Round(s.Left+shift.X, 3)),
			Top:    domain.Ptr(vector.Round(s.Top+shift.Y, 3)),
			Width:  domain.Ptr(vector.Round(nw/ax, 3)),
			Height: domain.Ptr(vector.Round(nh/ay, 3)),
		}, nil
	}
}

func objectTransform(o domain.EditorObject) vector.Affine2D {
	return vector.ObjectTransform(o.Left, o.Top, o.Angle, nonZero(o.ScaleX), nonZero(o.ScaleY))
}

// objectBounds is the page-space bounding box of o.
func objectBounds(o domain.EditorObject) vector.Rect {
	return vector.TransformedBounds(objectTransform(o), vector.R(0, 0, o.Width, o.Height))
}

func objectCenter(o domain.EditorObject) vector.Pt {
	return objectTransform(o).Apply(vector.Pt{X: o.Width / 2, Y: o.Height / 2})
}

func normalizeAngle(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return vector.Round(deg, 2)
}

func nonZero(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}
