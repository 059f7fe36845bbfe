//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"image/color"
	"strconv"
	"sync/atomic"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	edcanvas "inviteeditor/internal/canvas"
	"inviteeditor/internal/domain"
	"inviteeditor/internal/editor"
	"inviteeditor/internal/export"
	"inviteeditor/internal/textlayout"
	"inviteeditor/internal/vector"
)

const (
	gridStep  = 50.0
	rulerStep = 100.0
	rulerBand = 18.0
)

var (
	colBackdrop = color.RGBA{R: 30, G: 30, B: 34, A: 255}
	colSelect   = color.RGBA{R: 0, G: 170, B: 255, A: 255}
	colRotate   = color.RGBA{R: 255, G: 170, B: 0, A: 255}
	colGuide    = color.RGBA{R: 236, G: 72, B: 153, A: 255}
	colGrid     = color.RGBA{R: 120, G: 120, B: 140, A: 60}
	colRuler    = color.RGBA{R: 50, G: 50, B: 56, A: 255}
	colRulerInk = color.RGBA{R: 200, G: 200, B: 210, A: 255}
)

// viewSurface is the canvas scene of a pageView. Every render asks the
// view to repaint.
type viewSurface struct {
	*edcanvas.Scene
	repaint func()
}

func (s *viewSurface) Render() error {
	err := s.Scene.Render()
	if s.repaint != nil {
		s.repaint()
	}
	return err
}

// pageView draws the selected page of a session and feeds pointer and key
// input back through the canvas adapter.
type pageView struct {
	widget.BaseWidget

	sess    *editor.Session
	surface *viewSurface
	adapter *edcanvas.Adapter
	icons   *edcanvas.IconRasterizer
	fonts   textlayout.Provider

	rev    atomic.Uint64
	origin vector.Pt

	shift       bool
	dragging    bool
	dragRefused bool
	last        vector.Pt
}

func newPageView(sess *editor.Session, fonts textlayout.Provider, opts ...edcanvas.AdapterOption) *pageView {
	if fonts == nil {
		fonts = textlayout.BasicProvider{}
	}
	v := &pageView{
		sess:  sess,
		icons: edcanvas.NewIconRasterizer(0),
		fonts: fonts,
	}
	v.ExtendBaseWidget(v)
	v.surface = &viewSurface{Scene: edcanvas.NewScene(v.fonts), repaint: v.repaint}
	opts = append(opts, edcanvas.WithIcons(v.icons))
	v.adapter = edcanvas.NewAdapter(sess, v.surface, opts...)
	return v
}

func (v *pageView) repaint() {
	v.rev.Add(1)
	fyne.Do(v.Refresh)
}

func (v *pageView) close() { v.adapter.Close() }

func (v *pageView) zoom() float64 {
	if z := v.adapter.View().Zoom; z > 0 {
		return z
	}
	return 1
}

func (v *pageView) toSurface(p fyne.Position) vector.Pt {
	return vector.Pt{X: float64(p.X) - v.origin.X, Y: float64(p.Y) - v.origin.Y}
}

func (v *pageView) handleAt(pt vector.Pt) edcanvas.Handle {
	sel := v.surface.Selected()
	if len(sel) != 1 {
		return edcanvas.HandleMove
	}
	p, ok := v.surface.Get(sel[0])
	if !ok {
		return edcanvas.HandleMove
	}
	return FrameFor(p.Attrs, v.zoom()).HandleAt(pt)
}

func (v *pageView) focus() {
	if c := fyne.CurrentApp().Driver().CanvasForObject(v); c != nil {
		c.Focus(v)
	}
}

// Tapped selects the object under the pointer.
func (v *pageView) Tapped(e *fyne.PointEvent) {
	v.focus()
	v.adapter.Click(v.toSurface(e.Position))
}

// Dragged starts a gesture on the first event and moves it afterwards.
func (v *pageView) Dragged(e *fyne.DragEvent) {
	pt := v.toSurface(e.Position)
	if v.dragRefused {
		return
	}
	if !v.dragging {
		start := vector.Pt{X: pt.X - float64(e.Dragged.DX), Y: pt.Y - float64(e.Dragged.DY)}
		if !v.adapter.PointerDown(start, v.handleAt(start)) {
			v.dragRefused = true
			return
		}
		v.dragging = true
	}
	v.last = pt
	v.adapter.PointerMove(pt)
	v.Refresh()
}

func (v *pageView) DragEnd() {
	if v.dragging {
		v.adapter.PointerUp(v.last)
	}
	v.dragging, v.dragRefused = false, false
	v.Refresh()
}

// Scrolled zooms in and out.
func (v *pageView) Scrolled(e *fyne.ScrollEvent) {
	k := edcanvas.Key("=")
	if e.Scrolled.DY < 0 {
		k = "-"
	}
	if v.adapter.HandleKey(k, edcanvas.ModCtrl) {
		v.repaint()
	}
}

func (v *pageView) FocusGained()   {}
func (v *pageView) FocusLost()     { v.shift = false }
func (v *pageView) TypedRune(rune) {}

func (v *pageView) TypedKey(e *fyne.KeyEvent) {
	k, ok := KeyFor(string(e.Name))
	if !ok {
		return
	}
	var mods edcanvas.Modifier
	if v.shift {
		mods |= edcanvas.ModShift
	}
	if v.adapter.HandleKey(k, mods) {
		v.repaint()
	}
}

func (v *pageView) KeyDown(e *fyne.KeyEvent) {
	if e.Name == desktop.KeyShiftLeft || e.Name == desktop.KeyShiftRight {
		v.shift = true
	}
}

func (v *pageView) KeyUp(e *fyne.KeyEvent) {
	if e.Name == desktop.KeyShiftLeft || e.Name == desktop.KeyShiftRight {
		v.shift = false
	}
}

// shortcut runs a ctrl shortcut through the adapter.
func (v *pageView) shortcut(k edcanvas.Key, mods edcanvas.Modifier) {
	if v.adapter.HandleKey(k, mods|edcanvas.ModCtrl) {
		v.repaint()
	}
}

func (v *pageView) CreateRenderer() fyne.WidgetRenderer {
	r := &pageViewRenderer{
		v:    v,
		bg:   canvas.NewRectangle(colBackdrop),
		page: canvas.NewImageFromImage(nil),
	}
	r.page.ScaleMode = canvas.ImageScalePixels
	r.page.FillMode = canvas.ImageFillStretch
	r.Layout(v.Size())
	return r
}

type pageViewRenderer struct {
	v       *pageView
	bg      *canvas.Rectangle
	page    *canvas.Image
	overlay []fyne.CanvasObject

	drawnRev  uint64
	drawnZoom float64
	drawnPage string
}

func (r *pageViewRenderer) Destroy() {}

func (r *pageViewRenderer) MinSize() fyne.Size { return fyne.NewSize(480, 360) }

func (r *pageViewRenderer) Objects() []fyne.CanvasObject {
	return append([]fyne.CanvasObject{r.bg, r.page}, r.overlay...)
}

func (r *pageViewRenderer) Refresh() {
	r.Layout(r.v.Size())
	canvas.Refresh(r.v)
}

func (r *pageViewRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.bg.Move(fyne.NewPos(0, 0))

	p := r.v.sess.Project()
	pg := p.SelectedPage()
	if pg == nil {
		r.page.Hide()
		r.overlay = nil
		return
	}
	z := r.v.zoom()
	r.v.origin = PageOrigin(float64(size.Width), float64(size.Height), pg.Width, pg.Height, z)
	o := r.v.origin

	if rev := r.v.rev.Load(); rev != r.drawnRev || z != r.drawnZoom || pg.ID != r.drawnPage || r.page.Image == nil {
		r.page.Image = export.RenderPage(*pg, export.PNGOptions{Scale: z, Fonts: r.v.fonts, Icons: r.v.icons})
		r.drawnRev, r.drawnZoom, r.drawnPage = rev, z, pg.ID
		r.page.Refresh()
	}
	r.page.Resize(fyne.NewSize(float32(pg.Width*z), float32(pg.Height*z)))
	r.page.Move(fyne.NewPos(float32(o.X), float32(o.Y)))
	r.page.Show()

	r.overlay = r.overlay[:0]
	view := r.v.adapter.View()
	if view.ShowGrid {
		r.grid(pg, z)
	}
	if view.ShowRulers {
		r.rulers(pg, z)
	}
	for _, id := range r.v.surface.Selected() {
		if prim, ok := r.v.surface.Get(id); ok {
			r.frame(FrameFor(prim.Attrs, z))
		}
	}
	for _, g := range r.v.adapter.Guides() {
		r.line(vector.Pt{X: g.From.X * z, Y: g.From.Y * z}, vector.Pt{X: g.To.X * z, Y: g.To.Y * z}, colGuide, 1)
	}
}

// line adds a line between two surface points.
func (r *pageViewRenderer) line(a, b vector.Pt, c color.Color, width float32) {
	o := r.v.origin
	l := canvas.NewLine(c)
	l.StrokeWidth = width
	l.Position1 = fyne.NewPos(float32(a.X+o.X), float32(a.Y+o.Y))
	l.Position2 = fyne.NewPos(float32(b.X+o.X), float32(b.Y+o.Y))
	r.overlay = append(r.overlay, l)
}

func (r *pageViewRenderer) grid(pg *domain.EditorPage, z float64) {
	for x := gridStep; x < pg.Width; x += gridStep {
		r.line(vector.Pt{X: x * z}, vector.Pt{X: x * z, Y: pg.Height * z}, colGrid, 1)
	}
	for y := gridStep; y < pg.Height; y += gridStep {
		r.line(vector.Pt{Y: y * z}, vector.Pt{X: pg.Width * z, Y: y * z}, colGrid, 1)
	}
}

func (r *pageViewRenderer) rulers(pg *domain.EditorPage, z float64) {
	o := r.v.origin
	top := canvas.NewRectangle(colRuler)
	top.Move(fyne.NewPos(float32(o.X), float32(o.Y-rulerBand)))
	top.Resize(fyne.NewSize(float32(pg.Width*z), rulerBand))
	left := canvas.NewRectangle(colRuler)
	left.Move(fyne.NewPos(float32(o.X-rulerBand), float32(o.Y)))
	left.Resize(fyne.NewSize(rulerBand, float32(pg.Height*z)))
	r.overlay = append(r.overlay, top, left)
	for x := 0.0; x <= pg.Width; x += rulerStep {
		r.line(vector.Pt{X: x * z, Y: -rulerBand}, vector.Pt{X: x * z, Y: 0}, colRulerInk, 1)
		r.label(strconv.Itoa(int(x)), vector.Pt{X: x*z + 2, Y: -rulerBand})
	}
	for y := 0.0; y <= pg.Height; y += rulerStep {
		r.line(vector.Pt{X: -rulerBand, Y: y * z}, vector.Pt{X: 0, Y: y * z}, colRulerInk, 1)
		r.label(strconv.Itoa(int(y)), vector.Pt{X: -rulerBand + 1, Y: y*z + 1})
	}
}

func (r *pageViewRenderer) label(s string, at vector.Pt) {
	t := canvas.NewText(s, colRulerInk)
	t.TextSize = 9
	t.Move(fyne.NewPos(float32(at.X+r.v.origin.X), float32(at.Y+r.v.origin.Y)))
	r.overlay = append(r.overlay, t)
}

func (r *pageViewRenderer) frame(f Frame) {
	for i := range f.Corners {
		r.line(f.Corners[i], f.Corners[(i+1)%4], colSelect, 1)
	}
	top := vector.Pt{X: (f.Corners[0].X + f.Corners[1].X) / 2, Y: (f.Corners[0].Y + f.Corners[1].Y) / 2}
	r.line(top, f.Rotate, colSelect, 1)
	o := r.v.origin
	for _, c := range f.Corners {
		h := canvas.NewRectangle(color.White)
		h.StrokeColor = colSelect
		h.StrokeWidth = 1
		h.Resize(fyne.NewSize(HandleSize, HandleSize))
		h.Move(fyne.NewPos(float32(c.X+o.X-HandleSize/2), float32(c.Y+o.Y-HandleSize/2)))
		r.overlay = append(r.overlay, h)
	}
	rot := canvas.NewCircle(colRotate)
	rot.Resize(fyne.NewSize(HandleSize, HandleSize))
	rot.Move(fyne.NewPos(float32(f.Rotate.X+o.X-HandleSize/2), float32(f.Rotate.Y+o.Y-HandleSize/2)))
	r.overlay = append(r.overlay, rot)
}
