/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"

	"inviteeditor/internal/canvas"
	"inviteeditor/internal/domain"
	"inviteeditor/internal/textlayout"
	"inviteeditor/internal/vector"
)

// PNGOptions controls page rasterization.
//   - Scale is output pixels per page unit; zero means 1.
//   - Fonts resolves text faces; nil uses the basic fixed face.
//   - Icons rasterizes icon objects; nil uses a private rasterizer.
//   - Pages limits ExportPNGPages to these zero-based indices; empty means all.
type PNGOptions struct {
	Scale float64
	Fonts textlayout.Provider
	Icons *canvas.IconRasterizer
	Pages []int
}

func (o PNGOptions) scale() float64 {
	if o.Scale <= 0 {
		return 1
	}
	return o.Scale
}

// PixelSize is the size in pixels of pg rendered at scale.
func PixelSize(pg domain.EditorPage, scale float64) (int, int) {
	if scale <= 0 {
		scale = 1
	}
	return max(1, int(math.Round(pg.Width*scale))), max(1, int(math.Round(pg.Height*scale)))
}

// RenderPage draws pg with its objects bottom to top. Objects that cannot
// be drawn appear as grey placeholders.
func RenderPage(pg domain.EditorPage, opt PNGOptions) *image.RGBA {
	s := opt.scale()
	w, h := PixelSize(pg, s)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	bg := vector.ColorOr(pg.BackgroundColor, vector.White)
	draw.Draw(img, img.Bounds(), image.NewUniform(bg.NRGBA()), image.Point{}, draw.Src)

	icons := opt.Icons
	if icons == nil {
		icons = canvas.NewIconRasterizer(0)
	}
	fonts := opt.Fonts
	if fonts == nil {
		fonts = textlayout.BasicProvider{}
	}
	r := &rasterizer{
		img:    img,
		filler: rasterx.NewFiller(w, h, rasterx.NewScannerGV(w, h, img, img.Bounds())),
		page:   vector.Scale(s, s),
		scale:  s,
		fonts:  fonts,
	}
	for _, n := range canvas.PageNodes(pg, icons, fonts) {
		r.node(n)
	}
	return img
}

// RenderPagePNG encodes RenderPage(pg, opt) as PNG into w.
func RenderPagePNG(w io.Writer, pg domain.EditorPage, opt PNGOptions) error {
	if err := png.Encode(w, RenderPage(pg, opt)); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// ExportPNGPages writes each page of p to outDir as page-<n>.png, n being
// the 1-based page position.
func ExportPNGPages(p domain.EditorProject, outDir string, opt PNGOptions) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	for _, pidx := range pageIndexes(len(p.Pages), opt.Pages) {
		if pidx < 0 || pidx >= len(p.Pages) {
			continue
		}
		name := filepath.Join(outDir, fmt.Sprintf("page-%d.png", pidx+1))
		f, err := os.Create(name)
		if err != nil {
			return fmt.Errorf("create png: %w", err)
		}
		if err := RenderPagePNG(f, p.Pages[pidx], opt); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("close png: %w", err)
		}
	}
	return nil
}

func pageIndexes(total int, specific []int) []int {
	if len(specific) == 0 {
		out := make([]int, total)
		for i := range out {
			out[i] = i
		}
		return out
	}
	return specific
}

type rasterizer struct {
	img    *image.RGBA
	filler *rasterx.Filler
	page   vector.Affine2D
	scale  float64
	fonts  textlayout.Provider
}

// Number of segments used to approximate a full ellipse and a rounded corner.
const (
	ellipseSegments = 72
	cornerSegments  = 8
)

func (r *rasterizer) node(n vector.Node) {
	m := r.page.Mul(n.Transform())
	switch n := n.(type) {
	case *vector.RectNode:
		r.shape(roundedRect(n.Rect, n.Radius), m, n.Fill(), n.Stroke())
	case *vector.EllipseNode:
		r.shape(ellipse(n.Rect), m, n.Fill(), n.Stroke())
	case *vector.PathNode:
		r.shape(flatten(n.Path), m, n.Fill(), n.Stroke())
	case *vector.TextNode:
		r.text(n, m)
	case *vector.RasterNode:
		r.raster(n, m)
	}
}

func (r *rasterizer) shape(pts []vector.Pt, m vector.Affine2D, f vector.Fill, s vector.Stroke) {
	if f.Enabled {
		r.fill(pts, m, f.Color)
	}
	if s.Enabled {
		hw := s.Width / 2
		for i := range pts {
			a, b := pts[i], pts[(i+1)%len(pts)]
			r.fill(segmentQuad(a, b, hw), m, s.Color)
		}
	}
}

// fill paints the closed polygon pts mapped through m.
func (r *rasterizer) fill(pts []vector.Pt, m vector.Affine2D, c vector.Color) {
	if len(pts) < 3 || c.A == 0 {
		return
	}
	f := r.filler
	f.Clear()
	f.SetColor(c.NRGBA())
	for i, p := range pts {
		q := m.Apply(p)
		if i == 0 {
			f.Start(rasterx.ToFixedP(q.X, q.Y))
			continue
		}
		f.Line(rasterx.ToFixedP(q.X, q.Y))
	}
	f.Stop(true)
	f.Draw()
}

// segmentQuad is the rectangle of half-width hw around segment ab,
// extended by hw at both ends so neighbouring segments meet.
func segmentQuad(a, b vector.Pt, hw float64) []vector.Pt {
	dx, dy := b.X-a.X, b.Y-a.Y
	l := math.Hypot(dx, dy)
	if l == 0 {
		return nil
	}
	ux, uy := dx/l*hw, dy/l*hw
	nx, ny := -uy, ux
	a = vector.Pt{X: a.X - ux, Y: a.Y - uy}
	b = vector.Pt{X: b.X + ux, Y: b.Y + uy}
	return []vector.Pt{
		{X: a.X + nx, Y: a.Y + ny},
		{X: b.X + nx, Y: b.Y + ny},
		{X: b.X - nx, Y: b.Y - ny},
		{X: a.X - nx, Y: a.Y - ny},
	}
}

func roundedRect(rc vector.Rect, radius float64) []vector.Pt {
	radius = min(radius, rc.W/2, rc.H/2)
	if radius <= 0 {
		return []vector.Pt{{X: rc.X, Y: rc.Y}, {X: rc.X + rc.W, Y: rc.Y}, {X: rc.X + rc.W, Y: rc.Y + rc.H}, {X: rc.X, Y: rc.Y + rc.H}}
	}
	core := rc.Inset(radius, radius)
	corners := []struct {
		c     vector.Pt
		start float64
	}{
		{vector.Pt{X: core.X + core.W, Y: core.Y}, -math.Pi / 2},
		{vector.Pt{X: core.X + core.W, Y: core.Y + core.H}, 0},
		{vector.Pt{X: core.X, Y: core.Y + core.H}, math.Pi / 2},
		{vector.Pt{X: core.X, Y: core.Y}, math.Pi},
	}
	pts := make([]vector.Pt, 0, 4*(cornerSegments+1))
	for _, k := range corners {
		for i := 0; i <= cornerSegments; i++ {
			a := k.start + float64(i)/cornerSegments*math.Pi/2
			pts = append(pts, vector.Pt{X: k.c.X + radius*math.Cos(a), Y: k.c.Y + radius*math.Sin(a)})
		}
	}
	return pts
}

func ellipse(rc vector.Rect) []vector.Pt {
	c := rc.Center()
	pts := make([]vector.Pt, ellipseSegments)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / ellipseSegments
		pts[i] = vector.Pt{X: c.X + rc.W/2*math.Cos(a), Y: c.Y + rc.H/2*math.Sin(a)}
	}
	return pts
}

// flatten approximates the first subpath of p by a polygon.
func flatten(p vector.Path) []vector.Pt {
	const steps = 16
	var pts []vector.Pt
	var cur vector.Pt
	for _, c := range p.Cmds {
		d := c.Data
		switch c.Op {
		case vector.MoveTo:
			if len(pts) > 0 {
				return pts
			}
			cur = vector.Pt{X: d[0], Y: d[1]}
			pts = append(pts, cur)
		case vector.LineTo:
			cur = vector.Pt{X: d[0], Y: d[1]}
			pts = append(pts, cur)
		case vector.QuadTo:
			p0 := cur
			for i := 1; i <= steps; i++ {
				t := float64(i) / steps
				u := 1 - t
				cur = vector.Pt{
					X: u*u*p0.X + 2*u*t*d[0] + t*t*d[2],
					Y: u*u*p0.Y + 2*u*t*d[1] + t*t*d[3],
				}
				pts = append(pts, cur)
			}
		case vector.CubicTo:
			p0 := cur
			for i := 1; i <= steps; i++ {
				t := float64(i) / steps
				u := 1 - t
				cur = vector.Pt{
					X: u*u*u*p0.X + 3*u*u*t*d[0] + 3*u*t*t*d[2] + t*t*t*d[4],
					Y: u*u*u*p0.Y + 3*u*u*t*d[1] + 3*u*t*t*d[3] + t*t*t*d[5],
				}
				pts = append(pts, cur)
			}
		case vector.Close:
			return pts
		}
	}
	return pts
}

// text lays the lines out into an offscreen buffer at output resolution and
// maps the buffer onto the page, which handles rotation.
func (r *rasterizer) text(n *vector.TextNode, m vector.Affine2D) {
	s := r.scale
	bw, bh := int(math.Ceil(n.Box.W*s)), int(math.Ceil(n.Box.H*s))
	if bw <= 0 || bh <= 0 {
		return
	}
	buf := image.NewRGBA(image.Rect(0, 0, bw, bh))
	if n.Background.A > 0 {
		draw.Draw(buf, buf.Bounds(), image.NewUniform(n.Background.NRGBA()), image.Point{}, draw.Src)
	}
	face, met := r.fonts.Resolve(textlayout.SpecFor(n.Family, n.Size*s, n.Weight, n.Style))
	lh := n.LineHeight
	if lh <= 0 {
		lh = 1
	}
	advance := float64(met.Ascent+met.Descent) * lh
	src := image.NewUniform(n.Fill().Color.NRGBA())
	d := &font.Drawer{Dst: buf, Src: src, Face: face}
	for i, line := range n.Lines {
		lw := float64(font.MeasureString(face, line)) / 64
		var x float64
		switch n.Align {
		case "center":
			x = (float64(bw) - lw) / 2
		case "right":
			x = float64(bw) - lw
		}
		base := float64(met.Ascent) + float64(i)*advance
		d.Dot = fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(base * 64)}
		d.DrawString(line)
		if y, ok := decorationY(n.Decoration, base, float64(met.Ascent)); ok {
			thick := max(1, int(math.Round(s)))
			rect := image.Rect(int(x), int(y), int(x+lw), int(y)+thick)
			draw.Draw(buf, rect, src, image.Point{}, draw.Over)
		}
	}
	local := m.Mul(vector.Translate(n.Box.X, n.Box.Y)).Mul(vector.Scale(1/s, 1/s))
	draw.BiLinear.Transform(r.img, aff3(local), buf, buf.Bounds(), draw.Over, nil)
}

func decorationY(decoration string, baseline, ascent float64) (float64, bool) {
	switch decoration {
	case "underline":
		return baseline + 2, true
	case "line-through":
		return baseline - ascent/3, true
	}
	return 0, false
}

func (r *rasterizer) raster(n *vector.RasterNode, m vector.Affine2D) {
	if n.Img == nil {
		frame := vector.Outline(vector.ColorOr(canvas.FallbackStroke, vector.Black), 1)
		r.shape(roundedRect(n.Box, 0), m, vector.Fill{}, frame)
		return
	}
	sr := n.Img.Bounds()
	if sr.Empty() {
		return
	}
	local := m.Mul(vector.Translate(n.Box.X, n.Box.Y)).
		Mul(vector.Scale(n.Box.W/float64(sr.Dx()), n.Box.H/float64(sr.Dy()))).
		Mul(vector.Translate(-float64(sr.Min.X), -float64(sr.Min.Y)))
	draw.BiLinear.Transform(r.img, aff3(local), n.Img, sr, draw.Over, nil)
}

// aff3 converts m to the row-major form x/image/draw expects.
func aff3(m vector.Affine2D) f64.Aff3 {
	return f64.Aff3{m.A, m.C, m.E, m.B, m.D, m.F}
}
