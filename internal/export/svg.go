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
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"inviteeditor/internal/canvas"
	"inviteeditor/internal/domain"
	"inviteeditor/internal/textlayout"
	"inviteeditor/internal/vector"
)

// SVGOptions controls SVG export behavior.
//   - The coordinate system matches the page; width and height are in pixels.
//   - Icons are embedded as tinted PNG bitmaps; Icons may be nil.
//   - Fonts only drives line wrapping; nil wraps with textlayout.BasicProvider.
//     Fonts are not embedded.
type SVGOptions struct {
	Icons *canvas.IconRasterizer
	Fonts textlayout.Provider
	Pages []int
}

type writef func(format string, args ...any)

// PageSVG writes pg as a standalone SVG document.
func PageSVG(w io.Writer, pg domain.EditorPage, opt SVGOptions) error {
	icons := opt.Icons
	if icons == nil {
		icons = canvas.NewIconRasterizer(0)
	}
	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}

	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%gpx\" height=\"%gpx\" viewBox=\"0 0 %g %g\">\n", pg.Width, pg.Height, pg.Width, pg.Height)
	bg := vector.ColorOr(pg.BackgroundColor, vector.White)
	wf("  <rect x=\"0\" y=\"0\" width=\"%g\" height=\"%g\" %s/>\n", pg.Width, pg.Height, paint("fill", bg))

	for _, n := range canvas.PageNodes(pg, icons, opt.Fonts) {
		if err := svgNode(wf, n); err != nil {
			return err
		}
	}
	wf("</svg>\n")
	if werr != nil {
		return fmt.Errorf("build svg: %w", werr)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

// ExportSVGPages writes each page of p to outDir as page-<n>.svg.
func ExportSVGPages(p domain.EditorProject, outDir string, opt SVGOptions) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	for _, pidx := range pageIndexes(len(p.Pages), opt.Pages) {
		if pidx < 0 || pidx >= len(p.Pages) {
			continue
		}
		var buf bytes.Buffer
		if err := PageSVG(&buf, p.Pages[pidx], opt); err != nil {
			return err
		}
		name := filepath.Join(outDir, fmt.Sprintf("page-%d.svg", pidx+1))
		if err := os.WriteFile(name, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write svg: %w", err)
		}
	}
	return nil
}

func svgNode(wf writef, n vector.Node) error {
	m := n.Transform()
	// Adding zero turns negative zeros into plain zeros.
	xf := fmt.Sprintf("transform=\"matrix(%g %g %g %g %g %g)\"", m.A+0, m.B+0, m.C+0, m.D+0, m.E+0, m.F+0)
	switch n := n.(type) {
	case *vector.RectNode:
		r := n.Rect
		wf("  <rect %s x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" rx=\"%g\" ry=\"%g\" %s/>\n",
			xf, r.X, r.Y, r.W, r.H, n.Radius, n.Radius, shapePaint(n))
	case *vector.EllipseNode:
		c := n.Rect.Center()
		wf("  <ellipse %s cx=\"%g\" cy=\"%g\" rx=\"%g\" ry=\"%g\" %s/>\n",
			xf, c.X, c.Y, n.Rect.W/2, n.Rect.H/2, shapePaint(n))
	case *vector.PathNode:
		wf("  <path %s d=\"%s\" %s/>\n", xf, pathData(n.Path), shapePaint(n))
	case *vector.TextNode:
		svgText(wf, n, xf)
	case *vector.RasterNode:
		href := n.Source
		if href == "" && n.Img != nil {
			var b bytes.Buffer
			if err := png.Encode(&b, n.Img); err != nil {
				return fmt.Errorf("encode embedded image: %w", err)
			}
			href = "data:image/png;base64," + base64.StdEncoding.EncodeToString(b.Bytes())
		}
		if href == "" {
			wf("  <rect %s x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"none\" stroke=\"%s\" stroke-width=\"1\"/>\n",
				xf, n.Box.X, n.Box.Y, n.Box.W, n.Box.H, canvas.FallbackStroke)
			return nil
		}
		wf("  <image %s x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" preserveAspectRatio=\"none\" href=\"%s\"/>\n",
			xf, n.Box.X, n.Box.Y, n.Box.W, n.Box.H, escAttr(href))
	}
	return nil
}

func svgText(wf writef, n *vector.TextNode, xf string) {
	wf("  <g %s>\n", xf)
	if n.Background.A > 0 {
		wf("    <rect x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" %s/>\n", n.Box.X, n.Box.Y, n.Box.W, n.Box.H, paint("fill", n.Background))
	}
	anchor, x := "start", n.Box.X
	switch n.Align {
	case "center":
		anchor, x = "middle", n.Box.X+n.Box.W/2
	case "right":
		anchor, x = "end", n.Box.X+n.Box.W
	}
	family := n.Family
	if family == "" {
		family = "Helvetica, Arial, sans-serif"
	}
	wf("    <text font-family=\"%s\" font-size=\"%g\" font-weight=\"%s\" font-style=\"%s\" text-anchor=\"%s\"",
		escAttr(family), n.Size, escAttr(orDefault(n.Weight, "normal")), escAttr(orDefault(n.Style, "normal")), anchor)
	if n.Decoration != "" {
		wf(" text-decoration=\"%s\"", escAttr(n.Decoration))
	}
	wf(" %s>\n", paint("fill", n.Fill().Color))
	lh := n.LineHeight
	if lh <= 0 {
		lh = 1
	}
	for i, line := range n.Lines {
		// Baseline at 0.8em approximates the ascent of common faces.
		y := n.Box.Y + n.Size*0.8 + float64(i)*n.Size*lh
		wf("      <tspan x=\"%g\" y=\"%g\">%s</tspan>\n", x, y, escText(line))
	}
	wf("    </text>\n  </g>\n")
}

func shapePaint(n vector.Node) string {
	out := "fill=\"none\""
	if f := n.Fill(); f.Enabled {
		out = paint("fill", f.Color)
	}
	if s := n.Stroke(); s.Enabled {
		out += fmt.Sprintf(" %s stroke-width=\"%g\"", paint("stroke", s.Color), s.Width)
	}
	return out
}

// paint renders c as an SVG colour attribute plus opacity when needed.
func paint(attr string, c vector.Color) string {
	out := fmt.Sprintf("%s=\"#%02x%02x%02x\"", attr, c.R, c.G, c.B)
	if c.A < 255 {
		out += fmt.Sprintf(" %s-opacity=\"%.3g\"", attr, float64(c.A)/255)
	}
	return out
}

func pathData(p vector.Path) string {
	var b strings.Builder
	for _, c := range p.Cmds {
		d := c.Data
		switch c.Op {
		case vector.MoveTo:
			fmt.Fprintf(&b, "M%g %g ", d[0], d[1])
		case vector.LineTo:
			fmt.Fprintf(&b, "L%g %g ", d[0], d[1])
		case vector.QuadTo:
			fmt.Fprintf(&b, "Q%g %g %g %g ", d[0], d[1], d[2], d[3])
		case vector.CubicTo:
			fmt.Fprintf(&b, "C%g %g %g %g %g %g ", d[0], d[1], d[2], d[3], d[4], d[5])
		case vector.Close:
			b.WriteString("Z ")
		}
	}
	return strings.TrimSpace(b.String())
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func escAttr(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '"':
			out = append(out, "&quot;"...)
		case '&':
			out = append(out, "&amp;"...)
		case '<':
			out = append(out, "&lt;"...)
		case '\n':
			out = append(out, ' ')
		case '\r':
			// skip
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}

func escText(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '&':
			out = append(out, "&amp;"...)
		case '<':
			out = append(out, "&lt;"...)
		case '>':
			out = append(out, "&gt;"...)
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}
