/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"inviteeditor/internal/config"
	"inviteeditor/internal/crash"
	"inviteeditor/internal/domain"
	"inviteeditor/internal/editor"
	"inviteeditor/internal/export"
	applog "inviteeditor/internal/log"
	"inviteeditor/internal/metrics"
	"inviteeditor/internal/storage"
	"inviteeditor/internal/templatepack"
	"inviteeditor/internal/ui"
	"inviteeditor/internal/version"
	"inviteeditor/internal/workspace"
)

func usage(w io.Writer) {
	fmt.Fprintln(w, "Invitation Editor")
	fmt.Fprintf(w, "Version: %s\n", version.String())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  inviteeditor [--metrics-addr :9100] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  version|-v|--version                       Show version")
	fmt.Fprintln(w, "  new [--pages n] [--title t] <out.json|->   Write a fresh project")
	fmt.Fprintln(w, "  info [project.json]                        Summarize a project file or the saved project")
	fmt.Fprintln(w, "  svg [--pages 1,2] <outdir> [project.json]  Export pages as SVG")
	fmt.Fprintln(w, "  png [--pages 1,2] [--preset web|print|thumb] [--scale s] <outdir> [project.json]")
	fmt.Fprintln(w, "                                             Export pages as PNG")
	fmt.Fprintln(w, "  pack [--fonts dir] <out.zip> [project.json]")
	fmt.Fprintln(w, "                                             Bundle a project and its fonts")
	fmt.Fprintln(w, "  unpack [--fonts dir] <pack.zip> [out.json] Install a template pack")
	fmt.Fprintln(w, "  ui [project.json]                          Launch desktop UI (build with -tags fyne)")
}

func main() {
	defer crash.Recover(nil, crash.Options{})
	if code := run(os.Args[1:], os.Stdout, os.Stderr); code != 0 {
		os.Exit(code)
	}
}

type cli struct {
	cfg    config.AppConfig
	stdout io.Writer
	stderr io.Writer
	log    *slog.Logger
}

func run(args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("inviteeditor", flag.ContinueOnError)
	global.SetOutput(stderr)
	global.Usage = func() { usage(stderr) }
	metricsAddr := global.String("metrics-addr", "", "serve Prometheus metrics on this address while the UI runs")
	if err := global.Parse(args); err != nil {
		return 2
	}
	rest := global.Args()
	if len(rest) == 0 {
		usage(stdout)
		return 0
	}

	cfg, cfgErr := config.Load()
	applog.Init(workspace.LogOptions(cfg.Logging))
	c := &cli{cfg: cfg, stdout: stdout, stderr: stderr, log: applog.WithComponent("cli")}
	if cfgErr != nil {
		c.log.Warn("config not loaded, using defaults", slog.Any("err", cfgErr))
	}
	c.log.Debug("start", slog.String("cmd", rest[0]), slog.Int("args", len(rest)-1))

	var err error
	switch rest[0] {
	case "version", "--version", "-v":
		fmt.Fprintln(stdout, "Invitation Editor")
		fmt.Fprintln(stdout, version.String())
		return 0
	case "new":
		err = c.newProject(rest[1:])
	case "info":
		err = c.info(rest[1:])
	case "svg", "png":
		err = c.export(rest[0], rest[1:])
	case "pack":
		err = c.pack(rest[1:])
	case "unpack":
		err = c.unpack(rest[1:])
	case "ui":
		err = c.ui(rest[1:], *metricsAddr)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", rest[0])
		usage(stderr)
		return 2
	}
	var ue usageError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &ue), errors.Is(err, flag.ErrHelp):
		fmt.Fprintln(stderr, err)
		usage(stderr)
		return 2
	default:
		c.log.Error(rest[0]+" failed", slog.Any("err", err))
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
}

// usageError marks bad command-line input.
type usageError string

func (e usageError) Error() string { return string(e) }

func (c *cli) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	return fs
}

func (c *cli) newProject(args []string) error {
	fs := c.flags("new")
	pages := fs.Int("pages", 1, "number of pages")
	width := fs.Float64("width", 0, "page width (config default when 0)")
	height := fs.Float64("height", 0, "page height (config default when 0)")
	background := fs.String("background", "", "page background colour")
	title := fs.String("title", "", "heading text placed on the first page")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return usageError("new requires <out.json> or -")
	}
	if *pages < 1 {
		return usageError("--pages must be at least 1")
	}
	s := editor.New(
		editor.WithConfig(c.cfg.Editor),
		editor.WithPageDefaults(*width, *height, *background),
	)
	if *title != "" {
		if _, err := s.AddTextPreset("Heading", *title); err != nil {
			return err
		}
	}
	first := s.Project().SelectedPageID
	for range *pages - 1 {
		s.AddPage()
	}
	s.SelectPage(first)
	data, err := s.ExportProject()
	if err != nil {
		return err
	}
	out := fs.Arg(0)
	if out == "-" {
		_, err = fmt.Fprintln(c.stdout, data)
		return err
	}
	if err := os.WriteFile(out, []byte(data), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	c.log.Info("project created", slog.String("path", out), slog.Int("pages", *pages))
	fmt.Fprintln(c.stdout, "Created project at", out)
	return nil
}

// open loads the project from path, or the saved project of the configured
// store when path is empty.
func (c *cli) open(path string) (*workspace.Workspace, error) {
	if path == "" {
		return workspace.Open(c.cfg)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	ws, err := workspace.Open(c.cfg, workspace.WithStore(storage.NewMemoryStore()))
	if err != nil {
		return nil, err
	}
	if err := ws.Import(string(data)); err != nil {
		_ = ws.Close()
		return nil, fmt.Errorf("import %s: %w", path, err)
	}
	return ws, nil
}

func (c *cli) info(args []string) error {
	fs := c.flags("info")
	historyN := fs.Int("history", 5, "save history entries to list (sqlite backend)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 1 {
		return usageError("info takes at most one project file")
	}
	ws, err := c.open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer ws.Close()

	p := ws.Session.Project()
	w := c.stdout
	if fs.Arg(0) == "" {
		fmt.Fprintf(w, "Store: %s (saved project found: %t)\n", editor.BackendName(ws.Store), ws.Restored)
	}
	fmt.Fprintf(w, "Pages: %d\n", len(p.Pages))
	for i, pg := range p.Pages {
		mark := " "
		if pg.ID == p.SelectedPageID {
			mark = "*"
		}
		fmt.Fprintf(w, "%s %d. %s  %gx%g  %s  %d objects%s\n",
			mark, i+1, orDefault(pg.Name, "Page "+strconv.Itoa(i+1)), pg.Width, pg.Height,
			pg.BackgroundColor, len(pg.Objects), objectKinds(pg.Objects))
	}
	if sq := ws.SQLite(); sq != nil && *historyN > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		hist, err := sq.History(ctx, editor.StorageKey, *historyN)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Recent saves: %d\n", len(hist))
		for _, h := range hist {
			fmt.Fprintf(w, "  #%d %s %s %d bytes\n", h.ID, h.TS.Format(time.RFC3339), h.Kind, h.Size)
		}
	}
	return nil
}

// objectKinds summarizes objs as " (shape:circle 2, text 1)".
func objectKinds(objs []domain.EditorObject) string {
	if len(objs) == 0 {
		return ""
	}
	counts := make(map[string]int)
	for i := range objs {
		counts[objs[i].SubType()]++
	}
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = fmt.Sprintf("%s %d", k, counts[k])
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func (c *cli) export(format string, args []string) error {
	fs := c.flags(format)
	pagesFlag := fs.String("pages", "", "comma separated page numbers, 1-based (all when empty)")
	preset := fs.String("preset", string(export.PresetWeb), "export preset: web, print or thumb")
	scale := fs.Float64("scale", 0, "raster scale (preset default when 0)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 || fs.NArg() > 2 {
		return usageError(format + " requires <outdir> [project.json]")
	}
	pages, err := parsePages(*pagesFlag)
	if err != nil {
		return err
	}
	ps := export.PresetName(strings.ToLower(*preset))
	switch ps {
	case export.PresetWeb, export.PresetPrint, export.PresetThumb:
	default:
		return usageError("unknown preset " + *preset)
	}
	ws, err := c.open(fs.Arg(1))
	if err != nil {
		return err
	}
	defer ws.Close()
	if n := len(ws.Session.Project().Pages); len(pages) > 0 && pages[len(pages)-1] >= n {
		return usageError(fmt.Sprintf("project has %d pages", n))
	}
	fontsDir, err := workspace.FontsDir()
	if err != nil {
		return err
	}
	out := fs.Arg(0)
	opt := export.BatchOptions{
		Preset:  ps,
		Formats: []string{format},
		Pages:   pages,
		Scale:   *scale,
		OutDir:  out,
		Fonts:   workspace.Fonts(fontsDir),
	}
	if err := ws.Export(opt); err != nil {
		return err
	}
	fmt.Fprintf(c.stdout, "Exported %s pages to %s\n", format, out)
	return nil
}

// parsePages turns "1,3" into zero-based indexes.
func parsePages(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var out []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 1 {
			return nil, usageError(fmt.Sprintf("bad page number %q", part))
		}
		out = append(out, n-1)
	}
	sort.Ints(out)
	return out, nil
}

// fontsDir is flagged when set, else the installed fonts directory.
func fontsDir(flagged string) (string, error) {
	if flagged != "" {
		return flagged, nil
	}
	return workspace.FontsDir()
}

func (c *cli) pack(args []string) error {
	fs := c.flags("pack")
	fonts := fs.String("fonts", "", "font directory to bundle (installed fonts when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 || fs.NArg() > 2 {
		return usageError("pack requires <out.zip> [project.json]")
	}
	dir, err := fontsDir(*fonts)
	if err != nil {
		return err
	}
	ws, err := c.open(fs.Arg(1))
	if err != nil {
		return err
	}
	defer ws.Close()
	data, err := ws.Session.ExportProject()
	if err != nil {
		return err
	}
	if err := templatepack.Export([]byte(data), dir, fs.Arg(0)); err != nil {
		return err
	}
	fmt.Fprintln(c.stdout, "Wrote template pack", fs.Arg(0))
	return nil
}

// unpack installs the fonts of a pack and writes its project to a file, or
// makes it the saved project when no file is named.
func (c *cli) unpack(args []string) error {
	fs := c.flags("unpack")
	fonts := fs.String("fonts", "", "install fonts here (installed fonts directory when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 || fs.NArg() > 2 {
		return usageError("unpack requires <pack.zip> [out.json]")
	}
	dir, err := fontsDir(*fonts)
	if err != nil {
		return err
	}
	res, err := templatepack.Install(fs.Arg(0), dir)
	if err != nil {
		return err
	}
	if out := fs.Arg(1); out != "" {
		if err := os.WriteFile(out, res.Project, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
	} else {
		ws, err := workspace.Open(c.cfg)
		if err != nil {
			return err
		}
		defer ws.Close()
		if err := ws.Import(string(res.Project)); err != nil {
			return err
		}
		if err := ws.Save(); err != nil {
			return err
		}
	}
	fmt.Fprintf(c.stdout, "Installed %d fonts (%d already present)\n", res.Fonts, res.Skipped)
	return nil
}

func (c *cli) ui(args []string, metricsAddr string) error {
	if len(args) > 1 {
		return usageError("ui takes at most one project file")
	}
	var path string
	if len(args) == 1 {
		path = args[0]
	}
	rec := metrics.New()
	if metricsAddr != "" {
		srv := &http.Server{Addr: metricsAddr, Handler: rec.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				c.log.Error("metrics server", slog.Any("err", err))
			}
		}()
		defer srv.Close()
		c.log.Info("serving metrics", slog.String("addr", metricsAddr))
	}
	return ui.Run(path, workspace.WithMetrics(rec))
}
