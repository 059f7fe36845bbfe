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
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	fstorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"inviteeditor/internal/autosave"
	edcanvas "inviteeditor/internal/canvas"
	"inviteeditor/internal/config"
	"inviteeditor/internal/crash"
	"inviteeditor/internal/domain"
	"inviteeditor/internal/editor"
	"inviteeditor/internal/export"
	applog "inviteeditor/internal/log"
	"inviteeditor/internal/telemetry"
	"inviteeditor/internal/textlayout"
	"inviteeditor/internal/workspace"
)

// Run opens the editor window on the configured store. A non-empty
// importPath names a project JSON file that replaces the restored project.
// opts reach workspace.Open.
func Run(importPath string, opts ...workspace.Option) error {
	cfg, cfgErr := config.Load()
	applog.Init(workspace.LogOptions(cfg.Logging))
	l := applog.WithComponent("ui")
	if cfgErr != nil {
		l.Warn("config not loaded, using defaults", slog.Any("err", cfgErr))
	}
	l.Info("starting UI")

	ws, err := workspace.Open(cfg, opts...)
	if err != nil {
		return err
	}
	defer ws.Close()
	defer crash.Recover(ws.Session, crash.Options{Store: ws.Store, Telemetry: ws.Telemetry})

	if importPath != "" {
		data, err := os.ReadFile(importPath)
		if err != nil {
			return fmt.Errorf("read %s: %w", importPath, err)
		}
		if err := ws.Import(string(data)); err != nil {
			return fmt.Errorf("import %s: %w", importPath, err)
		}
	}
	ws.Telemetry.Send(telemetry.EventStarted, map[string]any{"surface": "desktop"})

	fyneApp := app.NewWithID("inviteeditor")
	w := fyneApp.NewWindow("Invitation Editor")
	w.SetMaster()
	prefs := fyneApp.Preferences()
	winW := max(prefs.IntWithFallback("window.width", 1280), 800)
	winH := max(prefs.IntWithFallback("window.height", 860), 600)
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	e := &editorWindow{ws: ws, w: w, log: l, status: widget.NewLabel("Ready")}
	fontsDir, _ := workspace.FontsDir()
	e.view = newPageView(ws.Session, workspace.Fonts(fontsDir),
		edcanvas.WithConfig(cfg.Editor),
		edcanvas.WithMetrics(ws.Metrics),
		edcanvas.WithLogger(l),
	)
	if cfg.Autosave.Enabled {
		e.autosave = autosave.New(ws.Session, time.Duration(cfg.Autosave.DelayMs)*time.Millisecond,
			autosave.WithLogger(l),
			autosave.OnSave(func(err error) {
				fyne.Do(func() { e.saved(err) })
			}),
		)
	}
	w.SetContent(e.build())
	w.SetMainMenu(e.menu())
	e.bindShortcuts()
	unsubscribe := ws.Session.Subscribe(func(domain.EditorProject) { fyne.Do(e.refresh) })
	e.refresh()

	w.SetCloseIntercept(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		unsubscribe()
		if e.autosave != nil {
			_ = e.autosave.Close()
		}
		e.view.close()
		w.Close()
	})
	w.ShowAndRun()
	l.Info("UI closed")
	return nil
}

type editorWindow struct {
	ws       *workspace.Workspace
	w        fyne.Window
	log      *slog.Logger
	view     *pageView
	autosave *autosave.Autosaver

	pages    *widget.List
	textEdit *widget.Entry
	status   *widget.Label
	history  *widget.Label
	syncing  bool
}

func (e *editorWindow) sess() *editor.Session { return e.ws.Session }

func (e *editorWindow) build() fyne.CanvasObject {
	s := e.sess()
	e.pages = widget.NewList(
		func() int { return len(s.Project().Pages) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, o fyne.CanvasObject) {
			p := s.Project()
			if int(i) < len(p.Pages) {
				o.(*widget.Label).SetText(pageLabel(int(i), p.Pages[i]))
			}
		},
	)
	e.pages.OnSelected = func(i widget.ListItemID) {
		if e.syncing {
			return
		}
		p := s.Project()
		if int(i) < len(p.Pages) {
			s.SelectPage(p.Pages[i].ID)
		}
	}
	pageButtons := container.NewGridWithColumns(3,
		widget.NewButtonWithIcon("", theme.ContentAddIcon(), func() { s.AddPage() }),
		widget.NewButtonWithIcon("", theme.ContentCopyIcon(), func() {
			if id := s.Project().SelectedPageID; id != "" {
				s.DuplicatePage(id)
			}
		}),
		widget.NewButtonWithIcon("", theme.DeleteIcon(), func() {
			if id := s.Project().SelectedPageID; id != "" {
				s.DeletePage(id)
			}
		}),
	)
	left := container.NewBorder(widget.NewLabel("Pages"), pageButtons, nil, nil, e.pages)

	e.textEdit = widget.NewMultiLineEntry()
	e.textEdit.SetPlaceHolder("Select a text object")
	e.textEdit.OnChanged = func(text string) {
		if e.syncing {
			return
		}
		if o, ok := s.SelectedObject(); ok && o.Type == domain.TypeText && o.Text.Text != text {
			s.UpdateObject(o.ID, domain.ObjectPatch{Text: &domain.TextPatch{Text: &text}})
		}
	}
	onSelected := func(fn func(id string)) func() {
		return func() {
			if o, ok := s.SelectedObject(); ok {
				fn(o.ID)
			}
		}
	}
	e.history = widget.NewLabel("")
	right := container.NewVBox(
		widget.NewLabelWithStyle("Object", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewGridWithColumns(2,
			widget.NewButton("Forward", onSelected(s.MoveObjectUp)),
			widget.NewButton("Backward", onSelected(s.MoveObjectDown)),
			widget.NewButton("Duplicate", onSelected(func(id string) { s.DuplicateObject(id) })),
			widget.NewButton("Delete", onSelected(s.DeleteObject)),
		),
		widget.NewLabel("Text"),
		e.textEdit,
		widget.NewSeparator(),
		e.history,
	)

	presets := widget.NewSelect(textlayout.ListPresets(), func(name string) {
		if name != "" {
			e.report("add text", addOnly(s.AddTextPreset(name, name)))
		}
	})
	presets.PlaceHolder = "Styled text"
	toolbar := container.NewHBox(
		widget.NewButtonWithIcon("Text", theme.ContentAddIcon(), func() { e.report("add text", addOnly(s.AddText("Your text"))) }),
		presets,
		widget.NewButton("Rectangle", func() { e.report("add shape", addOnly(s.AddShape(domain.ShapeRect))) }),
		widget.NewButton("Circle", func() { e.report("add shape", addOnly(s.AddShape(domain.ShapeCircle))) }),
		widget.NewButton("Triangle", func() { e.report("add shape", addOnly(s.AddShape(domain.ShapeTriangle))) }),
		widget.NewButtonWithIcon("Image", theme.FileImageIcon(), e.addImage),
		widget.NewSeparator(),
		widget.NewButtonWithIcon("", theme.ContentUndoIcon(), func() { s.Undo() }),
		widget.NewButtonWithIcon("", theme.ContentRedoIcon(), func() { s.Redo() }),
		widget.NewButtonWithIcon("", theme.DocumentSaveIcon(), e.save),
	)

	center := container.NewBorder(toolbar, e.status, nil, nil, e.view)
	split := container.NewHSplit(left, container.NewHSplit(center, container.NewPadded(right)))
	split.Offset = 0.15
	return split
}

func addOnly(_ string, err error) error { return err }

func pageLabel(i int, pg domain.EditorPage) string {
	if name := strings.TrimSpace(pg.Name); name != "" {
		return fmt.Sprintf("%d. %s", i+1, name)
	}
	return fmt.Sprintf("Page %d", i+1)
}

// refresh brings the side panels in line with the session.
func (e *editorWindow) refresh() {
	s := e.sess()
	p := s.Project()
	e.syncing = true
	defer func() { e.syncing = false }()

	e.pages.Refresh()
	if i := p.PageIndex(p.SelectedPageID); i >= 0 {
		e.pages.Select(widget.ListItemID(i))
	}
	if o, ok := s.SelectedObject(); ok && o.Type == domain.TypeText {
		if e.textEdit.Text != o.Text.Text {
			e.textEdit.SetText(o.Text.Text)
		}
		e.textEdit.Enable()
	} else {
		e.textEdit.SetText("")
		e.textEdit.Disable()
	}
	st := s.HistoryStats()
	e.history.SetText(fmt.Sprintf("History: %d undo, %d redo", st.UndoDepth, st.RedoDepth))
	objects := 0
	if pg := p.SelectedPage(); pg != nil {
		objects = len(pg.Objects)
	}
	e.status.SetText(fmt.Sprintf("%d pages, %d objects on this page", len(p.Pages), objects))
}

func (e *editorWindow) report(op string, err error) {
	if err == nil {
		return
	}
	e.log.Error(op, slog.Any("err", err))
	dialog.ShowError(err, e.w)
}

func (e *editorWindow) save() {
	err := e.ws.Save()
	e.saved(err)
	e.report("save", err)
}

func (e *editorWindow) saved(err error) {
	if err != nil {
		e.status.SetText("Save failed: " + err.Error())
		return
	}
	e.status.SetText("Saved " + time.Now().Format("15:04:05"))
}

// addImage adds a picked file as an image, or as an icon when it is SVG.
func (e *editorWindow) addImage() {
	d := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil || rc == nil {
			e.report("open image", err)
			return
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			e.report("read image", err)
			return
		}
		if strings.EqualFold(rc.URI().Extension(), ".svg") {
			name := strings.TrimSuffix(rc.URI().Name(), rc.URI().Extension())
			e.report("add icon", addOnly(e.sess().AddIcon(domain.IconSpec{Name: name, SVG: string(data)})))
			return
		}
		url := "data:" + rc.URI().MimeType() + ";base64," + base64.StdEncoding.EncodeToString(data)
		e.report("add image", addOnly(e.sess().AddImage(url)))
	}, e.w)
	d.SetFilter(fstorage.NewExtensionFileFilter([]string{".png", ".jpg", ".jpeg", ".gif", ".svg"}))
	d.Show()
}

func (e *editorWindow) importProject() {
	d := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil || rc == nil {
			e.report("open project", err)
			return
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err == nil {
			err = e.ws.Import(string(data))
		}
		e.report("import project", err)
	}, e.w)
	d.SetFilter(fstorage.NewExtensionFileFilter([]string{".json"}))
	d.Show()
}

func (e *editorWindow) exportProject() {
	d := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil || wc == nil {
			e.report("save project file", err)
			return
		}
		defer wc.Close()
		data, err := e.sess().ExportProject()
		if err == nil {
			_, err = io.WriteString(wc, data)
		}
		e.report("export project", err)
	}, e.w)
	d.SetFileName("invitation.json")
	d.Show()
}

func (e *editorWindow) exportPages(preset export.PresetName) {
	dialog.ShowFolderOpen(func(dir fyne.ListableURI, err error) {
		if err != nil || dir == nil {
			e.report("choose folder", err)
			return
		}
		out := filepath.Join(dir.Path(), "invitation-"+string(preset))
		if err := e.ws.Export(export.BatchOptions{Preset: preset, OutDir: out}); err != nil {
			e.report("export pages", err)
			return
		}
		dialog.ShowInformation("Export", "Pages written to "+out, e.w)
	}, e.w)
}

func (e *editorWindow) menu() *fyne.MainMenu {
	s := e.sess()
	importItem := fyne.NewMenuItem("Import Project…", e.importProject)
	exportItem := fyne.NewMenuItem("Export Project…", e.exportProject)
	saveItem := fyne.NewMenuItem("Save", e.save)
	saveItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyS, Modifier: fyne.KeyModifierShortcutDefault}
	importItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyO, Modifier: fyne.KeyModifierShortcutDefault}

	file := fyne.NewMenu("File",
		importItem,
		exportItem,
		saveItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export Pages for Web…", func() { e.exportPages(export.PresetWeb) }),
		fyne.NewMenuItem("Export Pages for Print…", func() { e.exportPages(export.PresetPrint) }),
	)
	edit := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo", func() { s.Undo() }),
		fyne.NewMenuItem("Redo", func() { s.Redo() }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Copy", func() { e.view.shortcut("c", 0) }),
		fyne.NewMenuItem("Paste", func() { e.view.shortcut("v", 0) }),
		fyne.NewMenuItem("Duplicate", func() { e.view.shortcut("d", 0) }),
	)
	view := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", func() { e.view.shortcut("=", 0) }),
		fyne.NewMenuItem("Zoom Out", func() { e.view.shortcut("-", 0) }),
		fyne.NewMenuItem("Actual Size", func() { e.view.shortcut("0", 0) }),
		fyne.NewMenuItem("Toggle Grid", func() { e.view.shortcut("g", 0) }),
		fyne.NewMenuItem("Toggle Rulers", func() { e.view.shortcut("g", edcanvas.ModShift) }),
	)
	return fyne.NewMainMenu(file, edit, view)
}

// bindShortcuts routes the ctrl shortcuts of the editor to the page view.
func (e *editorWindow) bindShortcuts() {
	keys := []fyne.KeyName{
		fyne.KeyZ, fyne.KeyY, fyne.KeyC, fyne.KeyX, fyne.KeyV, fyne.KeyD,
		fyne.KeyB, fyne.KeyI, fyne.KeyU, fyne.KeyL, fyne.KeyE, fyne.KeyR,
		fyne.KeyEqual, fyne.KeyMinus, fyne.Key0, fyne.KeyG,
	}
	c := e.w.Canvas()
	for _, name := range keys {
		k, _ := KeyFor(string(name))
		for _, shift := range []bool{false, true} {
			mod, mods := fyne.KeyModifierShortcutDefault, edcanvas.Modifier(0)
			if shift {
				mod |= fyne.KeyModifierShift
				mods = edcanvas.ModShift
			}
			c.AddShortcut(&desktop.CustomShortcut{KeyName: name, Modifier: mod}, func(fyne.Shortcut) {
				e.view.shortcut(k, mods)
			})
		}
	}
}
