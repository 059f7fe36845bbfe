/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package workspace wires the user configuration, the chosen store backend
// and an editor session together for the command line and the desktop UI.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"inviteeditor/internal/config"
	"inviteeditor/internal/editor"
	"inviteeditor/internal/export"
	applog "inviteeditor/internal/log"
	"inviteeditor/internal/metrics"
	"inviteeditor/internal/storage"
	"inviteeditor/internal/telemetry"
	"inviteeditor/internal/textlayout"
)

// Backend names accepted in the storage section of the config.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

const flushTimeout = 2 * time.Second

var ErrUnknownBackend = errors.New("workspace: unknown storage backend")

// Workspace is an open session bound to its store.
type Workspace struct {
	Config    config.AppConfig
	Session   *editor.Session
	Store     storage.KeyValueStore
	Metrics   *metrics.Recorder
	Telemetry *telemetry.Client
	// Restored is true when the session was loaded from the store.
	Restored bool

	sqlite *storage.SQLiteStore
	log    *slog.Logger
}

// LogOptions turns the logging section of the config, which already carries
// the IVE_LOG_* overrides, into logger options.
func LogOptions(c config.LoggingConfig) applog.Options {
	return applog.Options{Level: c.Level, Format: c.Format, AddSource: c.Source, File: c.File}
}

// FontsDir is where installed template fonts live.
func FontsDir() (string, error) {
	dir, err := config.DataDir()
	if err != nil {
		return "", fmt.Errorf("resolve data dir: %w", err)
	}
	return filepath.Join(dir, "fonts"), nil
}

// Fonts returns a text provider over the font files in dir. Families it
// does not know use the basic face.
func Fonts(dir string) textlayout.Provider {
	lib := textlayout.NewFontLibrary()
	if dir != "" {
		n, err := lib.LoadDir(dir)
		if err != nil && !os.IsNotExist(err) {
			applog.WithComponent("workspace").Warn("load fonts", slog.String("dir", dir), slog.Any("err", err))
		}
		if n > 0 {
			applog.WithComponent("workspace").Debug("fonts loaded", slog.String("dir", dir), slog.Int("faces", n))
		}
	}
	return textlayout.OTProvider{Lib: lib}
}

// OpenStore opens the backend named by sc. Empty paths resolve below the
// config directory.
func OpenStore(sc config.StorageConfig) (storage.KeyValueStore, error) {
	backend := strings.ToLower(strings.TrimSpace(sc.Backend))
	if backend == "" {
		backend = BackendFile
	}
	path := strings.TrimSpace(sc.Path)
	if path == "" && backend != BackendMemory {
		dir, err := config.DataDir()
		if err != nil {
			return nil, fmt.Errorf("resolve data dir: %w", err)
		}
		switch backend {
		case BackendSQLite:
			path = filepath.Join(dir, "inviteeditor.db")
		default:
			path = filepath.Join(dir, "projects")
		}
	}
	switch backend {
	case BackendFile:
		return storage.NewFileStore(path)
	case BackendSQLite:
		return storage.OpenSQLite(path)
	case BackendMemory:
		return storage.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, sc.Backend)
	}
}

// Option adjusts Open.
type Option func(*Workspace)

// WithMetrics shares r with the session instead of a fresh recorder.
func WithMetrics(r *metrics.Recorder) Option { return func(w *Workspace) { w.Metrics = r } }

// WithTelemetry overrides the client built from the environment.
func WithTelemetry(c *telemetry.Client) Option { return func(w *Workspace) { w.Telemetry = c } }

// WithStore skips OpenStore and uses kv.
func WithStore(kv storage.KeyValueStore) Option { return func(w *Workspace) { w.Store = kv } }

// Open prepares a session for cfg and restores the last saved project when
// the store holds one.
func Open(cfg config.AppConfig, opts ...Option) (*Workspace, error) {
	w := &Workspace{Config: cfg, log: applog.WithComponent("workspace")}
	for _, o := range opts {
		o(w)
	}
	if w.Store == nil {
		kv, err := OpenStore(cfg.Storage)
		if err != nil {
			return nil, err
		}
		w.Store = kv
	}
	if sq, ok := w.Store.(*storage.SQLiteStore); ok {
		w.sqlite = sq
	}
	if w.Metrics == nil {
		w.Metrics = metrics.New()
	}
	if w.Telemetry == nil {
		w.Telemetry = telemetry.New(telemetry.FromEnv().WithOptIn(cfg.General.TelemetryOptIn))
	}
	w.Session = editor.New(
		editor.WithConfig(cfg.Editor),
		editor.WithStore(w.Store),
		editor.WithMetrics(w.Metrics),
	)
	ok, err := w.Session.LoadFromLocalStorage()
	if err != nil {
		// A damaged save should not lock the user out; the session keeps its fresh page.
		w.log.Warn("restore failed, starting empty", slog.Any("err", err))
	}
	w.Restored = ok
	w.log.Info("workspace open",
		slog.String("backend", editor.BackendName(w.Store)),
		slog.Bool("restored", ok),
	)
	return w, nil
}

// SQLite returns the SQLite store when that backend is active.
func (w *Workspace) SQLite() *storage.SQLiteStore { return w.sqlite }

// Save persists the session and reports the save to telemetry.
func (w *Workspace) Save() error {
	if err := w.Session.SaveToLocalStorage(); err != nil {
		return err
	}
	data, _ := w.Store.Get(editor.StorageKey)
	w.Telemetry.Saved(editor.BackendName(w.Store), len(data))
	return nil
}

// Import replaces the project with data and reports the import.
func (w *Workspace) Import(data string) error {
	if err := w.Session.ImportProject(data); err != nil {
		return err
	}
	p := w.Session.Project()
	objects := 0
	for _, pg := range p.Pages {
		objects += len(pg.Objects)
	}
	w.Telemetry.Imported(len(p.Pages), objects)
	return nil
}

// Export writes the project's pages per opt and reports the export.
func (w *Workspace) Export(opt export.BatchOptions) error {
	p := w.Session.Project()
	if err := export.BatchExport(p, opt); err != nil {
		return fmt.Errorf("export %s: %w", opt.Preset, err)
	}
	pages := len(opt.Pages)
	if pages == 0 {
		pages = len(p.Pages)
	}
	w.Telemetry.Exported(string(opt.Preset), pages)
	w.log.Info("exported", slog.String("preset", string(opt.Preset)), slog.Int("pages", pages), slog.String("out", opt.OutDir))
	return nil
}

// Close drains telemetry and releases the store.
func (w *Workspace) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	w.Telemetry.Flush(ctx)
	w.Telemetry.Close()
	if w.sqlite != nil {
		return w.sqlite.Close()
	}
	return nil
}
