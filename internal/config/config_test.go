/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}
	d := Defaults()
	if cfg.Editor != d.Editor || cfg.Storage != d.Storage {
		t.Fatalf("expected defaults, got %#v", cfg)
	}
}

func TestLoadKeepsDefaultsForOmittedFields(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	data := "editor:\n  page_width: 600\nstorage:\n  backend: SQLite\n"
	if err := os.WriteFile(p, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFrom(p)
	if err != nil {
		t.Fatalf("LoadFrom() error: %v", err)
	}
	if cfg.Editor.PageWidth != 600 {
		t.Fatalf("PageWidth = %v, want 600", cfg.Editor.PageWidth)
	}
	if cfg.Editor.PageHeight != 1120 || !cfg.Editor.SelectionHistory {
		t.Fatalf("omitted editor fields lost their defaults: %#v", cfg.Editor)
	}
	if cfg.Storage.Backend != "sqlite" {
		t.Fatalf("Storage.Backend = %q, want sqlite", cfg.Storage.Backend)
	}
}

func TestLoadMalformedFileReportsError(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte("editor: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFrom(p)
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if cfg.Editor.PageWidth != 800 {
		t.Fatalf("defaults should still be returned, got %#v", cfg.Editor)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "sub", "config.yaml")
	t.Setenv(EnvConfigPath, p)
	cfg := Defaults()
	cfg.Autosave.DelayMs = 4000
	cfg.Editor.Snapping = false
	if err := Save(cfg); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	got, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got.Autosave.DelayMs != 4000 || got.Editor.Snapping {
		t.Fatalf("round trip mismatch: %#v", got)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvConfigPath, filepath.Join(t.TempDir(), "config.yaml"))
	t.Setenv(EnvTelemetryOptIn, "yes")
	t.Setenv(EnvStorageBackend, "memory")
	t.Setenv(EnvDragRate, "30")
	t.Setenv(EnvSelectionHist, "false")
	t.Setenv(EnvLogLevel, "ERROR")
	t.Setenv(EnvLogFile, "/tmp/ive.log")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.General.TelemetryOptIn {
		t.Fatalf("telemetry opt-in not applied")
	}
	if cfg.Storage.Backend != "memory" || cfg.Editor.DragRate != 30 || cfg.Editor.SelectionHistory {
		t.Fatalf("editor/storage overrides not applied: %#v %#v", cfg.Editor, cfg.Storage)
	}
	if cfg.Logging.Level != "error" || cfg.Logging.File != "/tmp/ive.log" {
		t.Fatalf("logging overrides not applied: %#v", cfg.Logging)
	}
	if name, ok := EnvOverrideFor("editor.drag_rate"); !ok || name != EnvDragRate {
		t.Fatalf("EnvOverrideFor(editor.drag_rate) = %q, %v", name, ok)
	}
	if _, ok := EnvOverrideFor("autosave.delay_ms"); ok {
		t.Fatalf("autosave.delay_ms should not be reported as overridden")
	}
}
