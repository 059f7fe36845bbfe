/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package config holds the user-editable editor configuration. It is
// persisted as YAML in the user scope; IVE_* environment variables act as
// read-only overrides at runtime.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// CurrentVersion is bumped when the structure changes incompatibly.
const CurrentVersion = 1

type GeneralConfig struct {
	TelemetryOptIn bool   `yaml:"telemetry_opt_in"`
	Theme          string `yaml:"theme"` // "system" | "light" | "dark"
}

// EditorConfig seeds new sessions and the canvas adapter.
type EditorConfig struct {
	PageWidth        float64 `yaml:"page_width"`
	PageHeight       float64 `yaml:"page_height"`
	PageBackground   string  `yaml:"page_background"`
	SelectionHistory bool    `yaml:"selection_history"`
	HistoryMaxBytes  int     `yaml:"history_max_bytes"`
	HistoryMaxDepth  int     `yaml:"history_max_depth"`
	DragRate         float64 `yaml:"drag_rate"` // silent updates per second while dragging
	Snapping         bool    `yaml:"snapping"`
	SnapThreshold    float64 `yaml:"snap_threshold"`
}

type StorageConfig struct {
	Backend string `yaml:"backend"` // "file" | "sqlite" | "memory"
	Path    string `yaml:"path"`
}

type AutosaveConfig struct {
	Enabled bool `yaml:"enabled"`
	DelayMs int  `yaml:"delay_ms"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int            `yaml:"config_version"`
	General       GeneralConfig  `yaml:"general"`
	Editor        EditorConfig   `yaml:"editor"`
	Storage       StorageConfig  `yaml:"storage"`
	Autosave      AutosaveConfig `yaml:"autosave"`
	Logging       LoggingConfig  `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: CurrentVersion,
		General:       GeneralConfig{Theme: "system"},
		Editor: EditorConfig{
			PageWidth:        800,
			PageHeight:       1120,
			PageBackground:   "#ffffff",
			SelectionHistory: true,
			HistoryMaxBytes:  16 << 20,
			HistoryMaxDepth:  200,
			DragRate:         20,
			Snapping:         true,
			SnapThreshold:    6,
		},
		Storage:  StorageConfig{Backend: "file"},
		Autosave: AutosaveConfig{Enabled: true, DelayMs: 1500},
		Logging:  LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvConfigPath      = "IVE_CONFIG"
	EnvTelemetryOptIn  = "IVE_TELEMETRY_OPT_IN"
	EnvStorageBackend  = "IVE_STORAGE_BACKEND"
	EnvStoragePath     = "IVE_STORAGE_PATH"
	EnvAutosaveDelayMs = "IVE_AUTOSAVE_DELAY_MS"
	EnvDragRate        = "IVE_DRAG_RATE"
	EnvSelectionHist   = "IVE_SELECTION_HISTORY"
	EnvLogLevel        = "IVE_LOG_LEVEL"
	EnvLogFormat       = "IVE_LOG_FORMAT"
	EnvLogSource       = "IVE_LOG_SOURCE"
	EnvLogFile         = "IVE_LOG_FILE"
)

// ConfigPath returns the per-user config file path. IVE_CONFIG wins when set.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "InviteEditor")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "InviteEditor")
	default:
		if x := os.Getenv("XDG_CONFIG_HOME"); x != "" {
			base = filepath.Join(x, "inviteeditor")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "inviteeditor")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// DataDir is the directory next to the config file used for default storage paths.
func DataDir() (string, error) {
	p, err := ConfigPath()
	if err != nil {
		return "", err
	}
	return filepath.Dir(p), nil
}

// Load reads the user config file (if present) over the defaults and applies env overrides.
func Load() (AppConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		cfg := Defaults()
		applyEnvOverrides(&cfg)
		return cfg, err
	}
	return LoadFrom(path)
}

// LoadFrom is Load with an explicit file path. A missing file is not an error;
// a malformed one is reported while defaults plus env overrides are still returned.
func LoadFrom(path string) (AppConfig, error) {
	cfg := Defaults()
	var loadErr error
	if data, err := os.ReadFile(path); err == nil {
		fileCfg := Defaults()
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			loadErr = fmt.Errorf("parse %s: %w", path, err)
		} else {
			cfg = fileCfg
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		loadErr = fmt.Errorf("read %s: %w", path, err)
	}
	normalize(&cfg)
	applyEnvOverrides(&cfg)
	return cfg, loadErr
}

// Save writes the config YAML to ConfigPath.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(path, cfg)
}

// SaveTo writes the config YAML to path, creating parent directories.
func SaveTo(path string, cfg AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// normalize replaces out-of-range values with their defaults.
func normalize(cfg *AppConfig) {
	d := Defaults()
	if cfg.ConfigVersion == 0 {
		cfg.ConfigVersion = d.ConfigVersion
	}
	e := &cfg.Editor
	if e.PageWidth <= 0 {
		e.PageWidth = d.Editor.PageWidth
	}
	if e.PageHeight <= 0 {
		e.PageHeight = d.Editor.PageHeight
	}
	if strings.TrimSpace(e.PageBackground) == "" {
		e.PageBackground = d.Editor.PageBackground
	}
	if e.HistoryMaxBytes < 0 {
		e.HistoryMaxBytes = d.Editor.HistoryMaxBytes
	}
	if e.HistoryMaxDepth < 0 {
		e.HistoryMaxDepth = d.Editor.HistoryMaxDepth
	}
	if e.DragRate <= 0 {
		e.DragRate = d.Editor.DragRate
	}
	if e.SnapThreshold < 0 {
		e.SnapThreshold = d.Editor.SnapThreshold
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Storage.Backend)) {
	case "file", "sqlite", "memory":
		cfg.Storage.Backend = strings.ToLower(strings.TrimSpace(cfg.Storage.Backend))
	default:
		cfg.Storage.Backend = d.Storage.Backend
	}
	if cfg.Autosave.DelayMs <= 0 {
		cfg.Autosave.DelayMs = d.Autosave.DelayMs
	}
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = d.Logging.Level
	}
	cfg.Logging.Format = strings.ToLower(strings.TrimSpace(cfg.Logging.Format))
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = d.Logging.Format
	}
}

func parseBool(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvTelemetryOptIn)); v != "" {
		cfg.General.TelemetryOptIn = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvStorageBackend)); v != "" {
		switch lv := strings.ToLower(v); lv {
		case "file", "sqlite", "memory":
			cfg.Storage.Backend = lv
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvStoragePath)); v != "" {
		cfg.Storage.Path = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAutosaveDelayMs)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Autosave.DelayMs = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvDragRate)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.Editor.DragRate = f
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvSelectionHist)); v != "" {
		cfg.Editor.SelectionHistory = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

var envByKey = map[string]string{
	"general.telemetry_opt_in": EnvTelemetryOptIn,
	"storage.backend":          EnvStorageBackend,
	"storage.path":             EnvStoragePath,
	"autosave.delay_ms":        EnvAutosaveDelayMs,
	"editor.drag_rate":         EnvDragRate,
	"editor.selection_history": EnvSelectionHist,
	"logging.level":            EnvLogLevel,
	"logging.format":           EnvLogFormat,
	"logging.source":           EnvLogSource,
	"logging.file":             EnvLogFile,
}

// EnvOverrideFor returns the env var name if the field is overridden by the environment.
func EnvOverrideFor(key string) (string, bool) {
	name, ok := envByKey[key]
	if !ok || os.Getenv(name) == "" {
		return "", false
	}
	return name, true
}
