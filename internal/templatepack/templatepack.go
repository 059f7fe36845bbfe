/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package templatepack bundles an invitation project with the font files
// it uses into one zip archive, and installs such archives again.
package templatepack

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"inviteeditor/internal/domain"
	applog "inviteeditor/internal/log"
)

// Archive layout.
const (
	ManifestName = "templatepack.manifest.txt"
	ProjectName  = "project.json"
	FontsPrefix  = "fonts/"
)

var ErrNoProject = errors.New("templatepack: archive has no " + ProjectName)

// maxProjectBytes bounds the project document read from an archive.
const maxProjectBytes = 32 << 20

func isFont(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".ttf" || ext == ".otf"
}

// Export writes projectJSON and every font file directly inside fontsDir
// to destZipPath. A missing fontsDir yields a pack without fonts.
func Export(projectJSON []byte, fontsDir, destZipPath string) (err error) {
	l := applog.WithOperation(applog.WithComponent("templatepack"), "export").With(slog.String("zip", destZipPath))
	if len(projectJSON) == 0 {
		return errors.New("project document is required")
	}
	if strings.TrimSpace(destZipPath) == "" {
		return errors.New("destZipPath is required")
	}
	if err := os.MkdirAll(filepath.Dir(destZipPath), 0o755); err != nil {
		return fmt.Errorf("ensure zip dir: %w", err)
	}
	// On Windows, remove destination if present before create
	_ = os.Remove(destZipPath)

	zf, err := os.Create(destZipPath)
	if err != nil {
		return fmt.Errorf("create zip: %w", err)
	}
	defer func() {
		if cerr := zf.Close(); err == nil {
			err = cerr
		}
	}()
	zw := zip.NewWriter(zf)

	var fonts []string
	if fontsDir != "" {
		entries, rerr := os.ReadDir(fontsDir)
		if rerr != nil && !os.IsNotExist(rerr) {
			return fmt.Errorf("read fonts: %w", rerr)
		}
		for _, e := range entries {
			if !e.IsDir() && isFont(e.Name()) {
				fonts = append(fonts, e.Name())
			}
		}
	}

	manifest := fmt.Sprintf("Invitation Editor Template Pack\nCreated: %s\nFonts: %d\n\n%s holds the project, %s the font files it uses.\n",
		time.Now().Format(time.RFC3339), len(fonts), ProjectName, FontsPrefix)
	if err := writeEntry(zw, ManifestName, strings.NewReader(manifest)); err != nil {
		return fmt.Errorf("add manifest: %w", err)
	}
	if err := writeEntry(zw, ProjectName, strings.NewReader(string(projectJSON))); err != nil {
		return fmt.Errorf("add project: %w", err)
	}
	for _, name := range fonts {
		if err := addFile(zw, FontsPrefix+name, filepath.Join(fontsDir, name)); err != nil {
			l.Error("zip build failed", slog.Any("err", err))
			return fmt.Errorf("add font %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish zip: %w", err)
	}
	l.Info("template pack exported", slog.Int("fonts", len(fonts)))
	return nil
}

func writeEntry(zw *zip.Writer, name string, r io.Reader) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, r)
	return err
}

func addFile(zw *zip.Writer, name, src string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return writeEntry(zw, name, f)
}

// Installed reports what Install did.
type Installed struct {
	Project []byte
	Fonts   int
	Skipped int
}

// Install reads the pack at packZipPath, copies its fonts into fontsDir
// and returns the validated project document. Existing fonts are not
// overwritten. Entries outside fonts/, or whose name would leave fontsDir,
// are ignored.
func Install(packZipPath, fontsDir string) (Installed, error) {
	l := applog.WithOperation(applog.WithComponent("templatepack"), "install").With(slog.String("zip", packZipPath))
	var res Installed
	if strings.TrimSpace(packZipPath) == "" {
		return res, errors.New("packZipPath is required")
	}
	if strings.TrimSpace(fontsDir) == "" {
		return res, errors.New("fontsDir is required")
	}
	r, err := zip.OpenReader(packZipPath)
	if err != nil {
		return res, fmt.Errorf("open pack: %w", err)
	}
	defer func() { _ = r.Close() }()

	for _, f := range r.File {
		switch {
		case f.Name == ProjectName:
			data, err := readEntry(f)
			if err != nil {
				return res, fmt.Errorf("read project: %w", err)
			}
			if err := domain.ValidateJSON(data); err != nil {
				return res, fmt.Errorf("pack project: %w", err)
			}
			res.Project = data
		case strings.HasPrefix(f.Name, FontsPrefix) && !f.FileInfo().IsDir():
			clean := path.Clean(f.Name)
			name := strings.TrimPrefix(clean, FontsPrefix)
			if !strings.HasPrefix(clean, FontsPrefix) || strings.Contains(name, "/") || !isFont(name) {
				l.Warn("skip unsafe entry", slog.String("entry", f.Name))
				continue
			}
			target := filepath.Join(fontsDir, name)
			if _, err := os.Stat(target); err == nil {
				res.Skipped++
				continue
			}
			if err := extract(f, target); err != nil {
				return res, fmt.Errorf("install font %s: %w", name, err)
			}
			res.Fonts++
		}
	}
	if res.Project == nil {
		return res, ErrNoProject
	}
	l.Info("template pack installed", slog.Int("fonts", res.Fonts), slog.Int("skipped", res.Skipped))
	return res, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(io.LimitReader(rc, maxProjectBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxProjectBytes {
		return nil, fmt.Errorf("project larger than %d bytes", maxProjectBytes)
	}
	return data, nil
}

func extract(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
