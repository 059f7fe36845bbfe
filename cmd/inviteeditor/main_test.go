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
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"inviteeditor/internal/config"
	"inviteeditor/internal/editor"
	"inviteeditor/internal/version"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(config.EnvConfigPath, filepath.Join(dir, "config.yaml"))
	t.Setenv(config.EnvStorageBackend, "memory")
	t.Setenv(config.EnvTelemetryOptIn, "")
	t.Setenv(config.EnvLogLevel, "error")
	return dir
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestVersionAndUsage(t *testing.T) {
	isolate(t)
	code, out, _ := runCLI(t, "version")
	if code != 0 || !strings.Contains(out, version.Version) {
		t.Fatalf("version: code %d, out %q", code, out)
	}
	code, out, _ = runCLI(t)
	if code != 0 || !strings.Contains(out, "Usage:") {
		t.Fatalf("no args: code %d, out %q", code, out)
	}
	code, _, errOut := runCLI(t, "frobnicate")
	if code != 2 || !strings.Contains(errOut, "unknown command") {
		t.Fatalf("unknown command: code %d, stderr %q", code, errOut)
	}
}

func TestNewWritesLoadableProject(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "invite.json")
	code, _, errOut := runCLI(t, "new", "--pages", "2", "--title", "Anna & Ben", path)
	if code != 0 {
		t.Fatalf("new failed: %d %s", code, errOut)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	s, err := editor.NewFromJSON(string(data))
	if err != nil {
		t.Fatalf("written project does not load: %v", err)
	}
	p := s.Project()
	if len(p.Pages) != 2 || len(p.Pages[0].Objects) != 1 || p.SelectedPageID != p.Pages[0].ID {
		t.Fatalf("unexpected project: %+v", p)
	}
	if got := p.Pages[0].Objects[0].Text.Text; got != "Anna & Ben" {
		t.Fatalf("title text = %q", got)
	}
}

func TestNewToStdoutAndBadArgs(t *testing.T) {
	isolate(t)
	code, out, _ := runCLI(t, "new", "-")
	if code != 0 || !strings.Contains(out, "\"pages\"") {
		t.Fatalf("new -: code %d, out %q", code, out)
	}
	if code, _, _ := runCLI(t, "new"); code != 2 {
		t.Fatalf("new without target: code %d", code)
	}
	if code, _, _ := runCLI(t, "new", "--pages", "0", "-"); code != 2 {
		t.Fatalf("zero pages: code %d", code)
	}
}

func TestInfoSummarizesFileAndStore(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "invite.json")
	if code, _, e := runCLI(t, "new", "--pages", "2", "--title", "Hi", path); code != 0 {
		t.Fatalf("new: %s", e)
	}
	code, out, errOut := runCLI(t, "info", path)
	if code != 0 {
		t.Fatalf("info failed: %s", errOut)
	}
	for _, want := range []string{"Pages: 2", "* 1. Page 1", "1 objects (text 1)", "2. Page 2"} {
		if !strings.Contains(out, want) {
			t.Fatalf("info output missing %q:\n%s", want, out)
		}
	}

	code, out, _ = runCLI(t, "info")
	if code != 0 || !strings.Contains(out, "Store: memory (saved project found: false)") || !strings.Contains(out, "Pages: 1") {
		t.Fatalf("info on empty store: code %d\n%s", code, out)
	}

	if code, _, _ := runCLI(t, "info", filepath.Join(dir, "missing.json")); code != 1 {
		t.Fatalf("missing file: code %d", code)
	}
}

func TestExportCommands(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "invite.json")
	if code, _, e := runCLI(t, "new", "--pages", "2", path); code != 0 {
		t.Fatalf("new: %s", e)
	}
	out := filepath.Join(dir, "out")

	if code, _, e := runCLI(t, "svg", "--pages", "2", out, path); code != 0 {
		t.Fatalf("svg: %s", e)
	}
	if _, err := os.Stat(filepath.Join(out, "svg", "page-2.svg")); err != nil {
		t.Fatalf("svg page 2 missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "svg", "page-1.svg")); !os.IsNotExist(err) {
		t.Fatalf("svg page 1 should not be exported, stat err %v", err)
	}

	if code, _, e := runCLI(t, "png", "--preset", "thumb", out, path); code != 0 {
		t.Fatalf("png: %s", e)
	}
	f, err := os.Open(filepath.Join(out, "png", "page-1.png"))
	if err != nil {
		t.Fatalf("png page 1 missing: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if w := img.Bounds().Dx(); w != 200 {
		t.Fatalf("thumb width = %d, want 200", w)
	}
}

func TestExportRejectsBadInput(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "invite.json")
	if code, _, e := runCLI(t, "new", path); code != 0 {
		t.Fatalf("new: %s", e)
	}
	cases := [][]string{
		{"svg", "--pages", "0", dir, path},
		{"svg", "--pages", "3", dir, path},
		{"png", "--preset", "poster", dir, path},
		{"png"},
	}
	for _, args := range cases {
		if code, _, _ := runCLI(t, args...); code != 2 {
			t.Fatalf("%v: code %d, want 2", args, code)
		}
	}
}

func TestParsePages(t *testing.T) {
	got, err := parsePages(" 3, 1 ")
	if err != nil || len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Fatalf("parsePages = %v, %v", got, err)
	}
	if got, err := parsePages(""); err != nil || got != nil {
		t.Fatalf("empty = %v, %v", got, err)
	}
	if _, err := parsePages("a"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestPackAndUnpack(t *testing.T) {
	dir := isolate(t)
	src := filepath.Join(dir, "invite.json")
	if code, _, e := runCLI(t, "new", "--title", "Packed", src); code != 0 {
		t.Fatalf("new: %s", e)
	}
	fonts := filepath.Join(dir, "fonts-in")
	if err := os.MkdirAll(fonts, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(fonts, "Lora.ttf"), []byte("not really a font"), 0o644); err != nil {
		t.Fatal(err)
	}
	zipPath := filepath.Join(dir, "invite.zip")
	code, out, errOut := runCLI(t, "pack", "--fonts", fonts, zipPath, src)
	if code != 0 || !strings.Contains(out, "Wrote template pack") {
		t.Fatalf("pack: code %d, out %q, stderr %q", code, out, errOut)
	}

	dest := filepath.Join(dir, "fonts-out")
	outJSON := filepath.Join(dir, "unpacked.json")
	code, out, errOut = runCLI(t, "unpack", "--fonts", dest, zipPath, outJSON)
	if code != 0 || !strings.Contains(out, "Installed 1 fonts (0 already present)") {
		t.Fatalf("unpack: code %d, out %q, stderr %q", code, out, errOut)
	}
	if _, err := os.Stat(filepath.Join(dest, "Lora.ttf")); err != nil {
		t.Fatalf("font not installed: %v", err)
	}
	data, err := os.ReadFile(outJSON)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	s, err := editor.NewFromJSON(string(data))
	if err != nil {
		t.Fatalf("unpacked project does not load: %v", err)
	}
	p := s.Project()
	if got := p.Pages[0].Objects[0].Text.Text; got != "Packed" {
		t.Fatalf("title text = %q", got)
	}

	code, out, _ = runCLI(t, "unpack", "--fonts", dest, zipPath)
	if code != 0 || !strings.Contains(out, "(1 already present)") {
		t.Fatalf("unpack into store: code %d, out %q", code, out)
	}
	if code, _, _ := runCLI(t, "pack"); code != 2 {
		t.Fatalf("pack without target: code %d", code)
	}
	if code, _, _ := runCLI(t, "unpack", filepath.Join(dir, "missing.zip")); code != 1 {
		t.Fatalf("missing pack: code %d", code)
	}
}
