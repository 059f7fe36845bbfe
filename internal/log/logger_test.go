/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package log

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func lastJSONLine(t *testing.T, b []byte) map[string]any {
	t.Helper()
	sc := bufio.NewScanner(bytes.NewReader(b))
	var last string
	for sc.Scan() {
		if s := strings.TrimSpace(sc.Text()); s != "" {
			last = s
		}
	}
	if last == "" {
		t.Fatalf("no log lines found")
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(last), &m); err != nil {
		t.Fatalf("unmarshal json log: %v", err)
	}
	return m
}

// TestInitWritesJSONFile checks the rotated file handler and static attributes.
func TestInitWritesJSONFile(t *testing.T) {
	fpath := filepath.Join(os.TempDir(), fmt.Sprintf("ive_log_%d.json", time.Now().UnixNano()))
	var console bytes.Buffer
	Init(Options{Level: "debug", Format: "console", File: fpath, Writer: &console})

	l := WithOperation(WithComponent("editor"), "load")
	l.Info("project loaded", slog.Int("pages", 2))

	b, err := os.ReadFile(fpath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	m := lastJSONLine(t, b)
	if m["app"] != "inviteeditor" {
		t.Fatalf("app attr: %v", m["app"])
	}
	if _, ok := m["ver"].(string); !ok {
		t.Fatalf("missing ver attr")
	}
	if m["component"] != "editor" || m["op"] != "load" {
		t.Fatalf("context attrs: %v %v", m["component"], m["op"])
	}
	if m["pages"] != float64(2) {
		t.Fatalf("pages attr: %v", m["pages"])
	}
	if !strings.Contains(console.String(), "INF project loaded") {
		t.Fatalf("console output missing line: %q", console.String())
	}
}

func TestSessionAttributeFromContext(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "info", Format: "json", Writer: &buf})

	ctx := ContextWithSession(context.Background(), "s-42")
	L().InfoContext(ctx, "saved")

	m := lastJSONLine(t, buf.Bytes())
	if m["session"] != "s-42" {
		t.Fatalf("session attr: %v", m["session"])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "warn", Writer: &buf})
	L().Info("hidden")
	L().Warn("shown", slog.String("who", "two words"))
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info should be filtered: %q", out)
	}
	if !strings.Contains(out, `WRN shown`) || !strings.Contains(out, `who="two words"`) {
		t.Fatalf("unexpected console output: %q", out)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("IVE_LOG_LEVEL", "debug")
	t.Setenv("IVE_LOG_FORMAT", "json")
	t.Setenv("IVE_LOG_SOURCE", "TRUE")
	t.Setenv("IVE_LOG_FILE", "")
	o := FromEnv()
	if o.Level != "debug" || o.Format != "json" || !o.AddSource || o.File != "" {
		t.Fatalf("unexpected options: %+v", o)
	}
}

func TestConsoleSourceLocation(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "info", AddSource: true, Writer: &buf})
	L().Info("located")
	if out := buf.String(); !strings.Contains(out, "logger_test.go:") || !strings.Contains(out, " src=") {
		t.Fatalf("console line lacks the call site: %q", out)
	}

	buf.Reset()
	Init(Options{Level: "info", Writer: &buf})
	L().Info("plain")
	if strings.Contains(buf.String(), "src=") {
		t.Fatalf("source written without AddSource: %q", buf.String())
	}
}
