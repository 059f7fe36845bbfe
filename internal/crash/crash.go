/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	applog "inviteeditor/internal/log"
	"inviteeditor/internal/storage"
	"inviteeditor/internal/telemetry"
	"inviteeditor/internal/version"
)

// SnapshotKey is the store key the project is saved under after a crash,
// next to the regular save so it never overwrites it.
const SnapshotKey = "invitation-editor-project.crash"

// Snapshotter yields the project worth keeping when the process dies.
// *editor.Session satisfies it.
type Snapshotter interface {
	ExportProject() (string, error)
}

// Options tells Recover where to put what it rescues. Zero values write
// the report to the temp dir and skip the snapshot.
type Options struct {
	ReportDir string
	Store     storage.KeyValueStore
	Telemetry *telemetry.Client
}

// exitFn is used to allow testing of Recover without terminating the test process.
var exitFn = os.Exit

// Recover captures a panic, logs it with its stack, writes an error report
// and saves a snapshot of src to the store when both are given.
//
// Usage: defer crash.Recover(session, opts)
func Recover(src Snapshotter, opt Options) {
	r := recover()
	if r == nil {
		return
	}
	l := applog.WithComponent("crash")
	stack := debug.Stack()
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	reportPath, report, err := writeReport(opt.ReportDir, r, stack)
	if err != nil {
		l.Error("write crash report", slog.Any("err", err))
	}
	if src != nil && opt.Store != nil {
		if err := saveSnapshot(src, opt.Store); err != nil {
			l.Error("crash snapshot failed", slog.Any("err", err))
		} else {
			l.Info("crash snapshot written", slog.String("key", SnapshotKey))
		}
	}
	tc := opt.Telemetry
	if tc == nil {
		tc = telemetry.Default()
	}
	tc.UploadCrash(report)

	if _, err := fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath); err != nil {
		l.Error("failed to write crash message to stderr", slog.Any("err", err))
	}
	if _, err := fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH); err != nil {
		l.Error("failed to write version info to stderr", slog.Any("err", err))
	}
	exitFn(2)
}

// saveSnapshot exports src and stores it under SnapshotKey. A second panic
// during export is contained.
func saveSnapshot(src Snapshotter, kv storage.KeyValueStore) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("export panicked: %v", r)
		}
	}()
	data, err := src.ExportProject()
	if err != nil {
		return fmt.Errorf("export project: %w", err)
	}
	return kv.Set(SnapshotKey, []byte(data))
}

func writeReport(dir string, panicVal any, stack []byte) (string, []byte, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	now := time.Now()
	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "Invitation Editor Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", now.Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	path := filepath.Join(dir, fmt.Sprintf("crash-%s.log", now.Format("20060102-150405")))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return path, buf.Bytes(), err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return path, buf.Bytes(), err
	}
	return path, buf.Bytes(), nil
}
