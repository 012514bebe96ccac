/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package crash captures panics from background work, writes a report file
// and optionally uploads it. As an embedded library we must never terminate
// the host process: Recover logs, reports and swallows.
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

	applog "github.com/bchewy/doodledo/internal/log"
	"github.com/bchewy/doodledo/internal/telemetry"
	"github.com/bchewy/doodledo/internal/version"
)

// Recover captures a panic, logs it with stack trace, writes a report under
// dir (the OS temp dir when empty) and uploads it through tele when opted
// in. tele may be nil.
//
// Usage: defer crash.Recover(tele, reportDir)
func Recover(tele *telemetry.Client, dir string) {
	r := recover()
	if r == nil {
		return
	}
	l := applog.WithComponent("crash")
	stack := debug.Stack()
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	path, err := writeReport(dir, r, stack, tele)
	if err != nil {
		l.Error("crash report write failed", slog.Any("err", err))
		return
	}
	l.Info("crash report written", slog.String("path", path))
}

func writeReport(dir string, panicVal any, stack []byte, tele *telemetry.Client) (string, error) {
	if dir == "" {
		dir = os.TempDir()
	} else if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(dir, fmt.Sprintf("crash-%s.log", stamp))

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "DoodleDo Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\nStack:\n%s\n", panicVal, string(stack))

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return path, err
	}
	tele.UploadCrash(buf.Bytes())
	return path, nil
}
