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
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestConsoleHandlerOutput(t *testing.T) {
	var sb strings.Builder
	h := newConsoleHandler(&sb, slog.LevelInfo)
	l := slog.New(h).With(slog.String("component", "test"))
	l.Info("hello", slog.Int("n", 7))
	out := sb.String()
	for _, want := range []string{"INF", "hello", "component=test", "n=7"} {
		if !strings.Contains(out, want) {
			t.Fatalf("console output missing %q: %s", want, out)
		}
	}
}

func TestConsoleHandlerLevelGate(t *testing.T) {
	var sb strings.Builder
	h := newConsoleHandler(&sb, slog.LevelWarn)
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatalf("info should be gated below warn")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Fatalf("error should pass the warn gate")
	}
}

func TestInitAndComponent(t *testing.T) {
	Init(Options{Level: "debug", Format: "console"})
	l := WithComponent("pipeline")
	if l == nil {
		t.Fatalf("WithComponent returned nil")
	}
	if WithOperation(l, "generate") == nil {
		t.Fatalf("WithOperation returned nil")
	}
}
