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
	"errors"
	"testing"
	"time"
)

type stubTokens struct {
	values map[string]string
	err    error
}

func (s *stubTokens) Get(service, key string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.values[service+"/"+key], nil
}

func (s *stubTokens) Set(service, key, value string) error {
	if s.err != nil {
		return s.err
	}
	s.values[service+"/"+key] = value
	return nil
}

func (s *stubTokens) Delete(service, key string) error {
	if s.err != nil {
		return s.err
	}
	delete(s.values, service+"/"+key)
	return nil
}

func useStubTokens(t *testing.T) *stubTokens {
	t.Helper()
	old := tokenStore
	stub := &stubTokens{values: map[string]string{}}
	tokenStore = stub
	t.Cleanup(func() { tokenStore = old })
	return stub
}

func TestEnvOverridesGenerationURL(t *testing.T) {
	useStubTokens(t)
	t.Setenv("HOME", t.TempDir())
	t.Setenv(EnvGenerationURL, "https://example.test:8443/v1")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got, want := cfg.Generation.BaseURL, "https://example.test:8443/v1"; got != want {
		t.Fatalf("Generation.BaseURL = %q, want %q", got, want)
	}
}

func TestEnvOverridesTelemetry(t *testing.T) {
	useStubTokens(t)
	t.Setenv("HOME", t.TempDir())
	t.Setenv(EnvTelemetryOptIn, "true")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.General.TelemetryOptIn {
		t.Fatalf("General.TelemetryOptIn expected true from env override")
	}
}

func TestEnvOverridesLogging(t *testing.T) {
	useStubTokens(t)
	t.Setenv("HOME", t.TempDir())
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvLogSource, "1")
	t.Setenv(EnvLogFile, "/tmp/ddl.log")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Logging.Level != "error" || cfg.Logging.Format != "json" || !cfg.Logging.Source || cfg.Logging.File != "/tmp/ddl.log" {
		t.Fatalf("env overrides not applied to logging: %#v", cfg.Logging)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	useStubTokens(t)
	t.Setenv("HOME", t.TempDir())

	cfg := Defaults()
	cfg.General.Theme = "dark"
	cfg.Generation.Model = "gpt-image-1-mini"
	cfg.Generation.TimeoutMs = 45000
	cfg.Logging.Level = "debug"
	if err := Save(cfg, ""); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	got, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got.General.Theme != "dark" {
		t.Fatalf("Theme = %q after round trip", got.General.Theme)
	}
	if got.Generation.Model != "gpt-image-1-mini" || got.Generation.TimeoutMs != 45000 {
		t.Fatalf("generation fields lost: %#v", got.Generation)
	}
	if got.Logging.Level != "debug" {
		t.Fatalf("Logging.Level = %q after round trip", got.Logging.Level)
	}
}

func TestTokenRoundTripsThroughStore(t *testing.T) {
	stub := useStubTokens(t)
	t.Setenv("HOME", t.TempDir())

	if err := Save(Defaults(), "sk-secret"); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if _, tok, _ := Load(); tok != "sk-secret" {
		t.Fatalf("token = %q after Save, want sk-secret", tok)
	}
	if err := ClearToken(); err != nil {
		t.Fatalf("ClearToken() error: %v", err)
	}
	if _, tok, _ := Load(); tok != "" {
		t.Fatalf("token = %q after ClearToken, want empty", tok)
	}
	if len(stub.values) != 0 {
		t.Fatalf("store still holds %d values", len(stub.values))
	}
}

func TestTokenNeverWrittenToDisk(t *testing.T) {
	stub := useStubTokens(t)
	stub.err = errors.New("keyring unavailable")
	t.Setenv("HOME", t.TempDir())

	if err := Save(Defaults(), "sk-secret"); err == nil {
		t.Fatal("Save should surface a keyring failure for a non-empty token")
	}
	// Config itself must still load; the token just comes back empty.
	cfg, tok, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if tok != "" {
		t.Fatalf("token = %q with broken keyring, want empty", tok)
	}
	if cfg.Generation.BaseURL == "" {
		t.Fatal("defaults missing after load")
	}
}

func TestMergeKeepsDefaultsForEmptyFields(t *testing.T) {
	dst := Defaults()
	src := AppConfig{}
	src.Logging.Level = "debug"
	mergeInto(&dst, &src)
	if dst.Logging.Level != "debug" {
		t.Fatalf("Level = %q, want debug", dst.Logging.Level)
	}
	if dst.Generation.BaseURL != Defaults().Generation.BaseURL {
		t.Fatal("empty file fields must not clobber defaults")
	}
}

func TestGenerationTimeout(t *testing.T) {
	g := GenerationConfig{TimeoutMs: 2500}
	if got := g.Timeout(); got != 2500*time.Millisecond {
		t.Fatalf("Timeout() = %v", got)
	}
	g.TimeoutMs = 0
	if got := g.Timeout(); got != 180*time.Second {
		t.Fatalf("Timeout() default = %v", got)
	}
}
