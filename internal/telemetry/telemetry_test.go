/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package telemetry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func TestDisabledByDefault(t *testing.T) {
	c := New(Config{})
	defer c.Close()
	if c.Enabled() {
		t.Fatalf("telemetry must be opt-in")
	}
	// must be safe no-ops
	c.Event("ignored", nil)
	c.UploadCrash([]byte("report"))

	var nilClient *Client
	if nilClient.Enabled() {
		t.Fatalf("nil client must report disabled")
	}
	nilClient.Event("ignored", nil)
	nilClient.UploadCrash(nil)
	nilClient.Close()
}

func TestEventDelivery(t *testing.T) {
	var mu sync.Mutex
	var got []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var m map[string]any
		_ = json.NewDecoder(r.Body).Decode(&m)
		mu.Lock()
		got = append(got, m)
		mu.Unlock()
	}))
	defer srv.Close()

	c := New(Config{OptIn: true, EventsURL: srv.URL})
	defer c.Close()
	c.Event("generation_succeeded", map[string]any{"style": "watercolor"})
	c.Flush(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := len(got)
		mu.Unlock()
		if n > 0 || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 {
		t.Fatalf("expected 1 event, got %d", len(got))
	}
	if got[0]["name"] != "generation_succeeded" || got[0]["style"] != "watercolor" {
		t.Fatalf("event payload wrong: %+v", got[0])
	}
	if got[0]["version"] == "" {
		t.Fatalf("event must carry version")
	}
}

func TestCrashUpload(t *testing.T) {
	done := make(chan []byte, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, r.ContentLength)
		_, _ = r.Body.Read(buf)
		done <- buf
	}))
	defer srv.Close()

	c := New(Config{OptIn: true, CrashURL: srv.URL})
	defer c.Close()
	c.UploadCrash([]byte("panic report"))
	select {
	case b := <-done:
		if string(b) != "panic report" {
			t.Fatalf("report body wrong: %q", b)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("crash upload never arrived")
	}
}
