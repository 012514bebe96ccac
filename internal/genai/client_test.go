/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEditImageSuccess(t *testing.T) {
	want := []byte{0x89, 'P', 'N', 'G', 1, 2, 3}
	var gotAuth string
	var gotFields map[string]string
	var gotImage []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		gotFields = map[string]string{}
		for k, v := range r.MultipartForm.Value {
			gotFields[k] = v[0]
		}
		f, hdr, err := r.FormFile("image")
		if err != nil {
			t.Errorf("image part: %v", err)
		} else {
			defer f.Close()
			var buf bytes.Buffer
			_, _ = buf.ReadFrom(f)
			gotImage = buf.Bytes()
			if hdr.Header.Get("Content-Type") != "image/png" {
				t.Errorf("image part content type: %s", hdr.Header.Get("Content-Type"))
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{{"b64_json": base64.StdEncoding.EncodeToString(want)}},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok-123", "img-edit-1", srv.Client())
	got, err := c.EditImage(context.Background(), []byte("pngbytes"), "a cat", SizeWide)
	if err != nil {
		t.Fatalf("EditImage: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("decoded image mismatch")
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("missing bearer auth: %q", gotAuth)
	}
	for k, v := range map[string]string{
		"model": "img-edit-1", "prompt": "a cat", "size": "1536x1024",
		"quality": "auto", "output_format": "png",
	} {
		if gotFields[k] != v {
			t.Fatalf("field %s = %q, want %q", k, gotFields[k], v)
		}
	}
	if string(gotImage) != "pngbytes" {
		t.Fatalf("image payload mismatch: %q", gotImage)
	}
	if _, sent := gotFields["mask"]; sent {
		t.Fatalf("mask field must not be sent")
	}
}

func TestEditImageServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"prompt rejected"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok", "m", srv.Client())
	_, err := c.EditImage(context.Background(), nil, "p", SizeSquare)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Message != "prompt rejected" || apiErr.StatusCode != 400 {
		t.Fatalf("error not passed through: %+v", apiErr)
	}
}

func TestEditImageOpaqueError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream fell over"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok", "m", srv.Client())
	_, err := c.EditImage(context.Background(), nil, "p", SizeAuto)
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 502 {
		t.Fatalf("expected 502 APIError, got %v", err)
	}
}

func TestEditImageMissingImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok", "m", srv.Client())
	if _, err := c.EditImage(context.Background(), nil, "p", SizeAuto); !errors.Is(err, ErrMissingImage) {
		t.Fatalf("expected ErrMissingImage, got %v", err)
	}
}

func TestEditImageNoToken(t *testing.T) {
	c := NewClient("http://unused", "", "m", nil)
	if _, err := c.EditImage(context.Background(), nil, "p", SizeAuto); !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}
}

func TestEditImageTransportError(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "tok", "m", &http.Client{})
	_, err := c.EditImage(context.Background(), nil, "p", SizeAuto)
	if err == nil {
		t.Fatalf("expected transport error")
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Fatalf("transport failure must not be an APIError")
	}
}
