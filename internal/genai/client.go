/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package genai is the HTTP client for the external image-editing service.
// It sends a PNG plus prompt as multipart form data and returns the first
// edited image from the response. The caller supplies the bearer token; the
// client never reads ambient configuration.
package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

// SizePreset is one of the discrete output sizes the service accepts.
type SizePreset string

const (
	SizeSquare SizePreset = "1024x1024"
	SizeWide   SizePreset = "1536x1024"
	SizeTall   SizePreset = "1024x1536"
	SizeAuto   SizePreset = "auto"
)

// ErrMissingImage signals a 2xx response that carried no decodable image.
var ErrMissingImage = errors.New("genai: response contained no image")

// ErrNoToken signals that no API token was configured. This is a
// precondition the host must resolve out of band, not a request failure.
var ErrNoToken = errors.New("genai: no API token configured")

// APIError is a structured error returned by the service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("genai: service error (%d): %s", e.StatusCode, e.Message)
}

// Client talks to the image-edit endpoint. baseURL may include a trailing
// slash; it is normalized.
type Client struct {
	BaseURL string
	Token   string // bearer token
	Model   string
	client  *http.Client
}

// NewClient creates a client. httpClient may be nil; a default with a
// generous timeout is used, since image editing is slow.
func NewClient(baseURL, token, model string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 180 * time.Second}
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		Model:   model,
		client:  httpClient,
	}
}

type imageResult struct {
	B64JSON string `json:"b64_json"`
}

type editResponse struct {
	Data []imageResult `json:"data"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// EditImage submits image (PNG bytes) with the prompt and size hint,
// returning the edited PNG bytes. Quality and output format are pinned to
// the values the pipeline depends on. The optional mask field of the wire
// contract is not sent.
func (c *Client) EditImage(ctx context.Context, image []byte, prompt string, size SizePreset) ([]byte, error) {
	if strings.TrimSpace(c.Token) == "" {
		return nil, ErrNoToken
	}
	if size == "" {
		size = SizeAuto
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fields := map[string]string{
		"model":         c.Model,
		"prompt":        prompt,
		"size":          string(size),
		"quality":       "auto",
		"output_format": "png",
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("genai: build request: %w", err)
		}
	}
	part, err := createPNGPart(mw, "image", "sketch.png")
	if err != nil {
		return nil, fmt.Errorf("genai: build request: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("genai: build request: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("genai: build request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/images/edits", &body)
	if err != nil {
		return nil, fmt.Errorf("genai: build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("genai: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, decodeError(resp)
	}

	var out editResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("genai: decode response: %w", err)
	}
	if len(out.Data) == 0 || out.Data[0].B64JSON == "" {
		return nil, ErrMissingImage
	}
	img, err := base64.StdEncoding.DecodeString(out.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingImage, err)
	}
	return img, nil
}

// decodeError surfaces the service's own message when the error body parses,
// otherwise the raw status.
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	var er errorResponse
	if err := json.Unmarshal(raw, &er); err == nil && er.Error.Message != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: er.Error.Message}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: resp.Status}
}

func createPNGPart(mw *multipart.Writer, field, filename string) (io.Writer, error) {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	h.Set("Content-Type", "image/png")
	return mw.CreatePart(h)
}
