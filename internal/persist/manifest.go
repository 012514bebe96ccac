/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package persist

import (
	"encoding/json"
	"fmt"
	"time"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	"github.com/bchewy/doodledo/internal/journal"
	"github.com/bchewy/doodledo/internal/sketch"
)

// manifestVersion is bumped when the manifest structure changes in a
// backward-incompatible way.
const manifestVersion = 1

// Manifest is the portable journal interchange format. Binary fields ride as
// base64 through encoding/json's []byte handling.
type Manifest struct {
	Version    int             `json:"version"`
	ExportedAt time.Time       `json:"exported_at"`
	Entries    []ManifestEntry `json:"entries"`
}

type ManifestEntry struct {
	ID         string          `json:"id"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	Caption    string          `json:"caption,omitempty"`
	Background []byte          `json:"background,omitempty"`
	Thumbnail  []byte          `json:"thumbnail,omitempty"`
	Drawing    *sketch.Drawing `json:"drawing,omitempty"`
}

// manifestSchema validates untrusted manifests on import before any field is
// touched. Kept alongside the structs it mirrors.
const manifestSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["version", "exported_at", "entries"],
	"properties": {
		"version": {"type": "integer", "minimum": 1},
		"exported_at": {"type": "string"},
		"entries": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["id", "created_at", "updated_at"],
				"properties": {
					"id": {"type": "string", "minLength": 1},
					"created_at": {"type": "string"},
					"updated_at": {"type": "string"},
					"caption": {"type": "string"},
					"background": {"type": "string"},
					"thumbnail": {"type": "string"},
					"drawing": {"type": "object"}
				}
			}
		}
	}
}`

// ExportJSON serializes a journal snapshot into manifest bytes.
func ExportJSON(entries []journal.Entry, drawings map[string]*sketch.Drawing) ([]byte, error) {
	m := Manifest{
		Version:    manifestVersion,
		ExportedAt: time.Now().UTC(),
		Entries:    make([]ManifestEntry, 0, len(entries)),
	}
	for _, e := range entries {
		me := ManifestEntry{
			ID:         e.ID,
			CreatedAt:  e.CreatedAt,
			UpdatedAt:  e.UpdatedAt,
			Caption:    e.Caption,
			Background: e.BackgroundImageData,
			Thumbnail:  e.ThumbnailData,
		}
		if d := drawings[e.ID]; d != nil && !d.Empty() {
			me.Drawing = d
		}
		m.Entries = append(m.Entries, me)
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return data, nil
}

// ImportJSON validates manifest bytes against the schema and decodes them back
// into a journal snapshot. Nothing is written anywhere; callers decide how to
// merge the result.
func ImportJSON(data []byte) ([]journal.Entry, map[string]*sketch.Drawing, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(manifestSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("validate manifest: %w", err)
	}
	if !result.Valid() {
		return nil, nil, fmt.Errorf("manifest rejected: %s", result.Errors()[0])
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, nil, fmt.Errorf("decode manifest: %w", err)
	}
	if m.Version > manifestVersion {
		return nil, nil, fmt.Errorf("manifest version %d is newer than supported %d", m.Version, manifestVersion)
	}

	entries := make([]journal.Entry, 0, len(m.Entries))
	drawings := make(map[string]*sketch.Drawing)
	for _, me := range m.Entries {
		entries = append(entries, journal.Entry{
			ID:                  me.ID,
			CreatedAt:           me.CreatedAt,
			UpdatedAt:           me.UpdatedAt,
			Caption:             me.Caption,
			BackgroundImageData: me.Background,
			ThumbnailData:       me.Thumbnail,
		})
		if me.Drawing != nil && !me.Drawing.Empty() {
			drawings[me.ID] = me.Drawing
		}
	}
	return entries, drawings, nil
}
