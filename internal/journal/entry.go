/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package journal owns the entry collection: identity, timestamps, captions,
// background images and derived thumbnails, plus the per-entry drawing cache.
// Drawings are kept apart from entry metadata so entries stay light while
// drawings can be heavy.
package journal

import "time"

// Entry is one journal record. Image payloads are encoded raster bytes (PNG);
// the store treats them as opaque.
type Entry struct {
	ID                  string    `json:"id"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
	Caption             string    `json:"caption"`
	BackgroundImageData []byte    `json:"backgroundImageData,omitempty"`
	ThumbnailData       []byte    `json:"thumbnailData,omitempty"`
}

// clone copies the entry including its byte payloads, so callers can never
// mutate store-owned state through a returned Entry.
func (e Entry) clone() Entry {
	e.BackgroundImageData = append([]byte(nil), e.BackgroundImageData...)
	e.ThumbnailData = append([]byte(nil), e.ThumbnailData...)
	return e
}

// EventType classifies store change notifications.
type EventType uint8

const (
	EntryCreated EventType = iota
	EntryUpdated
	EntryDeleted
)

// Event is delivered to subscribers after a mutation commits.
type Event struct {
	Type    EventType
	EntryID string
}
