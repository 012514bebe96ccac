/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package journal

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store keeps entries in insertion order, newest first. Creation always
// inserts at index 0; the order is never re-derived from timestamps, so a
// backdated CreateAt does not reorder the collection.
//
// All operations are safe for concurrent use. Lookups and updates degrade
// gracefully: an unknown id yields a zero Entry and ok=false, never an error.
type Store struct {
	mu      sync.Mutex
	entries []Entry // newest first
	subs    map[int]func(Event)
	nextSub int
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{subs: make(map[int]func(Event))}
}

// Create builds a new entry with a fresh id and the current time and inserts
// it at the top.
func (s *Store) Create() Entry {
	return s.CreateAt("", time.Time{})
}

// CreateAt is the create variant with explicit id and timestamp, used by
// tests and by snapshot restore paths. Empty id and zero timestamp fall back
// to generated values.
func (s *Store) CreateAt(id string, ts time.Time) Entry {
	if id == "" {
		id = uuid.NewString()
	}
	if ts.IsZero() {
		ts = time.Now()
	}
	e := Entry{ID: id, CreatedAt: ts, UpdatedAt: ts}

	s.mu.Lock()
	s.entries = append([]Entry{e}, s.entries...)
	s.mu.Unlock()

	s.notify(Event{Type: EntryCreated, EntryID: id})
	return e
}

// Get returns the entry for id, ok=false when absent.
func (s *Store) Get(id string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.entries[i].clone(), true
	}
	return Entry{}, false
}

// Update bumps updatedAt to ts (current time when zero) and, only when
// updateThumbnail is set, replaces the thumbnail with thumb, including
// replacing it with nil, which clears it. Absent ids are a silent no-op.
func (s *Store) Update(id string, ts time.Time, thumb []byte, updateThumbnail bool) (Entry, bool) {
	if ts.IsZero() {
		ts = time.Now()
	}
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return Entry{}, false
	}
	s.entries[i].UpdatedAt = ts
	if updateThumbnail {
		s.entries[i].ThumbnailData = append([]byte(nil), thumb...)
	}
	out := s.entries[i].clone()
	s.mu.Unlock()

	s.notify(Event{Type: EntryUpdated, EntryID: id})
	return out, true
}

// UpdateCaption sets the caption and bumps updatedAt. Setting the caption to
// its current value is a no-op so incidental edits do not churn timestamps.
func (s *Store) UpdateCaption(caption, id string) {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 || s.entries[i].Caption == caption {
		s.mu.Unlock()
		return
	}
	s.entries[i].Caption = caption
	s.entries[i].UpdatedAt = time.Now()
	s.mu.Unlock()

	s.notify(Event{Type: EntryUpdated, EntryID: id})
}

// UpdateBackground replaces the background image bytes (nil clears them) and
// bumps updatedAt. Absent ids are a silent no-op.
func (s *Store) UpdateBackground(data []byte, id string) {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	s.entries[i].BackgroundImageData = append([]byte(nil), data...)
	s.entries[i].UpdatedAt = time.Now()
	s.mu.Unlock()

	s.notify(Event{Type: EntryUpdated, EntryID: id})
}

// Delete removes the entry. The drawing cache removes the matching drawing
// through DrawingCache.DeleteEntry, which calls here.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	s.mu.Unlock()

	s.notify(Event{Type: EntryDeleted, EntryID: id})
	return true
}

// Entries returns a copy of the collection, newest first.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.clone()
	}
	return out
}

// Len returns the entry count.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Snapshot is the serialization boundary for a future or present persistence
// layer: the full ordered collection.
func (s *Store) Snapshot() []Entry { return s.Entries() }

// Restore replaces the collection with entries (given newest first). No
// events fire; restore happens before the UI subscribes.
func (s *Store) Restore(entries []Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make([]Entry, len(entries))
	for i, e := range entries {
		s.entries[i] = e.clone()
	}
}

// Subscribe registers fn for change events, delivered synchronously after
// each mutation commits. The returned cancel func removes the subscription.
func (s *Store) Subscribe(fn func(Event)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify(ev Event) {
	s.mu.Lock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

func (s *Store) indexLocked(id string) int {
	for i := range s.entries {
		if s.entries[i].ID == id {
			return i
		}
	}
	return -1
}
