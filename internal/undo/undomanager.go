/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package undo keeps in-memory undo/redo stacks of drawing snapshots per
// journal entry. Snapshots are opaque serialized drawings; the manager only
// accounts for their byte size.
package undo

import (
	"sync"
	"time"
)

// Snapshot is one reversible drawing state for an entry.
type Snapshot struct {
	EntryID string
	Blob    []byte
	TS      time.Time
}

// Config controls memory and depth caps and coalescing behavior.
type Config struct {
	// MaxBytes is a soft global cap; oldest snapshots are pruned past it.
	MaxBytes int
	// MaxPerEntry limits snapshots kept per entry (0 means unlimited).
	MaxPerEntry int
	// MinInterval coalesces snapshots captured within the interval for the
	// same entry, replacing the previous one instead of pushing a new one.
	// Rapid stroke batches collapse into a single undo step this way.
	MinInterval time.Duration
}

// Manager is safe for concurrent use.
type Manager struct {
	cfg  Config
	mu   sync.Mutex
	undo map[string][]Snapshot
	redo map[string][]Snapshot

	totalBytes int
}

func NewManager(cfg Config) *Manager {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 16 * 1024 * 1024
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = 250 * time.Millisecond
	}
	return &Manager{cfg: cfg, undo: make(map[string][]Snapshot), redo: make(map[string][]Snapshot)}
}

// Push records a snapshot. Within MinInterval of the entry's previous
// snapshot it replaces it. Any push invalidates the entry's redo stack.
func (m *Manager) Push(s Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stack := m.undo[s.EntryID]
	if n := len(stack); n > 0 && s.TS.Sub(stack[n-1].TS) < m.cfg.MinInterval {
		m.totalBytes += len(s.Blob) - len(stack[n-1].Blob)
		stack[n-1] = s
		m.undo[s.EntryID] = stack
		m.redo[s.EntryID] = nil
		m.enforceCapsLocked(s.EntryID)
		return
	}
	m.undo[s.EntryID] = append(stack, s)
	m.totalBytes += len(s.Blob)
	m.redo[s.EntryID] = nil
	m.enforceCapsLocked(s.EntryID)
}

// Undo pops the entry's latest snapshot onto its redo stack.
func (m *Manager) Undo(entryID string) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stack := m.undo[entryID]
	if len(stack) == 0 {
		return Snapshot{}, false
	}
	s := stack[len(stack)-1]
	m.undo[entryID] = stack[:len(stack)-1]
	m.totalBytes -= len(s.Blob)
	m.redo[entryID] = append(m.redo[entryID], s)
	return s, true
}

// Redo moves the entry's latest redone snapshot back onto undo.
func (m *Manager) Redo(entryID string) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.redo[entryID]
	if len(r) == 0 {
		return Snapshot{}, false
	}
	s := r[len(r)-1]
	m.redo[entryID] = r[:len(r)-1]
	m.undo[entryID] = append(m.undo[entryID], s)
	m.totalBytes += len(s.Blob)
	m.enforceCapsLocked(entryID)
	return s, true
}

// ClearEntry drops both stacks for an entry, e.g. after a successful
// generation bakes the drawing into the background.
func (m *Manager) ClearEntry(entryID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.undo[entryID] {
		m.totalBytes -= len(s.Blob)
	}
	delete(m.undo, entryID)
	delete(m.redo, entryID)
	if m.totalBytes < 0 {
		m.totalBytes = 0
	}
}

// Stats returns current sizes for diagnostics.
func (m *Manager) Stats() (totalBytes, entries, totalSnapshots int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries = len(m.undo)
	for _, v := range m.undo {
		totalSnapshots += len(v)
	}
	return m.totalBytes, entries, totalSnapshots
}

func (m *Manager) enforceCapsLocked(entryID string) {
	if m.cfg.MaxPerEntry > 0 {
		stack := m.undo[entryID]
		if extra := len(stack) - m.cfg.MaxPerEntry; extra > 0 {
			for i := 0; i < extra; i++ {
				m.totalBytes -= len(stack[i].Blob)
			}
			m.undo[entryID] = append([]Snapshot{}, stack[extra:]...)
		}
	}
	// global cap: prune the oldest snapshot across all entries
	for m.cfg.MaxBytes > 0 && m.totalBytes > m.cfg.MaxBytes {
		oldestEntry := ""
		found := false
		var oldestTS time.Time
		for id, stack := range m.undo {
			if len(stack) == 0 {
				continue
			}
			if !found || stack[0].TS.Before(oldestTS) {
				oldestEntry = id
				oldestTS = stack[0].TS
				found = true
			}
		}
		if !found {
			break
		}
		stack := m.undo[oldestEntry]
		m.totalBytes -= len(stack[0].Blob)
		m.undo[oldestEntry] = stack[1:]
		if len(m.undo[oldestEntry]) == 0 {
			delete(m.undo, oldestEntry)
		}
	}
}
