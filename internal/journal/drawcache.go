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
	"log/slog"
	"sync"
	"time"

	applog "github.com/bchewy/doodledo/internal/log"
	"github.com/bchewy/doodledo/internal/sketch"
)

// ThumbnailRenderer derives a raster preview from a drawing plus an optional
// background image. A nil result with nil error means nothing to render.
type ThumbnailRenderer interface {
	Render(d *sketch.Drawing, background []byte) ([]byte, error)
}

// DrawingCache maps entry ids to their current drawing. A missing drawing is
// an empty drawing, never an error. Saving writes metadata through the entry
// store; thumbnail regeneration is caller-driven via the generateThumbnail
// flag so incremental stroke saves stay cheap.
type DrawingCache struct {
	mu       sync.Mutex
	store    *Store
	thumbs   ThumbnailRenderer
	drawings map[string]*sketch.Drawing
	log      *slog.Logger
}

// NewDrawingCache wires the cache to its entry store. thumbs may be nil when
// the host never requests thumbnails.
func NewDrawingCache(store *Store, thumbs ThumbnailRenderer) *DrawingCache {
	return &DrawingCache{
		store:    store,
		thumbs:   thumbs,
		drawings: make(map[string]*sketch.Drawing),
		log:      applog.WithComponent("drawcache"),
	}
}

// Load returns a copy of the drawing for id, or an empty drawing when none
// exists yet.
func (c *DrawingCache) Load(id string) *sketch.Drawing {
	c.mu.Lock()
	d, ok := c.drawings[id]
	c.mu.Unlock()
	if !ok {
		return sketch.New()
	}
	return d.Clone()
}

// Save stores d under id and bumps the entry's updatedAt. When
// generateThumbnail is set, the thumbnail is re-derived from the drawing and
// the entry's current background and written through the store; otherwise
// the existing thumbnail is left untouched. The drawing is cached even when
// no entry matches id.
func (c *DrawingCache) Save(d *sketch.Drawing, id string, generateThumbnail bool) {
	c.mu.Lock()
	c.drawings[id] = d.Clone()
	c.mu.Unlock()

	if !generateThumbnail || c.thumbs == nil {
		c.store.Update(id, time.Time{}, nil, false)
		return
	}
	entry, ok := c.store.Get(id)
	if !ok {
		// drawing stays cached; there is no metadata to bump
		return
	}
	thumb, err := c.thumbs.Render(d, entry.BackgroundImageData)
	if err != nil {
		c.log.Warn("thumbnail render failed", slog.String("entry", id), slog.Any("err", err))
		c.store.Update(id, time.Time{}, nil, false)
		return
	}
	c.store.Update(id, time.Time{}, thumb, true)
}

// DeleteEntry removes both the cached drawing and the entry itself. This is
// the deletion seam: callers get drawing and metadata cleanup in one call.
func (c *DrawingCache) DeleteEntry(id string) bool {
	c.mu.Lock()
	delete(c.drawings, id)
	c.mu.Unlock()
	return c.store.Delete(id)
}

// Snapshot returns a deep copy of all drawings, the cache half of the
// serialization boundary.
func (c *DrawingCache) Snapshot() map[string]*sketch.Drawing {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]*sketch.Drawing, len(c.drawings))
	for id, d := range c.drawings {
		out[id] = d.Clone()
	}
	return out
}

// Restore replaces the cache contents. Entries absent from drawings simply
// have no drawing afterwards.
func (c *DrawingCache) Restore(drawings map[string]*sketch.Drawing) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drawings = make(map[string]*sketch.Drawing, len(drawings))
	for id, d := range drawings {
		c.drawings[id] = d.Clone()
	}
}
