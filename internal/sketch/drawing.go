/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package sketch holds the vector drawing model and the surface collaborator
// that turns drawings into raster images. The drawing is deliberately dumb
// data: an ordered stroke sequence in canvas coordinates, serializable to
// JSON for the persistence layer.
package sketch

import (
	"github.com/bchewy/doodledo/internal/geom"
)

// Color is an 8-bit RGBA stroke color.
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// Black is the default ink.
var Black = Color{A: 255}

// Stroke is one pen trail: the ordered points the pen visited, drawn with
// round caps and joints at the given width.
type Stroke struct {
	Points []geom.Pt `json:"points"`
	Width  float32   `json:"width"`
	Color  Color     `json:"color"`
}

// Drawing is the full stroke sequence for one journal entry.
type Drawing struct {
	Strokes []Stroke `json:"strokes"`
}

// New returns an empty drawing.
func New() *Drawing { return &Drawing{} }

// Append adds a finished stroke. Strokes without points are dropped.
func (d *Drawing) Append(s Stroke) {
	if len(s.Points) == 0 {
		return
	}
	if s.Width <= 0 {
		s.Width = 1
	}
	d.Strokes = append(d.Strokes, s)
}

// Empty reports whether the drawing has no ink. A nil drawing is empty.
func (d *Drawing) Empty() bool {
	if d == nil {
		return true
	}
	for _, s := range d.Strokes {
		if len(s.Points) > 0 {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (d *Drawing) Clone() *Drawing {
	if d == nil {
		return New()
	}
	out := &Drawing{Strokes: make([]Stroke, len(d.Strokes))}
	for i, s := range d.Strokes {
		cp := s
		cp.Points = append([]geom.Pt(nil), s.Points...)
		out.Strokes[i] = cp
	}
	return out
}

// Bounds returns the ink bounding box, expanded by half of each stroke's
// width so caps are included. ok is false for an empty drawing.
func (d *Drawing) Bounds() (geom.Rect, bool) {
	if d.Empty() {
		return geom.Rect{}, false
	}
	var acc geom.Rect
	first := true
	for _, s := range d.Strokes {
		b, ok := geom.PolyBounds(s.Points)
		if !ok {
			continue
		}
		b = b.Inset(-s.Width/2, -s.Width/2)
		if first {
			acc = b
			first = false
		} else {
			acc = acc.Union(b)
		}
	}
	if first {
		return geom.Rect{}, false
	}
	return acc, true
}
