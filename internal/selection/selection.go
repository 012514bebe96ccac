/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package selection models the transient region a generation request is
// scoped to: either the whole canvas or a freeform lasso polygon.
package selection

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/vector"

	"github.com/bchewy/doodledo/internal/geom"
	"github.com/bchewy/doodledo/internal/raster"
)

// Kind discriminates the two region variants.
type Kind uint8

const (
	KindFullCanvas Kind = iota
	KindLasso
)

// minLassoPoints is the smallest point count that forms a region; anything
// shorter is an incomplete gesture and is discarded on End.
const minLassoPoints = 3

// Selection is a transient region. It is not persisted and not safe for
// concurrent use; the host owns exactly one active selection at a time.
type Selection struct {
	kind   Kind
	points []geom.Pt
	active bool
	closed bool
}

// FullCanvas returns a selection covering the entire canvas.
func FullCanvas() *Selection {
	return &Selection{kind: KindFullCanvas, closed: true}
}

// NewLasso returns an empty lasso selection ready for point collection.
func NewLasso() *Selection { return &Selection{kind: KindLasso} }

// Kind returns the region variant.
func (s *Selection) Kind() Kind { return s.kind }

// Closed reports whether the region is finalized.
func (s *Selection) Closed() bool { return s.closed }

// Points returns the recorded lasso points (nil for full canvas).
func (s *Selection) Points() []geom.Pt { return s.points }

// Begin starts (or restarts) lasso point collection, discarding any prior
// region. No-op for full-canvas selections.
func (s *Selection) Begin() {
	if s.kind != KindLasso {
		return
	}
	s.points = s.points[:0]
	s.active = true
	s.closed = false
}

// AddPoint records a lasso point while collection is active.
func (s *Selection) AddPoint(p geom.Pt) {
	if s.kind != KindLasso || !s.active {
		return
	}
	s.points = append(s.points, p)
}

// End finishes point collection. The lasso closes when more than two points
// were recorded; otherwise the gesture is discarded.
func (s *Selection) End() {
	if s.kind != KindLasso || !s.active {
		return
	}
	s.active = false
	if len(s.points) >= minLassoPoints {
		s.closed = true
	} else {
		s.points = nil
		s.closed = false
	}
}

// HasSelection reports whether the region can scope a generation: a non-zero
// canvas for full-canvas mode, at least three recorded points for a lasso.
func (s *Selection) HasSelection(canvas geom.Size) bool {
	if s.kind == KindFullCanvas {
		return !canvas.IsZero()
	}
	return len(s.points) >= minLassoPoints
}

// BoundingRect resolves the region to a rectangle: the polygon bounds grown
// by padding, clamped to the canvas. ok is false for an unclosed lasso, a
// degenerate polygon or an off-canvas result.
func (s *Selection) BoundingRect(canvas geom.Size, padding float32) (geom.Rect, bool) {
	full := geom.R(0, 0, canvas.W, canvas.H)
	if full.Empty() {
		return geom.Rect{}, false
	}
	if s.kind == KindFullCanvas {
		return full, true
	}
	if !s.closed || len(s.points) < minLassoPoints {
		return geom.Rect{}, false
	}
	b, ok := geom.PolyBounds(s.points)
	if !ok {
		return geom.Rect{}, false
	}
	b = b.Inset(-padding, -padding).Intersect(full)
	if b.Empty() {
		return geom.Rect{}, false
	}
	return b, true
}

// Mask rasterizes the region as an alpha mask over the canvas at the given
// scale. For a lasso the polygon fill is unioned with its boundary stroked
// at strokeWidth, so composition never leaves a hairline seam along the
// selection edge. A full-canvas mask is fully opaque.
func (s *Selection) Mask(canvas geom.Size, strokeWidth, scale float32) *image.Alpha {
	if scale <= 0 {
		scale = 1
	}
	w := int(math.Ceil(float64(canvas.W * scale)))
	h := int(math.Ceil(float64(canvas.H * scale)))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	if s.kind == KindFullCanvas {
		for i := range mask.Pix {
			mask.Pix[i] = 0xff
		}
		return mask
	}
	if !s.closed || len(s.points) < minLassoPoints {
		return mask
	}
	r := vector.NewRasterizer(w, h)
	raster.AddPolygon(r, s.points, geom.Pt{}, scale)
	raster.AddStroke(r, s.points, strokeWidth, true, geom.Pt{}, scale)
	r.Draw(mask, mask.Bounds(), image.NewUniform(color.Alpha{A: 255}), image.Point{})
	return mask
}
