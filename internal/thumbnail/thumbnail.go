/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package thumbnail derives fixed-purpose raster previews from a drawing and
// an optional background image. Rendering is a pure function of its inputs
// and the configured scale, so identical inputs produce identical bytes.
package thumbnail

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/bchewy/doodledo/internal/geom"
	"github.com/bchewy/doodledo/internal/raster"
	"github.com/bchewy/doodledo/internal/sketch"
)

const (
	// Padding expands the ink bounding box so strokes do not touch the
	// thumbnail edge.
	Padding = 24
	// MinSize floors the render rect so tiny sketches still produce a
	// legible preview.
	MinSize = 240
)

// Renderer renders thumbnails through a drawing surface at a device scale.
type Renderer struct {
	surface sketch.Surface
	scale   float32
}

// NewRenderer returns a renderer. scale <= 0 falls back to 1.
func NewRenderer(surface sketch.Surface, scale float32) *Renderer {
	if scale <= 0 {
		scale = 1
	}
	return &Renderer{surface: surface, scale: scale}
}

// Render composes white ground, the background image (stretched to the
// render rect) and the rasterized drawing, returning PNG bytes. It returns
// (nil, nil) when there is nothing to render: no ink and no background.
//
// The render rect is the background's full size when one exists; otherwise
// the ink bounds padded by Padding and floored to MinSize per side.
func (r *Renderer) Render(d *sketch.Drawing, background []byte) ([]byte, error) {
	var bg image.Image
	var rect geom.Rect
	switch {
	case len(background) > 0:
		img, err := raster.DecodePNG(background)
		if err != nil {
			return nil, fmt.Errorf("thumbnail background: %w", err)
		}
		bg = img
		b := img.Bounds()
		rect = geom.R(0, 0, float32(b.Dx()), float32(b.Dy()))
	default:
		cb, ok := r.surface.ContentBounds(d)
		if !ok {
			return nil, nil
		}
		rect = cb.Inset(-Padding, -Padding).ExpandToMin(MinSize, MinSize)
	}

	w := int(rect.W * r.scale)
	h := int(rect.H * r.scale)
	if w < 1 || h < 1 {
		return nil, nil
	}
	out := raster.NewWhite(w, h)
	if bg != nil {
		raster.DrawStretched(out, out.Bounds(), bg)
	}
	if !d.Empty() {
		ink := r.surface.Rasterize(d, rect, r.scale)
		draw.Draw(out, out.Bounds(), ink, ink.Bounds().Min, draw.Over)
	}
	return raster.EncodePNG(out)
}
