/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package sketch

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/vector"

	"github.com/bchewy/doodledo/internal/geom"
	"github.com/bchewy/doodledo/internal/raster"
)

// Surface is the drawing-surface collaborator: it rasterizes a drawing and
// reports its ink bounds. A GUI host may supply a GPU-backed implementation;
// the library ships a software one.
type Surface interface {
	// Rasterize renders the region of the drawing into a transparent image
	// of ceil(region.W*scale) by ceil(region.H*scale) pixels.
	Rasterize(d *Drawing, region geom.Rect, scale float32) *image.RGBA
	// ContentBounds returns the ink bounding box, false when there is none.
	ContentBounds(d *Drawing) (geom.Rect, bool)
}

// SoftwareSurface rasterizes strokes on the CPU with the x/image vector
// rasterizer. Each stroke becomes segment quads plus point discs, which
// matches the round-cap round-joint pen model of the drawing layer.
type SoftwareSurface struct{}

var _ Surface = SoftwareSurface{}

func (SoftwareSurface) ContentBounds(d *Drawing) (geom.Rect, bool) { return d.Bounds() }

func (SoftwareSurface) Rasterize(d *Drawing, region geom.Rect, scale float32) *image.RGBA {
	if scale <= 0 {
		scale = 1
	}
	w := int(math.Ceil(float64(region.W * scale)))
	h := int(math.Ceil(float64(region.H * scale)))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	if d.Empty() {
		return img
	}
	origin := region.Min()
	for _, s := range d.Strokes {
		if len(s.Points) == 0 {
			continue
		}
		r := vector.NewRasterizer(w, h)
		raster.AddStroke(r, s.Points, s.Width, false, origin, scale)
		ink := color.NRGBA{R: s.Color.R, G: s.Color.G, B: s.Color.B, A: s.Color.A}
		r.Draw(img, img.Bounds(), image.NewUniform(ink), image.Point{})
	}
	return img
}
