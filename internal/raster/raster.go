/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package raster holds the shared raster plumbing: PNG encode/decode,
// composition helpers and path construction for the x/image vector
// rasterizer. All canvas-space coordinates are scaled into pixel space here.
package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/vector"

	"github.com/bchewy/doodledo/internal/geom"
)

// EncodePNG returns the lossless PNG encoding of img.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodePNG decodes PNG bytes into an image.
func DecodePNG(data []byte) (image.Image, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode png: %w", err)
	}
	return img, nil
}

// ToRGBA converts any image to RGBA, copying when necessary.
func ToRGBA(img image.Image) *image.RGBA {
	if r, ok := img.(*image.RGBA); ok {
		return r
	}
	out := image.NewRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	return out
}

// Clone returns an independent copy of img.
func Clone(img *image.RGBA) *image.RGBA {
	out := image.NewRGBA(img.Bounds())
	copy(out.Pix, img.Pix)
	return out
}

// NewWhite creates a w by h RGBA image filled with opaque white.
func NewWhite(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return img
}

// FillMasked paints c over dst wherever mask is opaque.
func FillMasked(dst *image.RGBA, mask *image.Alpha, c color.Color) {
	draw.DrawMask(dst, dst.Bounds(), image.NewUniform(c), image.Point{}, mask, image.Point{}, draw.Over)
}

// DrawStretched scales src to exactly fill dr, ignoring aspect ratio.
func DrawStretched(dst *image.RGBA, dr image.Rectangle, src image.Image) {
	xdraw.CatmullRom.Scale(dst, dr, src, src.Bounds(), xdraw.Over, nil)
}

// DrawCoverMasked scales src to cover target (aspect-fill, center-cropped)
// and draws it over dst restricted to mask. Overflow beyond target lands on
// pixels the mask rejects, so the seam stays inside the mask boundary.
func DrawCoverMasked(dst *image.RGBA, src image.Image, target image.Rectangle, mask *image.Alpha) {
	sb := src.Bounds()
	sw, sh := sb.Dx(), sb.Dy()
	tw, th := target.Dx(), target.Dy()
	if sw == 0 || sh == 0 || tw == 0 || th == 0 {
		return
	}
	s := math.Max(float64(tw)/float64(sw), float64(th)/float64(sh))
	dw := int(math.Ceil(float64(sw) * s))
	dh := int(math.Ceil(float64(sh) * s))
	dr := image.Rect(0, 0, dw, dh).Add(image.Point{
		X: target.Min.X - (dw-tw)/2,
		Y: target.Min.Y - (dh-th)/2,
	})
	opts := &xdraw.Options{DstMask: mask, DstMaskP: image.Point{}}
	xdraw.CatmullRom.Scale(dst, dr, src, sb, xdraw.Over, opts)
}

// AddPolygon appends the closed polygon pts to the rasterizer path,
// translated by -origin and scaled into pixel space.
func AddPolygon(r *vector.Rasterizer, pts []geom.Pt, origin geom.Pt, scale float32) {
	if len(pts) < 3 {
		return
	}
	r.MoveTo((pts[0].X-origin.X)*scale, (pts[0].Y-origin.Y)*scale)
	for _, p := range pts[1:] {
		r.LineTo((p.X-origin.X)*scale, (p.Y-origin.Y)*scale)
	}
	r.ClosePath()
}

// AddStroke appends the outline of a polyline stroked with the given width:
// one quad per segment plus a disc per point for round caps and joints.
// When closed, an extra segment connects the last point back to the first.
func AddStroke(r *vector.Rasterizer, pts []geom.Pt, width float32, closed bool, origin geom.Pt, scale float32) {
	if len(pts) == 0 || width <= 0 {
		return
	}
	half := width * scale / 2
	at := func(p geom.Pt) (float32, float32) {
		return (p.X - origin.X) * scale, (p.Y - origin.Y) * scale
	}
	seg := func(a, b geom.Pt) {
		ax, ay := at(a)
		bx, by := at(b)
		dx, dy := bx-ax, by-ay
		l := float32(math.Hypot(float64(dx), float64(dy)))
		if l == 0 {
			return
		}
		// unit normal
		nx, ny := -dy/l*half, dx/l*half
		r.MoveTo(ax+nx, ay+ny)
		r.LineTo(bx+nx, by+ny)
		r.LineTo(bx-nx, by-ny)
		r.LineTo(ax-nx, ay-ny)
		r.ClosePath()
	}
	for i := 0; i+1 < len(pts); i++ {
		seg(pts[i], pts[i+1])
	}
	if closed && len(pts) > 2 {
		seg(pts[len(pts)-1], pts[0])
	}
	for _, p := range pts {
		px, py := at(p)
		addDisc(r, px, py, half)
	}
}

// addDisc approximates a filled circle with a 16-gon; plenty for cap/joint
// rounding at stroke widths used on a canvas.
func addDisc(r *vector.Rasterizer, cx, cy, rad float32) {
	if rad <= 0 {
		return
	}
	const n = 16
	r.MoveTo(cx+rad, cy)
	for i := 1; i < n; i++ {
		a := 2 * math.Pi * float64(i) / n
		r.LineTo(cx+rad*float32(math.Cos(a)), cy+rad*float32(math.Sin(a)))
	}
	r.ClosePath()
}
