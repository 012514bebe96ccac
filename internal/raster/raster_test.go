/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package raster

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"golang.org/x/image/vector"

	"github.com/bchewy/doodledo/internal/geom"
)

func TestPNGRoundTrip(t *testing.T) {
	img := NewWhite(8, 4)
	img.SetRGBA(3, 2, color.RGBA{R: 200, G: 10, B: 10, A: 255})
	data, err := EncodePNG(img)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	back, err := DecodePNG(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got := ToRGBA(back)
	if got.RGBAAt(3, 2) != img.RGBAAt(3, 2) {
		t.Fatalf("pixel changed across round trip")
	}
	if _, err := DecodePNG([]byte("not a png")); err == nil {
		t.Fatalf("expected decode error for junk bytes")
	}
}

func TestFillMaskedOnlyTouchesMask(t *testing.T) {
	dst := NewWhite(4, 4)
	mask := image.NewAlpha(dst.Bounds())
	mask.SetAlpha(1, 1, color.Alpha{A: 255})
	FillMasked(dst, mask, color.RGBA{R: 0, G: 0, B: 0, A: 255})
	if dst.RGBAAt(1, 1) != (color.RGBA{A: 255}) {
		t.Fatalf("masked pixel not filled: %+v", dst.RGBAAt(1, 1))
	}
	if dst.RGBAAt(0, 0) != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Fatalf("unmasked pixel was touched: %+v", dst.RGBAAt(0, 0))
	}
}

func TestDrawCoverMaskedPreservesOutside(t *testing.T) {
	dst := NewWhite(20, 20)
	before := Clone(dst)

	src := image.NewRGBA(image.Rect(0, 0, 10, 5)) // wide source into square target
	draw.Draw(src, src.Bounds(), image.NewUniform(color.RGBA{B: 255, A: 255}), image.Point{}, draw.Src)

	mask := image.NewAlpha(dst.Bounds())
	target := image.Rect(5, 5, 15, 15)
	for y := target.Min.Y; y < target.Max.Y; y++ {
		for x := target.Min.X; x < target.Max.X; x++ {
			mask.SetAlpha(x, y, color.Alpha{A: 255})
		}
	}
	DrawCoverMasked(dst, src, target, mask)

	if dst.RGBAAt(10, 10).B != 255 {
		t.Fatalf("target center not covered: %+v", dst.RGBAAt(10, 10))
	}
	for _, p := range []image.Point{{0, 0}, {19, 19}, {4, 10}, {10, 16}} {
		if dst.RGBAAt(p.X, p.Y) != before.RGBAAt(p.X, p.Y) {
			t.Fatalf("pixel outside mask changed at %v", p)
		}
	}
}

func TestAddStrokeProducesCoverage(t *testing.T) {
	r := vector.NewRasterizer(20, 20)
	AddStroke(r, []geom.Pt{{X: 2, Y: 10}, {X: 18, Y: 10}}, 4, false, geom.Pt{}, 1)
	dst := image.NewAlpha(image.Rect(0, 0, 20, 20))
	r.Draw(dst, dst.Bounds(), image.NewUniform(color.Alpha{A: 255}), image.Point{})
	if dst.AlphaAt(10, 10).A == 0 {
		t.Fatalf("stroke center not covered")
	}
	if dst.AlphaAt(10, 2).A != 0 {
		t.Fatalf("far off-stroke pixel covered")
	}
}

func TestAddPolygonIgnoresDegenerate(t *testing.T) {
	r := vector.NewRasterizer(10, 10)
	AddPolygon(r, []geom.Pt{{X: 0, Y: 0}, {X: 5, Y: 5}}, geom.Pt{}, 1)
	dst := image.NewAlpha(image.Rect(0, 0, 10, 10))
	r.Draw(dst, dst.Bounds(), image.NewUniform(color.Alpha{A: 255}), image.Point{})
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			if dst.AlphaAt(x, y).A != 0 {
				t.Fatalf("two-point polygon produced coverage at %d,%d", x, y)
			}
		}
	}
}
