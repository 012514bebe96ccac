/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package geom

import "testing"

func TestRectIntersect(t *testing.T) {
	a := R(0, 0, 100, 100)
	b := R(50, 50, 100, 100)
	got := a.Intersect(b)
	if got != R(50, 50, 50, 50) {
		t.Fatalf("intersect: got %+v", got)
	}
	c := R(200, 200, 10, 10)
	if !a.Intersect(c).Empty() {
		t.Fatalf("disjoint rects must intersect to empty")
	}
}

func TestRectInsetGrows(t *testing.T) {
	r := R(10, 10, 20, 20).Inset(-5, -5)
	if r != R(5, 5, 30, 30) {
		t.Fatalf("negative inset should grow: got %+v", r)
	}
}

func TestExpandToMinKeepsCenter(t *testing.T) {
	r := R(100, 100, 10, 40).ExpandToMin(50, 50)
	if r.W != 50 || r.H != 50 {
		t.Fatalf("expected 50x50, got %+v", r)
	}
	// center preserved
	if cx := r.X + r.W/2; cx != 105 {
		t.Fatalf("center x moved: %v", cx)
	}
	if cy := r.Y + r.H/2; cy != 120 {
		t.Fatalf("center y moved: %v", cy)
	}
}

func TestPolyBounds(t *testing.T) {
	pts := []Pt{{10, 20}, {30, 5}, {25, 40}}
	b, ok := PolyBounds(pts)
	if !ok || b != R(10, 5, 20, 35) {
		t.Fatalf("bounds: ok=%v got %+v", ok, b)
	}
	if _, ok := PolyBounds(nil); ok {
		t.Fatalf("empty point set must not yield bounds")
	}
}

func TestPointInPolygon(t *testing.T) {
	tri := []Pt{{0, 0}, {10, 0}, {5, 10}}
	if !PointInPolygon(Pt{5, 3}, tri) {
		t.Fatalf("centerish point should be inside")
	}
	if PointInPolygon(Pt{0, 10}, tri) {
		t.Fatalf("corner-adjacent point should be outside")
	}
	if PointInPolygon(Pt{5, 3}, tri[:2]) {
		t.Fatalf("two points never form a region")
	}
}
