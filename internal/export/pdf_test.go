/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package export

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bchewy/doodledo/internal/geom"
	"github.com/bchewy/doodledo/internal/journal"
	"github.com/bchewy/doodledo/internal/raster"
	"github.com/bchewy/doodledo/internal/sketch"
)

func TestJournalPDFCreatesFile(t *testing.T) {
	bg, err := raster.EncodePNG(raster.NewWhite(64, 48))
	if err != nil {
		t.Fatalf("encode background: %v", err)
	}
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	entries := []journal.Entry{
		{ID: "b", CreatedAt: now.Add(24 * time.Hour), UpdatedAt: now, Caption: "with background", BackgroundImageData: bg},
		{ID: "a", CreatedAt: now, UpdatedAt: now, Caption: "sketch only"},
	}
	d := sketch.New()
	d.Append(sketch.Stroke{
		Points: []geom.Pt{{X: 10, Y: 10}, {X: 40, Y: 30}},
		Width:  4,
		Color:  sketch.Black,
	})
	drawings := map[string]*sketch.Drawing{"a": d}

	out := filepath.Join(t.TempDir(), "exports", "journal.pdf")
	if err := JournalPDF(out, entries, drawings, sketch.SoftwareSurface{}, PDFOptions{Title: "Test Journal"}); err != nil {
		t.Fatalf("JournalPDF: %v", err)
	}
	fi, err := os.Stat(out)
	if err != nil {
		t.Fatalf("stat output: %v", err)
	}
	if fi.Size() == 0 {
		t.Fatal("pdf file is empty")
	}
}

func TestJournalPDFEmptyEntry(t *testing.T) {
	entries := []journal.Entry{
		{ID: "x", CreatedAt: time.Now(), UpdatedAt: time.Now(), Caption: "nothing drawn yet"},
	}
	out := filepath.Join(t.TempDir(), "journal.pdf")
	if err := JournalPDF(out, entries, nil, sketch.SoftwareSurface{}, PDFOptions{}); err != nil {
		t.Fatalf("JournalPDF: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("stat output: %v", err)
	}
}

func TestJournalPDFBadBackground(t *testing.T) {
	entries := []journal.Entry{
		{ID: "x", CreatedAt: time.Now(), UpdatedAt: time.Now(), BackgroundImageData: []byte("not a png")},
	}
	out := filepath.Join(t.TempDir(), "journal.pdf")
	if err := JournalPDF(out, entries, nil, sketch.SoftwareSurface{}, PDFOptions{}); err == nil {
		t.Fatal("undecodable background should fail the export")
	}
}
