/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package export writes the journal out as shareable documents.
package export

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"github.com/bchewy/doodledo/internal/geom"
	"github.com/bchewy/doodledo/internal/journal"
	"github.com/bchewy/doodledo/internal/raster"
	"github.com/bchewy/doodledo/internal/sketch"
)

// PDFOptions controls journal PDF export. Units are points.
type PDFOptions struct {
	Title  string
	Margin float64 // page margin; defaults to 36pt
}

// A5 portrait in points.
const (
	pageWidth  = 420.0
	pageHeight = 595.0
)

// JournalPDF writes one page per entry to outPath: date header, the flattened
// entry image aspect-fit into the content box, caption underneath. Entries
// arrive newest-first from the store; the PDF keeps that order.
func JournalPDF(outPath string, entries []journal.Entry, drawings map[string]*sketch.Drawing, surface sketch.Surface, opt PDFOptions) error {
	margin := opt.Margin
	if margin <= 0 {
		margin = 36
	}
	title := opt.Title
	if title == "" {
		title = "Doodle Journal"
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: pageWidth, Ht: pageHeight},
		OrientationStr: "P",
	})
	pdf.SetTitle(title, true)
	pdf.SetAuthor("DoodleDo", false)

	for i, e := range entries {
		pdf.AddPage()
		y := margin

		pdf.SetFont("Helvetica", "B", 12)
		pdf.SetTextColor(60, 60, 60)
		pdf.Text(margin, y+10, e.CreatedAt.Format("Monday, 2 January 2006"))
		y += 24

		img, err := flatten(e, drawings[e.ID], surface)
		if err != nil {
			return fmt.Errorf("entry %s: %w", e.ID, err)
		}
		if img != nil {
			data, err := raster.EncodePNG(img)
			if err != nil {
				return fmt.Errorf("entry %s: %w", e.ID, err)
			}
			name := fmt.Sprintf("entry-%d", i)
			opts := gofpdf.ImageOptions{ImageType: "PNG"}
			pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))

			// Aspect-fit into the content box, leaving room for the caption.
			boxW := pageWidth - 2*margin
			boxH := pageHeight - y - margin - 48
			iw, ih := float64(img.Bounds().Dx()), float64(img.Bounds().Dy())
			s := boxW / iw
			if ih*s > boxH {
				s = boxH / ih
			}
			w, h := iw*s, ih*s
			pdf.ImageOptions(name, margin+(boxW-w)/2, y, w, h, false, opts, 0, "")
			y += h + 12
		}

		if e.Caption != "" {
			pdf.SetFont("Helvetica", "", 10)
			pdf.SetTextColor(0, 0, 0)
			pdf.SetXY(margin, y)
			pdf.MultiCell(pageWidth-2*margin, 14, e.Caption, "", "L", false)
		}
	}
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("build pdf: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// flatten composes an entry's background and pending strokes into one image.
// Returns nil when the entry has nothing to show.
func flatten(e journal.Entry, d *sketch.Drawing, surface sketch.Surface) (*image.RGBA, error) {
	var out *image.RGBA
	if len(e.BackgroundImageData) > 0 {
		bg, err := raster.DecodePNG(e.BackgroundImageData)
		if err != nil {
			return nil, fmt.Errorf("background: %w", err)
		}
		out = raster.ToRGBA(bg)
	}
	if d == nil || d.Empty() {
		return out, nil
	}
	region, ok := surface.ContentBounds(d)
	if !ok {
		return out, nil
	}
	if out == nil {
		region = region.Inset(-16, -16)
		ink := surface.Rasterize(d, region, 1)
		out = raster.NewWhite(ink.Bounds().Dx(), ink.Bounds().Dy())
		draw.Draw(out, out.Bounds(), ink, ink.Bounds().Min, draw.Over)
		return out, nil
	}
	// Strokes live in canvas coordinates; the stored background spans the
	// canvas, so draw the ink at the background's own size.
	b := out.Bounds()
	ink := surface.Rasterize(d, geom.R(0, 0, float32(b.Dx()), float32(b.Dy())), 1)
	draw.Draw(out, out.Bounds(), ink, ink.Bounds().Min, draw.Over)
	return out, nil
}
