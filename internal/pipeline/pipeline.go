/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package pipeline turns an entry's sketch into a finished background image.
// A generation run renders the canvas, sends the selected region upstream as
// line art, and composes the result back into the entry. All journal writes
// happen after the upstream call succeeds, so a failed run leaves the entry
// untouched.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log/slog"
	"math"
	"sync"

	"github.com/bchewy/doodledo/internal/crash"
	"github.com/bchewy/doodledo/internal/genai"
	"github.com/bchewy/doodledo/internal/geom"
	"github.com/bchewy/doodledo/internal/journal"
	"github.com/bchewy/doodledo/internal/log"
	"github.com/bchewy/doodledo/internal/raster"
	"github.com/bchewy/doodledo/internal/selection"
	"github.com/bchewy/doodledo/internal/sketch"
	"github.com/bchewy/doodledo/internal/telemetry"
	"github.com/bchewy/doodledo/internal/undo"
)

const (
	// selectionPadding widens the lasso bounds so the model sees a little
	// context around the strokes.
	selectionPadding = 12

	// boundaryStrokeWidth thickens the mask along the lasso boundary so
	// anti-aliased stroke edges on the perimeter are replaced too.
	boundaryStrokeWidth = 6

	// Aspect thresholds for picking the upstream output size.
	wideAspect = 1.2
	tallAspect = 0.83
)

var (
	// ErrBusy is returned when a generation is already in flight for the entry.
	ErrBusy = errors.New("generation already in progress for this entry")

	// ErrNoContent is returned when the entry has neither strokes nor a
	// background image to work from.
	ErrNoContent = errors.New("nothing on the canvas to generate from")

	// ErrNoSelection is returned when a lasso selection is open, degenerate
	// or entirely off-canvas.
	ErrNoSelection = errors.New("selection does not cover any canvas area")
)

// Phase describes where a generation run currently is.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRendering
	PhaseRequesting
	PhaseComposing
)

func (p Phase) String() string {
	switch p {
	case PhaseRendering:
		return "rendering"
	case PhaseRequesting:
		return "requesting"
	case PhaseComposing:
		return "composing"
	default:
		return "idle"
	}
}

// ImageEditor sends a PNG plus an instruction upstream and returns the
// generated PNG. *genai.Client satisfies this.
type ImageEditor interface {
	EditImage(ctx context.Context, image []byte, prompt string, size genai.SizePreset) ([]byte, error)
}

// Request describes one generation run.
type Request struct {
	EntryID   string
	Canvas    geom.Size
	Selection *selection.Selection
	Style     Style
}

// Generator runs the sketch-to-image pipeline. One generation may be in
// flight per entry; runs for different entries proceed independently.
type Generator struct {
	store   *journal.Store
	cache   *journal.DrawingCache
	surface sketch.Surface
	editor  ImageEditor

	undo      *undo.Manager
	tele      *telemetry.Client
	reportDir string
	scale     float32
	log       *slog.Logger

	mu     sync.Mutex
	phases map[string]Phase
}

// Option configures optional Generator collaborators.
type Option func(*Generator)

// WithUndo clears an entry's undo history after a successful generation.
func WithUndo(m *undo.Manager) Option { return func(g *Generator) { g.undo = m } }

// WithTelemetry reports generation events and crash uploads.
func WithTelemetry(c *telemetry.Client) Option { return func(g *Generator) { g.tele = c } }

// WithScale sets the canvas-to-pixel scale factor.
func WithScale(s float32) Option { return func(g *Generator) { g.scale = s } }

// WithReportDir sets where crash reports from async runs are written.
func WithReportDir(dir string) Option { return func(g *Generator) { g.reportDir = dir } }

func New(store *journal.Store, cache *journal.DrawingCache, surface sketch.Surface, editor ImageEditor, opts ...Option) *Generator {
	g := &Generator{
		store:   store,
		cache:   cache,
		surface: surface,
		editor:  editor,
		scale:   1,
		log:     log.WithComponent("pipeline"),
		phases:  make(map[string]Phase),
	}
	for _, o := range opts {
		o(g)
	}
	if g.scale <= 0 {
		g.scale = 1
	}
	return g
}

// Phase reports the current phase for an entry, PhaseIdle when no run is
// in flight.
func (g *Generator) Phase(entryID string) Phase {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phases[entryID]
}

// Generate runs the full pipeline synchronously. It returns ErrBusy without
// side effects when a run for the same entry is already in flight.
func (g *Generator) Generate(ctx context.Context, req Request) error {
	if req.Selection == nil {
		return ErrNoSelection
	}
	if req.Canvas.IsZero() {
		return ErrNoContent
	}
	if !g.acquire(req.EntryID) {
		return ErrBusy
	}
	defer g.release(req.EntryID)

	g.tele.Event("generation_started", map[string]any{"style": string(req.Style)})
	err := g.run(ctx, req)
	if err != nil {
		g.log.Error("generation failed", "entry", req.EntryID, "style", req.Style, "err", err)
		g.tele.Event("generation_failed", map[string]any{
			"style":  string(req.Style),
			"reason": failureReason(err),
		})
		return err
	}
	g.log.Info("generation finished", "entry", req.EntryID, "style", req.Style)
	g.tele.Event("generation_succeeded", map[string]any{"style": string(req.Style)})
	return nil
}

// Start runs Generate on its own goroutine, guarded against panics. done, if
// non-nil, is invoked with the result.
func (g *Generator) Start(ctx context.Context, req Request, done func(error)) {
	go func() {
		defer crash.Recover(g.tele, g.reportDir)
		err := g.Generate(ctx, req)
		if done != nil {
			done(err)
		}
	}()
}

func (g *Generator) run(ctx context.Context, req Request) error {
	id := req.EntryID
	drawing := g.cache.Load(id)
	var background []byte
	if entry, ok := g.store.Get(id); ok {
		background = entry.BackgroundImageData
	}
	if drawing.Empty() && len(background) == 0 {
		return ErrNoContent
	}

	g.setPhase(id, PhaseRendering)
	base, err := g.renderCanvas(drawing, background, req.Canvas)
	if err != nil {
		return err
	}
	// The model gets the strokes over white, without the existing
	// background, so it reads them as a sketch to finish. With no strokes
	// the full base goes upstream instead.
	lineArt := base
	if !drawing.Empty() && len(background) > 0 {
		if lineArt, err = g.renderCanvas(drawing, nil, req.Canvas); err != nil {
			return err
		}
	}

	brect, ok := req.Selection.BoundingRect(req.Canvas, selectionPadding)
	if !ok {
		return ErrNoSelection
	}
	mask := req.Selection.Mask(req.Canvas, boundaryStrokeWidth, g.scale)
	target := pxRect(brect, g.scale).Intersect(base.Bounds())
	if target.Empty() {
		return ErrNoSelection
	}
	payload, err := cropPayload(lineArt, mask, target)
	if err != nil {
		return err
	}

	g.setPhase(id, PhaseRequesting)
	result, err := g.editor.EditImage(ctx, payload, Prompt(req.Style), sizeHint(brect))
	if err != nil {
		return err
	}
	resImg, err := raster.DecodePNG(result)
	if err != nil {
		return fmt.Errorf("%w: %v", genai.ErrMissingImage, err)
	}

	g.setPhase(id, PhaseComposing)
	if _, ok := g.store.Get(id); !ok {
		// Entry was deleted mid-run; drop the result instead of
		// resurrecting it.
		g.log.Info("entry gone, discarding generation result", "entry", id)
		return nil
	}

	var newBackground []byte
	if req.Selection.Kind() == selection.KindFullCanvas {
		newBackground = result
	} else {
		out := raster.Clone(base)
		raster.FillMasked(out, mask, color.White)
		raster.DrawCoverMasked(out, resImg, target, mask)
		if newBackground, err = raster.EncodePNG(out); err != nil {
			return err
		}
	}

	g.store.UpdateBackground(newBackground, id)
	g.cache.Save(sketch.New(), id, true)
	if g.undo != nil {
		g.undo.ClearEntry(id)
	}
	return nil
}

// renderCanvas flattens the entry onto an opaque white canvas: background
// image first (stretched to the canvas), strokes on top.
func (g *Generator) renderCanvas(d *sketch.Drawing, background []byte, canvas geom.Size) (*image.RGBA, error) {
	w := int(math.Ceil(float64(canvas.W * g.scale)))
	h := int(math.Ceil(float64(canvas.H * g.scale)))
	out := raster.NewWhite(w, h)
	if len(background) > 0 {
		img, err := raster.DecodePNG(background)
		if err != nil {
			return nil, fmt.Errorf("stored background: %w", err)
		}
		raster.DrawStretched(out, out.Bounds(), img)
	}
	if !d.Empty() {
		ink := g.surface.Rasterize(d, geom.R(0, 0, canvas.W, canvas.H), g.scale)
		draw.Draw(out, out.Bounds(), ink, ink.Bounds().Min, draw.Over)
	}
	return out, nil
}

// cropPayload whites out everything the mask rejects and encodes the target
// region, so the upstream model only ever sees the selected strokes.
func cropPayload(lineArt *image.RGBA, mask *image.Alpha, target image.Rectangle) ([]byte, error) {
	flat := raster.NewWhite(lineArt.Bounds().Dx(), lineArt.Bounds().Dy())
	draw.DrawMask(flat, flat.Bounds(), lineArt, image.Point{}, mask, image.Point{}, draw.Over)
	return raster.EncodePNG(flat.SubImage(target))
}

// sizeHint picks the upstream output size closest to the selection's shape.
func sizeHint(r geom.Rect) genai.SizePreset {
	ratio := r.W / r.H
	switch {
	case ratio > wideAspect:
		return genai.SizeWide
	case ratio < tallAspect:
		return genai.SizeTall
	default:
		return genai.SizeSquare
	}
}

// pxRect converts a canvas-space rect to pixel space, rounding outward.
func pxRect(r geom.Rect, scale float32) image.Rectangle {
	return image.Rect(
		int(math.Floor(float64(r.X*scale))),
		int(math.Floor(float64(r.Y*scale))),
		int(math.Ceil(float64((r.X+r.W)*scale))),
		int(math.Ceil(float64((r.Y+r.H)*scale))),
	)
}

func failureReason(err error) string {
	var apiErr *genai.APIError
	switch {
	case errors.Is(err, ErrNoContent):
		return "no_content"
	case errors.Is(err, ErrNoSelection):
		return "no_selection"
	case errors.Is(err, genai.ErrNoToken):
		return "no_token"
	case errors.Is(err, genai.ErrMissingImage):
		return "missing_image"
	case errors.As(err, &apiErr):
		return fmt.Sprintf("http_%d", apiErr.StatusCode)
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "transport"
	}
}

func (g *Generator) acquire(entryID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.phases[entryID] != PhaseIdle {
		return false
	}
	g.phases[entryID] = PhaseRendering
	return true
}

func (g *Generator) setPhase(entryID string, p Phase) {
	g.mu.Lock()
	g.phases[entryID] = p
	g.mu.Unlock()
}

func (g *Generator) release(entryID string) {
	g.mu.Lock()
	delete(g.phases, entryID)
	g.mu.Unlock()
}
