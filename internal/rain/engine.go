// Package rain implements the column rain engine: glyphs falling down fixed
// columns of a surface, leaving a fading trail and looping back to the top
// at staggered, random moments.
package rain

import (
	"log"
	"time"

	"github.com/google/uuid"

	"matrixfx/internal/config"
	"matrixfx/internal/frame"
	"matrixfx/internal/surface"
)

// Handle is the lifecycle token of one running rain instance.
type Handle struct {
	id      uuid.UUID
	surface surface.Surface
	cfg     config.RainConfig
	columns *Columns

	registry *Registry
	token    frame.Token // pending render step, zero when stopped
	running  bool
	steps    uint64
	resets   uint64
}

// ID identifies the handle in logs.
func (h *Handle) ID() uuid.UUID {
	return h.id
}

// Surface returns the surface the instance draws on.
func (h *Handle) Surface() surface.Surface {
	return h.surface
}

// Config returns the instance configuration.
func (h *Handle) Config() config.RainConfig {
	return h.cfg
}

// Running reports whether a render step is scheduled.
func (h *Handle) Running() bool {
	return h.running
}

// Columns exposes the column state.
func (h *Handle) Columns() *Columns {
	return h.columns
}

// Steps returns how many render steps have run.
func (h *Handle) Steps() uint64 {
	return h.steps
}

// Resets returns how many column resets have happened.
func (h *Handle) Resets() uint64 {
	return h.resets
}

// Reset rebuilds the column state from the surface's current size, used
// when the host resized the surface.
func (h *Handle) Reset() {
	w, _ := h.surface.Size()
	h.columns = NewColumns(w, h.cfg.GlyphSize)
	if h.registry.debug {
		log.Printf("rain %s: reset to %d columns", h.cfg.Name, h.columns.Len())
	}
}

// step is one display frame: fade, draw and advance every column, then
// schedule the next frame.
func (h *Handle) step(time.Time) {
	if !h.running {
		return
	}
	h.token = 0

	_, height := h.surface.Size()
	h.surface.Fill(h.cfg.Background, h.cfg.Fade)

	style := surface.GlyphStyle{
		Color:  h.cfg.Foreground,
		Double: h.cfg.DoubleDraw,
		Glow:   h.cfg.Glow,
	}
	draw := func(x, y float64, glyph string) {
		h.surface.DrawGlyph(x, y, glyph, style)
		if h.cfg.DoubleDraw {
			h.surface.DrawGlyph(x, y, glyph, style)
		}
	}
	h.resets += uint64(h.columns.Step(height, &h.cfg, h.registry.rnd, draw))
	h.steps++

	h.token = h.registry.sched.Request(h.step)
}
