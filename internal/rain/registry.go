package rain

import (
	"fmt"
	"log"

	"github.com/google/uuid"

	"matrixfx/internal/config"
	"matrixfx/internal/frame"
	"matrixfx/internal/surface"
)

// Registry maps each surface to the handle currently animating it, so that
// restarting a surface is an explicit lookup-and-cancel and a surface never
// runs two render loops.
//
// A registry is used from the frame loop's goroutine only.
type Registry struct {
	sched   frame.Scheduler
	rnd     Rand
	handles map[surface.Surface]*Handle
	debug   bool
}

// NewRegistry creates a registry scheduling render steps on sched.
func NewRegistry(sched frame.Scheduler, rnd Rand, debug bool) *Registry {
	return &Registry{
		sched:   sched,
		rnd:     rnd,
		handles: make(map[surface.Surface]*Handle),
		debug:   debug,
	}
}

// Start begins animating s with cfg. A handle already running on s is
// cancelled first. Geometry too small for a single column is not an error;
// the instance simply draws nothing.
func (r *Registry) Start(s surface.Surface, cfg config.RainConfig) (*Handle, error) {
	if s == nil {
		return nil, fmt.Errorf("rain %s: nil surface", cfg.Name)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("rain %s: %w", cfg.Name, err)
	}
	if prev, ok := r.handles[s]; ok {
		r.cancel(prev)
	}

	h := &Handle{
		id:       uuid.New(),
		surface:  s,
		cfg:      cfg,
		registry: r,
		running:  true,
	}
	w, _ := s.Size()
	h.columns = NewColumns(w, cfg.GlyphSize)
	r.handles[s] = h
	h.token = r.sched.Request(h.step)

	if r.debug {
		log.Printf("rain %s: started %s with %d columns", cfg.Name, h.id, h.columns.Len())
	}
	return h, nil
}

// Stop cancels the handle's pending render step and clears its surface.
// Stopping an already stopped handle does nothing, including a handle that
// was superseded by a later Start on the same surface.
func (r *Registry) Stop(h *Handle) {
	if h == nil || !h.running {
		return
	}
	r.cancel(h)
	if r.handles[h.surface] == h {
		delete(r.handles, h.surface)
	}
	h.surface.Clear()

	if r.debug {
		log.Printf("rain %s: stopped %s after %d steps", h.cfg.Name, h.id, h.steps)
	}
}

// StopSurface stops whatever is running on s.
func (r *Registry) StopSurface(s surface.Surface) {
	if h, ok := r.handles[s]; ok {
		r.Stop(h)
	}
}

// StopAll stops every running instance.
func (r *Registry) StopAll() {
	for _, h := range r.handles {
		r.Stop(h)
	}
}

// Lookup returns the handle running on s.
func (r *Registry) Lookup(s surface.Surface) (*Handle, bool) {
	h, ok := r.handles[s]
	return h, ok
}

// Len returns the number of running instances.
func (r *Registry) Len() int {
	return len(r.handles)
}

func (r *Registry) cancel(h *Handle) {
	if h.token != 0 {
		r.sched.Cancel(h.token)
		h.token = 0
	}
	h.running = false
}
