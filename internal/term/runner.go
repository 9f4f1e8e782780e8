package term

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/muesli/termenv"

	"matrixfx/internal/config"
	"matrixfx/internal/frame"
	"matrixfx/internal/rain"
	"matrixfx/internal/surface"
)

// Runner holds the components of a full-screen rain animation.
type Runner struct {
	loop     *frame.Loop
	registry *rain.Registry
	canvas   *surface.Canvas
	screen   *Screen
	terminal Terminal
	cfg      config.RainConfig
	fps      int
	debug    bool
}

// RunnerOptions configures NewRunner.
type RunnerOptions struct {
	Rain    config.RainConfig
	Metrics surface.Metrics
	FPS     int
	Profile termenv.Profile
	Rand    rain.Rand
	Clock   frame.Clock
	Debug   bool
}

// NewRunner sizes a canvas to the terminal and prepares the rain on it.
func NewRunner(t Terminal, out io.Writer, opts RunnerOptions) (*Runner, error) {
	if err := opts.Rain.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rain config: %w", err)
	}
	if err := opts.Metrics.Validate(); err != nil {
		return nil, err
	}
	cols, rows, err := t.Size()
	if err != nil {
		return nil, fmt.Errorf("cannot get terminal size: %w", err)
	}
	loop := frame.NewLoop(opts.Clock)
	return &Runner{
		loop:     loop,
		registry: rain.NewRegistry(loop, opts.Rand, opts.Debug),
		canvas:   surface.NewCanvas(cols, rows, opts.Metrics),
		screen:   NewScreen(out, opts.Profile),
		terminal: t,
		cfg:      opts.Rain,
		fps:      opts.FPS,
		debug:    opts.Debug,
	}, nil
}

// Canvas returns the canvas the rain paints on.
func (r *Runner) Canvas() *surface.Canvas {
	return r.canvas
}

// Run animates until ctx is done.
func (r *Runner) Run(ctx context.Context) error {
	defer r.terminal.Restore()
	r.terminal.Setup()

	h, err := r.registry.Start(r.canvas, r.cfg)
	if err != nil {
		return err
	}
	defer r.registry.Stop(h)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var drawErr error
	err = r.loop.Run(ctx, r.fps, func() {
		r.resize(h)
		if drawErr = r.screen.Draw(r.canvas); drawErr != nil {
			cancel()
		}
	})
	if err != nil {
		return err
	}
	if drawErr != nil {
		return fmt.Errorf("failed to draw frame: %w", drawErr)
	}
	return nil
}

// resize follows the terminal size, recomputing the columns from the new
// width the same way a browser resize handler would.
func (r *Runner) resize(h *rain.Handle) {
	cols, rows, err := r.terminal.Size()
	if err != nil {
		return
	}
	if c, rw := r.canvas.Grid(); c == cols && rw == rows {
		return
	}
	r.canvas.Resize(cols, rows)
	h.Reset()
	r.screen.Invalidate()
	if r.debug {
		log.Printf("Resized canvas to %dx%d with %d columns", cols, rows, h.Columns().Len())
	}
}
