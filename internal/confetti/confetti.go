// Package confetti provides the confetti burst: an opaque "fire" capability
// loaded on demand, a terminal particle field implementing it, and the
// fixed-window burst that calls it every frame.
package confetti

import (
	"log"
	"math"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"matrixfx/internal/frame"
	"matrixfx/internal/surface"
)

// Func is the confetti capability.
type Func func(Options)

// Origin is a launch point as a fraction of the surface size.
type Origin struct {
	X, Y float64
}

// Options configures one launch.
type Options struct {
	ParticleCount int
	Angle         float64 // degrees, 90 is straight up
	Spread        float64 // degrees
	StartVelocity float64
	Decay         float64
	Gravity       float64
	Ticks         int
	Origin        Origin
	Colors        []string
}

// DefaultOptions is the burst fired on the confirmation page.
func DefaultOptions() Options {
	return Options{
		ParticleCount: 60,
		Angle:         90,
		Spread:        65,
		StartVelocity: 45,
		Decay:         0.9,
		Gravity:       1,
		Ticks:         200,
		Origin:        Origin{X: 0.5, Y: 0.3},
		Colors:        []string{"#89b389", "#004F4F", "#ffffff", "#a0d0a0"},
	}
}

// Rand is the randomness particles consume.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

var shapes = []string{"▪", "•", "◆", "*"}

type particle struct {
	x, y     float64
	angle    float64
	velocity float64
	gravity  float64
	decay    float64
	tick     int
	ticks    int
	color    colorful.Color
	glyph    string
}

// Field animates confetti particles on a canvas.
type Field struct {
	canvas    *surface.Canvas
	sched     frame.Scheduler
	rnd       Rand
	particles []particle
	token     frame.Token
}

// NewField creates a field drawing on canvas.
func NewField(canvas *surface.Canvas, sched frame.Scheduler, rnd Rand) *Field {
	return &Field{canvas: canvas, sched: sched, rnd: rnd}
}

// Fire launches one wave of particles. It satisfies Func.
func (f *Field) Fire(opts Options) {
	w, h := f.canvas.Size()
	colors := parseColors(opts.Colors)
	ox, oy := opts.Origin.X*w, opts.Origin.Y*h
	rad := opts.Angle * math.Pi / 180
	spread := opts.Spread * math.Pi / 180

	for i := 0; i < opts.ParticleCount; i++ {
		f.particles = append(f.particles, particle{
			x:        ox,
			y:        oy,
			angle:    -rad + (0.5*spread - f.rnd.Float64()*spread),
			velocity: opts.StartVelocity*0.5 + f.rnd.Float64()*opts.StartVelocity,
			gravity:  opts.Gravity * 3,
			decay:    opts.Decay,
			ticks:    opts.Ticks,
			color:    colors[i%len(colors)],
			glyph:    shapes[f.rnd.Intn(len(shapes))],
		})
	}
	if f.token == 0 {
		f.token = f.sched.Request(f.update)
	}
}

// Live returns the number of particles still animating.
func (f *Field) Live() int {
	return len(f.particles)
}

// Stop drops every particle and clears the canvas.
func (f *Field) Stop() {
	f.sched.Cancel(f.token)
	f.token = 0
	f.particles = nil
	f.canvas.Clear()
}

func (f *Field) update(time.Time) {
	f.token = 0
	f.canvas.Clear()

	live := f.particles[:0]
	for _, p := range f.particles {
		p.x += math.Cos(p.angle) * p.velocity
		p.y += math.Sin(p.angle)*p.velocity + p.gravity
		p.velocity *= p.decay
		p.tick++
		if p.tick >= p.ticks {
			continue
		}
		// fade the color out over the particle's lifetime
		c := p.color.BlendRgb(colorful.Color{}, float64(p.tick)/float64(p.ticks))
		f.canvas.DrawGlyph(p.x, p.y, p.glyph, surface.GlyphStyle{Color: c})
		live = append(live, p)
	}
	f.particles = live

	if len(f.particles) > 0 {
		f.token = f.sched.Request(f.update)
	}
}

func parseColors(hexes []string) []colorful.Color {
	var out []colorful.Color
	for _, h := range hexes {
		c, err := colorful.Hex(h)
		if err != nil {
			continue
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		out = append(out, colorful.Color{R: 1, G: 1, B: 1})
	}
	return out
}

// Loader resolves the confetti capability the first time it is needed.
type Loader struct {
	load   func() (Func, error)
	fn     Func
	failed bool
}

// NewLoader wraps the function that brings the capability in.
func NewLoader(load func() (Func, error)) *Loader {
	return &Loader{load: load}
}

// Get returns the capability, loading it on first use. A failed load is
// logged once and yields nil from then on.
func (l *Loader) Get() Func {
	if l.fn != nil || l.failed {
		return l.fn
	}
	fn, err := l.load()
	if err != nil || fn == nil {
		l.failed = true
		log.Printf("confetti unavailable: %v", err)
		return nil
	}
	l.fn = fn
	return fn
}

// Burst calls fire right away and then once per frame until duration has
// elapsed. A nil fire makes the burst a no-op. The returned func cuts the
// burst short.
func Burst(loop *frame.Loop, fire Func, duration time.Duration, opts Options) (stop func()) {
	if fire == nil {
		return func() {}
	}
	end := loop.Now().Add(duration)
	var token frame.Token
	var step frame.Callback
	step = func(now time.Time) {
		token = 0
		fire(opts)
		if now.Before(end) {
			token = loop.Request(step)
		}
	}
	step(loop.Now())
	return func() { loop.Cancel(token) }
}
