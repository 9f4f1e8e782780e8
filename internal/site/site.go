// Package site is the interactive terminal rendition of the marketing site:
// header navigation, the hero art with its shades and glitch, the contact
// form and the confirmation page, together with the effects they trigger.
//
// Everything runs on one frame loop. Input is read on a separate goroutine
// and handed to the loop with Post, so no state here is shared.
package site

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"matrixfx/internal/config"
	"matrixfx/internal/confetti"
	"matrixfx/internal/crack"
	"matrixfx/internal/frame"
	"matrixfx/internal/glitch"
	"matrixfx/internal/rain"
	"matrixfx/internal/session"
	"matrixfx/internal/sound"
	"matrixfx/internal/surface"
)

// Effect timings.
const (
	NavDelay         = 1500 * time.Millisecond // nav click to page change
	LingerDelay      = 1000 * time.Millisecond // resumed rain before fading
	FadeDuration     = 600 * time.Millisecond
	CrackFadeAt      = 1200 * time.Millisecond
	CrackRemoveAt    = 1800 * time.Millisecond
	ConfettiDelay    = 200 * time.Millisecond
	ConfettiDuration = 900 * time.Millisecond
)

var (
	colorBackground = colorful.Color{}
	colorText       = rgb(160, 208, 160)
	colorAccent     = rgb(0, 255, 0)
	colorMuted      = rgb(79, 127, 79)
	colorError      = rgb(255, 95, 95)
	colorCrack      = rgb(230, 240, 230)
)

// Rand is the randomness every effect on the site consumes.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// Options configures a Site.
type Options struct {
	Presets *config.Set // nil uses the built-in presets
	Store   session.Store
	Sound   *sound.Player
	// Confetti loads the confetti capability. Nil draws confetti on the
	// terminal.
	Confetti func() (confetti.Func, error)
	Rand     Rand
	Clock    frame.Clock
	Debug    bool
}

type crackMark struct {
	layer   *surface.Layer
	overlay crack.Overlay
}

// Site holds the page state and every effect layer.
type Site struct {
	screen   tcell.Screen
	loop     *frame.Loop
	registry *rain.Registry
	store    session.Store
	player   *sound.Player
	rnd      Rand
	presets  config.Set
	metrics  surface.Metrics
	debug    bool

	route    Route
	menuOpen bool
	focus    int
	buttons  tcell.ButtonMask
	hovering bool
	form     *Form

	background  *surface.Layer
	overlay     *surface.Layer
	lenses      [2]*surface.Layer
	lensHandles [2]*rain.Handle
	overlayRain *rain.Handle
	glassesOn   bool
	overlayOn   bool
	glitch      *glitch.Effect

	cracks    []*crackMark
	sparkles  *surface.Layer
	field     *confetti.Field
	loader    *confetti.Loader
	stopBurst func()

	timers []frame.Token
	fades  map[*surface.Layer]frame.Token
}

// New creates a site on screen. Call Navigate to load the first page.
func New(screen tcell.Screen, opts Options) (*Site, error) {
	if screen == nil {
		return nil, errors.New("screen is required")
	}
	presets := opts.Presets
	if presets == nil {
		var err error
		if presets, err = (*config.File)(nil).Resolve(config.DefaultData); err != nil {
			return nil, err
		}
	}
	if err := presets.Metrics.Validate(); err != nil {
		return nil, err
	}
	store := opts.Store
	if store == nil {
		store = session.NewMemoryStore()
	}
	rnd := opts.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	loop := frame.NewLoop(opts.Clock)
	cols, rows := screen.Size()
	m := presets.Metrics
	s := &Site{
		screen:   screen,
		loop:     loop,
		registry: rain.NewRegistry(loop, rnd, opts.Debug),
		store:    store,
		player:   opts.Sound,
		rnd:      rnd,
		presets:  *presets,
		metrics:  m,
		debug:    opts.Debug,
		route:    Route{Page: PageHome},
		focus:    -1,
		fades:    make(map[*surface.Layer]frame.Token),
	}

	s.background = surface.NewLayer(surface.NewCanvas(cols, rows, m), 0, 0)
	s.background.Visible = false
	s.overlay = surface.NewLayer(surface.NewCanvas(heroWidth, heroHeight, m), 0, 0)
	s.overlay.Visible = false
	for i := range s.lenses {
		s.lenses[i] = surface.NewLayer(surface.NewCanvas(lensCols, lensRows, m), 0, 0)
		s.lenses[i].Visible = false
	}
	s.glitch = glitch.New(glitch.DefaultOptions, rnd)

	s.sparkles = surface.NewLayer(surface.NewCanvas(cols, rows, m), 0, 0)
	s.field = confetti.NewField(s.sparkles.Canvas, loop, rnd)
	load := opts.Confetti
	if load == nil {
		load = func() (confetti.Func, error) { return s.field.Fire, nil }
	}
	s.loader = confetti.NewLoader(load)

	screen.SetStyle(tcell.StyleDefault.Background(surface.ToTcell(colorBackground)).Foreground(surface.ToTcell(colorText)))
	return s, nil
}

// Loop returns the frame loop driving the site.
func (s *Site) Loop() *frame.Loop { return s.loop }

// Registry returns the rain registry.
func (s *Site) Registry() *rain.Registry { return s.registry }

// Route returns the loaded page.
func (s *Site) Route() Route { return s.route }

// Form returns the contact form, nil on other pages.
func (s *Site) Form() *Form { return s.form }

// Background returns the full-screen rain layer.
func (s *Site) Background() *surface.Layer { return s.background }

// MenuOpen reports whether the collapsed navigation is expanded.
func (s *Site) MenuOpen() bool { return s.menuOpen }

// AriaExpanded is the toggle's expanded state as its attribute value.
func (s *Site) AriaExpanded() string {
	if s.menuOpen {
		return "true"
	}
	return "false"
}

// GlassesOn reports whether the lens pair is raining.
func (s *Site) GlassesOn() bool { return s.glassesOn }

// OverlayOn reports whether the hero overlay is raining.
func (s *Site) OverlayOn() bool { return s.overlayOn }

// LensHandles returns the handles of the lens pair.
func (s *Site) LensHandles() [2]*rain.Handle { return s.lensHandles }

// Cracks returns the number of crack overlays on screen.
func (s *Site) Cracks() int { return len(s.cracks) }

// Glitch returns the hero glitch effect.
func (s *Site) Glitch() *glitch.Effect { return s.glitch }

// Navigate unloads the current page and loads r.
func (s *Site) Navigate(r Route) {
	s.unload()
	if r.Page == PageConfirmation && r.Query.Get("sent") != "1" && !s.store.Peek(session.MessageSent) {
		if s.debug {
			log.Printf("site: %s not allowed, replacing with %s", r, PageContact)
		}
		r = Route{Page: PageContact}
	}
	s.route = r
	if s.debug {
		log.Printf("site: loaded %s", r)
	}
	s.load()
}

func (s *Site) load() {
	if s.store.Consume(session.ContinueRain) {
		s.resumeRain()
	}
	switch s.route.Page {
	case PageContact:
		s.form = &Form{}
	case PageConfirmation:
		s.store.Consume(session.MessageSent)
		s.after(ConfettiDelay, s.celebrate)
	}
}

// unload drops everything a page owns, the way leaving a page discards its
// timers and animation frames.
func (s *Site) unload() {
	for _, t := range s.timers {
		s.loop.Cancel(t)
	}
	s.timers = nil
	for l, t := range s.fades {
		s.loop.Cancel(t)
		delete(s.fades, l)
	}
	s.registry.StopAll()
	s.lensHandles = [2]*rain.Handle{}
	s.overlayRain = nil

	s.background.Visible = false
	s.background.Opacity = 1
	s.overlay.Visible = false
	for _, l := range s.lenses {
		l.Visible = false
	}
	s.glassesOn, s.overlayOn = false, false

	s.cracks = nil
	if s.stopBurst != nil {
		s.stopBurst()
		s.stopBurst = nil
	}
	s.field.Stop()

	s.menuOpen = false
	s.focus = -1
	s.hovering = false
	s.form = nil
}

func (s *Site) after(d time.Duration, fn func()) {
	s.timers = append(s.timers, s.loop.After(d, fn))
}

// startBackground shows the background layer and (re)starts its rain.
func (s *Site) startBackground() (*rain.Handle, bool) {
	s.cancelFade(s.background)
	s.background.Visible = true
	s.background.Opacity = 1
	h, err := s.registry.Start(s.background.Canvas, s.presets.Background)
	if err != nil {
		log.Printf("site: background rain: %v", err)
		return nil, false
	}
	return h, true
}

// resumeRain continues the rain started on the previous page: it lingers,
// fades out, then stops.
func (s *Site) resumeRain() {
	h, ok := s.startBackground()
	if !ok {
		return
	}
	s.after(LingerDelay, func() {
		s.fade(s.background, FadeDuration)
		s.after(FadeDuration, func() {
			s.cancelFade(s.background)
			s.registry.Stop(h)
			s.background.Visible = false
			s.background.Opacity = 1
		})
	})
}

// followLink starts the background rain, leaves the continuation flag for
// the next page and navigates after a delay.
func (s *Site) followLink(p Page) {
	s.closeMenu()
	s.startBackground()
	s.store.Set(session.ContinueRain)
	s.after(NavDelay, func() {
		s.Navigate(Route{Page: p})
	})
}

// fade animates l's opacity to zero over d, one step per frame.
func (s *Site) fade(l *surface.Layer, d time.Duration) {
	s.cancelFade(l)
	start := s.loop.Now()
	from := l.Opacity
	var step frame.Callback
	step = func(now time.Time) {
		t := float64(now.Sub(start)) / float64(d)
		if t >= 1 {
			l.Opacity = 0
			delete(s.fades, l)
			return
		}
		l.Opacity = from * (1 - t)
		s.fades[l] = s.loop.Request(step)
	}
	s.fades[l] = s.loop.Request(step)
}

func (s *Site) cancelFade(l *surface.Layer) {
	if t, ok := s.fades[l]; ok {
		s.loop.Cancel(t)
		delete(s.fades, l)
	}
}

func (s *Site) toggleMenu() {
	s.menuOpen = !s.menuOpen
	if s.debug {
		log.Printf("site: menu aria-expanded=%s", s.AriaExpanded())
	}
}

func (s *Site) closeMenu() {
	s.menuOpen = false
}

// toggleHero flips the shades: the lens pair and the hero overlay start
// and stop together.
func (s *Site) toggleHero() {
	s.glassesOn = !s.glassesOn
	for i, l := range s.lenses {
		if !s.glassesOn {
			s.registry.Stop(s.lensHandles[i])
			s.lensHandles[i] = nil
			l.Visible = false
			continue
		}
		h, err := s.registry.Start(l.Canvas, s.presets.Lens)
		if err != nil {
			log.Printf("site: lens rain: %v", err)
			continue
		}
		s.lensHandles[i] = h
		l.Visible = true
	}

	s.overlayOn = !s.overlayOn
	if !s.overlayOn {
		s.registry.Stop(s.overlayRain)
		s.overlayRain = nil
		s.overlay.Visible = false
		return
	}
	h, err := s.registry.Start(s.overlay.Canvas, s.presets.Overlay)
	if err != nil {
		log.Printf("site: overlay rain: %v", err)
		return
	}
	s.overlayRain = h
	s.overlay.Visible = true
}

// crackAt cracks the screen around cell (x, y).
func (s *Site) crackAt(x, y int) {
	cols, rows := s.screen.Size()
	m := s.metrics
	center := crack.Point{X: (float64(x) + 0.5) * m.CellWidth, Y: (float64(y) + 0.5) * m.CellHeight}
	o := crack.Generate(crack.Params{
		Width:  float64(cols) * m.CellWidth,
		Height: float64(rows) * m.CellHeight,
		Center: &center,
		Scale:  crack.DefaultScale,
	}, s.rnd)

	c := surface.NewCanvas(cols, rows, m)
	o.Rasterize(c, colorCrack)
	mark := &crackMark{layer: surface.NewLayer(c, 0, 0), overlay: o}
	s.cracks = append(s.cracks, mark)
	s.player.Play(sound.CueCrack)

	s.after(CrackFadeAt, func() { s.fade(mark.layer, CrackRemoveAt-CrackFadeAt) })
	s.after(CrackRemoveAt, func() { s.removeCrack(mark) })
}

func (s *Site) removeCrack(mark *crackMark) {
	s.cancelFade(mark.layer)
	for i, m := range s.cracks {
		if m == mark {
			s.cracks = append(s.cracks[:i], s.cracks[i+1:]...)
			return
		}
	}
}

// celebrate loads confetti and bursts it.
func (s *Site) celebrate() {
	fire := s.loader.Get()
	if fire == nil {
		return
	}
	s.player.Play(sound.CueConfetti)
	s.stopBurst = confetti.Burst(s.loop, fire, ConfettiDuration, confetti.DefaultOptions())
}

func (s *Site) submit() {
	if s.form == nil {
		return
	}
	if !s.form.Validate() {
		if s.debug {
			log.Printf("site: contact form invalid: %q", s.form.Errors)
		}
		return
	}
	s.store.Set(session.MessageSent)
	s.Navigate(MustRoute("confirmation?sent=1"))
}

func (s *Site) activate(el element) {
	switch el.kind {
	case elLogo:
		s.crackAt(el.center())
	case elLink:
		s.followLink(el.page)
	case elToggle:
		s.toggleMenu()
	case elHero:
		s.toggleHero()
	case elSubmit:
		s.submit()
	}
}

func (s *Site) resize(cols, rows int) {
	s.background.Canvas.Resize(cols, rows)
	if h, ok := s.registry.Lookup(s.background.Canvas); ok {
		h.Reset()
	}
	s.sparkles.Canvas.Resize(cols, rows)
	if !s.narrow(cols) {
		s.closeMenu()
	}
	s.screen.Sync()
}

// Tick runs one frame and draws it.
func (s *Site) Tick() {
	s.loop.Tick()
	s.Draw()
}

// Run draws and handles input until ctx is done or the user quits.
func (s *Site) Run(ctx context.Context, fps int) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		for {
			ev := s.screen.PollEvent()
			if ev == nil {
				return
			}
			s.loop.Post(func() {
				if !s.HandleEvent(ev) {
					cancel()
				}
			})
		}
	}()

	s.Draw()
	if err := s.loop.Run(ctx, fps, s.Draw); err != nil {
		return fmt.Errorf("site loop: %w", err)
	}
	return nil
}

func rgb(r, g, b uint8) colorful.Color {
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}
