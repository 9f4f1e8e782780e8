package site

import (
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matrixfx/internal/confetti"
	"matrixfx/internal/config"
	"matrixfx/internal/frame"
	"matrixfx/internal/session"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type harness struct {
	t      *testing.T
	site   *Site
	screen tcell.SimulationScreen
	clock  *frame.ManualClock
	store  *session.MemoryStore
}

func newHarness(t *testing.T, cols, rows int, opts Options) *harness {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(cols, rows)
	t.Cleanup(screen.Fini)

	clock := frame.NewManualClock(t0)
	store := session.NewMemoryStore()
	opts.Clock = clock
	opts.Store = store
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(1))
	}
	s, err := New(screen, opts)
	require.NoError(t, err)
	return &harness{t: t, site: s, screen: screen, clock: clock, store: store}
}

// advance moves the clock by d and runs one frame.
func (h *harness) advance(d time.Duration) {
	h.clock.Advance(d)
	h.site.Tick()
}

func (h *harness) click(x, y int) {
	h.site.HandleEvent(tcell.NewEventMouse(x, y, tcell.Button1, tcell.ModNone))
	h.site.HandleEvent(tcell.NewEventMouse(x, y, tcell.ButtonNone, tcell.ModNone))
}

func (h *harness) clickElement(match func(element) bool) {
	h.t.Helper()
	cols, rows := h.screen.Size()
	for _, el := range h.site.elements(cols, rows) {
		if match(el) {
			h.click(el.center())
			return
		}
	}
	h.t.Fatalf("no matching element on %s", h.site.Route())
}

func (h *harness) clickLink(p Page) {
	h.clickElement(func(el element) bool { return el.kind == elLink && el.page == p })
}

func (h *harness) clickKind(kind elementKind) {
	h.clickElement(func(el element) bool { return el.kind == kind })
}

func (h *harness) key(r rune) bool {
	return h.site.HandleEvent(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
}

func (h *harness) typeText(s string) {
	for _, r := range s {
		h.key(r)
	}
}

func (h *harness) resize(cols, rows int) {
	h.screen.SetSize(cols, rows)
	h.site.HandleEvent(tcell.NewEventResize(cols, rows))
}

func TestNavLinkContinuesRainOnNextPage(t *testing.T) {
	h := newHarness(t, 120, 30, Options{})
	h.site.Navigate(MustRoute("home"))
	bg := h.site.Background()

	h.clickLink(PageAbout)
	assert.True(t, bg.Visible)
	_, running := h.site.Registry().Lookup(bg.Canvas)
	assert.True(t, running)
	assert.True(t, h.store.Peek(session.ContinueRain))

	h.advance(NavDelay - time.Millisecond)
	assert.Equal(t, PageHome, h.site.Route().Page)
	assert.Positive(t, bg.Canvas.Inked(), "rain is drawing before navigation")

	h.advance(time.Millisecond)
	require.Equal(t, PageAbout, h.site.Route().Page)
	assert.False(t, h.store.Peek(session.ContinueRain), "flag consumed on load")
	assert.True(t, bg.Visible)
	handle, running := h.site.Registry().Lookup(bg.Canvas)
	require.True(t, running)

	h.advance(LingerDelay)
	assert.Equal(t, 1.0, bg.Opacity, "fade starts on the next frame")
	h.advance(FadeDuration / 2)
	assert.InDelta(t, 0.5, bg.Opacity, 0.01)
	assert.True(t, handle.Running())

	h.advance(FadeDuration / 2)
	assert.False(t, handle.Running())
	assert.False(t, bg.Visible)
	assert.Equal(t, 1.0, bg.Opacity, "opacity reset for next time")
	assert.Zero(t, bg.Canvas.Inked())
	assert.Zero(t, h.site.Registry().Len())
}

func TestLoadWithoutFlagLeavesBackgroundHidden(t *testing.T) {
	h := newHarness(t, 120, 30, Options{})
	h.site.Navigate(MustRoute("services"))
	h.advance(100 * time.Millisecond)
	assert.False(t, h.site.Background().Visible)
	assert.Zero(t, h.site.Registry().Len())
}

func TestRepeatedNavClicksKeepOneRain(t *testing.T) {
	h := newHarness(t, 120, 30, Options{})
	h.site.Navigate(MustRoute("home"))

	h.clickLink(PageAbout)
	h.clickLink(PageServices)
	assert.Equal(t, 1, h.site.Registry().Len())

	h.advance(16 * time.Millisecond)
	handle, ok := h.site.Registry().Lookup(h.site.Background().Canvas)
	require.True(t, ok)
	assert.Equal(t, uint64(1), handle.Steps())
}

func TestRainReadableOnScreen(t *testing.T) {
	h := newHarness(t, 120, 30, Options{})
	h.site.Navigate(MustRoute("about"))
	h.clickLink(PageContact)
	h.advance(16 * time.Millisecond)

	found := false
	for x := 0; x < 120 && !found; x++ {
		mainc, _, _, _ := h.screen.GetContent(x, 0)
		found = strings.ContainsRune(config.Katakana, mainc)
	}
	assert.True(t, found, "first rain row is visible on the top line")
}

func TestResizeResetsBackgroundColumns(t *testing.T) {
	h := newHarness(t, 120, 30, Options{})
	h.site.Navigate(MustRoute("home"))
	h.clickLink(PageAbout)

	handle, ok := h.site.Registry().Lookup(h.site.Background().Canvas)
	require.True(t, ok)
	assert.Equal(t, 60, handle.Columns().Len())

	h.resize(100, 30)
	assert.Equal(t, 50, handle.Columns().Len())
	cols, rows := h.site.Background().Canvas.Grid()
	assert.Equal(t, []int{100, 30}, []int{cols, rows})
}

func TestMenuToggle(t *testing.T) {
	h := newHarness(t, 80, 24, Options{})
	h.site.Navigate(MustRoute("home"))
	require.True(t, h.site.narrow(80))
	assert.Equal(t, "false", h.site.AriaExpanded())

	h.clickKind(elToggle)
	assert.True(t, h.site.MenuOpen())
	assert.Equal(t, "true", h.site.AriaExpanded())

	h.clickKind(elToggle)
	assert.False(t, h.site.MenuOpen())

	h.clickKind(elToggle)
	h.resize(100, 24)
	assert.True(t, h.site.MenuOpen(), "still narrow")
	h.resize(120, 24)
	assert.False(t, h.site.MenuOpen(), "wide enough for the full nav")
}

func TestMenuLinkClosesMenu(t *testing.T) {
	h := newHarness(t, 80, 24, Options{})
	h.site.Navigate(MustRoute("home"))

	h.clickKind(elToggle)
	h.clickLink(PageServices)
	assert.False(t, h.site.MenuOpen())
	assert.True(t, h.store.Peek(session.ContinueRain))

	h.advance(NavDelay)
	assert.Equal(t, PageServices, h.site.Route().Page)
}

func TestHeroTogglesLensPairAndOverlay(t *testing.T) {
	h := newHarness(t, 120, 30, Options{})
	h.site.Navigate(MustRoute("home"))

	h.clickKind(elHero)
	require.True(t, h.site.GlassesOn())
	assert.True(t, h.site.OverlayOn())
	assert.Equal(t, 3, h.site.Registry().Len())
	lenses := h.site.LensHandles()
	for _, l := range lenses {
		require.NotNil(t, l)
		assert.True(t, l.Running())
		assert.Equal(t, 4, l.Columns().Len())
	}

	h.advance(16 * time.Millisecond)
	for _, l := range h.site.lenses {
		assert.Positive(t, l.Canvas.Inked())
	}

	h.clickKind(elHero)
	assert.False(t, h.site.GlassesOn())
	assert.False(t, h.site.OverlayOn())
	assert.Zero(t, h.site.Registry().Len())
	for i, l := range lenses {
		assert.False(t, l.Running())
		assert.Zero(t, h.site.lenses[i].Canvas.Inked())
	}
}

func TestHeroHoverTriggersGlitch(t *testing.T) {
	h := newHarness(t, 120, 30, Options{})
	h.site.Navigate(MustRoute("home"))
	hero, ok := h.site.find(elHero)
	require.True(t, ok)

	h.site.HandleEvent(tcell.NewEventMouse(0, 0, tcell.ButtonNone, tcell.ModNone))
	assert.False(t, h.site.Glitch().Active(h.clock.Now()))

	h.site.HandleEvent(tcell.NewEventMouse(hero.x+1, hero.y+1, tcell.ButtonNone, tcell.ModNone))
	assert.True(t, h.site.Glitch().Active(h.clock.Now()))

	// drawing mid-glitch must stay inside the screen
	h.advance(time.Second)
}

func TestLogoCrack(t *testing.T) {
	h := newHarness(t, 120, 30, Options{})
	h.site.Navigate(MustRoute("home"))

	h.clickKind(elLogo)
	require.Equal(t, 1, h.site.Cracks())
	mark := h.site.cracks[0]
	assert.Positive(t, mark.layer.Canvas.Inked())

	logo, _ := h.site.find(elLogo)
	lx, ly := logo.center()
	assert.InDelta(t, (float64(lx)+0.5)*7, mark.overlay.Center.X, 1e-9)
	assert.InDelta(t, (float64(ly)+0.5)*14, mark.overlay.Center.Y, 1e-9)

	h.advance(CrackFadeAt)
	assert.Equal(t, 1.0, mark.layer.Opacity)
	h.advance(300 * time.Millisecond)
	assert.Less(t, mark.layer.Opacity, 1.0)
	assert.Equal(t, 1, h.site.Cracks())

	h.advance(300 * time.Millisecond)
	assert.Zero(t, h.site.Cracks())
}

func TestCrackKeyAndQuit(t *testing.T) {
	h := newHarness(t, 120, 30, Options{})
	h.site.Navigate(MustRoute("about"))

	assert.True(t, h.key('c'))
	assert.Equal(t, 1, h.site.Cracks())
	assert.False(t, h.key('q'))
	assert.False(t, h.site.HandleEvent(tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl)))
}

func TestKeyboardActivatesFocusedLogo(t *testing.T) {
	h := newHarness(t, 120, 30, Options{})
	h.site.Navigate(MustRoute("home"))

	h.site.HandleEvent(tcell.NewEventKey(tcell.KeyTab, 0, tcell.ModNone))
	el, ok := h.site.focused()
	require.True(t, ok)
	require.Equal(t, elLogo, el.kind)

	h.site.HandleEvent(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))
	h.key(' ')
	assert.Equal(t, 2, h.site.Cracks())
}

func TestContactFormValidation(t *testing.T) {
	h := newHarness(t, 120, 30, Options{})
	h.site.Navigate(MustRoute("contact"))

	h.clickKind(elSubmit)
	assert.Equal(t, PageContact, h.site.Route().Page)
	form := h.site.Form()
	require.NotNil(t, form)
	for i := range form.Errors {
		assert.NotEmpty(t, form.Errors[i])
	}

	h.clickElement(func(el element) bool { return el.kind == elField && el.field == FieldName })
	h.typeText("Trinity")
	h.site.HandleEvent(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))
	h.typeText("trinity-at-zion")
	h.site.HandleEvent(tcell.NewEventKey(tcell.KeyTab, 0, tcell.ModNone))
	h.typeText("follow the white rabbit")

	assert.Equal(t, "Trinity", form.Values[FieldName])
	assert.Equal(t, "trinity-at-zion", form.Values[FieldEmail])
	assert.Equal(t, "follow the white rabbit", form.Values[FieldMessage])

	h.clickKind(elSubmit)
	assert.Equal(t, PageContact, h.site.Route().Page, "invalid email keeps the form")
	assert.NotEmpty(t, form.Errors[FieldEmail])
	assert.Empty(t, form.Errors[FieldName])
	assert.False(t, h.store.Peek(session.MessageSent))

	form.Values[FieldEmail] = "trinity@zion.example"
	h.clickKind(elSubmit)
	assert.Equal(t, "confirmation?sent=1", h.site.Route().String())
	assert.False(t, h.store.Peek(session.MessageSent), "consumed by the confirmation page")
}

func TestConfirmationRequiresPermission(t *testing.T) {
	h := newHarness(t, 120, 30, Options{})

	h.site.Navigate(MustRoute("confirmation"))
	assert.Equal(t, PageContact, h.site.Route().Page)

	h.store.Set(session.MessageSent)
	h.site.Navigate(MustRoute("confirmation"))
	assert.Equal(t, PageConfirmation, h.site.Route().Page)
	assert.False(t, h.store.Peek(session.MessageSent))

	h.site.Navigate(MustRoute("confirmation?sent=1"))
	assert.Equal(t, PageConfirmation, h.site.Route().Page)
}

func TestConfirmationBurstsConfetti(t *testing.T) {
	calls := 0
	h := newHarness(t, 120, 30, Options{
		Confetti: func() (confetti.Func, error) {
			return func(confetti.Options) { calls++ }, nil
		},
	})
	h.site.Navigate(MustRoute("confirmation?sent=1"))

	h.advance(ConfettiDelay - time.Millisecond)
	assert.Zero(t, calls)
	h.advance(time.Millisecond)
	assert.Equal(t, 1, calls)

	for i := 0; i < 12; i++ {
		h.advance(100 * time.Millisecond)
	}
	assert.Equal(t, 10, calls, "one call per frame for the 900ms window")
}

func TestConfettiDrawsOnTerminal(t *testing.T) {
	h := newHarness(t, 120, 30, Options{})
	h.site.Navigate(MustRoute("confirmation?sent=1"))
	h.advance(ConfettiDelay)
	h.advance(16 * time.Millisecond)
	assert.Positive(t, h.site.field.Live())
	assert.Positive(t, h.site.sparkles.Canvas.Inked())

	h.site.Navigate(MustRoute("home"))
	assert.Zero(t, h.site.field.Live())
}

func TestFailingConfettiIsSilent(t *testing.T) {
	loads := 0
	h := newHarness(t, 120, 30, Options{
		Confetti: func() (confetti.Func, error) {
			loads++
			return nil, errors.New("offline")
		},
	})
	h.site.Navigate(MustRoute("confirmation?sent=1"))
	assert.NotPanics(t, func() {
		h.advance(ConfettiDelay)
		h.advance(100 * time.Millisecond)
	})
	assert.Equal(t, 1, loads)
	assert.Equal(t, PageConfirmation, h.site.Route().Page)
}

func TestNavigationDropsPageEffects(t *testing.T) {
	h := newHarness(t, 120, 30, Options{})
	h.site.Navigate(MustRoute("home"))
	h.clickKind(elHero)
	h.clickKind(elLogo)
	require.Equal(t, 3, h.site.Registry().Len())

	h.site.Navigate(MustRoute("about"))
	assert.Zero(t, h.site.Registry().Len())
	assert.Zero(t, h.site.Cracks())
	assert.False(t, h.site.GlassesOn())
	assert.Zero(t, h.site.Loop().Pending())
}

func TestNewRequiresScreen(t *testing.T) {
	_, err := New(nil, Options{})
	assert.Error(t, err)
}
