package site

import (
	"github.com/gdamore/tcell/v2"
)

// HandleEvent applies one input event. It returns false when the user
// asked to quit.
func (s *Site) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		s.resize(ev.Size())
	case *tcell.EventKey:
		return s.handleKey(ev)
	case *tcell.EventMouse:
		s.handleMouse(ev)
	}
	return true
}

func (s *Site) handleKey(ev *tcell.EventKey) bool {
	el, focused := s.focused()
	typing := focused && el.kind == elField

	switch ev.Key() {
	case tcell.KeyCtrlC:
		return false
	case tcell.KeyEscape:
		if s.menuOpen {
			s.closeMenu()
			return true
		}
		if typing {
			s.focus = -1
			return true
		}
		return false
	case tcell.KeyTab:
		s.moveFocus(1)
	case tcell.KeyBacktab:
		s.moveFocus(-1)
	case tcell.KeyEnter:
		switch {
		case typing:
			s.moveFocus(1)
		case focused:
			s.activate(el)
		}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if typing && s.form != nil {
			s.form.Backspace(el.field)
		}
	case tcell.KeyRune:
		if typing && s.form != nil {
			s.form.Type(el.field, ev.Rune())
			return true
		}
		switch ev.Rune() {
		case ' ':
			if focused {
				s.activate(el)
			}
		case 'c':
			if logo, ok := s.find(elLogo); ok {
				s.crackAt(logo.center())
			}
		case 'q':
			return false
		}
	}
	return true
}

func (s *Site) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()
	btn := ev.Buttons()
	pressed := btn&tcell.Button1 != 0 && s.buttons&tcell.Button1 == 0
	s.buttons = btn

	el, i, hit := s.hit(x, y)
	hovering := hit && el.kind == elHero
	if hovering && !s.hovering {
		s.glitch.Trigger(s.loop.Now())
	}
	s.hovering = hovering

	if pressed && hit {
		s.focus = i
		s.activate(el)
	}
}

func (s *Site) focused() (element, bool) {
	if s.focus < 0 {
		return element{}, false
	}
	cols, rows := s.screen.Size()
	els := s.elements(cols, rows)
	if s.focus >= len(els) {
		s.focus = -1
		return element{}, false
	}
	return els[s.focus], true
}

// moveFocus cycles keyboard focus. Focusing the hero plays the glitch the
// way hovering it does.
func (s *Site) moveFocus(delta int) {
	cols, rows := s.screen.Size()
	els := s.elements(cols, rows)
	n := len(els)
	switch {
	case s.focus < 0 && delta > 0:
		s.focus = 0
	case s.focus < 0:
		s.focus = n - 1
	default:
		s.focus = ((s.focus+delta)%n + n) % n
	}
	if els[s.focus].kind == elHero {
		s.glitch.Trigger(s.loop.Now())
	}
}
