package site

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"
)

// Geometry in cells unless noted.
const (
	mobileBreakpoint = 768 // px
	bodyTop          = 2
	heroWidth        = 40
	heroHeight       = 10
	lensCols         = 8
	lensRows         = 3
	lensTop          = 3 // inside the hero
	fieldWidth       = 36
	menuWidth        = 12

	logoLabel    = "[ DWH ]"
	toggleClosed = "[≡]"
	toggleOpen   = "[×]"
	submitLabel  = "[ Send ]"
)

type elementKind int

const (
	elLogo elementKind = iota
	elLink
	elToggle
	elHero
	elField
	elSubmit
)

// element is something on screen that can be clicked or focused.
type element struct {
	kind       elementKind
	x, y, w, h int
	label      string
	page       Page
	field      int
}

func (e element) contains(x, y int) bool {
	return x >= e.x && y >= e.y && x < e.x+e.w && y < e.y+e.h
}

func (e element) center() (int, int) {
	return e.x + e.w/2, e.y + e.h/2
}

// lensOrigins returns the top-left of both lenses relative to the hero.
func lensOrigins() [2][2]int {
	mid := heroWidth / 2
	return [2][2]int{
		{mid - lensCols - 2, lensTop},
		{mid + 2, lensTop},
	}
}

// narrow reports whether the header collapses into a menu toggle.
func (s *Site) narrow(cols int) bool {
	return float64(cols)*s.metrics.CellWidth < mobileBreakpoint
}

// elements lays out the current page. Header elements come first so they
// win hit tests against the page beneath an open menu.
func (s *Site) elements(cols, rows int) []element {
	els := []element{{kind: elLogo, x: 1, y: 0, w: textWidth(logoLabel), h: 1, label: logoLabel}}

	if s.narrow(cols) {
		label := toggleClosed
		if s.menuOpen {
			label = toggleOpen
		}
		w := textWidth(label)
		els = append(els, element{kind: elToggle, x: cols - w - 1, y: 0, w: w, h: 1, label: label})
		if s.menuOpen {
			for i, p := range NavPages {
				els = append(els, element{kind: elLink, x: cols - menuWidth - 1, y: 1 + i, w: menuWidth, h: 1, label: " " + p.Title(), page: p})
			}
		}
	} else {
		total := 0
		for _, p := range NavPages {
			total += textWidth(p.Title()) + 3
		}
		x := cols - total
		for _, p := range NavPages {
			label := " " + p.Title() + " "
			w := textWidth(label)
			els = append(els, element{kind: elLink, x: x, y: 0, w: w, h: 1, label: label, page: p})
			x += w + 1
		}
	}

	switch s.route.Page {
	case PageHome:
		els = append(els, element{kind: elHero, x: max(0, (cols-heroWidth)/2), y: bodyTop + 3, w: heroWidth, h: heroHeight})
	case PageContact:
		for i := 0; i < fieldCount; i++ {
			els = append(els, element{kind: elField, x: 2, y: bodyTop + 4 + i*3, w: fieldWidth, h: 1, label: fieldLabels[i], field: i})
		}
		els = append(els, element{kind: elSubmit, x: 2, y: bodyTop + 3 + fieldCount*3, w: textWidth(submitLabel), h: 1, label: submitLabel})
	}
	return els
}

func (s *Site) hit(x, y int) (element, int, bool) {
	cols, rows := s.screen.Size()
	for i, el := range s.elements(cols, rows) {
		if el.contains(x, y) {
			return el, i, true
		}
	}
	return element{}, -1, false
}

func (s *Site) find(kind elementKind) (element, bool) {
	cols, rows := s.screen.Size()
	for _, el := range s.elements(cols, rows) {
		if el.kind == kind {
			return el, true
		}
	}
	return element{}, false
}

func textWidth(s string) int {
	return uniseg.StringWidth(s)
}

// drawText writes s at (x, y) one grapheme cluster at a time and returns
// the column after it.
func drawText(screen tcell.Screen, x, y int, s string, style tcell.Style) int {
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		rs := g.Runes()
		screen.SetContent(x, y, rs[0], rs[1:], style)
		x += max(g.Width(), 1)
	}
	return x
}
