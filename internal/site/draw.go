package site

import (
	"math"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"

	"matrixfx/internal/surface"
)

var pageCopy = map[Page][]string{
	PageHome: {
		"Data warehousing that just works.",
		"Hover the art to glitch it. Click it for shades.",
	},
	PageAbout: {
		"We build warehouses, pipelines and the dashboards on top.",
		"Small team, long-lived systems, boring on purpose.",
	},
	PageServices: {
		"Modeling      dimensional and vault designs",
		"Pipelines     batch and streaming ingestion",
		"Reporting     dashboards people actually open",
	},
	PageContact: {
		"Tell us about your project.",
	},
	PageConfirmation: {
		"Message sent.",
		"We will get back to you shortly.",
	},
}

func style(fg colorful.Color) tcell.Style {
	return tcell.StyleDefault.Background(surface.ToTcell(colorBackground)).Foreground(surface.ToTcell(fg))
}

// Draw renders the current page and every visible effect layer.
func (s *Site) Draw() {
	s.screen.Clear()
	s.screen.HideCursor()
	cols, rows := s.screen.Size()
	now := s.loop.Now()
	els := s.elements(cols, rows)

	s.drawBody(now, els)
	s.background.Draw(s.screen, colorBackground)
	s.drawHeader(els)
	for _, m := range s.cracks {
		m.layer.Draw(s.screen, colorBackground)
	}
	s.sparkles.Draw(s.screen, colorBackground)
	s.screen.Show()
}

func (s *Site) drawHeader(els []element) {
	for i, el := range els {
		st := style(colorAccent)
		switch el.kind {
		case elLogo:
			st = st.Bold(true)
		case elLink:
			if el.page == s.route.Page {
				st = st.Underline(true)
			} else {
				st = style(colorText)
			}
		case elToggle:
		default:
			continue
		}
		if i == s.focus {
			st = st.Reverse(true)
		}
		if el.kind == elLink && s.menuOpen {
			drawText(s.screen, el.x, el.y, strings.Repeat(" ", el.w), st)
		}
		drawText(s.screen, el.x, el.y, el.label, st)
	}
}

func (s *Site) drawBody(now time.Time, els []element) {
	y := bodyTop
	title := s.route.Page.Title()
	drawText(s.screen, 2, y, title, style(colorAccent).Bold(true))
	for i, line := range pageCopy[s.route.Page] {
		drawText(s.screen, 2, y+1+i, line, style(colorText))
	}

	for i, el := range els {
		switch el.kind {
		case elHero:
			s.drawHero(now, el, i == s.focus)
		case elField:
			s.drawField(el, i == s.focus)
		case elSubmit:
			st := style(colorAccent)
			if i == s.focus {
				st = st.Reverse(true)
			}
			drawText(s.screen, el.x, el.y, el.label, st)
		}
	}
}

// heroArt returns the hero frame with a pair of glasses in it.
func heroArt(glassesOn bool) [][]rune {
	art := make([][]rune, heroHeight)
	for r := range art {
		row := make([]rune, heroWidth)
		for c := range row {
			switch {
			case (r == 0 || r == heroHeight-1) && (c == 0 || c == heroWidth-1):
				row[c] = []rune("╭╮╰╯")[boolInt(r > 0)*2+boolInt(c > 0)]
			case r == 0 || r == heroHeight-1:
				row[c] = '─'
			case c == 0 || c == heroWidth-1:
				row[c] = '│'
			default:
				row[c] = ' '
			}
		}
		art[r] = row
	}

	for _, o := range lensOrigins() {
		x0, y0 := o[0]-1, o[1]-1
		x1, y1 := o[0]+lensCols, o[1]+lensRows
		for c := x0; c <= x1; c++ {
			art[y0][c], art[y1][c] = '─', '─'
		}
		for r := y0; r <= y1; r++ {
			art[r][x0], art[r][x1] = '│', '│'
		}
		art[y0][x0], art[y0][x1], art[y1][x0], art[y1][x1] = '┌', '┐', '└', '┘'
	}
	left, right := lensOrigins()[0], lensOrigins()[1]
	for c := left[0] + lensCols + 1; c < right[0]-1; c++ {
		art[left[1]][c] = '─'
	}

	caption := "click for shades"
	if glassesOn {
		caption = "click to take them off"
	}
	start := (heroWidth - len(caption)) / 2
	for i, r := range caption {
		art[heroHeight-2][start+i] = r
	}
	return art
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (s *Site) drawHero(now time.Time, el element, focused bool) {
	color := colorAccent
	if shift := s.glitch.HueShift(now); shift != 0 {
		h, c, l := color.Hcl()
		color = colorful.Hcl(math.Mod(h+shift, 360), c, l).Clamped()
	}
	st := style(color)
	if focused {
		st = st.Bold(true)
	}

	offsets := s.glitch.RowOffsets(now, el.h, el.w)
	for r, row := range heroArt(s.glassesOn) {
		x := el.x + offsets[r]
		for _, ch := range row {
			s.screen.SetContent(x, el.y+r, ch, nil, st)
			x++
		}
	}

	s.overlay.X, s.overlay.Y = el.x, el.y
	s.overlay.Draw(s.screen, colorBackground)
	for i, o := range lensOrigins() {
		l := s.lenses[i]
		l.X, l.Y = el.x+o[0]+offsets[o[1]], el.y+o[1]
		l.Draw(s.screen, colorBackground)
	}
}

func (s *Site) drawField(el element, focused bool) {
	drawText(s.screen, el.x, el.y-1, el.label, style(colorMuted))
	if msg := s.form.Errors[el.field]; msg != "" {
		drawText(s.screen, el.x+textWidth(el.label)+2, el.y-1, msg, style(colorError))
	}

	st := style(colorText).Underline(true)
	if focused {
		st = style(colorAccent).Underline(true)
	}
	value := s.form.Values[el.field]
	// keep the tail visible when the value outgrows the field
	if rs := []rune(value); len(rs) > el.w-1 {
		value = string(rs[len(rs)-(el.w-1):])
	}
	x := drawText(s.screen, el.x, el.y, value, st)
	for ; x < el.x+el.w; x++ {
		s.screen.SetContent(x, el.y, ' ', nil, st)
	}
	if focused {
		s.screen.ShowCursor(min(el.x+textWidth(value), el.x+el.w-1), el.y)
	}
}
