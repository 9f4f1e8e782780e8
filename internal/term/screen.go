package term

import (
	"io"
	"strconv"
	"strings"

	"github.com/muesli/termenv"
	"github.com/rivo/uniseg"

	"matrixfx/internal/surface"
)

// snapshot is what a canvas looked like when it was last written out.
type snapshot struct {
	cols, rows int
	glyphs     []string
	styles     []string // SGR parameters, empty for background
	covered    []bool   // right half of a wide glyph to the left
}

func newSnapshot(cols, rows int) *snapshot {
	return &snapshot{
		cols:    cols,
		rows:    rows,
		glyphs:  make([]string, cols*rows),
		styles:  make([]string, cols*rows),
		covered: make([]bool, cols*rows),
	}
}

// Screen handles rendering canvases to the terminal.
type Screen struct {
	out     io.Writer
	profile termenv.Profile
	prev    *snapshot
	cur     *snapshot
}

// NewScreen creates a Screen writing to out. Colors are degraded to what
// profile supports; termenv.Ascii writes glyphs only.
func NewScreen(out io.Writer, profile termenv.Profile) *Screen {
	return &Screen{out: out, profile: profile}
}

// Draw renders a canvas, using delta rendering when the previous frame had
// the same dimensions.
func (s *Screen) Draw(c *surface.Canvas) error {
	cols, rows := c.Grid()
	if s.cur == nil || s.cur.cols != cols || s.cur.rows != rows {
		s.cur = newSnapshot(cols, rows)
	}
	s.capture(c, s.cur)

	var err error
	if s.prev == nil || s.prev.cols != cols || s.prev.rows != rows {
		err = s.fullRender(s.cur)
		s.prev = newSnapshot(cols, rows)
	} else {
		err = s.deltaRender(s.cur)
	}
	copy(s.prev.glyphs, s.cur.glyphs)
	copy(s.prev.styles, s.cur.styles)
	copy(s.prev.covered, s.cur.covered)
	return err
}

// Invalidate forces the next Draw to repaint everything.
func (s *Screen) Invalidate() {
	s.prev = nil
}

func (s *Screen) capture(c *surface.Canvas, dst *snapshot) {
	for row := 0; row < dst.rows; row++ {
		wide := false
		for col := 0; col < dst.cols; col++ {
			i := row*dst.cols + col
			dst.covered[i] = wide
			cell, _ := c.Cell(col, row)
			if cell.Empty() {
				dst.glyphs[i], dst.styles[i] = " ", ""
			} else {
				dst.glyphs[i], dst.styles[i] = cell.Glyph, s.style(cell)
			}
			wide = !wide && uniseg.StringWidth(dst.glyphs[i]) > 1
		}
	}
}

// style returns the SGR parameters for a cell.
func (s *Screen) style(cell surface.Cell) string {
	seq := s.profile.Color(cell.Color.Clamped().Hex()).Sequence(false)
	if cell.Bold {
		if seq == "" {
			return termenv.BoldSeq
		}
		return termenv.BoldSeq + ";" + seq
	}
	return seq
}

// writeStyle writes the SGR sequence for style if it differs from current.
func writeStyle(b *strings.Builder, style string, current *string) {
	if style == *current {
		return
	}
	if *current != "" {
		b.WriteString(termenv.CSI + termenv.ResetSeq + "m")
	}
	if style != "" {
		b.WriteString(termenv.CSI + style + "m")
	}
	*current = style
}

// fullRender draws the entire frame.
func (s *Screen) fullRender(f *snapshot) error {
	var b strings.Builder
	// one glyph and a color sequence per cell, plus line breaks
	b.Grow(f.rows * (f.cols*24 + 2))
	b.WriteString(termenv.CSI + "H")
	current := ""

	for row := 0; row < f.rows; row++ {
		for col := 0; col < f.cols; col++ {
			i := row*f.cols + col
			if f.covered[i] {
				continue
			}
			writeStyle(&b, f.styles[i], &current)
			b.WriteString(f.glyphs[i])
		}
		if row < f.rows-1 {
			b.WriteString("\r\n")
		}
	}
	writeStyle(&b, "", &current)
	_, err := io.WriteString(s.out, b.String())
	return err
}

// deltaRender draws only the cells that changed since the last frame. Cells
// under a wide glyph are left alone, and a cell uncovered by a wide glyph
// going away is redrawn.
func (s *Screen) deltaRender(f *snapshot) error {
	var b strings.Builder
	b.Grow(f.rows * f.cols * 4)
	current := ""

	for col := 0; col < f.cols; col++ {
		for row := 0; row < f.rows; row++ {
			i := row*f.cols + col
			if f.covered[i] {
				continue
			}
			if !s.prev.covered[i] && f.glyphs[i] == s.prev.glyphs[i] && f.styles[i] == s.prev.styles[i] {
				continue
			}
			b.WriteString(termenv.CSI + strconv.Itoa(row+1) + ";" + strconv.Itoa(col+1) + "H")
			writeStyle(&b, f.styles[i], &current)
			b.WriteString(f.glyphs[i])
		}
	}
	if b.Len() == 0 {
		return nil
	}
	writeStyle(&b, "", &current)
	_, err := io.WriteString(s.out, b.String())
	return err
}
