// Package surface provides the drawing targets effects paint on: a pixel
// addressed Surface backed by a grid of terminal cells.
package surface

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// inkCutoff is the ink level below which a faded cell counts as empty.
const inkCutoff = 0.03

// Surface is a drawing target with pixel dimensions owned by the host.
type Surface interface {
	// Size reports the current pixel dimensions. Callers read it every frame.
	Size() (w, h float64)
	// Fill paints bg over the whole surface at the given opacity.
	Fill(bg colorful.Color, alpha float64)
	// DrawGlyph draws glyph with its baseline at pixel (x, y).
	DrawGlyph(x, y float64, glyph string, style GlyphStyle)
	// Clear removes everything drawn so far.
	Clear()
}

// GlyphStyle controls how a single glyph is drawn.
type GlyphStyle struct {
	Color  colorful.Color
	Double bool // drawn twice for intensity
	Glow   bool // saturated, brightened color
}

// Metrics is the pixel size of one terminal cell.
type Metrics struct {
	CellWidth  float64
	CellHeight float64
}

// DefaultMetrics approximates a 14px monospace font.
var DefaultMetrics = Metrics{CellWidth: 7, CellHeight: 14}

// ParseMetrics parses a "WxH" cell size such as "7x14".
func ParseMetrics(s string) (Metrics, error) {
	w, h, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return Metrics{}, fmt.Errorf("invalid cell size %q: want WxH", s)
	}
	cw, err := strconv.ParseFloat(w, 64)
	if err != nil {
		return Metrics{}, fmt.Errorf("invalid cell width %q: %w", w, err)
	}
	ch, err := strconv.ParseFloat(h, 64)
	if err != nil {
		return Metrics{}, fmt.Errorf("invalid cell height %q: %w", h, err)
	}
	m := Metrics{CellWidth: cw, CellHeight: ch}
	if err := m.Validate(); err != nil {
		return Metrics{}, err
	}
	return m, nil
}

// Validate checks that both dimensions are positive and finite.
func (m Metrics) Validate() error {
	if !(m.CellWidth > 0 && m.CellHeight > 0) || math.IsInf(m.CellWidth, 0) || math.IsInf(m.CellHeight, 0) {
		return fmt.Errorf("cell size must be positive: got %gx%g", m.CellWidth, m.CellHeight)
	}
	return nil
}

// String formats the metrics as "WxH".
func (m Metrics) String() string {
	return strconv.FormatFloat(m.CellWidth, 'f', -1, 64) + "x" + strconv.FormatFloat(m.CellHeight, 'f', -1, 64)
}

// Cell is one terminal position of a canvas.
type Cell struct {
	Glyph string
	Color colorful.Color
	Ink   float64 // 1 when freshly drawn, decays with every Fill
	Bold  bool
}

// Empty reports whether the cell shows nothing.
func (c Cell) Empty() bool {
	return c.Glyph == "" || c.Ink <= 0
}

// Canvas is a Surface made of terminal cells. It never clears between
// frames on its own: Fill fades what is there, which is what leaves trails.
type Canvas struct {
	metrics    Metrics
	cols, rows int
	cells      []Cell
}

// NewCanvas creates an empty canvas of cols×rows cells.
func NewCanvas(cols, rows int, m Metrics) *Canvas {
	c := &Canvas{metrics: m}
	c.Resize(cols, rows)
	return c
}

// Resize changes the grid dimensions, dropping everything drawn.
func (c *Canvas) Resize(cols, rows int) {
	c.cols, c.rows = max(cols, 0), max(rows, 0)
	c.cells = make([]Cell, c.cols*c.rows)
}

// Size returns the canvas size in pixels.
func (c *Canvas) Size() (w, h float64) {
	return float64(c.cols) * c.metrics.CellWidth, float64(c.rows) * c.metrics.CellHeight
}

// Grid returns the canvas size in cells.
func (c *Canvas) Grid() (cols, rows int) {
	return c.cols, c.rows
}

// Metrics returns the pixel size of one cell.
func (c *Canvas) Metrics() Metrics {
	return c.metrics
}

// Cell returns the cell at (col, row).
func (c *Canvas) Cell(col, row int) (Cell, bool) {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return Cell{}, false
	}
	return c.cells[row*c.cols+col], true
}

// Inked counts the non-empty cells.
func (c *Canvas) Inked() int {
	n := 0
	for _, cell := range c.cells {
		if !cell.Empty() {
			n++
		}
	}
	return n
}

// Fill fades every cell toward bg by alpha.
func (c *Canvas) Fill(bg colorful.Color, alpha float64) {
	alpha = math.Max(0, math.Min(1, alpha))
	for i := range c.cells {
		cell := &c.cells[i]
		if cell.Empty() {
			continue
		}
		cell.Ink *= 1 - alpha
		if cell.Ink < inkCutoff {
			*cell = Cell{}
			continue
		}
		cell.Color = cell.Color.BlendRgb(bg, alpha)
	}
}

// DrawGlyph places glyph in the cell holding pixel x and the baseline y.
// A glyph whose baseline sits at or above the top edge is not visible.
func (c *Canvas) DrawGlyph(x, y float64, glyph string, style GlyphStyle) {
	if glyph == "" {
		return
	}
	col := int(math.Floor(x / c.metrics.CellWidth))
	row := int(math.Ceil(y/c.metrics.CellHeight)) - 1
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return
	}
	color := style.Color
	if style.Glow {
		color = glow(color)
	}
	c.cells[row*c.cols+col] = Cell{
		Glyph: glyph,
		Color: color,
		Ink:   1,
		Bold:  style.Double,
	}
}

// Clear empties every cell.
func (c *Canvas) Clear() {
	for i := range c.cells {
		c.cells[i] = Cell{}
	}
}

// Set writes a cell directly, used by effects that work in cell space.
func (c *Canvas) Set(col, row int, glyph string, color colorful.Color) {
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows || glyph == "" {
		return
	}
	c.cells[row*c.cols+col] = Cell{Glyph: glyph, Color: color, Ink: 1}
}

func glow(c colorful.Color) colorful.Color {
	h, s, v := c.Hsv()
	return colorful.Hsv(h, math.Min(1, s*1.6), math.Min(1, v*1.35))
}
