package surface

import (
	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// Layer positions a canvas on the terminal screen.
type Layer struct {
	Canvas  *Canvas
	X, Y    int // top-left cell on screen
	Visible bool
	Opacity float64
}

// NewLayer creates a visible, fully opaque layer at (x, y).
func NewLayer(c *Canvas, x, y int) *Layer {
	return &Layer{Canvas: c, X: x, Y: y, Visible: true, Opacity: 1}
}

// Draw composites the layer onto screen. Empty cells are transparent.
func (l *Layer) Draw(screen tcell.Screen, background colorful.Color) {
	if l == nil || !l.Visible || l.Opacity <= 0 {
		return
	}
	sw, sh := screen.Size()
	cols, rows := l.Canvas.Grid()
	bg := ToTcell(background)
	for row := 0; row < rows; row++ {
		y := l.Y + row
		if y < 0 || y >= sh {
			continue
		}
		for col := 0; col < cols; col++ {
			x := l.X + col
			if x < 0 || x >= sw {
				continue
			}
			cell, _ := l.Canvas.Cell(col, row)
			if cell.Empty() {
				continue
			}
			fg := background.BlendRgb(cell.Color, l.Opacity)
			style := tcell.StyleDefault.Foreground(ToTcell(fg)).Background(bg).Bold(cell.Bold)
			runes := []rune(cell.Glyph)
			screen.SetContent(x, y, runes[0], runes[1:], style)
		}
	}
}

// ToTcell converts a colorful color to a true-color tcell color.
func ToTcell(c colorful.Color) tcell.Color {
	r, g, b := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}
