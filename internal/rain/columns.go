package rain

import (
	"math"

	"matrixfx/internal/config"
)

// Rand is the randomness the update rule consumes. *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// MaxColumns caps the column count of one instance.
const MaxColumns = 1 << 14

// Columns holds one vertical cursor per column, in glyph-size units.
type Columns struct {
	cursors []int
}

// NewColumns creates floor(width/glyphSize) cursors, each starting one unit
// below the top so the first glyph is visible at the top edge. The count is
// capped at MaxColumns; a NaN or non-positive size gives none.
func NewColumns(width, glyphSize float64) *Columns {
	n := 0
	if width > 0 && glyphSize > 0 {
		switch q := math.Floor(width / glyphSize); {
		case q >= MaxColumns:
			n = MaxColumns
		case q >= 1:
			n = int(q)
		}
	}
	cursors := make([]int, n)
	for i := range cursors {
		cursors[i] = 1
	}
	return &Columns{cursors: cursors}
}

// Len returns the column count.
func (c *Columns) Len() int {
	return len(c.cursors)
}

// Cursor returns the cursor of column i.
func (c *Columns) Cursor(i int) int {
	return c.cursors[i]
}

// Cursors returns a copy of every cursor.
func (c *Columns) Cursors() []int {
	out := make([]int, len(c.cursors))
	copy(out, c.cursors)
	return out
}

// DrawFunc receives one glyph placement of a step.
type DrawFunc func(x, y float64, glyph string)

// Step advances every column by one frame. Each column draws a random glyph
// at its cursor; once the cursor is past height the column restarts at the
// top with probability cfg.LoopChance. The cursor then moves down one unit.
// It returns how many columns were reset.
func (c *Columns) Step(height float64, cfg *config.RainConfig, rnd Rand, draw DrawFunc) int {
	size := cfg.GlyphSize
	threshold := 1 - cfg.LoopChance
	resets := 0
	for i := range c.cursors {
		glyph := cfg.Alphabet[rnd.Intn(len(cfg.Alphabet))]
		y := float64(c.cursors[i]) * size
		if draw != nil {
			draw(float64(i)*size, y, glyph)
		}
		if y > height && rnd.Float64() > threshold {
			c.cursors[i] = 0
			resets++
		}
		c.cursors[i]++
	}
	return resets
}
