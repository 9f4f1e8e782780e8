// Package crack generates the one-shot "cracked glass" decoration: an impact
// mark with jagged rays radiating from a point.
package crack

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"matrixfx/internal/surface"
)

// Defaults used when Params leaves a field zero.
const (
	DefaultScale = 0.15
	DefaultRays  = 14
)

// Rand is the randomness geometry generation consumes.
type Rand interface {
	Float64() float64
}

// Point is a position in pixels.
type Point struct {
	X, Y float64
}

// Params describes the crack to generate.
type Params struct {
	Width, Height float64 // viewport in pixels
	Center        *Point  // nil means the viewport center
	Scale         float64
	Rays          int
	Segments      int // per ray; zero picks 7 to 10 at random
}

// Ray is a jagged polyline starting at the impact center.
type Ray struct {
	Points []Point
}

// Segments returns the number of line segments in the ray.
func (r Ray) Segments() int {
	return max(len(r.Points)-1, 0)
}

// Overlay is a generated crack.
type Overlay struct {
	Width, Height float64
	Center        Point
	ImpactRadius  float64
	StrokeWidth   float64
	Rays          []Ray
}

// Generate builds a crack overlay.
func Generate(p Params, rnd Rand) Overlay {
	scale := p.Scale
	if scale <= 0 {
		scale = DefaultScale
	}
	rays := p.Rays
	if rays <= 0 {
		rays = DefaultRays
	}
	center := Point{X: p.Width * 0.5, Y: p.Height * 0.5}
	if p.Center != nil {
		center = *p.Center
	}
	base := math.Min(p.Width, p.Height)

	o := Overlay{
		Width:        p.Width,
		Height:       p.Height,
		Center:       center,
		ImpactRadius: base * 0.02 * scale,
		StrokeWidth:  math.Max(0.5, 1.5*scale),
		Rays:         make([]Ray, 0, rays),
	}
	for i := 0; i < rays; i++ {
		angle := 360/float64(rays)*float64(i) + (rnd.Float64()*14 - 7)
		length := base * (0.35 + rnd.Float64()*0.25) * scale
		segments := p.Segments
		if segments <= 0 {
			segments = 7 + int(rnd.Float64()*4)
		}
		o.Rays = append(o.Rays, jaggedRay(center, angle, length, segments, rnd))
	}
	return o
}

func jaggedRay(from Point, angleDeg, length float64, segments int, rnd Rand) Ray {
	angle := angleDeg * math.Pi / 180
	pts := make([]Point, 0, segments+1)
	pts = append(pts, from)
	x, y := from.X, from.Y
	for i := 1; i <= segments; i++ {
		step := length / float64(segments) * (0.8 + rnd.Float64()*0.6)
		a := angle + (rnd.Float64()-0.5)*0.25
		x += math.Cos(a) * step
		y += math.Sin(a) * step
		pts = append(pts, Point{X: x, Y: y})
	}
	return Ray{Points: pts}
}

// WriteSVG renders the overlay as a standalone SVG document.
func (o Overlay) WriteSVG(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="100%%" height="100%%" viewBox="0 0 %s %s" style="--crack-stroke:%s">`,
		num(o.Width), num(o.Height), num(o.StrokeWidth))
	b.WriteString("\n")
	fmt.Fprintf(&b, `  <circle cx="%s" cy="%s" r="%s" class="crack-impact"/>`,
		num(o.Center.X), num(o.Center.Y), num(o.ImpactRadius))
	b.WriteString("\n")
	for _, r := range o.Rays {
		pts := make([]string, len(r.Points))
		for i, p := range r.Points {
			pts[i] = strconv.FormatFloat(p.X, 'f', 1, 64) + "," + strconv.FormatFloat(p.Y, 'f', 1, 64)
		}
		fmt.Fprintf(&b, `  <polyline points="%s" class="crack-ray"/>`, strings.Join(pts, " "))
		b.WriteString("\n")
	}
	b.WriteString("</svg>\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// Rasterize draws the overlay into c in cell space and returns the number
// of cells written.
func (o Overlay) Rasterize(c *surface.Canvas, color colorful.Color) int {
	m := c.Metrics()
	cell := func(p Point) (int, int) {
		return int(math.Floor(p.X / m.CellWidth)), int(math.Floor(p.Y / m.CellHeight))
	}

	written := 0
	set := func(col, row int, glyph string) {
		if _, ok := c.Cell(col, row); ok {
			c.Set(col, row, glyph, color)
			written++
		}
	}

	for _, r := range o.Rays {
		for i := 1; i < len(r.Points); i++ {
			a, b := r.Points[i-1], r.Points[i]
			glyph := strokeGlyph(b.X-a.X, b.Y-a.Y)
			x0, y0 := cell(a)
			x1, y1 := cell(b)
			line(x0, y0, x1, y1, func(col, row int) { set(col, row, glyph) })
		}
	}
	cx, cy := cell(o.Center)
	set(cx, cy, "✱")
	return written
}

// strokeGlyph picks a line character for a segment direction. Screen y grows
// downward.
func strokeGlyph(dx, dy float64) string {
	deg := math.Abs(math.Atan2(dy, dx) * 180 / math.Pi)
	switch {
	case deg < 22.5 || deg > 157.5:
		return "─"
	case deg > 67.5 && deg < 112.5:
		return "│"
	case (dx > 0) == (dy > 0):
		return "╲"
	default:
		return "╱"
	}
}

// line walks the cells between two points (Bresenham).
func line(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
