// Package glitch is the hover glitch attached to the hero art: for a short
// window it tears horizontal slices of the element sideways, shakes it and
// rotates its hue.
package glitch

import (
	"math"
	"time"
)

// Options is the fixed glitch configuration.
type Options struct {
	PlayMode        string
	Duration        time.Duration
	Iterations      int
	SpanStart       float64 // fraction of the duration where glitching starts
	SpanEnd         float64
	ShakeVelocity   float64 // shake changes per second
	ShakeAmplitudeX float64 // fraction of the width
	ShakeAmplitudeY float64
	SliceCount      int
	SliceVelocity   float64 // slice layouts per second
	SliceMinHeight  float64 // fraction of the height
	SliceMaxHeight  float64
	HueRotate       bool
}

// DefaultOptions mirrors the hero's declarative setup.
var DefaultOptions = Options{
	PlayMode:        "hover",
	Duration:        4000 * time.Millisecond,
	Iterations:      1,
	SpanStart:       0.1,
	SpanEnd:         0.9,
	ShakeVelocity:   15,
	ShakeAmplitudeX: 0.2,
	ShakeAmplitudeY: 0.2,
	SliceCount:      10,
	SliceVelocity:   8,
	SliceMinHeight:  0.05,
	SliceMaxHeight:  0.15,
	HueRotate:       true,
}

// maxSliceShift bounds how far a slice moves, as a fraction of the width.
const maxSliceShift = 0.1

// Rand is the randomness the effect consumes.
type Rand interface {
	Float64() float64
}

// Effect is one attached glitch.
type Effect struct {
	opts  Options
	rnd   Rand
	start time.Time
	armed bool

	sliceStep int
	offsets   []int
	shakeStep int
	shake     int
	hue       float64
}

// New attaches a glitch with opts.
func New(opts Options, rnd Rand) *Effect {
	return &Effect{opts: opts, rnd: rnd, sliceStep: -1, shakeStep: -1}
}

// Trigger starts playing unless a run is already in progress.
func (e *Effect) Trigger(now time.Time) bool {
	if e.Active(now) {
		return false
	}
	e.start = now
	e.armed = true
	e.sliceStep, e.shakeStep = -1, -1
	return true
}

// Active reports whether the effect is playing.
func (e *Effect) Active(now time.Time) bool {
	if !e.armed {
		return false
	}
	total := e.opts.Duration * time.Duration(max(e.opts.Iterations, 1))
	return now.Sub(e.start) < total
}

// glitching reports whether now falls inside the glitch span of the current
// iteration, and the elapsed time of the run.
func (e *Effect) glitching(now time.Time) (time.Duration, bool) {
	if !e.Active(now) || e.opts.Duration <= 0 {
		return 0, false
	}
	elapsed := now.Sub(e.start)
	progress := float64(elapsed%e.opts.Duration) / float64(e.opts.Duration)
	return elapsed, progress >= e.opts.SpanStart && progress <= e.opts.SpanEnd
}

// RowOffsets returns the horizontal displacement of every row of a
// rows×cols element at now. Outside the glitch span every offset is zero.
func (e *Effect) RowOffsets(now time.Time, rows, cols int) []int {
	out := make([]int, max(rows, 0))
	elapsed, ok := e.glitching(now)
	if !ok || rows <= 0 {
		return out
	}

	if step := int(elapsed.Seconds() * e.opts.SliceVelocity); step != e.sliceStep || len(e.offsets) != rows {
		e.sliceStep = step
		e.offsets = e.layoutSlices(rows, cols)
	}
	if step := int(elapsed.Seconds() * e.opts.ShakeVelocity); step != e.shakeStep {
		e.shakeStep = step
		e.shake = int(math.Round((e.rnd.Float64()*2 - 1) * e.opts.ShakeAmplitudeX * float64(cols) * maxSliceShift))
		if e.opts.HueRotate {
			e.hue = e.rnd.Float64() * 360
		}
	}

	for i := range out {
		out[i] = e.offsets[i] + e.shake
	}
	return out
}

// HueShift returns the hue rotation in degrees at now.
func (e *Effect) HueShift(now time.Time) float64 {
	if _, ok := e.glitching(now); !ok || !e.opts.HueRotate {
		return 0
	}
	return e.hue
}

func (e *Effect) layoutSlices(rows, cols int) []int {
	offsets := make([]int, rows)
	limit := float64(cols) * maxSliceShift
	for s := 0; s < e.opts.SliceCount; s++ {
		h := e.opts.SliceMinHeight + e.rnd.Float64()*(e.opts.SliceMaxHeight-e.opts.SliceMinHeight)
		height := max(int(math.Round(h*float64(rows))), 1)
		top := int(e.rnd.Float64() * float64(rows))
		shift := int(math.Round((e.rnd.Float64()*2 - 1) * limit))
		for r := top; r < top+height && r < rows; r++ {
			offsets[r] = shift
		}
	}
	return offsets
}
