// Package frame hosts the display-synchronized callback chain that drives
// every animated effect. A Loop plays the role of the browser's
// requestAnimationFrame/setTimeout pair: work is requested for the next tick
// and may be cancelled with the returned Token until it runs.
//
// All methods except Post must be called from the goroutine that calls Tick
// (or Run). Nothing is locked; effects interleave, they never overlap.
package frame

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
)

// Token identifies a pending frame callback or timer.
// The zero Token is never issued and is safe to cancel.
type Token uint64

// Callback is invoked once on the tick it was requested for.
type Callback func(now time.Time)

// Scheduler is the subset of Loop an effect needs to keep itself animated.
type Scheduler interface {
	Request(fn Callback) Token
	After(d time.Duration, fn func()) Token
	Cancel(t Token)
}

type frameEntry struct {
	token    Token
	fn       Callback
	canceled bool
}

type timerEntry struct {
	token    Token
	deadline time.Time
	fn       func()
	canceled bool
}

// Loop runs frame callbacks and timers on a single goroutine.
type Loop struct {
	clock Clock
	last  Token

	frames []*frameEntry
	timers []*timerEntry
	index  map[Token]func()

	posted chan func()
	ticks  uint64
}

// NewLoop creates a loop reading time from clock.
func NewLoop(clock Clock) *Loop {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Loop{
		clock:  clock,
		index:  make(map[Token]func()),
		posted: make(chan func(), 256),
	}
}

// Now returns the loop clock's current time.
func (l *Loop) Now() time.Time {
	return l.clock.Now()
}

// Request schedules fn for the next tick.
func (l *Loop) Request(fn Callback) Token {
	l.last++
	e := &frameEntry{token: l.last, fn: fn}
	l.frames = append(l.frames, e)
	l.index[e.token] = func() { e.canceled = true }
	return e.token
}

// After schedules fn to run on the first tick at or after now+d.
func (l *Loop) After(d time.Duration, fn func()) Token {
	l.last++
	e := &timerEntry{token: l.last, deadline: l.clock.Now().Add(d), fn: fn}
	l.timers = append(l.timers, e)
	l.index[e.token] = func() { e.canceled = true }
	return e.token
}

// Cancel drops a pending callback or timer. Spent or unknown tokens are ignored.
func (l *Loop) Cancel(t Token) {
	if cancel, ok := l.index[t]; ok {
		cancel()
		delete(l.index, t)
	}
}

// Pending returns the number of frame callbacks waiting for the next tick.
func (l *Loop) Pending() int {
	n := 0
	for _, e := range l.frames {
		if !e.canceled {
			n++
		}
	}
	return n
}

// Ticks returns how many ticks have run.
func (l *Loop) Ticks() uint64 {
	return l.ticks
}

// Post hands fn to the loop goroutine; it runs at the start of the next tick.
// Safe to call from any goroutine.
func (l *Loop) Post(fn func()) {
	l.posted <- fn
}

// Tick drains posted work, fires due timers in deadline order, then runs the
// frame callbacks that were pending when the tick began. Frames requested by
// posted work or timers wait for the next tick.
func (l *Loop) Tick() {
	l.ticks++
	batch := l.frames
	l.frames = nil

	l.drainPosted()
	now := l.clock.Now()
	l.fireTimers(now)

	for _, e := range batch {
		if e.canceled {
			continue
		}
		delete(l.index, e.token)
		e.fn(now)
	}
}

func (l *Loop) drainPosted() {
	for {
		select {
		case fn := <-l.posted:
			fn()
		default:
			return
		}
	}
}

func (l *Loop) fireTimers(now time.Time) {
	var due, rest []*timerEntry
	for _, e := range l.timers {
		switch {
		case e.canceled:
		case !e.deadline.After(now):
			due = append(due, e)
		default:
			rest = append(rest, e)
		}
	}
	l.timers = rest
	sort.SliceStable(due, func(i, j int) bool {
		return due[i].deadline.Before(due[j].deadline)
	})
	for _, e := range due {
		// an earlier timer in this batch may have cancelled it
		if e.canceled {
			continue
		}
		delete(l.index, e.token)
		e.fn()
	}
}

// Run ticks the loop at fps until ctx is done, calling present after every tick.
func (l *Loop) Run(ctx context.Context, fps int, present func()) error {
	if fps < 1 || fps > 120 {
		return fmt.Errorf("fps out of range (1-120): got %d", fps)
	}
	if present == nil {
		return errors.New("present callback is required")
	}
	tick := time.NewTicker(time.Second / time.Duration(fps))
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-l.posted:
			fn()
		case <-tick.C:
			l.Tick()
			present()
		}
	}
}
