// Package sound plays the short audio cues that accompany the one-shot
// effects. Audio is optional: without a device every Play is a no-op.
package sound

import (
	"fmt"
	"log"
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

// SampleRate is the rate every cue is generated at.
const SampleRate = beep.SampleRate(44100)

// Cue names a sound.
type Cue int

const (
	CueCrack Cue = iota
	CueConfetti
)

func (c Cue) String() string {
	switch c {
	case CueCrack:
		return "crack"
	case CueConfetti:
		return "confetti"
	}
	return fmt.Sprintf("cue(%d)", int(c))
}

type note struct {
	freq float64
	dur  time.Duration
}

var cueNotes = map[Cue][]note{
	// low thud followed by a short high snap
	CueCrack: {{freq: 110, dur: 60 * time.Millisecond}, {freq: 1760, dur: 25 * time.Millisecond}},
	// three rising chirps
	CueConfetti: {{freq: 784, dur: 50 * time.Millisecond}, {freq: 988, dur: 50 * time.Millisecond}, {freq: 1319, dur: 80 * time.Millisecond}},
}

// Duration returns the total length of the cue.
func (c Cue) Duration() time.Duration {
	var d time.Duration
	for _, n := range cueNotes[c] {
		d += n.dur
	}
	return d
}

// Streamer builds the cue at volume (0-1).
func (c Cue) Streamer(volume float64) (beep.Streamer, error) {
	notes, ok := cueNotes[c]
	if !ok {
		return nil, fmt.Errorf("unknown cue: %v", c)
	}
	parts := make([]beep.Streamer, 0, len(notes))
	for _, n := range notes {
		tone, err := generators.SineTone(SampleRate, n.freq)
		if err != nil {
			return nil, fmt.Errorf("failed to build %v tone: %w", c, err)
		}
		parts = append(parts, beep.Take(SampleRate.N(n.dur), tone))
	}
	return withVolume(beep.Seq(parts...), volume), nil
}

// math.Log2(0) is -Inf, so zero volume is expressed as silence
func withVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// Player owns the speaker.
type Player struct {
	ready  bool
	volume float64
}

// NewPlayer creates a player at volume. Call Init to open the device.
func NewPlayer(volume float64) *Player {
	return &Player{volume: volume}
}

// Init opens the audio device. Failure leaves the player silent.
func (p *Player) Init() error {
	if err := speaker.Init(SampleRate, SampleRate.N(time.Second/10)); err != nil {
		return fmt.Errorf("audio initialization failed: %w", err)
	}
	p.ready = true
	return nil
}

// Ready reports whether cues are audible.
func (p *Player) Ready() bool {
	return p != nil && p.ready
}

// Play starts a cue without blocking.
func (p *Player) Play(c Cue) {
	if !p.Ready() {
		return
	}
	s, err := c.Streamer(p.volume)
	if err != nil {
		log.Printf("sound: %v", err)
		return
	}
	speaker.Play(s)
}

// Close releases the device.
func (p *Player) Close() {
	if p.Ready() {
		speaker.Close()
		p.ready = false
	}
}
