package term

import (
	"bytes"
	"context"
	"math/rand"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matrixfx/internal/config"
	"matrixfx/internal/surface"
)

var green = colorful.Color{R: 0, G: 1, B: 0}

func TestFullRenderAscii(t *testing.T) {
	var buf bytes.Buffer
	s := NewScreen(&buf, termenv.Ascii)
	c := surface.NewCanvas(3, 2, surface.DefaultMetrics)
	c.Set(0, 0, "a", green)
	c.Set(2, 1, "b", green)

	require.NoError(t, s.Draw(c))
	assert.Equal(t, "\x1b[Ha  \r\n  b", buf.String())
}

func TestFullRenderTrueColor(t *testing.T) {
	var buf bytes.Buffer
	s := NewScreen(&buf, termenv.TrueColor)
	c := surface.NewCanvas(2, 1, surface.DefaultMetrics)
	c.Set(0, 0, "x", green)
	c.Set(1, 0, "y", green)

	require.NoError(t, s.Draw(c))
	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "38;2;0;255;0m"), "same color is set once")
	assert.True(t, strings.HasSuffix(out, "xy\x1b[0m"))
}

func TestDeltaRenderOnlyChangedCells(t *testing.T) {
	var buf bytes.Buffer
	s := NewScreen(&buf, termenv.Ascii)
	c := surface.NewCanvas(4, 3, surface.DefaultMetrics)
	require.NoError(t, s.Draw(c))

	buf.Reset()
	c.Set(1, 2, "z", green)
	require.NoError(t, s.Draw(c))
	assert.Equal(t, "\x1b[3;2Hz", buf.String())

	buf.Reset()
	require.NoError(t, s.Draw(c))
	assert.Empty(t, buf.String(), "unchanged frame writes nothing")
}

func TestResizeForcesFullRender(t *testing.T) {
	var buf bytes.Buffer
	s := NewScreen(&buf, termenv.Ascii)
	c := surface.NewCanvas(2, 2, surface.DefaultMetrics)
	require.NoError(t, s.Draw(c))

	c.Resize(3, 1)
	buf.Reset()
	require.NoError(t, s.Draw(c))
	assert.Equal(t, "\x1b[H   ", buf.String())

	s.Invalidate()
	buf.Reset()
	require.NoError(t, s.Draw(c))
	assert.Equal(t, "\x1b[H   ", buf.String())
}

func TestWideGlyphCoversTwoCells(t *testing.T) {
	var buf bytes.Buffer
	s := NewScreen(&buf, termenv.Ascii)
	c := surface.NewCanvas(3, 1, surface.DefaultMetrics)
	c.Set(0, 0, "ア", green)

	require.NoError(t, s.Draw(c))
	assert.Equal(t, "\x1b[Hア ", buf.String())
}

func TestDeltaRenderRespectsWideGlyphs(t *testing.T) {
	var buf bytes.Buffer
	s := NewScreen(&buf, termenv.Ascii)
	c := surface.NewCanvas(4, 1, surface.DefaultMetrics)
	c.Set(0, 0, "ア", green)
	require.NoError(t, s.Draw(c))

	buf.Reset()
	c.Set(1, 0, "b", green)
	require.NoError(t, s.Draw(c))
	assert.Empty(t, buf.String(), "the cell under a wide glyph is not drawn")

	buf.Reset()
	c.Clear()
	c.Set(1, 0, "b", green)
	require.NoError(t, s.Draw(c))
	assert.Equal(t, "\x1b[1;1H \x1b[1;2Hb", buf.String(), "the uncovered cell is repainted")

	buf.Reset()
	c.Set(2, 0, "ア", green)
	c.Set(3, 0, "c", green)
	require.NoError(t, s.Draw(c))
	assert.Equal(t, "\x1b[1;3Hア", buf.String())
}

func TestStdTerminalSequences(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()

	var buf bytes.Buffer
	term := NewStdTerminal(&buf, f.Fd(), termenv.Ascii)
	term.Setup()
	assert.Contains(t, buf.String(), "\x1b[?1049h")
	assert.Contains(t, buf.String(), "\x1b[?25l")

	buf.Reset()
	term.Restore()
	assert.Contains(t, buf.String(), "\x1b[?25h")
	assert.Contains(t, buf.String(), "\x1b[?1049l")

	assert.False(t, term.IsTTY())
	_, _, err = term.Size()
	assert.Error(t, err, "a regular file has no window size")
}

func TestRunnerDrawsUntilCanceled(t *testing.T) {
	cfg, ok := config.Defaults(config.PresetBackground)
	require.True(t, ok)
	cfg.Alphabet = []string{"0", "1"}

	var buf bytes.Buffer
	r, err := NewRunner(FixedTerminal{Cols: 20, Rows: 5}, &buf, RunnerOptions{
		Rain:    cfg,
		Metrics: surface.DefaultMetrics,
		FPS:     60,
		Profile: termenv.Ascii,
		Rand:    rand.New(rand.NewSource(1)),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	require.NoError(t, r.Run(ctx))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\x1b[H"))
	assert.True(t, strings.ContainsAny(out, "01"))
	assert.Zero(t, r.Canvas().Inked(), "stopping clears the canvas")
}

func TestRunnerRejectsBadInput(t *testing.T) {
	cfg, _ := config.Defaults(config.PresetBackground)
	_, err := NewRunner(FixedTerminal{Cols: 10, Rows: 10}, &bytes.Buffer{}, RunnerOptions{
		Rain: cfg,
		FPS:  30,
	})
	assert.Error(t, err, "zero metrics")

	cfg.Fade = 2
	_, err = NewRunner(FixedTerminal{Cols: 10, Rows: 10}, &bytes.Buffer{}, RunnerOptions{
		Rain:    cfg,
		Metrics: surface.DefaultMetrics,
		FPS:     30,
	})
	assert.Error(t, err)
}
