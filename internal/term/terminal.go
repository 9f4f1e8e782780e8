// Package term drives a plain ANSI terminal: alternate screen, cursor and
// window size handling, and a renderer that repaints a canvas with as few
// escape sequences as it can.
package term

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Terminal defines operations for interacting with the terminal.
type Terminal interface {
	Setup()                            // enter the alternate screen, hide the cursor
	Restore()                          // undo Setup
	Size() (cols, rows int, err error) // window size in cells
}

// StdTerminal is a Terminal on a real file descriptor.
type StdTerminal struct {
	out *termenv.Output
	fd  uintptr
}

// NewStdTerminal writes control sequences to out and reads the window size
// from fd.
func NewStdTerminal(out io.Writer, fd uintptr, profile termenv.Profile) *StdTerminal {
	return &StdTerminal{
		out: termenv.NewOutput(out, termenv.WithProfile(profile)),
		fd:  fd,
	}
}

// Stdout returns a terminal on os.Stdout with the detected color profile.
func Stdout() *StdTerminal {
	return NewStdTerminal(os.Stdout, os.Stdout.Fd(), termenv.EnvColorProfile())
}

// Profile returns the color profile used for output.
func (t *StdTerminal) Profile() termenv.Profile {
	return t.out.Profile
}

// IsTTY reports whether the descriptor is an interactive terminal.
func (t *StdTerminal) IsTTY() bool {
	return isatty.IsTerminal(t.fd) || isatty.IsCygwinTerminal(t.fd)
}

func (t *StdTerminal) Setup() {
	t.out.AltScreen()
	t.out.HideCursor()
	t.out.ClearScreen()
}

func (t *StdTerminal) Restore() {
	t.out.Reset()
	t.out.ShowCursor()
	t.out.ExitAltScreen()
}

// Size returns the terminal's width and height in cells.
func (t *StdTerminal) Size() (cols, rows int, err error) {
	if !t.IsTTY() {
		return 0, 0, errors.New("output is not a terminal")
	}
	cols, rows, err = term.GetSize(int(t.fd))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get terminal size: %w", err)
	}
	if cols <= 0 || rows <= 0 {
		return 0, 0, errors.New("invalid terminal dimensions")
	}
	return cols, rows, nil
}

// FixedTerminal reports a constant size and writes nothing. It stands in
// for a terminal when output is redirected.
type FixedTerminal struct {
	Cols, Rows int
}

func (FixedTerminal) Setup()   {}
func (FixedTerminal) Restore() {}

func (t FixedTerminal) Size() (cols, rows int, err error) {
	return t.Cols, t.Rows, nil
}
