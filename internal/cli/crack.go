package cli

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"

	"matrixfx/internal/crack"
)

// CrackOptions holds flags for the crack command.
type CrackOptions struct {
	Width, Height float64
	X, Y          float64
	Scale         float64
	Rays          int
	Segments      int
	Seed          int64
	Output        string
}

// NewCrackCommand creates the crack command.
func NewCrackCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CrackOptions{}

	cmd := &cobra.Command{
		Use:   "crack",
		Short: "Generate a cracked-glass overlay as SVG",
		Long: `Generate one cracked-glass overlay: an impact mark with jagged rays.

The center defaults to the middle of the viewport. Use --seed to get the same
crack again.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCrack(cmd, opts)
		},
	}

	cmd.Flags().Float64Var(&opts.Width, "width", 1280, "viewport width in pixels")
	cmd.Flags().Float64Var(&opts.Height, "height", 800, "viewport height in pixels")
	cmd.Flags().Float64Var(&opts.X, "x", -1, "impact x in pixels (default center)")
	cmd.Flags().Float64Var(&opts.Y, "y", -1, "impact y in pixels (default center)")
	cmd.Flags().Float64Var(&opts.Scale, "scale", crack.DefaultScale, "size relative to the viewport")
	cmd.Flags().IntVar(&opts.Rays, "rays", crack.DefaultRays, "number of rays")
	cmd.Flags().IntVar(&opts.Segments, "segments", 0, "segments per ray (default random 7-10)")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "random seed (default time based)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the SVG to a file instead of stdout")

	return cmd
}

func runCrack(cmd *cobra.Command, opts *CrackOptions) error {
	if !(opts.Width > 0 && opts.Height > 0) {
		return fmt.Errorf("viewport must be positive: got %gx%g", opts.Width, opts.Height)
	}
	if opts.Rays < 0 || opts.Segments < 0 {
		return fmt.Errorf("rays and segments cannot be negative")
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	p := crack.Params{
		Width:    opts.Width,
		Height:   opts.Height,
		Scale:    opts.Scale,
		Rays:     opts.Rays,
		Segments: opts.Segments,
	}
	if opts.X >= 0 && opts.Y >= 0 {
		p.Center = &crack.Point{X: opts.X, Y: opts.Y}
	}
	overlay := crack.Generate(p, rand.New(rand.NewSource(seed)))

	if opts.Output == "" {
		return overlay.WriteSVG(cmd.OutOrStdout())
	}
	f, err := os.Create(opts.Output)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	if err := overlay.WriteSVG(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write SVG: %w", err)
	}
	return f.Close()
}
