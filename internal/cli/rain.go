package cli

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"matrixfx/internal/config"
	"matrixfx/internal/term"
)

// RainOptions holds flags for the rain command.
type RainOptions struct {
	Preset string
	Color  string
	Chars  string
}

// NewRainCommand creates the rain command.
func NewRainCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RainOptions{}

	cmd := &cobra.Command{
		Use:   "rain",
		Short: "Full-screen rain until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRain(cmd.Context(), rootOpts, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Preset, "preset", config.PresetBackground, "preset to run (background, overlay, lens)")
	cmd.Flags().StringVar(&opts.Color, "color", "", "color theme name or #rrggbb")
	cmd.Flags().StringVar(&opts.Chars, "chars", "", "character set name or custom string")

	return cmd
}

// rainConfig picks the preset and applies the color and charset flags.
func (o *RainOptions) rainConfig(set *config.Set) (config.RainConfig, error) {
	var cfg config.RainConfig
	switch o.Preset {
	case config.PresetBackground:
		cfg = set.Background
	case config.PresetOverlay:
		cfg = set.Overlay
	case config.PresetLens:
		cfg = set.Lens
	default:
		return cfg, fmt.Errorf("unknown preset: %s", o.Preset)
	}
	if o.Color != "" {
		c, err := config.DefaultData.ResolveColor(o.Color)
		if err != nil {
			return cfg, err
		}
		cfg.Foreground = c
	}
	if o.Chars != "" {
		glyphs, err := config.DefaultData.ResolveAlphabet(o.Chars)
		if err != nil {
			return cfg, err
		}
		cfg.Alphabet = glyphs
	}
	return cfg, cfg.Validate()
}

func runRain(ctx context.Context, rootOpts *RootOptions, opts *RainOptions) error {
	set, err := rootOpts.resolve()
	if err != nil {
		return err
	}
	cfg, err := opts.rainConfig(set)
	if err != nil {
		return err
	}

	restoreLog, err := rootOpts.setupLogging(true)
	if err != nil {
		return err
	}
	defer restoreLog()

	t := term.Stdout()
	runner, err := term.NewRunner(t, os.Stdout, term.RunnerOptions{
		Rain:    cfg,
		Metrics: set.Metrics,
		FPS:     set.FPS,
		Profile: t.Profile(),
		Rand:    rand.New(rand.NewSource(time.Now().UnixNano())),
		Debug:   rootOpts.Debug,
	})
	if err != nil {
		return err
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return runner.Run(ctx)
}
