// Package cli wires the matrixfx commands.
package cli

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"matrixfx/internal/config"
	"matrixfx/internal/surface"
)

// AppName names the session storage directory.
const AppName = "matrixfx"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Debug   bool
	LogFile string
	Config  string // YAML effects file
	Cell    string // WxH pixel size of a terminal cell
	FPS     int
}

// NewRootCommand creates the root command for the matrixfx CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "matrixfx",
		Short:         "Digital rain effects for the terminal",
		Long:          "Falling-glyph rain, cracked glass and confetti, standalone or as an interactive terminal site.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVar(&opts.Debug, "debug", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&opts.LogFile, "log", "", "append logs to this file")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "YAML effects file")
	cmd.PersistentFlags().StringVar(&opts.Cell, "cell", "", "terminal cell size in pixels, WxH (default 7x14)")
	cmd.PersistentFlags().IntVar(&opts.FPS, "fps", 0, fmt.Sprintf("frames per second, 1-120 (default %d)", config.DefaultFPS))

	cmd.AddCommand(NewSiteCommand(opts))
	cmd.AddCommand(NewRainCommand(opts))
	cmd.AddCommand(NewCrackCommand(opts))
	cmd.AddCommand(NewPresetsCommand(opts))

	return cmd
}

// resolve loads the effects file and applies the global flags on top.
func (o *RootOptions) resolve() (*config.Set, error) {
	var f *config.File
	if o.Config != "" {
		var err error
		if f, err = config.Load(o.Config); err != nil {
			return nil, err
		}
	}
	set, err := f.Resolve(config.DefaultData)
	if err != nil {
		return nil, err
	}
	if o.Cell != "" {
		m, err := surface.ParseMetrics(o.Cell)
		if err != nil {
			return nil, err
		}
		set.Metrics = m
	}
	if o.FPS != 0 {
		if o.FPS < 1 || o.FPS > 120 {
			return nil, fmt.Errorf("fps out of range (1-120): got %d", o.FPS)
		}
		set.FPS = o.FPS
	}
	return set, nil
}

// setupLogging routes the standard logger. Full-screen commands own the
// terminal, so without --log their logs are discarded.
func (o *RootOptions) setupLogging(fullScreen bool) (func(), error) {
	if o.LogFile != "" {
		f, err := os.OpenFile(o.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		log.SetOutput(f)
		return func() {
			log.SetOutput(os.Stderr)
			f.Close()
		}, nil
	}
	if fullScreen {
		log.SetOutput(io.Discard)
		return func() { log.SetOutput(os.Stderr) }, nil
	}
	return func() {}, nil
}
