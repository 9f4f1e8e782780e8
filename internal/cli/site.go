package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"matrixfx/internal/session"
	"matrixfx/internal/site"
	"matrixfx/internal/sound"
)

// SiteOptions holds flags for the site command.
type SiteOptions struct {
	Page      string
	NoSound   bool
	NoPersist bool
	Volume    float64
}

// NewSiteCommand creates the site command.
func NewSiteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SiteOptions{}

	cmd := &cobra.Command{
		Use:   "site",
		Short: "Browse the interactive terminal site",
		Long: `Browse the site in the terminal with the mouse or Tab/Enter.

Following a nav link rains across the screen and carries the rain over to
the next page. Click the hero for shades, click the logo (or press c) to
crack the glass, and send the contact form for confetti. Quit with q, Esc
or Ctrl-C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSite(cmd.Context(), rootOpts, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Page, "page", "home", "page to open, e.g. contact or confirmation?sent=1")
	cmd.Flags().BoolVar(&opts.NoSound, "no-sound", false, "disable sound cues")
	cmd.Flags().BoolVar(&opts.NoPersist, "no-persist", false, "keep session flags in memory only")
	cmd.Flags().Float64Var(&opts.Volume, "volume", 0.3, "sound cue volume (0-1)")

	return cmd
}

func runSite(ctx context.Context, rootOpts *RootOptions, opts *SiteOptions) error {
	set, err := rootOpts.resolve()
	if err != nil {
		return err
	}
	route, err := site.ParseRoute(opts.Page)
	if err != nil {
		return err
	}
	if opts.Volume < 0 || opts.Volume > 1 {
		return fmt.Errorf("volume out of range (0-1): got %g", opts.Volume)
	}

	restoreLog, err := rootOpts.setupLogging(true)
	if err != nil {
		return err
	}
	defer restoreLog()

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize screen: %w", err)
	}
	defer screen.Fini()
	screen.EnableMouse(tcell.MouseMotionEvents)

	player := sound.NewPlayer(opts.Volume)
	if !opts.NoSound {
		if err := player.Init(); err != nil {
			log.Printf("sound disabled: %v", err)
		}
		defer player.Close()
	}

	s, err := site.New(screen, site.Options{
		Presets: set,
		Store:   session.Open(AppName, !opts.NoPersist),
		Sound:   player,
		Debug:   rootOpts.Debug,
	})
	if err != nil {
		return err
	}
	s.Navigate(route)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx, set.FPS)
}
