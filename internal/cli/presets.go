package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"matrixfx/internal/config"
)

// NewPresetsCommand creates the presets command.
func NewPresetsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List rain presets, color themes and character sets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := rootOpts.resolve()
			if err != nil {
				return err
			}
			return writePresets(cmd.OutOrStdout(), set, config.DefaultData)
		},
	}
}

// writePresets prints the resolved presets and the catalog.
func writePresets(w io.Writer, set *config.Set, d config.Data) error {
	cfgs := map[string]config.RainConfig{
		config.PresetBackground: set.Background,
		config.PresetOverlay:    set.Overlay,
		config.PresetLens:       set.Lens,
	}

	var err error
	printf := func(format string, args ...any) {
		if err == nil {
			_, err = fmt.Fprintf(w, format, args...)
		}
	}

	printf("Presets:\n")
	for _, name := range config.PresetNames() {
		cfg := cfgs[name]
		flags := ""
		if cfg.DoubleDraw {
			flags += "  double"
		}
		if cfg.Glow {
			flags += "  glow"
		}
		printf("  %-12s glyph %-4g fade %-6g loop %-6g glyphs %-4d color %s%s\n",
			name, cfg.GlyphSize, cfg.Fade, cfg.LoopChance, len(cfg.Alphabet), cfg.Foreground.Hex(), flags)
	}
	printf("\nColors:\n")
	for _, name := range d.Themes() {
		printf("  %-8s %s\n", name, d.ColorThemes[name].Hex())
	}
	printf("\nCharacter Sets:\n")
	for _, name := range d.Sets() {
		printf("  %s\n", name)
	}
	printf("\nFPS: %d (1-120)\n", set.FPS)
	printf("Cell: %s pixels\n", set.Metrics)
	return err
}
