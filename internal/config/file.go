package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"matrixfx/internal/surface"
)

// DefaultFPS is the frame rate used when neither flag nor file sets one.
const DefaultFPS = 30

// File is the optional YAML effects file.
//
//	cell: 7x14
//	fps: 30
//	presets:
//	  background:
//	    alphabet: binary
//	    color: amber
//	  lens:
//	    loop_chance: 0.05
type File struct {
	Cell    string              `yaml:"cell"`
	FPS     int                 `yaml:"fps"`
	Presets map[string]Override `yaml:"presets"`
}

// Override replaces individual preset fields. Unset fields keep the default.
type Override struct {
	GlyphSize  *float64 `yaml:"glyph_size"`
	Alphabet   string   `yaml:"alphabet"`
	Color      string   `yaml:"color"`
	Background string   `yaml:"background"`
	Fade       *float64 `yaml:"fade"`
	LoopChance *float64 `yaml:"loop_chance"`
	DoubleDraw *bool    `yaml:"double_draw"`
	Glow       *bool    `yaml:"glow"`
}

// Set is the resolved configuration of every rain instance.
type Set struct {
	Background RainConfig
	Overlay    RainConfig
	Lens       RainConfig
	Metrics    surface.Metrics
	FPS        int
}

// Load reads and parses an effects file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML effects configuration.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &f, nil
}

// Resolve applies the file on top of the built-in presets. A nil file
// resolves to the defaults.
func (f *File) Resolve(d Data) (*Set, error) {
	if f == nil {
		f = &File{}
	}
	set := &Set{Metrics: surface.DefaultMetrics, FPS: DefaultFPS}
	if f.Cell != "" {
		m, err := surface.ParseMetrics(f.Cell)
		if err != nil {
			return nil, err
		}
		set.Metrics = m
	}
	if f.FPS != 0 {
		if f.FPS < 1 || f.FPS > 120 {
			return nil, fmt.Errorf("fps out of range (1-120): got %d", f.FPS)
		}
		set.FPS = f.FPS
	}

	for name := range f.Presets {
		if _, ok := Defaults(name); !ok {
			return nil, fmt.Errorf("unknown preset: %s", name)
		}
	}

	targets := map[string]*RainConfig{
		PresetBackground: &set.Background,
		PresetOverlay:    &set.Overlay,
		PresetLens:       &set.Lens,
	}
	for _, name := range PresetNames() {
		cfg, _ := Defaults(name)
		if o, ok := f.Presets[name]; ok {
			if err := o.apply(&cfg, d); err != nil {
				return nil, fmt.Errorf("preset %s: %w", name, err)
			}
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("preset %s: %w", name, err)
		}
		*targets[name] = cfg
	}
	return set, nil
}

func (o Override) apply(cfg *RainConfig, d Data) error {
	if o.GlyphSize != nil {
		cfg.GlyphSize = *o.GlyphSize
	}
	if o.Alphabet != "" {
		glyphs, err := d.ResolveAlphabet(o.Alphabet)
		if err != nil {
			return err
		}
		cfg.Alphabet = glyphs
	}
	if o.Color != "" {
		c, err := d.ResolveColor(o.Color)
		if err != nil {
			return err
		}
		cfg.Foreground = c
	}
	if o.Background != "" {
		c, err := d.ResolveColor(o.Background)
		if err != nil {
			return err
		}
		cfg.Background = c
	}
	if o.Fade != nil {
		cfg.Fade = *o.Fade
	}
	if o.LoopChance != nil {
		cfg.LoopChance = *o.LoopChance
	}
	if o.DoubleDraw != nil {
		cfg.DoubleDraw = *o.DoubleDraw
	}
	if o.Glow != nil {
		cfg.Glow = *o.Glow
	}
	return nil
}
