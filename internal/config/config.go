// Package config holds the per-instance rain parameters, the built-in
// presets and the optional YAML file that overrides them.
package config

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"
)

// === RAIN CONFIG ===

// MinGlyphSize is the smallest glyph size accepted, in pixels.
const MinGlyphSize = 1

// RainConfig holds the parameters of one rain instance.
// It is immutable for the lifetime of the instance.
type RainConfig struct {
	Name       string         // Preset name, used in logs
	GlyphSize  float64        // Glyph size S in pixels
	Alphabet   []string       // Glyphs, one display unit each
	Foreground colorful.Color // Glyph color
	Background colorful.Color // Trail fade color
	Fade       float64        // Trail fade opacity α, in (0,1)
	LoopChance float64        // Per-frame reset chance p once past the bottom
	DoubleDraw bool           // Draw every glyph twice for intensity
	Glow       bool           // Saturate and brighten glyphs
}

// Validate checks the configuration for validity.
func (c *RainConfig) Validate() error {
	if !finite(c.GlyphSize) || c.GlyphSize < MinGlyphSize {
		return fmt.Errorf("glyph size must be at least %d pixel: got %g", MinGlyphSize, c.GlyphSize)
	}
	if len(c.Alphabet) == 0 {
		return errors.New("alphabet cannot be empty")
	}
	for i, g := range c.Alphabet {
		if g == "" {
			return fmt.Errorf("alphabet entry %d is empty", i)
		}
	}
	if !finite(c.Fade) || c.Fade <= 0 || c.Fade >= 1 {
		return fmt.Errorf("fade out of range (0-1 exclusive): got %g", c.Fade)
	}
	if !finite(c.LoopChance) || c.LoopChance < 0 || c.LoopChance > 1 {
		return fmt.Errorf("loop chance out of range (0-1): got %g", c.LoopChance)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ParseAlphabet splits s into grapheme clusters so every entry renders as a
// single display unit.
func ParseAlphabet(s string) []string {
	var glyphs []string
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		glyphs = append(glyphs, gr.Str())
	}
	return glyphs
}

// === PRESETS ===

// Preset names.
const (
	PresetBackground = "background"
	PresetOverlay    = "overlay"
	PresetLens       = "lens"
)

// Named glyph sets.
const (
	Katakana      = "アァイィウヴエェオカキクケコサシスセソタチツテトナニヌネノハヒフヘホマミムメモヤユヨラリルレロワン"
	CodeFragments = "01{}();<>=+- React.useEffect const let return"
)

// Data stores predefined color themes and character sets.
type Data struct {
	ColorThemes map[string]colorful.Color
	CharSets    map[string]string
}

// DefaultData is the built-in theme and charset catalog.
var DefaultData = Data{
	ColorThemes: map[string]colorful.Color{
		"green":  rgb(0, 255, 0),
		"amber":  rgb(255, 191, 0),
		"red":    rgb(255, 0, 0),
		"orange": rgb(255, 165, 0),
		"blue":   rgb(0, 150, 255),
		"purple": rgb(128, 0, 255),
		"cyan":   rgb(0, 255, 255),
		"pink":   rgb(255, 20, 147),
		"white":  rgb(255, 255, 255),
		"mint":   rgb(137, 179, 137),
		"teal":   rgb(0, 79, 79),
	},
	CharSets: map[string]string{
		"katakana": Katakana,
		"matrix":   "ｱｲｳｴｵｶｷｸｹｺｻｼｽｾｿﾀﾁﾂﾃﾄﾅﾆﾇﾈﾉﾊﾋﾌﾍﾎﾏﾐﾑﾒﾓﾔﾕﾖﾗﾘﾙﾚﾛﾜﾝ",
		"code":     CodeFragments,
		"greek":    "αβγδεζηθικλμνξοπρστυφχψω",
		"binary":   "01",
		"hex":      "0123456789ABCDEF",
		"symbols":  "!@#$%^&*()_+-=[]{}|;':\",./<>?",
		"dna":      "ATCG",
		"arrows":   "←↑→↓↖↗↘↙",
		"braille":  "⠁⠂⠃⠄⠅⠆⠇⠈⠉⠊⠋⠌⠍⠎⠏",
		"ascii":    "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789",
		"minimal":  ".*+",
	},
}

// Themes returns the color theme names in sorted order.
func (d Data) Themes() []string {
	return sortedKeys(d.ColorThemes)
}

// Sets returns the charset names in sorted order.
func (d Data) Sets() []string {
	return sortedKeys(d.CharSets)
}

// ResolveColor accepts a theme name or a hex color.
func (d Data) ResolveColor(name string) (colorful.Color, error) {
	if c, ok := d.ColorThemes[strings.ToLower(name)]; ok {
		return c, nil
	}
	c, err := colorful.Hex(name)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("unknown color %q: %w", name, err)
	}
	return c, nil
}

// ResolveAlphabet accepts a charset name or a literal glyph string.
func (d Data) ResolveAlphabet(name string) ([]string, error) {
	if set, ok := d.CharSets[strings.ToLower(name)]; ok {
		return ParseAlphabet(set), nil
	}
	if name == "" {
		return nil, errors.New("character set cannot be empty")
	}
	return ParseAlphabet(name), nil
}

// Defaults returns the built-in configuration of the named preset.
func Defaults(name string) (RainConfig, bool) {
	switch name {
	case PresetBackground:
		return RainConfig{
			Name:       PresetBackground,
			GlyphSize:  14,
			Alphabet:   ParseAlphabet(Katakana),
			Foreground: rgb(0, 255, 0),
			Background: rgb(0, 0, 0),
			Fade:       0.05,
			LoopChance: 0.025,
		}, true
	case PresetOverlay:
		return RainConfig{
			Name:       PresetOverlay,
			GlyphSize:  12,
			Alphabet:   ParseAlphabet(CodeFragments),
			Foreground: rgb(0, 255, 0),
			Background: rgb(9, 245, 29),
			Fade:       0.81,
			LoopChance: 0.025,
		}, true
	case PresetLens:
		return RainConfig{
			Name:       PresetLens,
			GlyphSize:  12,
			Alphabet:   ParseAlphabet(Katakana),
			Foreground: rgb(0, 255, 0),
			Background: rgb(0, 0, 0),
			Fade:       0.12,
			LoopChance: 0.035,
			DoubleDraw: true,
			Glow:       true,
		}, true
	}
	return RainConfig{}, false
}

// PresetNames lists the presets in the order instances are layered.
func PresetNames() []string {
	return []string{PresetBackground, PresetOverlay, PresetLens}
}

func rgb(r, g, b uint8) colorful.Color {
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
