package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "matrixfx", cmd.Use)
	assert.True(t, cmd.SilenceErrors)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"site", "rain", "crack", "presets"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"debug", "log", "config", "cell", "fps"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}

	site, _, err := cmd.Find([]string{"site"})
	require.NoError(t, err)
	page := site.Flags().Lookup("page")
	require.NotNil(t, page)
	assert.Equal(t, "home", page.DefValue)
}

func TestPresetsGolden(t *testing.T) {
	out, err := execute(t, "presets")
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "presets", []byte(out))
}

func TestPresetsWithConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fx.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
cell: 8x16
fps: 24
presets:
  background:
    alphabet: binary
    color: amber
`), 0o644))

	out, err := execute(t, "presets", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "glyphs 2    color #ffbf00")
	assert.Contains(t, out, "FPS: 24 (1-120)")
	assert.Contains(t, out, "Cell: 8x16 pixels")

	out, err = execute(t, "presets", "--config", path, "--cell", "10x20", "--fps", "60")
	require.NoError(t, err)
	assert.Contains(t, out, "FPS: 60 (1-120)")
	assert.Contains(t, out, "Cell: 10x20 pixels")
}

func TestBadGlobalFlags(t *testing.T) {
	_, err := execute(t, "presets", "--fps", "500")
	assert.ErrorContains(t, err, "fps out of range")

	_, err = execute(t, "presets", "--cell", "wide")
	assert.Error(t, err)

	_, err = execute(t, "presets", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestCrackCommandWritesSVG(t *testing.T) {
	out, err := execute(t, "crack", "--seed", "7", "--rays", "5", "--segments", "3")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg"`))
	assert.Contains(t, out, `viewBox="0 0 1280 800"`)
	assert.Equal(t, 5, strings.Count(out, "<polyline"))

	again, err := execute(t, "crack", "--seed", "7", "--rays", "5", "--segments", "3")
	require.NoError(t, err)
	assert.Equal(t, out, again, "same seed, same crack")
}

func TestCrackCommandToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crack.svg")
	out, err := execute(t, "crack", "--seed", "1", "-o", path, "--x", "100", "--y", "50")
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `cx="100" cy="50"`)
}

func TestCrackCommandRejectsBadViewport(t *testing.T) {
	_, err := execute(t, "crack", "--width", "0")
	assert.Error(t, err)

	_, err = execute(t, "crack", "--height", "NaN")
	assert.Error(t, err)
}

func TestRainRejectsBadOptions(t *testing.T) {
	_, err := execute(t, "rain", "--preset", "storm")
	assert.ErrorContains(t, err, "unknown preset")

	_, err = execute(t, "rain", "--color", "not-a-color")
	assert.ErrorContains(t, err, "unknown color")

	path := filepath.Join(t.TempDir(), "tiny.yaml")
	require.NoError(t, os.WriteFile(path, []byte("presets:\n  background:\n    glyph_size: 1e-300\n"), 0o644))
	_, err = execute(t, "rain", "--config", path)
	assert.ErrorContains(t, err, "glyph size")
}

func TestRainConfigFlags(t *testing.T) {
	set, err := (&RootOptions{}).resolve()
	require.NoError(t, err)

	cfg, err := (&RainOptions{Preset: "lens", Color: "amber", Chars: "binary"}).rainConfig(set)
	require.NoError(t, err)
	assert.Equal(t, "#ffbf00", cfg.Foreground.Hex())
	assert.Equal(t, []string{"0", "1"}, cfg.Alphabet)
	assert.True(t, cfg.Glow)
}

func TestSiteRejectsUnknownPage(t *testing.T) {
	_, err := execute(t, "site", "--page", "pricing")
	assert.ErrorContains(t, err, "unknown page")

	_, err = execute(t, "site", "--volume", "3")
	assert.ErrorContains(t, err, "volume out of range")
}
