package main

import (
	"bytes"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaderbox/shaderbox/internal/config"
)

func TestWrapText(t *testing.T) {
	assert.Equal(t, []string{"abc", "de"}, wrapText("abcde", 3))
	assert.Equal(t, []string{"a", "", "b"}, wrapText("a\n\nb\n", 10))
	assert.Equal(t, []string{"    x"}, wrapText("\tx", 10))
	assert.Equal(t, []string{"a", "b"}, wrapText("ab", 0))
}

func TestRasterizeText(t *testing.T) {
	img := rasterizeText([]string{"hello", "hi"}, color.White, color.Transparent)
	b := img.Bounds()
	assert.Equal(t, 5*glyphWidth+2*textPadding, b.Dx())
	assert.Equal(t, 2*lineHeight+2*textPadding, b.Dy())

	lit := 0
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 0 {
			lit++
		}
	}
	assert.Positive(t, lit)
}

func TestScaleCursor(t *testing.T) {
	x, y := scaleCursor(100, 50, 800, 600, 1600, 1200)
	assert.Equal(t, 200.0, x)
	assert.Equal(t, 100.0, y)

	x, y = scaleCursor(100, 50, 0, 0, 1600, 1200)
	assert.Equal(t, 100.0, x)
	assert.Equal(t, 50.0, y)
}

func TestSettingsApply(t *testing.T) {
	cfg := config.Default()
	vals := valuesFromConfig(cfg)
	got, err := vals.apply(cfg)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)

	vals.Addr = " :9000 "
	vals.Width = "1024"
	vals.Fullscreen = true
	vals.DeployID = "rel-1"
	got, err = vals.apply(cfg)
	require.NoError(t, err)
	assert.Equal(t, ":9000", got.Server.Addr)
	assert.Equal(t, 1024, got.Viewer.Width)
	assert.True(t, got.Viewer.Fullscreen)
	assert.Equal(t, "rel-1", got.Server.DeployID)

	vals.Height = "tall"
	_, err = vals.apply(cfg)
	assert.EqualError(t, err, "height must be a whole number")

	vals.Height = "600"
	vals.Root = ""
	_, err = vals.apply(cfg)
	assert.Error(t, err)
}

func TestSetupKeepsFileConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shaderbox.toml")
	cfg := config.Default()
	cfg.Server.Addr = ":9000"
	require.NoError(t, config.Save(path, cfg))

	t.Setenv(config.EnvDeployID, "env-release")
	t.Setenv(config.EnvPort, "7000")
	t.Setenv(config.EnvLogLevel, "debug")

	a := &cli{configPath: path}
	require.NoError(t, a.setup(nil, nil))
	defer a.teardown(nil, nil)

	assert.Equal(t, "env-release", a.cfg.Server.DeployID)
	assert.Equal(t, ":7000", a.cfg.Server.Addr)
	assert.Equal(t, "debug", a.cfg.Log.Level)

	assert.Equal(t, cfg, a.fileCfg)

	// What the settings dialog would save round-trips without the overrides.
	saved, err := valuesFromConfig(a.fileCfg).apply(a.fileCfg)
	require.NoError(t, err)
	require.NoError(t, config.Save(path, saved))
	reloaded, err := config.Load(path)
	require.NoError(t, err)
	assert.Empty(t, reloaded.Server.DeployID)
	assert.Equal(t, ":9000", reloaded.Server.Addr)
	assert.Equal(t, "info", reloaded.Log.Level)
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	project := filepath.Join(dir, "demo")

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", filepath.Join(dir, "none.toml"), "init", project})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, out.String(), "src/world.glsl")
	assert.Equal(t, 4, strings.Count(out.String(), "create"))
	_, err := os.Stat(filepath.Join(project, "index.html"))
	assert.NoError(t, err)
}
