package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
	assert.True(t, cfg.Server.Dev())
	assert.Equal(t, 50*time.Millisecond, cfg.Server.Debounce())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	data := `
[server]
addr = "127.0.0.1:9000"
root = "site"

[viewer]
fullscreen = true
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, "site", cfg.Server.Root)
	assert.Equal(t, 50, cfg.Server.DebounceMS)
	assert.True(t, cfg.Viewer.Fullscreen)
	assert.Equal(t, 800, cfg.Viewer.Width)
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte("[server\naddr="), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	cfg := Default()
	cfg.Server.DeployID = "abc123"
	cfg.Viewer.ShowFPS = false
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvDeployID: "deploy-7",
		EnvPort:     "8080",
		EnvLogLevel: "DEBUG",
	}
	cfg := Default()
	cfg.ApplyEnv(func(k string) string { return env[k] })
	assert.Equal(t, "deploy-7", cfg.Server.DeployID)
	assert.False(t, cfg.Server.Dev())
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)

	cfg = Default()
	cfg.Server.Addr = "127.0.0.1:8000"
	cfg.ApplyEnv(func(k string) string { return env[k] })
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr)
}

func TestURL(t *testing.T) {
	assert.Equal(t, "http://localhost:8000", Server{Addr: ":8000"}.URL())
	assert.Equal(t, "http://127.0.0.1:9000", Server{Addr: "127.0.0.1:9000"}.URL())
	assert.Equal(t, "http://localhost:80", Server{Addr: "0.0.0.0:80"}.URL())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty root", func(c *Config) { c.Server.Root = "" }},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }},
		{"zero debounce", func(c *Config) { c.Server.DebounceMS = 0 }},
		{"zero width", func(c *Config) { c.Viewer.Width = 0 }},
		{"negative samples", func(c *Config) { c.Viewer.Samples = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
