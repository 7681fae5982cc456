// Package config loads shaderbox settings from a TOML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = "shaderbox.toml"

// Environment variables read by ApplyEnv.
const (
	EnvDeployID = "DEPLOYMENT_ID"
	EnvPort     = "PORT"
	EnvLogLevel = "SHADERBOX_LOG_LEVEL"
)

// Config is the complete configuration.
type Config struct {
	Server Server `toml:"server"`
	Viewer Viewer `toml:"viewer"`
	Log    Log    `toml:"log"`
}

// Server configures the development server.
type Server struct {
	// Addr is the listen address.
	Addr string `toml:"addr"`

	// Root is the directory served and watched.
	Root string `toml:"root"`

	// DeployID switches the server to deploy mode: no file watching and
	// cache-busting query strings on scripts and stylesheets.
	DeployID string `toml:"deploy_id,omitempty"`

	// DebounceMS is the per-file change debounce in milliseconds.
	DebounceMS int `toml:"debounce_ms"`

	OpenBrowser bool `toml:"open_browser"`
}

// Debounce returns DebounceMS as a duration.
func (s Server) Debounce() time.Duration {
	return time.Duration(s.DebounceMS) * time.Millisecond
}

// Dev reports whether the server runs in development mode.
func (s Server) Dev() bool {
	return s.DeployID == ""
}

// URL is the address a browser on this machine should open.
func (s Server) URL() string {
	host, port, err := net.SplitHostPort(s.Addr)
	if err != nil {
		return "http://" + s.Addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}

// Viewer configures the native shader window.
type Viewer struct {
	Shader     string `toml:"shader"`
	Fullscreen bool   `toml:"fullscreen"`
	Width      int    `toml:"width"`
	Height     int    `toml:"height"`
	ShowFPS    bool   `toml:"show_fps"`
	Samples    int    `toml:"samples"`
}

// Log configures logging.
type Log struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: Server{
			Addr:       ":8000",
			Root:       "app",
			DebounceMS: 50,
		},
		Viewer: Viewer{
			Shader:  filepath.Join("app", "src", "world.glsl"),
			Width:   800,
			Height:  600,
			ShowFPS: true,
			Samples: 4,
		},
		Log: Log{
			Level:       "info",
			Development: true,
		},
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as TOML.
func Save(path string, cfg Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from environment variables. getenv is usually
// os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvDeployID); v != "" {
		c.Server.DeployID = v
	}
	if v := getenv(EnvPort); v != "" {
		host, _, err := net.SplitHostPort(c.Server.Addr)
		if err != nil {
			host = ""
		}
		c.Server.Addr = net.JoinHostPort(host, v)
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch {
	case c.Server.Root == "":
		return errors.New("server.root must not be empty")
	case c.Server.Addr == "":
		return errors.New("server.addr must not be empty")
	case c.Server.DebounceMS <= 0:
		return fmt.Errorf("server.debounce_ms must be positive, got %d", c.Server.DebounceMS)
	case c.Viewer.Width <= 0 || c.Viewer.Height <= 0:
		return fmt.Errorf("viewer size must be positive, got %dx%d", c.Viewer.Width, c.Viewer.Height)
	case c.Viewer.Samples < 0:
		return fmt.Errorf("viewer.samples must not be negative, got %d", c.Viewer.Samples)
	}
	return nil
}
