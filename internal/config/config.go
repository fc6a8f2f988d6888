// Package config loads the easel configuration from a TOML file, layered
// under command-line flags. A missing file is not an error; defaults
// apply.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config is the whole configuration tree.
type Config struct {
	Session SessionConfig `toml:"session"`
	Render  RenderConfig  `toml:"render"`
	Input   InputConfig   `toml:"input"`
	Canvas  CanvasConfig  `toml:"canvas"`
}

// SessionConfig controls logging and diagnostics.
type SessionConfig struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`

	// Debug enables protocol tracing and is forwarded to the worker in
	// the start message.
	Debug bool `toml:"debug"`
}

// RenderConfig controls the refresh loop and surface scaling.
type RenderConfig struct {
	// FPS is the refresh rate of the frame loop.
	FPS int `toml:"fps"`

	// PixelScale is the device-pixel ratio applied to all geometry.
	PixelScale float64 `toml:"pixel_scale"`
}

// InputConfig controls the input pipelines.
type InputConfig struct {
	// ResizeDebounceMs is the quiet window a resize burst must respect
	// before one resize message goes out.
	ResizeDebounceMs int `toml:"resize_debounce_ms"`
}

// CanvasConfig sets the initial style state.
type CanvasConfig struct {
	Foreground string  `toml:"foreground"`
	Background string  `toml:"background"`
	Special    string  `toml:"special"`
	FontSize   float64 `toml:"font_size"`
}

// Default returns the configuration used when no file overrides it.
func Default() Config {
	return Config{
		Session: SessionConfig{LogLevel: "info"},
		Render:  RenderConfig{FPS: 60, PixelScale: 2.0},
		Input:   InputConfig{ResizeDebounceMs: 1000},
		Canvas: CanvasConfig{
			Foreground: "#e6e6e6",
			Background: "#1c1c1c",
			Special:    "#ff5f87",
			FontSize:   13,
		},
	}
}

// Load reads the file at path over the defaults. A missing file returns
// the defaults with no error; a malformed file is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects values the components cannot work with.
func (c *Config) Validate() error {
	switch c.Session.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Session.LogLevel)
	}
	if c.Render.FPS <= 0 || c.Render.FPS > 240 {
		return fmt.Errorf("fps %d out of range 1..240", c.Render.FPS)
	}
	if c.Render.PixelScale <= 0 {
		return fmt.Errorf("pixel_scale %v must be positive", c.Render.PixelScale)
	}
	if c.Input.ResizeDebounceMs < 0 {
		return fmt.Errorf("resize_debounce_ms %d must not be negative", c.Input.ResizeDebounceMs)
	}
	if c.Canvas.FontSize <= 0 {
		return fmt.Errorf("font_size %v must be positive", c.Canvas.FontSize)
	}
	return nil
}

// DebounceWindow returns the resize quiet window as a duration.
func (c *Config) DebounceWindow() time.Duration {
	return time.Duration(c.Input.ResizeDebounceMs) * time.Millisecond
}
