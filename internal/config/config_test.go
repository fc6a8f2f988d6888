package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load() on a missing file failed: %v", err)
	}
	if cfg != Default() {
		t.Errorf("missing file did not yield defaults: %+v", cfg)
	}
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}
	if cfg.Render.FPS != 60 || cfg.Input.ResizeDebounceMs != 1000 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "easel.toml")
	content := `
[session]
log_level = "debug"
debug = true

[render]
fps = 30
pixel_scale = 1.5

[input]
resize_debounce_ms = 250
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Session.LogLevel != "debug" || !cfg.Session.Debug {
		t.Errorf("session section not applied: %+v", cfg.Session)
	}
	if cfg.Render.FPS != 30 || cfg.Render.PixelScale != 1.5 {
		t.Errorf("render section not applied: %+v", cfg.Render)
	}
	if got := cfg.DebounceWindow(); got != 250*time.Millisecond {
		t.Errorf("DebounceWindow() = %v, want 250ms", got)
	}
	// Untouched sections keep their defaults.
	if cfg.Canvas.Foreground != "#e6e6e6" {
		t.Errorf("canvas defaults lost: %+v", cfg.Canvas)
	}
}

func TestLoad_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad level", "[session]\nlog_level = \"loud\"\n"},
		{"zero fps", "[render]\nfps = 0\n"},
		{"negative scale", "[render]\npixel_scale = -1.0\n"},
		{"negative debounce", "[input]\nresize_debounce_ms = -5\n"},
		{"not toml", "{\"json\": true}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "easel.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
