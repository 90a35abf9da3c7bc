package config

import (
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Render.Width != 0 {
		t.Errorf("default width = %d, want 0 (detect)", cfg.Render.Width)
	}
	if cfg.Theme.Hue != 210 {
		t.Errorf("default hue = %v, want 210", cfg.Theme.Hue)
	}
	if cfg.Code.Style != "monokai" || !cfg.Code.Highlight {
		t.Errorf("code defaults = %+v", cfg.Code)
	}
	if !cfg.Think.Show {
		t.Error("think blocks hidden by default")
	}
}

func TestDirHonorsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	dir, err := Dir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != filepath.Join("/tmp/xdg", "streamdown") {
		t.Errorf("dir = %q", dir)
	}
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if *cfg != Default() {
		t.Errorf("loaded config %+v differs from defaults", *cfg)
	}
}
