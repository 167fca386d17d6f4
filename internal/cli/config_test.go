package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if cfg.Engine != "dot" {
		t.Errorf("default engine = %q, want dot", cfg.Engine)
	}
	if cfg.Passes != 0 {
		t.Errorf("default passes = %d, want 0", cfg.Passes)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	appDir := filepath.Join(dir, appName)
	if err := os.MkdirAll(appDir, 0755); err != nil {
		t.Fatal(err)
	}
	doc := `
passes = 8
grid_width = 40
engine = "neato"
collapse = ["clb.ble[1]"]
`
	if err := os.WriteFile(filepath.Join(appDir, "config.toml"), []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if cfg.Passes != 8 || cfg.GridWidth != 40 || cfg.Engine != "neato" {
		t.Errorf("loadConfig() = %+v, want passes=8, grid_width=40, engine=neato", cfg)
	}
	if len(cfg.Collapse) != 1 || cfg.Collapse[0] != "clb.ble[1]" {
		t.Errorf("collapse = %v, want [clb.ble[1]]", cfg.Collapse)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	appDir := filepath.Join(dir, appName)
	if err := os.MkdirAll(appDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(appDir, "config.toml"), []byte("passes = [nope"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := loadConfig(); err == nil {
		t.Error("loadConfig() with a malformed file succeeded")
	}
}
