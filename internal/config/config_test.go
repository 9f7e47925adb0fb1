package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("TWEENFLOW_CONFIG", "")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Journal.Path != filepath.Join(home, ".tweenflow", "journal.db") {
		t.Errorf("unexpected journal path %q", c.Journal.Path)
	}
	if !c.Journal.Enabled || c.Journal.BatchSize != 256 {
		t.Errorf("unexpected journal defaults %+v", c.Journal)
	}
	if c.Player.FPS != 30 || !c.Player.Loop || c.Player.Duration != 0 {
		t.Errorf("unexpected player defaults %+v", c.Player)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "tweenflow.toml")
	data := "[journal]\nbatch_size = 16\nenabled = false\n\n[player]\nfps = 60\nduration = 2.5\n\n[scene]\npath = \"scenes/demo.toml\"\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TWEENFLOW_CONFIG", path)
	t.Setenv("TWEENFLOW_PLAYER_LOOP", "false")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if c.Journal.BatchSize != 16 || c.Journal.Enabled {
		t.Errorf("file values not applied: %+v", c.Journal)
	}
	if c.Player.FPS != 60 || c.Player.Duration != 2.5 || c.Player.Loop {
		t.Errorf("unexpected player config %+v", c.Player)
	}
	if c.Scene.Path != "scenes/demo.toml" {
		t.Errorf("unexpected scene path %q", c.Scene.Path)
	}
}

func TestLoadRejectsBrokenFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "broken.toml")
	if err := os.WriteFile(path, []byte("[journal\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TWEENFLOW_CONFIG", path)

	if _, err := Load(); err == nil {
		t.Error("expected error for malformed config file")
	}
}
