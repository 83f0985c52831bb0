package server

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadPluginConfigCreatesDefault(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c, err := ReadPluginConfig(dir)
	if err != nil {
		t.Fatalf("ReadPluginConfig() error = %v", err)
	}
	if !c.Enabled {
		t.Fatalf("default plugin config is not enabled")
	}
	if want := filepath.Join(dir, "plugins"); c.Directory != want {
		t.Fatalf("Directory = %q, want %q", c.Directory, want)
	}
	if _, err := os.Stat(filepath.Join(dir, PluginConfigFile)); err != nil {
		t.Fatalf("default %s was not written: %v", PluginConfigFile, err)
	}
}

func TestReadPluginConfigExisting(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	data := []byte("Enabled = true\nDirectory = \"mods\"\nDisabled = [\"HaroTorch\"]\n")
	if err := os.WriteFile(filepath.Join(dir, PluginConfigFile), data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	c, err := ReadPluginConfig(dir)
	if err != nil {
		t.Fatalf("ReadPluginConfig() error = %v", err)
	}
	if want := filepath.Join(dir, "mods"); c.Directory != want {
		t.Fatalf("Directory = %q, want %q", c.Directory, want)
	}
	if len(c.Disabled) != 1 || c.Disabled[0] != "HaroTorch" {
		t.Fatalf("Disabled = %v, want [HaroTorch]", c.Disabled)
	}
}

func TestReadPluginConfigInvalid(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, PluginConfigFile), []byte("Enabled = ="), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := ReadPluginConfig(dir); err == nil {
		t.Fatalf("ReadPluginConfig() with malformed file succeeded")
	}
}
