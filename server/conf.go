package server

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	dragonfly "github.com/df-mc/dragonfly/server"
	"github.com/dm-vev/harotorch/server/plugin"
	"github.com/pelletier/go-toml"
)

const (
	// ConfigFile is the name of the Dragonfly user configuration file.
	ConfigFile = "config.toml"
	// PluginConfigFile is the name of the plugin runtime configuration file.
	PluginConfigFile = "plugins.toml"
)

// DefaultPluginConfig returns the plugin runtime configuration written when no
// plugins.toml exists yet.
func DefaultPluginConfig() plugin.Config {
	return plugin.Config{
		Enabled:       true,
		Directory:     "plugins",
		DataDirectory: "data",
	}
}

// ReadConfig reads the Dragonfly user configuration from the config.toml file
// in dir, or creates the file with the default configuration if it does not
// yet exist.
func ReadConfig(dir string) (dragonfly.UserConfig, error) {
	return readOrCreate(filepath.Join(dir, ConfigFile), dragonfly.DefaultConfig())
}

// ReadPluginConfig reads the plugin runtime configuration from the
// plugins.toml file in dir. Relative plugin directories are resolved against
// dir.
func ReadPluginConfig(dir string) (plugin.Config, error) {
	c, err := readOrCreate(filepath.Join(dir, PluginConfigFile), DefaultPluginConfig())
	if err != nil {
		return plugin.Config{}, err
	}
	if c.Directory == "" {
		c.Directory = "plugins"
	}
	if !filepath.IsAbs(c.Directory) {
		c.Directory = filepath.Join(dir, c.Directory)
	}
	return c, nil
}

func readOrCreate[T any](path string, c T) (T, error) {
	var zero T
	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return zero, fmt.Errorf("stat %s: %w", filepath.Base(path), err)
		}
		data, err := toml.Marshal(c)
		if err != nil {
			return zero, fmt.Errorf("encode default %s: %w", filepath.Base(path), err)
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return zero, fmt.Errorf("create config directory: %w", err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return zero, fmt.Errorf("create default %s: %w", filepath.Base(path), err)
		}
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return zero, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if err := toml.Unmarshal(data, &c); err != nil {
		return zero, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return c, nil
}
