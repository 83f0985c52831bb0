package plugin

// Config controls the behaviour of the plugin runtime.
type Config struct {
	// Enabled specifies if the plugin subsystem should be initialised. When
	// false, neither linked nor file plugins are enabled.
	Enabled bool `toml:"Enabled"`
	// Directory is the base directory used to resolve relative plugin file
	// paths and the default data directory.
	Directory string `toml:"Directory"`
	// DataDirectory controls where plugin data folders should be created. If
	// empty, a `data` directory inside Directory will be used. Relative
	// paths are resolved against Directory.
	DataDirectory string `toml:"DataDirectory"`
	// Files enumerates Go plugin files (.so) to load in addition to the
	// plugins linked into the binary.
	Files []string `toml:"Files"`
	// Disabled lists plugin names that should not be enabled even though
	// they are linked into the binary.
	Disabled []string `toml:"Disabled"`
}
