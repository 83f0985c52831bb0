package builtin

import "github.com/dm-vev/harotorch/server/plugin"

// pluginManager is the part of *plugin.Manager used by the built-in
// commands.
type pluginManager interface {
	Enabled() bool
	Infos() []plugin.Info
	Enable(path string) (plugin.Info, error)
	Disable(name string) (plugin.Info, error)
}
