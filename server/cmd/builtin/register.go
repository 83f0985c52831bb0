package builtin

import (
	"github.com/df-mc/dragonfly/server/cmd"
)

// Register registers the built-in command set. stop is called by /stop to
// shut the server down.
func Register(plugins pluginManager, stop func()) {
	cmd.Register(newPluginCommand(plugins))
	cmd.Register(newStopCommand(stop))
	cmd.Register(newAboutCommand(plugins))
}
