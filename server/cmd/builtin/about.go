package builtin

import (
	"runtime"
	"runtime/debug"
	"time"

	"github.com/df-mc/dragonfly/server/cmd"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
)

var started = time.Now()

type aboutCommand struct {
	plugins pluginManager
}

func newAboutCommand(plugins pluginManager) cmd.Command {
	return cmd.New("about", "Displays server and plugin build information.", nil, aboutCommand{plugins: plugins})
}

func (a aboutCommand) Run(_ cmd.Source, o *cmd.Output, _ *world.Tx) {
	o.Print("Dragonfly with HaroTorch")
	o.Printf("Minecraft protocol: %s", protocol.CurrentVersion)

	goVersion := runtime.Version()
	info, ok := debug.ReadBuildInfo()
	if ok && info.GoVersion != "" {
		goVersion = info.GoVersion
	}
	o.Printf("Go runtime: %s", goVersion)
	if ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" && setting.Value != "" {
				o.Printf("Commit: %s", setting.Value)
				break
			}
		}
	}
	o.Printf("Uptime: %s", time.Since(started).Round(time.Second))
	for _, p := range a.plugins.Infos() {
		o.Printf("Plugin: %s", describe(p))
	}
}
