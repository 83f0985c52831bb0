package builtin

import (
	"slices"
	"strings"

	"github.com/df-mc/dragonfly/server/cmd"
	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/dm-vev/harotorch/server/plugin"
)

type pluginListCommand struct {
	List    cmd.SubCommand `cmd:"list"`
	plugins pluginManager
}

type pluginEnableCommand struct {
	Enable  cmd.SubCommand `cmd:"enable"`
	File    string         `cmd:"file"`
	plugins pluginManager
}

type pluginDisableCommand struct {
	Disable cmd.SubCommand `cmd:"disable"`
	Name    string         `cmd:"name"`
	plugins pluginManager
}

func newPluginCommand(plugins pluginManager) cmd.Command {
	return cmd.New(
		"plugin",
		"Manages plugins.",
		[]string{"plugins", "pl"},
		pluginListCommand{plugins: plugins},
		pluginEnableCommand{plugins: plugins},
		pluginDisableCommand{plugins: plugins},
	)
}

func (p pluginListCommand) Run(_ cmd.Source, o *cmd.Output, _ *world.Tx) {
	if !p.plugins.Enabled() {
		o.Print("Plugin subsystem disabled.")
		return
	}
	infos := p.plugins.Infos()
	if len(infos) == 0 {
		o.Print("No plugins loaded.")
		return
	}
	slices.SortStableFunc(infos, func(a, b plugin.Info) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	for _, info := range infos {
		o.Print(describe(info))
	}
}

func (p pluginEnableCommand) Run(_ cmd.Source, o *cmd.Output, _ *world.Tx) {
	if !p.plugins.Enabled() {
		o.Error("Plugin subsystem disabled.")
		return
	}
	file := strings.TrimSpace(p.File)
	if file == "" {
		o.Error("Plugin file path is required.")
		return
	}
	info, err := p.plugins.Enable(file)
	if err != nil {
		o.Error(err)
		return
	}
	o.Printf("Enabled %s.", describe(info))
}

func (p pluginDisableCommand) Run(_ cmd.Source, o *cmd.Output, _ *world.Tx) {
	if !p.plugins.Enabled() {
		o.Error("Plugin subsystem disabled.")
		return
	}
	name := strings.TrimSpace(p.Name)
	if name == "" {
		o.Error("Plugin name is required.")
		return
	}
	info, err := p.plugins.Disable(name)
	if err != nil {
		o.Error(err)
		return
	}
	o.Printf("Disabled %s.", info.Name)
}

func (pluginListCommand) Allow(src cmd.Source) bool    { return console(src) }
func (pluginEnableCommand) Allow(src cmd.Source) bool  { return console(src) }
func (pluginDisableCommand) Allow(src cmd.Source) bool { return console(src) }

// console reports if src is not a player.
func console(src cmd.Source) bool {
	_, isPlayer := src.(*player.Player)
	return !isPlayer
}

// describe formats info as "name vversion (path)". Linked plugins have no
// path.
func describe(info plugin.Info) string {
	var b strings.Builder
	b.WriteString(info.Name)
	if info.Version != "" {
		b.WriteString(" v" + info.Version)
	}
	if info.Path != "" {
		b.WriteString(" (" + info.Path + ")")
	} else {
		b.WriteString(" (linked)")
	}
	return b.String()
}
