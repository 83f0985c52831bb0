package builtin

import (
	"github.com/df-mc/dragonfly/server/cmd"
	"github.com/df-mc/dragonfly/server/world"
)

type stopCommand struct {
	stop func()
}

func newStopCommand(stop func()) cmd.Command {
	return cmd.New("stop", "Stops the server.", nil, stopCommand{stop: stop})
}

func (s stopCommand) Run(_ cmd.Source, o *cmd.Output, _ *world.Tx) {
	o.Print("Stopping server...")
	s.stop()
}

func (stopCommand) Allow(src cmd.Source) bool { return console(src) }
