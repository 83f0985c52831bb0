package server

import (
	"log/slog"

	dragonfly "github.com/df-mc/dragonfly/server"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/dm-vev/harotorch/server/plugin"
	"github.com/google/uuid"
)

type pluginHost struct {
	srv   *dragonfly.Server
	conns *ConnRegistry
	log   *slog.Logger
}

func newPluginHost(srv *dragonfly.Server, conns *ConnRegistry, log *slog.Logger) plugin.Host {
	return pluginHost{srv: srv, conns: conns, log: log}
}

func (h pluginHost) Logger() *slog.Logger {
	return h.log
}

func (h pluginHost) World() *world.World {
	return h.srv.World()
}

func (h pluginHost) Nether() *world.World {
	return h.srv.Nether()
}

func (h pluginHost) End() *world.World {
	return h.srv.End()
}

func (h pluginHost) Player(id uuid.UUID) (*world.EntityHandle, bool) {
	return h.srv.Player(id)
}

func (h pluginHost) Conn(id uuid.UUID) (plugin.Conn, bool) {
	if h.conns == nil {
		return nil, false
	}
	return h.conns.Conn(id)
}

var _ plugin.Host = pluginHost{}
