package server

import (
	"context"
	"fmt"
	"log/slog"

	dragonfly "github.com/df-mc/dragonfly/server"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/dm-vev/harotorch/server/plugin"
)

// Options configures Run.
type Options struct {
	// Dir is the directory holding config.toml and plugins.toml. The current
	// working directory is used if empty.
	Dir string
	// Log is the logger passed to the server and plugins. slog.Default() is
	// used if nil.
	Log *slog.Logger
	// Register is called with the plugin manager before configured plugins
	// are loaded, so that plugins linked into the binary can be registered.
	Register func(m *plugin.Manager)
	// Started, if set, is called once the server accepts players.
	Started func(srv *dragonfly.Server)
}

// Run starts a Dragonfly server with the plugin runtime attached and blocks
// until ctx is cancelled or the server closes. Plugins are disabled before the
// server closes its worlds.
func Run(ctx context.Context, opts Options) error {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}

	uc, err := ReadConfig(dir)
	if err != nil {
		return fmt.Errorf("read server config: %w", err)
	}
	pc, err := ReadPluginConfig(dir)
	if err != nil {
		return fmt.Errorf("read plugin config: %w", err)
	}
	conf, err := uc.Config(log)
	if err != nil {
		return fmt.Errorf("create server config: %w", err)
	}
	conns := NewConnRegistry()
	conns.Wrap(&conf)

	srv := conf.New()
	manager := plugin.NewManager(newPluginHost(srv, conns, log), pc)
	if opts.Register != nil {
		opts.Register(manager)
	}
	for _, w := range []*world.World{srv.World(), srv.Nether(), srv.End()} {
		if w != nil {
			w.Handle(manager.WorldHandlerWrap(w, nil))
		}
	}
	manager.LoadConfigured()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		<-ctx.Done()
		manager.Shutdown()
		if err := srv.Close(); err != nil {
			log.Error("Close server.", "error", err)
		}
	}()

	srv.Listen()
	if opts.Started != nil {
		opts.Started(srv)
	}
	for p := range srv.Accept() {
		p.Handle(manager.PlayerHandlerWrap(p, nil))
	}

	select {
	case <-ctx.Done():
		<-closed
	default:
		// The server was closed by other means, for example a /stop command.
		manager.Shutdown()
	}
	return nil
}
