// Command harotorch runs a Dragonfly server with the HaroTorch plugin linked
// in. Other plugins may be loaded from the files listed in plugins.toml.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	dragonfly "github.com/df-mc/dragonfly/server"
	"github.com/df-mc/dragonfly/server/player/chat"
	"github.com/dm-vev/harotorch/harotorch"
	"github.com/dm-vev/harotorch/server"
	"github.com/dm-vev/harotorch/server/cmd/builtin"
	"github.com/dm-vev/harotorch/server/console"
	"github.com/dm-vev/harotorch/server/plugin"
)

func main() {
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	chat.Global.Subscribe(chat.StdoutSubscriber{})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := server.Run(ctx, server.Options{
		Log: log,
		Register: func(m *plugin.Manager) {
			builtin.Register(m, stop)
			m.Register("harotorch", harotorch.Init)
		},
		Started: func(srv *dragonfly.Server) {
			go console.New(srv, log).Run(ctx)
		},
	})
	if err != nil {
		log.Error("Server stopped with an error.", "error", err)
		os.Exit(1)
	}
}
