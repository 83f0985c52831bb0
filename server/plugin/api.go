package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/df-mc/dragonfly/server/cmd"
	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/google/uuid"
)

// API exposes functionality of the server core to plugins.
type API struct {
	manager *Manager
	host    Host
	name    atomic.Value // stores string
	ctx     atomic.Pointer[ctxBox]
	dataDir atomic.Value // stores string
}

// ctxBox lets contexts of any concrete type share one atomic pointer.
type ctxBox struct {
	ctx context.Context
}

func newAPI(manager *Manager, host Host, name string) *API {
	api := &API{manager: manager, host: host}
	api.name.Store(name)
	api.ctx.Store(&ctxBox{ctx: context.Background()})
	return api
}

func (api *API) setName(name string) {
	if name == "" {
		return
	}
	api.name.Store(name)
}

func (api *API) pluginName() string {
	if v := api.name.Load(); v != nil {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return "plugin"
}

func (api *API) setContext(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	api.ctx.Store(&ctxBox{ctx: ctx})
}

// Context returns a cancellable context that is invalidated when the plugin is disabled.
func (api *API) Context() context.Context {
	if box := api.ctx.Load(); box != nil && box.ctx != nil {
		return box.ctx
	}
	return context.Background()
}

func (api *API) setDataDirectory(dir string) {
	if dir == "" {
		api.dataDir.Store("")
		return
	}
	api.dataDir.Store(filepath.Clean(dir))
}

// DataDirectory returns the path to the plugin's data directory.
func (api *API) DataDirectory() string {
	if v := api.dataDir.Load(); v != nil {
		if dir, ok := v.(string); ok && dir != "" {
			return dir
		}
	}
	return api.manager.pluginDataDirectory(api.pluginName())
}

// DataPath resolves name relative to the plugin data directory. Absolute paths
// and paths escaping the data directory are rejected.
func (api *API) DataPath(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("data path is empty")
	}
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("data path must be relative")
	}
	base := api.DataDirectory()
	target := filepath.Join(base, filepath.Clean(name))
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("data path escapes plugin directory")
	}
	return target, nil
}

// EnsureDataSubdir ensures a subdirectory inside the plugin data directory exists and returns its path.
func (api *API) EnsureDataSubdir(name string) (string, error) {
	if name == "" {
		dir := api.DataDirectory()
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
		return dir, nil
	}
	path, err := api.DataPath(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", err
	}
	return path, nil
}

// Go launches fn on a new goroutine tied to the plugin's lifecycle context. Panics cause the plugin to be disabled.
func (api *API) Go(fn func(context.Context)) {
	if fn == nil {
		return
	}
	ctx := api.Context()
	name := api.pluginName()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				api.manager.handlePluginPanic(name, r)
			}
		}()
		fn(ctx)
	}()
}

// After runs fn once after d has passed. The returned Task may be used to
// cancel the call. It is cancelled automatically when the plugin is disabled.
func (api *API) After(d time.Duration, fn func()) *Task {
	t := newTask(api.Context())
	if fn == nil {
		t.finish()
		return t
	}
	api.Go(func(context.Context) {
		t.runAfter(d, fn)
	})
	return t
}

// Every runs fn after delay and then every interval until the returned Task is
// cancelled or the plugin is disabled. A non-positive interval is treated as
// one server tick.
func (api *API) Every(delay, interval time.Duration, fn func()) *Task {
	t := newTask(api.Context())
	if fn == nil {
		t.finish()
		return t
	}
	if interval <= 0 {
		interval = time.Second / 20
	}
	api.Go(func(context.Context) {
		t.runEvery(delay, interval, fn)
	})
	return t
}

// Logger returns a logger scoped to the plugin's name for structured logging.
func (api *API) Logger() *slog.Logger {
	logger := api.host.Logger()
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With("plugin", api.pluginName())
}

// Worlds returns every non-nil world managed by the server.
func (api *API) Worlds() []*world.World {
	worlds := make([]*world.World, 0, 3)
	for _, w := range []*world.World{api.host.World(), api.host.Nether(), api.host.End()} {
		if w != nil {
			worlds = append(worlds, w)
		}
	}
	return worlds
}

// Conn returns the connection of the player with the UUID passed so that
// packets may be sent to that player only.
func (api *API) Conn(id uuid.UUID) (Conn, bool) {
	return api.host.Conn(id)
}

// RegisterCommand registers a command with the global command registry.
func (api *API) RegisterCommand(command cmd.Command) {
	cmd.Register(command)
}

// ExecPlayer runs fn in the world transaction of the player with the UUID
// passed. It blocks until fn has run and reports if the player was online.
func (api *API) ExecPlayer(id uuid.UUID, fn func(tx *world.Tx, p *player.Player)) bool {
	if fn == nil {
		return false
	}
	handle, ok := api.host.Player(id)
	if !ok {
		return false
	}
	return execPlayerHandle(handle, fn)
}

// Events returns helpers for subscribing to player and world events.
func (api *API) Events() *PluginEvents {
	return &PluginEvents{api: api}
}

// PluginEvents exposes registration helpers for subscribing to core event streams.
type PluginEvents struct {
	api *API
}

// OnPlayer registers a player.Handler that is invoked for player events.
// The returned function removes the handler when called.
func (pe *PluginEvents) OnPlayer(handler player.Handler) func() {
	if pe == nil || handler == nil {
		return func() {}
	}
	return pe.api.manager.events.addPlayer(pe.api.pluginName(), handler)
}

// OnWorld registers a world.Handler invoked for each world managed by the server.
// The returned function removes the handler when called.
func (pe *PluginEvents) OnWorld(handler world.Handler) func() {
	if pe == nil || handler == nil {
		return func() {}
	}
	return pe.api.manager.events.addWorld(pe.api.pluginName(), handler)
}

// Clear removes all handlers previously registered by the plugin.
func (pe *PluginEvents) Clear() {
	if pe == nil {
		return
	}
	pe.api.manager.events.clear(pe.api.pluginName())
}

func execPlayerHandle(handle *world.EntityHandle, fn func(*world.Tx, *player.Player)) bool {
	if handle == nil || fn == nil {
		return false
	}
	executed := false
	ok := handle.ExecWorld(func(tx *world.Tx, entity world.Entity) {
		if p, ok := entity.(*player.Player); ok {
			fn(tx, p)
			executed = true
		}
	})
	return ok && executed
}
