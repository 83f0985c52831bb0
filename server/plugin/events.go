package plugin

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/item"
	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/world"
)

type eventRegistration[T any] struct {
	plugin  string
	handler T
	id      uint64
}

type eventList[T any] struct {
	regs []eventRegistration[T]
	next uint64
}

func (l *eventList[T]) add(plugin string, handler T) uint64 {
	id := l.next
	l.next++
	l.regs = append(l.regs, eventRegistration[T]{plugin: plugin, handler: handler, id: id})
	return id
}

func (l *eventList[T]) removeByID(id uint64) {
	regs := l.regs[:0]
	for _, reg := range l.regs {
		if reg.id != id {
			regs = append(regs, reg)
		}
	}
	l.regs = regs
}

func (l *eventList[T]) removePlugin(plugin string) {
	regs := l.regs[:0]
	for _, reg := range l.regs {
		if reg.plugin != plugin {
			regs = append(regs, reg)
		}
	}
	l.regs = regs
}

func (l *eventList[T]) rename(oldName, newName string) {
	for i := range l.regs {
		if l.regs[i].plugin == oldName {
			l.regs[i].plugin = newName
		}
	}
}

func (l *eventList[T]) snapshot() []eventRegistration[T] {
	if len(l.regs) == 0 {
		return nil
	}
	out := make([]eventRegistration[T], len(l.regs))
	copy(out, l.regs)
	return out
}

// eventHub stores the handlers registered by plugins. Chains read immutable
// snapshots so that dispatch never holds the registration lock.
type eventHub struct {
	mu          sync.Mutex
	log         *slog.Logger
	manager     *Manager
	player      eventList[player.Handler]
	world       eventList[world.Handler]
	playerChain atomic.Value // []eventRegistration[player.Handler]
	worldChain  atomic.Value // []eventRegistration[world.Handler]
}

func newEventHub(manager *Manager, log *slog.Logger) *eventHub {
	if log == nil {
		log = slog.Default()
	}
	hub := &eventHub{manager: manager, log: log.With("subsystem", "plugin.events")}
	hub.playerChain.Store([]eventRegistration[player.Handler]{})
	hub.worldChain.Store([]eventRegistration[world.Handler]{})
	return hub
}

func (pe *eventHub) addPlayer(plugin string, handler player.Handler) func() {
	pe.mu.Lock()
	id := pe.player.add(plugin, handler)
	pe.playerChain.Store(pe.player.snapshot())
	pe.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			pe.mu.Lock()
			pe.player.removeByID(id)
			pe.playerChain.Store(pe.player.snapshot())
			pe.mu.Unlock()
		})
	}
}

func (pe *eventHub) addWorld(plugin string, handler world.Handler) func() {
	pe.mu.Lock()
	id := pe.world.add(plugin, handler)
	pe.worldChain.Store(pe.world.snapshot())
	pe.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			pe.mu.Lock()
			pe.world.removeByID(id)
			pe.worldChain.Store(pe.world.snapshot())
			pe.mu.Unlock()
		})
	}
}

func (pe *eventHub) clear(plugin string) {
	pe.mu.Lock()
	pe.player.removePlugin(plugin)
	pe.world.removePlugin(plugin)
	pe.playerChain.Store(pe.player.snapshot())
	pe.worldChain.Store(pe.world.snapshot())
	pe.mu.Unlock()
}

func (pe *eventHub) rename(oldName, newName string) {
	if newName == "" || oldName == newName {
		return
	}
	pe.mu.Lock()
	pe.player.rename(oldName, newName)
	pe.world.rename(oldName, newName)
	pe.playerChain.Store(pe.player.snapshot())
	pe.worldChain.Store(pe.world.snapshot())
	pe.mu.Unlock()
}

func (pe *eventHub) loadPlayerChain() []eventRegistration[player.Handler] {
	if v := pe.playerChain.Load(); v != nil {
		return v.([]eventRegistration[player.Handler])
	}
	return nil
}

func (pe *eventHub) loadWorldChain() []eventRegistration[world.Handler] {
	if v := pe.worldChain.Load(); v != nil {
		return v.([]eventRegistration[world.Handler])
	}
	return nil
}

func (pe *eventHub) wrapPlayer(_ *player.Player, base player.Handler) player.Handler {
	if base == nil {
		base = player.NopHandler{}
	}
	if chain, ok := base.(*playerHandlerChain); ok {
		base = chain.Handler
	}
	return &playerHandlerChain{Handler: base, hub: pe}
}

func (pe *eventHub) wrapWorld(_ *world.World, base world.Handler) world.Handler {
	if base == nil {
		base = world.NopHandler{}
	}
	if chain, ok := base.(*worldHandlerChain); ok {
		base = chain.Handler
	}
	return &worldHandlerChain{Handler: base, hub: pe}
}

func (pe *eventHub) invoke(plugin string, call func()) {
	if plugin == "" {
		call()
		return
	}
	defer func() {
		if r := recover(); r != nil {
			pe.manager.handlePluginPanic(plugin, r)
		}
	}()
	call()
}

type cancellable interface {
	Cancelled() bool
}

// playerHandlerChain dispatches the player events plugins may subscribe to
// before handing them to the base handler. Events without a plugin hook are
// served by the embedded base handler only.
type playerHandlerChain struct {
	player.Handler
	hub *eventHub
}

func (c *playerHandlerChain) callCtx(ctx cancellable, fn func(player.Handler)) {
	for _, reg := range c.hub.loadPlayerChain() {
		handler := reg.handler
		c.hub.invoke(reg.plugin, func() { fn(handler) })
		if ctx.Cancelled() {
			return
		}
	}
	fn(c.Handler)
}

func (c *playerHandlerChain) call(fn func(player.Handler)) {
	for _, reg := range c.hub.loadPlayerChain() {
		handler := reg.handler
		c.hub.invoke(reg.plugin, func() { fn(handler) })
	}
	fn(c.Handler)
}

func (c *playerHandlerChain) HandleChangeWorld(p *player.Player, before, after *world.World) {
	c.call(func(h player.Handler) { h.HandleChangeWorld(p, before, after) })
}

func (c *playerHandlerChain) HandleBlockBreak(ctx *player.Context, pos cube.Pos, drops *[]item.Stack, xp *int) {
	c.callCtx(ctx, func(h player.Handler) { h.HandleBlockBreak(ctx, pos, drops, xp) })
}

func (c *playerHandlerChain) HandleBlockPlace(ctx *player.Context, pos cube.Pos, b world.Block) {
	c.callCtx(ctx, func(h player.Handler) { h.HandleBlockPlace(ctx, pos, b) })
}

func (c *playerHandlerChain) HandleQuit(p *player.Player) {
	c.call(func(h player.Handler) { h.HandleQuit(p) })
}

// worldHandlerChain is the world counterpart of playerHandlerChain.
type worldHandlerChain struct {
	world.Handler
	hub *eventHub
}

func (c *worldHandlerChain) call(fn func(world.Handler)) {
	for _, reg := range c.hub.loadWorldChain() {
		handler := reg.handler
		c.hub.invoke(reg.plugin, func() { fn(handler) })
	}
	fn(c.Handler)
}

func (c *worldHandlerChain) HandleEntitySpawn(tx *world.Tx, e world.Entity) {
	c.call(func(h world.Handler) { h.HandleEntitySpawn(tx, e) })
}

func (c *worldHandlerChain) HandleClose(tx *world.Tx) {
	c.call(func(h world.Handler) { h.HandleClose(tx) })
}
