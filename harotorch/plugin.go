// Package harotorch implements the HaroTorch plugin: torches that keep mobs
// from spawning around them, with commands to show which areas they protect.
package harotorch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/dm-vev/harotorch/harotorch/config"
	"github.com/dm-vev/harotorch/harotorch/cooldown"
	"github.com/dm-vev/harotorch/harotorch/effect"
	"github.com/dm-vev/harotorch/harotorch/lang"
	"github.com/dm-vev/harotorch/harotorch/marker"
	"github.com/dm-vev/harotorch/harotorch/material"
	"github.com/dm-vev/harotorch/harotorch/recipe"
	"github.com/dm-vev/harotorch/harotorch/torch"
	"github.com/dm-vev/harotorch/harotorch/update"
	"github.com/dm-vev/harotorch/server/plugin"
	"github.com/google/uuid"
)

// Name is the name of the plugin.
const Name = "HaroTorch"

// Version is the version of the plugin. It may be overridden at link time.
var Version = "2.3.0"

// storeDir is the directory in the plugin data directory holding the torch
// database.
const storeDir = "torches"

// HaroTorch is the state of an enabled plugin. It is created by Init and
// released by Close.
type HaroTorch struct {
	api  *plugin.API
	log  *slog.Logger
	conf config.Manifest
	lang *lang.Catalogue

	torchItem  world.Item
	torchBlock string
	denied     map[string]struct{}
	excluded   map[string]struct{}

	store     *torch.Store
	torches   *torch.Registry
	finder    *torch.Finder
	cooldowns *cooldown.Table
	markers   *marker.Selector
	area      *effect.Area
	highlight *effect.Highlight

	unsub     []func()
	particles *plugin.Task
	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// Init enables the plugin. It is the plugin.Factory of HaroTorch.
func Init(api *plugin.API) (plugin.Plugin, error) {
	h := &HaroTorch{api: api, log: api.Logger()}
	if err := h.init(); err != nil {
		if h.store != nil {
			_ = h.store.Close()
		}
		return nil, err
	}
	return h, nil
}

// Name ...
func (h *HaroTorch) Name() string { return Name }

// Version ...
func (h *HaroTorch) Version() string { return Version }

func (h *HaroTorch) init() error {
	if _, err := h.api.EnsureDataSubdir(""); err != nil {
		return fmt.Errorf("ensure data directory: %w", err)
	}
	path, err := h.api.DataPath(config.FileName)
	if err != nil {
		return err
	}
	if h.conf, err = config.Load(path, h.log); err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if h.lang, err = lang.Load(h.conf.ActiveLang, h.log); err != nil {
		return fmt.Errorf("load messages: %w", err)
	}

	resolver := material.RegistryResolver{}
	torchMat, ok := resolver.Resolve(h.conf.TorchBlock)
	if !ok {
		return fmt.Errorf("%w: torch block %q is not a known item", config.ErrInvalid, h.conf.TorchBlock)
	}
	if _, ok := torchMat.Item.(world.Block); !ok {
		return fmt.Errorf("%w: torch block %q cannot be placed", config.ErrInvalid, h.conf.TorchBlock)
	}
	h.torchItem, h.torchBlock = torchMat.Item, torchMat.Name
	h.denied = make(map[string]struct{})
	for _, m := range h.conf.DisallowedPlacementOn(resolver, h.log) {
		h.denied[m.Name] = struct{}{}
	}
	h.excluded = h.conf.ExcludedMobs(h.log)

	dir, err := h.api.DataPath(storeDir)
	if err != nil {
		return err
	}
	if h.store, err = torch.OpenStore(dir); err != nil {
		return fmt.Errorf("open torch store: %w", err)
	}
	if h.torches, err = torch.NewRegistry(h.store, h.log); err != nil {
		return fmt.Errorf("load torches: %w", err)
	}
	h.finder = torch.NewFinder(h.torches, h.torchBlock)
	h.cooldowns = cooldown.New(h.conf.Cooldown())
	h.markers = marker.NewSelector(marker.Variants, h.log)

	sched, players := scheduler{api: h.api}, onlinePlayers{api: h.api}
	h.area = effect.NewArea(effect.AreaConfig{
		Rows:       h.conf.TorchAoeParticleHeight,
		EndMessage: h.lang.Message(lang.EndingAoe),
	}, sched, players, h.log)
	h.highlight = effect.NewHighlight(effect.HighlightConfig{
		Duration:   h.conf.HighlightDuration(),
		EndMessage: h.lang.Message(lang.EndingHighlight),
	}, sched, players, h.renderer, h.log)

	h.registerRecipe(resolver)
	events := h.api.Events()
	h.unsub = append(h.unsub,
		events.OnPlayer(playerHandler{h: h}),
		events.OnWorld(worldHandler{h: h}),
	)
	h.api.RegisterCommand(newTorchCommand(h))
	if h.conf.EnableTorchParticles {
		h.particles = h.api.Every(ParticleInterval, ParticleInterval, h.showParticles)
	}
	h.api.Go(h.checkUpdate)

	h.log.Info("HaroTorch enabled.",
		"version", Version,
		"torches", h.torches.Len(world.Overworld)+h.torches.Len(world.Nether)+h.torches.Len(world.End),
		"lang", h.lang.Tag().String(),
		"shape", h.conf.RangeShape().String())
	return nil
}

func (h *HaroTorch) registerRecipe(resolver material.Resolver) {
	keys := h.conf.RecipeKeyMaterials(resolver, h.log)
	err := recipe.Register(h.conf.RecipeShape, keys, h.newItem(1))
	switch {
	case errors.Is(err, recipe.ErrRegistered):
		h.log.Info("HaroTorch recipe was registered before, keeping it.")
	case err != nil:
		h.log.Error("Could not register HaroTorch recipe.", "error", err)
	}
}

func (h *HaroTorch) checkUpdate(ctx context.Context) {
	conf, err := update.ConfigFromEnv()
	if err != nil {
		h.log.Warn("Could not read update check settings.", "error", err)
		return
	}
	checker, err := update.NewChecker(conf, Version, nil, h.log)
	if err != nil {
		h.log.Warn("Could not check for updates.", "error", err)
		return
	}
	checker.Check(ctx)
}

// renderer returns the marker renderer of a player. Players without a
// tracked connection cannot be shown markers.
func (h *HaroTorch) renderer(viewer uuid.UUID) marker.Renderer {
	conn, ok := h.api.Conn(viewer)
	if !ok {
		return marker.Nop{}
	}
	return h.markers.For(viewer, conn)
}

// Close disables the plugin. Running highlights are ended and the torch
// database is closed.
func (h *HaroTorch) Close() error {
	h.closeOnce.Do(func() {
		h.closed.Store(true)
		if h.particles != nil {
			h.particles.Cancel()
		}
		for i := len(h.unsub) - 1; i >= 0; i-- {
			h.unsub[i]()
		}
		h.unsub = nil
		h.highlight.Close()
		h.cooldowns.Clear()
		if err := h.store.Close(); err != nil {
			h.closeErr = fmt.Errorf("close torch store: %w", err)
		}
		h.log.Info("HaroTorch disabled.")
	})
	return h.closeErr
}

// scheduler runs effects on goroutines of the plugin.
type scheduler struct {
	api *plugin.API
}

// After ...
func (s scheduler) After(d time.Duration, fn func()) effect.Task {
	return s.api.After(d, fn)
}

// Every ...
func (s scheduler) Every(delay, interval time.Duration, fn func()) effect.Task {
	return s.api.Every(delay, interval, fn)
}

// onlinePlayers gives effects access to online players.
type onlinePlayers struct {
	api *plugin.API
}

// Exec ...
func (o onlinePlayers) Exec(id uuid.UUID, fn func(effect.Target)) bool {
	return o.api.ExecPlayer(id, func(_ *world.Tx, p *player.Player) { fn(p) })
}
