package harotorch

import (
	"errors"
	"strconv"

	"github.com/df-mc/dragonfly/server/cmd"
	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/dm-vev/harotorch/harotorch/cooldown"
	"github.com/dm-vev/harotorch/harotorch/effect"
	"github.com/dm-vev/harotorch/harotorch/lang"
)

type highlightCommand struct {
	Highlight cmd.SubCommand `cmd:"highlight"`
	h         *HaroTorch
}

type aoeCommand struct {
	Aoe cmd.SubCommand `cmd:"aoe"`
	h   *HaroTorch
}

type giveCommand struct {
	Give    cmd.SubCommand    `cmd:"give"`
	Targets []cmd.Target      `cmd:"player"`
	Count   cmd.Optional[int] `cmd:"count"`
	h       *HaroTorch
}

type infoCommand struct {
	Info cmd.SubCommand `cmd:"info"`
	h    *HaroTorch
}

type versionCommand struct {
	Version cmd.SubCommand `cmd:"version"`
	h       *HaroTorch
}

func newTorchCommand(h *HaroTorch) cmd.Command {
	return cmd.New(
		"torch",
		"Shows and hands out HaroTorches.",
		[]string{"harotorch"},
		highlightCommand{h: h},
		aoeCommand{h: h},
		giveCommand{h: h},
		infoCommand{h: h},
		versionCommand{h: h},
	)
}

// invoker returns the player running a command, or prints an error if the
// command was not run by a player or the plugin is disabled.
func invoker(h *HaroTorch, src cmd.Source, o *cmd.Output) (*player.Player, bool) {
	if h.closed.Load() {
		o.Error("HaroTorch is disabled.")
		return nil, false
	}
	p, ok := src.(*player.Player)
	if !ok {
		o.Error(h.lang.Message(lang.PlayerOnly))
		return nil, false
	}
	return p, true
}

func (c highlightCommand) Run(src cmd.Source, o *cmd.Output, tx *world.Tx) {
	h := c.h
	p, ok := invoker(h, src, o)
	if !ok {
		return
	}
	torches := h.finder.Near(tx, tx.World().Dimension(), p.Position(), h.conf.TorchHighlightRange)
	if len(torches) == 0 {
		o.Print(h.lang.Message(lang.NoTorchesNearby))
		return
	}
	if err := h.highlight.Start(p.UUID(), torches); err != nil {
		if errors.Is(err, effect.ErrUnsupported) {
			o.Error(h.lang.Message(lang.HighlightUnsupported))
			return
		}
		o.Error(err)
		return
	}
	o.Print(h.lang.Message(lang.StartingHighlight, "SECONDS", strconv.Itoa(h.conf.TorchHighlightTime)))
}

func (c aoeCommand) Run(src cmd.Source, o *cmd.Output, tx *world.Tx) {
	h := c.h
	p, ok := invoker(h, src, o)
	if !ok {
		return
	}
	if allowed, remaining := h.cooldowns.Try(p.UUID()); !allowed {
		o.Error(h.lang.Message(lang.CommandCooldown, "SECONDS", strconv.Itoa(cooldown.Seconds(remaining))))
		return
	}
	o.Print(h.lang.Message(lang.StartingAoe, "SECONDS", strconv.Itoa(int(effect.AreaDuration.Seconds()))))

	dim := tx.World().Dimension()
	torches := h.finder.Near(tx, dim, p.Position(), h.conf.TorchHighlightRange)
	areas := effect.Areas(torches, h.conf.RangeShape(), h.conf.TorchRange, effect.SurfaceHeight(tx))
	h.area.Start(p.UUID(), areas, dim == world.Nether)
}

func (c giveCommand) Run(src cmd.Source, o *cmd.Output, _ *world.Tx) {
	h := c.h
	if h.closed.Load() {
		o.Error("HaroTorch is disabled.")
		return
	}
	count := c.Count.LoadOr(1)
	if count < 1 || count > 64 {
		o.Errorf("Count must be between 1 and 64, got %d.", count)
		return
	}
	for _, t := range c.Targets {
		p, ok := t.(*player.Player)
		if !ok {
			continue
		}
		_, _ = p.Inventory().AddItem(h.newItem(count))
		o.Print(h.lang.Message(lang.TorchGiven, "PLAYER", p.Name()))
	}
}

// Allow limits /torch give to the console.
func (giveCommand) Allow(src cmd.Source) bool {
	_, isPlayer := src.(*player.Player)
	return !isPlayer
}

func (c infoCommand) Run(src cmd.Source, o *cmd.Output, _ *world.Tx) {
	h := c.h
	p, ok := invoker(h, src, o)
	if !ok {
		return
	}
	limit := h.lang.Message(lang.Unlimited)
	if h.conf.PlaceLimitEnabled() {
		limit = strconv.Itoa(h.conf.TorchPlaceLimit)
	}
	o.Print(h.lang.Message(lang.TorchInfo,
		"COUNT", strconv.Itoa(h.torches.CountByOwner(p.UUID())),
		"LIMIT", limit,
		"SHAPE", h.conf.RangeShape().String(),
		"RANGE", strconv.Itoa(h.conf.TorchRange),
	))
}

func (c versionCommand) Run(_ cmd.Source, o *cmd.Output, _ *world.Tx) {
	o.Print(c.h.lang.Message(lang.Version, "VERSION", Version))
}
