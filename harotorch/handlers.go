package harotorch

import (
	"strconv"
	"time"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/item"
	"github.com/df-mc/dragonfly/server/player"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/dm-vev/harotorch/harotorch/lang"
	"github.com/dm-vev/harotorch/harotorch/material"
	"github.com/dm-vev/harotorch/harotorch/torch"
)

// playerHandler registers and removes torches as players place and break
// them.
type playerHandler struct {
	player.NopHandler
	h *HaroTorch
}

func (ph playerHandler) HandleBlockPlace(ctx *player.Context, pos cube.Pos, b world.Block) {
	h, p := ph.h, ctx.Val()
	if name, _ := b.EncodeBlock(); name != h.torchBlock {
		return
	}
	if main, off := p.HeldItems(); !isHaroTorch(main) && !isHaroTorch(off) {
		return
	}
	tx := p.Tx()
	below, _ := tx.Block(pos.Side(cube.FaceDown)).EncodeBlock()
	if _, denied := h.denied[below]; denied {
		ctx.Cancel()
		p.Message(h.lang.Message(lang.BlockPlacementNotAllowed))
		return
	}
	if h.conf.PlaceLimitEnabled() && h.torches.CountByOwner(p.UUID()) >= h.conf.TorchPlaceLimit {
		ctx.Cancel()
		p.Message(h.lang.Message(lang.TorchLimitReached, "LIMIT", strconv.Itoa(h.conf.TorchPlaceLimit)))
		return
	}
	rec := torch.Record{Pos: pos, Dim: tx.World().Dimension(), Owner: p.UUID(), Placed: time.Now()}
	if err := h.torches.Add(rec); err != nil {
		h.log.Error("Could not save placed torch.", "pos", pos, "player", p.Name(), "error", err)
		ctx.Cancel()
		return
	}
	// Handlers after this one may still cancel the placement.
	tx.World().Exec(func(tx *world.Tx) {
		h.finder.Confirm(tx, rec)
	})
	p.Message(h.lang.Message(lang.TorchPlaced))
}

func (ph playerHandler) HandleBlockBreak(ctx *player.Context, pos cube.Pos, drops *[]item.Stack, _ *int) {
	h, p := ph.h, ctx.Val()
	dim := p.Tx().World().Dimension()
	rec, ok := h.torches.Get(dim, pos)
	if !ok {
		return
	}
	if rec.Owner != p.UUID() && !h.conf.AllowRemoveNotOwnedTorch {
		ctx.Cancel()
		p.Message(h.lang.Message(lang.TorchNotOwned))
		return
	}
	if _, _, err := h.torches.Remove(dim, pos); err != nil {
		h.log.Error("Could not remove broken torch.", "pos", pos, "player", p.Name(), "error", err)
	}
	*drops = []item.Stack{h.newItem(1)}
	p.Message(h.lang.Message(lang.TorchRemoved))
}

func (ph playerHandler) HandleQuit(p *player.Player) {
	ph.h.highlight.Quit(p.UUID())
	ph.h.markers.Forget(p.UUID())
}

// worldHandler keeps mobs from spawning in the area protected by torches.
type worldHandler struct {
	world.NopHandler
	h *HaroTorch
}

func (wh worldHandler) HandleEntitySpawn(tx *world.Tx, e world.Entity) {
	h := wh.h
	if !h.suppresses(e.H().Type().EncodeEntity()) {
		return
	}
	if !h.torches.Protects(tx.World().Dimension(), e.Position(), h.conf.RangeShape(), h.conf.TorchRange) {
		return
	}
	handle := e.H()
	// The entity is still being added to the world, so it is removed in a
	// transaction of its own.
	tx.World().Exec(func(tx *world.Tx) {
		if ent, ok := handle.Entity(tx); ok {
			tx.RemoveEntity(ent)
			_ = handle.Close()
		}
	})
}

// suppresses reports if the spawning of entities with the type passed is
// prevented near torches.
func (h *HaroTorch) suppresses(id string) bool {
	if !material.IsMob(id) || material.Boss(id) {
		return false
	}
	if h.conf.OnlyBlockHostileMobs && !material.Hostile(id) {
		return false
	}
	_, excluded := h.excluded[id]
	return !excluded
}
