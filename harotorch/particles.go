package harotorch

import (
	"time"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/df-mc/dragonfly/server/world/particle"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// ParticleInterval is the time between two rounds of particles shown
	// above placed torches.
	ParticleInterval = time.Second
	// ParticleRange is the distance from a player within which torches show
	// particles.
	ParticleRange = 48.0
)

// showParticles shows a flame above every torch near a player.
func (h *HaroTorch) showParticles() {
	if h.closed.Load() {
		return
	}
	for _, w := range h.api.Worlds() {
		positions := h.torches.Positions(w.Dimension())
		if len(positions) == 0 {
			continue
		}
		<-w.Exec(func(tx *world.Tx) {
			// Must not enter the transaction of another world from here.
			var viewers []mgl64.Vec3
			for p := range tx.Players() {
				viewers = append(viewers, p.Position())
			}
			for _, pos := range nearViewers(positions, viewers, ParticleRange) {
				tx.AddParticle(pos.Vec3Centre().Add(mgl64.Vec3{0, 0.5}), particle.Flame{})
			}
		})
	}
}

// nearViewers returns the positions that lie within dist of any viewer.
func nearViewers(positions []cube.Pos, viewers []mgl64.Vec3, dist float64) []cube.Pos {
	var out []cube.Pos
	for _, pos := range positions {
		centre := pos.Vec3Centre()
		for _, v := range viewers {
			if centre.Sub(v).Len() <= dist {
				out = append(out, pos)
				break
			}
		}
	}
	return out
}
