package torch

import (
	"runtime"
	"slices"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/sync/errgroup"
)

// BlockSource provides the blocks of a world. *world.Tx implements it.
type BlockSource interface {
	Block(pos cube.Pos) world.Block
}

// minBatch is the smallest number of candidates filtered by one worker.
const minBatch = 256

// Finder finds the torches near a position.
type Finder struct {
	registry *Registry
	block    string
	workers  int
}

// NewFinder returns a Finder for torches of the block type passed, such as
// minecraft:torch.
func NewFinder(registry *Registry, block string) *Finder {
	return &Finder{registry: registry, block: block, workers: runtime.GOMAXPROCS(0)}
}

// Near returns the positions of the torches in dim within radius blocks of
// centre, sorted by position. Only positions where src holds the torch block
// are returned; records of torches that no longer exist are removed from the
// registry.
func (f *Finder) Near(src BlockSource, dim world.Dimension, centre mgl64.Vec3, radius int) []cube.Pos {
	candidates := f.filter(f.registry.Positions(dim), centre, float64(radius))

	found := candidates[:0]
	for _, pos := range candidates {
		if f.isTorch(src.Block(pos)) {
			found = append(found, pos)
			continue
		}
		if _, ok, err := f.registry.Remove(dim, pos); err != nil {
			f.registry.log.Error("Remove stale torch.", "pos", pos, "error", err)
		} else if ok {
			f.registry.log.Debug("Removed stale torch.", "pos", pos)
		}
	}
	slices.SortFunc(found, comparePos)
	return found
}

// Confirm reports if src holds the torch block at the position of rec. If
// it does not, for example because the placement was cancelled after rec was
// added, rec is removed from the registry. A record replaced since is kept.
func (f *Finder) Confirm(src BlockSource, rec Record) bool {
	if f.isTorch(src.Block(rec.Pos)) {
		return true
	}
	current, ok := f.registry.Get(rec.Dim, rec.Pos)
	if !ok || current.Owner != rec.Owner || !current.Placed.Equal(rec.Placed) {
		return false
	}
	if _, _, err := f.registry.Remove(rec.Dim, rec.Pos); err != nil {
		f.registry.log.Error("Remove torch of a cancelled placement.", "pos", rec.Pos, "error", err)
		return false
	}
	f.registry.log.Debug("Removed torch of a cancelled placement.", "pos", rec.Pos)
	return false
}

func (f *Finder) isTorch(b world.Block) bool {
	if b == nil {
		return false
	}
	name, _ := b.EncodeBlock()
	return name == f.block
}

// filter returns the candidates within radius of centre. Large candidate sets
// are split over the available workers.
func (f *Finder) filter(candidates []cube.Pos, centre mgl64.Vec3, radius float64) []cube.Pos {
	within := func(pos cube.Pos) bool {
		return pos.Vec3Centre().Sub(centre).Len() <= radius
	}
	workers := min(f.workers, (len(candidates)+minBatch-1)/minBatch)
	if workers <= 1 {
		return slices.DeleteFunc(candidates, func(pos cube.Pos) bool { return !within(pos) })
	}

	batch := (len(candidates) + workers - 1) / workers
	results := make([][]cube.Pos, workers)
	var g errgroup.Group
	g.SetLimit(workers)
	for i := range workers {
		lo, hi := i*batch, min((i+1)*batch, len(candidates))
		if lo >= hi {
			break
		}
		g.Go(func() error {
			for _, pos := range candidates[lo:hi] {
				if within(pos) {
					results[i] = append(results[i], pos)
				}
			}
			return nil
		})
	}
	_ = g.Wait()
	return slices.Concat(results...)
}
