package torch

import (
	"log/slog"
	"math"
	"slices"
	"sync"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/dm-vev/harotorch/harotorch/config"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Registry is the in-memory index of the torches in a Store. Changes are
// written through to the Store. Registry is safe for concurrent use.
type Registry struct {
	store *Store
	log   *slog.Logger

	mu      sync.RWMutex
	torches map[world.Dimension]map[cube.Pos]Record
	owners  map[uuid.UUID]int
}

// NewRegistry loads every record of store into a new Registry.
func NewRegistry(store *Store, log *slog.Logger) (*Registry, error) {
	records, err := store.All()
	if err != nil {
		return nil, err
	}
	r := &Registry{
		store:   store,
		log:     log,
		torches: make(map[world.Dimension]map[cube.Pos]Record),
		owners:  make(map[uuid.UUID]int),
	}
	for _, rec := range records {
		r.index(rec)
	}
	log.Debug("Loaded torches.", "count", len(records))
	return r, nil
}

func (r *Registry) index(rec Record) {
	byPos, ok := r.torches[rec.Dim]
	if !ok {
		byPos = make(map[cube.Pos]Record)
		r.torches[rec.Dim] = byPos
	}
	if prev, ok := byPos[rec.Pos]; ok {
		r.owners[prev.Owner]--
	}
	byPos[rec.Pos] = rec
	r.owners[rec.Owner]++
}

// Add records a torch.
func (r *Registry) Add(rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.store.Put(rec); err != nil {
		return err
	}
	r.index(rec)
	return nil
}

// Remove removes the torch at pos in dim and returns its record.
func (r *Registry) Remove(dim world.Dimension, pos cube.Pos) (Record, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.torches[dim][pos]
	if !ok {
		return Record{}, false, nil
	}
	if err := r.store.Delete(dim, pos); err != nil {
		return Record{}, false, err
	}
	delete(r.torches[dim], pos)
	if r.owners[rec.Owner]--; r.owners[rec.Owner] <= 0 {
		delete(r.owners, rec.Owner)
	}
	return rec, true, nil
}

// Get returns the torch at pos in dim.
func (r *Registry) Get(dim world.Dimension, pos cube.Pos) (Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.torches[dim][pos]
	return rec, ok
}

// Owner returns the owner of the torch at pos in dim.
func (r *Registry) Owner(dim world.Dimension, pos cube.Pos) (uuid.UUID, bool) {
	rec, ok := r.Get(dim, pos)
	return rec.Owner, ok
}

// CountByOwner returns the number of torches placed by a player.
func (r *Registry) CountByOwner(owner uuid.UUID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.owners[owner]
}

// Len returns the number of torches in dim.
func (r *Registry) Len(dim world.Dimension) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.torches[dim])
}

// Positions returns the positions of every torch in dim, in no particular
// order.
func (r *Registry) Positions(dim world.Dimension) []cube.Pos {
	r.mu.RLock()
	defer r.mu.RUnlock()
	positions := make([]cube.Pos, 0, len(r.torches[dim]))
	for pos := range r.torches[dim] {
		positions = append(positions, pos)
	}
	return positions
}

// Within returns the records of the torches in dim within radius blocks of
// centre, sorted by position.
func (r *Registry) Within(dim world.Dimension, centre mgl64.Vec3, radius float64) []Record {
	r.mu.RLock()
	var records []Record
	for pos, rec := range r.torches[dim] {
		if pos.Vec3Centre().Sub(centre).Len() <= radius {
			records = append(records, rec)
		}
	}
	r.mu.RUnlock()
	slices.SortFunc(records, func(a, b Record) int { return comparePos(a.Pos, b.Pos) })
	return records
}

// Protects reports if pos in dim lies within the range of any torch. With
// config.Circle the horizontal distance to the torch is compared with the
// range, with config.Square the largest of the horizontal axis distances.
func (r *Registry) Protects(dim world.Dimension, pos mgl64.Vec3, shape config.Shape, rng int) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for torch := range r.torches[dim] {
		if InRange(torch, pos, shape, rng) {
			return true
		}
	}
	return false
}

// InRange reports if pos lies within range of the torch at torch.
func InRange(torch cube.Pos, pos mgl64.Vec3, shape config.Shape, rng int) bool {
	centre := torch.Vec3Centre()
	dx, dz := math.Abs(pos[0]-centre[0]), math.Abs(pos[2]-centre[2])
	limit := float64(rng)
	if shape == config.Square {
		return dx <= limit && dz <= limit
	}
	return dx*dx+dz*dz <= limit*limit
}

func comparePos(a, b cube.Pos) int {
	for i := range a {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}
