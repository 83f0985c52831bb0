package harotorch

import (
	"github.com/df-mc/dragonfly/server/item"
)

// itemKey is the key of the value marking an item stack as a HaroTorch.
const itemKey = "harotorch"

// newItem returns a stack of n HaroTorches.
func (h *HaroTorch) newItem(n int) item.Stack {
	return item.NewStack(h.torchItem, n).
		WithValue(itemKey, Version).
		WithCustomName("§6HaroTorch").
		WithLore("§7Keeps mobs from spawning nearby.")
}

// isHaroTorch reports if s is a stack of HaroTorches.
func isHaroTorch(s item.Stack) bool {
	if s.Empty() {
		return false
	}
	_, ok := s.Value(itemKey)
	return ok
}
