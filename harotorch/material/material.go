// Package material normalises the material and mob names found in the
// HaroTorch configuration into namespaced identifiers and resolves them
// against the item registry of the server.
package material

import (
	"strings"

	"github.com/df-mc/dragonfly/server/world"
	"github.com/df-mc/worldupgrader/itemupgrader"
)

// Namespace is the namespace prefixed to identifiers written without one.
const Namespace = "minecraft"

// Material is a resolved material name.
type Material struct {
	// Name is the namespaced identifier, for example minecraft:bedrock.
	Name string
	// Item is the registered item with that name.
	Item world.Item
}

// Resolver resolves a user written material name.
type Resolver interface {
	Resolve(name string) (Material, bool)
}

// Normalize turns a user written name such as "BEDROCK", "Stone Bricks" or
// "minecraft:grass" into the identifier used by the current protocol.
// Identifiers renamed in earlier protocol versions are upgraded.
func Normalize(name string) string {
	n := identifier(name)
	if n == "" {
		return ""
	}
	return itemupgrader.Upgrade(itemupgrader.ItemMeta{Name: n}).Name
}

func identifier(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return ""
	}
	n = strings.Join(strings.Fields(n), "_")
	if !strings.Contains(n, ":") {
		n = Namespace + ":" + n
	}
	return n
}

// RegistryResolver resolves names against the items registered with the
// world package.
type RegistryResolver struct{}

// Resolve ...
func (RegistryResolver) Resolve(name string) (Material, bool) {
	n := Normalize(name)
	if n == "" {
		return Material{}, false
	}
	it, ok := world.ItemByName(n, 0)
	if !ok {
		return Material{}, false
	}
	return Material{Name: n, Item: it}, true
}
