package material

import "strings"

// mobs holds the entity identifiers of every mob HaroTorch knows about, mapped
// to whether the mob is hostile.
var mobs = map[string]bool{
	"minecraft:blaze":              true,
	"minecraft:bogged":             true,
	"minecraft:breeze":             true,
	"minecraft:cave_spider":        true,
	"minecraft:creeper":            true,
	"minecraft:drowned":            true,
	"minecraft:elder_guardian":     true,
	"minecraft:ender_dragon":       true,
	"minecraft:endermite":          true,
	"minecraft:evocation_illager":  true,
	"minecraft:ghast":              true,
	"minecraft:guardian":           true,
	"minecraft:hoglin":             true,
	"minecraft:husk":               true,
	"minecraft:magma_cube":         true,
	"minecraft:phantom":            true,
	"minecraft:piglin_brute":       true,
	"minecraft:pillager":           true,
	"minecraft:ravager":            true,
	"minecraft:shulker":            true,
	"minecraft:silverfish":         true,
	"minecraft:skeleton":           true,
	"minecraft:slime":              true,
	"minecraft:stray":              true,
	"minecraft:vex":                true,
	"minecraft:vindicator":         true,
	"minecraft:witch":              true,
	"minecraft:wither":             true,
	"minecraft:wither_skeleton":    true,
	"minecraft:zoglin":             true,
	"minecraft:zombie":             true,
	"minecraft:zombie_villager_v2": true,

	"minecraft:allay":            false,
	"minecraft:armadillo":        false,
	"minecraft:axolotl":          false,
	"minecraft:bat":              false,
	"minecraft:bee":              false,
	"minecraft:camel":            false,
	"minecraft:cat":              false,
	"minecraft:chicken":          false,
	"minecraft:cod":              false,
	"minecraft:cow":              false,
	"minecraft:dolphin":          false,
	"minecraft:donkey":           false,
	"minecraft:enderman":         false,
	"minecraft:fox":              false,
	"minecraft:frog":             false,
	"minecraft:glow_squid":       false,
	"minecraft:goat":             false,
	"minecraft:horse":            false,
	"minecraft:iron_golem":       false,
	"minecraft:llama":            false,
	"minecraft:mooshroom":        false,
	"minecraft:mule":             false,
	"minecraft:ocelot":           false,
	"minecraft:panda":            false,
	"minecraft:parrot":           false,
	"minecraft:piglin":           false,
	"minecraft:pig":              false,
	"minecraft:polar_bear":       false,
	"minecraft:pufferfish":       false,
	"minecraft:rabbit":           false,
	"minecraft:salmon":           false,
	"minecraft:sheep":            false,
	"minecraft:sniffer":          false,
	"minecraft:snow_golem":       false,
	"minecraft:spider":           false,
	"minecraft:squid":            false,
	"minecraft:strider":          false,
	"minecraft:tropicalfish":     false,
	"minecraft:turtle":           false,
	"minecraft:villager_v2":      false,
	"minecraft:wandering_trader": false,
	"minecraft:wolf":             false,
	"minecraft:zombie_pigman":    false,
}

// mobAliases maps names used by other server software to Bedrock entity
// identifiers.
var mobAliases = map[string]string{
	"minecraft:evoker":           "minecraft:evocation_illager",
	"minecraft:mushroom_cow":     "minecraft:mooshroom",
	"minecraft:pig_zombie":       "minecraft:zombie_pigman",
	"minecraft:snowman":          "minecraft:snow_golem",
	"minecraft:tropical_fish":    "minecraft:tropicalfish",
	"minecraft:villager":         "minecraft:villager_v2",
	"minecraft:zombie_villager":  "minecraft:zombie_villager_v2",
	"minecraft:zombified_piglin": "minecraft:zombie_pigman",
}

// Mob normalises a mob name such as "CREEPER" or "minecraft:pig_zombie" into
// a Bedrock entity identifier. It returns false if the mob is unknown.
func Mob(name string) (string, bool) {
	id := identifier(name)
	if alias, ok := mobAliases[id]; ok {
		id = alias
	}
	if _, ok := mobs[id]; !ok {
		return "", false
	}
	return id, true
}

// IsMob reports if the entity identifier passed belongs to a mob.
func IsMob(id string) bool {
	_, ok := mobs[id]
	return ok
}

// Hostile reports if the entity identifier passed belongs to a hostile mob.
func Hostile(id string) bool {
	return mobs[id]
}

// Boss reports if the entity identifier passed belongs to a boss. Bosses are
// never prevented from spawning.
func Boss(id string) bool {
	switch strings.ToLower(id) {
	case "minecraft:wither", "minecraft:ender_dragon":
		return true
	}
	return false
}
