package config

import (
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/dm-vev/harotorch/harotorch/material"
)

// RecipeKeySeparator separates the key and the material of a recipe key.
const RecipeKeySeparator = "<-->"

// DisallowedPlacementOn returns the materials a HaroTorch may not be placed
// on. Entries that do not resolve to a material are logged and skipped.
func (m Manifest) DisallowedPlacementOn(r material.Resolver, log *slog.Logger) []material.Material {
	mats := make([]material.Material, 0, len(m.DissallowPlacementOn))
	for i, entry := range m.DissallowPlacementOn {
		mat, ok := r.Resolve(entry)
		if !ok {
			log.Warn("Skipping dissallowPlacementOn entry: not a valid material.", "entry", i+1, "value", entry)
			continue
		}
		mats = append(mats, mat)
	}
	return mats
}

// RecipeKeyMaterials returns the recipe keys mapped to their materials. Entries
// without a separator, with a key that is not a single character or with an
// unknown material are logged and left out.
func (m Manifest) RecipeKeyMaterials(r material.Resolver, log *slog.Logger) map[rune]material.Material {
	keys := make(map[rune]material.Material, len(m.RecipeKeys))
	for _, entry := range m.RecipeKeys {
		key, name, ok := strings.Cut(entry, RecipeKeySeparator)
		key = strings.TrimSpace(key)
		if !ok || utf8.RuneCountInString(key) != 1 || strings.Contains(name, RecipeKeySeparator) {
			log.Warn("Invalid configuration file: recipe key is of an invalid format.", "value", entry)
			continue
		}
		mat, ok := r.Resolve(name)
		if !ok {
			log.Warn("Invalid configuration file: recipe key contains an invalid material.", "value", entry)
			continue
		}
		k, _ := utf8.DecodeRuneInString(key)
		keys[k] = mat
	}
	return keys
}

// ExcludedMobs returns the entity identifiers of the mobs that are never
// prevented from spawning. Unknown mob types are logged and skipped.
func (m Manifest) ExcludedMobs(log *slog.Logger) map[string]struct{} {
	mobs := make(map[string]struct{}, len(m.MobsExcludeFromBlockList))
	for _, entry := range m.MobsExcludeFromBlockList {
		id, ok := material.Mob(entry)
		if !ok {
			log.Warn("Provided mob type is not valid, please check your configuration file.", "value", entry)
			continue
		}
		mobs[id] = struct{}{}
	}
	return mobs
}
