// Package config holds the HaroTorch configuration manifest and the views
// derived from it.
package config

import "time"

// Manifest is the configuration of HaroTorch. It is loaded once when the
// plugin is enabled and never modified afterwards.
type Manifest struct {
	// TorchBlock is the block used as the HaroTorch. It does not have to be a
	// torch.
	TorchBlock string `toml:"torchBlock"`
	// ActiveLang is the language of the messages sent to players.
	ActiveLang string `toml:"activeLang"`
	// StatUUID identifies the server for statistics. It is accepted for
	// compatibility and otherwise unused.
	StatUUID string `toml:"statUuid"`
	// EnableTorchParticles specifies if particles are shown above placed
	// torches.
	EnableTorchParticles bool `toml:"enableTorchParticles"`
	// AllowRemoveNotOwnedTorch specifies if players may break torches they do
	// not own.
	AllowRemoveNotOwnedTorch bool `toml:"allowRemoveNotOwnedTorch"`
	// OnlyBlockHostileMobs limits spawn suppression to hostile mobs. Withers
	// and ender dragons are never suppressed.
	OnlyBlockHostileMobs bool `toml:"onlyBlockHostileMobs"`
	// DisableStat disables statistics when true.
	DisableStat *bool `toml:"disableStat"`
	// ShapeCircle selects a circular torch range when true or absent, and a
	// square one when false.
	ShapeCircle *bool `toml:"shapeCircle"`
	// TorchRange is the range in blocks a torch protects.
	TorchRange int `toml:"torchRange"`
	// TorchHighlightRange is the radius in blocks searched for torches by the
	// highlight commands.
	TorchHighlightRange int `toml:"torchHighlightRange"`
	// TorchHighlightTime is the time in seconds torches stay highlighted.
	TorchHighlightTime int `toml:"torchHighlightTime"`
	// TorchAoeParticleHeight is the number of particle rows shown on every
	// point of a torch range by /torch aoe.
	TorchAoeParticleHeight int `toml:"torchAoeParticleHeight"`
	// CommandCooldown is the cooldown of /torch aoe in seconds. Values of 0 or
	// lower disable the cooldown.
	CommandCooldown int `toml:"commandCooldown"`
	// TorchPlaceLimit is the number of torches a player may place. -1
	// disables the limit.
	TorchPlaceLimit int `toml:"torchPlaceLimit"`
	// RecipeShape is the shape of the crafting recipe of a HaroTorch.
	RecipeShape []string `toml:"recipeShape"`
	// RecipeKeys map the keys used in RecipeShape to materials, written as
	// "X<-->MATERIAL".
	RecipeKeys []string `toml:"recipeKeys"`
	// MobsExcludeFromBlockList lists mobs that are never suppressed.
	MobsExcludeFromBlockList []string `toml:"mobsExcludeFromBlockList"`
	// DissallowPlacementOn lists the blocks a HaroTorch may not be placed on.
	DissallowPlacementOn []string `toml:"dissallowPlacementOn"`
}

// Shape is the shape of the area a torch protects.
type Shape int

const (
	// Circle protects every position within the torch range measured as the
	// horizontal distance to the torch.
	Circle Shape = iota
	// Square protects a square with sides of twice the torch range, centred
	// on the torch.
	Square
)

// String ...
func (s Shape) String() string {
	if s == Square {
		return "square"
	}
	return "circle"
}

// RangeShape returns the shape of the torch range. An absent shapeCircle
// defaults to Circle.
func (m Manifest) RangeShape() Shape {
	if m.ShapeCircle == nil || *m.ShapeCircle {
		return Circle
	}
	return Square
}

// StatEnabled reports if statistics are enabled. They are only disabled if
// disableStat is set to true.
func (m Manifest) StatEnabled() bool {
	return m.DisableStat == nil || !*m.DisableStat
}

// CooldownEnabled reports if /torch aoe has a cooldown.
func (m Manifest) CooldownEnabled() bool {
	return m.CommandCooldown > 0
}

// Cooldown returns the cooldown of /torch aoe, or 0 if it is disabled.
func (m Manifest) Cooldown() time.Duration {
	if !m.CooldownEnabled() {
		return 0
	}
	return time.Duration(m.CommandCooldown) * time.Second
}

// HighlightDuration returns how long /torch highlight keeps torches
// highlighted.
func (m Manifest) HighlightDuration() time.Duration {
	return time.Duration(max(m.TorchHighlightTime, 0)) * time.Second
}

// PlaceLimitEnabled reports if the number of torches per player is limited.
func (m Manifest) PlaceLimitEnabled() bool {
	return m.TorchPlaceLimit >= 0
}
