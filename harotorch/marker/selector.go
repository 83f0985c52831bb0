package marker

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
	"golang.org/x/mod/semver"
)

// Variant is a way of building decoys that works for the game versions from
// Min up to and including Max. Versions are given as "major.minor.patch".
// An empty Max means there is no upper bound.
type Variant struct {
	Min, Max string
	Profile  Profile
}

// supports reports if the variant works for v, a canonical semver version.
func (v Variant) supports(version string) bool {
	if semver.Compare(version, canonical(v.Min)) < 0 {
		return false
	}
	return v.Max == "" || semver.Compare(version, canonical(v.Max)) <= 0
}

// Variants are the decoy variants known. A magma cube works as decoy on every
// version the server accepts: it has a full cube shape and renders through
// walls once its outline is shown.
var Variants = []Variant{
	{Min: "1.21.0", Profile: Profile{
		EntityType: "minecraft:magma_cube",
		Scale:      2,
		Label:      "§6HaroTorch",
		Flags: []uint8{
			protocol.EntityDataFlagInvisible,
			protocol.EntityDataFlagAlwaysShowName,
			protocol.EntityDataFlagNoAI,
		},
		IDBase: 1 << 48,
	}},
}

// Selector picks the Renderer of a player from the game version the client of
// that player reports.
type Selector struct {
	variants []Variant
	log      *slog.Logger

	mu     sync.Mutex
	warned map[uuid.UUID]struct{}
}

// NewSelector returns a Selector picking from the variants passed. The first
// variant supporting a version is used.
func NewSelector(variants []Variant, log *slog.Logger) *Selector {
	return &Selector{variants: variants, log: log, warned: make(map[uuid.UUID]struct{})}
}

// For returns the Renderer for the player with the UUID passed. If no variant
// supports the version of the client, Nop is returned and a warning is logged
// once for that player.
func (s *Selector) For(viewer uuid.UUID, conn Conn) Renderer {
	raw := conn.ClientData().GameVersion
	if version := canonical(raw); semver.IsValid(version) {
		for _, v := range s.variants {
			if v.supports(version) {
				return NewActor(viewer, conn, v.Profile)
			}
		}
	}
	s.mu.Lock()
	_, warned := s.warned[viewer]
	s.warned[viewer] = struct{}{}
	s.mu.Unlock()
	if !warned {
		s.log.Warn("Game version does not support torch markers.", "player", viewer, "version", raw)
	}
	return Nop{}
}

// Forget clears the warning state of a player, so that a new warning is
// logged when the player joins again with an unsupported version.
func (s *Selector) Forget(viewer uuid.UUID) {
	s.mu.Lock()
	delete(s.warned, viewer)
	s.mu.Unlock()
}

// canonical turns a game version such as "1.21.60" or "1.21.060.01" into the
// semver form "v1.21.60". Leading zeroes are dropped and anything beyond the
// patch number is ignored.
func canonical(version string) string {
	parts := strings.Split(strings.TrimSpace(version), ".")
	if len(parts) > 3 {
		parts = parts[:3]
	}
	for i, p := range parts {
		trimmed := strings.TrimLeft(p, "0")
		if trimmed == "" && p != "" {
			trimmed = "0"
		}
		parts[i] = trimmed
	}
	return "v" + strings.Join(parts, ".")
}
