package plugin

import (
	"log/slog"

	"github.com/df-mc/dragonfly/server/world"
	"github.com/google/uuid"
	"github.com/sandertv/gophertunnel/minecraft/protocol/login"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
)

// Host exposes the subset of server functionality required by the plugin
// manager and APIs.
type Host interface {
	// Logger returns the logger used for structured diagnostics.
	Logger() *slog.Logger
	// World returns the default world managed by the server.
	World() *world.World
	// Nether returns the nether world managed by the server.
	Nether() *world.World
	// End returns the end world managed by the server.
	End() *world.World
	// Player looks up an online player by their UUID.
	Player(id uuid.UUID) (*world.EntityHandle, bool)
	// Conn returns the network connection of an online player, if the host
	// tracks it.
	Conn(id uuid.UUID) (Conn, bool)
}

// Conn is the part of a player's network connection that plugins may use to
// send packets to that single player.
type Conn interface {
	// WritePacket writes a packet to the player. It is safe for concurrent use.
	WritePacket(pk packet.Packet) error
	// ClientData returns the client data the player logged in with.
	ClientData() login.ClientData
}
