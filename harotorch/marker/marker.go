// Package marker shows markers at block positions to a single player. A
// marker is a decoy entity that exists only on the client of that player: it
// is never added to a world and no other player sees it.
//
// How a decoy is built depends on the game version of the client, so the
// renderer of a player is picked by a Selector from a list of variants, each
// supporting a range of versions. Clients no variant supports get Nop.
package marker

import (
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/sandertv/gophertunnel/minecraft/protocol/login"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
)

// Conn is the network connection of the player markers are shown to.
type Conn interface {
	WritePacket(pk packet.Packet) error
	ClientData() login.ClientData
}

// Marker is a decoy shown at a position.
type Marker struct {
	ID  int64
	Pos cube.Pos
}

// Renderer shows and hides markers for one player.
type Renderer interface {
	// Show shows a marker at every position passed and returns the markers
	// shown. Showing a marker at a position that already has one replaces it.
	Show(positions []cube.Pos) ([]Marker, error)
	// Hide removes the markers passed.
	Hide(markers []Marker) error
	// Supported reports if the renderer shows anything at all.
	Supported() bool
}

// Nop is the Renderer of players whose game version is not supported. It
// shows nothing.
type Nop struct{}

// Show ...
func (Nop) Show([]cube.Pos) ([]Marker, error) { return nil, nil }

// Hide ...
func (Nop) Hide([]Marker) error { return nil }

// Supported ...
func (Nop) Supported() bool { return false }
