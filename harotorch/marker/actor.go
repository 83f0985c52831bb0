package marker

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/sandertv/gophertunnel/minecraft/protocol"
	"github.com/sandertv/gophertunnel/minecraft/protocol/packet"
)

// Profile holds the constants used to build decoys for one range of game
// versions. None of the values carry meaning beyond the versions they were
// chosen for.
type Profile struct {
	// EntityType is the identifier of the decoy entity.
	EntityType string
	// Scale is the size of the decoy relative to the regular entity size.
	Scale float32
	// Label is the name tag shown above the decoy.
	Label string
	// Flags are the entity flags set on the decoy.
	Flags []uint8
	// YOffset is added to the Y coordinate of the block the decoy is shown
	// at.
	YOffset float32
	// IDBase is the start of the entity ID range used for decoys. It must lie
	// far above the IDs the server hands out to entities.
	IDBase int64
}

// idBits is the number of bits of an ID derived from the viewer and position.
const idBits = 40

// actor renders decoys by writing AddActor and RemoveActor packets on the
// connection of the viewer.
type actor struct {
	viewer  uuid.UUID
	conn    Conn
	profile Profile
}

// NewActor returns a Renderer that writes decoy entities built from profile
// to conn. viewer is the UUID of the player conn belongs to.
func NewActor(viewer uuid.UUID, conn Conn, profile Profile) Renderer {
	return actor{viewer: viewer, conn: conn, profile: profile}
}

// Show ...
func (a actor) Show(positions []cube.Pos) ([]Marker, error) {
	markers := make([]Marker, 0, len(positions))
	var errs []error
	for _, pos := range positions {
		m := Marker{ID: a.id(pos), Pos: pos}
		// Remove a decoy left at the same position by an earlier call.
		_ = a.conn.WritePacket(&packet.RemoveActor{EntityUniqueID: m.ID})
		if err := a.conn.WritePacket(a.addActor(m)); err != nil {
			errs = append(errs, fmt.Errorf("show marker at %v: %w", pos, err))
			continue
		}
		markers = append(markers, m)
	}
	return markers, errors.Join(errs...)
}

// Hide ...
func (a actor) Hide(markers []Marker) error {
	var errs []error
	for _, m := range markers {
		if err := a.conn.WritePacket(&packet.RemoveActor{EntityUniqueID: m.ID}); err != nil {
			errs = append(errs, fmt.Errorf("hide marker at %v: %w", m.Pos, err))
		}
	}
	return errors.Join(errs...)
}

// Supported ...
func (actor) Supported() bool { return true }

func (a actor) addActor(m Marker) *packet.AddActor {
	meta := protocol.NewEntityMetadata()
	for _, flag := range a.profile.Flags {
		meta.SetFlag(protocol.EntityDataKeyFlags, flag)
	}
	meta[protocol.EntityDataKeyScale] = a.profile.Scale
	if a.profile.Label != "" {
		meta[protocol.EntityDataKeyName] = a.profile.Label
	}
	centre := m.Pos.Vec3Centre()
	return &packet.AddActor{
		EntityUniqueID:  m.ID,
		EntityRuntimeID: uint64(m.ID),
		EntityType:      a.profile.EntityType,
		Position:        mgl32.Vec3{float32(centre[0]), float32(m.Pos[1]) + a.profile.YOffset, float32(centre[2])},
		EntityMetadata:  meta,
	}
}

// id derives the decoy ID of pos from the viewer and the position, so that a
// repeated Show for the same position reuses the ID.
func (a actor) id(pos cube.Pos) int64 {
	var buf [16 + 12]byte
	copy(buf[:16], a.viewer[:])
	binary.LittleEndian.PutUint32(buf[16:], uint32(int32(pos[0])))
	binary.LittleEndian.PutUint32(buf[20:], uint32(int32(pos[1])))
	binary.LittleEndian.PutUint32(buf[24:], uint32(int32(pos[2])))
	return a.profile.IDBase + int64(xxhash.Sum64(buf[:])>>(64-idBits))
}
