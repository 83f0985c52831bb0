// Package torch keeps track of placed HaroTorches: it persists who placed
// them, answers which positions they protect and finds the torches near a
// player.
package torch

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/df-mc/goleveldb/leveldb"
	"github.com/df-mc/goleveldb/leveldb/opt"
	"github.com/df-mc/goleveldb/leveldb/storage"
	"github.com/df-mc/goleveldb/leveldb/util"
	"github.com/google/uuid"
)

// Record is a placed HaroTorch.
type Record struct {
	Pos    cube.Pos
	Dim    world.Dimension
	Owner  uuid.UUID
	Placed time.Time
}

const (
	keyPrefix = 't'
	keyLen    = 1 + 1 + 3*4
	valueLen  = 16 + 8
)

// ErrCorrupt is returned when a stored record cannot be decoded.
var ErrCorrupt = errors.New("corrupt torch record")

// Store persists torch records in a LevelDB database.
type Store struct {
	db *leveldb.DB
}

// OpenStore opens or creates the database in the directory passed.
func OpenStore(dir string) (*Store, error) {
	db, err := leveldb.OpenFile(dir, &opt.Options{
		Compression: opt.FlateCompression,
		BlockSize:   16 * opt.KiB,
	})
	if err != nil {
		return nil, fmt.Errorf("open torch store: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenMemStore opens a Store that is kept in memory only.
func OpenMemStore() (*Store, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("open torch store: %w", err)
	}
	return &Store{db: db}, nil
}

// Put stores r, replacing any record at the same position.
func (s *Store) Put(r Record) error {
	if err := s.db.Put(encodeKey(r.Dim, r.Pos), encodeValue(r), nil); err != nil {
		return fmt.Errorf("store torch: %w", err)
	}
	return nil
}

// Get returns the record at pos in dim.
func (s *Store) Get(dim world.Dimension, pos cube.Pos) (Record, bool, error) {
	key := encodeKey(dim, pos)
	value, err := s.db.Get(key, nil)
	switch {
	case errors.Is(err, leveldb.ErrNotFound):
		return Record{}, false, nil
	case err != nil:
		return Record{}, false, fmt.Errorf("read torch: %w", err)
	}
	r, err := decode(key, value)
	if err != nil {
		return Record{}, false, err
	}
	return r, true, nil
}

// Delete removes the record at pos in dim, if any.
func (s *Store) Delete(dim world.Dimension, pos cube.Pos) error {
	if err := s.db.Delete(encodeKey(dim, pos), nil); err != nil {
		return fmt.Errorf("delete torch: %w", err)
	}
	return nil
}

// All returns every stored record.
func (s *Store) All() ([]Record, error) {
	it := s.db.NewIterator(util.BytesPrefix([]byte{keyPrefix}), nil)
	defer it.Release()

	var records []Record
	for it.Next() {
		r, err := decode(it.Key(), it.Value())
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := it.Error(); err != nil {
		return nil, fmt.Errorf("iterate torches: %w", err)
	}
	return records, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func encodeKey(dim world.Dimension, pos cube.Pos) []byte {
	key := make([]byte, keyLen)
	key[0] = keyPrefix
	key[1] = dimensionID(dim)
	binary.BigEndian.PutUint32(key[2:], uint32(int32(pos[0])))
	binary.BigEndian.PutUint32(key[6:], uint32(int32(pos[1])))
	binary.BigEndian.PutUint32(key[10:], uint32(int32(pos[2])))
	return key
}

func encodeValue(r Record) []byte {
	value := make([]byte, valueLen)
	copy(value, r.Owner[:])
	binary.BigEndian.PutUint64(value[16:], uint64(r.Placed.UnixNano()))
	return value
}

func decode(key, value []byte) (Record, error) {
	if len(key) != keyLen || len(value) != valueLen {
		return Record{}, ErrCorrupt
	}
	dim, ok := dimensionByID(key[1])
	if !ok {
		return Record{}, fmt.Errorf("%w: unknown dimension %d", ErrCorrupt, key[1])
	}
	r := Record{
		Dim: dim,
		Pos: cube.Pos{
			int(int32(binary.BigEndian.Uint32(key[2:]))),
			int(int32(binary.BigEndian.Uint32(key[6:]))),
			int(int32(binary.BigEndian.Uint32(key[10:]))),
		},
		Placed: time.Unix(0, int64(binary.BigEndian.Uint64(value[16:]))),
	}
	copy(r.Owner[:], value[:16])
	return r, nil
}

func dimensionID(dim world.Dimension) byte {
	switch dim {
	case world.Nether:
		return 1
	case world.End:
		return 2
	default:
		return 0
	}
}

func dimensionByID(id byte) (world.Dimension, bool) {
	switch id {
	case 0:
		return world.Overworld, true
	case 1:
		return world.Nether, true
	case 2:
		return world.End, true
	}
	return nil, false
}
