// Package cooldown implements the per-player command cooldown.
package cooldown

import (
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/fasthash/fnv1a"
)

const shardCount = 16

// Table holds the time at which every player may next use a command. It is
// safe for concurrent use: the check and the update of a player's entry are a
// single step.
type Table struct {
	cooldown time.Duration
	now      func() time.Time
	shards   [shardCount]shard
}

type shard struct {
	mu   sync.Mutex
	next map[uuid.UUID]time.Time
}

// Option configures a Table.
type Option func(*Table)

// WithClock makes the Table read the current time from now.
func WithClock(now func() time.Time) Option {
	return func(t *Table) {
		if now != nil {
			t.now = now
		}
	}
}

// New returns a Table with the cooldown passed. A cooldown of zero or lower
// disables it: Try then always succeeds.
func New(cooldown time.Duration, opts ...Option) *Table {
	t := &Table{cooldown: cooldown, now: time.Now}
	for i := range t.shards {
		t.shards[i].next = make(map[uuid.UUID]time.Time)
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Table) shard(id uuid.UUID) *shard {
	return &t.shards[fnv1a.HashBytes64(id[:])%shardCount]
}

// Enabled reports if the Table has a cooldown.
func (t *Table) Enabled() bool {
	return t.cooldown > 0
}

// Try reports if the player may use the command now, that is if now is past
// the stored time. If so, the next time the player may use it is set to now
// plus the cooldown. If not, the entry is left untouched and the time left is
// returned.
func (t *Table) Try(id uuid.UUID) (bool, time.Duration) {
	if !t.Enabled() {
		return true, 0
	}
	s := t.shard(id)
	s.mu.Lock()
	defer s.mu.Unlock()

	now := t.now()
	if next, ok := s.next[id]; ok && !now.After(next) {
		return false, next.Sub(now)
	}
	s.next[id] = now.Add(t.cooldown)
	return true, 0
}

// Next returns the time at which the player may next use the command.
func (t *Table) Next(id uuid.UUID) (time.Time, bool) {
	s := t.shard(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := s.next[id]
	return next, ok
}

// Forget removes the entry of a player.
func (t *Table) Forget(id uuid.UUID) {
	s := t.shard(id)
	s.mu.Lock()
	delete(s.next, id)
	s.mu.Unlock()
}

// Clear removes every entry.
func (t *Table) Clear() {
	for i := range t.shards {
		s := &t.shards[i]
		s.mu.Lock()
		clear(s.next)
		s.mu.Unlock()
	}
}

// Seconds rounds d up to whole seconds, as shown to players.
func Seconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}
