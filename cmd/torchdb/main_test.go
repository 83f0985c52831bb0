package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/df-mc/dragonfly/server/block/cube"
	"github.com/df-mc/dragonfly/server/world"
	"github.com/dm-vev/harotorch/harotorch/torch"
	"github.com/google/uuid"
)

func TestRun(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "torches")
	alice, bob := uuid.New(), uuid.New()
	placed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	store, err := torch.OpenStore(dir)
	if err != nil {
		t.Fatalf("OpenStore() error = %v", err)
	}
	for _, r := range []torch.Record{
		{Pos: cube.Pos{1, 64, -3}, Dim: world.Overworld, Owner: alice, Placed: placed.Add(time.Hour)},
		{Pos: cube.Pos{-8, 40, 2}, Dim: world.Nether, Owner: bob, Placed: placed},
	} {
		if err := store.Put(r); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	var buf bytes.Buffer
	if err := run(&buf, dir, ""); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	out := buf.String()
	nether, overworld := strings.Index(out, "nether"), strings.Index(out, "overworld")
	if nether < 0 || overworld < 0 || nether > overworld {
		t.Fatalf("torches not listed oldest first:\n%s", out)
	}
	if !strings.Contains(out, "2 torch(es)") || !strings.Contains(out, "2024-05-01T12:00:00Z") {
		t.Fatalf("unexpected listing:\n%s", out)
	}

	buf.Reset()
	if err := run(&buf, dir, alice.String()); err != nil {
		t.Fatalf("run() with owner error = %v", err)
	}
	if out := buf.String(); strings.Contains(out, bob.String()) || !strings.Contains(out, "1 torch(es)") {
		t.Fatalf("owner filter not applied:\n%s", out)
	}
}

func TestRunErrors(t *testing.T) {
	if err := run(&bytes.Buffer{}, filepath.Join(t.TempDir(), "missing"), ""); err == nil {
		t.Fatalf("run() on a missing store succeeded")
	}
	if err := run(&bytes.Buffer{}, t.TempDir(), "not-a-uuid"); err == nil {
		t.Fatalf("run() with an invalid owner succeeded")
	}
}
