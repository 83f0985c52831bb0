package config

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dm-vev/harotorch/harotorch/material"
)

// mapResolver resolves the names in the map, normalised the way the registry
// resolver normalises them.
type mapResolver map[string]bool

func (r mapResolver) Resolve(name string) (material.Material, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	if !strings.Contains(n, ":") {
		n = "minecraft:" + n
	}
	if !r[n] {
		return material.Material{}, false
	}
	return material.Material{Name: n}, true
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoadWritesDefault(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "harotorch", FileName)
	m, err := Load(path, discard())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if m.TorchBlock != "minecraft:torch" || m.ActiveLang != "en" {
		t.Fatalf("unexpected default manifest: %+v", m)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	if !bytes.Equal(data, Default()) {
		t.Fatalf("written config differs from the default")
	}

	again, err := Load(path, discard())
	if err != nil {
		t.Fatalf("Load() of written default error = %v", err)
	}
	if again.TorchRange != m.TorchRange || again.CommandCooldown != m.CommandCooldown {
		t.Fatalf("reloaded manifest differs: %+v vs %+v", again, m)
	}
}

func TestParseMissingRequiredField(t *testing.T) {
	t.Parallel()

	data := strings.Replace(string(Default()), "torchRange = 32", "", 1)
	_, err := Parse([]byte(data))
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("Parse() without torchRange error = %v, want ErrInvalid", err)
	}
}

func TestParseWrongType(t *testing.T) {
	t.Parallel()

	data := strings.Replace(string(Default()), "commandCooldown = 30", `commandCooldown = "thirty"`, 1)
	if _, err := Parse([]byte(data)); !errors.Is(err, ErrInvalid) {
		t.Fatalf("Parse() with string cooldown error = %v, want ErrInvalid", err)
	}
}

func TestParseMalformed(t *testing.T) {
	t.Parallel()

	if _, err := Parse([]byte("torchBlock = ")); err == nil {
		t.Fatalf("Parse() of malformed TOML succeeded")
	}
}

func TestOptionalDefaults(t *testing.T) {
	t.Parallel()

	data := string(Default())
	for _, line := range []string{"shapeCircle = true", "disableStat = false"} {
		data = strings.Replace(data, line, "", 1)
	}
	m, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if m.RangeShape() != Circle {
		t.Fatalf("RangeShape() = %v, want circle when absent", m.RangeShape())
	}
	if !m.StatEnabled() {
		t.Fatalf("StatEnabled() = false when disableStat is absent")
	}
	if len(m.ExcludedMobs(discard())) != 0 {
		t.Fatalf("ExcludedMobs() is not empty")
	}
}

func TestRangeShape(t *testing.T) {
	yes, no := true, false
	cases := map[string]struct {
		shape *bool
		want  Shape
	}{
		"absent": {nil, Circle},
		"true":   {&yes, Circle},
		"false":  {&no, Square},
	}
	for name, c := range cases {
		if got := (Manifest{ShapeCircle: c.shape}).RangeShape(); got != c.want {
			t.Fatalf("%s: RangeShape() = %v, want %v", name, got, c.want)
		}
	}
}

func TestStatEnabled(t *testing.T) {
	yes, no := true, false
	if !(Manifest{}).StatEnabled() || !(Manifest{DisableStat: &no}).StatEnabled() {
		t.Fatalf("statistics disabled without disableStat = true")
	}
	if (Manifest{DisableStat: &yes}).StatEnabled() {
		t.Fatalf("statistics enabled with disableStat = true")
	}
}

func TestCooldown(t *testing.T) {
	cases := map[int]time.Duration{
		-1: 0,
		0:  0,
		1:  time.Second,
		30: 30 * time.Second,
	}
	for seconds, want := range cases {
		m := Manifest{CommandCooldown: seconds}
		if got := m.Cooldown(); got != want {
			t.Fatalf("Cooldown() with %d = %v, want %v", seconds, got, want)
		}
		if m.CooldownEnabled() != (want > 0) {
			t.Fatalf("CooldownEnabled() with %d = %v", seconds, m.CooldownEnabled())
		}
	}
}

func TestPlaceLimitEnabled(t *testing.T) {
	if (Manifest{TorchPlaceLimit: -1}).PlaceLimitEnabled() {
		t.Fatalf("limit of -1 is enabled")
	}
	if !(Manifest{TorchPlaceLimit: 0}).PlaceLimitEnabled() {
		t.Fatalf("limit of 0 is disabled")
	}
}

func TestDisallowedPlacementOnSkipsInvalid(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	m := Manifest{DissallowPlacementOn: []string{"NOT_A_BLOCK", "BEDROCK"}}

	got := m.DisallowedPlacementOn(mapResolver{"minecraft:bedrock": true}, log)
	if len(got) != 1 || got[0].Name != "minecraft:bedrock" {
		t.Fatalf("DisallowedPlacementOn() = %v, want only minecraft:bedrock", got)
	}
	if !strings.Contains(buf.String(), "value=NOT_A_BLOCK") || !strings.Contains(buf.String(), "entry=1") {
		t.Fatalf("invalid entry was not logged: %q", buf.String())
	}
}

func TestRecipeKeyMaterials(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))
	m := Manifest{RecipeKeys: []string{
		"D<-->DIAMOND",
		"T<-->torch",
		"X-DIRT",
		"<-->DIRT",
		"AB<-->DIRT",
		"Q<-->NOT_A_MATERIAL",
	}}

	got := m.RecipeKeyMaterials(mapResolver{"minecraft:diamond": true, "minecraft:torch": true, "minecraft:dirt": true}, log)
	if len(got) != 2 {
		t.Fatalf("RecipeKeyMaterials() = %v, want 2 entries", got)
	}
	if got['D'].Name != "minecraft:diamond" || got['T'].Name != "minecraft:torch" {
		t.Fatalf("RecipeKeyMaterials() = %v", got)
	}
	if _, ok := got['X']; ok {
		t.Fatalf("entry without separator populated the mapping")
	}
	if !strings.Contains(buf.String(), "value=X-DIRT") {
		t.Fatalf("malformed entry was not logged: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "value=Q<-->NOT_A_MATERIAL") {
		t.Fatalf("unknown material was not logged: %q", buf.String())
	}
}

func TestExcludedMobs(t *testing.T) {
	m := Manifest{MobsExcludeFromBlockList: []string{"CREEPER", "NOT_A_MOB", "minecraft:zombie"}}
	got := m.ExcludedMobs(discard())
	if len(got) != 2 {
		t.Fatalf("ExcludedMobs() = %v, want 2 entries", got)
	}
	for _, id := range []string{"minecraft:creeper", "minecraft:zombie"} {
		if _, ok := got[id]; !ok {
			t.Fatalf("ExcludedMobs() is missing %s", id)
		}
	}
}
