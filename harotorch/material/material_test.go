package material

import "testing"

func TestIdentifier(t *testing.T) {
	cases := map[string]string{
		"":                   "",
		"  ":                 "",
		"BEDROCK":            "minecraft:bedrock",
		"Stone Bricks":       "minecraft:stone_bricks",
		"minecraft:obsidian": "minecraft:obsidian",
		"  Crying_Obsidian ": "minecraft:crying_obsidian",
	}
	for input, want := range cases {
		if got := identifier(input); got != want {
			t.Fatalf("identifier(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNormalizeKeepsCurrentNames(t *testing.T) {
	for _, name := range []string{"BEDROCK", "minecraft:obsidian"} {
		if got, want := Normalize(name), identifier(name); got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestMob(t *testing.T) {
	cases := map[string]struct {
		id string
		ok bool
	}{
		"CREEPER":          {"minecraft:creeper", true},
		"minecraft:zombie": {"minecraft:zombie", true},
		"PIG_ZOMBIE":       {"minecraft:zombie_pigman", true},
		"ZOMBIE_VILLAGER":  {"minecraft:zombie_villager_v2", true},
		"NOT_A_MOB":        {"", false},
		"":                 {"", false},
	}
	for input, want := range cases {
		id, ok := Mob(input)
		if id != want.id || ok != want.ok {
			t.Fatalf("Mob(%q) = (%q, %v), want (%q, %v)", input, id, ok, want.id, want.ok)
		}
	}
}

func TestHostileAndBoss(t *testing.T) {
	if !Hostile("minecraft:creeper") {
		t.Fatalf("creeper is not hostile")
	}
	if Hostile("minecraft:cow") {
		t.Fatalf("cow is hostile")
	}
	if !IsMob("minecraft:cow") {
		t.Fatalf("cow is not a mob")
	}
	if IsMob("minecraft:item") {
		t.Fatalf("item entity is a mob")
	}
	for _, id := range []string{"minecraft:wither", "minecraft:ender_dragon"} {
		if !Boss(id) {
			t.Fatalf("%s is not a boss", id)
		}
	}
	if Boss("minecraft:zombie") {
		t.Fatalf("zombie is a boss")
	}
}
