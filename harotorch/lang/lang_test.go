package lang

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"golang.org/x/text/language"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoadMatchesLanguage(t *testing.T) {
	cases := map[string]language.Tag{
		"en":      language.English,
		"nl":      language.Dutch,
		"nl_BE":   language.Dutch,
		"en-GB":   language.English,
		"fr":      language.English,
		"garbage": language.English,
		"":        language.English,
	}
	for active, want := range cases {
		c, err := Load(active, discard())
		if err != nil {
			t.Fatalf("Load(%q) error = %v", active, err)
		}
		if c.Tag() != want {
			t.Fatalf("Load(%q).Tag() = %v, want %v", active, c.Tag(), want)
		}
	}
}

func TestCataloguesHaveSameKeys(t *testing.T) {
	en, err := read(language.English)
	if err != nil {
		t.Fatalf("read en: %v", err)
	}
	for _, tag := range Available() {
		messages, err := read(tag)
		if err != nil {
			t.Fatalf("read %v: %v", tag, err)
		}
		for key := range en {
			if _, ok := messages[key]; !ok {
				t.Fatalf("%v catalogue is missing %q", tag, key)
			}
		}
	}
	for _, key := range []string{StartingAoe, EndingAoe, StartingHighlight, EndingHighlight, CommandCooldown} {
		if _, ok := en[key]; !ok {
			t.Fatalf("en catalogue is missing %q", key)
		}
	}
}

func TestMessagePlaceholders(t *testing.T) {
	c, err := Load("en", discard())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	msg := c.Message(CommandCooldown, "SECONDS", "12")
	if !strings.Contains(msg, "12 seconds") || strings.Contains(msg, "%SECONDS%") {
		t.Fatalf("Message() = %q, placeholder not replaced", msg)
	}
	if got := c.Message(TorchPlaced); strings.Contains(got, "%") || got == TorchPlaced {
		t.Fatalf("Message(TorchPlaced) = %q", got)
	}
	if got := c.Message("doesNotExist"); got != "doesNotExist" {
		t.Fatalf("Message() of unknown key = %q", got)
	}
}

func TestMessageFallsBackForMissingKeys(t *testing.T) {
	c := &Catalogue{
		tag:      language.Dutch,
		messages: map[string]string{},
		fallback: map[string]string{TorchPlaced: "placed"},
	}
	if got := c.Message(TorchPlaced); got != "placed" {
		t.Fatalf("Message() = %q, want fallback message", got)
	}
}
