// Package lang provides the messages HaroTorch sends to players in the
// language selected in the configuration.
package lang

import (
	"embed"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Message keys.
const (
	BlockPlacementNotAllowed = "blockPlacementNotAllowed"
	TorchLimitReached        = "torchLimitReached"
	TorchPlaced              = "torchPlaced"
	TorchNotOwned            = "torchNotOwned"
	TorchRemoved             = "torchRemoved"
	StartingAoe              = "startingAoe"
	EndingAoe                = "endingAoe"
	StartingHighlight        = "startingHiglight"
	EndingHighlight          = "endingHighlight"
	CommandCooldown          = "commandCooldown"
	NoTorchesNearby          = "noTorchesNearby"
	HighlightUnsupported     = "highlightUnsupported"
	PlayerOnly               = "playerOnly"
	TorchGiven               = "torchGiven"
	TorchInfo                = "torchInfo"
	Unlimited                = "unlimited"
	Version                  = "version"
)

//go:embed catalogue/*.yaml
var catalogues embed.FS

// Fallback is the language used when the configured language is unavailable,
// and for keys missing from a catalogue.
var Fallback = language.English

// Catalogue holds the messages of one language.
type Catalogue struct {
	tag      language.Tag
	messages map[string]string
	fallback map[string]string
}

// Available returns the languages messages are available in.
func Available() []language.Tag {
	entries, _ := catalogues.ReadDir("catalogue")
	tags := make([]language.Tag, 0, len(entries))
	for _, e := range entries {
		tag, err := language.Parse(strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
		if err == nil {
			tags = append(tags, tag)
		}
	}
	return tags
}

// Load returns the catalogue best matching the language passed, such as "en",
// "nl" or "en_GB". If no catalogue matches, a warning is logged and the
// fallback catalogue is returned.
func Load(active string, log *slog.Logger) (*Catalogue, error) {
	fallback, err := read(Fallback)
	if err != nil {
		return nil, err
	}
	available := Available()
	want, err := language.Parse(strings.ReplaceAll(strings.TrimSpace(active), "_", "-"))
	if err != nil {
		log.Warn("Unknown language configured, using fallback.", "activeLang", active, "fallback", Fallback)
		return &Catalogue{tag: Fallback, messages: fallback, fallback: fallback}, nil
	}
	_, index, confidence := language.NewMatcher(available).Match(want)
	if confidence == language.No {
		log.Warn("Language not available, using fallback.", "activeLang", active, "fallback", Fallback)
		return &Catalogue{tag: Fallback, messages: fallback, fallback: fallback}, nil
	}
	tag := available[index]
	messages, err := read(tag)
	if err != nil {
		return nil, err
	}
	return &Catalogue{tag: tag, messages: messages, fallback: fallback}, nil
}

func read(tag language.Tag) (map[string]string, error) {
	data, err := catalogues.ReadFile(path.Join("catalogue", tag.String()+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("read %s catalogue: %w", tag, err)
	}
	messages := make(map[string]string)
	if err := yaml.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("decode %s catalogue: %w", tag, err)
	}
	return messages, nil
}

// Tag returns the language of the catalogue.
func (c *Catalogue) Tag() language.Tag {
	return c.tag
}

// Message returns the message with the key passed, replacing placeholders.
// Placeholders are passed as name/value pairs, for example
// Message(CommandCooldown, "SECONDS", "12") replaces %SECONDS% with 12. Keys
// missing from the catalogue are looked up in the fallback catalogue, and
// returned as is if they are missing there too.
func (c *Catalogue) Message(key string, placeholders ...string) string {
	msg, ok := c.messages[key]
	if !ok {
		if msg, ok = c.fallback[key]; !ok {
			return key
		}
	}
	if len(placeholders) < 2 {
		return msg
	}
	pairs := make([]string, 0, len(placeholders))
	for i := 0; i+1 < len(placeholders); i += 2 {
		pairs = append(pairs, "%"+placeholders[i]+"%", placeholders[i+1])
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}
