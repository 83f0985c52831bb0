package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pelletier/go-toml"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// FileName is the name of the configuration file in the plugin data
// directory.
const FileName = "config.toml"

var (
	//go:embed default.toml
	defaultConfig []byte
	//go:embed manifest.schema.json
	manifestSchema string
)

// ErrInvalid is returned by Load when the configuration file does not match
// the manifest schema, for example because a required field is missing.
var ErrInvalid = errors.New("invalid configuration")

const schemaURL = "harotorch://manifest.schema.json"

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, strings.NewReader(manifestSchema)); err != nil {
		return nil, err
	}
	return c.Compile(schemaURL)
})

// Default returns the contents of the configuration file written when none
// exists yet.
func Default() []byte {
	return bytes.Clone(defaultConfig)
}

// Load reads the manifest from the file at path. If the file does not exist,
// the default configuration is written to it first. Missing required fields
// and fields of the wrong type make Load return an error wrapping ErrInvalid.
func Load(path string, log *slog.Logger) (Manifest, error) {
	if log == nil {
		log = slog.Default()
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return Manifest{}, fmt.Errorf("create config directory: %w", err)
		}
		if err := os.WriteFile(path, defaultConfig, 0o644); err != nil {
			return Manifest{}, fmt.Errorf("write default config: %w", err)
		}
		log.Info("Wrote default configuration.", "path", path)
		data = defaultConfig
	} else if err != nil {
		return Manifest{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse validates and decodes the TOML encoded manifest passed.
func Parse(data []byte) (Manifest, error) {
	tree, err := toml.LoadBytes(data)
	if err != nil {
		return Manifest{}, fmt.Errorf("decode config: %w", err)
	}
	if err := validate(tree); err != nil {
		return Manifest{}, err
	}
	var m Manifest
	if err := tree.Unmarshal(&m); err != nil {
		return Manifest{}, fmt.Errorf("decode config: %w", err)
	}
	return m, nil
}

func validate(tree *toml.Tree) error {
	schema, err := compileSchema()
	if err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}
	raw, err := json.Marshal(tree.ToMap())
	if err != nil {
		return fmt.Errorf("encode config for validation: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("encode config for validation: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}
