// Package recipe turns the crafting settings of the plugin into a shaped
// crafting table recipe.
package recipe

import (
	"errors"
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/df-mc/dragonfly/server/item"
	"github.com/df-mc/dragonfly/server/item/recipe"
	"github.com/dm-vev/harotorch/harotorch/material"
)

var (
	// ErrShape is returned for a shape that does not fit a crafting table.
	ErrShape = errors.New("invalid recipe shape")
	// ErrUnknownKey is returned if the shape uses a character that has no
	// material assigned.
	ErrUnknownKey = errors.New("recipe shape uses an unknown key")
	// ErrRegistered is returned if a recipe was registered before. Recipes
	// cannot be removed from the server once registered.
	ErrRegistered = errors.New("recipe already registered")
)

// Empty marks a slot of a shape that must stay empty.
const Empty = ' '

// Build builds a shaped crafting table recipe from the rows of shape. Every
// character of a row is looked up in keys. output is the result of the
// recipe.
func Build(shape []string, keys map[rune]material.Material, output item.Stack) (recipe.Shaped, error) {
	if len(shape) == 0 || len(shape) > 3 {
		return recipe.Shaped{}, fmt.Errorf("%w: %d rows", ErrShape, len(shape))
	}
	width := utf8.RuneCountInString(shape[0])
	if width == 0 || width > 3 {
		return recipe.Shaped{}, fmt.Errorf("%w: row %q", ErrShape, shape[0])
	}
	input := make([]recipe.Item, 0, width*len(shape))
	for _, row := range shape {
		if utf8.RuneCountInString(row) != width {
			return recipe.Shaped{}, fmt.Errorf("%w: row %q is not %d wide", ErrShape, row, width)
		}
		for _, r := range row {
			if r == Empty {
				input = append(input, item.Stack{})
				continue
			}
			m, ok := keys[r]
			if !ok {
				return recipe.Shaped{}, fmt.Errorf("%w: %q", ErrUnknownKey, r)
			}
			input = append(input, item.NewStack(m.Item, 1))
		}
	}
	return recipe.NewShaped(input, output, recipe.NewShape(width, len(shape)), "crafting_table"), nil
}

var (
	registerMu sync.Mutex
	registered bool
)

// Register builds the recipe like Build does and registers it with the
// server. Only one recipe may be registered per process.
func Register(shape []string, keys map[rune]material.Material, output item.Stack) error {
	r, err := Build(shape, keys, output)
	if err != nil {
		return err
	}
	registerMu.Lock()
	defer registerMu.Unlock()
	if registered {
		return ErrRegistered
	}
	recipe.Register(r)
	registered = true
	return nil
}
