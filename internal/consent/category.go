// Package consent reconciles visitor consent decisions with the tracking keys
// reported to the analytics consent API.
package consent

import (
	"errors"
	"fmt"
)

// Value is the decision recorded for a category or tracking key.
type Value string

const (
	Unset   Value = ""
	Granted Value = "granted"
	Denied  Value = "denied"
)

// ParseValue maps a persisted string to a Value. Anything unrecognised is Unset.
func ParseValue(s string) Value {
	switch Value(s) {
	case Granted:
		return Granted
	case Denied:
		return Denied
	default:
		return Unset
	}
}

// Category is a user-facing consent toggle governing one or more tracking keys.
// Exempt categories are always granted and never shown as a checkbox.
type Category struct {
	Key    string   `mapstructure:"key" json:"key"`
	Group  []string `mapstructure:"group" json:"group"`
	Exempt bool     `mapstructure:"exempt" json:"exempt,omitempty"`
	Value  Value    `mapstructure:"-" json:"value,omitempty"`
	// Params are passed through to the default consent call as configured,
	// e.g. wait_for_update: 500 stays a number.
	Params map[string]any `mapstructure:"params" json:"params,omitempty"`
}

// effective resolves the category's decision, treating unset as denied.
func (c Category) effective() Value {
	if c.Exempt {
		return Granted
	}
	if c.Value == Granted {
		return Granted
	}
	return Denied
}

// Categories is the ordered consent configuration.
type Categories []Category

var ErrInvalidCategories = errors.New("invalid consent categories")

// Validate checks that category keys are unique and non-empty and that every
// tracking key is owned by exactly one category.
func (cs Categories) Validate() error {
	seenCat := make(map[string]bool, len(cs))
	owner := make(map[string]string)
	for _, c := range cs {
		if c.Key == "" {
			return fmt.Errorf("%w: category with empty key", ErrInvalidCategories)
		}
		if seenCat[c.Key] {
			return fmt.Errorf("%w: duplicate category %q", ErrInvalidCategories, c.Key)
		}
		seenCat[c.Key] = true

		for _, k := range c.Group {
			if k == "" {
				return fmt.Errorf("%w: category %q has an empty tracking key", ErrInvalidCategories, c.Key)
			}
			if prev, ok := owner[k]; ok {
				return fmt.Errorf("%w: tracking key %q belongs to both %q and %q", ErrInvalidCategories, k, prev, c.Key)
			}
			owner[k] = c.Key
		}
	}
	return nil
}

// Clone copies the list so Value can change without touching the receiver.
func (cs Categories) Clone() Categories {
	out := make(Categories, len(cs))
	copy(out, cs)
	return out
}

// Lookup returns the category with the given key.
func (cs Categories) Lookup(key string) (Category, bool) {
	for _, c := range cs {
		if c.Key == key {
			return c, true
		}
	}
	return Category{}, false
}
