// Package normalization maps free-form configuration strings onto enum
// values.
package normalization

import (
	"sort"
	"strings"

	"git.home.luguber.info/inful/semcheck/internal/foundation/errors"
)

// Enum maps case-insensitive, whitespace-trimmed spellings to values of T.
type Enum[T comparable] struct {
	name         string
	values       map[string]T
	defaultValue T
	keys         []string
}

// NewEnum creates an enum normalizer. Several spellings may map to the same
// value.
func NewEnum[T comparable](name string, values map[string]T, defaultValue T) *Enum[T] {
	e := &Enum[T]{
		name:         name,
		values:       make(map[string]T, len(values)),
		defaultValue: defaultValue,
		keys:         make([]string, 0, len(values)),
	}
	for k, v := range values {
		key := clean(k)
		e.values[key] = v
		e.keys = append(e.keys, key)
	}
	sort.Strings(e.keys)
	return e
}

// Lookup returns the value for raw. An empty raw yields the default and true.
func (e *Enum[T]) Lookup(raw string) (T, bool) {
	key := clean(raw)
	if key == "" {
		return e.defaultValue, true
	}
	v, ok := e.values[key]
	if !ok {
		return e.defaultValue, false
	}
	return v, true
}

// Normalize returns the value for raw, or the default when raw is unknown.
func (e *Enum[T]) Normalize(raw string) T {
	v, _ := e.Lookup(raw)
	return v
}

// Parse is Lookup reporting unknown input as a configuration error.
func (e *Enum[T]) Parse(raw string) (T, error) {
	v, ok := e.Lookup(raw)
	if !ok {
		return v, errors.ConfigError("invalid "+e.name).
			WithContext("value", raw).
			WithContext("valid", strings.Join(e.keys, ", ")).
			Build()
	}
	return v, nil
}

// Keys returns the accepted spellings in sorted order.
func (e *Enum[T]) Keys() []string {
	out := make([]string, len(e.keys))
	copy(out, e.keys)
	return out
}

func clean(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
