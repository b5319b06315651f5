// Package layering resolves flat string properties across ordered layers.
//
// Layers are always given strongest first: the first layer that defines a key
// decides its value. A typical chain is the persistent provider, then the
// global property table, then a caller supplied default.
package layering

import "sort"

// Source is one layer in a resolution chain.
type Source interface {
	Name() string
	Lookup(key string) (string, bool)
}

// LookupFunc adapts a lookup function into a Source.
type LookupFunc func(key string) (string, bool)

type funcSource struct {
	name   string
	lookup LookupFunc
}

// FromFunc names a lookup function so it can take part in a chain.
func FromFunc(name string, lookup LookupFunc) Source {
	return funcSource{name: name, lookup: lookup}
}

func (s funcSource) Name() string { return s.name }

func (s funcSource) Lookup(key string) (string, bool) {
	if s.lookup == nil {
		return "", false
	}
	return s.lookup(key)
}

// MapSource serves a fixed map. A nil map resolves nothing.
type MapSource struct {
	Label  string
	Values map[string]string
}

// FromMap wraps values as a named Source.
func FromMap(name string, values map[string]string) MapSource {
	return MapSource{Label: name, Values: values}
}

func (s MapSource) Name() string { return s.Label }

func (s MapSource) Lookup(key string) (string, bool) {
	value, ok := s.Values[key]
	return value, ok
}

// Default is a source that answers every key with the same value.
func Default(value string) Source {
	return FromFunc("default", func(string) (string, bool) { return value, true })
}

// Resolution reports which layer answered a lookup.
type Resolution struct {
	Key    string `json:"key"`
	Value  string `json:"value,omitempty"`
	Source string `json:"source"`
	Index  int    `json:"index"`
	Found  bool   `json:"found"`
}

// Resolve returns the value of key from the strongest source that defines it.
// Nil sources are skipped.
func Resolve(key string, sources ...Source) (Resolution, bool) {
	for i, source := range sources {
		if source == nil {
			continue
		}
		if value, ok := source.Lookup(key); ok {
			return Resolution{Key: key, Value: value, Source: source.Name(), Index: i, Found: true}, true
		}
	}
	return Resolution{Key: key, Index: -1}, false
}

// Explain consults every source, strongest first, and reports each answer.
// Unlike Resolve it does not stop at the first hit.
func Explain(key string, sources ...Source) []Resolution {
	out := make([]Resolution, 0, len(sources))
	for i, source := range sources {
		if source == nil {
			continue
		}
		value, ok := source.Lookup(key)
		out = append(out, Resolution{Key: key, Value: value, Source: source.Name(), Index: i, Found: ok})
	}
	return out
}

// Keys returns the sorted union of keys across map layers.
func Keys(layers ...map[string]string) []string {
	seen := map[string]struct{}{}
	for _, layer := range layers {
		for key := range layer {
			seen[key] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
