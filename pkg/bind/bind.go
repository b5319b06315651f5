// Package bind decodes flat property maps into typed structs.
//
// Dotted keys become nested fields (mail.smtp.port fills Mail.SMTP.Port)
// and keys ending in consecutive indexes (tags.0, tags.1) become slices.
// Leaves are decoded with YAML scalar rules, so "true" fills a bool and
// "25" an int while string fields keep the raw text. Struct fields are
// matched through their yaml tags.
package bind

import (
	"bytes"
	"errors"
	"fmt"
	"maps"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-props/layering"
)

// ErrNilValues rejects a nil property map.
var ErrNilValues = errors.New("bind: values are nil")

// Context identifies what is being bound.
type Context struct {
	// Prefix selects keys below it and strips it before decoding. Empty
	// binds every key.
	Prefix string
	// Source labels the values in errors, e.g. a file or store name.
	Source string
}

func (c Context) label() string {
	switch {
	case c.Source != "" && c.Prefix != "":
		return c.Source + ":" + c.Prefix
	case c.Source != "":
		return c.Source
	case c.Prefix != "":
		return c.Prefix
	default:
		return "properties"
	}
}

// PreHook lets callers rewrite the selected values before decoding.
type PreHook func(Context, map[string]string) (map[string]string, error)

// PostHook lets callers adjust or validate the decoded value.
type PostHook[T any] func(Context, *T) error

// CustomDecoder replaces the default decoding when provided.
type CustomDecoder[T any] func(Context, map[string]string) (T, error)

// DecoderOption configures a Decoder instance.
type DecoderOption[T any] func(*Decoder[T])

// Decoder converts property maps into T.
type Decoder[T any] struct {
	preHooks    []PreHook
	postHooks   []PostHook[T]
	knownFields bool
	custom      CustomDecoder[T]
}

// WithPreHook applies hook prior to decoding.
func WithPreHook[T any](hook PreHook) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.preHooks = append(d.preHooks, hook)
	}
}

// WithPostHook applies hook after decoding completes.
func WithPostHook[T any](hook PostHook[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.postHooks = append(d.postHooks, hook)
	}
}

// WithKnownFields fails decoding when a key has no matching field.
func WithKnownFields[T any]() DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.knownFields = true
	}
}

// WithCustomDecoder replaces the default decoding path.
func WithCustomDecoder[T any](decoder CustomDecoder[T]) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.custom = decoder
	}
}

func NewDecoder[T any](opts ...DecoderOption[T]) *Decoder[T] {
	d := &Decoder[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decode is a shorthand for NewDecoder[T]().Decode.
func Decode[T any](ctx Context, values map[string]string) (T, error) {
	return NewDecoder[T]().Decode(ctx, values)
}

// Decode selects the keys under ctx.Prefix, applies the hooks and decodes
// the result into T.
func (d *Decoder[T]) Decode(ctx Context, values map[string]string) (T, error) {
	var zero T
	if values == nil {
		return zero, fmt.Errorf("%w: %s", ErrNilValues, ctx.label())
	}

	current := Select(values, ctx.Prefix)
	for _, hook := range d.preHooks {
		if hook == nil {
			continue
		}
		next, err := hook(ctx, current)
		if err != nil {
			return zero, fmt.Errorf("bind: pre-hook for %s failed: %w", ctx.label(), err)
		}
		if next != nil {
			current = next
		}
	}

	var result T
	if d.custom != nil {
		var err error
		result, err = d.custom(ctx, current)
		if err != nil {
			return zero, fmt.Errorf("bind: custom decoder for %s failed: %w", ctx.label(), err)
		}
	} else {
		buffer, err := yaml.Marshal(toNode(layering.Nest(current)))
		if err != nil {
			return zero, fmt.Errorf("bind: encode %s: %w", ctx.label(), err)
		}
		decoder := yaml.NewDecoder(bytes.NewReader(buffer))
		decoder.KnownFields(d.knownFields)
		if err := decoder.Decode(&result); err != nil {
			return zero, fmt.Errorf("bind: decode %s: %w", ctx.label(), err)
		}
	}

	for _, hook := range d.postHooks {
		if hook == nil {
			continue
		}
		if err := hook(ctx, &result); err != nil {
			return zero, fmt.Errorf("bind: post-hook for %s failed: %w", ctx.label(), err)
		}
	}
	return result, nil
}

// Select returns the keys below prefix with the prefix removed. An empty
// prefix copies values.
func Select(values map[string]string, prefix string) map[string]string {
	prefix = strings.TrimSuffix(prefix, ".")
	if prefix == "" {
		return maps.Clone(values)
	}
	out := map[string]string{}
	for key, value := range values {
		if rest, ok := strings.CutPrefix(key, prefix+"."); ok && rest != "" {
			out[rest] = value
		}
	}
	return out
}

func toNode(value any) *yaml.Node {
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		if isSequence(keys) {
			node := &yaml.Node{Kind: yaml.SequenceNode}
			for i := range keys {
				node.Content = append(node.Content, toNode(v[strconv.Itoa(i)]))
			}
			return node
		}
		sort.Strings(keys)
		node := &yaml.Node{Kind: yaml.MappingNode}
		for _, key := range keys {
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
				toNode(v[key]))
		}
		return node
	case string:
		// Empty text stays a string; a plain empty scalar reads as null.
		if v == "" {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: ""}
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Value: v}
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Value: fmt.Sprint(v)}
	}
}

// isSequence reports whether keys are exactly 0..n-1.
func isSequence(keys []string) bool {
	if len(keys) == 0 {
		return false
	}
	seen := make([]bool, len(keys))
	for _, key := range keys {
		i, err := strconv.Atoi(key)
		if err != nil || i < 0 || i >= len(keys) || seen[i] || strconv.Itoa(i) != key {
			return false
		}
		seen[i] = true
	}
	return true
}
