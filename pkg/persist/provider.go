package persist

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound reports a key absent from every consulted layer.
	ErrNotFound = errors.New("persist: property not found")
	// ErrEmptyKey rejects blank property keys on every keyed operation.
	ErrEmptyKey = errors.New("persist: property key must not be empty")
)

func notFound(key string) error {
	return fmt.Errorf("%w: %q", ErrNotFound, key)
}

// Property is a stored name/value pair. It is comparable.
type Property struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Provider is the contract a backing store implements. Set and Remove must be
// atomic per key. The returned string is the previous value and is only
// meaningful when existed is true.
type Provider interface {
	RetrieveAll(ctx context.Context) ([]Property, error)
	Get(ctx context.Context, key string) (prop Property, ok bool, err error)
	Set(ctx context.Context, key, value string) (prev string, existed bool, err error)
	Remove(ctx context.Context, key string) (removed string, existed bool, err error)
}

// Named is implemented by providers that report a label in traces and
// activity events.
type Named interface {
	Name() string
}

func providerName(p Provider) string {
	if named, ok := p.(Named); ok {
		if name := named.Name(); name != "" {
			return name
		}
	}
	return fmt.Sprintf("%T", p)
}
