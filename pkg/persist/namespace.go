package persist

import (
	"context"
	"strings"
)

// KeyMapper derives the storage key of a field token. Domain types that own
// properties implement it, typically by prefixing an identity.
type KeyMapper[F any] interface {
	PropertyKey(field F) string
}

// KeyMapperFunc adapts a function to KeyMapper.
type KeyMapperFunc[F any] func(field F) string

// PropertyKey calls fn.
func (fn KeyMapperFunc[F]) PropertyKey(field F) string {
	return fn(field)
}

// PrefixMapper joins prefix and the field with a dot.
func PrefixMapper[F ~string](prefix string) KeyMapper[F] {
	prefix = strings.TrimSuffix(prefix, ".")
	return KeyMapperFunc[F](func(field F) string {
		if prefix == "" {
			return string(field)
		}
		return prefix + "." + string(field)
	})
}

// Keyed exposes the Store operations keyed by field token.
type Keyed[F any] struct {
	store  *Store
	mapper KeyMapper[F]
}

// Namespace binds mapper to store. A nil store uses the default store at
// call time.
func Namespace[F any](store *Store, mapper KeyMapper[F]) Keyed[F] {
	return Keyed[F]{store: store, mapper: mapper}
}

func (k Keyed[F]) target() *Store {
	if k.store != nil {
		return k.store
	}
	return Default()
}

// Key returns the storage key of field.
func (k Keyed[F]) Key(field F) string {
	return k.mapper.PropertyKey(field)
}

// Get reads field from the provider. See Store.Get.
func (k Keyed[F]) Get(ctx context.Context, field F) (string, error) {
	return k.target().Get(ctx, k.Key(field))
}

// Lookup reads field from the provider only.
func (k Keyed[F]) Lookup(ctx context.Context, field F) (string, bool, error) {
	return k.target().Lookup(ctx, k.Key(field))
}

// GetDefault returns def when the provider has no entry for field.
func (k Keyed[F]) GetDefault(ctx context.Context, field F, def string) (string, error) {
	return k.target().GetDefault(ctx, k.Key(field), def)
}

// Set upserts field and returns the replaced value, if any.
func (k Keyed[F]) Set(ctx context.Context, field F, value string) (string, bool, error) {
	return k.target().Set(ctx, k.Key(field), value)
}

// Remove deletes field and returns the removed value, if any.
func (k Keyed[F]) Remove(ctx context.Context, field F) (string, bool, error) {
	return k.target().Remove(ctx, k.Key(field))
}

// GetWithFallback reads field from the provider, then the fallback table.
func (k Keyed[F]) GetWithFallback(ctx context.Context, field F) (string, bool, error) {
	return k.target().GetWithFallback(ctx, k.Key(field))
}

// GetWithFallbackDefault returns def when no layer holds field.
func (k Keyed[F]) GetWithFallbackDefault(ctx context.Context, field F, def string) (string, error) {
	return k.target().GetWithFallbackDefault(ctx, k.Key(field), def)
}

// BoolWithFallback parses the fallback value of field as a boolean.
func (k Keyed[F]) BoolWithFallback(ctx context.Context, field F) (bool, error) {
	return k.target().BoolWithFallback(ctx, k.Key(field))
}

// BoolWithFallbackDefault returns def when no layer holds field.
func (k Keyed[F]) BoolWithFallbackDefault(ctx context.Context, field F, def bool) (bool, error) {
	return k.target().BoolWithFallbackDefault(ctx, k.Key(field), def)
}

// LongWithFallback parses the fallback value of field as an int64.
func (k Keyed[F]) LongWithFallback(ctx context.Context, field F) (int64, error) {
	return k.target().LongWithFallback(ctx, k.Key(field))
}

// LongWithFallbackDefault returns def when no layer holds field.
func (k Keyed[F]) LongWithFallbackDefault(ctx context.Context, field F, def int64) (int64, error) {
	return k.target().LongWithFallbackDefault(ctx, k.Key(field), def)
}

// IntWithFallback parses the fallback value of field as an int.
func (k Keyed[F]) IntWithFallback(ctx context.Context, field F) (int, error) {
	return k.target().IntWithFallback(ctx, k.Key(field))
}

// IntWithFallbackDefault returns def when no layer holds field.
func (k Keyed[F]) IntWithFallbackDefault(ctx context.Context, field F, def int) (int, error) {
	return k.target().IntWithFallbackDefault(ctx, k.Key(field), def)
}

// Trace reports the provenance of field across the store layers.
func (k Keyed[F]) Trace(ctx context.Context, field F, def ...string) (Trace, error) {
	return k.target().Trace(ctx, k.Key(field), def...)
}
