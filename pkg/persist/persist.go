package persist

import (
	"context"
	"sync/atomic"
)

var defaultStore atomic.Pointer[Store]

func init() {
	defaultStore.Store(New())
}

// Default returns the process wide store used by the package level functions.
func Default() *Store {
	return defaultStore.Load()
}

// Reset replaces the default store with a fresh one and returns it.
func Reset(opts ...Option) *Store {
	s := New(opts...)
	defaultStore.Store(s)
	return s
}

// SetProvider swaps the provider of the default store. Install it during
// startup, before concurrent readers exist.
func SetProvider(p Provider) { Default().SetProvider(p) }

// GetProperty returns ErrNotFound when the provider has no entry for key.
func GetProperty(key string) (string, error) {
	return Default().Get(context.Background(), key)
}

// GetPropertyDefault returns def when the provider has no entry for key.
func GetPropertyDefault(key, def string) (string, error) {
	return Default().GetDefault(context.Background(), key, def)
}

// SetProperty upserts key and returns the previous value, if any.
func SetProperty(key, value string) (string, bool, error) {
	return Default().Set(context.Background(), key, value)
}

// RemoveProperty deletes key and returns the removed value, if any.
func RemoveProperty(key string) (string, bool, error) {
	return Default().Remove(context.Background(), key)
}

// GetAll returns every property held by the default provider.
func GetAll() ([]Property, error) {
	return Default().All(context.Background())
}

// GetPropertyWithFallback reads key from the provider, then the global table.
func GetPropertyWithFallback(key string) (string, bool, error) {
	return Default().GetWithFallback(context.Background(), key)
}

// GetPropertyWithFallbackDefault returns def when no layer holds key.
func GetPropertyWithFallbackDefault(key, def string) (string, error) {
	return Default().GetWithFallbackDefault(context.Background(), key, def)
}

// GetBooleanPropertyWithFallback parses the fallback value of key as a boolean.
func GetBooleanPropertyWithFallback(key string) (bool, error) {
	return Default().BoolWithFallback(context.Background(), key)
}

// GetBooleanPropertyWithFallbackDefault returns def when no layer holds key.
func GetBooleanPropertyWithFallbackDefault(key string, def bool) (bool, error) {
	return Default().BoolWithFallbackDefault(context.Background(), key, def)
}

// GetLongPropertyWithFallback parses the fallback value of key as an int64.
func GetLongPropertyWithFallback(key string) (int64, error) {
	return Default().LongWithFallback(context.Background(), key)
}

// GetLongPropertyWithFallbackDefault returns def when no layer holds key.
func GetLongPropertyWithFallbackDefault(key string, def int64) (int64, error) {
	return Default().LongWithFallbackDefault(context.Background(), key, def)
}

// GetIntegerPropertyWithFallback parses the fallback value of key as an int.
func GetIntegerPropertyWithFallback(key string) (int, error) {
	return Default().IntWithFallback(context.Background(), key)
}

// GetIntegerPropertyWithFallbackDefault returns def when no layer holds key.
func GetIntegerPropertyWithFallbackDefault(key string, def int) (int, error) {
	return Default().IntWithFallbackDefault(context.Background(), key, def)
}

// For binds mapper to the default store.
func For[F any](mapper KeyMapper[F]) Keyed[F] {
	return Namespace[F](nil, mapper)
}
