package persist

import (
	props "github.com/goliatone/go-props"
	"github.com/goliatone/go-props/pkg/activity"
)

// Option configures a Store.
type Option func(*storeConfig)

type storeConfig struct {
	provider      Provider
	fallback      *props.Table
	activityHooks activity.Hooks
	channel       string
}

// WithProvider installs the initial provider. Nil keeps the MemoryProvider.
func WithProvider(p Provider) Option {
	return func(cfg *storeConfig) {
		cfg.provider = p
	}
}

// WithFallback sets the table consulted by the fallback lookups. Without it
// the store follows props.Default, including tables installed by props.Reset.
func WithFallback(table *props.Table) Option {
	return func(cfg *storeConfig) {
		cfg.fallback = table
	}
}

// WithActivityHooks registers hooks notified on Set and Remove.
func WithActivityHooks(hooks ...activity.ActivityHook) Option {
	return func(cfg *storeConfig) {
		cfg.activityHooks = append(cfg.activityHooks, hooks...)
	}
}

// WithActivityChannel overrides the channel of emitted events.
func WithActivityChannel(channel string) Option {
	return func(cfg *storeConfig) {
		cfg.channel = channel
	}
}
