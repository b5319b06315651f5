// Package activity fans property change events out to pluggable hooks.
package activity

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"
)

// Event is one property change. ObjectID carries the property key (or the
// file path for loads) and ObjectType defaults to ObjectProperty. Identity
// fields are plain strings so callers are not tied to a particular ID type.
type Event struct {
	Verb       string
	ActorID    string
	UserID     string
	TenantID   string
	ObjectType string
	ObjectID   string
	Channel    string
	Metadata   map[string]any
	OccurredAt time.Time
}

// Valid reports whether the event names a verb and the property it touched.
func (e Event) Valid() bool {
	return e.Verb != "" && e.ObjectID != ""
}

// ActivityHook receives normalized events.
type ActivityHook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc allows plain functions to satisfy ActivityHook.
type HookFunc func(ctx context.Context, event Event) error

// Notify dispatches to the underlying function.
func (fn HookFunc) Notify(ctx context.Context, event Event) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, event)
}

// Hooks fans events out to zero or more hooks.
type Hooks []ActivityHook

// Enabled reports whether there are any hooks to notify.
func (h Hooks) Enabled() bool {
	return len(h) > 0
}

// Notify normalizes event once and hands the same copy to every hook.
// Invalid events are dropped. Each failure is tagged with the hook position
// and the failures are joined.
func (h Hooks) Notify(ctx context.Context, event Event) error {
	if len(h) == 0 {
		return nil
	}
	event = NormalizeEvent(event)
	if !event.Valid() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var errs []error
	for i, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.Notify(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("activity: hook %d %s %q: %w", i, event.Verb, event.ObjectID, err))
		}
	}
	return errors.Join(errs...)
}

// NormalizeEvent trims the verb, the key and the identity fields, defaults
// the object type to ObjectProperty, copies metadata so hooks cannot alias
// the caller's map, and stamps a UTC OccurredAt when it is unset.
func NormalizeEvent(event Event) Event {
	for _, field := range []*string{
		&event.Verb, &event.ObjectType, &event.ObjectID, &event.Channel,
		&event.ActorID, &event.UserID, &event.TenantID,
	} {
		*field = strings.TrimSpace(*field)
	}
	if event.ObjectType == "" {
		event.ObjectType = ObjectProperty
	}
	event.Metadata = maps.Clone(event.Metadata)
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	return event
}
