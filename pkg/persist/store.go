package persist

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	props "github.com/goliatone/go-props"
	"github.com/goliatone/go-props/layering"
	"github.com/goliatone/go-props/pkg/activity"
)

const layerGlobal = "global"

type providerSlot struct {
	provider Provider
}

// Store layers a Provider over a props.Table. The zero value is not usable;
// construct with New.
type Store struct {
	slot     atomic.Pointer[providerSlot]
	fallback *props.Table
	emitter  *activity.Emitter
}

// New returns a store backed by a MemoryProvider unless WithProvider says
// otherwise.
func New(opts ...Option) *Store {
	cfg := storeConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	s := &Store{
		fallback: cfg.fallback,
		emitter: activity.NewEmitter(cfg.activityHooks, activity.Config{
			Enabled: len(cfg.activityHooks) > 0,
			Channel: cfg.channel,
		}),
	}
	s.SetProvider(cfg.provider)
	return s
}

// SetProvider swaps the active provider. Nil installs a fresh
// MemoryProvider.
func (s *Store) SetProvider(p Provider) {
	if p == nil {
		p = NewMemoryProvider()
	}
	s.slot.Store(&providerSlot{provider: p})
}

// Provider returns the active provider.
func (s *Store) Provider() Provider {
	return s.slot.Load().provider
}

// Fallback returns the table consulted by the fallback lookups.
func (s *Store) Fallback() *props.Table {
	if s.fallback != nil {
		return s.fallback
	}
	return props.Default()
}

func checkKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrEmptyKey
	}
	return nil
}

// Lookup reads key from the provider only.
func (s *Store) Lookup(ctx context.Context, key string) (string, bool, error) {
	if err := checkKey(key); err != nil {
		return "", false, err
	}
	prop, ok, err := s.Provider().Get(ctx, key)
	if err != nil {
		return "", false, fmt.Errorf("persist: get %q: %w", key, err)
	}
	if !ok {
		return "", false, nil
	}
	return prop.Value, true, nil
}

// Get reads key from the provider and returns ErrNotFound when it is absent.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	value, ok, err := s.Lookup(ctx, key)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", notFound(key)
	}
	return value, nil
}

// GetDefault reads key from the provider and returns def when it is absent.
func (s *Store) GetDefault(ctx context.Context, key, def string) (string, error) {
	value, ok, err := s.Lookup(ctx, key)
	if err != nil {
		return "", err
	}
	if !ok {
		return def, nil
	}
	return value, nil
}

// Set upserts key and returns the replaced value, if any.
func (s *Store) Set(ctx context.Context, key, value string) (string, bool, error) {
	if err := checkKey(key); err != nil {
		return "", false, err
	}
	provider := s.Provider()
	prev, existed, err := provider.Set(ctx, key, value)
	if err != nil {
		return "", false, fmt.Errorf("persist: set %q: %w", key, err)
	}
	if s.emitter.Enabled() {
		input := s.eventInput(ctx, provider, key)
		input.NewValue = value
		input.OldValue = prev
		input.Existed = existed
		_ = s.emitter.Emit(ctx, activity.BuildPropertySetEvent(input))
	}
	return prev, existed, nil
}

// Remove deletes key and returns the removed value, if any.
func (s *Store) Remove(ctx context.Context, key string) (string, bool, error) {
	if err := checkKey(key); err != nil {
		return "", false, err
	}
	provider := s.Provider()
	prev, existed, err := provider.Remove(ctx, key)
	if err != nil {
		return "", false, fmt.Errorf("persist: remove %q: %w", key, err)
	}
	if s.emitter.Enabled() {
		input := s.eventInput(ctx, provider, key)
		input.OldValue = prev
		input.Existed = existed
		_ = s.emitter.Emit(ctx, activity.BuildPropertyRemovedEvent(input))
	}
	return prev, existed, nil
}

func (s *Store) eventInput(ctx context.Context, provider Provider, key string) activity.PropertyEventInput {
	input := activity.PropertyEventInput{
		Key:        key,
		Provider:   providerName(provider),
		OccurredAt: s.Fallback().CurrentDate(),
	}
	if actor, ok := ActorFromContext(ctx); ok {
		input.ActorID = actor.ActorID
		input.UserID = actor.UserID
		input.TenantID = actor.TenantID
	}
	return input
}

// All returns every property held by the provider.
func (s *Store) All(ctx context.Context) ([]Property, error) {
	all, err := s.Provider().RetrieveAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("persist: retrieve all: %w", err)
	}
	return all, nil
}

// GetWithFallback reads key from the provider, then from the fallback table.
// ok is false when neither holds it.
func (s *Store) GetWithFallback(ctx context.Context, key string) (string, bool, error) {
	value, ok, err := s.Lookup(ctx, key)
	if err != nil || ok {
		return value, ok, err
	}
	value, ok = s.Fallback().GetGlobalProperty(key)
	return value, ok, nil
}

// GetWithFallbackDefault is GetWithFallback with def as the last layer.
func (s *Store) GetWithFallbackDefault(ctx context.Context, key, def string) (string, error) {
	value, ok, err := s.GetWithFallback(ctx, key)
	if err != nil {
		return "", err
	}
	if !ok {
		return def, nil
	}
	return value, nil
}

func (s *Store) required(ctx context.Context, key string) (string, error) {
	value, ok, err := s.GetWithFallback(ctx, key)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", notFound(key)
	}
	return value, nil
}

// BoolWithFallback parses the fallback value of key as a boolean.
func (s *Store) BoolWithFallback(ctx context.Context, key string) (bool, error) {
	raw, err := s.required(ctx, key)
	if err != nil {
		return false, err
	}
	return props.ParseBool(key, raw)
}

// BoolWithFallbackDefault returns def when no layer holds key. Malformed
// text is still an error.
func (s *Store) BoolWithFallbackDefault(ctx context.Context, key string, def bool) (bool, error) {
	raw, ok, err := s.GetWithFallback(ctx, key)
	if err != nil || !ok {
		return def, err
	}
	return props.ParseBool(key, raw)
}

// LongWithFallback parses the fallback value of key as an int64.
func (s *Store) LongWithFallback(ctx context.Context, key string) (int64, error) {
	raw, err := s.required(ctx, key)
	if err != nil {
		return 0, err
	}
	return props.ParseLong(key, raw)
}

// LongWithFallbackDefault returns def when no layer holds key.
func (s *Store) LongWithFallbackDefault(ctx context.Context, key string, def int64) (int64, error) {
	raw, ok, err := s.GetWithFallback(ctx, key)
	if err != nil || !ok {
		return def, err
	}
	return props.ParseLong(key, raw)
}

// IntWithFallback parses the fallback value of key as an int.
func (s *Store) IntWithFallback(ctx context.Context, key string) (int, error) {
	raw, err := s.required(ctx, key)
	if err != nil {
		return 0, err
	}
	return props.ParseInt(key, raw)
}

// IntWithFallbackDefault returns def when no layer holds key.
func (s *Store) IntWithFallbackDefault(ctx context.Context, key string, def int) (int, error) {
	raw, ok, err := s.GetWithFallback(ctx, key)
	if err != nil || !ok {
		return def, err
	}
	return props.ParseInt(key, raw)
}

// Trace reports what the provider, the fallback table and, when given, the
// default said about key. Only the first default is used.
func (s *Store) Trace(ctx context.Context, key string, def ...string) (Trace, error) {
	if err := checkKey(key); err != nil {
		return Trace{}, err
	}
	provider := s.Provider()
	var lookupErr error
	sources := []layering.Source{
		layering.FromFunc(providerName(provider), func(key string) (string, bool) {
			prop, ok, err := provider.Get(ctx, key)
			if err != nil {
				lookupErr = err
				return "", false
			}
			return prop.Value, ok
		}),
		layering.FromFunc(layerGlobal, s.Fallback().GetGlobalProperty),
	}
	if len(def) > 0 {
		sources = append(sources, layering.Default(def[0]))
	}

	answers := layering.Explain(key, sources...)
	if lookupErr != nil {
		return Trace{}, fmt.Errorf("persist: trace %q: %w", key, lookupErr)
	}
	trace := Trace{Key: key}
	for _, res := range answers {
		trace.Layers = append(trace.Layers, Provenance{Layer: res.Source, Value: res.Value, Found: res.Found})
		if res.Found && !trace.Found {
			trace.Found = true
			trace.Value = res.Value
			trace.Source = res.Source
		}
	}
	return trace, nil
}

// Values returns the provider properties layered over the fallback table.
func (s *Store) Values(ctx context.Context) (map[string]string, error) {
	all, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	stored := make(map[string]string, len(all))
	for _, prop := range all {
		stored[prop.Name] = prop.Value
	}
	return layering.Merge(stored, s.Fallback().Values()), nil
}

// Evaluate runs expr with the fallback table evaluator over Values.
func (s *Store) Evaluate(ctx context.Context, expr string) (any, error) {
	view, err := s.Values(ctx)
	if err != nil {
		return nil, err
	}
	return s.Fallback().EvaluateWith(props.RuleContext{Props: view, Scope: "persist"}, expr)
}
