package persist

import (
	"context"
	"sort"
	"sync"
)

// MemoryProvider keeps properties in a mutex guarded map. It is the default
// provider of every Store.
type MemoryProvider struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryProvider returns a provider seeded with initial.
func NewMemoryProvider(initial ...Property) *MemoryProvider {
	p := &MemoryProvider{values: make(map[string]string, len(initial))}
	for _, prop := range initial {
		p.values[prop.Name] = prop.Value
	}
	return p
}

// Name labels the provider in traces and events.
func (p *MemoryProvider) Name() string { return "memory" }

// RetrieveAll returns a snapshot taken under the lock, sorted by name.
func (p *MemoryProvider) RetrieveAll(_ context.Context) ([]Property, error) {
	p.mu.RLock()
	out := make([]Property, 0, len(p.values))
	for name, value := range p.values {
		out = append(out, Property{Name: name, Value: value})
	}
	p.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Get returns the stored property for key.
func (p *MemoryProvider) Get(_ context.Context, key string) (Property, bool, error) {
	p.mu.RLock()
	value, ok := p.values[key]
	p.mu.RUnlock()
	if !ok {
		return Property{}, false, nil
	}
	return Property{Name: key, Value: value}, true, nil
}

// Set upserts key and returns the previous value.
func (p *MemoryProvider) Set(_ context.Context, key, value string) (string, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	prev, existed := p.values[key]
	p.values[key] = value
	return prev, existed, nil
}

// Remove deletes key and returns the removed value.
func (p *MemoryProvider) Remove(_ context.Context, key string) (string, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	prev, existed := p.values[key]
	if existed {
		delete(p.values, key)
	}
	return prev, existed, nil
}

// Len reports the number of stored properties.
func (p *MemoryProvider) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.values)
}
