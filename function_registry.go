package props

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Function is a helper callable from expressions.
type Function func(args ...any) (any, error)

// FunctionRegistry stores helpers keyed by lower case name. Lookups are case
// insensitive.
type FunctionRegistry struct {
	mu        sync.RWMutex
	id        string
	functions map[string]Function
}

// NewFunctionRegistry returns an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{id: uuid.NewString(), functions: make(map[string]Function)}
}

// Register stores fn under name. Names are unique.
func (r *FunctionRegistry) Register(name string, fn Function) error {
	if fn == nil {
		return fmt.Errorf("props: function %q is nil", name)
	}
	if name == "" {
		return fmt.Errorf("props: function name must not be empty")
	}
	key := strings.ToLower(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.functions == nil {
		r.functions = make(map[string]Function)
	}
	if _, exists := r.functions[key]; exists {
		return fmt.Errorf("props: function %q already registered", name)
	}
	r.functions[key] = fn
	return nil
}

// Has reports whether name is registered.
func (r *FunctionRegistry) Has(name string) bool {
	if r == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.functions[strings.ToLower(name)]
	return ok
}

// Clone returns a shallow copy of the registry.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := &FunctionRegistry{id: uuid.NewString(), functions: make(map[string]Function, len(r.functions))}
	for name, fn := range r.functions {
		clone.functions[name] = fn
	}
	return clone
}

// Merge copies every helper of other into r. Helpers of other replace
// same-named ones already in r.
func (r *FunctionRegistry) Merge(other *FunctionRegistry) {
	if r == nil || other == nil || r == other {
		return
	}
	other.mu.RLock()
	incoming := make(map[string]Function, len(other.functions))
	for name, fn := range other.functions {
		incoming[name] = fn
	}
	other.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.functions == nil {
		r.functions = make(map[string]Function, len(incoming))
	}
	for name, fn := range incoming {
		r.functions[name] = fn
	}
}

// Fingerprint identifies the registry instance and its helper names. Compiled
// programs bind the helpers of one registry, so program caches key on it.
func (r *FunctionRegistry) Fingerprint() string {
	if r == nil {
		return ""
	}
	r.mu.Lock()
	if r.id == "" {
		r.id = uuid.NewString()
	}
	id := r.id
	r.mu.Unlock()
	return id + "/" + strings.Join(r.Names(), ",")
}

// Call runs the function registered for name.
func (r *FunctionRegistry) Call(name string, args ...any) (any, error) {
	if r == nil {
		return nil, fmt.Errorf("props: function registry is nil")
	}
	r.mu.RLock()
	fn := r.functions[strings.ToLower(name)]
	r.mu.RUnlock()
	if fn == nil {
		return nil, fmt.Errorf("props: function %q not registered", name)
	}
	return fn(args...)
}

// Names returns registered names sorted alphabetically.
func (r *FunctionRegistry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WithFunctionRegistry makes the helpers in registry available to
// expressions. The helpers are copied into the table registry, so functions
// added by earlier options are kept; same-named helpers from registry win.
func WithFunctionRegistry(registry *FunctionRegistry) Option {
	return func(cfg *tableConfig) {
		if registry == nil {
			return
		}
		if cfg.functions == nil {
			cfg.functions = NewFunctionRegistry()
		}
		cfg.functions.Merge(registry)
	}
}

// WithCustomFunction registers fn under name.
func WithCustomFunction(name string, fn Function) Option {
	return func(cfg *tableConfig) {
		if cfg.functions == nil {
			cfg.functions = NewFunctionRegistry()
		}
		_ = cfg.functions.Register(name, fn)
	}
}

// registerBuiltins adds parsebool and parseint unless the caller already
// registered functions under those names. Property values are strings, so
// these are the usual way to compare them as typed values.
func registerBuiltins(registry *FunctionRegistry) {
	if !registry.Has("parsebool") {
		_ = registry.Register("parsebool", builtinParseBool)
	}
	if !registry.Has("parseint") {
		_ = registry.Register("parseint", builtinParseInt)
	}
}

func builtinParseBool(args ...any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("props: parsebool expects 1 argument, got %d", len(args))
	}
	switch v := args[0].(type) {
	case bool:
		return v, nil
	case nil:
		return false, nil
	default:
		parsed, err := strconv.ParseBool(strings.TrimSpace(fmt.Sprint(v)))
		if err != nil {
			return nil, err
		}
		return parsed, nil
	}
}

func builtinParseInt(args ...any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("props: parseint expects 1 argument, got %d", len(args))
	}
	switch v := args[0].(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case nil:
		return 0, nil
	default:
		parsed, err := strconv.ParseInt(strings.TrimSpace(fmt.Sprint(v)), 10, strconv.IntSize)
		if err != nil {
			return nil, err
		}
		return int(parsed), nil
	}
}
