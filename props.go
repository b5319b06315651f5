package props

import (
	"sync/atomic"
	"time"
)

var defaultTable atomic.Pointer[Table]

func init() {
	defaultTable.Store(New())
}

// Default returns the process wide table used by the package level
// functions.
func Default() *Table {
	return defaultTable.Load()
}

// Reset replaces the default table with a fresh one built from opts and
// returns it. Callers holding the previous table keep a working, detached
// copy.
func Reset(opts ...Option) *Table {
	t := New(opts...)
	defaultTable.Store(t)
	return t
}

// AddPropertyFile loads path into the default table.
func AddPropertyFile(path string) error { return Default().AddPropertyFile(path) }

// LoadedFiles lists paths claimed by the default table.
func LoadedFiles() []string { return Default().LoadedFiles() }

// GetGlobalProperty reads key from the default table.
func GetGlobalProperty(key string) (string, bool) { return Default().GetGlobalProperty(key) }

// GetGlobalPropertyDefault reads key from the default table, or def.
func GetGlobalPropertyDefault(key, def string) string {
	return Default().GetGlobalPropertyDefault(key, def)
}

// GetBooleanGlobalProperty parses key from the default table.
func GetBooleanGlobalProperty(key string) (bool, error) {
	return Default().GetBooleanGlobalProperty(key)
}

// GetBooleanGlobalPropertyDefault parses key from the default table, or def.
func GetBooleanGlobalPropertyDefault(key string, def bool) (bool, error) {
	return Default().GetBooleanGlobalPropertyDefault(key, def)
}

// GetLongGlobalProperty parses key from the default table.
func GetLongGlobalProperty(key string) (int64, error) {
	return Default().GetLongGlobalProperty(key)
}

// GetLongGlobalPropertyDefault parses key from the default table, or def.
func GetLongGlobalPropertyDefault(key string, def int64) (int64, error) {
	return Default().GetLongGlobalPropertyDefault(key, def)
}

// SetGlobalProperty overrides key in the default table.
func SetGlobalProperty(key, value string) { Default().SetGlobalProperty(key, value) }

// Values copies the default table.
func Values() map[string]string { return Default().Values() }

// CurrentTime reads the default table clock in epoch milliseconds.
func CurrentTime() int64 { return Default().CurrentTime() }

// CurrentDate reads the default table clock.
func CurrentDate() time.Time { return Default().CurrentDate() }

// SetTimeSource swaps the default table clock; nil restores the system clock.
func SetTimeSource(source TimeSource) { Default().SetTimeSource(source) }

// Evaluate runs expr against the default table.
func Evaluate(expr string) (any, error) { return Default().Evaluate(expr) }

// EvaluateWith runs expr against ctx using the default table's evaluator.
func EvaluateWith(ctx RuleContext, expr string) (any, error) {
	return Default().EvaluateWith(ctx, expr)
}
