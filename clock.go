package props

import "time"

// TimeSource yields the current time in milliseconds since the Unix epoch.
type TimeSource interface {
	Now() int64
}

// TimeSourceFunc adapts a function to TimeSource.
type TimeSourceFunc func() int64

// Now implements TimeSource.
func (f TimeSourceFunc) Now() int64 {
	if f == nil {
		return time.Now().UnixMilli()
	}
	return f()
}

type systemClock struct{}

func (systemClock) Now() int64 { return time.Now().UnixMilli() }

// SystemClock returns the wall clock source.
func SystemClock() TimeSource { return systemClock{} }

type fixedTime int64

func (f fixedTime) Now() int64 { return int64(f) }

// FixedTime returns a source that always reports ms.
func FixedTime(ms int64) TimeSource { return fixedTime(ms) }

// SetTimeSource replaces the table clock. A nil source restores the system
// clock.
func (t *Table) SetTimeSource(source TimeSource) {
	if source == nil {
		source = systemClock{}
	}
	t.clockMu.Lock()
	t.clock = source
	t.clockMu.Unlock()
}

// CurrentTime returns milliseconds since the Unix epoch from the table clock.
func (t *Table) CurrentTime() int64 {
	t.clockMu.RLock()
	source := t.clock
	t.clockMu.RUnlock()
	return source.Now()
}

// CurrentDate returns CurrentTime as a time.Time.
func (t *Table) CurrentDate() time.Time {
	return time.UnixMilli(t.CurrentTime())
}
