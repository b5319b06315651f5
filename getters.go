package props

import (
	"strconv"
	"strings"
)

// GetBooleanGlobalProperty parses key as a boolean. It returns ErrNotFound
// when key is absent and a *MalformedValueError when the text is not a
// boolean.
func (t *Table) GetBooleanGlobalProperty(key string) (bool, error) {
	raw, ok := t.GetGlobalProperty(key)
	if !ok {
		return false, notFound(key)
	}
	return ParseBool(key, raw)
}

// GetBooleanGlobalPropertyDefault is GetBooleanGlobalProperty with def for
// absent keys. A present but malformed value is still an error.
func (t *Table) GetBooleanGlobalPropertyDefault(key string, def bool) (bool, error) {
	raw, ok := t.GetGlobalProperty(key)
	if !ok {
		return def, nil
	}
	return ParseBool(key, raw)
}

// GetLongGlobalProperty parses key as a base 10 int64.
func (t *Table) GetLongGlobalProperty(key string) (int64, error) {
	raw, ok := t.GetGlobalProperty(key)
	if !ok {
		return 0, notFound(key)
	}
	return ParseLong(key, raw)
}

// GetLongGlobalPropertyDefault is GetLongGlobalProperty with def for absent
// keys.
func (t *Table) GetLongGlobalPropertyDefault(key string, def int64) (int64, error) {
	raw, ok := t.GetGlobalProperty(key)
	if !ok {
		return def, nil
	}
	return ParseLong(key, raw)
}

// ParseBool converts property text into a bool. Surrounding whitespace is
// ignored; accepted forms are those of strconv.ParseBool.
func ParseBool(key, raw string) (bool, error) {
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return false, &MalformedValueError{Key: key, Value: raw, Kind: "boolean", Err: err}
	}
	return value, nil
}

// ParseLong converts property text into an int64.
func ParseLong(key, raw string) (int64, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, &MalformedValueError{Key: key, Value: raw, Kind: "integer", Err: err}
	}
	return value, nil
}

// ParseInt converts property text into an int, rejecting values outside the
// platform int range.
func ParseInt(key, raw string) (int, error) {
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, strconv.IntSize)
	if err != nil {
		return 0, &MalformedValueError{Key: key, Value: raw, Kind: "integer", Err: err}
	}
	return int(value), nil
}
