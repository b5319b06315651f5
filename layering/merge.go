package layering

import (
	"sort"
	"strings"
)

// Merge composes layers ordered from strongest to weakest into a new map.
// A key defined in a stronger layer is never replaced by a weaker one.
func Merge(layers ...map[string]string) map[string]string {
	merged := map[string]string{}
	for i := len(layers) - 1; i >= 0; i-- {
		for key, value := range layers[i] {
			merged[key] = value
		}
	}
	return merged
}

// Nest turns dotted keys into nested maps: {"a.b": "1"} becomes
// {"a": {"b": "1"}}. When a key is both a leaf and a prefix of other keys the
// branch wins and the leaf value is dropped.
func Nest(flat map[string]string) map[string]any {
	keys := make([]string, 0, len(flat))
	for key := range flat {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	root := map[string]any{}
	for _, key := range keys {
		segments := strings.Split(key, ".")
		node := root
		for _, segment := range segments[:len(segments)-1] {
			child, ok := node[segment].(map[string]any)
			if !ok {
				child = map[string]any{}
				node[segment] = child
			}
			node = child
		}
		leaf := segments[len(segments)-1]
		if _, isBranch := node[leaf].(map[string]any); isBranch {
			continue
		}
		node[leaf] = flat[key]
	}
	return root
}
